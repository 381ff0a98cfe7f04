package service

import (
	"context"
	"sync"
	"time"

	"rezervator/internal/backup"
	"rezervator/internal/domain"
	"rezervator/internal/events"
	"rezervator/internal/metrics"
	"rezervator/internal/models"
	"rezervator/internal/validation"

	"github.com/rs/zerolog"
)

// ReservationService — единая точка доступа для вызывающих: держит
// in-memory зеркало коллекции поверх адаптера хранения. Любая мутация
// сначала проходит через адаптер; зеркало обновляется только после
// успеха, поэтому при ошибке хранилища наблюдаемое состояние не меняется.
type ReservationService struct {
	store        domain.Store
	eventBus     domain.EventPublisher
	sheetsWorker domain.SyncWorker
	logger       *zerolog.Logger

	mu           sync.RWMutex
	reservations []models.Reservation
}

func NewReservationService(store domain.Store, eventBus domain.EventPublisher, sheetsWorker domain.SyncWorker, logger *zerolog.Logger) *ReservationService {
	return &ReservationService{
		store:        store,
		eventBus:     eventBus,
		sheetsWorker: sheetsWorker,
		logger:       logger,
	}
}

// Refetch перечитывает коллекцию из хранилища и атомарно заменяет
// зеркало. Вызывается при старте и после bulk-операций.
func (s *ReservationService) Refetch(ctx context.Context) error {
	reservations, err := s.store.List(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.reservations = reservations
	s.mu.Unlock()

	return nil
}

// Add нормализует и валидирует черновик, сохраняет его и добавляет в
// зеркало. Возвращает ValidationError со всеми нарушенными правилами.
func (s *ReservationService) Add(ctx context.Context, r *models.Reservation) error {
	r.Normalize()

	result := validation.Validate(r, time.Now())
	if !result.Valid {
		return &domain.ValidationError{Rules: result.Errors}
	}

	if err := s.store.Create(ctx, r); err != nil {
		return err
	}

	s.mu.Lock()
	s.reservations = append(s.reservations, *r)
	s.mu.Unlock()

	metrics.IncReservationOp("add")
	s.publishReservationEvent(events.EventReservationCreated, r)
	s.enqueueSync(ctx)

	s.logger.Info().
		Str("reservation_id", r.ID).
		Str("date", r.Date).
		Str("time", r.Time).
		Int("guests", r.Guests).
		Msg("reservation created")

	return nil
}

// Update накладывает частичное обновление на существующую запись.
// Patch никогда не меняет ID и CreatedAt; UpdatedAt обновляет хранилище.
func (s *ReservationService) Update(ctx context.Context, id string, patch models.ReservationPatch) (*models.Reservation, error) {
	s.mu.RLock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.RUnlock()
		return nil, domain.ErrNotFound
	}
	updated := s.reservations[idx]
	s.mu.RUnlock()

	patch.Apply(&updated)
	updated.Normalize()

	result := validation.ValidateUpdate(&updated)
	if !result.Valid {
		return nil, &domain.ValidationError{Rules: result.Errors}
	}

	if err := s.store.Update(ctx, &updated); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if idx = s.indexOf(id); idx >= 0 {
		s.reservations[idx] = updated
	}
	s.mu.Unlock()

	metrics.IncReservationOp("update")
	s.publishReservationEvent(events.EventReservationUpdated, &updated)
	s.enqueueSync(ctx)

	return &updated, nil
}

// Remove удаляет запись по id; отсутствующий id — ErrNotFound.
func (s *ReservationService) Remove(ctx context.Context, id string) error {
	s.mu.RLock()
	idx := s.indexOf(id)
	if idx < 0 {
		s.mu.RUnlock()
		return domain.ErrNotFound
	}
	removed := s.reservations[idx]
	s.mu.RUnlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	if idx = s.indexOf(id); idx >= 0 {
		s.reservations = append(s.reservations[:idx], s.reservations[idx+1:]...)
	}
	s.mu.Unlock()

	metrics.IncReservationOp("remove")
	s.publishReservationEvent(events.EventReservationDeleted, &removed)
	s.enqueueSync(ctx)

	return nil
}

// ForDate возвращает резервации на дату, отсортированные по времени.
func (s *ReservationService) ForDate(date string) []models.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.SortByTime(models.FilterByDate(s.reservations, date))
}

// List возвращает копию всей коллекции, отсортированную по (date, time).
func (s *ReservationService) List() []models.Reservation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.SortByDateTime(s.reservations)
}

// Stats считает агрегаты относительно текущего момента.
func (s *ReservationService) Stats() models.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CalculateStats(s.reservations, time.Now())
}

// Export сериализует коллекцию в backup-документ.
func (s *ReservationService) Export() ([]byte, error) {
	return backup.Serialize(s.List(), time.Now())
}

// Import распознает backup-документ и атомарно заменяет коллекцию.
// Нераспознанный документ оставляет состояние нетронутым.
func (s *ReservationService) Import(ctx context.Context, doc []byte) (backup.Metadata, error) {
	reservations, meta, err := backup.Parse(doc)
	if err != nil {
		return backup.Metadata{}, err
	}

	for i := range reservations {
		reservations[i].Normalize()
	}

	if err := s.store.ReplaceAll(ctx, reservations); err != nil {
		return backup.Metadata{}, err
	}

	if err := s.Refetch(ctx); err != nil {
		return backup.Metadata{}, err
	}

	metrics.IncReservationOp("import")
	s.publishCollectionEvent(events.EventCollectionImported, meta.TotalReservations, meta.Version)
	s.enqueueSync(ctx)

	s.logger.Info().
		Int("total", meta.TotalReservations).
		Str("version", meta.Version).
		Msg("collection imported")

	return meta, nil
}

// Reset — явная необратимая очистка всей коллекции.
func (s *ReservationService) Reset(ctx context.Context) error {
	if err := s.store.Reset(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.reservations = nil
	s.mu.Unlock()

	metrics.IncReservationOp("reset")
	s.publishCollectionEvent(events.EventCollectionReset, 0, "")
	s.enqueueSync(ctx)

	s.logger.Warn().Msg("collection reset")

	return nil
}

// Ping проверяет доступность хранилища под зеркалом.
func (s *ReservationService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// indexOf ищет запись в зеркале; вызывать под блокировкой.
func (s *ReservationService) indexOf(id string) int {
	for i := range s.reservations {
		if s.reservations[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *ReservationService) publishReservationEvent(eventType string, r *models.Reservation) {
	if s.eventBus == nil {
		return
	}

	payload := events.ReservationEventPayload{
		ReservationID: r.ID,
		Name:          r.Name,
		Date:          r.Date,
		Time:          r.Time,
		Guests:        r.Guests,
		Type:          r.Type,
		TableNumber:   r.TableNumber,
		CreatedBy:     r.CreatedBy,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}

func (s *ReservationService) publishCollectionEvent(eventType string, total int, version string) {
	if s.eventBus == nil {
		return
	}

	payload := events.CollectionEventPayload{
		TotalReservations: total,
		Version:           version,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}

func (s *ReservationService) enqueueSync(ctx context.Context) {
	if s.sheetsWorker == nil {
		return
	}
	if err := s.sheetsWorker.EnqueueSync(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to enqueue sheets sync")
	}
}
