package repository

import (
	"context"
	"sync"
	"time"

	"rezervator/internal/domain"
	"rezervator/internal/models"

	"github.com/google/uuid"
)

// nowFunc подменяется в тестах для детерминированных timestamps.
var nowFunc = time.Now

// MemoryStore — in-memory реализация адаптера с тем же контрактом.
// Используется в тестах и как хранилище без персистентности.
type MemoryStore struct {
	mu           sync.RWMutex
	reservations []models.Reservation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) List(ctx context.Context) ([]models.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Reservation(nil), s.reservations...), nil
}

func (s *MemoryStore) Create(ctx context.Context, r *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := nowFunc()
	r.CreatedAt = now
	r.UpdatedAt = now

	s.reservations = append(s.reservations, *r)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, r *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.reservations {
		if s.reservations[i].ID == r.ID {
			r.CreatedAt = s.reservations[i].CreatedAt
			r.UpdatedAt = nowFunc()
			s.reservations[i] = *r
			return nil
		}
	}

	return domain.ErrNotFound
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.reservations {
		if s.reservations[i].ID == id {
			s.reservations = append(s.reservations[:i], s.reservations[i+1:]...)
			return nil
		}
	}

	return domain.ErrNotFound
}

func (s *MemoryStore) ReplaceAll(ctx context.Context, reservations []models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowFunc()
	replacement := append([]models.Reservation(nil), reservations...)
	for i := range replacement {
		if replacement[i].ID == "" {
			replacement[i].ID = uuid.NewString()
		}
		if replacement[i].CreatedAt.IsZero() {
			replacement[i].CreatedAt = now
		}
		if replacement[i].UpdatedAt.IsZero() {
			replacement[i].UpdatedAt = replacement[i].CreatedAt
		}
	}

	s.reservations = replacement
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations = nil
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
