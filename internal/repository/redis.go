package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"rezervator/internal/config"
	"rezervator/internal/domain"
	"rezervator/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisStore — локальный key-value вариант адаптера хранения: вся
// коллекция ходит туда-обратно одним сериализованным blob-ом под одним
// ключом, как localStorage в исходном клиенте. Порядок List —
// порядок вставки; сортирует вызывающий.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *zerolog.Logger
}

// NewRedisClient создает клиент Redis на основе конфигурации.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisStore(client *redis.Client, logger *zerolog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		key:    models.StorageKey,
		logger: logger,
	}
}

// load читает blob целиком. Отсутствующий или поврежденный blob
// деградирует до пустой коллекции, а не до ошибки: клиент за стойкой
// не должен падать из-за битых данных. Сбой соединения — это уже
// ErrStorageUnavailable.
func (s *RedisStore) load(ctx context.Context) ([]models.Reservation, error) {
	val, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load reservations: %w: %v", domain.ErrStorageUnavailable, err)
	}

	var reservations []models.Reservation
	if err := json.Unmarshal([]byte(val), &reservations); err != nil {
		s.logger.Warn().Err(err).Str("key", s.key).
			Msg("corrupted reservations blob, starting from an empty collection")
		return nil, nil
	}

	return reservations, nil
}

// save перезаписывает blob целиком. Неудавшаяся запись отображается в
// ErrStorageFull: данные не потеряны молча, вызывающему следует
// предложить backup и удаление старых резерваций.
func (s *RedisStore) save(ctx context.Context, reservations []models.Reservation) error {
	data, err := json.Marshal(reservations)
	if err != nil {
		return fmt.Errorf("marshal reservations: %w", err)
	}

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save reservations: %w: %v", domain.ErrStorageFull, err)
	}

	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]models.Reservation, error) {
	return s.load(ctx)
}

func (s *RedisStore) Create(ctx context.Context, r *models.Reservation) error {
	reservations, err := s.load(ctx)
	if err != nil {
		return err
	}

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := nowFunc()
	r.CreatedAt = now
	r.UpdatedAt = now

	return s.save(ctx, append(reservations, *r))
}

func (s *RedisStore) Update(ctx context.Context, r *models.Reservation) error {
	reservations, err := s.load(ctx)
	if err != nil {
		return err
	}

	for i := range reservations {
		if reservations[i].ID == r.ID {
			// id и createdAt неизменяемы
			r.CreatedAt = reservations[i].CreatedAt
			r.UpdatedAt = nowFunc()
			reservations[i] = *r
			return s.save(ctx, reservations)
		}
	}

	return domain.ErrNotFound
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	reservations, err := s.load(ctx)
	if err != nil {
		return err
	}

	kept := reservations[:0:0]
	found := false
	for _, r := range reservations {
		if r.ID == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return domain.ErrNotFound
	}

	return s.save(ctx, kept)
}

func (s *RedisStore) ReplaceAll(ctx context.Context, reservations []models.Reservation) error {
	now := nowFunc()
	for i := range reservations {
		if reservations[i].ID == "" {
			reservations[i].ID = uuid.NewString()
		}
		if reservations[i].CreatedAt.IsZero() {
			reservations[i].CreatedAt = now
		}
		if reservations[i].UpdatedAt.IsZero() {
			reservations[i].UpdatedAt = reservations[i].CreatedAt
		}
	}

	// Одна команда SET — замена атомарна
	return s.save(ctx, reservations)
}

func (s *RedisStore) Reset(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("reset reservations: %w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if _, err := s.client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
