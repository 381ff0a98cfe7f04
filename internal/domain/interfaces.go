package domain

import (
	"context"

	"rezervator/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Store — контракт адаптера хранения; два взаимозаменяемых варианта:
// SQLite и Redis-blob. Завершенная мутация обязана быть видимой
// следующему List; Update/Delete по отсутствующему id завершаются
// ErrNotFound, не трогая остальные записи.
type Store interface {
	List(ctx context.Context) ([]models.Reservation, error)
	Create(ctx context.Context, r *models.Reservation) error
	Update(ctx context.Context, r *models.Reservation) error
	Delete(ctx context.Context, id string) error

	// ReplaceAll атомарно заменяет всю коллекцию (restore из backup).
	ReplaceAll(ctx context.Context, reservations []models.Reservation) error

	// Reset — явная необратимая очистка всей коллекции.
	Reset(ctx context.Context) error

	Ping(ctx context.Context) error
	Close() error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type SheetsWriter interface {
	ReplaceReservationsSheet(ctx context.Context, reservations []models.Reservation) error
}

type SyncWorker interface {
	EnqueueSync(ctx context.Context) error
}

// AgendaSource отдает резервации на дату для ежедневной сводки.
type AgendaSource interface {
	ForDate(date string) []models.Reservation
}
