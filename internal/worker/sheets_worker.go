package worker

import (
	"context"
	"time"

	"rezervator/internal/domain"
	"rezervator/internal/models"

	"github.com/rs/zerolog"
)

// SheetsWorker mirrors the reservation collection into Google Sheets.
// The mirror is a full-sheet replace, so queued sync requests coalesce:
// a signal already pending covers every mutation that arrived before it
// was processed.
type SheetsWorker struct {
	store       domain.Store
	sheets      domain.SheetsWriter
	retryPolicy RetryPolicy
	signals     chan struct{}
	logger      *zerolog.Logger
}

// NewSheetsWorker builds a worker with sane retry defaults.
func NewSheetsWorker(store domain.Store, sheets domain.SheetsWriter, retry RetryPolicy, logger *zerolog.Logger) *SheetsWorker {
	return &SheetsWorker{
		store:       store,
		sheets:      sheets,
		retryPolicy: retry.withDefaults(),
		signals:     make(chan struct{}, models.SyncQueueSize),
		logger:      logger,
	}
}

// EnqueueSync schedules a mirror refresh. Never blocks: a full queue
// means a refresh is already pending and will pick up this change.
func (w *SheetsWorker) EnqueueSync(ctx context.Context) error {
	select {
	case w.signals <- struct{}{}:
	default:
	}
	return nil
}

// Start launches the main loop; stops when ctx is done.
func (w *SheetsWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("sheets worker started")
	defer w.logger.Info().Msg("sheets worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.signals:
			w.drain()
			w.syncWithRetry(ctx)
		}
	}
}

// drain collapses queued signals into the refresh about to run.
func (w *SheetsWorker) drain() {
	for {
		select {
		case <-w.signals:
		default:
			return
		}
	}
}

func (w *SheetsWorker) syncWithRetry(ctx context.Context) {
	for attempt := 1; attempt <= w.retryPolicy.MaxRetries; attempt++ {
		err := w.syncOnce(ctx)
		if err == nil {
			return
		}

		w.logger.Warn().Err(err).Int("attempt", attempt).Msg("sheets sync failed")

		if attempt == w.retryPolicy.MaxRetries {
			w.logger.Error().Err(err).Msg("sheets sync gave up; mirror is stale until the next mutation")
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.retryPolicy.NextDelay(attempt)):
		}
	}
}

func (w *SheetsWorker) syncOnce(ctx context.Context) error {
	reservations, err := w.store.List(ctx)
	if err != nil {
		return err
	}
	return w.sheets.ReplaceReservationsSheet(ctx, reservations)
}
