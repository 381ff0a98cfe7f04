package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rezervator/internal/config"
	"rezervator/internal/domain"

	"github.com/rs/zerolog"
)

// Service периодически снимает JSON-снапшот коллекции в виде конверта
// и подчищает устаревшие файлы по retention-политике.
type Service struct {
	store  domain.Store
	config config.BackupConfig
	logger *zerolog.Logger
}

func NewService(store domain.Store, cfg config.BackupConfig, logger *zerolog.Logger) *Service {
	return &Service{
		store:  store,
		config: cfg,
		logger: logger,
	}
}

func (s *Service) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info().Msg("Backup service is disabled")
		return
	}

	s.logger.Info().Str("schedule", s.config.Schedule).Msg("Backup service started")

	interval := 24 * time.Hour
	if s.config.Schedule != "" {
		if d, err := time.ParseDuration(s.config.Schedule); err == nil {
			interval = d
		} else {
			s.logger.Warn().Err(err).Str("schedule", s.config.Schedule).
				Msg("Failed to parse backup schedule, using default 24h")
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run first backup immediately
	if err := s.PerformBackup(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Initial backup failed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.PerformBackup(ctx); err != nil {
				s.logger.Error().Err(err).Msg("Scheduled backup failed")
			}
			s.CleanupOldBackups()
		}
	}
}

// PerformBackup сериализует текущую коллекцию в файл-конверт.
func (s *Service) PerformBackup(ctx context.Context) error {
	if _, err := os.Stat(s.config.StoragePath); os.IsNotExist(err) {
		if err := os.MkdirAll(s.config.StoragePath, 0o755); err != nil {
			return fmt.Errorf("failed to create backup directory: %w", err)
		}
	}

	reservations, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list reservations: %w", err)
	}

	now := time.Now()
	doc, err := Serialize(reservations, now)
	if err != nil {
		return fmt.Errorf("failed to serialize reservations: %w", err)
	}

	backupPath := filepath.Join(s.config.StoragePath, Filename(now))
	if err := os.WriteFile(backupPath, doc, 0o644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}

	s.logger.Info().Str("path", backupPath).Int("reservations", len(reservations)).
		Msg("Backup completed successfully")
	return nil
}

func (s *Service) CleanupOldBackups() {
	if s.config.RetentionDays <= 0 {
		return
	}

	files, err := os.ReadDir(s.config.StoragePath)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read backup directory for cleanup")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.config.RetentionDays)

	for _, file := range files {
		if file.IsDir() {
			continue
		}

		info, err := file.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			s.logger.Info().Str("file", file.Name()).Msg("Deleting old backup")
			os.Remove(filepath.Join(s.config.StoragePath, file.Name()))
		}
	}
}
