package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rezervator/internal/api"
	"rezervator/internal/backup"
	"rezervator/internal/config"
	"rezervator/internal/database"
	"rezervator/internal/domain"
	"rezervator/internal/events"
	"rezervator/internal/google"
	"rezervator/internal/logging"
	"rezervator/internal/metrics"
	"rezervator/internal/models"
	"rezervator/internal/notify"
	"rezervator/internal/repository"
	"rezervator/internal/service"
	"rezervator/internal/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	tables, err := loadTables(cfg, &logger)
	if err != nil {
		return err
	}

	store, err := openStore(cfg, &logger)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventBus := events.NewEventBus()

	sheetsWorker := initSheetsWorker(ctx, cfg, store, &logger)

	svc := service.NewReservationService(store, eventBus, sheetsWorker, &logger)
	if err := svc.Refetch(ctx); err != nil {
		logger.Error().Err(err).Msg("initial load failed")
		return err
	}

	initNotifier(ctx, cfg, eventBus, svc, &logger)

	if cfg.Backup.Enabled {
		backupService := backup.NewService(store, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	startMetrics(ctx, cfg, &logger)

	httpServer := api.NewHTTPServer(cfg.Server, svc, tables, &logger)
	return startServer(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func loadTables(cfg *config.Config, logger *zerolog.Logger) ([]models.Table, error) {
	tablesPath := os.Getenv("TABLES_PATH")
	if tablesPath == "" {
		tablesPath = cfg.TablesPath
	}
	tablesData, err := os.ReadFile(tablesPath)
	if err != nil {
		logger.Error().Err(err).Str("tables_path", tablesPath).Msg("read tables")
		return nil, err
	}

	var tablesConfig struct {
		Tables []models.Table `yaml:"tables"`
	}
	if err := yaml.Unmarshal(tablesData, &tablesConfig); err != nil {
		logger.Error().Err(err).Str("tables_path", tablesPath).Msg("parse tables")
		return nil, err
	}

	if err := config.ValidateTables(tablesConfig.Tables); err != nil {
		logger.Error().Err(err).Str("tables_path", tablesPath).Msg("invalid floor plan")
		return nil, err
	}

	return tablesConfig.Tables, nil
}

// openStore выбирает адаптер по конфигу. Отсутствие настроек выбранного
// драйвера — ошибка запуска; молчаливого fallback нет.
func openStore(cfg *config.Config, logger *zerolog.Logger) (domain.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := database.NewDB(cfg.Storage.Path, logger)
		if err != nil {
			logger.Error().Err(err).Str("db_path", cfg.Storage.Path).Msg("init database")
			return nil, err
		}
		return db, nil

	case config.DriverRedis:
		client := repository.NewRedisClient(cfg.Storage.Redis)
		if _, err := client.Ping(context.Background()).Result(); err != nil {
			logger.Error().Err(err).Str("addr", cfg.Storage.Redis.Address).Msg("redis connection failed")
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		logger.Info().Str("addr", cfg.Storage.Redis.Address).Msg("redis connected")
		return repository.NewRedisStore(client, logger), nil

	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}

func initSheetsWorker(ctx context.Context, cfg *config.Config, store domain.Store, logger *zerolog.Logger) domain.SyncWorker {
	if cfg.Google.CredentialsFile == "" || cfg.Google.SpreadsheetID == "" {
		return nil
	}

	sheetsService, err := google.NewSheetsService(ctx, cfg.Google.CredentialsFile, cfg.Google.SpreadsheetID)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}

	sheetsWorker := worker.NewSheetsWorker(store, sheetsService, worker.RetryPolicy{}, logger)
	go sheetsWorker.Start(ctx)

	logger.Info().Msg("google sheets connected")
	return sheetsWorker
}

func initNotifier(ctx context.Context, cfg *config.Config, eventBus *events.EventBus, svc *service.ReservationService, logger *zerolog.Logger) {
	if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == 0 {
		return
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return
	}

	notifier := notify.NewNotifier(botAPI, svc, cfg.Telegram, logger)
	notifier.Subscribe(eventBus)
	notifier.StartDailyAgenda(ctx)

	logger.Info().Int64("chat_id", cfg.Telegram.ChatID).Msg("telegram notifications enabled")
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
