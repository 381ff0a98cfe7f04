// Command backup — офлайновые операции с коллекцией: экспорт и
// восстановление backup-документа, выгрузка CSV/XLSX, явный сброс.
// Работает напрямую с адаптером хранения, без HTTP-сервера.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"rezervator/internal/backup"
	"rezervator/internal/config"
	"rezervator/internal/database"
	"rezervator/internal/domain"
	"rezervator/internal/logging"
	"rezervator/internal/models"
	"rezervator/internal/repository"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: backup [flags] <command>

Commands:
  export   write the backup document to -file (default stdout)
  import   restore the collection from -file
  csv      write a CSV export to -file (default stdout)
  xlsx     write an XLSX export to -file
  reset    wipe the collection (requires -confirm)

Flags:`)
	flag.PrintDefaults()
}

func run() error {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	filePath := flag.String("file", "", "input/output file (default stdout where applicable)")
	date := flag.String("date", "", "optional date filter for csv/xlsx (YYYY-MM-DD)")
	confirm := flag.Bool("confirm", false, "confirm irreversible operations")
	flag.Usage = usage
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		usage()
		return fmt.Errorf("command is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	logger := baseLogger.With().Str("component", "backup-cli").Logger()

	store, err := openStore(cfg, &logger)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch command {
	case "export":
		return exportBackup(ctx, store, *filePath)
	case "import":
		return importBackup(ctx, store, *filePath)
	case "csv":
		return exportCSV(ctx, store, *filePath, *date)
	case "xlsx":
		return exportExcel(ctx, store, *filePath, *date)
	case "reset":
		if !*confirm {
			return fmt.Errorf("reset wipes the entire collection; re-run with -confirm")
		}
		return store.Reset(ctx)
	default:
		usage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func openStore(cfg *config.Config, logger *zerolog.Logger) (domain.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		return database.NewDB(cfg.Storage.Path, logger)
	case config.DriverRedis:
		client := repository.NewRedisClient(cfg.Storage.Redis)
		if _, err := client.Ping(context.Background()).Result(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return repository.NewRedisStore(client, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}

func exportBackup(ctx context.Context, store domain.Store, filePath string) error {
	reservations, err := store.List(ctx)
	if err != nil {
		return err
	}

	doc, err := backup.Serialize(reservations, time.Now())
	if err != nil {
		return err
	}

	if filePath == "" {
		_, err = os.Stdout.Write(append(doc, '\n'))
		return err
	}
	return os.WriteFile(filePath, doc, 0o644)
}

func importBackup(ctx context.Context, store domain.Store, filePath string) error {
	if filePath == "" {
		return fmt.Errorf("import requires -file")
	}

	doc, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	reservations, meta, err := backup.Parse(doc)
	if err != nil {
		return err
	}

	for i := range reservations {
		reservations[i].Normalize()
	}

	if err := store.ReplaceAll(ctx, reservations); err != nil {
		return err
	}

	fmt.Printf("imported %d reservations (version %s)\n", meta.TotalReservations, meta.Version)
	return nil
}

func selectForExport(ctx context.Context, store domain.Store, date string) ([]models.Reservation, error) {
	reservations, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	if date != "" {
		if _, err := time.Parse(models.DateLayout, date); err != nil {
			return nil, fmt.Errorf("invalid date %q; expected YYYY-MM-DD", date)
		}
		reservations = models.SortByTime(models.FilterByDate(reservations, date))
	} else {
		reservations = models.SortByDateTime(reservations)
	}
	return reservations, nil
}

func exportCSV(ctx context.Context, store domain.Store, filePath, date string) error {
	reservations, err := selectForExport(ctx, store, date)
	if err != nil {
		return err
	}

	out := os.Stdout
	if filePath != "" {
		f, err := os.Create(filePath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return backup.WriteCSV(out, reservations)
}

func exportExcel(ctx context.Context, store domain.Store, filePath, date string) error {
	if filePath == "" {
		return fmt.Errorf("xlsx requires -file")
	}

	reservations, err := selectForExport(ctx, store, date)
	if err != nil {
		return err
	}

	f, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer f.Close()
	return backup.WriteExcel(f, reservations)
}
