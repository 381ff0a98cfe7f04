package config

import (
	"errors"
	"fmt"
	"os"

	"rezervator/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Storage    StorageConfig    `yaml:"storage"`
	Server     ServerConfig     `yaml:"server"`
	Backup     BackupConfig     `yaml:"backup"`
	Exports    ExportConfig     `yaml:"exports"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Google     GoogleConfig     `yaml:"google"`
	TablesPath string           `yaml:"tables_path"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

// StorageConfig выбирает активный вариант адаптера хранения.
// Отсутствие настроек выбранного варианта — ошибка запуска, а не
// молчаливый fallback.
type StorageConfig struct {
	Driver string      `yaml:"driver"` // sqlite | redis
	Path   string      `yaml:"path"`
	Redis  RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type ServerConfig struct {
	Port      int             `yaml:"port"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type TelegramConfig struct {
	BotToken     string `yaml:"bot_token"`
	ChatID       int64  `yaml:"chat_id"`
	ReminderTime string `yaml:"reminder_time"`
}

type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
}

func Load(configPath string) (*Config, error) {
	// .env подхватывается, если есть; его отсутствие не ошибка
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for the sqlite driver")
		}
	case DriverRedis:
		if c.Storage.Redis.Address == "" {
			return errors.New("storage.redis.address is required for the redis driver")
		}
	case "":
		return errors.New("storage.driver is required (sqlite or redis)")
	default:
		return fmt.Errorf("unknown storage.driver: %s", c.Storage.Driver)
	}

	return nil
}

// ValidateTables проверяет план зала на дубли и допустимые номера столов.
func ValidateTables(tables []models.Table) error {
	seen := make(map[int]bool)
	for _, table := range tables {
		if table.Number < models.MinTableNumber || table.Number > models.MaxTableNumber {
			return fmt.Errorf("table number %d is out of range [1, 100]", table.Number)
		}
		if seen[table.Number] {
			return fmt.Errorf("duplicate table number found: %d", table.Number)
		}
		seen[table.Number] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimit.Burst == 0 {
		c.Server.RateLimit.Burst = 5
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Backup.Schedule == "" {
		c.Backup.Schedule = "24h"
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "backups"
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
	if c.Telegram.ReminderTime == "" {
		c.Telegram.ReminderTime = fmt.Sprintf("%02d:00", models.ReminderHour)
	}
	if c.TablesPath == "" {
		c.TablesPath = "configs/tables.yaml"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}
