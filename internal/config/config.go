package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/hhvacancies/internal/adapter"
)

const (
	// EnvConfigPath overrides the default config location.
	EnvConfigPath = "HHVACANCIES_CONFIG"
	// DefaultPath is used when neither the flag nor the env var is set.
	DefaultPath = "config.yaml"
)

// Config is the root configuration for hhvacancies.
type Config struct {
	API       APIConfig
	Retry     RetryConfig
	RateLimit RateLimitConfig
	Database  DatabaseConfig
	Ingest    IngestConfig
	Log       LogConfig
	Schedule  ScheduleConfig
}

// APIConfig selects what is fetched from hh.ru and how.
type APIConfig struct {
	BaseURL     string
	UserAgent   string
	Keyword     string
	EmployerIDs []string
	PerPage     int
	MaxPages    int
	Timeout     time.Duration // per request
}

// RetryConfig bounds retries of a single page.
type RetryConfig struct {
	MaxRetries  int
	BaseDelay   time.Duration
	OnExhausted string // "skip" or "abort"
}

// RateLimitConfig paces page requests.
type RateLimitConfig struct {
	MinDelay time.Duration // minimum gap between two requests
}

// DatabaseConfig describes the target database.
type DatabaseConfig struct {
	Driver    string `yaml:"driver"` // "postgres" or "sqlite"
	Name      string `yaml:"name"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	SSLMode   string `yaml:"sslmode"`
	SQLiteDir string `yaml:"sqlite_dir"`
	BatchSize int    `yaml:"batch_size"`
}

// IngestConfig tunes the pipeline.
type IngestConfig struct {
	DedupKey string `yaml:"dedup_key"` // "name" or "id"
}

// LogConfig controls the console level and the error log file.
type LogConfig struct {
	Level     string `yaml:"level"`
	ErrorFile string `yaml:"error_file"`
}

// ScheduleConfig drives the start command.
type ScheduleConfig struct {
	Cron string `yaml:"cron"`
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	API       rawAPIConfig       `yaml:"api"`
	Retry     rawRetryConfig     `yaml:"retry"`
	RateLimit rawRateLimitConfig `yaml:"rate_limit"`
	Database  DatabaseConfig     `yaml:"database"`
	Ingest    IngestConfig       `yaml:"ingest"`
	Log       LogConfig          `yaml:"log"`
	Schedule  ScheduleConfig     `yaml:"schedule"`
}

type rawAPIConfig struct {
	BaseURL     string   `yaml:"base_url"`
	UserAgent   string   `yaml:"user_agent"`
	Keyword     string   `yaml:"keyword"`
	EmployerIDs []string `yaml:"employer_ids"`
	PerPage     int      `yaml:"per_page"`
	MaxPages    int      `yaml:"max_pages"`
	Timeout     string   `yaml:"timeout"`
}

type rawRetryConfig struct {
	MaxRetries  *int   `yaml:"max_retries"`
	BaseDelay   string `yaml:"base_delay"`
	OnExhausted string `yaml:"on_exhausted"`
}

type rawRateLimitConfig struct {
	MinDelay string `yaml:"min_delay"`
}

// Locate returns the config path to use and whether it was asked for
// explicitly (flag or env var) rather than being the default.
func Locate(flagPath string) (string, bool) {
	if flagPath != "" {
		return flagPath, true
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env, true
	}
	return DefaultPath, false
}

// LoadOrDefault resolves the config path, loads a .env file sitting next to
// it and parses the config. A missing default config yields the built-in
// defaults; a missing explicit config is an error.
func LoadOrDefault(flagPath string) (*Config, error) {
	path, explicit := Locate(flagPath)

	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	cfg, err := Load(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return Parse(nil)
	}
	return cfg, err
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse expands ${ENV} references in data, applies defaults and validates.
// Empty data yields the defaults.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	timeout, err := durationOr(raw.API.Timeout, 90*time.Second, "api.timeout")
	if err != nil {
		return nil, err
	}
	baseDelay, err := durationOr(raw.Retry.BaseDelay, 2*time.Second, "retry.base_delay")
	if err != nil {
		return nil, err
	}
	minDelay, err := durationOr(raw.RateLimit.MinDelay, 250*time.Millisecond, "rate_limit.min_delay")
	if err != nil {
		return nil, err
	}

	maxRetries := 3
	if raw.Retry.MaxRetries != nil {
		maxRetries = *raw.Retry.MaxRetries
	}

	db := raw.Database
	db.Driver = strings.ToLower(stringOr(db.Driver, "postgres"))
	db.Name = stringOr(db.Name, "vacancies")
	db.Host = stringOr(db.Host, "localhost")
	db.User = stringOr(db.User, "postgres")
	db.SSLMode = stringOr(db.SSLMode, "disable")
	db.SQLiteDir = stringOr(db.SQLiteDir, "data")
	if db.Port == 0 {
		db.Port = 5432
	}
	if db.BatchSize == 0 {
		db.BatchSize = 500
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL:     stringOr(raw.API.BaseURL, "https://api.hh.ru"),
			UserAgent:   raw.API.UserAgent,
			Keyword:     raw.API.Keyword,
			EmployerIDs: raw.API.EmployerIDs,
			PerPage:     intOr(raw.API.PerPage, 100),
			MaxPages:    intOr(raw.API.MaxPages, 20),
			Timeout:     timeout,
		},
		Retry: RetryConfig{
			MaxRetries:  maxRetries,
			BaseDelay:   baseDelay,
			OnExhausted: stringOr(raw.Retry.OnExhausted, "skip"),
		},
		RateLimit: RateLimitConfig{MinDelay: minDelay},
		Database:  db,
		Ingest:    IngestConfig{DedupKey: stringOr(raw.Ingest.DedupKey, "name")},
		Log: LogConfig{
			Level:     strings.ToLower(stringOr(raw.Log.Level, "info")),
			ErrorFile: stringOr(raw.Log.ErrorFile, "errors.log"),
		},
		Schedule: ScheduleConfig{Cron: stringOr(raw.Schedule.Cron, "@daily")},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.API.PerPage < 1 || cfg.API.PerPage > 100 {
		return fmt.Errorf("api.per_page must be between 1 and 100, got %d", cfg.API.PerPage)
	}
	if cfg.API.MaxPages < 1 || cfg.API.MaxPages > adapter.DefaultMaxPages {
		return fmt.Errorf("api.max_pages must be between 1 and %d, got %d", adapter.DefaultMaxPages, cfg.API.MaxPages)
	}
	if cfg.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %v", cfg.API.Timeout)
	}

	if cfg.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative, got %d", cfg.Retry.MaxRetries)
	}
	if cfg.Retry.OnExhausted != "skip" && cfg.Retry.OnExhausted != "abort" {
		return fmt.Errorf("retry.on_exhausted must be \"skip\" or \"abort\", got %q", cfg.Retry.OnExhausted)
	}
	if cfg.RateLimit.MinDelay < 0 {
		return fmt.Errorf("rate_limit.min_delay must not be negative, got %v", cfg.RateLimit.MinDelay)
	}

	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.Host == "" {
			return fmt.Errorf("database.host is required for postgres")
		}
	case "sqlite":
	default:
		return fmt.Errorf("database.driver must be \"postgres\" or \"sqlite\", got %q", cfg.Database.Driver)
	}
	if cfg.Database.BatchSize < 1 {
		return fmt.Errorf("database.batch_size must be positive, got %d", cfg.Database.BatchSize)
	}

	if cfg.Ingest.DedupKey != "name" && cfg.Ingest.DedupKey != "id" {
		return fmt.Errorf("ingest.dedup_key must be \"name\" or \"id\", got %q", cfg.Ingest.DedupKey)
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", cfg.Log.Level)
	}

	return nil
}

func durationOr(s string, fallback time.Duration, field string) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	return d, nil
}

func stringOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func intOr(n, fallback int) int {
	if n == 0 {
		return fallback
	}
	return n
}
