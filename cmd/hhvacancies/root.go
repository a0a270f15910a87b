package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/hhvacancies/internal/adapter"
	"github.com/amishk599/hhvacancies/internal/config"
	"github.com/amishk599/hhvacancies/internal/ingest"
	"github.com/amishk599/hhvacancies/internal/logging"
	"github.com/amishk599/hhvacancies/internal/model"
	"github.com/amishk599/hhvacancies/internal/ratelimit"
	"github.com/amishk599/hhvacancies/internal/retry"
	"github.com/amishk599/hhvacancies/internal/store"
)

var (
	cfgPath string
	debug   bool
	keyword string
)

var rootCmd = &cobra.Command{
	Use:   "hhvacancies",
	Short: "Load hh.ru vacancies into a database and query them",
	Long: "hhvacancies fetches vacancy listings from the public hh.ru API, stores employers " +
		"and vacancies in PostgreSQL or SQLite and answers a fixed set of salary reports.",
	// With no subcommand: refresh the database once, then open the report menu.
	RunE:          runDefault,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// errLogged is returned by commands that already logged the failure. Commands
// return it instead of exiting once they hold resources that must be released.
var errLogged = errors.New("command failed")

var openStore = store.Open

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: "+config.EnvConfigPath+" env var or ./"+config.DefaultPath+")")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&keyword, "keyword", "k", "", "search text sent to hh.ru (overrides api.keyword)")
}

// setup loads the config and builds the logger. The returned func closes the
// error log file.
func setup() (*config.Config, *slog.Logger, func()) {
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		logging.New(os.Stderr, slog.LevelInfo, nil).Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if keyword != "" {
		cfg.API.Keyword = keyword
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	if debug {
		level = slog.LevelDebug
	}

	logger, closeLog, err := logging.Open(level, cfg.Log.ErrorFile)
	if err != nil {
		logging.New(os.Stderr, level, nil).Error("failed to open error log", "error", err)
		os.Exit(1)
	}
	return cfg, logger, func() { _ = closeLog() }
}

func storeOptions(db config.DatabaseConfig) (store.Options, error) {
	driver, err := store.ParseDriver(db.Driver)
	if err != nil {
		return store.Options{}, err
	}
	return store.Options{
		Driver:    driver,
		Name:      db.Name,
		Host:      db.Host,
		Port:      db.Port,
		User:      db.User,
		Password:  db.Password,
		SSLMode:   db.SSLMode,
		SQLiteDir: db.SQLiteDir,
		BatchSize: db.BatchSize,
	}, nil
}

// buildSource stacks the hh.ru client under rate limiting, retries and the
// paginator. Every retry attempt waits for the limiter too.
func buildSource(cfg *config.Config, logger *slog.Logger) (*adapter.Paginator, error) {
	policy, err := adapter.ParseExhaustedPolicy(cfg.Retry.OnExhausted)
	if err != nil {
		return nil, err
	}

	var fetcher model.PageFetcher = adapter.NewHHAdapter(adapter.HHConfig{
		BaseURL:   cfg.API.BaseURL,
		UserAgent: cfg.API.UserAgent,
		Timeout:   cfg.API.Timeout,
		PerPage:   cfg.API.PerPage,
	})
	fetcher = ratelimit.NewRateLimitedFetcher(fetcher, ratelimit.NewLimiter(cfg.RateLimit.MinDelay))
	fetcher = retry.NewRetryFetcher(fetcher, cfg.Retry.MaxRetries, cfg.Retry.BaseDelay, logger)

	logger.Debug("fetcher configured",
		"base_url", cfg.API.BaseURL,
		"per_page", cfg.API.PerPage,
		"max_pages", cfg.API.MaxPages,
		"min_delay", cfg.RateLimit.MinDelay.String(),
		"max_retries", cfg.Retry.MaxRetries,
		"on_exhausted", policy,
	)
	return adapter.NewPaginator(fetcher, cfg.API.MaxPages, policy, logger), nil
}

func buildPipeline(cfg *config.Config, st model.VacancyStore, resetSchema bool, logger *slog.Logger) (*ingest.Pipeline, error) {
	source, err := buildSource(cfg, logger)
	if err != nil {
		return nil, err
	}
	key, err := ingest.ParseDedupKey(cfg.Ingest.DedupKey)
	if err != nil {
		return nil, err
	}
	query := model.SearchQuery{Text: cfg.API.Keyword, EmployerIDs: cfg.API.EmployerIDs}
	return ingest.NewPipeline(source, st, query, ingest.Options{DedupKey: key, ResetSchema: resetSchema}, logger), nil
}

func printSummary(cmd *cobra.Command, sum ingest.Summary) {
	fmt.Fprintf(cmd.OutOrStdout(),
		"Загружено: %d записей, компаний: %d, вакансий: %d (пропущено записей: %d, страниц: %d) за %s\n",
		sum.Fetched, sum.Employers, sum.Vacancies, sum.Rejected, sum.SkippedPages, sum.Duration.Round(time.Millisecond),
	)
}
