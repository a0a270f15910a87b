package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/hhvacancies/internal/config"
	"github.com/amishk599/hhvacancies/internal/ingest"
	"github.com/amishk599/hhvacancies/internal/store"
)

var (
	dryRun     bool
	keepSchema bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch vacancies once and load them into the database",
	Long: "One-shot refresh: recreates the database, fetches every page for the configured " +
		"keyword, then writes employers and vacancies. --keep-schema writes into the existing tables.",
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "fetch and normalize but do not touch the database")
	runCmd.Flags().BoolVar(&keepSchema, "keep-schema", false, "keep the existing database and tables")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, logger, closeLog := setup()
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sum, err := refresh(ctx, cfg, logger, refreshOptions{dryRun: dryRun, keepSchema: keepSchema})
	if err != nil {
		logger.Error("ingest failed", "error", err)
		os.Exit(1)
	}
	printSummary(cmd, sum)
	return nil
}

type refreshOptions struct {
	dryRun     bool
	keepSchema bool
}

// refresh performs one full ingest against a freshly opened store and closes
// it afterwards.
func refresh(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts refreshOptions) (ingest.Summary, error) {
	var st store.Store
	if opts.dryRun {
		logger.Info("dry-run mode enabled, nothing will be written")
		st = store.NewNopStore()
	} else {
		dbOpts, err := storeOptions(cfg.Database)
		if err != nil {
			return ingest.Summary{}, err
		}
		st, err = openStore(ctx, dbOpts, !opts.keepSchema)
		if err != nil {
			return ingest.Summary{}, err
		}
	}
	defer st.Close()

	resetSchema := !opts.dryRun && !opts.keepSchema
	pipeline, err := buildPipeline(cfg, st, resetSchema, logger)
	if err != nil {
		return ingest.Summary{}, err
	}
	return pipeline.Run(ctx)
}
