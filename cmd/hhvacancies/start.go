package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/hhvacancies/internal/scheduler"
)

var cronSpec string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Refresh the database on a schedule",
	Long:  "Runs one refresh immediately, then follows schedule.cron; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	startCmd.Flags().StringVar(&cronSpec, "cron", "", "cron expression or descriptor (overrides schedule.cron)")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, logger, closeLog := setup()
	defer closeLog()

	spec := cfg.Schedule.Cron
	if cronSpec != "" {
		spec = cronSpec
	}

	logger.Info("config loaded",
		"keyword", cfg.API.Keyword,
		"employer_ids", len(cfg.API.EmployerIDs),
		"driver", cfg.Database.Driver,
		"database", cfg.Database.Name,
		"schedule", spec,
	)

	sched, err := scheduler.NewScheduler(func(ctx context.Context) error {
		sum, err := refresh(ctx, cfg, logger, refreshOptions{})
		if err != nil {
			return err
		}
		printSummary(cmd, sum)
		return nil
	}, spec, logger)
	if err != nil {
		logger.Error("invalid schedule", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
