package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/hhvacancies/internal/config"
	"github.com/amishk599/hhvacancies/internal/menu"
	"github.com/amishk599/hhvacancies/internal/store"
)

var plainOutput bool

var startSession = func(ctx context.Context, st store.Store, out io.Writer, asTable bool) error {
	return menu.NewSession(st, out, asTable).Run(ctx)
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Browse reports interactively without refreshing",
	RunE:  runMenu,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&plainOutput, "plain", false, "print report rows as plain lines instead of tables")
	rootCmd.AddCommand(menuCmd)
}

// runDefault is the command run with no arguments: one refresh, then the menu.
func runDefault(cmd *cobra.Command, args []string) error {
	cfg, logger, closeLog := setup()
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sum, err := refresh(ctx, cfg, logger, refreshOptions{})
	if err != nil {
		logger.Error("ingest failed", "error", err)
		os.Exit(1)
	}
	printSummary(cmd, sum)

	return browse(ctx, cmd, cfg, logger)
}

func runMenu(cmd *cobra.Command, args []string) error {
	cfg, logger, closeLog := setup()
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return browse(ctx, cmd, cfg, logger)
}

func browse(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	opts, err := storeOptions(cfg.Database)
	if err != nil {
		logger.Error("invalid database config", "error", err)
		return errLogged
	}
	st, err := openStore(ctx, opts, false)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		return errLogged
	}
	defer st.Close()

	if err := startSession(ctx, st, cmd.OutOrStdout(), !plainOutput); err != nil {
		logger.Error("menu failed", "error", err)
		return errLogged
	}
	return nil
}
