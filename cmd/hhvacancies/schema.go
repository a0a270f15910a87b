package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Recreate the database and create empty tables",
	RunE:  runSchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	cfg, logger, closeLog := setup()
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts, err := storeOptions(cfg.Database)
	if err != nil {
		logger.Error("invalid database config", "error", err)
		os.Exit(1)
	}

	st, err := openStore(ctx, opts, true)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.CreateSchema(ctx); err != nil {
		logger.Error("failed to create schema", "error", err)
		return errLogged
	}

	logger.Info("schema created", "driver", opts.Driver, "database", opts.Name)
	fmt.Fprintln(cmd.OutOrStdout(), "Таблицы созданы")
	return nil
}
