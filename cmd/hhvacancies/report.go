package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/hhvacancies/internal/report"
)

var asTable bool

var reportCmd = &cobra.Command{
	Use:   "report <id|slug> [keyword]",
	Short: "Print one report from the stored data",
	Long:  "Runs a single report against the database without refreshing it.\n\nReports:\n" + reportList(),
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&asTable, "table", false, "render the result as a table")
	rootCmd.AddCommand(reportCmd)
}

func reportList() string {
	var b strings.Builder
	for _, r := range report.Reports {
		fmt.Fprintf(&b, "  %s  %-14s %s\n", r.ID, r.Slug, r.Title)
	}
	return b.String()
}

func runReport(cmd *cobra.Command, args []string) error {
	rep, ok := report.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown report %q", args[0])
	}
	var kw string
	if len(args) == 2 {
		kw = args[1]
	}
	if rep.NeedsKeyword && strings.TrimSpace(kw) == "" {
		return fmt.Errorf("report %s needs a keyword", rep.Slug)
	}

	cfg, logger, closeLog := setup()
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts, err := storeOptions(cfg.Database)
	if err != nil {
		logger.Error("invalid database config", "error", err)
		os.Exit(1)
	}
	st, err := openStore(ctx, opts, false)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	res, err := rep.Run(ctx, st, kw)
	if err != nil {
		logger.Error("query failed", "report", rep.Slug, "error", err)
		return errLogged
	}
	report.Render(cmd.OutOrStdout(), res, asTable)
	return nil
}
