package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/amishk599/hhvacancies/internal/config"
	"github.com/amishk599/hhvacancies/internal/store"
)

// closeTracker records whether the command released its store.
type closeTracker struct {
	*store.NopStore
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestStoreOptions(t *testing.T) {
	cfg, err := config.Parse([]byte("database:\n  driver: SQLite\n  name: test\n  sqlite_dir: /tmp/hh\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	opts, err := storeOptions(cfg.Database)
	if err != nil {
		t.Fatalf("storeOptions: %v", err)
	}
	if opts.Driver != store.DriverSQLite || opts.Name != "test" || opts.SQLiteDir != "/tmp/hh" {
		t.Errorf("unexpected options: %+v", opts)
	}
	if opts.BatchSize != store.DefaultBatchSize {
		t.Errorf("BatchSize = %d, want %d", opts.BatchSize, store.DefaultBatchSize)
	}
}

func TestStoreOptions_UnknownDriver(t *testing.T) {
	if _, err := storeOptions(config.DatabaseConfig{Driver: "mysql"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestBuildPipeline_Defaults(t *testing.T) {
	cfg, err := config.Parse(nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if _, err := buildPipeline(cfg, store.NewNopStore(), false, logger); err != nil {
		t.Fatalf("buildPipeline: %v", err)
	}
}

func TestReportList(t *testing.T) {
	list := reportList()
	for _, slug := range []string{"companies", "top", "average", "above-average", "keyword"} {
		if !strings.Contains(list, slug) {
			t.Errorf("report list misses %q:\n%s", slug, list)
		}
	}
}

func TestBrowse_SessionFailureClosesStore(t *testing.T) {
	tracker := &closeTracker{NopStore: store.NewNopStore()}

	origOpen, origSession := openStore, startSession
	t.Cleanup(func() { openStore, startSession = origOpen, origSession })
	openStore = func(context.Context, store.Options, bool) (store.Store, error) {
		return tracker, nil
	}
	startSession = func(context.Context, store.Store, io.Writer, bool) error {
		return errors.New("terminal closed")
	}

	cfg, err := config.Parse([]byte("database:\n  driver: sqlite\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	err = browse(context.Background(), &cobra.Command{}, cfg, logger)
	if !errors.Is(err, errLogged) {
		t.Fatalf("expected errLogged, got %v", err)
	}
	if !tracker.closed {
		t.Error("store was not closed after the session failed")
	}
	if !strings.Contains(logs.String(), "terminal closed") {
		t.Errorf("failure not logged: %s", logs.String())
	}
}
