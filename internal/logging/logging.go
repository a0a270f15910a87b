// Package logging builds the process logger: a colored console handler plus a
// plain-text file that receives every ERROR record.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// ParseLevel maps a config level name ("debug", "info", "warn", "error").
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("parse log level %q: %w", s, err)
	}
	return l, nil
}

// New returns a logger writing to console at level and, when errOut is not
// nil, copying ERROR records to errOut.
func New(console io.Writer, level slog.Level, errOut io.Writer) *slog.Logger {
	handlers := []slog.Handler{
		tint.NewHandler(console, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}),
	}
	if errOut != nil {
		handlers = append(handlers, slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: slog.LevelError}))
	}
	return slog.New(&teeHandler{handlers: handlers})
}

// Open builds the logger for a command. The returned close func flushes the
// error log file and must be called on exit.
func Open(level slog.Level, errorFile string) (*slog.Logger, func() error, error) {
	if errorFile == "" {
		return New(os.Stderr, level, nil), func() error { return nil }, nil
	}
	f, err := os.OpenFile(errorFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening error log %s: %w", errorFile, err)
	}
	return New(os.Stderr, level, f), f.Close, nil
}

// teeHandler sends each record to every handler that accepts its level.
type teeHandler struct {
	handlers []slog.Handler
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t.handlers {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &teeHandler{handlers: next}
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithGroup(name)
	}
	return &teeHandler{handlers: next}
}
