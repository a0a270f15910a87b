package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// RunFunc performs one full refresh.
type RunFunc func(ctx context.Context) error

// Scheduler runs a refresh immediately and then on a cron schedule. A tick
// that fires while the previous refresh is still running is skipped.
type Scheduler struct {
	run    RunFunc
	spec   string
	logger *slog.Logger
}

// NewScheduler validates spec (standard 5-field cron or a descriptor such as
// "@daily" or "@every 6h") and returns a scheduler for run.
func NewScheduler(run RunFunc, spec string, logger *slog.Logger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("parsing schedule %q: %w", spec, err)
	}
	return &Scheduler{run: run, spec: spec, logger: logger}, nil
}

// Run starts the loop. It runs one immediate refresh, then follows the
// schedule. It returns nil when ctx is cancelled, after any running refresh
// has finished.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "schedule", s.spec)

	s.runOnce(ctx)

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(s.spec, func() { s.runOnce(ctx) }); err != nil {
		return fmt.Errorf("scheduling refresh: %w", err)
	}
	c.Start()

	<-ctx.Done()
	s.logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	return nil
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.run(ctx); err != nil {
		s.logger.Error("scheduled refresh failed", "error", err)
	}
}
