// Package ingest runs one full refresh: fetch every page, normalize, derive
// employers, then persist employers before vacancies.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/hhvacancies/internal/adapter"
	"github.com/amishk599/hhvacancies/internal/model"
	"github.com/amishk599/hhvacancies/internal/normalize"
)

// ListingSource gathers raw listings for a query across all pages.
type ListingSource interface {
	Fetch(ctx context.Context, q model.SearchQuery) (adapter.FetchResult, error)
}

// Summary describes one completed run.
type Summary struct {
	RunID        string
	Fetched      int
	SkippedPages int
	Rejected     int
	Employers    int
	Vacancies    int
	Duration     time.Duration
}

// Options tune a pipeline.
type Options struct {
	DedupKey DedupKey
	// ResetSchema drops and recreates the tables after fetching and before
	// writing.
	ResetSchema bool
}

// Pipeline owns the ingestion flow for a single query.
type Pipeline struct {
	source ListingSource
	store  model.VacancyStore
	query  model.SearchQuery
	opts   Options
	logger *slog.Logger
}

// NewPipeline creates a pipeline wired with its source and store.
func NewPipeline(
	source ListingSource,
	store model.VacancyStore,
	query model.SearchQuery,
	opts Options,
	logger *slog.Logger,
) *Pipeline {
	if opts.DedupKey == "" {
		opts.DedupKey = DedupByName
	}
	return &Pipeline{
		source: source,
		store:  store,
		query:  query,
		opts:   opts,
		logger: logger,
	}
}

// Run executes one refresh. Nothing is written when fetching fails. A failed
// vacancy write leaves the already committed employers in place.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	sum := Summary{RunID: uuid.NewString()}
	logger := p.logger.With("run_id", sum.RunID)

	logger.Info("ingest started", "keyword", p.query.Text, "employer_ids", len(p.query.EmployerIDs))

	res, err := p.source.Fetch(ctx, p.query)
	if err != nil {
		return sum, fmt.Errorf("ingest %s: fetching: %w", sum.RunID, err)
	}
	sum.Fetched = len(res.Records)
	sum.SkippedPages = len(res.SkippedPages)

	vacancies, rejected := normalize.NormalizeAll(res.Records, logger)
	sum.Rejected = len(rejected)

	employers, rows := BuildRows(vacancies, p.opts.DedupKey, logger)

	if p.opts.ResetSchema {
		if err := p.store.CreateSchema(ctx); err != nil {
			return sum, fmt.Errorf("ingest %s: creating schema: %w", sum.RunID, err)
		}
	}

	if err := p.store.WriteEmployers(ctx, employers); err != nil {
		return sum, fmt.Errorf("ingest %s: writing employers: %w", sum.RunID, err)
	}
	sum.Employers = len(employers)

	if err := p.store.WriteVacancies(ctx, rows); err != nil {
		return sum, fmt.Errorf("ingest %s: writing vacancies: %w", sum.RunID, err)
	}
	sum.Vacancies = len(rows)
	sum.Duration = time.Since(start)

	logger.Info("ingest finished",
		"fetched", sum.Fetched,
		"skipped_pages", sum.SkippedPages,
		"rejected", sum.Rejected,
		"employers", sum.Employers,
		"vacancies", sum.Vacancies,
		"duration", sum.Duration,
	)
	return sum, nil
}
