package adapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amishk599/hhvacancies/internal/model"
)

// DefaultMaxPages is the hard page cap. With 100 listings per page a run never
// gathers more than 2000 records, which is also the deepest hh.ru will page.
const DefaultMaxPages = 20

// ExhaustedPolicy decides what happens to a page that still fails after the
// retry layer gave up.
type ExhaustedPolicy string

const (
	SkipPage ExhaustedPolicy = "skip"  // log the page and continue with the next one
	AbortRun ExhaustedPolicy = "abort" // stop and return the error
)

// ParseExhaustedPolicy validates a policy name from configuration.
func ParseExhaustedPolicy(s string) (ExhaustedPolicy, error) {
	switch p := ExhaustedPolicy(s); p {
	case SkipPage, AbortRun:
		return p, nil
	case "":
		return SkipPage, nil
	}
	return "", fmt.Errorf("unknown exhausted-retry policy %q (want %q or %q)", s, SkipPage, AbortRun)
}

// PageError reports the page that could not be fetched.
type PageError struct {
	Page int
	Err  error
}

func (e *PageError) Error() string { return fmt.Sprintf("page %d: %v", e.Page, e.Err) }

func (e *PageError) Unwrap() error { return e.Err }

// FetchResult is everything gathered by one paginated fetch.
type FetchResult struct {
	Records      []model.RawRecord // in page order, not deduplicated
	Pages        int               // pages fetched successfully
	SkippedPages []int
}

// Paginator walks pages 0..maxPages-1 sequentially. The page count is a fixed
// cap; it does not depend on what the API reports as the last page.
type Paginator struct {
	fetcher     model.PageFetcher
	maxPages    int
	onExhausted ExhaustedPolicy
	logger      *slog.Logger
}

// NewPaginator wraps a page fetcher (usually already decorated with retry and
// rate limiting). maxPages <= 0 selects DefaultMaxPages.
func NewPaginator(fetcher model.PageFetcher, maxPages int, onExhausted ExhaustedPolicy, logger *slog.Logger) *Paginator {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	if onExhausted == "" {
		onExhausted = SkipPage
	}
	return &Paginator{
		fetcher:     fetcher,
		maxPages:    maxPages,
		onExhausted: onExhausted,
		logger:      logger,
	}
}

// Fetch collects every page for q. On abort, or when ctx is cancelled, the
// records gathered so far are returned together with the error.
func (p *Paginator) Fetch(ctx context.Context, q model.SearchQuery) (FetchResult, error) {
	var res FetchResult
	for page := 0; page < p.maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return res, &PageError{Page: page, Err: err}
		}

		batch, err := p.fetcher.FetchPage(ctx, q, page)
		if err != nil {
			// Only the caller's context aborts unconditionally; a request
			// timeout is a page failure like any other.
			if ctx.Err() != nil || p.onExhausted == AbortRun {
				return res, &PageError{Page: page, Err: err}
			}
			p.logger.Error("skipping page after failed retries", "page", page, "keyword", q.Text, "error", err)
			res.SkippedPages = append(res.SkippedPages, page)
			continue
		}

		res.Records = append(res.Records, batch...)
		res.Pages++
		p.logger.Debug("fetched page", "page", page, "items", len(batch))
	}

	p.logger.Info("fetched listings",
		"keyword", q.Text,
		"pages", res.Pages,
		"records", len(res.Records),
		"skipped_pages", len(res.SkippedPages),
	)
	return res, nil
}
