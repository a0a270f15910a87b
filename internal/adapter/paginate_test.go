package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/hhvacancies/internal/model"
	"github.com/amishk599/hhvacancies/internal/retry"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// pageFunc adapts a function into a model.PageFetcher.
type pageFunc func(ctx context.Context, q model.SearchQuery, page int) ([]model.RawRecord, error)

func (f pageFunc) FetchPage(ctx context.Context, q model.SearchQuery, page int) ([]model.RawRecord, error) {
	return f(ctx, q, page)
}

func TestPaginator_FullPagesStopAtCap(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		w.Write([]byte(fullPage(page, 100)))
	}))
	defer srv.Close()

	p := NewPaginator(NewHHAdapter(HHConfig{BaseURL: srv.URL}), 0, SkipPage, discardLogger())
	res, err := p.Fetch(context.Background(), model.SearchQuery{Text: "go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := requests.Load(); got != DefaultMaxPages {
		t.Errorf("expected %d requests, got %d", DefaultMaxPages, got)
	}
	if len(res.Records) > 2000 {
		t.Errorf("expected at most 2000 records, got %d", len(res.Records))
	}
	if len(res.Records) != 2000 || res.Pages != 20 {
		t.Errorf("records = %d, pages = %d", len(res.Records), res.Pages)
	}
}

func TestPaginator_PagesInOrderNoEarlyStop(t *testing.T) {
	var pages []int
	fetcher := pageFunc(func(_ context.Context, _ model.SearchQuery, page int) ([]model.RawRecord, error) {
		pages = append(pages, page)
		if page >= 2 {
			return nil, nil
		}
		return []model.RawRecord{{"id": strconv.Itoa(page)}}, nil
	})

	res, err := NewPaginator(fetcher, 5, SkipPage, discardLogger()).Fetch(context.Background(), model.SearchQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pages) != 5 {
		t.Fatalf("expected 5 page requests, got %v", pages)
	}
	for i, p := range pages {
		if p != i {
			t.Errorf("request %d asked for page %d", i, p)
		}
	}
	if len(res.Records) != 2 {
		t.Errorf("expected 2 records, got %d", len(res.Records))
	}
	if id, _ := res.Records[1].String("id"); id != "1" {
		t.Errorf("records out of page order: %v", res.Records)
	}
}

func TestPaginator_SkipPolicyContinues(t *testing.T) {
	fetcher := pageFunc(func(_ context.Context, _ model.SearchQuery, page int) ([]model.RawRecord, error) {
		if page == 1 {
			return nil, &model.HTTPError{StatusCode: 503}
		}
		return []model.RawRecord{{"id": strconv.Itoa(page)}}, nil
	})

	res, err := NewPaginator(fetcher, 3, SkipPage, discardLogger()).Fetch(context.Background(), model.SearchQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.SkippedPages) != 1 || res.SkippedPages[0] != 1 {
		t.Errorf("SkippedPages = %v", res.SkippedPages)
	}
	if len(res.Records) != 2 || res.Pages != 2 {
		t.Errorf("records = %d, pages = %d", len(res.Records), res.Pages)
	}
}

func TestPaginator_AbortPolicyStops(t *testing.T) {
	calls := 0
	fetcher := pageFunc(func(_ context.Context, _ model.SearchQuery, page int) ([]model.RawRecord, error) {
		calls++
		if page == 1 {
			return nil, &model.HTTPError{StatusCode: 500}
		}
		return []model.RawRecord{{"id": strconv.Itoa(page)}}, nil
	})

	res, err := NewPaginator(fetcher, 5, AbortRun, discardLogger()).Fetch(context.Background(), model.SearchQuery{})
	var pageErr *PageError
	if !errors.As(err, &pageErr) || pageErr.Page != 1 {
		t.Fatalf("expected PageError for page 1, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
	if len(res.Records) != 1 {
		t.Errorf("expected partial records from page 0, got %d", len(res.Records))
	}
}

func TestPaginator_CancellationAlwaysAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	fetcher := pageFunc(func(ctx context.Context, _ model.SearchQuery, page int) ([]model.RawRecord, error) {
		calls++
		if page == 2 {
			cancel()
			return nil, ctx.Err()
		}
		return []model.RawRecord{{"id": strconv.Itoa(page)}}, nil
	})

	_, err := NewPaginator(fetcher, 10, SkipPage, discardLogger()).Fetch(ctx, model.SearchQuery{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected fetching to stop at page 2, got %d calls", calls)
	}
}

func TestPaginator_RequestTimeoutFollowsSkipPolicy(t *testing.T) {
	fetcher := pageFunc(func(_ context.Context, _ model.SearchQuery, page int) ([]model.RawRecord, error) {
		if page == 0 {
			return nil, fmt.Errorf("hh fetch page 0: %w", context.DeadlineExceeded)
		}
		return []model.RawRecord{{"id": strconv.Itoa(page)}}, nil
	})

	res, err := NewPaginator(fetcher, 3, SkipPage, discardLogger()).Fetch(context.Background(), model.SearchQuery{})
	if err != nil {
		t.Fatalf("request timeout should not abort the run: %v", err)
	}
	if len(res.SkippedPages) != 1 || res.SkippedPages[0] != 0 {
		t.Errorf("SkippedPages = %v, want [0]", res.SkippedPages)
	}
	if res.Pages != 2 {
		t.Errorf("Pages = %d, want 2", res.Pages)
	}
}

// TestPaginator_SlowPageIsRetried drives the real client stack: the first
// request for page 0 outlives the client timeout and the retry succeeds.
func TestPaginator_SlowPageIsRetried(t *testing.T) {
	var pageZero atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 0 && pageZero.Add(1) == 1 {
			select {
			case <-time.After(300 * time.Millisecond):
			case <-r.Context().Done():
				return
			}
		}
		w.Write([]byte(fullPage(page, 2)))
	}))
	defer srv.Close()

	hh := NewHHAdapter(HHConfig{BaseURL: srv.URL, Timeout: 100 * time.Millisecond})
	fetcher := retry.NewRetryFetcher(hh, 2, 10*time.Millisecond, discardLogger())

	res, err := NewPaginator(fetcher, 3, SkipPage, discardLogger()).Fetch(context.Background(), model.SearchQuery{Text: "go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := pageZero.Load(); got != 2 {
		t.Errorf("expected page 0 to be requested twice, got %d", got)
	}
	if len(res.SkippedPages) != 0 {
		t.Errorf("SkippedPages = %v, want none", res.SkippedPages)
	}
	if len(res.Records) != 6 || res.Pages != 3 {
		t.Errorf("records = %d, pages = %d", len(res.Records), res.Pages)
	}
}

func TestParseExhaustedPolicy(t *testing.T) {
	for in, want := range map[string]ExhaustedPolicy{"": SkipPage, "skip": SkipPage, "abort": AbortRun} {
		got, err := ParseExhaustedPolicy(in)
		if err != nil || got != want {
			t.Errorf("ParseExhaustedPolicy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseExhaustedPolicy("retry-forever"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
