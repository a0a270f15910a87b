package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amishk599/hhvacancies/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockFetcher calls fn on each invocation, tracking call count.
type mockFetcher struct {
	calls int
	pages []int
	fn    func(attempt int) ([]model.RawRecord, error)
}

func (m *mockFetcher) FetchPage(_ context.Context, _ model.SearchQuery, page int) ([]model.RawRecord, error) {
	m.calls++
	m.pages = append(m.pages, page)
	return m.fn(m.calls)
}

var query = model.SearchQuery{Text: "golang"}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	mock := &mockFetcher{fn: func(_ int) ([]model.RawRecord, error) {
		return []model.RawRecord{{"id": "1"}}, nil
	}}

	rf := NewRetryFetcher(mock, 2, 10*time.Millisecond, discardLogger())
	got, err := rf.FetchPage(context.Background(), query, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("unexpected records: %v", got)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestRetry_RetriesOn5xx_SamePage(t *testing.T) {
	mock := &mockFetcher{fn: func(attempt int) ([]model.RawRecord, error) {
		if attempt == 1 {
			return nil, &model.HTTPError{StatusCode: 503, Err: errors.New("service unavailable")}
		}
		return []model.RawRecord{{"id": "1"}}, nil
	}}

	rf := NewRetryFetcher(mock, 2, 10*time.Millisecond, discardLogger())
	if _, err := rf.FetchPage(context.Background(), query, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
	for _, p := range mock.pages {
		if p != 7 {
			t.Errorf("retry requested page %d, want 7", p)
		}
	}
}

func TestRetry_RetriesOn429WithRetryAfter(t *testing.T) {
	mock := &mockFetcher{fn: func(attempt int) ([]model.RawRecord, error) {
		if attempt == 1 {
			return nil, &model.HTTPError{StatusCode: 429, RetryAfter: 20 * time.Millisecond, Err: errors.New("slow down")}
		}
		return nil, nil
	}}

	rf := NewRetryFetcher(mock, 1, time.Hour, discardLogger())
	start := time.Now()
	if _, err := rf.FetchPage(context.Background(), query, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Retry-After not honoured, waited %v", elapsed)
	}
}

func TestRetry_DoesNotRetryOn4xx(t *testing.T) {
	mock := &mockFetcher{fn: func(_ int) ([]model.RawRecord, error) {
		return nil, &model.HTTPError{StatusCode: 400, Err: errors.New("bad request")}
	}}

	rf := NewRetryFetcher(mock, 2, 10*time.Millisecond, discardLogger())
	_, err := rf.FetchPage(context.Background(), query, 0)
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 400 {
		t.Fatalf("expected HTTPError with status 400, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", mock.calls)
	}
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	mock := &mockFetcher{fn: func(_ int) ([]model.RawRecord, error) {
		return nil, &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	rf := NewRetryFetcher(mock, 2, 10*time.Millisecond, discardLogger())
	_, err := rf.FetchPage(context.Background(), query, 0)
	if err == nil {
		t.Fatal("expected error after max retries, got nil")
	}
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Errorf("last error not wrapped: %v", err)
	}
	// 1 initial + 2 retries
	if mock.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.calls)
	}
}

func TestRetry_RespectsContextCancellation(t *testing.T) {
	mock := &mockFetcher{fn: func(_ int) ([]model.RawRecord, error) {
		return nil, &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rf := NewRetryFetcher(mock, 2, time.Second, discardLogger())
	_, err := rf.FetchPage(ctx, query, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.calls != 1 {
		t.Errorf("expected no retry after cancellation, got %d calls", mock.calls)
	}
}

func TestRetry_RetriesRequestTimeout(t *testing.T) {
	mock := &mockFetcher{fn: func(attempt int) ([]model.RawRecord, error) {
		if attempt == 1 {
			return nil, fmt.Errorf("hh fetch page 0: %w", context.DeadlineExceeded)
		}
		return []model.RawRecord{{"id": "1"}}, nil
	}}

	rf := NewRetryFetcher(mock, 2, 10*time.Millisecond, discardLogger())
	got, err := rf.FetchPage(context.Background(), query, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.calls != 2 || len(got) != 1 {
		t.Fatalf("expected a successful retry, got %d calls and %v", mock.calls, got)
	}
}

func TestRetry_CallerDeadlineStopsRetrying(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	mock := &mockFetcher{fn: func(_ int) ([]model.RawRecord, error) {
		return nil, fmt.Errorf("hh fetch page 0: %w", context.DeadlineExceeded)
	}}

	rf := NewRetryFetcher(mock, 2, 10*time.Millisecond, discardLogger())
	_, err := rf.FetchPage(ctx, query, 0)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if mock.calls != 1 {
		t.Errorf("expected no retry once the caller's deadline passed, got %d calls", mock.calls)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"request timeout", context.DeadlineExceeded, true},
		{"429", &model.HTTPError{StatusCode: 429}, true},
		{"502", &model.HTTPError{StatusCode: 502}, true},
		{"403", &model.HTTPError{StatusCode: 403}, false},
		{"network", errors.New("connection reset"), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := isRetryable(tc.err); got != tc.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
