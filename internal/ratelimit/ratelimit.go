package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/amishk599/hhvacancies/internal/model"
)

// NewLimiter returns a limiter that lets one request through every minDelay.
// A non-positive minDelay disables limiting.
func NewLimiter(minDelay time.Duration) *rate.Limiter {
	if minDelay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(minDelay), 1)
}

// RateLimitedFetcher waits on a shared limiter before delegating each page
// request. Placed under the retry decorator, retries are paced too.
type RateLimitedFetcher struct {
	inner   model.PageFetcher
	limiter *rate.Limiter
}

// NewRateLimitedFetcher wraps a PageFetcher with request pacing.
func NewRateLimitedFetcher(inner model.PageFetcher, limiter *rate.Limiter) *RateLimitedFetcher {
	return &RateLimitedFetcher{inner: inner, limiter: limiter}
}

// FetchPage waits for the limiter, then delegates to the wrapped fetcher.
func (f *RateLimitedFetcher) FetchPage(ctx context.Context, q model.SearchQuery, page int) ([]model.RawRecord, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait for page %d: %w", page, err)
	}
	return f.inner.FetchPage(ctx, q, page)
}
