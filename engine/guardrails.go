package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// GuardrailResult is the outcome of a guardrails check.
type GuardrailResult struct {
	Allowed bool
	Reason  string
}

// Guardrails gates queries before any work is done for them.
type Guardrails interface {
	Check(ctx context.Context, userID string) (*GuardrailResult, error)
}

// RateLimiter is a fixed-window per-user rate limiter on a ristretto
// cache: one TTL'd counter per user, reset when the window entry expires.
type RateLimiter struct {
	cache  *ristretto.Cache
	limit  int
	window time.Duration
}

// windowCounter anchors the count to the start of its window so later
// requests cannot stretch the window.
type windowCounter struct {
	count int
	start time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per user per
// window.
func NewRateLimiter(limit int, window time.Duration) (*RateLimiter, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create counter cache: %w", err)
	}
	return &RateLimiter{cache: cache, limit: limit, window: window}, nil
}

// Check counts the request against the user's current window. The window
// starts at the first counted request and never moves; a fresh one opens
// only after the previous window's span has fully elapsed.
func (r *RateLimiter) Check(ctx context.Context, userID string) (*GuardrailResult, error) {
	now := time.Now()

	wc := windowCounter{start: now}
	if v, ok := r.cache.Get(userID); ok {
		if prev := v.(windowCounter); now.Sub(prev.start) < r.window {
			wc = prev
		}
	}
	if wc.count >= r.limit {
		return &GuardrailResult{
			Allowed: false,
			Reason:  fmt.Sprintf("more than %d requests in %s", r.limit, r.window),
		}, nil
	}

	wc.count++
	// TTL covers only the remainder of the window, so the entry expires
	// when the window closes rather than r.window after the last request.
	r.cache.SetWithTTL(userID, wc, 1, r.window-now.Sub(wc.start))
	// Ristretto applies writes asynchronously; wait so the next check for
	// this user sees the incremented counter.
	r.cache.Wait()

	return &GuardrailResult{Allowed: true}, nil
}

// Close releases the counter cache.
func (r *RateLimiter) Close() {
	r.cache.Close()
}
