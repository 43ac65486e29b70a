package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Limit caps requests per sliding window.
type Limit struct {
	Window time.Duration
	Max    int64
}

// Store records a hit and reports how many hits the key has received
// inside the window, pruning expired entries.
type Store interface {
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string, limits []Limit) (allowed bool, err error)
}

// SlidingWindowLimiter checks every limit independently against the
// store; a request must pass all of them.
type SlidingWindowLimiter struct {
	store Store
}

// NewSlidingWindowLimiter creates a limiter over the given store.
func NewSlidingWindowLimiter(store Store) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{store: store}
}

func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string, limits []Limit) (bool, error) {
	for _, limit := range limits {
		// Window length in the key keeps counters for different
		// windows of the same client independent.
		windowKey := fmt.Sprintf("%s:%d", key, limit.Window.Milliseconds())

		count, err := l.store.Record(ctx, windowKey, limit.Window)
		if err != nil {
			return false, err
		}

		if count > limit.Max {
			return false, nil
		}
	}

	return true, nil
}
