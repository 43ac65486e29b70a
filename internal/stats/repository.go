package stats

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates that no aggregate row exists for a short code.
var ErrNotFound = errors.New("no aggregate for short code")

// Repository defines the read-only queries the stats service needs.
// Cutoff timestamps are computed by the caller so that implementations
// stay free of clock access.
type Repository interface {
	// TopLinks returns aggregates ordered by total clicks descending.
	// Ordering between equal totals is implementation-defined.
	TopLinks(ctx context.Context, limit int) ([]TopLink, error)

	// TrendingLinks ranks short codes by the number of events recorded
	// after the cutoff.
	TrendingLinks(ctx context.Context, cutoff time.Time, limit int) ([]TrendingLink, error)

	// Aggregate returns the aggregate row for a short code, or ErrNotFound.
	Aggregate(ctx context.Context, shortCode string) (*Aggregate, error)

	// EventCount counts events for a short code recorded after the cutoff.
	EventCount(ctx context.Context, shortCode string, cutoff time.Time) (int64, error)

	// TopReferrers ranks a link's referrers by click count, excluding
	// events recorded without a referrer.
	TopReferrers(ctx context.Context, shortCode string, limit int) ([]ReferrerCount, error)
}
