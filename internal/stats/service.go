package stats

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// TopLimit caps the all-time ranking.
	TopLimit = 10
	// TrendingLimit caps the recent-activity ranking.
	TrendingLimit = 10
	// ReferrerLimit caps the per-link referrer breakdown.
	ReferrerLimit = 5

	// DetailWindow is the fixed recent-clicks window of the detail view,
	// independent of the trending hours parameter.
	DetailWindow = 24 * time.Hour

	// queryTimeout bounds pool acquisition and query execution for a
	// single request.
	queryTimeout = 5 * time.Second
)

// Service answers the three stats query shapes over a Repository.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a stats service backed by the given repository.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// TopLinks returns the most-clicked links of all time, best first.
func (s *Service) TopLinks(ctx context.Context) ([]TopLink, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	links, err := s.repo.TopLinks(ctx, TopLimit)
	if err != nil {
		s.logger.Error("top links query failed", zap.Error(err))

		return nil, err
	}

	if links == nil {
		links = []TopLink{}
	}

	return links, nil
}

// Trending ranks links by click volume inside the last hours hours.
// A non-positive window places the cutoff in the present or future and
// therefore matches nothing.
func (s *Service) Trending(ctx context.Context, hours float64) ([]TrendingLink, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cutoff := s.now().Add(-time.Duration(hours * float64(time.Hour)))

	links, err := s.repo.TrendingLinks(ctx, cutoff, TrendingLimit)
	if err != nil {
		s.logger.Error("trending query failed",
			zap.Float64("hours", hours),
			zap.Error(err),
		)

		return nil, err
	}

	if links == nil {
		links = []TrendingLink{}
	}

	return links, nil
}

// LinkDetail composes the aggregate row, the 24h event count, and the
// referrer breakdown for one short code. The three reads are independent
// and issued concurrently; the first failure cancels the others and fails
// the whole composition. A missing aggregate row yields ErrNotFound even
// when the other reads would have produced data.
func (s *Service) LinkDetail(ctx context.Context, shortCode string) (*LinkDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var (
		agg       *Aggregate
		recent    int64
		referrers []ReferrerCount
	)

	cutoff := s.now().Add(-DetailWindow)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		agg, err = s.repo.Aggregate(gctx, shortCode)

		return err
	})

	g.Go(func() error {
		var err error
		recent, err = s.repo.EventCount(gctx, shortCode, cutoff)

		return err
	})

	g.Go(func() error {
		var err error
		referrers, err = s.repo.TopReferrers(gctx, shortCode, ReferrerLimit)

		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}

		s.logger.Error("link detail query failed",
			zap.String("shortCode", shortCode),
			zap.Error(err),
		)

		return nil, err
	}

	if referrers == nil {
		referrers = []ReferrerCount{}
	}

	return &LinkDetail{
		ShortCode:    agg.ShortCode,
		TotalClicks:  agg.TotalClicks,
		Last24Hours:  recent,
		LastSeen:     agg.LastSeen,
		TopReferrers: referrers,
	}, nil
}
