package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/streampulse/analytics/internal/stats"
	"go.uber.org/zap"
)

// StatsHandler serves the read-only click statistics API.
type StatsHandler struct {
	service *stats.Service
	logger  *zap.Logger
	now     func() time.Time
}

// NewStatsHandler creates a stats handler over the given service.
func NewStatsHandler(service *stats.Service, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		service: service,
		logger:  logger,
		now:     time.Now,
	}
}

// Health reports liveness. It never touches the data store and never fails.
func (h *StatsHandler) Health(_ context.Context, _ *struct{}) (*HealthResponse, error) {
	resp := &HealthResponse{}
	resp.Body.Status = "ok"
	resp.Body.Timestamp = h.now().UTC()

	return resp, nil
}

// TopLinks returns the 10 most-clicked links of all time.
func (h *StatsHandler) TopLinks(ctx context.Context, _ *struct{}) (*TopLinksResponse, error) {
	links, err := h.service.TopLinks(ctx)
	if err != nil {
		return nil, InternalError("failed to load top links")
	}

	return &TopLinksResponse{Body: links}, nil
}

// Trending returns the 10 most-clicked links inside the requested window.
func (h *StatsHandler) Trending(ctx context.Context, req *TrendingRequest) (*TrendingResponse, error) {
	hours := stats.ParseHoursOrDefault(req.Hours)

	links, err := h.service.Trending(ctx, hours)
	if err != nil {
		return nil, InternalError("failed to load trending links")
	}

	return &TrendingResponse{Body: links}, nil
}

// LinkDetail returns the composed statistics for one short code, or 404
// when no aggregate exists for it.
func (h *StatsHandler) LinkDetail(ctx context.Context, req *LinkDetailRequest) (*LinkDetailResponse, error) {
	detail, err := h.service.LinkDetail(ctx, req.ShortCode)
	if err != nil {
		if errors.Is(err, stats.ErrNotFound) {
			return nil, NotFoundError("No stats for %s", req.ShortCode)
		}

		return nil, InternalError("failed to load link stats")
	}

	return &LinkDetailResponse{Body: *detail}, nil
}
