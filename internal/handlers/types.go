package handlers

import (
	"time"

	"github.com/streampulse/analytics/internal/stats"
)

// HealthResponse is the response for the health check endpoint.
type HealthResponse struct {
	Body struct {
		Status    string    `doc:"Fixed status marker"     example:"ok"                   json:"status"`
		Timestamp time.Time `doc:"Current server time"     example:"2024-01-01T00:00:00Z" json:"timestamp"`
	}
}

// TopLinksResponse is the ordered all-time ranking, most-clicked first.
type TopLinksResponse struct {
	Body []stats.TopLink
}

// TrendingRequest carries the optional trending window. Hours is read as
// a raw string so garbage values can degrade to the default instead of
// being rejected at decode time.
type TrendingRequest struct {
	Hours string `doc:"Trending window in hours; defaults to 24 when absent or non-numeric" example:"24" query:"hours" required:"false"`
}

// TrendingResponse is the ordered recent-activity ranking.
type TrendingResponse struct {
	Body []stats.TrendingLink
}

// LinkDetailRequest identifies one short code, matched exactly and
// case-sensitively.
type LinkDetailRequest struct {
	ShortCode string `doc:"The short code" example:"abc123" path:"shortCode"`
}

// LinkDetailResponse is the composed per-link statistics object.
type LinkDetailResponse struct {
	Body stats.LinkDetail
}
