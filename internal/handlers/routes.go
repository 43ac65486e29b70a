package handlers

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/streampulse/analytics/internal/ratelimit"
)

// RegisterRoutes registers the stats API with per-endpoint rate limit
// configuration. The detail route is registered last so /stats/top and
// /stats/trending are not swallowed by the {shortCode} wildcard.
func RegisterRoutes(api huma.API, h *StatsHandler) {
	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Reports liveness without touching the data store.",
		Tags:        []string{"Health"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true},
		},
	}, h.Health)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/stats/top",
		Summary:     "Top links",
		Description: "The 10 most-clicked links of all time, most-clicked first.",
		Tags:        []string{"Stats"},
	}, h.TopLinks)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/stats/trending",
		Summary:     "Trending links",
		Description: "The 10 most-clicked links within the last `hours` hours (default 24).",
		Tags:        []string{"Stats"},
	}, h.Trending)

	huma.Register(api, huma.Operation{
		Method:      http.MethodGet,
		Path:        "/stats/{shortCode}",
		Summary:     "Link detail",
		Description: "Aggregate clicks, 24h activity, and top referrers for one short code.",
		Tags:        []string{"Stats"},
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{
				Limits: []ratelimit.Limit{
					{Window: time.Minute, Max: 1000},
				},
			},
		},
	}, h.LinkDetail)
}
