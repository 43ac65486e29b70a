package stats

import "time"

// Aggregate is the persisted running click total for one short code,
// maintained by the ingestion path.
type Aggregate struct {
	ShortCode   string
	TotalClicks int64
	LastSeen    time.Time
}

// TopLink is one entry in the all-time most-clicked ranking.
type TopLink struct {
	ShortCode   string    `doc:"The short code"                 example:"abc123"               json:"shortCode"`
	TotalClicks int64     `doc:"All-time click total"           example:"42"                   json:"totalClicks"`
	LastSeen    time.Time `doc:"Time of the most recent click"  example:"2024-01-01T00:00:00Z" json:"lastSeen"`
}

// TrendingLink is one entry in the recent-activity ranking.
type TrendingLink struct {
	ShortCode string `doc:"The short code"                      example:"abc123" json:"shortCode"`
	Clicks    int64  `doc:"Clicks inside the trending window"   example:"7"      json:"clicks"`
}

// ReferrerCount is one referrer's share of a link's clicks.
type ReferrerCount struct {
	Referrer string `doc:"Referrer URL"                example:"https://news.ycombinator.com/" json:"referrer"`
	Clicks   int64  `doc:"Clicks from this referrer"   example:"3"                             json:"clicks"`
}

// LinkDetail is the composed per-link statistics object.
type LinkDetail struct {
	ShortCode    string          `doc:"The short code"                example:"abc123"               json:"shortCode"`
	TotalClicks  int64           `doc:"All-time click total"          example:"42"                   json:"totalClicks"`
	Last24Hours  int64           `doc:"Clicks in the last 24 hours"   example:"5"                    json:"last24Hours"`
	LastSeen     time.Time       `doc:"Time of the most recent click" example:"2024-01-01T00:00:00Z" json:"lastSeen"`
	TopReferrers []ReferrerCount `doc:"Top referrers by click count"  json:"topReferrers"`
}
