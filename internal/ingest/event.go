package ingest

import "time"

// TopicClickEvents is the transport topic click events are published on.
const TopicClickEvents = "click-events"

// ClickEvent is one recorded click on a short link, as published by the
// redirect edge. Referrer is kept even when empty: the empty string means
// "no referrer" and is distinct from the field being absent.
type ClickEvent struct {
	ShortCode string    `json:"shortCode"`
	UserID    int64     `json:"userId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Referrer  string    `json:"referrer"`
	UserAgent string    `json:"userAgent,omitempty"`
	IP        string    `json:"ip,omitempty"`
}
