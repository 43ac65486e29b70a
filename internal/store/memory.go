package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/streampulse/analytics/internal/ingest"
	"github.com/streampulse/analytics/internal/stats"
)

type memoryEvent struct {
	shortCode  string
	referrer   string
	occurredAt time.Time
}

// MemoryStore is an in-memory implementation of stats.Repository and
// ingest.Recorder. It mirrors the SQL semantics closely enough for
// handler and service tests; equal counts are broken by short code /
// referrer ascending to keep test output stable.
type MemoryStore struct {
	mu         sync.RWMutex
	aggregates map[string]stats.Aggregate
	events     []memoryEvent
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		aggregates: make(map[string]stats.Aggregate),
	}
}

// SetAggregate seeds an aggregate row directly, bypassing the event log.
// Useful for states the external writer can produce but RecordClick
// cannot, e.g. an aggregate with no recent events.
func (m *MemoryStore) SetAggregate(shortCode string, totalClicks int64, lastSeen time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.aggregates[shortCode] = stats.Aggregate{
		ShortCode:   shortCode,
		TotalClicks: totalClicks,
		LastSeen:    lastSeen,
	}
}

// AddEvent seeds a raw event without touching the aggregate.
func (m *MemoryStore) AddEvent(shortCode, referrer string, occurredAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, memoryEvent{
		shortCode:  shortCode,
		referrer:   referrer,
		occurredAt: occurredAt,
	})
}

func (m *MemoryStore) TopLinks(_ context.Context, limit int) ([]stats.TopLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	links := make([]stats.TopLink, 0, len(m.aggregates))
	for _, agg := range m.aggregates {
		links = append(links, stats.TopLink{
			ShortCode:   agg.ShortCode,
			TotalClicks: agg.TotalClicks,
			LastSeen:    agg.LastSeen,
		})
	}

	sort.Slice(links, func(i, j int) bool {
		if links[i].TotalClicks != links[j].TotalClicks {
			return links[i].TotalClicks > links[j].TotalClicks
		}

		return links[i].ShortCode < links[j].ShortCode
	})

	if len(links) > limit {
		links = links[:limit]
	}

	return links, nil
}

func (m *MemoryStore) TrendingLinks(
	_ context.Context, cutoff time.Time, limit int,
) ([]stats.TrendingLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64)

	for _, ev := range m.events {
		if ev.occurredAt.After(cutoff) {
			counts[ev.shortCode]++
		}
	}

	links := make([]stats.TrendingLink, 0, len(counts))
	for code, clicks := range counts {
		links = append(links, stats.TrendingLink{ShortCode: code, Clicks: clicks})
	}

	sort.Slice(links, func(i, j int) bool {
		if links[i].Clicks != links[j].Clicks {
			return links[i].Clicks > links[j].Clicks
		}

		return links[i].ShortCode < links[j].ShortCode
	})

	if len(links) > limit {
		links = links[:limit]
	}

	return links, nil
}

func (m *MemoryStore) Aggregate(_ context.Context, shortCode string) (*stats.Aggregate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	agg, ok := m.aggregates[shortCode]
	if !ok {
		return nil, stats.ErrNotFound
	}

	return &agg, nil
}

func (m *MemoryStore) EventCount(
	_ context.Context, shortCode string, cutoff time.Time,
) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64

	for _, ev := range m.events {
		if ev.shortCode == shortCode && ev.occurredAt.After(cutoff) {
			count++
		}
	}

	return count, nil
}

func (m *MemoryStore) TopReferrers(
	_ context.Context, shortCode string, limit int,
) ([]stats.ReferrerCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64)

	for _, ev := range m.events {
		if ev.shortCode == shortCode && ev.referrer != "" {
			counts[ev.referrer]++
		}
	}

	referrers := make([]stats.ReferrerCount, 0, len(counts))
	for referrer, clicks := range counts {
		referrers = append(referrers, stats.ReferrerCount{Referrer: referrer, Clicks: clicks})
	}

	sort.Slice(referrers, func(i, j int) bool {
		if referrers[i].Clicks != referrers[j].Clicks {
			return referrers[i].Clicks > referrers[j].Clicks
		}

		return referrers[i].Referrer < referrers[j].Referrer
	})

	if len(referrers) > limit {
		referrers = referrers[:limit]
	}

	return referrers, nil
}

func (m *MemoryStore) RecordClick(_ context.Context, event *ingest.ClickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, memoryEvent{
		shortCode:  event.ShortCode,
		referrer:   event.Referrer,
		occurredAt: event.Timestamp,
	})

	agg, ok := m.aggregates[event.ShortCode]
	if !ok {
		agg = stats.Aggregate{ShortCode: event.ShortCode}
	}

	agg.TotalClicks++
	agg.LastSeen = event.Timestamp
	m.aggregates[event.ShortCode] = agg

	return nil
}

// Compile-time checks.
var (
	_ stats.Repository = (*MemoryStore)(nil)
	_ ingest.Recorder  = (*MemoryStore)(nil)
)
