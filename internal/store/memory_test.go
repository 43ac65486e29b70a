package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/streampulse/analytics/internal/ingest"
	"github.com/streampulse/analytics/internal/stats"
	"github.com/streampulse/analytics/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRecordClick(t *testing.T) {
	t.Run("creates aggregate on first click", func(t *testing.T) {
		s := store.NewMemoryStore()
		ts := time.Now()

		err := s.RecordClick(context.Background(), &ingest.ClickEvent{
			ShortCode: "abc123",
			Timestamp: ts,
		})

		require.NoError(t, err)

		agg, err := s.Aggregate(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, int64(1), agg.TotalClicks)
		assert.Equal(t, ts, agg.LastSeen)
	})

	t.Run("increments existing aggregate and advances last seen", func(t *testing.T) {
		s := store.NewMemoryStore()
		first := time.Now().Add(-time.Hour)
		second := time.Now()

		require.NoError(t, s.RecordClick(context.Background(), &ingest.ClickEvent{
			ShortCode: "abc123", Timestamp: first,
		}))
		require.NoError(t, s.RecordClick(context.Background(), &ingest.ClickEvent{
			ShortCode: "abc123", Timestamp: second,
		}))

		agg, err := s.Aggregate(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, int64(2), agg.TotalClicks)
		assert.Equal(t, second, agg.LastSeen)
	})

	t.Run("recorded events are visible to event count", func(t *testing.T) {
		s := store.NewMemoryStore()

		require.NoError(t, s.RecordClick(context.Background(), &ingest.ClickEvent{
			ShortCode: "abc123", Timestamp: time.Now(),
		}))

		count, err := s.EventCount(context.Background(), "abc123", time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestMemoryStoreQueries(t *testing.T) {
	t.Run("aggregate returns ErrNotFound for unknown code", func(t *testing.T) {
		s := store.NewMemoryStore()

		agg, err := s.Aggregate(context.Background(), "missing")

		assert.Nil(t, agg)
		assert.ErrorIs(t, err, stats.ErrNotFound)
	})

	t.Run("trending counts respect the cutoff", func(t *testing.T) {
		s := store.NewMemoryStore()
		now := time.Now()
		s.AddEvent("abc", "", now.Add(-time.Minute))
		s.AddEvent("abc", "", now.Add(-2*time.Hour))

		links, err := s.TrendingLinks(context.Background(), now.Add(-time.Hour), 10)

		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, int64(1), links[0].Clicks)
	})

	t.Run("trending respects the limit", func(t *testing.T) {
		s := store.NewMemoryStore()
		now := time.Now()

		for _, code := range []string{"a", "b", "c"} {
			s.AddEvent(code, "", now)
		}

		links, err := s.TrendingLinks(context.Background(), now.Add(-time.Hour), 2)

		require.NoError(t, err)
		assert.Len(t, links, 2)
	})

	t.Run("top referrers excludes empty referrer and orders by count", func(t *testing.T) {
		s := store.NewMemoryStore()
		now := time.Now()
		s.AddEvent("abc", "https://a.example/", now)
		s.AddEvent("abc", "https://a.example/", now)
		s.AddEvent("abc", "https://b.example/", now)
		s.AddEvent("abc", "", now)
		s.AddEvent("other", "https://c.example/", now)

		referrers, err := s.TopReferrers(context.Background(), "abc", 5)

		require.NoError(t, err)
		require.Len(t, referrers, 2)
		assert.Equal(t, "https://a.example/", referrers[0].Referrer)
		assert.Equal(t, int64(2), referrers[0].Clicks)
		assert.Equal(t, "https://b.example/", referrers[1].Referrer)
	})
}
