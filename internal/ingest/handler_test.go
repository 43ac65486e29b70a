package ingest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/streampulse/analytics/internal/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errRecorder = errors.New("recorder error")

type mockRecorder struct {
	recorded []*ingest.ClickEvent
	err      error
}

func (m *mockRecorder) RecordClick(_ context.Context, event *ingest.ClickEvent) error {
	if m.err != nil {
		return m.err
	}

	m.recorded = append(m.recorded, event)

	return nil
}

func TestHandle(t *testing.T) {
	t.Run("records a valid event", func(t *testing.T) {
		recorder := &mockRecorder{}
		handler := ingest.NewHandler(recorder, zap.NewNop())

		ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		event := &ingest.ClickEvent{
			ShortCode: "abc123",
			Timestamp: ts,
			Referrer:  "https://a.example/",
		}

		err := handler.Handle(context.Background(), event)

		require.NoError(t, err)
		require.Len(t, recorder.recorded, 1)
		assert.Equal(t, "abc123", recorder.recorded[0].ShortCode)
		assert.Equal(t, ts, recorder.recorded[0].Timestamp)
	})

	t.Run("defaults a zero timestamp to now", func(t *testing.T) {
		recorder := &mockRecorder{}
		handler := ingest.NewHandler(recorder, zap.NewNop())

		before := time.Now().UTC()
		err := handler.Handle(context.Background(), &ingest.ClickEvent{ShortCode: "abc123"})
		after := time.Now().UTC()

		require.NoError(t, err)
		require.Len(t, recorder.recorded, 1)

		got := recorder.recorded[0].Timestamp
		assert.False(t, got.Before(before))
		assert.False(t, got.After(after))
	})

	t.Run("drops events without a short code", func(t *testing.T) {
		recorder := &mockRecorder{}
		handler := ingest.NewHandler(recorder, zap.NewNop())

		err := handler.Handle(context.Background(), &ingest.ClickEvent{
			Referrer: "https://a.example/",
		})

		require.NoError(t, err)
		assert.Empty(t, recorder.recorded)
	})

	t.Run("propagates recorder failures for redelivery", func(t *testing.T) {
		recorder := &mockRecorder{err: errRecorder}
		handler := ingest.NewHandler(recorder, zap.NewNop())

		err := handler.Handle(context.Background(), &ingest.ClickEvent{ShortCode: "abc123"})

		assert.ErrorIs(t, err, errRecorder)
	})

	t.Run("keeps empty referrer intact", func(t *testing.T) {
		recorder := &mockRecorder{}
		handler := ingest.NewHandler(recorder, zap.NewNop())

		err := handler.Handle(context.Background(), &ingest.ClickEvent{
			ShortCode: "abc123",
			Referrer:  "",
		})

		require.NoError(t, err)
		require.Len(t, recorder.recorded, 1)
		assert.Empty(t, recorder.recorded[0].Referrer)
	})
}
