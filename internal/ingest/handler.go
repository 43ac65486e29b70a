package ingest

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Handler validates incoming click events and hands them to the recorder.
type Handler struct {
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewHandler creates a click event handler.
func NewHandler(recorder Recorder, logger *zap.Logger) *Handler {
	return &Handler{
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Handle processes one click event. Events without a short code are
// dropped (acked) rather than nacked, so a malformed payload cannot loop
// through redelivery forever. Recorder failures are returned so the
// message is redelivered.
func (h *Handler) Handle(ctx context.Context, event *ClickEvent) error {
	if event.ShortCode == "" {
		h.logger.Warn("dropping click event without short code",
			zap.String("ip", event.IP),
		)

		return nil
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = h.now().UTC()
	}

	if err := h.recorder.RecordClick(ctx, event); err != nil {
		return err
	}

	h.logger.Debug("click recorded",
		zap.String("shortCode", event.ShortCode),
	)

	return nil
}
