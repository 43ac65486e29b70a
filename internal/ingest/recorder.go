package ingest

import "context"

// Recorder persists one click into the event log and folds it into the
// running aggregate. Both writes happen atomically or not at all.
type Recorder interface {
	RecordClick(ctx context.Context, event *ClickEvent) error
}
