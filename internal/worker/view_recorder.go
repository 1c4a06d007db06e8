package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/eesyle/alx-polly/internal/domain/poll"
)

// ViewEvent is emitted whenever a poll is read. UserID is uuid.Nil for
// unauthenticated viewers.
type ViewEvent struct {
	PollID uuid.UUID
	UserID uuid.UUID
}

// ViewRecorder drains view events off the request path and persists them.
// Views are analytics only, so a full channel drops events at the producer
// and a failed write is logged rather than retried.
type ViewRecorder struct {
	ch     <-chan ViewEvent
	polls  *poll.Service
	logger *slog.Logger
}

func NewViewRecorder(ch <-chan ViewEvent, polls *poll.Service, logger *slog.Logger) *ViewRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ViewRecorder{ch: ch, polls: polls, logger: logger}
}

func (w *ViewRecorder) Run(ctx context.Context) {
	w.logger.Info("view recorder started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("view recorder stopped")
			return
		case ev := <-w.ch:
			w.record(ctx, ev)
		}
	}
}

func (w *ViewRecorder) record(ctx context.Context, ev ViewEvent) {
	writeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var userID *uuid.UUID
	if ev.UserID != uuid.Nil {
		uid := ev.UserID
		userID = &uid
	}

	if err := w.polls.RecordView(writeCtx, ev.PollID, userID); err != nil {
		w.logger.Warn("record poll view failed", "poll_id", ev.PollID, "error", err)
	}
}
