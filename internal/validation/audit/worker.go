package audit

import (
	"context"
	"log/slog"
)

// Worker drains audit events from an inbox channel into the store, keeping
// event capture off the request path. A failed append is logged and the event
// dropped; the trail must never stall the run pipeline.
type Worker struct {
	store  Store
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run consumes the inbox until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.Error("audit append failed",
					"action", event.Action, "run_id", event.RunID, "error", err)
			}
		}
	}
}
