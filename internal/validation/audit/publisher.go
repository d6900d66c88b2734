package audit

import (
	"context"
	"time"

	"github.com/mssola/useragent"

	id "securedeal/pkg/domain"
)

// Store is the append-only persistence port for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByRun(ctx context.Context, runID id.RunID) ([]Event, error)
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily. With an inbox
// attached, writes go through the channel instead and a Worker owns the
// store appends.
type Publisher struct {
	store Store
	inbox chan<- Event
	now   func() time.Time
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store, now: time.Now}
}

// WithClock overrides the timestamp source. Test hook.
func (p *Publisher) WithClock(now func() time.Time) *Publisher {
	p.now = now
	return p
}

// WithInbox routes emitted events through a channel drained by a Worker.
// Reads still go straight to the store.
func (p *Publisher) WithInbox(inbox chan<- Event) *Publisher {
	p.inbox = inbox
	return p
}

// Emit persists the event, stamping the time and deriving browser and
// platform from the raw user agent when present.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now().UTC()
	}
	if event.UserAgent != "" && event.Browser == "" {
		ua := useragent.New(event.UserAgent)
		name, version := ua.Browser()
		event.Browser = name + " " + version
		event.Platform = ua.OS()
	}
	if p.inbox != nil {
		select {
		case p.inbox <- event:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return p.store.Append(ctx, event)
}

// List returns the events recorded for one run, oldest first.
func (p *Publisher) List(ctx context.Context, runID id.RunID) ([]Event, error) {
	return p.store.ListByRun(ctx, runID)
}
