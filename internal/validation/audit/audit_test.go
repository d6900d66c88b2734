package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type AuditSuite struct {
	suite.Suite
}

func TestAuditSuite(t *testing.T) {
	suite.Run(t, new(AuditSuite))
}

func (s *AuditSuite) TestEmitStampsAndParsesUserAgent() {
	store := NewInMemoryStore()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pub := NewPublisher(store).WithClock(func() time.Time { return fixed })

	err := pub.Emit(context.Background(), Event{
		RunID:     "run-1",
		Action:    ActionRunFinished,
		Status:    "GREEN",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	})
	s.Require().NoError(err)

	events, err := pub.List(context.Background(), "run-1")
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(fixed, events[0].Timestamp)
	s.Contains(events[0].Browser, "Chrome")
	s.Equal("Windows 10", events[0].Platform)
}

func (s *AuditSuite) TestWorkerDrainsInbox() {
	store := NewInMemoryStore()
	inbox := make(chan Event, 2)
	worker := NewWorker(store, inbox, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	inbox <- Event{RunID: "run-2", Action: ActionRunStarted}
	inbox <- Event{RunID: "run-2", Action: ActionRunFinished}

	s.Eventually(func() bool {
		events, err := store.ListByRun(context.Background(), "run-2")
		return err == nil && len(events) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	s.ErrorIs(<-done, context.Canceled)
}

func (s *AuditSuite) TestPublisherRoutesThroughInbox() {
	store := NewInMemoryStore()
	inbox := make(chan Event, 4)
	pub := NewPublisher(store).WithInbox(inbox)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = NewWorker(store, inbox, discardLogger()).Run(ctx) }()

	err := pub.Emit(context.Background(), Event{RunID: "run-3", Action: ActionRunStarted})
	s.Require().NoError(err)

	// the event lands through the worker, not a direct append
	s.Eventually(func() bool {
		events, err := pub.List(context.Background(), "run-3")
		return err == nil && len(events) == 1
	}, time.Second, 10*time.Millisecond)
}
