package audit

import (
	"context"
	"sync"

	id "securedeal/pkg/domain"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.RunID][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.RunID][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.RunID] = append(s.events[event.RunID], event)
	return nil
}

func (s *InMemoryStore) ListByRun(_ context.Context, runID id.RunID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[runID]...), nil
}
