package rules

import (
	"context"
	"sync"

	"securedeal/internal/validation/models"
	id "securedeal/pkg/domain"
)

// InMemoryStore keeps rule definitions in a map. Used in tests and in
// single-node deployments that load the seed catalog at startup.
type InMemoryStore struct {
	mu    sync.RWMutex
	rules map[id.RuleID]models.Rule
}

func NewInMemoryStore(defs ...models.Rule) *InMemoryStore {
	s := &InMemoryStore{rules: make(map[id.RuleID]models.Rule, len(defs))}
	for _, r := range defs {
		s.rules[r.ID] = r
	}
	return s
}

func (s *InMemoryStore) List(_ context.Context) ([]models.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, r)
	}
	return out, nil
}

func (s *InMemoryStore) Put(_ context.Context, rule models.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[rule.ID] = rule
	return nil
}
