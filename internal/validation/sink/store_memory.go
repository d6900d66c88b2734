package sink

import (
	"context"
	"sort"
	"sync"

	"securedeal/internal/validation/models"
	id "securedeal/pkg/domain"
)

type InMemoryStore struct {
	mu   sync.RWMutex
	runs map[id.RunID]models.RunResult
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{runs: make(map[id.RunID]models.RunResult)}
}

func (s *InMemoryStore) Save(_ context.Context, result models.RunResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[result.ID] = result
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, runID id.RunID) (models.RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.runs[runID]
	if !ok {
		return models.RunResult{}, ErrNotFound
	}
	return result, nil
}

func (s *InMemoryStore) ListByOpportunity(_ context.Context, opportunityID id.OpportunityID) ([]models.RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.RunResult
	for _, result := range s.runs {
		if result.OpportunityID == opportunityID {
			out = append(out, result)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out, nil
}
