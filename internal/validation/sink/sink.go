// Package sink owns run result persistence and downstream fan-out. The
// engine produces immutable results; the sink stores them and notifies
// interested systems.
package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"securedeal/internal/validation/models"
	id "securedeal/pkg/domain"
)

// ErrNotFound is returned when a run id has no stored result.
var ErrNotFound = errors.New("run not found")

// Store persists finished runs.
type Store interface {
	Save(ctx context.Context, result models.RunResult) error
	FindByID(ctx context.Context, runID id.RunID) (models.RunResult, error)
	ListByOpportunity(ctx context.Context, opportunityID id.OpportunityID) ([]models.RunResult, error)
}

// Emitter pushes finished runs to an external system (message broker,
// webhook). Emit failures must not fail the run.
type Emitter interface {
	Emit(ctx context.Context, result models.RunResult) error
}

// Sink stores a run result and fans it out. Persistence is mandatory,
// emission is best effort.
type Sink struct {
	store    Store
	emitters []Emitter
	logger   *slog.Logger
}

func New(store Store, logger *slog.Logger, emitters ...Emitter) *Sink {
	return &Sink{store: store, emitters: emitters, logger: logger}
}

// Record persists the result, then notifies emitters. An emitter failure is
// logged and swallowed; the stored result is the source of truth.
func (s *Sink) Record(ctx context.Context, result models.RunResult) error {
	if err := s.store.Save(ctx, result); err != nil {
		return fmt.Errorf("save run %s: %w", result.ID, err)
	}
	for _, emitter := range s.emitters {
		if err := emitter.Emit(ctx, result); err != nil {
			s.logger.Error("run emit failed", "run_id", result.ID, "error", err)
		}
	}
	return nil
}

// FindByID returns a stored run.
func (s *Sink) FindByID(ctx context.Context, runID id.RunID) (models.RunResult, error) {
	return s.store.FindByID(ctx, runID)
}

// ListByOpportunity returns all stored runs for an opportunity, newest first.
func (s *Sink) ListByOpportunity(ctx context.Context, opportunityID id.OpportunityID) ([]models.RunResult, error) {
	return s.store.ListByOpportunity(ctx, opportunityID)
}
