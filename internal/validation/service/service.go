// Package service orchestrates validation runs: it drives the engine,
// persists results through the sink, and emits the audit trail.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"securedeal/internal/validation/audit"
	"securedeal/internal/validation/engine"
	"securedeal/internal/validation/models"
	"securedeal/internal/validation/rules"
	"securedeal/internal/validation/sink"
	id "securedeal/pkg/domain"
	"securedeal/pkg/requestcontext"
)

// Service is the application-facing API for validation runs.
type Service struct {
	engine   *engine.Engine
	registry *rules.Registry
	sink     *sink.Sink
	audit    *audit.Publisher
	logger   *slog.Logger
}

func New(eng *engine.Engine, registry *rules.Registry, snk *sink.Sink, publisher *audit.Publisher, logger *slog.Logger) *Service {
	return &Service{
		engine:   eng,
		registry: registry,
		sink:     snk,
		audit:    publisher,
		logger:   logger,
	}
}

// Validate runs the record against the active snapshot, persists the result,
// and audits both ends of the run.
func (s *Service) Validate(ctx context.Context, record models.InputRecord) (models.RunResult, error) {
	result, err := s.engine.Run(ctx, record)
	if err != nil {
		return models.RunResult{}, fmt.Errorf("run validation: %w", err)
	}

	if err := s.sink.Record(ctx, result); err != nil {
		return models.RunResult{}, err
	}

	s.emit(ctx, audit.Event{
		RunID:         result.ID,
		OpportunityID: result.OpportunityID,
		Action:        audit.ActionRunFinished,
		Status:        string(result.OverallStatus),
		SnapshotHash:  result.SnapshotHash,
		ExternalCalls: result.ExternalCalls,
		CacheHits:     result.CacheHits,
		DurationMS:    result.DurationMS,
	})
	return result, nil
}

// Preview evaluates candidate rules against live data without persisting a
// run. Rule authors use it to try changes before publishing.
func (s *Service) Preview(ctx context.Context, record models.InputRecord, candidates []models.Rule, config *models.EngineConfig) (models.RunResult, error) {
	result, err := s.engine.Preview(ctx, record, candidates, config)
	if err != nil {
		return models.RunResult{}, fmt.Errorf("preview validation: %w", err)
	}
	s.emit(ctx, audit.Event{
		RunID:         result.ID,
		OpportunityID: result.OpportunityID,
		Action:        audit.ActionRunPreviewed,
		Status:        string(result.OverallStatus),
		SnapshotHash:  result.SnapshotHash,
		ExternalCalls: result.ExternalCalls,
		CacheHits:     result.CacheHits,
		DurationMS:    result.DurationMS,
	})
	return result, nil
}

// Run returns a stored run by id.
func (s *Service) Run(ctx context.Context, runID id.RunID) (models.RunResult, error) {
	return s.sink.FindByID(ctx, runID)
}

// RunsByOpportunity returns the stored runs for an opportunity, newest first.
func (s *Service) RunsByOpportunity(ctx context.Context, opportunityID id.OpportunityID) ([]models.RunResult, error) {
	return s.sink.ListByOpportunity(ctx, opportunityID)
}

// Rules returns the active snapshot's rules and hash.
func (s *Service) Rules() ([]models.Rule, string, error) {
	snap := s.registry.Current()
	if snap == nil {
		return nil, "", fmt.Errorf("no rule snapshot loaded")
	}
	return snap.Rules, snap.Hash, nil
}

// ReloadRules reloads the rule catalog from its store and audits the swap.
func (s *Service) ReloadRules(ctx context.Context) (string, error) {
	snap, err := s.registry.Reload(ctx)
	if err != nil {
		return "", err
	}
	s.emit(ctx, audit.Event{
		Action:       audit.ActionRulesLoaded,
		SnapshotHash: snap.Hash,
	})
	return snap.Hash, nil
}

// AuditTrail returns the audit events recorded for one run.
func (s *Service) AuditTrail(ctx context.Context, runID id.RunID) ([]audit.Event, error) {
	return s.audit.List(ctx, runID)
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	event.TriggerSource = string(requestcontext.GetTriggerSource(ctx))
	event.TriggeredBy = requestcontext.RequestID(ctx)
	event.ClientIP = requestcontext.ClientIP(ctx)
	event.UserAgent = requestcontext.UserAgent(ctx)
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.Error("audit emit failed", "action", event.Action, "error", err)
	}
}
