// Package engine runs a rule snapshot against one input record: it schedules
// the parallel groups, resolves and normalizes both sides of every rule,
// applies the comparator, and aggregates field results into the traffic-light
// verdict.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"securedeal/internal/validation/gateway"
	"securedeal/internal/validation/metrics"
	"securedeal/internal/validation/models"
	"securedeal/internal/validation/rules"
	id "securedeal/pkg/domain"
)

// Engine evaluates input records against the active rule snapshot. It is
// stateless between runs; every run binds to the snapshot current at start.
type Engine struct {
	registry *rules.Registry
	gateway  *gateway.Gateway
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer

	newRunID func() id.RunID
	now      func() time.Time
}

func New(registry *rules.Registry, gw *gateway.Gateway, logger *slog.Logger, m *metrics.Metrics) *Engine {
	return &Engine{
		registry: registry,
		gateway:  gw,
		logger:   logger,
		metrics:  m,
		tracer:   otel.Tracer("securedeal/validation"),
		newRunID: func() id.RunID { return id.RunID(uuid.NewString()) },
		now:      time.Now,
	}
}

// WithClock overrides the engine's time source. Test hook.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Run evaluates the record against the current snapshot.
func (e *Engine) Run(ctx context.Context, record models.InputRecord) (models.RunResult, error) {
	snap := e.registry.Current()
	if snap == nil {
		return models.RunResult{}, fmt.Errorf("no rule snapshot loaded")
	}
	return e.run(ctx, snap, record, e.gateway)
}

// Preview evaluates the record against candidate rule definitions without
// persisting anything. It reads the shared source cache but never warms it,
// which keeps repeated previews cheap without letting them poison the cache
// for real runs. A nil candidate set previews the current snapshot.
func (e *Engine) Preview(ctx context.Context, record models.InputRecord, candidates []models.Rule, config *models.EngineConfig) (models.RunResult, error) {
	snap := e.registry.Current()
	if candidates != nil {
		cfg := models.DefaultEngineConfig()
		switch {
		case config != nil:
			cfg = *config
		case snap != nil:
			cfg = snap.Config
		}
		var err error
		snap, err = rules.BuildSnapshot(candidates, cfg)
		if err != nil {
			return models.RunResult{}, fmt.Errorf("build preview snapshot: %w", err)
		}
	}
	if snap == nil {
		return models.RunResult{}, fmt.Errorf("no rule snapshot loaded")
	}
	return e.run(ctx, snap, record, e.gateway.ReadOnly())
}

func (e *Engine) run(ctx context.Context, snap *rules.Snapshot, record models.InputRecord, gw *gateway.Gateway) (models.RunResult, error) {
	runID := e.newRunID()
	started := e.now()

	ctx, span := e.tracer.Start(ctx, "validation.run",
		trace.WithAttributes(
			attribute.String("run.id", runID.String()),
			attribute.String("rules.snapshot", snap.Hash),
			attribute.Int("rules.count", len(snap.Rules)),
		))
	defer span.End()

	exec := newExecution(snap, record, gw, e.logger, e.metrics)
	state := exec.runGroups(ctx)

	completed := e.now()
	results := exec.ordered()
	status, stats := Aggregate(results)

	result := models.RunResult{
		ID:            runID,
		OpportunityID: record.OpportunityID,
		OverallStatus: status,
		State:         state,
		Results:       results,
		Stats:         stats,
		SnapshotHash:  snap.Hash,
		StartedAt:     started.UTC(),
		CompletedAt:   completed.UTC(),
		Duration:      completed.Sub(started),
		DurationMS:    completed.Sub(started).Milliseconds(),
		ExternalCalls: exec.externalCalls,
		CacheHits:     exec.cacheHits,
	}

	span.SetAttributes(
		attribute.String("run.status", string(status)),
		attribute.String("run.state", string(state)),
	)
	e.metrics.ObserveRunLatency(result.Duration)
	e.metrics.IncrementRun(string(status), string(state))
	e.logger.InfoContext(ctx, "validation run finished",
		"run_id", runID,
		"opportunity_id", record.OpportunityID,
		"status", status,
		"state", state,
		"rules_executed", stats.TotalExecuted,
		"duration_ms", result.DurationMS)

	return result, nil
}
