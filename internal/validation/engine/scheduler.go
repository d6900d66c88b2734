package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"securedeal/internal/validation/compare"
	"securedeal/internal/validation/gateway"
	"securedeal/internal/validation/metrics"
	"securedeal/internal/validation/models"
	"securedeal/internal/validation/rules"
	"securedeal/internal/validation/transform"
	id "securedeal/pkg/domain"
)

// execution is the per-run working state. Results are write-once per rule and
// assembled in execution order, so completion order never leaks into the
// output.
type execution struct {
	snap    *rules.Snapshot
	record  models.InputRecord
	gateway *gateway.Gateway
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu            sync.Mutex
	results       map[id.RuleID]models.FieldResult
	sources       map[id.SourceKind]gateway.Result
	externalCalls int
	cacheHits     int
}

func newExecution(snap *rules.Snapshot, record models.InputRecord, gw *gateway.Gateway, logger *slog.Logger, m *metrics.Metrics) *execution {
	return &execution{
		snap:    snap,
		record:  record,
		gateway: gw,
		logger:  logger,
		metrics: m,
		results: make(map[id.RuleID]models.FieldResult, len(snap.Rules)),
		sources: make(map[id.SourceKind]gateway.Result),
	}
}

// runGroups executes the parallel groups in order. Group N+1 starts only
// after group N has fully finished; the early-stop check runs at each group
// boundary, never mid-group.
func (x *execution) runGroups(ctx context.Context) models.RunState {
	groups := x.snap.Groups()
	for i, group := range groups {
		g, groupCtx := errgroup.WithContext(ctx)
		if limit := x.snap.Config.MaxParallel; limit > 0 {
			g.SetLimit(limit)
		}
		for _, rule := range group {
			g.Go(func() error {
				x.setResult(rule.ID, x.evaluate(groupCtx, rule))
				return nil
			})
		}
		// evaluate never returns an error; Wait only orders the goroutines
		_ = g.Wait()

		if x.snap.Config.EarlyStopOnCritical && x.blockingFailure() {
			x.skipRemaining(groups[i+1:])
			return models.RunStoppedEarly
		}
	}
	return models.RunCompleted
}

func (x *execution) setResult(rid id.RuleID, result models.FieldResult) {
	x.metrics.IncrementRuleOutcome(rid.String(), string(result.Outcome))
	x.mu.Lock()
	x.results[rid] = result
	x.mu.Unlock()
}

// blockingFailure reports whether any recorded result is a blocking CRITICAL
// mismatch (or a non-ignored error on a blocking CRITICAL rule). Degraded
// results never block: a source outage is contained at the gateway and must
// not cancel the rest of the run.
func (x *execution) blockingFailure() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	for rid, result := range x.results {
		rule, ok := x.snap.Rule(rid)
		if !ok || !rule.BlockOnFail || rule.Severity != models.SeverityCritical {
			continue
		}
		switch result.Outcome {
		case models.OutcomeMismatch:
			return true
		case models.OutcomeError:
			if !result.Degraded && rule.OnError != models.OnErrorIgnore {
				return true
			}
		}
	}
	return false
}

func (x *execution) skipRemaining(groups [][]models.Rule) {
	for _, group := range groups {
		for _, rule := range group {
			x.setResult(rule.ID, models.FieldResult{
				RuleID:     rule.ID,
				RuleName:   rule.Name,
				Field:      rule.Source.Field,
				Outcome:    models.OutcomeSkipped,
				Severity:   rule.Severity,
				Status:     models.StatusGreen,
				SkipReason: models.SkipEarlyStopped,
			})
		}
	}
}

// ordered assembles results in the snapshot's execution order.
func (x *execution) ordered() []models.FieldResult {
	x.mu.Lock()
	defer x.mu.Unlock()
	out := make([]models.FieldResult, 0, len(x.results))
	for _, rule := range x.snap.Rules {
		if result, ok := x.results[rule.ID]; ok {
			out = append(out, result)
		}
	}
	return out
}

// evaluate runs one rule end to end: applicability, value resolution,
// normalization, comparison.
func (x *execution) evaluate(ctx context.Context, rule models.Rule) models.FieldResult {
	base := models.FieldResult{
		RuleID:   rule.ID,
		RuleName: rule.Name,
		Field:    rule.Source.Field,
		Severity: rule.Severity,
	}

	if !x.applicable(rule) {
		base.Outcome = models.OutcomeSkipped
		base.Status = models.StatusGreen
		base.SkipReason = models.SkipNotApplicable
		return base
	}

	source, ok := x.resolve(ctx, rule.Source, &base)
	if !ok {
		return base
	}
	target, ok := x.resolve(ctx, rule.Target, &base)
	if !ok {
		return base
	}

	existence := rule.Comparison.Type == models.CompareExists ||
		rule.Comparison.Type == models.CompareNotExists
	if !existence {
		if missing := x.missingValue(rule, source, target, &base); missing {
			return base
		}
	}

	normalizedSource, err := transform.Apply(source.value, rule.Source.Transforms)
	if err != nil {
		return x.errored(rule, base, err.Error())
	}
	normalizedTarget, err := transform.Apply(target.value, rule.Target.Transforms)
	if err != nil {
		return x.errored(rule, base, err.Error())
	}
	base.SourceValue = source.value
	base.TargetValue = target.value
	base.NormalizedSource = normalizedSource
	base.NormalizedTarget = normalizedTarget

	outcome, err := compare.Compare(rule.Comparison, normalizedSource, normalizedTarget)
	if err != nil {
		return x.errored(rule, base, err.Error())
	}

	base.Outcome = outcome.Outcome
	base.Similarity = outcome.Similarity
	base.Message = outcome.Message
	base.Status = statusFor(rule, outcome.Outcome)
	return base
}

// applicable checks the vendor-type filter, the document requirement, and the
// rule condition, in that order. A condition that fails to evaluate reads as
// "condition not met": the rule is skipped, not errored.
func (x *execution) applicable(rule models.Rule) bool {
	if len(rule.ApplicableTo) > 0 {
		vendor := x.record.VendorKind()
		match := false
		for _, vt := range rule.ApplicableTo {
			if vt == vendor {
				match = true
				break
			}
		}
		if !match {
			return false
		}
	}
	if rule.RequiresDocument != "" && !x.record.HasDocument(rule.RequiresDocument) {
		return false
	}
	if rule.Condition == "" {
		return true
	}
	holds, err := x.snap.ConditionHolds(rule.ID, x.record.ConditionVars())
	if err != nil {
		x.logger.Warn("condition evaluation failed",
			"rule", rule.ID, "error", err)
		return false
	}
	return holds
}

type resolved struct {
	value   string
	present bool
}

// resolve produces the raw value for one side of a rule. External entities go
// through the gateway; a degraded fetch short-circuits the rule with the
// source's fallback status. The bool return is false when the rule is already
// decided.
func (x *execution) resolve(ctx context.Context, ref models.FieldRef, base *models.FieldResult) (resolved, bool) {
	if !ref.Entity.External() {
		value, present := x.record.Lookup(ref.Entity, ref.Field)
		return resolved{value: value, present: present}, true
	}

	fetch := x.fetchSource(ctx, ref.Entity.SourceKind())
	if fetch.Degraded {
		rule, _ := x.snap.Rule(base.RuleID)
		*base = x.degraded(rule, *base, fetch)
		return resolved{}, false
	}
	value, present := fetch.Fields.Value(ref.Field)
	return resolved{value: value, present: present}, true
}

// fetchSource queries each external source at most once per run, whatever the
// number of rules referencing it.
func (x *execution) fetchSource(ctx context.Context, source id.SourceKind) gateway.Result {
	x.mu.Lock()
	if result, ok := x.sources[source]; ok {
		x.mu.Unlock()
		return result
	}
	x.mu.Unlock()

	key := x.record.RegistryKey(source)
	result := x.gateway.Fetch(ctx, source, key)

	x.mu.Lock()
	defer x.mu.Unlock()
	if cached, ok := x.sources[source]; ok {
		return cached
	}
	x.sources[source] = result
	if result.FromCache {
		x.cacheHits++
	} else if !result.Degraded {
		x.externalCalls++
	}
	return result
}

// missingValue applies the absent-value policy: optional rules are recorded
// SKIPPED, CRITICAL rules fail because absence of a mandatory value is itself
// a finding.
func (x *execution) missingValue(rule models.Rule, source, target resolved, base *models.FieldResult) bool {
	if source.present && target.present {
		return false
	}
	side := "source"
	if source.present {
		side = "target"
	}
	if rule.Severity == models.SeverityCritical {
		base.Outcome = models.OutcomeMismatch
		base.Status = models.StatusRed
		base.Message = fmt.Sprintf("required %s value missing", side)
		return true
	}
	base.Outcome = models.OutcomeSkipped
	base.Status = models.StatusGreen
	base.SkipReason = models.SkipMissingValue
	base.Message = fmt.Sprintf("%s value missing", side)
	return true
}

func (x *execution) degraded(rule models.Rule, base models.FieldResult, fetch gateway.Result) models.FieldResult {
	base.Outcome = models.OutcomeError
	base.Degraded = true
	base.Status = fetch.FallbackStatus
	base.Message = "external source unavailable"
	if rule.OnError == models.OnErrorIgnore {
		base.Status = models.StatusGreen
	}
	x.logger.Warn("rule degraded by source outage",
		"rule", base.RuleID, "status", base.Status, "error", fetch.Err)
	return base
}

func (x *execution) errored(rule models.Rule, base models.FieldResult, msg string) models.FieldResult {
	base.Outcome = models.OutcomeError
	base.Message = msg
	if rule.OnError == models.OnErrorIgnore {
		base.Status = models.StatusGreen
	} else {
		base.Status = mismatchStatus(rule.Severity)
	}
	return base
}

// statusFor maps a comparator outcome onto the traffic light for one rule.
func statusFor(rule models.Rule, outcome models.Outcome) models.Status {
	switch outcome {
	case models.OutcomeMatch, models.OutcomeSkipped:
		return models.StatusGreen
	case models.OutcomeMismatch:
		return mismatchStatus(rule.Severity)
	default: // ERROR
		if rule.OnError == models.OnErrorIgnore {
			return models.StatusGreen
		}
		return mismatchStatus(rule.Severity)
	}
}

func mismatchStatus(severity models.Severity) models.Status {
	switch severity {
	case models.SeverityCritical:
		return models.StatusRed
	case models.SeverityWarning:
		return models.StatusOrange
	default:
		return models.StatusGreen
	}
}
