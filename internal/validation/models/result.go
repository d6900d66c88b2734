package models

import (
	"time"

	id "securedeal/pkg/domain"
)

// Status is the traffic-light verdict.
type Status string

const (
	StatusGreen  Status = "GREEN"
	StatusOrange Status = "ORANGE"
	StatusRed    Status = "RED"
)

// rank orders statuses for deterministic aggregation.
func (s Status) rank() int {
	switch s {
	case StatusRed:
		return 2
	case StatusOrange:
		return 1
	default:
		return 0
	}
}

// Worst returns the more severe of two statuses.
func (s Status) Worst(other Status) Status {
	if other.rank() > s.rank() {
		return other
	}
	return s
}

// Outcome is the comparator result for a single rule.
type Outcome string

const (
	OutcomeMatch    Outcome = "MATCH"
	OutcomeMismatch Outcome = "MISMATCH"
	OutcomeSkipped  Outcome = "SKIPPED"
	OutcomeError    Outcome = "ERROR"
)

// SkipReason explains why a rule was recorded SKIPPED. A skipped rule is
// never silently dropped; the reason distinguishes inapplicability from
// early termination and missing optional values.
type SkipReason string

const (
	SkipNotApplicable SkipReason = "not_applicable"
	SkipEarlyStopped  SkipReason = "early_stopped"
	SkipMissingValue  SkipReason = "missing_value"
)

// FieldResult is the write-once record of one rule evaluation.
type FieldResult struct {
	RuleID           id.RuleID  `json:"ruleId"`
	RuleName         string     `json:"ruleName"`
	Field            string     `json:"field"`
	SourceValue      string     `json:"sourceValue,omitempty"`
	TargetValue      string     `json:"targetValue,omitempty"`
	NormalizedSource string     `json:"normalizedSource,omitempty"`
	NormalizedTarget string     `json:"normalizedTarget,omitempty"`
	Outcome          Outcome    `json:"outcome"`
	Severity         Severity   `json:"severity"`
	Status           Status     `json:"status"`
	Similarity       *float64   `json:"similarity,omitempty"`
	SkipReason       SkipReason `json:"skipReason,omitempty"`
	// Degraded marks a result synthesized from a provider-outage fallback,
	// so callers can tell an outage ORANGE from a real mismatch ORANGE.
	Degraded bool   `json:"degraded,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Statistics summarizes a run the way the result store persists it.
type Statistics struct {
	TotalExecuted  int `json:"totalRulesExecuted"`
	Passed         int `json:"rulesPassed"`
	Failed         int `json:"rulesFailed"`
	Skipped        int `json:"rulesSkipped"`
	Errors         int `json:"rulesErrored"`
	CriticalIssues int `json:"criticalIssues"`
	WarningIssues  int `json:"warningIssues"`
}

// RunState tracks how a run finished.
type RunState string

const (
	RunCompleted    RunState = "COMPLETED"
	RunStoppedEarly RunState = "STOPPED_EARLY"
)

// RunResult is the immutable output of one validation invocation. Results
// are ordered by the snapshot's execution order, independent of completion
// order. The engine never persists it; that is the run sink's job.
type RunResult struct {
	ID            id.RunID         `json:"id"`
	OpportunityID id.OpportunityID `json:"opportunityId,omitempty"`
	OverallStatus Status           `json:"overallStatus"`
	State         RunState         `json:"state"`
	Results       []FieldResult    `json:"fieldValidations"`
	Stats         Statistics       `json:"statistics"`
	SnapshotHash  string           `json:"rulesSnapshotHash"`
	StartedAt     time.Time        `json:"startedAt"`
	CompletedAt   time.Time        `json:"completedAt"`
	Duration      time.Duration    `json:"-"`
	DurationMS    int64            `json:"durationMs"`
	ExternalCalls int              `json:"externalCalls"`
	CacheHits     int              `json:"cacheHits"`
}
