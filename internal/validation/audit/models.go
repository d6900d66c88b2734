package audit

import (
	"time"

	id "securedeal/pkg/domain"
)

// Event records who triggered a validation run and what came of it. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp     time.Time        `json:"timestamp"`
	RunID         id.RunID         `json:"runId"`
	OpportunityID id.OpportunityID `json:"opportunityId,omitempty"`
	Action        string           `json:"action"`
	TriggeredBy   string           `json:"triggeredBy,omitempty"`
	TriggerSource string           `json:"triggerSource,omitempty"`
	ClientIP      string           `json:"clientIp,omitempty"`
	UserAgent     string           `json:"userAgent,omitempty"`
	Browser       string           `json:"browser,omitempty"`
	Platform      string           `json:"platform,omitempty"`
	Status        string           `json:"status,omitempty"`
	SnapshotHash  string           `json:"rulesSnapshotHash,omitempty"`
	ExternalCalls int              `json:"externalCalls"`
	CacheHits     int              `json:"cacheHits"`
	DurationMS    int64            `json:"durationMs"`
}

// Actions emitted by the validation service.
const (
	ActionRunStarted   = "validation.run.started"
	ActionRunFinished  = "validation.run.finished"
	ActionRunPreviewed = "validation.run.previewed"
	ActionRulesLoaded  = "validation.rules.reloaded"
)
