package models

import (
	"time"

	id "securedeal/pkg/domain"
)

// RetryPolicy is the gateway's bounded retry configuration. Backoff is a
// fixed schedule: attempt N waits Backoff[N-1] before retrying (the last
// entry repeats if MaxAttempts exceeds the schedule length).
type RetryPolicy struct {
	MaxAttempts int
	Backoff     []time.Duration
}

// Delay returns the wait before retry attempt n (1-based, the wait after the
// n-th failure).
func (p RetryPolicy) Delay(n int) time.Duration {
	if len(p.Backoff) == 0 {
		return 0
	}
	if n > len(p.Backoff) {
		n = len(p.Backoff)
	}
	if n < 1 {
		n = 1
	}
	return p.Backoff[n-1]
}

// EngineConfig is the execution configuration loaded alongside the rule set.
// It is part of the versioned snapshot and never mutated mid-run.
type EngineConfig struct {
	// ExecutionOrder is the explicit total order of rule ids.
	ExecutionOrder []id.RuleID
	// ParallelGroups partitions ExecutionOrder into batches that run
	// concurrently. Groups execute in order; members of one group have no
	// data dependency on each other.
	ParallelGroups [][]id.RuleID
	// EarlyStopOnCritical aborts remaining groups once a blocking CRITICAL
	// mismatch has been observed. Evaluated only at group boundaries.
	EarlyStopOnCritical bool
	// MaxParallel bounds concurrent rule evaluations within a group.
	MaxParallel int

	CacheTTL map[id.SourceKind]time.Duration
	Retry    RetryPolicy
	Fallback map[id.SourceKind]Status
}

// DefaultEngineConfig mirrors the production defaults: three attempts with a
// 1s/2s/4s schedule, registry outages degrade to ORANGE.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		EarlyStopOnCritical: true,
		MaxParallel:         5,
		CacheTTL: map[id.SourceKind]time.Duration{
			id.SourceCompanyRegistry: 24 * time.Hour,
			id.SourceVATRegistry:     4 * time.Hour,
			id.SourceBlacklist:       24 * time.Hour,
		},
		Retry: RetryPolicy{
			MaxAttempts: 3,
			Backoff:     []time.Duration{time.Second, 2 * time.Second, 4 * time.Second},
		},
		Fallback: map[id.SourceKind]Status{
			id.SourceCompanyRegistry: StatusOrange,
			id.SourceVATRegistry:     StatusOrange,
			id.SourceBlacklist:       StatusOrange,
		},
	}
}

// FallbackFor returns the configured fallback status for a source, defaulting
// to ORANGE so an unconfigured source never silently passes.
func (c EngineConfig) FallbackFor(source id.SourceKind) Status {
	if s, ok := c.Fallback[source]; ok {
		return s
	}
	return StatusOrange
}

// TTLFor returns the configured cache TTL for a source (zero disables caching).
func (c EngineConfig) TTLFor(source id.SourceKind) time.Duration {
	return c.CacheTTL[source]
}
