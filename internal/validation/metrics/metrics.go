package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the validation engine. All methods are
// nil-safe so wiring metrics stays optional in tests.
type Metrics struct {
	// Full run latency
	RunLatency prometheus.Histogram

	// Run outcomes by overall status and completion state
	RunOutcome *prometheus.CounterVec

	// Per-rule outcomes
	RuleOutcome *prometheus.CounterVec

	// External source call latencies
	SourceLatency *prometheus.HistogramVec

	// External source call results: ok, error, fallback
	SourceCalls *prometheus.CounterVec

	// Gateway cache lookups: hit, miss
	CacheLookups *prometheus.CounterVec

	// Retry attempts by source
	Retries *prometheus.CounterVec
}

// New creates a Metrics instance with all engine metrics registered.
func New() *Metrics {
	return &Metrics{
		RunLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "securedeal_validation_run_duration_seconds",
			Help:    "Duration of full validation runs including external lookups",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		RunOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "securedeal_validation_runs_total",
			Help: "Total validation runs by overall status and completion state",
		}, []string{"status", "state"}),

		RuleOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "securedeal_validation_rule_outcomes_total",
			Help: "Total rule evaluations by rule id and outcome",
		}, []string{"rule", "outcome"}),

		SourceLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "securedeal_gateway_source_duration_seconds",
			Help:    "Duration of external source lookups by source",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"source"}),

		SourceCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "securedeal_gateway_source_calls_total",
			Help: "Total external source calls by source and result",
		}, []string{"source", "result"}), // result: "ok", "error", "fallback"

		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "securedeal_gateway_cache_lookups_total",
			Help: "Gateway cache lookups by source and outcome",
		}, []string{"source", "outcome"}), // outcome: "hit", "miss"

		Retries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "securedeal_gateway_retries_total",
			Help: "Retry attempts against external sources",
		}, []string{"source"}),
	}
}

// ObserveRunLatency records the duration of a completed run.
func (m *Metrics) ObserveRunLatency(d time.Duration) {
	if m != nil {
		m.RunLatency.Observe(d.Seconds())
	}
}

// IncrementRun records a finished run.
func (m *Metrics) IncrementRun(status, state string) {
	if m != nil {
		m.RunOutcome.WithLabelValues(status, state).Inc()
	}
}

// IncrementRuleOutcome records one rule evaluation.
func (m *Metrics) IncrementRuleOutcome(rule, outcome string) {
	if m != nil {
		m.RuleOutcome.WithLabelValues(rule, outcome).Inc()
	}
}

// ObserveSourceLatency records the duration of one external lookup attempt.
func (m *Metrics) ObserveSourceLatency(source string, d time.Duration) {
	if m != nil {
		m.SourceLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// IncrementSourceCall records the result of an external lookup.
func (m *Metrics) IncrementSourceCall(source, result string) {
	if m != nil {
		m.SourceCalls.WithLabelValues(source, result).Inc()
	}
}

// IncrementCacheLookup records a gateway cache hit or miss.
func (m *Metrics) IncrementCacheLookup(source, outcome string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(source, outcome).Inc()
	}
}

// IncrementRetry records one retry against a source.
func (m *Metrics) IncrementRetry(source string) {
	if m != nil {
		m.Retries.WithLabelValues(source).Inc()
	}
}
