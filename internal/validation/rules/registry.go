// Package rules owns the versioned rule catalog: loading definitions from a
// store, validating them as a set, compiling conditions, and publishing the
// result as an immutable snapshot identified by a content hash.
package rules

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/google/cel-go/cel"

	"securedeal/internal/validation/models"
	"securedeal/internal/validation/transform"
	id "securedeal/pkg/domain"
)

// Snapshot is an immutable, validated rule set plus execution configuration.
// Every run binds to exactly one snapshot; a reload never affects runs already
// in flight.
type Snapshot struct {
	Hash     string
	Rules    []models.Rule // enabled rules in execution order
	Config   models.EngineConfig
	LoadedAt time.Time

	byID       map[id.RuleID]models.Rule
	conditions map[id.RuleID]cel.Program
}

// Rule returns the enabled rule with the given id.
func (s *Snapshot) Rule(rid id.RuleID) (models.Rule, bool) {
	r, ok := s.byID[rid]
	return r, ok
}

// Groups resolves the configured parallel groups to rule values, in group
// order.
func (s *Snapshot) Groups() [][]models.Rule {
	groups := make([][]models.Rule, 0, len(s.Config.ParallelGroups))
	for _, ids := range s.Config.ParallelGroups {
		group := make([]models.Rule, 0, len(ids))
		for _, rid := range ids {
			group = append(group, s.byID[rid])
		}
		groups = append(groups, group)
	}
	return groups
}

// ConditionHolds evaluates a rule's compiled condition against the input
// record's variables. Rules without a condition always apply.
func (s *Snapshot) ConditionHolds(rid id.RuleID, vars map[string]any) (bool, error) {
	prog, ok := s.conditions[rid]
	if !ok {
		return true, nil
	}
	return evalCondition(prog, vars)
}

// Registry loads snapshots from a store and hands out the current one.
// Loading is strict: any invalid definition fails the whole reload and the
// previous snapshot stays active.
type Registry struct {
	store  Store
	config models.EngineConfig
	logger *slog.Logger

	mu      sync.RWMutex
	current *Snapshot
}

func NewRegistry(store Store, config models.EngineConfig, logger *slog.Logger) *Registry {
	return &Registry{store: store, config: config, logger: logger}
}

// Current returns the active snapshot, or nil before the first Reload.
func (r *Registry) Current() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Reload lists the store, validates and compiles the set, and atomically
// swaps the active snapshot on success.
func (r *Registry) Reload(ctx context.Context) (*Snapshot, error) {
	defs, err := r.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	snap, err := BuildSnapshot(defs, r.config)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.current = snap
	r.mu.Unlock()
	r.logger.Info("rule snapshot loaded",
		"hash", snap.Hash,
		"rules", len(snap.Rules),
		"groups", len(snap.Config.ParallelGroups))
	return snap, nil
}

// BuildSnapshot validates a rule set against the execution configuration and
// compiles conditions. All violations are reported together.
func BuildSnapshot(defs []models.Rule, config models.EngineConfig) (*Snapshot, error) {
	env, err := newConditionEnv()
	if err != nil {
		return nil, fmt.Errorf("condition env: %w", err)
	}

	var errs []error
	byID := make(map[id.RuleID]models.Rule, len(defs))
	conditions := make(map[id.RuleID]cel.Program)

	for _, rule := range defs {
		if _, dup := byID[rule.ID]; dup {
			errs = append(errs, fmt.Errorf("rule %s: duplicate id", rule.ID))
			continue
		}
		byID[rule.ID] = rule
		if err := validateRule(rule); err != nil {
			errs = append(errs, err)
			continue
		}
		if rule.Condition != "" {
			prog, err := compileCondition(env, rule.Condition)
			if err != nil {
				errs = append(errs, fmt.Errorf("rule %s: %w", rule.ID, err))
				continue
			}
			conditions[rule.ID] = prog
		}
	}

	errs = append(errs, validateSchedule(byID, config)...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid rule set: %w", errors.Join(errs...))
	}

	ordered := make([]models.Rule, 0, len(config.ExecutionOrder))
	for _, rid := range config.ExecutionOrder {
		ordered = append(ordered, byID[rid])
	}

	hash, err := snapshotHash(ordered, config)
	if err != nil {
		return nil, fmt.Errorf("hash snapshot: %w", err)
	}

	enabled := make(map[id.RuleID]models.Rule, len(ordered))
	for _, rule := range ordered {
		enabled[rule.ID] = rule
	}
	return &Snapshot{
		Hash:       hash,
		Rules:      ordered,
		Config:     config,
		LoadedAt:   time.Now().UTC(),
		byID:       enabled,
		conditions: conditions,
	}, nil
}

func validateRule(rule models.Rule) error {
	if !rule.Severity.Valid() {
		return fmt.Errorf("rule %s: unknown severity %q", rule.ID, rule.Severity)
	}
	if rule.Version < 1 {
		return fmt.Errorf("rule %s: version must be >= 1", rule.ID)
	}
	for _, side := range []models.FieldRef{rule.Source, rule.Target} {
		for _, name := range side.Transforms {
			if _, err := transform.Lookup(name); err != nil {
				return fmt.Errorf("rule %s: %w", rule.ID, err)
			}
		}
	}
	if rule.OnError != models.OnErrorEscalate && rule.OnError != models.OnErrorIgnore {
		return fmt.Errorf("rule %s: unknown onError %q", rule.ID, rule.OnError)
	}
	return validateComparison(rule.ID, rule.Comparison)
}

func validateComparison(rid id.RuleID, c models.Comparison) error {
	switch c.Type {
	case models.CompareExact, models.CompareContains,
		models.CompareExists, models.CompareNotExists:
		return nil
	case models.CompareFuzzy:
		if c.Threshold <= 0 || c.Threshold > 1 {
			return fmt.Errorf("rule %s: fuzzy threshold %g outside (0,1]", rid, c.Threshold)
		}
	case models.CompareRegex:
		if _, err := regexp.Compile(c.Pattern); err != nil {
			return fmt.Errorf("rule %s: invalid pattern: %w", rid, err)
		}
	case models.CompareNumericTolerance:
		if c.Tolerance < 0 {
			return fmt.Errorf("rule %s: negative tolerance", rid)
		}
		switch c.ToleranceMode {
		case "", models.ToleranceAbsolute, models.TolerancePercentage:
		default:
			return fmt.Errorf("rule %s: unknown tolerance mode %q", rid, c.ToleranceMode)
		}
	case models.CompareDateTolerance:
		if c.Tolerance < 0 {
			return fmt.Errorf("rule %s: negative tolerance", rid)
		}
		switch c.Direction {
		case "", models.DateWithinRange, models.DateMinDaysBefore, models.DateMaxDaysAfter:
		default:
			return fmt.Errorf("rule %s: unknown date direction %q", rid, c.Direction)
		}
	case models.CompareInList:
		if len(c.AllowedValues) == 0 {
			return fmt.Errorf("rule %s: IN_LIST without allowed values", rid)
		}
	default:
		return fmt.Errorf("rule %s: unknown comparison type %q", rid, c.Type)
	}
	return nil
}

// validateSchedule enforces that the execution order references enabled rules
// exactly once each, covers every enabled rule, and that the parallel groups
// flatten back to the execution order.
func validateSchedule(byID map[id.RuleID]models.Rule, config models.EngineConfig) []error {
	var errs []error
	seen := make(map[id.RuleID]bool, len(config.ExecutionOrder))
	for _, rid := range config.ExecutionOrder {
		rule, ok := byID[rid]
		if !ok {
			errs = append(errs, fmt.Errorf("execution order references unknown rule %s", rid))
			continue
		}
		if !rule.Enabled {
			errs = append(errs, fmt.Errorf("execution order references disabled rule %s", rid))
			continue
		}
		if seen[rid] {
			errs = append(errs, fmt.Errorf("execution order lists %s twice", rid))
		}
		seen[rid] = true
	}
	for rid, rule := range byID {
		if rule.Enabled && !seen[rid] {
			errs = append(errs, fmt.Errorf("enabled rule %s missing from execution order", rid))
		}
	}

	var flattened []id.RuleID
	for _, group := range config.ParallelGroups {
		flattened = append(flattened, group...)
	}
	if len(flattened) != len(config.ExecutionOrder) {
		errs = append(errs, fmt.Errorf("parallel groups cover %d rules, execution order has %d",
			len(flattened), len(config.ExecutionOrder)))
		return errs
	}
	for i, rid := range flattened {
		if config.ExecutionOrder[i] != rid {
			errs = append(errs, fmt.Errorf("parallel groups diverge from execution order at %s", rid))
			break
		}
	}
	return errs
}

// snapshotHash fingerprints the rule content plus the scheduling parts of the
// configuration. Two identical catalogs always hash the same, so stored runs
// can be traced to the exact rule set that produced them.
func snapshotHash(ordered []models.Rule, config models.EngineConfig) (string, error) {
	payload := struct {
		Rules          []models.Rule `json:"rules"`
		ExecutionOrder []id.RuleID   `json:"executionOrder"`
		ParallelGroups [][]id.RuleID `json:"parallelGroups"`
		EarlyStop      bool          `json:"earlyStopOnCritical"`
	}{ordered, config.ExecutionOrder, config.ParallelGroups, config.EarlyStopOnCritical}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
