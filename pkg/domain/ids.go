// Package domain holds id primitives shared across the validation service.
// Values are parsed at trust boundaries so the rest of the code can rely on
// non-empty, well-formed identifiers.
package domain

import (
	"fmt"
	"regexp"
)

// RuleID identifies a validation rule ("VEH-001", "ARES-003").
type RuleID string

// ruleIDPattern matches the rule naming convention: a 2-4 letter prefix and a
// three digit sequence number.
var ruleIDPattern = regexp.MustCompile(`^[A-Z]{2,4}-[0-9]{3}$`)

// ParseRuleID validates and returns a RuleID.
func ParseRuleID(s string) (RuleID, error) {
	if !ruleIDPattern.MatchString(s) {
		return "", fmt.Errorf("invalid rule id %q (expected XX-000 or XXXX-000)", s)
	}
	return RuleID(s), nil
}

func (r RuleID) String() string { return string(r) }

// RunID identifies a single validation run. Assigned by the engine (UUID).
type RunID string

func (r RunID) String() string { return string(r) }

// IsNil returns true if the run id is empty.
func (r RunID) IsNil() bool { return r == "" }

// OpportunityID identifies the buying opportunity a run belongs to.
type OpportunityID string

func (o OpportunityID) String() string { return string(o) }

// SourceKind names an external data source queried through the gateway
// ("company_registry", "vat_registry", "blacklist").
type SourceKind string

const (
	SourceCompanyRegistry SourceKind = "company_registry"
	SourceVATRegistry     SourceKind = "vat_registry"
	SourceBlacklist       SourceKind = "blacklist"
)

func (s SourceKind) String() string { return string(s) }
