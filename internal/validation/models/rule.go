package models

import (
	id "securedeal/pkg/domain"
)

// Severity classifies how a rule's mismatch weighs into the overall verdict.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

// Valid reports whether the severity is one of the known levels.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

// ComparisonType selects the comparator applied to the normalized values.
type ComparisonType string

const (
	CompareExact            ComparisonType = "EXACT"
	CompareFuzzy            ComparisonType = "FUZZY"
	CompareContains         ComparisonType = "CONTAINS"
	CompareRegex            ComparisonType = "REGEX"
	CompareNumericTolerance ComparisonType = "NUMERIC_TOLERANCE"
	CompareDateTolerance    ComparisonType = "DATE_TOLERANCE"
	CompareExists           ComparisonType = "EXISTS"
	CompareNotExists        ComparisonType = "NOT_EXISTS"
	CompareInList           ComparisonType = "IN_LIST"
)

// ToleranceMode distinguishes absolute from percentage tolerances.
type ToleranceMode string

const (
	ToleranceAbsolute   ToleranceMode = "absolute"
	TolerancePercentage ToleranceMode = "percentage"
)

// DateDirection constrains date-tolerance comparisons. The directional modes
// exist for fraud checks (e.g. re-registration must predate the purchase by a
// minimum number of days).
type DateDirection string

const (
	DateWithinRange   DateDirection = "WITHIN_RANGE"
	DateMinDaysBefore DateDirection = "MIN_DAYS_BEFORE"
	DateMaxDaysAfter  DateDirection = "MAX_DAYS_AFTER"
)

// Comparison carries the comparator type and its type-specific parameters.
// Which parameters must be set is enforced at snapshot load time, so the
// comparator library can trust the values it receives.
type Comparison struct {
	Type          ComparisonType `json:"type"`
	CaseSensitive bool           `json:"caseSensitive,omitempty"`
	Threshold     float64        `json:"threshold,omitempty"`     // FUZZY, in [0,1]
	Tolerance     float64        `json:"tolerance,omitempty"`     // NUMERIC/DATE tolerance
	ToleranceMode ToleranceMode  `json:"toleranceMode,omitempty"` // absolute (default) or percentage
	Direction     DateDirection  `json:"direction,omitempty"`     // DATE_TOLERANCE only
	Pattern       string         `json:"pattern,omitempty"`       // REGEX
	AllowedValues []string       `json:"allowedValues,omitempty"` // IN_LIST
}

// EntityKind names a logical value source referenced by a rule side.
type EntityKind string

const (
	EntityVehicle         EntityKind = "vehicle"
	EntityVendor          EntityKind = "vendor"
	EntityOCRVehicleReg   EntityKind = "ocr_orv"
	EntityOCRIdentityCard EntityKind = "ocr_op"
	EntityOCRTechCert     EntityKind = "ocr_vtp"
	EntityCompanyRegistry EntityKind = "company_registry"
	EntityVATRegistry     EntityKind = "vat_registry"
	EntityBlacklist       EntityKind = "blacklist"
)

// ConditionEntities lists the entity kinds a rule condition may reference.
// External entities are excluded; conditions decide applicability before any
// gateway fetch happens.
func ConditionEntities() []EntityKind {
	return []EntityKind{
		EntityVehicle,
		EntityVendor,
		EntityOCRVehicleReg,
		EntityOCRIdentityCard,
		EntityOCRTechCert,
	}
}

// External reports whether values for this entity come through the data
// source gateway rather than from the input record.
func (e EntityKind) External() bool {
	switch e {
	case EntityCompanyRegistry, EntityVATRegistry, EntityBlacklist:
		return true
	}
	return false
}

// SourceKind maps an external entity to its gateway source key.
func (e EntityKind) SourceKind() id.SourceKind {
	return id.SourceKind(e)
}

// FieldRef describes one side of a comparison: where the value lives and the
// normalization chain applied before comparing.
type FieldRef struct {
	Entity     EntityKind `json:"entity"`
	Field      string     `json:"field"`
	Transforms []string   `json:"transforms,omitempty"`
}

// VendorType filters rules by the kind of seller.
type VendorType string

const (
	VendorPhysicalPerson VendorType = "PHYSICAL_PERSON"
	VendorCompany        VendorType = "COMPANY"
)

// DocumentType identifies a scanned document kind.
type DocumentType string

const (
	DocVehicleRegistration DocumentType = "ORV" // vehicle registration certificate
	DocIdentityCard        DocumentType = "OP"  // national identity card
	DocTechnicalCert       DocumentType = "VTP" // technical certificate part II
)

// OnError selects how an ERROR outcome contributes to aggregation.
// Empty means the default: count at the rule's own severity.
type OnError string

const (
	OnErrorEscalate OnError = "" // default: ERROR counts at rule severity
	OnErrorIgnore   OnError = "IGNORE"
)

// Rule is one versioned comparison definition. Rules are immutable once
// loaded into a snapshot.
type Rule struct {
	ID          id.RuleID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Version     int        `json:"version"`
	Enabled     bool       `json:"enabled"`
	Source      FieldRef   `json:"source"`
	Target      FieldRef   `json:"target"`
	Comparison  Comparison `json:"comparison"`
	Severity    Severity   `json:"severity"`
	BlockOnFail bool       `json:"blockOnFail,omitempty"`
	OnError     OnError    `json:"onError,omitempty"`

	// Applicability filters. A rule whose filters do not match the input
	// record is recorded SKIPPED without being dispatched.
	ApplicableTo     []VendorType `json:"applicableTo,omitempty"`
	RequiresDocument DocumentType `json:"requiresDocument,omitempty"`
	// Condition is an optional CEL expression over the input record,
	// compiled at snapshot load time.
	Condition string `json:"condition,omitempty"`
}
