package models

import (
	"fmt"
	"strconv"

	id "securedeal/pkg/domain"
)

// Fields is a flat bag of already-typed field values for one entity. Values
// are strings, numbers or bools; the transform pipeline stringifies them.
type Fields map[string]any

// InputRecord is the engine's input: operator-entered data, document
// extractions, and the keys needed to query external registries. The engine
// never parses raw documents; extraction happens upstream.
type InputRecord struct {
	OpportunityID id.OpportunityID         `json:"opportunityId,omitempty"`
	Entities      map[EntityKind]Fields    `json:"entities"`
	RegistryKeys  map[id.SourceKind]string `json:"registryKeys,omitempty"`
}

// Lookup resolves a non-external field value. The second return reports
// presence; empty strings and nils count as absent.
func (r *InputRecord) Lookup(entity EntityKind, field string) (string, bool) {
	fields, ok := r.Entities[entity]
	if !ok {
		return "", false
	}
	return fields.Value(field)
}

// HasDocument reports whether an extraction for the given document type was
// supplied.
func (r *InputRecord) HasDocument(doc DocumentType) bool {
	switch doc {
	case DocVehicleRegistration:
		return len(r.Entities[EntityOCRVehicleReg]) > 0
	case DocIdentityCard:
		return len(r.Entities[EntityOCRIdentityCard]) > 0
	case DocTechnicalCert:
		return len(r.Entities[EntityOCRTechCert]) > 0
	}
	return false
}

// VendorKind returns the seller type recorded on the vendor entity, or ""
// when unknown.
func (r *InputRecord) VendorKind() VendorType {
	v, ok := r.Lookup(EntityVendor, "vendor_type")
	if !ok {
		return ""
	}
	return VendorType(v)
}

// RegistryKey returns the lookup key for an external source. Explicit keys
// win; otherwise the key is derived from the vendor entity ("" if neither is
// available).
func (r *InputRecord) RegistryKey(source id.SourceKind) string {
	if key, ok := r.RegistryKeys[source]; ok && key != "" {
		return key
	}
	var field string
	switch source {
	case id.SourceCompanyRegistry:
		field = "company_id"
	case id.SourceVATRegistry:
		field = "vat_id"
	case id.SourceBlacklist:
		field = "name"
	default:
		return ""
	}
	key, _ := r.Lookup(EntityVendor, field)
	return key
}

// ConditionVars exposes the record as CEL variables, one map per entity.
// Every declared entity is bound, absent ones as empty maps, so conditions
// never fail on a missing variable.
func (r *InputRecord) ConditionVars() map[string]any {
	vars := make(map[string]any, len(r.Entities))
	for _, entity := range ConditionEntities() {
		vars[string(entity)] = map[string]any{}
	}
	for entity, fields := range r.Entities {
		m := make(map[string]any, len(fields))
		for k, v := range fields {
			m[k] = v
		}
		vars[string(entity)] = m
	}
	return vars
}

// Value stringifies and returns a field. Numbers keep their shortest
// representation so "100" and 100 compare equal downstream.
func (f Fields) Value(field string) (string, bool) {
	raw, ok := f[field]
	if !ok || raw == nil {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case []string:
		if len(v) == 0 {
			return "", false
		}
		return joinList(v), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

func joinList(vs []string) string {
	out := vs[0]
	for _, v := range vs[1:] {
		out += "," + v
	}
	return out
}
