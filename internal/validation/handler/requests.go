package handler

import (
	"fmt"

	"securedeal/internal/validation/models"
	id "securedeal/pkg/domain"
)

// validateRequest is the wire form of a validation run request. Entities are
// keyed by entity kind; values arrive already extracted and typed.
type validateRequest struct {
	OpportunityID string                   `json:"opportunityId"`
	Entities      map[string]models.Fields `json:"entities"`
	RegistryKeys  map[string]string        `json:"registryKeys,omitempty"`
}

func (r validateRequest) toRecord(requireOpportunity bool) (models.InputRecord, error) {
	if requireOpportunity && r.OpportunityID == "" {
		return models.InputRecord{}, fmt.Errorf("opportunityId is required")
	}
	if len(r.Entities) == 0 {
		return models.InputRecord{}, fmt.Errorf("entities must not be empty")
	}
	record := models.InputRecord{
		OpportunityID: id.OpportunityID(r.OpportunityID),
		Entities:      make(map[models.EntityKind]models.Fields, len(r.Entities)),
	}
	for kind, fields := range r.Entities {
		record.Entities[models.EntityKind(kind)] = fields
	}
	if len(r.RegistryKeys) > 0 {
		record.RegistryKeys = make(map[id.SourceKind]string, len(r.RegistryKeys))
		for source, key := range r.RegistryKeys {
			record.RegistryKeys[id.SourceKind(source)] = key
		}
	}
	return record, nil
}

// previewRequest carries an input record plus optional candidate rules. With
// no candidates the active snapshot is previewed (fresh registry data, no
// persistence).
type previewRequest struct {
	validateRequest
	Rules []models.Rule `json:"rules,omitempty"`
}
