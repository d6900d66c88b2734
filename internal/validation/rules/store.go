package rules

import (
	"context"
	"errors"

	"securedeal/internal/validation/models"
)

// ErrNotFound is returned by stores when a rule id has no row.
var ErrNotFound = errors.New("rule not found")

// Store is the persistence port for rule definitions. Stores hold raw
// definitions only; all validation happens when a snapshot is loaded.
type Store interface {
	// List returns every stored rule, enabled or not.
	List(ctx context.Context) ([]models.Rule, error)
	// Put inserts or replaces a rule definition.
	Put(ctx context.Context, rule models.Rule) error
}
