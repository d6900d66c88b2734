package rules

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"securedeal/internal/validation/models"
)

// PostgresStore persists rule definitions as JSONB rows. The definition
// column is the source of truth; id, version and enabled are lifted out for
// indexing and listing.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) List(ctx context.Context) ([]models.Rule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT definition FROM validation_rules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var out []models.Rule
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		var rule models.Rule
		if err := json.Unmarshal(raw, &rule); err != nil {
			return nil, fmt.Errorf("unmarshal rule: %w", err)
		}
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Put(ctx context.Context, rule models.Rule) error {
	raw, err := json.Marshal(rule)
	if err != nil {
		return fmt.Errorf("marshal rule: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO validation_rules (id, version, enabled, definition, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (id) DO UPDATE SET
			version = EXCLUDED.version,
			enabled = EXCLUDED.enabled,
			definition = EXCLUDED.definition,
			updated_at = now()`,
		rule.ID.String(), rule.Version, rule.Enabled, raw)
	if err != nil {
		return fmt.Errorf("put rule %s: %w", rule.ID, err)
	}
	return nil
}
