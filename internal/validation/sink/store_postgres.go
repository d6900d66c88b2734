package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"securedeal/internal/validation/models"
	id "securedeal/pkg/domain"
)

// PostgresStore persists runs with scalar columns for querying and the full
// field results as JSONB.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, result models.RunResult) error {
	fields, err := json.Marshal(result.Results)
	if err != nil {
		return fmt.Errorf("marshal field results: %w", err)
	}
	stats, err := json.Marshal(result.Stats)
	if err != nil {
		return fmt.Errorf("marshal statistics: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO validation_runs (
			id, opportunity_id, overall_status, run_state, snapshot_hash,
			started_at, completed_at, duration_ms, external_calls, cache_hits,
			field_results, statistics
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		result.ID.String(), result.OpportunityID.String(),
		string(result.OverallStatus), string(result.State), result.SnapshotHash,
		result.StartedAt, result.CompletedAt, result.DurationMS,
		result.ExternalCalls, result.CacheHits, fields, stats)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

const runColumns = `id, opportunity_id, overall_status, run_state, snapshot_hash,
	started_at, completed_at, duration_ms, external_calls, cache_hits,
	field_results, statistics`

func (s *PostgresStore) FindByID(ctx context.Context, runID id.RunID) (models.RunResult, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM validation_runs WHERE id = $1`, runID.String())
	result, err := scanRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RunResult{}, ErrNotFound
	}
	if err != nil {
		return models.RunResult{}, fmt.Errorf("find run by id: %w", err)
	}
	return result, nil
}

func (s *PostgresStore) ListByOpportunity(ctx context.Context, opportunityID id.OpportunityID) ([]models.RunResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM validation_runs
		WHERE opportunity_id = $1 ORDER BY started_at DESC`, opportunityID.String())
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []models.RunResult
	for rows.Next() {
		result, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

func scanRun(scan func(...any) error) (models.RunResult, error) {
	var (
		result        models.RunResult
		run, opp      string
		status, state string
		fields, stats []byte
	)
	if err := scan(&run, &opp, &status, &state, &result.SnapshotHash,
		&result.StartedAt, &result.CompletedAt, &result.DurationMS,
		&result.ExternalCalls, &result.CacheHits, &fields, &stats); err != nil {
		return models.RunResult{}, err
	}
	result.ID = id.RunID(run)
	result.OpportunityID = id.OpportunityID(opp)
	result.OverallStatus = models.Status(status)
	result.State = models.RunState(state)
	if err := json.Unmarshal(fields, &result.Results); err != nil {
		return models.RunResult{}, fmt.Errorf("unmarshal field results: %w", err)
	}
	if err := json.Unmarshal(stats, &result.Stats); err != nil {
		return models.RunResult{}, fmt.Errorf("unmarshal statistics: %w", err)
	}
	return result, nil
}
