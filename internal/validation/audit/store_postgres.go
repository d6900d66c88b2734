package audit

import (
	"context"
	"database/sql"
	"fmt"

	id "securedeal/pkg/domain"
)

// PostgresStore persists audit events. Events are append-only; there is no
// update or delete path.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (
			ts, run_id, opportunity_id, action, triggered_by, trigger_source,
			client_ip, user_agent, browser, platform, status, snapshot_hash,
			external_calls, cache_hits, duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		event.Timestamp, event.RunID.String(), event.OpportunityID.String(),
		event.Action, event.TriggeredBy, event.TriggerSource,
		event.ClientIP, event.UserAgent, event.Browser, event.Platform,
		event.Status, event.SnapshotHash,
		event.ExternalCalls, event.CacheHits, event.DurationMS)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByRun(ctx context.Context, runID id.RunID) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ts, run_id, opportunity_id, action, triggered_by, trigger_source,
			client_ip, user_agent, browser, platform, status, snapshot_hash,
			external_calls, cache_hits, duration_ms
		FROM audit_events WHERE run_id = $1 ORDER BY ts`, runID.String())
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		var run, opp string
		if err := rows.Scan(&e.Timestamp, &run, &opp, &e.Action, &e.TriggeredBy,
			&e.TriggerSource, &e.ClientIP, &e.UserAgent, &e.Browser, &e.Platform,
			&e.Status, &e.SnapshotHash,
			&e.ExternalCalls, &e.CacheHits, &e.DurationMS); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.RunID = id.RunID(run)
		e.OpportunityID = id.OpportunityID(opp)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return out, nil
}
