//go:build integration

package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"securedeal/pkg/testutil/containers"
)

func TestPostgresStoreAppendAndList(t *testing.T) {
	pg := containers.NewPostgresContainer(t, "../../../migrations")
	store := NewPostgresStore(pg.DB)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Millisecond)
	events := []Event{
		{
			Timestamp:     base,
			RunID:         "run-1",
			OpportunityID: "opp-1",
			Action:        ActionRunStarted,
			TriggerSource: "UI",
			ClientIP:      "10.0.0.7",
			UserAgent:     "Mozilla/5.0",
			Browser:       "Chrome",
			Platform:      "Windows 10",
		},
		{
			Timestamp:     base.Add(time.Second),
			RunID:         "run-1",
			OpportunityID: "opp-1",
			Action:        ActionRunFinished,
			Status:        "GREEN",
			SnapshotHash:  "abc123",
		},
		{
			Timestamp: base,
			RunID:     "run-2",
			Action:    ActionRunStarted,
		},
	}
	for _, e := range events {
		require.NoError(t, store.Append(ctx, e))
	}

	trail, err := store.ListByRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, trail, 2)
	require.Equal(t, ActionRunStarted, trail[0].Action)
	require.Equal(t, ActionRunFinished, trail[1].Action)
	require.Equal(t, "Chrome", trail[0].Browser)
	require.Equal(t, "GREEN", trail[1].Status)

	trail, err = store.ListByRun(ctx, "run-3")
	require.NoError(t, err)
	require.Empty(t, trail)
}
