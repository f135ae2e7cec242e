package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ganot/tally-mcp/internal/domain/activity"
)

func TestActivityRepository_LogList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	base := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	pending := &activity.Entry{
		OperationID: "op1",
		Action:      activity.ActionStopTimer,
		Phase:       activity.PhasePending,
		Title:       "Stopping timer",
		EntryID:     "1",
		CreatedAt:   base,
	}
	failure := &activity.Entry{
		OperationID: "op1",
		Action:      activity.ActionStopTimer,
		Phase:       activity.PhaseFailure,
		Title:       "Failed to stop timer",
		Message:     "500 Internal Server Error",
		EntryID:     "1",
		CreatedAt:   base.Add(time.Second),
	}

	require.NoError(t, repo.Log(ctx, pending))
	require.NoError(t, repo.Log(ctx, failure))
	require.NotZero(t, pending.ID)

	entries, err := repo.List(ctx, activity.ListOptions{OperationID: "op1"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, activity.PhaseFailure, entries[0].Phase)
	require.Equal(t, "500 Internal Server Error", entries[0].Message)
	require.Equal(t, "1", entries[0].EntryID)
	require.Equal(t, activity.PhasePending, entries[1].Phase)
	require.True(t, base.Equal(entries[1].CreatedAt))
}

func TestActivityRepository_Filters(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	require.NoError(t, repo.Log(ctx, &activity.Entry{
		OperationID: "op1", Action: activity.ActionStopTimer, Phase: activity.PhaseSuccess, Title: "Timer stopped", EntryID: "1",
	}))
	require.NoError(t, repo.Log(ctx, &activity.Entry{
		OperationID: "op2", Action: activity.ActionRecreate, Phase: activity.PhaseFailure, Title: "Failed to restart timer", EntryID: "2",
	}))
	require.NoError(t, repo.Log(ctx, &activity.Entry{
		OperationID: "op3", Action: activity.ActionCopyNote, Phase: activity.PhaseSuccess, Title: "Copied note to clipboard",
	}))

	action := activity.ActionRecreate
	entries, err := repo.List(ctx, activity.ListOptions{Action: &action})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "op2", entries[0].OperationID)

	phase := activity.PhaseSuccess
	entries, err = repo.List(ctx, activity.ListOptions{Phase: &phase})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	entries, err = repo.List(ctx, activity.ListOptions{EntryID: "1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entries, err = repo.List(ctx, activity.ListOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entries, err = repo.List(ctx, activity.ListOptions{Offset: 2})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "op1", entries[0].OperationID)

	entries, err = repo.List(ctx, activity.ListOptions{OperationID: "op3"})
	require.NoError(t, err)
	require.Equal(t, "", entries[0].EntryID)
}
