package activity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ganot/tally-mcp/internal/domain/activity"
	"github.com/ganot/tally-mcp/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestActivityService_LogAndList(t *testing.T) {
	ctx := context.Background()

	repo := &mocks.ActivityRepository{}
	entry := &activity.Entry{
		OperationID: "op1",
		Action:      activity.ActionStopTimer,
		Phase:       activity.PhasePending,
		Title:       "Stopping timer",
	}

	repo.On("Log", ctx, entry).Return(nil)
	repo.On("List", ctx, activity.ListOptions{EntryID: "1", Limit: activity.DefaultListLimit}).Return([]activity.Entry{*entry}, nil)

	svc := activity.NewService(repo, nil)
	require.NoError(t, svc.LogActivity(ctx, entry))
	require.False(t, entry.CreatedAt.IsZero())

	entries, err := svc.GetRecentActivity(ctx, activity.ListOptions{EntryID: "1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	repo.AssertExpectations(t)
}

func TestActivityService_LogActivity_Invalid(t *testing.T) {
	svc := activity.NewService(&mocks.ActivityRepository{}, nil)
	require.ErrorIs(t, svc.LogActivity(context.Background(), nil), activity.ErrInvalidInput)
	require.ErrorIs(t, svc.LogActivity(context.Background(), &activity.Entry{Action: activity.ActionCopyNote}), activity.ErrInvalidInput)
}

func TestActivityService_ReportSwallowsErrors(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ActivityRepository{}
	repo.On("Log", ctx, mock.Anything).Return(errors.New("disk full"))

	svc := activity.NewService(repo, nil)
	require.NotPanics(t, func() {
		svc.Report(ctx, activity.Entry{
			OperationID: "op1",
			Action:      activity.ActionRecreate,
			Phase:       activity.PhaseFailure,
		})
	})
	repo.AssertNumberOfCalls(t, "Log", 1)
}
