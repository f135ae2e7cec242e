package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ganot/tally-mcp/internal/cache"
	"github.com/ganot/tally-mcp/internal/domain/timesheet"
	"github.com/ganot/tally-mcp/internal/repository/mocks"
	"github.com/ganot/tally-mcp/internal/timeutil"
)

var now = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func seeded() *cache.Store {
	s := cache.New(timeutil.FixedClock{At: now}, nil)
	s.Set(timesheet.Collections{
		Entries: []timesheet.TimeEntry{{ID: "1", Attributes: timesheet.TimeEntryAttributes{Time: 10}}},
	})
	return s
}

func setTime(minutes int) cache.Apply {
	return func(c timesheet.Collections) timesheet.Collections {
		next := c.Clone()
		e, _ := next.FindEntry("1")
		e.Attributes.Time = minutes
		next.ReplaceEntry(e)
		return next
	}
}

func TestStore_MutateCommits(t *testing.T) {
	s := seeded()

	err := s.Mutate(context.Background(), cache.Mutation{
		Name:       "update",
		Optimistic: setTime(20),
		Run: func(ctx context.Context) (cache.Apply, error) {
			e, _ := s.Snapshot().FindEntry("1")
			require.Equal(t, 20, e.Attributes.Time, "optimistic change visible while running")
			require.Len(t, s.Pending(), 1)
			return setTime(30), nil
		},
	})
	require.NoError(t, err)

	e, _ := s.Snapshot().FindEntry("1")
	require.Equal(t, 30, e.Attributes.Time)
	require.Empty(t, s.Pending())
}

func TestStore_MutateRollsBack(t *testing.T) {
	s := seeded()
	before := s.Snapshot()
	boom := errors.New("boom")

	err := s.Mutate(context.Background(), cache.Mutation{
		Name:       "update",
		Optimistic: setTime(20),
		Run: func(ctx context.Context) (cache.Apply, error) {
			return nil, boom
		},
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, before, s.Snapshot())
	require.Empty(t, s.Pending())
}

func TestStore_MutateWithoutOptimisticChange(t *testing.T) {
	s := seeded()
	err := s.Mutate(context.Background(), cache.Mutation{
		Name: "append",
		Run: func(ctx context.Context) (cache.Apply, error) {
			require.Len(t, s.Snapshot().Entries, 1)
			return func(c timesheet.Collections) timesheet.Collections {
				next := c.Clone()
				next.ReplaceEntry(timesheet.TimeEntry{ID: "2"})
				return next
			}, nil
		},
	})
	require.NoError(t, err)
	require.Len(t, s.Snapshot().Entries, 2)
}

func TestStore_MutateRequiresRun(t *testing.T) {
	require.Error(t, seeded().Mutate(context.Background(), cache.Mutation{Name: "noop"}))
}

func TestStore_Events(t *testing.T) {
	s := cache.New(nil, nil)
	s.Set(timesheet.Collections{})
	require.Equal(t, cache.EventRefreshed, (<-s.Events()).Kind)

	_ = s.Mutate(context.Background(), cache.Mutation{
		OperationID: "op1",
		Name:        "fail",
		Optimistic:  func(c timesheet.Collections) timesheet.Collections { return c },
		Run: func(ctx context.Context) (cache.Apply, error) {
			return nil, errors.New("nope")
		},
	})
	require.Equal(t, cache.EventOptimistic, (<-s.Events()).Kind)
	ev := <-s.Events()
	require.Equal(t, cache.EventRolledBack, ev.Kind)
	require.Equal(t, "op1", ev.OperationID)
	require.Error(t, ev.Err)
}

func TestStore_RefreshKeepsFailedSource(t *testing.T) {
	ctx := context.Background()
	s := cache.New(timeutil.FixedClock{At: now}, nil)
	s.Set(timesheet.Collections{
		Services: []timesheet.Service{{ID: "old"}},
	})

	api := &mocks.TimesheetAPI{}
	api.On("ListTimeEntries", mock.Anything).Return([]timesheet.TimeEntry{{ID: "1"}}, nil)
	api.On("ListServices", mock.Anything).Return(nil, errors.New("502"))
	api.On("ListSections", mock.Anything).Return([]timesheet.Section{{ID: "sec1"}}, nil)
	api.On("ListTimers", mock.Anything, "2024-03-15").Return([]timesheet.Timer{{ID: "t1"}}, nil)

	err := s.Refresh(ctx, api, "2024-03-15")
	require.Error(t, err)

	snap := s.Snapshot()
	require.Len(t, snap.Entries, 1)
	require.Equal(t, "old", snap.Services[0].ID)
	require.Len(t, snap.Sections, 1)
	require.Len(t, snap.Timers, 1)

	status := s.Status()
	require.Error(t, status[cache.SourceServices].Err)
	require.False(t, status[cache.SourceServices].Loading)
	require.NoError(t, status[cache.SourceEntries].Err)
	require.Equal(t, now, status[cache.SourceEntries].FetchedAt)
	api.AssertExpectations(t)
}
