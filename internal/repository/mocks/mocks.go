package mocks

import (
	"context"

	"github.com/ganot/tally-mcp/internal/domain/activity"
	"github.com/ganot/tally-mcp/internal/domain/timesheet"
	"github.com/stretchr/testify/mock"
)

// TimesheetAPI is a mock for repository.TimesheetAPI.
type TimesheetAPI struct {
	mock.Mock
}

func (m *TimesheetAPI) ListTimeEntries(ctx context.Context) ([]timesheet.TimeEntry, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]timesheet.TimeEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TimesheetAPI) ListServices(ctx context.Context) ([]timesheet.Service, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]timesheet.Service); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TimesheetAPI) ListSections(ctx context.Context) ([]timesheet.Section, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]timesheet.Section); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TimesheetAPI) ListTimers(ctx context.Context, day string) ([]timesheet.Timer, error) {
	args := m.Called(ctx, day)
	if list, ok := args.Get(0).([]timesheet.Timer); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TimesheetAPI) UpdateTimeEntry(ctx context.Context, id string, patch timesheet.TimeEntryPatch) (*timesheet.TimeEntry, error) {
	args := m.Called(ctx, id, patch)
	if e, ok := args.Get(0).(*timesheet.TimeEntry); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TimesheetAPI) CreateTimeEntry(ctx context.Context, req timesheet.NewTimeEntry) (*timesheet.TimeEntry, error) {
	args := m.Called(ctx, req)
	if e, ok := args.Get(0).(*timesheet.TimeEntry); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TimesheetAPI) DeleteTimeEntry(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *TimesheetAPI) StopTimer(ctx context.Context, id string) (*timesheet.Timer, error) {
	args := m.Called(ctx, id)
	if t, ok := args.Get(0).(*timesheet.Timer); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TimesheetAPI) CreateTimer(ctx context.Context, timeEntryID string) (*timesheet.Timer, error) {
	args := m.Called(ctx, timeEntryID)
	if t, ok := args.Get(0).(*timesheet.Timer); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for repository.ActivityRepository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
