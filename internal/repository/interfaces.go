package repository

import (
	"context"

	"github.com/ganot/tally-mcp/internal/domain/activity"
	"github.com/ganot/tally-mcp/internal/domain/timesheet"
)

// TimesheetReader fetches the raw collections from the remote API
type TimesheetReader interface {
	ListTimeEntries(ctx context.Context) ([]timesheet.TimeEntry, error)
	ListServices(ctx context.Context) ([]timesheet.Service, error)
	ListSections(ctx context.Context) ([]timesheet.Section, error)
	// ListTimers returns timers started on day (YYYY-MM-DD)
	ListTimers(ctx context.Context, day string) ([]timesheet.Timer, error)
}

// TimesheetWriter mutates remote time entries and timers
type TimesheetWriter interface {
	UpdateTimeEntry(ctx context.Context, id string, patch timesheet.TimeEntryPatch) (*timesheet.TimeEntry, error)
	CreateTimeEntry(ctx context.Context, req timesheet.NewTimeEntry) (*timesheet.TimeEntry, error)
	DeleteTimeEntry(ctx context.Context, id string) error
	StopTimer(ctx context.Context, id string) (*timesheet.Timer, error)
	CreateTimer(ctx context.Context, timeEntryID string) (*timesheet.Timer, error)
}

// TimesheetAPI is the full remote surface
type TimesheetAPI interface {
	TimesheetReader
	TimesheetWriter
}

// ActivityRepository manages activity log persistence
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.Entry) error
	List(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error)
}
