package timer

import (
	"context"

	"github.com/ganot/tally-mcp/internal/cache"
	"github.com/ganot/tally-mcp/internal/domain/activity"
	"github.com/ganot/tally-mcp/internal/domain/timesheet"
)

// API is the remote surface the controller mutates.
type API interface {
	UpdateTimeEntry(ctx context.Context, id string, patch timesheet.TimeEntryPatch) (*timesheet.TimeEntry, error)
	CreateTimeEntry(ctx context.Context, req timesheet.NewTimeEntry) (*timesheet.TimeEntry, error)
	DeleteTimeEntry(ctx context.Context, id string) error
	StopTimer(ctx context.Context, id string) (*timesheet.Timer, error)
	CreateTimer(ctx context.Context, timeEntryID string) (*timesheet.Timer, error)
}

// Store owns the collections.
type Store interface {
	Snapshot() timesheet.Collections
	Mutate(ctx context.Context, m cache.Mutation) error
}

// Reporter receives phase reports. It must not block.
type Reporter interface {
	Report(ctx context.Context, entry activity.Entry)
}

// Clipboard receives copied notes.
type Clipboard interface {
	WriteAll(text string) error
}
