// Package app wires the collection store, the view builder and the timer
// controller around one remote API.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/ganot/tally-mcp/internal/cache"
	"github.com/ganot/tally-mcp/internal/domain/activity"
	"github.com/ganot/tally-mcp/internal/domain/timer"
	"github.com/ganot/tally-mcp/internal/domain/timesheet"
	"github.com/ganot/tally-mcp/internal/repository"
	"github.com/ganot/tally-mcp/internal/timeutil"
)

// Options configure an App.
type Options struct {
	View  timesheet.Options
	Clock timeutil.Clock
}

// SourceState is the fetch state of one source as shown to users.
type SourceState struct {
	Source    cache.Source `json:"source"`
	Loading   bool         `json:"loading"`
	Error     string       `json:"error,omitempty"`
	FetchedAt string       `json:"fetched_at,omitempty"`
}

// Listing is the current view plus per-source status.
type Listing struct {
	timesheet.View
	Sources []SourceState `json:"sources"`
	Pending int           `json:"pending"`
}

// App is the single place that owns the store for a process.
type App struct {
	Timers *timer.Service

	api      repository.TimesheetAPI
	store    *cache.Store
	builder  *timesheet.Builder
	activity *activity.Service
	clock    timeutil.Clock
	location *time.Location
	logger   *slog.Logger
}

// New creates an App. activitySvc receives the phase reports and may be nil.
func New(api repository.TimesheetAPI, activitySvc *activity.Service, opts Options, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Clock == nil {
		opts.Clock = timeutil.RealClock{}
	}
	if opts.View.Location == nil {
		opts.View.Location = time.Local
	}

	store := cache.New(opts.Clock, logger)
	var reporter timer.Reporter
	if activitySvc != nil {
		reporter = activitySvc
	}

	return &App{
		Timers: timer.NewService(api, store, reporter, timer.Options{
			Clock:             opts.Clock,
			Location:          opts.View.Location,
			SimplifyJiraLinks: opts.View.SimplifyJiraLinks,
		}, logger),
		api:      api,
		store:    store,
		builder:  timesheet.NewBuilder(opts.View, opts.Clock),
		activity: activitySvc,
		clock:    opts.Clock,
		location: opts.View.Location,
		logger:   logger,
	}
}

// Store exposes the collection store.
func (a *App) Store() *cache.Store {
	return a.store
}

// Refresh reloads every source. Timers are fetched for today only.
func (a *App) Refresh(ctx context.Context) error {
	day := a.clock.Now().In(a.location).Format(timeutil.DateLayout)
	return a.store.Refresh(ctx, a.api, day)
}

// EnsureLoaded refreshes when no time entries have been fetched yet.
func (a *App) EnsureLoaded(ctx context.Context) error {
	if !a.store.Status()[cache.SourceEntries].FetchedAt.IsZero() {
		return nil
	}
	return a.Refresh(ctx)
}

// Listing builds the current view.
func (a *App) Listing() Listing {
	status := a.store.Status()
	sources := make([]SourceState, 0, len(cache.Sources))
	for _, src := range cache.Sources {
		st := status[src]
		state := SourceState{Source: src, Loading: st.Loading}
		if st.Err != nil {
			state.Error = st.Err.Error()
		}
		if !st.FetchedAt.IsZero() {
			state.FetchedAt = st.FetchedAt.Format(time.RFC3339)
		}
		sources = append(sources, state)
	}

	return Listing{
		View:    a.builder.Build(a.store.Snapshot()),
		Sources: sources,
		Pending: len(a.store.Pending()),
	}
}

// Row builds one row regardless of the visible span.
func (a *App) Row(id string) (timesheet.Row, bool) {
	return a.builder.Row(a.store.Snapshot(), id)
}

// RecentActivity lists the activity log. It returns nothing when no activity
// service is configured.
func (a *App) RecentActivity(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error) {
	if a.activity == nil {
		return nil, nil
	}
	return a.activity.GetRecentActivity(ctx, opts)
}

// WatchEvents drains store events until ctx is done, passing each to handle.
// A nil handle logs them.
func (a *App) WatchEvents(ctx context.Context, handle func(cache.Event)) {
	if handle == nil {
		handle = a.logEvent
	}
	events := a.store.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			handle(ev)
		}
	}
}

func (a *App) logEvent(ev cache.Event) {
	if ev.Kind == cache.EventRolledBack {
		a.logger.Warn("store rolled back",
			"operation", ev.Operation,
			"operation_id", ev.OperationID,
			"error", ev.Err,
		)
		return
	}
	a.logger.Debug("store changed",
		"kind", ev.Kind,
		"operation", ev.Operation,
		"operation_id", ev.OperationID,
	)
}
