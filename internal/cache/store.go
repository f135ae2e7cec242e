package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ganot/tally-mcp/internal/domain/timesheet"
	"github.com/ganot/tally-mcp/internal/repository"
	"github.com/ganot/tally-mcp/internal/timeutil"
)

// Source names one of the independently fetched collections.
type Source string

const (
	SourceEntries  Source = "time_entries"
	SourceServices Source = "services"
	SourceSections Source = "sections"
	SourceTimers   Source = "timers"
)

// Sources lists every source in display order.
var Sources = []Source{SourceEntries, SourceServices, SourceSections, SourceTimers}

// SourceStatus is the fetch state of one source.
type SourceStatus struct {
	Loading   bool
	Err       error
	FetchedAt time.Time
}

// Apply derives a new snapshot from the current one. Implementations must not
// modify their argument in place; Clone first.
type Apply func(timesheet.Collections) timesheet.Collections

// Mutation describes one optimistic change.
type Mutation struct {
	// OperationID tags the pending operation. Generated when empty.
	OperationID string
	Name        string
	// Optimistic is published before Run starts. Optional.
	Optimistic Apply
	// Run performs the remote work and returns the change to commit.
	Run func(ctx context.Context) (Apply, error)
}

// Pending is a mutation that has started but not settled.
type Pending struct {
	OperationID string
	Name        string
	StartedAt   time.Time
}

// Store holds the raw collections and is their only writer.
//
// Mutations take a snapshot, publish the optimistic change, run the remote
// work without holding the lock, then either commit or restore the snapshot.
// Overlapping mutations are not serialized: a rollback restores the snapshot
// taken when that mutation started.
type Store struct {
	mu      sync.RWMutex
	data    timesheet.Collections
	status  map[Source]SourceStatus
	pending map[string]Pending

	events chan Event
	clock  timeutil.Clock
	logger *slog.Logger
}

// New creates an empty store.
func New(clock timeutil.Clock, logger *slog.Logger) *Store {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	status := make(map[Source]SourceStatus, len(Sources))
	for _, src := range Sources {
		status[src] = SourceStatus{}
	}
	return &Store{
		status:  status,
		pending: make(map[string]Pending),
		events:  make(chan Event, 64),
		clock:   clock,
		logger:  logger,
	}
}

// Events exposes change notifications. Events are dropped when nobody reads.
func (s *Store) Events() <-chan Event {
	return s.events
}

// Snapshot returns the current collections. Treat the result as immutable.
func (s *Store) Snapshot() timesheet.Collections {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Set replaces all collections.
func (s *Store) Set(c timesheet.Collections) {
	s.mu.Lock()
	s.data = c
	s.mu.Unlock()
	s.emit(Event{Kind: EventRefreshed})
}

// Status returns the fetch state of every source.
func (s *Store) Status() map[Source]SourceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.status)
}

// Pending lists unsettled mutations, oldest first.
func (s *Store) Pending() []Pending {
	s.mu.RLock()
	out := slices.Collect(maps.Values(s.pending))
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b Pending) int { return a.StartedAt.Compare(b.StartedAt) })
	return out
}

// Mutate runs m and returns its error. On failure the collections are reset
// to the snapshot taken before the optimistic change.
func (s *Store) Mutate(ctx context.Context, m Mutation) error {
	if m.Run == nil {
		return fmt.Errorf("mutate %s: missing run", m.Name)
	}
	if m.OperationID == "" {
		m.OperationID = uuid.NewString()
	}

	s.mu.Lock()
	snapshot := s.data
	if m.Optimistic != nil {
		s.data = m.Optimistic(snapshot)
	}
	s.pending[m.OperationID] = Pending{OperationID: m.OperationID, Name: m.Name, StartedAt: s.clock.Now()}
	s.mu.Unlock()
	if m.Optimistic != nil {
		s.emit(Event{Kind: EventOptimistic, Operation: m.Name, OperationID: m.OperationID})
	}

	commit, err := m.Run(ctx)

	s.mu.Lock()
	delete(s.pending, m.OperationID)
	if err != nil {
		s.data = snapshot
	} else if commit != nil {
		s.data = commit(s.data)
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Debug("mutation rolled back", "operation", m.Name, "operation_id", m.OperationID, "error", err)
		s.emit(Event{Kind: EventRolledBack, Operation: m.Name, OperationID: m.OperationID, Err: err})
		return err
	}
	s.emit(Event{Kind: EventCommitted, Operation: m.Name, OperationID: m.OperationID})
	return nil
}

// Refresh fetches every source concurrently. A failing source keeps its
// previous data and records its error; the others still update. The returned
// error joins the per-source failures.
func (s *Store) Refresh(ctx context.Context, reader repository.TimesheetReader, day string) error {
	s.mu.Lock()
	for _, src := range Sources {
		st := s.status[src]
		st.Loading = true
		s.status[src] = st
	}
	s.mu.Unlock()

	var (
		g    errgroup.Group
		errs = make([]error, len(Sources))
	)
	for i, src := range Sources {
		g.Go(func() error {
			errs[i] = s.refreshSource(ctx, reader, src, day)
			return nil
		})
	}
	_ = g.Wait()

	s.emit(Event{Kind: EventRefreshed})
	return errors.Join(errs...)
}

func (s *Store) refreshSource(ctx context.Context, reader repository.TimesheetReader, src Source, day string) error {
	var (
		apply func(*timesheet.Collections)
		err   error
	)
	switch src {
	case SourceEntries:
		var v []timesheet.TimeEntry
		v, err = reader.ListTimeEntries(ctx)
		apply = func(c *timesheet.Collections) { c.Entries = v }
	case SourceServices:
		var v []timesheet.Service
		v, err = reader.ListServices(ctx)
		apply = func(c *timesheet.Collections) { c.Services = v }
	case SourceSections:
		var v []timesheet.Section
		v, err = reader.ListSections(ctx)
		apply = func(c *timesheet.Collections) { c.Sections = v }
	case SourceTimers:
		var v []timesheet.Timer
		v, err = reader.ListTimers(ctx, day)
		apply = func(c *timesheet.Collections) { c.Timers = v }
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.status[src]
	st.Loading = false
	if err != nil {
		st.Err = err
		s.status[src] = st
		s.logger.Warn("failed to fetch source", "source", src, "error", err)
		return fmt.Errorf("fetching %s: %w", src, err)
	}
	st.Err = nil
	st.FetchedAt = s.clock.Now()
	s.status[src] = st

	next := s.data
	apply(&next)
	s.data = next
	return nil
}

func (s *Store) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}
