package timer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ganot/tally-mcp/internal/cache"
	"github.com/ganot/tally-mcp/internal/domain/activity"
	"github.com/ganot/tally-mcp/internal/domain/timesheet"
	"github.com/ganot/tally-mcp/internal/textutil"
	"github.com/ganot/tally-mcp/internal/timeutil"
)

// Service drives the timer lifecycle: stop, recreate-and-start and switch.
// Every operation reports a pending phase followed by success or failure.
type Service struct {
	api       API
	store     Store
	reporter  Reporter
	clipboard Clipboard
	opts      Options
	logger    *slog.Logger
}

// NewService creates a new timer service. reporter may be nil.
func NewService(api API, store Store, reporter Reporter, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if reporter == nil {
		reporter = discardReporter{}
	}
	if opts.Clock == nil {
		opts.Clock = timeutil.RealClock{}
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Service{
		api:      api,
		store:    store,
		reporter: reporter,
		opts:     opts,
		logger:   logger,
	}
}

// WithClipboard sets the clipboard used by CopyNote.
func (s *Service) WithClipboard(c Clipboard) *Service {
	s.clipboard = c
	return s
}

// StopTimer stops the timer with the given id. The linked entry is shown as
// stopped until the API answers; on failure the previous snapshot is restored.
func (s *Service) StopTimer(ctx context.Context, timerID string) error {
	t, ok := s.store.Snapshot().FindTimer(timerID)
	if !ok {
		op := s.begin(activity.ActionStopTimer, "")
		op.failure(ctx, TitleNoTimer, ErrTimerNotFound)
		return ErrTimerNotFound
	}

	entryID := t.Relationships.TimeEntry.ID()
	op := s.begin(activity.ActionStopTimer, entryID)
	op.pending(ctx, TitleStopping)

	err := s.store.Mutate(ctx, cache.Mutation{
		OperationID: op.id,
		Name:        string(op.action),
		Optimistic: func(c timesheet.Collections) timesheet.Collections {
			return markStopped(c, entryID, s.opts.Clock.Now(), 0)
		},
		Run: func(ctx context.Context) (cache.Apply, error) {
			stopped, err := s.api.StopTimer(ctx, timerID)
			if err != nil {
				return nil, err
			}
			return func(c timesheet.Collections) timesheet.Collections {
				stoppedAt := s.opts.Clock.Now()
				total := 0
				next := c.Clone()
				if stopped != nil && stopped.ID != "" {
					next.ReplaceTimer(*stopped)
					if stopped.Attributes.StoppedAt != nil {
						stoppedAt = *stopped.Attributes.StoppedAt
					}
					total = stopped.Attributes.TotalTime
				}
				return markStopped(next, entryID, stoppedAt, total)
			}, nil
		},
	})
	if err != nil {
		op.failure(ctx, TitleStopFailed, err)
		return err
	}

	op.success(ctx, TitleStopped)
	return nil
}

// StopTimerForEntry stops the timer linked to the entry.
func (s *Service) StopTimerForEntry(ctx context.Context, entryID string) error {
	t, ok := s.store.Snapshot().TimerForEntry(entryID)
	if !ok {
		op := s.begin(activity.ActionStopTimer, entryID)
		op.failure(ctx, TitleNoTimer, ErrTimerNotFound)
		return ErrTimerNotFound
	}
	return s.StopTimer(ctx, t.ID)
}

// RecreateAndStart creates a copy of the entry dated today and starts a timer
// on it. If the timer cannot be started the new entry is deleted again.
func (s *Service) RecreateAndStart(ctx context.Context, entryID string) (*timesheet.TimeEntry, error) {
	source, ok := s.store.Snapshot().FindEntry(entryID)
	if !ok {
		return nil, ErrEntryNotFound
	}

	op := s.begin(activity.ActionRecreate, entryID)
	op.pending(ctx, TitleRecreating)

	var created timesheet.TimeEntry
	err := s.store.Mutate(ctx, cache.Mutation{
		OperationID: op.id,
		Name:        string(op.action),
		Run: func(ctx context.Context) (cache.Apply, error) {
			now := s.opts.Clock.Now()
			entry, err := s.api.CreateTimeEntry(ctx, timesheet.NewTimeEntry{
				Note:      source.Attributes.Note,
				Date:      now.In(s.opts.Location).Format(timeutil.DateLayout),
				StartedAt: now,
				PersonID:  source.Relationships.Person.ID(),
				ServiceID: source.Relationships.Service.ID(),
				TaskID:    source.Relationships.Task.ID(),
			})
			if err != nil {
				return nil, err
			}

			op.pending(ctx, TitleStarting)
			t, err := s.api.CreateTimer(ctx, entry.ID)
			if err == nil && (t == nil || t.ID == "") {
				err = ErrNoTimerCreated
			}
			if err != nil {
				s.discard(ctx, op, entry.ID)
				return nil, err
			}

			created = *entry
			if created.Attributes.TimerStartedAt == nil {
				startedAt := t.Attributes.StartedAt
				created.Attributes.TimerStartedAt = &startedAt
			}
			created.Attributes.TimerStoppedAt = nil
			timer := *t

			return func(c timesheet.Collections) timesheet.Collections {
				next := c.Clone()
				next.ReplaceEntry(created)
				next.ReplaceTimer(timer)
				return next
			}, nil
		},
	})
	if err != nil {
		op.failure(ctx, TitleRestartFailed, err)
		return nil, err
	}

	op.success(ctx, TitleRestarted)
	return &created, nil
}

// SwitchTimer stops whatever is running and restarts the given entry. When
// stopping fails nothing is recreated.
func (s *Service) SwitchTimer(ctx context.Context, entryID string) (*timesheet.TimeEntry, error) {
	snap := s.store.Snapshot()
	if _, ok := snap.FindEntry(entryID); !ok {
		return nil, ErrEntryNotFound
	}

	if running, ok := snap.RunningEntry(); ok {
		t, ok := snap.TimerForEntry(running.ID)
		if !ok {
			s.logger.Warn("running entry has no timer, skipping stop", "entry_id", running.ID)
		} else if err := s.StopTimer(ctx, t.ID); err != nil {
			return nil, fmt.Errorf("switch timer: %w", err)
		}
	}

	return s.RecreateAndStart(ctx, entryID)
}

// UpdateNote replaces the note of an entry.
func (s *Service) UpdateNote(ctx context.Context, entryID, note string) (*timesheet.TimeEntry, error) {
	if _, ok := s.store.Snapshot().FindEntry(entryID); !ok {
		return nil, ErrEntryNotFound
	}

	op := s.begin(activity.ActionUpdateNote, entryID)
	op.pending(ctx, TitleUpdatingNote)

	patch := timesheet.TimeEntryPatch{Note: &note}
	apply := func(c timesheet.Collections) timesheet.Collections {
		next := c.Clone()
		if e, ok := next.FindEntry(entryID); ok {
			next.ReplaceEntry(patch.Apply(e))
		}
		return next
	}

	var updated timesheet.TimeEntry
	err := s.store.Mutate(ctx, cache.Mutation{
		OperationID: op.id,
		Name:        string(op.action),
		Optimistic:  apply,
		Run: func(ctx context.Context) (cache.Apply, error) {
			if _, err := s.api.UpdateTimeEntry(ctx, entryID, patch); err != nil {
				return nil, err
			}
			return func(c timesheet.Collections) timesheet.Collections {
				next := apply(c)
				updated, _ = next.FindEntry(entryID)
				return next
			}, nil
		},
	})
	if err != nil {
		op.failure(ctx, TitleNoteFailed, err)
		return nil, err
	}

	op.success(ctx, TitleNoteUpdated)
	return &updated, nil
}

// CopyNote returns the entry's note, normalized unless asHTML is set, and
// writes it to the clipboard when one is configured.
func (s *Service) CopyNote(ctx context.Context, entryID string, asHTML bool) (string, error) {
	entry, ok := s.store.Snapshot().FindEntry(entryID)
	if !ok {
		return "", ErrEntryNotFound
	}

	op := s.begin(activity.ActionCopyNote, entryID)
	op.pending(ctx, TitleCopyingNote)

	text := entry.NoteText()
	if !asHTML {
		text = strings.TrimSpace(textutil.StripHTML(text))
		if s.opts.SimplifyJiraLinks {
			text = textutil.SimplifyJiraLinks(text)
		}
	}

	if s.clipboard != nil {
		if err := s.clipboard.WriteAll(text); err != nil {
			op.failure(ctx, TitleNoteCopyFailed, err)
			return "", fmt.Errorf("copy note: %w", err)
		}
	}
	op.success(ctx, TitleNoteCopied)
	return text, nil
}

// discard deletes an entry whose timer could not be started. The request is
// sent even if ctx is already done.
func (s *Service) discard(ctx context.Context, op operation, entryID string) {
	ctx = context.WithoutCancel(ctx)
	if err := s.api.DeleteTimeEntry(ctx, entryID); err != nil {
		s.logger.Error("failed to delete orphaned time entry",
			"operation_id", op.id,
			"entry_id", entryID,
			"error", err,
		)
		return
	}
	s.logger.Info("deleted orphaned time entry", "operation_id", op.id, "entry_id", entryID)
}

// markStopped stops the entry at at. The stored time becomes total when the
// API reported one, otherwise the minutes between the entry's start and at.
func markStopped(c timesheet.Collections, entryID string, at time.Time, total int) timesheet.Collections {
	next := c.Clone()
	e, ok := next.FindEntry(entryID)
	if !ok {
		return next
	}
	e.Attributes.TimerStoppedAt = &at
	switch {
	case total > 0:
		e.Attributes.Time = total
	case e.Attributes.StartedAt != nil:
		elapsed := int(math.Floor(at.Sub(*e.Attributes.StartedAt).Minutes() + 0.5))
		e.Attributes.Time = max(e.Attributes.Time, elapsed)
	}
	next.ReplaceEntry(e)
	return next
}

type operation struct {
	s       *Service
	id      string
	action  activity.Action
	entryID string
}

func (s *Service) begin(action activity.Action, entryID string) operation {
	return operation{s: s, id: uuid.NewString(), action: action, entryID: entryID}
}

func (o operation) pending(ctx context.Context, title string) {
	o.report(ctx, activity.PhasePending, title, "")
}

func (o operation) success(ctx context.Context, title string) {
	o.report(ctx, activity.PhaseSuccess, title, "")
}

func (o operation) failure(ctx context.Context, title string, err error) {
	o.s.logger.Warn(title, "operation_id", o.id, "entry_id", o.entryID, "error", err)
	o.report(ctx, activity.PhaseFailure, title, failureMessage(err))
}

func (o operation) report(ctx context.Context, phase activity.Phase, title, message string) {
	o.s.reporter.Report(ctx, activity.Entry{
		OperationID: o.id,
		Action:      o.action,
		Phase:       phase,
		Title:       title,
		Message:     message,
		EntryID:     o.entryID,
		CreatedAt:   o.s.opts.Clock.Now(),
	})
}

// failureMessage prefers the API status line over the wrapped chain.
func failureMessage(err error) string {
	var status interface{ StatusLine() string }
	if errors.As(err, &status) {
		return status.StatusLine()
	}
	return err.Error()
}

type discardReporter struct{}

func (discardReporter) Report(context.Context, activity.Entry) {}
