package mcp

import (
	"context"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ganot/tally-mcp/internal/cache"
	"github.com/ganot/tally-mcp/internal/domain/activity"
	"github.com/ganot/tally-mcp/internal/domain/timer"
)

func registerTools(server *sdkmcp.Server, svc Services, logger *slog.Logger) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_time_entries",
		Description: "List time entries of the last week with titles, durations and today's total. Refreshes from Productive unless cached is set.",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in ListTimeEntriesParams) (*sdkmcp.CallToolResult, ListTimeEntriesResult, error) {
		if !in.Cached {
			// Per-source failures are part of the result.
			if err := svc.Timesheet.Refresh(ctx); err != nil {
				logger.Warn("refresh incomplete", "error", err)
			}
		}
		return nil, toListResult(svc.Timesheet.Listing()), nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_time_entry",
		Description: "Get one time entry with its derived labels and raw note",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in EntryParams) (*sdkmcp.CallToolResult, EntryResult, error) {
		if err := svc.Timesheet.EnsureLoaded(ctx); err != nil {
			logger.Warn("refresh incomplete", "error", err)
		}
		row, ok := svc.Timesheet.Row(in.EntryID)
		if !ok {
			return nil, EntryResult{}, toolError(timer.ErrEntryNotFound)
		}
		return nil, EntryResult{Entry: toRowView(row), Note: row.Entry.NoteText()}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "stop_timer",
		Description: "Stop the running timer of a time entry",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in EntryParams) (*sdkmcp.CallToolResult, StopTimerResult, error) {
		if err := loaded(ctx, svc, logger); err != nil {
			return nil, StopTimerResult{}, err
		}
		if err := svc.Timers.StopTimerForEntry(ctx, in.EntryID); err != nil {
			return nil, StopTimerResult{}, toolError(err)
		}
		row, _ := svc.Timesheet.Row(in.EntryID)
		return nil, StopTimerResult{Stopped: toRowView(row)}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "switch_timer",
		Description: "Stop whatever timer is running, then copy the given time entry to today and start its timer",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in EntryParams) (*sdkmcp.CallToolResult, EntryResult, error) {
		if err := loaded(ctx, svc, logger); err != nil {
			return nil, EntryResult{}, err
		}
		created, err := svc.Timers.SwitchTimer(ctx, in.EntryID)
		if err != nil {
			return nil, EntryResult{}, toolError(err)
		}
		return createdResult(svc, created.ID)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "restart_time_entry",
		Description: "Copy the given time entry to today and start its timer without stopping anything",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in EntryParams) (*sdkmcp.CallToolResult, EntryResult, error) {
		if err := loaded(ctx, svc, logger); err != nil {
			return nil, EntryResult{}, err
		}
		created, err := svc.Timers.RecreateAndStart(ctx, in.EntryID)
		if err != nil {
			return nil, EntryResult{}, toolError(err)
		}
		return createdResult(svc, created.ID)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_note",
		Description: "Replace the note of a time entry",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in UpdateNoteParams) (*sdkmcp.CallToolResult, EntryResult, error) {
		if err := loaded(ctx, svc, logger); err != nil {
			return nil, EntryResult{}, err
		}
		if _, err := svc.Timers.UpdateNote(ctx, in.EntryID, in.Note); err != nil {
			return nil, EntryResult{}, toolError(err)
		}
		return createdResult(svc, in.EntryID)
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "copy_note",
		Description: "Return the note of a time entry as plain text (or raw HTML) and copy it to the clipboard when available",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in CopyNoteParams) (*sdkmcp.CallToolResult, CopyNoteResult, error) {
		if err := loaded(ctx, svc, logger); err != nil {
			return nil, CopyNoteResult{}, err
		}
		text, err := svc.Timers.CopyNote(ctx, in.EntryID, in.HTML)
		if err != nil {
			return nil, CopyNoteResult{}, toolError(err)
		}
		return nil, CopyNoteResult{Text: text}, nil
	})

	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_recent_activity",
		Description: "List recent timer actions and their outcome, newest first",
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetRecentActivityParams) (*sdkmcp.CallToolResult, GetRecentActivityResult, error) {
		opts := activity.ListOptions{
			EntryID:     in.EntryID,
			OperationID: in.OperationID,
			Limit:       in.Limit,
		}
		if in.Action != "" {
			action := activity.Action(in.Action)
			opts.Action = &action
		}
		if in.Phase != "" {
			phase := activity.Phase(in.Phase)
			opts.Phase = &phase
		}
		entries, err := svc.Activity.RecentActivity(ctx, opts)
		if err != nil {
			return nil, GetRecentActivityResult{}, toolError(err)
		}
		return nil, GetRecentActivityResult{Activity: toActivityViews(entries)}, nil
	})
}

// loaded makes sure the entries exist before a mutation looks them up. Only a
// failure to fetch the entries themselves is fatal.
func loaded(ctx context.Context, svc Services, logger *slog.Logger) error {
	if err := svc.Timesheet.EnsureLoaded(ctx); err != nil {
		logger.Warn("refresh incomplete", "error", err)
		for _, src := range svc.Timesheet.Listing().Sources {
			if src.Source == cache.SourceEntries && src.Error != "" {
				return toolError(fmt.Errorf("load time entries: %w", err))
			}
		}
	}
	return nil
}

func createdResult(svc Services, id string) (*sdkmcp.CallToolResult, EntryResult, error) {
	row, ok := svc.Timesheet.Row(id)
	if !ok {
		return nil, EntryResult{}, toolError(timer.ErrEntryNotFound)
	}
	return nil, EntryResult{Entry: toRowView(row), Note: row.Entry.NoteText()}, nil
}
