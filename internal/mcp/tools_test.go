package mcp_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/ganot/tally-mcp/internal/app"
	"github.com/ganot/tally-mcp/internal/domain/activity"
	"github.com/ganot/tally-mcp/internal/domain/timesheet"
	"github.com/ganot/tally-mcp/internal/mcp"
	"github.com/ganot/tally-mcp/internal/productive"
	"github.com/ganot/tally-mcp/internal/sqlite"
	"github.com/ganot/tally-mcp/internal/testserver"
	"github.com/ganot/tally-mcp/internal/timeutil"
)

var now = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func seed() timesheet.Collections {
	started := now.Add(-30 * time.Minute)
	yesterday := now.Add(-25 * time.Hour)
	stopped := yesterday.Add(45 * time.Minute)
	running := "Fix https://acme.atlassian.net/browse/OPS-7"
	done := "<p>Deploy <b>v2</b></p>"
	return timesheet.Collections{
		Entries: []timesheet.TimeEntry{
			{
				ID: "1",
				Attributes: timesheet.TimeEntryAttributes{
					Date: "2024-03-15", Note: &running, StartedAt: &started, TimerStartedAt: &started,
				},
				Relationships: timesheet.TimeEntryRelationships{
					Person:  timesheet.RelationTo(timesheet.TypePeople, "p1"),
					Service: timesheet.RelationTo(timesheet.TypeServices, "s1"),
				},
			},
			{
				ID: "2",
				Attributes: timesheet.TimeEntryAttributes{
					Date: "2024-03-14", Time: 45, Note: &done, StartedAt: &yesterday, TimerStartedAt: &yesterday, TimerStoppedAt: &stopped,
				},
				Relationships: timesheet.TimeEntryRelationships{
					Person:  timesheet.RelationTo(timesheet.TypePeople, "p1"),
					Service: timesheet.RelationTo(timesheet.TypeServices, "s1"),
				},
			},
		},
		Services: []timesheet.Service{{ID: "s1", Attributes: timesheet.ServiceAttributes{Name: "Operations"}}},
		Timers: []timesheet.Timer{{
			ID:            "t1",
			Attributes:    timesheet.TimerAttributes{StartedAt: started},
			Relationships: timesheet.TimerRelationships{TimeEntry: timesheet.RelationTo(timesheet.TypeTimeEntries, "1")},
		}},
	}
}

type harness struct {
	session *sdkmcp.ClientSession
	api     *testserver.Productive
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	api := testserver.NewProductive(t, seed())
	api.SetNow(now)
	client := productive.NewClient(productive.Config{BaseURL: api.URL(), Token: api.Token, OrgID: api.OrgID}, nil, nil)

	db := sqlite.NewTestDB(t)
	a := app.New(client, activity.NewService(sqlite.NewActivityRepository(db), nil), app.Options{
		View:  timesheet.Options{SimplifyJiraLinks: true, VisibleSpanDays: 7, Location: time.UTC},
		Clock: timeutil.FixedClock{At: now},
	}, nil)

	server := mcp.NewServer(mcp.Config{
		Services: mcp.Services{Timesheet: a, Timers: a.Timers, Activity: a},
	})

	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	_, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)

	mcpClient := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := mcpClient.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return &harness{session: session, api: api}
}

func (h *harness) call(t *testing.T, name string, args map[string]any, out any) {
	t.Helper()
	result := h.callRaw(t, name, args)
	require.False(t, result.IsError, "tool %s returned error: %s", name, textOf(result))
	require.NoError(t, json.Unmarshal([]byte(textOf(result)), out))
}

func (h *harness) callRaw(t *testing.T, name string, args map[string]any) *sdkmcp.CallToolResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if args == nil {
		args = map[string]any{}
	}
	result, err := h.session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err, "CallTool %s failed", name)
	return result
}

func textOf(result *sdkmcp.CallToolResult) string {
	for _, content := range result.Content {
		if text, ok := content.(*sdkmcp.TextContent); ok {
			return text.Text
		}
	}
	return ""
}

func TestTools_ListTimeEntries(t *testing.T) {
	h := newHarness(t)

	var out mcp.ListTimeEntriesResult
	h.call(t, "list_time_entries", nil, &out)

	require.Len(t, out.Rows, 2)
	require.Equal(t, "Fix OPS-7", out.Rows[0].Title)
	require.True(t, out.Rows[0].IsRunning)
	require.Equal(t, "Started at 11:30 (30m)", out.Rows[0].TimeLabel)
	require.Equal(t, "Deploy v2", out.Rows[1].Title)
	require.Equal(t, "Yesterday: Deploy v2", out.Rows[1].DisplayTitle)
	require.Equal(t, "Operations", out.Rows[1].Service)
	require.Equal(t, 30, out.TodayMinutes)
	require.Equal(t, "30m", out.TodayLabel)
	require.Len(t, out.Sources, 4)
}

func TestTools_ListReportsSourceErrors(t *testing.T) {
	h := newHarness(t)
	h.api.Fail("GET /services", http.StatusServiceUnavailable)

	var out mcp.ListTimeEntriesResult
	h.call(t, "list_time_entries", nil, &out)
	require.Len(t, out.Rows, 2)
	require.Empty(t, out.Rows[1].Service)

	var failed []string
	for _, src := range out.Sources {
		if src.Error != "" {
			failed = append(failed, string(src.Source))
		}
	}
	require.Equal(t, []string{"services"}, failed)
}

func TestTools_SwitchAndActivity(t *testing.T) {
	h := newHarness(t)

	var switched mcp.EntryResult
	h.call(t, "switch_timer", map[string]any{"entry_id": "2"}, &switched)
	require.True(t, switched.Entry.IsRunning)
	require.Equal(t, "2024-03-15", switched.Entry.Date)
	require.Equal(t, "<p>Deploy <b>v2</b></p>", switched.Note)

	var list mcp.ListTimeEntriesResult
	h.call(t, "list_time_entries", map[string]any{"cached": true}, &list)
	require.Len(t, list.Rows, 3)
	require.False(t, list.Rows[0].IsRunning)

	var act mcp.GetRecentActivityResult
	h.call(t, "get_recent_activity", map[string]any{"phase": "success"}, &act)
	require.Len(t, act.Activity, 2)
}

func TestTools_StopTimerErrors(t *testing.T) {
	h := newHarness(t)

	result := h.callRaw(t, "stop_timer", map[string]any{"entry_id": "2"})
	require.True(t, result.IsError)
	require.Contains(t, textOf(result), "TIMER_NOT_FOUND")

	h.api.Fail("PATCH /timers/t1/stop", http.StatusInternalServerError)
	result = h.callRaw(t, "stop_timer", map[string]any{"entry_id": "1"})
	require.True(t, result.IsError)

	var entry mcp.EntryResult
	h.call(t, "get_time_entry", map[string]any{"entry_id": "1"}, &entry)
	require.True(t, entry.Entry.IsRunning, "rolled back after failed stop")

	var act mcp.GetRecentActivityResult
	h.call(t, "get_recent_activity", map[string]any{"phase": "failure", "action": "stop_timer"}, &act)
	require.Len(t, act.Activity, 2)
	require.Equal(t, "Failed to stop timer", act.Activity[0].Title)
	require.Equal(t, "500 Internal Server Error", act.Activity[0].Message)
}

func TestTools_Notes(t *testing.T) {
	h := newHarness(t)

	var updated mcp.EntryResult
	h.call(t, "update_note", map[string]any{"entry_id": "2", "note": "<p>Deploy v3</p>"}, &updated)
	require.Equal(t, "Deploy v3", updated.Entry.Title)

	var copied mcp.CopyNoteResult
	h.call(t, "copy_note", map[string]any{"entry_id": "1"}, &copied)
	require.Equal(t, "Fix OPS-7", copied.Text)

	h.call(t, "copy_note", map[string]any{"entry_id": "2", "html": true}, &copied)
	require.Equal(t, "<p>Deploy v3</p>", copied.Text)

	result := h.callRaw(t, "get_time_entry", map[string]any{"entry_id": "404"})
	require.True(t, result.IsError)
	require.Contains(t, textOf(result), "ENTRY_NOT_FOUND")
}

func TestResources_Usage(t *testing.T) {
	h := newHarness(t)

	res, err := h.session.ReadResource(context.Background(), &sdkmcp.ReadResourceParams{URI: "tally://docs/usage"})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	require.Contains(t, res.Contents[0].Text, "list_time_entries")
}
