package productive_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ganot/tally-mcp/internal/domain/timesheet"
	"github.com/ganot/tally-mcp/internal/productive"
	"github.com/ganot/tally-mcp/internal/repository"
	"github.com/ganot/tally-mcp/internal/testserver"
)

var now = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func seed() timesheet.Collections {
	started := now.Add(-time.Hour)
	note := "<p>Review</p>"
	return timesheet.Collections{
		Entries: []timesheet.TimeEntry{{
			ID: "1",
			Attributes: timesheet.TimeEntryAttributes{
				Date:           "2024-03-15",
				Note:           &note,
				StartedAt:      &started,
				TimerStartedAt: &started,
			},
			Relationships: timesheet.TimeEntryRelationships{
				Person:  timesheet.RelationTo(timesheet.TypePeople, "p1"),
				Service: timesheet.RelationTo(timesheet.TypeServices, "s1"),
			},
		}},
		Services: []timesheet.Service{{ID: "s1", Attributes: timesheet.ServiceAttributes{Name: "Dev"}}},
		Sections: []timesheet.Section{{ID: "sec1"}},
		Timers: []timesheet.Timer{{
			ID:            "t1",
			Attributes:    timesheet.TimerAttributes{StartedAt: started},
			Relationships: timesheet.TimerRelationships{TimeEntry: timesheet.RelationTo(timesheet.TypeTimeEntries, "1")},
		}},
	}
}

func newClient(t *testing.T) (*productive.Client, *testserver.Productive) {
	t.Helper()
	api := testserver.NewProductive(t, seed())
	api.SetNow(now)
	client := productive.NewClient(productive.Config{
		BaseURL: api.URL(),
		Token:   api.Token,
		OrgID:   api.OrgID,
		Timeout: 5 * time.Second,
	}, nil, nil)
	return client, api
}

func TestClient_List(t *testing.T) {
	ctx := context.Background()
	client, api := newClient(t)

	entries, err := client.ListTimeEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.True(t, entries[0].IsRunning())
	require.Equal(t, "s1", entries[0].Relationships.Service.ID())

	services, err := client.ListServices(ctx)
	require.NoError(t, err)
	require.Equal(t, "Dev", services[0].Attributes.Name)

	sections, err := client.ListSections(ctx)
	require.NoError(t, err)
	require.Len(t, sections, 1)

	timers, err := client.ListTimers(ctx, "2024-03-15")
	require.NoError(t, err)
	require.Len(t, timers, 1)

	timers, err = client.ListTimers(ctx, "2024-03-14")
	require.NoError(t, err)
	require.Empty(t, timers)

	reqs := api.Requests()
	require.Equal(t, "include=service%2Ctask%2Cperson", reqs[0].Query)
	require.Equal(t, "test-token", reqs[0].Header.Get("X-Auth-Token"))
	require.Equal(t, "42", reqs[0].Header.Get("X-Organization-Id"))
	require.Empty(t, reqs[0].Header.Get("Content-Type"))
}

func TestClient_StopTimer(t *testing.T) {
	client, api := newClient(t)

	timer, err := client.StopTimer(context.Background(), "t1")
	require.NoError(t, err)
	require.NotNil(t, timer.Attributes.StoppedAt)

	reqs := api.Requests()
	require.Equal(t, "application/vnd.api+json", reqs[0].Header.Get("Content-Type"))
	require.Equal(t, []string{"PATCH /timers/t1/stop"}, api.Mutations())
}

func TestClient_CreateEntryAndTimer(t *testing.T) {
	ctx := context.Background()
	client, api := newClient(t)

	note := "again"
	entry, err := client.CreateTimeEntry(ctx, timesheet.NewTimeEntry{
		Note:      &note,
		Date:      "2024-03-15",
		StartedAt: now,
		PersonID:  "p1",
		ServiceID: "s1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, entry.ID)
	require.Equal(t, "again", entry.NoteText())
	require.Equal(t, "", entry.Relationships.Task.ID())

	var body map[string]any
	require.NoError(t, json.Unmarshal(api.Requests()[0].Body, &body))
	rels := body["data"].(map[string]any)["relationships"].(map[string]any)
	require.NotContains(t, rels, "task")
	attrs := body["data"].(map[string]any)["attributes"].(map[string]any)
	require.Equal(t, float64(0), attrs["time"])

	timer, err := client.CreateTimer(ctx, entry.ID)
	require.NoError(t, err)
	require.Equal(t, entry.ID, timer.Relationships.TimeEntry.ID())

	require.NoError(t, client.DeleteTimeEntry(ctx, entry.ID))
	_, found := api.Data().FindEntry(entry.ID)
	require.False(t, found)
}

func TestClient_UpdateTimeEntry(t *testing.T) {
	client, _ := newClient(t)

	note := "changed"
	entry, err := client.UpdateTimeEntry(context.Background(), "1", timesheet.TimeEntryPatch{Note: &note})
	require.NoError(t, err)
	require.Equal(t, "changed", entry.NoteText())
	require.Equal(t, "2024-03-15", entry.Attributes.Date)
}

func TestClient_Errors(t *testing.T) {
	ctx := context.Background()
	client, api := newClient(t)

	_, err := client.StopTimer(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)

	api.Fail("POST /timers", http.StatusInternalServerError)
	_, err = client.CreateTimer(ctx, "1")
	var apiErr *productive.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	require.Contains(t, err.Error(), "500 Internal Server Error")

	bad := productive.NewClient(productive.Config{BaseURL: api.URL(), Token: "wrong", OrgID: api.OrgID}, nil, nil)
	_, err = bad.ListSections(ctx)
	require.ErrorIs(t, err, repository.ErrUnauthorized)
}
