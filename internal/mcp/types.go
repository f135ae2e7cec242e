package mcp

import (
	"time"

	"github.com/ganot/tally-mcp/internal/app"
	"github.com/ganot/tally-mcp/internal/domain/activity"
	"github.com/ganot/tally-mcp/internal/domain/timesheet"
)

type ListTimeEntriesParams struct {
	Cached bool `json:"cached,omitempty" jsonschema:"reuse the last fetched data instead of refreshing"`
}

type EntryParams struct {
	EntryID string `json:"entry_id" jsonschema:"time entry id"`
}

type UpdateNoteParams struct {
	EntryID string `json:"entry_id" jsonschema:"time entry id"`
	Note    string `json:"note" jsonschema:"new note, HTML allowed"`
}

type CopyNoteParams struct {
	EntryID string `json:"entry_id" jsonschema:"time entry id"`
	HTML    bool   `json:"html,omitempty" jsonschema:"return the raw HTML note instead of plain text"`
}

type GetRecentActivityParams struct {
	EntryID     string `json:"entry_id,omitempty" jsonschema:"only activity for this time entry"`
	OperationID string `json:"operation_id,omitempty" jsonschema:"only phases of this operation"`
	Action      string `json:"action,omitempty" jsonschema:"stop_timer, recreate_time_entry, update_note or copy_note"`
	Phase       string `json:"phase,omitempty" jsonschema:"pending, success or failure"`
	Limit       int    `json:"limit,omitempty" jsonschema:"maximum number of entries"`
}

// RowView is the wire form of a timesheet row.
type RowView struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	DisplayTitle    string `json:"display_title"`
	Notes           string `json:"notes"`
	Service         string `json:"service,omitempty"`
	Section         string `json:"section,omitempty"`
	IsRunning       bool   `json:"is_running"`
	IsToday         bool   `json:"is_today"`
	TimeLabel       string `json:"time_label"`
	DurationMinutes int    `json:"duration_minutes"`
	DurationLabel   string `json:"duration_label"`
	RelativeDate    string `json:"relative_date,omitempty"`
	AbsoluteDate    string `json:"absolute_date,omitempty"`
	Date            string `json:"date"`
}

type ListTimeEntriesResult struct {
	Rows         []RowView         `json:"rows"`
	TodayMinutes int               `json:"today_minutes"`
	TodayLabel   string            `json:"today_label"`
	Sources      []app.SourceState `json:"sources"`
	Pending      int               `json:"pending"`
}

type EntryResult struct {
	Entry RowView `json:"entry"`
	Note  string  `json:"raw_note,omitempty"`
}

type StopTimerResult struct {
	Stopped RowView `json:"stopped"`
}

type CopyNoteResult struct {
	Text string `json:"text"`
}

type ActivityView struct {
	OperationID string `json:"operation_id"`
	Action      string `json:"action"`
	Phase       string `json:"phase"`
	Title       string `json:"title"`
	Message     string `json:"message,omitempty"`
	EntryID     string `json:"entry_id,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type GetRecentActivityResult struct {
	Activity []ActivityView `json:"activity"`
}

func toRowView(r timesheet.Row) RowView {
	v := RowView{
		ID:              r.Entry.ID,
		Title:           r.Title,
		DisplayTitle:    r.DisplayTitle(),
		Notes:           r.Notes,
		IsRunning:       r.IsRunning,
		IsToday:         r.IsToday,
		TimeLabel:       r.TimeLabel(),
		DurationMinutes: r.DurationMinutes,
		DurationLabel:   r.DurationLabel,
		RelativeDate:    r.RelativeDate,
		AbsoluteDate:    r.AbsoluteDate,
		Date:            r.Entry.Attributes.Date,
	}
	if r.Service != nil {
		v.Service = r.Service.Attributes.Name
	}
	if r.Section != nil {
		v.Section = r.Section.Attributes.Name
	}
	return v
}

func toActivityViews(entries []activity.Entry) []ActivityView {
	out := make([]ActivityView, 0, len(entries))
	for _, e := range entries {
		out = append(out, ActivityView{
			OperationID: e.OperationID,
			Action:      string(e.Action),
			Phase:       string(e.Phase),
			Title:       e.Title,
			Message:     e.Message,
			EntryID:     e.EntryID,
			CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}

func toListResult(l app.Listing) ListTimeEntriesResult {
	rows := make([]RowView, 0, len(l.Rows))
	for _, r := range l.Rows {
		rows = append(rows, toRowView(r))
	}
	return ListTimeEntriesResult{
		Rows:         rows,
		TodayMinutes: l.TodayMinutes,
		TodayLabel:   l.TodayLabel,
		Sources:      l.Sources,
		Pending:      l.Pending,
	}
}
