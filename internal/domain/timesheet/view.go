package timesheet

import (
	"math"
	"strings"
	"time"

	"github.com/ganot/tally-mcp/internal/textutil"
	"github.com/ganot/tally-mcp/internal/timeutil"
)

const clockLayout = "15:04"

// Row is a time entry joined with its service and section plus the derived
// display fields.
type Row struct {
	Entry           TimeEntry `json:"entry"`
	Service         *Service  `json:"service,omitempty"`
	Section         *Section  `json:"section,omitempty"`
	Title           string    `json:"title"`
	Notes           string    `json:"notes"`
	IsRunning       bool      `json:"is_running"`
	IsToday         bool      `json:"is_today"`
	StartedAt       string    `json:"started_at"`
	StoppedAt       string    `json:"stopped_at"`
	DurationMinutes int       `json:"duration_minutes"`
	DurationLabel   string    `json:"duration_label"`
	RelativeDate    string    `json:"relative_date"`
	AbsoluteDate    string    `json:"absolute_date,omitempty"`
}

// TimeLabel describes the time span, e.g. "Started at 09:30 (1h 5m)".
func (r Row) TimeLabel() string {
	var span string
	switch {
	case r.IsRunning && r.StartedAt != "":
		span = "Started at " + r.StartedAt
	case r.IsRunning:
		span = "No timer started"
	default:
		span = r.StartedAt + " - " + r.StoppedAt
	}
	return span + " (" + r.DurationLabel + ")"
}

// DisplayTitle prefixes the title with the relative date when there is one.
func (r Row) DisplayTitle() string {
	if r.RelativeDate == "" {
		return r.Title
	}
	return r.RelativeDate + ": " + r.Title
}

// View is the presentation-ready projection of one Collections snapshot.
type View struct {
	Rows         []Row  `json:"rows"`
	TodayMinutes int    `json:"today_minutes"`
	TodayLabel   string `json:"today_label"`
}

// Builder projects raw collections into rows. It never modifies its input.
type Builder struct {
	opts  Options
	clock timeutil.Clock
}

// NewBuilder creates a Builder. A nil clock uses the wall clock.
func NewBuilder(opts Options, clock timeutil.Clock) *Builder {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Builder{opts: opts.withDefaults(), clock: clock}
}

// Build derives the rows visible in the configured span, in input order, and
// the total minutes of today's rows.
func (b *Builder) Build(c Collections) View {
	now := b.clock.Now().In(b.opts.Location)

	view := View{Rows: make([]Row, 0, len(c.Entries))}
	for _, entry := range c.Entries {
		date, err := timeutil.ParseDate(entry.Attributes.Date, b.opts.Location)
		if err != nil {
			continue
		}
		// One extra day so that the whole of the oldest visible day is kept.
		if !timeutil.IsWithinLastNDays(date, b.opts.VisibleSpanDays+1, now) {
			continue
		}

		row := b.row(c, entry, date, now)
		if row.IsToday {
			view.TodayMinutes += row.DurationMinutes
		}
		view.Rows = append(view.Rows, row)
	}
	view.TodayLabel = mustFormatDuration(view.TodayMinutes)
	return view
}

// Row derives a single row by entry id, ignoring the visible span.
func (b *Builder) Row(c Collections, id string) (Row, bool) {
	entry, ok := c.FindEntry(id)
	if !ok {
		return Row{}, false
	}
	date, err := timeutil.ParseDate(entry.Attributes.Date, b.opts.Location)
	if err != nil {
		return Row{}, false
	}
	return b.row(c, entry, date, b.clock.Now().In(b.opts.Location)), true
}

func (b *Builder) row(c Collections, entry TimeEntry, date, now time.Time) Row {
	service := c.findService(entry.Relationships.Service.ID())
	var section *Section
	if service != nil {
		section = c.findSection(service.Relationships.Section.ID())
	}

	notes := strings.TrimSpace(textutil.StripHTML(entry.NoteText()))
	if b.opts.SimplifyJiraLinks {
		notes = textutil.SimplifyJiraLinks(notes)
	}

	row := Row{
		Entry:     entry,
		Service:   service,
		Section:   section,
		Title:     composeTitle(notes, service),
		Notes:     notes,
		IsRunning: entry.IsRunning(),
		IsToday:   timeutil.IsToday(date, now),
	}

	attrs := entry.Attributes
	if attrs.StartedAt != nil {
		row.StartedAt = attrs.StartedAt.In(b.opts.Location).Format(clockLayout)
		row.AbsoluteDate = attrs.StartedAt.In(b.opts.Location).Format(timeutil.DateLayout)
	}
	if attrs.TimerStoppedAt != nil {
		row.StoppedAt = attrs.TimerStoppedAt.In(b.opts.Location).Format(clockLayout)
	}

	row.DurationMinutes = durationMinutes(entry, now)
	row.DurationLabel = mustFormatDuration(row.DurationMinutes)

	switch {
	case row.IsToday:
		row.RelativeDate = ""
	case timeutil.IsYesterday(date, now):
		row.RelativeDate = "Yesterday"
	default:
		ref := now
		if attrs.StartedAt != nil {
			ref = *attrs.StartedAt
		}
		row.RelativeDate = timeutil.FormatRelative(ref, now)
	}
	return row
}

// composeTitle uses the note when there is one and the service name otherwise.
func composeTitle(notes string, service *Service) string {
	var parts []string
	if notes == "" && service != nil && service.Attributes.Name != "" {
		parts = append(parts, service.Attributes.Name)
	}
	if notes != "" {
		parts = append(parts, notes)
	}
	return strings.TrimSpace(strings.Join(parts, " / "))
}

// durationMinutes is derived for running entries and read from the stored
// time otherwise. Negative results clamp to zero.
func durationMinutes(entry TimeEntry, now time.Time) int {
	attrs := entry.Attributes
	if !entry.IsRunning() {
		return max(attrs.Time, 0)
	}

	stop, start := now, now
	if attrs.TimerStoppedAt != nil {
		stop = *attrs.TimerStoppedAt
	}
	if attrs.StartedAt != nil {
		start = *attrs.StartedAt
	}
	minutes := int(math.Floor(stop.Sub(start).Minutes() + 0.5))
	return max(minutes, 0)
}

func mustFormatDuration(minutes int) string {
	label, err := timeutil.FormatDuration(max(minutes, 0))
	if err != nil {
		return "0m"
	}
	return label
}
