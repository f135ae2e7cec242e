package timesheet

import (
	"slices"
	"time"
)

// Resource types used in JSON:API relationships.
const (
	TypeTimeEntries   = "time_entries"
	TypeServices      = "services"
	TypeSections      = "sections"
	TypeTimers        = "timers"
	TypePeople        = "people"
	TypeTasks         = "tasks"
	TypeOrganizations = "organizations"
)

// ResourceID identifies a related resource.
type ResourceID struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Relationship is a to-one JSON:API relationship. Data is nil when the relation
// is empty or was not included in the response.
type Relationship struct {
	Data *ResourceID `json:"data"`
}

// ID returns the related resource id, or "" when the relation is empty.
func (r Relationship) ID() string {
	if r.Data == nil {
		return ""
	}
	return r.Data.ID
}

// RelationTo builds a populated relationship.
func RelationTo(typ, id string) Relationship {
	return Relationship{Data: &ResourceID{Type: typ, ID: id}}
}

// TimeEntry is a record of time spent, optionally driven by a timer.
type TimeEntry struct {
	ID            string                 `json:"id"`
	Type          string                 `json:"type"`
	Attributes    TimeEntryAttributes    `json:"attributes"`
	Relationships TimeEntryRelationships `json:"relationships"`
}

// TimeEntryAttributes are the stored fields of a time entry. Time is in minutes.
type TimeEntryAttributes struct {
	Date           string     `json:"date"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
	LastActivityAt *time.Time `json:"last_activity_at,omitempty"`
	Time           int        `json:"time"`
	Note           *string    `json:"note"`
	TrackMethodID  int        `json:"track_method_id,omitempty"`
	StartedAt      *time.Time `json:"started_at"`
	TimerStartedAt *time.Time `json:"timer_started_at"`
	TimerStoppedAt *time.Time `json:"timer_stopped_at"`
	Approved       bool       `json:"approved,omitempty"`
	Invoiced       bool       `json:"invoiced,omitempty"`
	Overhead       bool       `json:"overhead,omitempty"`
	Rejected       bool       `json:"rejected,omitempty"`
	Currency       string     `json:"currency,omitempty"`
}

// TimeEntryRelationships link an entry to its person, service and task.
type TimeEntryRelationships struct {
	Organization Relationship `json:"organization"`
	Person       Relationship `json:"person"`
	Service      Relationship `json:"service"`
	Task         Relationship `json:"task"`
}

// IsRunning reports whether the entry has a timer that started and has not
// stopped yet.
func (e TimeEntry) IsRunning() bool {
	return e.Attributes.TimerStoppedAt == nil && e.Attributes.TimerStartedAt != nil
}

// NoteText returns the raw note, or "" when it is null.
func (e TimeEntry) NoteText() string {
	if e.Attributes.Note == nil {
		return ""
	}
	return *e.Attributes.Note
}

// Service is a trackable work category grouped into a section.
type Service struct {
	ID            string               `json:"id"`
	Type          string               `json:"type"`
	Attributes    ServiceAttributes    `json:"attributes"`
	Relationships ServiceRelationships `json:"relationships"`
}

// ServiceAttributes are the stored fields of a service.
type ServiceAttributes struct {
	Name                   string `json:"name"`
	Position               int    `json:"position,omitempty"`
	Billable               bool   `json:"billable"`
	Description            string `json:"description,omitempty"`
	TimeTrackingEnabled    bool   `json:"time_tracking_enabled"`
	ExpenseTrackingEnabled bool   `json:"expense_tracking_enabled,omitempty"`
	BookingTrackingEnabled bool   `json:"booking_tracking_enabled,omitempty"`
}

// ServiceRelationships link a service to its organization and section.
type ServiceRelationships struct {
	Organization Relationship `json:"organization"`
	Section      Relationship `json:"section"`
}

// Section groups services. Its association with services goes through the
// service's section relationship only.
type Section struct {
	ID            string               `json:"id"`
	Type          string               `json:"type"`
	Attributes    SectionAttributes    `json:"attributes"`
	Relationships SectionRelationships `json:"relationships"`
}

// SectionAttributes are the stored fields of a section.
type SectionAttributes struct {
	Name        string `json:"name"`
	Position    int    `json:"position,omitempty"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// SectionRelationships link a section to its organization.
type SectionRelationships struct {
	Organization Relationship `json:"organization"`
}

// Timer is a clock bound to exactly one time entry.
type Timer struct {
	ID            string             `json:"id"`
	Type          string             `json:"type"`
	Attributes    TimerAttributes    `json:"attributes"`
	Relationships TimerRelationships `json:"relationships"`
}

// TimerAttributes are the stored fields of a timer. TotalTime is in minutes.
type TimerAttributes struct {
	PersonID  int        `json:"person_id"`
	StartedAt time.Time  `json:"started_at"`
	StoppedAt *time.Time `json:"stopped_at"`
	TotalTime int        `json:"total_time"`
}

// TimerRelationships link a timer to its time entry.
type TimerRelationships struct {
	Organization Relationship `json:"organization"`
	TimeEntry    Relationship `json:"time_entry"`
}

// Collections is one snapshot of the four raw collections. Treat it as
// immutable; use Clone before changing anything.
type Collections struct {
	Entries  []TimeEntry `json:"entries"`
	Services []Service   `json:"services"`
	Sections []Section   `json:"sections"`
	Timers   []Timer     `json:"timers"`
}

// Clone copies the slices so the result can be edited without touching c.
func (c Collections) Clone() Collections {
	return Collections{
		Entries:  slices.Clone(c.Entries),
		Services: slices.Clone(c.Services),
		Sections: slices.Clone(c.Sections),
		Timers:   slices.Clone(c.Timers),
	}
}

// FindEntry returns the entry with the given id.
func (c Collections) FindEntry(id string) (TimeEntry, bool) {
	i := slices.IndexFunc(c.Entries, func(e TimeEntry) bool { return e.ID == id })
	if i < 0 {
		return TimeEntry{}, false
	}
	return c.Entries[i], true
}

// FindTimer returns the timer with the given id.
func (c Collections) FindTimer(id string) (Timer, bool) {
	i := slices.IndexFunc(c.Timers, func(t Timer) bool { return t.ID == id })
	if i < 0 {
		return Timer{}, false
	}
	return c.Timers[i], true
}

// TimerForEntry returns the first timer linked to the entry.
func (c Collections) TimerForEntry(entryID string) (Timer, bool) {
	i := slices.IndexFunc(c.Timers, func(t Timer) bool {
		return t.Relationships.TimeEntry.ID() == entryID
	})
	if i < 0 {
		return Timer{}, false
	}
	return c.Timers[i], true
}

// RunningEntry returns the first entry whose timer is running.
func (c Collections) RunningEntry() (TimeEntry, bool) {
	i := slices.IndexFunc(c.Entries, TimeEntry.IsRunning)
	if i < 0 {
		return TimeEntry{}, false
	}
	return c.Entries[i], true
}

// ReplaceEntry swaps the entry with the same id in place, or appends it.
func (c *Collections) ReplaceEntry(e TimeEntry) {
	if i := slices.IndexFunc(c.Entries, func(x TimeEntry) bool { return x.ID == e.ID }); i >= 0 {
		c.Entries[i] = e
		return
	}
	c.Entries = append(c.Entries, e)
}

// ReplaceTimer swaps the timer with the same id in place, or appends it.
func (c *Collections) ReplaceTimer(t Timer) {
	if i := slices.IndexFunc(c.Timers, func(x Timer) bool { return x.ID == t.ID }); i >= 0 {
		c.Timers[i] = t
		return
	}
	c.Timers = append(c.Timers, t)
}

func (c Collections) findService(id string) *Service {
	if id == "" {
		return nil
	}
	for i := range c.Services {
		if c.Services[i].ID == id {
			s := c.Services[i]
			return &s
		}
	}
	return nil
}

func (c Collections) findSection(id string) *Section {
	if id == "" {
		return nil
	}
	for i := range c.Sections {
		if c.Sections[i].ID == id {
			s := c.Sections[i]
			return &s
		}
	}
	return nil
}
