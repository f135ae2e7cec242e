package timesheet

import "time"

// TimeEntryPatch carries the attributes to change on an entry. Nil fields are
// left untouched.
type TimeEntryPatch struct {
	Note *string `json:"note,omitempty"`
	Date *string `json:"date,omitempty"`
	Time *int    `json:"time,omitempty"`
}

// Apply returns e with the patch applied.
func (p TimeEntryPatch) Apply(e TimeEntry) TimeEntry {
	if p.Note != nil {
		n := *p.Note
		e.Attributes.Note = &n
	}
	if p.Date != nil {
		e.Attributes.Date = *p.Date
	}
	if p.Time != nil {
		e.Attributes.Time = *p.Time
	}
	return e
}

// NewTimeEntry describes an entry to create. TaskID is optional.
type NewTimeEntry struct {
	Note      *string
	Date      string
	StartedAt time.Time
	PersonID  string
	ServiceID string
	TaskID    string
}
