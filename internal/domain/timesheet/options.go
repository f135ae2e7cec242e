package timesheet

import "time"

// DefaultVisibleSpanDays is the lookback used when none is configured.
const DefaultVisibleSpanDays = 7

// Options configure how rows are derived.
type Options struct {
	// SimplifyJiraLinks rewrites Atlassian issue URLs in notes to bare keys.
	SimplifyJiraLinks bool
	// VisibleSpanDays is how many days before today stay visible.
	VisibleSpanDays int
	// Location is used for dates and time-of-day labels. Defaults to time.Local.
	Location *time.Location
}

func (o Options) withDefaults() Options {
	if o.VisibleSpanDays <= 0 {
		o.VisibleSpanDays = DefaultVisibleSpanDays
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	return o
}
