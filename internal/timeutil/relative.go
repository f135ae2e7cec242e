package timeutil

import (
	"fmt"
	"math"
	"time"
)

type relativeUnit struct {
	name   string
	factor time.Duration
}

const (
	day  = 24 * time.Hour
	year = 365 * day
)

// Largest unit first. Month and year are fixed averages, not calendar aware.
var relativeUnits = []relativeUnit{
	{"year", year},
	{"month", year / 12},
	{"week", 7 * day},
	{"day", day},
	{"hour", time.Hour},
	{"minute", time.Minute},
	{"second", time.Second},
}

// Phrases used instead of a number for -1, 0 and +1.
var autoPhrases = map[string]map[int64]string{
	"year":   {-1: "last year", 0: "this year", 1: "next year"},
	"month":  {-1: "last month", 0: "this month", 1: "next month"},
	"week":   {-1: "last week", 0: "this week", 1: "next week"},
	"day":    {-1: "yesterday", 0: "today", 1: "tomorrow"},
	"hour":   {0: "this hour"},
	"minute": {0: "this minute"},
	"second": {0: "now"},
}

// FormatRelative renders date relative to ref ("2 hours ago", "in 3 days",
// "yesterday", "now"). The unit is the largest one whose length is strictly
// exceeded by the distance between the two instants, falling back to seconds.
func FormatRelative(date, ref time.Time) string {
	delta := date.Sub(ref)
	abs := delta
	if abs < 0 {
		abs = -abs
	}

	unit := relativeUnits[len(relativeUnits)-1]
	for _, u := range relativeUnits {
		if abs > u.factor {
			unit = u
			break
		}
	}

	// Half-up rounding so that -1.5 becomes -1, not -2.
	value := int64(math.Floor(float64(delta)/float64(unit.factor) + 0.5))
	return phrase(value, unit.name)
}

func phrase(value int64, unit string) string {
	if p, ok := autoPhrases[unit][value]; ok {
		return p
	}

	n := value
	if n < 0 {
		n = -n
	}
	label := unit
	if n != 1 {
		label += "s"
	}
	if value < 0 {
		return fmt.Sprintf("%d %s ago", n, label)
	}
	return fmt.Sprintf("in %d %s", n, label)
}
