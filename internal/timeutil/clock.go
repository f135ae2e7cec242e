// Package timeutil holds the date predicates and formatters used to label time
// entries. Every function takes the current instant explicitly; only Clock
// implementations read the wall clock.
package timeutil

import "time"

// Clock provides the current time. Use RealClock outside of tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct {
	At time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return c.At }
