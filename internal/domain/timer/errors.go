package timer

import "errors"

var (
	// ErrTimerNotFound is returned when no timer is known for the requested
	// timer or entry. Nothing is sent to the API in that case.
	ErrTimerNotFound = errors.New("timer not found")

	// ErrEntryNotFound is returned when the entry is not in the current snapshot.
	ErrEntryNotFound = errors.New("time entry not found")

	// ErrNoTimerCreated is returned when the API accepted the timer request but
	// returned no timer.
	ErrNoTimerCreated = errors.New("no timer created")
)
