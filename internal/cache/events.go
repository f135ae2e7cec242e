package cache

// EventKind classifies store notifications.
type EventKind string

const (
	EventRefreshed  EventKind = "refreshed"
	EventOptimistic EventKind = "optimistic"
	EventCommitted  EventKind = "committed"
	EventRolledBack EventKind = "rolled_back"
)

// Event reports that the collections changed.
type Event struct {
	Kind        EventKind
	Operation   string
	OperationID string
	Err         error
}
