package activity

// ListOptions provides filtering options for listing activity.
type ListOptions struct {
	OperationID string
	EntryID     string
	Action      *Action
	Phase       *Phase
	Limit       int
	Offset      int
}
