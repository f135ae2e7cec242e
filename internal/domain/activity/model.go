package activity

import "time"

// Action names a user-triggered operation
type Action string

const (
	ActionStopTimer  Action = "stop_timer"
	ActionRecreate   Action = "recreate_time_entry"
	ActionUpdateNote Action = "update_note"
	ActionCopyNote   Action = "copy_note"
)

// Phase is the lifecycle stage of an operation as shown to the user
type Phase string

const (
	PhasePending Phase = "pending"
	PhaseSuccess Phase = "success"
	PhaseFailure Phase = "failure"
)

// Entry is one phase report of one operation
type Entry struct {
	ID          int64     `json:"id"`
	OperationID string    `json:"operation_id"`
	Action      Action    `json:"action"`
	Phase       Phase     `json:"phase"`
	Title       string    `json:"title"`
	Message     string    `json:"message,omitempty"`
	EntryID     string    `json:"entry_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
