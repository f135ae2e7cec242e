package timer

import (
	"time"

	"github.com/ganot/tally-mcp/internal/timeutil"
)

// Titles shown for each phase.
const (
	TitleStopping       = "Stopping timer"
	TitleStopped        = "Timer stopped"
	TitleStopFailed     = "Failed to stop timer"
	TitleNoTimer        = "No timer found for time entry"
	TitleRecreating     = "Recreating time entry"
	TitleStarting       = "Starting timer"
	TitleRestarted      = "Timer restarted"
	TitleRestartFailed  = "Failed to restart timer"
	TitleUpdatingNote   = "Updating note"
	TitleNoteUpdated    = "Note updated"
	TitleNoteFailed     = "Failed to update note"
	TitleCopyingNote    = "Copying note"
	TitleNoteCopied     = "Copied note to clipboard"
	TitleNoteCopyFailed = "Failed to copy note"
)

// Options configure the controller.
type Options struct {
	Clock timeutil.Clock
	// Location decides which calendar day "today" is for new entries.
	Location          *time.Location
	SimplifyJiraLinks bool
}
