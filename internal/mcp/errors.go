package mcp

import (
	"errors"
	"fmt"

	"github.com/ganot/tally-mcp/internal/domain/activity"
	"github.com/ganot/tally-mcp/internal/domain/timer"
	"github.com/ganot/tally-mcp/internal/repository"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, timer.ErrTimerNotFound):
		return &APIError{Code: "TIMER_NOT_FOUND", Message: "no timer found for time entry", RecoveryHint: "Only entries with a timer started today can be stopped"}
	case errors.Is(err, timer.ErrEntryNotFound):
		return &APIError{Code: "ENTRY_NOT_FOUND", Message: "time entry not found", RecoveryHint: "Call list_time_entries to get current ids"}
	case errors.Is(err, timer.ErrNoTimerCreated):
		return &APIError{Code: "NO_TIMER_CREATED", Message: "the API returned no timer", RecoveryHint: "Retry restart_time_entry"}
	case errors.Is(err, repository.ErrUnauthorized):
		return &APIError{Code: "UNAUTHORIZED", Message: "Productive rejected the credentials", RecoveryHint: "Check TALLY_API_TOKEN and TALLY_ORG_ID"}
	case errors.Is(err, repository.ErrNotFound):
		return &APIError{Code: "REMOTE_NOT_FOUND", Message: "resource no longer exists in Productive", RecoveryHint: "Call list_time_entries to refresh"}
	case errors.Is(err, repository.ErrInvalidInput), errors.Is(err, activity.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	default:
		return nil
	}
}

// toolError returns the mapped error when there is one, err otherwise.
func toolError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
