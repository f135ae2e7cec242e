package productive

import (
	"fmt"
	"net/http"

	"github.com/ganot/tally-mcp/internal/repository"
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return e.StatusLine()
}

// StatusLine is the status code and text, e.g. "404 Not Found".
func (e *APIError) StatusLine() string {
	return fmt.Sprintf("%d %s", e.StatusCode, e.Status)
}

// Unwrap maps well-known statuses onto repository sentinels.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return repository.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return repository.ErrUnauthorized
	case http.StatusUnprocessableEntity:
		return repository.ErrInvalidInput
	}
	return nil
}
