package productive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ganot/tally-mcp/internal/domain/timesheet"
	"github.com/ganot/tally-mcp/internal/repository"
)

var _ repository.TimesheetAPI = (*Client)(nil)

// DefaultBaseURL is the public Productive API root.
const DefaultBaseURL = "https://api.productive.io/api/v2"

const mediaType = "application/vnd.api+json"

// Config holds the credentials and endpoint for a Client.
type Config struct {
	BaseURL string
	Token   string
	OrgID   string
	Timeout time.Duration
}

// Client talks to the Productive JSON:API.
type Client struct {
	baseURL string
	token   string
	orgID   string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a Client. httpClient may be nil.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		baseURL: base,
		token:   cfg.Token,
		orgID:   cfg.OrgID,
		http:    httpClient,
		logger:  logger,
	}
}

type document[T any] struct {
	Data T `json:"data"`
}

// ListTimeEntries fetches time entries with their service, task and person.
func (c *Client) ListTimeEntries(ctx context.Context) ([]timesheet.TimeEntry, error) {
	var doc document[[]timesheet.TimeEntry]
	q := url.Values{"include": {"service,task,person"}}
	if err := c.do(ctx, http.MethodGet, "/time_entries", q, nil, &doc); err != nil {
		return nil, fmt.Errorf("list time entries: %w", err)
	}
	return doc.Data, nil
}

// ListServices fetches services with their section and deal.
func (c *Client) ListServices(ctx context.Context) ([]timesheet.Service, error) {
	var doc document[[]timesheet.Service]
	q := url.Values{"include": {"section,deal"}}
	if err := c.do(ctx, http.MethodGet, "/services", q, nil, &doc); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return doc.Data, nil
}

// ListSections fetches all sections.
func (c *Client) ListSections(ctx context.Context) ([]timesheet.Section, error) {
	var doc document[[]timesheet.Section]
	if err := c.do(ctx, http.MethodGet, "/sections", nil, nil, &doc); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return doc.Data, nil
}

// ListTimers fetches the timers started on day (YYYY-MM-DD).
func (c *Client) ListTimers(ctx context.Context, day string) ([]timesheet.Timer, error) {
	var doc document[[]timesheet.Timer]
	q := url.Values{"include": {"time_entry"}, "filter[started_at]": {day}}
	if err := c.do(ctx, http.MethodGet, "/timers", q, nil, &doc); err != nil {
		return nil, fmt.Errorf("list timers: %w", err)
	}
	return doc.Data, nil
}

type patchBody struct {
	Data struct {
		Type       string                   `json:"type"`
		Attributes timesheet.TimeEntryPatch `json:"attributes"`
	} `json:"data"`
}

// UpdateTimeEntry patches the set attributes of an entry.
func (c *Client) UpdateTimeEntry(ctx context.Context, id string, patch timesheet.TimeEntryPatch) (*timesheet.TimeEntry, error) {
	var body patchBody
	body.Data.Type = timesheet.TypeTimeEntries
	body.Data.Attributes = patch

	var doc document[timesheet.TimeEntry]
	if err := c.do(ctx, http.MethodPatch, "/time_entries/"+url.PathEscape(id), nil, body, &doc); err != nil {
		return nil, fmt.Errorf("update time entry %s: %w", id, err)
	}
	return &doc.Data, nil
}

type newEntryBody struct {
	Data struct {
		Type       string `json:"type"`
		Attributes struct {
			Note      *string `json:"note"`
			Date      string  `json:"date"`
			Time      int     `json:"time"`
			StartedAt string  `json:"started_at"`
		} `json:"attributes"`
		Relationships map[string]timesheet.Relationship `json:"relationships"`
	} `json:"data"`
}

// CreateTimeEntry creates an entry with zero tracked time.
func (c *Client) CreateTimeEntry(ctx context.Context, req timesheet.NewTimeEntry) (*timesheet.TimeEntry, error) {
	var body newEntryBody
	body.Data.Type = timesheet.TypeTimeEntries
	body.Data.Attributes.Note = req.Note
	body.Data.Attributes.Date = req.Date
	body.Data.Attributes.StartedAt = req.StartedAt.UTC().Format(time.RFC3339Nano)
	body.Data.Relationships = map[string]timesheet.Relationship{
		"person":  timesheet.RelationTo(timesheet.TypePeople, req.PersonID),
		"service": timesheet.RelationTo(timesheet.TypeServices, req.ServiceID),
	}
	if req.TaskID != "" {
		body.Data.Relationships["task"] = timesheet.RelationTo(timesheet.TypeTasks, req.TaskID)
	}

	var doc document[timesheet.TimeEntry]
	if err := c.do(ctx, http.MethodPost, "/time_entries", nil, body, &doc); err != nil {
		return nil, fmt.Errorf("create time entry: %w", err)
	}
	return &doc.Data, nil
}

// DeleteTimeEntry deletes an entry.
func (c *Client) DeleteTimeEntry(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/time_entries/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return fmt.Errorf("delete time entry %s: %w", id, err)
	}
	return nil
}

// StopTimer stops a timer and returns it with its stop time and total.
func (c *Client) StopTimer(ctx context.Context, id string) (*timesheet.Timer, error) {
	var doc document[timesheet.Timer]
	if err := c.do(ctx, http.MethodPatch, "/timers/"+url.PathEscape(id)+"/stop", nil, nil, &doc); err != nil {
		return nil, fmt.Errorf("stop timer %s: %w", id, err)
	}
	return &doc.Data, nil
}

type newTimerBody struct {
	Data struct {
		Type          string                            `json:"type"`
		Attributes    struct{}                          `json:"attributes"`
		Relationships map[string]timesheet.Relationship `json:"relationships"`
	} `json:"data"`
}

// CreateTimer starts a timer on an existing entry.
func (c *Client) CreateTimer(ctx context.Context, timeEntryID string) (*timesheet.Timer, error) {
	var body newTimerBody
	body.Data.Type = timesheet.TypeTimers
	body.Data.Relationships = map[string]timesheet.Relationship{
		"time_entry": timesheet.RelationTo(timesheet.TypeTimeEntries, timeEntryID),
	}

	var doc document[timesheet.Timer]
	if err := c.do(ctx, http.MethodPost, "/timers", nil, body, &doc); err != nil {
		return nil, fmt.Errorf("create timer: %w", err)
	}
	return &doc.Data, nil
}

// do sends one request. in is JSON encoded when non-nil and out is decoded
// from a 2xx response when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Auth-Token", c.token)
	req.Header.Set("X-Organization-Id", c.orgID)
	req.Header.Set("Accept", mediaType)
	if method != http.MethodGet {
		req.Header.Set("Content-Type", mediaType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("productive request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode), Body: string(raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
