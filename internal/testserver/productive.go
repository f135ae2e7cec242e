package testserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ganot/tally-mcp/internal/domain/timesheet"
)

// Request is one call received by the fake API.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   []byte
	Header http.Header
}

// Productive is an in-memory stand-in for the Productive API.
type Productive struct {
	Server *httptest.Server
	Token  string
	OrgID  string

	mu       sync.Mutex
	now      func() time.Time
	nextID   int
	data     timesheet.Collections
	failures map[string]int
	requests []Request
}

// NewProductive starts a fake API seeded with data.
func NewProductive(t *testing.T, data timesheet.Collections) *Productive {
	t.Helper()

	p := &Productive{
		Token:    "test-token",
		OrgID:    "42",
		now:      time.Now,
		nextID:   1000,
		data:     data.Clone(),
		failures: make(map[string]int),
	}

	r := chi.NewRouter()
	r.Use(p.record, p.authenticate, p.inject)
	r.Get("/time_entries", p.listEntries)
	r.Post("/time_entries", p.createEntry)
	r.Patch("/time_entries/{id}", p.updateEntry)
	r.Delete("/time_entries/{id}", p.deleteEntry)
	r.Get("/services", p.listServices)
	r.Get("/sections", p.listSections)
	r.Get("/timers", p.listTimers)
	r.Post("/timers", p.createTimer)
	r.Patch("/timers/{id}/stop", p.stopTimer)

	p.Server = httptest.NewServer(r)
	t.Cleanup(p.Server.Close)
	return p
}

// URL is the API base URL.
func (p *Productive) URL() string {
	return p.Server.URL
}

// SetNow fixes the server clock.
func (p *Productive) SetNow(now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = func() time.Time { return now }
}

// Fail makes every request matching "METHOD /path" answer with status.
func (p *Productive) Fail(route string, status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[route] = status
}

// Data returns the current server-side collections.
func (p *Productive) Data() timesheet.Collections {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.data.Clone()
}

// Requests returns every request seen so far.
func (p *Productive) Requests() []Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.requests)
}

// Mutations returns the non-GET requests as "METHOD /path".
func (p *Productive) Mutations() []string {
	var out []string
	for _, r := range p.Requests() {
		if r.Method != http.MethodGet {
			out = append(out, r.Method+" "+r.Path)
		}
	}
	return out
}

func (p *Productive) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		p.mu.Lock()
		p.requests = append(p.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   body,
			Header: r.Header.Clone(),
		})
		p.mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

func (p *Productive) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Auth-Token") != p.Token || r.Header.Get("X-Organization-Id") != p.OrgID {
			writeError(w, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (p *Productive) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		status, ok := p.failures[r.Method+" "+r.URL.Path]
		p.mu.Unlock()
		if ok {
			writeError(w, status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (p *Productive) listEntries(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	writeData(w, http.StatusOK, nonNil(p.data.Entries))
}

func (p *Productive) listServices(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	writeData(w, http.StatusOK, nonNil(p.data.Services))
}

func (p *Productive) listSections(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	writeData(w, http.StatusOK, nonNil(p.data.Sections))
}

func (p *Productive) listTimers(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("filter[started_at]")
	p.mu.Lock()
	defer p.mu.Unlock()
	timers := []timesheet.Timer{}
	for _, t := range p.data.Timers {
		if day == "" || t.Attributes.StartedAt.Format("2006-01-02") == day {
			timers = append(timers, t)
		}
	}
	writeData(w, http.StatusOK, timers)
}

type resourceBody struct {
	Data struct {
		Attributes    json.RawMessage                   `json:"attributes"`
		Relationships map[string]timesheet.Relationship `json:"relationships"`
	} `json:"data"`
}

func (p *Productive) updateEntry(w http.ResponseWriter, r *http.Request) {
	var body resourceBody
	var patch timesheet.TimeEntryPatch
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || json.Unmarshal(body.Data.Attributes, &patch) != nil {
		writeError(w, http.StatusBadRequest)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.data.FindEntry(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound)
		return
	}
	entry = patch.Apply(entry)
	p.data.ReplaceEntry(entry)
	writeData(w, http.StatusOK, entry)
}

func (p *Productive) createEntry(w http.ResponseWriter, r *http.Request) {
	var body resourceBody
	var attrs timesheet.TimeEntryAttributes
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || json.Unmarshal(body.Data.Attributes, &attrs) != nil {
		writeError(w, http.StatusBadRequest)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	entry := timesheet.TimeEntry{
		ID:         fmt.Sprint(p.nextID),
		Type:       timesheet.TypeTimeEntries,
		Attributes: attrs,
		Relationships: timesheet.TimeEntryRelationships{
			Person:  body.Data.Relationships["person"],
			Service: body.Data.Relationships["service"],
			Task:    body.Data.Relationships["task"],
		},
	}
	p.data.Entries = append(p.data.Entries, entry)
	writeData(w, http.StatusCreated, entry)
}

func (p *Productive) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.data.Entries)
	p.data.Entries = slices.DeleteFunc(p.data.Entries, func(e timesheet.TimeEntry) bool { return e.ID == id })
	if len(p.data.Entries) == n {
		writeError(w, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (p *Productive) createTimer(w http.ResponseWriter, r *http.Request) {
	var body resourceBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.data.FindEntry(body.Data.Relationships["time_entry"].ID())
	if !ok {
		writeError(w, http.StatusUnprocessableEntity)
		return
	}

	now := p.now()
	p.nextID++
	timer := timesheet.Timer{
		ID:         fmt.Sprint(p.nextID),
		Type:       timesheet.TypeTimers,
		Attributes: timesheet.TimerAttributes{StartedAt: now},
		Relationships: timesheet.TimerRelationships{
			TimeEntry: timesheet.RelationTo(timesheet.TypeTimeEntries, entry.ID),
		},
	}
	entry.Attributes.TimerStartedAt = &now
	entry.Attributes.TimerStoppedAt = nil
	p.data.ReplaceEntry(entry)
	p.data.Timers = append(p.data.Timers, timer)
	writeData(w, http.StatusCreated, timer)
}

func (p *Productive) stopTimer(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	timer, ok := p.data.FindTimer(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound)
		return
	}

	now := p.now()
	timer.Attributes.StoppedAt = &now
	timer.Attributes.TotalTime = int(now.Sub(timer.Attributes.StartedAt).Minutes())
	p.data.ReplaceTimer(timer)
	if entry, ok := p.data.FindEntry(timer.Relationships.TimeEntry.ID()); ok {
		entry.Attributes.TimerStoppedAt = &now
		entry.Attributes.Time += timer.Attributes.TotalTime
		p.data.ReplaceEntry(entry)
	}
	writeData(w, http.StatusOK, timer)
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/vnd.api+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func writeError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/vnd.api+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"errors": []map[string]string{{"status": fmt.Sprint(status), "title": http.StatusText(status)}},
	})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
