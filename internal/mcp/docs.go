package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `tally tracks time in Productive.

Core concepts:
- Time entry: minutes spent on a service on one date, with an optional HTML note.
- Timer: a running clock attached to one time entry. An entry is running when its timer started and has not stopped.
- Service and section: what the time was spent on, used as the title when an entry has no note.

Workflow:
1) Call list_time_entries to see the last week, what is running and today's total.
2) To continue earlier work, call switch_timer(entry_id). It stops the running timer and starts a fresh copy of the entry dated today.
3) stop_timer(entry_id) stops a running entry. restart_time_entry(entry_id) starts a copy without stopping anything.
4) update_note and copy_note edit or read notes. get_recent_activity shows what happened and why something failed.

Docs:
- tally://docs/usage
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "tally://docs/usage",
		Name:        "docs_usage",
		Title:       "tally usage",
		Description: "Tools, labels and failure handling.",
		Content: `# tally

## Listing

` + "`list_time_entries`" + ` returns entries dated within the last week in the order Productive returns them.
Each row has:

- ` + "`title`" + `: the note as plain text, or the service name when the note is empty.
- ` + "`time_label`" + `: "Started at 09:30 (1h 5m)" for running entries, "09:30 - 10:35 (1h 5m)" otherwise.
- ` + "`relative_date`" + `: empty for today, "Yesterday", then phrases like "3 days ago" or "last week".

` + "`today_minutes`" + ` sums the durations of today's rows, running ones included.
` + "`sources`" + ` reports each fetch (time_entries, services, sections, timers) separately. A failed source keeps its last data.

## Timers

- Only timers started today are known, so older running entries cannot be stopped here.
- ` + "`switch_timer`" + ` stops first and gives up if stopping fails.
- A restart creates a new entry and then a timer. If the timer cannot be created the new entry is deleted again.

## Failures

Failed actions leave the listing as it was before the action. Every action records pending, success and failure
phases; use ` + "`get_recent_activity`" + ` with ` + "`phase: failure`" + ` to see the API status of recent failures.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
