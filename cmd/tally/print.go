package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/ganot/tally-mcp/internal/app"
	"github.com/ganot/tally-mcp/internal/domain/activity"
	"github.com/ganot/tally-mcp/internal/domain/timesheet"
)

// printer writes command output as colored tables or JSON.
type printer struct {
	out  io.Writer
	json bool
}

func newPrinter(out io.Writer, asJSON bool) *printer {
	return &printer{out: out, json: asJSON}
}

func (p *printer) JSON(v any) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *printer) Listing(l app.Listing) error {
	if p.json {
		return p.JSON(l)
	}

	title := color.New(color.Bold, color.Underline)
	faint := color.New(color.Faint)
	_, _ = title.Fprint(p.out, "Today")
	_, _ = faint.Fprintf(p.out, " - %s\n", l.TodayLabel)

	if len(l.Rows) == 0 {
		_, _ = color.New(color.Faint, color.Italic).Fprint(p.out, " none\n")
	} else {
		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.MaxColWidth = 60
		tbl.AddRow("ID", "DATE", "TITLE", "TIME", "NOTE")
		for _, r := range l.Rows {
			tbl.AddRow(rowID(r), r.RelativeDate, r.Title, r.TimeLabel(), r.Notes)
		}
		fmt.Fprintln(p.out, tbl)
	}

	warn := color.New(color.FgYellow)
	for _, src := range l.Sources {
		if src.Error != "" {
			_, _ = warn.Fprintf(p.out, "%s: %s\n", src.Source, src.Error)
		}
	}
	return nil
}

func (p *printer) Row(r timesheet.Row) error {
	if p.json {
		return p.JSON(r)
	}

	_, _ = color.New(color.Bold).Fprintln(p.out, r.DisplayTitle())
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.Wrap = true
	tbl.MaxColWidth = 80
	tbl.AddRow("id", r.Entry.ID)
	tbl.AddRow("date", dateLabel(r))
	tbl.AddRow("time", r.TimeLabel())
	if r.Service != nil {
		tbl.AddRow("service", r.Service.Attributes.Name)
	}
	if r.Section != nil {
		tbl.AddRow("section", r.Section.Attributes.Name)
	}
	tbl.AddRow("note", r.Notes)
	fmt.Fprintln(p.out, tbl)
	return nil
}

func (p *printer) Entry(verb string, e *timesheet.TimeEntry) error {
	if p.json {
		return p.JSON(e)
	}
	_, _ = color.New(color.FgGreen).Fprintf(p.out, "%s %s\n", verb, e.ID)
	return nil
}

func (p *printer) Message(msg string) error {
	if p.json {
		return p.JSON(map[string]string{"message": msg})
	}
	_, _ = color.New(color.FgGreen).Fprintln(p.out, msg)
	return nil
}

func (p *printer) Activity(entries []activity.Entry) error {
	if p.json {
		if entries == nil {
			entries = []activity.Entry{}
		}
		return p.JSON(entries)
	}
	if len(entries) == 0 {
		_, _ = color.New(color.Faint, color.Italic).Fprint(p.out, " none\n")
		return nil
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.AddRow("WHEN", "PHASE", "ACTION", "ENTRY", "TITLE", "MESSAGE")
	for _, e := range entries {
		tbl.AddRow(e.CreatedAt.Local().Format(time.DateTime), phaseLabel(e.Phase), e.Action, e.EntryID, e.Title, e.Message)
	}
	fmt.Fprintln(p.out, tbl)
	return nil
}

func rowID(r timesheet.Row) string {
	if r.IsRunning {
		return color.New(color.FgGreen, color.Bold).Sprint(r.Entry.ID + " *")
	}
	return r.Entry.ID
}

func dateLabel(r timesheet.Row) string {
	switch {
	case r.RelativeDate != "" && r.AbsoluteDate != "":
		return r.RelativeDate + " (" + r.AbsoluteDate + ")"
	case r.RelativeDate != "":
		return r.RelativeDate
	default:
		return r.Entry.Attributes.Date
	}
}

func phaseLabel(p activity.Phase) string {
	switch p {
	case activity.PhaseSuccess:
		return color.GreenString(string(p))
	case activity.PhaseFailure:
		return color.RedString(string(p))
	default:
		return color.YellowString(string(p))
	}
}
