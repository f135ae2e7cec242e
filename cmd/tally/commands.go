package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ganot/tally-mcp/internal/app"
	"github.com/ganot/tally-mcp/internal/domain/activity"
	"github.com/ganot/tally-mcp/internal/domain/timer"
	"github.com/ganot/tally-mcp/internal/timeutil"
)

func addList(topLevel *cobra.Command, root *rootOptions) {
	var minDuration string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent time entries with today's total.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			minMinutes := 0
			if minDuration != "" {
				m, err := timeutil.ParseDurationInput(minDuration)
				if err != nil {
					return fmt.Errorf("invalid --min %q: %w", minDuration, err)
				}
				minMinutes = m
			}

			rt, err := loadedRuntime(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer rt.close()

			return newPrinter(cmd.OutOrStdout(), root.jsonOutput).Listing(filterListing(rt.app.Listing(), minMinutes))
		},
	}
	cmd.Flags().StringVar(&minDuration, "min", "", `only show entries at least this long, e.g. "1h", "45m" or "1h 30m"`)

	topLevel.AddCommand(cmd)
}

// filterListing drops rows shorter than minMinutes. Running entries are kept.
func filterListing(l app.Listing, minMinutes int) app.Listing {
	if minMinutes <= 0 {
		return l
	}
	rows := l.Rows[:0:0]
	for _, r := range l.Rows {
		if r.IsRunning || r.DurationMinutes >= minMinutes {
			rows = append(rows, r)
		}
	}
	l.Rows = rows
	return l
}

func addShow(topLevel *cobra.Command, root *rootOptions) {
	cmd := &cobra.Command{
		Use:   "show <entry-id>",
		Short: "Show one time entry.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadedRuntime(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer rt.close()

			row, ok := rt.app.Row(args[0])
			if !ok {
				return fmt.Errorf("time entry %s: %w", args[0], timer.ErrEntryNotFound)
			}
			return newPrinter(cmd.OutOrStdout(), root.jsonOutput).Row(row)
		},
	}
	topLevel.AddCommand(cmd)
}

func addStop(topLevel *cobra.Command, root *rootOptions) {
	cmd := &cobra.Command{
		Use:   "stop <entry-id>",
		Short: "Stop the timer running on a time entry.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadedRuntime(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.app.Timers.StopTimerForEntry(cmd.Context(), args[0]); err != nil {
				return err
			}
			return newPrinter(cmd.OutOrStdout(), root.jsonOutput).Message("Timer stopped on " + args[0])
		},
	}
	topLevel.AddCommand(cmd)
}

func addSwitch(topLevel *cobra.Command, root *rootOptions) {
	cmd := &cobra.Command{
		Use:   "switch <entry-id>",
		Short: "Stop the running timer and restart work on another entry.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadedRuntime(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer rt.close()

			created, err := rt.app.Timers.SwitchTimer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return newPrinter(cmd.OutOrStdout(), root.jsonOutput).Entry("Started", created)
		},
	}
	topLevel.AddCommand(cmd)
}

func addRestart(topLevel *cobra.Command, root *rootOptions) {
	cmd := &cobra.Command{
		Use:   "restart <entry-id>",
		Short: "Copy a time entry to today and start its timer.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadedRuntime(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer rt.close()

			created, err := rt.app.Timers.RecreateAndStart(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return newPrinter(cmd.OutOrStdout(), root.jsonOutput).Entry("Started", created)
		},
	}
	topLevel.AddCommand(cmd)
}

func addNote(topLevel *cobra.Command, root *rootOptions) {
	cmd := &cobra.Command{
		Use:   "note <entry-id> <text>...",
		Short: "Replace the note of a time entry.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadedRuntime(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer rt.close()

			updated, err := rt.app.Timers.UpdateNote(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return newPrinter(cmd.OutOrStdout(), root.jsonOutput).Entry("Updated", updated)
		},
	}
	topLevel.AddCommand(cmd)
}

func addCopy(topLevel *cobra.Command, root *rootOptions) {
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "copy <entry-id>",
		Short: "Copy the note of a time entry to the clipboard.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadedRuntime(cmd.Context(), root)
			if err != nil {
				return err
			}
			defer rt.close()

			text, err := rt.app.Timers.WithClipboard(systemClipboard{}).CopyNote(cmd.Context(), args[0], asHTML)
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout(), root.jsonOutput)
			if root.jsonOutput {
				return p.JSON(map[string]string{"note": text})
			}
			return p.Message(timer.TitleNoteCopied)
		},
	}
	cmd.Flags().BoolVar(&asHTML, "html", false, "copy the raw HTML note")

	topLevel.AddCommand(cmd)
}

func addActivity(topLevel *cobra.Command, root *rootOptions) {
	var (
		entryID string
		action  string
		phase   string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show the log of timer and note operations.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := activityOptions(entryID, action, phase, limit)
			if err != nil {
				return err
			}

			rt, err := setup(root, nil)
			if err != nil {
				return err
			}
			defer rt.close()

			entries, err := rt.app.RecentActivity(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return newPrinter(cmd.OutOrStdout(), root.jsonOutput).Activity(entries)
		},
	}
	cmd.Flags().StringVar(&entryID, "entry", "", "only activity for this time entry")
	cmd.Flags().StringVar(&action, "action", "", "only this action (stop_timer, recreate_time_entry, update_note, copy_note)")
	cmd.Flags().StringVar(&phase, "phase", "", "only this phase (pending, success, failure)")
	cmd.Flags().IntVar(&limit, "limit", activity.DefaultListLimit, "maximum number of rows")

	topLevel.AddCommand(cmd)
}

func activityOptions(entryID, action, phase string, limit int) (activity.ListOptions, error) {
	opts := activity.ListOptions{EntryID: entryID, Limit: limit}
	if action != "" {
		a := activity.Action(action)
		switch a {
		case activity.ActionStopTimer, activity.ActionRecreate, activity.ActionUpdateNote, activity.ActionCopyNote:
		default:
			return opts, fmt.Errorf("unknown action %q", action)
		}
		opts.Action = &a
	}
	if phase != "" {
		p := activity.Phase(phase)
		switch p {
		case activity.PhasePending, activity.PhaseSuccess, activity.PhaseFailure:
		default:
			return opts, fmt.Errorf("unknown phase %q", phase)
		}
		opts.Phase = &p
	}
	return opts, nil
}
