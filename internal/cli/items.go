package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stt-cli/internal/model"
	"stt-cli/internal/query"
	"stt-cli/internal/report"
)

// formatItem prints "HH:MM:SS - HH:MM:SS ( duration ) => activity". Times
// outside the day of now carry their date.
func formatItem(it model.Item, now time.Time) string {
	var b strings.Builder
	b.WriteString(formatClock(it.Start, now))
	b.WriteString(" - ")
	if it.End == nil {
		b.WriteString("now     ")
	} else {
		b.WriteString(formatClock(*it.End, now))
	}
	fmt.Fprintf(&b, " ( %s ) => %s", report.FormatDuration(it.Duration(now)), it.Activity)
	return b.String()
}

func formatClock(t, now time.Time) string {
	if midnight(t).Equal(midnight(now)) {
		return t.Format(time.TimeOnly)
	}
	return t.Format(time.DateTime)
}

func newListCmd(app *App) *cobra.Command {
	var day, from, to, contains string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tracked items",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			acts, err := app.activities()
			if err != nil {
				return writeErr(cmd, err)
			}
			now := app.now()
			crit := query.NewCriteria()
			if day != "" {
				d, err := parseDay(day, now)
				if err != nil {
					return writeErr(cmd, fmt.Errorf("--day: %w", err))
				}
				crit = crit.WithPeriodAtDay(d)
			}
			if from != "" {
				t, err := parseTime(from, now)
				if err != nil {
					return writeErr(cmd, fmt.Errorf("--from: %w", err))
				}
				crit = crit.WithStartNotBefore(t)
			}
			if to != "" {
				t, err := parseTime(to, now)
				if err != nil {
					return writeErr(cmd, fmt.Errorf("--to: %w", err))
				}
				crit = crit.WithStartBefore(t)
			}
			if contains != "" {
				crit = crit.WithActivityContains(contains)
			}

			items, err := acts.Cache.QueryItems(crit)
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.text() {
				out := cmd.OutOrStdout()
				for _, it := range items {
					fmt.Fprintln(out, formatItem(it, now))
				}
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": items})
		},
	}

	cmd.Flags().StringVar(&day, "day", "", "Only items starting on this day (YYYY-MM-DD, today, yesterday)")
	cmd.Flags().StringVar(&from, "from", "", "Only items starting at or after this time")
	cmd.Flags().StringVar(&to, "to", "", "Only items starting before this time")
	cmd.Flags().StringVar(&contains, "activity", "", "Only items whose activity contains this text")
	return cmd
}

func newSearchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "search [text...]",
		Aliases: []string{"s"},
		Short:   "List distinct activities containing the text, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			acts, err := app.activities()
			if err != nil {
				return writeErr(cmd, err)
			}
			found, err := acts.Cache.Activities(strings.Join(args, " "))
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.text() {
				out := cmd.OutOrStdout()
				for _, a := range found {
					fmt.Fprintln(out, a)
				}
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": found})
		},
	}
}

func newRmCmd(app *App) *cobra.Command {
	var start string
	var closeGap bool

	cmd := &cobra.Command{
		Use:   "rm --start TIME",
		Short: "Remove the item starting at the given time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(start) == "" {
				return writeErr(cmd, errUsage("missing --start"))
			}
			acts, err := app.activities()
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := parseTime(start, app.now())
			if err != nil {
				return writeErr(cmd, fmt.Errorf("--start: %w", err))
			}
			matches, err := acts.Cache.QueryItems(query.NewCriteria().WithStartsAt(t.Truncate(time.Second)))
			if err != nil {
				return writeErr(cmd, err)
			}
			if len(matches) == 0 {
				return writeErr(cmd, errNotFound("item starting at", t.Format(time.DateTime)))
			}

			var change query.Change
			if closeGap {
				change, err = acts.RemoveAndCloseGap(matches[0])
			} else {
				change, err = acts.Remove(matches[0])
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.text() {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", formatItem(matches[0], app.now()))
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": change})
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "Start time of the item to remove")
	cmd.Flags().BoolVar(&closeGap, "close-gap", false, "Let the previous item absorb the removed time when possible")
	return cmd
}

func newRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old-activity> <new-activity>",
		Short: "Rename every item with exactly the given activity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			acts, err := app.activities()
			if err != nil {
				return writeErr(cmd, err)
			}
			items, err := acts.Cache.QueryItems(query.NewCriteria().WithActivityIs(args[0]))
			if err != nil {
				return writeErr(cmd, err)
			}
			if len(items) == 0 {
				return writeErr(cmd, errNotFound("activity", args[0]))
			}
			changes, err := acts.Rename(items, args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.text() {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "renamed %d item(s)\n", len(changes))
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": changes})
		},
	}
}
