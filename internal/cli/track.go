package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stt-cli/internal/activity"
	"stt-cli/internal/model"
	"stt-cli/internal/query"
)

// timeFlag parses an optional time flag; empty means now.
func timeFlag(v string, now time.Time) (time.Time, error) {
	if strings.TrimSpace(v) == "" {
		return now, nil
	}
	return parseTime(v, now)
}

func newOnCmd(app *App) *cobra.Command {
	var at, until string

	cmd := &cobra.Command{
		Use:   "on <activity...>",
		Short: "Start working on an activity",
		Long:  "Start working on an activity. The ongoing activity ends where the new one starts; an item with the same start is replaced.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acts, err := app.activities()
			if err != nil {
				return writeErr(cmd, err)
			}
			now := app.now()
			start, err := timeFlag(at, now)
			if err != nil {
				return writeErr(cmd, fmt.Errorf("--at: %w", err))
			}
			var end *time.Time
			if until != "" {
				e, err := parseTime(until, now)
				if err != nil {
					return writeErr(cmd, fmt.Errorf("--until: %w", err))
				}
				end = &e
			}
			item, err := model.New(strings.Join(args, " "), start, end)
			if err != nil {
				return writeErr(cmd, err)
			}

			prev, err := acts.Cache.OngoingItem()
			if err != nil {
				return writeErr(cmd, err)
			}
			change, err := acts.Start(item)
			if err != nil {
				return writeErr(cmd, err)
			}

			if app.text() {
				out := cmd.OutOrStdout()
				if prev != nil && prev.Start.Before(item.Start) {
					fmt.Fprintf(out, "stopped working on %s\n", formatItem(prev.WithEnd(item.Start), now))
				}
				fmt.Fprintf(out, "start working on %s\n", item.Activity)
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": change})
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Start time (default: now)")
	cmd.Flags().StringVar(&until, "until", "", "End time; records a finished item")
	return cmd
}

func newFinCmd(app *App) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:     "fin",
		Aliases: []string{"f"},
		Short:   "Stop working on the ongoing activity",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			acts, err := app.activities()
			if err != nil {
				return writeErr(cmd, err)
			}
			now := app.now()
			end, err := timeFlag(at, now)
			if err != nil {
				return writeErr(cmd, fmt.Errorf("--at: %w", err))
			}
			change, err := acts.EndCurrent(end)
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.text() {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "stopped working on %s\n", formatItem(*change.After, now))
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": change})
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "End time (default: now)")
	return cmd
}

func newResumeCmd(app *App) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:     "resume [last | <text...>]",
		Aliases: []string{"rl"},
		Short:   "Start a previous activity again",
		Long:    "Without arguments, or with \"last\", resumes the last item if it is finished. Otherwise resumes the most recent activity containing the given text.",
		RunE: func(cmd *cobra.Command, args []string) error {
			acts, err := app.activities()
			if err != nil {
				return writeErr(cmd, err)
			}
			now := app.now()
			start, err := timeFlag(at, now)
			if err != nil {
				return writeErr(cmd, fmt.Errorf("--at: %w", err))
			}

			var change query.Change
			needle := strings.Join(args, " ")
			if needle == "" || strings.EqualFold(needle, "last") {
				change, err = acts.ResumeLast(start)
			} else {
				var found []string
				found, err = acts.Cache.Activities(needle)
				if err == nil && len(found) == 0 {
					err = errNotFound("activity", needle)
				}
				if err == nil {
					change, err = acts.Resume(model.Ongoing(found[0], start), start)
				}
			}
			if errors.Is(err, activity.ErrNothingToResume) {
				return writeErr(cmd, fmt.Errorf("%w: the last activity is still ongoing or nothing was tracked yet", err))
			}
			if err != nil {
				return writeErr(cmd, err)
			}

			if app.text() {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "resumed: %s\n", formatItem(*change.After, now))
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": change})
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "Start time (default: now)")
	return cmd
}
