package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"stt-cli/internal/docs"
	"stt-cli/internal/query"
	"stt-cli/internal/report"
)

func newReportCmd(app *App) *cobra.Command {
	var from, to, search string
	var markdown, long bool
	var width int

	cmd := &cobra.Command{
		Use:     "report [DAY]",
		Aliases: []string{"r"},
		Short:   "Sum tracked time per activity",
		Long:    "Sum tracked time per activity for one day (default today) or the range given by --from/--to.",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			acts, err := app.activities()
			if err != nil {
				return writeErr(cmd, err)
			}
			now := app.now()

			var day string
			if len(args) == 1 {
				day = args[0]
			}
			start, err := parseDay(day, now)
			if err != nil {
				return writeErr(cmd, err)
			}
			end := start.AddDate(0, 0, 1)
			if from != "" {
				if start, err = parseDay(from, now); err != nil {
					return writeErr(cmd, fmt.Errorf("--from: %w", err))
				}
				end = midnight(now).AddDate(0, 0, 1)
			}
			if to != "" {
				t, err := parseDay(to, now)
				if err != nil {
					return writeErr(cmd, fmt.Errorf("--to: %w", err))
				}
				end = t.AddDate(0, 0, 1)
			}
			if !end.After(start) {
				return writeErr(cmd, errUsage("empty report range %s to %s", start.Format(time.DateOnly), end.Format(time.DateOnly)))
			}

			crit := query.NewCriteria().WithStartBetween(start, end)
			if search != "" {
				crit = crit.WithActivityContains(search)
			}
			items, err := acts.Cache.QueryItems(crit)
			if err != nil {
				return writeErr(cmd, err)
			}
			rep := report.Summing(items, now).Apply(app.cfg.ReportOptions())

			title := "sums of " + start.Format(time.DateOnly)
			if !end.Equal(start.AddDate(0, 0, 1)) {
				title = "sums from " + start.Format(time.DateOnly) + " to " + end.AddDate(0, 0, -1).Format(time.DateOnly)
			}

			switch {
			case markdown:
				style := "dark"
				if app.NoColor || !isTerminal(cmd) {
					style = "notty"
				}
				_, err := fmt.Fprint(cmd.OutOrStdout(), docs.Render(report.RenderMarkdown(title, rep), max(app.reportWidth(cmd, 0), 80), style))
				return err
			case app.text():
				w := 0
				if !long {
					w = app.reportWidth(cmd, width)
				}
				return report.RenderText(cmd.OutOrStdout(), title, rep, w)
			}
			return writeOut(cmd, app, map[string]any{
				"data": rep,
				"meta": map[string]any{"from": start, "to": end, "work": rep.Work(), "break": rep.Breaks()},
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "First day of the report")
	cmd.Flags().StringVar(&to, "to", "", "Last day of the report (inclusive)")
	cmd.Flags().StringVar(&search, "search", "", "Only activities containing this text")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Render a markdown report")
	cmd.Flags().BoolVar(&long, "long", false, "Do not truncate long lines (text format)")
	cmd.Flags().IntVar(&width, "width", 0, "Truncate text lines to this width (default: config or terminal width)")
	return cmd
}

// reportWidth picks the flag, then report.width from the config, then the
// terminal width. Zero means unlimited.
func (app *App) reportWidth(cmd *cobra.Command, flag int) int {
	if flag > 0 {
		return flag
	}
	if app.cfg.Report.Width > 0 {
		return app.cfg.Report.Width
	}
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		if w, _, err := term.GetSize(f.Fd()); err == nil && w > 0 {
			return w
		}
	}
	return 0
}

func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && term.IsTerminal(f.Fd())
}
