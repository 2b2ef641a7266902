package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5f9fb0"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c757d"))
	breakStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f39c12"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#d16d7a")).Bold(true)
)

// FormatDuration prints d as [-]HH:MM:SS. Hours are not wrapped at 24.
func FormatDuration(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	d = d.Truncate(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
}

func formatBound(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.DateTime)
}

// RenderText writes a human readable report. Lines wider than width are
// truncated; width <= 0 disables truncation.
func RenderText(w io.Writer, title string, r Report, width int) error {
	var b strings.Builder
	line := func(s string) {
		if width > 0 && xansi.StringWidth(s) > width {
			s = xansi.Truncate(s, max(width, 10), "...")
		}
		b.WriteString(s)
		b.WriteByte('\n')
	}

	line(headingStyle.Render("====== " + title + " ======"))
	if r.Start != nil {
		line(mutedStyle.Render("start: " + formatBound(r.Start)))
		line(mutedStyle.Render("end:   " + formatBound(r.End)))
	}
	if r.Uncovered != 0 {
		line(warnStyle.Render("time not yet tracked: " + FormatDuration(r.Uncovered)))
	}
	for _, row := range r.Rows {
		prefix := " "
		dur := FormatDuration(row.Duration)
		if row.Break {
			prefix = "*"
			dur = breakStyle.Render(dur)
		}
		line(prefix + dur + "   " + row.Activity)
	}
	line(headingStyle.Render("====== overall sum: ======"))
	line("work:  " + FormatDuration(r.Work()))
	line("break: " + FormatDuration(r.Breaks()))

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderMarkdown renders the report as a markdown table.
func RenderMarkdown(title string, r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if r.Start != nil {
		fmt.Fprintf(&b, "From **%s** to **%s**.\n\n", formatBound(r.Start), formatBound(r.End))
	}
	if r.Uncovered != 0 {
		fmt.Fprintf(&b, "> Time not yet tracked: `%s`\n\n", FormatDuration(r.Uncovered))
	}
	b.WriteString("| Duration | Activity | Break |\n|---:|---|:---:|\n")
	for _, row := range r.Rows {
		mark := ""
		if row.Break {
			mark = "x"
		}
		fmt.Fprintf(&b, "| `%s` | %s | %s |\n", FormatDuration(row.Duration), markdownCell(row.Activity), mark)
	}
	fmt.Fprintf(&b, "\n**Work:** `%s`  \n**Break:** `%s`\n", FormatDuration(r.Work()), FormatDuration(r.Breaks()))
	return b.String()
}

func markdownCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", "<br>")
	return strings.ReplaceAll(s, "\n", "<br>")
}
