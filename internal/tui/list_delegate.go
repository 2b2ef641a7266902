package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"stt-cli/internal/model"
	"stt-cli/internal/report"
)

// itemRow is one stored item in the list.
type itemRow struct {
	item model.Item
}

func (r itemRow) FilterValue() string { return r.item.Activity }

// line renders "Mon 2024-05-06  09:00:00 - 10:30:00  01:30:00  activity".
func (r itemRow) line(now time.Time) string {
	it := r.item
	end := "now     "
	if it.End != nil {
		end = it.End.Format(time.TimeOnly)
	}
	activity := strings.NewReplacer("\r\n", " ⏎ ", "\n", " ⏎ ", "\r", " ⏎ ").Replace(it.Activity)
	return fmt.Sprintf("%s  %s - %s  %s  %s",
		it.Start.Format("Mon 2006-01-02"),
		it.Start.Format(time.TimeOnly),
		end,
		report.FormatDuration(it.Duration(now)),
		activity,
	)
}

type rowDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	ongoing  lipgloss.Style
	now      func() time.Time
}

func newRowDelegate(now func() time.Time) rowDelegate {
	return rowDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
		ongoing: lipgloss.NewStyle().Foreground(colorOngoing),
		now:     now,
	}
}

func (d rowDelegate) Height() int                             { return 1 }
func (d rowDelegate) Spacing() int                            { return 0 }
func (d rowDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	row, ok := item.(itemRow)
	if contentW < 4 || !ok {
		return
	}

	style := d.normal
	switch {
	case index == m.Index():
		style = d.selected
	case row.item.IsOngoing():
		style = d.ongoing
	}

	line := row.line(d.now())
	if lineW := xansi.StringWidth(line); lineW < contentW {
		line += strings.Repeat(" ", contentW-lineW)
	} else if lineW > contentW {
		line = xansi.Truncate(line, contentW, "…")
	}
	fmt.Fprint(w, style.Render(line))
}
