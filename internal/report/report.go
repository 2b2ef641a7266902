// Package report sums tracked time per activity.
package report

import (
	"slices"
	"strings"
	"time"

	"stt-cli/internal/model"
)

// DefaultBreakActivities are counted as break time rather than work.
var DefaultBreakActivities = []string{"pause", "break", "coffee"}

type Row struct {
	Activity string        `json:"activity"`
	Duration time.Duration `json:"duration"`
	Break    bool          `json:"break,omitempty"`
}

type Report struct {
	Rows      []Row         `json:"rows"`
	Start     *time.Time    `json:"start,omitempty"`
	End       *time.Time    `json:"end,omitempty"`
	Uncovered time.Duration `json:"uncovered"`
}

type Options struct {
	// RoundTo rounds every row to a multiple of it. Zero disables rounding.
	RoundTo         time.Duration
	BreakActivities []string
}

// Summing groups items by activity and sums their durations. Ongoing items
// count until now. Gaps between consecutive items are summed as uncovered
// time. Rows are sorted by activity.
func Summing(items []model.Item, now time.Time) Report {
	sums := make(map[string]time.Duration)
	var r Report
	var last *model.Item
	for _, it := range items {
		end := now
		if it.End != nil {
			end = *it.End
		}
		if last != nil {
			lastEnd := now
			if last.End != nil {
				lastEnd = *last.End
			}
			if lastEnd.Before(it.Start) {
				r.Uncovered += it.Start.Sub(lastEnd)
			}
		}
		last = &it

		if r.Start == nil {
			start := it.Start
			r.Start = &start
		}
		r.End = &end

		sums[it.Activity] += max(end.Sub(it.Start), 0)
	}

	r.Rows = make([]Row, 0, len(sums))
	for activity, d := range sums {
		r.Rows = append(r.Rows, Row{Activity: activity, Duration: d})
	}
	slices.SortFunc(r.Rows, func(a, b Row) int { return strings.Compare(a.Activity, b.Activity) })
	return r
}

// Apply returns a copy with rows rounded and break activities marked.
func (r Report) Apply(opts Options) Report {
	rows := make([]Row, len(r.Rows))
	for i, row := range r.Rows {
		row.Duration = Round(row.Duration, opts.RoundTo)
		row.Break = slices.Contains(opts.BreakActivities, row.Activity)
		rows[i] = row
	}
	r.Rows = rows
	return r
}

// Work is the total of all non-break rows.
func (r Report) Work() time.Duration {
	var d time.Duration
	for _, row := range r.Rows {
		if !row.Break {
			d += row.Duration
		}
	}
	return d
}

func (r Report) Breaks() time.Duration {
	var d time.Duration
	for _, row := range r.Rows {
		if row.Break {
			d += row.Duration
		}
	}
	return d
}

// Round rounds d to the nearest multiple of interval at millisecond
// resolution. Exact ties round to the even multiple.
func Round(d, interval time.Duration) time.Duration {
	step := interval.Milliseconds()
	if step <= 0 {
		return d
	}
	ms := d.Milliseconds()
	segments := ms / step
	result := segments * step
	delta := ms - result
	half := step / 2
	if delta > half || delta == half && segments%2 == 1 {
		result += step
	}
	return time.Duration(result) * time.Millisecond
}
