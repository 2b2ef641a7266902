package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	xansi "github.com/charmbracelet/x/ansi"

	"stt-cli/internal/model"
)

func hm(h, m int) time.Time { return time.Date(2024, 5, 6, h, m, 0, 0, time.Local) }

func TestSummingGroupsAndSorts(t *testing.T) {
	t.Parallel()

	items := []model.Item{
		model.Interval("b", hm(9, 0), hm(10, 0)),
		model.Interval("a", hm(10, 0), hm(10, 30)),
		model.Interval("b", hm(11, 0), hm(11, 15)),
		model.Ongoing("a", hm(12, 0)),
	}
	r := Summing(items, hm(12, 45))

	if len(r.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %+v", r.Rows)
	}
	if r.Rows[0].Activity != "a" || r.Rows[0].Duration != 75*time.Minute {
		t.Fatalf("unexpected row a: %+v", r.Rows[0])
	}
	if r.Rows[1].Activity != "b" || r.Rows[1].Duration != 75*time.Minute {
		t.Fatalf("unexpected row b: %+v", r.Rows[1])
	}
	if r.Uncovered != 75*time.Minute {
		t.Fatalf("expected 75m uncovered, got %v", r.Uncovered)
	}
	if !r.Start.Equal(hm(9, 0)) || !r.End.Equal(hm(12, 45)) {
		t.Fatalf("unexpected bounds %v - %v", r.Start, r.End)
	}
}

func TestSummingEmpty(t *testing.T) {
	t.Parallel()

	r := Summing(nil, hm(12, 0))
	if r.Start != nil || r.End != nil || len(r.Rows) != 0 || r.Uncovered != 0 {
		t.Fatalf("expected empty report, got %+v", r)
	}
}

func TestSummingFutureOngoingCountsZero(t *testing.T) {
	t.Parallel()

	r := Summing([]model.Item{model.Ongoing("later", hm(15, 0))}, hm(12, 0))
	if r.Rows[0].Duration != 0 {
		t.Fatalf("expected zero duration, got %v", r.Rows[0].Duration)
	}
}

func TestRound(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, interval, want time.Duration
	}{
		{7 * time.Minute, 0, 7 * time.Minute},
		{7 * time.Minute, 5 * time.Minute, 5 * time.Minute},
		{8 * time.Minute, 5 * time.Minute, 10 * time.Minute},
		{90 * time.Second, time.Minute, 2 * time.Minute},
		{150 * time.Second, time.Minute, 2 * time.Minute},
	}
	for _, tc := range cases {
		if got := Round(tc.in, tc.interval); got != tc.want {
			t.Fatalf("Round(%v, %v) = %v, want %v", tc.in, tc.interval, got, tc.want)
		}
	}
}

func TestApplyMarksBreaksAndRounds(t *testing.T) {
	t.Parallel()

	r := Summing([]model.Item{
		model.Interval("coffee", hm(9, 0), hm(9, 14)),
		model.Interval("work", hm(9, 14), hm(11, 0)),
	}, hm(12, 0)).Apply(Options{RoundTo: 15 * time.Minute, BreakActivities: DefaultBreakActivities})

	if !r.Rows[0].Break || r.Rows[0].Duration != 15*time.Minute {
		t.Fatalf("unexpected coffee row: %+v", r.Rows[0])
	}
	if r.Work() != 105*time.Minute || r.Breaks() != 15*time.Minute {
		t.Fatalf("unexpected totals work=%v break=%v", r.Work(), r.Breaks())
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	if got := FormatDuration(26*time.Hour + 3*time.Minute + 4*time.Second); got != "26:03:04" {
		t.Fatalf("got %q", got)
	}
	if got := FormatDuration(-90 * time.Second); got != "-00:01:30" {
		t.Fatalf("got %q", got)
	}
}

func TestRenderTextTruncatesLongLines(t *testing.T) {
	t.Parallel()

	r := Summing([]model.Item{
		model.Interval(strings.Repeat("very long activity ", 10), hm(9, 0), hm(10, 0)),
	}, hm(12, 0))

	var buf bytes.Buffer
	if err := RenderText(&buf, "sums", r, 40); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := xansi.Strip(buf.String())
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if xansi.StringWidth(line) > 40 {
			t.Fatalf("line wider than 40 cells: %q", line)
		}
	}
	if !strings.Contains(out, " 01:00:00   very long") || !strings.Contains(out, "...") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "work:  01:00:00") {
		t.Fatalf("missing work total:\n%s", out)
	}
}

func TestRenderMarkdownEscapesCells(t *testing.T) {
	t.Parallel()

	r := Summing([]model.Item{model.Interval("a|b\nc", hm(9, 0), hm(10, 0))}, hm(12, 0))
	md := RenderMarkdown("Report", r)
	if !strings.Contains(md, `| `+"`01:00:00`"+` | a\|b<br>c |  |`) {
		t.Fatalf("unexpected markdown:\n%s", md)
	}
}
