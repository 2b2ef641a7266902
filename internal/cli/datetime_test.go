package cli

import (
	"log/slog"
	"testing"
	"time"
)

func TestParseTime(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 6, 14, 30, 15, 0, time.Local)
	cases := []struct {
		in   string
		want time.Time
	}{
		{"now", now},
		{"9:05", time.Date(2024, 5, 6, 9, 5, 0, 0, time.Local)},
		{"09:05:30", time.Date(2024, 5, 6, 9, 5, 30, 0, time.Local)},
		{"2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.Local)},
		{"2024-01-02 08:00", time.Date(2024, 1, 2, 8, 0, 0, 0, time.Local)},
		{"2024-01-02_08:00:01", time.Date(2024, 1, 2, 8, 0, 1, 0, time.Local)},
		{"2024-01-02T08:00", time.Date(2024, 1, 2, 8, 0, 0, 0, time.Local)},
		{"2024-01-02T08:00:00Z", time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC).Local()},
	}
	for _, tc := range cases {
		got, err := parseTime(tc.in, now)
		if err != nil {
			t.Fatalf("parseTime(%q): %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("parseTime(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"", "yesterday-ish", "25:00", "2024-13-01", "9"} {
		if _, err := parseTime(bad, now); err == nil {
			t.Fatalf("parseTime(%q): expected error", bad)
		}
	}
}

func TestParseDay(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 6, 14, 30, 0, 0, time.Local)
	cases := map[string]time.Time{
		"":                 time.Date(2024, 5, 6, 0, 0, 0, 0, time.Local),
		"today":            time.Date(2024, 5, 6, 0, 0, 0, 0, time.Local),
		"Yesterday":        time.Date(2024, 5, 5, 0, 0, 0, 0, time.Local),
		"2024-02-29":       time.Date(2024, 2, 29, 0, 0, 0, 0, time.Local),
		"2024-02-29 13:00": time.Date(2024, 2, 29, 0, 0, 0, 0, time.Local),
	}
	for in, want := range cases {
		got, err := parseDay(in, now)
		if err != nil {
			t.Fatalf("parseDay(%q): %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("parseDay(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		configured string
		verbose    bool
		want       slog.Level
	}{
		{"", false, slog.LevelWarn},
		{"info", false, slog.LevelInfo},
		{"error", false, slog.LevelError},
		{"error", true, slog.LevelDebug},
	}
	for _, tc := range cases {
		if got := logLevel(tc.configured, tc.verbose); got != tc.want {
			t.Fatalf("logLevel(%q, %v) = %v, want %v", tc.configured, tc.verbose, got, tc.want)
		}
	}
}
