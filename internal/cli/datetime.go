package cli

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"stt-cli/internal/store"
)

var (
	reTimeOnly = regexp.MustCompile(`^\d{1,2}:\d{2}(?::\d{2})?$`)
	reDateOnly = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reDateTime = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[ _T]\d{2}:\d{2}(?::\d{2})?$`)
)

// parseTime parses a point in time in local time:
// - HH:MM[:SS] (on the day of now)
// - YYYY-MM-DD (midnight)
// - YYYY-MM-DD HH:MM[:SS], also with '_' or 'T' as separator
// - RFC3339
func parseTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return time.Time{}, fmt.Errorf("empty time")
	case s == "now":
		return now, nil
	case reTimeOnly.MatchString(s):
		layout := "15:04"
		if strings.Count(s, ":") == 2 {
			layout = time.TimeOnly
		}
		if len(strings.SplitN(s, ":", 2)[0]) == 1 {
			s = "0" + s
		}
		t, err := time.ParseInLocation(layout, s, time.Local)
		if err != nil {
			return time.Time{}, err
		}
		y, m, d := now.Date()
		return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, time.Local), nil
	case reDateOnly.MatchString(s):
		return time.ParseInLocation(time.DateOnly, s, time.Local)
	case reDateTime.MatchString(s):
		norm := s[:10] + " " + s[11:]
		layout := "2006-01-02 15:04"
		if len(norm) > len(layout) {
			layout = time.DateTime
		}
		return time.ParseInLocation(layout, norm, time.Local)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.Local(), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q (expected HH:MM[:SS], YYYY-MM-DD, YYYY-MM-DD HH:MM[:SS], %s or RFC3339)", s, store.TimeLayout)
}

// parseDay returns local midnight of the day named by s. Besides the forms
// parseTime accepts, "today" and "yesterday" are understood.
func parseDay(s string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return midnight(now), nil
	case "yesterday":
		return midnight(now).AddDate(0, 0, -1), nil
	}
	t, err := parseTime(s, now)
	if err != nil {
		return time.Time{}, err
	}
	return midnight(t), nil
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
