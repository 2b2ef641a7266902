package query

import (
	"strings"
	"time"

	"stt-cli/internal/model"
)

// Criteria is a conjunction of optional bounds. The zero value matches every
// item. With* methods return a modified copy.
type Criteria struct {
	startNotBefore *time.Time
	startBefore    *time.Time
	endNotAfter    *time.Time
	endBefore      *time.Time
	startsAt       *time.Time
	endsAt         *time.Time

	activityContains string
	activityIs       *string
	activityIsNot    *string
}

func NewCriteria() Criteria { return Criteria{} }

func (c Criteria) WithStartNotBefore(t time.Time) Criteria {
	c.startNotBefore = &t
	return c
}

func (c Criteria) WithStartBefore(t time.Time) Criteria {
	c.startBefore = &t
	return c
}

// WithStartBetween restricts start to [from, to).
func (c Criteria) WithStartBetween(from, to time.Time) Criteria {
	return c.WithStartNotBefore(from).WithStartBefore(to)
}

// WithPeriodAtDay restricts start to the local calendar day of date.
func (c Criteria) WithPeriodAtDay(date time.Time) Criteria {
	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	return c.WithStartBetween(day, day.AddDate(0, 0, 1))
}

func (c Criteria) WithEndNotAfter(t time.Time) Criteria {
	c.endNotAfter = &t
	return c
}

func (c Criteria) WithEndBefore(t time.Time) Criteria {
	c.endBefore = &t
	return c
}

func (c Criteria) WithStartsAt(t time.Time) Criteria {
	c.startsAt = &t
	return c
}

func (c Criteria) WithEndsAt(t time.Time) Criteria {
	c.endsAt = &t
	return c
}

func (c Criteria) WithActivityContains(s string) Criteria {
	c.activityContains = s
	return c
}

func (c Criteria) WithActivityIs(s string) Criteria {
	c.activityIs = &s
	return c
}

func (c Criteria) WithActivityIsNot(s string) Criteria {
	c.activityIsNot = &s
	return c
}

// Matches reports whether it satisfies every bound. Ongoing items never
// satisfy an end bound.
func (c Criteria) Matches(it model.Item) bool {
	switch {
	case c.startBefore != nil && !it.Start.Before(*c.startBefore):
		return false
	case c.startNotBefore != nil && it.Start.Before(*c.startNotBefore):
		return false
	case c.endNotAfter != nil && (it.End == nil || it.End.After(*c.endNotAfter)):
		return false
	case c.endBefore != nil && (it.End == nil || !it.End.Before(*c.endBefore)):
		return false
	case c.activityContains != "" && !strings.Contains(it.Activity, c.activityContains):
		return false
	case c.startsAt != nil && !it.Start.Equal(*c.startsAt):
		return false
	case c.endsAt != nil && (it.End == nil || !it.End.Equal(*c.endsAt)):
		return false
	case c.activityIs != nil && it.Activity != *c.activityIs:
		return false
	case c.activityIsNot != nil && it.Activity == *c.activityIsNot:
		return false
	}
	return true
}
