package model

import (
	"errors"
	"fmt"
	"time"
)

var ErrEndBeforeStart = errors.New("end must not be before start")

// Item is one tracked activity. End is nil while the item is ongoing.
//
// Items are values: the With* helpers return modified copies and never touch
// the receiver. Start and End are truncated to whole seconds, which is the
// precision of the activities file.
type Item struct {
	Activity string     `json:"activity"`
	Start    time.Time  `json:"start"`
	End      *time.Time `json:"end,omitempty"`
}

// New builds an item, truncating times to seconds.
// Pass a nil end for an ongoing item.
func New(activity string, start time.Time, end *time.Time) (Item, error) {
	start = precise(start)
	var e *time.Time
	if end != nil {
		v := precise(*end)
		if v.Before(start) {
			return Item{}, fmt.Errorf("%w: %s < %s", ErrEndBeforeStart, v.Format(time.DateTime), start.Format(time.DateTime))
		}
		e = &v
	}
	return Item{Activity: activity, Start: start, End: e}, nil
}

// Ongoing returns an item without end.
func Ongoing(activity string, start time.Time) Item {
	return Item{Activity: activity, Start: precise(start)}
}

// Interval returns a finished item. It panics if end is before start; use New
// for unchecked input.
func Interval(activity string, start, end time.Time) Item {
	it, err := New(activity, start, &end)
	if err != nil {
		panic(err)
	}
	return it
}

func precise(t time.Time) time.Time {
	// Round(0) strips the monotonic reading so == and Equal agree.
	return t.Round(0).Truncate(time.Second)
}

func (it Item) IsOngoing() bool { return it.End == nil }

func (it Item) WithEnd(end time.Time) Item {
	v := precise(end)
	it.End = &v
	return it
}

func (it Item) WithPendingEnd() Item {
	it.End = nil
	return it
}

func (it Item) WithStart(start time.Time) Item {
	it.Start = precise(start)
	return it
}

func (it Item) WithActivity(activity string) Item {
	it.Activity = activity
	return it
}

// Equal reports value equality of activity, start and end.
func (it Item) Equal(o Item) bool {
	if it.Activity != o.Activity || !it.Start.Equal(o.Start) {
		return false
	}
	return sameEnd(it.End, o.End)
}

// Key is a comparable form of an item, usable as a map key. Items are Equal
// iff their keys are equal.
type Key struct {
	Activity string
	Start    int64
	End      int64
	Ongoing  bool
}

func (it Item) Key() Key {
	k := Key{Activity: it.Activity, Start: it.Start.Unix(), Ongoing: it.End == nil}
	if it.End != nil {
		k.End = it.End.Unix()
	}
	return k
}

// SameEnd reports whether both items end at the same instant (or are both ongoing).
func (it Item) SameEnd(o Item) bool { return sameEnd(it.End, o.End) }

func sameEnd(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// EndsAtOrBefore reports whether the item has an end and it is not after t.
func (it Item) EndsAtOrBefore(t time.Time) bool {
	return it.End != nil && !t.Before(*it.End)
}

// EndsSameOrAfter reports whether it covers o's end: both ongoing, it
// ongoing, or it.End >= o.End.
func (it Item) EndsSameOrAfter(o Item) bool {
	if sameEnd(it.End, o.End) {
		return true
	}
	if o.End == nil {
		return false
	}
	return it.End == nil || !it.End.Before(*o.End)
}

// Intersects reports whether both intervals overlap for a non-empty span.
func (it Item) Intersects(o Item) bool {
	a := it.End == nil || it.End.After(o.Start)
	b := o.End == nil || o.End.After(it.Start)
	return a && b
}

// Duration returns End-Start, using now for ongoing items.
func (it Item) Duration(now time.Time) time.Duration {
	end := now
	if it.End != nil {
		end = *it.End
	}
	if end.Before(it.Start) {
		return 0
	}
	return end.Sub(it.Start)
}

func (it Item) String() string {
	end := "…"
	if it.End != nil {
		end = it.End.Format(time.DateTime)
	}
	return fmt.Sprintf("%s - %s : %s", it.Start.Format(time.DateTime), end, it.Activity)
}

// UpdatedItem records one item changed by a bulk rename.
type UpdatedItem struct {
	Before Item `json:"before"`
	After  Item `json:"after"`
}

// AdjacentItems holds the contiguous neighbours of an item. A side is nil when
// there is no neighbour or when a gap separates it from the item.
type AdjacentItems struct {
	Previous *Item `json:"previous,omitempty"`
	Next     *Item `json:"next,omitempty"`
}
