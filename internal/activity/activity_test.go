package activity

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"stt-cli/internal/model"
	"stt-cli/internal/query"
	"stt-cli/internal/store"
)

func hm(h, m int) time.Time { return time.Date(2024, 5, 6, h, m, 0, 0, time.Local) }

func newActivities(t *testing.T, items ...model.Item) *Activities {
	t.Helper()
	s := store.New(filepath.Join(t.TempDir(), "activities"))
	for _, it := range items {
		if err := s.Insert(it); err != nil {
			t.Fatalf("insert %v: %v", it, err)
		}
	}
	a := New(s)
	a.Now = func() time.Time { return hm(18, 0) }
	return a
}

func all(t *testing.T, a *Activities) []model.Item {
	t.Helper()
	items, err := a.Cache.QueryAll()
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	return items
}

func assertItems(t *testing.T, got []model.Item, want ...model.Item) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("item %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStartInsertsAndPublishes(t *testing.T) {
	t.Parallel()

	a := newActivities(t)
	var seen []query.Change
	a.Bus.Subscribe(func(c query.Change) { seen = append(seen, c) })

	// Warm the cache so the next query proves invalidation.
	if len(all(t, a)) != 0 {
		t.Fatalf("expected empty store")
	}
	item := model.Ongoing("write tests", hm(9, 0))
	c, err := a.Start(item)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if c.Kind != query.ChangeInserted || len(seen) != 1 {
		t.Fatalf("expected one inserted change, got %v / %v", c, seen)
	}
	assertItems(t, all(t, a), item)
}

func TestStartReplacesOngoingItemWithSameStart(t *testing.T) {
	t.Parallel()

	old := model.Ongoing("typo", hm(9, 0))
	a := newActivities(t, model.Interval("before", hm(8, 0), hm(9, 0)), old)

	fixed := model.Ongoing("fixed", hm(9, 0))
	c, err := a.Start(fixed)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if c.Kind != query.ChangeReplaced || !c.Before.Equal(old) {
		t.Fatalf("expected replace of %v, got %+v", old, c)
	}
	assertItems(t, all(t, a), model.Interval("before", hm(8, 0), hm(9, 0)), fixed)
}

func TestStartReplacesItemWithSameInterval(t *testing.T) {
	t.Parallel()

	old := model.Interval("old", hm(9, 0), hm(10, 0))
	next := model.Ongoing("next", hm(10, 0))
	a := newActivities(t, old, next)

	edited := model.Interval("edited", hm(9, 0), hm(10, 0))
	c, err := a.Start(edited)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if c.Kind != query.ChangeReplaced {
		t.Fatalf("expected replace, got %v", c.Kind)
	}
	assertItems(t, all(t, a), edited, next)
}

func TestStartTruncatesOngoingItem(t *testing.T) {
	t.Parallel()

	a := newActivities(t, model.Ongoing("first", hm(9, 0)))
	if _, err := a.Start(model.Ongoing("second", hm(10, 0))); err != nil {
		t.Fatalf("start: %v", err)
	}
	assertItems(t, all(t, a),
		model.Interval("first", hm(9, 0), hm(10, 0)),
		model.Ongoing("second", hm(10, 0)),
	)
}

func TestEndCurrent(t *testing.T) {
	t.Parallel()

	a := newActivities(t, model.Ongoing("work", hm(9, 0)))
	c, err := a.EndCurrent(hm(12, 0))
	if err != nil {
		t.Fatalf("end current: %v", err)
	}
	if c.After == nil || c.After.End == nil || !c.After.End.Equal(hm(12, 0)) {
		t.Fatalf("unexpected change %+v", c)
	}
	assertItems(t, all(t, a), model.Interval("work", hm(9, 0), hm(12, 0)))

	if _, err := a.EndCurrent(hm(13, 0)); !errors.Is(err, ErrNoOngoingItem) {
		t.Fatalf("expected ErrNoOngoingItem, got %v", err)
	}
}

func TestEndCurrentRejectsEndBeforeStart(t *testing.T) {
	t.Parallel()

	a := newActivities(t, model.Ongoing("work", hm(9, 0)))
	if _, err := a.EndCurrent(hm(8, 0)); !errors.Is(err, model.ErrEndBeforeStart) {
		t.Fatalf("expected ErrEndBeforeStart, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()

	x := model.Interval("x", hm(9, 0), hm(10, 0))
	y := model.Interval("y", hm(10, 0), hm(11, 0))
	a := newActivities(t, x, y)
	all(t, a)

	if _, err := a.Remove(x); err != nil {
		t.Fatalf("remove: %v", err)
	}
	assertItems(t, all(t, a), y)
}

func TestRemoveAndCloseGapMergesMatchingNeighbours(t *testing.T) {
	t.Parallel()

	a := newActivities(t,
		model.Interval("work", hm(9, 0), hm(10, 0)),
		model.Interval("break", hm(10, 0), hm(10, 15)),
		model.Interval("work", hm(10, 15), hm(12, 0)),
	)
	c, err := a.RemoveAndCloseGap(model.Interval("break", hm(10, 0), hm(10, 15)))
	if err != nil {
		t.Fatalf("remove and close gap: %v", err)
	}
	if c.Kind != query.ChangeInserted {
		t.Fatalf("expected inserted change, got %v", c.Kind)
	}
	assertItems(t, all(t, a), model.Interval("work", hm(9, 0), hm(12, 0)))
}

func TestRemoveAndCloseGapMergesIntoOngoing(t *testing.T) {
	t.Parallel()

	a := newActivities(t,
		model.Interval("work", hm(9, 0), hm(10, 0)),
		model.Interval("break", hm(10, 0), hm(10, 15)),
		model.Ongoing("work", hm(10, 15)),
	)
	if _, err := a.RemoveAndCloseGap(model.Interval("break", hm(10, 0), hm(10, 15))); err != nil {
		t.Fatalf("remove and close gap: %v", err)
	}
	assertItems(t, all(t, a), model.Ongoing("work", hm(9, 0)))
}

func TestRemoveAndCloseGapReopensPreviousForOngoing(t *testing.T) {
	t.Parallel()

	a := newActivities(t,
		model.Interval("work", hm(9, 0), hm(10, 0)),
		model.Ongoing("oops", hm(10, 0)),
	)
	if _, err := a.RemoveAndCloseGap(model.Ongoing("oops", hm(10, 0))); err != nil {
		t.Fatalf("remove and close gap: %v", err)
	}
	assertItems(t, all(t, a), model.Ongoing("work", hm(9, 0)))
}

func TestRemoveAndCloseGapFallsBackToRemove(t *testing.T) {
	t.Parallel()

	a := newActivities(t,
		model.Interval("a", hm(9, 0), hm(10, 0)),
		model.Interval("b", hm(10, 0), hm(11, 0)),
		model.Interval("c", hm(11, 0), hm(12, 0)),
	)
	c, err := a.RemoveAndCloseGap(model.Interval("b", hm(10, 0), hm(11, 0)))
	if err != nil {
		t.Fatalf("remove and close gap: %v", err)
	}
	if c.Kind != query.ChangeDeleted {
		t.Fatalf("expected delete, got %v", c.Kind)
	}
	assertItems(t, all(t, a),
		model.Interval("a", hm(9, 0), hm(10, 0)),
		model.Interval("c", hm(11, 0), hm(12, 0)),
	)
}

func TestResumeAndResumeLast(t *testing.T) {
	t.Parallel()

	a := newActivities(t, model.Interval("read", hm(9, 0), hm(10, 0)))
	if _, err := a.ResumeLast(hm(11, 0)); err != nil {
		t.Fatalf("resume last: %v", err)
	}
	assertItems(t, all(t, a),
		model.Interval("read", hm(9, 0), hm(10, 0)),
		model.Ongoing("read", hm(11, 0)),
	)

	if _, err := a.ResumeLast(hm(12, 0)); !errors.Is(err, ErrNothingToResume) {
		t.Fatalf("expected ErrNothingToResume while ongoing, got %v", err)
	}

	if _, err := a.Resume(model.Interval("read", hm(9, 0), hm(10, 0)), hm(12, 0)); err != nil {
		t.Fatalf("resume: %v", err)
	}
	assertItems(t, all(t, a),
		model.Interval("read", hm(9, 0), hm(10, 0)),
		model.Interval("read", hm(11, 0), hm(12, 0)),
		model.Ongoing("read", hm(12, 0)),
	)
}

func TestResumeLastOnEmptyStore(t *testing.T) {
	t.Parallel()

	if _, err := newActivities(t).ResumeLast(hm(9, 0)); !errors.Is(err, ErrNothingToResume) {
		t.Fatalf("expected ErrNothingToResume, got %v", err)
	}
}

func TestRenamePublishesOneChangePerItem(t *testing.T) {
	t.Parallel()

	x := model.Interval("x", hm(9, 0), hm(10, 0))
	y := model.Interval("x", hm(10, 0), hm(11, 0))
	z := model.Interval("z", hm(11, 0), hm(12, 0))
	a := newActivities(t, x, y, z)

	var published int
	a.Bus.Subscribe(func(query.Change) { published++ })
	changes, err := a.Rename([]model.Item{x, y}, "renamed")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if len(changes) != 2 || published != 2 {
		t.Fatalf("expected 2 changes published, got %d/%d", len(changes), published)
	}
	assertItems(t, all(t, a), x.WithActivity("renamed"), y.WithActivity("renamed"), z)
}
