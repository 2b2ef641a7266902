package store

import (
	"math/rand"
	"testing"
	"time"

	"stt-cli/internal/model"
)

func hm(h, m int) time.Time { return ts(2024, 5, 6, h, m, 0) }

func runInsert(t *testing.T, existing []model.Item, newItem model.Item) []model.Item {
	t.Helper()
	var out SliceWriter
	if err := Insert(NewSliceReader(existing), &out, newItem); err != nil {
		t.Fatalf("insert: %v", err)
	}
	return out.Items
}

func assertItems(t *testing.T, got, want []model.Item) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d:\n%v", len(want), len(got), got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("item %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestInsertIntoEmpty(t *testing.T) {
	t.Parallel()

	it := model.Ongoing("a", hm(10, 0))
	assertItems(t, runInsert(t, nil, it), []model.Item{it})
}

func TestInsertAfterWithoutOverlap(t *testing.T) {
	t.Parallel()

	a := model.Interval("a", hm(10, 10), hm(10, 12))
	b := model.Interval("b", hm(10, 12), hm(10, 13))
	assertItems(t, runInsert(t, []model.Item{a}, b), []model.Item{a, b})
}

func TestInsertBeforeWithoutOverlap(t *testing.T) {
	t.Parallel()

	a := model.Interval("a", hm(10, 10), hm(10, 12))
	b := model.Interval("b", hm(9, 0), hm(10, 0))
	assertItems(t, runInsert(t, []model.Item{a}, b), []model.Item{b, a})
}

func TestInsertTruncatesOngoingItem(t *testing.T) {
	t.Parallel()

	start := ts(2024, 5, 6, 10, 0, 0)
	old := model.Ongoing("old", start)
	newItem := model.Interval("new", start.Add(time.Second), start.Add(2*time.Second))

	got := runInsert(t, []model.Item{old}, newItem)
	assertItems(t, got, []model.Item{
		model.Interval("old", start, start.Add(time.Second)),
		newItem,
	})
}

func TestInsertSplitsCoveringItem(t *testing.T) {
	t.Parallel()

	covering := model.Interval("covering", hm(10, 0), hm(13, 0))
	covered := model.Interval("covered", hm(11, 0), hm(12, 0))

	got := runInsert(t, []model.Item{covering}, covered)
	assertItems(t, got, []model.Item{
		model.Interval("covering", hm(10, 0), hm(11, 0)),
		covered,
		model.Interval("covering", hm(12, 0), hm(13, 0)),
	})
}

func TestInsertDropsCoveredItemsAndTrimsNeighbours(t *testing.T) {
	t.Parallel()

	existing := []model.Item{
		model.Interval("a", hm(9, 0), hm(10, 0)),
		model.Interval("b", hm(10, 0), hm(10, 30)),
		model.Interval("c", hm(10, 30), hm(11, 0)),
		model.Interval("d", hm(11, 0), hm(12, 0)),
		model.Interval("e", hm(12, 0), hm(13, 0)),
	}
	newItem := model.Interval("x", hm(9, 30), hm(11, 30))

	got := runInsert(t, existing, newItem)
	assertItems(t, got, []model.Item{
		model.Interval("a", hm(9, 0), hm(9, 30)),
		newItem,
		model.Interval("d", hm(11, 30), hm(12, 0)),
		model.Interval("e", hm(12, 0), hm(13, 0)),
	})
}

func TestInsertOngoingCoversEverythingAfterStart(t *testing.T) {
	t.Parallel()

	existing := []model.Item{
		model.Interval("a", hm(9, 0), hm(10, 0)),
		model.Interval("b", hm(10, 0), hm(11, 0)),
		model.Ongoing("c", hm(11, 0)),
	}
	newItem := model.Ongoing("x", hm(9, 30))

	got := runInsert(t, existing, newItem)
	assertItems(t, got, []model.Item{
		model.Interval("a", hm(9, 0), hm(9, 30)),
		newItem,
	})
}

func TestInsertSameStartReplacesFinishedItem(t *testing.T) {
	t.Parallel()

	a := model.Interval("a", hm(10, 0), hm(11, 0))
	b := model.Interval("b", hm(10, 0), hm(11, 0))
	assertItems(t, runInsert(t, []model.Item{a}, b), []model.Item{b})
}

func TestInsertBeforeOngoingKeepsIt(t *testing.T) {
	t.Parallel()

	ongoing := model.Ongoing("o", hm(12, 0))
	earlier := model.Interval("e", hm(9, 0), hm(10, 0))
	assertItems(t, runInsert(t, []model.Item{ongoing}, earlier), []model.Item{earlier, ongoing})
}

func TestInsertMovesStartOfNextItem(t *testing.T) {
	t.Parallel()

	a := model.Interval("a", hm(10, 0), hm(11, 0))
	b := model.Interval("b", hm(10, 0), hm(11, 0).Add(-time.Second))
	got := runInsert(t, []model.Item{a}, b)
	assertItems(t, got, []model.Item{
		b,
		model.Interval("a", hm(11, 0).Add(-time.Second), hm(11, 0)),
	})
}

func TestInsertKeepsZeroLengthItems(t *testing.T) {
	t.Parallel()

	z := model.Interval("z", hm(10, 0), hm(10, 0))
	a := model.Interval("a", hm(10, 0), hm(11, 0))
	x := model.Interval("x", hm(11, 0), hm(12, 0))
	assertItems(t, runInsert(t, []model.Item{z, a}, x), []model.Item{z, a, x})

	c := model.Interval("c", hm(9, 0), hm(9, 0))
	assertItems(t, runInsert(t, []model.Item{a}, c), []model.Item{c, a})
}

func TestInsertPreservesInvariantRandomized(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	base := hm(0, 0)
	var items []model.Item
	for round := 0; round < 500; round++ {
		start := base.Add(time.Duration(rng.Intn(24*60)) * time.Minute)
		var it model.Item
		if rng.Intn(10) == 0 {
			it = model.Ongoing("o", start)
		} else {
			it = model.Interval("i", start, start.Add(time.Duration(rng.Intn(180))*time.Minute))
		}
		items = runInsert(t, items, it)
		assertValidSequence(t, items)

		found := false
		for _, x := range items {
			if x.Equal(it) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("round %d: inserted item %v missing from %v", round, it, items)
		}
	}
}

func assertValidSequence(t *testing.T, items []model.Item) {
	t.Helper()
	for i, it := range items {
		if it.End != nil && it.End.Before(it.Start) {
			t.Fatalf("item %d ends before it starts: %v", i, it)
		}
		if i == 0 {
			continue
		}
		prev := items[i-1]
		if prev.End == nil {
			t.Fatalf("ongoing item %v is not last (followed by %v)", prev, it)
		}
		if it.Start.Before(prev.Start) {
			t.Fatalf("items out of order: %v then %v", prev, it)
		}
		if prev.End.After(it.Start) {
			t.Fatalf("items overlap: %v and %v", prev, it)
		}
	}
}
