// Package activity implements the commands that change tracked time: starting,
// finishing, resuming, removing and renaming items. Every successful command
// publishes its change so attached caches drop stale state.
package activity

import (
	"errors"
	"log/slog"
	"time"

	"stt-cli/internal/model"
	"stt-cli/internal/query"
	"stt-cli/internal/store"
)

var (
	ErrNoOngoingItem   = errors.New("no ongoing activity")
	ErrNothingToResume = errors.New("nothing to resume")
)

type Activities struct {
	Store store.Store
	Cache *query.Cache
	Bus   *query.Bus
	Now   func() time.Time
}

// New wires a store, a cache and a bus together. The cache is attached to the
// bus.
func New(s store.Store) *Activities {
	bus := query.NewBus()
	cache := query.NewCache(s)
	cache.Attach(bus)
	return &Activities{Store: s, Cache: cache, Bus: bus, Now: time.Now}
}

func (a *Activities) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// Start records item. An ongoing item with the same start, or an item with the
// same start and end, is replaced instead of split.
func (a *Activities) Start(item model.Item) (query.Change, error) {
	target, err := a.replaceTarget(item)
	if err != nil {
		return query.Change{}, err
	}
	if target != nil {
		if err := a.Store.Replace(*target, item); err != nil {
			return query.Change{}, err
		}
		return a.publish(query.Replaced(*target, item)), nil
	}
	if err := a.Store.Insert(item); err != nil {
		return query.Change{}, err
	}
	return a.publish(query.Inserted(item)), nil
}

func (a *Activities) replaceTarget(item model.Item) (*model.Item, error) {
	last, err := a.Cache.LastItem()
	if err != nil {
		return nil, err
	}
	if last != nil && last.IsOngoing() && last.Start.Equal(item.Start) {
		return last, nil
	}
	crit := query.NewCriteria().WithStartsAt(item.Start)
	if item.End != nil {
		crit = crit.WithEndsAt(*item.End)
	}
	same, err := a.Cache.QueryItems(crit)
	if err != nil || len(same) == 0 {
		return nil, err
	}
	return &same[0], nil
}

// EndCurrent finishes the ongoing item at the given time.
func (a *Activities) EndCurrent(at time.Time) (query.Change, error) {
	ongoing, err := a.Cache.OngoingItem()
	if err != nil {
		return query.Change{}, err
	}
	if ongoing == nil {
		return query.Change{}, ErrNoOngoingItem
	}
	if at.Before(ongoing.Start) {
		return query.Change{}, model.ErrEndBeforeStart
	}
	finished := ongoing.WithEnd(at)
	if err := a.Store.Replace(*ongoing, finished); err != nil {
		return query.Change{}, err
	}
	return a.publish(query.Replaced(*ongoing, finished)), nil
}

func (a *Activities) Remove(item model.Item) (query.Change, error) {
	if err := a.Store.Delete(item); err != nil {
		return query.Change{}, err
	}
	return a.publish(query.Deleted(item)), nil
}

// RemoveAndCloseGap removes item and lets its predecessor absorb the freed
// time when that keeps the timeline contiguous: either the neighbours share
// an activity and are merged, or item was ongoing and the predecessor, started
// the same day, becomes ongoing again. Otherwise item is simply removed.
func (a *Activities) RemoveAndCloseGap(item model.Item) (query.Change, error) {
	adj, err := a.Cache.AdjacentItems(item)
	if err != nil {
		return query.Change{}, err
	}
	prev, next := adj.Previous, adj.Next
	if prev != nil {
		var merged *model.Item
		switch {
		case next != nil && prev.Activity == next.Activity:
			m := prev.WithPendingEnd()
			if next.End != nil {
				m = prev.WithEnd(*next.End)
			}
			merged = &m
		case item.IsOngoing() && sameDay(prev.Start, item.Start):
			m := prev.WithPendingEnd()
			merged = &m
		}
		if merged != nil {
			if err := a.Store.Insert(*merged); err != nil {
				return query.Change{}, err
			}
			return a.publish(query.Inserted(*merged)), nil
		}
	}
	return a.Remove(item)
}

// Resume starts a new ongoing item at the given time with item's activity.
func (a *Activities) Resume(item model.Item, at time.Time) (query.Change, error) {
	resumed := item.WithPendingEnd().WithStart(at)
	if err := a.Store.Insert(resumed); err != nil {
		return query.Change{}, err
	}
	return a.publish(query.Inserted(resumed)), nil
}

// ResumeLast resumes the last item if it is finished.
func (a *Activities) ResumeLast(at time.Time) (query.Change, error) {
	last, err := a.Cache.LastItem()
	if err != nil {
		return query.Change{}, err
	}
	if last == nil || last.IsOngoing() {
		return query.Change{}, ErrNothingToResume
	}
	return a.Resume(*last, at)
}

// Rename sets activity on every stored item equal to one of items.
func (a *Activities) Rename(items []model.Item, activity string) ([]query.Change, error) {
	updated, err := a.Store.BulkUpdateActivity(items, activity)
	if err != nil {
		return nil, err
	}
	changes := make([]query.Change, 0, len(updated))
	for _, u := range updated {
		changes = append(changes, a.publish(query.Replaced(u.Before, u.After)))
	}
	return changes, nil
}

func (a *Activities) publish(c query.Change) query.Change {
	slog.Debug("activities changed", "kind", c.Kind)
	if a.Bus != nil {
		a.Bus.Publish(c)
	} else if a.Cache != nil {
		a.Cache.Invalidate()
	}
	return c
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
