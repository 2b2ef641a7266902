package query

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"stt-cli/internal/model"
	"stt-cli/internal/store"
)

// Source is anything that can be read as an ordered item sequence.
// store.Store satisfies it.
type Source interface {
	Open() (store.ItemReader, error)
}

// Cache answers queries from an in-memory copy of the source. The copy is
// rebuilt lazily on the first query after Invalidate.
type Cache struct {
	src Source

	mu    sync.Mutex
	items []model.Item
	valid bool
}

func NewCache(src Source) *Cache {
	return &Cache{src: src}
}

// Attach invalidates the cache on every change published on bus.
func (c *Cache) Attach(bus *Bus) (detach func()) {
	return bus.Subscribe(func(Change) { c.Invalidate() })
}

func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.valid = false
	slog.Debug("query cache cleared")
}

// load returns the cached slice. Callers must not modify it.
func (c *Cache) load() ([]model.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.valid {
		return c.items, nil
	}
	started := time.Now()
	r, err := c.src.Open()
	if err != nil {
		return nil, err
	}
	items, err := store.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("rebuild query cache: %w", err)
	}
	c.items = items
	c.valid = true
	slog.Debug("query cache rebuilt", "items", len(items), "took", time.Since(started))
	return items, nil
}

// QueryAll returns every item in store order.
func (c *Cache) QueryAll() ([]model.Item, error) {
	items, err := c.load()
	if err != nil {
		return nil, err
	}
	return slices.Clone(items), nil
}

// QueryItems returns the items matching crit in store order.
func (c *Cache) QueryItems(crit Criteria) ([]model.Item, error) {
	items, err := c.load()
	if err != nil {
		return nil, err
	}
	out := make([]model.Item, 0)
	for _, it := range items {
		if crit.Matches(it) {
			out = append(out, it)
		}
	}
	return out, nil
}

// LastItem returns the last stored item, or nil for an empty store.
func (c *Cache) LastItem() (*model.Item, error) {
	items, err := c.load()
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	last := items[len(items)-1]
	return &last, nil
}

// OngoingItem returns the last item if it has no end, even when it starts in
// the future.
func (c *Cache) OngoingItem() (*model.Item, error) {
	last, err := c.LastItem()
	if err != nil || last == nil || !last.IsOngoing() {
		return nil, err
	}
	return last, nil
}

// AdjacentItems returns the neighbours of item that touch it without a gap.
// An item that is not stored has no neighbours.
func (c *Cache) AdjacentItems(item model.Item) (model.AdjacentItems, error) {
	items, err := c.load()
	if err != nil {
		return model.AdjacentItems{}, err
	}
	idx := slices.IndexFunc(items, item.Equal)
	if idx < 0 {
		return model.AdjacentItems{}, nil
	}
	var adj model.AdjacentItems
	if idx > 0 {
		prev := items[idx-1]
		if prev.End != nil && prev.End.Equal(item.Start) {
			adj.Previous = &prev
		}
	}
	if idx < len(items)-1 {
		next := items[idx+1]
		if item.End != nil && item.End.Equal(next.Start) {
			adj.Next = &next
		}
	}
	return adj, nil
}

// TrackedDays returns the distinct local start dates, in store order, as
// midnight times.
func (c *Cache) TrackedDays() ([]time.Time, error) {
	items, err := c.load()
	if err != nil {
		return nil, err
	}
	days := make([]time.Time, 0)
	for _, it := range items {
		y, m, d := it.Start.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, it.Start.Location())
		if !slices.ContainsFunc(days, day.Equal) {
			days = append(days, day)
		}
	}
	return days, nil
}

// Activities returns the distinct activities containing substr, most recently
// started first. Matching is case-insensitive.
func (c *Cache) Activities(substr string) ([]string, error) {
	items, err := c.load()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(substr)
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for i := len(items) - 1; i >= 0; i-- {
		a := items[i].Activity
		if _, ok := seen[a]; ok {
			continue
		}
		if !strings.Contains(strings.ToLower(a), needle) {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out, nil
}
