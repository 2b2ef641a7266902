package query

import (
	"sync"

	"stt-cli/internal/model"
)

type ChangeKind string

const (
	ChangeInserted ChangeKind = "inserted"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeReplaced ChangeKind = "replaced"
	// ChangeExternal means the activities file was modified outside this
	// process; Before and After are nil.
	ChangeExternal ChangeKind = "external"
)

// Change describes one completed store mutation.
type Change struct {
	Kind   ChangeKind  `json:"kind"`
	Before *model.Item `json:"before,omitempty"`
	After  *model.Item `json:"after,omitempty"`
}

func Inserted(it model.Item) Change { return Change{Kind: ChangeInserted, After: &it} }
func Deleted(it model.Item) Change  { return Change{Kind: ChangeDeleted, Before: &it} }

func Replaced(before, after model.Item) Change {
	return Change{Kind: ChangeReplaced, Before: &before, After: &after}
}

// Bus delivers store changes to subscribers. Publish calls every subscriber
// synchronously on the calling goroutine, in subscription order.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber
}

type subscriber struct {
	id int
	fn func(Change)
}

func NewBus() *Bus { return &Bus{} }

// Subscribe registers fn and returns a function that removes it.
func (b *Bus) Subscribe(fn func(Change)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

func (b *Bus) Publish(c Change) {
	b.mu.Lock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()
	for _, s := range subs {
		s.fn(c)
	}
}
