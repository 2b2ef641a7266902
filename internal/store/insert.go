package store

import (
	"errors"
	"io"

	"stt-cli/internal/model"
)

// Insert merges newItem into the ordered, non-overlapping sequence read from
// in and writes the resulting sequence to out in a single forward pass.
//
// Items ending at or before newItem's start are copied. The first item that
// reaches past that point is cut to end where newItem starts (if it began
// earlier); an ongoing item cut this way is consumed. newItem is written,
// every item it fully covers is dropped, and the first item reaching past
// newItem's end is moved to start there. The rest is copied unchanged.
// Truncation may leave zero-length items; they are kept.
func Insert(in ItemReader, out ItemWriter, newItem model.Item) error {
	h := inserter{in: in, out: out, item: newItem}
	return h.run()
}

type inserter struct {
	in   ItemReader
	out  ItemWriter
	item model.Item

	// current is the last item read and not yet written; nil at end of input.
	current *model.Item
}

func (h *inserter) run() error {
	if err := h.copyWhile(func(it model.Item) bool { return it.EndsAtOrBefore(h.item.Start) }); err != nil {
		return err
	}
	if h.current != nil && h.current.Start.Before(h.item.Start) {
		if err := h.out.Write(h.current.WithEnd(h.item.Start)); err != nil {
			return err
		}
		// An ongoing item is ended by newItem, not split around it.
		if h.current.IsOngoing() {
			if err := h.next(); err != nil {
				return err
			}
		}
	}
	if err := h.out.Write(h.item); err != nil {
		return err
	}
	for h.current != nil && h.item.EndsSameOrAfter(*h.current) {
		if err := h.next(); err != nil {
			return err
		}
	}
	if h.current != nil {
		it := *h.current
		if h.item.End != nil && h.item.End.After(it.Start) {
			it = it.WithStart(*h.item.End)
		}
		if err := h.out.Write(it); err != nil {
			return err
		}
	}
	return h.copyWhile(func(model.Item) bool { return true })
}

// next advances current; it becomes nil at end of input.
func (h *inserter) next() error {
	it, err := h.in.Read()
	if errors.Is(err, io.EOF) {
		h.current = nil
		return nil
	}
	if err != nil {
		return err
	}
	h.current = &it
	return nil
}

// copyWhile writes items while cond holds and stops at the first item that
// fails it, leaving that item in current.
func (h *inserter) copyWhile(cond func(model.Item) bool) error {
	for {
		if err := h.next(); err != nil {
			return err
		}
		if h.current == nil || !cond(*h.current) {
			return nil
		}
		if err := h.out.Write(*h.current); err != nil {
			return err
		}
	}
}
