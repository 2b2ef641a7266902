package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"stt-cli/internal/model"
)

// Store persists items in a single activities file.
//
// Every mutation reads the whole file, builds the new content in memory and
// replaces the file via temp file + rename. Store does no locking: callers
// must serialize mutations. Replace is two rewrites and is not atomic as a
// unit.
type Store struct {
	Path string
}

func New(path string) Store {
	return Store{Path: filepath.Clean(path)}
}

// Open returns a reader over the stored items. A missing file reads as an
// empty store.
func (s Store) Open() (ItemReader, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return emptyReader{}, nil
		}
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	return NewLineReader(f), nil
}

// OpenWriter opens the file for writing, either truncating it or appending to
// it. The caller closes the returned writer.
func (s Store) OpenWriter(appendMode bool) (*LineWriter, error) {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return nil, err
	}
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(s.Path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s for writing: %w", s.Path, err)
	}
	return NewLineWriter(f), nil
}

// All returns every stored item in file order.
func (s Store) All() ([]model.Item, error) {
	r, err := s.Open()
	if err != nil {
		return nil, err
	}
	items, err := ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	return items, nil
}

// Insert adds item, trimming or dropping whatever it overlaps.
func (s Store) Insert(item model.Item) error {
	_, err := s.rewrite("insert", func(in ItemReader, out ItemWriter) (bool, error) {
		return true, Insert(in, out, item)
	})
	return err
}

// Delete removes every stored item equal to item. Deleting an item that is
// not stored is a no-op and leaves the file untouched.
func (s Store) Delete(item model.Item) error {
	_, err := s.rewrite("delete", func(in ItemReader, out ItemWriter) (bool, error) {
		found := false
		err := copyEach(in, func(it model.Item) error {
			if it.Equal(item) {
				found = true
				return nil
			}
			return out.Write(it)
		})
		return found, err
	})
	return err
}

// Replace deletes item and inserts with.
func (s Store) Replace(item, with model.Item) error {
	if err := s.Delete(item); err != nil {
		return err
	}
	return s.Insert(with)
}

// BulkUpdateActivity sets the activity of every stored item equal to one of
// items and returns the changed pairs.
func (s Store) BulkUpdateActivity(items []model.Item, activity string) ([]model.UpdatedItem, error) {
	updated := make([]model.UpdatedItem, 0, len(items))
	if len(items) == 0 {
		return updated, nil
	}
	keys := make(map[model.Key]struct{}, len(items))
	for _, it := range items {
		keys[it.Key()] = struct{}{}
	}
	_, err := s.rewrite("rename", func(in ItemReader, out ItemWriter) (bool, error) {
		err := copyEach(in, func(it model.Item) error {
			if _, ok := keys[it.Key()]; ok {
				after := it.WithActivity(activity)
				updated = append(updated, model.UpdatedItem{Before: it, After: after})
				it = after
			}
			return out.Write(it)
		})
		return len(updated) > 0, err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// rewrite streams the store through fn into memory and, if fn reports a
// change, replaces the file with the result.
func (s Store) rewrite(op string, fn func(in ItemReader, out ItemWriter) (bool, error)) (bool, error) {
	started := time.Now()
	in, err := s.Open()
	if err != nil {
		return false, err
	}
	defer func() { _ = in.Close() }()

	var buf bytes.Buffer
	out := NewLineWriter(&buf)
	changed, err := fn(in, out)
	if err != nil {
		return false, fmt.Errorf("%s %s: %w", op, s.Path, err)
	}
	if !changed {
		slog.Debug("store unchanged", "op", op, "path", s.Path)
		return false, nil
	}
	if err := atomicWriteFile(s.Path, buf.Bytes(), fileMode(s.Path, 0o644)); err != nil {
		return false, fmt.Errorf("%s %s: write: %w", op, s.Path, err)
	}
	slog.Debug("store rewritten", "op", op, "path", s.Path, "bytes", buf.Len(), "took", time.Since(started))
	return true, nil
}

func copyEach(in ItemReader, fn func(model.Item) error) error {
	for {
		it, err := in.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(it); err != nil {
			return err
		}
	}
}
