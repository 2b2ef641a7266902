package store

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"stt-cli/internal/model"
)

const maxLineSize = 1 << 20

// ItemReader is a forward-only sequence of items. Read returns io.EOF once the
// sequence is exhausted. Close may be called at any time and more than once.
type ItemReader interface {
	Read() (model.Item, error)
	Close() error
}

// ItemWriter accepts items one at a time.
type ItemWriter interface {
	Write(model.Item) error
}

// LineReader decodes items from an activities file stream. The underlying
// resource is closed when the stream is exhausted, on the first error, or on
// Close.
type LineReader struct {
	sc     *bufio.Scanner
	closer io.Closer
	line   int
	done   bool
}

// NewLineReader reads items from r. If r is an io.Closer it is closed once
// reading ends.
func NewLineReader(r io.Reader) *LineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lr := &LineReader{sc: sc}
	if c, ok := r.(io.Closer); ok {
		lr.closer = c
	}
	return lr
}

func (r *LineReader) Read() (model.Item, error) {
	if r.done {
		return model.Item{}, io.EOF
	}
	for r.sc.Scan() {
		r.line++
		text := r.sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		it, err := DecodeLine(text)
		if err != nil {
			_ = r.Close()
			var le *LineError
			if errors.As(err, &le) {
				le.Line = r.line
			}
			return model.Item{}, err
		}
		return it, nil
	}
	err := r.sc.Err()
	_ = r.Close()
	if err != nil {
		return model.Item{}, err
	}
	return model.Item{}, io.EOF
}

func (r *LineReader) Close() error {
	if r.done {
		return nil
	}
	r.done = true
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

type emptyReader struct{}

func (emptyReader) Read() (model.Item, error) {
	return model.Item{}, io.EOF
}

func (emptyReader) Close() error {
	return nil
}

// SliceReader serves items from memory; handy for tests and for feeding
// already materialized sequences through Insert.
type SliceReader struct {
	items []model.Item
}

func NewSliceReader(items []model.Item) *SliceReader {
	return &SliceReader{items: items}
}

func (r *SliceReader) Read() (model.Item, error) {
	if len(r.items) == 0 {
		return model.Item{}, io.EOF
	}
	it := r.items[0]
	r.items = r.items[1:]
	return it, nil
}

func (r *SliceReader) Close() error {
	r.items = nil
	return nil
}

// ReadAll drains r and closes it.
func ReadAll(r ItemReader) ([]model.Item, error) {
	defer func() { _ = r.Close() }()
	out := make([]model.Item, 0, 256)
	for {
		it, err := r.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
}
