package store

import (
	"io"

	"stt-cli/internal/model"
)

// LineWriter encodes each item as one line straight to the wrapped writer.
type LineWriter struct {
	w io.Writer
}

func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: w}
}

func (w *LineWriter) Write(it model.Item) error {
	_, err := io.WriteString(w.w, EncodeLine(it)+"\n")
	return err
}

// Close closes the underlying writer if it is an io.Closer.
func (w *LineWriter) Close() error {
	if c, ok := w.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// SliceWriter collects items in memory.
type SliceWriter struct {
	Items []model.Item
}

func (w *SliceWriter) Write(it model.Item) error {
	w.Items = append(w.Items, it)
	return nil
}
