package store

import (
	"errors"
	"strings"
	"testing"

	"stt-cli/internal/model"
)

func TestTiReader(t *testing.T) {
	t.Parallel()

	in := "line_with_underscores 2010-10-20_20:00:00 to 2010-10-20_20:30:00\n\nongoing 2010-10-21_08:00:00\n"
	items, err := ReadAll(NewTiReader(strings.NewReader(in)))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	assertItems(t, items, []model.Item{
		model.Interval("line with underscores", ts(2010, 10, 20, 20, 0, 0), ts(2010, 10, 20, 20, 30, 0)),
		model.Ongoing("ongoing", ts(2010, 10, 21, 8, 0, 0)),
	})
}

func TestTiReaderRejectsWrongFieldCount(t *testing.T) {
	t.Parallel()

	_, err := ReadAll(NewTiReader(strings.NewReader("a b c\n")))
	if !errors.Is(err, ErrMalformedLine) {
		t.Fatalf("expected ErrMalformedLine, got %v", err)
	}
}

func TestCSVReaderChainsItemsOfSameDay(t *testing.T) {
	t.Parallel()

	in := strings.Join([]string{
		`x;"10.11.2012";x;x;"01:30";x;x;x;first`,
		`x;"10.11.2012";x;x;"00:45";x;x;x;second`,
		`broken line`,
		`x;"11.11.2012";x;x;"02:00";x;x;x;third`,
	}, "\n")
	items, err := ReadAll(NewCSVReader(strings.NewReader(in), 1, 4, 8))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	assertItems(t, items, []model.Item{
		model.Interval("first", ts(2012, 11, 10, 0, 0, 0), ts(2012, 11, 10, 1, 30, 0)),
		model.Interval("second", ts(2012, 11, 10, 1, 30, 0), ts(2012, 11, 10, 2, 15, 0)),
		model.Interval("third", ts(2012, 11, 11, 0, 0, 0), ts(2012, 11, 11, 2, 0, 0)),
	})
}

func TestCSVReaderQuotedFields(t *testing.T) {
	t.Parallel()

	in := strings.Join([]string{
		`x;"10.11.2012";x;x;"01:00";x;x;x;"meeting; room 2"`,
		`x;"10.11.2012";x;"a;b";"00:30";x;x;x;"call ""Bob"""`,
	}, "\n")
	items, err := ReadAll(NewCSVReader(strings.NewReader(in), 1, 4, 8))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	assertItems(t, items, []model.Item{
		model.Interval("meeting; room 2", ts(2012, 11, 10, 0, 0, 0), ts(2012, 11, 10, 1, 0, 0)),
		model.Interval(`call "Bob"`, ts(2012, 11, 10, 1, 0, 0), ts(2012, 11, 10, 1, 30, 0)),
	})
}

func TestNewFormatReaderUnknownFormat(t *testing.T) {
	t.Parallel()

	if _, err := NewFormatReader("xml", strings.NewReader("")); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
