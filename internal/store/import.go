package store

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"stt-cli/internal/model"
)

// SourceFormat names a readable item format.
type SourceFormat string

const (
	FormatSTT SourceFormat = "stt"
	FormatTi  SourceFormat = "ti"
	FormatCSV SourceFormat = "csv"
)

var ErrUnknownFormat = errors.New("unknown source format")

// NewFormatReader returns a reader for the given format over r.
func NewFormatReader(format SourceFormat, r io.Reader) (ItemReader, error) {
	switch format {
	case "", FormatSTT:
		return NewLineReader(r), nil
	case FormatTi:
		return NewTiReader(r), nil
	case FormatCSV:
		return NewCSVReader(r, 1, 4, 8), nil
	default:
		if c, ok := r.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

type lineSource struct {
	sc     *bufio.Scanner
	closer io.Closer
	done   bool
}

func newLineSource(r io.Reader) lineSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	ls := lineSource{sc: sc}
	if c, ok := r.(io.Closer); ok {
		ls.closer = c
	}
	return ls
}

// nextLine returns the next non-blank line or io.EOF.
func (ls *lineSource) nextLine() (string, error) {
	if ls.done {
		return "", io.EOF
	}
	for ls.sc.Scan() {
		if line := ls.sc.Text(); strings.TrimSpace(line) != "" {
			return line, nil
		}
	}
	err := ls.sc.Err()
	_ = ls.Close()
	if err != nil {
		return "", err
	}
	return "", io.EOF
}

func (ls *lineSource) Close() error {
	if ls.done {
		return nil
	}
	ls.done = true
	if ls.closer != nil {
		return ls.closer.Close()
	}
	return nil
}

// TiReader reads the export of a (modified) ti installation:
//
//	comment start [to end]
//
// where comment uses '_' for spaces and times use the activities file layout.
type TiReader struct {
	lineSource
}

func NewTiReader(r io.Reader) *TiReader {
	return &TiReader{lineSource: newLineSource(r)}
}

func (r *TiReader) Read() (model.Item, error) {
	line, err := r.nextLine()
	if err != nil {
		return model.Item{}, err
	}
	fields := strings.Fields(line)
	if len(fields) != 2 && len(fields) != 4 {
		_ = r.Close()
		return model.Item{}, &LineError{Text: line, Err: fmt.Errorf("%w: expected 2 or 4 fields, got %d", ErrMalformedLine, len(fields))}
	}
	comment := strings.ReplaceAll(fields[0], "_", " ")
	start, err := time.ParseInLocation(TimeLayout, fields[1], time.Local)
	if err != nil {
		_ = r.Close()
		return model.Item{}, &LineError{Text: line, Err: fmt.Errorf("%w: %v", ErrMalformedLine, err)}
	}
	if len(fields) == 2 {
		return model.Ongoing(comment, start), nil
	}
	end, err := time.ParseInLocation(TimeLayout, fields[3], time.Local)
	if err != nil {
		_ = r.Close()
		return model.Item{}, &LineError{Text: line, Err: fmt.Errorf("%w: %v", ErrMalformedLine, err)}
	}
	it, err := model.New(comment, start, &end)
	if err != nil {
		_ = r.Close()
		return model.Item{}, &LineError{Text: line, Err: fmt.Errorf("%w: %v", ErrMalformedLine, err)}
	}
	return it, nil
}

// CSVReader reads ';'-separated exports, one record per line, with a
// dd.MM.yyyy date column, an HH:mm duration column and a comment column.
// Fields may be double-quoted. Items on the same day are chained: each starts
// where the previous one ended. Lines that cannot be parsed are logged and
// skipped.
type CSVReader struct {
	lineSource
	dateIdx, durationIdx, commentIdx int

	nextStart *time.Time
}

func NewCSVReader(r io.Reader, dateIdx, durationIdx, commentIdx int) *CSVReader {
	return &CSVReader{
		lineSource:  newLineSource(r),
		dateIdx:     dateIdx,
		durationIdx: durationIdx,
		commentIdx:  commentIdx,
	}
}

func (r *CSVReader) Read() (model.Item, error) {
	for {
		line, err := r.nextLine()
		if err != nil {
			return model.Item{}, err
		}
		it, ok := r.parse(line)
		if !ok {
			slog.Info("skipping unparseable csv line", "line", line)
			continue
		}
		end := *it.End
		r.nextStart = &end
		return it, nil
	}
}

func (r *CSVReader) parse(line string) (model.Item, bool) {
	cr := csv.NewReader(strings.NewReader(line))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	fields, err := cr.Read()
	if err != nil || len(fields) <= max(r.dateIdx, r.durationIdx, r.commentIdx) {
		return model.Item{}, false
	}
	day, err := time.ParseInLocation("02.01.2006", strings.TrimSpace(fields[r.dateIdx]), time.Local)
	if err != nil {
		return model.Item{}, false
	}
	hm, err := time.Parse("15:04", strings.TrimSpace(fields[r.durationIdx]))
	if err != nil {
		return model.Item{}, false
	}
	period := time.Duration(hm.Hour())*time.Hour + time.Duration(hm.Minute())*time.Minute

	start := day
	if r.nextStart != nil && sameDay(*r.nextStart, day) {
		start = *r.nextStart
	}
	return model.Interval(fields[r.commentIdx], start, start.Add(period)), true
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
