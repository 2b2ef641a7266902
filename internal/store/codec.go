package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"stt-cli/internal/model"
)

// TimeLayout is the fixed-width timestamp used in the activities file.
const TimeLayout = "2006-01-02_15:04:05"

const (
	tsLen           = len(TimeLayout)
	endOffset       = tsLen + 1
	activityNoEnd   = tsLen + 1
	activityWithEnd = 2*tsLen + 2
)

var ErrMalformedLine = errors.New("malformed line")

// LineError reports a line that could not be decoded.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
	}
	return fmt.Sprintf("%v: %q", e.Err, e.Text)
}

func (e *LineError) Unwrap() error { return e.Err }

// EncodeLine renders one item as a single physical line (without newline).
//
//	<start> [<end> ]<activity>
//
// Backslashes, CR and LF in the activity are escaped so multi-line comments
// stay on one line.
func EncodeLine(it model.Item) string {
	var b strings.Builder
	b.Grow(activityWithEnd + len(it.Activity) + 8)
	b.WriteString(it.Start.Format(TimeLayout))
	b.WriteByte(' ')
	if it.End != nil {
		b.WriteString(it.End.Format(TimeLayout))
		b.WriteByte(' ')
	}
	escape(&b, it.Activity)
	return b.String()
}

// DecodeLine parses a line written by EncodeLine.
//
// The end time is detected by shape: if the second fixed-width field looks
// like a timestamp it is taken as the end. An ongoing item whose activity
// starts with a timestamp-shaped word therefore reads back as finished.
func DecodeLine(line string) (model.Item, error) {
	if len(line) < tsLen || !timestampShaped(line[:tsLen]) {
		return model.Item{}, &LineError{Text: line, Err: fmt.Errorf("%w: bad start time", ErrMalformedLine)}
	}
	start, err := time.ParseInLocation(TimeLayout, line[:tsLen], time.Local)
	if err != nil {
		return model.Item{}, &LineError{Text: line, Err: fmt.Errorf("%w: %v", ErrMalformedLine, err)}
	}

	var end *time.Time
	activityStart := activityNoEnd
	if len(line) >= endOffset+tsLen && timestampShaped(line[endOffset:endOffset+tsLen]) {
		e, err := time.ParseInLocation(TimeLayout, line[endOffset:endOffset+tsLen], time.Local)
		if err != nil {
			return model.Item{}, &LineError{Text: line, Err: fmt.Errorf("%w: %v", ErrMalformedLine, err)}
		}
		end = &e
		activityStart = activityWithEnd
	}

	activity := ""
	if len(line) > activityStart {
		activity = unescape(line[activityStart:])
	}
	it, err := model.New(activity, start, end)
	if err != nil {
		return model.Item{}, &LineError{Text: line, Err: fmt.Errorf("%w: %v", ErrMalformedLine, err)}
	}
	return it, nil
}

// timestampShaped checks the yyyy-MM-dd_HH:mm:ss shape without allocating.
func timestampShaped(s string) bool {
	if len(s) != tsLen {
		return false
	}
	for i := 0; i < tsLen; i++ {
		c := s[i]
		switch i {
		case 4, 7:
			if c != '-' {
				return false
			}
		case 10:
			if c != '_' {
				return false
			}
		case 13, 16:
			if c != ':' {
				return false
			}
		default:
			if c < '0' || c > '9' {
				return false
			}
		}
	}
	return true
}

func escape(b *strings.Builder, s string) {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
