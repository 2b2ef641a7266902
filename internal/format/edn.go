package format

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// WriteEDN writes v as EDN. Values go through encoding/json first so json tags
// decide the shape; object keys become kebab-case keywords and RFC 3339
// strings become #inst literals.
func WriteEDN(w io.Writer, v any, pretty bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var x any
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}

	var sb strings.Builder
	enc := ednEncoder{pretty: pretty}
	enc.value(&sb, x, 0)
	sb.WriteByte('\n')
	_, err = io.WriteString(w, sb.String())
	return err
}

type ednEncoder struct {
	pretty bool
}

func (e ednEncoder) value(sb *strings.Builder, v any, level int) {
	switch t := v.(type) {
	case nil:
		sb.WriteString("nil")
	case bool:
		sb.WriteString(strconv.FormatBool(t))
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
			sb.WriteString("#inst ")
			sb.WriteString(strconv.Quote(ts.Format(time.RFC3339Nano)))
			return
		}
		sb.WriteString(strconv.Quote(t))
	case float64:
		if t == float64(int64(t)) {
			sb.WriteString(strconv.FormatInt(int64(t), 10))
			return
		}
		sb.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
	case []any:
		e.collection(sb, "[", "]", len(t), level, func(i int) {
			e.value(sb, t[i], level+1)
		})
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		e.collection(sb, "{", "}", len(keys), level, func(i int) {
			sb.WriteByte(':')
			sb.WriteString(keyword(keys[i]))
			sb.WriteByte(' ')
			e.value(sb, t[keys[i]], level+1)
		})
	default:
		sb.WriteString(strconv.Quote(fmt.Sprint(v)))
	}
}

func (e ednEncoder) collection(sb *strings.Builder, open, end string, n, level int, elem func(i int)) {
	sb.WriteString(open)
	if n == 0 {
		sb.WriteString(end)
		return
	}
	for i := 0; i < n; i++ {
		switch {
		case e.pretty:
			sb.WriteByte('\n')
			sb.WriteString(strings.Repeat("  ", level+1))
		case i > 0:
			sb.WriteByte(' ')
		}
		elem(i)
	}
	if e.pretty {
		sb.WriteByte('\n')
		sb.WriteString(strings.Repeat("  ", level))
	}
	sb.WriteString(end)
}

// keyword turns a json key such as "startLocal" into "start-local".
func keyword(s string) string {
	var sb strings.Builder
	for i, r := range strings.TrimSpace(s) {
		switch {
		case r == ' ' || r == '_':
			sb.WriteByte('-')
		case unicode.IsUpper(r):
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
