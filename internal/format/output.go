package format

import (
	"encoding/json"
	"fmt"
	"io"
)

// Formats accepted by Write. "text" is rendered by the commands themselves.
const (
	JSON = "json"
	EDN  = "edn"
	Text = "text"
)

// Write writes v as json (the default) or edn.
func Write(w io.Writer, v any, format string, pretty bool) error {
	switch format {
	case "", JSON:
		return WriteJSON(w, v, pretty)
	case EDN:
		return WriteEDN(w, v, pretty)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
