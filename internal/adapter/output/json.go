package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter formats games as JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Format writes games as a JSON array.
func (f *JSONFormatter) Format(w io.Writer, rows []GameRow) error {
	if rows == nil {
		rows = []GameRow{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rows)
}

// FormatSingle writes a single game as JSON.
func (f *JSONFormatter) FormatSingle(w io.Writer, row *GameRow) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(row)
}
