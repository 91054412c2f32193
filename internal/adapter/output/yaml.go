package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats games as a YAML sequence.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

// Format writes games as YAML.
func (f *YAMLFormatter) Format(w io.Writer, rows []GameRow) error {
	if rows == nil {
		rows = []GameRow{}
	}
	return encodeYAML(w, rows)
}

func encodeYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}
