// Package output provides output formatters for games and emulators.
package output

import (
	"fmt"
	"io"
	"text/template"

	"github.com/jmylchreest/retroroam/internal/core"
	"github.com/jmylchreest/retroroam/internal/model"
)

// Formatter formats game rows for output.
type Formatter interface {
	// Format writes formatted rows to the writer.
	Format(w io.Writer, rows []GameRow) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatPlain    FormatType = "plain"
	FormatDmenu    FormatType = "dmenu"
	FormatJSON     FormatType = "json"
	FormatYAML     FormatType = "yaml"
	FormatIDs      FormatType = "ids"
	FormatTemplate FormatType = "template"
)

// NewFormatter creates a formatter for the specified format type.
// FormatTemplate requires opts.Template; a template that does not parse is
// an error for every format that uses one.
func NewFormatter(format FormatType, opts FormatterOptions) (Formatter, error) {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts), nil
	case FormatYAML:
		return NewYAMLFormatter(), nil
	case FormatIDs:
		return NewIDsFormatter(), nil
	case FormatDmenu:
		return NewDmenuFormatter(opts)
	case FormatTemplate:
		if opts.Template == "" {
			return nil, fmt.Errorf("format %q needs a template", format)
		}
		return NewPlainFormatter(opts)
	case FormatPlain, "":
		return NewPlainFormatter(opts)
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template     string // Custom template for dmenu/plain format
	ShowIndex    bool   // Show 1-based index prefix
	ShowEmulator bool   // Show the emulator name
	ShowCommand  bool   // Show the launch command (plain only)
	NotesMaxLen  int    // Maximum notes length (0 = unlimited)
	Separator    string // Field separator for dmenu format
}

// DefaultFormatterOptions returns sensible defaults.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:    false,
		ShowEmulator: true,
		ShowCommand:  false,
		NotesMaxLen:  60,
		Separator:    " | ",
	}
}

// GameRow is one game as it is printed.
type GameRow struct {
	Index       int    `json:"-" yaml:"-"`
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Application string `json:"application" yaml:"application"`
	Options     string `json:"options" yaml:"options"`
	Notes       string `json:"notes,omitempty" yaml:"notes,omitempty"`
	Command     string `json:"command" yaml:"command"`
}

// GameRows resolves entries against a snapshot. Rows are numbered from 1
// in entry order; entries whose game no longer exists are skipped.
func GameRows(lib model.Library, entries []core.GameEntry) []GameRow {
	rows := make([]GameRow, 0, len(entries))
	for _, e := range entries {
		g := lib.Game(e.ID)
		if g == nil {
			continue
		}
		row := GameRow{
			Index:       len(rows) + 1,
			ID:          g.ID,
			DisplayName: g.DisplayName,
			Application: g.Application,
			Options:     g.Options,
			Notes:       g.Notes,
		}
		if emu := lib.Emulator(g.Application); emu != nil {
			row.Command = core.BuildCommand(*emu, *g)
		}
		rows = append(rows, row)
	}
	return rows
}

func parseTemplate(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(templateFuncs()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid %s template: %w", name, err)
	}
	return tmpl, nil
}
