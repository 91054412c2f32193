package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"

	"github.com/jmylchreest/retroroam/internal/core"
)

// DmenuFormatter formats games for dmenu/rofi/fuzzel, one per line.
type DmenuFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewDmenuFormatter creates a new dmenu formatter.
func NewDmenuFormatter(opts FormatterOptions) (*DmenuFormatter, error) {
	f := &DmenuFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := parseTemplate("dmenu", opts.Template)
		if err != nil {
			return nil, err
		}
		f.template = tmpl
	}

	return f, nil
}

// Format writes one line per game.
func (f *DmenuFormatter) Format(w io.Writer, rows []GameRow) error {
	for i := range rows {
		line, err := f.formatLine(&rows[i])
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func (f *DmenuFormatter) formatLine(row *GameRow) (string, error) {
	if f.template != nil {
		var buf strings.Builder
		if err := f.template.Execute(&buf, row); err != nil {
			return "", err
		}
		return singleLine(buf.String()), nil
	}

	// Default format: [index] name [emulator]
	var parts []string
	sep := f.opts.Separator
	if sep == "" {
		sep = " | "
	}

	if f.opts.ShowIndex {
		parts = append(parts, strconv.Itoa(row.Index))
	}

	parts = append(parts, singleLine(row.DisplayName))

	if f.opts.ShowEmulator {
		parts = append(parts, row.Application)
	}

	return strings.Join(parts, sep), nil
}

// Selection is what a dmenu line refers to.
type Selection struct {
	Index    int    // 1-based index, when the line starts with one
	Ref      string // id or display name
	Emulator string // emulator name, when present
}

// ParseSelection extracts the game reference from a line produced by the
// default dmenu format: "name | emulator", optionally prefixed by an index.
// Anything else is returned whole as the reference.
func ParseSelection(line, separator string) Selection {
	line = strings.TrimSpace(line)
	if separator == "" {
		separator = " | "
	}

	parts := strings.Split(line, separator)
	if len(parts) == 1 {
		return Selection{Ref: line}
	}

	var sel Selection
	if idx, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil && idx > 0 {
		sel.Index = idx
		parts = parts[1:]
	}

	switch len(parts) {
	case 0:
	case 1:
		sel.Ref = strings.TrimSpace(parts[0])
	default:
		sel.Emulator = strings.TrimSpace(parts[len(parts)-1])
		sel.Ref = strings.TrimSpace(strings.Join(parts[:len(parts)-1], separator))
	}
	return sel
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": truncate,
		"quote":    core.QuotePath,
		"unquote":  core.UnquotePath,
		"oneline":  singleLine,
	}
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if maxLen <= 0 || len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// singleLine collapses newlines and runs of spaces.
func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.Join(strings.Fields(s), " ")
}
