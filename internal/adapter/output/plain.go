package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
)

// PlainFormatter formats games as plain text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) (*PlainFormatter, error) {
	f := &PlainFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := parseTemplate("plain", opts.Template)
		if err != nil {
			return nil, err
		}
		f.template = tmpl
	}

	return f, nil
}

// Format writes games as plain text.
func (f *PlainFormatter) Format(w io.Writer, rows []GameRow) error {
	for i := range rows {
		if err := f.formatRow(w, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *PlainFormatter) formatRow(w io.Writer, row *GameRow) error {
	if f.template != nil {
		var buf strings.Builder
		if err := f.template.Execute(&buf, row); err != nil {
			return err
		}
		out := buf.String()
		if !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		_, err := io.WriteString(w, out)
		return err
	}

	var sb strings.Builder

	if f.opts.ShowIndex {
		sb.WriteString(fmt.Sprintf("[%d] ", row.Index))
	}

	sb.WriteString(row.DisplayName)

	if f.opts.ShowEmulator {
		sb.WriteString(fmt.Sprintf(" <%s>", row.Application))
	}

	sb.WriteString("  " + row.ID + "\n")

	if f.opts.ShowCommand && row.Command != "" {
		sb.WriteString("    $ " + row.Command + "\n")
	}

	if row.Notes != "" {
		sb.WriteString("    " + truncate(singleLine(row.Notes), f.opts.NotesMaxLen) + "\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatField outputs a specific field from a game row.
func FormatField(row *GameRow, field string) string {
	switch strings.ToLower(field) {
	case "id":
		return row.ID
	case "name", "display_name", "game":
		return row.DisplayName
	case "emulator", "application", "app":
		return row.Application
	case "options":
		return row.Options
	case "notes":
		return row.Notes
	case "command", "cmd":
		return row.Command
	case "all", "full":
		return fmt.Sprintf("%s (%s)\n%s", row.DisplayName, row.Application, row.Command)
	default:
		return row.DisplayName
	}
}
