package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jmylchreest/retroroam/internal/core"
	"github.com/jmylchreest/retroroam/internal/model"
)

// EmulatorRow is one emulator as it is printed.
type EmulatorRow struct {
	Name              string `json:"name" yaml:"name"`
	ExecutablePath    string `json:"executable_path" yaml:"executable_path"`
	DefaultLibraryDir string `json:"default_library_dir" yaml:"default_library_dir"`
	DefaultOption     string `json:"default_option" yaml:"default_option"`
	WorkingDirectory  string `json:"working_directory" yaml:"working_directory"`
	Games             int    `json:"games" yaml:"games"`
}

// EmulatorRows returns the emulators sorted by name with their game counts.
func EmulatorRows(lib model.Library) []EmulatorRow {
	counts := make(map[string]int)
	for _, g := range lib.Games {
		counts[g.Application]++
	}

	sorted := core.SortEmulators(lib.Emulators)
	rows := make([]EmulatorRow, 0, len(sorted))
	for _, e := range sorted {
		rows = append(rows, EmulatorRow{
			Name:              e.Name,
			ExecutablePath:    e.ExecutablePath,
			DefaultLibraryDir: e.DefaultLibraryDir,
			DefaultOption:     e.DefaultOption,
			WorkingDirectory:  e.WorkingDirectory,
			Games:             counts[e.Name],
		})
	}
	return rows
}

// FormatEmulators writes emulator rows. dmenu and ids print names only.
func FormatEmulators(w io.Writer, format FormatType, rows []EmulatorRow) error {
	if rows == nil {
		rows = []EmulatorRow{}
	}

	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rows)
	case FormatYAML:
		return encodeYAML(w, rows)
	case FormatDmenu, FormatIDs:
		for _, r := range rows {
			if _, err := fmt.Fprintln(w, r.Name); err != nil {
				return err
			}
		}
		return nil
	case FormatPlain, FormatTemplate, "":
		if len(rows) == 0 {
			return nil
		}
		_, err := fmt.Fprintln(w, emulatorTable(rows))
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func emulatorTable(rows []EmulatorRow) string {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "EXECUTABLE", "GAMES", "LIBRARY", "WORKDIR").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	for _, r := range rows {
		t.Row(r.Name, r.ExecutablePath, strconv.Itoa(r.Games), r.DefaultLibraryDir, r.WorkingDirectory)
	}
	return t.String()
}
