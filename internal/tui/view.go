package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/retroroam/internal/core"
	"github.com/jmylchreest/retroroam/internal/model"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	activeTabStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12")).Padding(0, 1)
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("7")).Padding(0, 1)
	commandStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.mode {
	case ModeDetail:
		return m.viewDetail()
	case ModeNotes:
		return m.viewNotes()
	case ModeHelp:
		return m.viewHelp()
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var s string
	s += m.viewHeader() + "\n"

	if m.view.State == core.StateNoEmulators {
		body := "No emulators configured.\n\n" +
			"Press A to add one, or run: retroroam emulator add NAME EXECUTABLE"
		s += lipgloss.NewStyle().
			Height(max(m.height-3, 1)).
			Padding(1, 2).
			Render(body)
	} else {
		s += m.list.View()
	}

	s += "\n" + m.viewPromptLine()

	// Status bar
	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		s += "\n" + statusStyle.Render(m.statusMsg)
	} else {
		s += "\n" + m.buildKeybindBar(m.width, m.barMode())
	}

	return s
}

// viewHeader renders one tab per emulator, highlighting the current one.
func (m Model) viewHeader() string {
	if len(m.view.Emulators) == 0 {
		return headerStyle.Render("retroroam")
	}

	tabs := make([]string, 0, len(m.view.Emulators))
	for _, name := range m.view.Emulators {
		if name == m.emulator {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, tabStyle.Render(name))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	if m.store.Dirty() {
		header += warnStyle.Render(" [modified]")
	}
	if m.searchQuery != "" && m.mode != ModeSearch {
		header += labelStyle.Render(" filter: " + m.searchQuery)
	}

	if m.width > 0 {
		return lipgloss.NewStyle().MaxWidth(m.width).Render(header)
	}
	return header
}

// viewPromptLine is the line under the list: the open prompt, or the
// command that enter would run.
func (m Model) viewPromptLine() string {
	switch m.mode {
	case ModeInput:
		return m.inputPrompt + ": " + m.input.View()
	case ModeConfirm:
		return warnStyle.Render(m.confirmPrompt + " (y/n)")
	case ModeSearch:
		countStr := fmt.Sprintf("(%d matches)", len(m.list.Items()))
		return "Search: " + m.searchInput.View() + " " + labelStyle.Render(countStr)
	}

	if game := m.current(); game != nil {
		line := "$ " + m.commandFor(*game)
		if m.width > 0 {
			line = lipgloss.NewStyle().MaxWidth(m.width).Render(line)
		}
		return commandStyle.Render(line)
	}
	if m.view.State == core.StateNoGames && m.view.Emulator != nil {
		return labelStyle.Render(fmt.Sprintf("No games for %s: press a to add one", m.view.Emulator.Name))
	}
	return ""
}

func (m Model) viewDetail() string {
	header := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Render("Game Detail")

	return header + "\n" + m.viewport.View() + "\n" + m.buildKeybindBar(m.width, "detail")
}

func (m Model) viewNotes() string {
	title := "Notes"
	if g := m.lib.Game(m.notesTarget); g != nil {
		title = "Notes for " + g.DisplayName
	}

	return headerStyle.Render(title) + "\n" + m.notes.View() + "\n" + m.buildKeybindBar(m.width, "notes")
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	s := titleStyle.Render("Keyboard Shortcuts") + "\n\n"
	s += m.help.FullHelpView(m.keys.FullHelp()) + "\n\n"
	s += labelStyle.Render("Prompts: enter confirm, esc cancel. Notes: ctrl+s save, esc cancel.")
	s += "\n\n" + labelStyle.Render("Press ? or esc to return")

	return s
}

// renderDetail renders the detail view for a game.
func (m Model) renderDetail(game model.Game) string {
	var s string

	s += headerStyle.Render(game.DisplayName) + "\n\n"

	s += labelStyle.Render("Emulator: ") + game.Application + "\n"
	s += labelStyle.Render("ID: ") + game.ID + "\n"
	s += labelStyle.Render("Options: ") + game.Options + "\n"
	s += labelStyle.Render("Command: ") + commandStyle.Render(m.commandFor(game)) + "\n"
	if emu := m.view.Emulator; emu != nil && emu.WorkingDirectory != "" {
		s += labelStyle.Render("Working dir: ") + emu.WorkingDirectory + "\n"
	}

	if last := m.state.LastLaunch; last != nil && last.GameID == game.ID {
		when := humanize.Time(m.state.LastLaunchTime())
		if last.Failed {
			when += " (failed)"
		}
		s += labelStyle.Render("Last launched: ") + when + "\n"
	}

	s += "\n" + labelStyle.Render("Notes:") + "\n"
	if game.Notes == "" {
		s += labelStyle.Render("(none)") + "\n"
	} else {
		s += game.Notes + "\n"
	}

	return s
}

func (m Model) barMode() string {
	switch m.mode {
	case ModeSearch:
		return "search"
	case ModeInput:
		return "input"
	case ModeConfirm:
		return "confirm"
	}
	if m.view.State == core.StateNoEmulators {
		return "empty"
	}
	return "list"
}

// keybind represents a single keybind with priority for the status bar.
type keybind struct {
	key      string
	desc     string
	priority int // lower = more important (shown first)
}

// buildKeybindBar builds a keybind bar that fits within the given width.
func (m Model) buildKeybindBar(width int, mode string) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	var binds []keybind

	switch mode {
	case "list":
		binds = []keybind{
			{"q", "quit", 1},
			{"enter", "launch", 2},
			{"tab", "emulator", 3},
			{"?", "help", 4},
			{"/", "search", 5},
			{"a", "add", 6},
			{"e", "options", 7},
			{"n", "notes", 8},
			{"r", "rename", 9},
			{"d", "delete", 10},
			{"i", "details", 11},
			{"c", "copy", 12},
		}
		if m.store.Dirty() {
			binds = append([]keybind{{"s", "save", 0}}, binds...)
		}
	case "empty":
		binds = []keybind{
			{"A", "add emulator", 1},
			{"q", "quit", 2},
			{"?", "help", 3},
		}
	case "detail":
		binds = []keybind{
			{"q", "quit", 1},
			{"esc", "back", 2},
			{"enter", "launch", 3},
			{"c", "copy command", 4},
			{"j/k", "scroll", 5},
		}
	case "search":
		binds = []keybind{
			{"enter", "keep filter", 1},
			{"esc", "clear", 2},
			{"↑/↓", "navigate", 3},
		}
	case "input":
		binds = []keybind{
			{"enter", "confirm", 1},
			{"esc", "cancel", 2},
		}
	case "confirm":
		binds = []keybind{
			{"y", "yes", 1},
			{"any", "cancel", 2},
		}
	case "notes":
		binds = []keybind{
			{"ctrl+s", "save", 1},
			{"esc", "cancel", 2},
		}
	}

	// Add keybinds until we run out of space
	const separator = "  "
	var parts []string
	used := 0
	for _, b := range binds {
		plain := b.key + " " + b.desc
		needed := lipgloss.Width(plain)
		if len(parts) > 0 {
			needed += len(separator)
		}
		if width > 0 && used+needed > width {
			break
		}
		used += needed
		parts = append(parts, keyStyle.Render(b.key)+" "+b.desc)
	}

	return style.Render(strings.Join(parts, separator))
}
