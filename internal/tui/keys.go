package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for the TUI.
type KeyMap struct {
	// Navigation
	Up           key.Binding
	Down         key.Binding
	NextEmulator key.Binding
	PrevEmulator key.Binding

	// Games
	Launch      key.Binding
	Details     key.Binding
	Back        key.Binding
	AddGame     key.Binding
	Rename      key.Binding
	EditOptions key.Binding
	EditNotes   key.Binding
	AddFile     key.Binding
	DeleteGame  key.Binding
	Copy        key.Binding
	Search      key.Binding

	// Emulators
	AddEmulator    key.Binding
	DeleteEmulator key.Binding
	Browse         key.Binding

	// Library
	Save   key.Binding
	Reload key.Binding

	// Global
	Quit key.Binding
	Help key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Launch, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextEmulator, k.PrevEmulator, k.Search},
		{k.Launch, k.Details, k.Copy, k.AddGame, k.Rename},
		{k.EditOptions, k.EditNotes, k.AddFile, k.DeleteGame},
		{k.AddEmulator, k.DeleteEmulator, k.Browse},
		{k.Save, k.Reload, k.Back, k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		NextEmulator: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab/→", "next emulator"),
		),
		PrevEmulator: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("shift+tab/←", "previous emulator"),
		),
		Launch: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "launch"),
		),
		Details: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "details"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "back"),
		),
		AddGame: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add game"),
		),
		Rename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rename"),
		),
		EditOptions: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit options"),
		),
		EditNotes: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "edit notes"),
		),
		AddFile: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "append file"),
		),
		DeleteGame: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete game"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy command"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		AddEmulator: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "add emulator"),
		),
		DeleteEmulator: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete emulator"),
		),
		Browse: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open library dir"),
		),
		Save: key.NewBinding(
			key.WithKeys("s", "ctrl+s"),
			key.WithHelp("s", "save"),
		),
		Reload: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reload from disk"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}
