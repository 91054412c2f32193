package core

import "github.com/jmylchreest/retroroam/internal/model"

// ViewState is what the presentation layer can show for the current data.
type ViewState int

const (
	// StateNoEmulators means the library has no emulators.
	StateNoEmulators ViewState = iota
	// StateNoGames means an emulator is selected but it has no games.
	StateNoGames
	// StateGameSelected means an emulator and one of its games are selected.
	StateGameSelected
)

// String returns a short name for the state.
func (s ViewState) String() string {
	switch s {
	case StateNoEmulators:
		return "no-emulators"
	case StateNoGames:
		return "no-games"
	case StateGameSelected:
		return "game-selected"
	default:
		return "unknown"
	}
}

// View is everything needed to render the library for one emulator.
type View struct {
	State     ViewState
	Emulators []string        // sorted emulator names
	Emulator  *model.Emulator // nil in StateNoEmulators
	Games     []GameEntry     // sorted candidates for Emulator
	Selected  *model.Game     // nil unless StateGameSelected
	Command   string          // launch command for Selected, "" otherwise
}

// SelectedIndex returns the position of the selected game in Games, or -1.
func (v View) SelectedIndex() int {
	if v.Selected == nil {
		return -1
	}
	return IndexOf(v.Games, v.Selected.ID)
}

// BuildView resolves the emulator and game selection against a snapshot.
// The requested emulator falls back to the first by name when it no longer
// exists; the previous game stays selected only if it is still a candidate.
// Call it again after every mutation or emulator switch.
func BuildView(lib model.Library, emulator, previousGameID string) View {
	v := View{Emulators: EmulatorNames(lib.Emulators)}

	name := ResolveEmulator(v.Emulators, emulator)
	if name == "" {
		v.State = StateNoEmulators
		return v
	}

	emu := *lib.Emulator(name)
	v.Emulator = &emu
	v.Games = GamesForEmulator(lib.Games, name)

	id := ResolveSelection(previousGameID, v.Games)
	if id == "" {
		v.State = StateNoGames
		return v
	}

	game := *lib.Game(id)
	v.Selected = &game
	v.Command = BuildCommand(emu, game)
	v.State = StateGameSelected
	return v
}
