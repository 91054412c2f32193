package model

// Library is a point-in-time copy of both collections, in insertion order.
// The filter and selection functions operate on it instead of the live store.
type Library struct {
	Emulators []Emulator `json:"emulators" yaml:"emulators"`
	Games     []Game     `json:"games" yaml:"games"`
}

// Emulator returns the emulator with the given name, or nil.
func (l *Library) Emulator(name string) *Emulator {
	for i := range l.Emulators {
		if l.Emulators[i].Name == name {
			return &l.Emulators[i]
		}
	}
	return nil
}

// Game returns the game with the given id, or nil.
func (l *Library) Game(id string) *Game {
	for i := range l.Games {
		if l.Games[i].ID == id {
			return &l.Games[i]
		}
	}
	return nil
}

// IsEmpty reports whether the library holds no emulators and no games.
func (l *Library) IsEmpty() bool {
	return len(l.Emulators) == 0 && len(l.Games) == 0
}
