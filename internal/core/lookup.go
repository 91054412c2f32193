package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmylchreest/retroroam/internal/model"
)

// Lookup errors.
var (
	ErrGameNotFound  = errors.New("game not found")
	ErrAmbiguousGame = errors.New("game reference is ambiguous")
)

// LookupGame finds a game by reference: an exact id, a unique id prefix, or a
// display name. When emulator is set, only that emulator's games match by name.
func LookupGame(lib model.Library, ref, emulator string) (*model.Game, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrGameNotFound
	}

	if g := lib.Game(ref); g != nil {
		return g, nil
	}

	// Id prefix, e.g. the first few characters of a ULID.
	if len(ref) >= 4 {
		var match *model.Game
		for i := range lib.Games {
			g := &lib.Games[i]
			if !strings.HasPrefix(g.ID, strings.ToUpper(ref)) && !strings.HasPrefix(g.ID, ref) {
				continue
			}
			if emulator != "" && g.Application != emulator {
				continue
			}
			if match != nil {
				return nil, fmt.Errorf("%q: %w", ref, ErrAmbiguousGame)
			}
			match = g
		}
		if match != nil {
			return match, nil
		}
	}

	var match *model.Game
	for i := range lib.Games {
		g := &lib.Games[i]
		if g.DisplayName != ref {
			continue
		}
		if emulator != "" && g.Application != emulator {
			continue
		}
		if lib.Emulator(g.Application) == nil {
			continue
		}
		if match != nil {
			return nil, fmt.Errorf("%q matches games in %s and %s: %w",
				ref, match.Application, g.Application, ErrAmbiguousGame)
		}
		match = g
	}
	if match == nil {
		return nil, fmt.Errorf("%q: %w", ref, ErrGameNotFound)
	}
	return match, nil
}

// LookupByIndex returns the entry at a 1-based index, or nil if out of range.
func LookupByIndex(entries []GameEntry, index int) *GameEntry {
	idx := index - 1
	if idx < 0 || idx >= len(entries) {
		return nil
	}
	return &entries[idx]
}
