package model

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Game is a catalogued game launched through an emulator.
// ID is the identity and survives renames; DisplayName is only for listings.
type Game struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Application string `json:"application" yaml:"application"` // Emulator.Name
	Options     string `json:"options" yaml:"options"`
	Notes       string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// GameFields is a partial update of a Game's options and notes.
type GameFields struct {
	Options *string
	Notes   *string
}

// IsEmpty reports whether no field is set.
func (f GameFields) IsEmpty() bool {
	return f.Options == nil && f.Notes == nil
}

// Apply returns a copy of g with the set fields replaced.
func (f GameFields) Apply(g Game) Game {
	if f.Options != nil {
		g.Options = *f.Options
	}
	if f.Notes != nil {
		g.Notes = *f.Notes
	}
	return g
}

// NewGameID generates a fresh game identifier.
// ULIDs sort by creation time, so ordering by id approximates insertion order.
func NewGameID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to generate ULID: %w", err)
	}
	return id.String(), nil
}

// Validate checks that the game has all required fields.
func (g *Game) Validate() error {
	if g.ID == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(g.DisplayName) == "" {
		return ErrEmptyName
	}
	if g.Application == "" {
		return ErrEmptyAppName
	}
	return nil
}
