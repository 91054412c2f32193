package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameID(t *testing.T) {
	a, err := NewGameID()
	require.NoError(t, err)
	b, err := NewGameID()
	require.NoError(t, err)

	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}

func TestEmulator_Validate(t *testing.T) {
	e := Emulator{Name: "Fuse"}
	assert.NoError(t, e.Validate())

	e.Name = "   "
	assert.ErrorIs(t, e.Validate(), ErrEmptyName)
}

func TestEmulator_Executable(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"quoted", `"C:\Fuse\fuse.exe"`, `C:\Fuse\fuse.exe`},
		{"unquoted", `/usr/bin/fuse`, `/usr/bin/fuse`},
		{"quoted with spaces", `"C:\Program Files\DOSBox\dosbox.exe"`, `C:\Program Files\DOSBox\dosbox.exe`},
		{"single quote char", `"`, `"`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Emulator{ExecutablePath: tt.path}
			assert.Equal(t, tt.expected, e.Executable())
		})
	}
}

func TestEmulatorFields_Apply(t *testing.T) {
	e := Emulator{
		Name:              "DOSBox",
		ExecutablePath:    `"dosbox"`,
		DefaultLibraryDir: "/games/dos",
		DefaultOption:     "-fullscreen",
		WorkingDirectory:  "/games",
	}

	opt := "-noconsole"
	updated := EmulatorFields{DefaultOption: &opt}.Apply(e)

	assert.Equal(t, "-noconsole", updated.DefaultOption)
	assert.Equal(t, e.ExecutablePath, updated.ExecutablePath)
	assert.Equal(t, e.DefaultLibraryDir, updated.DefaultLibraryDir)
	assert.Equal(t, e.WorkingDirectory, updated.WorkingDirectory)
	assert.Equal(t, "-fullscreen", e.DefaultOption, "receiver must not change")

	assert.True(t, EmulatorFields{}.IsEmpty())
	assert.False(t, EmulatorFields{DefaultOption: &opt}.IsEmpty())
}

func TestGameFields_Apply(t *testing.T) {
	g := Game{ID: "1", DisplayName: "Doom", Application: "DOSBox", Options: "-conf doom.conf", Notes: "E1M1"}

	notes := "finished episode 1"
	updated := GameFields{Notes: &notes}.Apply(g)

	assert.Equal(t, "finished episode 1", updated.Notes)
	assert.Equal(t, "-conf doom.conf", updated.Options)
	assert.True(t, GameFields{}.IsEmpty())
}

func TestGame_Validate(t *testing.T) {
	g := Game{ID: "1", DisplayName: "Jetpac", Application: "Fuse"}
	assert.NoError(t, g.Validate())

	g.ID = ""
	assert.ErrorIs(t, g.Validate(), ErrEmptyID)

	g.ID = "1"
	g.DisplayName = ""
	assert.ErrorIs(t, g.Validate(), ErrEmptyName)

	g.DisplayName = "Jetpac"
	g.Application = ""
	assert.ErrorIs(t, g.Validate(), ErrEmptyAppName)
}

func TestLibrary_Lookups(t *testing.T) {
	lib := Library{
		Emulators: []Emulator{{Name: "Fuse"}},
		Games:     []Game{{ID: "g1", DisplayName: "Jetpac", Application: "Fuse"}},
	}

	require.NotNil(t, lib.Emulator("Fuse"))
	assert.Nil(t, lib.Emulator("fuse"), "names are case-sensitive")
	require.NotNil(t, lib.Game("g1"))
	assert.Nil(t, lib.Game("g2"))
	assert.False(t, lib.IsEmpty())
	assert.True(t, (&Library{}).IsEmpty())
}
