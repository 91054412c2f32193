package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/retroroam/internal/model"
)

// memPersistence is an in-memory Persistence for tests.
type memPersistence struct {
	lib     model.Library
	loadErr error
	saveErr error
	saves   int
}

func (m *memPersistence) Load() (model.Library, error) { return m.lib, m.loadErr }

func (m *memPersistence) Save(lib model.Library) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.lib = lib
	return nil
}

func (m *memPersistence) Exists() (bool, bool) { return true, true }
func (m *memPersistence) Paths() (string, string) { return "emu.json", "games.json" }

func strPtr(s string) *string { return &s }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(nil, Options{UniqueGameNames: true})
	t.Cleanup(func() { s.Close() })

	_, err := s.AddEmulator("Fuse", `C:\Fuse\fuse.exe`, `C:\Games\Speccy`, "", `C:\Fuse`)
	require.NoError(t, err)
	_, err = s.AddEmulator("DOSBox", `C:\DOSBox\dosbox.exe`, `C:\Games\Dos`, "-noconsole", "")
	require.NoError(t, err)
	return s
}

func TestNewStore(t *testing.T) {
	s := NewStore(nil, Options{})
	defer s.Close()

	emulators, games := s.Count()
	assert.Equal(t, 0, emulators)
	assert.Equal(t, 0, games)
	lib := s.Snapshot()
	assert.True(t, lib.IsEmpty())
}

func TestStore_AddEmulator(t *testing.T) {
	s := newTestStore(t)

	e := s.Emulator("Fuse")
	require.NotNil(t, e)
	assert.Equal(t, `"C:\Fuse\fuse.exe"`, e.ExecutablePath)
	assert.Equal(t, `C:\Games\Speccy`, e.DefaultLibraryDir)
	assert.Equal(t, `C:\Fuse`, e.WorkingDirectory)

	// Already quoted paths are not quoted twice
	e2, err := s.AddEmulator("Vice", `"C:\Vice\x64.exe"`, "", "", "")
	require.NoError(t, err)
	assert.Equal(t, `"C:\Vice\x64.exe"`, e2.ExecutablePath)
}

func TestStore_AddEmulator_Duplicate(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddEmulator("Fuse", "/usr/bin/fuse", "", "", "")
	assert.ErrorIs(t, err, ErrDuplicateName)

	emulators, _ := s.Count()
	assert.Equal(t, 2, emulators)
	assert.Equal(t, `"C:\Fuse\fuse.exe"`, s.Emulator("Fuse").ExecutablePath)
}

func TestStore_AddEmulator_EmptyName(t *testing.T) {
	s := NewStore(nil, Options{})
	defer s.Close()

	_, err := s.AddEmulator("  ", "/usr/bin/fuse", "", "", "")
	assert.ErrorIs(t, err, model.ErrEmptyName)
}

func TestStore_RenameEmulator(t *testing.T) {
	s := newTestStore(t)

	g1, err := s.AddGame("Jetpac", "Fuse", `"jetpac.z80"`, "")
	require.NoError(t, err)
	g2, err := s.AddGame("Atic Atac", "Fuse", `"atic.z80"`, "")
	require.NoError(t, err)
	g3, err := s.AddGame("Doom", "DOSBox", "doom.exe", "")
	require.NoError(t, err)

	require.NoError(t, s.RenameEmulator("Fuse", "Fuse 1.6"))

	assert.Nil(t, s.Emulator("Fuse"))
	require.NotNil(t, s.Emulator("Fuse 1.6"))
	assert.Equal(t, "Fuse 1.6", s.Game(g1.ID).Application)
	assert.Equal(t, "Fuse 1.6", s.Game(g2.ID).Application)
	assert.Equal(t, "DOSBox", s.Game(g3.ID).Application)

	for _, g := range s.Games() {
		assert.NotEqual(t, "Fuse", g.Application)
	}
	assert.Len(t, s.GamesForEmulator("Fuse 1.6"), 2)
	assert.Empty(t, s.GamesForEmulator("Fuse"))
}

func TestStore_RenameEmulator_Errors(t *testing.T) {
	s := newTestStore(t)

	t.Run("target exists", func(t *testing.T) {
		err := s.RenameEmulator("Fuse", "DOSBox")
		assert.ErrorIs(t, err, ErrDuplicateName)
		assert.NotNil(t, s.Emulator("Fuse"))
	})

	t.Run("source missing", func(t *testing.T) {
		err := s.RenameEmulator("Vice", "Vice 3")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty name", func(t *testing.T) {
		err := s.RenameEmulator("Fuse", "")
		assert.ErrorIs(t, err, model.ErrEmptyName)
	})

	t.Run("same name is a no-op", func(t *testing.T) {
		assert.NoError(t, s.RenameEmulator("Fuse", "Fuse"))
	})
}

func TestStore_UpdateEmulatorFields(t *testing.T) {
	s := newTestStore(t)

	err := s.UpdateEmulatorFields("Fuse", model.EmulatorFields{
		ExecutablePath: strPtr("/usr/bin/fuse"),
		DefaultOption:  strPtr("--machine 128"),
	})
	require.NoError(t, err)

	e := s.Emulator("Fuse")
	assert.Equal(t, `"/usr/bin/fuse"`, e.ExecutablePath)
	assert.Equal(t, "--machine 128", e.DefaultOption)
	assert.Equal(t, `C:\Games\Speccy`, e.DefaultLibraryDir, "unset fields keep their value")

	err = s.UpdateEmulatorFields("Vice", model.EmulatorFields{DefaultOption: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_DeleteEmulator_Cascade(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"Jetpac", "Atic Atac", "Sabre Wulf"} {
		_, err := s.AddGame(name, "Fuse", "", "")
		require.NoError(t, err)
	}
	doom, err := s.AddGame("Doom", "DOSBox", "", "")
	require.NoError(t, err)

	removed, err := s.DeleteEmulator("Fuse")
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	emulators, games := s.Count()
	assert.Equal(t, 1, emulators)
	assert.Equal(t, 1, games)
	assert.Nil(t, s.Emulator("Fuse"))
	assert.NotNil(t, s.Game(doom.ID))

	// Indices stay valid after removal
	require.NoError(t, s.RenameGame(doom.ID, "Doom II"))
	assert.Equal(t, "Doom II", s.Game(doom.ID).DisplayName)

	_, err = s.DeleteEmulator("Fuse")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_NoOrphansAfterMutations(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddGame("Jetpac", "Fuse", "", "")
	require.NoError(t, err)
	_, err = s.AddGame("Doom", "DOSBox", "", "")
	require.NoError(t, err)
	require.NoError(t, s.RenameEmulator("DOSBox", "DOSBox-X"))
	_, err = s.DeleteEmulator("Fuse")
	require.NoError(t, err)

	lib := s.Snapshot()
	for _, g := range lib.Games {
		assert.NotNil(t, lib.Emulator(g.Application), "game %s is orphaned", g.ID)
	}
}

func TestStore_AddGame(t *testing.T) {
	s := newTestStore(t)

	g, err := s.AddGame("Jetpac", "Fuse", `"C:\Games\Speccy\jetpac.z80"`, "1983")
	require.NoError(t, err)
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, "Fuse", g.Application)

	got := s.Game(g.ID)
	require.NotNil(t, got)
	assert.Equal(t, g, *got)

	_, err = s.AddGame("Elite", "Vice", "", "")
	assert.ErrorIs(t, err, ErrEmulatorNotFound)

	_, err = s.AddGame("", "Fuse", "", "")
	assert.ErrorIs(t, err, model.ErrEmptyName)
}

func TestStore_AddGame_UniqueNames(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddGame("Jetpac", "Fuse", "", "")
	require.NoError(t, err)

	_, err = s.AddGame("Jetpac", "Fuse", "", "")
	assert.ErrorIs(t, err, ErrDuplicateName)

	// Same name under another emulator is fine
	_, err = s.AddGame("Jetpac", "DOSBox", "", "")
	assert.NoError(t, err)
}

func TestStore_AddGame_DuplicateNamesAllowed(t *testing.T) {
	s := NewStore(nil, Options{UniqueGameNames: false})
	defer s.Close()

	_, err := s.AddEmulator("Fuse", "fuse", "", "", "")
	require.NoError(t, err)

	g1, err := s.AddGame("Jetpac", "Fuse", "", "")
	require.NoError(t, err)
	g2, err := s.AddGame("Jetpac", "Fuse", "", "")
	require.NoError(t, err)

	assert.NotEqual(t, g1.ID, g2.ID)
	assert.Len(t, s.GamesForEmulator("Fuse"), 2)
}

func TestStore_RenameGame(t *testing.T) {
	s := newTestStore(t)

	g, err := s.AddGame("Jetpac", "Fuse", "", "")
	require.NoError(t, err)
	other, err := s.AddGame("Atic Atac", "Fuse", "", "")
	require.NoError(t, err)

	require.NoError(t, s.RenameGame(g.ID, "Jetpac (48K)"))
	assert.Equal(t, "Jetpac (48K)", s.Game(g.ID).DisplayName)

	err = s.RenameGame(other.ID, "Jetpac (48K)")
	assert.ErrorIs(t, err, ErrDuplicateName)

	err = s.RenameGame("missing", "x")
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.RenameGame(g.ID, " ")
	assert.ErrorIs(t, err, model.ErrEmptyName)
}

func TestStore_UpdateGameFields(t *testing.T) {
	s := newTestStore(t)

	g, err := s.AddGame("Jetpac", "Fuse", "-m 48", "first")
	require.NoError(t, err)

	require.NoError(t, s.UpdateGameFields(g.ID, model.GameFields{Options: strPtr("-m 128")}))
	got := s.Game(g.ID)
	assert.Equal(t, "-m 128", got.Options)
	assert.Equal(t, "first", got.Notes)

	require.NoError(t, s.UpdateGameFields(g.ID, model.GameFields{Notes: strPtr("")}))
	assert.Equal(t, "", s.Game(g.ID).Notes)

	err = s.UpdateGameFields("missing", model.GameFields{Notes: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_DeleteGame(t *testing.T) {
	s := newTestStore(t)

	g1, _ := s.AddGame("Jetpac", "Fuse", "", "")
	g2, _ := s.AddGame("Atic Atac", "Fuse", "", "")

	require.NoError(t, s.DeleteGame(g1.ID))
	assert.Nil(t, s.Game(g1.ID))
	assert.NotNil(t, s.Game(g2.ID))
	assert.NotNil(t, s.Emulator("Fuse"), "emulator survives its games")

	assert.ErrorIs(t, s.DeleteGame(g1.ID), ErrNotFound)
}

func TestStore_Subscribe(t *testing.T) {
	s := newTestStore(t)

	ch := s.Subscribe()

	_, err := s.AddGame("Jetpac", "Fuse", "", "")
	require.NoError(t, err)

	select {
	case event := <-ch:
		assert.Equal(t, ChangeTypeAdd, event.Type)
		assert.Equal(t, KindGame, event.Kind)
	default:
		t.Fatal("expected change event")
	}

	removed, err := s.DeleteEmulator("Fuse")
	require.NoError(t, err)

	event := <-ch
	assert.Equal(t, ChangeTypeDelete, event.Type)
	assert.Equal(t, KindEmulator, event.Kind)
	assert.Equal(t, removed, event.Count)

	s.Unsubscribe(ch)
	_, ok := <-ch
	assert.False(t, ok)
}

func TestStore_Close(t *testing.T) {
	s := NewStore(nil, Options{})
	ch := s.Subscribe()

	require.NoError(t, s.Close())
	_, ok := <-ch
	assert.False(t, ok)

	_, err := s.AddEmulator("Fuse", "fuse", "", "", "")
	assert.ErrorIs(t, err, ErrStoreClosed)

	// Closing twice is fine
	assert.NoError(t, s.Close())
}

func TestStore_Autosave(t *testing.T) {
	dir := t.TempDir()
	p := NewJSONPersistence(filepath.Join(dir, "emu_data.json"), filepath.Join(dir, "games_data.json"))

	s := NewStore(p, Options{UniqueGameNames: true})
	_, err := s.AddEmulator("Fuse", `C:\Fuse\fuse.exe`, "", "", "")
	require.NoError(t, err)
	g, err := s.AddGame("Jetpac", "Fuse", `"jetpac.z80"`, "")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	emuExists, gamesExist := p.Exists()
	assert.True(t, emuExists)
	assert.True(t, gamesExist)

	s2 := NewStore(p, Options{})
	defer s2.Close()
	require.NoError(t, s2.Hydrate())

	assert.Equal(t, `"C:\Fuse\fuse.exe"`, s2.Emulator("Fuse").ExecutablePath)
	require.NotNil(t, s2.Game(g.ID))
	assert.Equal(t, "Jetpac", s2.Game(g.ID).DisplayName)
}

func TestStore_SaveFailureKeepsState(t *testing.T) {
	p := &memPersistence{saveErr: errors.New("disk full")}
	s := NewStore(p, Options{})
	defer s.Close()

	_, err := s.AddEmulator("Fuse", "fuse", "", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	// The mutation is not rolled back
	assert.NotNil(t, s.Emulator("Fuse"))

	p.saveErr = nil
	require.NoError(t, s.Save())
	assert.Equal(t, 1, p.saves)
	assert.Len(t, p.lib.Emulators, 1)
}

func TestStore_Hydrate_HidesOrphans(t *testing.T) {
	p := &memPersistence{lib: model.Library{
		Emulators: []model.Emulator{{Name: "Fuse", ExecutablePath: `"fuse"`}, {Name: ""}},
		Games: []model.Game{
			{ID: "a", DisplayName: "Jetpac", Application: "Fuse"},
			{ID: "b", DisplayName: "Doom", Application: "DOSBox"},
		},
	}}
	s := NewStore(p, Options{})
	defer s.Close()

	ch := s.Subscribe()
	require.NoError(t, s.Hydrate())

	emulators, games := s.Count()
	assert.Equal(t, 1, emulators)
	assert.Equal(t, 1, games)
	assert.Nil(t, s.Game("b"))
	assert.Len(t, s.Snapshot().Games, 1)

	event := <-ch
	assert.Equal(t, ChangeTypeReload, event.Type)
	assert.Equal(t, 0, p.saves, "hydrate does not write")

	// The hidden game is still written back
	require.NoError(t, s.Save())
	require.Len(t, p.lib.Games, 2)
	assert.Equal(t, "b", p.lib.Games[1].ID)
}

func TestStore_AddEmulator_AdoptsOrphans(t *testing.T) {
	p := &memPersistence{lib: model.Library{
		Games: []model.Game{{ID: "b", DisplayName: "Doom", Application: "DOSBox"}},
	}}
	s := NewStore(p, Options{})
	defer s.Close()
	require.NoError(t, s.Hydrate())
	assert.Nil(t, s.Game("b"))

	_, err := s.AddEmulator("DOSBox", "dosbox", "", "", "")
	require.NoError(t, err)

	require.NotNil(t, s.Game("b"))
	assert.Len(t, s.GamesForEmulator("DOSBox"), 1)
	assert.Len(t, p.lib.Games, 1)
}

func TestStore_MalformedEmulatorsKeepsGamesDocument(t *testing.T) {
	dir := t.TempDir()
	emuPath := filepath.Join(dir, "emu_data.json")
	gamesPath := filepath.Join(dir, "games_data.json")

	persistence := NewJSONPersistence(emuPath, gamesPath)
	require.NoError(t, persistence.Save(model.Library{
		Emulators: []model.Emulator{{Name: "Fuse", ExecutablePath: `"fuse"`}},
		Games:     []model.Game{{ID: "01HZX0AAAAAAAAAAAAAAAAAAAA", DisplayName: "Jetpac", Application: "Fuse"}},
	}))
	require.NoError(t, os.WriteFile(emuPath, []byte(`{"Fuse": {"Location": `), 0600))

	s := NewStore(persistence, Options{})
	defer s.Close()

	err := s.Hydrate()
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, CollectionEmulators, perr.Collection)
	assert.Empty(t, s.GamesForEmulator("Fuse"))

	// An autosaving mutation must not empty the games document
	_, err = s.AddEmulator("DOSBox", "dosbox", "", "", "")
	require.NoError(t, err)

	lib, err := persistence.Load()
	require.NoError(t, err)
	require.Len(t, lib.Games, 1)
	assert.Equal(t, "Jetpac", lib.Games[0].DisplayName)
	require.Len(t, lib.Emulators, 1)
	assert.Equal(t, "DOSBox", lib.Emulators[0].Name)
}

func TestStore_Hydrate_ReturnsLoadError(t *testing.T) {
	loadErr := &PersistenceError{Collection: CollectionGames, Path: "games.json", Op: "load", Err: errors.New("bad json")}
	p := &memPersistence{
		lib:     model.Library{Emulators: []model.Emulator{{Name: "Fuse"}}},
		loadErr: loadErr,
	}
	s := NewStore(p, Options{})
	defer s.Close()

	err := s.Hydrate()
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, CollectionGames, perr.Collection)
	assert.NotNil(t, s.Emulator("Fuse"))
}

func TestStore_ManualSave(t *testing.T) {
	p := &memPersistence{}
	s := NewStore(p, Options{ManualSave: true})
	defer s.Close()

	_, err := s.AddEmulator("Fuse", "fuse", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, 0, p.saves)
	assert.True(t, s.Dirty())

	require.NoError(t, s.Save())
	assert.Equal(t, 1, p.saves)
	assert.False(t, s.Dirty())
	assert.Len(t, p.lib.Emulators, 1)
}
