package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/retroroam/internal/model"
)

func lookupLibrary() model.Library {
	return model.Library{
		Emulators: []model.Emulator{{Name: "Fuse"}, {Name: "DOSBox"}},
		Games: []model.Game{
			{ID: "01HZX0AAAAAAAAAAAAAAAAAAAA", DisplayName: "Jetpac", Application: "Fuse"},
			{ID: "01HZX0BBBBBBBBBBBBBBBBBBBB", DisplayName: "Doom", Application: "DOSBox"},
			{ID: "01HZY0CCCCCCCCCCCCCCCCCCCC", DisplayName: "Elite", Application: "Fuse"},
			{ID: "01HZY0DDDDDDDDDDDDDDDDDDDD", DisplayName: "Elite", Application: "DOSBox"},
			{ID: "5f1c2a9e-uuid-legacy", DisplayName: "Atic Atac", Application: "Fuse"},
		},
	}
}

func TestLookupGame(t *testing.T) {
	lib := lookupLibrary()

	t.Run("exact id", func(t *testing.T) {
		g, err := LookupGame(lib, "01HZX0BBBBBBBBBBBBBBBBBBBB", "")
		require.NoError(t, err)
		assert.Equal(t, "Doom", g.DisplayName)
	})

	t.Run("legacy id", func(t *testing.T) {
		g, err := LookupGame(lib, "5f1c2a9e-uuid-legacy", "")
		require.NoError(t, err)
		assert.Equal(t, "Atic Atac", g.DisplayName)
	})

	t.Run("unique id prefix", func(t *testing.T) {
		g, err := LookupGame(lib, "01HZX0A", "")
		require.NoError(t, err)
		assert.Equal(t, "Jetpac", g.DisplayName)
	})

	t.Run("lowercase id prefix", func(t *testing.T) {
		g, err := LookupGame(lib, "01hzx0b", "")
		require.NoError(t, err)
		assert.Equal(t, "Doom", g.DisplayName)
	})

	t.Run("ambiguous id prefix", func(t *testing.T) {
		_, err := LookupGame(lib, "01HZY0", "")
		assert.ErrorIs(t, err, ErrAmbiguousGame)
	})

	t.Run("id prefix scoped by emulator", func(t *testing.T) {
		g, err := LookupGame(lib, "01HZY0", "DOSBox")
		require.NoError(t, err)
		assert.Equal(t, "01HZY0DDDDDDDDDDDDDDDDDDDD", g.ID)
	})

	t.Run("display name", func(t *testing.T) {
		g, err := LookupGame(lib, "Jetpac", "")
		require.NoError(t, err)
		assert.Equal(t, "Fuse", g.Application)
	})

	t.Run("ambiguous display name", func(t *testing.T) {
		_, err := LookupGame(lib, "Elite", "")
		assert.ErrorIs(t, err, ErrAmbiguousGame)
	})

	t.Run("display name scoped by emulator", func(t *testing.T) {
		g, err := LookupGame(lib, "Elite", "Fuse")
		require.NoError(t, err)
		assert.Equal(t, "01HZY0CCCCCCCCCCCCCCCCCCCC", g.ID)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := LookupGame(lib, "Chuckie Egg", "")
		assert.ErrorIs(t, err, ErrGameNotFound)
	})

	t.Run("empty reference", func(t *testing.T) {
		_, err := LookupGame(lib, "  ", "")
		assert.ErrorIs(t, err, ErrGameNotFound)
	})
}

func TestLookupGame_SkipsOrphans(t *testing.T) {
	lib := model.Library{
		Emulators: []model.Emulator{{Name: "Fuse"}},
		Games:     []model.Game{{ID: "x1", DisplayName: "Lost", Application: "Gone"}},
	}

	_, err := LookupGame(lib, "Lost", "")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestLookupByIndex(t *testing.T) {
	entries := []GameEntry{{ID: "1"}, {ID: "2"}, {ID: "3"}}

	t.Run("valid index 1", func(t *testing.T) {
		result := LookupByIndex(entries, 1)
		require.NotNil(t, result)
		assert.Equal(t, "1", result.ID)
	})

	t.Run("valid index 3", func(t *testing.T) {
		result := LookupByIndex(entries, 3)
		require.NotNil(t, result)
		assert.Equal(t, "3", result.ID)
	})

	t.Run("index 0 out of bounds", func(t *testing.T) {
		assert.Nil(t, LookupByIndex(entries, 0))
	})

	t.Run("index past end", func(t *testing.T) {
		assert.Nil(t, LookupByIndex(entries, 4))
	})
}
