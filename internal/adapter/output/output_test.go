package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/retroroam/internal/core"
	"github.com/jmylchreest/retroroam/internal/model"
)

func testLibrary() model.Library {
	return model.Library{
		Emulators: []model.Emulator{
			{Name: "Fuse", ExecutablePath: `"C:\Fuse\fuse.exe"`, DefaultLibraryDir: `C:\Games\Speccy`},
			{Name: "DOSBox", ExecutablePath: `"dosbox"`},
		},
		Games: []model.Game{
			{ID: "g1", DisplayName: "Jetpac", Application: "Fuse", Options: `"C:\Games\Speccy\jetpac.z80"`, Notes: "Ultimate\nPlay the Game"},
			{ID: "g2", DisplayName: "Atic Atac", Application: "Fuse", Options: `"atic.z80"`},
			{ID: "g3", DisplayName: "Doom", Application: "DOSBox", Options: "doom.exe"},
		},
	}
}

func testRows() []GameRow {
	lib := testLibrary()
	return GameRows(lib, core.GamesForEmulator(lib.Games, "Fuse"))
}

func TestGameRows(t *testing.T) {
	rows := testRows()

	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Index)
	assert.Equal(t, "Atic Atac", rows[0].DisplayName)
	assert.Equal(t, 2, rows[1].Index)
	assert.Equal(t, `"C:\Fuse\fuse.exe" "C:\Games\Speccy\jetpac.z80"`, rows[1].Command)
}

func TestGameRows_SkipsMissing(t *testing.T) {
	rows := GameRows(testLibrary(), []core.GameEntry{{ID: "gone"}, {ID: "g3"}})
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].Index)
	assert.Equal(t, "Doom", rows[0].DisplayName)
}

func TestNewFormatter(t *testing.T) {
	opts := DefaultFormatterOptions()

	for _, format := range []FormatType{FormatPlain, FormatDmenu, FormatJSON, FormatYAML, FormatIDs} {
		f, err := NewFormatter(format, opts)
		require.NoError(t, err, format)
		assert.NotNil(t, f)
	}

	_, err := NewFormatter("xml", opts)
	assert.Error(t, err)

	_, err = NewFormatter(FormatTemplate, opts)
	assert.Error(t, err, "template format without a template")

	opts.Template = "{{.Broken"
	_, err = NewFormatter(FormatDmenu, opts)
	assert.Error(t, err)
}

func TestDmenuFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	f, err := NewDmenuFormatter(DefaultFormatterOptions())
	require.NoError(t, err)
	require.NoError(t, f.Format(&buf, testRows()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{"Atic Atac | Fuse", "Jetpac | Fuse"}, lines)
}

func TestDmenuFormatter_Index(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.ShowIndex = true
	opts.ShowEmulator = false
	f, err := NewDmenuFormatter(opts)
	require.NoError(t, err)
	require.NoError(t, f.Format(&buf, testRows()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "1 | Atic Atac", lines[0])
	assert.Equal(t, "2 | Jetpac", lines[1])
}

func TestDmenuFormatter_CustomTemplate(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.Template = "{{.Index}}: {{.DisplayName}} - {{truncate .Notes 8}}"
	f, err := NewDmenuFormatter(opts)
	require.NoError(t, err)
	require.NoError(t, f.Format(&buf, testRows()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "1: Atic Atac -", lines[0])
	assert.Equal(t, "2: Jetpac - Ultim...", lines[1])
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		line     string
		expected Selection
	}{
		{"Jetpac | Fuse", Selection{Ref: "Jetpac", Emulator: "Fuse"}},
		{"2 | Jetpac | Fuse", Selection{Index: 2, Ref: "Jetpac", Emulator: "Fuse"}},
		{"2 | Jetpac", Selection{Index: 2, Ref: "Jetpac"}},
		{"  01HZX0AAAA  ", Selection{Ref: "01HZX0AAAA"}},
		{"Manic Miner", Selection{Ref: "Manic Miner"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseSelection(tt.line, ""))
		})
	}
}

func TestPlainFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.ShowIndex = true
	opts.ShowCommand = true
	f, err := NewPlainFormatter(opts)
	require.NoError(t, err)
	require.NoError(t, f.Format(&buf, testRows()))

	out := buf.String()
	assert.Contains(t, out, "[1] Atic Atac <Fuse>  g2")
	assert.Contains(t, out, `$ "C:\Fuse\fuse.exe" "C:\Games\Speccy\jetpac.z80"`)
	assert.Contains(t, out, "    Ultimate Play the Game\n")
}

func TestPlainFormatter_Template(t *testing.T) {
	var buf bytes.Buffer

	opts := DefaultFormatterOptions()
	opts.Template = "{{.ID}}={{.Command}}"
	f, err := NewFormatter(FormatTemplate, opts)
	require.NoError(t, err)
	require.NoError(t, f.Format(&buf, testRows()[:1]))

	assert.Equal(t, "g2=\"C:\\Fuse\\fuse.exe\" \"atic.z80\"\n", buf.String())
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewJSONFormatter(DefaultFormatterOptions()).Format(&buf, testRows()))

	var result []GameRow
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	require.Len(t, result, 2)
	assert.Equal(t, "g2", result[0].ID)
	assert.Equal(t, "Fuse", result[1].Application)
	assert.Zero(t, result[0].Index, "index is not serialized")
}

func TestJSONFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(DefaultFormatterOptions()).Format(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestJSONFormatter_FormatSingle(t *testing.T) {
	var buf bytes.Buffer
	row := testRows()[1]

	require.NoError(t, NewJSONFormatter(DefaultFormatterOptions()).FormatSingle(&buf, &row))

	var result GameRow
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "Jetpac", result.DisplayName)
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, NewYAMLFormatter().Format(&buf, testRows()))

	var result []GameRow
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &result))
	require.Len(t, result, 2)
	assert.Equal(t, "Jetpac", result[1].DisplayName)
	assert.Contains(t, buf.String(), "display_name: Atic Atac")
}

func TestIDsFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewIDsFormatter().Format(&buf, testRows()))
	assert.Equal(t, "g2\ng1\n", buf.String())
}

func TestFormatField(t *testing.T) {
	row := &GameRow{
		ID:          "g1",
		DisplayName: "Jetpac",
		Application: "Fuse",
		Options:     "-m 48",
		Notes:       "1983",
		Command:     "fuse -m 48",
	}

	tests := []struct {
		field    string
		expected string
	}{
		{"id", "g1"},
		{"name", "Jetpac"},
		{"emulator", "Fuse"},
		{"options", "-m 48"},
		{"notes", "1983"},
		{"command", "fuse -m 48"},
		{"all", "Jetpac (Fuse)\nfuse -m 48"},
		{"unknown", "Jetpac"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatField(row, tt.field))
		})
	}
}

func TestEmulatorRows(t *testing.T) {
	rows := EmulatorRows(testLibrary())

	require.Len(t, rows, 2)
	assert.Equal(t, "DOSBox", rows[0].Name)
	assert.Equal(t, 1, rows[0].Games)
	assert.Equal(t, "Fuse", rows[1].Name)
	assert.Equal(t, 2, rows[1].Games)
}

func TestFormatEmulators(t *testing.T) {
	rows := EmulatorRows(testLibrary())

	t.Run("names", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, FormatEmulators(&buf, FormatIDs, rows))
		assert.Equal(t, "DOSBox\nFuse\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, FormatEmulators(&buf, FormatJSON, rows))
		var result []EmulatorRow
		require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
		assert.Equal(t, rows, result)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, FormatEmulators(&buf, FormatYAML, rows))
		assert.Contains(t, buf.String(), "name: Fuse")
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, FormatEmulators(&buf, FormatPlain, rows))
		out := buf.String()
		assert.Contains(t, out, "NAME")
		assert.Contains(t, out, "DOSBox")
		assert.Contains(t, out, `"C:\Fuse\fuse.exe"`)
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, FormatEmulators(&bytes.Buffer{}, "xml", rows))
	})
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"Jetpac", 10, "Jetpac"},
		{"Ultimate Play the Game", 10, "Ultimat..."},
		{"Pokémon Rot", 7, "Poké..."},
		{"ゼルダの伝説", 5, "ゼル..."},
		{"ゼルダの伝説", 2, "ゼル"},
		{"anything", 0, "anything"},
	}

	for _, tt := range tests {
		got := truncate(tt.in, tt.maxLen)
		assert.Equal(t, tt.want, got, tt.in)
		assert.True(t, utf8.ValidString(got), tt.in)
	}
}
