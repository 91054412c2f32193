package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/jmylchreest/retroroam/internal/model"
)

// Collection names used in persistence errors.
const (
	CollectionEmulators = "emulators"
	CollectionGames     = "games"
)

// Persistence defines the interface for library storage.
type Persistence interface {
	// Load reads both collections. A collection that cannot be read comes back
	// empty and its failure is reported in the returned error; the other
	// collection is still returned.
	Load() (model.Library, error)

	// Save replaces both documents with the given library.
	Save(lib model.Library) error

	// Exists reports whether the emulators and games documents are present.
	Exists() (emulators, games bool)

	// Paths returns the emulators and games document paths.
	Paths() (emulators, games string)
}

// PersistenceError reports a failed read or write of one document.
type PersistenceError struct {
	Collection string
	Path       string
	Op         string // "load" or "save"
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s %s (%s): %v", e.Op, e.Collection, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// emulatorRecord is the on-disk form of an emulator, keyed by name.
type emulatorRecord struct {
	Location         string `json:"Location"`
	LibraryDefault   string `json:"Library_default"`
	DefaultOption    string `json:"Default_option"`
	WorkingDirectory string `json:"Working_Directory"`
}

// gameRecord is the on-disk form of a game, keyed by id.
type gameRecord struct {
	Game        string `json:"Game"`
	Application string `json:"Application"`
	Options     string `json:"Options"`
	Notes       string `json:"Notes"`
}

// JSONPersistence stores the library as two indented JSON documents.
type JSONPersistence struct {
	mu            sync.Mutex
	emulatorsPath string
	gamesPath     string
}

// NewJSONPersistence creates a JSONPersistence for the two document paths.
// Files are not created until the first Save.
func NewJSONPersistence(emulatorsPath, gamesPath string) *JSONPersistence {
	return &JSONPersistence{
		emulatorsPath: emulatorsPath,
		gamesPath:     gamesPath,
	}
}

// Paths returns the emulators and games document paths.
func (p *JSONPersistence) Paths() (string, string) {
	return p.emulatorsPath, p.gamesPath
}

// Exists reports whether each document is present on disk.
func (p *JSONPersistence) Exists() (bool, bool) {
	return fileExists(p.emulatorsPath), fileExists(p.gamesPath)
}

// Load reads both documents. Missing files are empty collections, not errors.
func (p *JSONPersistence) Load() (model.Library, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lib model.Library
	var errs []error

	emulators, err := loadEmulators(p.emulatorsPath)
	if err != nil {
		errs = append(errs, &PersistenceError{
			Collection: CollectionEmulators, Path: p.emulatorsPath, Op: "load", Err: err,
		})
	} else {
		lib.Emulators = emulators
	}

	games, err := loadGames(p.gamesPath)
	if err != nil {
		errs = append(errs, &PersistenceError{
			Collection: CollectionGames, Path: p.gamesPath, Op: "load", Err: err,
		})
	} else {
		lib.Games = games
	}

	return lib, errors.Join(errs...)
}

func loadEmulators(path string) ([]model.Emulator, error) {
	data, err := readDocument(path)
	if err != nil || data == nil {
		return nil, err
	}

	records, err := decodeOrdered[emulatorRecord](data)
	if err != nil {
		return nil, err
	}

	emulators := make([]model.Emulator, 0, len(records))
	for _, r := range records {
		emulators = append(emulators, model.Emulator{
			Name:              r.Key,
			ExecutablePath:    r.Value.Location,
			DefaultLibraryDir: r.Value.LibraryDefault,
			DefaultOption:     r.Value.DefaultOption,
			WorkingDirectory:  r.Value.WorkingDirectory,
		})
	}
	return emulators, nil
}

func loadGames(path string) ([]model.Game, error) {
	data, err := readDocument(path)
	if err != nil || data == nil {
		return nil, err
	}

	records, err := decodeOrdered[gameRecord](data)
	if err != nil {
		return nil, err
	}

	games := make([]model.Game, 0, len(records))
	for _, r := range records {
		games = append(games, model.Game{
			ID:          r.Key,
			DisplayName: r.Value.Game,
			Application: r.Value.Application,
			Options:     r.Value.Options,
			Notes:       r.Value.Notes,
		})
	}
	return games, nil
}

// readDocument returns the file contents, or nil for a missing or blank file.
func readDocument(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return data, nil
}

// Save rewrites both documents in full, in collection order. Both are
// attempted even if the first fails; each failure is reported as a
// PersistenceError.
func (p *JSONPersistence) Save(lib model.Library) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	emulators := make([]entry[emulatorRecord], 0, len(lib.Emulators))
	for _, e := range lib.Emulators {
		emulators = append(emulators, entry[emulatorRecord]{Key: e.Name, Value: emulatorRecord{
			Location:         e.ExecutablePath,
			LibraryDefault:   e.DefaultLibraryDir,
			DefaultOption:    e.DefaultOption,
			WorkingDirectory: e.WorkingDirectory,
		}})
	}

	games := make([]entry[gameRecord], 0, len(lib.Games))
	for _, g := range lib.Games {
		games = append(games, entry[gameRecord]{Key: g.ID, Value: gameRecord{
			Game:        g.DisplayName,
			Application: g.Application,
			Options:     g.Options,
			Notes:       g.Notes,
		}})
	}

	var errs []error
	if err := rewrite(p.emulatorsPath, emulators); err != nil {
		errs = append(errs, &PersistenceError{
			Collection: CollectionEmulators, Path: p.emulatorsPath, Op: "save", Err: err,
		})
	}
	if err := rewrite(p.gamesPath, games); err != nil {
		errs = append(errs, &PersistenceError{
			Collection: CollectionGames, Path: p.gamesPath, Op: "save", Err: err,
		})
	}
	return errors.Join(errs...)
}

// entry is one member of a JSON object, kept in document order.
type entry[V any] struct {
	Key   string
	Value V
}

// decodeOrdered decodes a JSON object into its members in document order.
// A repeated key keeps its first position and its last value.
func decodeOrdered[V any](data []byte) ([]entry[V], error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	var entries []entry[V]
	seen := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected an object key, got %v", tok)
		}

		var value V
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}

		if i, dup := seen[key]; dup {
			entries[i].Value = value
			continue
		}
		seen[key] = len(entries)
		entries = append(entries, entry[V]{Key: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after the JSON object")
	}
	return entries, nil
}

// encodeOrdered encodes entries as an indented JSON object in slice order.
func encodeOrdered[V any](entries []entry[V]) ([]byte, error) {
	if len(entries) == 0 {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, e := range entries {
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.MarshalIndent(e.Value, indent, indent)
		if err != nil {
			return nil, err
		}
		buf.WriteString(indent)
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(value)
		if i < len(entries)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

const indent = "    "

// rewrite replaces the file at path with entries encoded as an indented
// JSON object. The previous file is kept as a .bak until the new one is synced.
func rewrite[V any](path string, entries []entry[V]) error {
	data, err := encodeOrdered(entries)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	backupPath := path + ".bak"
	if err := os.Rename(path, backupPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to create backup: %w", err)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		os.Rename(backupPath, path)
		return fmt.Errorf("failed to create new file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Rename(backupPath, path)
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Rename(backupPath, path)
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	os.Remove(backupPath)
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
