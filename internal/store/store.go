// Package store provides the library store for emulators and games.
package store

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jmylchreest/retroroam/internal/core"
	"github.com/jmylchreest/retroroam/internal/model"
)

// ChangeType indicates the type of store change.
type ChangeType int

const (
	// ChangeTypeAdd indicates a record was added.
	ChangeTypeAdd ChangeType = iota
	// ChangeTypeUpdate indicates a record's fields changed.
	ChangeTypeUpdate
	// ChangeTypeRename indicates a record was renamed.
	ChangeTypeRename
	// ChangeTypeDelete indicates records were deleted.
	ChangeTypeDelete
	// ChangeTypeReload indicates the store was reloaded from persistence.
	ChangeTypeReload
)

// Record kinds carried in change events.
const (
	KindEmulator = "emulator"
	KindGame     = "game"
)

// ChangeEvent signals store content changes.
type ChangeEvent struct {
	Type  ChangeType
	Kind  string // KindEmulator or KindGame, empty for reloads
	Key   string // emulator name or game id
	Count int
}

// Options configures store policy.
type Options struct {
	// UniqueGameNames rejects a game display name already used by another
	// game of the same emulator.
	UniqueGameNames bool

	// ManualSave keeps mutations in memory until Save is called.
	ManualSave bool
}

// Store owns the emulator and game collections and keeps them consistent.
type Store struct {
	mu        sync.RWMutex
	emulators []model.Emulator
	emuIndex  map[string]int // name -> slice index
	games     []model.Game
	gameIndex map[string]int // id -> slice index
	orphans   []model.Game   // games of unknown emulators: saved, never listed

	opts        Options
	persistence Persistence

	subscribers []chan ChangeEvent
	closed      bool
	dirty       bool // unsaved changes in ManualSave mode
}

// NewStore creates a new Store.
// If persistence is not nil, every successful mutation saves both collections.
func NewStore(persistence Persistence, opts Options) *Store {
	return &Store{
		emulators:   make([]model.Emulator, 0),
		emuIndex:    make(map[string]int),
		games:       make([]model.Game, 0),
		gameIndex:   make(map[string]int),
		opts:        opts,
		persistence: persistence,
		subscribers: make([]chan ChangeEvent, 0),
	}
}

// AddEmulator adds a new emulator. The executable path is stored quoted.
func (s *Store) AddEmulator(name, executablePath, defaultLibraryDir, defaultOption, workingDirectory string) (model.Emulator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return model.Emulator{}, ErrStoreClosed
	}

	e := model.Emulator{
		Name:              name,
		ExecutablePath:    core.QuotePath(executablePath),
		DefaultLibraryDir: defaultLibraryDir,
		DefaultOption:     defaultOption,
		WorkingDirectory:  workingDirectory,
	}
	if err := e.Validate(); err != nil {
		return model.Emulator{}, err
	}

	if _, exists := s.emuIndex[name]; exists {
		return model.Emulator{}, fmt.Errorf("emulator %q: %w", name, ErrDuplicateName)
	}

	s.emuIndex[name] = len(s.emulators)
	s.emulators = append(s.emulators, e)
	s.adoptOrphansLocked(name)

	err := s.flushLocked()
	s.notifyChange(ChangeEvent{Type: ChangeTypeAdd, Kind: KindEmulator, Key: name, Count: 1})
	return e, err
}

// RenameEmulator renames an emulator and repoints every game that used the old
// name. The whole rewrite happens under one lock, so no partial state is visible.
func (s *Store) RenameEmulator(oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	idx, exists := s.emuIndex[oldName]
	if !exists {
		return fmt.Errorf("emulator %q: %w", oldName, ErrNotFound)
	}
	if strings.TrimSpace(newName) == "" {
		return model.ErrEmptyName
	}
	if oldName == newName {
		return nil
	}
	if _, taken := s.emuIndex[newName]; taken {
		return fmt.Errorf("emulator %q: %w", newName, ErrDuplicateName)
	}

	s.emulators[idx].Name = newName
	delete(s.emuIndex, oldName)
	s.emuIndex[newName] = idx

	moved := 0
	for i := range s.games {
		if s.games[i].Application == oldName {
			s.games[i].Application = newName
			moved++
		}
	}
	moved += s.adoptOrphansLocked(newName)

	err := s.flushLocked()
	s.notifyChange(ChangeEvent{Type: ChangeTypeRename, Kind: KindEmulator, Key: newName, Count: moved})
	return err
}

// UpdateEmulatorFields applies a partial update. Unset fields keep their value.
func (s *Store) UpdateEmulatorFields(name string, fields model.EmulatorFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	idx, exists := s.emuIndex[name]
	if !exists {
		return fmt.Errorf("emulator %q: %w", name, ErrNotFound)
	}
	if fields.IsEmpty() {
		return nil
	}

	if fields.ExecutablePath != nil {
		quoted := core.QuotePath(*fields.ExecutablePath)
		fields.ExecutablePath = &quoted
	}
	s.emulators[idx] = fields.Apply(s.emulators[idx])

	err := s.flushLocked()
	s.notifyChange(ChangeEvent{Type: ChangeTypeUpdate, Kind: KindEmulator, Key: name, Count: 1})
	return err
}

// DeleteEmulator removes an emulator and every game that belongs to it.
// Returns the number of games removed.
func (s *Store) DeleteEmulator(name string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	idx, exists := s.emuIndex[name]
	if !exists {
		return 0, fmt.Errorf("emulator %q: %w", name, ErrNotFound)
	}

	s.emulators = append(s.emulators[:idx], s.emulators[idx+1:]...)

	kept := make([]model.Game, 0, len(s.games))
	for _, g := range s.games {
		if g.Application != name {
			kept = append(kept, g)
		}
	}
	removed := len(s.games) - len(kept)
	s.games = kept

	s.rebuildIndicesLocked()

	err := s.flushLocked()
	s.notifyChange(ChangeEvent{Type: ChangeTypeDelete, Kind: KindEmulator, Key: name, Count: removed})
	return removed, err
}

// AddGame adds a game to an existing emulator under a fresh id.
func (s *Store) AddGame(displayName, application, options, notes string) (model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return model.Game{}, ErrStoreClosed
	}

	if strings.TrimSpace(displayName) == "" {
		return model.Game{}, model.ErrEmptyName
	}
	if _, exists := s.emuIndex[application]; !exists {
		return model.Game{}, fmt.Errorf("emulator %q: %w", application, ErrEmulatorNotFound)
	}
	if s.opts.UniqueGameNames && s.gameNameTakenLocked(displayName, application, "") {
		return model.Game{}, fmt.Errorf("game %q for %s: %w", displayName, application, ErrDuplicateName)
	}

	id, err := model.NewGameID()
	if err != nil {
		return model.Game{}, err
	}
	for {
		if _, taken := s.gameIndex[id]; !taken {
			break
		}
		if id, err = model.NewGameID(); err != nil {
			return model.Game{}, err
		}
	}

	g := model.Game{
		ID:          id,
		DisplayName: displayName,
		Application: application,
		Options:     options,
		Notes:       notes,
	}

	s.gameIndex[id] = len(s.games)
	s.games = append(s.games, g)

	err = s.flushLocked()
	s.notifyChange(ChangeEvent{Type: ChangeTypeAdd, Kind: KindGame, Key: id, Count: 1})
	return g, err
}

// RenameGame changes a game's display name. The id is unchanged.
func (s *Store) RenameGame(id, newDisplayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	idx, exists := s.gameIndex[id]
	if !exists {
		return fmt.Errorf("game %s: %w", id, ErrNotFound)
	}
	if strings.TrimSpace(newDisplayName) == "" {
		return model.ErrEmptyName
	}
	g := s.games[idx]
	if g.DisplayName == newDisplayName {
		return nil
	}
	if s.opts.UniqueGameNames && s.gameNameTakenLocked(newDisplayName, g.Application, id) {
		return fmt.Errorf("game %q for %s: %w", newDisplayName, g.Application, ErrDuplicateName)
	}

	s.games[idx].DisplayName = newDisplayName

	err := s.flushLocked()
	s.notifyChange(ChangeEvent{Type: ChangeTypeRename, Kind: KindGame, Key: id, Count: 1})
	return err
}

// UpdateGameFields replaces a game's options and/or notes.
func (s *Store) UpdateGameFields(id string, fields model.GameFields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	idx, exists := s.gameIndex[id]
	if !exists {
		return fmt.Errorf("game %s: %w", id, ErrNotFound)
	}
	if fields.IsEmpty() {
		return nil
	}

	s.games[idx] = fields.Apply(s.games[idx])

	err := s.flushLocked()
	s.notifyChange(ChangeEvent{Type: ChangeTypeUpdate, Kind: KindGame, Key: id, Count: 1})
	return err
}

// DeleteGame removes a game by id.
func (s *Store) DeleteGame(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	idx, exists := s.gameIndex[id]
	if !exists {
		return fmt.Errorf("game %s: %w", id, ErrNotFound)
	}

	s.games = append(s.games[:idx], s.games[idx+1:]...)
	s.rebuildIndicesLocked()

	err := s.flushLocked()
	s.notifyChange(ChangeEvent{Type: ChangeTypeDelete, Kind: KindGame, Key: id, Count: 1})
	return err
}

// Emulator returns a copy of the named emulator, or nil.
func (s *Store) Emulator(name string) *model.Emulator {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx, exists := s.emuIndex[name]; exists {
		e := s.emulators[idx]
		return &e
	}
	return nil
}

// Game returns a copy of the game with the given id, or nil.
func (s *Store) Game(id string) *model.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx, exists := s.gameIndex[id]; exists {
		g := s.games[idx]
		return &g
	}
	return nil
}

// Emulators returns all emulators in insertion order.
func (s *Store) Emulators() []model.Emulator {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Emulator, len(s.emulators))
	copy(result, s.emulators)
	return result
}

// Games returns all games in insertion order.
func (s *Store) Games() []model.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]model.Game, len(s.games))
	copy(result, s.games)
	return result
}

// Snapshot returns a copy of both collections.
func (s *Store) Snapshot() model.Library {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// GamesForEmulator returns the named emulator's games sorted by display name.
func (s *Store) GamesForEmulator(name string) []core.GameEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.GamesForEmulator(s.games, name)
}

// Count returns the number of emulators and games.
func (s *Store) Count() (emulators, games int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.emulators), len(s.games)
}

// Save writes both collections to persistence.
// In-memory state is kept whether or not the write succeeds.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persistence == nil {
		return nil
	}
	if err := s.persistence.Save(s.persistedLocked()); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// Dirty reports whether there are changes not yet saved.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Hydrate replaces the store contents with what persistence holds.
// A collection that fails to load is left empty and its error returned.
// Games whose emulator does not exist are held back: they are never listed
// but are written back on save, so a broken emulators document cannot
// empty the games document.
func (s *Store) Hydrate() error {
	if s.persistence == nil {
		return nil
	}

	lib, loadErr := s.persistence.Load()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}

	s.emulators = make([]model.Emulator, 0, len(lib.Emulators))
	s.emuIndex = make(map[string]int, len(lib.Emulators))
	for _, e := range lib.Emulators {
		if err := e.Validate(); err != nil {
			zap.L().Warn("skipping invalid emulator record", zap.String("name", e.Name), zap.Error(err))
			continue
		}
		s.emuIndex[e.Name] = len(s.emulators)
		s.emulators = append(s.emulators, e)
	}

	s.games = make([]model.Game, 0, len(lib.Games))
	s.gameIndex = make(map[string]int, len(lib.Games))
	s.orphans = nil
	for _, g := range lib.Games {
		if _, ok := s.emuIndex[g.Application]; !ok {
			s.orphans = append(s.orphans, g)
			continue
		}
		s.gameIndex[g.ID] = len(s.games)
		s.games = append(s.games, g)
	}
	if len(s.orphans) > 0 {
		zap.L().Warn("hiding games referencing unknown emulators", zap.Int("count", len(s.orphans)))
	}

	s.dirty = false

	event := ChangeEvent{Type: ChangeTypeReload, Count: len(s.emulators) + len(s.games)}
	s.notifyChange(event)
	s.mu.Unlock()

	return loadErr
}

// Subscribe returns a channel that receives change events.
func (s *Store) Subscribe() <-chan ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan ChangeEvent, 10)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription.
func (s *Store) Unsubscribe(ch <-chan ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Close closes all subscriber channels. Further mutations fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil
	return nil
}

func (s *Store) snapshotLocked() model.Library {
	lib := model.Library{
		Emulators: make([]model.Emulator, len(s.emulators)),
		Games:     make([]model.Game, len(s.games)),
	}
	copy(lib.Emulators, s.emulators)
	copy(lib.Games, s.games)
	return lib
}

// persistedLocked is the snapshot plus the held-back orphans.
func (s *Store) persistedLocked() model.Library {
	lib := s.snapshotLocked()
	lib.Games = append(lib.Games, s.orphans...)
	return lib
}

// adoptOrphansLocked moves held-back games of emulator into the store.
func (s *Store) adoptOrphansLocked(emulator string) int {
	kept := s.orphans[:0]
	adopted := 0
	for _, g := range s.orphans {
		if g.Application != emulator {
			kept = append(kept, g)
			continue
		}
		if _, exists := s.gameIndex[g.ID]; exists {
			continue
		}
		s.gameIndex[g.ID] = len(s.games)
		s.games = append(s.games, g)
		adopted++
	}
	s.orphans = kept
	return adopted
}

// flushLocked saves both collections if persistence is configured.
func (s *Store) flushLocked() error {
	if s.persistence == nil {
		return nil
	}
	if s.opts.ManualSave {
		s.dirty = true
		return nil
	}
	if err := s.persistence.Save(s.persistedLocked()); err != nil {
		zap.L().Warn("failed to save library", zap.Error(err))
		s.dirty = true
		return err
	}
	s.dirty = false
	return nil
}

func (s *Store) rebuildIndicesLocked() {
	s.emuIndex = make(map[string]int, len(s.emulators))
	for i, e := range s.emulators {
		s.emuIndex[e.Name] = i
	}
	s.gameIndex = make(map[string]int, len(s.games))
	for i, g := range s.games {
		s.gameIndex[g.ID] = i
	}
}

func (s *Store) gameNameTakenLocked(displayName, application, exceptID string) bool {
	for _, g := range s.games {
		if g.ID != exceptID && g.Application == application && g.DisplayName == displayName {
			return true
		}
	}
	return false
}

// notifyChange sends a change event to all subscribers (non-blocking).
func (s *Store) notifyChange(event ChangeEvent) {
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip
		}
	}
}

// Errors
var (
	ErrStoreClosed      = storeError("store is closed")
	ErrDuplicateName    = storeError("name already exists")
	ErrNotFound         = storeError("not found")
	ErrEmulatorNotFound = storeError("emulator not found")
)

type storeError string

func (e storeError) Error() string {
	return string(e)
}
