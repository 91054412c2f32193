package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SessionState remembers what the user was looking at between runs.
// This is persisted to ~/.local/share/retroroam/state.json
type SessionState struct {
	LastEmulator string `json:"last_emulator,omitempty"`
	LastGameID   string `json:"last_game_id,omitempty"`

	LastLaunch *LaunchRecord `json:"last_launch,omitempty"`

	// Version for compatibility
	SchemaVersion int `json:"schema_version"`
}

// LaunchRecord describes the most recent launch request.
type LaunchRecord struct {
	GameID    string `json:"game_id"`
	Emulator  string `json:"emulator"`
	Command   string `json:"command"`
	Timestamp int64  `json:"timestamp"`
	Failed    bool   `json:"failed,omitempty"`
}

// CurrentStateSchemaVersion is the current version of the state schema.
const CurrentStateSchemaVersion = 1

// stateFileMutex protects concurrent access to the state file.
var stateFileMutex sync.RWMutex

// DefaultSessionState returns an empty SessionState.
func DefaultSessionState() *SessionState {
	return &SessionState{SchemaVersion: CurrentStateSchemaVersion}
}

// LoadSessionState reads the session state from path.
// A missing or unreadable file yields the default state.
func LoadSessionState(path string) (*SessionState, error) {
	stateFileMutex.RLock()
	defer stateFileMutex.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSessionState(), nil
		}
		return nil, err
	}

	var state SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return DefaultSessionState(), nil
	}
	if state.SchemaVersion == 0 {
		state.SchemaVersion = CurrentStateSchemaVersion
	}
	return &state, nil
}

// SaveSessionState writes the session state to path.
func SaveSessionState(path string, state *SessionState) error {
	stateFileMutex.Lock()
	defer stateFileMutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	if state.SchemaVersion == 0 {
		state.SchemaVersion = CurrentStateSchemaVersion
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// SetSelection records the selected emulator and game.
func (s *SessionState) SetSelection(emulator, gameID string) {
	s.LastEmulator = emulator
	s.LastGameID = gameID
}

// RecordLaunch records a launch request and selects the launched game.
func (s *SessionState) RecordLaunch(emulator, gameID, command string, failed bool) {
	s.SetSelection(emulator, gameID)
	s.LastLaunch = &LaunchRecord{
		GameID:    gameID,
		Emulator:  emulator,
		Command:   command,
		Timestamp: time.Now().Unix(),
		Failed:    failed,
	}
}

// LastLaunchTime returns when the last launch happened, or the zero time.
func (s *SessionState) LastLaunchTime() time.Time {
	if s.LastLaunch == nil || s.LastLaunch.Timestamp == 0 {
		return time.Time{}
	}
	return time.Unix(s.LastLaunch.Timestamp, 0)
}
