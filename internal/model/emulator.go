// Package model defines the core data structures for retroroam.
package model

import (
	"errors"
	"strings"
)

// Validation errors.
var (
	ErrEmptyName    = errors.New("name cannot be empty")
	ErrEmptyID      = errors.New("game id cannot be empty")
	ErrEmptyAppName = errors.New("application cannot be empty")
)

// Emulator is a catalogued emulator program.
// Name is the identity; games reference it through Game.Application.
type Emulator struct {
	Name              string `json:"name" yaml:"name"`
	ExecutablePath    string `json:"executable_path" yaml:"executable_path"` // stored quoted
	DefaultLibraryDir string `json:"default_library_dir" yaml:"default_library_dir"`
	DefaultOption     string `json:"default_option" yaml:"default_option"`
	WorkingDirectory  string `json:"working_directory" yaml:"working_directory"`
}

// EmulatorFields is a partial update of an Emulator.
// Nil fields keep their previous value.
type EmulatorFields struct {
	ExecutablePath    *string
	DefaultLibraryDir *string
	DefaultOption     *string
	WorkingDirectory  *string
}

// IsEmpty reports whether no field is set.
func (f EmulatorFields) IsEmpty() bool {
	return f.ExecutablePath == nil && f.DefaultLibraryDir == nil &&
		f.DefaultOption == nil && f.WorkingDirectory == nil
}

// Apply returns a copy of e with the set fields replaced.
func (f EmulatorFields) Apply(e Emulator) Emulator {
	if f.ExecutablePath != nil {
		e.ExecutablePath = *f.ExecutablePath
	}
	if f.DefaultLibraryDir != nil {
		e.DefaultLibraryDir = *f.DefaultLibraryDir
	}
	if f.DefaultOption != nil {
		e.DefaultOption = *f.DefaultOption
	}
	if f.WorkingDirectory != nil {
		e.WorkingDirectory = *f.WorkingDirectory
	}
	return e
}

// Validate checks that the emulator has a usable name.
func (e *Emulator) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Executable returns the executable path without surrounding quotes.
func (e *Emulator) Executable() string {
	p := strings.TrimSpace(e.ExecutablePath)
	if len(p) >= 2 && strings.HasPrefix(p, `"`) && strings.HasSuffix(p, `"`) {
		return p[1 : len(p)-1]
	}
	return p
}
