package core

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/jmylchreest/retroroam/internal/model"
)

// BuildCommand returns the launch command line for a game run by an emulator:
// the executable (quoted if it needs it), one space, then the options verbatim.
// The result is not validated or escaped any further.
func BuildCommand(emu model.Emulator, game model.Game) string {
	return QuoteIfNeeded(emu.ExecutablePath) + " " + game.Options
}

// AppendPathToken appends a quoted path token to an options string.
// The path is neither checked nor deduplicated.
func AppendPathToken(options, path string) string {
	return options + ` "` + path + `"`
}

// SeedOptions returns the initial options for a new game: the picked game file
// quoted, followed by the emulator's default option. Either part may be empty.
func SeedOptions(gamePath, defaultOption string) string {
	var options string
	if gamePath != "" {
		options = AppendPathToken("", gamePath)
	}
	if defaultOption != "" {
		options += " " + defaultOption
	}
	return strings.TrimSpace(options)
}

// DefaultWorkingDirectory returns the directory holding an executable, used as
// a new emulator's working directory when none is given.
func DefaultWorkingDirectory(executablePath string) string {
	path := UnquotePath(strings.TrimSpace(executablePath))
	if path == "" {
		return ""
	}
	return filepath.Dir(path)
}

// QuotePath wraps path in double quotes unless it is already quoted or empty.
func QuotePath(path string) string {
	if path == "" || isQuoted(path) {
		return path
	}
	return `"` + path + `"`
}

// QuoteIfNeeded quotes path only if it contains whitespace and is not quoted.
func QuoteIfNeeded(path string) string {
	if isQuoted(path) || !strings.ContainsFunc(path, unicode.IsSpace) {
		return path
	}
	return `"` + path + `"`
}

// UnquotePath strips one pair of surrounding double quotes.
func UnquotePath(path string) string {
	if isQuoted(path) {
		return path[1 : len(path)-1]
	}
	return path
}

func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"'
}
