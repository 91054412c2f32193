// Package core provides filtering, selection, lookup and command synthesis
// over library snapshots. Functions here are pure: they never touch the store.
package core

import (
	"strings"

	"github.com/jmylchreest/retroroam/internal/model"
)

// GameEntry is one row of a filtered game list.
type GameEntry struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"display_name"`
}

// GamesForEmulator returns the games whose application is name, sorted by
// display name. Games with the same display name keep their input order.
func GamesForEmulator(games []model.Game, name string) []GameEntry {
	result := make([]GameEntry, 0)
	for _, g := range games {
		if g.Application == name {
			result = append(result, GameEntry{ID: g.ID, DisplayName: g.DisplayName})
		}
	}

	SortEntries(result)
	return result
}

// ResolveSelection keeps previousID selected if it is still a candidate,
// otherwise picks the first candidate. Returns "" when there are none.
func ResolveSelection(previousID string, candidates []GameEntry) string {
	if len(candidates) == 0 {
		return ""
	}
	if previousID != "" {
		for _, c := range candidates {
			if c.ID == previousID {
				return previousID
			}
		}
	}
	return candidates[0].ID
}

// ResolveEmulator keeps previous if it is one of names, otherwise returns the
// first name. names must already be sorted.
func ResolveEmulator(names []string, previous string) string {
	if len(names) == 0 {
		return ""
	}
	for _, n := range names {
		if n == previous {
			return previous
		}
	}
	return names[0]
}

// IndexOf returns the position of id in entries, or -1.
func IndexOf(entries []GameEntry, id string) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Search keeps entries whose display name contains term (case-insensitive).
func Search(entries []GameEntry, term string) []GameEntry {
	if term == "" {
		return entries
	}

	term = strings.ToLower(term)
	var result []GameEntry

	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.DisplayName), term) {
			result = append(result, e)
		}
	}

	return result
}
