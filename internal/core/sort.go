package core

import (
	"sort"

	"github.com/jmylchreest/retroroam/internal/model"
)

// SortEntries sorts entries by display name in place.
// The comparison is ordinal and case-sensitive; equal names keep their order.
func SortEntries(entries []GameEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].DisplayName < entries[j].DisplayName
	})
}

// EmulatorNames returns the emulator names sorted ascending.
func EmulatorNames(emulators []model.Emulator) []string {
	names := make([]string, 0, len(emulators))
	for _, e := range emulators {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}

// SortEmulators returns a copy of emulators sorted by name.
func SortEmulators(emulators []model.Emulator) []model.Emulator {
	result := make([]model.Emulator, len(emulators))
	copy(result, emulators)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}
