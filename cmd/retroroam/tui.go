package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jmylchreest/retroroam/internal/launch"
	"github.com/jmylchreest/retroroam/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive library browser",
	Long: `Launch the interactive terminal user interface for browsing and launching games.

The TUI provides:
  - Emulator tabs with each emulator's games sorted by name
  - Search by display name
  - Adding, renaming and deleting games and emulators
  - The launch command of the selected game
  - Reloading when the library documents change on disk

Key bindings:
  j/k, ↑/↓       Navigate games
  tab, ←/→       Switch emulator
  enter          Launch the selected game
  i              Show game details
  a / A          Add a game / an emulator
  r, e, n, f     Rename, edit options, edit notes, add a file
  d / D          Delete a game / an emulator
  c              Copy the launch command
  /              Search games
  s              Save the library
  ?              Show help
  q              Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	// Log lines would tear through the alt screen
	if !globalOpts.verbose {
		restore := zap.ReplaceGlobals(zap.NewNop())
		defer restore()
	}

	var watchPaths []string
	if getConfig().TUI.Watch {
		watchPaths = []string{getConfig().EmulatorsPath(), getConfig().GamesPath()}
	}

	err := tui.Run(tui.RunOptions{
		Config:     getConfig(),
		Store:      getStore(),
		Invoker:    launch.NewProcessInvoker(getConfig().Launch.Shell),
		StatePath:  getConfig().StatePath(),
		WatchPaths: watchPaths,
	})
	if err == nil {
		discardUnsaved()
	}
	return err
}

// discardUnsaved closes the store without saving. Leaving the TUI with
// unsaved changes takes a second q, so what is left unsaved is dropped.
func discardUnsaved() {
	s := getStore()
	if s == nil || !s.Dirty() {
		return
	}
	zap.L().Info("discarding unsaved changes")
	_ = s.Close()
	libraryStore = nil
}
