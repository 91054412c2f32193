package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jmylchreest/retroroam/internal/adapter/output"
	"github.com/jmylchreest/retroroam/internal/core"
	"github.com/jmylchreest/retroroam/internal/launch"
	"github.com/jmylchreest/retroroam/internal/model"
	"github.com/jmylchreest/retroroam/internal/store"
)

var playOpts struct {
	emulator string
	dryRun   bool
	stdin    bool
}

var playCmd = &cobra.Command{
	Use:   "play [GAME]",
	Short: "Launch a game",
	Long: `Launch a game with its emulator.

The command line is the emulator's executable (quoted if it contains spaces)
followed by the game's options, run from the emulator's working directory.
retroroam does not wait for the emulator to exit.

With --stdin, the game is read from the first line of standard input, so the
output of "retroroam game list --format dmenu" can be piped through a picker.

Examples:
  retroroam play Jetpac
  retroroam play 3 --emulator Fuse
  retroroam game list --format dmenu | fuzzel -d | retroroam play --stdin
  retroroam play Doom --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().StringVarP(&playOpts.emulator, "emulator", "e", "",
		"Only match games of this emulator")
	playCmd.Flags().BoolVarP(&playOpts.dryRun, "dry-run", "n", false,
		"Print the command line instead of running it")
	playCmd.Flags().BoolVar(&playOpts.stdin, "stdin", false,
		"Read the game (or a dmenu line) from stdin")
}

func runPlay(cmd *cobra.Command, args []string) error {
	var line string
	switch {
	case playOpts.stdin:
		var err error
		line, err = readSelection(cmd.InOrStdin())
		if err != nil {
			return err
		}
	case len(args) == 1:
		line = args[0]
	default:
		return errors.New("no game given: pass GAME or use --stdin")
	}

	lib := getStore().Snapshot()
	game, err := selectGame(lib, line, playOpts.emulator)
	if err != nil {
		return err
	}

	emu := lib.Emulator(game.Application)
	if emu == nil {
		return fmt.Errorf("%q: %w", game.Application, store.ErrEmulatorNotFound)
	}
	command := core.BuildCommand(*emu, *game)

	if playOpts.dryRun || getConfig().Launch.DryRun {
		fmt.Fprintln(cmd.OutOrStdout(), command)
		return nil
	}

	invoker := launch.NewProcessInvoker(getConfig().Launch.Shell)
	launchErr := invoker.Launch(cmd.Context(), command, emu.WorkingDirectory)

	recordLaunch(emu.Name, game.ID, command, launchErr != nil)

	if launchErr != nil {
		return launchErr
	}
	fmt.Fprintf(cmd.OutOrStdout(), "launched %s\n", game.DisplayName)
	return nil
}

// selectGame resolves a game reference or a line of list output.
func selectGame(lib model.Library, line, emulator string) (*model.Game, error) {
	game, err := resolveGame(lib, line, emulator)
	if err == nil || !errors.Is(err, core.ErrGameNotFound) {
		return game, err
	}

	sel := output.ParseSelection(line, "")
	if sel.Ref == "" || sel.Ref == strings.TrimSpace(line) {
		return nil, err
	}
	// The index counts rows of the list the line came from
	listEmulator := emulator
	if emulator == "" {
		emulator = sel.Emulator
	}

	game, selErr := resolveGame(lib, sel.Ref, emulator)
	if selErr == nil {
		return game, nil
	}
	if sel.Index > 0 {
		entries, listErr := gameEntries(lib, listEmulator)
		if listErr == nil {
			if entry := core.LookupByIndex(entries, sel.Index); entry != nil {
				return lib.Game(entry.ID), nil
			}
		}
	}
	return nil, selErr
}

// readSelection returns the first non-empty line of r.
func readSelection(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read from stdin: %w", err)
	}
	return "", errors.New("nothing selected")
}

// recordLaunch remembers the launch in the session state.
func recordLaunch(emulator, gameID, command string, failed bool) {
	path := getConfig().StatePath()

	state, err := store.LoadSessionState(path)
	if err != nil {
		zap.L().Warn("failed to load session state", zap.Error(err))
		state = store.DefaultSessionState()
	}
	state.RecordLaunch(emulator, gameID, command, failed)

	if err := store.SaveSessionState(path, state); err != nil {
		zap.L().Warn("failed to save session state", zap.Error(err))
	}
}
