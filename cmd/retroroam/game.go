package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/retroroam/internal/adapter/output"
	"github.com/jmylchreest/retroroam/internal/config"
	"github.com/jmylchreest/retroroam/internal/core"
	"github.com/jmylchreest/retroroam/internal/model"
	"github.com/jmylchreest/retroroam/internal/store"
)

var gameOpts struct {
	emulator string
	file     string
	options  string
	notes    string

	// Output options
	format   string
	field    string
	template string
	search   string
	index    bool
	command  bool
}

var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Manage games",
	Long: `Manage the games in the library.

A game can be referenced by its id, a unique id prefix, its display name, or
its 1-based position in "retroroam game list" (use --emulator to list and
index a single emulator's games).`,
}

var gameAddCmd = &cobra.Command{
	Use:   "add NAME --emulator EMULATOR",
	Short: "Add a game",
	Long: `Add a game run by an existing emulator.

Unless --options is given, the options start with the quoted --file path
followed by the emulator's default option. The new game's id is printed.

Examples:
  retroroam game add Jetpac --emulator Fuse --file ~/roms/speccy/jetpac.z80
  retroroam game add Doom --emulator DOSBox --options "-c doom.exe" --notes "id Software, 1993"`,
	Args: cobra.ExactArgs(1),
	RunE: runGameAdd,
}

var gameListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List games",
	Long: `List games sorted by display name, grouped by emulator.

Examples:
  # Pick a game with fuzzel and launch it
  retroroam game list --format dmenu | fuzzel -d | retroroam play --stdin

  # Ids only, for scripting
  retroroam game list --emulator Fuse --format ids`,
	Args: cobra.NoArgs,
	RunE: runGameList,
}

var gameShowCmd = &cobra.Command{
	Use:   "show GAME",
	Short: "Show a game and its launch command",
	Args:  cobra.ExactArgs(1),
	RunE:  runGameShow,
}

var gameRenameCmd = &cobra.Command{
	Use:   "rename GAME NEW_NAME",
	Short: "Change a game's display name",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		game, err := resolveGame(getStore().Snapshot(), args[0], gameOpts.emulator)
		if err != nil {
			return err
		}
		if err := getStore().RenameGame(game.ID, args[1]); err != nil {
			return fmt.Errorf("rename %s: %w", game.DisplayName, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "renamed %s to %s\n", game.DisplayName, args[1])
		return nil
	},
}

var gameEditCmd = &cobra.Command{
	Use:   "edit GAME",
	Short: "Change a game's options or notes",
	Args:  cobra.ExactArgs(1),
	RunE:  runGameEdit,
}

var gameAddFileCmd = &cobra.Command{
	Use:   "add-file GAME PATH",
	Short: "Append a quoted file path to a game's options",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		game, err := resolveGame(getStore().Snapshot(), args[0], gameOpts.emulator)
		if err != nil {
			return err
		}
		options := core.AppendPathToken(game.Options, args[1])
		if err := getStore().UpdateGameFields(game.ID, model.GameFields{Options: &options}); err != nil {
			return fmt.Errorf("edit %s: %w", game.DisplayName, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), options)
		return nil
	},
}

var gameDeleteCmd = &cobra.Command{
	Use:     "delete GAME",
	Aliases: []string{"rm"},
	Short:   "Delete a game",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		game, err := resolveGame(getStore().Snapshot(), args[0], gameOpts.emulator)
		if err != nil {
			return err
		}
		if err := getStore().DeleteGame(game.ID); err != nil {
			return fmt.Errorf("delete %s: %w", game.DisplayName, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", game.DisplayName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(gameCmd)
	gameCmd.AddCommand(gameAddCmd, gameListCmd, gameShowCmd, gameRenameCmd,
		gameEditCmd, gameAddFileCmd, gameDeleteCmd)

	gameCmd.PersistentFlags().StringVarP(&gameOpts.emulator, "emulator", "e", "",
		"Emulator the game belongs to")

	gameAddCmd.Flags().StringVar(&gameOpts.file, "file", "",
		"Game file, added to the options as a quoted path")
	for _, c := range []*cobra.Command{gameAddCmd, gameEditCmd} {
		c.Flags().StringVar(&gameOpts.options, "options", "",
			"Command line options passed to the emulator")
		c.Flags().StringVar(&gameOpts.notes, "notes", "",
			"Free-form notes")
	}
	_ = gameAddCmd.MarkFlagRequired("emulator")

	for _, c := range []*cobra.Command{gameListCmd, gameShowCmd} {
		c.Flags().StringVarP(&gameOpts.format, "format", "f", "",
			"Output format (plain, dmenu, json, yaml, ids, template)")
		c.Flags().StringVar(&gameOpts.template, "template", "",
			"Go template, or the name of a configured template")
	}
	gameListCmd.Flags().StringVarP(&gameOpts.search, "search", "s", "",
		"Only games whose name contains this text (case-insensitive)")
	gameListCmd.Flags().BoolVar(&gameOpts.index, "index", false,
		"Prefix each entry with its 1-based index")
	gameListCmd.Flags().BoolVar(&gameOpts.command, "command", false,
		"Include the launch command (plain format)")
	gameShowCmd.Flags().StringVar(&gameOpts.field, "field", "",
		"Output a single field (id, name, emulator, options, notes, command, all)")
}

func runGameAdd(cmd *cobra.Command, args []string) error {
	emu, err := findEmulator(gameOpts.emulator)
	if err != nil {
		return err
	}

	options := core.SeedOptions(gameOpts.file, emu.DefaultOption)
	if cmd.Flags().Changed("options") {
		options = core.SeedOptions(gameOpts.file, gameOpts.options)
	}

	game, err := getStore().AddGame(args[0], emu.Name, options, gameOpts.notes)
	if err != nil {
		return fmt.Errorf("add %s: %w", args[0], err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), game.ID)
	return nil
}

func runGameList(cmd *cobra.Command, args []string) error {
	lib := getStore().Snapshot()

	entries, err := gameEntries(lib, gameOpts.emulator)
	if err != nil {
		return err
	}
	entries = core.Search(entries, gameOpts.search)

	formatter, err := createFormatter(outputFormat(gameOpts.format))
	if err != nil {
		return err
	}
	return formatter.Format(cmd.OutOrStdout(), output.GameRows(lib, entries))
}

func runGameShow(cmd *cobra.Command, args []string) error {
	lib := getStore().Snapshot()

	game, err := resolveGame(lib, args[0], gameOpts.emulator)
	if err != nil {
		return err
	}
	rows := output.GameRows(lib, []core.GameEntry{{ID: game.ID, DisplayName: game.DisplayName}})

	if gameOpts.field != "" {
		fmt.Fprintln(cmd.OutOrStdout(), output.FormatField(&rows[0], gameOpts.field))
		return nil
	}

	format := output.FormatType(gameOpts.format)
	if format == "" || format == output.FormatDmenu {
		format = output.FormatPlain
	}
	gameOpts.command = true

	formatter, err := createFormatter(format)
	if err != nil {
		return err
	}
	return formatter.Format(cmd.OutOrStdout(), rows)
}

func runGameEdit(cmd *cobra.Command, args []string) error {
	game, err := resolveGame(getStore().Snapshot(), args[0], gameOpts.emulator)
	if err != nil {
		return err
	}

	var fields model.GameFields
	if cmd.Flags().Changed("options") {
		fields.Options = &gameOpts.options
	}
	if cmd.Flags().Changed("notes") {
		fields.Notes = &gameOpts.notes
	}
	if fields.IsEmpty() {
		return fmt.Errorf("nothing to change: use --options or --notes")
	}

	if err := getStore().UpdateGameFields(game.ID, fields); err != nil {
		return fmt.Errorf("edit %s: %w", game.DisplayName, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", game.DisplayName)
	return nil
}

// gameEntries lists one emulator's games, or every game grouped by emulator
// name when emulator is empty.
func gameEntries(lib model.Library, emulator string) ([]core.GameEntry, error) {
	if emulator != "" {
		if lib.Emulator(emulator) == nil {
			return nil, fmt.Errorf("%q: %w", emulator, store.ErrEmulatorNotFound)
		}
		return core.GamesForEmulator(lib.Games, emulator), nil
	}

	entries := make([]core.GameEntry, 0, len(lib.Games))
	for _, name := range core.EmulatorNames(lib.Emulators) {
		entries = append(entries, core.GamesForEmulator(lib.Games, name)...)
	}
	return entries, nil
}

// resolveGame finds a game by id, id prefix or name, falling back to a
// 1-based index into the game list.
func resolveGame(lib model.Library, ref, emulator string) (*model.Game, error) {
	game, err := core.LookupGame(lib, ref, emulator)
	if err == nil || !errors.Is(err, core.ErrGameNotFound) {
		return game, err
	}

	index, convErr := strconv.Atoi(ref)
	if convErr != nil || index <= 0 {
		return nil, err
	}
	entries, listErr := gameEntries(lib, emulator)
	if listErr != nil {
		return nil, listErr
	}
	entry := core.LookupByIndex(entries, index)
	if entry == nil {
		return nil, fmt.Errorf("no game at index %d: %w", index, core.ErrGameNotFound)
	}
	return lib.Game(entry.ID), nil
}

// createFormatter creates the game formatter for format.
func createFormatter(format output.FormatType) (output.Formatter, error) {
	opts := output.DefaultFormatterOptions()
	opts.ShowIndex = gameOpts.index
	opts.ShowCommand = gameOpts.command
	opts.ShowEmulator = gameOpts.emulator == ""

	tmpl := gameOpts.template
	if tmpl != "" && cfg != nil {
		// A configured template name
		if named := cfg.GetTemplate(tmpl); named != "" {
			tmpl = named
		}
	}
	if tmpl == "" && cfg != nil {
		switch format {
		case output.FormatTemplate:
			tmpl = cfg.GetTemplate("template")
		case output.FormatDmenu:
			if cfg.Output.Dmenu != config.DefaultDmenuTmpl {
				tmpl = cfg.Output.Dmenu
			}
		}
	}
	if tmpl != "" && format != output.FormatDmenu && format != output.FormatTemplate && format != output.FormatPlain {
		return nil, fmt.Errorf("--template cannot be used with %s output", format)
	}
	opts.Template = tmpl

	return output.NewFormatter(format, opts)
}
