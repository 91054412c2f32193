package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/retroroam/internal/adapter/output"
	"github.com/jmylchreest/retroroam/internal/core"
	"github.com/jmylchreest/retroroam/internal/launch"
	"github.com/jmylchreest/retroroam/internal/model"
	"github.com/jmylchreest/retroroam/internal/store"
)

var emulatorOpts struct {
	exe           string
	libraryDir    string
	defaultOption string
	workdir       string
	format        string
}

var emulatorCmd = &cobra.Command{
	Use:     "emulator",
	Aliases: []string{"emu"},
	Short:   "Manage emulators",
	Long: `Manage the emulators in the library.

An emulator is identified by its name. Renaming an emulator moves its games
with it; deleting an emulator deletes its games.`,
}

var emulatorAddCmd = &cobra.Command{
	Use:   "add NAME --exe PATH",
	Short: "Add an emulator",
	Long: `Add an emulator.

The working directory defaults to the directory holding the executable.

Examples:
  retroroam emulator add Fuse --exe /usr/bin/fuse --library-dir ~/roms/speccy
  retroroam emulator add DOSBox --exe "C:\Program Files\DOSBox\dosbox.exe" --default-option -noconsole`,
	Args: cobra.ExactArgs(1),
	RunE: runEmulatorAdd,
}

var emulatorListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List emulators",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rows := output.EmulatorRows(getStore().Snapshot())
		return output.FormatEmulators(cmd.OutOrStdout(), outputFormat(emulatorOpts.format), rows)
	},
}

var emulatorShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show an emulator",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmulatorShow,
}

var emulatorRenameCmd = &cobra.Command{
	Use:   "rename OLD NEW",
	Short: "Rename an emulator and move its games",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := getStore()
		if err := s.RenameEmulator(args[0], args[1]); err != nil {
			return fmt.Errorf("rename %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "renamed %s to %s (%d games)\n",
			args[0], args[1], len(s.GamesForEmulator(args[1])))
		return nil
	},
}

var emulatorEditCmd = &cobra.Command{
	Use:   "edit NAME",
	Short: "Change an emulator's executable, library dir, default option or working directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmulatorEdit,
}

var emulatorDeleteCmd = &cobra.Command{
	Use:     "delete NAME",
	Aliases: []string{"rm"},
	Short:   "Delete an emulator and all of its games",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := getStore().DeleteEmulator(args[0])
		if err != nil {
			return fmt.Errorf("delete %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s and %d games\n", args[0], removed)
		return nil
	},
}

var emulatorBrowseCmd = &cobra.Command{
	Use:   "browse NAME",
	Short: "Open an emulator's default library directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		emu, err := findEmulator(args[0])
		if err != nil {
			return err
		}
		return launch.OpenDirectory(emu.DefaultLibraryDir)
	},
}

func init() {
	rootCmd.AddCommand(emulatorCmd)
	emulatorCmd.AddCommand(emulatorAddCmd, emulatorListCmd, emulatorShowCmd, emulatorRenameCmd,
		emulatorEditCmd, emulatorDeleteCmd, emulatorBrowseCmd)

	for _, c := range []*cobra.Command{emulatorAddCmd, emulatorEditCmd} {
		c.Flags().StringVar(&emulatorOpts.exe, "exe", "",
			"Path to the emulator executable")
		c.Flags().StringVar(&emulatorOpts.libraryDir, "library-dir", "",
			"Directory where this emulator's games are usually kept")
		c.Flags().StringVar(&emulatorOpts.defaultOption, "default-option", "",
			"Option appended to new games' options")
		c.Flags().StringVar(&emulatorOpts.workdir, "workdir", "",
			"Working directory for launches (default: the executable's directory)")
	}
	_ = emulatorAddCmd.MarkFlagRequired("exe")

	for _, c := range []*cobra.Command{emulatorListCmd, emulatorShowCmd} {
		c.Flags().StringVarP(&emulatorOpts.format, "format", "f", "",
			"Output format (plain, json, yaml, ids)")
	}
}

func runEmulatorAdd(cmd *cobra.Command, args []string) error {
	workdir := emulatorOpts.workdir
	if !cmd.Flags().Changed("workdir") {
		workdir = core.DefaultWorkingDirectory(emulatorOpts.exe)
	}

	emu, err := getStore().AddEmulator(args[0], emulatorOpts.exe, emulatorOpts.libraryDir,
		emulatorOpts.defaultOption, workdir)
	if err != nil {
		return fmt.Errorf("add %s: %w", args[0], err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "added emulator %s\n", emu.Name)
	return nil
}

func runEmulatorShow(cmd *cobra.Command, args []string) error {
	if _, err := findEmulator(args[0]); err != nil {
		return err
	}

	var row output.EmulatorRow
	for _, r := range output.EmulatorRows(getStore().Snapshot()) {
		if r.Name == args[0] {
			row = r
		}
	}

	format := output.FormatType(emulatorOpts.format)
	if format != "" && format != output.FormatPlain {
		return output.FormatEmulators(cmd.OutOrStdout(), format, []output.EmulatorRow{row})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Name:              %s\n", row.Name)
	fmt.Fprintf(w, "Executable:        %s\n", row.ExecutablePath)
	fmt.Fprintf(w, "Library directory: %s\n", row.DefaultLibraryDir)
	fmt.Fprintf(w, "Default option:    %s\n", row.DefaultOption)
	fmt.Fprintf(w, "Working directory: %s\n", row.WorkingDirectory)
	fmt.Fprintf(w, "Games:             %d\n", row.Games)
	return nil
}

func runEmulatorEdit(cmd *cobra.Command, args []string) error {
	var fields model.EmulatorFields
	flags := cmd.Flags()
	if flags.Changed("exe") {
		fields.ExecutablePath = &emulatorOpts.exe
	}
	if flags.Changed("library-dir") {
		fields.DefaultLibraryDir = &emulatorOpts.libraryDir
	}
	if flags.Changed("default-option") {
		fields.DefaultOption = &emulatorOpts.defaultOption
	}
	if flags.Changed("workdir") {
		fields.WorkingDirectory = &emulatorOpts.workdir
	}
	if fields.IsEmpty() {
		return fmt.Errorf("nothing to change: use --exe, --library-dir, --default-option or --workdir")
	}

	if err := getStore().UpdateEmulatorFields(args[0], fields); err != nil {
		return fmt.Errorf("edit %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "updated emulator %s\n", args[0])
	return nil
}

// findEmulator returns the named emulator or ErrEmulatorNotFound.
func findEmulator(name string) (*model.Emulator, error) {
	emu := getStore().Emulator(name)
	if emu == nil {
		return nil, fmt.Errorf("%q: %w", name, store.ErrEmulatorNotFound)
	}
	return emu, nil
}
