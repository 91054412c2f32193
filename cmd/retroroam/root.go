// Package main provides the CLI entrypoint for retroroam.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jmylchreest/retroroam/internal/adapter/output"
	"github.com/jmylchreest/retroroam/internal/config"
	"github.com/jmylchreest/retroroam/internal/logger"
	"github.com/jmylchreest/retroroam/internal/store"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// annotationNoLibrary marks commands that run without loading the library.
const annotationNoLibrary = "retroroam/no-library"

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		dataDir    string
		logFormat  string
	}

	// libraryStore is the global store instance
	libraryStore *store.Store
	persistence  *store.JSONPersistence
	loadErr      error

	restoreLogger func()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "retroroam",
	Short: "Catalogue and launch retro games through their emulators",
	Long: `retroroam keeps a library of emulators and the games they run, and
launches a game by running its emulator with the game's options.

The library lives in two JSON documents (emu_data.json and games_data.json)
in the data directory.

Running retroroam without a subcommand launches the interactive TUI.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogger(); err != nil {
			return err
		}

		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if globalOpts.dataDir != "" {
			cfg.Library.DataDir = globalOpts.dataDir
		}

		if skipLibrary(cmd) {
			return nil
		}
		return openLibrary()
	},
	// Default to TUI when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// The library is saved and closed even when the command fails; cobra skips
// post-run hooks after an error.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		zap.L().Debug("command failed", zap.Error(err))
	}

	if closeErr := closeLibrary(); closeErr != nil {
		fmt.Fprintln(os.Stderr, "Error:", closeErr)
		err = errors.Join(err, closeErr)
	}
	if restoreLogger != nil {
		restoreLogger()
	}

	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/retroroam/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.dataDir, "data-dir", "",
		"Directory holding the library documents (default: ~/.local/share/retroroam)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.logFormat, "log-format", "console",
		"Log encoding (console, json)")
}

// setupLogger installs the global zap logger.
func setupLogger() error {
	level := "warn"
	if globalOpts.verbose {
		level = "debug"
	}

	restore, err := logger.Install(logger.Config{Level: level, Format: globalOpts.logFormat})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	restoreLogger = restore
	return nil
}

// openLibrary builds the store over the configured documents and loads them.
func openLibrary() error {
	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	persistence = store.NewJSONPersistence(cfg.EmulatorsPath(), cfg.GamesPath())
	libraryStore = store.NewStore(persistence, store.Options{
		UniqueGameNames: cfg.Library.UniqueGameNames,
		ManualSave:      !cfg.Library.Autosave,
	})

	emulatorsExist, gamesExist := persistence.Exists()
	switch {
	case !emulatorsExist && !gamesExist:
		zap.L().Info("no library found, starting empty", zap.String("dir", cfg.DataDir()))
	case !gamesExist:
		zap.L().Warn("games document is missing, starting with no games", zap.String("path", cfg.GamesPath()))
	}

	loadErr = libraryStore.Hydrate()
	if loadErr != nil {
		zap.L().Warn("failed to load library", zap.Error(loadErr))
	}

	emulators, games := libraryStore.Count()
	zap.L().Debug("library loaded", zap.Int("emulators", emulators), zap.Int("games", games))
	return nil
}

// closeLibrary saves unsaved changes and closes the store.
// CLI edits are always written, whatever the autosave setting.
func closeLibrary() error {
	if libraryStore == nil {
		return nil
	}
	defer func() { libraryStore = nil }()

	var saveErr error
	if libraryStore.Dirty() {
		saveErr = libraryStore.Save()
	}
	return errors.Join(saveErr, libraryStore.Close())
}

func skipLibrary(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationNoLibrary] == "true" {
			return true
		}
	}
	return false
}

// getStore returns the global store instance.
func getStore() *store.Store {
	return libraryStore
}

// getConfig returns the global config instance.
func getConfig() *config.Config {
	return cfg
}

// outputFormat returns the --format flag value, or the configured default.
func outputFormat(flag string) output.FormatType {
	if flag != "" {
		return output.FormatType(flag)
	}
	if cfg != nil && cfg.Output.Format != "" {
		return output.FormatType(cfg.Output.Format)
	}
	return output.FormatPlain
}
