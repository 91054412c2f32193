// Package config handles configuration file loading and parsing.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// AppName names the config and data directories.
const AppName = "retroroam"

// EnvPrefix prefixes environment overrides, e.g. RETROROAM_LIBRARY_DATA_DIR.
const EnvPrefix = "RETROROAM"

// Default configuration values.
const (
	DefaultEmulatorsFile = "emu_data.json"
	DefaultGamesFile     = "games_data.json"
	DefaultFormat        = "plain"
	DefaultDmenuTmpl     = "{{.DisplayName}} | {{.Application}}"
	DefaultFullTmpl      = "{{.DisplayName}} ({{.Application}})\n{{.Command}}\n{{.Notes}}"
)

// Formats lists the accepted output formats.
var Formats = []string{"plain", "dmenu", "json", "yaml", "ids", "template"}

// Config represents the retroroam configuration.
type Config struct {
	Library LibraryConfig `toml:"library" mapstructure:"library"`
	Launch  LaunchConfig  `toml:"launch" mapstructure:"launch"`
	Output  OutputConfig  `toml:"output" mapstructure:"output"`
	TUI     TUIConfig     `toml:"tui" mapstructure:"tui"`
}

// LibraryConfig locates the library documents and sets store policy.
type LibraryConfig struct {
	DataDir         string `toml:"data_dir" mapstructure:"data_dir"` // Empty = XDG data dir
	EmulatorsFile   string `toml:"emulators_file" mapstructure:"emulators_file"`
	GamesFile       string `toml:"games_file" mapstructure:"games_file"`
	UniqueGameNames bool   `toml:"unique_game_names" mapstructure:"unique_game_names"`
	Autosave        bool   `toml:"autosave" mapstructure:"autosave"`
}

// LaunchConfig holds launch settings.
type LaunchConfig struct {
	Shell  string `toml:"shell" mapstructure:"shell"` // Empty = /bin/sh, or CreateProcess on Windows
	DryRun bool   `toml:"dry_run" mapstructure:"dry_run"`
}

// OutputConfig holds list output settings.
type OutputConfig struct {
	Format    string            `toml:"format" mapstructure:"format"`
	Dmenu     string            `toml:"dmenu" mapstructure:"dmenu"`
	Template  string            `toml:"template" mapstructure:"template"`
	Templates map[string]string `toml:"templates" mapstructure:"templates"`
}

// TUIConfig holds TUI-specific settings.
type TUIConfig struct {
	ShowHelp  bool   `toml:"show_help" mapstructure:"show_help"`
	Watch     bool   `toml:"watch" mapstructure:"watch"`         // Reload when the documents change on disk
	Clipboard string `toml:"clipboard" mapstructure:"clipboard"` // Auto-detected if empty
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Library: LibraryConfig{
			DataDir:         "",
			EmulatorsFile:   DefaultEmulatorsFile,
			GamesFile:       DefaultGamesFile,
			UniqueGameNames: true,
			Autosave:        true,
		},
		Launch: LaunchConfig{
			Shell:  "",
			DryRun: false,
		},
		Output: OutputConfig{
			Format:    DefaultFormat,
			Dmenu:     DefaultDmenuTmpl,
			Template:  DefaultFullTmpl,
			Templates: make(map[string]string),
		},
		TUI: TUIConfig{
			ShowHelp:  true,
			Watch:     true,
			Clipboard: "",
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, AppName, "config.toml")
}

// DataPath returns the default data directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, AppName)
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Values come from the defaults, then the file (if it exists), then a .env
// file beside it, then RETROROAM_* environment variables.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	// Existing environment variables win over .env entries
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))

	v := viper.New()
	v.SetConfigType("toml")

	defaults, err := toml.Marshal(DefaultConfig())
	if err != nil {
		return nil, err
	}
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	if err == nil {
		if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if cfg.Output.Templates == nil {
		cfg.Output.Templates = make(map[string]string)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that cannot be fixed up silently.
func (c *Config) Validate() error {
	if !slices.Contains(Formats, c.Output.Format) {
		return fmt.Errorf("unknown output format %q (want one of %s)", c.Output.Format, strings.Join(Formats, ", "))
	}
	if c.Library.EmulatorsFile == "" || c.Library.GamesFile == "" {
		return errors.New("library file names cannot be empty")
	}
	if c.Library.EmulatorsFile == c.Library.GamesFile {
		return errors.New("emulators and games must use different files")
	}
	return nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DataDir returns the configured data directory, or the XDG default.
func (c *Config) DataDir() string {
	if c.Library.DataDir != "" {
		return expandHome(c.Library.DataDir)
	}
	return DataPath()
}

// EmulatorsPath returns the path of the emulators document.
func (c *Config) EmulatorsPath() string {
	return filepath.Join(c.DataDir(), c.Library.EmulatorsFile)
}

// GamesPath returns the path of the games document.
func (c *Config) GamesPath() string {
	return filepath.Join(c.DataDir(), c.Library.GamesFile)
}

// StatePath returns the path of the session state file.
func (c *Config) StatePath() string {
	return filepath.Join(c.DataDir(), "state.json")
}

// GetTemplate returns the template for the given name.
// Custom templates are checked first, then built-in ones.
// Returns empty string if not found.
func (c *Config) GetTemplate(name string) string {
	if tmpl, ok := c.Output.Templates[name]; ok {
		return tmpl
	}

	switch name {
	case "dmenu":
		return c.Output.Dmenu
	case "full", "template":
		return c.Output.Template
	default:
		return ""
	}
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *Config) EnsureDataDir() error {
	path := c.DataDir()
	if path == "" {
		return errors.New("unable to determine data directory")
	}
	return os.MkdirAll(path, 0755)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
