package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/retroroam/internal/model"
	"github.com/jmylchreest/retroroam/internal/store"
)

var statusOpts struct {
	format string
}

// LibraryStatus summarises the library and its documents.
type LibraryStatus struct {
	DataDir    string              `json:"data_dir"`
	Emulators  int                 `json:"emulators"`
	Games      int                 `json:"games"`
	Documents  []DocumentStatus    `json:"documents"`
	LoadError  string              `json:"load_error,omitempty"`
	LastLaunch *store.LaunchRecord `json:"last_launch,omitempty"`
	LastGame   string              `json:"last_game,omitempty"`
}

// DocumentStatus describes one library document on disk.
type DocumentStatus struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Exists   bool      `json:"exists"`
	Size     int64     `json:"size,omitempty"`
	Modified time.Time `json:"modified,omitzero"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show library locations, counts and the last launch",
	Long: `Show where the library is stored, how many emulators and games it
holds, whether both documents loaded, and which game was launched last.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOpts.format, "format", "f", "plain",
		"Output format (plain, json)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	state, err := store.LoadSessionState(getConfig().StatePath())
	if err != nil {
		state = store.DefaultSessionState()
	}

	status := buildStatus(getStore().Snapshot(), state, loadErr)

	switch statusOpts.format {
	case "json":
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(status)
	case "plain", "":
		return writeStatus(cmd.OutOrStdout(), status)
	default:
		return fmt.Errorf("unknown status format %q (want plain or json)", statusOpts.format)
	}
}

// buildStatus collects the status report.
func buildStatus(lib model.Library, state *store.SessionState, loadErr error) LibraryStatus {
	status := LibraryStatus{
		DataDir:   getConfig().DataDir(),
		Emulators: len(lib.Emulators),
		Games:     len(lib.Games),
	}

	emulatorsPath, gamesPath := getConfig().EmulatorsPath(), getConfig().GamesPath()
	status.Documents = []DocumentStatus{
		documentStatus(store.CollectionEmulators, emulatorsPath),
		documentStatus(store.CollectionGames, gamesPath),
	}

	if loadErr != nil {
		status.LoadError = loadErr.Error()
	}

	if state != nil && state.LastLaunch != nil {
		status.LastLaunch = state.LastLaunch
		if g := lib.Game(state.LastLaunch.GameID); g != nil {
			status.LastGame = g.DisplayName
		}
	}

	return status
}

func documentStatus(name, path string) DocumentStatus {
	doc := DocumentStatus{Name: name, Path: path}
	info, err := os.Stat(path)
	if err != nil {
		return doc
	}
	doc.Exists = true
	doc.Size = info.Size()
	doc.Modified = info.ModTime()
	return doc
}

func writeStatus(w io.Writer, status LibraryStatus) error {
	fmt.Fprintf(w, "Data directory: %s\n", status.DataDir)
	fmt.Fprintf(w, "Emulators:      %d\n", status.Emulators)
	fmt.Fprintf(w, "Games:          %d\n", status.Games)

	for _, doc := range status.Documents {
		if !doc.Exists {
			fmt.Fprintf(w, "%-15s missing (%s)\n", doc.Name+":", doc.Path)
			continue
		}
		fmt.Fprintf(w, "%-15s %s, saved %s (%s)\n", doc.Name+":",
			humanize.Bytes(uint64(doc.Size)), humanize.Time(doc.Modified), doc.Path)
	}

	if status.LoadError != "" {
		fmt.Fprintf(w, "Load error:     %s\n", status.LoadError)
	}

	if last := status.LastLaunch; last != nil {
		name := status.LastGame
		if name == "" {
			name = last.GameID + " (deleted)"
		}
		when := humanize.Time(time.Unix(last.Timestamp, 0))
		result := ""
		if last.Failed {
			result = ", failed"
		}
		fmt.Fprintf(w, "Last launch:    %s on %s, %s%s\n", name, last.Emulator, when, result)
	}

	return nil
}
