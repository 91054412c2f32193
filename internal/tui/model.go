// Package tui provides the BubbleTea-based terminal user interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jmylchreest/retroroam/internal/config"
	"github.com/jmylchreest/retroroam/internal/core"
	"github.com/jmylchreest/retroroam/internal/launch"
	"github.com/jmylchreest/retroroam/internal/model"
	"github.com/jmylchreest/retroroam/internal/store"
)

// Mode represents the current UI mode.
type Mode int

const (
	ModeList Mode = iota
	ModeDetail
	ModeSearch
	ModeInput
	ModeNotes
	ModeConfirm
	ModeHelp
)

// inputKind says what the single-line input is collecting.
type inputKind int

const (
	inputNone inputKind = iota
	inputGameName
	inputGameFile
	inputRename
	inputOptions
	inputAppendFile
	inputEmulatorName
	inputEmulatorExec
)

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDeleteGame
	confirmDeleteEmulator
)

const statusTimeout = 3 * time.Second

// Model is the main TUI model.
type Model struct {
	// Configuration
	cfg     *config.Config
	store   *store.Store
	invoker launch.Invoker

	// Session state, saved after each launch when statePath is set
	state     *store.SessionState
	statePath string

	// Current mode
	mode Mode

	// Components
	list        list.Model
	viewport    viewport.Model
	searchInput textinput.Model
	input       textinput.Model
	notes       textarea.Model
	help        help.Model

	// Library view
	lib         model.Library
	view        core.View
	emulator    string
	searchQuery string

	// Pending edits
	inputKind     inputKind
	inputPrompt   string
	pendingName   string
	notesTarget   string
	confirmKind   confirmKind
	confirmTarget string
	confirmPrompt string
	quitArmed     bool

	width  int
	height int
	ready  bool

	// Key bindings
	keys KeyMap

	// Status message
	statusMsg string
	statusErr bool

	// Refresh channel subscription
	refreshCh <-chan store.ChangeEvent
}

// gameItem wraps a game for the list component.
type gameItem struct {
	game model.Game
}

func (i gameItem) Title() string {
	return i.game.DisplayName
}

func (i gameItem) Description() string {
	if i.game.Options == "" {
		return "(no options)"
	}
	return i.game.Options
}

func (i gameItem) FilterValue() string {
	return i.game.DisplayName
}

// New creates a new TUI model. The emulator and game recorded in state are
// selected if they still exist.
func New(cfg *config.Config, s *store.Store, invoker launch.Invoker, state *store.SessionState) Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if s == nil {
		s = store.NewStore(nil, store.Options{})
	}
	if state == nil {
		state = store.DefaultSessionState()
	}

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(true)
	l.SetStatusBarItemName("game", "games")
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	searchInput := textinput.New()
	searchInput.Placeholder = "Search..."
	searchInput.CharLimit = 100

	input := textinput.New()
	input.CharLimit = 4096

	notes := textarea.New()
	notes.ShowLineNumbers = false
	notes.Placeholder = "Notes..."
	notes.CharLimit = 0

	h := help.New()
	h.ShowAll = true

	m := Model{
		cfg:         cfg,
		store:       s,
		invoker:     invoker,
		state:       state,
		mode:        ModeList,
		list:        l,
		searchInput: searchInput,
		input:       input,
		notes:       notes,
		help:        h,
		keys:        DefaultKeyMap(),
		emulator:    state.LastEmulator,
		refreshCh:   s.Subscribe(),
	}
	m.reload(state.LastGameID)

	return m
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return m.watchForChanges
}

// watchForChanges waits for the next store change.
func (m Model) watchForChanges() tea.Msg {
	if m.refreshCh == nil {
		return nil
	}
	if _, ok := <-m.refreshCh; !ok {
		return nil
	}
	return refreshMsg{}
}

type refreshMsg struct{}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

// actionResultMsg reports a background action such as a copy.
type actionResultMsg struct {
	done string
	err  error
}

type launchResultMsg struct {
	emulator string
	gameID   string
	name     string
	command  string
	dryRun   bool
	err      error
}

// Selection returns the emulator and game currently selected.
func (m Model) Selection() (emulator, gameID string) {
	return m.emulator, m.selectedID()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case refreshMsg:
		m.reload(m.selectedID())
		return m, m.watchForChanges

	case launchResultMsg:
		return m.handleLaunchResult(msg)

	case actionResultMsg:
		if msg.err != nil {
			return m, m.flash(msg.err.Error(), true)
		}
		return m, m.flash(msg.done, false)

	case statusMsg:
		return m, m.flash(msg.text, msg.isErr)

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	// Update child components
	var cmd tea.Cmd
	switch m.mode {
	case ModeList:
		m.list, cmd = m.list.Update(msg)
	case ModeDetail:
		m.viewport, cmd = m.viewport.Update(msg)
	case ModeSearch:
		m.searchInput, cmd = m.searchInput.Update(msg)
	case ModeInput:
		m.input, cmd = m.input.Update(msg)
	case ModeNotes:
		m.notes, cmd = m.notes.Update(msg)
	}

	return m, cmd
}

// flash shows a status message and schedules its removal.
func (m *Model) flash(text string, isErr bool) tea.Cmd {
	m.statusMsg = text
	m.statusErr = isErr
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func (m *Model) resize() {
	m.list.SetSize(m.width, max(m.height-3, 1))
	m.viewport = viewport.New(m.width, max(m.height-2, 1))
	if m.mode == ModeDetail {
		if game := m.current(); game != nil {
			m.viewport.SetContent(m.renderDetail(*game))
		}
	}
	m.searchInput.Width = max(m.width-30, 10)
	m.input.Width = max(m.width-len(m.inputPrompt)-4, 10)
	m.notes.SetWidth(max(m.width, 20))
	m.notes.SetHeight(max(m.height-3, 3))
	m.help.Width = m.width
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	// Modes that own the keyboard
	switch m.mode {
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeInput:
		return m.handleInputKey(msg)
	case ModeNotes:
		return m.handleNotesKey(msg)
	case ModeConfirm:
		return m.handleConfirmKey(msg)
	}

	// Global keys
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		if m.mode == ModeHelp {
			m.mode = ModeList
		} else {
			m.mode = ModeHelp
		}
		m.quitArmed = false
		return m, nil
	}
	m.quitArmed = false

	switch m.mode {
	case ModeList:
		return m.handleListKey(msg)
	case ModeDetail:
		return m.handleDetailKey(msg)
	case ModeHelp:
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeList
		}
		return m, nil
	}

	return m, nil
}

// quit exits, asking for a second press when there are unsaved changes.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.store.Dirty() && !m.quitArmed {
		m.quitArmed = true
		return m, m.flash("Unsaved changes: press s to save or q again to quit", true)
	}
	return m, tea.Quit
}

// handleListKey handles keys in list mode.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	game := m.current()
	emu := m.view.Emulator

	switch {
	case key.Matches(msg, m.keys.NextEmulator):
		return m.switchEmulator(1), nil

	case key.Matches(msg, m.keys.PrevEmulator):
		return m.switchEmulator(-1), nil

	case key.Matches(msg, m.keys.Launch):
		if game == nil {
			return m, m.flash("No game selected", true)
		}
		return m, m.launch(*game)

	case key.Matches(msg, m.keys.Details):
		if game != nil {
			m.mode = ModeDetail
			m.viewport.SetContent(m.renderDetail(*game))
			m.viewport.GotoTop()
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if game != nil {
			return m, m.copyToClipboard(m.commandFor(*game))
		}
		return m, nil

	case key.Matches(msg, m.keys.Search):
		return m.beginSearch()

	case key.Matches(msg, m.keys.Back):
		if m.searchQuery != "" {
			m.searchQuery = ""
			m.setItems(m.selectedID())
		}
		return m, nil

	case key.Matches(msg, m.keys.AddGame):
		if emu == nil {
			return m, m.flash("Add an emulator first", true)
		}
		return m.beginInput(inputGameName, "New game for "+emu.Name, "", "display name")

	case key.Matches(msg, m.keys.Rename):
		if game != nil {
			return m.beginInput(inputRename, "Rename", game.DisplayName, "display name")
		}
		return m, nil

	case key.Matches(msg, m.keys.EditOptions):
		if game != nil {
			return m.beginInput(inputOptions, "Options", game.Options, "command line options")
		}
		return m, nil

	case key.Matches(msg, m.keys.AddFile):
		if game != nil {
			return m.beginInput(inputAppendFile, "Append file", "", libraryPlaceholder(emu))
		}
		return m, nil

	case key.Matches(msg, m.keys.EditNotes):
		if game != nil {
			return m.beginNotes(*game)
		}
		return m, nil

	case key.Matches(msg, m.keys.DeleteGame):
		if game != nil {
			return m.askConfirm(confirmDeleteGame, game.ID, fmt.Sprintf("Delete %s?", game.DisplayName))
		}
		return m, nil

	case key.Matches(msg, m.keys.AddEmulator):
		return m.beginInput(inputEmulatorName, "New emulator", "", "name")

	case key.Matches(msg, m.keys.DeleteEmulator):
		if emu != nil {
			prompt := fmt.Sprintf("Delete emulator %s and %s?", emu.Name, pluralGames(len(m.view.Games)))
			return m.askConfirm(confirmDeleteEmulator, emu.Name, prompt)
		}
		return m, nil

	case key.Matches(msg, m.keys.Browse):
		if emu != nil {
			return m, browse(emu.DefaultLibraryDir)
		}
		return m, nil

	case key.Matches(msg, m.keys.Save):
		return m.save()

	case key.Matches(msg, m.keys.Reload):
		err := m.store.Hydrate()
		m.reload(m.selectedID())
		if err != nil {
			return m, m.flash("Reload: "+err.Error(), true)
		}
		return m, m.flash("Library reloaded", false)
	}

	// Pass to list
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleDetailKey handles keys in detail mode.
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Details):
		m.mode = ModeList
		return m, nil

	case key.Matches(msg, m.keys.Launch):
		if game := m.current(); game != nil {
			return m, m.launch(*game)
		}
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		if game := m.current(); game != nil {
			return m, m.copyToClipboard(m.commandFor(*game))
		}
		return m, nil
	}

	// Pass to viewport
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) beginSearch() (tea.Model, tea.Cmd) {
	m.searchInput.SetValue("")
	m.searchQuery = ""
	m.setItems(m.selectedID())
	m.mode = ModeSearch
	return m, m.searchInput.Focus()
}

// handleSearchKey handles keys in search mode.
func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeList
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.searchQuery = ""
		m.setItems(m.selectedID())
		return m, nil

	case tea.KeyEnter:
		// Keep the filter and return to the list
		m.mode = ModeList
		m.searchInput.Blur()
		return m, nil

	case tea.KeyUp, tea.KeyDown:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)

	// Live filtering
	m.searchQuery = m.searchInput.Value()
	m.setItems(m.selectedID())

	return m, cmd
}

func (m Model) beginInput(kind inputKind, prompt, value, placeholder string) (tea.Model, tea.Cmd) {
	m.mode = ModeInput
	m.inputKind = kind
	m.inputPrompt = prompt
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Width = max(m.width-len(prompt)-4, 10)
	return m, m.input.Focus()
}

func (m *Model) endInput() {
	m.mode = ModeList
	m.inputKind = inputNone
	m.inputPrompt = ""
	m.input.Blur()
}

// handleInputKey handles keys while a prompt is open.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.endInput()
		m.pendingName = ""
		return m, nil
	case tea.KeyEnter:
		return m.commitInput()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// commitInput applies the value of the open prompt.
func (m Model) commitInput() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	kind := m.inputKind
	m.endInput()

	game := m.current()
	emu := m.view.Emulator

	switch kind {
	case inputGameName:
		if strings.TrimSpace(value) == "" {
			return m, m.flash("Game name cannot be empty", true)
		}
		m.pendingName = value
		return m.beginInput(inputGameFile, "Game file", "", libraryPlaceholder(emu))

	case inputGameFile:
		name := m.pendingName
		m.pendingName = ""
		if emu == nil {
			return m, m.flash("No emulator selected", true)
		}
		options := core.SeedOptions(strings.TrimSpace(value), emu.DefaultOption)
		added, err := m.store.AddGame(name, emu.Name, options, "")
		return m.afterMutation(added.ID, err, "Added "+name)

	case inputRename:
		if game == nil {
			return m, nil
		}
		err := m.store.RenameGame(game.ID, value)
		return m.afterMutation(game.ID, err, "Renamed to "+value)

	case inputOptions:
		if game == nil {
			return m, nil
		}
		err := m.store.UpdateGameFields(game.ID, model.GameFields{Options: &value})
		return m.afterMutation(game.ID, err, "Options updated")

	case inputAppendFile:
		path := strings.TrimSpace(value)
		if game == nil || path == "" {
			return m, nil
		}
		options := core.AppendPathToken(game.Options, path)
		err := m.store.UpdateGameFields(game.ID, model.GameFields{Options: &options})
		return m.afterMutation(game.ID, err, "Added "+path)

	case inputEmulatorName:
		if strings.TrimSpace(value) == "" {
			return m, m.flash("Emulator name cannot be empty", true)
		}
		m.pendingName = value
		return m.beginInput(inputEmulatorExec, "Executable for "+value, "", "path to the emulator")

	case inputEmulatorExec:
		name := m.pendingName
		m.pendingName = ""
		added, err := m.store.AddEmulator(name, value, "", "", core.DefaultWorkingDirectory(value))
		if err == nil {
			m.emulator = added.Name
		}
		return m.afterMutation("", err, "Added emulator "+name)
	}

	return m, nil
}

func (m Model) beginNotes(game model.Game) (tea.Model, tea.Cmd) {
	m.mode = ModeNotes
	m.notesTarget = game.ID
	m.notes.SetValue(game.Notes)
	return m, m.notes.Focus()
}

// handleNotesKey handles keys in the notes editor.
func (m Model) handleNotesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeList
		m.notes.Blur()
		m.notesTarget = ""
		return m, nil

	case tea.KeyCtrlS:
		value := m.notes.Value()
		id := m.notesTarget
		m.mode = ModeList
		m.notes.Blur()
		m.notesTarget = ""
		err := m.store.UpdateGameFields(id, model.GameFields{Notes: &value})
		return m.afterMutation(id, err, "Notes updated")
	}

	var cmd tea.Cmd
	m.notes, cmd = m.notes.Update(msg)
	return m, cmd
}

func (m Model) askConfirm(kind confirmKind, target, prompt string) (tea.Model, tea.Cmd) {
	m.mode = ModeConfirm
	m.confirmKind = kind
	m.confirmTarget = target
	m.confirmPrompt = prompt
	return m, nil
}

// handleConfirmKey runs the pending deletion on y and cancels on anything else.
func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kind, target := m.confirmKind, m.confirmTarget
	m.mode = ModeList
	m.confirmKind = confirmNone
	m.confirmTarget = ""
	m.confirmPrompt = ""

	if s := msg.String(); s != "y" && s != "Y" {
		return m, m.flash("Cancelled", false)
	}

	switch kind {
	case confirmDeleteGame:
		name := target
		if g := m.lib.Game(target); g != nil {
			name = g.DisplayName
		}
		err := m.store.DeleteGame(target)
		return m.afterMutation("", err, "Deleted "+name)

	case confirmDeleteEmulator:
		removed, err := m.store.DeleteEmulator(target)
		return m.afterMutation("", err, fmt.Sprintf("Deleted %s and %s", target, pluralGames(removed)))
	}

	return m, nil
}

// afterMutation refreshes the view and reports the outcome. The store keeps
// in-memory changes even when saving fails, so the view is always rebuilt.
func (m Model) afterMutation(selectID string, err error, done string) (tea.Model, tea.Cmd) {
	if selectID == "" {
		selectID = m.selectedID()
	}
	m.reload(selectID)

	if err != nil {
		var perr *store.PersistenceError
		if errors.As(err, &perr) {
			return m, m.flash("Changed but not saved: "+err.Error(), true)
		}
		return m, m.flash(err.Error(), true)
	}
	return m, m.flash(done, false)
}

func (m Model) save() (tea.Model, tea.Cmd) {
	if err := m.store.Save(); err != nil {
		return m, m.flash("Save failed: "+err.Error(), true)
	}
	m.quitArmed = false
	return m, m.flash("Library saved", false)
}

func (m Model) switchEmulator(step int) Model {
	names := m.view.Emulators
	if len(names) < 2 {
		return m
	}

	i := slices.Index(names, m.emulator)
	i = (i + step + len(names)) % len(names)
	m.emulator = names[i]
	m.searchQuery = ""
	m.reload(m.selectedID())
	return m
}

// reload rebuilds the view from a fresh snapshot, keeping preferID selected
// if it is still one of the current emulator's games.
func (m *Model) reload(preferID string) {
	m.lib = m.store.Snapshot()
	m.view = core.BuildView(m.lib, m.emulator, preferID)

	m.emulator = ""
	if m.view.Emulator != nil {
		m.emulator = m.view.Emulator.Name
	}

	selected := ""
	if m.view.Selected != nil {
		selected = m.view.Selected.ID
	}
	m.setItems(selected)
}

// setItems fills the list with the games matching the search query.
func (m *Model) setItems(selectID string) {
	entries := core.Search(m.view.Games, m.searchQuery)

	items := make([]list.Item, 0, len(entries))
	for _, e := range entries {
		if g := m.lib.Game(e.ID); g != nil {
			items = append(items, gameItem{game: *g})
		}
	}
	m.list.SetItems(items)

	if len(items) == 0 {
		return
	}
	idx := core.IndexOf(entries, selectID)
	if idx < 0 {
		idx = 0
	}
	m.list.Select(idx)
}

// current returns the highlighted game, or nil.
func (m Model) current() *model.Game {
	item, ok := m.list.SelectedItem().(gameItem)
	if !ok {
		return nil
	}
	game := item.game
	return &game
}

func (m Model) selectedID() string {
	if game := m.current(); game != nil {
		return game.ID
	}
	return ""
}

func (m Model) commandFor(game model.Game) string {
	if m.view.Emulator == nil {
		return ""
	}
	return core.BuildCommand(*m.view.Emulator, game)
}

// launch starts the game in the background and reports back.
func (m Model) launch(game model.Game) tea.Cmd {
	emu := m.view.Emulator
	if emu == nil {
		return nil
	}

	result := launchResultMsg{
		emulator: emu.Name,
		gameID:   game.ID,
		name:     game.DisplayName,
		command:  core.BuildCommand(*emu, game),
		dryRun:   m.cfg.Launch.DryRun,
	}
	invoker := m.invoker
	workingDirectory := emu.WorkingDirectory

	return func() tea.Msg {
		if result.dryRun {
			return result
		}
		if invoker == nil {
			result.err = errors.New("no launcher configured")
			return result
		}
		result.err = invoker.Launch(context.Background(), result.command, workingDirectory)
		return result
	}
}

func (m Model) handleLaunchResult(msg launchResultMsg) (tea.Model, tea.Cmd) {
	if msg.dryRun {
		return m, m.flash("Dry run: "+msg.command, false)
	}

	m.state.RecordLaunch(msg.emulator, msg.gameID, msg.command, msg.err != nil)
	if m.statePath != "" {
		if err := store.SaveSessionState(m.statePath, m.state); err != nil {
			zap.L().Debug("failed to save session state", zap.Error(err))
		}
	}

	if msg.err != nil {
		return m, m.flash(msg.err.Error(), true)
	}
	return m, m.flash("Launched "+msg.name, false)
}

// copyToClipboard copies text to the system clipboard.
func (m Model) copyToClipboard(text string) tea.Cmd {
	command := m.cfg.TUI.Clipboard
	return func() tea.Msg {
		if err := copyText(text, command); err != nil {
			return actionResultMsg{err: fmt.Errorf("copy failed: %w", err)}
		}
		return actionResultMsg{done: "Copied command to clipboard"}
	}
}

// browse opens the emulator's library directory.
func browse(dir string) tea.Cmd {
	return func() tea.Msg {
		if err := launch.OpenDirectory(dir); err != nil {
			return actionResultMsg{err: fmt.Errorf("open library dir: %w", err)}
		}
		return actionResultMsg{done: "Opened " + core.UnquotePath(dir)}
	}
}

func libraryPlaceholder(emu *model.Emulator) string {
	if emu != nil && emu.DefaultLibraryDir != "" {
		return core.UnquotePath(emu.DefaultLibraryDir)
	}
	return "path to game file (optional)"
}

func pluralGames(n int) string {
	if n == 1 {
		return "1 game"
	}
	return fmt.Sprintf("%d games", n)
}

// RunOptions configures the TUI.
type RunOptions struct {
	Config     *config.Config
	Store      *store.Store
	Invoker    launch.Invoker
	StatePath  string   // Session state file (empty = not persisted)
	WatchPaths []string // Library documents to watch for changes (empty = no watching)
}

// Run starts the TUI with the given options.
func Run(opts RunOptions) error {
	state := store.DefaultSessionState()
	if opts.StatePath != "" {
		loaded, err := store.LoadSessionState(opts.StatePath)
		if err != nil {
			zap.L().Warn("failed to load session state", zap.Error(err))
		} else {
			state = loaded
		}
	}

	// Start file watcher if paths provided
	var watcher *store.FileWatcher
	if len(opts.WatchPaths) > 0 && opts.Store != nil {
		var err error
		watcher, err = store.NewFileWatcher(opts.Store, opts.WatchPaths...)
		if err != nil {
			zap.L().Warn("failed to create file watcher", zap.Error(err))
		} else if err := watcher.Start(); err != nil {
			zap.L().Warn("failed to start file watcher", zap.Error(err))
		}
	}

	m := New(opts.Config, opts.Store, opts.Invoker, state)
	m.statePath = opts.StatePath
	p := tea.NewProgram(m, tea.WithAltScreen())

	final, err := p.Run()

	if watcher != nil {
		_ = watcher.Stop()
	}

	if fm, ok := final.(Model); ok && opts.StatePath != "" {
		emulator, gameID := fm.Selection()
		state.SetSelection(emulator, gameID)
		if serr := store.SaveSessionState(opts.StatePath, state); serr != nil {
			zap.L().Warn("failed to save session state", zap.Error(serr))
		}
	}

	return err
}
