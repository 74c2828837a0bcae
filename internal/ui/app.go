package ui

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/five82/vsmbar/internal/controller"
	"github.com/five82/vsmbar/internal/corpus"
	"github.com/five82/vsmbar/internal/history"
	"github.com/five82/vsmbar/internal/hotkey"
	"github.com/five82/vsmbar/internal/prefs"
	"github.com/five82/vsmbar/internal/view"
	"github.com/five82/vsmbar/internal/vsm"
)

// Options configures the UI. Controller is required.
type Options struct {
	Context    context.Context
	Controller *controller.Controller
	History    *history.Store
	Watcher    *corpus.Watcher
	Toggle     *hotkey.Toggle

	// Activations delivers OS hotkey presses. Nil when the global hotkey
	// could not be registered.
	Activations <-chan struct{}

	ThemeName string
	PrefsPath string
	LogPath   string
	Logger    *log.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx         context.Context
	ctrl        *controller.Controller
	history     *history.Store
	watcher     *corpus.Watcher
	toggle      *hotkey.Toggle
	activations <-chan struct{}
	prefsPath   string
	logPath     string
	log         *log.Logger

	// UI state
	theme  Theme
	keys   keyMap
	width  int
	height int
	ready  bool

	// Widgets
	dirInput   textinput.Model
	queryInput textinput.Model
	spinner    spinner.Model
	spinning   bool
	results    viewport.Model

	// Local corpus preview
	statsRoot string
	stats     *corpus.Stats
	statsErr  string
	stale     bool

	// Overlays
	showHelp bool
	browsing bool
	picker   filepicker.Model
	showLogs bool
	logView  viewport.Model
	logRaw   []string
	logErr   string

	// Status line
	notice   string
	noticeID int
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	toggle := opts.Toggle
	if toggle == nil {
		toggle = hotkey.NewToggle(true)
	}

	theme := GetTheme(themeName)
	m := Model{
		ctx:         ctx,
		ctrl:        opts.Controller,
		history:     opts.History,
		watcher:     opts.Watcher,
		toggle:      toggle,
		activations: opts.Activations,
		prefsPath:   prefsPath,
		logPath:     opts.LogPath,
		log:         logger,
		theme:       theme,
		keys:        DefaultKeyMap(),
		dirInput:    newInput("/path/to/corpus", 4096),
		queryInput:  newInput("search the indexed documents", 1024),
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		results:     viewport.New(0, 0),
		logView:     viewport.New(0, 0),
	}
	m.spinning = m.ctrl.State().Busy()
	m.applyTheme()
	m.syncFocus()
	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = "› "
	in.CharLimit = limit
	in.ShowSuggestions = true
	return in
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		waitForToggle(m.activations),
		waitForCorpusChange(m.watcher),
		loadHistory(m.ctx, m.history, history.Corpus),
		loadHistory(m.ctx, m.history, history.Query),
	}
	if cmd := m.ctrl.Start(); cmd != nil {
		cmds = append(cmds, cmd, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		if m.browsing {
			return m, m.sizePicker()
		}
		return m, nil

	case toggleMsg:
		return m.handleToggle(), waitForToggle(m.activations)

	case controller.ResponseMsg:
		return m.handleResponse(msg)

	case spinner.TickMsg:
		if !m.ctrl.State().Busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case statsMsg:
		m.handleStats(msg)
		return m, nil

	case corpusChangedMsg:
		var cmds []tea.Cmd
		if msg.root == m.ctrl.State().Indexed {
			if !m.stale {
				m.log.Info("corpus changed since indexing", "dir", msg.root)
			}
			m.stale = true
			cmds = append(cmds, m.rescan(msg.root))
		}
		cmds = append(cmds, waitForCorpusChange(m.watcher))
		return m, tea.Batch(cmds...)

	case historyMsg:
		switch msg.kind {
		case history.Corpus:
			m.dirInput.SetSuggestions(msg.values)
		case history.Query:
			m.queryInput.SetSuggestions(msg.values)
		}
		return m, nil

	case logTailMsg:
		m.handleLogTail(msg)
		return m, nil

	case noticeMsg:
		return m, m.setNotice(msg.text)

	case clearNoticeMsg:
		if msg.id == m.noticeID {
			m.notice = ""
		}
		return m, nil
	}

	// Directory listings and other picker traffic.
	if m.browsing {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.dirInput, cmd = m.dirInput.Update(msg)
	cmds = append(cmds, cmd)
	m.queryInput, cmd = m.queryInput.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.toggle.Visible() {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}
	if m.browsing {
		return m.renderBrowser()
	}
	if m.showLogs {
		return m.renderLogs()
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Hotkey):
		return m.handleToggle(), nil
	}

	// Hidden: nothing else reaches the overlay.
	if !m.toggle.Visible() {
		return m, nil
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	if m.browsing {
		return m.handleBrowseKey(msg)
	}
	if m.showLogs {
		return m.handleLogsKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.applyTheme()
		return m, m.savePrefs()

	case key.Matches(msg, m.keys.ToggleBackend):
		return m.switchBackend()

	case key.Matches(msg, m.keys.Dismiss):
		m.ctrl.Dismiss()
		return m, nil

	case key.Matches(msg, m.keys.Diagnostics):
		m.showLogs = true
		m.layout()
		return m, readLogTail(m.logPath)

	case key.Matches(msg, m.keys.Browse):
		if !m.ctrl.BrowseAllowed() {
			return m, nil
		}
		return m.openBrowser()

	case key.Matches(msg, m.keys.Escape):
		return m.handleEscape(), nil

	case key.Matches(msg, m.keys.Submit):
		return m.handleSubmit()
	}

	snap := m.ctrl.State()
	if snap.ShowResults() && isScrollKey(msg, m.keys) {
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch hotkey.FocusFor(snap.Base) {
	case hotkey.FieldDirectory:
		if snap.State == view.CorpusEntry {
			before := m.dirInput.Value()
			m.dirInput, cmd = m.dirInput.Update(msg)
			if m.dirInput.Value() != before {
				m.clearStats()
			}
		}
	case hotkey.FieldQuery:
		m.queryInput, cmd = m.queryInput.Update(msg)
	}
	return m, cmd
}

// handleToggle flips visibility and focuses the active field on show.
func (m Model) handleToggle() Model {
	act := m.toggle.Activate(m.ctrl.State().Base)
	m.log.Debug("overlay toggled", "visible", act.Visible, "focus", act.Focus)
	if act.Visible {
		m.focus(act.Focus)
	}
	return m
}

// handleSubmit routes enter to the transition the state allows.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	snap := m.ctrl.State()
	switch snap.State {
	case view.Handshake:
		if cmd := m.ctrl.Retry(); cmd != nil {
			return m, m.issued(cmd)
		}
		return m, nil

	case view.CorpusEntry, view.Loading:
		dir := m.dirInput.Value()
		cmd, err := m.ctrl.SubmitDirectory(dir)
		if err != nil {
			return m, m.submitRejected(err)
		}
		cmds := []tea.Cmd{m.issued(cmd)}
		if m.ctrl.Backend() == vsm.Local {
			cmds = append(cmds, m.rescan(strings.TrimSpace(dir)))
		}
		m.syncFocus()
		return m, tea.Batch(cmds...)

	case view.QueryEntry, view.QueryLoading, view.Results:
		cmd, err := m.ctrl.SubmitQuery(m.queryInput.Value())
		if err != nil {
			return m, m.submitRejected(err)
		}
		m.results.SetContent("")
		return m, m.issued(cmd)
	}
	return m, nil
}

func (m *Model) submitRejected(err error) tea.Cmd {
	if errors.Is(err, view.ErrEmptySubmission) {
		return nil
	}
	m.log.Debug("submission rejected", "error", err)
	return nil
}

// issued starts the spinner for a newly issued request.
func (m *Model) issued(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	if m.spinning {
		return cmd
	}
	m.spinning = true
	return tea.Batch(cmd, m.spinner.Tick)
}

// handleResponse applies a resolved request and reacts to the transition.
func (m Model) handleResponse(msg controller.ResponseMsg) (tea.Model, tea.Cmd) {
	event := m.ctrl.Apply(msg)
	var cmds []tea.Cmd

	switch event {
	case controller.EventIndexBuilt:
		snap := m.ctrl.State()
		m.queryInput.Reset()
		cmds = append(cmds, recordHistory(m.ctx, m.history, history.Corpus, snap.Indexed))
		if m.ctrl.Backend() == vsm.Local {
			m.stale = false
			m.watch(snap.Indexed)
			cmds = append(cmds, m.rescan(snap.Indexed))
		}

	case controller.EventResults:
		snap := m.ctrl.State()
		m.setResults(snap)
		cmds = append(cmds, recordHistory(m.ctx, m.history, history.Query, snap.Query))

	case controller.EventFailed:
		if m.ctrl.State().State == view.CorpusEntry {
			m.dirInput.SetValue(m.ctrl.State().Directory)
			m.dirInput.CursorEnd()
		}
	}

	m.syncFocus()
	return m, tea.Batch(cmds...)
}

// handleEscape closes the session and returns to corpus entry.
func (m Model) handleEscape() Model {
	from := m.ctrl.State().State
	if !m.ctrl.Escape() {
		return m
	}
	if from != view.CorpusEntry {
		m.dirInput.Reset()
		m.queryInput.Reset()
		m.results.SetContent("")
		m.clearStats()
		m.stale = false
		m.watch("")
	}
	m.syncFocus()
	return m
}

// switchBackend toggles local/hosted and persists the choice.
func (m Model) switchBackend() (tea.Model, tea.Cmd) {
	cmd, err := m.ctrl.ToggleBackend()
	if err != nil {
		return m, m.setNotice(err.Error())
	}
	m.dirInput.Reset()
	m.queryInput.Reset()
	m.results.SetContent("")
	m.clearStats()
	m.stale = false
	m.watch("")
	m.syncFocus()
	return m, tea.Batch(m.issued(cmd), m.savePrefs())
}

// syncFocus focuses the input belonging to the active base screen.
func (m *Model) syncFocus() {
	snap := m.ctrl.State()
	field := hotkey.FocusFor(snap.Base)
	if snap.Busy() && field == hotkey.FieldDirectory {
		field = hotkey.FieldNone
	}
	m.focus(field)
}

func (m *Model) focus(field hotkey.Field) {
	switch field {
	case hotkey.FieldDirectory:
		m.queryInput.Blur()
		m.dirInput.Focus()
	case hotkey.FieldQuery:
		m.dirInput.Blur()
		m.queryInput.Focus()
	default:
		m.dirInput.Blur()
		m.queryInput.Blur()
	}
}

// watch points the corpus watcher at root; empty stops watching.
func (m *Model) watch(root string) {
	if m.watcher == nil {
		return
	}
	if err := m.watcher.Watch(root); err != nil {
		m.log.Warn("corpus watch failed", "dir", root, "error", err)
	}
}

func (m *Model) rescan(root string) tea.Cmd {
	if root == "" {
		return nil
	}
	m.statsRoot = root
	return scanCorpus(m.ctx, root)
}

func (m *Model) handleStats(msg statsMsg) {
	if msg.root != m.statsRoot {
		return
	}
	if msg.err != nil {
		m.stats = nil
		m.statsErr = msg.err.Error()
		m.log.Debug("corpus scan failed", "dir", msg.root, "error", msg.err)
		return
	}
	stats := msg.stats
	m.stats = &stats
	m.statsErr = ""
}

func (m *Model) clearStats() {
	m.statsRoot = ""
	m.stats = nil
	m.statsErr = ""
}

// savePrefs persists the theme and backend.
func (m *Model) savePrefs() tea.Cmd {
	if m.prefsPath == "" {
		return nil
	}
	p := prefs.Prefs{Theme: m.theme.Name, Backend: string(m.ctrl.Backend())}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.log.Warn("save prefs failed", "error", err)
		return m.setNotice("could not save preferences")
	}
	return nil
}

func (m *Model) setNotice(text string) tea.Cmd {
	m.notice = text
	m.noticeID++
	if text == "" {
		return nil
	}
	return clearNoticeAfter(NoticeDuration, m.noticeID)
}

// applyTheme restyles the widgets for the current theme.
func (m *Model) applyTheme() {
	styles := m.theme.Styles()
	for _, in := range []*textinput.Model{&m.dirInput, &m.queryInput} {
		in.PromptStyle = styles.AccentText
		in.TextStyle = styles.Text
		in.PlaceholderStyle = styles.FaintText
		in.CompletionStyle = styles.FaintText
		in.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent))
	}
	m.spinner.Style = styles.AccentText
	if m.showLogs {
		m.handleLogTail(logTailMsg{lines: m.logRaw})
	}
	if snap := m.ctrl.State(); snap.ShowResults() {
		m.setResults(snap)
	}
}

// layout sizes widgets for the current window.
func (m *Model) layout() {
	width := m.panelWidth()
	inner := maxInt(width-6, 10)
	m.dirInput.Width = inner - 2
	m.queryInput.Width = inner - 2

	m.results.Width = inner
	m.results.Height = maxInt(m.height-resultsChrome, 3)

	m.logView.Width = maxInt(m.width-4, 10)
	m.logView.Height = maxInt(m.height-6, 3)

	if snap := m.ctrl.State(); snap.ShowResults() {
		m.setResults(snap)
	}
}

// panelWidth is the width of the main panels.
func (m Model) panelWidth() int {
	if m.width <= 0 {
		return LayoutMaxPanelWidth
	}
	if m.width > LayoutMaxPanelWidth {
		return LayoutMaxPanelWidth
	}
	return m.width
}

// renderMain renders the overlay.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	if banner := m.renderBanner(); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n")
	}

	b.WriteString(m.renderContent())

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.Styles().WarningText.Render(truncate(m.notice, m.width)))
	}

	return b.String()
}

func isScrollKey(msg tea.KeyMsg, k keyMap) bool {
	return key.Matches(msg, k.Up, k.Down, k.PageUp, k.PageDown)
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
