// Package ui provides the Bubble Tea TUI for homeclip.
package ui

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/homeclip/internal/autosave"
	"github.com/five82/homeclip/internal/expiry"
	"github.com/five82/homeclip/internal/files"
	"github.com/five82/homeclip/internal/homeclip"
	"github.com/five82/homeclip/internal/prefs"
	"github.com/five82/homeclip/internal/state"
	"github.com/five82/homeclip/internal/status"
	"github.com/five82/homeclip/internal/visibility"
)

// Pane identifies the focused pane.
type Pane int

const (
	PaneEditor Pane = iota
	PaneFiles
)

// Options configures the UI.
type Options struct {
	Context     context.Context
	Server      string
	Store       *state.Store
	Status      *status.Controller
	Scheduler   *autosave.Scheduler
	Coordinator *visibility.Coordinator
	Files       *files.Registry
	Countdowns  *expiry.Countdowns
	Changed     <-chan struct{}
	DownloadDir string
	ThemeName   string
	PrefsPath   string
	Logger      *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx         context.Context
	server      string
	store       *state.Store
	status      *status.Controller
	scheduler   *autosave.Scheduler
	coordinator *visibility.Coordinator
	files       *files.Registry
	countdowns  *expiry.Countdowns
	changed     <-chan struct{}
	downloadDir string
	prefsPath   string
	logger      *slog.Logger

	// UI state
	keys   keyMap
	help   help.Model
	theme  Theme
	focus  Pane
	width  int
	height int
	ready  bool

	// Data state
	snapshot   state.Snapshot
	statusSnap status.Snapshot

	// Editor and preview
	editor      textarea.Model
	editorRev   uint64 // store revision the editor text reflects
	preview     viewport.Model
	showPreview bool

	// Files pane
	selected int

	// Overlays
	showHelp bool
	modal    Modal
	notice   string // one-line local notice (clipboard, prefs)
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = prefs.ThemeDark
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	editor := textarea.New()
	editor.Placeholder = "Start typing..."
	editor.ShowLineNumbers = false
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.Focus()

	m := Model{
		ctx:         ctx,
		server:      opts.Server,
		store:       opts.Store,
		status:      opts.Status,
		scheduler:   opts.Scheduler,
		coordinator: opts.Coordinator,
		files:       opts.Files,
		countdowns:  opts.Countdowns,
		changed:     opts.Changed,
		downloadDir: opts.DownloadDir,
		prefsPath:   prefsPath,
		logger:      logger,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		theme:       GetTheme(themeName),
		editor:      editor,
		preview:     viewport.New(0, 0),
	}
	if m.store != nil {
		m.syncEditor()
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textarea.Blink,
		listenCmd(m.changed),
		clockCmd(),
	}
	if m.coordinator != nil {
		cmds = append(cmds, reloadCmd(m.ctx, m.coordinator, false))
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
		return m, nil

	case tea.BlurMsg:
		m.hide("blur")
		return m, nil

	case tea.FocusMsg:
		return m, reloadCmd(m.ctx, m.coordinator, true)

	case tea.ResumeMsg:
		return m, reloadCmd(m.ctx, m.coordinator, true)

	case changedMsg:
		m.refresh()
		return m, listenCmd(m.changed)

	case clockMsg:
		// Keeps relative texts fresh when nothing else repaints.
		return m, clockCmd()

	case reloadedMsg:
		m.refresh()
		if msg.err == nil {
			m.syncEditor()
			m.clampSelection()
			m.renderPreview()
		}
		return m, nil

	case opDoneMsg:
		m.refresh()
		m.clampSelection()
		if msg.notice != "" {
			m.notice = msg.notice
		}
		return m, nil

	case noticeMsg:
		m.notice = string(msg)
		return m, nil
	}

	if m.modal != nil {
		return m.updateModal(msg)
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if key.Matches(msg, m.keys.Quit) {
		m.unload()
		return m, tea.Quit
	}

	if m.modal != nil {
		return m.updateModal(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Suspend):
		m.hide("suspend")
		return m, tea.Suspend

	case key.Matches(msg, m.keys.Save):
		return m, flushCmd(m.ctx, m.scheduler)

	case key.Matches(msg, m.keys.Reload):
		return m, reloadCmd(m.ctx, m.coordinator, true)

	case key.Matches(msg, m.keys.ToggleTheme):
		return m.toggleTheme()

	case key.Matches(msg, m.keys.Preview):
		m.showPreview = !m.showPreview
		if m.showPreview {
			m.editor.Blur()
			m.renderPreview()
			return m, nil
		}
		return m, m.focusEditor()

	case key.Matches(msg, m.keys.Copy):
		content, _ := m.store.Document()
		return m, copyCmd(content)

	case key.Matches(msg, m.keys.Tab):
		if m.focus == PaneEditor {
			m.focus = PaneFiles
			m.editor.Blur()
			return m, nil
		}
		return m, m.focusEditor()
	}

	if m.focus == PaneFiles {
		return m.handleFilesKey(msg)
	}
	if m.showPreview {
		var cmd tea.Cmd
		m.preview, cmd = m.preview.Update(msg)
		return m, cmd
	}
	return m.handleEditorKey(msg)
}

func (m Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A reload may have replaced the document before its message arrived.
	if _, rev := m.store.Document(); rev != m.editorRev {
		m.syncEditor()
	}
	before := m.editor.Value()
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if after := m.editor.Value(); after != before {
		m.edit(after)
	}
	return m, cmd
}

func (m Model) handleFilesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := m.snapshot.Files
	switch {
	case key.Matches(msg, m.keys.Escape):
		return m, m.focusEditor()

	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.selected < len(list)-1 {
			m.selected++
		}
		return m, nil

	case key.Matches(msg, m.keys.Upload):
		ctx, reg := m.ctx, m.files
		m.modal = newUploadModal(func(paths []string) tea.Cmd {
			return uploadCmd(ctx, reg, paths)
		})
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Download):
		if file, ok := m.selectedFile(); ok {
			return m, downloadCmd(m.ctx, m.files, file.ID, file.FileName, m.downloadDir)
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if file, ok := m.selectedFile(); ok {
			m.modal = confirmDeleteModal{
				file:  file,
				onYes: deleteCmd(m.ctx, m.files, file.ID),
			}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	modal, cmd, closed := m.modal.Update(msg, m.keys)
	if closed {
		m.modal = nil
	} else {
		m.modal = modal
	}
	return m, cmd
}

func (m Model) toggleTheme() (tea.Model, tea.Cmd) {
	m.theme = GetTheme(prefs.Toggle(m.theme.Name))
	m.renderPreview()
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name}); err != nil {
		m.logger.Warn("save prefs failed", "error", err)
		m.notice = "Theme not saved"
	}
	return m, nil
}

// edit forwards a content change to the store and the autosave scheduler.
func (m *Model) edit(content string) {
	rev, changed := m.scheduler.Edit(content)
	m.editorRev = rev
	if !changed {
		return
	}
	m.notice = ""
	m.refresh()
}

// syncEditor replaces the editor text with the stored document.
func (m *Model) syncEditor() {
	content, rev := m.store.Document()
	m.editor.SetValue(content)
	m.editorRev = rev
}

// hide runs the hide protocol synchronously so a pending save is sent
// before the terminal loses us.
func (m *Model) hide(reason string) {
	if m.coordinator == nil {
		return
	}
	ctx, cancel := context.WithTimeout(m.ctx, hideTimeout)
	defer cancel()
	if err := m.coordinator.Hide(ctx); err != nil {
		m.logger.Warn("flush on hide failed", "reason", reason, "error", err)
	}
	m.refresh()
}

func (m *Model) unload() {
	if m.coordinator == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), hideTimeout)
	defer cancel()
	if err := m.coordinator.Unload(ctx); err != nil {
		m.logger.Warn("flush on quit failed", "error", err)
	}
}

func (m *Model) focusEditor() tea.Cmd {
	m.focus = PaneEditor
	m.showPreview = false
	return m.editor.Focus()
}

func (m *Model) refresh() {
	if m.store != nil {
		m.snapshot = m.store.Snapshot()
	}
	if m.status != nil {
		m.statusSnap = m.status.Snapshot()
	}
}

func (m *Model) clampSelection() {
	if n := len(m.snapshot.Files); m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m Model) selectedFile() (homeclip.Attachment, bool) {
	if m.selected < 0 || m.selected >= len(m.snapshot.Files) {
		return homeclip.Attachment{}, false
	}
	return m.snapshot.Files[m.selected], true
}

const hideTimeout = 5 * time.Second

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	programOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithReportFocus()}
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, programOpts...)
	_, err := p.Run()
	return err
}
