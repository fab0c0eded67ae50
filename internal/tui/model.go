// Package tui renders the file header in the terminal.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/modex/frontend/internal/header"
	"github.com/modex/frontend/internal/models"
)

// Messages for async operations
type fetchDoneMsg struct {
	err error
}

type uploadDoneMsg struct {
	name  string
	err   error
	local bool // the file could not be read, nothing was sent
}

// Options configures the view.
type Options struct {
	Accept         []string
	StartDirectory string
	DialogHeight   int
}

// Model is the bubbletea model of the header. It is also the host of the
// header component: it owns the selected file, the file dialog and the
// alert box.
type Model struct {
	header *header.Header

	// written from command goroutines
	mu       sync.Mutex
	selected string
	alerts   []string

	alert      string
	dialogOpen bool
	files      filepicker.Model
	uploading  string
	status     string
	width      int
	quitting   bool
}

// New creates a view. Attach must be called before the program starts.
func New(opts Options) *Model {
	fp := filepicker.New()
	fp.AllowedTypes = opts.Accept
	fp.ShowHidden = false
	fp.AutoHeight = false
	fp.Height = opts.DialogHeight
	if fp.Height <= 0 {
		fp.Height = 10
	}

	fp.CurrentDirectory = opts.StartDirectory
	if fp.CurrentDirectory == "" {
		if wd, err := os.Getwd(); err == nil {
			fp.CurrentDirectory = wd
		}
	}

	return &Model{files: fp}
}

// Attach wires the header this view renders.
func (m *Model) Attach(h *header.Header) {
	m.header = h
}

// SelectFile is the header's selection callback.
func (m *Model) SelectFile(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = name
}

// Selected returns the current selection.
func (m *Model) Selected() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selected
}

// Alert queues a blocking notification.
func (m *Model) Alert(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, message)
}

// Open shows the file dialog. It is called from Update through
// header.OpenFileDialog.
func (m *Model) Open() {
	m.dialogOpen = true
	m.status = ""
}

// Init starts the first fetch.
func (m *Model) Init() tea.Cmd {
	return m.afterUpdate()
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case fetchDoneMsg:
		// state lives in the header; nothing to copy

	case uploadDoneMsg:
		m.uploading = ""
		switch {
		case msg.local:
			m.status = fmt.Sprintf("No se pudo leer %s", msg.name)
		case msg.err == nil:
			m.status = fmt.Sprintf("%s subido", msg.name)
		}

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch {
		case m.alert != "":
			cmd = m.updateAlert(msg)
		case m.dialogOpen:
			cmd = m.updateDialog(msg)
		default:
			cmd = m.updateHeader(msg)
		}

	default:
		if m.dialogOpen {
			m.files, cmd = m.files.Update(msg)
		}
	}

	if m.quitting {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.afterUpdate())
}

// afterUpdate surfaces queued alerts and, like a re-render with new props,
// fetches the list again when the selection changed.
func (m *Model) afterUpdate() tea.Cmd {
	m.mu.Lock()
	if m.alert == "" && len(m.alerts) > 0 {
		m.alert = m.alerts[0]
		m.alerts = m.alerts[1:]
	}
	selected := m.selected
	m.mu.Unlock()

	if m.header == nil || !m.header.SetSelected(selected) {
		return nil
	}
	return m.fetch()
}

func (m *Model) fetch() tea.Cmd {
	h := m.header
	return func() tea.Msg {
		return fetchDoneMsg{err: h.FetchFileList(context.Background())}
	}
}

func (m *Model) updateAlert(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "esc", " ":
		m.alert = ""
	}
	return nil
}

func (m *Model) updateDialog(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "esc" {
		m.dialogOpen = false
		return nil
	}

	var cmd tea.Cmd
	m.files, cmd = m.files.Update(msg)

	if ok, path := m.files.DidSelectFile(msg); ok {
		m.dialogOpen = false
		return tea.Batch(cmd, m.startUpload(path))
	}
	if ok, path := m.files.DidSelectDisabledFile(msg); ok {
		m.status = fmt.Sprintf("%s: solo se aceptan %s", filepath.Base(path), strings.Join(m.header.Accept(), ", "))
	}
	return cmd
}

func (m *Model) updateHeader(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q":
		m.quitting = true
		return tea.Quit
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "+", "a":
		m.header.OpenFileDialog()
		if m.dialogOpen {
			return m.files.Init()
		}
	case "r":
		return m.fetch()
	}
	return nil
}

// move changes the dropdown value by delta entries.
func (m *Model) move(delta int) {
	files := m.header.Snapshot().Files
	if len(files) == 0 {
		return
	}
	idx := slices.Index(files, m.Selected())
	next := idx + delta
	if idx < 0 {
		next = 0
	}
	if next < 0 || next >= len(files) || next == idx {
		return
	}
	m.header.HandleFileSelect(files[next])
}

// startUpload runs the upload of path in the background.
func (m *Model) startUpload(path string) tea.Cmd {
	m.uploading = filepath.Base(path)
	m.status = ""
	h := m.header
	return func() tea.Msg {
		file, err := models.NewLocalFile(path)
		if err != nil {
			h.HandleUploadError(filepath.Base(path), err)
			return uploadDoneMsg{name: filepath.Base(path), err: err, local: true}
		}
		return uploadDoneMsg{name: file.Name, err: h.HandleFileUpload(context.Background(), file)}
	}
}

// Run starts the program on the alternate screen and blocks until it exits.
func Run(m *Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
