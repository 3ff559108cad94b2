package models

import (
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/log"

	"github.com/VoidMesh/randint/internal/note"
	"github.com/VoidMesh/randint/internal/plugin"
)

// ViewType represents the different views in the console
type ViewType int

const (
	MenuView ViewType = iota
	NotesView
	EditorView
	SettingsView
)

// App is the main application model
type App struct {
	plugin      *plugin.Plugin
	noteManager *note.Manager

	// Current state
	currentView ViewType
	width       int
	height      int

	// View models
	menu     MenuModel
	notes    NotesModel
	editor   EditorModel
	settings SettingsModel

	showHelp bool
}

// NewApp creates a new application instance
func NewApp(p *plugin.Plugin, noteManager *note.Manager, startView string) *App {
	app := &App{
		plugin:      p,
		noteManager: noteManager,
		menu:        NewMenuModel(),
		notes:       NewNotesModel(noteManager),
		editor:      NewEditorModel(p, noteManager),
		settings:    NewSettingsModel(p),
	}

	switch startView {
	case "notes":
		app.currentView = NotesView
	case "settings":
		app.currentView = SettingsView
	default:
		app.currentView = MenuView
	}

	return app
}

// Init initializes the application
func (m *App) Init() tea.Cmd {
	log.Debug("Initializing console", "view", m.currentView)
	return m.getCurrentViewModel().Init()
}

// Update handles messages and updates the application state
func (m *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		m.menu.SetSize(msg.Width, msg.Height)
		m.notes.SetSize(msg.Width, msg.Height)
		m.editor.SetSize(msg.Width, msg.Height)
		m.settings.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(msg.String()); handled {
			return m, cmd
		}

	case SwitchViewMsg:
		m.currentView = msg.View
		return m, m.getCurrentViewModel().Init()

	case OpenNoteMsg:
		m.editor.Open(msg.NoteID)
		m.currentView = EditorView
		return m, m.editor.Init()
	}

	if m.showHelp {
		return m, nil
	}

	// Route message to current view
	switch m.currentView {
	case MenuView:
		newModel, cmd := m.menu.Update(msg)
		m.menu = newModel.(MenuModel)
		return m, cmd
	case NotesView:
		newModel, cmd := m.notes.Update(msg)
		m.notes = newModel.(NotesModel)
		return m, cmd
	case EditorView:
		newModel, cmd := m.editor.Update(msg)
		m.editor = newModel.(EditorModel)
		return m, cmd
	case SettingsView:
		newModel, cmd := m.settings.Update(msg)
		m.settings = newModel.(SettingsModel)
		return m, cmd
	}

	return m, nil
}

// handleGlobalKey applies the keys that work in every view. Views that take
// text input get every key except ctrl+c.
func (m *App) handleGlobalKey(key string) (tea.Cmd, bool) {
	if key == "ctrl+c" {
		return tea.Quit, true
	}
	if key == "esc" && m.currentView == EditorView {
		m.currentView = NotesView
		return m.notes.Init(), true
	}
	if m.capturesInput() {
		return nil, false
	}

	switch key {
	case "q":
		if m.currentView == MenuView {
			return tea.Quit, true
		}
		m.currentView = MenuView
		return m.menu.Init(), true

	case "esc":
		if m.showHelp {
			m.showHelp = false
			return nil, true
		}
		m.currentView = MenuView
		return m.menu.Init(), true

	case "?":
		m.showHelp = !m.showHelp
		return nil, true
	}

	return nil, false
}

func (m *App) capturesInput() bool {
	switch m.currentView {
	case EditorView:
		return true
	case SettingsView:
		return m.settings.Editing()
	}
	return false
}

// View renders the application
func (m *App) View() string {
	if m.showHelp {
		return m.renderHelp()
	}

	switch m.currentView {
	case MenuView:
		return m.menu.View()
	case NotesView:
		return m.notes.View()
	case EditorView:
		return m.editor.View()
	case SettingsView:
		return m.settings.View()
	}

	return "Unknown view"
}

func (m *App) getCurrentViewModel() tea.Model {
	switch m.currentView {
	case NotesView:
		return &m.notes
	case EditorView:
		return &m.editor
	case SettingsView:
		return &m.settings
	}
	return &m.menu
}

func (m *App) renderHelp() string {
	return `
 randint console - Help

 Global keys:
   q            Quit (from menu) / back to menu
   esc          Back
   ?            Toggle this help
   ctrl+c       Quit

 Notes:
   up/down      Select note
   enter        Open note
   n            New note
   d            Delete note
   r            Refresh

 Editor:
   arrows       Move cursor
   ctrl+g       Generate a random integer at the cursor
   ctrl+t       Toggle space after number
   other keys   Type text at the cursor
   esc          Back to notes

 Settings:
   up/down      Select field
   enter        Edit field / save
   esc          Cancel edit

 Press ? again to close this help
`
}

// SwitchViewMsg is a message to switch views
type SwitchViewMsg struct {
	View ViewType
}

// OpenNoteMsg opens a note in the editor
type OpenNoteMsg struct {
	NoteID string
}
