package models

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/VoidMesh/randint/cmd/console/components"
	"github.com/VoidMesh/randint/internal/editor"
	"github.com/VoidMesh/randint/internal/note"
	"github.com/VoidMesh/randint/internal/plugin"
)

// EditorModel shows one note with its cursor and runs plugin commands
// against it
type EditorModel struct {
	plugin      *plugin.Plugin
	noteManager *note.Manager

	noteID    string
	note      *note.Note
	statusMsg string
	errorMsg  string
	width     int
	height    int
}

type noteLoadedMsg struct {
	note *note.Note
	err  error
}

type commandRanMsg struct {
	result *plugin.CommandResult
	note   *note.Note
	err    error
}

func NewEditorModel(p *plugin.Plugin, noteManager *note.Manager) EditorModel {
	return EditorModel{plugin: p, noteManager: noteManager}
}

// Open selects the note the editor works on
func (m *EditorModel) Open(noteID string) {
	m.noteID = noteID
	m.note = nil
	m.statusMsg = ""
	m.errorMsg = ""
}

func (m EditorModel) Init() tea.Cmd {
	if m.noteID == "" {
		return nil
	}
	return m.loadNoteCmd()
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case noteLoadedMsg:
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
			return m, nil
		}
		m.errorMsg = ""
		m.note = msg.note

	case commandRanMsg:
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
			return m, nil
		}
		m.errorMsg = ""
		if msg.note != nil {
			m.note = msg.note
		}
		m.statusMsg = describeResult(msg.result)

	case tea.KeyMsg:
		if m.note == nil {
			return m, nil
		}
		return m, m.handleKey(msg.String())
	}

	return m, nil
}

func (m EditorModel) handleKey(key string) tea.Cmd {
	switch key {
	case "up":
		return m.moveCmd(-1, 0)
	case "down":
		return m.moveCmd(1, 0)
	case "left":
		return m.moveCmd(0, -1)
	case "right":
		return m.moveCmd(0, 1)
	case "ctrl+g":
		return m.runCommandCmd(plugin.CommandRandomInt)
	case "ctrl+t":
		return m.runCommandCmd(plugin.CommandToggleSpace)
	case "space":
		return m.typeCmd(" ")
	}

	if utf8.RuneCountInString(key) == 1 {
		return m.typeCmd(key)
	}
	return nil
}

func (m EditorModel) View() string {
	var s strings.Builder

	title := "Editor"
	if m.note != nil {
		title = m.note.Title
	}
	s.WriteString(components.TitleStyle.Render(title) + "\n\n")

	if m.errorMsg != "" {
		s.WriteString(components.ErrorStyle.Render("Error: "+m.errorMsg) + "\n\n")
	}

	if m.note == nil {
		s.WriteString(components.BorderStyle.Render("Loading note...") + "\n\n")
	} else {
		s.WriteString(components.BorderStyle.Render(renderWithCursor(m.note.Body, m.note.Cursor)) + "\n\n")
	}

	if m.statusMsg != "" {
		s.WriteString(components.SuccessStyle.Render(m.statusMsg) + "\n\n")
	}

	current := m.plugin.Settings()
	status := fmt.Sprintf("low %d • high %d • space %s • ctrl+g random integer • ctrl+t toggle space • esc back",
		current.LowRange, current.HighRange, components.OnOff(current.SpaceAfterNumber))
	s.WriteString(components.StatusBarStyle.Width(m.width).Render(status))

	return s.String()
}

// SetSize updates the editor size
func (m *EditorModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m EditorModel) loadNoteCmd() tea.Cmd {
	noteID := m.noteID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		n, err := m.noteManager.Get(ctx, noteID)
		return noteLoadedMsg{note: n, err: err}
	}
}

func (m EditorModel) moveCmd(dLine, dCh int) tea.Cmd {
	buf := editor.NewBuffer(m.note.Body, m.note.Cursor)
	buf.Move(dLine, dCh)
	pos := buf.GetCursor()
	noteID := m.noteID

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		n, err := m.noteManager.MoveCursor(ctx, noteID, pos)
		return noteLoadedMsg{note: n, err: err}
	}
}

func (m EditorModel) typeCmd(text string) tea.Cmd {
	noteID := m.noteID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		n, err := m.noteManager.Edit(ctx, noteID, func(ed editor.Editor) error {
			editor.AddText(ed, text)
			return nil
		})
		return noteLoadedMsg{note: n, err: err}
	}
}

func (m EditorModel) runCommandCmd(commandID string) tea.Cmd {
	noteID := m.noteID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cmd, ok := m.plugin.Command(commandID)
		if !ok {
			return commandRanMsg{err: fmt.Errorf("%w: %q", plugin.ErrUnknownCommand, commandID)}
		}
		if !cmd.Editor {
			result, err := m.plugin.Execute(ctx, commandID, nil)
			return commandRanMsg{result: result, err: err}
		}

		var result *plugin.CommandResult
		n, err := m.noteManager.Edit(ctx, noteID, func(ed editor.Editor) error {
			var err error
			result, err = m.plugin.Execute(ctx, commandID, ed)
			return err
		})
		return commandRanMsg{result: result, note: n, err: err}
	}
}

func describeResult(result *plugin.CommandResult) string {
	switch {
	case result == nil:
		return ""
	case result.Insertion != nil:
		return fmt.Sprintf("Inserted %d at line %d, ch %d", result.Insertion.Value, result.Insertion.From.Line+1, result.Insertion.From.Ch)
	case result.Settings != nil:
		return "Space after number: " + components.OnOff(result.Settings.SpaceAfterNumber)
	}
	return result.Command
}

// renderWithCursor draws text with the cell under the cursor highlighted.
func renderWithCursor(text string, cursor editor.Position) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i != cursor.Line {
			continue
		}
		runes := []rune(line)
		ch := min(max(cursor.Ch, 0), len(runes))

		under := " "
		rest := ""
		if ch < len(runes) {
			under = string(runes[ch])
			rest = string(runes[ch+1:])
		}
		lines[i] = string(runes[:ch]) + components.CursorStyle.Render(under) + rest
	}
	return strings.Join(lines, "\n")
}
