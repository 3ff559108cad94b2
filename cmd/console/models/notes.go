package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/VoidMesh/randint/cmd/console/components"
	"github.com/VoidMesh/randint/internal/note"
)

// NotesModel lists stored notes
type NotesModel struct {
	noteManager *note.Manager

	notes    []note.Note
	cursor   int
	errorMsg string
	width    int
	height   int
}

type notesLoadedMsg struct {
	notes []note.Note
	err   error
}

func NewNotesModel(noteManager *note.Manager) NotesModel {
	return NotesModel{noteManager: noteManager}
}

func (m NotesModel) Init() tea.Cmd {
	return m.loadNotesCmd()
}

func (m NotesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case notesLoadedMsg:
		if msg.err != nil {
			m.errorMsg = msg.err.Error()
			return m, nil
		}
		m.errorMsg = ""
		m.notes = msg.notes
		if m.cursor >= len(m.notes) {
			m.cursor = max(len(m.notes)-1, 0)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.notes)-1 {
				m.cursor++
			}
		case "enter":
			if len(m.notes) > 0 {
				id := m.notes[m.cursor].NoteID
				return m, func() tea.Msg { return OpenNoteMsg{NoteID: id} }
			}
		case "n":
			return m, m.createNoteCmd(len(m.notes) + 1)
		case "d":
			if len(m.notes) > 0 {
				return m, m.deleteNoteCmd(m.notes[m.cursor].NoteID)
			}
		case "r":
			return m, m.loadNotesCmd()
		}
	}

	return m, nil
}

func (m NotesModel) View() string {
	var s strings.Builder

	s.WriteString(components.TitleStyle.Render("Notes") + "\n\n")

	if m.errorMsg != "" {
		s.WriteString(components.ErrorStyle.Render("Error: "+m.errorMsg) + "\n\n")
	}

	if len(m.notes) == 0 {
		s.WriteString(components.BorderStyle.Render("No notes yet. Press 'n' to create one.") + "\n\n")
	} else {
		rows := make([]string, 0, len(m.notes))
		for i, n := range m.notes {
			style := components.MenuItemStyle
			if i == m.cursor {
				style = components.SelectedMenuItemStyle
			}
			rows = append(rows, style.Render(fmt.Sprintf("%-30s %s", n.Title, n.UpdatedAt.Format(time.DateTime))))
		}
		s.WriteString(components.BorderStyle.Render(strings.Join(rows, "\n")) + "\n\n")
	}

	s.WriteString(components.StatusBarStyle.Width(m.width).Render("enter open • n new • d delete • r refresh • esc back"))
	return s.String()
}

// SetSize updates the notes view size
func (m *NotesModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m NotesModel) loadNotesCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		notes, err := m.noteManager.List(ctx, note.DefaultListLimit)
		return notesLoadedMsg{notes: notes, err: err}
	}
}

func (m NotesModel) createNoteCmd(n int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		created, err := m.noteManager.Create(ctx, note.CreateNoteRequest{Title: fmt.Sprintf("Untitled %d", n)})
		if err != nil {
			return notesLoadedMsg{err: err}
		}
		return OpenNoteMsg{NoteID: created.NoteID}
	}
}

func (m NotesModel) deleteNoteCmd(noteID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := m.noteManager.Delete(ctx, noteID); err != nil {
			return notesLoadedMsg{err: err}
		}
		notes, err := m.noteManager.List(ctx, note.DefaultListLimit)
		return notesLoadedMsg{notes: notes, err: err}
	}
}
