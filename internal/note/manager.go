package note

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/VoidMesh/randint/internal/db"
	"github.com/VoidMesh/randint/internal/editor"
)

var (
	ErrNotFound     = errors.New("note not found")
	ErrInvalidTitle = errors.New("title must not be empty")
)

// Manager handles note storage and editing
type Manager struct {
	db      *sql.DB
	queries *db.LoggingQueries
	now     func() time.Time
}

// NewManager creates a new note manager
func NewManager(database *sql.DB) *Manager {
	return &Manager{
		db:      database,
		queries: db.NewLoggingQueries(database),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new note. Without an explicit cursor it starts at the end
// of the body.
func (m *Manager) Create(ctx context.Context, req CreateNoteRequest) (*Note, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrInvalidTitle
	}

	buf := editor.NewBuffer(req.Body, endOf(req.Body))
	if req.Cursor != nil {
		buf.SetCursor(*req.Cursor)
	}
	cursor := buf.GetCursor()

	dbNote, err := m.queries.CreateNote(ctx, db.CreateNoteParams{
		NoteID:     uuid.NewString(),
		Title:      title,
		Body:       req.Body,
		CursorLine: int64(cursor.Line),
		CursorCh:   int64(cursor.Ch),
		CreatedAt:  m.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	n := convertDBNote(dbNote)
	log.Info("Created note", "note_id", n.NoteID, "title", n.Title)
	return n, nil
}

// Get returns a note by id
func (m *Manager) Get(ctx context.Context, noteID string) (*Note, error) {
	if _, err := uuid.Parse(noteID); err != nil {
		return nil, ErrNotFound
	}

	dbNote, err := m.queries.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return convertDBNote(dbNote), nil
}

// List returns the most recently updated notes first
func (m *Manager) List(ctx context.Context, limit int) ([]Note, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}

	dbNotes, err := m.queries.ListNotes(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}

	notes := make([]Note, 0, len(dbNotes))
	for _, n := range dbNotes {
		notes = append(notes, *convertDBNote(n))
	}
	return notes, nil
}

// UpdateBody replaces the text of a note. The cursor is kept where it was
// unless one is given, and is clamped to the new text either way.
func (m *Manager) UpdateBody(ctx context.Context, noteID string, req UpdateBodyRequest) (*Note, error) {
	return m.editBuffer(ctx, noteID, func(buf *editor.Buffer) error {
		cursor := buf.GetCursor()
		if req.Cursor != nil {
			cursor = *req.Cursor
		}
		*buf = *editor.NewBuffer(req.Body, cursor)
		return nil
	})
}

// MoveCursor places the cursor of a note, clamped to its text.
func (m *Manager) MoveCursor(ctx context.Context, noteID string, pos editor.Position) (*Note, error) {
	return m.editBuffer(ctx, noteID, func(buf *editor.Buffer) error {
		buf.SetCursor(pos)
		return nil
	})
}

// Delete removes a note
func (m *Manager) Delete(ctx context.Context, noteID string) error {
	affected, err := m.queries.DeleteNote(ctx, noteID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	log.Info("Deleted note", "note_id", noteID)
	return nil
}

// Edit loads a note into an editor, runs fn and stores the resulting text and
// cursor in one transaction. Nothing is written when fn fails.
func (m *Manager) Edit(ctx context.Context, noteID string, fn func(editor.Editor) error) (*Note, error) {
	return m.editBuffer(ctx, noteID, func(buf *editor.Buffer) error {
		return fn(buf)
	})
}

func (m *Manager) editBuffer(ctx context.Context, noteID string, fn func(*editor.Buffer) error) (*Note, error) {
	if _, err := uuid.Parse(noteID); err != nil {
		return nil, ErrNotFound
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := m.queries.WithTx(tx)

	dbNote, err := qtx.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load note: %w", err)
	}

	buf := editor.NewBuffer(dbNote.Body, editor.Position{Line: int(dbNote.CursorLine), Ch: int(dbNote.CursorCh)})
	if err := fn(buf); err != nil {
		return nil, err
	}

	cursor := buf.GetCursor()
	if body := buf.Text(); body != dbNote.Body {
		_, err = qtx.UpdateNoteContent(ctx, db.UpdateNoteContentParams{
			NoteID:     noteID,
			Body:       body,
			CursorLine: int64(cursor.Line),
			CursorCh:   int64(cursor.Ch),
			UpdatedAt:  m.now(),
		})
	} else {
		_, err = qtx.UpdateNoteCursor(ctx, db.UpdateNoteCursorParams{
			NoteID:     noteID,
			CursorLine: int64(cursor.Line),
			CursorCh:   int64(cursor.Ch),
			UpdatedAt:  m.now(),
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to store note: %w", err)
	}

	updated, err := qtx.GetNote(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload note: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Debug("Note edited", "note_id", noteID, "cursor_line", cursor.Line, "cursor_ch", cursor.Ch)
	return convertDBNote(updated), nil
}

func convertDBNote(n db.Note) *Note {
	return &Note{
		NoteID:    n.NoteID,
		Title:     n.Title,
		Body:      n.Body,
		Cursor:    editor.Position{Line: int(n.CursorLine), Ch: int(n.CursorCh)},
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func endOf(text string) editor.Position {
	// clipped by the buffer to the last line's length
	return editor.Position{Line: strings.Count(text, "\n"), Ch: len([]rune(text))}
}
