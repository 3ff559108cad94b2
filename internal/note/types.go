package note

import (
	"time"

	"github.com/VoidMesh/randint/internal/editor"
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 100

// Note is a stored document with its cursor.
type Note struct {
	NoteID    string          `json:"note_id"`
	Title     string          `json:"title"`
	Body      string          `json:"body"`
	Cursor    editor.Position `json:"cursor"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CreateNoteRequest represents the request to create a note
type CreateNoteRequest struct {
	Title  string           `json:"title"`
	Body   string           `json:"body"`
	Cursor *editor.Position `json:"cursor,omitempty"`
}

// UpdateBodyRequest replaces a note's text
type UpdateBodyRequest struct {
	Body   string           `json:"body"`
	Cursor *editor.Position `json:"cursor,omitempty"`
}

// ErrorResponse is the JSON error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}
