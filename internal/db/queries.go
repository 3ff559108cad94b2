package db

import (
	"context"
	"time"
)

// Note is a row of the notes table.
type Note struct {
	NoteID     string
	Title      string
	Body       string
	CursorLine int64
	CursorCh   int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type CreateNoteParams struct {
	NoteID     string
	Title      string
	Body       string
	CursorLine int64
	CursorCh   int64
	CreatedAt  time.Time
}

type UpdateNoteContentParams struct {
	NoteID     string
	Body       string
	CursorLine int64
	CursorCh   int64
	UpdatedAt  time.Time
}

type UpdateNoteCursorParams struct {
	NoteID     string
	CursorLine int64
	CursorCh   int64
	UpdatedAt  time.Time
}

const noteColumns = `note_id, title, body, cursor_line, cursor_ch, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNote(row rowScanner) (Note, error) {
	var n Note
	err := row.Scan(&n.NoteID, &n.Title, &n.Body, &n.CursorLine, &n.CursorCh, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

const createNote = `INSERT INTO notes (` + noteColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateNote(ctx context.Context, arg CreateNoteParams) (Note, error) {
	_, err := q.db.ExecContext(ctx, createNote,
		arg.NoteID, arg.Title, arg.Body, arg.CursorLine, arg.CursorCh, arg.CreatedAt, arg.CreatedAt,
	)
	if err != nil {
		return Note{}, err
	}
	return q.GetNote(ctx, arg.NoteID)
}

const getNote = `SELECT ` + noteColumns + ` FROM notes WHERE note_id = ?`

func (q *Queries) GetNote(ctx context.Context, noteID string) (Note, error) {
	return scanNote(q.db.QueryRowContext(ctx, getNote, noteID))
}

const listNotes = `SELECT ` + noteColumns + ` FROM notes ORDER BY updated_at DESC, note_id LIMIT ?`

func (q *Queries) ListNotes(ctx context.Context, limit int64) ([]Note, error) {
	rows, err := q.db.QueryContext(ctx, listNotes, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateNoteContent = `UPDATE notes
SET body = ?, cursor_line = ?, cursor_ch = ?, updated_at = ?
WHERE note_id = ?`

// UpdateNoteContent returns the number of rows affected.
func (q *Queries) UpdateNoteContent(ctx context.Context, arg UpdateNoteContentParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateNoteContent, arg.Body, arg.CursorLine, arg.CursorCh, arg.UpdatedAt, arg.NoteID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const updateNoteCursor = `UPDATE notes
SET cursor_line = ?, cursor_ch = ?, updated_at = ?
WHERE note_id = ?`

func (q *Queries) UpdateNoteCursor(ctx context.Context, arg UpdateNoteCursorParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateNoteCursor, arg.CursorLine, arg.CursorCh, arg.UpdatedAt, arg.NoteID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteNote = `DELETE FROM notes WHERE note_id = ?`

func (q *Queries) DeleteNote(ctx context.Context, noteID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteNote, noteID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getPluginData = `SELECT data FROM plugin_data WHERE plugin_id = ?`

func (q *Queries) GetPluginData(ctx context.Context, pluginID string) (string, error) {
	var data string
	err := q.db.QueryRowContext(ctx, getPluginData, pluginID).Scan(&data)
	return data, err
}

const upsertPluginData = `INSERT INTO plugin_data (plugin_id, data, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (plugin_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`

func (q *Queries) UpsertPluginData(ctx context.Context, pluginID, data string) error {
	_, err := q.db.ExecContext(ctx, upsertPluginData, pluginID, data, time.Now().UTC())
	return err
}
