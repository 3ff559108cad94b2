package note

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VoidMesh/randint/internal/editor"
	"github.com/VoidMesh/randint/internal/testutil"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	testDB := testutil.SetupTestDB(t)
	return NewManager(testDB.DB)
}

func TestManager_Create(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		req       CreateNoteRequest
		expectErr error
		cursor    editor.Position
	}{
		{
			name:   "cursor defaults to end of body",
			req:    CreateNoteRequest{Title: "Dice", Body: "one\ntwo"},
			cursor: editor.Position{Line: 1, Ch: 3},
		},
		{
			name:   "explicit cursor is clamped",
			req:    CreateNoteRequest{Title: "Dice", Body: "abc", Cursor: &editor.Position{Line: 0, Ch: 99}},
			cursor: editor.Position{Line: 0, Ch: 3},
		},
		{
			name:   "empty body",
			req:    CreateNoteRequest{Title: "Empty"},
			cursor: editor.Position{},
		},
		{
			name:      "blank title rejected",
			req:       CreateNoteRequest{Title: "  "},
			expectErr: ErrInvalidTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := m.Create(ctx, tt.req)
			if tt.expectErr != nil {
				require.ErrorIs(t, err, tt.expectErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, n.NoteID)
			assert.Equal(t, tt.req.Body, n.Body)
			assert.Equal(t, tt.cursor, n.Cursor)
		})
	}
}

func TestManager_GetAndList(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	first, err := m.Create(ctx, CreateNoteRequest{Title: "first"})
	require.NoError(t, err)
	_, err = m.Create(ctx, CreateNoteRequest{Title: "second"})
	require.NoError(t, err)

	got, err := m.Get(ctx, first.NoteID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)

	_, err = m.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.Get(ctx, "6f1c1f9e-6a59-4a63-9bde-6d9a1b9a2f10")
	assert.ErrorIs(t, err, ErrNotFound)

	notes, err := m.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, notes, 2)

	notes, err = m.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}

func TestManager_Edit(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	n, err := m.Create(ctx, CreateNoteRequest{Title: "roll", Body: "result: "})
	require.NoError(t, err)

	updated, err := m.Edit(ctx, n.NoteID, func(ed editor.Editor) error {
		editor.AddText(ed, "43 ")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "result: 43 ", updated.Body)
	assert.Equal(t, editor.Position{Ch: 11}, updated.Cursor)

	stored, err := m.Get(ctx, n.NoteID)
	require.NoError(t, err)
	assert.Equal(t, updated.Body, stored.Body)
	assert.Equal(t, updated.Cursor, stored.Cursor)
}

func TestManager_EditFailureWritesNothing(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	n, err := m.Create(ctx, CreateNoteRequest{Title: "roll", Body: "keep"})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = m.Edit(ctx, n.NoteID, func(ed editor.Editor) error {
		editor.AddText(ed, "lost")
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := m.Get(ctx, n.NoteID)
	require.NoError(t, err)
	assert.Equal(t, "keep", stored.Body)
}

func TestManager_UpdateBodyAndCursor(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	n, err := m.Create(ctx, CreateNoteRequest{Title: "t", Body: "a long line"})
	require.NoError(t, err)

	updated, err := m.UpdateBody(ctx, n.NoteID, UpdateBodyRequest{Body: "short"})
	require.NoError(t, err)
	assert.Equal(t, "short", updated.Body)
	assert.Equal(t, editor.Position{Ch: 5}, updated.Cursor, "cursor clamped to the new text")

	moved, err := m.MoveCursor(ctx, n.NoteID, editor.Position{Line: 0, Ch: 2})
	require.NoError(t, err)
	assert.Equal(t, editor.Position{Ch: 2}, moved.Cursor)

	_, err = m.MoveCursor(ctx, "missing", editor.Position{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_Delete(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	n, err := m.Create(ctx, CreateNoteRequest{Title: "gone"})
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, n.NoteID))
	assert.ErrorIs(t, m.Delete(ctx, n.NoteID), ErrNotFound)
}

func TestManager_MoveCursorClampsToCommittedEdit(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	n, err := m.Create(ctx, CreateNoteRequest{Title: "t", Body: "ab"})
	require.NoError(t, err)

	type moveResult struct {
		note *Note
		err  error
	}
	moved := make(chan moveResult, 1)

	edited, err := m.Edit(ctx, n.NoteID, func(ed editor.Editor) error {
		go func() {
			note, err := m.MoveCursor(ctx, n.NoteID, editor.Position{Line: 0, Ch: 99})
			moved <- moveResult{note: note, err: err}
		}()
		editor.AddText(ed, "cdef")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "abcdef", edited.Body)

	result := <-moved
	require.NoError(t, result.err)
	assert.Equal(t, "abcdef", result.note.Body)
	assert.Equal(t, editor.Position{Ch: 6}, result.note.Cursor)

	stored, err := m.Get(ctx, n.NoteID)
	require.NoError(t, err)
	assert.Equal(t, editor.Position{Ch: 6}, stored.Cursor)
	assert.Equal(t, "abcdef", stored.Body)
}
