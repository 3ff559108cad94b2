package models

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VoidMesh/randint/internal/editor"
	"github.com/VoidMesh/randint/internal/note"
	"github.com/VoidMesh/randint/internal/plugin"
	"github.com/VoidMesh/randint/internal/rng"
	"github.com/VoidMesh/randint/internal/settings"
	"github.com/VoidMesh/randint/internal/testutil"
)

func newTestPlugin(t *testing.T) *plugin.Plugin {
	t.Helper()

	store := settings.NewFileStore(afero.NewMemMapFs(), "/data.json")
	require.NoError(t, settings.Save(context.Background(), store, settings.Settings{
		SeedValue: 42, LowRange: 1, HighRange: 100, SpaceAfterNumber: true,
	}))

	p := plugin.New(store, rng.Fixed(0))
	require.NoError(t, p.Load(context.Background()))
	return p
}

func TestSettingsModel_EditField(t *testing.T) {
	m := NewSettingsModel(newTestPlugin(t))
	next, _ := m.Update(m.Init()())
	m = next.(SettingsModel)

	// move to the low range field and start editing
	m, _ = m.handleKey("down")
	m, _ = m.handleKey("enter")
	require.True(t, m.Editing())
	assert.Equal(t, "1", m.input)

	m, _ = m.handleKey("backspace")
	m, _ = m.handleKey("5")
	m, _ = m.handleKey("a")
	assert.Equal(t, "5a", m.input)

	m, cmd := m.handleKey("enter")
	require.NotNil(t, cmd)
	assert.False(t, m.Editing())

	next, _ = m.Update(cmd())
	m = next.(SettingsModel)
	assert.Equal(t, int64(5), m.current.LowRange)
	assert.Equal(t, "5", m.fieldText(settings.FieldLow))
	assert.Empty(t, m.errorMsg)
}

func TestSettingsModel_RecoveredInput(t *testing.T) {
	m := NewSettingsModel(newTestPlugin(t))
	next, _ := m.Update(m.Init()())
	m = next.(SettingsModel)

	m, _ = m.handleKey("down")
	m, _ = m.handleKey("down")
	m, _ = m.handleKey("enter")
	for range m.input {
		m, _ = m.handleKey("backspace")
	}
	m, _ = m.handleKey("x")
	m, cmd := m.handleKey("enter")

	next, _ = m.Update(cmd())
	m = next.(SettingsModel)
	assert.Equal(t, int64(100), m.current.HighRange)
	assert.Equal(t, "", m.fieldText(settings.FieldHigh))
	assert.Contains(t, m.message, "input not understood")
}

func TestSettingsModel_EscCancels(t *testing.T) {
	p := newTestPlugin(t)
	m := NewSettingsModel(p)

	m, _ = m.handleKey("enter")
	m, _ = m.handleKey("9")
	m, cmd := m.handleKey("esc")
	assert.Nil(t, cmd)
	assert.False(t, m.Editing())
	assert.Equal(t, int64(42), p.Settings().SeedValue)
}

func TestSettingsModel_ToggleSpace(t *testing.T) {
	p := newTestPlugin(t)
	m := NewSettingsModel(p)
	next, _ := m.Update(m.Init()())
	m = next.(SettingsModel)

	for range settings.Fields {
		m, _ = m.handleKey("down")
	}
	m, cmd := m.handleKey("enter")
	require.NotNil(t, cmd)
	assert.False(t, m.Editing())

	next, _ = m.Update(cmd())
	m = next.(SettingsModel)
	assert.False(t, m.current.SpaceAfterNumber)
	assert.False(t, p.Settings().SpaceAfterNumber)
}

func TestEditorModel_RandomIntCommand(t *testing.T) {
	testDB := testutil.SetupTestDB(t)
	notes := note.NewManager(testDB.DB)
	p := newTestPlugin(t)

	created, err := notes.Create(context.Background(), note.CreateNoteRequest{Title: "t", Body: "ab"})
	require.NoError(t, err)

	m := NewEditorModel(p, notes)
	m.Open(created.NoteID)
	next, _ := m.Update(m.Init()())
	m = next.(EditorModel)
	require.NotNil(t, m.note)

	next, _ = m.Update(m.moveCmd(0, -1)())
	m = next.(EditorModel)
	assert.Equal(t, editor.Position{Line: 0, Ch: 1}, m.note.Cursor)

	next, _ = m.Update(m.handleKey("ctrl+g")())
	m = next.(EditorModel)
	assert.Equal(t, "a43 b", m.note.Body)
	assert.Equal(t, editor.Position{Line: 0, Ch: 4}, m.note.Cursor)
	assert.Contains(t, m.statusMsg, "Inserted 43")

	next, _ = m.Update(m.handleKey("z")())
	m = next.(EditorModel)
	assert.Equal(t, "a43 zb", m.note.Body)
}

func TestApp_GlobalKeys(t *testing.T) {
	testDB := testutil.SetupTestDB(t)
	app := NewApp(newTestPlugin(t), note.NewManager(testDB.DB), "settings")

	_, handled := app.handleGlobalKey("q")
	assert.True(t, handled)
	assert.Equal(t, MenuView, app.currentView)

	app.currentView = EditorView
	_, handled = app.handleGlobalKey("q")
	assert.False(t, handled, "editor takes typed keys")

	_, handled = app.handleGlobalKey("esc")
	assert.True(t, handled)
	assert.Equal(t, NotesView, app.currentView)
}

func TestRenderWithCursor(t *testing.T) {
	out := renderWithCursor("first\nsecond", editor.Position{Line: 1, Ch: 6})
	assert.Contains(t, out, "first\nsecond")
}
