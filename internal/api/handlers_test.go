package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VoidMesh/randint/internal/metrics"
	"github.com/VoidMesh/randint/internal/note"
	"github.com/VoidMesh/randint/internal/plugin"
	"github.com/VoidMesh/randint/internal/rng"
	"github.com/VoidMesh/randint/internal/settings"
	"github.com/VoidMesh/randint/internal/testutil"
)

type testServer struct {
	router http.Handler
	notes  *note.Manager
	plugin *plugin.Plugin
}

func newTestServer(t *testing.T, initial settings.Settings, draw float64) *testServer {
	t.Helper()

	testDB := testutil.SetupTestDB(t)
	store := settings.NewDBStore(testDB.Queries, "random-int")
	require.NoError(t, settings.Save(context.Background(), store, initial))

	p := plugin.New(store, rng.Fixed(draw))
	require.NoError(t, p.Load(context.Background()))

	notes := note.NewManager(testDB.DB)
	router := SetupRoutes(NewHandler(p, notes), note.NewNoteHandlers(notes), RouterConfig{
		MetricsHandler: metrics.Handler(),
	})

	return &testServer{router: router, notes: notes, plugin: p}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

var baseSettings = settings.Settings{SeedValue: 42, LowRange: 1, HighRange: 100, SpaceAfterNumber: true}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, baseSettings, 0)

	rec := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	decode(t, rec, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestSettingsEndpoints(t *testing.T) {
	s := newTestServer(t, baseSettings, 0)

	rec := s.do(t, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got settings.Settings
	decode(t, rec, &got)
	assert.Equal(t, baseSettings, got)

	replacement := settings.Settings{SeedValue: 7, LowRange: 10, HighRange: 20}
	rec = s.do(t, http.MethodPut, "/api/v1/settings", replacement)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &got)
	assert.Equal(t, replacement, got)

	rec = s.do(t, http.MethodPut, "/api/v1/settings", settings.Settings{SeedValue: -3})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var problem struct {
		Problems []string `json:"problems"`
	}
	decode(t, rec, &problem)
	assert.Len(t, problem.Problems, 1)
	assert.Equal(t, replacement, s.plugin.Settings())
}

func TestUpdateSettingsField(t *testing.T) {
	s := newTestServer(t, baseSettings, 0)

	tests := []struct {
		name      string
		field     string
		value     string
		status    int
		display   string
		recovered bool
	}{
		{name: "seed digits", field: "seed", value: "123", status: http.StatusOK, display: "123"},
		{name: "empty seed", field: "seed", value: "", status: http.StatusOK, display: "", recovered: true},
		{name: "low stripped", field: "low", value: "5a", status: http.StatusOK, display: "5"},
		{name: "high garbage", field: "high", value: "lots", status: http.StatusOK, display: "", recovered: true},
		{name: "unknown field", field: "colour", value: "red", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPatch, "/api/v1/settings/"+tt.field, map[string]string{"value": tt.value})
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.status != http.StatusOK {
				return
			}

			var body struct {
				Display   string `json:"display"`
				Recovered bool   `json:"recovered"`
			}
			decode(t, rec, &body)
			assert.Equal(t, tt.display, body.Display)
			assert.Equal(t, tt.recovered, body.Recovered)
		})
	}

	assert.Equal(t, settings.Settings{SeedValue: 0, LowRange: 5, HighRange: 100, SpaceAfterNumber: true}, s.plugin.Settings())
}

func TestRunCommand_RandomIntOnNote(t *testing.T) {
	s := newTestServer(t, baseSettings, 0)

	rec := s.do(t, http.MethodPost, "/api/v1/notes", note.CreateNoteRequest{Title: "dice", Body: "roll: "})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created note.Note
	decode(t, rec, &created)

	rec = s.do(t, http.MethodPost, "/api/v1/commands/random-int", map[string]string{"note_id": created.NoteID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Insertion plugin.InsertionResult `json:"insertion"`
		Note      note.Note              `json:"note"`
	}
	decode(t, rec, &body)
	assert.Equal(t, int64(43), body.Insertion.Value)
	assert.Equal(t, "43 ", body.Insertion.Text)
	assert.Equal(t, "roll: 43 ", body.Note.Body)
	assert.Equal(t, 9, body.Note.Cursor.Ch)

	stored, err := s.notes.Get(context.Background(), created.NoteID)
	require.NoError(t, err)
	assert.Equal(t, "roll: 43 ", stored.Body)
}

func TestRunCommand_Errors(t *testing.T) {
	s := newTestServer(t, baseSettings, 0)

	rec := s.do(t, http.MethodPost, "/api/v1/commands/random-int", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/commands/random-int", map[string]string{"note_id": "6f1c1f9e-6a59-4a63-9bde-6d9a1b9a2f10"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/commands/roll-dice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunCommand_ToggleSpaceTwice(t *testing.T) {
	s := newTestServer(t, baseSettings, 0)

	for _, expected := range []bool{false, true} {
		rec := s.do(t, http.MethodPost, "/api/v1/commands/toggle-space", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var result plugin.CommandResult
		decode(t, rec, &result)
		require.NotNil(t, result.Settings)
		assert.Equal(t, expected, result.Settings.SpaceAfterNumber)
	}
}

func TestListCommands(t *testing.T) {
	s := newTestServer(t, baseSettings, 0)

	rec := s.do(t, http.MethodGet, "/api/v1/commands", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Commands []plugin.Command `json:"commands"`
	}
	decode(t, rec, &body)
	require.Len(t, body.Commands, 2)
	assert.Equal(t, "random-int", body.Commands[0].ID)
}

func TestNoteEndpoints(t *testing.T) {
	s := newTestServer(t, baseSettings, 0)

	rec := s.do(t, http.MethodPost, "/api/v1/notes", note.CreateNoteRequest{Title: ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/notes", note.CreateNoteRequest{Title: "n", Body: "abc"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created note.Note
	decode(t, rec, &created)

	rec = s.do(t, http.MethodPut, "/api/v1/notes/"+created.NoteID+"/cursor", map[string]int{"line": 0, "ch": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	var moved note.Note
	decode(t, rec, &moved)
	assert.Equal(t, 1, moved.Cursor.Ch)

	rec = s.do(t, http.MethodPut, "/api/v1/notes/"+created.NoteID+"/body", note.UpdateBodyRequest{Body: "xyz!"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/notes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Count int `json:"count"`
	}
	decode(t, rec, &list)
	assert.Equal(t, 1, list.Count)

	rec = s.do(t, http.MethodDelete, "/api/v1/notes/"+created.NoteID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/notes/"+created.NoteID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, baseSettings, 0)

	rec := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "randint_")
}

func TestFileBackedSettingsStore(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := settings.NewFileStore(fs, "/data.json")
	p := plugin.New(store, rng.Fixed(0))
	require.NoError(t, p.Load(context.Background()))

	testDB := testutil.SetupTestDB(t)
	notes := note.NewManager(testDB.DB)
	router := SetupRoutes(NewHandler(p, notes), note.NewNoteHandlers(notes), RouterConfig{})
	s := &testServer{router: router, notes: notes, plugin: p}

	rec := s.do(t, http.MethodPatch, "/api/v1/settings/high", map[string]string{"value": "6"})
	require.Equal(t, http.StatusOK, rec.Code)

	data, err := afero.ReadFile(fs, "/data.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"highRange":6`)

	rec = s.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code, "metrics disabled without a handler")
}
