package plugin

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/VoidMesh/randint/internal/editor"
	"github.com/VoidMesh/randint/internal/note"
	"github.com/VoidMesh/randint/internal/rng"
	"github.com/VoidMesh/randint/internal/settings"
	"github.com/VoidMesh/randint/internal/testutil"
)

// notifyingStore reports when a save has started.
type notifyingStore struct {
	settings.Store
	once   sync.Once
	saving chan struct{}
}

func (s *notifyingStore) SaveData(ctx context.Context, data []byte) error {
	s.once.Do(func() { close(s.saving) })
	return s.Store.SaveData(ctx, data)
}

func newDBPlugin(t *testing.T) (*Plugin, *note.Manager, *notifyingStore) {
	t.Helper()

	testDB := testutil.SetupTestDB(t)
	store := &notifyingStore{
		Store:  settings.NewDBStore(testDB.Queries, "random-int"),
		saving: make(chan struct{}),
	}
	require.NoError(t, settings.Save(context.Background(), store.Store, settings.Settings{
		SeedValue: 42, LowRange: 1, HighRange: 100, SpaceAfterNumber: true,
	}))

	p := New(store, rng.Fixed(0))
	require.NoError(t, p.Load(context.Background()))
	return p, note.NewManager(testDB.DB), store
}

func TestInsert_NotBlockedByPendingSave(t *testing.T) {
	p, notes, store := newDBPlugin(t)

	created, err := notes.Create(context.Background(), note.CreateNoteRequest{Title: "t"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	updateErr := make(chan error, 1)
	start := time.Now()

	// The edit transaction holds the only connection, so the save below waits
	// for it while the command runs.
	updated, err := notes.Edit(ctx, created.NoteID, func(ed editor.Editor) error {
		go func() {
			_, _, err := p.UpdateField(ctx, settings.FieldLow, "5")
			updateErr <- err
		}()

		select {
		case <-store.saving:
		case <-ctx.Done():
			return ctx.Err()
		}

		result, err := p.Execute(ctx, CommandRandomInt, ed)
		if err != nil {
			return err
		}
		assert.Equal(t, int64(43), result.Insertion.Value)
		return nil
	})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, "43 ", updated.Body)

	require.NoError(t, <-updateErr)
	assert.Equal(t, int64(5), p.Settings().LowRange)

	stored, err := settings.Load(context.Background(), store, settings.Settings{})
	require.NoError(t, err)
	assert.Equal(t, int64(5), stored.LowRange)
}

func TestConcurrentCommandsAndSettingsChanges(t *testing.T) {
	p, notes, store := newDBPlugin(t)

	created, err := notes.Create(context.Background(), note.CreateNoteRequest{Title: "t"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	const rounds = 10
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < rounds; i++ {
		g.Go(func() error {
			_, err := notes.Edit(gctx, created.NoteID, func(ed editor.Editor) error {
				_, err := p.Execute(gctx, CommandRandomInt, ed)
				return err
			})
			return err
		})
		g.Go(func() error {
			_, err := p.Execute(gctx, CommandToggleSpace, nil)
			return err
		})
	}
	require.NoError(t, g.Wait())

	final, err := notes.Get(context.Background(), created.NoteID)
	require.NoError(t, err)
	assert.Equal(t, rounds, strings.Count(final.Body, "43"))

	// an even number of toggles restores the option
	assert.True(t, p.Settings().SpaceAfterNumber)

	stored, err := settings.Load(context.Background(), store, settings.Settings{})
	require.NoError(t, err)
	assert.Equal(t, p.Settings(), stored)
}
