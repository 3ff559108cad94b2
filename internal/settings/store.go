package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
)

// Store persists the opaque settings record. LoadData returns nil data when
// nothing has been saved yet.
type Store interface {
	LoadData(ctx context.Context) ([]byte, error)
	SaveData(ctx context.Context, data []byte) error
}

// Load reads the stored record and merges it over defaults.
func Load(ctx context.Context, store Store, defaults Settings) (Settings, error) {
	raw, err := store.LoadData(ctx)
	if err != nil {
		return defaults, fmt.Errorf("failed to load settings: %w", err)
	}
	return Merge(defaults, raw)
}

// Save writes s to store.
func Save(ctx context.Context, store Store, s Settings) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := store.SaveData(ctx, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// FileStore keeps the record in a JSON file.
type FileStore struct {
	fs   afero.Fs
	path string
}

// NewFileStore creates a store writing to path on fs.
func NewFileStore(fs afero.Fs, path string) *FileStore {
	return &FileStore{fs: fs, path: path}
}

func (s *FileStore) LoadData(ctx context.Context) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Debug("No settings file yet", "path", s.path)
			return nil, nil
		}
		return nil, err
	}
	log.Debug("Settings file read", "path", s.path, "bytes", len(data))
	return data, nil
}

// SaveData writes to a temporary file first and renames it over the target.
func (s *FileStore) SaveData(ctx context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}

	log.Debug("Settings file written", "path", s.path, "bytes", len(data))
	return nil
}

// DataQueries is the subset of database queries DBStore needs.
type DataQueries interface {
	GetPluginData(ctx context.Context, pluginID string) (string, error)
	UpsertPluginData(ctx context.Context, pluginID, data string) error
}

// DBStore keeps the record as a blob keyed by plugin id.
type DBStore struct {
	queries  DataQueries
	pluginID string
}

// NewDBStore creates a store for pluginID.
func NewDBStore(queries DataQueries, pluginID string) *DBStore {
	return &DBStore{queries: queries, pluginID: pluginID}
}

func (s *DBStore) LoadData(ctx context.Context) ([]byte, error) {
	data, err := s.queries.GetPluginData(ctx, s.pluginID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(data), nil
}

func (s *DBStore) SaveData(ctx context.Context, data []byte) error {
	return s.queries.UpsertPluginData(ctx, s.pluginID, string(data))
}
