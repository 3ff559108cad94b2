package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/charmbracelet/log"
)

// LoggingQueries wraps Queries to add debug logging
type LoggingQueries struct {
	*Queries
}

// NewLoggingQueries creates a new LoggingQueries instance
func NewLoggingQueries(db DBTX) *LoggingQueries {
	return &LoggingQueries{
		Queries: New(db),
	}
}

// WithTx creates a new LoggingQueries with a transaction
func (lq *LoggingQueries) WithTx(tx *sql.Tx) *LoggingQueries {
	return &LoggingQueries{
		Queries: lq.Queries.WithTx(tx),
	}
}

func (lq *LoggingQueries) logQuery(queryName string, start time.Time, err error, args ...interface{}) {
	duration := time.Since(start)

	if err != nil {
		log.Debug("Database query failed",
			"query", queryName,
			"duration", duration,
			"error", err,
			"args", args,
		)
	} else {
		log.Debug("Database query executed",
			"query", queryName,
			"duration", duration,
			"args", args,
		)
	}
}

// CreateNote with logging
func (lq *LoggingQueries) CreateNote(ctx context.Context, arg CreateNoteParams) (Note, error) {
	start := time.Now()
	log.Debug("Executing CreateNote", "note_id", arg.NoteID, "title", arg.Title)

	result, err := lq.Queries.CreateNote(ctx, arg)
	lq.logQuery("CreateNote", start, err, arg.NoteID)
	return result, err
}

// GetNote with logging
func (lq *LoggingQueries) GetNote(ctx context.Context, noteID string) (Note, error) {
	start := time.Now()
	log.Debug("Executing GetNote", "note_id", noteID)

	result, err := lq.Queries.GetNote(ctx, noteID)
	lq.logQuery("GetNote", start, err, noteID)

	if err == nil {
		log.Debug("GetNote result",
			"note_id", result.NoteID,
			"body_length", len(result.Body),
			"cursor_line", result.CursorLine,
			"cursor_ch", result.CursorCh,
		)
	}

	return result, err
}

// ListNotes with logging
func (lq *LoggingQueries) ListNotes(ctx context.Context, limit int64) ([]Note, error) {
	start := time.Now()
	log.Debug("Executing ListNotes", "limit", limit)

	result, err := lq.Queries.ListNotes(ctx, limit)
	lq.logQuery("ListNotes", start, err, limit)

	if err == nil {
		log.Debug("ListNotes result", "note_count", len(result))
	}

	return result, err
}

// UpdateNoteContent with logging
func (lq *LoggingQueries) UpdateNoteContent(ctx context.Context, arg UpdateNoteContentParams) (int64, error) {
	start := time.Now()
	log.Debug("Executing UpdateNoteContent",
		"note_id", arg.NoteID,
		"body_length", len(arg.Body),
		"cursor_line", arg.CursorLine,
		"cursor_ch", arg.CursorCh,
	)

	result, err := lq.Queries.UpdateNoteContent(ctx, arg)
	lq.logQuery("UpdateNoteContent", start, err, arg.NoteID)
	return result, err
}

// UpdateNoteCursor with logging
func (lq *LoggingQueries) UpdateNoteCursor(ctx context.Context, arg UpdateNoteCursorParams) (int64, error) {
	start := time.Now()
	log.Debug("Executing UpdateNoteCursor", "note_id", arg.NoteID, "cursor_line", arg.CursorLine, "cursor_ch", arg.CursorCh)

	result, err := lq.Queries.UpdateNoteCursor(ctx, arg)
	lq.logQuery("UpdateNoteCursor", start, err, arg)
	return result, err
}

// DeleteNote with logging
func (lq *LoggingQueries) DeleteNote(ctx context.Context, noteID string) (int64, error) {
	start := time.Now()
	log.Debug("Executing DeleteNote", "note_id", noteID)

	result, err := lq.Queries.DeleteNote(ctx, noteID)
	lq.logQuery("DeleteNote", start, err, noteID)
	return result, err
}

// GetPluginData with logging
func (lq *LoggingQueries) GetPluginData(ctx context.Context, pluginID string) (string, error) {
	start := time.Now()
	log.Debug("Executing GetPluginData", "plugin_id", pluginID)

	result, err := lq.Queries.GetPluginData(ctx, pluginID)
	lq.logQuery("GetPluginData", start, err, pluginID)
	return result, err
}

// UpsertPluginData with logging
func (lq *LoggingQueries) UpsertPluginData(ctx context.Context, pluginID, data string) error {
	start := time.Now()
	log.Debug("Executing UpsertPluginData", "plugin_id", pluginID, "data", data)

	err := lq.Queries.UpsertPluginData(ctx, pluginID, data)
	lq.logQuery("UpsertPluginData", start, err, pluginID)
	return err
}
