// Package plugin implements the random number commands and owns the settings
// they read.
package plugin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/VoidMesh/randint/internal/editor"
	"github.com/VoidMesh/randint/internal/metrics"
	"github.com/VoidMesh/randint/internal/rng"
	"github.com/VoidMesh/randint/internal/settings"
)

const Version = "1.2.0"

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrEditorRequired = errors.New("command requires an editor")
	ErrNotLoaded      = errors.New("plugin settings not loaded")
)

// InsertionResult describes text placed into a document by a command.
type InsertionResult struct {
	Value  int64           `json:"value"`
	Text   string          `json:"text"`
	From   editor.Position `json:"from"`
	Cursor editor.Position `json:"cursor"`
}

// Plugin holds the settings and runs commands against editors. It is safe
// for concurrent use.
type Plugin struct {
	store  settings.Store
	source rng.Source

	saveMu   sync.Mutex
	mu       sync.Mutex
	settings settings.Settings
	loaded   bool
	commands map[string]Command
	order    []string
}

// New creates a plugin that persists to store and draws from source.
func New(store settings.Store, source rng.Source) *Plugin {
	p := &Plugin{
		store:    store,
		source:   source,
		commands: make(map[string]Command),
	}
	p.registerCommands()
	return p
}

// Load reads the stored settings over fresh defaults. A record that cannot be
// decoded is logged and replaced by defaults.
func (p *Plugin) Load(ctx context.Context) error {
	log.Info("Loading Random Number Generator", "version", Version)

	p.saveMu.Lock()
	defer p.saveMu.Unlock()

	defaults := settings.Defaults(p.source)
	s, err := settings.Load(ctx, p.store, defaults)
	if err != nil {
		if !errors.Is(err, settings.ErrCorrupt) {
			return err
		}
		log.Warn("Stored settings unreadable, using defaults", "error", err)
		s = defaults
	}

	p.mu.Lock()
	p.settings = s
	p.loaded = true
	p.mu.Unlock()

	log.Debug("Settings loaded",
		"low_range", s.LowRange,
		"high_range", s.HighRange,
		"space_after_number", s.SpaceAfterNumber,
	)
	return nil
}

// Settings returns a copy of the current settings.
func (p *Plugin) Settings() settings.Settings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings
}

// ReplaceSettings validates and stores a complete settings record.
func (p *Plugin) ReplaceSettings(ctx context.Context, s settings.Settings) (settings.Settings, error) {
	if err := settings.Validate(s); err != nil {
		return p.Settings(), err
	}

	return p.mutate(ctx, "replace", func(settings.Settings) (settings.Settings, error) {
		return s, nil
	})
}

// UpdateField applies a settings form edit and saves the result. Input that
// does not parse is recovered from as described by settings.ApplyField.
func (p *Plugin) UpdateField(ctx context.Context, field, text string) (settings.Settings, settings.FieldResult, error) {
	var result settings.FieldResult
	updated, err := p.mutate(ctx, "form", func(current settings.Settings) (settings.Settings, error) {
		next, r, err := settings.ApplyField(current, field, text)
		result = r
		return next, err
	})
	if err != nil {
		return updated, result, err
	}

	if result.Recovered != nil {
		metrics.SettingsRecovered.WithLabelValues(field).Inc()
		log.Debug("Settings input recovered", "field", field, "input", text, "error", result.Recovered)
	}
	return updated, result, nil
}

// ToggleSpace flips the trailing space option and saves it.
func (p *Plugin) ToggleSpace(ctx context.Context) (settings.Settings, error) {
	updated, err := p.mutate(ctx, "toggle", func(current settings.Settings) (settings.Settings, error) {
		return settings.Toggle(current), nil
	})
	if err != nil {
		return updated, err
	}

	log.Info("Space after number toggled", "space_after_number", updated.SpaceAfterNumber)
	return updated, nil
}

// Insert draws a number with the current settings and inserts it at the
// editor's cursor, followed by a space when that option is on.
func (p *Plugin) Insert(ed editor.Editor) (*InsertionResult, error) {
	p.mu.Lock()
	s := p.settings
	loaded := p.loaded
	p.mu.Unlock()

	if !loaded {
		return nil, ErrNotLoaded
	}

	value := rng.Generate(s.SeedValue, s.LowRange, s.HighRange, p.source)
	text := strconv.FormatInt(value, 10)
	if s.SpaceAfterNumber {
		text += " "
	}

	from := editor.AddText(ed, text)
	metrics.NumbersGenerated.Inc()

	log.Debug("Random integer inserted", "value", value, "line", from.Line, "ch", from.Ch)
	return &InsertionResult{
		Value:  value,
		Text:   text,
		From:   from,
		Cursor: ed.GetCursor(),
	}, nil
}

// mutate derives new settings from the current ones, persists them and only
// then makes them current. Mutations are serialised by saveMu. mu is held only
// to read and publish and never across the store write.
func (p *Plugin) mutate(ctx context.Context, source string, fn func(settings.Settings) (settings.Settings, error)) (settings.Settings, error) {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()

	p.mu.Lock()
	current, loaded := p.settings, p.loaded
	p.mu.Unlock()

	if !loaded {
		return current, ErrNotLoaded
	}

	next, err := fn(current)
	if err != nil {
		return current, err
	}

	if err := settings.Save(ctx, p.store, next); err != nil {
		return current, fmt.Errorf("failed to persist settings: %w", err)
	}

	p.mu.Lock()
	p.settings = next
	p.mu.Unlock()

	metrics.SettingsSaves.WithLabelValues(source).Inc()
	return next, nil
}
