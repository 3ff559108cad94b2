// Package settings holds the random number plugin configuration together with
// the parsing rules used by its settings form and the stores it is persisted to.
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/VoidMesh/randint/internal/rng"
)

var ErrCorrupt = errors.New("stored settings are corrupt")

const (
	DefaultLowRange  = 1
	DefaultHighRange = 100
)

// Settings is the persisted plugin configuration. LowRange <= HighRange is
// assumed but never enforced.
type Settings struct {
	SeedValue        int64 `json:"seedValue"`
	LowRange         int64 `json:"lowRange"`
	HighRange        int64 `json:"highRange"`
	SpaceAfterNumber bool  `json:"spaceAfterNumber"`
}

// Defaults returns the configuration used when nothing has been saved yet.
// The seed is drawn from src.
func Defaults(src rng.Source) Settings {
	return Settings{
		SeedValue:        rng.DefaultSeed(src),
		LowRange:         DefaultLowRange,
		HighRange:        DefaultHighRange,
		SpaceAfterNumber: true,
	}
}

// Merge overlays a stored record on top of defaults. Keys missing from raw
// keep their default value; an empty or null record yields defaults.
func Merge(defaults Settings, raw []byte) (Settings, error) {
	merged := defaults
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return merged, nil
	}

	if err := json.Unmarshal(trimmed, &merged); err != nil {
		return defaults, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return merged, nil
}

// Encode renders s in its persisted form.
func Encode(s Settings) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode settings: %w", err)
	}
	return data, nil
}

// Toggle flips the trailing space option.
func Toggle(s Settings) Settings {
	s.SpaceAfterNumber = !s.SpaceAfterNumber
	return s
}

// Validate reports every field that cannot be stored as is.
func Validate(s Settings) error {
	var result *multierror.Error

	if s.SeedValue < 0 {
		result = multierror.Append(result, fmt.Errorf("seedValue must not be negative, got %d", s.SeedValue))
	}
	if s.SeedValue >= rng.SeedSpace {
		result = multierror.Append(result, fmt.Errorf("seedValue must be below %d, got %d", int64(rng.SeedSpace), s.SeedValue))
	}

	return result.ErrorOrNil()
}
