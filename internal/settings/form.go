package settings

import (
	"errors"
	"fmt"
	"strconv"
)

// Field names accepted by ApplyField.
const (
	FieldSeed  = "seed"
	FieldLow   = "low"
	FieldHigh  = "high"
	FieldSpace = "space"
)

var ErrUnknownField = errors.New("unknown settings field")

// Fields lists the editable fields in display order.
var Fields = []string{FieldSeed, FieldLow, FieldHigh, FieldSpace}

// FieldResult describes how a form edit was applied. Display is the text the
// field should show afterwards and Recovered holds the parse error that was
// absorbed by substituting a value, if any.
type FieldResult struct {
	Field     string `json:"field"`
	Display   string `json:"display"`
	Recovered error  `json:"-"`
}

// ApplyField applies one settings form edit to s.
//
// A seed that does not parse becomes 0. A low or high value that does not
// parse keeps the previous value and the field is cleared. Only an unknown
// field name is reported as an error.
func ApplyField(s Settings, field, text string) (Settings, FieldResult, error) {
	result := FieldResult{Field: field}

	switch field {
	case FieldSeed:
		seed, err := ParseSeed(text)
		if err != nil {
			seed = 0
			result.Recovered = err
		}
		s.SeedValue = seed
		result.Display = text

	case FieldLow, FieldHigh:
		v, err := ParseRange(text)
		if err != nil {
			result.Recovered = err
			result.Display = ""
			return s, result, nil
		}
		if field == FieldLow {
			s.LowRange = v
		} else {
			s.HighRange = v
		}
		result.Display = strconv.FormatInt(v, 10)

	case FieldSpace:
		v, err := strconv.ParseBool(text)
		if err != nil {
			result.Recovered = &ParseError{Input: text, Err: err}
			result.Display = strconv.FormatBool(s.SpaceAfterNumber)
			return s, result, nil
		}
		s.SpaceAfterNumber = v
		result.Display = strconv.FormatBool(v)

	default:
		return s, result, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	return s, result, nil
}

// FieldValue renders the current value of field for display.
func FieldValue(s Settings, field string) string {
	switch field {
	case FieldSeed:
		return strconv.FormatInt(s.SeedValue, 10)
	case FieldLow:
		return strconv.FormatInt(s.LowRange, 10)
	case FieldHigh:
		return strconv.FormatInt(s.HighRange, 10)
	case FieldSpace:
		return strconv.FormatBool(s.SpaceAfterNumber)
	}
	return ""
}
