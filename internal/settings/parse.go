package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/VoidMesh/randint/internal/rng"
)

var (
	ErrEmpty      = errors.New("no digits")
	ErrOutOfRange = errors.New("value out of range")
)

// ParseError describes a configuration value that could not be parsed.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse config value %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseConfigValue parses a string of decimal digits. It does not substitute
// defaults; callers decide what a failure means.
func ParseConfigValue(text string) (int64, error) {
	if text == "" {
		return 0, &ParseError{Input: text, Err: ErrEmpty}
	}

	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, &ParseError{Input: text, Err: fmt.Errorf("unexpected character %q", r)}
		}
	}

	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, &ParseError{Input: text, Err: ErrOutOfRange}
	}
	return v, nil
}

// SanitizeSeed replaces every non-digit with the decimal value of its UTF-16
// code units, so "a1" becomes "971".
func SanitizeSeed(text string) string {
	var b strings.Builder
	for _, r := range text {
		if isDigit(r) {
			b.WriteRune(r)
			continue
		}
		for _, unit := range utf16.Encode([]rune{r}) {
			b.WriteString(strconv.Itoa(int(unit)))
		}
	}
	return b.String()
}

// SanitizeRange drops every non-digit.
func SanitizeRange(text string) string {
	return strings.Map(func(r rune) rune {
		if isDigit(r) {
			return r
		}
		return -1
	}, text)
}

// ParseSeed sanitises text and reduces it modulo rng.SeedSpace. The reduction
// keeps the last twelve digits, which is exact for inputs of any length.
func ParseSeed(text string) (int64, error) {
	digits := SanitizeSeed(text)
	width := len(strconv.FormatInt(rng.SeedSpace-1, 10))
	if len(digits) > width {
		digits = digits[len(digits)-width:]
	}
	return ParseConfigValue(digits)
}

// ParseRange sanitises text and parses what remains.
func ParseRange(text string) (int64, error) {
	return ParseConfigValue(SanitizeRange(text))
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
