// Package editor provides the minimal text editing surface commands operate
// on: a cursor and range replacement over a line-oriented document.
package editor

import (
	"strings"
	"unicode/utf8"
)

// Position addresses a character in a document. Line and Ch are zero based;
// Ch counts characters, not bytes.
type Position struct {
	Line int `json:"line"`
	Ch   int `json:"ch"`
}

// Editor is the editing API commands rely on.
type Editor interface {
	GetCursor() Position
	SetCursor(pos Position)
	ReplaceRange(text string, from Position)
}

// AddText inserts text at the cursor and moves the cursor past it on the
// same line. It returns the position the text was inserted at.
func AddText(ed Editor, text string) Position {
	cursor := ed.GetCursor()
	ed.ReplaceRange(text, cursor)
	ed.SetCursor(Position{Line: cursor.Line, Ch: cursor.Ch + utf8.RuneCountInString(text)})
	return cursor
}

// Buffer is an in-memory Editor.
type Buffer struct {
	lines  [][]rune
	cursor Position
}

// NewBuffer creates a buffer holding text with the cursor at pos.
func NewBuffer(text string, pos Position) *Buffer {
	b := &Buffer{}
	for _, line := range strings.Split(text, "\n") {
		b.lines = append(b.lines, []rune(line))
	}
	b.cursor = b.clip(pos)
	return b
}

// Text returns the document contents.
func (b *Buffer) Text() string {
	parts := make([]string, len(b.lines))
	for i, line := range b.lines {
		parts[i] = string(line)
	}
	return strings.Join(parts, "\n")
}

// LineCount returns the number of lines, which is at least one.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// Line returns line n, or "" when out of range.
func (b *Buffer) Line(n int) string {
	if n < 0 || n >= len(b.lines) {
		return ""
	}
	return string(b.lines[n])
}

func (b *Buffer) GetCursor() Position {
	return b.cursor
}

// SetCursor moves the cursor, clamping it to the document.
func (b *Buffer) SetCursor(pos Position) {
	b.cursor = b.clip(pos)
}

// ReplaceRange inserts text at from. The cursor is left where it was.
func (b *Buffer) ReplaceRange(text string, from Position) {
	from = b.clip(from)
	line := b.lines[from.Line]

	head := string(line[:from.Ch])
	tail := string(line[from.Ch:])
	inserted := strings.Split(head+text+tail, "\n")

	replacement := make([][]rune, len(inserted))
	for i, l := range inserted {
		replacement[i] = []rune(l)
	}

	lines := make([][]rune, 0, len(b.lines)+len(replacement)-1)
	lines = append(lines, b.lines[:from.Line]...)
	lines = append(lines, replacement...)
	lines = append(lines, b.lines[from.Line+1:]...)
	b.lines = lines
	b.cursor = b.clip(b.cursor)
}

// Move shifts the cursor by the given deltas. Moving past the end of a line
// does not wrap.
func (b *Buffer) Move(dLine, dCh int) {
	b.SetCursor(Position{Line: b.cursor.Line + dLine, Ch: b.cursor.Ch + dCh})
}

func (b *Buffer) clip(pos Position) Position {
	if pos.Line < 0 {
		return Position{}
	}
	if pos.Line >= len(b.lines) {
		last := len(b.lines) - 1
		return Position{Line: last, Ch: len(b.lines[last])}
	}
	if pos.Ch < 0 {
		pos.Ch = 0
	}
	if n := len(b.lines[pos.Line]); pos.Ch > n {
		pos.Ch = n
	}
	return pos
}
