package parser

import (
	"imaginarium/internal/tokens"
)

// Cursor is a position in a token stream. It is a value: saving a Cursor is
// marking the position and reusing a saved one is resetting to it.
type Cursor struct {
	toks []string
	pos  int
}

// NewCursor starts a cursor at the beginning of toks.
func NewCursor(toks []string) Cursor {
	return Cursor{toks: toks}
}

// Pos returns the index of the next token.
func (c Cursor) Pos() int { return c.pos }

// Remaining returns the number of unconsumed tokens.
func (c Cursor) Remaining() int { return len(c.toks) - c.pos }

// Peek returns the next token, or "" at the end.
func (c Cursor) Peek() string {
	if c.pos >= len(c.toks) {
		return ""
	}
	return c.toks[c.pos]
}

// Take returns the next n tokens without advancing.
func (c Cursor) Take(n int) ([]string, bool) {
	if n <= 0 || c.pos+n > len(c.toks) {
		return nil, false
	}
	return c.toks[c.pos : c.pos+n], true
}

// Advance returns a cursor n tokens further on.
func (c Cursor) Advance(n int) Cursor {
	c.pos += n
	if c.pos > len(c.toks) {
		c.pos = len(c.toks)
	}
	return c
}

// AtEnd reports whether only sentence-final punctuation remains.
func (c Cursor) AtEnd() bool {
	for _, t := range c.toks[c.pos:] {
		if t != "." && t != "?" && t != "!" {
			return false
		}
	}
	return true
}

func (c Cursor) words() []string { return c.toks }

// is reports whether the next token folds to one of words.
func (c Cursor) is(words ...string) bool {
	next := tokens.Fold(c.Peek())
	for _, w := range words {
		if next == w {
			return true
		}
	}
	return false
}
