package parser

import (
	"imaginarium/internal/ontology"
)

// matchState is the per-attempt state of one rule: the read-only store used
// for lexicon lookups and the bindings captured so far.
type matchState struct {
	store    *ontology.Store
	bindings Bindings
}

// Matcher consumes a prefix of the stream starting at c and calls k with the
// cursor after it. A matcher that can consume input in several ways calls k
// once per way until k succeeds, which is how the parser backtracks.
type Matcher func(m *matchState, c Cursor, k func(Cursor) bool) bool

// producer is a matcher that also yields a value.
type producer[T any] func(m *matchState, c Cursor, k func(v T, next Cursor) bool) bool

// Word matches one token equal (case-insensitively) to any of words.
func Word(words ...string) Matcher {
	return func(m *matchState, c Cursor, k func(Cursor) bool) bool {
		if !c.is(words...) {
			return false
		}
		return k(c.Advance(1))
	}
}

// Seq matches each matcher in turn.
func Seq(ms ...Matcher) Matcher {
	if len(ms) == 0 {
		return func(m *matchState, c Cursor, k func(Cursor) bool) bool { return k(c) }
	}
	first, rest := ms[0], Seq(ms[1:]...)
	return func(m *matchState, c Cursor, k func(Cursor) bool) bool {
		return first(m, c, func(next Cursor) bool {
			return rest(m, next, k)
		})
	}
}

// Opt matches ms if possible and otherwise nothing.
func Opt(ms ...Matcher) Matcher {
	inner := Seq(ms...)
	return func(m *matchState, c Cursor, k func(Cursor) bool) bool {
		return inner(m, c, k) || k(c)
	}
}

// Alt tries each alternative in order.
func Alt(ms ...Matcher) Matcher {
	return func(m *matchState, c Cursor, k func(Cursor) bool) bool {
		for _, alt := range ms {
			if alt(m, c, k) {
				return true
			}
		}
		return false
	}
}

// Flag binds name to true when ms matches and to false otherwise.
func Flag(name string, ms ...Matcher) Matcher {
	inner := Seq(ms...)
	return func(m *matchState, c Cursor, k func(Cursor) bool) bool {
		matched := inner(m, c, func(next Cursor) bool {
			return m.bindings.with(name, true, func() bool { return k(next) })
		})
		return matched || m.bindings.with(name, false, func() bool { return k(c) })
	}
}

// Set binds name to value without consuming input.
func Set(name string, value any) Matcher {
	return func(m *matchState, c Cursor, k func(Cursor) bool) bool {
		return m.bindings.with(name, value, func() bool { return k(c) })
	}
}

// Token matches one token satisfying pred.
func Token(pred func(string) bool) Matcher {
	return func(m *matchState, c Cursor, k func(Cursor) bool) bool {
		if c.Remaining() == 0 || !pred(c.Peek()) {
			return false
		}
		return k(c.Advance(1))
	}
}

func capture[T any](name string, p producer[T]) Matcher {
	return func(m *matchState, c Cursor, k func(Cursor) bool) bool {
		return p(m, c, func(v T, next Cursor) bool {
			return m.bindings.with(name, v, func() bool { return k(next) })
		})
	}
}

// listOf matches "x", "x and y", "x, y, or z" and similar, yielding every
// split from shortest to longest.
func listOf[T any](item producer[T]) producer[[]T] {
	return func(m *matchState, c Cursor, k func([]T, Cursor) bool) bool {
		var more func(acc []T, c Cursor) bool
		more = func(acc []T, c Cursor) bool {
			return item(m, c, func(v T, next Cursor) bool {
				items := append(acc[:len(acc):len(acc)], v)
				if k(items, next) {
					return true
				}
				return separator(next, func(after Cursor) bool {
					return more(items, after)
				})
			})
		}
		return more(nil, c)
	}
}

// separator matches ",", "and", "or", ", and" or ", or".
func separator(c Cursor, k func(Cursor) bool) bool {
	if c.is(",") {
		after := c.Advance(1)
		if after.is("and", "or") && k(after.Advance(1)) {
			return true
		}
		return k(after)
	}
	if c.is("and", "or") {
		return k(c.Advance(1))
	}
	return false
}
