package parser

import (
	"strconv"
	"strings"

	"imaginarium/internal/morph"
	"imaginarium/internal/ontology"
	"imaginarium/internal/tokens"
)

// GrammaticalNumber selects singular or plural noun forms.
type GrammaticalNumber int

const (
	EitherNumber GrammaticalNumber = iota
	Singular
	Plural
)

// VerbForm selects which inflection a verb segment accepts.
type VerbForm int

const (
	FormBase VerbForm = iota
	FormThirdPerson
	FormPlural
	FormGerund
	// FormGerundOrBase accepts "chasing" or "chase".
	FormGerundOrBase
)

const (
	maxNounWords   = 3
	maxVerbWords   = 4
	maxProperWords = 3
	maxValueWords  = 3
)

// verbStop are words that cannot appear in a new verb phrase.
var verbStop = wordSet(
	"a", "an", "the", "is", "are", "can", "cannot", "must", "not", "never",
	"always", "and", "or", "exactly", "at", "one", "themselves", "rarely",
	"sometimes", "often", "usually", "each", "does", "do",
)

// nounStop are words that cannot appear in a new noun, adjective or proper
// noun.
var nounStop = union(verbStop, wordSet(
	"be", "of", "kind", "kinds", "with", "to", "for", "by", "in", "on", "from",
	"between", "have", "has", "how", "many", "what", "there", "either",
	"identified", "as", "way", "mutually", "exclusive", "symmetric", "mutual",
	"about", "after", "before", "into", "over", "under", "through", "than",
	"least", "most", "imagine", "include",
))

// propertyStop are words that cannot appear in a property name.
var propertyStop = wordSet("a", "an", "the", "and", "or", "between", "from", "is", "are")

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

func union(a, b map[string]bool) map[string]bool {
	m := make(map[string]bool, len(a)+len(b))
	for w := range a {
		m[w] = true
	}
	for w := range b {
		m[w] = true
	}
	return m
}

// openWord reports whether tok may be part of a newly introduced name.
func openWord(tok string, stop map[string]bool) bool {
	if tok == "" || tokens.IsPunctuation(tok) || tokens.IsQuoted(tok) {
		return false
	}
	if _, err := strconv.ParseFloat(tok, 64); err == nil {
		return false
	}
	if _, ok := numberWords[tokens.Fold(tok)]; ok {
		return false
	}
	return !stop[tokens.Fold(tok)]
}

func allOpen(words []string, stop map[string]bool) bool {
	for _, w := range words {
		if !openWord(w, stop) {
			return false
		}
	}
	return true
}

// newWords yields runs of open words that do not already name anything,
// trying lengths from max down to 1.
func newWords(m *matchState, c Cursor, max int, stop map[string]bool, accept func([]string) bool, k func([]string, Cursor) bool) bool {
	for n := max; n >= 1; n-- {
		words, ok := c.Take(n)
		if !ok || !allOpen(words, stop) {
			continue
		}
		if _, known := m.store.Lookup(tokens.New(words...)); known {
			continue
		}
		if accept != nil && !accept(words) {
			continue
		}
		if k(words, c.Advance(n)) {
			return true
		}
	}
	return false
}

// =============================================================================
// NOUNS
// =============================================================================

// NounRef is a common noun segment: either a known noun or words naming a
// noun that does not exist yet.
type NounRef struct {
	ID     ontology.ID
	Words  tokens.String
	Plural bool
}

// Known reports whether the segment names an existing noun.
func (r NounRef) Known() bool { return r.ID != ontology.NoID }

func nounPhrase(number GrammaticalNumber, allowNew bool) producer[NounRef] {
	return func(m *matchState, c Cursor, k func(NounRef, Cursor) bool) bool {
		for _, match := range m.store.Matches(c.words(), c.Pos()) {
			n := m.store.Noun(match.ID)
			if n == nil {
				continue
			}
			words, _ := c.Take(match.Length)
			ts := tokens.New(words...)
			isSingular, isPlural := ts.Equal(n.Singular()), ts.Equal(n.Plural)
			switch {
			case number == Singular && !isSingular:
				continue
			case number == Plural && !isPlural:
				continue
			}
			ref := NounRef{ID: n.ID(), Words: ts, Plural: isPlural && !isSingular}
			if k(ref, c.Advance(match.Length)) {
				return true
			}
		}
		if !allowNew {
			return false
		}
		return newWords(m, c, maxNounWords, nounStop, nil, func(words []string, next Cursor) bool {
			plural := number == Plural || (number == EitherNumber && morph.LooksPlural(words))
			return k(NounRef{ID: ontology.NoID, Words: tokens.New(words...), Plural: plural}, next)
		})
	}
}

// Noun binds a NounRef.
func Noun(name string, number GrammaticalNumber) Matcher {
	return capture(name, nounPhrase(number, true))
}

// KnownNoun binds a NounRef that must already exist.
func KnownNoun(name string, number GrammaticalNumber) Matcher {
	return capture(name, nounPhrase(number, false))
}

// NounList binds a []NounRef.
func NounList(name string, number GrammaticalNumber) Matcher {
	return capture(name, listOf(nounPhrase(number, true)))
}

// =============================================================================
// ADJECTIVES
// =============================================================================

// AdjRef is an adjective segment.
type AdjRef struct {
	ID    ontology.ID
	Words tokens.String
}

// Known reports whether the segment names an existing adjective.
func (r AdjRef) Known() bool { return r.ID != ontology.NoID }

func adjective(allowNew bool) producer[AdjRef] {
	return func(m *matchState, c Cursor, k func(AdjRef, Cursor) bool) bool {
		for _, match := range m.store.Matches(c.words(), c.Pos()) {
			a := m.store.Adjective(match.ID)
			if a == nil {
				continue
			}
			words, _ := c.Take(match.Length)
			if k(AdjRef{ID: a.ID(), Words: tokens.New(words...)}, c.Advance(match.Length)) {
				return true
			}
		}
		if !allowNew {
			return false
		}
		return newWords(m, c, 1, nounStop, nil, func(words []string, next Cursor) bool {
			return k(AdjRef{ID: ontology.NoID, Words: tokens.New(words...)}, next)
		})
	}
}

// Adjective binds an AdjRef.
func Adjective(name string) Matcher { return capture(name, adjective(true)) }

// AdjectiveList binds an []AdjRef.
func AdjectiveList(name string) Matcher { return capture(name, listOf(adjective(true))) }

// KnownAdjectives binds zero or more known adjectives written one after the
// other, as in "imagine a big black cat".
func KnownAdjectives(name string) Matcher {
	var run func(m *matchState, c Cursor, acc []AdjRef, k func([]AdjRef, Cursor) bool) bool
	run = func(m *matchState, c Cursor, acc []AdjRef, k func([]AdjRef, Cursor) bool) bool {
		more := adjective(false)(m, c, func(a AdjRef, next Cursor) bool {
			return run(m, next, append(acc[:len(acc):len(acc)], a), k)
		})
		return more || k(acc, c)
	}
	return capture(name, func(m *matchState, c Cursor, k func([]AdjRef, Cursor) bool) bool {
		return run(m, c, nil, k)
	})
}

// =============================================================================
// VERBS
// =============================================================================

// VerbRef is a verb segment. Words are in the form the segment was matched
// with.
type VerbRef struct {
	ID    ontology.ID
	Words tokens.String
	Form  VerbForm
}

// Known reports whether the segment names an existing verb.
func (r VerbRef) Known() bool { return r.ID != ontology.NoID }

// Base returns the base form of a new verb phrase.
func (r VerbRef) Base() []string {
	words := r.Words.Words()
	switch r.Form {
	case FormThirdPerson:
		return morph.BaseFromThirdPersonPhrase(words)
	case FormGerund, FormGerundOrBase:
		if morph.IsGerund(words) {
			return morph.BaseFromGerundPhrase(words)
		}
	case FormPlural:
		return morph.ReplaceCopula(words, "be")
	}
	return words
}

func verbFormMatches(v *ontology.Verb, ts tokens.String, form VerbForm) bool {
	switch form {
	case FormBase:
		return ts.Equal(v.Forms.Base)
	case FormThirdPerson:
		return ts.Equal(v.Forms.ThirdPerson)
	case FormPlural:
		return ts.Equal(v.Forms.Plural)
	case FormGerund:
		return ts.Equal(v.Forms.Gerund)
	case FormGerundOrBase:
		return ts.Equal(v.Forms.Gerund) || ts.Equal(v.Forms.Base)
	}
	return false
}

// copulaFor is the form of "to be" that may open a new verb phrase in form.
func copulaFor(form VerbForm) string {
	switch form {
	case FormBase:
		return "be"
	case FormThirdPerson:
		return "is"
	case FormPlural:
		return "are"
	case FormGerund, FormGerundOrBase:
		return "being"
	}
	return ""
}

func verbPhrase(form VerbForm, allowNew bool) producer[VerbRef] {
	return func(m *matchState, c Cursor, k func(VerbRef, Cursor) bool) bool {
		for _, match := range m.store.Matches(c.words(), c.Pos()) {
			v := m.store.Verb(match.ID)
			if v == nil {
				continue
			}
			words, _ := c.Take(match.Length)
			ts := tokens.New(words...)
			if !verbFormMatches(v, ts, form) {
				continue
			}
			if k(VerbRef{ID: v.ID(), Words: ts, Form: form}, c.Advance(match.Length)) {
				return true
			}
		}
		if !allowNew {
			return false
		}
		// Shorter phrases first: the object noun phrase follows immediately.
		for n := 1; n <= maxVerbWords; n++ {
			words, ok := c.Take(n)
			if !ok {
				break
			}
			head := tokens.Fold(words[0])
			if !(head == copulaFor(form) && n > 1) && !openWord(words[0], verbStop) {
				continue
			}
			if !allOpen(words[1:], verbStop) {
				continue
			}
			if form == FormGerund && !morph.IsGerund(words) {
				continue
			}
			ts := tokens.New(words...)
			if _, known := m.store.Lookup(ts); known {
				continue
			}
			if k(VerbRef{ID: ontology.NoID, Words: ts, Form: form}, c.Advance(n)) {
				return true
			}
		}
		return false
	}
}

// Verb binds a VerbRef in the given form, known or new.
func Verb(name string, form VerbForm) Matcher {
	return capture(name, verbPhrase(form, true))
}

// KnownVerb binds a VerbRef that must already exist.
func KnownVerb(name string, form VerbForm) Matcher {
	return capture(name, verbPhrase(form, false))
}

// =============================================================================
// PROPER NOUNS
// =============================================================================

// ProperRef is a proper noun segment.
type ProperRef struct {
	ID    ontology.ID
	Words tokens.String
}

// Known reports whether the segment names an existing proper noun.
func (r ProperRef) Known() bool { return r.ID != ontology.NoID }

func properNoun(allowNew bool) producer[ProperRef] {
	return func(m *matchState, c Cursor, k func(ProperRef, Cursor) bool) bool {
		for _, match := range m.store.Matches(c.words(), c.Pos()) {
			p := m.store.ProperNoun(match.ID)
			if p == nil {
				continue
			}
			words, _ := c.Take(match.Length)
			if k(ProperRef{ID: p.ID(), Words: tokens.New(words...)}, c.Advance(match.Length)) {
				return true
			}
		}
		if !allowNew {
			return false
		}
		capitalized := func(words []string) bool {
			for _, w := range words {
				if !tokens.IsCapitalized(w) {
					return false
				}
			}
			return true
		}
		return newWords(m, c, maxProperWords, nounStop, capitalized, func(words []string, next Cursor) bool {
			return k(ProperRef{ID: ontology.NoID, Words: tokens.New(words...)}, next)
		})
	}
}

// Proper binds a ProperRef, known or new.
func Proper(name string) Matcher { return capture(name, properNoun(true)) }

// KnownProper binds a ProperRef that must already exist.
func KnownProper(name string) Matcher { return capture(name, properNoun(false)) }

// =============================================================================
// NUMBERS, TEXT AND FREE WORDS
// =============================================================================

// Number is a numeric segment.
type Number struct {
	Value   float64
	Integer bool
}

var numberWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
	"twenty": 20, "dozen": 12,
}

func number(m *matchState, c Cursor, k func(Number, Cursor) bool) bool {
	tok := c.Peek()
	if n, ok := numberWords[tokens.Fold(tok)]; ok {
		return k(Number{Value: float64(n), Integer: true}, c.Advance(1))
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return false
	}
	return k(Number{Value: v, Integer: !strings.Contains(tok, ".")}, c.Advance(1))
}

// Num binds a Number.
func Num(name string) Matcher { return capture(name, number) }

// Count binds a Number for a population size: a number or "a"/"an" for one.
func Count(name string) Matcher {
	return capture(name, func(m *matchState, c Cursor, k func(Number, Cursor) bool) bool {
		if c.is("a", "an") && k(Number{Value: 1, Integer: true}, c.Advance(1)) {
			return true
		}
		return number(m, c, k)
	})
}

// Quoted binds the text inside a quoted span.
func Quoted(name string) Matcher {
	return capture(name, func(m *matchState, c Cursor, k func(string, Cursor) bool) bool {
		if !tokens.IsQuoted(c.Peek()) {
			return false
		}
		return k(tokens.Unquote(c.Peek()), c.Advance(1))
	})
}

// freeWords yields 1..max open words regardless of the lexicon. Property
// names and values are scoped to their kind, so they may reuse other names.
func freeWords(max int, stop map[string]bool) producer[[]string] {
	return func(m *matchState, c Cursor, k func([]string, Cursor) bool) bool {
		for n := max; n >= 1; n-- {
			words, ok := c.Take(n)
			if !ok || !allOpenProperty(words, stop) {
				continue
			}
			if k(words, c.Advance(n)) {
				return true
			}
		}
		return false
	}
}

func allOpenProperty(words []string, stop map[string]bool) bool {
	for _, w := range words {
		if w == "" || tokens.IsPunctuation(w) || tokens.IsQuoted(w) || stop[tokens.Fold(w)] {
			return false
		}
	}
	return true
}

// PropertyName binds the words of a property name.
func PropertyName(name string) Matcher {
	return capture(name, freeWords(maxNounWords, propertyStop))
}

// ValueList binds the words of each value in a list.
func ValueList(name string) Matcher {
	return capture(name, listOf(freeWords(maxValueWords, propertyStop)))
}
