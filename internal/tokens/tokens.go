// Package tokens provides the word-level representation shared by the lexicon,
// the parser and the renderer: tokenization, sentence splitting and the
// case-folded String used as a dictionary key.
package tokens

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fold returns the case-folded form of a single word. Casers carry state, so
// one is built per call rather than shared.
func Fold(word string) string {
	return cases.Fold().String(word)
}

// String is an immutable sequence of words. Two Strings whose words fold to the
// same text are the same key; the original spelling is kept for display.
type String struct {
	words []string
	key   string
}

// New builds a String from words. The slice is copied.
func New(words ...string) String {
	w := make([]string, len(words))
	copy(w, words)
	folded := make([]string, len(words))
	for i, word := range words {
		folded[i] = Fold(word)
	}
	return String{words: w, key: strings.Join(folded, " ")}
}

// FromText tokenizes text into a String, dropping punctuation.
func FromText(text string) String {
	var words []string
	for _, t := range Tokenize(text) {
		if !IsPunctuation(t) {
			words = append(words, t)
		}
	}
	return New(words...)
}

// Words returns a copy of the words with their original spelling.
func (s String) Words() []string {
	w := make([]string, len(s.words))
	copy(w, s.words)
	return w
}

// Len returns the number of words.
func (s String) Len() int { return len(s.words) }

// IsEmpty reports whether the String has no words.
func (s String) IsEmpty() bool { return len(s.words) == 0 }

// Key returns the folded dictionary key.
func (s String) Key() string { return s.key }

// Equal compares two Strings case-insensitively.
func (s String) Equal(o String) bool { return s.key == o.key }

// String renders the words separated by spaces.
func (s String) String() string { return strings.Join(s.words, " ") }

// Head returns the first word, or "".
func (s String) Head() string {
	if len(s.words) == 0 {
		return ""
	}
	return s.words[0]
}

// Capitalize upper-cases the first letter of a rendered sentence.
func Capitalize(text string) string {
	if text == "" {
		return text
	}
	first, rest, _ := strings.Cut(text, " ")
	first = cases.Title(language.English, cases.NoLower).String(first)
	if rest == "" {
		return first
	}
	return first + " " + rest
}

// IsCapitalized reports whether a word starts with an upper-case letter.
func IsCapitalized(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}

// IsPunctuation reports whether a token is one of the single-rune punctuation
// tokens produced by Tokenize.
func IsPunctuation(token string) bool {
	return len(token) == 1 && strings.ContainsAny(token, punctuation)
}

const punctuation = `.,?!;:[]`

// Tokenize splits text into words, numbers, quoted spans and single-rune
// punctuation tokens. A period inside a number ("1.5") stays part of the
// number. A double-quoted span is one token, quotes included.
func Tokenize(text string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			flush()
			end := i + 1
			for end < len(runes) && runes[end] != '"' {
				end++
			}
			out = append(out, `"`+string(runes[i+1:min(end, len(runes))])+`"`)
			i = end
		case unicode.IsSpace(r):
			flush()
		case r == '.' && cur.Len() > 0 && isDigits(cur.String()) && i+1 < len(runes) && unicode.IsDigit(runes[i+1]):
			cur.WriteRune(r)
		case strings.ContainsRune(punctuation, r):
			flush()
			out = append(out, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

// IsQuoted reports whether a token is a quoted span.
func IsQuoted(token string) bool {
	return len(token) >= 2 && strings.HasPrefix(token, `"`) && strings.HasSuffix(token, `"`)
}

// Unquote strips the quotes from a quoted span.
func Unquote(token string) string {
	if !IsQuoted(token) {
		return token
	}
	return token[1 : len(token)-1]
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '-' {
			return false
		}
	}
	return s != ""
}

// SplitSentences breaks text at sentence-final punctuation that is outside of
// double quotes. The terminator stays with its sentence.
func SplitSentences(text string) []string {
	var out []string
	var cur strings.Builder
	quoted := false
	runes := []rune(text)
	for i, r := range runes {
		cur.WriteRune(r)
		switch r {
		case '"':
			quoted = !quoted
		case '.', '?', '!':
			if quoted {
				continue
			}
			// 1.5 is a number, not a sentence boundary
			if r == '.' && i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
				continue
			}
			if s := strings.TrimSpace(cur.String()); s != "" && s != string(r) {
				out = append(out, s)
			}
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		out = append(out, s)
	}
	return out
}
