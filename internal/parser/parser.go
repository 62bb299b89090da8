// Package parser turns sentences of the constrained English grammar into
// Command values. Rules are tried in priority order against the whole
// sentence; the first that matches wins. Parsing never mutates the ontology:
// mutations are returned as commands for the caller to apply.
package parser

import (
	"fmt"
	"strings"

	"imaginarium/internal/logging"
	"imaginarium/internal/ontology"
	"imaginarium/internal/tokens"
)

// GrammarError is returned when no rule matches a sentence. Hints lists the
// rules that share a keyword with it.
type GrammarError struct {
	Sentence string
	Hints    []*Rule
}

func (e *GrammarError) Error() string {
	if len(e.Hints) == 0 {
		return fmt.Sprintf("I don't understand %q", e.Sentence)
	}
	patterns := make([]string, len(e.Hints))
	for i, r := range e.Hints {
		patterns[i] = r.Pattern
	}
	return fmt.Sprintf("I don't understand %q; did you mean: %s", e.Sentence, strings.Join(patterns, "; "))
}

// Frame is one entry of the context stack: the sentence being parsed and the
// file it came from, if any.
type Frame struct {
	Sentence string
	Source   string
}

// Parser holds the grammar and a stack of parse contexts. Definition loading
// pushes a frame per file so nested includes can report where they are
// without disturbing the enclosing parse.
type Parser struct {
	rules []*Rule
	stack []Frame
}

// New creates a parser with the standard grammar.
func New() *Parser {
	return NewWithRules(Grammar())
}

// NewWithRules creates a parser with a custom rule list.
func NewWithRules(rules []*Rule) *Parser {
	return &Parser{rules: rules}
}

// Rules returns the grammar in priority order.
func (p *Parser) Rules() []*Rule { return p.rules }

// Push enters a nested context.
func (p *Parser) Push(source string) {
	p.stack = append(p.stack, Frame{Source: source})
}

// Pop leaves the innermost context.
func (p *Parser) Pop() {
	if len(p.stack) > 0 {
		p.stack = p.stack[:len(p.stack)-1]
	}
}

// Depth returns the number of open contexts.
func (p *Parser) Depth() int { return len(p.stack) }

// Current returns the innermost context.
func (p *Parser) Current() (Frame, bool) {
	if len(p.stack) == 0 {
		return Frame{}, false
	}
	return p.stack[len(p.stack)-1], true
}

// Parse matches one sentence against the grammar. store is only read.
func (p *Parser) Parse(store *ontology.Store, sentence string) (Command, *Rule, error) {
	if len(p.stack) == 0 {
		p.Push("")
		defer p.Pop()
	}
	frame := &p.stack[len(p.stack)-1]
	previous := frame.Sentence
	frame.Sentence = sentence
	defer func() { frame.Sentence = previous }()

	toks := tokens.Tokenize(sentence)
	if len(toks) == 0 || NewCursor(toks).AtEnd() {
		return nil, nil, &GrammarError{Sentence: sentence}
	}
	start := NewCursor(toks)
	for _, r := range p.rules {
		b, ok := r.try(store, start)
		if !ok {
			continue
		}
		logging.ParserDebug("%q matched rule %s", sentence, r.Name)
		cmd, err := r.Build(b)
		if err != nil {
			return nil, r, err
		}
		return cmd, r, nil
	}
	hints := p.Hints(toks)
	logging.Parser("%q matched no rule (%d hints)", sentence, len(hints))
	return nil, nil, &GrammarError{Sentence: sentence, Hints: hints}
}

// Hints returns the rules with a keyword among toks.
func (p *Parser) Hints(toks []string) []*Rule {
	present := make(map[string]bool, len(toks))
	for _, t := range toks {
		present[tokens.Fold(t)] = true
	}
	var out []*Rule
	for _, r := range p.rules {
		for _, kw := range r.Keywords {
			if present[kw] {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
