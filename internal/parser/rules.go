package parser

import (
	"fmt"

	"imaginarium/internal/ontology"
	"imaginarium/internal/tokens"
)

// Rule is one sentence pattern. Match must consume the whole sentence; Guard,
// when set, can still reject a complete match; Build turns the bindings into
// a Command.
type Rule struct {
	Name string
	// Pattern is a human-readable rendering shown in hints.
	Pattern string
	// Keywords are the literal anchors used to suggest the rule when nothing
	// matches.
	Keywords []string
	Match    Matcher
	Guard    func(b Bindings) bool
	Build    func(b Bindings) (Command, error)
}

func (r *Rule) String() string { return r.Pattern }

// try matches the rule against a whole sentence.
func (r *Rule) try(store *ontology.Store, c Cursor) (Bindings, bool) {
	m := &matchState{store: store, bindings: newBindings()}
	ok := r.Match(m, c, func(end Cursor) bool {
		return end.AtEnd() && (r.Guard == nil || r.Guard(m.bindings))
	})
	return m.bindings, ok
}

var densityWords = map[string]float64{
	"rarely":    0.1,
	"sometimes": 0.3,
	"often":     0.7,
	"usually":   0.9,
}

// Density binds the probability named by a frequency adverb.
func Density(name string) Matcher {
	return capture(name, func(m *matchState, c Cursor, k func(float64, Cursor) bool) bool {
		d, ok := densityWords[tokens.Fold(c.Peek())]
		if !ok {
			return false
		}
		return k(d, c.Advance(1))
	})
}

func nounIDs(refs []NounRef) []ontology.ID {
	ids := make([]ontology.ID, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	return ids
}

func adjIDs(refs []AdjRef) []ontology.ID {
	ids := make([]ontology.ID, len(refs))
	for i, r := range refs {
		ids[i] = r.ID
	}
	return ids
}

func wordStrings(lists [][]string) []tokens.String {
	out := make([]tokens.String, len(lists))
	for i, words := range lists {
		out[i] = tokens.New(words...)
	}
	return out
}

// Grammar returns the rules in priority order. The first rule that matches
// a sentence wins.
func Grammar() []*Rule {
	return []*Rule{
		{
			Name:     "imagine",
			Pattern:  "imagine [N|a|an] [adjectives] Xs",
			Keywords: []string{"imagine"},
			Match: Seq(Word("imagine"), Opt(Count("count")), KnownAdjectives("modifiers"),
				KnownNoun("kind", EitherNumber)),
			Build: func(b Bindings) (Command, error) {
				count := 0
				if b.Has("count") {
					n := b.Number("count")
					if !n.Integer || n.Value < 1 {
						return nil, fmt.Errorf("cannot imagine %v individuals", n.Value)
					}
					count = int(n.Value)
				}
				return Imagine{Count: count, Kind: b.Noun("kind").ID, Modifiers: adjIDs(b.Adjectives("modifiers"))}, nil
			},
		},
		{
			Name:     "how-many",
			Pattern:  "how many Xs are there?",
			Keywords: []string{"how", "many", "there"},
			Match:    Seq(Word("how"), Word("many"), KnownNoun("kind", Plural), Word("are"), Word("there")),
			Build: func(b Bindings) (Command, error) {
				return HowMany{Kind: b.Noun("kind").ID}, nil
			},
		},
		{
			Name:     "what-is",
			Pattern:  "what is a X? / what are Xs?",
			Keywords: []string{"what"},
			Match: Alt(
				Seq(Word("what"), Word("is"), Word("a", "an"), KnownNoun("kind", Singular)),
				Seq(Word("what"), Word("are"), KnownNoun("kind", Plural)),
			),
			Build: func(b Bindings) (Command, error) {
				return WhatIs{Kind: b.Noun("kind").ID}, nil
			},
		},
		{
			Name:     "reset",
			Pattern:  "start over / forget everything",
			Keywords: []string{"start", "over", "forget", "everything"},
			Match:    Alt(Seq(Word("start"), Word("over")), Seq(Word("forget"), Word("everything"))),
			Build:    func(Bindings) (Command, error) { return Reset{}, nil },
		},
		{
			Name:     "include",
			Pattern:  `include "path"`,
			Keywords: []string{"include"},
			Match:    Seq(Word("include"), Quoted("path")),
			Build: func(b Bindings) (Command, error) {
				return Include{Path: b.Text("path")}, nil
			},
		},
		{
			Name:     "kind-of",
			Pattern:  "a X is a kind of Y / Xs are a kind of Y / Xs are kinds of Y",
			Keywords: []string{"kind", "kinds"},
			Match: Alt(
				Seq(Word("a", "an"), Noun("sub", Singular), Word("is"), Word("a"), Word("kind"), Word("of"), Noun("super", EitherNumber)),
				Seq(Noun("sub", Plural), Word("are"), Word("a"), Word("kind"), Word("of"), Noun("super", EitherNumber)),
				Seq(Noun("sub", Plural), Word("are"), Word("kinds"), Word("of"), Noun("super", EitherNumber)),
				Seq(Noun("sub", Plural), Word("are"), KnownNoun("super", Plural)),
			),
			Build: func(b Bindings) (Command, error) {
				return DeclareSubkinds{Subs: []NounRef{b.Noun("sub")}, Super: b.Noun("super")}, nil
			},
		},
		{
			Name:     "kinds-of-list",
			Pattern:  "X, Y, and Z are kinds of W",
			Keywords: []string{"kinds"},
			Match:    Seq(NounList("subs", Plural), Word("are"), Word("kinds"), Word("of"), Noun("super", EitherNumber)),
			Build: func(b Bindings) (Command, error) {
				return DeclareSubkinds{Subs: b.Nouns("subs"), Super: b.Noun("super")}, nil
			},
		},
		{
			Name:     "the-kinds-of",
			Pattern:  "the kinds of Y are X, Z, and W",
			Keywords: []string{"kinds"},
			Match:    Seq(Word("the"), Word("kinds"), Word("of"), Noun("super", EitherNumber), Word("are"), NounList("subs", Plural)),
			Build: func(b Bindings) (Command, error) {
				return DeclareSubkinds{Subs: b.Nouns("subs"), Super: b.Noun("super"), Partition: true}, nil
			},
		},
		{
			Name:     "name-template",
			Pattern:  `Xs are identified as "text with [property]"`,
			Keywords: []string{"identified"},
			Match:    Seq(Noun("kind", Plural), Word("are"), Word("identified"), Word("as"), Quoted("template")),
			Build: func(b Bindings) (Command, error) {
				return DeclareNameTemplate{Kind: b.Noun("kind"), Template: b.Text("template")}, nil
			},
		},
		{
			Name:     "numeric-property",
			Pattern:  "Xs have a P between N and M",
			Keywords: []string{"have", "between"},
			Match: Seq(Noun("kind", Plural), Word("have", "has"), Word("a", "an"), PropertyName("property"), Alt(
				Seq(Word("between"), Num("low"), Word("and"), Num("high")),
				Seq(Word("from"), Num("low"), Word("to"), Num("high")),
			)),
			Build: func(b Bindings) (Command, error) {
				low, high := b.Number("low"), b.Number("high")
				return DeclareProperty{
					Kind: b.Noun("kind"),
					Name: b.Words("property"),
					Domain: ontology.Domain{
						Kind:    ontology.DomainNumeric,
						Low:     low.Value,
						High:    high.Value,
						Integer: low.Integer && high.Integer,
					},
				}, nil
			},
		},
		{
			Name:     "enumerated-property",
			Pattern:  "Xs have a P from A, B, and C",
			Keywords: []string{"have", "from"},
			Match:    Seq(Noun("kind", Plural), Word("have", "has"), Word("a", "an"), PropertyName("property"), Word("from"), ValueList("values")),
			Build: func(b Bindings) (Command, error) {
				return DeclareProperty{
					Kind:   b.Noun("kind"),
					Name:   b.Words("property"),
					Domain: ontology.Domain{Kind: ontology.DomainEnumerated, Values: wordStrings(b.WordLists("values"))},
				}, nil
			},
		},
		{
			Name:     "boolean-property",
			Pattern:  "Xs can have a P",
			Keywords: []string{"have"},
			Match:    Seq(Noun("kind", Plural), Word("can"), Word("have"), Word("a", "an"), PropertyName("property")),
			Build: func(b Bindings) (Command, error) {
				return DeclareProperty{
					Kind:   b.Noun("kind"),
					Name:   b.Words("property"),
					Domain: ontology.Domain{Kind: ontology.DomainBoolean},
				}, nil
			},
		},
		{
			Name:     "property",
			Pattern:  "Xs have a P",
			Keywords: []string{"have"},
			Match:    Seq(Noun("kind", Plural), Word("have", "has"), Word("a", "an"), PropertyName("property")),
			Build: func(b Bindings) (Command, error) {
				return DeclareProperty{Kind: b.Noun("kind"), Name: b.Words("property")}, nil
			},
		},
		{
			Name:     "can-be",
			Pattern:  "Xs can be A[, B, or C]",
			Keywords: []string{"can", "be"},
			Match:    Seq(Noun("kind", Plural), Word("can"), Word("be"), AdjectiveList("adjectives")),
			Build: func(b Bindings) (Command, error) {
				return DeclareAdjectives{Kind: b.Noun("kind"), Adjectives: b.Adjectives("adjectives")}, nil
			},
		},
		{
			Name:     "are-either",
			Pattern:  "Xs are A, B, or C / Xs are either A or B",
			Keywords: []string{"either", "or"},
			Match: Seq(Noun("kind", Plural), Word("are"), Flag("either", Word("either")),
				AdjectiveList("adjectives")),
			Guard: func(b Bindings) bool {
				return len(b.Adjectives("adjectives")) > 1
			},
			Build: func(b Bindings) (Command, error) {
				return DeclareAdjectives{Kind: b.Noun("kind"), Adjectives: b.Adjectives("adjectives"), Exhaustive: true}, nil
			},
		},
		{
			Name:     "always",
			Pattern:  "Xs are [always] A / Xs are never A",
			Keywords: []string{"always", "never"},
			Match: Seq(Noun("kind", Plural), Word("are"), Alt(
				Seq(Word("never", "not"), Set("positive", false)),
				Seq(Opt(Word("always")), Set("positive", true)),
			), Adjective("adjective")),
			Build: func(b Bindings) (Command, error) {
				return ImplyAdjective{Kind: b.Noun("kind"), Adjective: b.Adjective("adjective"), Positive: b.Bool("positive")}, nil
			},
		},
		{
			Name:     "themselves",
			Pattern:  "Xs can/must/cannot V themselves",
			Keywords: []string{"themselves"},
			Match: Seq(Noun("kind", Plural), Alt(
				Seq(Word("must"), Set("mode", MustReflexive)),
				Seq(Word("cannot"), Set("mode", CannotReflexive)),
				Seq(Word("can"), Word("not"), Set("mode", CannotReflexive)),
				Seq(Word("can"), Set("mode", MayReflexive)),
			), Verb("verb", FormBase), Word("themselves")),
			Build: func(b Bindings) (Command, error) {
				return DeclareReflexivity{Kind: b.Noun("kind"), Verb: b.Verb("verb"), Mode: get[Reflexivity](b, "mode")}, nil
			},
		},
		{
			Name:     "quantified-verb",
			Pattern:  "Xs must V exactly one Y / Xs can V at most one Y / Xs must V at least one Y / Xs must V Ys",
			Keywords: []string{"must", "exactly", "most", "least", "one"},
			Match: Seq(Noun("subject", Plural), Alt(
				Seq(Word("must"), Verb("verb", FormBase), Word("exactly"), Word("one"),
					Set("functional", true), Set("total", true), Noun("object", Singular)),
				Seq(Word("can"), Verb("verb", FormBase), Word("at"), Word("most"), Word("one"),
					Set("functional", true), Set("total", false), Noun("object", Singular)),
				Seq(Word("must"), Verb("verb", FormBase), Word("at"), Word("least"), Word("one"),
					Set("functional", false), Set("total", true), Noun("object", Singular)),
				Seq(Word("can"), Verb("verb", FormBase), Word("one"),
					Set("functional", true), Set("total", false), Noun("object", Singular)),
				Seq(Word("must"), Verb("verb", FormBase),
					Set("functional", false), Set("total", true), Noun("object", Plural)),
			)),
			Build: func(b Bindings) (Command, error) {
				return DeclareVerb{
					Subject:    b.Noun("subject"),
					Verb:       b.Verb("verb"),
					Object:     b.Noun("object"),
					Functional: b.Bool("functional"),
					Total:      b.Bool("total"),
					Density:    -1,
				}, nil
			},
		},
		{
			Name:     "verb",
			Pattern:  "Xs [rarely|sometimes|often] V Ys / Xs can V Ys",
			Keywords: []string{"can", "rarely", "sometimes", "often", "usually"},
			Match: Seq(Noun("subject", Plural), Alt(
				Seq(Word("can"), Set("density", -1.0), Verb("verb", FormBase)),
				Seq(Density("density"), Verb("verb", FormPlural)),
				Seq(Set("density", -1.0), Verb("verb", FormPlural)),
			), Noun("object", Plural)),
			Build: func(b Bindings) (Command, error) {
				return DeclareVerb{
					Subject: b.Noun("subject"),
					Verb:    b.Verb("verb"),
					Object:  b.Noun("object"),
					Density: b.Float("density"),
				}, nil
			},
		},
		{
			Name:     "symmetric",
			Pattern:  "Ving is symmetric / Ving is anti-symmetric",
			Keywords: []string{"symmetric", "mutual", "anti-symmetric", "antisymmetric"},
			Match: Seq(KnownVerb("verb", FormGerundOrBase), Word("is"), Alt(
				Seq(Word("symmetric", "mutual"), Set("symmetric", true)),
				Seq(Word("anti-symmetric", "antisymmetric", "asymmetric"), Set("symmetric", false)),
			)),
			Build: func(b Bindings) (Command, error) {
				return DeclareSymmetry{Verb: b.Verb("verb"), Symmetric: b.Bool("symmetric")}, nil
			},
		},
		{
			Name:     "way-of",
			Pattern:  "Ving is a way of Wing",
			Keywords: []string{"way"},
			Match: Seq(KnownVerb("specific", FormGerundOrBase), Word("is"), Word("a"), Word("way"), Word("of"),
				Verb("general", FormGerund)),
			Build: func(b Bindings) (Command, error) {
				return DeclareGeneralization{Specific: b.Verb("specific"), General: b.Verb("general")}, nil
			},
		},
		{
			Name:     "mutually-exclusive",
			Pattern:  "Ving and Wing are mutually exclusive",
			Keywords: []string{"mutually", "exclusive"},
			Match: Seq(KnownVerb("a", FormGerundOrBase), Word("and"), KnownVerb("b", FormGerundOrBase),
				Word("are"), Word("mutually"), Word("exclusive")),
			Build: func(b Bindings) (Command, error) {
				return DeclareExclusion{A: b.Verb("a"), B: b.Verb("b")}, nil
			},
		},
		{
			Name:     "individual",
			Pattern:  "PN is a X",
			Keywords: []string{"is"},
			Match:    Seq(Proper("name"), Word("is"), Word("a", "an"), Noun("kind", Singular)),
			Build: func(b Bindings) (Command, error) {
				return DeclareIndividual{Name: b.Proper("name"), Kind: b.Noun("kind")}, nil
			},
		},
		{
			Name:     "individual-adjective",
			Pattern:  "PN is [not] A",
			Keywords: []string{"is", "not"},
			Match:    Seq(Proper("name"), Word("is"), Flag("negated", Word("not")), Adjective("adjective")),
			Build: func(b Bindings) (Command, error) {
				return AssertAdjective{Name: b.Proper("name"), Adjective: b.Adjective("adjective"), Positive: !b.Bool("negated")}, nil
			},
		},
		{
			Name:     "relation",
			Pattern:  "PN Vs PN / PN does not V PN",
			Keywords: []string{"does", "not"},
			Match: Alt(
				Seq(Proper("subject"), Word("does"), Word("not"), KnownVerb("verb", FormBase), Proper("object"), Set("positive", false)),
				Seq(Proper("subject"), KnownVerb("verb", FormThirdPerson), Proper("object"), Set("positive", true)),
			),
			Build: func(b Bindings) (Command, error) {
				return AssertRelation{
					Subject:  b.Proper("subject"),
					Verb:     b.Verb("verb"),
					Object:   b.Proper("object"),
					Positive: b.Bool("positive"),
				}, nil
			},
		},
	}
}
