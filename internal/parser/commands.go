package parser

import (
	"fmt"
	"strings"

	"imaginarium/internal/morph"
	"imaginarium/internal/ontology"
	"imaginarium/internal/tokens"
)

// Command is the result of a successful parse. Mutations change the
// ontology; every other command is a query interpreted by the session.
type Command interface {
	Describe() string
}

// Mutation is a command that changes the ontology. Apply may fail part way;
// callers apply it to a clone and commit only on success.
type Mutation interface {
	Command
	Apply(s *ontology.Store) error
}

// =============================================================================
// QUERIES
// =============================================================================

// Imagine asks for a population of Count individuals of Kind. Count zero
// means the configured default.
type Imagine struct {
	Count     int
	Kind      ontology.ID
	Modifiers []ontology.ID
}

func (c Imagine) Describe() string { return fmt.Sprintf("imagine %d of kind %d", c.Count, c.Kind) }

// HowMany generates the named individuals and counts those of Kind.
type HowMany struct {
	Kind ontology.ID
}

func (c HowMany) Describe() string { return fmt.Sprintf("how many of kind %d", c.Kind) }

// WhatIs describes a kind.
type WhatIs struct {
	Kind ontology.ID
}

func (c WhatIs) Describe() string { return fmt.Sprintf("describe kind %d", c.Kind) }

// Include loads a definitions file.
type Include struct {
	Path string
}

func (c Include) Describe() string { return fmt.Sprintf("include %q", c.Path) }

// Reset discards the ontology.
type Reset struct{}

func (Reset) Describe() string { return "reset" }

// =============================================================================
// RESOLUTION
// =============================================================================

func lower(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}

// resolveNoun returns the noun a segment names, creating it if needed.
func resolveNoun(s *ontology.Store, r NounRef) (*ontology.CommonNoun, error) {
	if r.Known() {
		return s.Noun(r.ID), nil
	}
	if existing, ok := s.Lookup(r.Words); ok {
		if n, ok := existing.(*ontology.CommonNoun); ok {
			return n, nil
		}
		return nil, fmt.Errorf("%w: %q is already a %s", ontology.ErrNameCollision, r.Words, existing.Category())
	}
	words := lower(r.Words.Words())
	singular, plural := words, morph.Plural(words)
	if r.Plural {
		singular, plural = morph.Singular(words), words
	}
	return s.NewCommonNoun(tokens.New(singular...), tokens.New(plural...))
}

func resolveNouns(s *ontology.Store, refs []NounRef) ([]*ontology.CommonNoun, error) {
	out := make([]*ontology.CommonNoun, 0, len(refs))
	for _, r := range refs {
		n, err := resolveNoun(s, r)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func resolveAdjective(s *ontology.Store, r AdjRef) (*ontology.Adjective, error) {
	if r.Known() {
		return s.Adjective(r.ID), nil
	}
	if existing, ok := s.Lookup(r.Words); ok {
		if a, ok := existing.(*ontology.Adjective); ok {
			return a, nil
		}
		return nil, fmt.Errorf("%w: %q is already a %s", ontology.ErrNameCollision, r.Words, existing.Category())
	}
	return s.NewAdjective(tokens.New(lower(r.Words.Words())...))
}

func resolveVerb(s *ontology.Store, r VerbRef) (*ontology.Verb, error) {
	if r.Known() {
		return s.Verb(r.ID), nil
	}
	base := lower(r.Base())
	if existing, ok := s.Lookup(tokens.New(base...)); ok {
		if v, ok := existing.(*ontology.Verb); ok {
			return v, nil
		}
		return nil, fmt.Errorf("%w: %q is already a %s", ontology.ErrNameCollision, r.Words, existing.Category())
	}
	f := morph.VerbForms(base)
	return s.NewVerb(ontology.VerbForms{
		Base:        tokens.New(f.Base...),
		ThirdPerson: tokens.New(f.ThirdPerson...),
		Plural:      tokens.New(f.Plural...),
		Gerund:      tokens.New(f.Gerund...),
	})
}

func resolveProper(s *ontology.Store, r ProperRef) (*ontology.ProperNoun, error) {
	if r.Known() {
		return s.ProperNoun(r.ID), nil
	}
	if existing, ok := s.Lookup(r.Words); ok {
		if p, ok := existing.(*ontology.ProperNoun); ok {
			return p, nil
		}
		return nil, fmt.Errorf("%w: %q is already a %s", ontology.ErrNameCollision, r.Words, existing.Category())
	}
	return s.NewProperNoun(r.Words)
}

// =============================================================================
// MUTATIONS
// =============================================================================

// DeclareSubkinds makes every sub a kind of super. With Partition set the
// subkinds also form an exhaustive alternative set of super.
type DeclareSubkinds struct {
	Subs      []NounRef
	Super     NounRef
	Partition bool
}

func (c DeclareSubkinds) Describe() string {
	return fmt.Sprintf("%d subkinds of %s", len(c.Subs), c.Super.Words)
}

func (c DeclareSubkinds) Apply(s *ontology.Store) error {
	super, err := resolveNoun(s, c.Super)
	if err != nil {
		return err
	}
	subs, err := resolveNouns(s, c.Subs)
	if err != nil {
		return err
	}
	ids := make([]ontology.ID, 0, len(subs))
	for _, sub := range subs {
		if err := s.AddSuperkind(sub.ID(), super.ID()); err != nil {
			return err
		}
		ids = append(ids, sub.ID())
	}
	if c.Partition && len(ids) > 1 {
		return s.AddAlternativeSet(super.ID(), ids, true)
	}
	return nil
}

// DeclareNameTemplate sets how members of Kind are named.
type DeclareNameTemplate struct {
	Kind     NounRef
	Template string
}

func (c DeclareNameTemplate) Describe() string {
	return fmt.Sprintf("%s are identified as %q", c.Kind.Words, c.Template)
}

func (c DeclareNameTemplate) Apply(s *ontology.Store) error {
	kind, err := resolveNoun(s, c.Kind)
	if err != nil {
		return err
	}
	parts, err := ParseTemplate(c.Template)
	if err != nil {
		return &ontology.DefinitionError{Concept: kind.Plural.String(), Reason: err.Error()}
	}
	return s.SetNameTemplate(kind.ID(), parts)
}

// ParseTemplate splits a name template into literal text and bracketed
// property references.
func ParseTemplate(text string) ([]ontology.TemplatePart, error) {
	var parts []ontology.TemplatePart
	var literal []string
	flush := func() {
		if len(literal) > 0 {
			parts = append(parts, ontology.TemplatePart{Text: strings.Join(literal, " ")})
			literal = nil
		}
	}
	toks := tokens.Tokenize(text)
	for i := 0; i < len(toks); i++ {
		if toks[i] != "[" {
			literal = append(literal, toks[i])
			continue
		}
		end := i + 1
		for end < len(toks) && toks[end] != "]" {
			end++
		}
		if end == len(toks) {
			return nil, fmt.Errorf("unclosed [ in %q", text)
		}
		if end == i+1 {
			return nil, fmt.Errorf("empty [] in %q", text)
		}
		flush()
		parts = append(parts, ontology.TemplatePart{Property: tokens.New(toks[i+1 : end]...)})
		i = end
	}
	flush()
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty template")
	}
	return parts, nil
}

// DeclareProperty adds a property to Kind.
type DeclareProperty struct {
	Kind   NounRef
	Name   []string
	Domain ontology.Domain
}

func (c DeclareProperty) Describe() string {
	return fmt.Sprintf("%s have %s (%s)", c.Kind.Words, strings.Join(c.Name, " "), c.Domain.Kind)
}

func (c DeclareProperty) Apply(s *ontology.Store) error {
	kind, err := resolveNoun(s, c.Kind)
	if err != nil {
		return err
	}
	_, err = s.AddProperty(kind.ID(), tokens.New(lower(c.Name)...), c.Domain)
	return err
}

// DeclareAdjectives makes adjectives relevant to Kind. Two or more form an
// alternative set, exhaustive when Exhaustive is set.
type DeclareAdjectives struct {
	Kind       NounRef
	Adjectives []AdjRef
	Exhaustive bool
}

func (c DeclareAdjectives) Describe() string {
	return fmt.Sprintf("%s can be %d adjectives", c.Kind.Words, len(c.Adjectives))
}

func (c DeclareAdjectives) Apply(s *ontology.Store) error {
	kind, err := resolveNoun(s, c.Kind)
	if err != nil {
		return err
	}
	ids := make([]ontology.ID, 0, len(c.Adjectives))
	for _, r := range c.Adjectives {
		a, err := resolveAdjective(s, r)
		if err != nil {
			return err
		}
		ids = append(ids, a.ID())
	}
	if len(ids) == 1 {
		if c.Exhaustive {
			return s.AddImplication(kind.ID(), ontology.Literal{Concept: ids[0], Positive: true})
		}
		return s.AddRelevantAdjective(kind.ID(), ids[0])
	}
	return s.AddAlternativeSet(kind.ID(), ids, c.Exhaustive)
}

// ImplyAdjective states that members of Kind are always (or never) an
// adjective.
type ImplyAdjective struct {
	Kind      NounRef
	Adjective AdjRef
	Positive  bool
}

func (c ImplyAdjective) Describe() string {
	if c.Positive {
		return fmt.Sprintf("%s are always %s", c.Kind.Words, c.Adjective.Words)
	}
	return fmt.Sprintf("%s are never %s", c.Kind.Words, c.Adjective.Words)
}

func (c ImplyAdjective) Apply(s *ontology.Store) error {
	kind, err := resolveNoun(s, c.Kind)
	if err != nil {
		return err
	}
	a, err := resolveAdjective(s, c.Adjective)
	if err != nil {
		return err
	}
	return s.AddImplication(kind.ID(), ontology.Literal{Concept: a.ID(), Positive: c.Positive})
}

// Reflexivity is what a sentence says about a verb relating something to
// itself.
type Reflexivity int

const (
	// MayReflexive ("can V themselves") lifts any earlier prohibition.
	MayReflexive Reflexivity = iota
	MustReflexive
	CannotReflexive
)

// bindVerb fixes the subject and object kinds of a verb on first use. A later
// declaration must agree.
func bindVerb(s *ontology.Store, v *ontology.Verb, subject, object *ontology.CommonNoun) error {
	if v.Subject == ontology.NoID {
		if v.Symmetric && !relatedKinds(s, subject.ID(), object.ID()) {
			return symmetryMismatch(s, v, subject.ID(), object.ID())
		}
		v.Subject, v.Object = subject.ID(), object.ID()
		return nil
	}
	if v.Subject != subject.ID() || v.Object != object.ID() {
		return &ontology.DefinitionError{
			Concept: v.Forms.Gerund.String(),
			Reason: fmt.Sprintf("already relates %s to %s",
				s.Noun(v.Subject).Plural, s.Noun(v.Object).Plural),
		}
	}
	return nil
}

// DeclareReflexivity handles "Xs can/must/cannot V themselves".
type DeclareReflexivity struct {
	Kind NounRef
	Verb VerbRef
	Mode Reflexivity
}

func (c DeclareReflexivity) Describe() string {
	return fmt.Sprintf("%s reflexivity %d", c.Verb.Words, c.Mode)
}

func (c DeclareReflexivity) Apply(s *ontology.Store) error {
	kind, err := resolveNoun(s, c.Kind)
	if err != nil {
		return err
	}
	v, err := resolveVerb(s, c.Verb)
	if err != nil {
		return err
	}
	if v.Subject == ontology.NoID {
		v.Subject, v.Object = kind.ID(), kind.ID()
	}
	switch c.Mode {
	case MustReflexive:
		v.Reflexive, v.AntiReflexive = true, false
	case CannotReflexive:
		v.Reflexive, v.AntiReflexive = false, true
	default:
		v.AntiReflexive = false
	}
	return nil
}

// DeclareVerb declares that Subject kinds V Object kinds.
type DeclareVerb struct {
	Subject    NounRef
	Verb       VerbRef
	Object     NounRef
	Functional bool
	Total      bool
	// Density is negative when unspecified.
	Density float64
}

func (c DeclareVerb) Describe() string {
	return fmt.Sprintf("%s %s %s", c.Subject.Words, c.Verb.Words, c.Object.Words)
}

func (c DeclareVerb) Apply(s *ontology.Store) error {
	subject, err := resolveNoun(s, c.Subject)
	if err != nil {
		return err
	}
	object, err := resolveNoun(s, c.Object)
	if err != nil {
		return err
	}
	v, err := resolveVerb(s, c.Verb)
	if err != nil {
		return err
	}
	if err := bindVerb(s, v, subject, object); err != nil {
		return err
	}
	v.Functional = v.Functional || c.Functional
	v.Total = v.Total || c.Total
	if c.Density >= 0 {
		v.Density = c.Density
	}
	return nil
}

// DeclareSymmetry marks a verb symmetric or anti-symmetric.
type DeclareSymmetry struct {
	Verb      VerbRef
	Symmetric bool
}

func (c DeclareSymmetry) Describe() string {
	if c.Symmetric {
		return fmt.Sprintf("%s is symmetric", c.Verb.Words)
	}
	return fmt.Sprintf("%s is anti-symmetric", c.Verb.Words)
}

func (c DeclareSymmetry) Apply(s *ontology.Store) error {
	v, err := resolveVerb(s, c.Verb)
	if err != nil {
		return err
	}
	if c.Symmetric && v.AntiSymmetric || !c.Symmetric && v.Symmetric {
		return &ontology.DefinitionError{Concept: v.Forms.Gerund.String(), Reason: "cannot be both symmetric and anti-symmetric"}
	}
	if c.Symmetric && v.Subject != ontology.NoID && !relatedKinds(s, v.Subject, v.Object) {
		return symmetryMismatch(s, v, v.Subject, v.Object)
	}
	if c.Symmetric {
		v.Symmetric = true
	} else {
		v.AntiSymmetric = true
	}
	return nil
}

// relatedKinds reports whether one kind is the other or an ancestor of it.
// A symmetric verb needs this so that swapping its arguments stays well typed.
func relatedKinds(s *ontology.Store, a, b ontology.ID) bool {
	return a == b || s.IsSubkindOf(a, b) || s.IsSubkindOf(b, a)
}

func symmetryMismatch(s *ontology.Store, v *ontology.Verb, subject, object ontology.ID) error {
	return &ontology.DefinitionError{
		Concept: v.Forms.Gerund.String(),
		Reason: fmt.Sprintf("cannot be symmetric between unrelated kinds %s and %s",
			s.Noun(subject).Plural, s.Noun(object).Plural),
	}
}

// DeclareGeneralization records that Specific implies General.
type DeclareGeneralization struct {
	Specific VerbRef
	General  VerbRef
}

func (c DeclareGeneralization) Describe() string {
	return fmt.Sprintf("%s is a way of %s", c.Specific.Words, c.General.Words)
}

func (c DeclareGeneralization) Apply(s *ontology.Store) error {
	specific, err := resolveVerb(s, c.Specific)
	if err != nil {
		return err
	}
	general, err := resolveVerb(s, c.General)
	if err != nil {
		return err
	}
	if general.Subject == ontology.NoID && specific.Subject != ontology.NoID {
		general.Subject, general.Object = specific.Subject, specific.Object
	}
	return s.AddVerbGeneralization(specific.ID(), general.ID())
}

// DeclareExclusion records that two verbs never hold for the same pair.
type DeclareExclusion struct {
	A, B VerbRef
}

func (c DeclareExclusion) Describe() string {
	return fmt.Sprintf("%s and %s are mutually exclusive", c.A.Words, c.B.Words)
}

func (c DeclareExclusion) Apply(s *ontology.Store) error {
	a, err := resolveVerb(s, c.A)
	if err != nil {
		return err
	}
	b, err := resolveVerb(s, c.B)
	if err != nil {
		return err
	}
	return s.AddVerbExclusion(a.ID(), b.ID())
}

// DeclareIndividual states that a named individual is a Kind.
type DeclareIndividual struct {
	Name ProperRef
	Kind NounRef
}

func (c DeclareIndividual) Describe() string {
	return fmt.Sprintf("%s is a %s", c.Name.Words, c.Kind.Words)
}

func (c DeclareIndividual) Apply(s *ontology.Store) error {
	kind, err := resolveNoun(s, c.Kind)
	if err != nil {
		return err
	}
	p, err := resolveProper(s, c.Name)
	if err != nil {
		return err
	}
	return s.AssertKind(p.ID(), kind.ID())
}

// AssertAdjective states that a named individual is (or is not) an
// adjective.
type AssertAdjective struct {
	Name      ProperRef
	Adjective AdjRef
	Positive  bool
}

func (c AssertAdjective) Describe() string {
	if c.Positive {
		return fmt.Sprintf("%s is %s", c.Name.Words, c.Adjective.Words)
	}
	return fmt.Sprintf("%s is not %s", c.Name.Words, c.Adjective.Words)
}

func (c AssertAdjective) Apply(s *ontology.Store) error {
	p, err := resolveProper(s, c.Name)
	if err != nil {
		return err
	}
	a, err := resolveAdjective(s, c.Adjective)
	if err != nil {
		return err
	}
	return s.AssertAdjective(p.ID(), ontology.Literal{Concept: a.ID(), Positive: c.Positive})
}

// AssertRelation states that a verb does (or does not) hold between two
// named individuals.
type AssertRelation struct {
	Subject  ProperRef
	Verb     VerbRef
	Object   ProperRef
	Positive bool
}

func (c AssertRelation) Describe() string {
	return fmt.Sprintf("%s %s %s", c.Subject.Words, c.Verb.Words, c.Object.Words)
}

func (c AssertRelation) Apply(s *ontology.Store) error {
	subject, err := resolveProper(s, c.Subject)
	if err != nil {
		return err
	}
	object, err := resolveProper(s, c.Object)
	if err != nil {
		return err
	}
	v := s.Verb(c.Verb.ID)
	if v == nil {
		return fmt.Errorf("%w: %q is not a known verb", ontology.ErrWrongCategory, c.Verb.Words)
	}
	return s.AssertRelation(ontology.Relation{
		Verb:     v.ID(),
		Subject:  subject.ID(),
		Object:   object.ID(),
		Positive: c.Positive,
	})
}
