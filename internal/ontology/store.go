package ontology

import (
	"fmt"

	"imaginarium/internal/logging"
	"imaginarium/internal/tokens"
)

// Store is the ontology of one session. It is not safe for concurrent use;
// the session serializes access.
type Store struct {
	arena     []Referent
	lexicon   *trie
	relations []Relation
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{lexicon: newTrie()}
}

// Clone returns a deep copy. Mutating the clone never affects the original.
func (s *Store) Clone() *Store {
	c := &Store{
		arena:     make([]Referent, len(s.arena)),
		lexicon:   s.lexicon.clone(),
		relations: append([]Relation(nil), s.relations...),
	}
	for i, r := range s.arena {
		switch v := r.(type) {
		case *CommonNoun:
			c.arena[i] = v.clone()
		case *Adjective:
			a := *v
			c.arena[i] = &a
		case *Verb:
			c.arena[i] = v.clone()
		case *ProperNoun:
			p := *v
			p.Individual = v.Individual.clone()
			c.arena[i] = &p
		}
	}
	return c
}

// =============================================================================
// LEXICON
// =============================================================================

// Register binds an additional spelling to an existing referent. Binding a
// name already held by a different referent fails with ErrNameCollision and
// leaves the original binding intact.
func (s *Store) Register(category Category, name tokens.String, r Referent) error {
	if r.Category() != category {
		return fmt.Errorf("%w: %s registered as %s", ErrWrongCategory, r.Category(), category)
	}
	if id := r.ID(); id < 0 || int(id) >= len(s.arena) || s.arena[id] != r {
		return fmt.Errorf("%w: referent %q does not belong to this store", ErrWrongCategory, r.StandardName())
	}
	if name.IsEmpty() {
		return &DefinitionError{Reason: "empty name"}
	}
	if existing, ok := s.Lookup(name); ok {
		if existing.ID() == r.ID() {
			return nil
		}
		return collision(name, existing)
	}
	s.lexicon.insert(name.Words(), r.ID())
	logging.OntologyDebug("registered %q as %s %d", name, category, r.ID())
	return nil
}

func collision(name tokens.String, existing Referent) error {
	return fmt.Errorf("%w: %q is already a %s", ErrNameCollision, name, existing.Category())
}

// checkFree fails if any of names is already bound.
func (s *Store) checkFree(names ...tokens.String) error {
	for _, n := range names {
		if n.IsEmpty() {
			return &DefinitionError{Reason: "empty name"}
		}
		if existing, ok := s.Lookup(n); ok {
			return collision(n, existing)
		}
	}
	return nil
}

// Lookup resolves a name case-insensitively.
func (s *Store) Lookup(name tokens.String) (Referent, bool) {
	id, ok := s.lexicon.get(name.Words())
	if !ok {
		return nil, false
	}
	return s.arena[id], true
}

// LongestMatch returns the referent with the longest name that is a prefix of
// words[start:], together with the number of words it spans.
func (s *Store) LongestMatch(words []string, start int) (Referent, int) {
	m := s.lexicon.prefixes(words, start)
	if len(m) == 0 {
		return nil, 0
	}
	return s.arena[m[0].ID], m[0].Length
}

// Matches returns every referent whose name is a prefix of words[start:],
// longest first.
func (s *Store) Matches(words []string, start int) []Match {
	return s.lexicon.prefixes(words, start)
}

// Get returns the referent with the given ID, or nil.
func (s *Store) Get(id ID) Referent {
	if id < 0 || int(id) >= len(s.arena) {
		return nil
	}
	return s.arena[id]
}

// Noun returns the common noun with the given ID, or nil.
func (s *Store) Noun(id ID) *CommonNoun {
	n, _ := s.Get(id).(*CommonNoun)
	return n
}

// Adjective returns the adjective with the given ID, or nil.
func (s *Store) Adjective(id ID) *Adjective {
	a, _ := s.Get(id).(*Adjective)
	return a
}

// Verb returns the verb with the given ID, or nil.
func (s *Store) Verb(id ID) *Verb {
	v, _ := s.Get(id).(*Verb)
	return v
}

// ProperNoun returns the proper noun with the given ID, or nil.
func (s *Store) ProperNoun(id ID) *ProperNoun {
	p, _ := s.Get(id).(*ProperNoun)
	return p
}

// AllOfCategory enumerates referents of a category in creation order.
func (s *Store) AllOfCategory(category Category) []Referent {
	var out []Referent
	for _, r := range s.arena {
		if r.Category() == category {
			out = append(out, r)
		}
	}
	return out
}

// Nouns returns every common noun in creation order.
func (s *Store) Nouns() []*CommonNoun {
	var out []*CommonNoun
	for _, r := range s.arena {
		if n, ok := r.(*CommonNoun); ok {
			out = append(out, n)
		}
	}
	return out
}

// Verbs returns every verb in creation order.
func (s *Store) Verbs() []*Verb {
	var out []*Verb
	for _, r := range s.arena {
		if v, ok := r.(*Verb); ok {
			out = append(out, v)
		}
	}
	return out
}

// ProperNouns returns every proper noun in creation order.
func (s *Store) ProperNouns() []*ProperNoun {
	var out []*ProperNoun
	for _, r := range s.arena {
		if p, ok := r.(*ProperNoun); ok {
			out = append(out, p)
		}
	}
	return out
}

// Sizes reports the number of referents in each lexicon table.
func (s *Store) Sizes() map[Category]int {
	sizes := map[Category]int{
		CategoryCommonNoun: 0,
		CategoryAdjective:  0,
		CategoryVerb:       0,
		CategoryProperNoun: 0,
	}
	for _, r := range s.arena {
		sizes[r.Category()]++
	}
	return sizes
}

// Relations returns the asserted relations.
func (s *Store) Relations() []Relation {
	return append([]Relation(nil), s.relations...)
}

func (s *Store) nextID() ID { return ID(len(s.arena)) }

// =============================================================================
// CONSTRUCTION
// =============================================================================

// NewCommonNoun creates a kind named by both its singular and plural forms.
func (s *Store) NewCommonNoun(singular, plural tokens.String) (*CommonNoun, error) {
	names := []tokens.String{singular}
	if !plural.Equal(singular) {
		names = append(names, plural)
	}
	if err := s.checkFree(names...); err != nil {
		return nil, err
	}
	n := &CommonNoun{referent: referent{id: s.nextID(), name: singular}, Plural: plural}
	s.arena = append(s.arena, n)
	for _, name := range names {
		s.lexicon.insert(name.Words(), n.id)
	}
	logging.OntologyDebug("new kind %q (%d)", singular, n.id)
	return n, nil
}

// NewAdjective creates an adjective.
func (s *Store) NewAdjective(name tokens.String) (*Adjective, error) {
	if err := s.checkFree(name); err != nil {
		return nil, err
	}
	a := &Adjective{referent{id: s.nextID(), name: name}}
	s.arena = append(s.arena, a)
	s.lexicon.insert(name.Words(), a.id)
	logging.OntologyDebug("new adjective %q (%d)", name, a.id)
	return a, nil
}

// NewVerb creates a verb and registers every distinct form.
func (s *Store) NewVerb(forms VerbForms) (*Verb, error) {
	names := distinct(forms.Base, forms.ThirdPerson, forms.Plural, forms.Gerund)
	if err := s.checkFree(names...); err != nil {
		return nil, err
	}
	v := &Verb{
		referent: referent{id: s.nextID(), name: forms.Base},
		Forms:    forms,
		Subject:  NoID,
		Object:   NoID,
		Density:  -1,
	}
	s.arena = append(s.arena, v)
	for _, name := range names {
		s.lexicon.insert(name.Words(), v.id)
	}
	logging.OntologyDebug("new verb %q (%d)", forms.Gerund, v.id)
	return v, nil
}

// NewProperNoun creates a proper noun and the individual it names.
func (s *Store) NewProperNoun(name tokens.String) (*ProperNoun, error) {
	if err := s.checkFree(name); err != nil {
		return nil, err
	}
	p := &ProperNoun{
		referent:   referent{id: s.nextID(), name: name},
		Individual: &Individual{Name: name, Proper: true},
	}
	s.arena = append(s.arena, p)
	s.lexicon.insert(name.Words(), p.id)
	logging.OntologyDebug("new individual %q (%d)", name, p.id)
	return p, nil
}

func distinct(names ...tokens.String) []tokens.String {
	var out []tokens.String
	seen := make(map[string]bool)
	for _, n := range names {
		if n.IsEmpty() || seen[n.Key()] {
			continue
		}
		seen[n.Key()] = true
		out = append(out, n)
	}
	return out
}

// =============================================================================
// KIND GRAPH
// =============================================================================

// AddSuperkind records that every sub is a super. An edge that would close a
// cycle is rejected with ErrCycle and the graph is left unchanged.
func (s *Store) AddSuperkind(sub, super ID) error {
	subNoun, superNoun := s.Noun(sub), s.Noun(super)
	if subNoun == nil || superNoun == nil {
		return fmt.Errorf("%w: kind edges join common nouns", ErrWrongCategory)
	}
	if sub == super || s.IsSubkindOf(super, sub) {
		logging.Ontology("rejected kind edge %s -> %s: cycle", subNoun.Singular(), superNoun.Singular())
		return fmt.Errorf("%w: %s cannot be a kind of %s", ErrCycle, subNoun.Plural, superNoun.Singular())
	}
	if containsID(subNoun.Superkinds, super) {
		return nil
	}
	subNoun.Superkinds = append(subNoun.Superkinds, super)
	superNoun.Subkinds = append(superNoun.Subkinds, sub)
	logging.OntologyDebug("kind edge %s -> %s", subNoun.Singular(), superNoun.Singular())
	return nil
}

// AddSubkind is AddSuperkind with the arguments reversed.
func (s *Store) AddSubkind(super, sub ID) error {
	return s.AddSuperkind(sub, super)
}

// IsSubkindOf reports whether sub is a strict descendant of super.
func (s *Store) IsSubkindOf(sub, super ID) bool {
	if sub == super {
		return false
	}
	for _, a := range s.Ancestors(sub) {
		if a == super {
			return true
		}
	}
	return false
}

// Ancestors returns the strict superkinds of a kind, nearest first.
func (s *Store) Ancestors(id ID) []ID {
	return s.walk(id, func(n *CommonNoun) []ID { return n.Superkinds })
}

// Descendants returns the strict subkinds of a kind, nearest first.
func (s *Store) Descendants(id ID) []ID {
	return s.walk(id, func(n *CommonNoun) []ID { return n.Subkinds })
}

func (s *Store) walk(id ID, next func(*CommonNoun) []ID) []ID {
	var out []ID
	seen := map[ID]bool{id: true}
	queue := []ID{id}
	for len(queue) > 0 {
		n := s.Noun(queue[0])
		queue = queue[1:]
		if n == nil {
			continue
		}
		for _, k := range next(n) {
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, k)
			queue = append(queue, k)
		}
	}
	return out
}

// Component returns the kinds connected to any of roots through kind edges in
// either direction, roots included, in ascending ID order.
func (s *Store) Component(roots ...ID) []ID {
	seen := make(map[ID]bool)
	queue := append([]ID(nil), roots...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n := s.Noun(id)
		if n == nil || seen[id] {
			continue
		}
		seen[id] = true
		queue = append(queue, n.Superkinds...)
		queue = append(queue, n.Subkinds...)
	}
	var out []ID
	for id := range s.arena {
		if seen[ID(id)] {
			out = append(out, ID(id))
		}
	}
	return out
}

// =============================================================================
// MONADIC CONSTRAINTS
// =============================================================================

// AddAlternativeSet declares members mutually exclusive for members of owner.
// Adjective members become relevant to owner. Redeclaring an existing set can
// only make it exhaustive.
func (s *Store) AddAlternativeSet(owner ID, members []ID, exhaustive bool) error {
	kind := s.Noun(owner)
	if kind == nil {
		return fmt.Errorf("%w: alternative sets belong to common nouns", ErrWrongCategory)
	}
	if len(members) < 2 {
		return &DefinitionError{Concept: kind.Plural.String(), Reason: "an alternative set needs at least two members"}
	}
	for _, m := range members {
		switch s.Get(m).(type) {
		case *Adjective:
			if !containsID(kind.Adjectives, m) {
				kind.Adjectives = append(kind.Adjectives, m)
			}
		case *CommonNoun:
		default:
			return fmt.Errorf("%w: alternatives must be adjectives or common nouns", ErrWrongCategory)
		}
	}
	for _, existing := range kind.AlternativeSets {
		if sameMembers(existing.Members, members) {
			existing.Exhaustive = existing.Exhaustive || exhaustive
			return nil
		}
	}
	kind.AlternativeSets = append(kind.AlternativeSets, &AlternativeSet{Members: cloneIDs(members), Exhaustive: exhaustive})
	return nil
}

func sameMembers(a, b []ID) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		if !containsID(b, x) {
			return false
		}
	}
	return true
}

// AddRelevantAdjective records that members of kind may be adj.
func (s *Store) AddRelevantAdjective(kind, adj ID) error {
	n := s.Noun(kind)
	if n == nil || s.Adjective(adj) == nil {
		return fmt.Errorf("%w: expected a common noun and an adjective", ErrWrongCategory)
	}
	if !containsID(n.Adjectives, adj) {
		n.Adjectives = append(n.Adjectives, adj)
	}
	return nil
}

// AddImplication records that members of kind are always (or never) lit.
func (s *Store) AddImplication(kind ID, lit Literal) error {
	n := s.Noun(kind)
	if n == nil || s.Adjective(lit.Concept) == nil {
		return fmt.Errorf("%w: expected a common noun and an adjective", ErrWrongCategory)
	}
	for _, l := range n.Implied {
		if l.Concept != lit.Concept {
			continue
		}
		if l.Positive != lit.Positive {
			return &DefinitionError{
				Concept: n.Plural.String(),
				Reason:  fmt.Sprintf("cannot be both always and never %s", s.Get(lit.Concept).StandardName()),
			}
		}
		return nil
	}
	n.Implied = append(n.Implied, lit)
	return s.AddRelevantAdjective(kind, lit.Concept)
}

// =============================================================================
// PROPERTIES
// =============================================================================

// AddProperty declares (or refines) a property of kind. A later declaration
// with a domain replaces an earlier one without.
func (s *Store) AddProperty(kind ID, name tokens.String, domain Domain) (*Property, error) {
	n := s.Noun(kind)
	if n == nil {
		return nil, fmt.Errorf("%w: properties belong to common nouns", ErrWrongCategory)
	}
	if err := validateDomain(n, name, domain); err != nil {
		return nil, err
	}
	if p := n.Property(name); p != nil {
		if domain.Kind != DomainNone {
			p.Domain = domain
		}
		return p, nil
	}
	p := &Property{Name: name, Owner: kind, Domain: domain}
	n.Properties = append(n.Properties, p)
	return p, nil
}

func validateDomain(n *CommonNoun, name tokens.String, d Domain) error {
	concept := fmt.Sprintf("%s of %s", name, n.Plural)
	switch d.Kind {
	case DomainNumeric:
		if d.Low > d.High {
			return &DefinitionError{Concept: concept, Reason: fmt.Sprintf("empty range %v to %v", d.Low, d.High)}
		}
	case DomainEnumerated:
		if len(d.Values) == 0 {
			return &DefinitionError{Concept: concept, Reason: "no values"}
		}
		seen := make(map[string]bool)
		for _, v := range d.Values {
			if seen[v.Key()] {
				return &DefinitionError{Concept: concept, Reason: fmt.Sprintf("duplicate value %q", v)}
			}
			seen[v.Key()] = true
		}
	}
	return nil
}

// FindProperty looks a property up on kind and then on its ancestors.
func (s *Store) FindProperty(kind ID, name tokens.String) *Property {
	if n := s.Noun(kind); n != nil {
		if p := n.Property(name); p != nil {
			return p
		}
	}
	for _, a := range s.Ancestors(kind) {
		if p := s.Noun(a).Property(name); p != nil {
			return p
		}
	}
	return nil
}

// SetNameTemplate sets the display-name template of kind. Every referenced
// property must be declared on kind or an ancestor.
func (s *Store) SetNameTemplate(kind ID, parts []TemplatePart) error {
	n := s.Noun(kind)
	if n == nil {
		return fmt.Errorf("%w: name templates belong to common nouns", ErrWrongCategory)
	}
	for _, part := range parts {
		if part.IsProperty() && s.FindProperty(kind, part.Property) == nil {
			return &DefinitionError{
				Concept: n.Plural.String(),
				Reason:  fmt.Sprintf("name template refers to unknown property %q", part.Property),
			}
		}
	}
	n.NameTemplate = append([]TemplatePart(nil), parts...)
	return nil
}

// =============================================================================
// VERB GRAPH
// =============================================================================

// AddVerbGeneralization records that specific implies general.
func (s *Store) AddVerbGeneralization(specific, general ID) error {
	v, g := s.Verb(specific), s.Verb(general)
	if v == nil || g == nil {
		return fmt.Errorf("%w: generalizations join verbs", ErrWrongCategory)
	}
	if specific == general || s.generalizes(general, specific) {
		logging.Ontology("rejected generalization %s -> %s: cycle", v.Forms.Gerund, g.Forms.Gerund)
		return fmt.Errorf("%w: %s cannot be a way of %s", ErrCycle, v.Forms.Gerund, g.Forms.Gerund)
	}
	if !containsID(v.Generalizations, general) {
		v.Generalizations = append(v.Generalizations, general)
	}
	return nil
}

// generalizes reports whether from reaches to through generalization edges.
func (s *Store) generalizes(from, to ID) bool {
	seen := make(map[ID]bool)
	stack := []ID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == to {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		if v := s.Verb(id); v != nil {
			stack = append(stack, v.Generalizations...)
		}
	}
	return false
}

// AddVerbExclusion declares that a and b never hold for the same pair.
func (s *Store) AddVerbExclusion(a, b ID) error {
	va, vb := s.Verb(a), s.Verb(b)
	if va == nil || vb == nil {
		return fmt.Errorf("%w: exclusions join verbs", ErrWrongCategory)
	}
	if a == b {
		return &DefinitionError{Concept: va.Forms.Gerund.String(), Reason: "a verb cannot exclude itself"}
	}
	if !containsID(va.Exclusions, b) {
		va.Exclusions = append(va.Exclusions, b)
	}
	if !containsID(vb.Exclusions, a) {
		vb.Exclusions = append(vb.Exclusions, a)
	}
	return nil
}

// =============================================================================
// INDIVIDUALS
// =============================================================================

// AssertKind records that the individual named by pn is a kind.
func (s *Store) AssertKind(pn, kind ID) error {
	p := s.ProperNoun(pn)
	if p == nil || s.Noun(kind) == nil {
		return fmt.Errorf("%w: expected a proper noun and a common noun", ErrWrongCategory)
	}
	if !containsID(p.Individual.Kinds, kind) {
		p.Individual.Kinds = append(p.Individual.Kinds, kind)
	}
	return nil
}

// AssertAdjective records that the individual named by pn is (or is not) an
// adjective.
func (s *Store) AssertAdjective(pn ID, lit Literal) error {
	p := s.ProperNoun(pn)
	if p == nil || s.Adjective(lit.Concept) == nil {
		return fmt.Errorf("%w: expected a proper noun and an adjective", ErrWrongCategory)
	}
	for _, l := range p.Individual.Adjectives {
		if l == lit {
			return nil
		}
	}
	p.Individual.Adjectives = append(p.Individual.Adjectives, lit)
	return nil
}

// AssertRelation records a relation between two named individuals.
func (s *Store) AssertRelation(r Relation) error {
	if s.Verb(r.Verb) == nil || s.ProperNoun(r.Subject) == nil || s.ProperNoun(r.Object) == nil {
		return fmt.Errorf("%w: relations join proper nouns through a verb", ErrWrongCategory)
	}
	for _, existing := range s.relations {
		if existing == r {
			return nil
		}
	}
	s.relations = append(s.relations, r)
	return nil
}
