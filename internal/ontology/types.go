// Package ontology holds the concept graph built up by the parser: the lexicon
// of named referents, the kind hierarchy, alternative sets, properties, verbs
// and the named individuals asserted by the user.
//
// Concepts live in an arena and refer to one another by stable ID, so the
// whole store can be cloned cheaply and a failed mutation rolled back by
// discarding the clone.
package ontology

import (
	"fmt"

	"imaginarium/internal/tokens"
)

// ID identifies a referent in a Store's arena.
type ID int

// NoID is the zero-value sentinel for an absent referent.
const NoID ID = -1

// Category is the lexicon table a referent belongs to.
type Category int

const (
	CategoryCommonNoun Category = iota
	CategoryAdjective
	CategoryVerb
	CategoryProperNoun
)

func (c Category) String() string {
	switch c {
	case CategoryCommonNoun:
		return "common noun"
	case CategoryAdjective:
		return "adjective"
	case CategoryVerb:
		return "verb"
	case CategoryProperNoun:
		return "proper noun"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Referent is anything nameable.
type Referent interface {
	ID() ID
	Category() Category
	// StandardName is the canonical spelling used when rendering.
	StandardName() tokens.String
}

type referent struct {
	id   ID
	name tokens.String
}

func (r *referent) ID() ID                      { return r.id }
func (r *referent) StandardName() tokens.String { return r.name }

// Literal is a monadic concept together with a polarity.
type Literal struct {
	Concept  ID
	Positive bool
}

// AlternativeSet is a group of monadic concepts no two of which may hold for
// the same individual. An exhaustive set additionally requires one member to
// hold whenever its owner kind does.
type AlternativeSet struct {
	Members    []ID
	Exhaustive bool
}

func (a *AlternativeSet) clone() *AlternativeSet {
	return &AlternativeSet{Members: cloneIDs(a.Members), Exhaustive: a.Exhaustive}
}

// Contains reports whether id is a member.
func (a *AlternativeSet) Contains(id ID) bool {
	for _, m := range a.Members {
		if m == id {
			return true
		}
	}
	return false
}

// =============================================================================
// MONADIC CONCEPTS
// =============================================================================

// CommonNoun is a kind. Kind edges are stored in both directions.
type CommonNoun struct {
	referent
	Plural tokens.String

	Superkinds []ID
	Subkinds   []ID

	AlternativeSets []*AlternativeSet
	// Adjectives that may apply to members of this kind.
	Adjectives []ID
	// Implied are adjectives that always (or never) hold for members.
	Implied []Literal

	Properties   []*Property
	NameTemplate []TemplatePart
}

func (n *CommonNoun) Category() Category { return CategoryCommonNoun }

// Singular returns the singular name.
func (n *CommonNoun) Singular() tokens.String { return n.name }

// Property returns the property declared directly on this noun, if any.
func (n *CommonNoun) Property(name tokens.String) *Property {
	for _, p := range n.Properties {
		if p.Name.Equal(name) {
			return p
		}
	}
	return nil
}

func (n *CommonNoun) clone() *CommonNoun {
	c := *n
	c.Superkinds = cloneIDs(n.Superkinds)
	c.Subkinds = cloneIDs(n.Subkinds)
	c.Adjectives = cloneIDs(n.Adjectives)
	c.Implied = append([]Literal(nil), n.Implied...)
	c.AlternativeSets = make([]*AlternativeSet, len(n.AlternativeSets))
	for i, s := range n.AlternativeSets {
		c.AlternativeSets[i] = s.clone()
	}
	c.Properties = make([]*Property, len(n.Properties))
	for i, p := range n.Properties {
		c.Properties[i] = p.clone()
	}
	c.NameTemplate = append([]TemplatePart(nil), n.NameTemplate...)
	return &c
}

// Adjective is a monadic concept that is not a kind.
type Adjective struct {
	referent
}

func (a *Adjective) Category() Category { return CategoryAdjective }

// =============================================================================
// PROPERTIES
// =============================================================================

// DomainKind is the type of values a property ranges over.
type DomainKind int

const (
	DomainNone DomainKind = iota
	DomainBoolean
	DomainNumeric
	DomainEnumerated
)

func (k DomainKind) String() string {
	switch k {
	case DomainBoolean:
		return "boolean"
	case DomainNumeric:
		return "numeric"
	case DomainEnumerated:
		return "enumerated"
	default:
		return "none"
	}
}

// Domain describes the values a property may take.
type Domain struct {
	Kind DomainKind
	// Numeric bounds, inclusive.
	Low, High float64
	Integer   bool
	// Enumerated values.
	Values []tokens.String
}

// Property is a named attribute declared on one kind and inherited by its
// subkinds.
type Property struct {
	Name   tokens.String
	Owner  ID
	Domain Domain
}

func (p *Property) clone() *Property {
	c := *p
	c.Domain.Values = append([]tokens.String(nil), p.Domain.Values...)
	return &c
}

// IsName reports whether the property is the distinguished "name" property
// used in place of a generated identifier.
func (p *Property) IsName() bool {
	return p.Name.Key() == "name"
}

// TemplatePart is either literal text or a bracketed property reference.
type TemplatePart struct {
	Text     string
	Property tokens.String
}

// IsProperty reports whether the part references a property.
func (t TemplatePart) IsProperty() bool { return !t.Property.IsEmpty() }

// =============================================================================
// VERBS
// =============================================================================

// VerbForms holds the lexical forms of a verb.
type VerbForms struct {
	Base        tokens.String
	ThirdPerson tokens.String
	Plural      tokens.String
	Gerund      tokens.String
}

// Verb is a binary relation between a subject kind and an object kind.
type Verb struct {
	referent
	Forms VerbForms

	Subject ID
	Object  ID

	Functional    bool
	Total         bool
	Reflexive     bool
	AntiReflexive bool
	Symmetric     bool
	AntiSymmetric bool

	// Generalizations are verbs implied by this one.
	Generalizations []ID
	// Exclusions are verbs that may not hold for the same pair.
	Exclusions []ID

	// Density is the prior probability of the relation holding for a pair;
	// negative means unspecified.
	Density float64
}

func (v *Verb) Category() Category { return CategoryVerb }

func (v *Verb) clone() *Verb {
	c := *v
	c.Generalizations = cloneIDs(v.Generalizations)
	c.Exclusions = cloneIDs(v.Exclusions)
	return &c
}

// =============================================================================
// INDIVIDUALS
// =============================================================================

// Individual is an entity to instantiate. Named individuals are owned by their
// ProperNoun; anonymous ones are created per generation.
type Individual struct {
	Name tokens.String
	// Kinds the individual was declared to be, not necessarily most specific.
	Kinds []ID
	// Adjectives asserted (or denied) for the individual.
	Adjectives []Literal
	// Proper is set for individuals named by a proper noun.
	Proper bool
}

func (i *Individual) clone() *Individual {
	c := *i
	c.Kinds = cloneIDs(i.Kinds)
	c.Adjectives = append([]Literal(nil), i.Adjectives...)
	return &c
}

// ProperNoun names exactly one Individual.
type ProperNoun struct {
	referent
	Individual *Individual
}

func (p *ProperNoun) Category() Category { return CategoryProperNoun }

// Relation is an asserted (or denied) verb instance between named individuals.
type Relation struct {
	Verb     ID
	Subject  ID
	Object   ID
	Positive bool
}

func cloneIDs(ids []ID) []ID {
	if ids == nil {
		return nil
	}
	return append([]ID(nil), ids...)
}

func containsID(ids []ID, id ID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
