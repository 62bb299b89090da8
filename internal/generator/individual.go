package generator

import (
	"imaginarium/internal/ontology"
	"imaginarium/internal/sat"
	"imaginarium/internal/tokens"
)

// Individual is one entity in a compiled population.
type Individual struct {
	Index int
	// Name is the proper name of a named individual, or a generated
	// identifier such as "cat1".
	Name   tokens.String
	Proper bool
	// ProperNoun is the naming referent, or NoID.
	ProperNoun ontology.ID

	// Declared kinds and asserted adjectives become unit clauses.
	Declared []ontology.ID
	Asserted []ontology.Literal

	// Kinds and Adjectives are the concepts with propositions for this
	// individual; every other concept is false for it.
	Kinds      []ontology.ID
	Adjectives []ontology.ID
}

func (i *Individual) hasKind(id ontology.ID) bool {
	for _, k := range i.Kinds {
		if k == id {
			return true
		}
	}
	return false
}

// PropertyVar is the compiled value of one property for one individual.
type PropertyVar struct {
	Property   *ontology.Property
	Individual *Individual
	// Owner is the literal that makes the value meaningful.
	Owner sat.Literal

	// Flag is set for boolean properties.
	Flag sat.Literal
	// Values parallels Property.Domain.Values for enumerated properties.
	Values []sat.Literal
	// Numeric is the numeric variable index, or -1.
	Numeric int
}

type conceptKey struct {
	individual int
	concept    ontology.ID
}

type holdsKey struct {
	verb            ontology.ID
	subject, object int
}
