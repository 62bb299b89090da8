package ontology

import (
	"errors"
	"fmt"
)

var (
	// ErrNameCollision is returned when a name is already bound to a referent
	// of another category (or to a different referent).
	ErrNameCollision = errors.New("name collision")

	// ErrCycle is returned when an edge would make the kind graph or the verb
	// generalization graph cyclic.
	ErrCycle = errors.New("cycle in concept graph")

	// ErrWrongCategory is returned when an operation receives a referent of
	// an unexpected category.
	ErrWrongCategory = errors.New("wrong referent category")
)

// DefinitionError reports a malformed ontology construction: a property with
// no domain, a template naming an unknown property, an impossible range.
type DefinitionError struct {
	Concept string
	Reason  string
}

func (e *DefinitionError) Error() string {
	if e.Concept == "" {
		return fmt.Sprintf("definition error: %s", e.Reason)
	}
	return fmt.Sprintf("definition error in %s: %s", e.Concept, e.Reason)
}

// IsStructural reports whether err is a structural or definitional error, as
// opposed to a name collision.
func IsStructural(err error) bool {
	var de *DefinitionError
	return errors.Is(err, ErrCycle) || errors.Is(err, ErrWrongCategory) || errors.As(err, &de)
}
