package mangle

import "fmt"

// Predicates of the invention schema.
const (
	PredIsA       = "is_a"
	PredHolds     = "holds"
	PredHasValue  = "has_value"
	PredRelated   = "related"
	PredConnected = "connected"
	PredKindCount = "kind_count"
)

// InventionSchema declares the facts an invention exports and the rules
// derived from them. Individuals are identified by their rendered names.
const InventionSchema = `
Decl is_a(Individual, Concept) descr [mode("-", "-")] bound [/string, /string].
Decl holds(Verb, Subject, Object) descr [mode("-", "-", "-")] bound [/string, /string, /string].
Decl has_value(Individual, Property, Value) descr [mode("-", "-", "-")].
Decl related(Subject, Object) descr [mode("-", "-")].
Decl connected(Subject, Object) descr [mode("-", "-")].
Decl kind_count(Concept, Count) descr [mode("-", "-")].

related(S, O) :- holds(_, S, O).
related(S, O) :- holds(_, O, S).

connected(S, O) :- related(S, O).
connected(S, O) :- related(S, M), connected(M, O).

kind_count(C, N) :-
	is_a(I, C) |>
	do fn:group_by(C),
	let N = fn:count().
`

// NewInventionEngine returns an engine with InventionSchema loaded.
func NewInventionEngine(cfg Config) (*Engine, error) {
	e, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	if err := e.Load(InventionSchema); err != nil {
		return nil, fmt.Errorf("invention schema: %w", err)
	}
	return e, nil
}

// Replace clears the store and loads facts in one evaluation.
func (e *Engine) Replace(facts []Fact) error {
	e.Clear()
	return e.AddFacts(facts)
}
