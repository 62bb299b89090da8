// Package sat is the boundary between the ontology compiler and the SAT
// search. A Problem is a set of named boolean propositions, CNF clauses over
// them and bounded numeric variables; a Solver turns it into a Model.
package sat

import (
	"fmt"
	"strings"
)

// Literal is a proposition or its negation. Proposition n (1-based) is
// Literal(n); its negation is Literal(-n). Zero is not a literal.
type Literal int

// Not returns the complementary literal.
func (l Literal) Not() Literal { return -l }

// Var returns the 1-based proposition index.
func (l Literal) Var() int {
	if l < 0 {
		return int(-l)
	}
	return int(l)
}

// Positive reports whether the literal is unnegated.
func (l Literal) Positive() bool { return l > 0 }

// Clause is a disjunction of literals.
type Clause []Literal

// Proposition is a named boolean variable.
type Proposition struct {
	Name string
	// Density is the prior probability of the proposition being true, used to
	// bias the search. Negative means unbiased.
	Density float64
}

// NumericVariable is a value drawn from a closed interval.
type NumericVariable struct {
	Name      string
	Low, High float64
	Integer   bool
}

// Problem accumulates propositions and clauses.
type Problem struct {
	props   []Proposition
	clauses []Clause
	numeric []NumericVariable
	falseL  Literal
	empty   bool
}

// NewProblem creates an empty problem.
func NewProblem() *Problem {
	return &Problem{}
}

// NewProposition declares a proposition and returns its positive literal.
func (p *Problem) NewProposition(name string, density float64) Literal {
	p.props = append(p.props, Proposition{Name: name, Density: density})
	return Literal(len(p.props))
}

// False returns a literal constrained to be false. It is created on first use
// and stands in for propositions that are irrelevant to an individual.
func (p *Problem) False() Literal {
	if p.falseL == 0 {
		p.falseL = p.NewProposition("false", -1)
		p.AddClause(p.falseL.Not())
	}
	return p.falseL
}

// True returns a literal constrained to be true.
func (p *Problem) True() Literal { return p.False().Not() }

// NewNumeric declares a numeric variable and returns its index.
func (p *Problem) NewNumeric(name string, low, high float64, integer bool) int {
	p.numeric = append(p.numeric, NumericVariable{Name: name, Low: low, High: high, Integer: integer})
	return len(p.numeric) - 1
}

// AddClause adds a disjunction. An empty clause makes the problem
// unsatisfiable.
func (p *Problem) AddClause(lits ...Literal) {
	if len(lits) == 0 {
		p.empty = true
		return
	}
	for _, l := range lits {
		if l == 0 || l.Var() > len(p.props) {
			panic(fmt.Sprintf("sat: literal %d out of range", l))
		}
	}
	p.clauses = append(p.clauses, append(Clause(nil), lits...))
}

// Unit asserts a literal.
func (p *Problem) Unit(l Literal) { p.AddClause(l) }

// Implies adds a ⇒ b.
func (p *Problem) Implies(a, b Literal) { p.AddClause(a.Not(), b) }

// ImpliesAny adds a ⇒ (b1 ∨ b2 ∨ ...). With no bs, a is forced false.
func (p *Problem) ImpliesAny(a Literal, bs ...Literal) {
	clause := make([]Literal, 0, len(bs)+1)
	clause = append(clause, a.Not())
	clause = append(clause, bs...)
	p.AddClause(clause...)
}

// AtLeastOne adds the disjunction of lits.
func (p *Problem) AtLeastOne(lits ...Literal) { p.AddClause(lits...) }

// AtMostOne adds pairwise exclusion clauses.
func (p *Problem) AtMostOne(lits ...Literal) {
	for i := 0; i < len(lits); i++ {
		for j := i + 1; j < len(lits); j++ {
			p.AddClause(lits[i].Not(), lits[j].Not())
		}
	}
}

// ExactlyOne combines AtLeastOne and AtMostOne.
func (p *Problem) ExactlyOne(lits ...Literal) {
	p.AtLeastOne(lits...)
	p.AtMostOne(lits...)
}

// NumPropositions returns the number of declared propositions.
func (p *Problem) NumPropositions() int { return len(p.props) }

// Proposition returns the declaration behind a literal.
func (p *Problem) Proposition(l Literal) Proposition { return p.props[l.Var()-1] }

// Clauses returns the clauses added so far.
func (p *Problem) Clauses() []Clause { return p.clauses }

// Numeric returns the declared numeric variables.
func (p *Problem) Numeric() []NumericVariable { return p.numeric }

// Trivial reports whether an empty clause was added.
func (p *Problem) Trivial() bool { return p.empty }

// String renders the clauses with proposition names, one per line.
func (p *Problem) String() string {
	var b strings.Builder
	for _, c := range p.clauses {
		for i, l := range c {
			if i > 0 {
				b.WriteString(" | ")
			}
			if !l.Positive() {
				b.WriteString("!")
			}
			b.WriteString(p.Proposition(l).Name)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Model is the result of a solve. When Satisfiable is false the values are
// meaningless.
type Model struct {
	Satisfiable bool
	values      []bool
	numeric     []float64
}

// NewModel builds a model from a 1-based valuation (index 0 unused) and
// numeric values.
func NewModel(values []bool, numeric []float64) *Model {
	return &Model{Satisfiable: true, values: values, numeric: numeric}
}

// Unsatisfiable is the model reported when no assignment exists.
func Unsatisfiable() *Model { return &Model{} }

// Value returns the truth of a literal.
func (m *Model) Value(l Literal) bool {
	v := l.Var()
	if v >= len(m.values) {
		return !l.Positive()
	}
	return m.values[v] == l.Positive()
}

// Numeric returns the value of numeric variable i.
func (m *Model) Numeric(i int) float64 {
	if i < 0 || i >= len(m.numeric) {
		return 0
	}
	return m.numeric[i]
}
