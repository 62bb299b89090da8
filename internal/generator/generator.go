// Package generator compiles an ontology and a population request into a SAT
// problem. Every (individual, concept) pair that can matter gets an IsA
// proposition and every (verb, subject, object) triple that can matter gets a
// Holds proposition; all others are the problem's constant false.
package generator

import (
	"fmt"
	"strconv"
	"strings"

	"imaginarium/internal/logging"
	"imaginarium/internal/ontology"
	"imaginarium/internal/sat"
	"imaginarium/internal/tokens"
)

// Request describes the population to generate.
type Request struct {
	// Kind of the anonymous individuals; NoID when Count is zero.
	Kind      ontology.ID
	Modifiers []ontology.ID
	Count     int
	// IncludeNamed adds every individual named by a proper noun.
	IncludeNamed bool
}

// Options tune the encoding.
type Options struct {
	// DefaultDensity biases propositions with no declared density.
	DefaultDensity float64
	// MaxPopulation bounds the number of individuals; zero means no bound.
	MaxPopulation int
}

// Generator is a compiled problem together with the tables needed to read a
// model back.
type Generator struct {
	store   *ontology.Store
	opts    Options
	problem *sat.Problem

	individuals []*Individual
	verbs       []*ontology.Verb
	isA         map[conceptKey]sat.Literal
	holds       map[holdsKey]sat.Literal
	properties  map[int][]*PropertyVar
}

// Compile builds the problem. It fails only on malformed ontology state, such
// as a property with no domain, or on an invalid request.
func Compile(store *ontology.Store, req Request, opts Options) (*Generator, error) {
	timer := logging.StartTimer(logging.CategoryGenerator, "compile")
	defer timer.Stop()

	g := &Generator{
		store:      store,
		opts:       opts,
		problem:    sat.NewProblem(),
		isA:        make(map[conceptKey]sat.Literal),
		holds:      make(map[holdsKey]sat.Literal),
		properties: make(map[int][]*PropertyVar),
	}
	if err := g.populate(req); err != nil {
		return nil, err
	}
	for _, v := range store.Verbs() {
		if v.Subject != ontology.NoID && v.Object != ontology.NoID {
			g.verbs = append(g.verbs, v)
		}
	}

	for _, ind := range g.individuals {
		g.relevance(ind)
		g.declareMonadic(ind)
	}
	for _, ind := range g.individuals {
		g.encodeMonadic(ind)
		if err := g.encodeProperties(ind); err != nil {
			return nil, err
		}
	}
	g.encodeVerbs()
	if err := g.encodeRelations(); err != nil {
		return nil, err
	}

	logging.Generator("compiled %d individuals into %d propositions and %d clauses",
		len(g.individuals), g.problem.NumPropositions(), len(g.problem.Clauses()))
	return g, nil
}

// populate creates the named and anonymous individuals.
func (g *Generator) populate(req Request) error {
	if req.Count < 0 {
		return fmt.Errorf("negative population %d", req.Count)
	}
	if req.Count > 0 && g.store.Noun(req.Kind) == nil {
		return fmt.Errorf("%w: population kind %d is not a common noun", ontology.ErrWrongCategory, req.Kind)
	}
	for _, m := range req.Modifiers {
		if g.store.Adjective(m) == nil {
			return fmt.Errorf("%w: modifier %d is not an adjective", ontology.ErrWrongCategory, m)
		}
	}

	if req.IncludeNamed {
		for _, pn := range g.store.ProperNouns() {
			g.individuals = append(g.individuals, &Individual{
				Index:      len(g.individuals),
				Name:       pn.StandardName(),
				Proper:     true,
				ProperNoun: pn.ID(),
				Declared:   append([]ontology.ID(nil), pn.Individual.Kinds...),
				Asserted:   append([]ontology.Literal(nil), pn.Individual.Adjectives...),
			})
		}
	}
	if req.Count > 0 {
		kind := g.store.Noun(req.Kind)
		asserted := make([]ontology.Literal, len(req.Modifiers))
		for i, m := range req.Modifiers {
			asserted[i] = ontology.Literal{Concept: m, Positive: true}
		}
		for n := 1; n <= req.Count; n++ {
			words := kind.Singular().Words()
			words = append(words[:len(words)-1:len(words)-1], words[len(words)-1]+strconv.Itoa(n))
			g.individuals = append(g.individuals, &Individual{
				Index:      len(g.individuals),
				Name:       tokens.New(words...),
				ProperNoun: ontology.NoID,
				Declared:   []ontology.ID{req.Kind},
				Asserted:   asserted,
			})
		}
	}
	if g.opts.MaxPopulation > 0 && len(g.individuals) > g.opts.MaxPopulation {
		return fmt.Errorf("population of %d exceeds the limit of %d", len(g.individuals), g.opts.MaxPopulation)
	}
	return nil
}

// relevance computes the kinds and adjectives an individual can have: the
// kind-graph component of its declared kinds and of the argument kinds of
// verbs asserted about it, the adjectives of those kinds, and any adjective
// asserted about the individual itself.
func (g *Generator) relevance(ind *Individual) {
	roots := append([]ontology.ID(nil), ind.Declared...)
	if ind.Proper {
		for _, r := range g.store.Relations() {
			v := g.store.Verb(r.Verb)
			if !r.Positive || v.Subject == ontology.NoID {
				continue
			}
			if r.Subject == ind.ProperNoun {
				roots = append(roots, v.Subject)
			}
			if r.Object == ind.ProperNoun {
				roots = append(roots, v.Object)
			}
		}
	}
	if len(roots) > 0 {
		ind.Kinds = g.store.Component(roots...)
	}

	seen := make(map[ontology.ID]bool)
	for _, k := range ind.Kinds {
		for _, a := range g.store.Noun(k).Adjectives {
			if !seen[a] {
				seen[a] = true
				ind.Adjectives = append(ind.Adjectives, a)
			}
		}
	}
	// An adjective asserted about the individual applies to it even when
	// none of its kinds can be described that way.
	for _, lit := range ind.Asserted {
		if lit.Positive && !seen[lit.Concept] {
			seen[lit.Concept] = true
			ind.Adjectives = append(ind.Adjectives, lit.Concept)
		}
	}
	if logging.IsCategoryEnabled(logging.CategoryGenerator) {
		kinds := make([]string, 0, len(ind.Kinds))
		for _, k := range ind.Kinds {
			kinds = append(kinds, g.store.Noun(k).Singular().String())
		}
		logging.GeneratorDebug("%s: kinds [%s], %d adjectives", ind.Name, strings.Join(kinds, " "), len(ind.Adjectives))
	}
}

func (g *Generator) density(d float64) float64 {
	if d >= 0 {
		return d
	}
	return g.opts.DefaultDensity
}

func (g *Generator) declareMonadic(ind *Individual) {
	for _, k := range ind.Kinds {
		name := fmt.Sprintf("%s(%s)", g.store.Get(k).StandardName(), ind.Name)
		g.isA[conceptKey{ind.Index, k}] = g.problem.NewProposition(name, g.density(-1))
	}
	for _, a := range ind.Adjectives {
		name := fmt.Sprintf("%s(%s)", g.store.Get(a).StandardName(), ind.Name)
		g.isA[conceptKey{ind.Index, a}] = g.problem.NewProposition(name, g.density(-1))
	}
}

// encodeMonadic adds the kind, adjective and alternative-set clauses of one
// individual.
func (g *Generator) encodeMonadic(ind *Individual) {
	for _, k := range ind.Declared {
		g.problem.Unit(g.IsA(ind, k))
	}
	for _, lit := range ind.Asserted {
		l := g.IsA(ind, lit.Concept)
		if !lit.Positive {
			l = l.Not()
		}
		g.problem.Unit(l)
	}

	// which kinds make each adjective relevant
	owners := make(map[ontology.ID][]sat.Literal)
	for _, k := range ind.Kinds {
		kind := g.store.Noun(k)
		isK := g.IsA(ind, k)
		for _, super := range kind.Superkinds {
			g.problem.Implies(isK, g.IsA(ind, super))
		}
		for _, a := range kind.Adjectives {
			owners[a] = append(owners[a], isK)
		}
		for _, set := range kind.AlternativeSets {
			members := make([]sat.Literal, len(set.Members))
			for i, m := range set.Members {
				members[i] = g.IsA(ind, m)
			}
			g.problem.AtMostOne(members...)
			if set.Exhaustive {
				g.problem.ImpliesAny(isK, members...)
			}
		}
		for _, lit := range kind.Implied {
			l := g.IsA(ind, lit.Concept)
			if !lit.Positive {
				l = l.Not()
			}
			g.problem.Implies(isK, l)
		}
	}
	asserted := make(map[ontology.ID]bool)
	for _, lit := range ind.Asserted {
		if lit.Positive {
			asserted[lit.Concept] = true
		}
	}
	for _, a := range ind.Adjectives {
		if asserted[a] {
			continue
		}
		g.problem.ImpliesAny(g.IsA(ind, a), owners[a]...)
	}
}

// encodeProperties declares the property variables of one individual.
func (g *Generator) encodeProperties(ind *Individual) error {
	for _, k := range ind.Kinds {
		kind := g.store.Noun(k)
		owner := g.IsA(ind, k)
		for _, p := range kind.Properties {
			pv := &PropertyVar{Property: p, Individual: ind, Owner: owner, Numeric: -1}
			label := fmt.Sprintf("%s(%s)", p.Name, ind.Name)
			switch p.Domain.Kind {
			case ontology.DomainBoolean:
				pv.Flag = g.problem.NewProposition(label, g.density(-1))
				g.problem.Implies(pv.Flag, owner)
			case ontology.DomainEnumerated:
				d := 1 / float64(len(p.Domain.Values))
				for _, v := range p.Domain.Values {
					l := g.problem.NewProposition(fmt.Sprintf("%s=%s(%s)", p.Name, v, ind.Name), d)
					g.problem.Implies(l, owner)
					pv.Values = append(pv.Values, l)
				}
				g.problem.AtMostOne(pv.Values...)
				g.problem.ImpliesAny(owner, pv.Values...)
			case ontology.DomainNumeric:
				pv.Numeric = g.problem.NewNumeric(label, p.Domain.Low, p.Domain.High, p.Domain.Integer)
			default:
				return &ontology.DefinitionError{
					Concept: fmt.Sprintf("%s of %s", p.Name, kind.Plural),
					Reason:  "property has no domain; say what values it can take",
				}
			}
			g.properties[ind.Index] = append(g.properties[ind.Index], pv)
		}
	}
	return nil
}

// encodeVerbs declares Holds propositions for every pair an applicable verb
// can join, then adds the structural verb constraints.
func (g *Generator) encodeVerbs() {
	for _, v := range g.verbs {
		for _, i := range g.individuals {
			if !i.hasKind(v.Subject) {
				continue
			}
			for _, j := range g.individuals {
				if !j.hasKind(v.Object) {
					continue
				}
				name := fmt.Sprintf("%s(%s, %s)", v.Forms.Base, i.Name, j.Name)
				h := g.problem.NewProposition(name, g.density(v.Density))
				g.holds[holdsKey{v.ID(), i.Index, j.Index}] = h
				g.problem.Implies(h, g.IsA(i, v.Subject))
				g.problem.Implies(h, g.IsA(j, v.Object))
			}
		}
	}

	for _, v := range g.verbs {
		for _, i := range g.individuals {
			row := g.row(v, i)
			if v.Functional {
				g.problem.AtMostOne(row...)
			}
			if v.Total {
				g.problem.ImpliesAny(g.IsA(i, v.Subject), row...)
			}
			if v.Reflexive && i.hasKind(v.Subject) && i.hasKind(v.Object) {
				g.problem.AddClause(g.IsA(i, v.Subject).Not(), g.IsA(i, v.Object).Not(), g.Holds(v.ID(), i, i))
			}
			if v.AntiReflexive {
				g.problem.Unit(g.Holds(v.ID(), i, i).Not())
			}
			for _, j := range g.individuals {
				h, ok := g.holds[holdsKey{v.ID(), i.Index, j.Index}]
				if !ok {
					continue
				}
				if v.Symmetric {
					g.problem.Implies(h, g.Holds(v.ID(), j, i))
				}
				if v.AntiSymmetric && i != j {
					g.problem.AddClause(h.Not(), g.Holds(v.ID(), j, i).Not())
				}
				for _, w := range v.Generalizations {
					g.problem.Implies(h, g.Holds(w, i, j))
				}
				for _, w := range v.Exclusions {
					if w > v.ID() {
						g.problem.AddClause(h.Not(), g.Holds(w, i, j).Not())
					}
				}
			}
		}
	}
}

// row returns the Holds literals of v with subject i.
func (g *Generator) row(v *ontology.Verb, i *Individual) []sat.Literal {
	var out []sat.Literal
	for _, j := range g.individuals {
		if h, ok := g.holds[holdsKey{v.ID(), i.Index, j.Index}]; ok {
			out = append(out, h)
		}
	}
	return out
}

// encodeRelations asserts the relations stated between named individuals.
func (g *Generator) encodeRelations() error {
	byNoun := make(map[ontology.ID]*Individual)
	for _, ind := range g.individuals {
		if ind.Proper {
			byNoun[ind.ProperNoun] = ind
		}
	}
	for _, r := range g.store.Relations() {
		subject, object := byNoun[r.Subject], byNoun[r.Object]
		if subject == nil || object == nil {
			continue
		}
		v := g.store.Verb(r.Verb)
		if v.Subject == ontology.NoID {
			return &ontology.DefinitionError{
				Concept: v.Forms.Gerund.String(),
				Reason:  "verb has no subject or object kind",
			}
		}
		h := g.Holds(r.Verb, subject, object)
		if !r.Positive {
			h = h.Not()
		}
		g.problem.Unit(h)
	}
	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Store returns the ontology the problem was compiled from.
func (g *Generator) Store() *ontology.Store { return g.store }

// Problem returns the compiled problem.
func (g *Generator) Problem() *sat.Problem { return g.problem }

// Individuals returns the population in index order.
func (g *Generator) Individuals() []*Individual { return g.individuals }

// Verbs returns the verbs with subject and object kinds.
func (g *Generator) Verbs() []*ontology.Verb { return g.verbs }

// IsA returns the proposition that ind is the monadic concept, or the
// constant false if the concept is irrelevant to ind.
func (g *Generator) IsA(ind *Individual, concept ontology.ID) sat.Literal {
	if l, ok := g.isA[conceptKey{ind.Index, concept}]; ok {
		return l
	}
	return g.problem.False()
}

// Holds returns the proposition that verb relates subject to object, or the
// constant false if it cannot.
func (g *Generator) Holds(verb ontology.ID, subject, object *Individual) sat.Literal {
	if l, ok := g.holds[holdsKey{verb, subject.Index, object.Index}]; ok {
		return l
	}
	return g.problem.False()
}

// Properties returns the property variables of ind, ordered by kind and then
// by declaration.
func (g *Generator) Properties(ind *Individual) []*PropertyVar {
	return g.properties[ind.Index]
}

// Property finds a property variable of ind by name.
func (g *Generator) Property(ind *Individual, name tokens.String) *PropertyVar {
	for _, pv := range g.properties[ind.Index] {
		if pv.Property.Name.Equal(name) {
			return pv
		}
	}
	return nil
}
