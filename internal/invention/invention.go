// Package invention reads a solved generator problem back into English.
package invention

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"imaginarium/internal/generator"
	"imaginarium/internal/logging"
	"imaginarium/internal/mangle"
	"imaginarium/internal/morph"
	"imaginarium/internal/ontology"
	"imaginarium/internal/sat"
	"imaginarium/internal/tokens"
)

// NoConsistentIndividuals is the only description of an unsatisfiable
// invention.
const NoConsistentIndividuals = "No consistent individuals found."

// Invention is one generation result. It is read-only.
type Invention struct {
	ID      string
	Created time.Time

	gen   *generator.Generator
	model *sat.Model
}

// New wraps a compiled generator and the model the solver returned for it.
func New(gen *generator.Generator, model *sat.Model) *Invention {
	inv := &Invention{
		ID:      uuid.New().String(),
		Created: time.Now(),
		gen:     gen,
		model:   model,
	}
	logging.InventionDebug("invention %s: %d individuals, satisfiable=%v",
		inv.ID, len(gen.Individuals()), model.Satisfiable)
	if !model.Satisfiable {
		logging.Invention("invention %s: %s", inv.ID, NoConsistentIndividuals)
	}
	return inv
}

// Satisfiable reports whether the solver found an assignment.
func (inv *Invention) Satisfiable() bool { return inv.model.Satisfiable }

// Generator returns the compiled problem.
func (inv *Invention) Generator() *generator.Generator { return inv.gen }

// Individuals returns the population.
func (inv *Invention) Individuals() []*generator.Individual { return inv.gen.Individuals() }

// IsA reports whether ind is an instance of the monadic concept.
func (inv *Invention) IsA(ind *generator.Individual, concept ontology.ID) bool {
	return inv.model.Satisfiable && inv.model.Value(inv.gen.IsA(ind, concept))
}

// Holds reports whether verb relates subject to object.
func (inv *Invention) Holds(verb ontology.ID, subject, object *generator.Individual) bool {
	return inv.model.Satisfiable && inv.model.Value(inv.gen.Holds(verb, subject, object))
}

// =============================================================================
// KINDS AND ADJECTIVES
// =============================================================================

// TrueKinds returns every kind of ind, found by walking the kind graph up and
// down from its declared kinds through kinds that hold.
func (inv *Invention) TrueKinds(ind *generator.Individual) []ontology.ID {
	store := inv.gen.Store()
	visited := make(map[ontology.ID]bool)
	var out []ontology.ID
	var visit func(k ontology.ID)
	visit = func(k ontology.ID) {
		if visited[k] {
			return
		}
		visited[k] = true
		if !inv.IsA(ind, k) {
			return
		}
		out = append(out, k)
		n := store.Noun(k)
		for _, s := range n.Superkinds {
			visit(s)
		}
		for _, s := range n.Subkinds {
			visit(s)
		}
	}
	for _, k := range ind.Declared {
		visit(k)
	}
	// kinds reached only through relations
	for _, k := range ind.Kinds {
		visit(k)
	}
	return out
}

// MostSpecificNouns returns the true kinds of ind that have no true subkind.
// Every strict superkind of a true kind is redundant.
func (inv *Invention) MostSpecificNouns(ind *generator.Individual) []ontology.ID {
	store := inv.gen.Store()
	kinds := inv.TrueKinds(ind)
	redundant := make(map[ontology.ID]bool)
	for _, k := range kinds {
		for _, a := range store.Ancestors(k) {
			redundant[a] = true
		}
	}
	var out []ontology.ID
	for _, k := range kinds {
		if !redundant[k] {
			out = append(out, k)
		}
	}
	return out
}

// AdjectivesDescribing returns the true adjectives of ind.
func (inv *Invention) AdjectivesDescribing(ind *generator.Individual) []ontology.ID {
	var out []ontology.ID
	for _, a := range ind.Adjectives {
		if inv.IsA(ind, a) {
			out = append(out, a)
		}
	}
	return out
}

// =============================================================================
// PROPERTY VALUES
// =============================================================================

// Value returns the solved value of a property variable, or false when the
// owner kind does not hold and the property has no value.
func (inv *Invention) Value(pv *generator.PropertyVar) (string, bool) {
	if !inv.model.Value(pv.Owner) {
		return "", false
	}
	switch pv.Property.Domain.Kind {
	case ontology.DomainBoolean:
		if inv.model.Value(pv.Flag) {
			return "yes", true
		}
		return "no", true
	case ontology.DomainEnumerated:
		for i, l := range pv.Values {
			if inv.model.Value(l) {
				return pv.Property.Domain.Values[i].String(), true
			}
		}
		return "", false
	case ontology.DomainNumeric:
		return formatNumber(inv.model.Numeric(pv.Numeric), pv.Property.Domain.Integer), true
	}
	return "", false
}

// typedValue is the value as a mangle term argument.
func (inv *Invention) typedValue(pv *generator.PropertyVar) (interface{}, bool) {
	if pv.Property.Domain.Kind != ontology.DomainNumeric {
		return inv.Value(pv)
	}
	if !inv.model.Value(pv.Owner) {
		return nil, false
	}
	v := inv.model.Numeric(pv.Numeric)
	if pv.Property.Domain.Integer {
		return int64(math.Round(v)), true
	}
	return math.Round(v*100) / 100, true
}

func formatNumber(v float64, integer bool) string {
	if integer {
		return strconv.FormatInt(int64(math.Round(v)), 10)
	}
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

// =============================================================================
// NAMES
// =============================================================================

// NameString names ind and reports the properties the name used, keyed by
// property name. A name property wins, then the proper name, then the name
// template of the nearest kind that has one, then the generated identifier.
func (inv *Invention) NameString(ind *generator.Individual) (string, map[string]bool) {
	consumed := make(map[string]bool)
	if !inv.model.Satisfiable {
		return ind.Name.String(), consumed
	}
	for _, pv := range inv.gen.Properties(ind) {
		if !pv.Property.IsName() {
			continue
		}
		if v, ok := inv.Value(pv); ok {
			consumed[pv.Property.Name.Key()] = true
			return v, consumed
		}
	}
	if ind.Proper {
		return ind.Name.String(), consumed
	}
	for _, k := range inv.templateKinds(ind) {
		if name, ok := inv.applyTemplate(ind, inv.gen.Store().Noun(k).NameTemplate, consumed); ok {
			return name, consumed
		}
	}
	return ind.Name.String(), consumed
}

// templateKinds lists the most specific nouns of ind followed by their
// ancestors, without repeats.
func (inv *Invention) templateKinds(ind *generator.Individual) []ontology.ID {
	store := inv.gen.Store()
	seen := make(map[ontology.ID]bool)
	var out []ontology.ID
	add := func(k ontology.ID) {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	specific := inv.MostSpecificNouns(ind)
	for _, k := range specific {
		add(k)
	}
	for _, k := range specific {
		for _, a := range store.Ancestors(k) {
			add(a)
		}
	}
	return out
}

func (inv *Invention) applyTemplate(ind *generator.Individual, parts []ontology.TemplatePart, consumed map[string]bool) (string, bool) {
	if len(parts) == 0 {
		return "", false
	}
	used := make(map[string]bool)
	words := make([]string, 0, len(parts))
	for _, part := range parts {
		if !part.IsProperty() {
			words = append(words, part.Text)
			continue
		}
		pv := inv.gen.Property(ind, part.Property)
		if pv == nil {
			return "", false
		}
		v, ok := inv.Value(pv)
		if !ok {
			return "", false
		}
		used[pv.Property.Name.Key()] = true
		words = append(words, v)
	}
	for k := range used {
		consumed[k] = true
	}
	return strings.Join(words, " "), true
}

// =============================================================================
// DESCRIPTIONS
// =============================================================================

// Description renders ind as an indefinite noun phrase with its adjectives and
// the property values its name does not already show, e.g. "a black, fluffy
// cat with age 5 and coat tabby".
func (inv *Invention) Description(ind *generator.Individual) string {
	_, consumed := inv.NameString(ind)
	return inv.describe(ind, consumed)
}

func (inv *Invention) describe(ind *generator.Individual, consumed map[string]bool) string {
	store := inv.gen.Store()
	var adjectives []string
	for _, a := range inv.AdjectivesDescribing(ind) {
		adjectives = append(adjectives, store.Get(a).StandardName().String())
	}
	var nouns []string
	for _, k := range inv.MostSpecificNouns(ind) {
		nouns = append(nouns, store.Noun(k).Singular().String())
	}

	var b strings.Builder
	if len(nouns) == 0 {
		b.WriteString("something")
		if len(adjectives) > 0 {
			b.WriteString(" " + strings.Join(adjectives, ", "))
		}
	} else {
		head := nouns[0]
		if len(adjectives) > 0 {
			head = strings.Join(adjectives, ", ") + " " + head
		}
		b.WriteString(withArticle(head))
		for _, n := range nouns[1:] {
			b.WriteString(" and " + withArticle(n))
		}
	}

	if clauses := inv.propertyClauses(ind, consumed); len(clauses) > 0 {
		b.WriteString(" with " + joinAnd(clauses))
	}
	return b.String()
}

func (inv *Invention) propertyClauses(ind *generator.Individual, consumed map[string]bool) []string {
	var clauses []string
	for _, pv := range inv.gen.Properties(ind) {
		name := pv.Property.Name
		if consumed[name.Key()] || pv.Property.IsName() {
			continue
		}
		v, ok := inv.Value(pv)
		if !ok {
			continue
		}
		if pv.Property.Domain.Kind == ontology.DomainBoolean {
			if v == "yes" {
				clauses = append(clauses, withArticle(name.String()))
			}
			continue
		}
		clauses = append(clauses, name.String()+" "+v)
	}
	return clauses
}

// Sentence renders ind as "<name> is <description>".
func (inv *Invention) Sentence(ind *generator.Individual) string {
	name, consumed := inv.NameString(ind)
	return tokens.Capitalize(name + " is " + inv.describe(ind, consumed))
}

// Descriptions renders every individual, or the single unsatisfiable notice.
func (inv *Invention) Descriptions() []string {
	if !inv.model.Satisfiable {
		return []string{NoConsistentIndividuals}
	}
	out := make([]string, 0, len(inv.gen.Individuals()))
	for _, ind := range inv.gen.Individuals() {
		out = append(out, inv.Sentence(ind))
	}
	return out
}

func withArticle(phrase string) string {
	first, _, _ := strings.Cut(phrase, " ")
	return morph.IndefiniteArticle(first) + " " + phrase
}

func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}

// =============================================================================
// RELATIONSHIPS
// =============================================================================

// Relationship is one true verb instance.
type Relationship struct {
	Verb    *ontology.Verb
	Subject string
	Object  string
}

func (r Relationship) String() string {
	return r.Subject + " " + r.Verb.Forms.ThirdPerson.String() + " " + r.Object
}

// Relationships lists every true verb instance between individuals, in
// verb, subject, object order.
func (inv *Invention) Relationships() []Relationship {
	if !inv.model.Satisfiable {
		return nil
	}
	inds := inv.gen.Individuals()
	names := make([]string, len(inds))
	for i, ind := range inds {
		names[i], _ = inv.NameString(ind)
	}
	var out []Relationship
	for _, v := range inv.gen.Verbs() {
		for _, i := range inds {
			for _, j := range inds {
				if inv.Holds(v.ID(), i, j) {
					out = append(out, Relationship{Verb: v, Subject: names[i.Index], Object: names[j.Index]})
				}
			}
		}
	}
	return out
}

// =============================================================================
// FACTS
// =============================================================================

// Facts exports the invention as is_a, holds and has_value facts for the
// mangle engine. Individuals are identified by their rendered names.
func (inv *Invention) Facts() []mangle.Fact {
	if !inv.model.Satisfiable {
		return nil
	}
	store := inv.gen.Store()
	var facts []mangle.Fact
	names := make(map[int]string)
	for _, ind := range inv.gen.Individuals() {
		name, _ := inv.NameString(ind)
		names[ind.Index] = name
		for _, k := range inv.TrueKinds(ind) {
			facts = append(facts, mangle.Fact{Predicate: mangle.PredIsA,
				Args: []interface{}{name, store.Noun(k).Singular().String()}})
		}
		for _, a := range inv.AdjectivesDescribing(ind) {
			facts = append(facts, mangle.Fact{Predicate: mangle.PredIsA,
				Args: []interface{}{name, store.Get(a).StandardName().String()}})
		}
		for _, pv := range inv.gen.Properties(ind) {
			if v, ok := inv.typedValue(pv); ok {
				facts = append(facts, mangle.Fact{Predicate: mangle.PredHasValue,
					Args: []interface{}{name, pv.Property.Name.String(), v}})
			}
		}
	}
	for _, r := range inv.Relationships() {
		facts = append(facts, mangle.Fact{Predicate: mangle.PredHolds,
			Args: []interface{}{r.Verb.Forms.Base.String(), r.Subject, r.Object}})
	}
	return facts
}
