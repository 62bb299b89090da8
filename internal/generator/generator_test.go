package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imaginarium/internal/ontology"
	"imaginarium/internal/parser"
	"imaginarium/internal/sat"
	"imaginarium/internal/tokens"
)

var testOptions = Options{DefaultDensity: 0.5, MaxPopulation: 20}

func define(t *testing.T, sentences ...string) *ontology.Store {
	t.Helper()
	p, s := parser.New(), ontology.NewStore()
	for _, sentence := range sentences {
		cmd, _, err := p.Parse(s, sentence)
		require.NoError(t, err, sentence)
		require.NoError(t, cmd.(parser.Mutation).Apply(s), sentence)
	}
	return s
}

func id(t *testing.T, s *ontology.Store, name string) ontology.ID {
	t.Helper()
	r, ok := s.Lookup(tokens.FromText(name))
	require.True(t, ok, name)
	return r.ID()
}

func solve(t *testing.T, g *Generator) *sat.Model {
	t.Helper()
	solver := sat.NewGiniSolver(sat.Options{Timeout: 5 * time.Second, Retries: 16})
	m, err := solver.Solve(context.Background(), g.Problem())
	require.NoError(t, err)
	return m
}

func TestNamedIndividual(t *testing.T) {
	s := define(t, "a dog is a kind of animal.", "Rex is a dog.")
	g, err := Compile(s, Request{Kind: ontology.NoID, IncludeNamed: true}, testOptions)
	require.NoError(t, err)
	require.Len(t, g.Individuals(), 1)

	rex := g.Individuals()[0]
	assert.True(t, rex.Proper)
	assert.Equal(t, "Rex", rex.Name.String())

	m := solve(t, g)
	require.True(t, m.Satisfiable)
	assert.True(t, m.Value(g.IsA(rex, id(t, s, "dog"))))
	assert.True(t, m.Value(g.IsA(rex, id(t, s, "animal"))), "superkinds follow")
}

func TestAnonymousIndividualsAreNumbered(t *testing.T) {
	s := define(t, "a house cat is a kind of animal.")
	g, err := Compile(s, Request{Kind: id(t, s, "house cat"), Count: 2}, testOptions)
	require.NoError(t, err)

	var names []string
	for _, ind := range g.Individuals() {
		names = append(names, ind.Name.String())
		assert.False(t, ind.Proper)
	}
	assert.Equal(t, []string{"house cat1", "house cat2"}, names)
}

func TestIrrelevantConceptsAreFalse(t *testing.T) {
	s := define(t,
		"a cat is a kind of animal.",
		"a rock is a kind of mineral.",
		"rocks can be smooth.",
	)
	g, err := Compile(s, Request{Kind: id(t, s, "cat"), Count: 1}, testOptions)
	require.NoError(t, err)
	cat := g.Individuals()[0]

	assert.Equal(t, g.Problem().False(), g.IsA(cat, id(t, s, "rock")))
	assert.Equal(t, g.Problem().False(), g.IsA(cat, id(t, s, "smooth")))
	assert.NotEqual(t, g.Problem().False(), g.IsA(cat, id(t, s, "animal")))
}

func TestAlternativeSetExclusivity(t *testing.T) {
	s := define(t,
		"a cat is a kind of animal.",
		"cats can be red, green, or blue.",
	)
	colors := []ontology.ID{id(t, s, "red"), id(t, s, "green"), id(t, s, "blue")}

	for n := 0; n < 10; n++ {
		g, err := Compile(s, Request{Kind: id(t, s, "cat"), Count: 5}, Options{DefaultDensity: 0.9})
		require.NoError(t, err)
		m := solve(t, g)
		require.True(t, m.Satisfiable)
		for _, ind := range g.Individuals() {
			count := 0
			for _, c := range colors {
				if m.Value(g.IsA(ind, c)) {
					count++
				}
			}
			assert.LessOrEqual(t, count, 1, "%s has more than one color", ind.Name)
		}
	}
}

func TestExhaustiveAlternativeSet(t *testing.T) {
	s := define(t,
		"a cat is a kind of animal.",
		"cats are either big or small.",
	)
	g, err := Compile(s, Request{Kind: id(t, s, "cat"), Count: 4}, Options{DefaultDensity: 0.1})
	require.NoError(t, err)
	m := solve(t, g)
	require.True(t, m.Satisfiable)
	for _, ind := range g.Individuals() {
		big, small := m.Value(g.IsA(ind, id(t, s, "big"))), m.Value(g.IsA(ind, id(t, s, "small")))
		assert.True(t, big != small, "%s must be exactly one of big or small", ind.Name)
	}
}

func TestImpliedAdjectives(t *testing.T) {
	s := define(t,
		"a cat is a kind of animal.",
		"cats are always curious.",
		"cats are never wet.",
	)
	g, err := Compile(s, Request{Kind: id(t, s, "cat"), Count: 3}, Options{DefaultDensity: 0.5})
	require.NoError(t, err)
	m := solve(t, g)
	require.True(t, m.Satisfiable)
	for _, ind := range g.Individuals() {
		assert.True(t, m.Value(g.IsA(ind, id(t, s, "curious"))))
		assert.False(t, m.Value(g.IsA(ind, id(t, s, "wet"))))
	}
}

func TestModifiersAreAsserted(t *testing.T) {
	s := define(t,
		"a cat is a kind of animal.",
		"cats can be black.",
	)
	g, err := Compile(s, Request{Kind: id(t, s, "cat"), Count: 3, Modifiers: []ontology.ID{id(t, s, "black")}},
		Options{DefaultDensity: 0})
	require.NoError(t, err)
	m := solve(t, g)
	require.True(t, m.Satisfiable)
	for _, ind := range g.Individuals() {
		assert.True(t, m.Value(g.IsA(ind, id(t, s, "black"))))
	}
}

func TestAssertedAdjectiveOutsideKind(t *testing.T) {
	s := define(t,
		"a dog is a kind of animal.",
		"Rex is a dog.",
		"Rex is big.",
		"Fido is a dog.",
	)
	g, err := Compile(s, Request{Kind: ontology.NoID, IncludeNamed: true}, testOptions)
	require.NoError(t, err)
	m := solve(t, g)
	require.True(t, m.Satisfiable, "an asserted adjective must not make the population inconsistent")

	big := id(t, s, "big")
	for _, ind := range g.Individuals() {
		switch ind.Name.String() {
		case "Rex":
			assert.True(t, m.Value(g.IsA(ind, big)))
		case "Fido":
			assert.Equal(t, g.Problem().False(), g.IsA(ind, big), "big stays irrelevant to other dogs")
		}
	}
}

func TestFunctionalVerbIsUnsatisfiable(t *testing.T) {
	s := define(t,
		"a person is a kind of animal.",
		"a thing is a kind of object.",
		"people can own at most one thing.",
		"Alice is a person.",
		"Box is a thing.",
		"Cup is a thing.",
		"Alice owns Box.",
		"Alice owns Cup.",
	)
	g, err := Compile(s, Request{Kind: ontology.NoID, IncludeNamed: true}, testOptions)
	require.NoError(t, err)
	m := solve(t, g)
	assert.False(t, m.Satisfiable)
}

func TestVerbConstraints(t *testing.T) {
	s := define(t,
		"a person is a kind of animal.",
		"people must love exactly one person.",
		"people cannot love themselves.",
		"people can know people.",
		"loving is a way of knowing.",
	)
	love, know := id(t, s, "love"), id(t, s, "know")

	for n := 0; n < 5; n++ {
		g, err := Compile(s, Request{Kind: id(t, s, "person"), Count: 3}, testOptions)
		require.NoError(t, err)
		m := solve(t, g)
		require.True(t, m.Satisfiable)
		for _, i := range g.Individuals() {
			loved := 0
			for _, j := range g.Individuals() {
				if m.Value(g.Holds(love, i, j)) {
					loved++
					assert.NotEqual(t, i, j, "love is anti-reflexive")
					assert.True(t, m.Value(g.Holds(know, i, j)), "loving implies knowing")
				}
			}
			assert.Equal(t, 1, loved, "%s loves exactly one person", i.Name)
		}
	}
}

func TestSymmetricVerb(t *testing.T) {
	s := define(t,
		"a person is a kind of animal.",
		"people often meet people.",
		"meeting is symmetric.",
	)
	meet := id(t, s, "meet")
	g, err := Compile(s, Request{Kind: id(t, s, "person"), Count: 4}, testOptions)
	require.NoError(t, err)
	m := solve(t, g)
	require.True(t, m.Satisfiable)
	for _, i := range g.Individuals() {
		for _, j := range g.Individuals() {
			assert.Equal(t, m.Value(g.Holds(meet, i, j)), m.Value(g.Holds(meet, j, i)))
		}
	}
}

func TestPropertiesCompile(t *testing.T) {
	s := define(t,
		"a cat is a kind of animal.",
		"animals have an age between 1 and 15.",
		"cats have a coat from tabby, ginger, and black.",
		"cats can have a collar.",
	)
	g, err := Compile(s, Request{Kind: id(t, s, "cat"), Count: 2}, testOptions)
	require.NoError(t, err)
	m := solve(t, g)
	require.True(t, m.Satisfiable)

	for _, ind := range g.Individuals() {
		props := g.Properties(ind)
		require.Len(t, props, 3)

		age := g.Property(ind, tokens.New("age"))
		require.NotNil(t, age)
		v := m.Numeric(age.Numeric)
		assert.GreaterOrEqual(t, v, 1.0)
		assert.LessOrEqual(t, v, 15.0)

		coat := g.Property(ind, tokens.New("coat"))
		require.NotNil(t, coat)
		chosen := 0
		for _, l := range coat.Values {
			if m.Value(l) {
				chosen++
			}
		}
		assert.Equal(t, 1, chosen, "a cat has exactly one coat")
	}
}

func TestPropertyWithoutDomain(t *testing.T) {
	s := define(t,
		"a cat is a kind of animal.",
		"cats have a temperament.",
	)
	_, err := Compile(s, Request{Kind: id(t, s, "cat"), Count: 1}, testOptions)
	var de *ontology.DefinitionError
	require.True(t, errors.As(err, &de), "got %v", err)
	assert.Contains(t, de.Concept, "temperament")
}

func TestPopulationLimit(t *testing.T) {
	s := define(t, "a cat is a kind of animal.")
	_, err := Compile(s, Request{Kind: id(t, s, "cat"), Count: 21}, testOptions)
	assert.Error(t, err)

	_, err = Compile(s, Request{Kind: id(t, s, "animals"), Count: -1}, testOptions)
	assert.Error(t, err)
}

func TestRequestKindMustBeNoun(t *testing.T) {
	s := define(t, "a cat is a kind of animal.", "cats can be black.")
	_, err := Compile(s, Request{Kind: id(t, s, "black"), Count: 1}, testOptions)
	assert.True(t, errors.Is(err, ontology.ErrWrongCategory))
}
