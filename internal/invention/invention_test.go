package invention

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imaginarium/internal/generator"
	"imaginarium/internal/mangle"
	"imaginarium/internal/ontology"
	"imaginarium/internal/parser"
	"imaginarium/internal/sat"
	"imaginarium/internal/tokens"
)

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

func imagine(t *testing.T, s *ontology.Store, req generator.Request, density float64) *Invention {
	t.Helper()
	g, err := generator.Compile(s, req, generator.Options{DefaultDensity: density, MaxPopulation: 50})
	require.NoError(t, err)
	solver := sat.NewGiniSolver(sat.Options{Timeout: 5 * time.Second, Retries: 16})
	m, err := solver.Solve(context.Background(), g.Problem())
	require.NoError(t, err)
	return New(g, m)
}

func TestRexIsADog(t *testing.T) {
	s := define(t, "a dog is a kind of animal.", "Rex is a dog.")
	inv := imagine(t, s, generator.Request{Kind: ontology.NoID, IncludeNamed: true}, 0.5)
	require.True(t, inv.Satisfiable())
	assert.NotEmpty(t, inv.ID)

	got := inv.Descriptions()
	require.Len(t, got, 1)
	assert.True(t, strings.HasPrefix(got[0], "Rex is a dog"), got[0])
	assert.Equal(t, "Rex is a dog", got[0])
}

func TestMostSpecificNounsIsAnAntichain(t *testing.T) {
	s := define(t,
		"a pet is a kind of animal.",
		"a predator is a kind of animal.",
		"a cat is a kind of pet.",
		"a cat is a kind of predator.",
		"a dog is a kind of pet.",
		"a wolf is a kind of predator.",
	)
	for n := 0; n < 10; n++ {
		inv := imagine(t, s, generator.Request{Kind: id(t, s, "animal"), Count: 6}, 0.5)
		require.True(t, inv.Satisfiable())
		for _, ind := range inv.Individuals() {
			nouns := inv.MostSpecificNouns(ind)
			require.NotEmpty(t, nouns, ind.Name.String())
			for _, a := range nouns {
				assert.True(t, inv.IsA(ind, a))
				for _, b := range nouns {
					assert.False(t, s.IsSubkindOf(a, b), "%s: %d is a subkind of %d", ind.Name, a, b)
				}
			}
		}
	}
}

func TestDiamondCollapsesToMostSpecific(t *testing.T) {
	s := define(t,
		"a pet is a kind of animal.",
		"a predator is a kind of animal.",
		"a cat is a kind of pet.",
		"a cat is a kind of predator.",
	)
	inv := imagine(t, s, generator.Request{Kind: id(t, s, "cat"), Count: 1}, 0.5)
	require.True(t, inv.Satisfiable())
	ind := inv.Individuals()[0]

	kinds := inv.TrueKinds(ind)
	assert.ElementsMatch(t, []ontology.ID{id(t, s, "cat"), id(t, s, "pet"), id(t, s, "predator"), id(t, s, "animal")}, kinds)
	if diff := cmp.Diff([]ontology.ID{id(t, s, "cat")}, inv.MostSpecificNouns(ind)); diff != "" {
		t.Errorf("most specific nouns mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Cat1 is a cat", inv.Sentence(ind))
}

func TestSingleNounRoundTrip(t *testing.T) {
	s := define(t,
		"a widget is a kind of thing.",
		"widgets can be red, green, or blue.",
	)
	colors := []ontology.ID{id(t, s, "red"), id(t, s, "green"), id(t, s, "blue")}
	for n := 0; n < 10; n++ {
		inv := imagine(t, s, generator.Request{Kind: id(t, s, "widget"), Count: 1}, 0.8)
		require.True(t, inv.Satisfiable())
		ind := inv.Individuals()[0]
		assert.True(t, inv.IsA(ind, id(t, s, "widget")))
		assert.Contains(t, inv.MostSpecificNouns(ind), id(t, s, "widget"))
		assert.LessOrEqual(t, len(inv.AdjectivesDescribing(ind)), 1)
		for _, c := range colors {
			if inv.IsA(ind, c) {
				assert.Equal(t, []ontology.ID{c}, inv.AdjectivesDescribing(ind))
			}
		}
	}
}

func TestUnsatisfiableInvention(t *testing.T) {
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
	inv := imagine(t, s, generator.Request{Kind: ontology.NoID, IncludeNamed: true}, 0.5)
	assert.False(t, inv.Satisfiable())
	assert.Equal(t, []string{NoConsistentIndividuals}, inv.Descriptions())
	assert.Empty(t, inv.Relationships())
	assert.Empty(t, inv.Facts())
	assert.False(t, inv.IsA(inv.Individuals()[0], id(t, s, "person")))
}

func TestRelationships(t *testing.T) {
	s := define(t,
		"a person is a kind of animal.",
		"people can know people.",
		"Alice is a person.",
		"Bob is a person.",
		"Alice knows Bob.",
		"Bob does not know Alice.",
	)
	inv := imagine(t, s, generator.Request{Kind: ontology.NoID, IncludeNamed: true}, 0.5)
	require.True(t, inv.Satisfiable())

	var got []string
	for _, r := range inv.Relationships() {
		got = append(got, r.String())
	}
	assert.Contains(t, got, "Alice knows Bob")
	assert.NotContains(t, got, "Bob knows Alice")
}

func TestNameTemplateConsumesProperties(t *testing.T) {
	s := define(t,
		"a cat is a kind of animal.",
		"cats have a fur color from black, ginger, and pale grey.",
		"cats have an age between 1 and 15.",
		`cats are identified as "[fur color] cat"`,
	)
	inv := imagine(t, s, generator.Request{Kind: id(t, s, "cat"), Count: 3}, 0.5)
	require.True(t, inv.Satisfiable())
	for _, ind := range inv.Individuals() {
		name, consumed := inv.NameString(ind)
		assert.True(t, consumed["fur color"])
		assert.False(t, consumed["age"])
		assert.Regexp(t, `^(black|ginger|pale grey) cat$`, name)

		desc := inv.Description(ind)
		assert.Regexp(t, `^a cat with age \d+$`, desc)
		assert.NotContains(t, desc, "fur color")
	}
}

func TestNamePropertyWins(t *testing.T) {
	s := define(t,
		"a cat is a kind of animal.",
		"cats have a name from Felix and Tom.",
		`cats are identified as "the [name] cat"`,
	)
	inv := imagine(t, s, generator.Request{Kind: id(t, s, "cat"), Count: 2}, 0.5)
	require.True(t, inv.Satisfiable())
	for _, ind := range inv.Individuals() {
		name, consumed := inv.NameString(ind)
		assert.Contains(t, []string{"Felix", "Tom"}, name)
		assert.True(t, consumed["name"])
	}
}

func TestDescriptionListsAdjectives(t *testing.T) {
	s := define(t,
		"a cat is a kind of animal.",
		"cats are always black.",
		"cats are always fluffy.",
	)
	inv := imagine(t, s, generator.Request{Kind: id(t, s, "cat"), Count: 1}, 0.5)
	require.True(t, inv.Satisfiable())
	assert.Equal(t, "a black, fluffy cat", inv.Description(inv.Individuals()[0]))
}

func TestFacts(t *testing.T) {
	s := define(t,
		"a dog is a kind of animal.",
		"dogs can chase dogs.",
		"Rex is a dog.",
		"Fido is a dog.",
		"Rex chases Fido.",
	)
	inv := imagine(t, s, generator.Request{Kind: ontology.NoID, IncludeNamed: true}, 0.5)
	require.True(t, inv.Satisfiable())

	var got []string
	for _, f := range inv.Facts() {
		got = append(got, f.String())
	}
	assert.Contains(t, got, mangle.Fact{Predicate: mangle.PredIsA, Args: []interface{}{"Rex", "dog"}}.String())
	assert.Contains(t, got, mangle.Fact{Predicate: mangle.PredIsA, Args: []interface{}{"Rex", "animal"}}.String())
	assert.Contains(t, got, mangle.Fact{Predicate: mangle.PredHolds, Args: []interface{}{"chase", "Rex", "Fido"}}.String())
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "5", formatNumber(4.6, true))
	assert.Equal(t, "2.57", formatNumber(2.5678, false))
	assert.Equal(t, "3", formatNumber(3.0, false))

	assert.Equal(t, "", joinAnd(nil))
	assert.Equal(t, "a", joinAnd([]string{"a"}))
	assert.Equal(t, "a and b", joinAnd([]string{"a", "b"}))
	assert.Equal(t, "a, b, and c", joinAnd([]string{"a", "b", "c"}))

	assert.Equal(t, "an apple", withArticle("apple"))
	assert.Equal(t, "a black cat", withArticle("black cat"))
}
