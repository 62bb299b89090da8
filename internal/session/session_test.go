package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imaginarium/internal/config"
	"imaginarium/internal/invention"
	"imaginarium/internal/mangle"
	"imaginarium/internal/ontology"
	"imaginarium/internal/parser"
	"imaginarium/internal/tokens"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Solver.Seed = 1
	cfg.Generation.DefaultCount = 2
	return cfg
}

func newSession(t *testing.T) *Session {
	t.Helper()
	s, err := New(testConfig())
	require.NoError(t, err)
	return s
}

func run(t *testing.T, s *Session, text string) []*Result {
	t.Helper()
	results, err := s.UserCommand(context.Background(), text)
	require.NoError(t, err, text)
	return results
}

func TestRexIsADog(t *testing.T) {
	s := newSession(t)
	results := run(t, s, "a dog is a kind of animal. Rex is a dog. how many dogs are there?")
	require.Len(t, results, 3)
	assert.True(t, results[0].Changed())
	assert.True(t, results[1].Changed())

	last := results[2]
	assert.False(t, last.Changed())
	require.NotNil(t, last.Invention)
	require.Len(t, last.Descriptions, 1)
	assert.True(t, strings.HasPrefix(last.Descriptions[0], "Rex is a dog"), last.Descriptions[0])
	assert.Equal(t, 1, last.Count)
	assert.Equal(t, "There is 1 dog.", last.Text)
	assert.Same(t, last.Invention, s.Invention())
}

func TestIndividualAdjectiveOutsideItsKind(t *testing.T) {
	s := newSession(t)
	results := run(t, s, "a dog is a kind of animal. Rex is a dog. Rex is big. how many dogs are there?")
	last := results[len(results)-1]
	require.Len(t, last.Descriptions, 1)
	assert.NotEqual(t, invention.NoConsistentIndividuals, last.Descriptions[0])
	assert.Contains(t, last.Descriptions[0], "big dog")
	assert.Equal(t, 1, last.Count)

	results = run(t, s, "imagine a big dog.")
	require.Len(t, results[0].Descriptions, 1)
	assert.Contains(t, results[0].Descriptions[0], "big dog")
}

func TestMalformedSentenceLeavesStoreUnchanged(t *testing.T) {
	s := newSession(t)
	run(t, s, "a dog is a kind of animal. dogs can be brown.")
	before := s.Store().Sizes()

	_, err := s.ParseAndExecute(context.Background(), "the sky is purple the")
	var ge *parser.GrammarError
	require.True(t, errors.As(err, &ge), "got %v", err)
	assert.Equal(t, "the sky is purple the", ge.Sentence)
	assert.Equal(t, before, s.Store().Sizes())
}

func TestFailedMutationIsRolledBack(t *testing.T) {
	s := newSession(t)
	run(t, s, "a cat is a kind of animal.")
	store := s.Store()

	_, err := s.ParseAndExecute(context.Background(), "an animal is a kind of cat.")
	assert.True(t, errors.Is(err, ontology.ErrCycle), "got %v", err)
	assert.Same(t, store, s.Store(), "failed mutation must not replace the store")

	animal, ok := s.Store().Lookup(tokens.New("animal"))
	require.True(t, ok)
	assert.Empty(t, s.Store().Noun(animal.ID()).Superkinds)
}

func TestUserCommandStopsAtFirstError(t *testing.T) {
	s := newSession(t)
	results, err := s.UserCommand(context.Background(),
		"a cat is a kind of animal. the sky is purple the. a dog is a kind of animal.")
	assert.Error(t, err)
	assert.Len(t, results, 1)
	_, ok := s.Store().Lookup(tokens.New("dog"))
	assert.False(t, ok, "sentences after the error must not run")
}

func TestImagine(t *testing.T) {
	s := newSession(t)
	run(t, s, "a cat is a kind of animal. cats can be black or white.")

	results := run(t, s, "imagine 3 cats.")
	require.Len(t, results[0].Descriptions, 3)
	for _, d := range results[0].Descriptions {
		assert.Contains(t, d, "cat")
	}

	results = run(t, s, "imagine a black cat.")
	require.Len(t, results[0].Descriptions, 1)
	assert.Contains(t, results[0].Descriptions[0], "black cat")

	results = run(t, s, "imagine cats.")
	assert.Len(t, results[0].Descriptions, testConfig().Generation.DefaultCount)
}

func TestImagineReplacesInvention(t *testing.T) {
	s := newSession(t)
	run(t, s, "a cat is a kind of animal.")
	first := run(t, s, "imagine a cat.")[0].Invention
	second := run(t, s, "imagine a cat.")[0].Invention
	assert.NotEqual(t, first.ID, second.ID)
	assert.Same(t, second, s.Invention())
}

func TestUnsatisfiable(t *testing.T) {
	s := newSession(t)
	results := run(t, s, `a person is a kind of animal.
		a thing is a kind of object.
		people can own at most one thing.
		Alice is a person. Box is a thing. Cup is a thing.
		Alice owns Box. Alice owns Cup.
		how many people are there?`)
	last := results[len(results)-1]
	assert.Equal(t, []string{invention.NoConsistentIndividuals}, last.Descriptions)
	assert.Empty(t, last.Relationships)
}

func TestPopulationLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Generation.MaxPopulation = 3
	s, err := New(cfg)
	require.NoError(t, err)
	run(t, s, "a cat is a kind of animal.")

	_, err = s.ParseAndExecute(context.Background(), "imagine 4 cats.")
	assert.Error(t, err)
}

func TestWhatIs(t *testing.T) {
	s := newSession(t)
	results := run(t, s, `a cat is a kind of animal.
		a lion is a kind of cat.
		cats can be black, white, or ginger.
		cats are always curious.
		cats have an age between 1 and 20.
		cats can have a collar.
		cats can chase cats.
		what are cats?`)
	text := results[len(results)-1].Text
	for _, want := range []string{
		"A cat is a kind of animal.",
		"Kinds of cat include lions.",
		"Cats can be black, white, or ginger.",
		"Cats are always curious.",
		"Cats have an age between 1 and 20.",
		"Cats can have a collar.",
		"Cats can chase cats.",
	} {
		assert.Contains(t, text, want)
	}
}

func TestReset(t *testing.T) {
	s := newSession(t)
	run(t, s, "a cat is a kind of animal. imagine a cat.")
	require.NotNil(t, s.Invention())

	run(t, s, "start over.")
	assert.Nil(t, s.Invention())
	_, ok := s.Store().Lookup(tokens.New("cat"))
	assert.False(t, ok)

	run(t, s, "a dog is a kind of animal.")
	s.Reset()
	_, ok = s.Store().Lookup(tokens.New("dog"))
	assert.False(t, ok)
}

func TestFacts(t *testing.T) {
	s := newSession(t)
	ctx := context.Background()

	_, err := s.Facts(ctx, "is_a(X, Y)")
	assert.ErrorIs(t, err, ErrNothingImagined)

	run(t, s, `a dog is a kind of animal.
		dogs can chase dogs.
		Rex is a dog. Fido is a dog.
		Rex chases Fido.
		how many dogs are there?`)

	facts, err := s.FactsOf(mangle.PredIsA)
	require.NoError(t, err)
	var got []string
	for _, f := range facts {
		got = append(got, f.String())
	}
	assert.Contains(t, got, `is_a("Rex", "dog").`)

	connected, err := s.FactsOf(mangle.PredConnected)
	require.NoError(t, err)
	assert.NotEmpty(t, connected)

	_, err = s.Facts(ctx, "is_a(X, Y)")
	assert.NoError(t, err)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefinitions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "animals"), 0755))
	writeFile(t, dir, "animals/dogs.txt", "a dog is a kind of animal.\n")
	main := writeFile(t, dir, "main.txt", `# the world
include "animals/dogs.txt"

Rex is a dog.
`)

	s := newSession(t)
	n, err := s.LoadDefinitions(context.Background(), main)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, s.Parser().Depth(), "context stack must unwind")

	results := run(t, s, "how many dogs are there?")
	assert.Equal(t, 1, results[0].Count)
}

func TestLoadDefinitionsReportsLine(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.txt", "a cat is a kind of animal.\n\nthe sky is purple the\na dog is a kind of animal.\n")

	s := newSession(t)
	n, err := s.LoadDefinitions(context.Background(), path)
	assert.Equal(t, 1, n)
	var le *LoadError
	require.True(t, errors.As(err, &le), "got %v", err)
	assert.Equal(t, 3, le.Line)
	var ge *parser.GrammarError
	assert.True(t, errors.As(err, &ge))

	_, ok := s.Store().Lookup(tokens.New("cat"))
	assert.True(t, ok, "sentences before the error stay applied")
}

func TestIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", `include "b.txt"`+"\n")
	writeFile(t, dir, "b.txt", `include "a.txt"`+"\n")

	s := newSession(t)
	_, err := s.LoadDefinitions(context.Background(), filepath.Join(dir, "a.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
	assert.Equal(t, 0, s.Parser().Depth())
}

func TestIncludeDepth(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "0.txt", `include "1.txt"`+"\n")
	writeFile(t, dir, "1.txt", `include "2.txt"`+"\n")
	writeFile(t, dir, "2.txt", "a cat is a kind of animal.\n")

	cfg := testConfig()
	cfg.Generation.IncludeDepth = 2
	s, err := New(cfg)
	require.NoError(t, err)
	_, err = s.LoadDefinitions(context.Background(), filepath.Join(dir, "0.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deeper than 2")
}

func TestLoadMissingFile(t *testing.T) {
	s := newSession(t)
	_, err := s.LoadDefinitions(context.Background(), filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestCancelledContext(t *testing.T) {
	s := newSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.ParseAndExecute(ctx, "a cat is a kind of animal.")
	assert.ErrorIs(t, err, context.Canceled)
}
