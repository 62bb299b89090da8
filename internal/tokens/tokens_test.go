package tokens

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"simple", "a dog is a kind of animal.", []string{"a", "dog", "is", "a", "kind", "of", "animal", "."}},
		{"list", "cats can be black, white, or orange", []string{"cats", "can", "be", "black", ",", "white", ",", "or", "orange"}},
		{"decimal", "between 1.5 and 3", []string{"between", "1.5", "and", "3"}},
		{"quoted template", `cats are identified as "[color] cat"`, []string{"cats", "are", "identified", "as", `"[color] cat"`}},
		{"quoted path", `include "defs/animals.txt".`, []string{"include", `"defs/animals.txt"`, "."}},
		{"brackets", "[color] cat", []string{"[", "color", "]", "cat"}},
		{"question", "how many dogs are there?", []string{"how", "many", "dogs", "are", "there", "?"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Tokenize(tt.in)); diff != "" {
				t.Errorf("Tokenize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStringCaseInsensitive(t *testing.T) {
	a := New("Great", "Dane")
	b := New("great", "DANE")
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, "Great Dane", a.String())
	assert.Equal(t, 2, a.Len())
}

func TestStringWordsIsCopy(t *testing.T) {
	s := New("red", "fox")
	w := s.Words()
	w[0] = "blue"
	assert.Equal(t, "red fox", s.String())
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences(`a dog is a kind of animal. Rex is a dog. dogs are identified as "dog no. [n]". how many dogs are there?`)
	want := []string{
		"a dog is a kind of animal.",
		"Rex is a dog.",
		`dogs are identified as "dog no. [n]".`,
		"how many dogs are there?",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SplitSentences() mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitSentencesKeepsDecimals(t *testing.T) {
	got := SplitSentences("cats have a weight between 1.5 and 4.")
	assert.Equal(t, []string{"cats have a weight between 1.5 and 4."}, got)
}

func TestUnquote(t *testing.T) {
	assert.True(t, IsQuoted(`"x y"`))
	assert.False(t, IsQuoted(`"`))
	assert.Equal(t, "x y", Unquote(`"x y"`))
	assert.Equal(t, "plain", Unquote("plain"))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "A black cat", Capitalize("a black cat"))
	assert.Equal(t, "Rex", Capitalize("rex"))
	assert.Equal(t, "", Capitalize(""))
}

func TestIsCapitalized(t *testing.T) {
	assert.True(t, IsCapitalized("Rex"))
	assert.False(t, IsCapitalized("rex"))
	assert.False(t, IsCapitalized(""))
}
