package ontology

import (
	"imaginarium/internal/tokens"
)

// trie maps folded word sequences to referent IDs.
type trie struct {
	children map[string]*trie
	id       ID
	terminal bool
}

func newTrie() *trie {
	return &trie{children: make(map[string]*trie), id: NoID}
}

func (t *trie) insert(words []string, id ID) {
	node := t
	for _, w := range words {
		key := tokens.Fold(w)
		next, ok := node.children[key]
		if !ok {
			next = newTrie()
			node.children[key] = next
		}
		node = next
	}
	node.id = id
	node.terminal = true
}

func (t *trie) get(words []string) (ID, bool) {
	node := t
	for _, w := range words {
		next, ok := node.children[tokens.Fold(w)]
		if !ok {
			return NoID, false
		}
		node = next
	}
	return node.id, node.terminal
}

// prefixes returns the IDs and lengths of every name that is a prefix of
// words[start:], longest first.
func (t *trie) prefixes(words []string, start int) []Match {
	var out []Match
	node := t
	for i := start; i < len(words); i++ {
		next, ok := node.children[tokens.Fold(words[i])]
		if !ok {
			break
		}
		node = next
		if node.terminal {
			out = append(out, Match{ID: node.id, Length: i - start + 1})
		}
	}
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}

func (t *trie) clone() *trie {
	c := &trie{children: make(map[string]*trie, len(t.children)), id: t.id, terminal: t.terminal}
	for k, child := range t.children {
		c.children[k] = child.clone()
	}
	return c
}

// Match is one lexicon entry found at a position in a word stream.
type Match struct {
	ID     ID
	Length int
}
