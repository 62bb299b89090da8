package session

import (
	"fmt"
	"strconv"
	"strings"

	"imaginarium/internal/morph"
	"imaginarium/internal/ontology"
	"imaginarium/internal/tokens"
)

// DescribeKind renders what the ontology says about a kind, one sentence per
// line, in the same grammar the sentences were written in.
func DescribeKind(store *ontology.Store, id ontology.ID) string {
	n := store.Noun(id)
	if n == nil {
		return ""
	}
	singular, plural := n.Singular().String(), n.Plural.String()
	article := morph.IndefiniteArticle(n.Singular().Head())
	var lines []string
	add := func(format string, args ...interface{}) {
		lines = append(lines, tokens.Capitalize(fmt.Sprintf(format, args...)))
	}

	if len(n.Superkinds) > 0 {
		add("%s %s is a kind of %s.", article, singular, joinWith(nounNames(store, n.Superkinds, false), "and"))
	} else {
		add("%s %s is a kind of thing.", article, singular)
	}
	if len(n.Subkinds) > 0 {
		add("kinds of %s include %s.", singular, joinWith(nounNames(store, n.Subkinds, true), "and"))
	}

	inSet := make(map[ontology.ID]bool)
	for _, set := range n.AlternativeSets {
		for _, m := range set.Members {
			inSet[m] = true
		}
		names := conceptNames(store, set.Members)
		if set.Exhaustive {
			add("%s are either %s.", plural, joinWith(names, "or"))
		} else {
			add("%s can be %s.", plural, joinWith(names, "or"))
		}
	}

	implied := make(map[ontology.ID]bool)
	for _, lit := range n.Implied {
		implied[lit.Concept] = true
		if lit.Positive {
			add("%s are always %s.", plural, store.Get(lit.Concept).StandardName())
		} else {
			add("%s are never %s.", plural, store.Get(lit.Concept).StandardName())
		}
	}
	for _, a := range n.Adjectives {
		if !inSet[a] && !implied[a] {
			add("%s can be %s.", plural, store.Get(a).StandardName())
		}
	}

	for _, p := range n.Properties {
		add("%s", describeProperty(plural, p))
	}
	if len(n.NameTemplate) > 0 {
		add("%s are identified as %q.", plural, renderTemplate(n.NameTemplate))
	}

	for _, v := range store.Verbs() {
		if v.Subject != id || v.Object == ontology.NoID {
			continue
		}
		add("%s can %s %s.", plural, v.Forms.Base, store.Noun(v.Object).Plural)
	}
	return strings.Join(lines, "\n")
}

func describeProperty(plural string, p *ontology.Property) string {
	name := p.Name.String()
	article := morph.IndefiniteArticle(p.Name.Head())
	switch p.Domain.Kind {
	case ontology.DomainBoolean:
		return fmt.Sprintf("%s can have %s %s.", plural, article, name)
	case ontology.DomainNumeric:
		return fmt.Sprintf("%s have %s %s between %s and %s.", plural, article, name,
			formatBound(p.Domain.Low), formatBound(p.Domain.High))
	case ontology.DomainEnumerated:
		values := make([]string, len(p.Domain.Values))
		for i, v := range p.Domain.Values {
			values[i] = v.String()
		}
		return fmt.Sprintf("%s have %s %s from %s.", plural, article, name, joinWith(values, "and"))
	}
	return fmt.Sprintf("%s have %s %s.", plural, article, name)
}

func renderTemplate(parts []ontology.TemplatePart) string {
	words := make([]string, len(parts))
	for i, part := range parts {
		if part.IsProperty() {
			words[i] = "[" + part.Property.String() + "]"
		} else {
			words[i] = part.Text
		}
	}
	return strings.Join(words, " ")
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func nounNames(store *ontology.Store, ids []ontology.ID, plural bool) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		n := store.Noun(id)
		if plural {
			out[i] = n.Plural.String()
		} else {
			out[i] = n.Singular().String()
		}
	}
	return out
}

// conceptNames names set members; kinds use their plural.
func conceptNames(store *ontology.Store, ids []ontology.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		if n := store.Noun(id); n != nil {
			out[i] = n.Plural.String()
		} else {
			out[i] = store.Get(id).StandardName().String()
		}
	}
	return out
}

func joinWith(items []string, conj string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " " + conj + " " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", " + conj + " " + items[len(items)-1]
}
