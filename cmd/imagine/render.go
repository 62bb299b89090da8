package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"imaginarium/internal/mangle"
	"imaginarium/internal/ontology"
	"imaginarium/internal/session"
)

var (
	accent = lipgloss.Color("#8BC34A")
	muted  = lipgloss.Color("#7a8699")
	danger = lipgloss.Color("#e53935")

	promptStyle       = lipgloss.NewStyle().Foreground(accent).Bold(true)
	descriptionStyle  = lipgloss.NewStyle()
	relationshipStyle = lipgloss.NewStyle().Foreground(muted).PaddingLeft(2)
	infoStyle         = lipgloss.NewStyle().Foreground(muted).Italic(true)
	errorStyle        = lipgloss.NewStyle().Foreground(danger).Bold(true)
)

// renderResult prints one sentence's outcome. Mutations print nothing.
func renderResult(out io.Writer, r *session.Result) {
	for _, d := range r.Descriptions {
		fmt.Fprintln(out, descriptionStyle.Render(d))
	}
	for _, rel := range r.Relationships {
		fmt.Fprintln(out, relationshipStyle.Render(rel.String()+"."))
	}
	if r.Text != "" {
		fmt.Fprintln(out, descriptionStyle.Render(r.Text))
	}
}

func renderLoaded(out io.Writer, path string, n int, s *session.Session) {
	sizes := s.Store().Sizes()
	fmt.Fprintln(out, infoStyle.Render(fmt.Sprintf("loaded %s: %d sentences, %d kinds, %d adjectives, %d verbs, %d individuals",
		path, n, sizes[ontology.CategoryCommonNoun], sizes[ontology.CategoryAdjective],
		sizes[ontology.CategoryVerb], sizes[ontology.CategoryProperNoun])))
}

func renderError(out io.Writer, err error) {
	fmt.Fprintln(out, errorStyle.Render(err.Error()))
}

func renderFacts(out io.Writer, facts []mangle.Fact) {
	lines := make([]string, len(facts))
	for i, f := range facts {
		lines[i] = f.String()
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(out, l)
	}
	fmt.Fprintln(out, infoStyle.Render(fmt.Sprintf("%d facts", len(facts))))
}

func renderBindings(out io.Writer, result *mangle.QueryResult) {
	for _, b := range result.Bindings {
		keys := make([]string, 0, len(b))
		for k := range b {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%v", k, b[k])
		}
		fmt.Fprintln(out, strings.Join(parts, " "))
	}
	fmt.Fprintln(out, infoStyle.Render(fmt.Sprintf("%d results in %v", len(result.Bindings), result.Duration)))
}
