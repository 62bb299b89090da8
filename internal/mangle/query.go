package mangle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/mangle/ast"
	"github.com/google/mangle/parse"
	"github.com/google/mangle/unionfind"
)

// QueryResult holds one variable binding map per answer.
type QueryResult struct {
	Bindings []map[string]interface{} `json:"bindings"`
	Duration time.Duration            `json:"duration"`
}

// Query matches a single atom such as `connected("Rex", X)` against the
// evaluated store and returns the bindings of its variables for every
// answer. Every insert evaluates the program to a fixpoint, so the store
// already holds all derived facts. Without a deadline on ctx the configured
// query timeout applies.
func (e *Engine) Query(ctx context.Context, query string) (*QueryResult, error) {
	atom, err := parseQuery(query)
	if err != nil {
		return nil, err
	}
	if _, ok := ctx.Deadline(); !ok && e.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.QueryTimeout)
		defer cancel()
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.program == nil {
		return nil, errNoProgram
	}
	sym, ok := e.preds[atom.Predicate.Symbol]
	if !ok || sym.Arity != len(atom.Args) {
		return nil, fmt.Errorf("predicate %s/%d is not declared", atom.Predicate.Symbol, len(atom.Args))
	}
	atom.Predicate = sym

	var vars []ast.Variable
	for _, arg := range atom.Args {
		if v, ok := arg.(ast.Variable); ok && v.Symbol != "_" {
			vars = append(vars, v)
		}
	}

	start := time.Now()
	result := &QueryResult{}
	err = e.store.GetFacts(atom, func(fact ast.Atom) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		subst, err := unionfind.UnifyTerms(atom.Args, fact.Args)
		if err != nil {
			// constants differ or a repeated variable binds two values
			return nil
		}
		row := make(map[string]interface{}, len(vars))
		for _, v := range vars {
			row[v.Symbol] = fromTerm(subst.Get(v))
		}
		result.Bindings = append(result.Bindings, row)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", query, err)
	}
	result.Duration = time.Since(start)
	return result, nil
}

// parseQuery parses one atom, tolerating a leading "?" and a trailing ".".
func parseQuery(query string) (ast.Atom, error) {
	clean := strings.TrimSpace(query)
	clean = strings.TrimSpace(strings.TrimPrefix(clean, "?"))
	clean = strings.TrimSpace(strings.TrimSuffix(clean, "."))
	if clean == "" {
		return ast.Atom{}, fmt.Errorf("empty query")
	}
	atom, err := parse.Atom(clean)
	if err != nil {
		return ast.Atom{}, fmt.Errorf("failed to parse query %q: %w", query, err)
	}
	return atom, nil
}
