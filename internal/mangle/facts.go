package mangle

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/mangle/ast"

	"imaginarium/internal/logging"
)

// Fact is a single ground atom. Args hold string, int64, float64 or bool
// values; strings starting with "/" are Mangle names.
type Fact struct {
	Predicate string        `json:"predicate"`
	Args      []interface{} `json:"args"`
}

// String returns the Datalog representation of the fact.
func (f Fact) String() string {
	args := make([]string, len(f.Args))
	for i, arg := range f.Args {
		args[i] = formatArg(arg)
	}
	return f.Predicate + "(" + strings.Join(args, ", ") + ")."
}

func formatArg(arg interface{}) string {
	switch v := arg.(type) {
	case string:
		if strings.HasPrefix(v, "/") {
			return v
		}
		return strconv.Quote(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		if v {
			return "/true"
		}
		return "/false"
	}
	return fmt.Sprint(arg)
}

// AddFact inserts a single fact.
func (e *Engine) AddFact(predicate string, args ...interface{}) error {
	return e.AddFacts([]Fact{{Predicate: predicate, Args: args}})
}

// AddFacts inserts a batch of facts and evaluates the rules once.
// Facts inserted before an error stay in the store.
func (e *Engine) AddFacts(facts []Fact) error {
	if len(facts) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.program == nil {
		return errNoProgram
	}
	for _, f := range facts {
		if err := e.insert(f); err != nil {
			return err
		}
	}
	return e.evaluate()
}

func (e *Engine) insert(f Fact) error {
	limit := e.cfg.FactLimit
	if limit > 0 && e.inserted >= limit {
		return fmt.Errorf("fact limit exceeded: %d", limit)
	}
	atom, err := e.atom(f)
	if err != nil {
		return err
	}
	if !e.store.Add(atom) {
		return nil
	}
	e.inserted++
	if limit > 0 && !e.warned && e.inserted*100 >= limit*85 {
		logging.Get(logging.CategoryKernel).Warn("fact store at %d of %d facts", e.inserted, limit)
		e.warned = true
	}
	return nil
}

// atom checks f against its declaration and converts its arguments.
func (e *Engine) atom(f Fact) (ast.Atom, error) {
	sym, ok := e.preds[f.Predicate]
	if !ok {
		return ast.Atom{}, fmt.Errorf("predicate %s is not declared", f.Predicate)
	}
	if len(f.Args) != sym.Arity {
		return ast.Atom{}, fmt.Errorf("predicate %s expects %d args, got %d", f.Predicate, sym.Arity, len(f.Args))
	}

	decl := e.decls[sym]
	terms := make([]ast.BaseTerm, len(f.Args))
	for i, arg := range f.Args {
		term, err := toTerm(arg, boundType(decl, i))
		if err != nil {
			return ast.Atom{}, fmt.Errorf("predicate %s arg %d: %w", f.Predicate, i, err)
		}
		terms[i] = term
	}
	return ast.Atom{Predicate: sym, Args: terms}, nil
}

// boundType reads the type bound of argument i from the first bound
// declaration, or -1 when there is none.
func boundType(decl *ast.Decl, i int) ast.ConstantType {
	if decl == nil || len(decl.Bounds) == 0 || i >= len(decl.Bounds[0].Bounds) {
		return -1
	}
	c, ok := decl.Bounds[0].Bounds[i].(ast.Constant)
	if !ok {
		return -1
	}
	switch c.Symbol {
	case "/name":
		return ast.NameType
	case "/string":
		return ast.StringType
	case "/number":
		return ast.NumberType
	case "/float64":
		return ast.Float64Type
	}
	return -1
}

// toTerm converts a Go value to a constant. A /name bound turns plain
// strings into names; otherwise only strings with a leading "/" are names.
func toTerm(value interface{}, bound ast.ConstantType) (ast.BaseTerm, error) {
	if s, ok := value.(string); ok {
		switch {
		case bound == ast.StringType:
			return ast.String(s), nil
		case bound == ast.NameType && !strings.HasPrefix(s, "/"):
			return ast.Name("/" + s)
		case strings.HasPrefix(s, "/"):
			return ast.Name(s)
		}
		return ast.String(s), nil
	}

	switch v := value.(type) {
	case ast.BaseTerm:
		return v, nil
	case fmt.Stringer:
		return ast.String(v.String()), nil
	case int:
		return ast.Number(int64(v)), nil
	case int64:
		return ast.Number(v), nil
	case float64:
		return ast.Float64(v), nil
	case bool:
		if v {
			return ast.TrueConstant, nil
		}
		return ast.FalseConstant, nil
	}
	return nil, fmt.Errorf("unsupported fact argument type %T", value)
}

// fromTerm is the inverse of toTerm. Names keep their leading "/".
func fromTerm(term ast.BaseTerm) interface{} {
	c, ok := term.(ast.Constant)
	if !ok {
		return term.String()
	}
	switch c.Type {
	case ast.StringType, ast.BytesType:
		return c.Symbol
	case ast.NameType:
		return c.Symbol
	case ast.NumberType:
		return c.NumValue
	case ast.Float64Type:
		return math.Float64frombits(uint64(c.NumValue))
	}
	return c.String()
}

// Facts lists every fact of predicate, derived ones included.
func (e *Engine) Facts(predicate string) ([]Fact, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	sym, ok := e.preds[predicate]
	if !ok {
		return nil, fmt.Errorf("predicate %s is not declared", predicate)
	}
	var out []Fact
	err := e.store.GetFacts(ast.NewQuery(sym), func(atom ast.Atom) error {
		args := make([]interface{}, len(atom.Args))
		for i, arg := range atom.Args {
			args[i] = fromTerm(arg)
		}
		out = append(out, Fact{Predicate: predicate, Args: args})
		return nil
	})
	return out, err
}

// Match returns the facts of predicate whose leading arguments print as
// args. An empty pattern matches anything; a name matches with or without
// its leading "/".
func (e *Engine) Match(predicate string, args ...string) []Fact {
	facts, _ := e.Facts(predicate)
	var out []Fact
	for _, f := range facts {
		if matches(f, args) {
			out = append(out, f)
		}
	}
	return out
}

func matches(f Fact, pattern []string) bool {
	for i, want := range pattern {
		if want == "" || i >= len(f.Args) {
			continue
		}
		got := fmt.Sprint(f.Args[i])
		if got != want && strings.TrimPrefix(got, "/") != want {
			return false
		}
	}
	return true
}
