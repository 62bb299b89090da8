// Package mangle wraps the Google Mangle Datalog engine. Inventions are loaded
// into it as facts so they can be queried after generation.
package mangle

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	_ "github.com/google/mangle/builtin"
	mengine "github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	"imaginarium/internal/logging"
)

// Config holds Mangle engine configuration.
type Config struct {
	FactLimit         int           `json:"fact_limit"`          // base facts; 0 = unlimited
	DerivedFactsLimit int           `json:"derived_facts_limit"` // facts created per evaluation
	QueryTimeout      time.Duration `json:"query_timeout"`
}

// DefaultConfig returns the defaults.
func DefaultConfig() Config {
	return Config{
		FactLimit:         100000,
		DerivedFactsLimit: 500000,
		QueryTimeout:      5 * time.Second,
	}
}

// Engine is a schema-checked fact store. Rules are evaluated after every
// batch of inserted facts.
type Engine struct {
	cfg Config

	mu      sync.RWMutex
	store   factstore.ConcurrentFactStore
	units   []parse.SourceUnit
	program *analysis.ProgramInfo
	preds   map[string]ast.PredicateSym
	decls   map[ast.PredicateSym]*ast.Decl

	inserted int
	warned   bool
}

var errNoProgram = errors.New("no program loaded")

// Stats counts stored facts per predicate, derived ones included.
type Stats struct {
	TotalFacts      int            `json:"total_facts"`
	PredicateCounts map[string]int `json:"predicate_counts"`
}

// NewEngine creates an engine with an empty in-memory store and no program.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.FactLimit < 0 || cfg.DerivedFactsLimit < 0 {
		return nil, fmt.Errorf("fact limits must not be negative")
	}
	if cfg.DerivedFactsLimit == 0 {
		cfg.DerivedFactsLimit = DefaultConfig().DerivedFactsLimit
	}
	return &Engine{
		cfg:   cfg,
		store: newStore(),
		preds: make(map[string]ast.PredicateSym),
	}, nil
}

func newStore() factstore.ConcurrentFactStore {
	return factstore.NewConcurrentFactStore(factstore.NewSimpleInMemoryStore())
}

// Load adds a program fragment (declarations and rules). The whole program
// is re-analyzed; a fragment that fails analysis is discarded.
func (e *Engine) Load(source string) error {
	unit, err := parse.Unit(bytes.NewReader([]byte(source)))
	if err != nil {
		return fmt.Errorf("failed to parse program: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	units := append(e.units[:len(e.units):len(e.units)], unit)
	if err := e.analyze(units); err != nil {
		return fmt.Errorf("failed to analyze program: %w", err)
	}
	e.units = units
	logging.Kernel("program loaded: %d predicates, %d rules", len(e.decls), len(e.program.Rules))
	return nil
}

// analyze merges units into one program and rebuilds the lookup tables.
// Nothing is changed on error.
func (e *Engine) analyze(units []parse.SourceUnit) error {
	var merged parse.SourceUnit
	for _, u := range units {
		merged.Decls = append(merged.Decls, u.Decls...)
		merged.Clauses = append(merged.Clauses, u.Clauses...)
	}
	program, err := analysis.AnalyzeOneUnit(merged, nil)
	if err != nil {
		return err
	}

	preds := make(map[string]ast.PredicateSym, len(program.Decls))
	for sym := range program.Decls {
		preds[sym.Symbol] = sym
	}
	e.program = program
	e.preds = preds
	e.decls = program.Decls
	return nil
}

// Evaluate runs every rule to a fixpoint over the current store.
func (e *Engine) Evaluate() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.evaluate()
}

func (e *Engine) evaluate() error {
	if e.program == nil {
		return errNoProgram
	}
	timer := logging.StartTimer(logging.CategoryKernel, "evaluate")
	stats, err := mengine.EvalProgramWithStats(e.program, e.store,
		mengine.WithCreatedFactLimit(e.cfg.DerivedFactsLimit))
	timer.Stop()
	if err != nil {
		if strings.Contains(err.Error(), "limit") {
			logging.Get(logging.CategoryKernel).Warn("derived facts exceeded %d", e.cfg.DerivedFactsLimit)
		}
		return fmt.Errorf("failed to evaluate program: %w", err)
	}
	logging.KernelDebug("evaluated %d strata", len(stats.Duration))
	return nil
}

// Clear drops every fact and keeps the program.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store = newStore()
	e.inserted = 0
	e.warned = false
}

// Stats returns fact counts for every predicate in the store.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := Stats{PredicateCounts: make(map[string]int)}
	for _, sym := range e.store.ListPredicates() {
		n := 0
		_ = e.store.GetFacts(ast.NewQuery(sym), func(ast.Atom) error {
			n++
			return nil
		})
		stats.PredicateCounts[sym.Symbol] = n
		stats.TotalFacts += n
	}
	return stats
}
