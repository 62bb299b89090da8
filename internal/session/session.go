// Package session is the command surface of imaginarium. A Session owns the
// ontology store, the parser and the last invention, and dispatches every
// sentence through one entry point.
//
// Every mutation runs against a clone of the store and is committed only
// when it succeeds, so a rejected sentence never changes the ontology.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"imaginarium/internal/config"
	"imaginarium/internal/generator"
	"imaginarium/internal/invention"
	"imaginarium/internal/logging"
	"imaginarium/internal/mangle"
	"imaginarium/internal/ontology"
	"imaginarium/internal/parser"
	"imaginarium/internal/sat"
	"imaginarium/internal/tokens"
)

// ErrNothingImagined is returned by fact queries before any generation.
var ErrNothingImagined = errors.New("nothing has been imagined yet")

// Session is one interactive session. It is safe for concurrent use;
// commands are serialized.
type Session struct {
	mu sync.Mutex

	id     string
	cfg    *config.Config
	store  *ontology.Store
	parser *parser.Parser
	solver sat.Solver
	engine *mangle.Engine
	audit  *logging.AuditLogger

	invention *invention.Invention
	// files being loaded, outermost first
	loading []string
}

// Result is the outcome of one sentence.
type Result struct {
	Sentence string
	Rule     *parser.Rule
	Command  parser.Command

	// Set by generation commands.
	Invention     *invention.Invention
	Descriptions  []string
	Relationships []invention.Relationship
	// Count answers "how many" questions.
	Count int

	// Text is free-form output, such as a kind description.
	Text string
}

// Changed reports whether the sentence was an ontology mutation.
func (r *Result) Changed() bool {
	_, ok := r.Command.(parser.Mutation)
	return ok
}

// New creates a session with a gini solver configured from cfg.
func New(cfg *config.Config) (*Session, error) {
	solver := sat.NewGiniSolver(sat.Options{
		Timeout: cfg.GetSolverTimeout(),
		Seed:    cfg.Solver.Seed,
		Retries: cfg.Solver.Retries,
	})
	return NewWithSolver(cfg, solver)
}

// NewWithSolver creates a session that solves with solver.
func NewWithSolver(cfg *config.Config, solver sat.Solver) (*Session, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	engine, err := mangle.NewInventionEngine(mangle.Config{
		FactLimit:         cfg.Mangle.FactLimit,
		DerivedFactsLimit: cfg.Mangle.DerivedFactsLimit,
		QueryTimeout:      cfg.GetQueryTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create fact engine: %w", err)
	}

	id := uuid.New().String()
	s := &Session{
		id:     id,
		cfg:    cfg,
		store:  ontology.NewStore(),
		parser: parser.New(),
		solver: solver,
		engine: engine,
		audit:  logging.AuditWithSession(id),
	}
	logging.Session("session %s started", id)
	s.audit.SessionStart()
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Store returns the current ontology. Callers must not mutate it.
func (s *Session) Store() *ontology.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store
}

// Parser returns the session's parser.
func (s *Session) Parser() *parser.Parser { return s.parser }

// Invention returns the last generation result, or nil.
func (s *Session) Invention() *invention.Invention {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invention
}

// UserCommand splits text into sentences and executes each in order. It
// stops at the first failing sentence and returns the results so far.
func (s *Session) UserCommand(ctx context.Context, text string) ([]*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []*Result
	for _, sentence := range tokens.SplitSentences(text) {
		r, err := s.execute(ctx, sentence)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}

// ParseAndExecute parses and runs a single sentence.
func (s *Session) ParseAndExecute(ctx context.Context, sentence string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.execute(ctx, sentence)
}

// Reset discards the ontology and the last invention.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Session) reset() {
	s.store = ontology.NewStore()
	s.invention = nil
	s.engine.Clear()
	logging.Session("session %s reset", s.id)
	s.audit.SessionReset()
}

// execute runs one sentence. The caller holds s.mu.
func (s *Session) execute(ctx context.Context, sentence string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cmd, rule, err := s.parser.Parse(s.store, sentence)
	if err != nil {
		name := ""
		if rule != nil {
			name = rule.Name
		}
		s.audit.CommandParsed(name, sentence, false, err.Error())
		return nil, err
	}
	result := &Result{Sentence: sentence, Rule: rule, Command: cmd}

	switch c := cmd.(type) {
	case parser.Mutation:
		err = s.mutate(c)
	case parser.Imagine:
		err = s.imagine(ctx, c, result)
	case parser.HowMany:
		err = s.howMany(ctx, c, result)
	case parser.WhatIs:
		result.Text = DescribeKind(s.store, c.Kind)
	case parser.Include:
		err = s.include(ctx, c.Path)
	case parser.Reset:
		s.reset()
	default:
		err = fmt.Errorf("unsupported command %T", cmd)
	}

	if err != nil {
		s.audit.CommandParsed(rule.Name, sentence, false, err.Error())
		return nil, err
	}
	s.audit.CommandParsed(rule.Name, sentence, true, "")
	logging.SessionDebug("%s: %s", rule.Name, cmd.Describe())
	return result, nil
}

// mutate applies a command to a clone of the store and commits the clone.
func (s *Session) mutate(m parser.Mutation) error {
	clone := s.store.Clone()
	if err := m.Apply(clone); err != nil {
		return err
	}
	s.store = clone
	return nil
}

func (s *Session) imagine(ctx context.Context, c parser.Imagine, result *Result) error {
	count := c.Count
	if count == 0 {
		count = s.cfg.Generation.DefaultCount
	}
	inv, err := s.generate(ctx, generator.Request{Kind: c.Kind, Modifiers: c.Modifiers, Count: count})
	if err != nil {
		return err
	}
	fill(result, inv)
	return nil
}

func (s *Session) howMany(ctx context.Context, c parser.HowMany, result *Result) error {
	inv, err := s.generate(ctx, generator.Request{Kind: ontology.NoID, IncludeNamed: true})
	if err != nil {
		return err
	}
	fill(result, inv)
	if !inv.Satisfiable() {
		return nil
	}
	for _, ind := range inv.Individuals() {
		if inv.IsA(ind, c.Kind) {
			result.Count++
		}
	}
	kind := s.store.Noun(c.Kind)
	if result.Count == 1 {
		result.Text = fmt.Sprintf("There is 1 %s.", kind.Singular())
	} else {
		result.Text = fmt.Sprintf("There are %d %s.", result.Count, kind.Plural)
	}
	return nil
}

func fill(result *Result, inv *invention.Invention) {
	result.Invention = inv
	result.Descriptions = inv.Descriptions()
	result.Relationships = inv.Relationships()
}

// generate compiles, solves and decodes a population. The new invention
// replaces the previous one, including its facts in the engine.
func (s *Session) generate(ctx context.Context, req generator.Request) (*invention.Invention, error) {
	start := time.Now()
	g, err := generator.Compile(s.store, req, generator.Options{
		DefaultDensity: s.cfg.Generation.DefaultDensity,
		MaxPopulation:  s.cfg.Generation.MaxPopulation,
	})
	if err != nil {
		return nil, err
	}
	model, err := s.solver.Solve(ctx, g.Problem())
	if err != nil {
		return nil, fmt.Errorf("solver failed: %w", err)
	}

	inv := invention.New(g, model)
	if err := s.engine.Replace(inv.Facts()); err != nil {
		logging.SessionWarn("failed to load invention facts: %v", err)
	}
	s.invention = inv

	s.audit.Generation(inv.ID, len(g.Individuals()), inv.Satisfiable(), time.Since(start).Milliseconds())
	logging.Session("invention %s: %d individuals in %v", inv.ID, len(g.Individuals()), time.Since(start))
	return inv, nil
}

// Facts evaluates a Datalog query against the last invention, e.g.
// "connected(X, Y)".
func (s *Session) Facts(ctx context.Context, query string) (*mangle.QueryResult, error) {
	s.mu.Lock()
	inv := s.invention
	s.mu.Unlock()
	if inv == nil {
		return nil, ErrNothingImagined
	}
	return s.engine.Query(ctx, query)
}

// FactsOf lists the facts of one predicate of the last invention.
func (s *Session) FactsOf(predicate string) ([]mangle.Fact, error) {
	s.mu.Lock()
	inv := s.invention
	s.mu.Unlock()
	if inv == nil {
		return nil, ErrNothingImagined
	}
	return s.engine.Facts(predicate)
}
