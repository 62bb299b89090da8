package sat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"imaginarium/internal/logging"
)

// ErrTimeout is returned when the search exceeds its time bound without an
// answer.
var ErrTimeout = errors.New("solver timed out")

// Solver decides a Problem. An unsatisfiable problem is reported through
// Model.Satisfiable, not as an error.
type Solver interface {
	Solve(ctx context.Context, p *Problem) (*Model, error)
}

// Options bounds and seeds a GiniSolver.
type Options struct {
	Timeout time.Duration
	// Seed for density sampling; 0 seeds from the clock.
	Seed int64
	// Times a failed set of density assumptions is pruned before the final
	// unbiased solve.
	Retries int
}

// GiniSolver solves problems with gini. Densities are honoured by assuming a
// randomly sampled polarity for every biased proposition and dropping the
// assumptions gini blames for a conflict until the search succeeds.
type GiniSolver struct {
	opts Options

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGiniSolver creates a solver.
func NewGiniSolver(opts Options) *GiniSolver {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &GiniSolver{opts: opts, rng: rand.New(rand.NewSource(seed))}
}

// Solve implements Solver.
func (s *GiniSolver) Solve(ctx context.Context, p *Problem) (*Model, error) {
	timer := logging.StartTimer(logging.CategorySolver, "solve")
	defer timer.StopWithThreshold(s.opts.Timeout / 2)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Trivial() {
		logging.SolverDebug("problem contains an empty clause")
		return Unsatisfiable(), nil
	}

	g := gini.New()
	maxVar := 0
	for _, c := range p.clauses {
		for _, l := range c {
			g.Add(toZ(l))
			if l.Var() > maxVar {
				maxVar = l.Var()
			}
		}
		g.Add(z.LitNull)
	}
	logging.SolverDebug("loaded %d propositions, %d clauses", len(p.props), len(p.clauses))

	s.mu.Lock()
	defer s.mu.Unlock()

	assumptions := s.sample(p, maxVar)
	for attempt := 0; attempt < s.opts.Retries && len(assumptions) > 0; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g.Assume(assumptions...)
		switch g.Try(s.opts.Timeout) {
		case 1:
			logging.SolverDebug("satisfied with %d assumptions after %d attempts", len(assumptions), attempt+1)
			return s.model(g, p, maxVar), nil
		case 0:
			logging.SolverWarn("no answer within %v on attempt %d", s.opts.Timeout, attempt+1)
			return nil, fmt.Errorf("%w after %v", ErrTimeout, s.opts.Timeout)
		}
		failed := g.Why(nil)
		if len(failed) == 0 {
			logging.SolverDebug("unsatisfiable independent of assumptions")
			return Unsatisfiable(), nil
		}
		assumptions = without(assumptions, failed)
		logging.SolverDebug("attempt %d: dropped %d failed assumptions, %d left", attempt+1, len(failed), len(assumptions))
	}
	logging.Solver("solving without density assumptions")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch g.Try(s.opts.Timeout) {
	case 1:
		return s.model(g, p, maxVar), nil
	case -1:
		return Unsatisfiable(), nil
	default:
		logging.SolverWarn("no answer within %v", s.opts.Timeout)
		return nil, fmt.Errorf("%w after %v", ErrTimeout, s.opts.Timeout)
	}
}

// sample draws a polarity for each biased proposition that occurs in a
// clause.
func (s *GiniSolver) sample(p *Problem, maxVar int) []z.Lit {
	var out []z.Lit
	for i, prop := range p.props[:maxVar] {
		if prop.Density < 0 {
			continue
		}
		out = append(out, toZ(s.polarity(Literal(i+1), prop.Density)))
	}
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func (s *GiniSolver) polarity(l Literal, density float64) Literal {
	if s.rng.Float64() < density {
		return l
	}
	return l.Not()
}

// model reads the assignment. Propositions in no clause are unconstrained and
// get a sampled value.
func (s *GiniSolver) model(g *gini.Gini, p *Problem, maxVar int) *Model {
	values := make([]bool, len(p.props)+1)
	for v := 1; v <= len(p.props); v++ {
		if v <= maxVar {
			values[v] = g.Value(toZ(Literal(v)))
			continue
		}
		if d := p.props[v-1].Density; d >= 0 {
			values[v] = s.polarity(Literal(v), d).Positive()
		}
	}
	numeric := make([]float64, len(p.numeric))
	for i, n := range p.numeric {
		numeric[i] = s.draw(n)
	}
	return NewModel(values, numeric)
}

// draw samples a value uniformly from the variable's interval.
func (s *GiniSolver) draw(n NumericVariable) float64 {
	if n.Integer {
		low, high := math.Ceil(n.Low), math.Floor(n.High)
		if high < low {
			return low
		}
		width := high - low
		if width >= 1<<53 {
			// float64 cannot represent every integer in the range
			return math.Min(high, math.Floor(low+s.rng.Float64()*(width+1)))
		}
		return low + float64(s.rng.Int63n(int64(width)+1))
	}
	return n.Low + s.rng.Float64()*(n.High-n.Low)
}

func toZ(l Literal) z.Lit {
	v := z.Var(l.Var())
	if l.Positive() {
		return v.Pos()
	}
	return v.Neg()
}

func without(lits, drop []z.Lit) []z.Lit {
	dropped := make(map[z.Lit]bool, len(drop))
	for _, l := range drop {
		dropped[l] = true
	}
	out := lits[:0]
	for _, l := range lits {
		if !dropped[l] {
			out = append(out, l)
		}
	}
	return out
}
