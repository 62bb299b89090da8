package config

import (
	"fmt"
	"time"
)

// SolverConfig configures the SAT search.
type SolverConfig struct {
	// Wall-clock bound on a single search, as a Go duration.
	Timeout string `yaml:"timeout"`
	// Random seed for density sampling; 0 picks one from the clock.
	Seed int64 `yaml:"seed"`
	// Times failed density assumptions are dropped before solving unbiased.
	Retries int `yaml:"retries"`
}

// Validate checks the solver settings.
func (s SolverConfig) Validate() error {
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return fmt.Errorf("invalid solver.timeout %q: %w", s.Timeout, err)
	}
	if d <= 0 {
		return fmt.Errorf("solver.timeout must be positive")
	}
	if s.Retries < 0 {
		return fmt.Errorf("solver.retries must be >= 0")
	}
	return nil
}
