package config

import "fmt"

// GenerationConfig configures how populations are compiled.
type GenerationConfig struct {
	// Individuals created by "imagine a cat" when no count is given.
	DefaultCount int `yaml:"default_count"`
	// Upper bound on individuals in one generation.
	MaxPopulation int `yaml:"max_population"`
	// Prior probability used to bias propositions with no declared density.
	DefaultDensity float64 `yaml:"default_density"`
	// Maximum nesting of include statements.
	IncludeDepth int `yaml:"include_depth"`
	// Definitions file loaded at startup, if any.
	DefinitionsPath string `yaml:"definitions_path"`
}

// Validate checks that generation limits are within acceptable ranges.
func (g GenerationConfig) Validate() error {
	if g.DefaultCount < 1 {
		return fmt.Errorf("generation.default_count must be >= 1")
	}
	if g.MaxPopulation < g.DefaultCount {
		return fmt.Errorf("generation.max_population must be >= default_count")
	}
	if g.DefaultDensity < 0 || g.DefaultDensity > 1 {
		return fmt.Errorf("generation.default_density must be within [0, 1]")
	}
	if g.IncludeDepth < 1 {
		return fmt.Errorf("generation.include_depth must be >= 1")
	}
	return nil
}
