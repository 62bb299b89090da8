package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all imaginarium configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Population and compilation defaults
	Generation GenerationConfig `yaml:"generation"`

	// SAT search
	Solver SolverConfig `yaml:"solver"`

	// Invention fact engine
	Mangle MangleConfig `yaml:"mangle"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "imaginarium",
		Version: "0.3.0",

		Generation: GenerationConfig{
			DefaultCount:   1,
			MaxPopulation:  50,
			DefaultDensity: 0.5,
			IncludeDepth:   8,
		},

		Solver: SolverConfig{
			Timeout: "10s",
			Seed:    0,
			Retries: 32,
		},

		Mangle: MangleConfig{
			FactLimit:         100000,
			DerivedFactsLimit: 500000,
			QueryTimeout:      "5s",
		},

		Logging: LoggingConfig{
			Level:     "info",
			Format:    "console",
			DebugMode: false,
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if seed := os.Getenv("IMAGINE_SEED"); seed != "" {
		if n, err := strconv.ParseInt(seed, 10, 64); err == nil {
			c.Solver.Seed = n
		}
	}
	if timeout := os.Getenv("IMAGINE_SOLVER_TIMEOUT"); timeout != "" {
		c.Solver.Timeout = timeout
	}
	if level := os.Getenv("IMAGINE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if debug := os.Getenv("IMAGINE_DEBUG"); debug != "" {
		if b, err := strconv.ParseBool(debug); err == nil {
			c.Logging.DebugMode = b
		}
	}
}

// GetSolverTimeout returns the solver timeout as a duration.
func (c *Config) GetSolverTimeout() time.Duration {
	d, err := time.ParseDuration(c.Solver.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetQueryTimeout returns the Mangle query timeout as a duration.
func (c *Config) GetQueryTimeout() time.Duration {
	d, err := time.ParseDuration(c.Mangle.QueryTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Generation.Validate(); err != nil {
		return err
	}
	if err := c.Solver.Validate(); err != nil {
		return err
	}
	if c.Mangle.FactLimit < 1 {
		return fmt.Errorf("mangle.fact_limit must be >= 1")
	}
	if _, err := time.ParseDuration(c.Mangle.QueryTimeout); err != nil {
		return fmt.Errorf("invalid mangle.query_timeout %q: %w", c.Mangle.QueryTimeout, err)
	}

	validLevel := false
	for _, l := range ValidLogLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("invalid log format: %s (valid: json, console)", c.Logging.Format)
	}
	return nil
}
