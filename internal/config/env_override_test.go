package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides(t *testing.T) {
	t.Run("IMAGINE_SEED sets solver seed", func(t *testing.T) {
		t.Setenv("IMAGINE_SEED", "1234")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, int64(1234), cfg.Solver.Seed)
	})

	t.Run("invalid IMAGINE_SEED is ignored", func(t *testing.T) {
		t.Setenv("IMAGINE_SEED", "lots")

		cfg := DefaultConfig()
		cfg.Solver.Seed = 9
		cfg.applyEnvOverrides()

		assert.Equal(t, int64(9), cfg.Solver.Seed)
	})

	t.Run("IMAGINE_SOLVER_TIMEOUT overrides timeout", func(t *testing.T) {
		t.Setenv("IMAGINE_SOLVER_TIMEOUT", "250ms")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "250ms", cfg.Solver.Timeout)
	})

	t.Run("IMAGINE_LOG_LEVEL and IMAGINE_DEBUG configure logging", func(t *testing.T) {
		t.Setenv("IMAGINE_LOG_LEVEL", "debug")
		t.Setenv("IMAGINE_DEBUG", "true")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.True(t, cfg.Logging.DebugMode)
	})

	t.Run("empty variables leave config alone", func(t *testing.T) {
		t.Setenv("IMAGINE_SEED", "")
		t.Setenv("IMAGINE_SOLVER_TIMEOUT", "")
		t.Setenv("IMAGINE_LOG_LEVEL", "")
		t.Setenv("IMAGINE_DEBUG", "")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, DefaultConfig(), cfg)
	})
}
