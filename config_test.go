package physac

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Vector2{0, 9.81}, cfg.Gravity)
	assert.Equal(t, BroadPhaseNaive, cfg.BroadPhase)

	d, err := timeStepDuration(cfg.TimeStepMs)
	require.NoError(t, err)
	assert.Equal(t, 1666667*time.Nanosecond, d)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero capacity", func(c *Config) { c.Capacity = 0 }},
		{"zero timestep", func(c *Config) { c.TimeStepMs = 0 }},
		{"nan timestep", func(c *Config) { c.TimeStepMs = math.NaN() }},
		{"sub-nanosecond timestep", func(c *Config) { c.TimeStepMs = 1e-9 }},
		{"infinite timestep", func(c *Config) { c.TimeStepMs = math.Inf(1) }},
		{"nan gravity", func(c *Config) { c.Gravity = Vector2{math.NaN(), 0} }},
		{"infinite gravity", func(c *Config) { c.Gravity = Vector2{0, math.Inf(-1)} }},
		{"nan correction", func(c *Config) { c.CorrectionPercent = math.NaN() }},
		{"nan allowance", func(c *Config) { c.PenetrationAllowance = math.NaN() }},
		{"infinite allowance", func(c *Config) { c.PenetrationAllowance = math.Inf(1) }},
		{"zero iterations", func(c *Config) { c.Iterations = 0 }},
		{"correction above one", func(c *Config) { c.CorrectionPercent = 1.5 }},
		{"negative allowance", func(c *Config) { c.PenetrationAllowance = -0.1 }},
		{"negative substeps", func(c *Config) { c.MaxSubSteps = -1 }},
		{"unknown broadphase", func(c *Config) { c.BroadPhase = "quadtree" }},
		{"grid without cell size", func(c *Config) {
			c.BroadPhase = BroadPhaseGrid
			c.GridCellSize = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidParameter)
		})
	}
}

func TestTimeStepDurationRounds(t *testing.T) {
	d, err := timeStepDuration(1000.0 / 60.0)
	require.NoError(t, err)
	assert.Equal(t, 16666667*time.Nanosecond, d)

	d, err = timeStepDuration(10)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Millisecond, d)
}
