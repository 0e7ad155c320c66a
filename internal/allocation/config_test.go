package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-balancer/internal/domain"
)

func TestConfig_SetDefaults(t *testing.T) {
	t.Run("empty config gets the default policy", func(t *testing.T) {
		cfg := Config{}
		cfg.SetDefaults()

		assert.InDelta(t, 0.7, cfg.OverlapWeight, 1e-9)
		assert.InDelta(t, 0.3, cfg.LoadWeight, 1e-9)
		assert.InDelta(t, 0.15, cfg.DriftThreshold, 1e-9)
		assert.Equal(t, 10, cfg.MaxMoves)
		require.NoError(t, cfg.Validate())
	})

	t.Run("explicit weights are kept", func(t *testing.T) {
		cfg := Config{OverlapWeight: 0.8, LoadWeight: 0.2}
		cfg.SetDefaults()

		assert.InDelta(t, 0.8, cfg.OverlapWeight, 1e-9)
		assert.InDelta(t, 0.2, cfg.LoadWeight, 1e-9)
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		cfg := Config{}
		cfg.SetDefaults()
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero overlap weight", func(c *Config) { c.OverlapWeight = 0 }},
		{"negative load weight", func(c *Config) { c.LoadWeight = -0.3 }},
		{"weights not summing to one", func(c *Config) { c.OverlapWeight = 0.8 }},
		{"load weight dominating", func(c *Config) { c.OverlapWeight = 0.3; c.LoadWeight = 0.7 }},
		{"zero drift threshold", func(c *Config) { c.DriftThreshold = 0 }},
		{"drift threshold of one", func(c *Config) { c.DriftThreshold = 1 }},
		{"negative min improvement", func(c *Config) { c.MinImprovement = -0.1 }},
		{"zero max moves", func(c *Config) { c.MaxMoves = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), domain.ErrInvalidArgument)
		})
	}
}
