package allocation

import (
	"fmt"
	"math"

	"review-balancer/internal/domain"
)

// Config holds the tunable allocation policy. Every knob is passed down
// explicitly; nothing in this package reads global state.
type Config struct {
	// OverlapWeight and LoadWeight combine tag overlap and capacity headroom
	// into a fit score. Overlap must dominate so that expertise fit is
	// primary and free capacity only breaks ties.
	OverlapWeight float64 `yaml:"overlap_weight"`
	LoadWeight    float64 `yaml:"load_weight"`

	// DriftThreshold is the allowed deviation from mean utilization before a
	// reviewer counts as over- or underloaded.
	DriftThreshold float64 `yaml:"drift_threshold"`

	// MinImprovement is the fit-score margin a move's destination must beat
	// the source by. Zero still requires a strict improvement.
	MinImprovement float64 `yaml:"min_improvement"`

	// MaxMoves caps the number of moves a single rebalance run may propose.
	MaxMoves int `yaml:"max_moves"`
}

// SetDefaults fills unset fields with the default policy.
func (c *Config) SetDefaults() {
	if c.OverlapWeight == 0 && c.LoadWeight == 0 {
		c.OverlapWeight = 0.7
		c.LoadWeight = 0.3
	}
	if c.DriftThreshold == 0 {
		c.DriftThreshold = 0.15
	}
	if c.MaxMoves == 0 {
		c.MaxMoves = 10
	}
}

// Validate checks that the policy is sound.
func (c *Config) Validate() error {
	if c.OverlapWeight <= 0 || c.LoadWeight <= 0 {
		return fmt.Errorf("scoring weights must be positive: %w", domain.ErrInvalidArgument)
	}
	if math.Abs(c.OverlapWeight+c.LoadWeight-1) > 1e-9 {
		return fmt.Errorf("scoring weights must sum to 1: %w", domain.ErrInvalidArgument)
	}
	if c.OverlapWeight <= c.LoadWeight {
		return fmt.Errorf("overlap weight must dominate load weight: %w", domain.ErrInvalidArgument)
	}
	if c.DriftThreshold <= 0 || c.DriftThreshold >= 1 {
		return fmt.Errorf("drift threshold must be in (0, 1): %w", domain.ErrInvalidArgument)
	}
	if c.MinImprovement < 0 {
		return fmt.Errorf("minimum improvement must not be negative: %w", domain.ErrInvalidArgument)
	}
	if c.MaxMoves < 1 {
		return fmt.Errorf("max moves must be at least 1: %w", domain.ErrInvalidArgument)
	}
	return nil
}
