package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-balancer/internal/domain"
)

func defaultTestConfig() Config {
	cfg := Config{}
	cfg.SetDefaults()
	return cfg
}

func TestScorer_Score(t *testing.T) {
	scorer := NewScorer(defaultTestConfig())
	none := domain.NewConflictSet(nil)

	reviewer := domain.Reviewer{
		ID:        1,
		Name:      "Dana",
		MaxLoad:   5,
		Expertise: []string{"stem", "essay"},
		Active:    true,
	}
	app := domain.Application{
		ID:           10,
		Topics:       []string{"stem"},
		Status:       domain.ApplicationStatusPending,
		NeedsReviews: 1,
	}

	t.Run("full overlap with partial load", func(t *testing.T) {
		// overlap 1.0, remaining 3 of 5 -> 0.7*1.0 + 0.3*0.6
		score, ok := scorer.Score(reviewer, app, 2, none)
		require.True(t, ok)
		assert.InDelta(t, 0.88, score, 1e-9)
	})

	t.Run("idle reviewer with full overlap scores 1", func(t *testing.T) {
		score, ok := scorer.Score(reviewer, app, 0, none)
		require.True(t, ok)
		assert.InDelta(t, 1.0, score, 1e-9)
	})

	t.Run("no overlap scores load pressure only", func(t *testing.T) {
		other := app
		other.Topics = []string{"arts"}
		score, ok := scorer.Score(reviewer, other, 2, none)
		require.True(t, ok)
		assert.InDelta(t, 0.18, score, 1e-9)
	})

	t.Run("untagged application has zero overlap", func(t *testing.T) {
		other := app
		other.Topics = nil
		score, ok := scorer.Score(reviewer, other, 0, none)
		require.True(t, ok)
		assert.InDelta(t, 0.3, score, 1e-9)
	})

	t.Run("inactive reviewer is ineligible", func(t *testing.T) {
		inactive := reviewer
		inactive.Active = false
		_, ok := scorer.Score(inactive, app, 0, none)
		assert.False(t, ok)
	})

	t.Run("full reviewer is ineligible", func(t *testing.T) {
		_, ok := scorer.Score(reviewer, app, 5, none)
		assert.False(t, ok)
	})

	t.Run("overloaded reviewer is ineligible", func(t *testing.T) {
		_, ok := scorer.Score(reviewer, app, 7, none)
		assert.False(t, ok)
	})

	t.Run("conflict is a hard exclusion", func(t *testing.T) {
		conflicts := domain.NewConflictSet([]domain.Conflict{
			{ReviewerID: reviewer.ID, ApplicationID: app.ID, Reason: "former advisor"},
		})
		_, ok := scorer.Score(reviewer, app, 0, conflicts)
		assert.False(t, ok)
	})

	t.Run("conflict on another pair does not exclude", func(t *testing.T) {
		conflicts := domain.NewConflictSet([]domain.Conflict{
			{ReviewerID: 99, ApplicationID: app.ID},
			{ReviewerID: reviewer.ID, ApplicationID: 99},
		})
		_, ok := scorer.Score(reviewer, app, 0, conflicts)
		assert.True(t, ok)
	})
}

func TestTagOverlap(t *testing.T) {
	tests := []struct {
		name      string
		expertise []string
		topics    []string
		want      float64
	}{
		{"full coverage", []string{"stem", "essay"}, []string{"stem", "essay"}, 1.0},
		{"half coverage", []string{"stem"}, []string{"stem", "arts"}, 0.5},
		{"no coverage", []string{"stem"}, []string{"arts"}, 0.0},
		{"no topics", []string{"stem"}, nil, 0.0},
		{"no expertise", nil, []string{"stem"}, 0.0},
		{"extra expertise does not inflate", []string{"stem", "essay", "arts"}, []string{"stem"}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tagOverlap(tt.expertise, tt.topics), 1e-9)
		})
	}
}
