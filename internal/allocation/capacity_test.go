package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-balancer/internal/domain"
)

func TestCapacityTracker(t *testing.T) {
	reviewers := []domain.Reviewer{
		{ID: 1, MaxLoad: 2, Active: true},
		{ID: 2, MaxLoad: 3, Active: true},
	}

	t.Run("reserve until exhausted", func(t *testing.T) {
		tracker := NewCapacityTracker(reviewers, map[int64]int{1: 1})

		require.Equal(t, 1, tracker.Load(1))
		require.Equal(t, 1, tracker.Remaining(1))

		require.NoError(t, tracker.Reserve(1))
		assert.Equal(t, 0, tracker.Remaining(1))

		err := tracker.Reserve(1)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
		assert.Equal(t, 2, tracker.Load(1))
	})

	t.Run("release frees a slot", func(t *testing.T) {
		tracker := NewCapacityTracker(reviewers, map[int64]int{2: 3})

		require.ErrorIs(t, tracker.Reserve(2), domain.ErrCapacityExceeded)
		tracker.Release(2)
		require.NoError(t, tracker.Reserve(2))
		assert.Equal(t, 3, tracker.Load(2))
	})

	t.Run("remaining never goes negative", func(t *testing.T) {
		tracker := NewCapacityTracker(reviewers, map[int64]int{1: 5})

		assert.Equal(t, 0, tracker.Remaining(1))
		assert.ErrorIs(t, tracker.Reserve(1), domain.ErrCapacityExceeded)
	})

	t.Run("unknown reviewer has no capacity", func(t *testing.T) {
		tracker := NewCapacityTracker(reviewers, nil)

		assert.Equal(t, 0, tracker.Remaining(42))
		assert.ErrorIs(t, tracker.Reserve(42), domain.ErrCapacityExceeded)
	})
}
