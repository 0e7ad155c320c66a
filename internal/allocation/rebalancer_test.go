package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"review-balancer/internal/domain"
)

func newTestRebalancer(t *testing.T) *Rebalancer {
	t.Helper()
	return NewRebalancer(defaultTestConfig(), zap.NewNop())
}

func inReviewApp(id int64, topics ...string) domain.Application {
	return domain.Application{
		ID:           id,
		Status:       domain.ApplicationStatusInReview,
		Topics:       topics,
		NeedsReviews: 1,
	}
}

func TestRebalancer_MovesWorstFitToBetterReviewer(t *testing.T) {
	// Reviewer 1 is saturated; reviewer 2 is idle and an exact expertise
	// match for the worst-fitting of reviewer 1's assignments.
	snap := domain.Snapshot{
		Reviewers: []domain.Reviewer{
			testReviewer(1, 2, "stem"),
			testReviewer(2, 2, "arts"),
		},
		Applications: []domain.Application{
			inReviewApp(10, "arts"),
			inReviewApp(11, "stem"),
		},
		Assignments: []domain.Assignment{
			activeAssignment(1, 10, 1, 0.2),
			activeAssignment(2, 11, 1, 0.9),
		},
	}

	moves, err := newTestRebalancer(t).Rebalance(snap, 10)
	require.NoError(t, err)

	require.Len(t, moves, 1)
	assert.Equal(t, int64(10), moves[0].ApplicationID)
	assert.Equal(t, int64(1), moves[0].FromReviewerID)
	assert.Equal(t, int64(2), moves[0].ToReviewerID)
	assert.InDelta(t, 1.0, moves[0].Score, 1e-9)
}

func TestRebalancer_BalancedLoadsProposeNothing(t *testing.T) {
	snap := domain.Snapshot{
		Reviewers: []domain.Reviewer{
			testReviewer(1, 2, "stem"),
			testReviewer(2, 2, "arts"),
		},
		Applications: []domain.Application{
			inReviewApp(10, "stem"),
			inReviewApp(11, "arts"),
		},
		Assignments: []domain.Assignment{
			activeAssignment(1, 10, 1, 1.0),
			activeAssignment(2, 11, 2, 1.0),
		},
	}

	moves, err := newTestRebalancer(t).Rebalance(snap, 10)
	require.NoError(t, err)
	assert.Empty(t, moves)
}

func TestRebalancer_NonRegression(t *testing.T) {
	snap := domain.Snapshot{
		Reviewers: []domain.Reviewer{
			testReviewer(1, 4, "stem"),
			testReviewer(2, 4, "arts", "essay"),
			testReviewer(3, 4, "essay"),
		},
		Applications: []domain.Application{
			inReviewApp(10, "arts"),
			inReviewApp(11, "essay"),
			inReviewApp(12, "stem"),
			inReviewApp(13, "essay"),
		},
		Assignments: []domain.Assignment{
			activeAssignment(1, 10, 1, 0.15),
			activeAssignment(2, 11, 1, 0.2),
			activeAssignment(3, 12, 1, 0.8),
			activeAssignment(4, 13, 1, 0.2),
		},
	}

	moves, err := newTestRebalancer(t).Rebalance(snap, 10)
	require.NoError(t, err)
	require.NotEmpty(t, moves)

	sourceScores := make(map[int64]float64)
	for _, a := range snap.Assignments {
		sourceScores[a.ApplicationID] = a.Score
	}
	for _, m := range moves {
		assert.Greater(t, m.Score, sourceScores[m.ApplicationID],
			"move for application %d does not improve fit", m.ApplicationID)
	}

	// Replay the moves and verify nobody ends up above mean + drift.
	loads := snap.ActiveLoads()
	for _, m := range moves {
		loads[m.FromReviewerID]--
		loads[m.ToReviewerID]++
	}
	utils := make([]float64, 0, len(snap.Reviewers))
	for _, r := range snap.Reviewers {
		utils = append(utils, float64(loads[r.ID])/float64(r.MaxLoad))
	}
	mean := 0.0
	for _, u := range utils {
		mean += u
	}
	mean /= float64(len(utils))
	for i, r := range snap.Reviewers {
		if wasOverloaded := snap.ActiveLoads()[r.ID] > loads[r.ID]; wasOverloaded {
			continue
		}
		assert.LessOrEqual(t, utils[i], mean+defaultTestConfig().DriftThreshold+1e-9,
			"reviewer %d pushed above the drift band", r.ID)
	}
}

func TestRebalancer_MaxMovesCapsTheRun(t *testing.T) {
	snap := domain.Snapshot{
		Reviewers: []domain.Reviewer{
			testReviewer(1, 4, "stem"),
			testReviewer(2, 4, "arts"),
		},
		Applications: []domain.Application{
			inReviewApp(10, "arts"),
			inReviewApp(11, "arts"),
			inReviewApp(12, "arts"),
			inReviewApp(13, "arts"),
		},
		Assignments: []domain.Assignment{
			activeAssignment(1, 10, 1, 0.1),
			activeAssignment(2, 11, 1, 0.1),
			activeAssignment(3, 12, 1, 0.1),
			activeAssignment(4, 13, 1, 0.1),
		},
	}

	moves, err := newTestRebalancer(t).Rebalance(snap, 1)
	require.NoError(t, err)
	assert.Len(t, moves, 1)
}

func TestRebalancer_RelievesOverloadedSourcesRoundRobin(t *testing.T) {
	snap := domain.Snapshot{
		Reviewers: []domain.Reviewer{
			testReviewer(1, 2, "stem"),
			testReviewer(2, 2, "stem"),
			testReviewer(3, 10, "arts"),
		},
		Applications: []domain.Application{
			inReviewApp(10, "arts"),
			inReviewApp(11, "stem"),
			inReviewApp(20, "arts"),
			inReviewApp(21, "stem"),
		},
		Assignments: []domain.Assignment{
			activeAssignment(1, 10, 1, 0.1),
			activeAssignment(2, 11, 1, 0.9),
			activeAssignment(3, 20, 2, 0.1),
			activeAssignment(4, 21, 2, 0.9),
		},
	}

	moves, err := newTestRebalancer(t).Rebalance(snap, 2)
	require.NoError(t, err)
	require.Len(t, moves, 2)

	froms := []int64{moves[0].FromReviewerID, moves[1].FromReviewerID}
	assert.ElementsMatch(t, []int64{1, 2}, froms)
	for _, m := range moves {
		assert.Equal(t, int64(3), m.ToReviewerID)
	}
}

func TestRebalancer_NeverMovesCompletedAssignments(t *testing.T) {
	snap := domain.Snapshot{
		Reviewers: []domain.Reviewer{
			testReviewer(1, 2, "stem"),
			testReviewer(2, 2, "arts"),
		},
		Applications: []domain.Application{
			inReviewApp(10, "arts"),
			inReviewApp(11, "arts"),
			{ID: 12, Status: domain.ApplicationStatusCompleted, Topics: []string{"arts"}, NeedsReviews: 1},
		},
		Assignments: []domain.Assignment{
			activeAssignment(1, 10, 1, 0.2),
			activeAssignment(2, 11, 1, 0.2),
			{ID: 3, ApplicationID: 12, ReviewerID: 1, Status: domain.AssignmentStatusCompleted, Score: 0.1},
		},
	}

	moves, err := newTestRebalancer(t).Rebalance(snap, 10)
	require.NoError(t, err)

	for _, m := range moves {
		assert.NotEqual(t, int64(12), m.ApplicationID, "completed assignment moved")
	}
}

func TestRebalancer_ConflictBlocksDestination(t *testing.T) {
	snap := domain.Snapshot{
		Reviewers: []domain.Reviewer{
			testReviewer(1, 2, "stem"),
			testReviewer(2, 2, "arts"),
		},
		Applications: []domain.Application{
			inReviewApp(10, "arts"),
			inReviewApp(11, "stem"),
		},
		Assignments: []domain.Assignment{
			activeAssignment(1, 10, 1, 0.2),
			activeAssignment(2, 11, 1, 0.9),
		},
		Conflicts: []domain.Conflict{
			{ReviewerID: 2, ApplicationID: 10, Reason: "sibling"},
		},
	}

	moves, err := newTestRebalancer(t).Rebalance(snap, 10)
	require.NoError(t, err)
	assert.Empty(t, moves)
}

func TestRebalancer_DestinationAlreadyHoldingIsSkipped(t *testing.T) {
	// Both reviewers hold application 10; moving reviewer 1's copy to
	// reviewer 2 would double-assign the pair.
	snap := domain.Snapshot{
		Reviewers: []domain.Reviewer{
			testReviewer(1, 2, "stem"),
			testReviewer(2, 4, "arts"),
		},
		Applications: []domain.Application{
			inReviewApp(10, "arts"),
			inReviewApp(11, "stem"),
		},
		Assignments: []domain.Assignment{
			activeAssignment(1, 10, 1, 0.2),
			activeAssignment(2, 11, 1, 0.9),
			activeAssignment(3, 10, 2, 0.95),
		},
	}

	moves, err := newTestRebalancer(t).Rebalance(snap, 10)
	require.NoError(t, err)

	for _, m := range moves {
		assert.False(t, m.ApplicationID == 10 && m.ToReviewerID == 2,
			"application 10 moved onto a reviewer already holding it")
	}
}

func TestRebalancer_RejectsMoveThatOverloadsDestination(t *testing.T) {
	// The only destination has a single slot; filling it would put it at
	// utilization 1.0, well above mean + drift.
	snap := domain.Snapshot{
		Reviewers: []domain.Reviewer{
			testReviewer(1, 2, "stem"),
			testReviewer(2, 1, "arts"),
		},
		Applications: []domain.Application{
			inReviewApp(10, "arts"),
			inReviewApp(11, "stem"),
		},
		Assignments: []domain.Assignment{
			activeAssignment(1, 10, 1, 0.2),
			activeAssignment(2, 11, 1, 0.9),
		},
	}

	moves, err := newTestRebalancer(t).Rebalance(snap, 10)
	require.NoError(t, err)
	assert.Empty(t, moves)
}

func TestRebalancer_RequiresStrictImprovement(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.MinImprovement = 0.5

	// Destination scores 1.0 against a source fit of 0.6: an improvement,
	// but not by more than the configured margin.
	snap := domain.Snapshot{
		Reviewers: []domain.Reviewer{
			testReviewer(1, 2, "stem"),
			testReviewer(2, 2, "arts"),
		},
		Applications: []domain.Application{
			inReviewApp(10, "arts"),
			inReviewApp(11, "stem"),
		},
		Assignments: []domain.Assignment{
			activeAssignment(1, 10, 1, 0.6),
			activeAssignment(2, 11, 1, 0.9),
		},
	}

	moves, err := NewRebalancer(cfg, zap.NewNop()).Rebalance(snap, 10)
	require.NoError(t, err)
	assert.Empty(t, moves)
}

func TestRebalancer_InvalidMaxMoves(t *testing.T) {
	_, err := newTestRebalancer(t).Rebalance(domain.Snapshot{}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestRebalancer_Determinism(t *testing.T) {
	snap := domain.Snapshot{
		Reviewers: []domain.Reviewer{
			testReviewer(1, 3, "stem"),
			testReviewer(2, 3, "arts"),
			testReviewer(3, 6, "essay", "arts"),
		},
		Applications: []domain.Application{
			inReviewApp(10, "arts"),
			inReviewApp(11, "essay"),
			inReviewApp(12, "stem"),
			inReviewApp(13, "essay"),
			inReviewApp(14, "arts"),
			inReviewApp(15, "stem"),
		},
		Assignments: []domain.Assignment{
			activeAssignment(1, 10, 1, 0.2),
			activeAssignment(2, 11, 1, 0.15),
			activeAssignment(3, 12, 1, 0.9),
			activeAssignment(4, 13, 2, 0.2),
			activeAssignment(5, 14, 2, 0.85),
			activeAssignment(6, 15, 2, 0.25),
		},
	}

	reb := newTestRebalancer(t)
	first, err := reb.Rebalance(snap, 10)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := reb.Rebalance(snap, 10)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
