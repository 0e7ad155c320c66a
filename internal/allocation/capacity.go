package allocation

import (
	"fmt"

	"review-balancer/internal/domain"
)

// CapacityTracker simulates reviewer capacity consumption within a single
// planning run. It is scoped to that run only and never touches storage.
type CapacityTracker struct {
	maxLoad map[int64]int
	load    map[int64]int
}

// NewCapacityTracker seeds a tracker from the snapshot's reviewers and their
// current active-assignment counts.
func NewCapacityTracker(reviewers []domain.Reviewer, loads map[int64]int) *CapacityTracker {
	t := &CapacityTracker{
		maxLoad: make(map[int64]int, len(reviewers)),
		load:    make(map[int64]int, len(reviewers)),
	}
	for _, r := range reviewers {
		t.maxLoad[r.ID] = r.MaxLoad
		t.load[r.ID] = loads[r.ID]
	}
	return t
}

// Load returns the reviewer's simulated active load.
func (t *CapacityTracker) Load(reviewerID int64) int {
	return t.load[reviewerID]
}

// Remaining returns the reviewer's free slots, never negative.
func (t *CapacityTracker) Remaining(reviewerID int64) int {
	remaining := t.maxLoad[reviewerID] - t.load[reviewerID]
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Reserve consumes one slot. Callers must treat ErrCapacityExceeded as "skip
// this reviewer", not as a fatal error.
func (t *CapacityTracker) Reserve(reviewerID int64) error {
	if t.Remaining(reviewerID) == 0 {
		return fmt.Errorf("reviewer %d: %w", reviewerID, domain.ErrCapacityExceeded)
	}
	t.load[reviewerID]++
	return nil
}

// Release frees one slot reserved earlier in the same run.
func (t *CapacityTracker) Release(reviewerID int64) {
	if t.load[reviewerID] > 0 {
		t.load[reviewerID]--
	}
}
