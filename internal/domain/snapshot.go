package domain

import (
	"fmt"
	"strings"
)

// Snapshot is a point-in-time, read-only view of the assignment state. The
// allocator and rebalancer operate on disposable snapshots and never mutate
// storage; the caller fetches one inside a transaction and persists the
// resulting plan atomically.
type Snapshot struct {
	Reviewers    []Reviewer
	Applications []Application
	Assignments  []Assignment
	Conflicts    []Conflict
}

// Validate fails fast on domain data a planning run must never coerce.
func (s *Snapshot) Validate() error {
	for _, r := range s.Reviewers {
		if r.ID <= 0 {
			return fmt.Errorf("reviewer %q: missing id: %w", r.Name, ErrInvalidArgument)
		}
		if r.MaxLoad < 0 {
			return fmt.Errorf("reviewer %d: max_load must not be negative: %w", r.ID, ErrInvalidArgument)
		}
		if err := validateTags(r.Expertise); err != nil {
			return fmt.Errorf("reviewer %d: %w", r.ID, err)
		}
	}
	for _, a := range s.Applications {
		if a.ID <= 0 {
			return fmt.Errorf("application %q: missing id: %w", a.ApplicantName, ErrInvalidArgument)
		}
		if a.NeedsReviews < 1 {
			return fmt.Errorf("application %d: needs_reviews must be at least 1: %w", a.ID, ErrInvalidArgument)
		}
		if err := validateTags(a.Topics); err != nil {
			return fmt.Errorf("application %d: %w", a.ID, err)
		}
	}
	return nil
}

func validateTags(tags []string) error {
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("blank tag: %w", ErrInvalidArgument)
		}
		if _, ok := seen[t]; ok {
			return fmt.Errorf("duplicate tag %q: %w", t, ErrInvalidArgument)
		}
		seen[t] = struct{}{}
	}
	return nil
}

// ActiveLoads returns the current number of active assignments per reviewer.
func (s *Snapshot) ActiveLoads() map[int64]int {
	loads := make(map[int64]int, len(s.Reviewers))
	for _, a := range s.Assignments {
		if a.IsActive() {
			loads[a.ReviewerID]++
		}
	}
	return loads
}

// ConflictSet returns the snapshot's conflicts as a lookup.
func (s *Snapshot) ConflictSet() ConflictSet {
	return NewConflictSet(s.Conflicts)
}

// AssignedReviewers returns the reviewers holding an active assignment for
// the given application.
func (s *Snapshot) AssignedReviewers(applicationID int64) map[int64]struct{} {
	assigned := make(map[int64]struct{})
	for _, a := range s.Assignments {
		if a.ApplicationID == applicationID && a.IsActive() {
			assigned[a.ReviewerID] = struct{}{}
		}
	}
	return assigned
}
