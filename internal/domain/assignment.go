package domain

import "time"

type AssignmentStatus string

const (
	AssignmentStatusAssigned  AssignmentStatus = "assigned"
	AssignmentStatusInReview  AssignmentStatus = "in_review"
	AssignmentStatusCompleted AssignmentStatus = "completed"
)

// Assignment links one application to one reviewer. At most one active
// (non-completed) assignment may exist per (application, reviewer) pair.
type Assignment struct {
	ID            int64
	ApplicationID int64
	ReviewerID    int64
	Status        AssignmentStatus
	Score         float64
	AssignedAt    time.Time
	CompletedAt   *time.Time
}

// IsActive reports whether the assignment still occupies a capacity slot.
func (a *Assignment) IsActive() bool {
	return a.Status != AssignmentStatusCompleted
}

// Complete finishes the assignment (idempotent).
func (a *Assignment) Complete() {
	if !a.IsActive() {
		return
	}
	a.Status = AssignmentStatusCompleted
	now := time.Now()
	a.CompletedAt = &now
}
