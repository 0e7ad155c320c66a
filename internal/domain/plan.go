package domain

// ProposedAssignment is a single allocation decision. It is a plain record
// the caller persists; the core never writes it anywhere itself.
type ProposedAssignment struct {
	ApplicationID int64
	ReviewerID    int64
	Score         float64
}

// Plan is the complete, internally consistent output of one allocation run.
type Plan struct {
	Assignments []ProposedAssignment
	// Unassignable lists applications left with at least one unfilled slot,
	// each once regardless of how many slots stayed open. This is an
	// expected outcome, not a failure.
	Unassignable []int64
	// UnassignableSlots counts the individual review slots that could not be
	// filled across all unassignable applications.
	UnassignableSlots int
	// ReadyForReview lists applications whose active assignment count now
	// equals needs_reviews and which may transition to in_review.
	ReadyForReview []int64
}

// Move proposes relocating one active assignment from an overloaded reviewer
// to a better-fitting underloaded one. Advisory output; the caller decides
// whether to apply it.
type Move struct {
	ApplicationID  int64
	FromReviewerID int64
	ToReviewerID   int64
	Score          float64
}
