package domain

// Conflict bars a reviewer from ever being assigned a specific application.
type Conflict struct {
	ReviewerID    int64
	ApplicationID int64
	Reason        string
}

// ConflictKey identifies a (reviewer, application) exclusion.
type ConflictKey struct {
	ReviewerID    int64
	ApplicationID int64
}

// ConflictSet is a lookup built from the snapshot's conflict records.
type ConflictSet map[ConflictKey]struct{}

// NewConflictSet builds a lookup from conflict records.
func NewConflictSet(conflicts []Conflict) ConflictSet {
	set := make(ConflictSet, len(conflicts))
	for _, c := range conflicts {
		set[ConflictKey{ReviewerID: c.ReviewerID, ApplicationID: c.ApplicationID}] = struct{}{}
	}
	return set
}

// Conflicted reports whether the pair must never be assigned together.
func (cs ConflictSet) Conflicted(reviewerID, applicationID int64) bool {
	_, ok := cs[ConflictKey{ReviewerID: reviewerID, ApplicationID: applicationID}]
	return ok
}
