package domain

import "time"

// Reviewer represents a scholarship reviewer with an expertise profile and a
// concurrent workload cap.
type Reviewer struct {
	ID        int64
	Name      string
	Email     string
	MaxLoad   int
	Expertise []string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewReviewer creates a new active reviewer.
func NewReviewer(name, email string, maxLoad int, expertise []string) Reviewer {
	now := time.Now()
	return Reviewer{
		Name:      name,
		Email:     email,
		MaxLoad:   maxLoad,
		Expertise: expertise,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Activate marks the reviewer as available for new assignments.
func (r *Reviewer) Activate() {
	r.Active = true
	r.UpdatedAt = time.Now()
}

// Deactivate removes the reviewer from candidacy for new assignments.
func (r *Reviewer) Deactivate() {
	r.Active = false
	r.UpdatedAt = time.Now()
}

// CanReview checks whether the reviewer may ever receive work.
func (r *Reviewer) CanReview() bool {
	return r.Active && r.MaxLoad > 0
}

// HasExpertise checks whether the reviewer carries the given expertise tag.
func (r *Reviewer) HasExpertise(tag string) bool {
	for _, t := range r.Expertise {
		if t == tag {
			return true
		}
	}
	return false
}
