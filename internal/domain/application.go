package domain

import "time"

type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "pending"
	ApplicationStatusInReview  ApplicationStatus = "in_review"
	ApplicationStatusCompleted ApplicationStatus = "completed"
)

// Application represents a scholarship application waiting for reviews.
type Application struct {
	ID            int64
	ApplicantName string
	Program       string
	Priority      int
	SubmittedAt   time.Time
	Topics        []string
	Status        ApplicationStatus
	NeedsReviews  int
}

// NewApplication creates a pending application.
func NewApplication(applicantName, program string, priority, needsReviews int, topics []string) Application {
	return Application{
		ApplicantName: applicantName,
		Program:       program,
		Priority:      priority,
		SubmittedAt:   time.Now(),
		Topics:        topics,
		Status:        ApplicationStatusPending,
		NeedsReviews:  needsReviews,
	}
}

// IsPending reports whether the application still accepts new assignments.
func (a *Application) IsPending() bool {
	return a.Status == ApplicationStatusPending
}

// IsTerminal reports whether the application reached a state that is never
// reopened.
func (a *Application) IsTerminal() bool {
	return a.Status == ApplicationStatusCompleted
}
