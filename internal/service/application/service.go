package application

import (
	"context"
	"strings"

	"review-balancer/internal/db"
	"review-balancer/internal/domain"
)

type applicationRepository interface {
	CreateApplication(ctx context.Context, app domain.Application) (int64, error)
	GetApplication(ctx context.Context, applicationID int64) (domain.Application, error)
	ListPending(ctx context.Context, limit int) ([]domain.Application, error)
	UpdateStatus(ctx context.Context, applicationID int64, status domain.ApplicationStatus) error
	CountByStatus(ctx context.Context) (map[domain.ApplicationStatus]int, error)
}

type reviewerRepository interface {
	GetReviewer(ctx context.Context, reviewerID int64) (domain.Reviewer, error)
}

type assignmentRepository interface {
	GetAssignment(ctx context.Context, assignmentID int64) (domain.Assignment, error)
	CompleteAssignment(ctx context.Context, assignmentID int64) error
	CountForApplication(ctx context.Context, applicationID int64) (active, completed int, err error)
}

type conflictRepository interface {
	AddConflict(ctx context.Context, conflict domain.Conflict) error
}

// Service handles application intake, conflicts and review completion.
type Service struct {
	applicationRepo applicationRepository
	reviewerRepo    reviewerRepository
	assignmentRepo  assignmentRepository
	conflictRepo    conflictRepository
	transactor      db.Transactioner
}

// NewService creates a new application service
func NewService(
	applicationRepo applicationRepository,
	reviewerRepo reviewerRepository,
	assignmentRepo assignmentRepository,
	conflictRepo conflictRepository,
	transactor db.Transactioner,
) *Service {
	return &Service{
		applicationRepo: applicationRepo,
		reviewerRepo:    reviewerRepo,
		assignmentRepo:  assignmentRepo,
		conflictRepo:    conflictRepo,
		transactor:      transactor,
	}
}

// Submit registers a new pending application.
func (s *Service) Submit(ctx context.Context, applicantName, program string, priority, needsReviews int, topics []string) (domain.Application, error) {
	applicantName = strings.TrimSpace(applicantName)
	program = strings.TrimSpace(program)
	if applicantName == "" || program == "" || needsReviews < 1 {
		return domain.Application{}, domain.ErrInvalidArgument
	}
	for i, tag := range topics {
		topics[i] = strings.TrimSpace(tag)
		if topics[i] == "" {
			return domain.Application{}, domain.ErrInvalidArgument
		}
	}

	app := domain.NewApplication(applicantName, program, priority, needsReviews, topics)
	id, err := s.applicationRepo.CreateApplication(ctx, app)
	if err != nil {
		return domain.Application{}, err
	}
	app.ID = id
	return app, nil
}

// Queue returns the pending applications in allocation order.
func (s *Service) Queue(ctx context.Context, limit int) ([]domain.Application, error) {
	return s.applicationRepo.ListPending(ctx, limit)
}

// Counts returns how many applications sit in each status.
func (s *Service) Counts(ctx context.Context) (map[domain.ApplicationStatus]int, error) {
	return s.applicationRepo.CountByStatus(ctx)
}

// AddConflict bars a reviewer from an application. Both sides must exist.
func (s *Service) AddConflict(ctx context.Context, reviewerID, applicationID int64, reason string) error {
	if reviewerID <= 0 || applicationID <= 0 {
		return domain.ErrInvalidArgument
	}
	if _, err := s.reviewerRepo.GetReviewer(ctx, reviewerID); err != nil {
		return err
	}
	if _, err := s.applicationRepo.GetApplication(ctx, applicationID); err != nil {
		return err
	}
	return s.conflictRepo.AddConflict(ctx, domain.Conflict{
		ReviewerID:    reviewerID,
		ApplicationID: applicationID,
		Reason:        strings.TrimSpace(reason),
	})
}

// CompleteReview finishes one assignment. When the application's completed
// reviews reach needs_reviews and nothing is still active, the application
// itself completes, all in one transaction.
func (s *Service) CompleteReview(ctx context.Context, assignmentID int64) (domain.Assignment, error) {
	if assignmentID <= 0 {
		return domain.Assignment{}, domain.ErrInvalidArgument
	}

	var assignment domain.Assignment
	err := s.transactor.Do(ctx, func(txCtx context.Context) error {
		var err error
		assignment, err = s.assignmentRepo.GetAssignment(txCtx, assignmentID)
		if err != nil {
			return err
		}
		if !assignment.IsActive() {
			return domain.ErrAlreadyCompleted
		}

		if err := s.assignmentRepo.CompleteAssignment(txCtx, assignmentID); err != nil {
			return err
		}
		assignment.Complete()

		app, err := s.applicationRepo.GetApplication(txCtx, assignment.ApplicationID)
		if err != nil {
			return err
		}
		active, completed, err := s.assignmentRepo.CountForApplication(txCtx, assignment.ApplicationID)
		if err != nil {
			return err
		}
		if active == 0 && completed >= app.NeedsReviews && !app.IsTerminal() {
			return s.applicationRepo.UpdateStatus(txCtx, app.ID, domain.ApplicationStatusCompleted)
		}
		return nil
	})
	if err != nil {
		return domain.Assignment{}, err
	}
	return assignment, nil
}
