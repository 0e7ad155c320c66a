package reviewer

import (
	"context"
	"strings"

	"review-balancer/internal/domain"
)

type reviewerRepository interface {
	CreateReviewer(ctx context.Context, reviewer domain.Reviewer) (int64, error)
	GetReviewer(ctx context.Context, reviewerID int64) (domain.Reviewer, error)
	ListReviewers(ctx context.Context) ([]domain.Reviewer, error)
	SetActive(ctx context.Context, reviewerID int64, active bool) error
}

type assignmentRepository interface {
	ListActive(ctx context.Context) ([]domain.Assignment, error)
}

// LoadStatus is one reviewer's current workload.
type LoadStatus struct {
	Reviewer    domain.Reviewer
	Assigned    int
	Utilization float64
}

// Service handles reviewer registration and workload queries.
type Service struct {
	reviewerRepo   reviewerRepository
	assignmentRepo assignmentRepository
}

// NewService creates a new reviewer service
func NewService(reviewerRepo reviewerRepository, assignmentRepo assignmentRepository) *Service {
	return &Service{reviewerRepo: reviewerRepo, assignmentRepo: assignmentRepo}
}

// Register adds a reviewer to the pool.
func (s *Service) Register(ctx context.Context, name, email string, maxLoad int, expertise []string) (domain.Reviewer, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || maxLoad < 0 {
		return domain.Reviewer{}, domain.ErrInvalidArgument
	}
	for i, tag := range expertise {
		expertise[i] = strings.TrimSpace(tag)
		if expertise[i] == "" {
			return domain.Reviewer{}, domain.ErrInvalidArgument
		}
	}

	reviewer := domain.NewReviewer(name, email, maxLoad, expertise)
	id, err := s.reviewerRepo.CreateReviewer(ctx, reviewer)
	if err != nil {
		return domain.Reviewer{}, err
	}
	reviewer.ID = id
	return reviewer, nil
}

// SetActive flips a reviewer's availability for new assignments. Existing
// assignments stay where they are; the planner simply stops considering an
// inactive reviewer.
func (s *Service) SetActive(ctx context.Context, reviewerID int64, active bool) (domain.Reviewer, error) {
	if reviewerID <= 0 {
		return domain.Reviewer{}, domain.ErrInvalidArgument
	}
	if err := s.reviewerRepo.SetActive(ctx, reviewerID, active); err != nil {
		return domain.Reviewer{}, err
	}
	return s.reviewerRepo.GetReviewer(ctx, reviewerID)
}

// Status returns every reviewer with its current active load.
func (s *Service) Status(ctx context.Context) ([]LoadStatus, error) {
	reviewers, err := s.reviewerRepo.ListReviewers(ctx)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignmentRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	loads := make(map[int64]int)
	for _, a := range assignments {
		loads[a.ReviewerID]++
	}

	statuses := make([]LoadStatus, 0, len(reviewers))
	for _, r := range reviewers {
		status := LoadStatus{Reviewer: r, Assigned: loads[r.ID]}
		if r.MaxLoad > 0 {
			status.Utilization = float64(status.Assigned) / float64(r.MaxLoad)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
