package report

import (
	"context"
	"time"

	"review-balancer/internal/domain"
	"review-balancer/internal/report"
)

type reviewerRepository interface {
	ListReviewers(ctx context.Context) ([]domain.Reviewer, error)
}

type applicationRepository interface {
	ListPending(ctx context.Context, limit int) ([]domain.Application, error)
}

type assignmentRepository interface {
	ListActive(ctx context.Context) ([]domain.Assignment, error)
	ListBacklog(ctx context.Context) ([]report.BacklogAssignment, error)
	ListCompletedSince(ctx context.Context, since time.Time) ([]report.CompletedReview, error)
}

// Service loads persisted facts and delegates to the pure report builders.
type Service struct {
	reviewerRepo    reviewerRepository
	applicationRepo applicationRepository
	assignmentRepo  assignmentRepository
	now             func() time.Time
}

// NewService creates a new report service
func NewService(
	reviewerRepo reviewerRepository,
	applicationRepo applicationRepository,
	assignmentRepo assignmentRepository,
) *Service {
	return &Service{
		reviewerRepo:    reviewerRepo,
		applicationRepo: applicationRepo,
		assignmentRepo:  assignmentRepo,
		now:             time.Now,
	}
}

// Backlog reports how long active assignments have been waiting.
func (s *Service) Backlog(ctx context.Context, staleDays int) (report.BacklogReport, error) {
	if staleDays < 1 {
		return report.BacklogReport{}, domain.ErrInvalidArgument
	}
	backlog, err := s.assignmentRepo.ListBacklog(ctx)
	if err != nil {
		return report.BacklogReport{}, err
	}
	return report.BuildBacklogReport(backlog, s.now(), staleDays), nil
}

// Coverage reports queue demand versus reviewer capacity per tag.
func (s *Service) Coverage(ctx context.Context) ([]report.TagCapacity, error) {
	reviewers, err := s.reviewerRepo.ListReviewers(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.applicationRepo.ListPending(ctx, 0)
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
	return report.BuildTagCapacityReport(reviewers, loads, pending), nil
}

// Throughput reports completions over the trailing window.
func (s *Service) Throughput(ctx context.Context, days int) (report.ThroughputReport, error) {
	if days < 1 {
		return report.ThroughputReport{}, domain.ErrInvalidArgument
	}
	now := s.now()
	completed, err := s.assignmentRepo.ListCompletedSince(ctx, now.AddDate(0, 0, -days))
	if err != nil {
		return report.ThroughputReport{}, err
	}
	return report.BuildThroughputReport(completed, now, days), nil
}
