package planner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"review-balancer/internal/db"
	"review-balancer/internal/domain"
	"review-balancer/internal/metrics"
)

type reviewerRepository interface {
	ListReviewers(ctx context.Context) ([]domain.Reviewer, error)
}

type applicationRepository interface {
	ListPending(ctx context.Context, limit int) ([]domain.Application, error)
	UpdateStatus(ctx context.Context, applicationID int64, status domain.ApplicationStatus) error
}

type assignmentRepository interface {
	ListActive(ctx context.Context) ([]domain.Assignment, error)
	InsertProposed(ctx context.Context, proposed []domain.ProposedAssignment) error
}

type conflictRepository interface {
	ListConflicts(ctx context.Context) ([]domain.Conflict, error)
}

type allocator interface {
	Allocate(snap domain.Snapshot) (domain.Plan, error)
}

// Options controls one planning run.
type Options struct {
	// Limit caps how many pending applications are considered; zero or
	// negative means the whole queue.
	Limit int
	// Apply persists the plan. Without it the run is a dry run.
	Apply bool
}

// Service plans review assignments over a consistent storage snapshot.
type Service struct {
	reviewerRepo    reviewerRepository
	applicationRepo applicationRepository
	assignmentRepo  assignmentRepository
	conflictRepo    conflictRepository
	transactor      db.Transactioner
	allocator       allocator
	log             *zap.Logger
}

// NewService creates a new planner service
func NewService(
	reviewerRepo reviewerRepository,
	applicationRepo applicationRepository,
	assignmentRepo assignmentRepository,
	conflictRepo conflictRepository,
	transactor db.Transactioner,
	alloc allocator,
	log *zap.Logger,
) *Service {
	return &Service{
		reviewerRepo:    reviewerRepo,
		applicationRepo: applicationRepo,
		assignmentRepo:  assignmentRepo,
		conflictRepo:    conflictRepo,
		transactor:      transactor,
		allocator:       alloc,
		log:             log,
	}
}

// Plan builds an assignment plan for the pending queue. Snapshot load, plan
// persistence and the in_review transitions all happen in one transaction,
// so a plan is applied against exactly the state it was computed from. A
// concurrent writer surfaces as ErrStaleSnapshot; the caller re-runs.
func (s *Service) Plan(ctx context.Context, opts Options) (domain.Plan, error) {
	start := time.Now()
	defer metrics.ObserveRun("plan", start)

	var plan domain.Plan
	err := s.transactor.Do(ctx, func(txCtx context.Context) error {
		snap, err := s.loadSnapshot(txCtx, opts.Limit)
		if err != nil {
			return err
		}

		plan, err = s.allocator.Allocate(snap)
		if err != nil {
			return err
		}

		if !opts.Apply {
			return nil
		}
		return s.apply(txCtx, plan)
	})
	if err != nil {
		if domain.GetErrorCode(err) == domain.ErrorCodeStaleSnapshot {
			metrics.StaleSnapshotRetry()
		}
		return domain.Plan{}, err
	}

	metrics.PlanProduced(len(plan.Assignments), len(plan.Unassignable), plan.UnassignableSlots)
	s.log.Info("plan run finished",
		zap.Int("proposed", len(plan.Assignments)),
		zap.Int("unassignable", len(plan.Unassignable)),
		zap.Int("unassignable_slots", plan.UnassignableSlots),
		zap.Int("ready_for_review", len(plan.ReadyForReview)),
		zap.Bool("applied", opts.Apply),
	)
	return plan, nil
}

func (s *Service) loadSnapshot(ctx context.Context, limit int) (domain.Snapshot, error) {
	reviewers, err := s.reviewerRepo.ListReviewers(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	applications, err := s.applicationRepo.ListPending(ctx, limit)
	if err != nil {
		return domain.Snapshot{}, err
	}
	assignments, err := s.assignmentRepo.ListActive(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	conflicts, err := s.conflictRepo.ListConflicts(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return domain.Snapshot{
		Reviewers:    reviewers,
		Applications: applications,
		Assignments:  assignments,
		Conflicts:    conflicts,
	}, nil
}

func (s *Service) apply(ctx context.Context, plan domain.Plan) error {
	if err := s.assignmentRepo.InsertProposed(ctx, plan.Assignments); err != nil {
		return err
	}
	for _, appID := range plan.ReadyForReview {
		if err := s.applicationRepo.UpdateStatus(ctx, appID, domain.ApplicationStatusInReview); err != nil {
			return err
		}
	}
	return nil
}
