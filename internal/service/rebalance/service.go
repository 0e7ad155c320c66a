package rebalance

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
	ListOpen(ctx context.Context) ([]domain.Application, error)
}

type assignmentRepository interface {
	ListActive(ctx context.Context) ([]domain.Assignment, error)
	InsertProposed(ctx context.Context, proposed []domain.ProposedAssignment) error
	DeleteActive(ctx context.Context, applicationID, reviewerID int64) error
}

type conflictRepository interface {
	ListConflicts(ctx context.Context) ([]domain.Conflict, error)
}

type rebalancer interface {
	Rebalance(snap domain.Snapshot, maxMoves int) ([]domain.Move, error)
}

// Options controls one rebalance run.
type Options struct {
	// MaxMoves caps the number of proposed moves; zero or negative falls
	// back to the configured default.
	MaxMoves int
	// Apply persists the moves. Without it the run is a dry run.
	Apply bool
}

// Service proposes and applies load-correcting assignment moves.
type Service struct {
	reviewerRepo    reviewerRepository
	applicationRepo applicationRepository
	assignmentRepo  assignmentRepository
	conflictRepo    conflictRepository
	transactor      db.Transactioner
	rebalancer      rebalancer
	defaultMoves    int
	log             *zap.Logger
}

// NewService creates a new rebalance service
func NewService(
	reviewerRepo reviewerRepository,
	applicationRepo applicationRepository,
	assignmentRepo assignmentRepository,
	conflictRepo conflictRepository,
	transactor db.Transactioner,
	reb rebalancer,
	defaultMoves int,
	log *zap.Logger,
) *Service {
	return &Service{
		reviewerRepo:    reviewerRepo,
		applicationRepo: applicationRepo,
		assignmentRepo:  assignmentRepo,
		conflictRepo:    conflictRepo,
		transactor:      transactor,
		rebalancer:      reb,
		defaultMoves:    defaultMoves,
		log:             log,
	}
}

// Rebalance proposes moves over a consistent snapshot and, when applying,
// relocates each assignment by deleting the source row and inserting the
// destination row in the same transaction. Completed reviews are never
// rewritten. A concurrent writer surfaces as ErrStaleSnapshot.
func (s *Service) Rebalance(ctx context.Context, opts Options) ([]domain.Move, error) {
	start := time.Now()
	defer metrics.ObserveRun("rebalance", start)

	maxMoves := opts.MaxMoves
	if maxMoves <= 0 {
		maxMoves = s.defaultMoves
	}

	var moves []domain.Move
	err := s.transactor.Do(ctx, func(txCtx context.Context) error {
		snap, err := s.loadSnapshot(txCtx)
		if err != nil {
			return err
		}

		moves, err = s.rebalancer.Rebalance(snap, maxMoves)
		if err != nil {
			return err
		}

		if !opts.Apply {
			return nil
		}
		return s.apply(txCtx, moves)
	})
	if err != nil {
		if domain.GetErrorCode(err) == domain.ErrorCodeStaleSnapshot {
			metrics.StaleSnapshotRetry()
		}
		return nil, err
	}

	metrics.MovesProposed(len(moves))
	s.log.Info("rebalance run finished",
		zap.Int("moves", len(moves)),
		zap.Bool("applied", opts.Apply),
	)
	return moves, nil
}

func (s *Service) loadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	reviewers, err := s.reviewerRepo.ListReviewers(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	applications, err := s.applicationRepo.ListOpen(ctx)
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

func (s *Service) apply(ctx context.Context, moves []domain.Move) error {
	for _, m := range moves {
		if err := s.assignmentRepo.DeleteActive(ctx, m.ApplicationID, m.FromReviewerID); err != nil {
			return err
		}
		proposed := []domain.ProposedAssignment{{
			ApplicationID: m.ApplicationID,
			ReviewerID:    m.ToReviewerID,
			Score:         m.Score,
		}}
		if err := s.assignmentRepo.InsertProposed(ctx, proposed); err != nil {
			return err
		}
	}
	return nil
}
