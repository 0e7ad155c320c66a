package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"review-balancer/internal/db"
	"review-balancer/internal/domain"
	"review-balancer/internal/report"
)

// ReviewerRepository defines methods for reviewer data access
type ReviewerRepository interface {
	CreateReviewer(ctx context.Context, reviewer domain.Reviewer) (int64, error)
	GetReviewer(ctx context.Context, reviewerID int64) (domain.Reviewer, error)
	ListReviewers(ctx context.Context) ([]domain.Reviewer, error)
	SetActive(ctx context.Context, reviewerID int64, active bool) error
}

// ApplicationRepository defines methods for application data access
type ApplicationRepository interface {
	CreateApplication(ctx context.Context, app domain.Application) (int64, error)
	GetApplication(ctx context.Context, applicationID int64) (domain.Application, error)
	ListPending(ctx context.Context, limit int) ([]domain.Application, error)
	ListOpen(ctx context.Context) ([]domain.Application, error)
	UpdateStatus(ctx context.Context, applicationID int64, status domain.ApplicationStatus) error
	CountByStatus(ctx context.Context) (map[domain.ApplicationStatus]int, error)
}

// AssignmentRepository defines methods for assignment data access
type AssignmentRepository interface {
	InsertProposed(ctx context.Context, proposed []domain.ProposedAssignment) error
	DeleteActive(ctx context.Context, applicationID, reviewerID int64) error
	GetAssignment(ctx context.Context, assignmentID int64) (domain.Assignment, error)
	CompleteAssignment(ctx context.Context, assignmentID int64) error
	CountForApplication(ctx context.Context, applicationID int64) (active, completed int, err error)
	ListActive(ctx context.Context) ([]domain.Assignment, error)
	ListBacklog(ctx context.Context) ([]report.BacklogAssignment, error)
	ListCompletedSince(ctx context.Context, since time.Time) ([]report.CompletedReview, error)
}

// ConflictRepository defines methods for conflict data access
type ConflictRepository interface {
	AddConflict(ctx context.Context, conflict domain.Conflict) error
	ListConflicts(ctx context.Context) ([]domain.Conflict, error)
}

type BaseRepository struct {
	cm db.EngineFactory
}

func NewBaseRepository(cm db.EngineFactory) BaseRepository {
	return BaseRepository{cm: cm}
}

func (r *BaseRepository) Engine(ctx context.Context) db.Engine {
	return r.cm.Get(ctx)
}

// isUniqueViolation reports whether the error is a postgres unique
// constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
