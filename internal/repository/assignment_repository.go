package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"review-balancer/internal/db"
	"review-balancer/internal/domain"
	"review-balancer/internal/report"
)

type assignmentRepository struct {
	BaseRepository
}

func NewAssignmentRepository(cm db.EngineFactory) AssignmentRepository {
	return &assignmentRepository{
		BaseRepository: NewBaseRepository(cm),
	}
}

// InsertProposed persists a plan's proposed assignments. A unique violation
// on the active-pair index means another planner won the race on the same
// snapshot; callers retry with a fresh snapshot.
func (r *assignmentRepository) InsertProposed(ctx context.Context, proposed []domain.ProposedAssignment) error {
	query := `
		INSERT INTO assignments (application_id, reviewer_id, status, score, assigned_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	for _, pa := range proposed {
		_, err := r.Engine(ctx).Exec(ctx, query,
			pa.ApplicationID, pa.ReviewerID, domain.AssignmentStatusAssigned, pa.Score)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("assignment for application %d reviewer %d already exists: %w",
					pa.ApplicationID, pa.ReviewerID, domain.ErrStaleSnapshot)
			}
			return fmt.Errorf("failed to insert assignment: %w", err)
		}
	}
	return nil
}

// DeleteActive removes the active assignment for the pair. Used by the
// rebalancer when relocating work; completed assignments are never deleted.
func (r *assignmentRepository) DeleteActive(ctx context.Context, applicationID, reviewerID int64) error {
	query := `
		DELETE FROM assignments
		WHERE application_id = $1 AND reviewer_id = $2 AND status <> 'completed'
	`
	tag, err := r.Engine(ctx).Exec(ctx, query, applicationID, reviewerID)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no active assignment for application %d reviewer %d: %w",
			applicationID, reviewerID, domain.ErrStaleSnapshot)
	}
	return nil
}

func (r *assignmentRepository) GetAssignment(ctx context.Context, assignmentID int64) (domain.Assignment, error) {
	query := `
		SELECT id, application_id, reviewer_id, status, score, assigned_at, completed_at
		FROM assignments
		WHERE id = $1
	`
	var assignment domain.Assignment
	err := pgxscan.Get(ctx, r.Engine(ctx), &assignment, query, assignmentID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return domain.Assignment{}, domain.ErrNotFound
		}
		return domain.Assignment{}, fmt.Errorf("failed to get assignment: %w", err)
	}
	return assignment, nil
}

func (r *assignmentRepository) CountForApplication(ctx context.Context, applicationID int64) (int, int, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status <> 'completed') AS active,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed
		FROM assignments
		WHERE application_id = $1
	`
	var counts struct {
		Active    int
		Completed int
	}
	if err := pgxscan.Get(ctx, r.Engine(ctx), &counts, query, applicationID); err != nil {
		return 0, 0, fmt.Errorf("failed to count assignments: %w", err)
	}
	return counts.Active, counts.Completed, nil
}

func (r *assignmentRepository) CompleteAssignment(ctx context.Context, assignmentID int64) error {
	query := `
		UPDATE assignments
		SET status = 'completed', completed_at = NOW()
		WHERE id = $1 AND status <> 'completed'
	`
	tag, err := r.Engine(ctx).Exec(ctx, query, assignmentID)
	if err != nil {
		return fmt.Errorf("failed to complete assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *assignmentRepository) ListActive(ctx context.Context) ([]domain.Assignment, error) {
	query := `
		SELECT id, application_id, reviewer_id, status, score, assigned_at, completed_at
		FROM assignments
		WHERE status <> 'completed'
		ORDER BY id
	`
	var assignments []domain.Assignment
	if err := pgxscan.Select(ctx, r.Engine(ctx), &assignments, query); err != nil {
		return nil, fmt.Errorf("failed to list active assignments: %w", err)
	}
	return assignments, nil
}

func (r *assignmentRepository) ListBacklog(ctx context.Context) ([]report.BacklogAssignment, error) {
	query := `
		SELECT r.name AS reviewer, a.applicant_name AS applicant, a.program, s.assigned_at
		FROM assignments s
		JOIN reviewers r ON r.id = s.reviewer_id
		JOIN applications a ON a.id = s.application_id
		WHERE s.status <> 'completed'
		ORDER BY s.assigned_at ASC, s.id ASC
	`
	var backlog []report.BacklogAssignment
	if err := pgxscan.Select(ctx, r.Engine(ctx), &backlog, query); err != nil {
		return nil, fmt.Errorf("failed to list backlog: %w", err)
	}
	return backlog, nil
}

func (r *assignmentRepository) ListCompletedSince(ctx context.Context, since time.Time) ([]report.CompletedReview, error) {
	query := `
		SELECT r.name AS reviewer, a.program, s.assigned_at, s.completed_at
		FROM assignments s
		JOIN reviewers r ON r.id = s.reviewer_id
		JOIN applications a ON a.id = s.application_id
		WHERE s.status = 'completed' AND s.completed_at >= $1
		ORDER BY s.completed_at ASC, s.id ASC
	`
	var completed []report.CompletedReview
	if err := pgxscan.Select(ctx, r.Engine(ctx), &completed, query, since); err != nil {
		return nil, fmt.Errorf("failed to list completed reviews: %w", err)
	}
	return completed, nil
}
