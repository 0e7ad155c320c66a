package repository

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"review-balancer/internal/db"
	"review-balancer/internal/domain"
)

type applicationRepository struct {
	BaseRepository
}

func NewApplicationRepository(cm db.EngineFactory) ApplicationRepository {
	return &applicationRepository{
		BaseRepository: NewBaseRepository(cm),
	}
}

func (r *applicationRepository) CreateApplication(ctx context.Context, app domain.Application) (int64, error) {
	query := `
		INSERT INTO applications (applicant_name, program, priority, submitted_at, topic_tags, status, needs_reviews)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var id int64
	err := r.Engine(ctx).QueryRow(ctx, query,
		app.ApplicantName, app.Program, app.Priority, app.SubmittedAt,
		app.Topics, app.Status, app.NeedsReviews).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create application: %w", err)
	}
	return id, nil
}

func (r *applicationRepository) GetApplication(ctx context.Context, applicationID int64) (domain.Application, error) {
	query := `
		SELECT id, applicant_name, program, priority, submitted_at, topic_tags AS topics, status, needs_reviews
		FROM applications
		WHERE id = $1
	`
	var app domain.Application
	err := pgxscan.Get(ctx, r.Engine(ctx), &app, query, applicationID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return domain.Application{}, domain.ErrNotFound
		}
		return domain.Application{}, fmt.Errorf("failed to get application: %w", err)
	}
	return app, nil
}

// ListPending returns the pending queue in allocation order. A limit below
// one means no limit.
func (r *applicationRepository) ListPending(ctx context.Context, limit int) ([]domain.Application, error) {
	query := `
		SELECT id, applicant_name, program, priority, submitted_at, topic_tags AS topics, status, needs_reviews
		FROM applications
		WHERE status = 'pending'
		ORDER BY priority DESC, submitted_at ASC, id ASC
	`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}
	var apps []domain.Application
	if err := pgxscan.Select(ctx, r.Engine(ctx), &apps, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list pending applications: %w", err)
	}
	return apps, nil
}

// ListOpen returns every application that is not completed, whatever its
// queue position. Rebalancing needs the applications behind active
// assignments, not just the pending queue.
func (r *applicationRepository) ListOpen(ctx context.Context) ([]domain.Application, error) {
	query := `
		SELECT id, applicant_name, program, priority, submitted_at, topic_tags AS topics, status, needs_reviews
		FROM applications
		WHERE status <> 'completed'
		ORDER BY id
	`
	var apps []domain.Application
	if err := pgxscan.Select(ctx, r.Engine(ctx), &apps, query); err != nil {
		return nil, fmt.Errorf("failed to list open applications: %w", err)
	}
	return apps, nil
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, applicationID int64, status domain.ApplicationStatus) error {
	query := `
		UPDATE applications
		SET status = $2
		WHERE id = $1
	`
	tag, err := r.Engine(ctx).Exec(ctx, query, applicationID, status)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *applicationRepository) CountByStatus(ctx context.Context) (map[domain.ApplicationStatus]int, error) {
	query := `
		SELECT status, COUNT(*) AS count
		FROM applications
		GROUP BY status
		ORDER BY status
	`
	var rows []struct {
		Status domain.ApplicationStatus
		Count  int
	}
	if err := pgxscan.Select(ctx, r.Engine(ctx), &rows, query); err != nil {
		return nil, fmt.Errorf("failed to count applications by status: %w", err)
	}
	counts := make(map[domain.ApplicationStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
