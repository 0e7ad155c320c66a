package repository

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"review-balancer/internal/db"
	"review-balancer/internal/domain"
)

type reviewerRepository struct {
	BaseRepository
}

func NewReviewerRepository(cm db.EngineFactory) ReviewerRepository {
	return &reviewerRepository{
		BaseRepository: NewBaseRepository(cm),
	}
}

func (r *reviewerRepository) CreateReviewer(ctx context.Context, reviewer domain.Reviewer) (int64, error) {
	query := `
		INSERT INTO reviewers (name, email, max_load, expertise_tags, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var id int64
	err := r.Engine(ctx).QueryRow(ctx, query,
		reviewer.Name, reviewer.Email, reviewer.MaxLoad, reviewer.Expertise,
		reviewer.Active, reviewer.CreatedAt, reviewer.UpdatedAt).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrReviewerExists
		}
		return 0, fmt.Errorf("failed to create reviewer: %w", err)
	}
	return id, nil
}

func (r *reviewerRepository) GetReviewer(ctx context.Context, reviewerID int64) (domain.Reviewer, error) {
	query := `
		SELECT id, name, email, max_load, expertise_tags AS expertise, active, created_at, updated_at
		FROM reviewers
		WHERE id = $1
	`
	var reviewer domain.Reviewer
	err := pgxscan.Get(ctx, r.Engine(ctx), &reviewer, query, reviewerID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return domain.Reviewer{}, domain.ErrNotFound
		}
		return domain.Reviewer{}, fmt.Errorf("failed to get reviewer: %w", err)
	}
	return reviewer, nil
}

func (r *reviewerRepository) ListReviewers(ctx context.Context) ([]domain.Reviewer, error) {
	query := `
		SELECT id, name, email, max_load, expertise_tags AS expertise, active, created_at, updated_at
		FROM reviewers
		ORDER BY id
	`
	var reviewers []domain.Reviewer
	if err := pgxscan.Select(ctx, r.Engine(ctx), &reviewers, query); err != nil {
		return nil, fmt.Errorf("failed to list reviewers: %w", err)
	}
	return reviewers, nil
}

func (r *reviewerRepository) SetActive(ctx context.Context, reviewerID int64, active bool) error {
	query := `
		UPDATE reviewers
		SET active = $2, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.Engine(ctx).Exec(ctx, query, reviewerID, active)
	if err != nil {
		return fmt.Errorf("failed to update reviewer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
