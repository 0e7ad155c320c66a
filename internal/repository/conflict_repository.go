package repository

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"review-balancer/internal/db"
	"review-balancer/internal/domain"
)

type conflictRepository struct {
	BaseRepository
}

func NewConflictRepository(cm db.EngineFactory) ConflictRepository {
	return &conflictRepository{
		BaseRepository: NewBaseRepository(cm),
	}
}

func (r *conflictRepository) AddConflict(ctx context.Context, conflict domain.Conflict) error {
	query := `
		INSERT INTO conflicts (reviewer_id, application_id, reason)
		VALUES ($1, $2, $3)
	`
	_, err := r.Engine(ctx).Exec(ctx, query,
		conflict.ReviewerID, conflict.ApplicationID, conflict.Reason)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflictExists
		}
		return fmt.Errorf("failed to add conflict: %w", err)
	}
	return nil
}

func (r *conflictRepository) ListConflicts(ctx context.Context) ([]domain.Conflict, error) {
	query := `
		SELECT reviewer_id, application_id, reason
		FROM conflicts
		ORDER BY reviewer_id, application_id
	`
	var conflicts []domain.Conflict
	if err := pgxscan.Select(ctx, r.Engine(ctx), &conflicts, query); err != nil {
		return nil, fmt.Errorf("failed to list conflicts: %w", err)
	}
	return conflicts, nil
}
