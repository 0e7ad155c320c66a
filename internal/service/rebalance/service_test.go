package rebalance

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"review-balancer/internal/allocation"
	"review-balancer/internal/domain"
)

type fakeReviewerRepo struct {
	reviewers []domain.Reviewer
}

func (r *fakeReviewerRepo) ListReviewers(ctx context.Context) ([]domain.Reviewer, error) {
	return r.reviewers, nil
}

type fakeApplicationRepo struct {
	apps []domain.Application
}

func (r *fakeApplicationRepo) ListOpen(ctx context.Context) ([]domain.Application, error) {
	return r.apps, nil
}

type movePair struct {
	applicationID int64
	reviewerID    int64
}

type fakeAssignmentRepo struct {
	active   []domain.Assignment
	deleted  []movePair
	inserted []domain.ProposedAssignment
}

func (r *fakeAssignmentRepo) ListActive(ctx context.Context) ([]domain.Assignment, error) {
	return r.active, nil
}

func (r *fakeAssignmentRepo) InsertProposed(ctx context.Context, proposed []domain.ProposedAssignment) error {
	r.inserted = append(r.inserted, proposed...)
	return nil
}

func (r *fakeAssignmentRepo) DeleteActive(ctx context.Context, applicationID, reviewerID int64) error {
	r.deleted = append(r.deleted, movePair{applicationID: applicationID, reviewerID: reviewerID})
	return nil
}

type fakeConflictRepo struct{}

func (fakeConflictRepo) ListConflicts(ctx context.Context) ([]domain.Conflict, error) {
	return nil, nil
}

type noopTransactor struct{}

func (noopTransactor) Do(ctx context.Context, f func(ctx context.Context) error) error {
	return f(ctx)
}

// skewedFixture returns a snapshot with reviewer 1 saturated on a poor fit
// and reviewer 2 idle with matching expertise.
func skewedFixture() (*fakeReviewerRepo, *fakeApplicationRepo, *fakeAssignmentRepo) {
	assignedAt := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	reviewers := &fakeReviewerRepo{reviewers: []domain.Reviewer{
		{ID: 1, Name: "Amina", MaxLoad: 2, Expertise: []string{"stem"}, Active: true},
		{ID: 2, Name: "Lila", MaxLoad: 2, Expertise: []string{"arts"}, Active: true},
	}}
	apps := &fakeApplicationRepo{apps: []domain.Application{
		{ID: 10, Status: domain.ApplicationStatusInReview, Topics: []string{"arts"}, NeedsReviews: 1},
		{ID: 11, Status: domain.ApplicationStatusInReview, Topics: []string{"stem"}, NeedsReviews: 1},
	}}
	assignments := &fakeAssignmentRepo{active: []domain.Assignment{
		{ID: 1, ApplicationID: 10, ReviewerID: 1, Status: domain.AssignmentStatusInReview, Score: 0.2, AssignedAt: assignedAt},
		{ID: 2, ApplicationID: 11, ReviewerID: 1, Status: domain.AssignmentStatusInReview, Score: 0.9, AssignedAt: assignedAt},
	}}
	return reviewers, apps, assignments
}

func newService(
	reviewers *fakeReviewerRepo,
	apps *fakeApplicationRepo,
	assignments *fakeAssignmentRepo,
) *Service {
	cfg := allocation.Config{}
	cfg.SetDefaults()
	reb := allocation.NewRebalancer(cfg, zap.NewNop())
	return NewService(reviewers, apps, assignments, fakeConflictRepo{}, noopTransactor{}, reb, cfg.MaxMoves, zap.NewNop())
}

func TestRebalanceDryRunPersistsNothing(t *testing.T) {
	reviewers, apps, assignments := skewedFixture()
	service := newService(reviewers, apps, assignments)

	moves, err := service.Rebalance(context.Background(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(moves) != 1 {
		t.Fatalf("expected one move, got %d", len(moves))
	}
	if len(assignments.deleted) != 0 || len(assignments.inserted) != 0 {
		t.Fatalf("dry run must not mutate assignments")
	}
}

func TestRebalanceApplyRelocatesAssignments(t *testing.T) {
	reviewers, apps, assignments := skewedFixture()
	service := newService(reviewers, apps, assignments)

	moves, err := service.Rebalance(context.Background(), Options{Apply: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(moves) != 1 {
		t.Fatalf("expected one move, got %d", len(moves))
	}

	move := moves[0]
	if move.ApplicationID != 10 || move.FromReviewerID != 1 || move.ToReviewerID != 2 {
		t.Fatalf("unexpected move: %+v", move)
	}
	if len(assignments.deleted) != 1 {
		t.Fatalf("expected one deleted assignment, got %d", len(assignments.deleted))
	}
	if assignments.deleted[0] != (movePair{applicationID: 10, reviewerID: 1}) {
		t.Fatalf("deleted the wrong assignment: %+v", assignments.deleted[0])
	}
	if len(assignments.inserted) != 1 {
		t.Fatalf("expected one inserted assignment, got %d", len(assignments.inserted))
	}
	inserted := assignments.inserted[0]
	if inserted.ApplicationID != 10 || inserted.ReviewerID != 2 {
		t.Fatalf("inserted the wrong assignment: %+v", inserted)
	}
	if inserted.Score != move.Score {
		t.Fatalf("inserted score %v does not match move score %v", inserted.Score, move.Score)
	}
}

func TestRebalanceBalancedLoadIsANoop(t *testing.T) {
	assignedAt := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	reviewers := &fakeReviewerRepo{reviewers: []domain.Reviewer{
		{ID: 1, MaxLoad: 2, Expertise: []string{"stem"}, Active: true},
		{ID: 2, MaxLoad: 2, Expertise: []string{"arts"}, Active: true},
	}}
	apps := &fakeApplicationRepo{apps: []domain.Application{
		{ID: 10, Status: domain.ApplicationStatusInReview, Topics: []string{"stem"}, NeedsReviews: 1},
		{ID: 11, Status: domain.ApplicationStatusInReview, Topics: []string{"arts"}, NeedsReviews: 1},
	}}
	assignments := &fakeAssignmentRepo{active: []domain.Assignment{
		{ID: 1, ApplicationID: 10, ReviewerID: 1, Status: domain.AssignmentStatusInReview, Score: 1.0, AssignedAt: assignedAt},
		{ID: 2, ApplicationID: 11, ReviewerID: 2, Status: domain.AssignmentStatusInReview, Score: 1.0, AssignedAt: assignedAt},
	}}
	service := newService(reviewers, apps, assignments)

	moves, err := service.Rebalance(context.Background(), Options{Apply: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(moves) != 0 {
		t.Fatalf("expected no moves, got %v", moves)
	}
	if len(assignments.deleted) != 0 || len(assignments.inserted) != 0 {
		t.Fatalf("no-op run must not mutate assignments")
	}
}
