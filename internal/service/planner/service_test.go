package planner

import (
	"context"
	"errors"
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
	apps          []domain.Application
	lastLimit     int
	statusUpdates map[int64]domain.ApplicationStatus
}

func newFakeApplicationRepo(apps ...domain.Application) *fakeApplicationRepo {
	return &fakeApplicationRepo{
		apps:          apps,
		statusUpdates: make(map[int64]domain.ApplicationStatus),
	}
}

func (r *fakeApplicationRepo) ListPending(ctx context.Context, limit int) ([]domain.Application, error) {
	r.lastLimit = limit
	if limit > 0 && limit < len(r.apps) {
		return r.apps[:limit], nil
	}
	return r.apps, nil
}

func (r *fakeApplicationRepo) UpdateStatus(ctx context.Context, applicationID int64, status domain.ApplicationStatus) error {
	r.statusUpdates[applicationID] = status
	return nil
}

type fakeAssignmentRepo struct {
	active    []domain.Assignment
	inserted  []domain.ProposedAssignment
	insertErr error
}

func (r *fakeAssignmentRepo) ListActive(ctx context.Context) ([]domain.Assignment, error) {
	return r.active, nil
}

func (r *fakeAssignmentRepo) InsertProposed(ctx context.Context, proposed []domain.ProposedAssignment) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, proposed...)
	return nil
}

type fakeConflictRepo struct {
	conflicts []domain.Conflict
}

func (r *fakeConflictRepo) ListConflicts(ctx context.Context) ([]domain.Conflict, error) {
	return r.conflicts, nil
}

type noopTransactor struct{}

func (noopTransactor) Do(ctx context.Context, f func(ctx context.Context) error) error {
	return f(ctx)
}

func pendingApp(id int64, priority int, topics ...string) domain.Application {
	return domain.Application{
		ID:            id,
		ApplicantName: "Applicant",
		Program:       "STEM Scholars",
		Priority:      priority,
		SubmittedAt:   time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Hour),
		Topics:        topics,
		Status:        domain.ApplicationStatusPending,
		NeedsReviews:  1,
	}
}

func newService(
	reviewers *fakeReviewerRepo,
	apps *fakeApplicationRepo,
	assignments *fakeAssignmentRepo,
	conflicts *fakeConflictRepo,
) *Service {
	cfg := allocation.Config{}
	cfg.SetDefaults()
	alloc := allocation.NewAllocator(cfg, zap.NewNop())
	return NewService(reviewers, apps, assignments, conflicts, noopTransactor{}, alloc, zap.NewNop())
}

func TestPlanDryRunPersistsNothing(t *testing.T) {
	reviewers := &fakeReviewerRepo{reviewers: []domain.Reviewer{
		{ID: 1, Name: "Amina", MaxLoad: 3, Expertise: []string{"stem"}, Active: true},
	}}
	apps := newFakeApplicationRepo(pendingApp(1, 0, "stem"))
	assignments := &fakeAssignmentRepo{}
	conflicts := &fakeConflictRepo{}

	service := newService(reviewers, apps, assignments, conflicts)

	plan, err := service.Plan(context.Background(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Assignments) != 1 {
		t.Fatalf("expected one proposed assignment, got %d", len(plan.Assignments))
	}
	if len(assignments.inserted) != 0 {
		t.Fatalf("dry run must not insert, got %d rows", len(assignments.inserted))
	}
	if len(apps.statusUpdates) != 0 {
		t.Fatalf("dry run must not update statuses, got %v", apps.statusUpdates)
	}
}

func TestPlanApplyPersistsPlanAndTransitions(t *testing.T) {
	reviewers := &fakeReviewerRepo{reviewers: []domain.Reviewer{
		{ID: 1, Name: "Amina", MaxLoad: 3, Expertise: []string{"stem"}, Active: true},
		{ID: 2, Name: "David", MaxLoad: 3, Expertise: []string{"arts"}, Active: true},
	}}
	apps := newFakeApplicationRepo(
		pendingApp(1, 2, "stem"),
		pendingApp(2, 1, "arts"),
	)
	assignments := &fakeAssignmentRepo{}
	conflicts := &fakeConflictRepo{}

	service := newService(reviewers, apps, assignments, conflicts)

	plan, err := service.Plan(context.Background(), Options{Apply: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assignments.inserted) != len(plan.Assignments) {
		t.Fatalf("expected %d inserted rows, got %d", len(plan.Assignments), len(assignments.inserted))
	}
	for _, appID := range plan.ReadyForReview {
		if apps.statusUpdates[appID] != domain.ApplicationStatusInReview {
			t.Fatalf("application %d not transitioned to in_review", appID)
		}
	}
	if len(apps.statusUpdates) != len(plan.ReadyForReview) {
		t.Fatalf("unexpected status updates: %v", apps.statusUpdates)
	}
}

func TestPlanForwardsLimit(t *testing.T) {
	reviewers := &fakeReviewerRepo{reviewers: []domain.Reviewer{
		{ID: 1, MaxLoad: 5, Active: true},
	}}
	apps := newFakeApplicationRepo(
		pendingApp(1, 0),
		pendingApp(2, 0),
		pendingApp(3, 0),
	)
	service := newService(reviewers, apps, &fakeAssignmentRepo{}, &fakeConflictRepo{})

	plan, err := service.Plan(context.Background(), Options{Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if apps.lastLimit != 2 {
		t.Fatalf("expected limit 2 to reach the repository, got %d", apps.lastLimit)
	}
	if got := len(plan.Assignments); got != 2 {
		t.Fatalf("expected 2 proposed assignments, got %d", got)
	}
}

func TestPlanStaleSnapshotSurfaces(t *testing.T) {
	reviewers := &fakeReviewerRepo{reviewers: []domain.Reviewer{
		{ID: 1, MaxLoad: 3, Expertise: []string{"stem"}, Active: true},
	}}
	apps := newFakeApplicationRepo(pendingApp(1, 0, "stem"))
	assignments := &fakeAssignmentRepo{insertErr: domain.ErrStaleSnapshot}

	service := newService(reviewers, apps, assignments, &fakeConflictRepo{})

	_, err := service.Plan(context.Background(), Options{Apply: true})
	if !errors.Is(err, domain.ErrStaleSnapshot) {
		t.Fatalf("expected ErrStaleSnapshot, got %v", err)
	}
}

func TestPlanConflictNeverAssigned(t *testing.T) {
	reviewers := &fakeReviewerRepo{reviewers: []domain.Reviewer{
		{ID: 1, MaxLoad: 3, Expertise: []string{"stem"}, Active: true},
	}}
	apps := newFakeApplicationRepo(pendingApp(1, 0, "stem"))
	conflicts := &fakeConflictRepo{conflicts: []domain.Conflict{
		{ReviewerID: 1, ApplicationID: 1, Reason: "former advisor"},
	}}

	service := newService(reviewers, apps, &fakeAssignmentRepo{}, conflicts)

	plan, err := service.Plan(context.Background(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Assignments) != 0 {
		t.Fatalf("conflicted pair must not be assigned, got %v", plan.Assignments)
	}
	if len(plan.Unassignable) != 1 || plan.Unassignable[0] != 1 {
		t.Fatalf("expected application 1 unassignable, got %v", plan.Unassignable)
	}
}
