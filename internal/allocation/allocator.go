package allocation

import (
	"sort"

	"go.uber.org/zap"

	"review-balancer/internal/domain"
)

// Allocator builds assignment plans with a greedy, explainable heuristic. It
// deliberately does not solve a global optimal matching; an optimal solver
// could replace it behind the same Allocate contract without changing
// callers.
type Allocator struct {
	scorer Scorer
	logger *zap.Logger
}

// NewAllocator creates an allocator with the given scoring policy.
func NewAllocator(cfg Config, logger *zap.Logger) *Allocator {
	return &Allocator{scorer: NewScorer(cfg), logger: logger}
}

// Allocate produces an ordered assignment plan for the snapshot's pending
// applications. For a fixed snapshot the output is identical across runs:
// applications are processed by priority descending then submission time
// ascending, and score ties are broken by reviewer id ascending.
func (a *Allocator) Allocate(snap domain.Snapshot) (domain.Plan, error) {
	if err := snap.Validate(); err != nil {
		return domain.Plan{}, err
	}

	apps := pendingByUrgency(snap.Applications)
	reviewers := activeByID(snap.Reviewers)
	tracker := NewCapacityTracker(snap.Reviewers, snap.ActiveLoads())
	conflicts := snap.ConflictSet()

	var plan domain.Plan
	for _, app := range apps {
		assigned := snap.AssignedReviewers(app.ID)
		needed := app.NeedsReviews - len(assigned)
		if needed <= 0 {
			continue
		}

		filled := 0
		for slot := 0; slot < needed; slot++ {
			reviewerID, score, ok := a.pickReviewer(app, reviewers, tracker, conflicts, assigned)
			if !ok {
				// No eligible reviewer; the remaining slots cannot do
				// better, so the application stays partially assigned.
				break
			}
			if err := tracker.Reserve(reviewerID); err != nil {
				break
			}
			assigned[reviewerID] = struct{}{}
			plan.Assignments = append(plan.Assignments, domain.ProposedAssignment{
				ApplicationID: app.ID,
				ReviewerID:    reviewerID,
				Score:         score,
			})
			filled++
		}

		if filled < needed {
			plan.Unassignable = append(plan.Unassignable, app.ID)
			plan.UnassignableSlots += needed - filled
		} else {
			plan.ReadyForReview = append(plan.ReadyForReview, app.ID)
		}
	}

	a.logger.Info("allocation run complete",
		zap.Int("pending", len(apps)),
		zap.Int("proposed", len(plan.Assignments)),
		zap.Int("unassignable", len(plan.Unassignable)),
		zap.Int("unassignable_slots", plan.UnassignableSlots),
		zap.Int("ready_for_review", len(plan.ReadyForReview)),
	)
	return plan, nil
}

// pickReviewer selects the highest-scoring eligible reviewer for one slot.
// Reviewers are walked in ascending id order so equal scores resolve to the
// lowest id.
func (a *Allocator) pickReviewer(
	app domain.Application,
	reviewers []domain.Reviewer,
	tracker *CapacityTracker,
	conflicts domain.ConflictSet,
	assigned map[int64]struct{},
) (int64, float64, bool) {
	var (
		bestID    int64
		bestScore float64
		found     bool
	)
	for _, r := range reviewers {
		if _, taken := assigned[r.ID]; taken {
			continue
		}
		score, eligible := a.scorer.Score(r, app, tracker.Load(r.ID), conflicts)
		if !eligible {
			continue
		}
		if !found || score > bestScore {
			found = true
			bestID = r.ID
			bestScore = score
		}
	}
	return bestID, bestScore, found
}

// pendingByUrgency returns pending applications ordered by priority
// descending, then submission time ascending, then id ascending.
func pendingByUrgency(apps []domain.Application) []domain.Application {
	pending := make([]domain.Application, 0, len(apps))
	for _, app := range apps {
		if app.IsPending() {
			pending = append(pending, app)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if pending[i].Priority != pending[j].Priority {
			return pending[i].Priority > pending[j].Priority
		}
		if !pending[i].SubmittedAt.Equal(pending[j].SubmittedAt) {
			return pending[i].SubmittedAt.Before(pending[j].SubmittedAt)
		}
		return pending[i].ID < pending[j].ID
	})
	return pending
}

func activeByID(reviewers []domain.Reviewer) []domain.Reviewer {
	active := make([]domain.Reviewer, 0, len(reviewers))
	for _, r := range reviewers {
		if r.Active {
			active = append(active, r)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	return active
}
