package allocation

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"review-balancer/internal/domain"
)

// Rebalancer proposes a bounded set of corrective moves once reviewer load
// drifts. Moves relocate active assignments from overloaded reviewers to
// underloaded ones, but only when the destination is a strictly better fit.
type Rebalancer struct {
	scorer         Scorer
	drift          float64
	minImprovement float64
	logger         *zap.Logger
}

// NewRebalancer creates a rebalancer with the given policy.
func NewRebalancer(cfg Config, logger *zap.Logger) *Rebalancer {
	return &Rebalancer{
		scorer:         NewScorer(cfg),
		drift:          cfg.DriftThreshold,
		minImprovement: cfg.MinImprovement,
		logger:         logger,
	}
}

// source is one overloaded reviewer with its move candidates, worst fit
// first.
type source struct {
	reviewer   domain.Reviewer
	candidates []domain.Assignment
	next       int
}

// Rebalance proposes at most maxMoves relocations. Overloaded reviewers are
// relieved round-robin so no single reviewer absorbs all the relief, and no
// move may push its destination above mean utilization plus the drift
// threshold. Completed assignments are never touched.
func (b *Rebalancer) Rebalance(snap domain.Snapshot, maxMoves int) ([]domain.Move, error) {
	if maxMoves < 1 {
		return nil, fmt.Errorf("max moves must be at least 1: %w", domain.ErrInvalidArgument)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	loads := snap.ActiveLoads()
	reviewers := rateableReviewers(snap.Reviewers)
	if len(reviewers) == 0 {
		return nil, nil
	}

	utils := make([]float64, len(reviewers))
	for i, r := range reviewers {
		utils[i] = utilization(loads[r.ID], r.MaxLoad)
	}
	mean := stat.Mean(utils, nil)

	sources := b.overloadedSources(snap, reviewers, loads, mean)
	targets := underloaded(reviewers, loads, mean, b.drift)
	if len(sources) == 0 || len(targets) == 0 {
		return nil, nil
	}

	apps := make(map[int64]domain.Application, len(snap.Applications))
	for _, app := range snap.Applications {
		apps[app.ID] = app
	}
	conflicts := snap.ConflictSet()
	holders := activeHolders(snap.Assignments)

	var moves []domain.Move
	for len(moves) < maxMoves {
		progressed := false
		for i := range sources {
			if len(moves) >= maxMoves {
				break
			}
			move, ok := b.nextMove(&sources[i], targets, apps, conflicts, holders, loads, mean)
			if !ok {
				continue
			}
			moves = append(moves, move)
			progressed = true
		}
		if !progressed {
			break
		}
	}

	if len(moves) > 0 {
		after := make([]float64, len(reviewers))
		for i, r := range reviewers {
			after[i] = utilization(loads[r.ID], r.MaxLoad)
		}
		b.logger.Info("rebalance run complete",
			zap.Int("moves", len(moves)),
			zap.Float64("mean_utilization", mean),
			zap.Float64("variance_before", stat.Variance(utils, nil)),
			zap.Float64("variance_after", stat.Variance(after, nil)),
		)
	}
	return moves, nil
}

// nextMove advances the source's candidate cursor until a candidate with an
// eligible destination is found. Destinations only gain load as the run
// progresses, so skipped candidates never become eligible again.
func (b *Rebalancer) nextMove(
	src *source,
	targets []domain.Reviewer,
	apps map[int64]domain.Application,
	conflicts domain.ConflictSet,
	holders map[int64]map[int64]struct{},
	loads map[int64]int,
	mean float64,
) (domain.Move, bool) {
	// A source relieved back under the drift band needs no further moves.
	if utilization(loads[src.reviewer.ID], src.reviewer.MaxLoad) <= mean+b.drift {
		return domain.Move{}, false
	}

	for ; src.next < len(src.candidates); src.next++ {
		cand := src.candidates[src.next]
		app, ok := apps[cand.ApplicationID]
		if !ok {
			continue
		}
		dest, score, ok := b.bestDestination(cand, app, targets, conflicts, holders, loads, mean)
		if !ok {
			continue
		}

		loads[src.reviewer.ID]--
		loads[dest]++
		delete(holders[app.ID], src.reviewer.ID)
		holders[app.ID][dest] = struct{}{}

		src.next++
		return domain.Move{
			ApplicationID:  app.ID,
			FromReviewerID: src.reviewer.ID,
			ToReviewerID:   dest,
			Score:          score,
		}, true
	}
	return domain.Move{}, false
}

// bestDestination picks the underloaded reviewer with the highest recomputed
// fit for the candidate's application. The destination must beat the current
// fit by more than the improvement margin and must stay at or below mean
// utilization plus the drift threshold after the move.
func (b *Rebalancer) bestDestination(
	cand domain.Assignment,
	app domain.Application,
	targets []domain.Reviewer,
	conflicts domain.ConflictSet,
	holders map[int64]map[int64]struct{},
	loads map[int64]int,
	mean float64,
) (int64, float64, bool) {
	var (
		bestID    int64
		bestScore float64
		found     bool
	)
	for _, t := range targets {
		if t.ID == cand.ReviewerID {
			continue
		}
		if _, holds := holders[app.ID][t.ID]; holds {
			continue
		}
		score, eligible := b.scorer.Score(t, app, loads[t.ID], conflicts)
		if !eligible {
			continue
		}
		if score-cand.Score <= b.minImprovement {
			continue
		}
		if utilization(loads[t.ID]+1, t.MaxLoad) > mean+b.drift {
			continue
		}
		if !found || score > bestScore {
			found = true
			bestID = t.ID
			bestScore = score
		}
	}
	return bestID, bestScore, found
}

// overloadedSources collects reviewers above mean+drift in descending
// utilization order, each with its active assignments ordered worst fit
// first (the worst fit has the least to lose from relocation).
func (b *Rebalancer) overloadedSources(
	snap domain.Snapshot,
	reviewers []domain.Reviewer,
	loads map[int64]int,
	mean float64,
) []source {
	byReviewer := make(map[int64][]domain.Assignment)
	for _, a := range snap.Assignments {
		if a.IsActive() {
			byReviewer[a.ReviewerID] = append(byReviewer[a.ReviewerID], a)
		}
	}

	var sources []source
	for _, r := range reviewers {
		if utilization(loads[r.ID], r.MaxLoad) <= mean+b.drift {
			continue
		}
		candidates := byReviewer[r.ID]
		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].Score != candidates[j].Score {
				return candidates[i].Score < candidates[j].Score
			}
			return candidates[i].ID < candidates[j].ID
		})
		sources = append(sources, source{reviewer: r, candidates: candidates})
	}
	sort.SliceStable(sources, func(i, j int) bool {
		ui := utilization(loads[sources[i].reviewer.ID], sources[i].reviewer.MaxLoad)
		uj := utilization(loads[sources[j].reviewer.ID], sources[j].reviewer.MaxLoad)
		if ui != uj {
			return ui > uj
		}
		return sources[i].reviewer.ID < sources[j].reviewer.ID
	})
	return sources
}

// underloaded returns active reviewers strictly below mean-drift, in
// ascending id order for deterministic traversal.
func underloaded(reviewers []domain.Reviewer, loads map[int64]int, mean, drift float64) []domain.Reviewer {
	var targets []domain.Reviewer
	for _, r := range reviewers {
		if utilization(loads[r.ID], r.MaxLoad) < mean-drift {
			targets = append(targets, r)
		}
	}
	return targets
}

// rateableReviewers returns active reviewers that can hold work at all, in
// ascending id order.
func rateableReviewers(reviewers []domain.Reviewer) []domain.Reviewer {
	rateable := make([]domain.Reviewer, 0, len(reviewers))
	for _, r := range reviewers {
		if r.Active && r.MaxLoad > 0 {
			rateable = append(rateable, r)
		}
	}
	sort.Slice(rateable, func(i, j int) bool { return rateable[i].ID < rateable[j].ID })
	return rateable
}

// activeHolders maps each application to the reviewers holding an active
// assignment for it.
func activeHolders(assignments []domain.Assignment) map[int64]map[int64]struct{} {
	holders := make(map[int64]map[int64]struct{})
	for _, a := range assignments {
		if !a.IsActive() {
			continue
		}
		if holders[a.ApplicationID] == nil {
			holders[a.ApplicationID] = make(map[int64]struct{})
		}
		holders[a.ApplicationID][a.ReviewerID] = struct{}{}
	}
	return holders
}

func utilization(load, maxLoad int) float64 {
	if maxLoad <= 0 {
		return 0
	}
	return float64(load) / float64(maxLoad)
}
