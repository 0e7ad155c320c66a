package allocation

import "review-balancer/internal/domain"

// Scorer computes a compatibility score for a (reviewer, application) pair.
// Pure and deterministic: the same inputs always produce the same score.
type Scorer struct {
	overlapWeight float64
	loadWeight    float64
}

// NewScorer creates a scorer with the configured weights.
func NewScorer(cfg Config) Scorer {
	return Scorer{overlapWeight: cfg.OverlapWeight, loadWeight: cfg.LoadWeight}
}

// Score returns the fit score in [0,1] for the pair given the reviewer's
// current active load. The second return value is false when the reviewer is
// not a candidate at all: inactive, without remaining capacity, or barred by
// a conflict. These are hard exclusions, never soft penalties.
func (s Scorer) Score(r domain.Reviewer, app domain.Application, load int, conflicts domain.ConflictSet) (float64, bool) {
	if !r.Active {
		return 0, false
	}
	if conflicts.Conflicted(r.ID, app.ID) {
		return 0, false
	}
	remaining := r.MaxLoad - load
	if remaining <= 0 {
		return 0, false
	}

	overlap := tagOverlap(r.Expertise, app.Topics)
	maxLoad := r.MaxLoad
	if maxLoad < 1 {
		maxLoad = 1
	}
	pressure := float64(remaining) / float64(maxLoad)

	return clamp01(s.overlapWeight*overlap + s.loadWeight*pressure), true
}

// tagOverlap measures how well the reviewer's expertise covers the
// application's topics, in [0,1].
func tagOverlap(expertise, topics []string) float64 {
	if len(topics) == 0 {
		return 0
	}
	tags := make(map[string]struct{}, len(expertise))
	for _, t := range expertise {
		tags[t] = struct{}{}
	}
	matches := 0
	for _, t := range topics {
		if _, ok := tags[t]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(topics))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
