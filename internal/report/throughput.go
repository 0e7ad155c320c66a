package report

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// CompletedReview is one finished assignment with its timing.
type CompletedReview struct {
	Reviewer    string
	Program     string
	AssignedAt  time.Time
	CompletedAt time.Time
}

// ThroughputReviewer is the per-reviewer completion rollup.
type ThroughputReviewer struct {
	Reviewer     string
	Completed    int
	AvgCycleDays float64
}

// ThroughputReport summarizes review completions over a trailing window.
type ThroughputReport struct {
	TotalCompleted int
	AvgCycleDays   float64
	MinCycleDays   float64
	MaxCycleDays   float64
	DailyCounts    map[string]int
	ReviewerStats  []ThroughputReviewer
}

// CycleInDays returns the fractional days an assignment took to complete.
func CycleInDays(assignedAt, completedAt time.Time) float64 {
	return completedAt.Sub(assignedAt).Hours() / 24
}

// BuildThroughputReport rolls up completions from the last `days` days.
// Completions exactly at the cutoff are included; older ones are not.
func BuildThroughputReport(reviews []CompletedReview, now time.Time, days int) ThroughputReport {
	cutoff := now.AddDate(0, 0, -days)

	type reviewerAcc struct {
		total    int
		cycleSum float64
	}
	perReviewer := make(map[string]*reviewerAcc)
	daily := make(map[string]int)
	var cycles []float64

	for _, r := range reviews {
		if r.CompletedAt.Before(cutoff) {
			continue
		}
		cycle := CycleInDays(r.AssignedAt, r.CompletedAt)
		cycles = append(cycles, cycle)
		daily[r.CompletedAt.UTC().Format("2006-01-02")]++

		acc := perReviewer[r.Reviewer]
		if acc == nil {
			acc = &reviewerAcc{}
			perReviewer[r.Reviewer] = acc
		}
		acc.total++
		acc.cycleSum += cycle
	}

	stats := make([]ThroughputReviewer, 0, len(perReviewer))
	for reviewer, acc := range perReviewer {
		stats = append(stats, ThroughputReviewer{
			Reviewer:     reviewer,
			Completed:    acc.total,
			AvgCycleDays: acc.cycleSum / float64(acc.total),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Completed != stats[j].Completed {
			return stats[i].Completed > stats[j].Completed
		}
		return stats[i].Reviewer < stats[j].Reviewer
	})

	out := ThroughputReport{
		TotalCompleted: len(cycles),
		DailyCounts:    daily,
		ReviewerStats:  stats,
	}
	if len(cycles) > 0 {
		out.AvgCycleDays = stat.Mean(cycles, nil)
		out.MinCycleDays = floats.Min(cycles)
		out.MaxCycleDays = floats.Max(cycles)
	}
	return out
}
