// Package report builds read-only operational rollups over assignment data.
// Builders are pure functions over explicit inputs so they can be fed from
// any storage snapshot and tested without a database.
package report

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Age buckets for backlog reporting, in days since assignment.
var backlogBuckets = []string{"0-2", "3-5", "6-10", "11+"}

// BacklogAssignment is one active assignment waiting on a review.
type BacklogAssignment struct {
	Reviewer   string
	Applicant  string
	Program    string
	AssignedAt time.Time
}

// AgedAssignment pairs an assignment with its computed age.
type AgedAssignment struct {
	BacklogAssignment
	AgeDays float64
}

// ReviewerBacklog is the per-reviewer backlog rollup.
type ReviewerBacklog struct {
	Reviewer      string
	Total         int
	Stale         int
	OldestAgeDays float64
}

// BacklogReport summarizes how long active assignments have been waiting.
type BacklogReport struct {
	Total             int
	Stale             int
	AvgAgeDays        float64
	OldestAgeDays     float64
	BucketCounts      map[string]int
	ReviewerStats     []ReviewerBacklog
	OldestAssignments []AgedAssignment
}

// AgeInDays returns the fractional age of an assignment at the given time.
func AgeInDays(assignedAt, now time.Time) float64 {
	return now.Sub(assignedAt).Hours() / 24
}

// BucketAge maps an age in days onto its backlog bucket.
func BucketAge(ageDays float64) string {
	switch {
	case ageDays < 3:
		return "0-2"
	case ageDays < 6:
		return "3-5"
	case ageDays < 11:
		return "6-10"
	default:
		return "11+"
	}
}

// BuildBacklogReport rolls active assignments up into age buckets and
// per-reviewer stats. Assignments at or past staleDays count as stale.
func BuildBacklogReport(assignments []BacklogAssignment, now time.Time, staleDays int) BacklogReport {
	buckets := make(map[string]int, len(backlogBuckets))
	for _, b := range backlogBuckets {
		buckets[b] = 0
	}

	type reviewerAcc struct {
		total  int
		stale  int
		oldest float64
	}
	perReviewer := make(map[string]*reviewerAcc)

	aged := make([]AgedAssignment, 0, len(assignments))
	ages := make([]float64, 0, len(assignments))
	stale := 0
	oldest := 0.0

	for _, a := range assignments {
		ageDays := AgeInDays(a.AssignedAt, now)
		ages = append(ages, ageDays)
		buckets[BucketAge(ageDays)]++
		aged = append(aged, AgedAssignment{BacklogAssignment: a, AgeDays: ageDays})

		acc := perReviewer[a.Reviewer]
		if acc == nil {
			acc = &reviewerAcc{}
			perReviewer[a.Reviewer] = acc
		}
		acc.total++
		if ageDays >= float64(staleDays) {
			acc.stale++
			stale++
		}
		if ageDays > acc.oldest {
			acc.oldest = ageDays
		}
		if ageDays > oldest {
			oldest = ageDays
		}
	}

	stats := make([]ReviewerBacklog, 0, len(perReviewer))
	for reviewer, acc := range perReviewer {
		stats = append(stats, ReviewerBacklog{
			Reviewer:      reviewer,
			Total:         acc.total,
			Stale:         acc.stale,
			OldestAgeDays: acc.oldest,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Stale != stats[j].Stale {
			return stats[i].Stale > stats[j].Stale
		}
		if stats[i].Total != stats[j].Total {
			return stats[i].Total > stats[j].Total
		}
		return stats[i].Reviewer < stats[j].Reviewer
	})

	sort.SliceStable(aged, func(i, j int) bool { return aged[i].AgeDays > aged[j].AgeDays })

	avg := 0.0
	if len(ages) > 0 {
		avg = stat.Mean(ages, nil)
	}

	return BacklogReport{
		Total:             len(ages),
		Stale:             stale,
		AvgAgeDays:        avg,
		OldestAgeDays:     oldest,
		BucketCounts:      buckets,
		ReviewerStats:     stats,
		OldestAssignments: aged,
	}
}
