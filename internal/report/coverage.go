package report

import (
	"math"
	"sort"

	"review-balancer/internal/domain"
)

// UntaggedBucket collects queue demand from applications without topic tags.
const UntaggedBucket = "untagged"

// TagCapacity compares queue demand against reviewer supply for one tag.
// CoverageRatio is nil when the tag has no queued demand.
type TagCapacity struct {
	Tag           string
	QueueCount    int
	ReviewerCount int
	Capacity      int
	Assigned      int
	Remaining     int
	CoverageRatio *float64
}

// BuildTagCapacityReport rolls up, per expertise tag, how much reviewer
// capacity remains versus how many pending applications demand it. Callers
// pass the pending queue and the current active load per reviewer.
func BuildTagCapacityReport(
	reviewers []domain.Reviewer,
	loads map[int64]int,
	pending []domain.Application,
) []TagCapacity {
	demand := make(map[string]int)
	for _, app := range pending {
		if len(app.Topics) == 0 {
			demand[UntaggedBucket]++
			continue
		}
		for _, tag := range app.Topics {
			demand[tag]++
		}
	}

	type supplyAcc struct {
		reviewers map[int64]struct{}
		capacity  int
		assigned  int
	}
	supply := make(map[string]*supplyAcc)
	for _, r := range reviewers {
		for _, tag := range r.Expertise {
			acc := supply[tag]
			if acc == nil {
				acc = &supplyAcc{reviewers: make(map[int64]struct{})}
				supply[tag] = acc
			}
			acc.reviewers[r.ID] = struct{}{}
			acc.capacity += r.MaxLoad
			acc.assigned += loads[r.ID]
		}
	}

	tags := make(map[string]struct{}, len(demand)+len(supply))
	for tag := range demand {
		tags[tag] = struct{}{}
	}
	for tag := range supply {
		tags[tag] = struct{}{}
	}

	rows := make([]TagCapacity, 0, len(tags))
	for tag := range tags {
		row := TagCapacity{Tag: tag, QueueCount: demand[tag]}
		if acc := supply[tag]; acc != nil {
			row.ReviewerCount = len(acc.reviewers)
			row.Capacity = acc.capacity
			row.Assigned = acc.assigned
		}
		row.Remaining = row.Capacity - row.Assigned
		if row.Remaining < 0 {
			row.Remaining = 0
		}
		if row.QueueCount > 0 {
			ratio := float64(row.Remaining) / float64(row.QueueCount)
			row.CoverageRatio = &ratio
		}
		rows = append(rows, row)
	}

	// Tags with queued demand come first, thinnest coverage on top.
	sort.Slice(rows, func(i, j int) bool {
		if (rows[i].QueueCount == 0) != (rows[j].QueueCount == 0) {
			return rows[j].QueueCount == 0
		}
		ri, rj := coverageOrInf(rows[i]), coverageOrInf(rows[j])
		if ri != rj {
			return ri < rj
		}
		if rows[i].QueueCount != rows[j].QueueCount {
			return rows[i].QueueCount > rows[j].QueueCount
		}
		return rows[i].Tag < rows[j].Tag
	})
	return rows
}

func coverageOrInf(row TagCapacity) float64 {
	if row.CoverageRatio == nil {
		return math.Inf(1)
	}
	return *row.CoverageRatio
}
