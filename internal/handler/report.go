package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"review-balancer/internal/app/middleware"
	"review-balancer/internal/domain"
	"review-balancer/internal/report"
)

type reportService interface {
	Backlog(ctx context.Context, staleDays int) (report.BacklogReport, error)
	Coverage(ctx context.Context) ([]report.TagCapacity, error)
	Throughput(ctx context.Context, days int) (report.ThroughputReport, error)
}

// ReportHandler serves the operational reports
type ReportHandler struct {
	service        reportService
	staleDays      int
	throughputDays int
	logger         *zap.Logger
}

// NewReportHandler creates a new report handler with the configured window
// defaults.
func NewReportHandler(service reportService, staleDays, throughputDays int, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		service:        service,
		staleDays:      staleDays,
		throughputDays: throughputDays,
		logger:         logger,
	}
}

type reviewerBacklogResponse struct {
	Reviewer      string  `json:"reviewer"`
	Total         int     `json:"total"`
	Stale         int     `json:"stale"`
	OldestAgeDays float64 `json:"oldest_age_days"`
}

type backlogResponse struct {
	Total         int                       `json:"total"`
	Stale         int                       `json:"stale"`
	AvgAgeDays    float64                   `json:"avg_age_days"`
	OldestAgeDays float64                   `json:"oldest_age_days"`
	BucketCounts  map[string]int            `json:"bucket_counts"`
	ReviewerStats []reviewerBacklogResponse `json:"reviewer_stats"`
}

type tagCapacityResponse struct {
	Tag           string   `json:"tag"`
	QueueCount    int      `json:"queue_count"`
	ReviewerCount int      `json:"reviewer_count"`
	Capacity      int      `json:"capacity"`
	Assigned      int      `json:"assigned"`
	Remaining     int      `json:"remaining"`
	CoverageRatio *float64 `json:"coverage_ratio"`
}

type throughputReviewerResponse struct {
	Reviewer     string  `json:"reviewer"`
	Completed    int     `json:"completed"`
	AvgCycleDays float64 `json:"avg_cycle_days"`
}

type throughputResponse struct {
	TotalCompleted int                          `json:"total_completed"`
	AvgCycleDays   float64                      `json:"avg_cycle_days"`
	MinCycleDays   float64                      `json:"min_cycle_days"`
	MaxCycleDays   float64                      `json:"max_cycle_days"`
	DailyCounts    map[string]int               `json:"daily_counts"`
	ReviewerStats  []throughputReviewerResponse `json:"reviewer_stats"`
}

// Backlog returns the backlog aging report
func (h *ReportHandler) Backlog(w http.ResponseWriter, r *http.Request) {
	staleDays, err := queryInt(r, "stale_days", h.staleDays)
	if err != nil {
		middleware.WriteErrorResponse(w, domain.ErrInvalidArgument, h.logger)
		return
	}

	rep, err := h.service.Backlog(r.Context(), staleDays)
	if err != nil {
		middleware.WriteErrorResponse(w, err, h.logger)
		return
	}

	response := backlogResponse{
		Total:         rep.Total,
		Stale:         rep.Stale,
		AvgAgeDays:    rep.AvgAgeDays,
		OldestAgeDays: rep.OldestAgeDays,
		BucketCounts:  rep.BucketCounts,
		ReviewerStats: make([]reviewerBacklogResponse, 0, len(rep.ReviewerStats)),
	}
	for _, s := range rep.ReviewerStats {
		response.ReviewerStats = append(response.ReviewerStats, reviewerBacklogResponse{
			Reviewer:      s.Reviewer,
			Total:         s.Total,
			Stale:         s.Stale,
			OldestAgeDays: s.OldestAgeDays,
		})
	}
	writeJSON(w, http.StatusOK, response, h.logger)
}

// Coverage returns the tag capacity report
func (h *ReportHandler) Coverage(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Coverage(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, err, h.logger)
		return
	}

	response := make([]tagCapacityResponse, 0, len(rows))
	for _, row := range rows {
		response = append(response, tagCapacityResponse{
			Tag:           row.Tag,
			QueueCount:    row.QueueCount,
			ReviewerCount: row.ReviewerCount,
			Capacity:      row.Capacity,
			Assigned:      row.Assigned,
			Remaining:     row.Remaining,
			CoverageRatio: row.CoverageRatio,
		})
	}
	writeJSON(w, http.StatusOK, response, h.logger)
}

// Throughput returns the completion throughput report
func (h *ReportHandler) Throughput(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", h.throughputDays)
	if err != nil {
		middleware.WriteErrorResponse(w, domain.ErrInvalidArgument, h.logger)
		return
	}

	rep, err := h.service.Throughput(r.Context(), days)
	if err != nil {
		middleware.WriteErrorResponse(w, err, h.logger)
		return
	}

	response := throughputResponse{
		TotalCompleted: rep.TotalCompleted,
		AvgCycleDays:   rep.AvgCycleDays,
		MinCycleDays:   rep.MinCycleDays,
		MaxCycleDays:   rep.MaxCycleDays,
		DailyCounts:    rep.DailyCounts,
		ReviewerStats:  make([]throughputReviewerResponse, 0, len(rep.ReviewerStats)),
	}
	for _, s := range rep.ReviewerStats {
		response.ReviewerStats = append(response.ReviewerStats, throughputReviewerResponse{
			Reviewer:     s.Reviewer,
			Completed:    s.Completed,
			AvgCycleDays: s.AvgCycleDays,
		})
	}
	writeJSON(w, http.StatusOK, response, h.logger)
}
