package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"review-balancer/internal/app/middleware"
	"review-balancer/internal/domain"
	"review-balancer/internal/service/planner"
	"review-balancer/internal/service/rebalance"
)

type planService interface {
	Plan(ctx context.Context, opts planner.Options) (domain.Plan, error)
}

type rebalanceService interface {
	Rebalance(ctx context.Context, opts rebalance.Options) ([]domain.Move, error)
}

// PlanHandler handles allocation and rebalance triggers
type PlanHandler struct {
	planner    planService
	rebalancer rebalanceService
	logger     *zap.Logger
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(planner planService, rebalancer rebalanceService, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{planner: planner, rebalancer: rebalancer, logger: logger}
}

type runPlanRequest struct {
	Limit int  `json:"limit"`
	Apply bool `json:"apply"`
}

type runRebalanceRequest struct {
	MaxMoves int  `json:"max_moves"`
	Apply    bool `json:"apply"`
}

type proposedAssignmentResponse struct {
	ApplicationID int64   `json:"application_id"`
	ReviewerID    int64   `json:"reviewer_id"`
	Score         float64 `json:"score"`
}

type planResponse struct {
	Assignments       []proposedAssignmentResponse `json:"assignments"`
	Unassignable      []int64                      `json:"unassignable"`
	UnassignableSlots int                          `json:"unassignable_slots"`
	ReadyForReview    []int64                      `json:"ready_for_review"`
	Applied           bool                         `json:"applied"`
}

type moveResponse struct {
	ApplicationID  int64   `json:"application_id"`
	FromReviewerID int64   `json:"from_reviewer_id"`
	ToReviewerID   int64   `json:"to_reviewer_id"`
	Score          float64 `json:"score"`
}

type rebalanceResponse struct {
	Moves   []moveResponse `json:"moves"`
	Applied bool           `json:"applied"`
}

// RunPlan executes one allocation run
func (h *PlanHandler) RunPlan(w http.ResponseWriter, r *http.Request) {
	var req runPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, domain.ErrInvalidArgument, h.logger)
		return
	}

	plan, err := h.planner.Plan(r.Context(), planner.Options{Limit: req.Limit, Apply: req.Apply})
	if err != nil {
		middleware.WriteErrorResponse(w, err, h.logger)
		return
	}

	response := planResponse{
		Assignments:       make([]proposedAssignmentResponse, 0, len(plan.Assignments)),
		Unassignable:      plan.Unassignable,
		UnassignableSlots: plan.UnassignableSlots,
		ReadyForReview:    plan.ReadyForReview,
		Applied:           req.Apply,
	}
	for _, pa := range plan.Assignments {
		response.Assignments = append(response.Assignments, proposedAssignmentResponse{
			ApplicationID: pa.ApplicationID,
			ReviewerID:    pa.ReviewerID,
			Score:         pa.Score,
		})
	}
	writeJSON(w, http.StatusOK, response, h.logger)
}

// RunRebalance executes one rebalance run
func (h *PlanHandler) RunRebalance(w http.ResponseWriter, r *http.Request) {
	var req runRebalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, domain.ErrInvalidArgument, h.logger)
		return
	}

	moves, err := h.rebalancer.Rebalance(r.Context(), rebalance.Options{MaxMoves: req.MaxMoves, Apply: req.Apply})
	if err != nil {
		middleware.WriteErrorResponse(w, err, h.logger)
		return
	}

	response := rebalanceResponse{
		Moves:   make([]moveResponse, 0, len(moves)),
		Applied: req.Apply,
	}
	for _, m := range moves {
		response.Moves = append(response.Moves, moveResponse{
			ApplicationID:  m.ApplicationID,
			FromReviewerID: m.FromReviewerID,
			ToReviewerID:   m.ToReviewerID,
			Score:          m.Score,
		})
	}
	writeJSON(w, http.StatusOK, response, h.logger)
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
