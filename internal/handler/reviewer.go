package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"review-balancer/internal/app/middleware"
	"review-balancer/internal/domain"
	"review-balancer/internal/service/reviewer"
)

type reviewerService interface {
	Register(ctx context.Context, name, email string, maxLoad int, expertise []string) (domain.Reviewer, error)
	SetActive(ctx context.Context, reviewerID int64, active bool) (domain.Reviewer, error)
	Status(ctx context.Context) ([]reviewer.LoadStatus, error)
}

// ReviewerHandler handles reviewer management endpoints
type ReviewerHandler struct {
	service reviewerService
	logger  *zap.Logger
}

// NewReviewerHandler creates a new reviewer handler
func NewReviewerHandler(service reviewerService, logger *zap.Logger) *ReviewerHandler {
	return &ReviewerHandler{service: service, logger: logger}
}

type addReviewerRequest struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	MaxLoad   int      `json:"max_load"`
	Expertise []string `json:"expertise"`
}

type setActiveRequest struct {
	ReviewerID int64 `json:"reviewer_id"`
	Active     bool  `json:"active"`
}

type reviewerResponse struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	MaxLoad   int      `json:"max_load"`
	Expertise []string `json:"expertise"`
	Active    bool     `json:"active"`
}

type loadStatusResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Assigned    int      `json:"assigned"`
	MaxLoad     int      `json:"max_load"`
	Utilization float64  `json:"utilization"`
	Expertise   []string `json:"expertise"`
	Active      bool     `json:"active"`
}

func toReviewerResponse(r domain.Reviewer) reviewerResponse {
	return reviewerResponse{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		MaxLoad:   r.MaxLoad,
		Expertise: r.Expertise,
		Active:    r.Active,
	}
}

// AddReviewer registers a new reviewer
func (h *ReviewerHandler) AddReviewer(w http.ResponseWriter, r *http.Request) {
	var req addReviewerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, domain.ErrInvalidArgument, h.logger)
		return
	}

	created, err := h.service.Register(r.Context(), req.Name, req.Email, req.MaxLoad, req.Expertise)
	if err != nil {
		middleware.WriteErrorResponse(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, toReviewerResponse(created), h.logger)
}

// SetActive flips a reviewer's availability
func (h *ReviewerHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, domain.ErrInvalidArgument, h.logger)
		return
	}

	updated, err := h.service.SetActive(r.Context(), req.ReviewerID, req.Active)
	if err != nil {
		middleware.WriteErrorResponse(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, toReviewerResponse(updated), h.logger)
}

// Status returns every reviewer with its current load
func (h *ReviewerHandler) Status(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.service.Status(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, err, h.logger)
		return
	}

	response := make([]loadStatusResponse, 0, len(statuses))
	for _, s := range statuses {
		response = append(response, loadStatusResponse{
			ID:          s.Reviewer.ID,
			Name:        s.Reviewer.Name,
			Assigned:    s.Assigned,
			MaxLoad:     s.Reviewer.MaxLoad,
			Utilization: s.Utilization,
			Expertise:   s.Reviewer.Expertise,
			Active:      s.Reviewer.Active,
		})
	}

	writeJSON(w, http.StatusOK, response, h.logger)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}
