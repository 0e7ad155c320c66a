package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"review-balancer/internal/app/middleware"
	"review-balancer/internal/domain"
)

type applicationService interface {
	Submit(ctx context.Context, applicantName, program string, priority, needsReviews int, topics []string) (domain.Application, error)
	Queue(ctx context.Context, limit int) ([]domain.Application, error)
	AddConflict(ctx context.Context, reviewerID, applicationID int64, reason string) error
	CompleteReview(ctx context.Context, assignmentID int64) (domain.Assignment, error)
}

// ApplicationHandler handles application intake and review lifecycle endpoints
type ApplicationHandler struct {
	service applicationService
	logger  *zap.Logger
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(service applicationService, logger *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{service: service, logger: logger}
}

type submitApplicationRequest struct {
	ApplicantName string   `json:"applicant_name"`
	Program       string   `json:"program"`
	Priority      int      `json:"priority"`
	NeedsReviews  int      `json:"needs_reviews"`
	Topics        []string `json:"topics"`
}

type addConflictRequest struct {
	ReviewerID    int64  `json:"reviewer_id"`
	ApplicationID int64  `json:"application_id"`
	Reason        string `json:"reason"`
}

type completeReviewRequest struct {
	AssignmentID int64 `json:"assignment_id"`
}

type applicationResponse struct {
	ID            int64    `json:"id"`
	ApplicantName string   `json:"applicant_name"`
	Program       string   `json:"program"`
	Priority      int      `json:"priority"`
	SubmittedAt   string   `json:"submitted_at"`
	Topics        []string `json:"topics"`
	Status        string   `json:"status"`
	NeedsReviews  int      `json:"needs_reviews"`
}

type assignmentResponse struct {
	ID            int64   `json:"id"`
	ApplicationID int64   `json:"application_id"`
	ReviewerID    int64   `json:"reviewer_id"`
	Status        string  `json:"status"`
	Score         float64 `json:"score"`
	CompletedAt   string  `json:"completed_at,omitempty"`
}

func toApplicationResponse(a domain.Application) applicationResponse {
	return applicationResponse{
		ID:            a.ID,
		ApplicantName: a.ApplicantName,
		Program:       a.Program,
		Priority:      a.Priority,
		SubmittedAt:   a.SubmittedAt.UTC().Format(time.RFC3339),
		Topics:        a.Topics,
		Status:        string(a.Status),
		NeedsReviews:  a.NeedsReviews,
	}
}

// Submit registers a new application
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, domain.ErrInvalidArgument, h.logger)
		return
	}

	created, err := h.service.Submit(r.Context(), req.ApplicantName, req.Program, req.Priority, req.NeedsReviews, req.Topics)
	if err != nil {
		middleware.WriteErrorResponse(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, toApplicationResponse(created), h.logger)
}

// Queue returns the pending applications in allocation order
func (h *ApplicationHandler) Queue(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		middleware.WriteErrorResponse(w, domain.ErrInvalidArgument, h.logger)
		return
	}

	apps, err := h.service.Queue(r.Context(), limit)
	if err != nil {
		middleware.WriteErrorResponse(w, err, h.logger)
		return
	}

	response := make([]applicationResponse, 0, len(apps))
	for _, a := range apps {
		response = append(response, toApplicationResponse(a))
	}
	writeJSON(w, http.StatusOK, response, h.logger)
}

// AddConflict records a reviewer/application exclusion
func (h *ApplicationHandler) AddConflict(w http.ResponseWriter, r *http.Request) {
	var req addConflictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, domain.ErrInvalidArgument, h.logger)
		return
	}

	if err := h.service.AddConflict(r.Context(), req.ReviewerID, req.ApplicationID, req.Reason); err != nil {
		middleware.WriteErrorResponse(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "recorded"}, h.logger)
}

// CompleteReview finishes one assignment
func (h *ApplicationHandler) CompleteReview(w http.ResponseWriter, r *http.Request) {
	var req completeReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, domain.ErrInvalidArgument, h.logger)
		return
	}

	assignment, err := h.service.CompleteReview(r.Context(), req.AssignmentID)
	if err != nil {
		middleware.WriteErrorResponse(w, err, h.logger)
		return
	}

	response := assignmentResponse{
		ID:            assignment.ID,
		ApplicationID: assignment.ApplicationID,
		ReviewerID:    assignment.ReviewerID,
		Status:        string(assignment.Status),
		Score:         assignment.Score,
	}
	if assignment.CompletedAt != nil {
		response.CompletedAt = assignment.CompletedAt.UTC().Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, response, h.logger)
}
