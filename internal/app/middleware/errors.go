package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"review-balancer/internal/domain"
)

// ErrorResponse represents the API error response format
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents the error details
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteErrorResponse writes an error response in the API error format
func WriteErrorResponse(w http.ResponseWriter, err error, logger *zap.Logger) {
	statusCode := domain.GetHTTPStatus(err)
	errorCode := domain.GetErrorCode(err)

	// Log internal errors
	if statusCode == http.StatusInternalServerError {
		logger.Error("Internal server error",
			zap.Error(err),
			zap.Int("status", statusCode),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: ErrorDetail{
			Code:    string(errorCode),
			Message: err.Error(),
		},
	}

	if errorCode == "" {
		// For unknown errors, use generic message
		response.Error.Code = "INTERNAL_ERROR"
		response.Error.Message = "internal server error"
	}

	json.NewEncoder(w).Encode(response)
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.statusCode = code
	rec.ResponseWriter.WriteHeader(code)
}
