package domain

import "errors"

var (
	// ErrNotFound - resource does not exist (404)
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidArgument - invalid or malformed input (400)
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrReviewerExists - reviewer already registered (409)
	ErrReviewerExists = errors.New("reviewer already exists")

	// ErrConflictExists - conflict pair already recorded (409)
	ErrConflictExists = errors.New("conflict already exists")

	// ErrCapacityExceeded - reviewer has no remaining slots; planners treat
	// this as "skip", never as a fatal error (409)
	ErrCapacityExceeded = errors.New("reviewer capacity exceeded")

	// ErrNoCandidate - no eligible reviewer for a manual operation (409)
	ErrNoCandidate = errors.New("no eligible reviewer available")

	// ErrAlreadyCompleted - assignment or application is terminal (409)
	ErrAlreadyCompleted = errors.New("already completed")

	// ErrStaleSnapshot - the snapshot a plan was built from changed before
	// commit; the caller should re-snapshot and re-run (409, retryable)
	ErrStaleSnapshot = errors.New("snapshot is stale, re-run planning")
)

type ErrorCode string

const (
	ErrorCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrorCodeInvalidArgument  ErrorCode = "INVALID_ARGUMENT"
	ErrorCodeReviewerExists   ErrorCode = "REVIEWER_EXISTS"
	ErrorCodeConflictExists   ErrorCode = "CONFLICT_EXISTS"
	ErrorCodeCapacityExceeded ErrorCode = "CAPACITY_EXCEEDED"
	ErrorCodeNoCandidate      ErrorCode = "NO_CANDIDATE"
	ErrorCodeAlreadyCompleted ErrorCode = "ALREADY_COMPLETED"
	ErrorCodeStaleSnapshot    ErrorCode = "STALE_SNAPSHOT"
)

func GetErrorCode(err error) ErrorCode {
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrorCodeNotFound
	case errors.Is(err, ErrInvalidArgument):
		return ErrorCodeInvalidArgument
	case errors.Is(err, ErrReviewerExists):
		return ErrorCodeReviewerExists
	case errors.Is(err, ErrConflictExists):
		return ErrorCodeConflictExists
	case errors.Is(err, ErrCapacityExceeded):
		return ErrorCodeCapacityExceeded
	case errors.Is(err, ErrNoCandidate):
		return ErrorCodeNoCandidate
	case errors.Is(err, ErrAlreadyCompleted):
		return ErrorCodeAlreadyCompleted
	case errors.Is(err, ErrStaleSnapshot):
		return ErrorCodeStaleSnapshot
	default:
		return ""
	}
}

func GetHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrInvalidArgument):
		return 400
	case errors.Is(err, ErrReviewerExists), errors.Is(err, ErrConflictExists),
		errors.Is(err, ErrCapacityExceeded), errors.Is(err, ErrNoCandidate),
		errors.Is(err, ErrAlreadyCompleted), errors.Is(err, ErrStaleSnapshot):
		return 409
	default:
		return 500
	}
}
