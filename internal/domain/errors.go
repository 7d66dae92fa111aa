package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
	ErrCodeExhausted        = "EXHAUSTED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrInvalidGapStatus     = NewDomainError(ErrCodeValidation, "invalid gap status")
	ErrInvalidDraftStatus   = NewDomainError(ErrCodeValidation, "invalid draft status")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrGapNotFound     = NewDomainError(ErrCodeNotFound, "gap not found")
	ErrDraftNotFound   = NewDomainError(ErrCodeNotFound, "draft not found")
	ErrContentNotFound = NewDomainError(ErrCodeNotFound, "published content not found")
	ErrAPIKeyNotFound  = NewDomainError(ErrCodeNotFound, "api key not found")
)

// Authorization errors
var (
	ErrInvalidAPIKey = NewDomainError(ErrCodeUnauthorized, "invalid api key")
	ErrAPIKeyRevoked = NewDomainError(ErrCodeUnauthorized, "api key has been revoked")
	ErrAdminRequired = NewDomainError(ErrCodeForbidden, "admin role required")
)

// Review workflow errors
var (
	// ErrDraftAlreadyReviewed is returned when approve/reject targets a
	// draft whose status is already terminal.
	ErrDraftAlreadyReviewed = NewDomainError(ErrCodeInvalidOperation, "draft has already been reviewed")
	// ErrDraftReviewConflict is returned when the status compare-and-swap
	// loses to a concurrent review of the same draft.
	ErrDraftReviewConflict = NewDomainError(ErrCodeConflict, "draft was reviewed concurrently")
	// ErrSlugExhausted is returned when slug collision resolution runs out
	// of numeric suffixes.
	ErrSlugExhausted = NewDomainError(ErrCodeExhausted, "no available slug for content title")
)
