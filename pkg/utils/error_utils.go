package utils

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Standardized APIError response
type APIError struct {
	StatusCode int    `json:"-"`              // HTTP status code, not included in JSON response body for error itself
	Code       string `json:"code,omitempty"` // Application-specific error code
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	Retryable  bool   `json:"retryable,omitempty"` // Safe to retry without duplicate side effects
}

// NewAPIError creates a new APIError instance
func NewAPIError(statusCode int, code string, message string, details string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Details:    details,
	}
}

// NewRetryableAPIError creates an APIError for transient contention failures
// (lock timeouts, version conflicts) that callers may safely retry.
func NewRetryableAPIError(statusCode int, code string, message string, details string) *APIError {
	apiErr := NewAPIError(statusCode, code, message, details)
	apiErr.Retryable = true
	return apiErr
}

// RespondWithError sends a standardized JSON error response
func RespondWithError(c *gin.Context, err *APIError) {
	c.JSON(err.StatusCode, gin.H{"error": err})
	c.Abort()
}

// Common Error Constants
const (
	ErrCodeBadRequest             = "BAD_REQUEST"
	ErrCodeUnauthorized           = "UNAUTHORIZED"
	ErrCodeForbidden              = "FORBIDDEN"
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeConflict               = "CONFLICT"
	ErrCodeInternalServerError    = "INTERNAL_SERVER_ERROR"
	ErrCodeValidationFailed       = "VALIDATION_FAILED"
	ErrCodeInvalidStateTransition = "INVALID_STATE_TRANSITION"
	ErrCodeIncompleteWeighing     = "INCOMPLETE_WEIGHING"
	ErrCodeBalanceViolation       = "BALANCE_VIOLATION"
	ErrCodeLockTimeout            = "LOCK_TIMEOUT"
)

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// RespondValidationFailed returns a standard validation error.
func RespondValidationFailed(c *gin.Context, details string) {
	RespondWithError(c, NewAPIError(http.StatusBadRequest, ErrCodeValidationFailed, "Input validation failed", details))
}
