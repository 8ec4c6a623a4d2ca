// Package errors provides structured error handling for the recipebook core.
// Every failure the core can observe maps onto one of the codes below so that
// callers can decide between degrading and reporting.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"
)

// ErrorCode represents an error code
type ErrorCode string

const (
	// Recoverable locally, never propagated to the user
	CodePersistenceRead  ErrorCode = "PERSISTENCE_READ_ERROR"
	CodePersistenceWrite ErrorCode = "PERSISTENCE_WRITE_ERROR"
	CodeNetwork          ErrorCode = "NETWORK_ERROR"
	CodeResolutionGap    ErrorCode = "RESOLUTION_GAP"
	CodeCircuitOpen      ErrorCode = "CIRCUIT_OPEN"

	// Catalog loading
	CodeDuplicateIdentifier ErrorCode = "DUPLICATE_IDENTIFIER"

	// Caller errors
	CodeNotAuthenticated ErrorCode = "NOT_AUTHENTICATED"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeBadRequest       ErrorCode = "BAD_REQUEST"

	CodeInternal ErrorCode = "INTERNAL_ERROR"
)

// AppError represents an application error with structured information
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the HTTP status used when the error crosses an HTTP boundary
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidationFailed:
		return http.StatusBadRequest
	case CodeNotAuthenticated:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeNetwork, CodeCircuitOpen:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Details:    details,
		StackTrace: getStackTrace(),
	}
}

// NewPersistenceReadError reports a persisted entry that is missing or unparsable
func NewPersistenceReadError(key string, cause error) *AppError {
	return NewAppError(
		CodePersistenceRead,
		"Persisted entry unreadable",
		fmt.Sprintf("Failed to read %s", key),
	).WithCause(cause).WithMetadata("key", key)
}

// NewPersistenceWriteError reports a failed write or removal of a persisted entry
func NewPersistenceWriteError(key, operation string, cause error) *AppError {
	return NewAppError(
		CodePersistenceWrite,
		"Persisted entry not written",
		fmt.Sprintf("Failed to %s %s", operation, key),
	).WithCause(cause).WithMetadata("key", key)
}

// NewNetworkError reports a failed call to the remote personalization service
func NewNetworkError(endpoint string, cause error) *AppError {
	return NewAppError(
		CodeNetwork,
		"Remote call failed",
		fmt.Sprintf("Failed to call %s", endpoint),
	).WithCause(cause).WithMetadata("endpoint", endpoint)
}

// NewCircuitOpenError reports a call rejected by the circuit breaker
func NewCircuitOpenError(endpoint string, cause error) *AppError {
	return NewAppError(
		CodeCircuitOpen,
		"Remote service unavailable",
		fmt.Sprintf("Circuit open for %s", endpoint),
	).WithCause(cause).WithMetadata("endpoint", endpoint)
}

// NewResolutionGapError reports identifiers that have no local record
func NewResolutionGapError(count int) *AppError {
	return NewAppError(
		CodeResolutionGap,
		"Unresolved identifiers",
		fmt.Sprintf("%d identifiers missing from the local catalog", count),
	).WithMetadata("count", count)
}

// NewDuplicateIdentifierError reports a catalog record dropped for reusing an identifier
func NewDuplicateIdentifierError(id string, cause error) *AppError {
	return NewAppError(
		CodeDuplicateIdentifier,
		"Duplicate recipe identifier",
		fmt.Sprintf("Recipe %s appears more than once, keeping the first", id),
	).WithCause(cause).WithMetadata("recipe_id", id)
}

// NewNotAuthenticatedError creates a not authenticated error
func NewNotAuthenticatedError(action string) *AppError {
	return NewAppError(
		CodeNotAuthenticated,
		"Authentication required",
		fmt.Sprintf("Cannot %s without a session", action),
	)
}

// NewValidationError creates a validation error
func NewValidationError(details string) *AppError {
	return NewAppError(CodeValidationFailed, "Validation failed", details)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	message := "Resource not found"
	if resource != "" {
		message = fmt.Sprintf("%s not found", resource)
	}
	return NewAppError(CodeNotFound, message, "")
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, message, "")
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return NewAppError(CodeInternal, message, "")
}

// Wrap wraps an error as an internal error if it's not already an AppError
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	return NewInternalError(message).WithCause(err)
}

// Is checks if any error in the chain carries the given code
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// getStackTrace captures the current stack trace
func getStackTrace() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var builder strings.Builder
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "pkg/errors") {
			builder.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}

	return builder.String()
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value"`
	Tag     string      `json:"tag"`
	Message string      `json:"message"`
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}

	if len(v) == 1 {
		return v[0].Message
	}

	var messages []string
	for _, err := range v {
		messages = append(messages, err.Message)
	}

	return strings.Join(messages, "; ")
}

// NewValidationErrors creates validation errors from validator errors
func NewValidationErrors(errors []ValidationError) *AppError {
	validationErrs := ValidationErrors(errors)

	return NewAppError(
		CodeValidationFailed,
		"Validation failed",
		validationErrs.Error(),
	).WithMetadata("validation_errors", validationErrs)
}

// ErrorResponse represents an HTTP error body
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails represents the error details in HTTP responses
type ErrorDetails struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// ToErrorResponse converts an AppError to an HTTP error body
func ToErrorResponse(err *AppError, requestID string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetails{
			Code:      err.Code,
			Message:   err.Message,
			Details:   err.Details,
			Metadata:  err.Metadata,
			RequestID: requestID,
			Timestamp: fmt.Sprintf("%d", time.Now().Unix()),
		},
	}
}
