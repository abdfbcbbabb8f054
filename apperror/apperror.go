// Package apperror defines a centralized system for application-specific errors.
// Services return *AppError values; the HTTP layer turns them into a status code and a
// JSON body without inspecting the underlying cause, so storage details never reach clients.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType defines the category of an application error.
type ErrorType int

const (
	// UnknownError is for unspecified errors
	UnknownError ErrorType = iota
	// DatabaseError represents an error originating from the database
	DatabaseError
	// ConfigError represents an error related to application configuration
	ConfigError
	// AuthError represents an authentication error (missing/invalid token, bad credentials)
	AuthError
	// ForbiddenError represents an authorization error (authenticated but not entitled)
	ForbiddenError
	// NotFoundError represents a resource not found error
	NotFoundError
	// ValidationError represents a per-field input validation failure
	ValidationError
	// BadRequestError represents malformed input (e.g. undecodable JSON)
	BadRequestError
	// UnprocessableError represents a semantically invalid request, e.g. following yourself
	UnprocessableError
	// InternalError represents a generic internal server error
	InternalError
	// MigrationError represents an error during database migrations
	MigrationError
	// ConflictError represents a conflict, e.g., resource already exists
	ConflictError
)

// internalMessage replaces the message of every 5xx error in responses.
const internalMessage = "Internal Server Error"

// validationMessage is the top level message of validation error bodies.
const validationMessage = "Validation failed"

// FieldError is one violated constraint of a single field.
type FieldError struct {
	Code    string `json:"code" example:"length"`
	Message string `json:"message" example:"must be at least 3 characters"`
}

// FieldErrors maps a JSON field name to its violations.
type FieldErrors map[string][]FieldError

// Add appends a violation for field.
func (f FieldErrors) Add(field, code, message string) {
	f[field] = append(f[field], FieldError{Code: code, Message: message})
}

// AppError is the error type returned by services and handlers.
// It allows wrapping an underlying error (`Err`) for logging while only `Message`
// (and `Details` for field errors) is ever shown to API clients.
type AppError struct {
	Type    ErrorType
	Message string
	Details FieldErrors
	Err     error // Underlying error
}

// Error returns the string representation of the error, satisfying the `error` interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code appropriate for the error type
func (e *AppError) StatusCode() int {
	switch e.Type {
	case AuthError:
		return http.StatusUnauthorized
	case ForbiddenError:
		return http.StatusForbidden
	case NotFoundError:
		return http.StatusNotFound
	case ValidationError, BadRequestError:
		return http.StatusBadRequest
	case UnprocessableError:
		return http.StatusUnprocessableEntity
	case ConflictError:
		return http.StatusConflict
	case DatabaseError, ConfigError, InternalError, MigrationError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// IsServerError reports whether the error maps to a 5xx status.
func (e *AppError) IsServerError() bool {
	return e.StatusCode() >= http.StatusInternalServerError
}

// NewAppError creates a new AppError. This is a generic constructor.
func NewAppError(errType ErrorType, message string, underlyingError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     underlyingError,
	}
}

// NewDatabaseError creates a new DatabaseError
func NewDatabaseError(message string, underlyingError error) *AppError {
	return NewAppError(DatabaseError, message, underlyingError)
}

// NewConfigError creates a new ConfigError
func NewConfigError(message string, underlyingError error) *AppError {
	return NewAppError(ConfigError, message, underlyingError)
}

// NewAuthError creates a new AuthError (for authentication issues)
func NewAuthError(message string, underlyingError error) *AppError {
	return NewAppError(AuthError, message, underlyingError)
}

// NewForbiddenError creates a new ForbiddenError (for authorization issues)
func NewForbiddenError(message string, underlyingError error) *AppError {
	return NewAppError(ForbiddenError, message, underlyingError)
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(message string, underlyingError error) *AppError {
	return NewAppError(NotFoundError, message, underlyingError)
}

// NewValidationError creates a new ValidationError carrying per-field details.
func NewValidationError(details FieldErrors) *AppError {
	return &AppError{Type: ValidationError, Message: validationMessage, Details: details}
}

// NewBadRequestError creates a new BadRequestError
func NewBadRequestError(message string, underlyingError error) *AppError {
	return NewAppError(BadRequestError, message, underlyingError)
}

// NewUnprocessableError creates a new UnprocessableError. Details may be nil.
func NewUnprocessableError(message string, details FieldErrors) *AppError {
	return &AppError{Type: UnprocessableError, Message: message, Details: details}
}

// NewInternalError creates a new InternalError
func NewInternalError(message string, underlyingError error) *AppError {
	return NewAppError(InternalError, message, underlyingError)
}

// NewMigrationError creates a new MigrationError
func NewMigrationError(message string, underlyingError error) *AppError {
	return NewAppError(MigrationError, message, underlyingError)
}

// NewConflictError creates a new ConflictError
func NewConflictError(message string, underlyingError error) *AppError {
	return NewAppError(ConflictError, message, underlyingError)
}

// ErrorResponse represents the error payload sent to API clients.
type ErrorResponse struct {
	Error   string      `json:"error" example:"A description of the error"`
	Details FieldErrors `json:"details,omitempty"`
}

// ToResponse converts an AppError to an ErrorResponse suitable for API responses.
// Server side errors are redacted to a fixed message.
func (e *AppError) ToResponse() ErrorResponse {
	if e.IsServerError() {
		return ErrorResponse{Error: internalMessage}
	}
	return ErrorResponse{Error: e.Message, Details: e.Details}
}

// FromError converts any error into an *AppError. Errors that are not (and do not wrap)
// an *AppError become an InternalError wrapping the original.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError("an unexpected error occurred", err)
}

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool {
	return hasType(err, NotFoundError)
}

// IsAuthError checks if an error is an AuthError (authentication problem)
func IsAuthError(err error) bool {
	return hasType(err, AuthError)
}

// IsForbidden checks if an error is a ForbiddenError (authorization problem)
func IsForbidden(err error) bool {
	return hasType(err, ForbiddenError)
}

// IsValidationError checks if an error is a Validation error
func IsValidationError(err error) bool {
	return hasType(err, ValidationError)
}

// IsUnprocessable checks if an error is an Unprocessable error
func IsUnprocessable(err error) bool {
	return hasType(err, UnprocessableError)
}

// IsConflictError checks if an error is a Conflict error
func IsConflictError(err error) bool {
	return hasType(err, ConflictError)
}

func hasType(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}
