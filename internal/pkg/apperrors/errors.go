package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
)

// Domain errors. Each wraps one of the kinds above so callers can branch on the kind.
var (
	ErrUserNotFound       = &CustomError{Err: ErrResourceNotFound, Message: "user not found"}
	ErrEmailAlreadyExists = &CustomError{Err: ErrConflict, Message: "email already exists"}
	ErrClassNotFound      = &CustomError{Err: ErrResourceNotFound, Message: "class not found"}
	ErrCourseNotFound     = &CustomError{Err: ErrResourceNotFound, Message: "course not found"}
	ErrCourseCodeExists   = &CustomError{Err: ErrConflict, Message: "course code already exists"}
	ErrReportNotFound     = &CustomError{Err: ErrResourceNotFound, Message: "report not found"}
	ErrAlreadyEnrolled    = &CustomError{Err: ErrConflict, Message: "student already enrolled in class"}
)

// ErrorKind is the coarse classification surfaced to transport layers.
type ErrorKind string

const (
	KindValidation ErrorKind = "ValidationError"
	KindForbidden  ErrorKind = "Forbidden"
	KindNotFound   ErrorKind = "NotFound"
	KindConflict   ErrorKind = "ConflictError"
	KindAuth       ErrorKind = "Unauthorized"
	KindInternal   ErrorKind = "Internal"
)

// Kind classifies err. Anything unrecognised is KindInternal.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidationFailed):
		return KindValidation
	case errors.Is(err, ErrPermissionDenied):
		return KindForbidden
	case errors.Is(err, ErrResourceNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case Is(err, ErrInvalidCredentials, ErrTokenExpired, ErrTokenInvalid):
		return KindAuth
	default:
		return KindInternal
	}
}

// NewValidationError creates a validation error carrying per-field messages
func NewValidationError(message string, fields map[string]string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Fields:  fields,
	}
}

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// Is returns whether err matches target or any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// Message returns the human-readable message of the outermost CustomError in the chain,
// or the error text itself.
func Message(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// FieldErrors returns the per-field validation messages attached to err, if any.
func FieldErrors(err error) map[string]string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Fields
	}
	return nil
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Fields  map[string]string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}
