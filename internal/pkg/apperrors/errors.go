package apperrors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// Input errors
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrUnsupportedFileType = fmt.Errorf("%w: unsupported file type", ErrInvalidArgument)

	// Resource errors
	ErrNotFound = errors.New("resource not found")
	ErrConflict = errors.New("conflict")

	// Wallet and job lifecycle errors
	ErrInsufficientFunds  = errors.New("insufficient wallet balance")
	ErrInvalidTransition  = errors.New("invalid job status transition")
	ErrPrinterUnavailable = errors.New("printer unavailable")
	ErrNoPrinterAvailable = errors.New("no available printers online")

	// Authentication and authorization errors
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("permission denied")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")

	// Storage errors
	ErrPersistence = errors.New("persistence failure")
)

// NewNotFoundError creates a not found error with a user facing message
func NewNotFoundError(message string) error {
	return &CustomError{Err: ErrNotFound, Message: message}
}

// NewInvalidArgumentError creates an invalid argument error with a user facing message
func NewInvalidArgumentError(message string) error {
	return &CustomError{Err: ErrInvalidArgument, Message: message}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{Err: ErrConflict, Message: message}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{Err: ErrForbidden, Message: message}
}

// NewInvalidTransitionError reports a transition attempted from an illegal source state.
func NewInvalidTransitionError(current string) error {
	return &CustomError{
		Err:     ErrInvalidTransition,
		Message: fmt.Sprintf("Job is already %s", current),
		Details: map[string]interface{}{"currentStatus": current},
	}
}

// Persistence wraps a storage driver error. The original error stays reachable
// through errors.Is / errors.As.
func Persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// Is returns whether target matches any of the errors in errList
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

// Message returns the user facing message of err when one was attached.
func Message(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return ""
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
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

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
