package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrForbidden indicates that the caller is not allowed to perform the action.
// Messages wrapping it must never name the missing role.
var ErrForbidden = errors.New("access denied")

// ErrConflict indicates that the request conflicts with the current state of a resource.
var ErrConflict = errors.New("resource conflict")

// ErrAlreadyClosed indicates an attempt to close a meeting or series that is already closed.
var ErrAlreadyClosed = errors.New("already closed")

// ErrInvalidTarget indicates that the migration target of a closure is unusable.
var ErrInvalidTarget = errors.New("invalid target")

// ErrPersistence wraps store failures. The caller may retry; nothing was applied.
var ErrPersistence = errors.New("persistence failure")

// AppError carries an HTTP-ish status code and message alongside the underlying error.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap lets errors.Is/As see the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewPersistenceError wraps a store error so that errors.Is(err, ErrPersistence) holds
// while the original cause stays reachable.
func NewPersistenceError(message string, err error) *AppError {
	return &AppError{Code: 503, Message: message, Err: errors.Join(ErrPersistence, err)}
}
