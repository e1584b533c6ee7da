package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeUnavailable  ErrorCode = "UNAVAILABLE"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrTodoNotFound     = NewError(ErrCodeNotFound, "todo not found")
	ErrCategoryNotFound = NewError(ErrCodeNotFound, "category not found")
	ErrSubtaskNotFound  = NewError(ErrCodeNotFound, "subtask not found")
	ErrSessionNotFound  = NewError(ErrCodeNotFound, "session not found")
	ErrUnauthorized     = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload   = NewError(ErrCodeInvalid, "invalid payload")

	ErrEmptyTask          = NewError(ErrCodeInvalid, "task cannot be empty")
	ErrEmptyCategoryName  = NewError(ErrCodeInvalid, "category name cannot be empty")
	ErrEmptySubtaskTitle  = NewError(ErrCodeInvalid, "subtask title cannot be empty")
	ErrEmptyNote          = NewError(ErrCodeInvalid, "note cannot be empty")
	ErrInvalidPriority    = NewError(ErrCodeInvalid, "priority must be low, medium or high")
	ErrCategoryExists     = NewError(ErrCodeConflict, "category name already exists")
	ErrEmailNotConfigured = NewError(ErrCodeUnavailable, "email address and password are required")

	ErrNotificationsDisabled = NewError(ErrCodeUnavailable, "email notifications are disabled")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
