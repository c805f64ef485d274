package common

import (
	"errors"
	"fmt"
)

// ErrorCode represents different types of errors in the system
type ErrorCode int

const (
	// General errors
	ErrInternal ErrorCode = iota + 1000
	ErrInvalidInput
	ErrNotFound
	ErrAlreadyExists

	// Authentication errors
	ErrUnauthorized ErrorCode = iota + 2000
	ErrForbidden
	ErrInvalidToken
	ErrTokenExpired

	// Hierarchy validation errors
	ErrParentNotFound ErrorCode = iota + 3000
	ErrInvalidParentChild
	ErrExclusiveActiveTenancy
	ErrTenantCapacityExceeded

	// Storage errors
	ErrSnapshotCorrupted ErrorCode = iota + 4000
	ErrSnapshotUnavailable
)

// DomainError represents an error in the hierarchy service
type DomainError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewErrorWithCause creates a new DomainError with an underlying cause
func NewErrorWithCause(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// IsTenancyRuleViolation reports whether an error is either of the two
// capacity-rule failures.
func IsTenancyRuleViolation(err error) bool {
	return IsErrorCode(err, ErrExclusiveActiveTenancy) ||
		IsErrorCode(err, ErrTenantCapacityExceeded)
}

// Common error constructors
func ErrInternalError(message string) *DomainError {
	return NewError(ErrInternal, message)
}

func ErrInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message)
}

func ErrNotFoundError(message string) *DomainError {
	return NewError(ErrNotFound, message)
}

func ErrUnauthorizedError(message string) *DomainError {
	return NewError(ErrUnauthorized, message)
}

func ErrForbiddenError(message string) *DomainError {
	return NewError(ErrForbidden, message)
}

func ErrParentNotFoundError(parentID string) *DomainError {
	return NewError(ErrParentNotFound, fmt.Sprintf("parent node not found: %s", parentID))
}
