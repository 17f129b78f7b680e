package services

import (
	"errors"
	"fmt"
)

// Failure codes. Routes map these onto HTTP statuses; services never see
// transport concerns.
const (
	CodeValidation    = "validation_error"
	CodeAuthorization = "authorization_error"
	CodeInvalidState  = "invalid_state"
	CodeNotFound      = "not_found"
	CodeConflict      = "conflict"
	CodeProvider      = "provider_error"
	CodeTransient     = "transient_network_error"
)

// Error is a typed service failure with a human-readable message. Retryable
// marks failures the caller may retry (provider and network faults, lost
// enlistment races); everything else is final for the given input.
type Error struct {
	Code      string
	Message   string
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func NewValidationError(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

func NewAuthorizationError(msg string) *Error {
	return &Error{Code: CodeAuthorization, Message: msg}
}

func NewInvalidStateError(msg string) *Error {
	return &Error{Code: CodeInvalidState, Message: msg}
}

func NewNotFoundError(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func NewConflictError(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg, Retryable: true}
}

func NewProviderError(msg string, cause error) *Error {
	return &Error{Code: CodeProvider, Message: msg, Retryable: true, Cause: cause}
}

func NewTransientError(msg string, cause error) *Error {
	return &Error{Code: CodeTransient, Message: msg, Retryable: true, Cause: cause}
}

// ErrCode extracts the failure code from err, or "" when err is not a
// service error.
func ErrCode(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsRetryable reports whether the caller may retry the failed operation.
func IsRetryable(err error) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}
