// Package errors provides coded domain errors for the testimonial API.
//
// Usage:
//
//	// In services - return typed errors
//	if link.IsUsed {
//	    return nil, errors.TokenUsed("Token already used")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrTokenUsed) {
//	    ...
//	}
//
//	// Or switch on the Code
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeTokenExpired:
//	    case errors.CodeStorage:
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound      Code = "NOT_FOUND"
	CodeValidation    Code = "VALIDATION"
	CodeConflict      Code = "CONFLICT"
	CodeInternal      Code = "INTERNAL"
	CodeStorage       Code = "STORAGE_ERROR"
	CodeTokenNotFound Code = "TOKEN_NOT_FOUND"
	CodeTokenUsed     Code = "TOKEN_USED"
	CodeTokenExpired  Code = "TOKEN_EXPIRED"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound, CodeTokenNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeTokenUsed:
		return http.StatusConflict
	case CodeTokenExpired:
		return http.StatusGone
	case CodeValidation:
		return http.StatusBadRequest
	case CodeStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsTokenState reports whether c is an expected token outcome rather than a failure.
func (c Code) IsTokenState() bool {
	return c == CodeTokenNotFound || c == CodeTokenUsed || c == CodeTokenExpired
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a new error with additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound      = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation    = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict      = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInternal      = &Error{Code: CodeInternal, Message: "internal error"}
	ErrStorage       = &Error{Code: CodeStorage, Message: "storage unavailable"}
	ErrTokenNotFound = &Error{Code: CodeTokenNotFound, Message: "token not found"}
	ErrTokenUsed     = &Error{Code: CodeTokenUsed, Message: "token already used"}
	ErrTokenExpired  = &Error{Code: CodeTokenExpired, Message: "token expired"}
)

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Storage wraps an infrastructure fault. The message stays generic so
// store internals never reach the caller.
func Storage(err error) *Error {
	return &Error{Code: CodeStorage, Message: "storage unavailable, please try again later", cause: err}
}

// TokenNotFound creates a token-not-found outcome.
func TokenNotFound(msg string) *Error {
	return &Error{Code: CodeTokenNotFound, Message: msg}
}

// TokenUsed creates an already-used outcome.
func TokenUsed(msg string) *Error {
	return &Error{Code: CodeTokenUsed, Message: msg}
}

// TokenExpired creates a token expired error.
func TokenExpired(msg string) *Error {
	return &Error{Code: CodeTokenExpired, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
