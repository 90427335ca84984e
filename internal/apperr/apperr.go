// Package apperr carries the domain error taxonomy across handler and
// service boundaries. Domain errors are expected outcomes of business rules
// and map to stable HTTP statuses; anything else is treated as internal.
package apperr

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeForbidden         Code = "FORBIDDEN"
	CodeNotFound          Code = "NOT_FOUND"
	CodeConflict          Code = "CONFLICT"
	CodeAlreadyOwned      Code = "ALREADY_OWNED"
	CodeAlreadyClaimed    Code = "ALREADY_CLAIMED"
	CodeInsufficientFunds Code = "INSUFFICIENT_FUNDS"
	CodeLevelTooLow       Code = "LEVEL_TOO_LOW"
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeInternal          Code = "INTERNAL_ERROR"
)

var statusByCode = map[Code]int{
	CodeUnauthorized:      http.StatusUnauthorized,
	CodeForbidden:         http.StatusForbidden,
	CodeNotFound:          http.StatusNotFound,
	CodeConflict:          http.StatusConflict,
	CodeAlreadyOwned:      http.StatusConflict,
	CodeAlreadyClaimed:    http.StatusForbidden,
	CodeInsufficientFunds: http.StatusBadRequest,
	CodeLevelTooLow:       http.StatusBadRequest,
	CodeValidation:        http.StatusBadRequest,
	CodeInternal:          http.StatusInternalServerError,
}

// Error is a typed domain error with a short human-readable reason the
// client surfaces as a transient notification.
type Error struct {
	code    Code
	message string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// HTTPStatus returns the status the error's code maps to.
func (e *Error) HTTPStatus() int {
	if s, ok := statusByCode[e.Code()]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// As extracts a typed *Error from an error chain, or nil if there is none.
func As(err error) *Error {
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether err carries the given domain code.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}
