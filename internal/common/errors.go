package common

import (
	"errors"
	"net/http"
)

// AppError is an error the HTTP layer renders verbatim: Code and Message go to the
// client, Err stays server side.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Status is the HTTP status to answer with. Unset statuses are client errors.
func (e *AppError) Status() int {
	if e == nil || e.HTTPStatus == 0 {
		return http.StatusBadRequest
	}
	return e.HTTPStatus
}

func (e *AppError) code() string {
	if e.Code == "" {
		return "BAD_REQUEST"
	}
	return e.Code
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// FieldError builds a validation error for a single checkout or cart field.
func FieldError(field, message string) error {
	appErr := NewAppError("VALIDATION", "validation failed", http.StatusBadRequest, ErrValidation)
	appErr.Details = map[string]string{field: message}
	return appErr
}

// WriteAppError renders err when it wraps an AppError and reports whether it did.
// Handlers fall through to their own sentinel mapping otherwise.
func WriteAppError(w http.ResponseWriter, err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	JSONError(w, appErr.Status(), appErr.code(), appErr.Message, appErr.Details)
	return true
}
