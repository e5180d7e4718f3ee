package apperrors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeForbidden        ErrorCode = "FORBIDDEN"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	CodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"
	CodeInternalError    ErrorCode = "INTERNAL_ERROR"
)

// AppError carries everything the HTTP boundary needs to render a failure.
type AppError struct {
	Code     ErrorCode   `json:"code"`
	Message  string      `json:"message"`
	Details  interface{} `json:"details,omitempty"`
	Err      error       `json:"-"`
	HTTPCode int         `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on code so callers can compare against the sentinel values below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func New(code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		HTTPCode: httpCode,
	}
}

func Wrap(err error, code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{
		Code:     code,
		Message:  message,
		Err:      err,
		HTTPCode: httpCode,
	}
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// Sentinels for errors.Is comparisons.
var (
	ErrValidation       = New(CodeValidationFailed, "Validation failed", http.StatusUnprocessableEntity)
	ErrNotFound         = New(CodeNotFound, "Resource not found", http.StatusNotFound)
	ErrForbidden        = New(CodeForbidden, "Access denied", http.StatusForbidden)
	ErrConflict         = New(CodeConflict, "Conflicting state", http.StatusConflict)
	ErrUnauthorized     = New(CodeUnauthorized, "Authentication required", http.StatusUnauthorized)
	ErrStoreUnavailable = New(CodeStoreUnavailable, "Storage temporarily unavailable", http.StatusInternalServerError)
	ErrInternal         = New(CodeInternalError, "Internal server error", http.StatusInternalServerError)
)

func Validation(message string) *AppError {
	return New(CodeValidationFailed, message, http.StatusUnprocessableEntity)
}

func ValidationFields(message string, fields map[string]string) *AppError {
	return Validation(message).WithDetails(map[string]interface{}{"fields": fields})
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, message, http.StatusForbidden)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

// Store marks a connection/timeout style failure; the caller may retry.
func Store(err error) *AppError {
	return Wrap(err, CodeStoreUnavailable, "Storage temporarily unavailable", http.StatusInternalServerError)
}

func Internal(err error) *AppError {
	return Wrap(err, CodeInternalError, "Internal server error", http.StatusInternalServerError)
}

// From returns err as an *AppError, wrapping unknown errors as internal.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}
