package apperrors

import (
	"errors"
	"fmt"
)

// Error codes used across the client. REST responses and local failures are
// normalized into these so callers can branch without string matching.
const (
	CodeTransport      = "TRANSPORT"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeNotFound       = "NOT_FOUND"
	CodeBadRequest     = "BAD_REQUEST"
	CodeConflict       = "CONFLICT"
	CodeSessionExpired = "SESSION_EXPIRED"
	CodeInternal       = "INTERNAL_ERROR"
)

// AppError is the error type surfaced by the API clients, the realtime
// channel and the sync containers.
type AppError struct {
	Code    string
	Message string
	Status  int // HTTP status from the server, 0 for local failures
	Err     error
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// Transport wraps a network-level failure (connection refused, timeout,
// unreadable body). Status is 0 because no HTTP response was obtained.
func Transport(message string, err error) *AppError {
	return &AppError{
		Code:    CodeTransport,
		Message: message,
		Err:     err,
	}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
		Status:  401,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  404,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    CodeBadRequest,
		Message: message,
		Status:  400,
		Err:     err,
	}
}

// SessionExpired marks a fatal session condition: the refresh flow failed
// and the user must authenticate again.
func SessionExpired(err error) *AppError {
	return &AppError{
		Code:    CodeSessionExpired,
		Message: "session expired, sign in again",
		Err:     err,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Status:  500,
		Err:     err,
	}
}

// Is reports whether err is an AppError with the given code.
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
