// Package apperror defines the error taxonomy shared by services and
// handlers. Services return *AppError values wrapping one of the sentinel
// errors below; handlers map the sentinel to an HTTP status with
// HTTPStatus and surface Message to the client.
package apperror

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnverified   = errors.New("email not verified")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
	ErrInternal     = errors.New("internal error")
)

type AppError struct {
	Err     error  // sentinel, drives the HTTP status
	Message string // human-readable, returned to the client
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(message string) *AppError {
	return &AppError{Err: ErrNotFound, Message: message}
}

func Conflict(message string) *AppError {
	return &AppError{Err: ErrConflict, Message: message}
}

// Unverified is distinct from Unauthorized: login against an unverified
// account returns 403 with its own message, before the password is even
// compared.
func Unverified(message string) *AppError {
	return &AppError{Err: ErrUnverified, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Err: ErrUnauthorized, Message: message}
}

func BadRequest(message string) *AppError {
	return &AppError{Err: ErrBadRequest, Message: message}
}

func Internal(message string) *AppError {
	return &AppError{Err: ErrInternal, Message: message}
}

// HTTPStatus maps an error to the status code of its sentinel. Unknown
// errors map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnverified):
		return http.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
