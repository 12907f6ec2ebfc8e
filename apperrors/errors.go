package apperrors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	CodeValidation     ErrorCode = "VALIDATION_ERROR"
	CodeAuthentication ErrorCode = "AUTHENTICATION_ERROR"
	CodeAuthorization  ErrorCode = "AUTHORIZATION_ERROR"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeConflict       ErrorCode = "CONFLICT"
	CodeStore          ErrorCode = "STORE_ERROR"
)

// AppError is the typed error surfaced by services. The HTTP boundary maps
// it to a status code and a {"message"} body.
type AppError struct {
	Code     ErrorCode
	Message  string
	Err      error
	HTTPCode int
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

func New(code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, HTTPCode: httpCode}
}

func Wrap(err error, code ErrorCode, message string, httpCode int) *AppError {
	return &AppError{Code: code, Message: message, Err: err, HTTPCode: httpCode}
}

func Validation(format string, args ...any) *AppError {
	return New(CodeValidation, fmt.Sprintf(format, args...), http.StatusBadRequest)
}

func Authentication(message string) *AppError {
	return New(CodeAuthentication, message, http.StatusUnauthorized)
}

func Authorization(message string) *AppError {
	return New(CodeAuthorization, message, http.StatusForbidden)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, resource+" not found", http.StatusNotFound)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

// Store wraps a persistence failure. The message never reaches the client.
func Store(err error, message string) *AppError {
	return Wrap(err, CodeStore, message, http.StatusInternalServerError)
}

// From extracts an *AppError from err. Anything else is treated as a store
// failure.
func From(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Store(err, "Internal server error")
}

// HasCode reports whether err carries an *AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
