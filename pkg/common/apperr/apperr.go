package apperr

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// AppError is an error that carries a business code and the HTTP status it maps to.
type AppError struct {
	Code       int
	Message    string
	HTTPStatus int
	Cause      error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates an AppError, attaching a stack trace to the cause.
func New(code int, msg string, httpStatus int, cause error) *AppError {
	if cause != nil {
		cause = pkgerrors.WithStack(cause)
	}
	return &AppError{
		Code:       code,
		Message:    msg,
		HTTPStatus: httpStatus,
		Cause:      cause,
	}
}

// Wrap wraps err into an AppError. A nil err yields nil.
func Wrap(err error, code int, msg string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}
	return New(code, msg, httpStatus, err)
}

// As extracts the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
