package apperr

import (
	"errors"
	"fmt"
)

// AppError represents a classified report failure
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes
const (
	CodePrecondition = "PRECONDITION_FAILED"
	CodeQuery        = "QUERY_FAILED"
	CodeNoData       = "NO_DATA"
	CodeRender       = "RENDER_FAILED"
	CodeInvalidInput = "INVALID_INPUT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeCanceled     = "CANCELED"
)

// ErrNoData is returned when a question has no qualifying rows.
var ErrNoData = &AppError{Code: CodeNoData, Message: "no data found"}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an error with additional context. An AppError cause keeps its code.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	code := CodeInternal
	var appErr *AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode wraps err under a specific code
func WithCode(code string, err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Code returns the outermost error code, or "UNKNOWN" for unclassified errors
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Is reports whether err carries the given code anywhere in its chain
func Is(err error, code string) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Cause
	}
	return false
}

// Precondition reports a failure that must stop the run before any question
func Precondition(format string, args ...interface{}) *AppError {
	return New(CodePrecondition, fmt.Sprintf(format, args...))
}

// Query wraps a backend failure raised while running a query
func Query(err error, format string, args ...interface{}) error {
	return WithCode(CodeQuery, err, fmt.Sprintf(format, args...))
}

// Render wraps a chart sink failure
func Render(err error) error {
	return WithCode(CodeRender, err, "plotting failed")
}

// InvalidInput reports a rejected argument
func InvalidInput(format string, args ...interface{}) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf(format, args...))
}

// Canceled wraps a context error that stopped the run
func Canceled(err error) error {
	return WithCode(CodeCanceled, err, "analysis interrupted")
}
