// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Configuration errors: fatal to a single simulation configuration,
	// never retried.
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// Provider errors
	ErrDataUnavailable = &Error{Code: "DATA_UNAVAILABLE", Message: "data unavailable for ticker"}

	// Selection errors
	ErrInsufficientData = &Error{Code: "INSUFFICIENT_DATA", Message: "insufficient data to fill portfolio"}

	// Simulation errors. InsufficientHistory is recoverable at trial
	// granularity; RetriesExhausted escalates it to the configuration.
	ErrInsufficientHistory = &Error{Code: "INSUFFICIENT_HISTORY", Message: "insufficient return history"}
	ErrRetriesExhausted    = &Error{Code: "RETRIES_EXHAUSTED", Message: "trial retry limit exceeded"}

	// Results errors
	ErrStoreFailed = &Error{Code: "STORE_FAILED", Message: "results store operation failed"}
	ErrRowNotFound = &Error{Code: "ROW_NOT_FOUND", Message: "result row not found"}
)
