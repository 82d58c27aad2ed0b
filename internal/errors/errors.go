// Package errors provides the application error taxonomy used for logging,
// metric tagging, and deciding whether a failed operation is retryable.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
	// ErrCodeRPC indicates a chain RPC call failed; retried on the next tick.
	ErrCodeRPC ErrorCode = "rpc"
	// ErrCodeDecode indicates a malformed payload or response; never retried.
	ErrCodeDecode ErrorCode = "decode"
	// ErrCodeResolution indicates address resolution exhausted its retry budget.
	ErrCodeResolution ErrorCode = "resolution"
	// ErrCodeUnavailable indicates a transient infrastructure failure.
	ErrCodeUnavailable ErrorCode = "unavailable"
)

// AppError is a structured application error with a code, message, and
// optional cause. It supports errors.Is and errors.As through Unwrap.
type AppError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// CodeOf extracts the ErrorCode from err, or ErrCodeInternal for plain errors.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// Validation creates a new validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// Internalf creates a new internal error with a formatted message.
func Internalf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: fmt.Sprintf(format, args...)}
}

// RPC wraps a chain RPC failure.
func RPC(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeRPC, Message: message, Cause: cause}
}

// Decode wraps a malformed-payload failure.
func Decode(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeDecode, Message: message, Cause: cause}
}

// Resolution wraps an address-resolution failure.
func Resolution(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeResolution, Message: message, Cause: cause}
}

// Unavailable wraps a transient infrastructure failure.
func Unavailable(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeUnavailable, Message: message, Cause: cause}
}
