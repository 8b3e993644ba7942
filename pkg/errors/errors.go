// Package errors provides the coded errors of cdnlock.
//
// The same codes are reported by the CLI (as exit status and message) and by
// the HTTP API (as the "code" field of error bodies). INVALID_* codes are
// caller mistakes; NOT_FOUND and RESOLUTION_FAILURE concern a single registry
// lookup; DEPENDENCIES_ERROR, CIRCULAR_DEPENDENCIES and API_COLLISION are the
// outcomes of a failed resolution.
//
// Typed errors defined elsewhere (the resolver's DependenciesError, the
// scheduler's CircularDependenciesError) implement [Coder], so [Is] and
// [GetCode] work on them as well as on [*Error].
//
// # Usage
//
//	err := errors.Wrap(errors.ErrCodeNetwork, cause, "fetch %s", name)
//	if errors.GetCode(err).Invalid() {
//	    os.Exit(2)
//	}
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidPackage Code = "INVALID_PACKAGE"
	ErrCodeInvalidVersion Code = "INVALID_VERSION"
	ErrCodeInvalidPath    Code = "INVALID_PATH"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"

	// Registry lookups
	ErrCodeNotFound          Code = "NOT_FOUND"
	ErrCodeResolutionFailure Code = "RESOLUTION_FAILURE"

	// Resolution outcomes
	ErrCodeDependencies         Code = "DEPENDENCIES_ERROR"
	ErrCodeCircularDependencies Code = "CIRCULAR_DEPENDENCIES"
	ErrCodeAPICollision         Code = "API_COLLISION"

	// Infrastructure errors
	ErrCodeNetwork  Code = "NETWORK_ERROR"
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Invalid reports whether c blames the caller's input or configuration.
func (c Code) Invalid() bool {
	return strings.HasPrefix(string(c), "INVALID_")
}

// Coder is implemented by error types that carry a [Code].
type Coder interface {
	error
	Code() Code
}

// Error is a structured error with a code and optional cause.
type Error struct {
	code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.Message)
}

// Code returns the error code.
func (e *Error) Code() Code { return e.code }

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// The outermost coded error in the chain decides.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no error in the chain implements [Coder].
func GetCode(err error) Code {
	var c Coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return ""
}

// UserMessage returns the message of err without its code prefix. The
// outermost [*Error] in the chain provides it; other errors are returned
// as-is.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
