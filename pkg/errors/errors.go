// Package errors provides structured error types for causeway.
//
// Every failure that crosses a package boundary carries a machine-readable
// [Code] so that the CLI, the HTTP API and library callers can react to the
// same condition in the same way:
//   - NOT_FOUND: an unknown variable name or id was referenced
//   - INVALID_ARC: an arc would create a cycle or duplicate an existing one
//   - INVALID_ARGUMENT: a query is malformed (overlapping sets, stray values)
//   - HEDGE: a causal effect is provably not identifiable
//   - UNIDENTIFIABLE: identification failed on this call path
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "unknown variable %q", name)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // Handle lookup failure
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "decode %s", path)
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
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidArgument Code = "INVALID_ARGUMENT"
	ErrCodeInvalidArc      Code = "INVALID_ARC"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidModel    Code = "INVALID_MODEL"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Causal identification errors
	ErrCodeHedge          Code = "HEDGE"
	ErrCodeUnidentifiable Code = "UNIDENTIFIABLE"

	// Network errors (remote cache backends)
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// coder is implemented by error types that carry a code without being an *Error.
type coder interface {
	Code() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error or a coded error with a
// matching code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case coder:
			return e.Code()
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	var h *HedgeError
	if errors.As(err, &h) {
		return h.Message
	}
	return err.Error()
}

// HedgeError reports a structurally non-identifiable causal query.
//
// Observables holds the variables of the graph in which the hedge was found
// and Component the c-component that witnesses it. Both are sorted.
type HedgeError struct {
	Message     string
	Observables []string
	Component   []string
}

// NewHedge builds a HedgeError for the given witnessing sets.
func NewHedge(observables, component []string) *HedgeError {
	return &HedgeError{
		Message: fmt.Sprintf("hedge found: G={%s}, G[S]={%s}",
			strings.Join(observables, ", "), strings.Join(component, ", ")),
		Observables: observables,
		Component:   component,
	}
}

// Error implements the error interface.
func (e *HedgeError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCodeHedge, e.Message)
}

// Code returns the error code for this error type.
func (e *HedgeError) Code() Code {
	return ErrCodeHedge
}
