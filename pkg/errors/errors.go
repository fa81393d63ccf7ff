// Package errors provides structured error types for the ossmap pipeline.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and library callers
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Each failure mode of the graph-ingestion → layout → metrics pipeline has a
// dedicated code:
//   - SCHEMA_ERROR: a required column is missing from an input table
//   - TYPE_COERCION: a cell cannot be converted to its declared type
//   - CONFIGURATION: an unknown layout algorithm or invalid option
//   - MISSING_WEIGHT: an edge lacks the required weight attribute
//   - MISSING_ATTRIBUTE: a node lacks a required attribute (e.g. label)
//   - DUPLICATE_LABEL: two nodes share a label during label-keyed export
//   - DIVISION_BY_ZERO: a degenerate network where a ratio is undefined
//
// All pipeline errors are raised at the point of detection and are terminal
// for the call in progress; nothing in this module retries.
//
// # Usage
//
//	err := errors.New(errors.CodeSchema, "node table missing columns: %v", missing)
//	if errors.Is(err, errors.CodeSchema) {
//	    // Handle schema failure
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.CodeTypeCoercion, parseErr, "row %d: column %q", i, col)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different failure categories.
const (
	// Input table failures
	CodeSchema       Code = "SCHEMA_ERROR"
	CodeTypeCoercion Code = "TYPE_COERCION"

	// Configuration failures
	CodeConfiguration Code = "CONFIGURATION"

	// Graph content failures
	CodeMissingWeight    Code = "MISSING_WEIGHT"
	CodeMissingAttribute Code = "MISSING_ATTRIBUTE"
	CodeDuplicateLabel   Code = "DUPLICATE_LABEL"

	// Computation failures
	CodeDivisionByZero Code = "DIVISION_BY_ZERO"

	// Generic failures
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeNotFound     Code = "NOT_FOUND"
	CodeInternal     Code = "INTERNAL_ERROR"
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

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
