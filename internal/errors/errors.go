package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorizing errors
const (
	ErrPlacement      = "PLACEMENT"
	ErrIncompatible   = "INCOMPATIBLE"
	ErrUnknownType    = "UNKNOWN_TYPE"
	ErrOptionValue    = "OPTION_VALUE"
	ErrDuplicateType  = "DUPLICATE_TYPE"
	ErrFetchTransient = "FETCH_TRANSIENT"
	ErrFetchPermanent = "FETCH_PERMANENT"
	ErrCorruptLayout  = "CORRUPT_LAYOUT"
	ErrSettings       = "SETTINGS"
	ErrInternal       = "INTERNAL"
)

// Error represents a structured error with code, message, suggestion, and optional cause.
// Rendered as:
//
//	✗ <What failed>
//
//	  <Why it failed - technical details>
//
//	  <How to fix it - actionable steps>
type Error struct {
	Code       string
	Message    string
	Suggestion string
	Cause      error
}

// New creates a new structured error with the given code, message, and suggestion.
func New(code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
	}
}

// Wrap wraps an existing error with a message, defaulting to ErrInternal code.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:    ErrInternal,
		Message: message,
		Cause:   err,
	}
}

// WrapWithCode wraps an existing error with a specific code, message, and suggestion.
func WrapWithCode(err error, code, message, suggestion string) *Error {
	return &Error{
		Code:       code,
		Message:    message,
		Suggestion: suggestion,
		Cause:      err,
	}
}

// Error implements the error interface with formatted multi-line output.
func (e *Error) Error() string {
	var b strings.Builder

	// First line: failure symbol + main message
	b.WriteString(fmt.Sprintf("✗ %s\n", e.Message))

	// Include cause if present (why it failed)
	if e.Cause != nil {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Cause.Error()))
	}

	// Include suggestion if present (how to fix)
	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  %s\n", e.Suggestion))
	}

	return b.String()
}

// Summary returns the first line of the error without the failure symbol,
// suitable for single-line surfaces like panel badges and status bars.
func (e *Error) Summary() string {
	return e.Message
}

// Unwrap returns the underlying cause for use with errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCode checks if any structured Error in the chain carries the given
// code. Walking the whole chain matters for rewrapped errors: a permanent
// fetch failure stays recognizable as one after Wrap stamps ErrInternal on
// the outer layer.
func IsCode(err error, code string) bool {
	for err != nil {
		if gsErr, ok := err.(*Error); ok && gsErr.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// CodeOf returns the code of a structured Error, or ErrInternal for any
// other non-nil error. Returns "" for nil.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	var gsErr *Error
	if errors.As(err, &gsErr) {
		return gsErr.Code
	}
	return ErrInternal
}
