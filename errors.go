package docbase

import (
	"errors"
	"fmt"
)

// Application error codes.
//
// These are propagated across service boundaries so that callers can react
// to the condition rather than the message. Codes map to user-actionable
// outcomes at the edge (CLI exit status, HTTP status in an embedding app).
const (
	ECONFLICT     = "conflict"     // an exclusive operation is already running
	EGENERATION   = "generation"   // LLM synthesis failed after retry
	EINTERNAL     = "internal"     // unexpected internal error
	EINVALID      = "invalid"      // validation failed
	ENOTFOUND     = "not_found"    // entity does not exist / empty corpus
	EUNAUTHORIZED = "unauthorized" // credentials missing or rejected
	EUNAVAILABLE  = "unavailable"  // a required backend is unreachable
)

// Error represents an application error with a machine-readable code.
type Error struct {
	// Code is one of the E* constants above.
	Code string

	// Message is a human-readable description of the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("docbase error: code=%s message=%s", e.Code, e.Message)
}

// Errorf constructs an Error with the given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors return EINTERNAL; nil returns the empty string.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors return a generic message; nil returns the empty string.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}
