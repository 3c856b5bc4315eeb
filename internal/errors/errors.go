package errors

import (
	stderrors "errors"
	"fmt"
)

type ErrorType string

const (
	ErrorTypeTruncated  ErrorType = "TRUNCATED"
	ErrorTypeNotFound   ErrorType = "NOT_FOUND"
	ErrorTypeValidation ErrorType = "VALIDATION"
	ErrorTypeInternal   ErrorType = "INTERNAL"
)

// Error is the error type shared by the decoders and the commands built on
// top of them. Field and Offset are only meaningful for TRUNCATED errors.
type Error struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
	Offset  int64     `json:"offset,omitempty"`
	Details any       `json:"details,omitempty"`
	Err     error     `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Truncated reports a mandatory field that could not be read in full after
// its record had already started.
func Truncated(field string, offset int64, err error) *Error {
	return &Error{
		Type:    ErrorTypeTruncated,
		Message: fmt.Sprintf("truncated %s at byte %d", field, offset),
		Field:   field,
		Offset:  offset,
		Err:     err,
	}
}

func NotFound(message string) *Error {
	return &Error{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

func ValidationError(message string, details any) *Error {
	return &Error{
		Type:    ErrorTypeValidation,
		Message: message,
		Details: details,
	}
}

func Internal(message string, err error) *Error {
	return &Error{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// IsType reports whether any error in err's chain is an *Error of type t.
func IsType(err error, t ErrorType) bool {
	var e *Error
	if !stderrors.As(err, &e) {
		return false
	}
	if e.Type == t {
		return true
	}
	return IsType(e.Err, t)
}

// ExitCode maps an error to the process exit status used by the CLI.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if !stderrors.As(err, &e) {
		return 1
	}
	switch e.Type {
	case ErrorTypeNotFound:
		return 2
	case ErrorTypeValidation:
		return 3
	case ErrorTypeTruncated:
		return 4
	default:
		return 1
	}
}
