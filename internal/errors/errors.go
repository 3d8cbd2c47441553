package errors

import (
	stderrors "errors"
	"fmt"
)

// Error represents a PostgreSQL-style error with SQLSTATE code
type Error struct {
	Code      string // SQLSTATE code
	Message   string // Primary error message
	Detail    string // Optional detailed error message
	Hint      string // Optional hint message
	Position  int    // Byte position in the statement (0 if not applicable)
	Statement int    // Ordinal of the statement in the dump (0 if not applicable)
	Table     string // COPY target if applicable
	Path      string // File path if applicable
	Cause     error  // Underlying error, if any
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.Statement > 0 {
		msg = fmt.Sprintf("statement %d: %s", e.Statement, msg)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s (SQLSTATE %s) DETAIL: %s", msg, e.Code, e.Detail)
	}
	return fmt.Sprintf("%s (SQLSTATE %s)", msg, e.Code)
}

// Unwrap returns the underlying cause for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and message
func New(code string, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new Error with a formatted message
func Newf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithDetail adds detail to the error
func (e *Error) WithDetail(detail string) *Error {
	e.Detail = detail
	return e
}

// WithDetailf adds formatted detail to the error
func (e *Error) WithDetailf(format string, args ...interface{}) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithHint adds a hint to the error
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// WithPosition sets the statement position
func (e *Error) WithPosition(pos int) *Error {
	e.Position = pos
	return e
}

// WithStatement sets the statement ordinal
func (e *Error) WithStatement(n int) *Error {
	e.Statement = n
	return e
}

// WithTable sets the COPY target
func (e *Error) WithTable(table string) *Error {
	e.Table = table
	return e
}

// WithPath sets the file path
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithCause records the underlying error
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// IsError checks if err (or anything it wraps) is an Error with a specific code
func IsError(err error, code string) bool {
	var e *Error
	if !stderrors.As(err, &e) {
		return false
	}
	return e.Code == code
}

// GetError attempts to extract an Error from any error
func GetError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	// Wrap generic errors as internal errors
	return InternalErrorf("%v", err).WithCause(err)
}
