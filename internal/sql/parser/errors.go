package parser

import (
	"fmt"

	"github.com/insinfo/insert-to-copy/internal/errors"
)

// ParseError represents a parse error with position information
type ParseError struct {
	Msg    string
	Line   int
	Column int
	Near   string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Near != "" {
		return fmt.Sprintf("%s at or near %q", e.Msg, e.Near)
	}
	return e.Msg
}

// NewParseError creates a new parse error
func NewParseError(msg string, line, column int) *ParseError {
	return &ParseError{
		Msg:    msg,
		Line:   line,
		Column: column,
	}
}

// sqlError converts a parse error into the converter's SQLSTATE error.
func sqlError(err error) error {
	pe, ok := err.(*ParseError)
	if !ok {
		return err
	}
	return errors.ParseErrorAt(pe.Error(), pe.Line, pe.Column).WithCause(pe)
}
