package errors

import (
	"fmt"
	"strings"
)

// Category groups SQLSTATE codes into the converter's error taxonomy.
type Category int

const (
	CategoryInternal Category = iota
	// CategoryParseFailure is raised when the SQL parser rejects an INSERT.
	CategoryParseFailure
	// CategoryMalformedTree covers parsed INSERTs that cannot become COPY rows.
	CategoryMalformedTree
	// CategoryMemoryExhaustion covers statement and row buffers that cannot grow.
	CategoryMemoryExhaustion
	// CategoryIOFailure covers files, streams and target connections.
	CategoryIOFailure
	CategoryConfig
	CategoryCanceled
)

func (c Category) String() string {
	switch c {
	case CategoryParseFailure:
		return "parse_failure"
	case CategoryMalformedTree:
		return "malformed_tree"
	case CategoryMemoryExhaustion:
		return "memory_exhaustion"
	case CategoryIOFailure:
		return "io_failure"
	case CategoryConfig:
		return "config"
	case CategoryCanceled:
		return "canceled"
	default:
		return "internal"
	}
}

// CategoryOf maps an error to its category.
func CategoryOf(err error) Category {
	e := GetError(err)
	if e == nil {
		return CategoryInternal
	}
	switch {
	case e.Code == SyntaxError:
		return CategoryParseFailure
	case e.Code == UndefinedTable, e.Code == FeatureNotSupported:
		return CategoryMalformedTree
	case e.Code == OutOfMemory, strings.HasPrefix(e.Code, "54"):
		return CategoryMemoryExhaustion
	case strings.HasPrefix(e.Code, "58"), strings.HasPrefix(e.Code, "08"), e.Code == CharacterNotInRepertoire:
		return CategoryIOFailure
	case e.Code == ConfigFileError, e.Code == InvalidParameterValue:
		return CategoryConfig
	case e.Code == QueryCanceled:
		return CategoryCanceled
	default:
		return CategoryInternal
	}
}

// IsRecoverable reports whether the converter may pass the statement through
// and keep going.
func IsRecoverable(err error) bool {
	switch CategoryOf(err) {
	case CategoryParseFailure, CategoryMalformedTree:
		return true
	default:
		return false
	}
}

// Parser errors

// ParseFailure wraps a parser rejection of an INSERT statement.
func ParseFailure(msg string, position int) *Error {
	return New(SyntaxError, msg).WithPosition(position)
}

// ParseErrorAt reports a syntax error with line/column context.
func ParseErrorAt(msg string, line, col int) *Error {
	return Newf(SyntaxError, "syntax error at line %d, column %d: %s", line, col, msg).
		WithPosition(col)
}

// Tree errors

// MissingRelation is returned when a parsed INSERT has no target table name.
func MissingRelation() *Error {
	return New(UndefinedTable, "INSERT statement has no relation name").
		WithHint("The statement is passed through unchanged.")
}

// NotConvertible is returned for INSERT forms that COPY cannot express.
func NotConvertible(feature string) *Error {
	return Newf(FeatureNotSupported, "INSERT with %s cannot be rewritten as COPY", feature)
}

// Resource errors

// StatementTooLarge is returned when a single statement exceeds the
// configured statement buffer limit.
func StatementTooLarge(limit int64) *Error {
	return Newf(ProgramLimitExceeded, "statement exceeds maximum size of %d bytes", limit).
		WithHint("Raise max_statement_size.")
}

// OutOfMemoryError creates an out of memory error
func OutOfMemoryError(context string) *Error {
	return Newf(OutOfMemory, "out of memory").
		WithDetailf("Failed to grow %s.", context)
}

// I/O errors

// FileIOError reports a failed file operation.
func FileIOError(operation, filename string, err error) *Error {
	return IOErrorf("could not %s file \"%s\": %v", operation, filename, err).
		WithPath(filename).
		WithCause(err)
}

// IOErrorf creates an I/O error
func IOErrorf(format string, args ...interface{}) *Error {
	return Newf(IOError, format, args...)
}

// ConnectionError reports a failure talking to the load target.
func ConnectionError(operation string, err error) *Error {
	return Newf(ConnectionFailure, "could not %s: %v", operation, err).WithCause(err)
}

// Config errors

// ConfigErrorf creates a configuration error
func ConfigErrorf(format string, args ...interface{}) *Error {
	return Newf(ConfigFileError, format, args...)
}

// InvalidParameterError reports a bad option value.
func InvalidParameterError(name string, value interface{}) *Error {
	return Newf(InvalidParameterValue, "invalid value for %s: %v", name, value)
}

// Misc

// QueryCanceledError creates a canceled error
func QueryCanceledError(err error) *Error {
	return New(QueryCanceled, "canceling conversion due to user request").WithCause(err)
}

// InternalErrorf creates an internal error
func InternalErrorf(format string, args ...interface{}) *Error {
	return Newf(InternalError, format, args...)
}

// FeatureNotSupportedError creates a feature not supported error
func FeatureNotSupportedError(feature string) *Error {
	return Newf(FeatureNotSupported, "%s is not supported", feature)
}

// Describe renders a one-line human summary including the hint, used by the CLI.
func Describe(err error) string {
	e := GetError(err)
	if e == nil {
		return ""
	}
	if e.Hint != "" {
		return fmt.Sprintf("%s HINT: %s", e.Error(), e.Hint)
	}
	return e.Error()
}
