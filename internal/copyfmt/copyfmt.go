// Package copyfmt renders parsed INSERT rows in PostgreSQL COPY text format.
package copyfmt

import (
	"strings"

	"github.com/lib/pq"

	"github.com/insinfo/insert-to-copy/internal/errors"
	"github.com/insinfo/insert-to-copy/internal/sql/parser"
)

const (
	// NullMarker is the COPY text representation of NULL.
	NullMarker = `\N`
	// Terminator ends the data of a COPY block.
	Terminator = `\.`
)

// Options controls how values are rendered.
type Options struct {
	// EscapeBackslash also escapes '\' and carriage returns, so that a
	// string holding a backslash sequence loads back unchanged. Without it a
	// value ending in '\' escapes the tab that follows it, and COPY reads the
	// two fields as one.
	EscapeBackslash bool
	// IncludeColumns emits the INSERT column list in the COPY header.
	IncludeColumns bool
}

// ResolveTarget returns the COPY target for stmt: schema.table or table,
// followed by the column list when opts.IncludeColumns is set and the
// INSERT names its columns. The result is computed once per statement and
// doubles as the row buffer key.
func ResolveTarget(stmt *parser.InsertStmt, opts Options) (string, error) {
	if stmt == nil || stmt.TableName == "" {
		return "", errors.MissingRelation()
	}

	var b strings.Builder
	if stmt.Schema != "" {
		b.WriteString(QuoteIdentifier(stmt.Schema))
		b.WriteByte('.')
	}
	b.WriteString(QuoteIdentifier(stmt.TableName))

	if opts.IncludeColumns && len(stmt.Columns) > 0 {
		b.WriteString(" (")
		for i, col := range stmt.Columns {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(QuoteIdentifier(col))
		}
		b.WriteByte(')')
	}
	return b.String(), nil
}

// QuoteIdentifier returns name unchanged when PostgreSQL would read it back
// as the same identifier, and double-quoted otherwise.
func QuoteIdentifier(name string) string {
	if needsQuoting(name) {
		return pq.QuoteIdentifier(name)
	}
	return name
}

func needsQuoting(name string) bool {
	if name == "" {
		return true
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c == '_':
		case (c >= '0' && c <= '9') || c == '$':
			if i == 0 {
				return true
			}
		default:
			return true
		}
	}
	_, reserved := reservedWords[name]
	return reserved
}

// reservedWords are the PostgreSQL keywords that cannot be used as bare
// table or column names.
var reservedWords = map[string]struct{}{
	"all": {}, "analyse": {}, "analyze": {}, "and": {}, "any": {}, "array": {},
	"as": {}, "asc": {}, "asymmetric": {}, "both": {}, "case": {}, "cast": {},
	"check": {}, "collate": {}, "column": {}, "constraint": {}, "create": {},
	"current_catalog": {}, "current_date": {}, "current_role": {},
	"current_time": {}, "current_timestamp": {}, "current_user": {},
	"default": {}, "deferrable": {}, "desc": {}, "distinct": {}, "do": {},
	"else": {}, "end": {}, "except": {}, "false": {}, "fetch": {}, "for": {},
	"foreign": {}, "from": {}, "grant": {}, "group": {}, "having": {}, "in": {},
	"initially": {}, "intersect": {}, "into": {}, "lateral": {}, "leading": {},
	"limit": {}, "localtime": {}, "localtimestamp": {}, "not": {}, "null": {},
	"offset": {}, "on": {}, "only": {}, "or": {}, "order": {}, "placing": {},
	"primary": {}, "references": {}, "returning": {}, "select": {},
	"session_user": {}, "some": {}, "symmetric": {}, "system_user": {},
	"table": {}, "then": {}, "to": {}, "trailing": {}, "true": {}, "union": {},
	"unique": {}, "user": {}, "using": {}, "variadic": {}, "when": {},
	"where": {}, "window": {}, "with": {},
}

// Header returns the line that opens a COPY block for target.
func Header(target string) string {
	return "COPY " + target + " FROM stdin;\n"
}

// Statement returns the COPY statement for target without the trailing
// semicolon, as sent to a server.
func Statement(target string) string {
	return "COPY " + target + " FROM STDIN"
}

// AppendRow appends one COPY line for row: values joined by tabs and
// terminated by a newline. Every expression produces exactly one field.
func AppendRow(dst []byte, row []parser.Expression, opts Options) []byte {
	for i, expr := range row {
		if i > 0 {
			dst = append(dst, '\t')
		}
		dst = AppendValue(dst, expr, opts)
	}
	return append(dst, '\n')
}

// AppendValue appends the COPY text form of expr. NULL, unsupported
// expressions and missing values all become \N.
func AppendValue(dst []byte, expr parser.Expression, opts Options) []byte {
	lit, ok := expr.(*parser.Literal)
	if !ok || lit == nil {
		return append(dst, NullMarker...)
	}

	switch lit.Kind {
	case parser.LiteralInteger, parser.LiteralFloat:
		return append(dst, lit.Text...)
	case parser.LiteralString:
		return EscapeText(dst, lit.Text, opts)
	case parser.LiteralBoolean:
		if lit.Text == "true" {
			return append(dst, 't')
		}
		return append(dst, 'f')
	default:
		return append(dst, NullMarker...)
	}
}

// FormatValue is AppendValue returning a string.
func FormatValue(expr parser.Expression, opts Options) string {
	return string(AppendValue(nil, expr, opts))
}

// EscapeText appends s with tab and newline written as the two-character
// sequences \t and \n. The value must already be free of SQL quote
// doubling; the parsers undo that while lexing. Backslashes pass through
// untouched unless opts.EscapeBackslash is set.
func EscapeText(dst []byte, s string, opts Options) []byte {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\t':
			dst = append(dst, '\\', 't')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\\':
			if opts.EscapeBackslash {
				dst = append(dst, '\\', '\\')
			} else {
				dst = append(dst, c)
			}
		case '\r':
			if opts.EscapeBackslash {
				dst = append(dst, '\\', 'r')
			} else {
				dst = append(dst, c)
			}
		default:
			dst = append(dst, c)
		}
	}
	return dst
}
