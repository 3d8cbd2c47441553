package parser

import (
	"fmt"
	"strings"

	"github.com/insinfo/insert-to-copy/internal/errors"
)

// Node is the base interface for all AST nodes.
type Node interface {
	String() string
}

// Statement is the base interface for all SQL statements.
type Statement interface {
	Node
	statementNode()
}

// Expression is the base interface for all SQL expressions.
type Expression interface {
	Node
	expressionNode()
}

// InsertStmt represents an INSERT statement. Both the native parser and
// the pg_query adapter produce this form.
type InsertStmt struct {
	Schema    string
	TableName string
	Alias     string
	Columns   []string
	Values    [][]Expression

	// The fields below describe INSERT forms that have no COPY equivalent.
	Query         string // source text of INSERT ... SELECT / TABLE
	DefaultValues bool
	Overriding    string // SYSTEM or USER
	OnConflict    bool
	Returning     bool
	With          bool
}

func (s *InsertStmt) statementNode() {}
func (s *InsertStmt) String() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("INSERT INTO %s", s.QualifiedName()))
	if s.Alias != "" {
		parts = append(parts, "AS "+s.Alias)
	}

	if len(s.Columns) > 0 {
		parts = append(parts, fmt.Sprintf("(%s)", strings.Join(s.Columns, ", ")))
	}
	if s.Overriding != "" {
		parts = append(parts, fmt.Sprintf("OVERRIDING %s VALUE", s.Overriding))
	}

	switch {
	case s.DefaultValues:
		parts = append(parts, "DEFAULT VALUES")
	case s.Query != "":
		parts = append(parts, s.Query)
	default:
		parts = append(parts, "VALUES")
		valueSets := make([]string, 0, len(s.Values))
		for _, valueSet := range s.Values {
			values := make([]string, 0, len(valueSet))
			for _, v := range valueSet {
				values = append(values, v.String())
			}
			valueSets = append(valueSets, fmt.Sprintf("(%s)", strings.Join(values, ", ")))
		}
		parts = append(parts, strings.Join(valueSets, ", "))
	}

	if s.OnConflict {
		parts = append(parts, "ON CONFLICT ...")
	}
	if s.Returning {
		parts = append(parts, "RETURNING ...")
	}
	return strings.Join(parts, " ")
}

// QualifiedName returns schema.table, or the bare table name.
func (s *InsertStmt) QualifiedName() string {
	if s.Schema != "" {
		return s.Schema + "." + s.TableName
	}
	return s.TableName
}

// RowCount returns the number of VALUES rows.
func (s *InsertStmt) RowCount() int {
	return len(s.Values)
}

// Convertible reports why the statement cannot be expressed as COPY rows,
// or nil when it can.
func (s *InsertStmt) Convertible() error {
	switch {
	case s.TableName == "":
		return errors.MissingRelation()
	case s.With:
		return errors.NotConvertible("WITH")
	case s.Query != "":
		return errors.NotConvertible("a query source")
	case s.DefaultValues:
		return errors.NotConvertible("DEFAULT VALUES")
	case s.Overriding != "":
		return errors.NotConvertible("OVERRIDING " + s.Overriding + " VALUE")
	case s.OnConflict:
		return errors.NotConvertible("ON CONFLICT")
	case s.Returning:
		return errors.NotConvertible("RETURNING")
	case len(s.Values) == 0:
		return errors.NotConvertible("no VALUES rows")
	}
	return nil
}

// LiteralKind classifies a constant.
type LiteralKind int

const (
	LiteralNull LiteralKind = iota
	LiteralInteger
	LiteralFloat
	LiteralString
	LiteralBoolean
)

func (k LiteralKind) String() string {
	switch k {
	case LiteralInteger:
		return "integer"
	case LiteralFloat:
		return "float"
	case LiteralString:
		return "string"
	case LiteralBoolean:
		return "boolean"
	default:
		return "null"
	}
}

// Literal represents a constant value. Text holds the decimal digits of an
// integer, the lexeme of a float exactly as written, the unescaped value of
// a string, or "true"/"false".
type Literal struct {
	Kind LiteralKind
	Text string
}

// NewNull returns a NULL literal.
func NewNull() *Literal { return &Literal{Kind: LiteralNull} }

// NewInteger returns an integer literal.
func NewInteger(digits string) *Literal { return &Literal{Kind: LiteralInteger, Text: digits} }

// NewFloat returns a float literal that keeps its lexeme.
func NewFloat(lexeme string) *Literal { return &Literal{Kind: LiteralFloat, Text: lexeme} }

// NewString returns a string literal holding an already unescaped value.
func NewString(value string) *Literal { return &Literal{Kind: LiteralString, Text: value} }

// NewBoolean returns a boolean literal.
func NewBoolean(v bool) *Literal {
	if v {
		return &Literal{Kind: LiteralBoolean, Text: "true"}
	}
	return &Literal{Kind: LiteralBoolean, Text: "false"}
}

func (l *Literal) expressionNode() {}
func (l *Literal) String() string {
	switch l.Kind {
	case LiteralNull:
		return "NULL"
	case LiteralString:
		return fmt.Sprintf("'%s'", strings.ReplaceAll(l.Text, "'", "''"))
	case LiteralBoolean:
		return strings.ToUpper(l.Text)
	default:
		return l.Text
	}
}

// Unsupported stands in for any value expression that is not a plain
// constant: function calls, arithmetic, arrays, sub-selects, DEFAULT.
type Unsupported struct {
	Text string
}

func (u *Unsupported) expressionNode() {}
func (u *Unsupported) String() string {
	return u.Text
}
