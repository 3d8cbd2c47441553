//go:build !cgo

package pgquery

import (
	"github.com/insinfo/insert-to-copy/internal/errors"
	"github.com/insinfo/insert-to-copy/internal/sql/parser"
)

// Available reports whether this build links the PostgreSQL parser.
const Available = false

// Parser is a stub in builds without cgo.
type Parser struct{}

// Name identifies the parser in logs.
func (Parser) Name() string { return "pgquery" }

// ParseInsert always fails; select the native parser instead.
func (Parser) ParseInsert(string) (*parser.InsertStmt, error) {
	return nil, errors.FeatureNotSupportedError("pg_query parser in a build without cgo")
}
