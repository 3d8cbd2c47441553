// Package sql selects the INSERT parser used by the converter.
package sql

import (
	"strings"

	"github.com/insinfo/insert-to-copy/internal/errors"
	"github.com/insinfo/insert-to-copy/internal/sql/parser"
	"github.com/insinfo/insert-to-copy/internal/sql/pgquery"
)

// Parser kinds accepted by New.
const (
	KindAuto    = "auto"
	KindPGQuery = "pgquery"
	KindNative  = "native"
)

// Parser turns one INSERT statement into its tree form.
type Parser interface {
	Name() string
	ParseInsert(sql string) (*parser.InsertStmt, error)
}

// New returns the parser for kind. "auto" prefers the PostgreSQL grammar
// and falls back to the native parser in builds without cgo.
func New(kind string) (Parser, error) {
	switch strings.ToLower(kind) {
	case "", KindAuto:
		if pgquery.Available {
			return pgquery.Parser{}, nil
		}
		return parser.Native{}, nil
	case KindPGQuery:
		if !pgquery.Available {
			return nil, errors.FeatureNotSupportedError("parser \"pgquery\" in a build without cgo").
				WithHint("Use parser \"native\" or rebuild with CGO_ENABLED=1.")
		}
		return pgquery.Parser{}, nil
	case KindNative:
		return parser.Native{}, nil
	default:
		return nil, errors.InvalidParameterError("parser", kind)
	}
}

// ValidKind reports whether kind names a parser.
func ValidKind(kind string) bool {
	switch strings.ToLower(kind) {
	case "", KindAuto, KindPGQuery, KindNative:
		return true
	}
	return false
}
