package parser

import "fmt"

// TokenType represents the type of a SQL token.
type TokenType int

const (
	// Special tokens.
	TokenEOF TokenType = iota
	TokenError

	// Literals.
	TokenIdentifier
	TokenNumber
	TokenString
	TokenBitString // B'0101' or X'1F'
	TokenParam     // Parameter placeholder like $1, $2

	// Keywords.
	TokenTrue
	TokenFalse
	TokenNull
	TokenInsert
	TokenInto
	TokenValues
	TokenDefault
	TokenSelect
	TokenTable
	TokenWith
	TokenOn
	TokenReturning
	TokenOverriding
	TokenAs
	TokenCast

	// Operators
	TokenPlus
	TokenMinus
	TokenStar
	TokenOperator // any other operator run: ||, <=, @>, ...
	TokenDoubleColon

	// Delimiters
	TokenLeftParen
	TokenRightParen
	TokenLeftBracket
	TokenRightBracket
	TokenComma
	TokenSemicolon
	TokenDot
)

var tokenStrings = map[TokenType]string{
	TokenEOF:          "EOF",
	TokenError:        "ERROR",
	TokenIdentifier:   "IDENTIFIER",
	TokenNumber:       "NUMBER",
	TokenString:       "STRING",
	TokenBitString:    "BITSTRING",
	TokenTrue:         "TRUE",
	TokenFalse:        "FALSE",
	TokenNull:         "NULL",
	TokenParam:        "PARAM",
	TokenInsert:       "INSERT",
	TokenInto:         "INTO",
	TokenValues:       "VALUES",
	TokenDefault:      "DEFAULT",
	TokenSelect:       "SELECT",
	TokenTable:        "TABLE",
	TokenWith:         "WITH",
	TokenOn:           "ON",
	TokenReturning:    "RETURNING",
	TokenOverriding:   "OVERRIDING",
	TokenAs:           "AS",
	TokenCast:         "CAST",
	TokenPlus:         "+",
	TokenMinus:        "-",
	TokenStar:         "*",
	TokenOperator:     "OPERATOR",
	TokenDoubleColon:  "::",
	TokenLeftParen:    "(",
	TokenRightParen:   ")",
	TokenLeftBracket:  "[",
	TokenRightBracket: "]",
	TokenComma:        ",",
	TokenSemicolon:    ";",
	TokenDot:          ".",
}

// String returns the string representation of a token type.
func (t TokenType) String() string {
	if s, ok := tokenStrings[t]; ok {
		return s
	}
	return fmt.Sprintf("Unknown(%d)", t)
}

// Token represents a SQL token.
type Token struct {
	Type     TokenType
	Value    string
	Position int
	Line     int
	Column   int
	// Quoted is set for "double quoted" identifiers, whose case is kept.
	Quoted bool
}

// String returns a string representation of the token.
func (t Token) String() string {
	switch t.Type { //nolint:exhaustive
	case TokenIdentifier, TokenNumber, TokenString, TokenBitString, TokenParam, TokenOperator:
		return fmt.Sprintf("%s(%s)", t.Type, t.Value)
	}
	return t.Type.String()
}

// keywords maps the words the INSERT grammar cares about to token types.
// Everything else lexes as an identifier.
var keywords = map[string]TokenType{
	"insert":     TokenInsert,
	"into":       TokenInto,
	"values":     TokenValues,
	"default":    TokenDefault,
	"select":     TokenSelect,
	"table":      TokenTable,
	"with":       TokenWith,
	"on":         TokenOn,
	"returning":  TokenReturning,
	"overriding": TokenOverriding,
	"as":         TokenAs,
	"cast":       TokenCast,
	"true":       TokenTrue,
	"false":      TokenFalse,
	"null":       TokenNull,
}

// LookupKeyword returns the token type for a lower-cased word.
func LookupKeyword(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TokenIdentifier
}

// isKeyword reports whether t is one of the keyword token types.
func isKeyword(t TokenType) bool {
	return t >= TokenTrue && t <= TokenCast
}
