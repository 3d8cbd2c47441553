package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser parses INSERT statements from tokens. Value expressions that are
// not plain constants are kept as Unsupported nodes holding their source
// text rather than being parsed further.
type Parser struct {
	lexer    *Lexer
	current  Token
	previous Token
	errors   []error
}

// NewParser creates a new parser for the given SQL input.
func NewParser(sql string) *Parser {
	lexer := NewLexer(sql)
	parser := &Parser{
		lexer:  lexer,
		errors: []error{},
	}
	parser.advance()
	return parser
}

// ParseInsert parses one INSERT statement.
func ParseInsert(sql string) (*InsertStmt, error) {
	return NewParser(sql).Parse()
}

// Native is the pure Go INSERT parser.
type Native struct{}

// Name identifies the parser in logs.
func (Native) Name() string { return "native" }

// ParseInsert parses one INSERT statement.
func (Native) ParseInsert(sql string) (*InsertStmt, error) { return ParseInsert(sql) }

// Parse parses a single INSERT statement with an optional trailing
// semicolon.
func (p *Parser) Parse() (*InsertStmt, error) {
	stmt, err := p.parseInsert()
	if err != nil {
		return nil, sqlError(err)
	}

	// Expect EOF or semicolon
	p.match(TokenSemicolon)
	if !p.check(TokenEOF) {
		return nil, sqlError(p.error("unexpected token after INSERT"))
	}

	return stmt, nil
}

// parseInsert parses an INSERT statement.
func (p *Parser) parseInsert() (*InsertStmt, error) {
	if !p.consume(TokenInsert, "expected INSERT") {
		return nil, p.lastError()
	}

	if !p.consume(TokenInto, "expected INTO") {
		return nil, p.lastError()
	}

	stmt := &InsertStmt{}
	if err := p.parseTarget(stmt); err != nil {
		return nil, err
	}

	// Parse optional column list
	if p.check(TokenLeftParen) && !p.peekQuery() {
		p.advance()
		columns, err := p.parseIdentifierList()
		if err != nil {
			return nil, err
		}
		if !p.consume(TokenRightParen, "expected ')'") {
			return nil, p.lastError()
		}
		stmt.Columns = columns
	}

	if p.match(TokenOverriding) {
		kind := strings.ToUpper(p.current.Value)
		if !p.check(TokenIdentifier) || (kind != "SYSTEM" && kind != "USER") {
			return nil, p.error("expected SYSTEM or USER after OVERRIDING")
		}
		p.advance()
		if !p.check(TokenIdentifier) || p.current.Value != "value" {
			return nil, p.error("expected VALUE")
		}
		p.advance()
		stmt.Overriding = kind
	}

	switch p.current.Type { //nolint:exhaustive
	case TokenDefault:
		p.advance()
		if !p.consume(TokenValues, "expected VALUES after DEFAULT") {
			return nil, p.lastError()
		}
		stmt.DefaultValues = true
	case TokenValues:
		p.advance()
		values, err := p.parseValueLists()
		if err != nil {
			return nil, err
		}
		stmt.Values = values
	case TokenSelect, TokenTable, TokenWith, TokenLeftParen:
		start := p.current.Position
		if err := p.skipRest(); err != nil {
			return nil, err
		}
		stmt.Query = strings.TrimSpace(p.lexer.input[start:p.current.Position])
		return stmt, nil
	default:
		return nil, p.error("expected VALUES, DEFAULT VALUES or a query")
	}

	if p.check(TokenOn) {
		stmt.OnConflict = true
		return stmt, p.skipRest()
	}
	if p.check(TokenReturning) {
		stmt.Returning = true
		return stmt, p.skipRest()
	}

	return stmt, nil
}

// parseTarget parses [[catalog.]schema.]table [AS alias].
func (p *Parser) parseTarget(stmt *InsertStmt) error {
	names, err := p.parseQualifiedName()
	if err != nil {
		return err
	}
	stmt.TableName = names[len(names)-1]
	if len(names) > 1 {
		stmt.Schema = names[len(names)-2]
	}

	if p.match(TokenAs) {
		if !p.check(TokenIdentifier) {
			return p.error("expected alias")
		}
		stmt.Alias = p.current.Value
		p.advance()
	}
	return nil
}

func (p *Parser) parseQualifiedName() ([]string, error) {
	var names []string
	for {
		if !p.check(TokenIdentifier) {
			return nil, p.error("expected table name")
		}
		names = append(names, p.current.Value)
		p.advance()

		if !p.match(TokenDot) {
			break
		}
	}
	if len(names) > 3 {
		return nil, p.error("improper qualified name (too many dotted names)")
	}
	return names, nil
}

func (p *Parser) parseIdentifierList() ([]string, error) {
	var identifiers []string

	for {
		if p.current.Type != TokenIdentifier {
			return nil, p.error("expected column name")
		}
		identifiers = append(identifiers, p.current.Value)
		p.advance()

		if !p.match(TokenComma) {
			break
		}
	}

	return identifiers, nil
}

// parseValueLists parses (expr, ...), (expr, ...) ...
func (p *Parser) parseValueLists() ([][]Expression, error) {
	var values [][]Expression
	for {
		if !p.consume(TokenLeftParen, "expected '('") {
			return nil, p.lastError()
		}

		var valueSet []Expression
		for {
			expr, err := p.parseValue()
			if err != nil {
				return nil, err
			}
			valueSet = append(valueSet, expr)

			if !p.match(TokenComma) {
				break
			}
		}

		if !p.consume(TokenRightParen, "expected ')'") {
			return nil, p.lastError()
		}

		values = append(values, valueSet)

		if !p.match(TokenComma) {
			break
		}
	}
	return values, nil
}

// parseValue parses one value expression. Constants, optionally signed,
// parenthesized or cast, become Literals; anything else is skipped with
// balanced brackets and kept as Unsupported.
func (p *Parser) parseValue() (Expression, error) {
	start := p.current.Position
	m := p.mark()
	if lit, ok := p.parseConstant(); ok && (p.check(TokenComma) || p.check(TokenRightParen)) {
		return lit, nil
	}
	p.reset(m)

	if err := p.skipExpression(); err != nil {
		return nil, err
	}
	return &Unsupported{Text: strings.TrimSpace(p.lexer.input[start:p.current.Position])}, nil
}

func (p *Parser) parseConstant() (*Literal, bool) {
	var lit *Literal

	switch p.current.Type { //nolint:exhaustive
	case TokenMinus:
		p.advance()
		if !p.check(TokenNumber) {
			return nil, false
		}
		lit = numberLiteral("-" + p.current.Value)
		p.advance()
	case TokenPlus:
		p.advance()
		if !p.check(TokenNumber) {
			return nil, false
		}
		lit = numberLiteral(p.current.Value)
		p.advance()
	case TokenNumber:
		lit = numberLiteral(p.current.Value)
		p.advance()
	case TokenString:
		lit = NewString(p.current.Value)
		p.advance()
	case TokenTrue:
		lit = NewBoolean(true)
		p.advance()
	case TokenFalse:
		lit = NewBoolean(false)
		p.advance()
	case TokenNull:
		lit = NewNull()
		p.advance()
	case TokenLeftParen:
		p.advance()
		inner, ok := p.parseConstant()
		if !ok || !p.match(TokenRightParen) {
			return nil, false
		}
		lit = inner
	case TokenCast:
		// CAST(constant AS type)
		p.advance()
		if !p.match(TokenLeftParen) {
			return nil, false
		}
		inner, ok := p.parseConstant()
		if !ok || !p.match(TokenAs) || !p.skipTypeName() || !p.match(TokenRightParen) {
			return nil, false
		}
		lit = inner
	case TokenIdentifier:
		// Typed literal: DATE '2024-01-01', timestamp with time zone '...'
		if !p.skipTypeName() || !p.check(TokenString) {
			return nil, false
		}
		lit = NewString(p.current.Value)
		p.advance()
	default:
		return nil, false
	}

	for p.match(TokenDoubleColon) {
		if !p.skipTypeName() {
			return nil, false
		}
	}
	return lit, true
}

// numberLiteral classifies a numeric lexeme. Integers that do not fit in
// 64 bits are kept as float lexemes so no digits are lost.
func numberLiteral(lexeme string) *Literal {
	if !strings.ContainsAny(lexeme, ".eE") {
		if i, err := strconv.ParseInt(lexeme, 10, 64); err == nil {
			return NewInteger(strconv.FormatInt(i, 10))
		}
	}
	return NewFloat(lexeme)
}

// skipTypeName skips a type name such as int, numeric(10,2), text[],
// pg_catalog.varchar or timestamp with time zone.
func (p *Parser) skipTypeName() bool {
	if !p.check(TokenIdentifier) {
		return false
	}
	for {
		switch p.current.Type { //nolint:exhaustive
		case TokenIdentifier, TokenWith, TokenDot:
			p.advance()
		case TokenLeftParen:
			if !p.skipBalanced(TokenLeftParen, TokenRightParen) {
				return false
			}
		case TokenLeftBracket:
			if !p.skipBalanced(TokenLeftBracket, TokenRightBracket) {
				return false
			}
		default:
			return true
		}
	}
}

func (p *Parser) skipBalanced(open, closer TokenType) bool {
	depth := 0
	for {
		switch p.current.Type { //nolint:exhaustive
		case TokenEOF, TokenError, TokenSemicolon:
			return false
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				p.advance()
				return true
			}
		}
		p.advance()
	}
}

// skipExpression advances to the ',' or ')' that ends the current value.
func (p *Parser) skipExpression() error {
	depth := 0
	for n := 0; ; n++ {
		switch p.current.Type { //nolint:exhaustive
		case TokenError:
			return p.error(p.current.Value)
		case TokenEOF, TokenSemicolon:
			return p.error("unexpected end of VALUES list")
		case TokenLeftParen, TokenLeftBracket:
			depth++
		case TokenRightBracket:
			if depth == 0 {
				return p.error("unbalanced ']'")
			}
			depth--
		case TokenRightParen, TokenComma:
			if depth == 0 {
				if n == 0 {
					return p.error("expected expression")
				}
				return nil
			}
			if p.current.Type == TokenRightParen {
				depth--
			}
		}
		p.advance()
	}
}

// skipRest advances to the end of the statement.
func (p *Parser) skipRest() error {
	for !p.check(TokenEOF) && !p.check(TokenSemicolon) {
		if p.check(TokenError) {
			return p.error(p.current.Value)
		}
		p.advance()
	}
	return nil
}

// peekQuery reports whether the '(' at the current position opens a
// query rather than a column list.
func (p *Parser) peekQuery() bool {
	return p.peek(TokenSelect) || p.peek(TokenWith) || p.peek(TokenValues) || p.peek(TokenLeftParen)
}

// mark is a saved parser position for backtracking.
type mark struct {
	current  Token
	previous Token
	position int
	line     int
	column   int
	errors   int
}

func (p *Parser) mark() mark {
	return mark{
		current:  p.current,
		previous: p.previous,
		position: p.lexer.position,
		line:     p.lexer.line,
		column:   p.lexer.column,
		errors:   len(p.errors),
	}
}

func (p *Parser) reset(m mark) {
	p.current = m.current
	p.previous = m.previous
	p.lexer.position = m.position
	p.lexer.line = m.line
	p.lexer.column = m.column
	p.errors = p.errors[:m.errors]
}

func (p *Parser) advance() {
	p.previous = p.current
	p.current = p.lexer.NextToken()
}

func (p *Parser) check(tokenType TokenType) bool {
	return p.current.Type == tokenType
}

func (p *Parser) peek(tokenType TokenType) bool {
	m := p.mark()
	p.advance()
	result := p.check(tokenType)
	p.reset(m)
	return result
}

func (p *Parser) match(tokenType TokenType) bool {
	if p.check(tokenType) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consume(tokenType TokenType, message string) bool {
	if p.check(tokenType) {
		p.advance()
		return true
	}
	p.error(message)
	return false
}

// error records a parse error at the current token. A lexer error token
// replaces the message with its own.
func (p *Parser) error(message string) error {
	err := NewParseError(message, p.current.Line, p.current.Column)
	switch p.current.Type { //nolint:exhaustive
	case TokenError:
		err.Msg = p.current.Value
	case TokenEOF:
		err.Msg = fmt.Sprintf("%s at end of input", message)
	default:
		err.Near = p.current.Value
	}
	p.errors = append(p.errors, err)
	return err
}

func (p *Parser) lastError() error {
	if len(p.errors) > 0 {
		return p.errors[len(p.errors)-1]
	}
	return NewParseError("unknown parse error", 0, 0)
}
