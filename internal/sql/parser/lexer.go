package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Lexer tokenizes SQL input.
type Lexer struct {
	input    string
	position int
	line     int
	column   int
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		line:   1,
		column: 1,
	}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	if errTok, ok := l.skipWhitespace(); !ok {
		return errTok
	}

	if l.position >= len(l.input) {
		return l.makeToken(TokenEOF, "")
	}

	ch := l.input[l.position]

	// Handle single-character tokens
	switch ch {
	case '(':
		return l.consumeChar(TokenLeftParen)
	case ')':
		return l.consumeChar(TokenRightParen)
	case '[':
		return l.consumeChar(TokenLeftBracket)
	case ']':
		return l.consumeChar(TokenRightBracket)
	case ',':
		return l.consumeChar(TokenComma)
	case ';':
		return l.consumeChar(TokenSemicolon)
	case '.':
		if isDigit(l.peek(1)) {
			return l.readNumber()
		}
		return l.consumeChar(TokenDot)
	case ':':
		if l.peek(1) == ':' {
			return l.consumeChars(TokenDoubleColon, 2)
		}
		return l.consumeChar(TokenOperator)
	case '\'':
		return l.readString()
	case '"':
		return l.readQuotedIdentifier()
	case '$':
		if isDigit(l.peek(1)) {
			return l.readParam()
		}
		return l.readDollarQuoted()
	}

	if isOperatorChar(ch) {
		return l.readOperator()
	}

	if isIdentStart(ch) {
		if l.peek(1) == '\'' {
			switch ch {
			case 'e', 'E':
				return l.readEscapeString()
			case 'b', 'B', 'x', 'X':
				return l.readBitString()
			case 'n', 'N':
				// National character literal; same as a plain string.
				l.advanceByte()
				return l.readString()
			}
		}
		return l.readIdentifier()
	}

	if isDigit(ch) {
		return l.readNumber()
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.position:])
	return l.makeToken(TokenError, fmt.Sprintf("unexpected character '%c'", r))
}

// skipWhitespace skips whitespace and comments. It returns false with an
// error token when a block comment never ends.
func (l *Lexer) skipWhitespace() (Token, bool) {
	for l.position < len(l.input) {
		ch := l.input[l.position]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f' || ch == '\v':
			l.advanceByte()
		case ch == '-' && l.peek(1) == '-':
			l.skipComment()
		case ch == '/' && l.peek(1) == '*':
			start := l.makeToken(TokenError, "unterminated block comment")
			l.advanceBytes(2)
			end := strings.Index(l.input[l.position:], "*/")
			if end < 0 {
				l.advanceBytes(len(l.input) - l.position)
				return start, false
			}
			l.advanceBytes(end + 2)
		default:
			return Token{}, true
		}
	}
	return Token{}, true
}

// skipComment skips SQL comments (-- to end of line).
func (l *Lexer) skipComment() {
	for l.position < len(l.input) && l.input[l.position] != '\n' {
		l.position++
		l.column++
	}
}

// peek looks ahead n characters without consuming.
func (l *Lexer) peek(n int) byte {
	pos := l.position + n
	if pos >= len(l.input) {
		return 0
	}
	return l.input[pos]
}

// advanceByte consumes one byte, keeping line and column current.
func (l *Lexer) advanceByte() {
	if l.input[l.position] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.position++
}

func (l *Lexer) advanceBytes(n int) {
	for ; n > 0; n-- {
		l.advanceByte()
	}
}

// consumeChar consumes a single character and returns a token.
func (l *Lexer) consumeChar(tokenType TokenType) Token {
	return l.consumeChars(tokenType, 1)
}

// consumeChars consumes n characters and returns a token.
func (l *Lexer) consumeChars(tokenType TokenType, n int) Token {
	value := l.input[l.position : l.position+n]
	tok := l.makeToken(tokenType, value)
	l.position += n
	l.column += n
	return tok
}

// makeToken creates a token at the current position.
func (l *Lexer) makeToken(tokenType TokenType, value string) Token {
	return Token{
		Type:     tokenType,
		Value:    value,
		Position: l.position,
		Line:     l.line,
		Column:   l.column,
	}
}

// readIdentifier reads an identifier or keyword. Unquoted identifiers fold
// to lower case.
func (l *Lexer) readIdentifier() Token {
	tok := l.makeToken(TokenIdentifier, "")

	start := l.position
	for l.position < len(l.input) && isIdentChar(l.input[l.position]) {
		l.position++
		l.column++
	}

	tok.Value = foldLower(l.input[start:l.position])
	tok.Type = LookupKeyword(tok.Value)
	return tok
}

// readParam reads a positional parameter such as $1.
func (l *Lexer) readParam() Token {
	tok := l.makeToken(TokenParam, "")
	start := l.position
	l.position++
	l.column++
	for l.position < len(l.input) && isDigit(l.input[l.position]) {
		l.position++
		l.column++
	}
	tok.Value = l.input[start:l.position]
	return tok
}

// readNumber reads a numeric literal: digits, an optional fraction and an
// optional exponent. The lexeme is kept exactly as written.
func (l *Lexer) readNumber() Token {
	tok := l.makeToken(TokenNumber, "")
	start := l.position

	l.skipDigits()
	if l.peek(0) == '.' && l.peek(1) != '.' {
		l.position++
		l.column++
		l.skipDigits()
	}
	if c := l.peek(0); c == 'e' || c == 'E' {
		n := 1
		if s := l.peek(1); s == '+' || s == '-' {
			n++
		}
		if isDigit(l.peek(n)) {
			l.position += n
			l.column += n
			l.skipDigits()
		}
	}

	tok.Value = l.input[start:l.position]
	return tok
}

func (l *Lexer) skipDigits() {
	for l.position < len(l.input) && isDigit(l.input[l.position]) {
		l.position++
		l.column++
	}
}

// readOperator reads a run of operator characters. A run never swallows
// the start of a comment.
func (l *Lexer) readOperator() Token {
	tok := l.makeToken(TokenOperator, "")
	start := l.position
	for l.position < len(l.input) && isOperatorChar(l.input[l.position]) {
		if l.position > start {
			if two := l.input[l.position-1 : l.position+1]; two == "--" || two == "/*" {
				l.position--
				l.column--
				break
			}
		}
		l.position++
		l.column++
	}

	tok.Value = l.input[start:l.position]
	switch tok.Value {
	case "+":
		tok.Type = TokenPlus
	case "-":
		tok.Type = TokenMinus
	case "*":
		tok.Type = TokenStar
	}
	return tok
}

// readQuoted reads a quoted string with the given quote character. A
// doubled quote stands for one quote character. Newlines are allowed.
func (l *Lexer) readQuoted(quoteChar byte, tokenType TokenType, errorMsg string) Token {
	tok := l.makeToken(tokenType, "")
	l.advanceByte() // Skip opening quote

	var builder strings.Builder

	for l.position < len(l.input) {
		ch := l.input[l.position]
		if ch == quoteChar {
			// Check for escaped quote
			if l.peek(1) == quoteChar {
				builder.WriteByte(quoteChar)
				l.advanceBytes(2)
				continue
			}
			// End of quoted string
			l.advanceByte()
			tok.Value = builder.String()
			return tok
		}
		builder.WriteByte(ch)
		l.advanceByte()
	}

	tok.Type = TokenError
	tok.Value = errorMsg
	return tok
}

// readString reads a string literal enclosed in single quotes.
func (l *Lexer) readString() Token {
	return l.readQuoted('\'', TokenString, "unterminated string literal")
}

// readQuotedIdentifier reads an identifier enclosed in double quotes.
func (l *Lexer) readQuotedIdentifier() Token {
	tok := l.readQuoted('"', TokenIdentifier, "unterminated quoted identifier")
	if tok.Type == TokenIdentifier {
		if tok.Value == "" {
			tok.Type = TokenError
			tok.Value = "zero-length delimited identifier"
		}
		tok.Quoted = true
	}
	return tok
}

// readBitString reads B'0101' and X'1F' literals.
func (l *Lexer) readBitString() Token {
	tok := l.makeToken(TokenBitString, "")
	l.advanceByte() // B or X
	body := l.readString()
	if body.Type == TokenError {
		return body
	}
	tok.Value = body.Value
	return tok
}

// readDollarQuoted reads $$body$$ or $tag$body$tag$.
func (l *Lexer) readDollarQuoted() Token {
	tok := l.makeToken(TokenString, "")

	end := 1
	for l.position+end < len(l.input) && isIdentChar(l.input[l.position+end]) && l.input[l.position+end] != '$' {
		end++
	}
	if l.peek(end) != '$' {
		return l.makeToken(TokenError, "unexpected character '$'")
	}
	delim := l.input[l.position : l.position+end+1]
	l.advanceBytes(len(delim))

	n := strings.Index(l.input[l.position:], delim)
	if n < 0 {
		tok.Type = TokenError
		tok.Value = "unterminated dollar-quoted string"
		l.advanceBytes(len(l.input) - l.position)
		return tok
	}
	tok.Value = l.input[l.position : l.position+n]
	l.advanceBytes(n + len(delim))
	return tok
}

// readEscapeString reads an E'...' literal, decoding backslash escapes.
func (l *Lexer) readEscapeString() Token {
	tok := l.makeToken(TokenString, "")
	l.advanceBytes(2) // E and opening quote

	var b strings.Builder
	for l.position < len(l.input) {
		ch := l.input[l.position]
		switch ch {
		case '\'':
			if l.peek(1) == '\'' {
				b.WriteByte('\'')
				l.advanceBytes(2)
				continue
			}
			l.advanceByte()
			tok.Value = b.String()
			return tok
		case '\\':
			if err := l.readEscape(&b); err != "" {
				tok.Type = TokenError
				tok.Value = err
				return tok
			}
		default:
			b.WriteByte(ch)
			l.advanceByte()
		}
	}

	tok.Type = TokenError
	tok.Value = "unterminated string literal"
	return tok
}

// readEscape decodes one backslash escape at the current position.
func (l *Lexer) readEscape(b *strings.Builder) string {
	l.advanceByte() // backslash
	if l.position >= len(l.input) {
		return "unterminated string literal"
	}
	ch := l.input[l.position]
	switch ch {
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'x':
		n := l.countWhile(1, 2, isHexDigit)
		if n == 0 {
			b.WriteByte('x')
			break
		}
		v, _ := strconv.ParseUint(l.input[l.position+1:l.position+1+n], 16, 8)
		b.WriteByte(byte(v))
		l.advanceBytes(n)
	case 'u', 'U':
		width := 4
		if ch == 'U' {
			width = 8
		}
		if l.countWhile(1, width, isHexDigit) != width {
			return "invalid Unicode escape"
		}
		v, _ := strconv.ParseUint(l.input[l.position+1:l.position+1+width], 16, 32)
		if !utf8.ValidRune(rune(v)) {
			return "invalid Unicode escape value"
		}
		b.WriteRune(rune(v))
		l.advanceBytes(width)
	default:
		if ch >= '0' && ch <= '7' {
			n := l.countWhile(0, 3, func(c byte) bool { return c >= '0' && c <= '7' })
			v, _ := strconv.ParseUint(l.input[l.position:l.position+n], 8, 16)
			b.WriteByte(byte(v))
			l.advanceBytes(n - 1)
			break
		}
		b.WriteByte(ch)
	}
	l.advanceByte()
	return ""
}

// countWhile counts up to max bytes satisfying ok, starting at offset off
// from the current position.
func (l *Lexer) countWhile(off, max int, ok func(byte) bool) int {
	n := 0
	for n < max && l.position+off+n < len(l.input) && ok(l.input[l.position+off+n]) {
		n++
	}
	return n
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// isIdentStart accepts ASCII letters, underscore and any non-ASCII byte, so
// UTF-8 identifiers pass through whole.
func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= utf8.RuneSelf
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '$'
}

func isOperatorChar(c byte) bool {
	return strings.IndexByte("+-*/<>=~!@#%^&|`?", c) >= 0
}

// foldLower lower-cases ASCII letters only, the way PostgreSQL folds
// unquoted identifiers.
func foldLower(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}
