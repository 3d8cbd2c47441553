package parser

import (
	"testing"
)

func assertTokens(t *testing.T, input string, expected []Token) {
	t.Helper()
	lexer := NewLexer(input)
	for i, exp := range expected {
		token := lexer.NextToken()
		if token.Type != exp.Type {
			t.Errorf("Token %d: expected type %v, got %v", i, exp.Type, token.Type)
		}
		if token.Value != exp.Value {
			t.Errorf("Token %d: expected value %q, got %q", i, exp.Value, token.Value)
		}
	}
}

func TestLexerBasicTokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:  "INSERT statement",
			input: "INSERT INTO users (id, name) VALUES (1, 'John')",
			expected: []Token{
				{Type: TokenInsert, Value: "insert"},
				{Type: TokenInto, Value: "into"},
				{Type: TokenIdentifier, Value: "users"},
				{Type: TokenLeftParen, Value: "("},
				{Type: TokenIdentifier, Value: "id"},
				{Type: TokenComma, Value: ","},
				{Type: TokenIdentifier, Value: "name"},
				{Type: TokenRightParen, Value: ")"},
				{Type: TokenValues, Value: "values"},
				{Type: TokenLeftParen, Value: "("},
				{Type: TokenNumber, Value: "1"},
				{Type: TokenComma, Value: ","},
				{Type: TokenString, Value: "John"},
				{Type: TokenRightParen, Value: ")"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "Qualified name and terminator",
			input: "insert into public.t default values;",
			expected: []Token{
				{Type: TokenInsert, Value: "insert"},
				{Type: TokenInto, Value: "into"},
				{Type: TokenIdentifier, Value: "public"},
				{Type: TokenDot, Value: "."},
				{Type: TokenIdentifier, Value: "t"},
				{Type: TokenDefault, Value: "default"},
				{Type: TokenValues, Value: "values"},
				{Type: TokenSemicolon, Value: ";"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "Literals",
			input: "TRUE false Null $1",
			expected: []Token{
				{Type: TokenTrue, Value: "true"},
				{Type: TokenFalse, Value: "false"},
				{Type: TokenNull, Value: "null"},
				{Type: TokenParam, Value: "$1"},
				{Type: TokenEOF, Value: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTokens(t, tt.input, tt.expected)
		})
	}
}

func TestLexerOperators(t *testing.T) {
	assertTokens(t, "|| <= @> + - * :: [ ]", []Token{
		{Type: TokenOperator, Value: "||"},
		{Type: TokenOperator, Value: "<="},
		{Type: TokenOperator, Value: "@>"},
		{Type: TokenPlus, Value: "+"},
		{Type: TokenMinus, Value: "-"},
		{Type: TokenStar, Value: "*"},
		{Type: TokenDoubleColon, Value: "::"},
		{Type: TokenLeftBracket, Value: "["},
		{Type: TokenRightBracket, Value: "]"},
		{Type: TokenEOF, Value: ""},
	})

	// An operator run stops where a comment starts.
	assertTokens(t, "+-- comment\n1", []Token{
		{Type: TokenPlus, Value: "+"},
		{Type: TokenNumber, Value: "1"},
		{Type: TokenEOF, Value: ""},
	})
}

func TestLexerComments(t *testing.T) {
	assertTokens(t, "1 -- one; two\n/* three;\n four */ 2--tail", []Token{
		{Type: TokenNumber, Value: "1"},
		{Type: TokenNumber, Value: "2"},
		{Type: TokenEOF, Value: ""},
	})
}

func TestLexerNumbers(t *testing.T) {
	assertTokens(t, "42 3.14 .5 1e10 2.5E-3 7.", []Token{
		{Type: TokenNumber, Value: "42"},
		{Type: TokenNumber, Value: "3.14"},
		{Type: TokenNumber, Value: ".5"},
		{Type: TokenNumber, Value: "1e10"},
		{Type: TokenNumber, Value: "2.5E-3"},
		{Type: TokenNumber, Value: "7."},
		{Type: TokenEOF, Value: ""},
	})
}

func TestLexerStrings(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Token
	}{
		{"doubled quote", "'it''s'", Token{Type: TokenString, Value: "it's"}},
		{"empty", "''", Token{Type: TokenString, Value: ""}},
		{"newline inside", "'line1\nline2'", Token{Type: TokenString, Value: "line1\nline2"}},
		{"literal backslash", `'a\tb'`, Token{Type: TokenString, Value: `a\tb`}},
		{"escape string", `E'a\tb\\n'`, Token{Type: TokenString, Value: "a\tb\\n"}},
		{"escape string quote", `e'it\'s'`, Token{Type: TokenString, Value: "it's"}},
		{"escape string numeric", `E'\x41\101é'`, Token{Type: TokenString, Value: "AAé"}},
		{"dollar quoted", "$$a;'b$$", Token{Type: TokenString, Value: "a;'b"}},
		{"tagged dollar quoted", "$fn$x$$y$fn$", Token{Type: TokenString, Value: "x$$y"}},
		{"national", "N'abc'", Token{Type: TokenString, Value: "abc"}},
		{"bit string", "B'0101'", Token{Type: TokenBitString, Value: "0101"}},
		{"hex string", "X'1F'", Token{Type: TokenBitString, Value: "1F"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTokens(t, tt.input, []Token{tt.expected, {Type: TokenEOF}})
		})
	}
}

func TestLexerIdentifiers(t *testing.T) {
	lexer := NewLexer(`Users "MixedCase" _x1 café "a""b"`)

	expected := []struct {
		value  string
		quoted bool
	}{
		{"users", false},
		{"MixedCase", true},
		{"_x1", false},
		{"café", false},
		{`a"b`, true},
	}
	for i, exp := range expected {
		tok := lexer.NextToken()
		if tok.Type != TokenIdentifier {
			t.Fatalf("Token %d: expected identifier, got %v", i, tok)
		}
		if tok.Value != exp.value || tok.Quoted != exp.quoted {
			t.Errorf("Token %d: expected %q quoted=%v, got %q quoted=%v", i, exp.value, exp.quoted, tok.Value, tok.Quoted)
		}
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{"'abc", "unterminated string literal"},
		{"/* open", "unterminated block comment"},
		{`""`, "zero-length delimited identifier"},
		{`"abc`, "unterminated quoted identifier"},
		{"$$abc", "unterminated dollar-quoted string"},
		{`E'\u12'`, "invalid Unicode escape"},
		{`\`, `unexpected character '\'`},
	}

	for _, tt := range tests {
		tok := NewLexer(tt.input).NextToken()
		if tok.Type != TokenError {
			t.Errorf("%q: expected error token, got %v", tt.input, tok)
			continue
		}
		if tok.Value != tt.msg {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.msg, tok.Value)
		}
	}
}

func TestLexerPositions(t *testing.T) {
	lexer := NewLexer("INSERT\n  INTO 'a\nb' x")

	tok := lexer.NextToken()
	if tok.Line != 1 || tok.Column != 1 || tok.Position != 0 {
		t.Errorf("INSERT at %d:%d (%d)", tok.Line, tok.Column, tok.Position)
	}
	tok = lexer.NextToken()
	if tok.Line != 2 || tok.Column != 3 || tok.Position != 9 {
		t.Errorf("INTO at %d:%d (%d)", tok.Line, tok.Column, tok.Position)
	}
	lexer.NextToken()
	tok = lexer.NextToken()
	if tok.Line != 3 || tok.Column != 4 {
		t.Errorf("x at %d:%d", tok.Line, tok.Column)
	}
}

func TestTokenString(t *testing.T) {
	if got := (Token{Type: TokenNumber, Value: "1"}).String(); got != "NUMBER(1)" {
		t.Errorf("got %q", got)
	}
	if got := (Token{Type: TokenComma, Value: ","}).String(); got != "," {
		t.Errorf("got %q", got)
	}
	if got := TokenType(999).String(); got != "Unknown(999)" {
		t.Errorf("got %q", got)
	}
}
