// Package scan locates SQL statement boundaries in a byte stream.
//
// The scanner is a single-byte-lookahead automaton over four lexical modes.
// A semicolon ends a statement only in Normal mode, so semicolons inside
// string literals, line comments and block comments are ignored. The whole
// automaton state is one State value, which lets a Splitter resume scanning
// where it stopped when more input arrives.
package scan

// State is the lexical mode at a scan position.
type State uint8

const (
	Normal State = iota
	InLineComment
	InBlockComment
	InStringLiteral
)

func (s State) String() string {
	switch s {
	case Normal:
		return "Normal"
	case InLineComment:
		return "InLineComment"
	case InBlockComment:
		return "InBlockComment"
	case InStringLiteral:
		return "InStringLiteral"
	default:
		return "Unknown"
	}
}

// Action tells the caller what to do after a transition.
type Action uint8

const (
	// None consumes the current byte only.
	None Action = iota
	// Skip consumes the current byte and the lookahead byte as one token
	// ("--", "/*", "*/" or an escaped "''").
	Skip
	// Boundary ends the statement at the current byte.
	Boundary
)

// Step is the transition function of the automaton. next is the lookahead
// byte, or 0 when there is none.
func Step(s State, cur, next byte) (State, Action) {
	switch s {
	case Normal:
		switch {
		case cur == '-' && next == '-':
			return InLineComment, Skip
		case cur == '/' && next == '*':
			return InBlockComment, Skip
		case cur == '\'':
			return InStringLiteral, None
		case cur == ';':
			return Normal, Boundary
		}
	case InLineComment:
		if cur == '\n' {
			return Normal, None
		}
	case InBlockComment:
		if cur == '*' && next == '/' {
			return Normal, Skip
		}
	case InStringLiteral:
		if cur == '\'' {
			if next == '\'' {
				return InStringLiteral, Skip
			}
			return Normal, None
		}
	}
	return s, None
}

// needsLookahead reports whether the transition for cur in state s depends
// on the following byte. When that byte has not been read yet, the scanner
// must wait for it instead of guessing.
func needsLookahead(s State, cur byte) bool {
	switch s {
	case Normal:
		return cur == '-' || cur == '/'
	case InBlockComment:
		return cur == '*'
	case InStringLiteral:
		return cur == '\''
	}
	return false
}
