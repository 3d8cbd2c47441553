// Package classify decides whether a statement is an INSERT that can be
// rewritten or something to pass through untouched.
package classify

import "strings"

// Kind is the routing decision for a statement.
type Kind int

const (
	PassThrough Kind = iota
	Insert
)

func (k Kind) String() string {
	if k == Insert {
		return "insert"
	}
	return "pass-through"
}

// Classify reports Insert when the statement, after leading whitespace and
// comments, begins with the keywords INSERT INTO in any letter case.
func Classify(stmt string) Kind {
	rest := SkipCommentsAndSpace(stmt)
	rest, ok := keyword(rest, "insert")
	if !ok {
		return PassThrough
	}
	// Any whitespace or comments may sit between the two keywords.
	next := SkipCommentsAndSpace(rest)
	if len(next) == len(rest) {
		return PassThrough
	}
	if _, ok := keyword(next, "into"); !ok {
		return PassThrough
	}
	return Insert
}

// SkipCommentsAndSpace strips leading whitespace, -- line comments and
// /* */ block comments, as many as there are. An unterminated block comment
// consumes the rest of the input.
func SkipCommentsAndSpace(s string) string {
	for {
		s = strings.TrimLeft(s, " \t\r\n\f\v")
		switch {
		case strings.HasPrefix(s, "--"):
			i := strings.IndexByte(s, '\n')
			if i < 0 {
				return ""
			}
			s = s[i+1:]
		case strings.HasPrefix(s, "/*"):
			i := strings.Index(s[2:], "*/")
			if i < 0 {
				return ""
			}
			s = s[i+4:]
		default:
			return s
		}
	}
}

// keyword matches word at the start of s, case-insensitively, and requires
// that it is not merely the prefix of a longer identifier.
func keyword(s, word string) (string, bool) {
	if len(s) < len(word) || !strings.EqualFold(s[:len(word)], word) {
		return s, false
	}
	rest := s[len(word):]
	if rest != "" && isIdentChar(rest[0]) {
		return s, false
	}
	return rest, true
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c >= 0x80
}
