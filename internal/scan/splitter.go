package scan

// Splitter is a resumable bufio.SplitFunc that cuts input at statement
// boundaries. Bytes already classified are never rescanned: the splitter
// remembers its mode and how far into the pending statement it got.
type Splitter struct {
	state State
	off   int
}

// State returns the mode at the current scan position.
func (s *Splitter) State() State {
	return s.state
}

// Reset returns the splitter to the start of a statement.
func (s *Splitter) Reset() {
	s.state = Normal
	s.off = 0
}

// Split implements bufio.SplitFunc. A token is the statement text up to and
// including its terminating semicolon. At EOF any remaining bytes, even in
// the middle of a string or comment, are returned as a final token.
func (s *Splitter) Split(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	for i := s.off; i < len(data); i++ {
		cur := data[i]
		var next byte
		if i+1 < len(data) {
			next = data[i+1]
		} else if !atEOF && needsLookahead(s.state, cur) {
			s.off = i
			return 0, nil, nil
		}

		state, action := Step(s.state, cur, next)
		s.state = state
		switch action {
		case Skip:
			i++
		case Boundary:
			s.Reset()
			return i + 1, data[:i+1], nil
		}
	}

	if atEOF {
		s.Reset()
		return len(data), data, nil
	}

	// Skip only fires when the lookahead byte exists, so the loop always
	// stops exactly at len(data).
	s.off = len(data)
	return 0, nil, nil
}
