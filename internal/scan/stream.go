package scan

import (
	"bufio"
	stderrors "errors"
	"io"
	"iter"
	"strings"

	"github.com/insinfo/insert-to-copy/internal/errors"
)

const (
	// DefaultInitialBufferSize is the starting statement buffer capacity.
	// bufio doubles it whenever a statement does not fit.
	DefaultInitialBufferSize = 8192
	// DefaultMaxStatementSize bounds a single statement.
	DefaultMaxStatementSize = 1 << 30
)

// Options tunes a Stream.
type Options struct {
	InitialBufferSize int
	MaxStatementSize  int
}

// Stream reads complete SQL statements from an io.Reader.
type Stream struct {
	scan    *bufio.Scanner
	split   Splitter
	text    []byte
	count   int
	bytes   int64
	maxSize int
}

// NewStream returns a new Stream reading from r.
func NewStream(r io.Reader, opts Options) *Stream {
	if opts.InitialBufferSize <= 0 {
		opts.InitialBufferSize = DefaultInitialBufferSize
	}
	if opts.MaxStatementSize <= 0 {
		opts.MaxStatementSize = DefaultMaxStatementSize
	}
	if opts.InitialBufferSize > opts.MaxStatementSize {
		opts.InitialBufferSize = opts.MaxStatementSize
	}

	s := &Stream{
		scan:    bufio.NewScanner(r),
		maxSize: opts.MaxStatementSize,
	}
	// bufio needs one spare byte beyond the largest token it can return.
	s.scan.Buffer(make([]byte, 0, opts.InitialBufferSize), opts.MaxStatementSize+1)
	s.scan.Split(s.split.Split)
	return s
}

// Next advances to the next statement. It returns false at end of input or
// on error; check Err afterwards.
func (s *Stream) Next() bool {
	if !s.scan.Scan() {
		s.text = nil
		return false
	}
	s.text = s.scan.Bytes()
	s.count++
	s.bytes += int64(len(s.text))
	return true
}

// Text returns the current statement, including any leading whitespace and
// comments and the terminating semicolon.
func (s *Stream) Text() string {
	return string(s.text)
}

// Bytes returns the current statement. The slice is only valid until the
// next call to Next.
func (s *Stream) Bytes() []byte {
	return s.text
}

// Count returns the number of statements returned so far.
func (s *Stream) Count() int {
	return s.count
}

// BytesRead returns the number of input bytes consumed so far.
func (s *Stream) BytesRead() int64 {
	return s.bytes
}

// Err returns the first non-EOF error encountered.
func (s *Stream) Err() error {
	err := s.scan.Err()
	if err == nil {
		return nil
	}
	if stderrors.Is(err, bufio.ErrTooLong) {
		return errors.StatementTooLarge(int64(s.maxSize)).WithStatement(s.count + 1).WithCause(err)
	}
	return errors.IOErrorf("could not read input: %v", err).WithCause(err)
}

// Statements returns the remaining statements as a single-use sequence.
func (s *Stream) Statements() iter.Seq[string] {
	return func(yield func(string) bool) {
		for s.Next() {
			if !yield(s.Text()) {
				return
			}
		}
	}
}

// Split splits sql into statements. It is a convenience for callers that
// already hold the whole input in memory.
func Split(sql string) []string {
	var out []string
	for stmt := range NewStream(strings.NewReader(sql), Options{}).Statements() {
		out = append(out, stmt)
	}
	return out
}
