package sink

import (
	"bufio"
	"context"
	"io"

	"github.com/insinfo/insert-to-copy/internal/copyfmt"
	"github.com/insinfo/insert-to-copy/internal/errors"
)

const textBufferSize = 64 * 1024

// Text writes a SQL dump: pass-through statements verbatim and COPY blocks
// in psql's "COPY ... FROM stdin;" form.
type Text struct {
	w      *bufio.Writer
	closer io.Closer
	// lineStart is true when the last byte written was a newline, or
	// nothing has been written yet.
	lineStart bool
	stats     Stats
}

// NewText returns a sink writing to w. If w is an io.Closer, Close closes it.
func NewText(w io.Writer) *Text {
	t := &Text{
		w:         bufio.NewWriterSize(w, textBufferSize),
		lineStart: true,
	}
	if c, ok := w.(io.Closer); ok {
		t.closer = c
	}
	return t
}

// WriteStatement writes stmt exactly as given.
func (t *Text) WriteStatement(_ context.Context, stmt string) error {
	if stmt == "" {
		return nil
	}
	if err := t.writeString(stmt); err != nil {
		return err
	}
	t.stats.Statements++
	return nil
}

// WriteCopy writes a COPY header, the rows and the \. terminator. The
// header always starts on a new line.
func (t *Text) WriteCopy(_ context.Context, target string, rows []byte, count int) error {
	if count == 0 {
		return nil
	}
	if !t.lineStart {
		if err := t.writeString("\n"); err != nil {
			return err
		}
	}
	if err := t.writeString(copyfmt.Header(target)); err != nil {
		return err
	}
	if err := t.write(rows); err != nil {
		return err
	}
	if err := t.writeString(copyfmt.Terminator + "\n"); err != nil {
		return err
	}
	t.stats.CopyBlocks++
	t.stats.Rows += int64(count)
	return nil
}

// Close flushes the buffer and closes the underlying writer.
func (t *Text) Close(_ context.Context) error {
	if err := t.w.Flush(); err != nil {
		return errors.IOErrorf("could not flush output: %v", err).WithCause(err)
	}
	if t.closer != nil {
		if err := t.closer.Close(); err != nil {
			return errors.IOErrorf("could not close output: %v", err).WithCause(err)
		}
	}
	return nil
}

// Stats returns the output counters.
func (t *Text) Stats() Stats {
	return t.stats
}

func (t *Text) writeString(s string) error {
	if s == "" {
		return nil
	}
	n, err := t.w.WriteString(s)
	return t.account(s[len(s)-1:], n, err)
}

func (t *Text) write(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	n, err := t.w.Write(b)
	return t.account(string(b[len(b)-1:]), n, err)
}

func (t *Text) account(last string, n int, err error) error {
	t.stats.Bytes += int64(n)
	if err != nil {
		return errors.IOErrorf("could not write output: %v", err).WithCause(err)
	}
	t.lineStart = last == "\n"
	return nil
}
