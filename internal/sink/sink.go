// Package sink delivers converted output: to a dump file, or straight into
// a PostgreSQL server.
package sink

import "context"

// Sink receives the converter's output in order.
type Sink interface {
	// WriteStatement emits a statement that is passed through unchanged.
	WriteStatement(ctx context.Context, stmt string) error
	// WriteCopy emits one COPY block. rows holds count COPY text lines,
	// each terminated by a newline.
	WriteCopy(ctx context.Context, target string, rows []byte, count int) error
	// Close flushes buffered output and releases the destination.
	Close(ctx context.Context) error
	// Stats reports what has been written so far.
	Stats() Stats
}

// Stats counts sink output.
type Stats struct {
	Statements int
	CopyBlocks int
	Rows       int64
	Bytes      int64
}
