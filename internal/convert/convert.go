// Package convert drives a dump conversion: it splits the input into
// statements, turns convertible INSERTs into buffered COPY rows and passes
// everything else through, flushing buffered rows first so statement order
// is preserved.
package convert

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/insinfo/insert-to-copy/internal/buffer"
	"github.com/insinfo/insert-to-copy/internal/classify"
	"github.com/insinfo/insert-to-copy/internal/copyfmt"
	"github.com/insinfo/insert-to-copy/internal/errors"
	"github.com/insinfo/insert-to-copy/internal/log"
	"github.com/insinfo/insert-to-copy/internal/scan"
	"github.com/insinfo/insert-to-copy/internal/sink"
	"github.com/insinfo/insert-to-copy/internal/sql"
)

// State is the driver's position between statements.
type State int

const (
	// Accumulating collects rows of consecutive INSERTs.
	Accumulating State = iota
	// Draining writes every buffered table before other output.
	Draining
)

func (s State) String() string {
	if s == Draining {
		return "draining"
	}
	return "accumulating"
}

// Options configures a Converter.
type Options struct {
	// Threshold is the per-table row count that forces a flush.
	Threshold int
	// MaxStatementSize bounds a single statement in bytes.
	MaxStatementSize int
	Format           copyfmt.Options
	Logger           log.Logger
}

// Summary describes a finished run.
type Summary struct {
	Statements  int
	Inserts     int
	PassThrough int
	// Skipped counts INSERTs that parsed but have no COPY form.
	Skipped    int
	Warnings   int
	Rows       int64
	CopyBlocks int
	Tables     int
	BytesIn    int64
	BytesOut   int64
	Elapsed    time.Duration
}

// Converter owns the row registry for one run. It is not safe for
// concurrent use.
type Converter struct {
	parser   sql.Parser
	sink     sink.Sink
	registry *buffer.Registry
	format   copyfmt.Options
	maxSize  int
	logger   log.Logger
	state    State
	summary  Summary
	row      []byte
	// blocks is the COPY block count when text was last written.
	blocks int
}

// New returns a converter that parses INSERTs with p and writes to s.
func New(p sql.Parser, s sink.Sink, opts Options) *Converter {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Converter{
		parser:   p,
		sink:     s,
		registry: buffer.NewRegistry(s, opts.Threshold),
		format:   opts.Format,
		maxSize:  opts.MaxStatementSize,
		logger:   logger.With("parser", p.Name()),
	}
}

// State returns the current driver state.
func (c *Converter) State() State { return c.state }

// Summary returns the counters collected so far.
func (c *Converter) Summary() Summary {
	s := c.summary
	rs := c.registry.Stats()
	s.CopyBlocks = rs.CopyBlocks
	s.Tables = rs.Tables
	s.BytesOut = c.sink.Stats().Bytes
	return s
}

// Process handles one complete statement as produced by the scanner.
func (c *Converter) Process(ctx context.Context, stmt string) error {
	if strings.TrimSpace(stmt) == "" {
		return c.passThrough(ctx, stmt)
	}
	c.summary.Statements++
	n := c.summary.Statements

	if classify.Classify(stmt) == classify.PassThrough {
		c.summary.PassThrough++
		return c.passThrough(ctx, stmt)
	}

	ins, err := c.parser.ParseInsert(stmt)
	if err != nil {
		c.summary.Warnings++
		c.logger.Warn("Error parsing SQL", "statement", n, "error", errors.GetError(err).Message)
		return c.passThrough(ctx, stmt)
	}

	target, err := copyfmt.ResolveTarget(ins, c.format)
	if err == nil {
		err = ins.Convertible()
	}
	if err != nil {
		c.summary.Skipped++
		c.logger.Info("INSERT passed through unchanged", "statement", n, "reason", errors.GetError(err).Message)
		return c.passThrough(ctx, stmt)
	}

	// Comments ahead of the INSERT must not break up a run of rows: they are
	// written in place only while nothing is buffered, and dropped otherwise.
	body := classify.SkipCommentsAndSpace(stmt)
	if lead := stmt[:len(stmt)-len(body)]; strings.TrimSpace(lead) != "" {
		if c.registry.Stats().Buffered > 0 {
			c.logger.Debug("Dropped comment inside an INSERT run", "statement", n)
		} else if err := c.writeText(ctx, lead); err != nil {
			return err
		}
	}

	tb := c.registry.GetOrCreate(target)
	for _, values := range ins.Values {
		c.row = copyfmt.AppendRow(c.row[:0], values, c.format)
		if err := c.registry.Append(ctx, tb, c.row); err != nil {
			return err
		}
	}
	c.summary.Inserts++
	c.summary.Rows += int64(len(ins.Values))
	c.logger.Debug("INSERT buffered", "statement", n, "table", target, "rows", len(ins.Values))
	return nil
}

// passThrough drains the registry and writes text verbatim.
func (c *Converter) passThrough(ctx context.Context, text string) error {
	if err := c.drain(ctx); err != nil {
		return err
	}
	return c.writeText(ctx, text)
}

// writeText writes text to the sink. When a COPY block was written since the
// previous text, one leading line break is dropped because the block already
// ends its line.
func (c *Converter) writeText(ctx context.Context, text string) error {
	if blocks := c.registry.Stats().CopyBlocks; blocks > c.blocks {
		c.blocks = blocks
		text = trimLineBreak(text)
	}
	return c.sink.WriteStatement(ctx, text)
}

// drain flushes every table.
func (c *Converter) drain(ctx context.Context) error {
	c.state = Draining
	defer func() { c.state = Accumulating }()
	return c.registry.FlushAll(ctx)
}

func trimLineBreak(s string) string {
	if strings.HasPrefix(s, "\r\n") {
		return s[2:]
	}
	return strings.TrimPrefix(s, "\n")
}

// Finish flushes whatever is still buffered and closes the sink.
func (c *Converter) Finish(ctx context.Context) error {
	if err := c.drain(ctx); err != nil {
		c.closeSink(ctx)
		return err
	}
	return c.closeSink(ctx)
}

func (c *Converter) closeSink(ctx context.Context) error {
	return c.sink.Close(context.WithoutCancel(ctx))
}

// Run converts every statement read from r, then flushes and closes the
// sink. Cancellation is checked between statements. On a fatal error rows
// still buffered are discarded; blocks already written stay well formed.
func (c *Converter) Run(ctx context.Context, r io.Reader) (Summary, error) {
	start := time.Now()
	stream := scan.NewStream(r, scan.Options{MaxStatementSize: c.maxSize})

	for stream.Next() {
		if err := ctx.Err(); err != nil {
			return c.abort(ctx, stream, errors.QueryCanceledError(err))
		}
		if err := c.Process(ctx, stream.Text()); err != nil {
			return c.abort(ctx, stream, atStatement(err, stream.Count()))
		}
	}
	if err := stream.Err(); err != nil {
		return c.abort(ctx, stream, err)
	}

	if err := c.Finish(ctx); err != nil {
		return c.result(stream, start), err
	}

	s := c.result(stream, start)
	c.logger.Info("Conversion complete",
		"statements", s.Statements,
		"inserts", s.Inserts,
		"rows", s.Rows,
		"copy_blocks", s.CopyBlocks,
		"warnings", s.Warnings,
		"elapsed", s.Elapsed)
	return s, nil
}

func (c *Converter) abort(ctx context.Context, stream *scan.Stream, err error) (Summary, error) {
	if cerr := c.closeSink(ctx); cerr != nil {
		c.logger.Error("Could not close output", "error", cerr)
	}
	return c.result(stream, time.Time{}), err
}

func (c *Converter) result(stream *scan.Stream, start time.Time) Summary {
	s := c.Summary()
	s.BytesIn = stream.BytesRead()
	if !start.IsZero() {
		s.Elapsed = time.Since(start)
	}
	return s
}

func atStatement(err error, n int) error {
	e := errors.GetError(err)
	if e.Statement == 0 {
		e.WithStatement(n)
	}
	return e
}
