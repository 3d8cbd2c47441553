// Package buffer accumulates formatted COPY rows per target table and
// flushes them to a sink as COPY blocks.
package buffer

import (
	"bytes"
	"context"

	"github.com/insinfo/insert-to-copy/internal/sink"
)

// DefaultThreshold is the number of rows a table buffers before it is
// flushed on its own.
const DefaultThreshold = 10000

// TableBuffer holds the pending rows of one COPY target.
type TableBuffer struct {
	name  string
	rows  bytes.Buffer
	count int
}

// Name returns the COPY target the buffer was registered under.
func (tb *TableBuffer) Name() string { return tb.name }

// Len returns the number of buffered rows.
func (tb *TableBuffer) Len() int { return tb.count }

// Size returns the number of buffered bytes.
func (tb *TableBuffer) Size() int { return tb.rows.Len() }

func (tb *TableBuffer) reset() {
	tb.rows.Reset()
	tb.count = 0
}

// Stats describes registry activity.
type Stats struct {
	Tables      int
	Buffered    int
	RowsFlushed int64
	CopyBlocks  int
}

// Registry maps COPY targets to their buffers. It is owned by a single
// converter and is not safe for concurrent use.
type Registry struct {
	sink      sink.Sink
	threshold int
	tables    map[string]*TableBuffer
	order     []*TableBuffer
	buffered  int
	flushed   int64
	blocks    int
}

// NewRegistry returns an empty registry writing to s. A threshold below 1
// selects DefaultThreshold.
func NewRegistry(s sink.Sink, threshold int) *Registry {
	if threshold < 1 {
		threshold = DefaultThreshold
	}
	return &Registry{
		sink:      s,
		threshold: threshold,
		tables:    make(map[string]*TableBuffer),
	}
}

// Threshold returns the per-table flush threshold.
func (r *Registry) Threshold() int { return r.threshold }

// GetOrCreate returns the buffer for name, registering an empty one on
// first use. Names are compared exactly.
func (r *Registry) GetOrCreate(name string) *TableBuffer {
	if tb, ok := r.tables[name]; ok {
		return tb
	}
	tb := &TableBuffer{name: name}
	r.tables[name] = tb
	r.order = append(r.order, tb)
	return tb
}

// Append adds one formatted row, which must end in a newline. When the
// table reaches the threshold it is flushed, and only that table.
func (r *Registry) Append(ctx context.Context, tb *TableBuffer, row []byte) error {
	tb.rows.Write(row)
	tb.count++
	r.buffered++
	if tb.count >= r.threshold {
		return r.FlushOne(ctx, tb)
	}
	return nil
}

// FlushOne writes tb as one COPY block and empties it. An empty buffer
// writes nothing.
func (r *Registry) FlushOne(ctx context.Context, tb *TableBuffer) error {
	if tb.count == 0 {
		return nil
	}
	if err := r.sink.WriteCopy(ctx, tb.name, tb.rows.Bytes(), tb.count); err != nil {
		return err
	}
	r.buffered -= tb.count
	r.flushed += int64(tb.count)
	r.blocks++
	tb.reset()
	return nil
}

// FlushAll flushes every table in registration order.
func (r *Registry) FlushAll(ctx context.Context) error {
	for _, tb := range r.order {
		if err := r.FlushOne(ctx, tb); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns the current counters.
func (r *Registry) Stats() Stats {
	return Stats{
		Tables:      len(r.order),
		Buffered:    r.buffered,
		RowsFlushed: r.flushed,
		CopyBlocks:  r.blocks,
	}
}
