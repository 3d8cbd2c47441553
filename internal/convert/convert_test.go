package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/cockroachdb/datadriven"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insinfo/insert-to-copy/internal/copyfmt"
	"github.com/insinfo/insert-to-copy/internal/errors"
	"github.com/insinfo/insert-to-copy/internal/log"
	"github.com/insinfo/insert-to-copy/internal/sink"
	"github.com/insinfo/insert-to-copy/internal/sql"
	"github.com/insinfo/insert-to-copy/internal/sql/pgquery"
	"github.com/insinfo/insert-to-copy/internal/testutil"
)

// parserKinds lists every parser this build can run.
func parserKinds() []string {
	if pgquery.Available {
		return []string{sql.KindNative, sql.KindPGQuery}
	}
	return []string{sql.KindNative}
}

func convertString(t *testing.T, kind, input string, opts Options) (string, Summary) {
	t.Helper()
	p, err := sql.New(kind)
	require.NoError(t, err)

	var out bytes.Buffer
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	c := New(p, sink.NewText(&out), opts)
	s, err := c.Run(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	return out.String(), s
}

func TestConvert(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		datadriven.RunTest(t, path, func(t *testing.T, d *datadriven.TestData) string {
			switch d.Cmd {
			case "convert":
				var opts Options
				if d.HasArg("threshold") {
					d.ScanArgs(t, "threshold", &opts.Threshold)
				}
				opts.Format.IncludeColumns = d.HasArg("include-columns")
				opts.Format.EscapeBackslash = d.HasArg("escape-backslash")

				// Every available parser must produce the same output.
				var result string
				for i, kind := range parserKinds() {
					out, s := convertString(t, kind, d.Input+"\n", opts)
					if d.HasArg("summary") {
						out += formatSummary(s)
					}
					if i > 0 && out != result {
						d.Fatalf(t, "parser %s disagrees:\n%s\nvs\n%s", kind, out, result)
					}
					result = out
				}
				return result
			default:
				d.Fatalf(t, "unknown command %s", d.Cmd)
				return ""
			}
		})
	})
}

func formatSummary(s Summary) string {
	return fmt.Sprintf("summary: statements=%d inserts=%d pass-through=%d skipped=%d warnings=%d rows=%d copy-blocks=%d tables=%d\n",
		s.Statements, s.Inserts, s.PassThrough, s.Skipped, s.Warnings, s.Rows, s.CopyBlocks, s.Tables)
}

func TestDefaultThresholdSplitsLargeTable(t *testing.T) {
	const n = 25000
	input := testutil.GenerateInserts("big", n)

	out, s := convertString(t, sql.KindNative, input, Options{})

	assert.Equal(t, 3, strings.Count(out, "COPY big FROM stdin;\n"))
	assert.Equal(t, int64(n), s.Rows)
	assert.Equal(t, 3, s.CopyBlocks)

	want := "COPY big FROM stdin;\n" + testutil.ExpectedRows(1, 10000) + "\\.\n" +
		"COPY big FROM stdin;\n" + testutil.ExpectedRows(10001, 20000) + "\\.\n" +
		"COPY big FROM stdin;\n" + testutil.ExpectedRows(20001, n) + "\\.\n"
	assert.Equal(t, want, out)
}

func TestMultiRowInsert(t *testing.T) {
	input := testutil.GenerateMultiRowInsert("m", 50)
	out, s := convertString(t, sql.KindNative, input, Options{Threshold: 20})

	assert.Equal(t, int64(50), s.Rows)
	assert.Equal(t, 1, s.Inserts)
	testutil.AssertOrdered(t, out,
		"COPY m FROM stdin;\n"+testutil.ExpectedRows(1, 20)+"\\.\n",
		"COPY m FROM stdin;\n"+testutil.ExpectedRows(21, 40)+"\\.\n",
		"COPY m FROM stdin;\n"+testutil.ExpectedRows(41, 50)+"\\.\n")
}

// Dumps that annotate every INSERT still produce one block per table.
func TestCommentedInsertsShareOneBlock(t *testing.T) {
	var b, rows strings.Builder
	for i := 1; i <= 100; i++ {
		fmt.Fprintf(&b, "-- row %d\nINSERT INTO t VALUES (%d);\n", i, i)
		fmt.Fprintf(&rows, "%d\n", i)
	}

	for _, kind := range parserKinds() {
		t.Run(kind, func(t *testing.T) {
			out, s := convertString(t, kind, b.String(), Options{})

			assert.Equal(t, 1, s.CopyBlocks)
			assert.Equal(t, int64(100), s.Rows)
			assert.Equal(t, "-- row 1\nCOPY t FROM stdin;\n"+rows.String()+"\\.\n", out)
		})
	}
}

// Output must not depend on how the input happens to be chunked.
func TestChunkingDoesNotChangeOutput(t *testing.T) {
	input := "CREATE TABLE t (a text);\n" +
		"INSERT INTO t VALUES ('x;y'), ('it''s');\n" +
		"/* ; */ INSERT INTO t VALUES (-- ;\n 'z');\n" +
		"SELECT 1;\n"

	want, _ := convertString(t, sql.KindNative, input, Options{})

	for _, r := range []struct {
		name string
		src  func() (string, error)
	}{
		{"one byte", func() (string, error) { return run(iotest.OneByteReader(strings.NewReader(input))) }},
		{"half", func() (string, error) { return run(iotest.HalfReader(strings.NewReader(input))) }},
		{"data err", func() (string, error) { return run(iotest.DataErrReader(strings.NewReader(input))) }},
	} {
		got, err := r.src()
		require.NoError(t, err, r.name)
		assert.Equal(t, want, got, r.name)
	}
}

func run(r io.Reader) (string, error) {
	var out bytes.Buffer
	c := New(nativeParser(), sink.NewText(&out), Options{Logger: log.Discard()})
	_, err := c.Run(context.Background(), r)
	return out.String(), err
}

func nativeParser() sql.Parser {
	p, err := sql.New(sql.KindNative)
	if err != nil {
		panic(err)
	}
	return p
}

// stateSink records the converter's state at every COPY block.
type stateSink struct {
	*sink.Text
	conv   *Converter
	states []State
	err    error
	failAt int
	copies int
}

func (s *stateSink) WriteCopy(ctx context.Context, target string, rows []byte, count int) error {
	s.copies++
	if s.failAt > 0 && s.copies == s.failAt {
		return s.err
	}
	s.states = append(s.states, s.conv.State())
	return s.Text.WriteCopy(ctx, target, rows, count)
}

func newStateSink() *stateSink {
	var buf bytes.Buffer
	return &stateSink{Text: sink.NewText(&buf)}
}

func TestStateDuringFlush(t *testing.T) {
	ctx := context.Background()
	ss := newStateSink()
	c := New(nativeParser(), ss, Options{Threshold: 2, Logger: log.Discard()})
	ss.conv = c

	assert.Equal(t, Accumulating, c.State())
	require.NoError(t, c.Process(ctx, "INSERT INTO t VALUES (1);"))
	require.NoError(t, c.Process(ctx, "INSERT INTO t VALUES (2);"))
	require.NoError(t, c.Process(ctx, "INSERT INTO t VALUES (3);"))
	require.NoError(t, c.Process(ctx, "SELECT 1;"))
	assert.Equal(t, Accumulating, c.State())

	// The threshold flush happens while accumulating; the flush before a
	// pass-through happens while draining.
	assert.Equal(t, []State{Accumulating, Draining}, ss.states)
	assert.Equal(t, "draining", Draining.String())
}

func TestSinkErrorIsFatal(t *testing.T) {
	ss := newStateSink()
	ss.failAt = 1
	ss.err = errors.IOErrorf("disk full")
	c := New(nativeParser(), ss, Options{Logger: log.Discard()})
	ss.conv = c

	input := "INSERT INTO t VALUES (1);\nCREATE TABLE u ();\nINSERT INTO u VALUES (2);\n"
	_, err := c.Run(context.Background(), strings.NewReader(input))
	require.Error(t, err)
	assert.False(t, errors.IsRecoverable(err))
	assert.Equal(t, errors.CategoryIOFailure, errors.CategoryOf(err))
	assert.Equal(t, 2, errors.GetError(err).Statement)
}

func TestStatementTooLarge(t *testing.T) {
	input := "SELECT 1;\nINSERT INTO t VALUES ('" + strings.Repeat("x", 200) + "');\n"
	var out bytes.Buffer
	c := New(nativeParser(), sink.NewText(&out), Options{MaxStatementSize: 64, Logger: log.Discard()})

	s, err := c.Run(context.Background(), strings.NewReader(input))
	require.Error(t, err)
	assert.Equal(t, errors.CategoryMemoryExhaustion, errors.CategoryOf(err))
	assert.Equal(t, 1, s.Statements)
	// What was written before the failure is still flushed to the writer.
	assert.Equal(t, "SELECT 1;", out.String())
}

func TestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	c := New(nativeParser(), sink.NewText(&out), Options{Logger: log.Discard()})
	_, err := c.Run(ctx, strings.NewReader("INSERT INTO t VALUES (1);"))
	require.Error(t, err)
	assert.Equal(t, errors.CategoryCanceled, errors.CategoryOf(err))
	assert.Empty(t, out.String())
}

func TestSummaryBytes(t *testing.T) {
	input := "INSERT INTO t VALUES (1, 'a');\nSELECT 1;\n"
	out, s := convertString(t, sql.KindNative, input, Options{})

	assert.Equal(t, int64(len(input)), s.BytesIn)
	assert.Equal(t, int64(len(out)), s.BytesOut)
	assert.Equal(t, 2, s.Statements)
	assert.Equal(t, 1, s.Tables)
	assert.Equal(t, "COPY t FROM stdin;\n1\ta\n\\.\nSELECT 1;\n", out)
}

func TestIncludeColumnsHeader(t *testing.T) {
	out, _ := convertString(t, sql.KindNative, "INSERT INTO t (b, a) VALUES (1, 2);\n",
		Options{Format: copyfmt.Options{IncludeColumns: true}})
	assert.Equal(t, "COPY t (b, a) FROM stdin;\n1\t2\n\\.\n", out)
}

func TestProcessIsUsableWithoutRun(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	c := New(nativeParser(), sink.NewText(&out), Options{Logger: log.Discard()})

	for i := 1; i <= 3; i++ {
		require.NoError(t, c.Process(ctx, "INSERT INTO t VALUES ("+strconv.Itoa(i)+");"))
	}
	assert.Empty(t, out.String())
	require.NoError(t, c.Finish(ctx))
	assert.Equal(t, "COPY t FROM stdin;\n1\n2\n3\n\\.\n", out.String())
}
