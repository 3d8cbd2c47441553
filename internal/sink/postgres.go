package sink

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/insinfo/insert-to-copy/internal/classify"
	"github.com/insinfo/insert-to-copy/internal/copyfmt"
	"github.com/insinfo/insert-to-copy/internal/errors"
)

// conn is the part of a server connection the Postgres sink needs.
type conn interface {
	Exec(ctx context.Context, sql string) error
	CopyFrom(ctx context.Context, r io.Reader, sql string) (int64, error)
	Close(ctx context.Context) error
}

// Postgres loads converted output into a live server: pass-through
// statements run over the simple query protocol and COPY blocks stream
// through the COPY sub-protocol.
type Postgres struct {
	conn  conn
	stats Stats
}

// Dial connects to the server described by dsn.
func Dial(ctx context.Context, dsn string) (*Postgres, error) {
	c, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, errors.ConnectionError("connect to target", err)
	}
	return &Postgres{conn: pgxConn{c}}, nil
}

// WriteStatement executes stmt. Statements holding only whitespace and
// comments are skipped.
func (p *Postgres) WriteStatement(ctx context.Context, stmt string) error {
	if classify.SkipCommentsAndSpace(stmt) == "" {
		return nil
	}
	if err := p.conn.Exec(ctx, stmt); err != nil {
		return serverError(err)
	}
	p.stats.Statements++
	p.stats.Bytes += int64(len(stmt))
	return nil
}

// WriteCopy streams rows into target with COPY FROM STDIN.
func (p *Postgres) WriteCopy(ctx context.Context, target string, rows []byte, count int) error {
	if count == 0 {
		return nil
	}
	n, err := p.conn.CopyFrom(ctx, bytes.NewReader(rows), copyfmt.Statement(target))
	if err != nil {
		return serverError(err).WithTable(target)
	}
	if n != int64(count) {
		return errors.InternalErrorf("COPY %s loaded %d rows, sent %d", target, n, count).WithTable(target)
	}
	p.stats.CopyBlocks++
	p.stats.Rows += n
	p.stats.Bytes += int64(len(rows))
	return nil
}

// Close terminates the connection.
func (p *Postgres) Close(ctx context.Context) error {
	if err := p.conn.Close(ctx); err != nil {
		return errors.ConnectionError("close target connection", err)
	}
	return nil
}

// Stats returns the output counters. Bytes counts statement and row data
// sent, not protocol overhead.
func (p *Postgres) Stats() Stats {
	return p.stats
}

// serverError carries the server's SQLSTATE through when there is one.
func serverError(err error) *errors.Error {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return errors.New(pgErr.Code, pgErr.Message).
			WithDetail(pgErr.Detail).
			WithHint(pgErr.Hint).
			WithPosition(int(pgErr.Position)).
			WithCause(err)
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.QueryCanceledError(err)
	}
	return errors.ConnectionError("send to target", err)
}

type pgxConn struct {
	c *pgx.Conn
}

func (p pgxConn) Exec(ctx context.Context, sql string) error {
	_, err := p.c.PgConn().Exec(ctx, sql).ReadAll()
	return err
}

func (p pgxConn) CopyFrom(ctx context.Context, r io.Reader, sql string) (int64, error) {
	tag, err := p.c.PgConn().CopyFrom(ctx, r, sql)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (p pgxConn) Close(ctx context.Context) error {
	return p.c.Close(ctx)
}
