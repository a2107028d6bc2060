package database

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// ErrLastInsertIdUnsupported is returned by results of PostgreSQL statements;
// use RETURNING instead.
var ErrLastInsertIdUnsupported = errors.New("LastInsertId not supported in PostgreSQL")

// pgxPool is the part of *pgxpool.Pool that PgxDatabase uses.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// PgxDatabase runs statements on a pgx pool. pgx prepares and caches
// statements per connection on its own, so PrepareContext always fails with
// ErrPrepareUnsupported and callers run statements directly.
type PgxDatabase struct {
	pool pgxPool
}

func NewPgxDatabase(pool *pgxpool.Pool) *PgxDatabase {
	return &PgxDatabase{pool: pool}
}

func (p *PgxDatabase) ExecContext(ctx context.Context, query string, args ...any) (Result, error) {
	tag, err := p.pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgxResult{tag: tag}, nil
}

func (p *PgxDatabase) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgxRows{Rows: rows}, nil
}

func (p *PgxDatabase) PrepareContext(context.Context, string) (*sql.Stmt, error) {
	return nil, errors.Wrap(ErrPrepareUnsupported, "pgxpool")
}

func (p *PgxDatabase) PingContext(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PgxDatabase) Close() error {
	p.pool.Close()
	return nil
}

type pgxRows struct {
	pgx.Rows
}

func (r pgxRows) Close() error {
	r.Rows.Close()
	return nil
}

func (r pgxRows) Columns() ([]string, error) {
	fields := r.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, fd := range fields {
		columns[i] = fd.Name
	}
	return columns, nil
}

type pgxResult struct {
	tag pgconn.CommandTag
}

func (r pgxResult) LastInsertId() (int64, error) {
	return 0, ErrLastInsertIdUnsupported
}

func (r pgxResult) RowsAffected() (int64, error) {
	return r.tag.RowsAffected(), nil
}

var _ Database = (*PgxDatabase)(nil)
