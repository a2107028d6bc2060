package database

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
)

// ErrPrepareUnsupported is returned by PrepareContext on backends that prepare
// statements implicitly.
var ErrPrepareUnsupported = errors.New("prepare not supported")

type Database interface {
	ExecContext(ctx context.Context, query string, args ...any) (Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	PingContext(ctx context.Context) error
	Close() error
}

type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
	Columns() ([]string, error)
	Err() error
}
