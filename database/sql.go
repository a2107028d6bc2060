package database

import (
	"context"
	"database/sql"
)

// StdDatabase runs statements through a database/sql handle, such as the one
// returned by clickhouse.OpenDB.
type StdDatabase struct {
	db *sql.DB
}

func NewStdDatabase(db *sql.DB) *StdDatabase {
	return &StdDatabase{db: db}
}

func (d *StdDatabase) ExecContext(ctx context.Context, query string, args ...any) (Result, error) {
	return d.db.ExecContext(ctx, query, args...)
}

// QueryContext returns the *sql.Rows unwrapped; they already satisfy Rows.
func (d *StdDatabase) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (d *StdDatabase) PrepareContext(ctx context.Context, query string) (*sql.Stmt, error) {
	return d.db.PrepareContext(ctx, query)
}

func (d *StdDatabase) PingContext(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *StdDatabase) Close() error { return d.db.Close() }

func (d *StdDatabase) DB() *sql.DB { return d.db }

var (
	_ Database = (*StdDatabase)(nil)
	_ Rows     = (*sql.Rows)(nil)
)
