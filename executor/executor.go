// Package executor runs sqltmpl statements against a database.
package executor

import (
	"context"
	"crypto/rand"
	"database/sql"
	"sync"
	"time"

	"github.com/Konsultn-Engineering/sqltmpl"
	"github.com/Konsultn-Engineering/sqltmpl/cache"
	"github.com/Konsultn-Engineering/sqltmpl/connector"
	"github.com/Konsultn-Engineering/sqltmpl/database"
	"github.com/Konsultn-Engineering/sqltmpl/dialect"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

// Executor resolves statements and hands the SQL and bind arguments to a
// database. It is safe for concurrent use; the statements passed to it are not.
type Executor struct {
	db       database.Database
	dialect  dialect.Dialect
	stmts    *cache.StatementCache
	timeout  time.Duration
	stmtOpts []sqltmpl.Option

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

type Option func(*Executor)

// WithStatementCache prepares statements once and reuses them. Backends that
// prepare implicitly (pgx) run statements directly.
func WithStatementCache(c *cache.StatementCache) Option {
	return func(e *Executor) {
		e.stmts = c
	}
}

// WithQueryTimeout bounds each Exec and Query call.
func WithQueryTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.timeout = d
	}
}

// WithStatementOptions adds options to every statement created by Statement.
func WithStatementOptions(opts ...sqltmpl.Option) Option {
	return func(e *Executor) {
		e.stmtOpts = append(e.stmtOpts, opts...)
	}
}

func New(db database.Database, d dialect.Dialect, opts ...Option) *Executor {
	e := &Executor{
		db:      db,
		dialect: d,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FromConnection configures an executor from the connection's config: query
// timeout, statement cache size and formatting locale.
func FromConnection(conn *connector.Connection) (*Executor, error) {
	cfg := conn.Config
	opts := []Option{WithQueryTimeout(cfg.QueryTimeout)}

	if cfg.StatementCacheSize > 0 {
		c, err := cache.NewStatementCache(cfg.StatementCacheSize)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithStatementCache(c))
	}

	tag, err := cfg.LocaleTag()
	if err != nil {
		return nil, err
	}
	if tag != language.Und {
		opts = append(opts, WithStatementOptions(sqltmpl.WithLocale(tag)))
	}

	return New(conn.Database, conn.Dialect, opts...), nil
}

// Statement creates a statement whose bind markers use the executor's dialect.
// Exec and Query apply that dialect to any statement, so this only saves
// repeating the executor's statement options.
func (e *Executor) Statement(input string, opts ...sqltmpl.Option) *sqltmpl.Statement {
	all := make([]sqltmpl.Option, 0, len(e.stmtOpts)+len(opts)+1)
	all = append(all, sqltmpl.WithDialect(e.dialect))
	all = append(all, e.stmtOpts...)
	all = append(all, opts...)
	return sqltmpl.New(input, all...)
}

// Exec runs a statement that returns no rows. The statement is built with the
// executor's dialect, whatever dialect it was created with.
func (e *Executor) Exec(ctx context.Context, stmt *sqltmpl.Statement) (database.Result, error) {
	query, args, logger, err := e.prepareCall(ctx, stmt, "exec")
	if err != nil {
		return nil, err
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	var res database.Result
	prepared, release, err := e.prepared(ctx, query)
	if err == nil {
		defer release()
		if prepared != nil {
			res, err = prepared.ExecContext(ctx, args...)
		} else {
			res, err = e.db.ExecContext(ctx, query, args...)
		}
	}
	if err != nil {
		logger.Error().Err(err).Msg("statement failed")
		return nil, errors.Wrap(err, "exec")
	}

	logger.Debug().Dur("duration", time.Since(start)).Msg("statement executed")
	return res, nil
}

// Query runs a statement that returns rows. The rows must be closed.
func (e *Executor) Query(ctx context.Context, stmt *sqltmpl.Statement) (database.Rows, error) {
	query, args, logger, err := e.prepareCall(ctx, stmt, "query")
	if err != nil {
		return nil, err
	}

	cancel := context.CancelFunc(func() {})
	if e.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
	}

	start := time.Now()
	var rows database.Rows
	prepared, release, err := e.prepared(ctx, query)
	if err == nil {
		done := cancel
		cancel = func() {
			release()
			done()
		}
		if prepared != nil {
			rows, err = prepared.QueryContext(ctx, args...)
		} else {
			rows, err = e.db.QueryContext(ctx, query, args...)
		}
	}
	if err != nil {
		cancel()
		logger.Error().Err(err).Msg("statement failed")
		return nil, errors.Wrap(err, "query")
	}

	logger.Debug().Dur("duration", time.Since(start)).Msg("statement executed")
	return &closingRows{Rows: rows, done: cancel}, nil
}

// Close releases cached prepared statements. The database stays open.
func (e *Executor) Close() error {
	if e.stmts == nil {
		return nil
	}
	return e.stmts.Close()
}

func (e *Executor) prepareCall(ctx context.Context, stmt *sqltmpl.Statement, op string) (string, []any, zerolog.Logger, error) {
	logger := zerolog.Ctx(ctx).With().
		Str("exec_id", e.newID().String()).
		Str("op", op).
		Logger()

	query, args, err := stmt.BuildFor(e.dialect)
	if err != nil {
		logger.Error().Err(err).Str("template", stmt.Input()).Msg("statement build failed")
		return "", nil, logger, errors.Wrap(err, "build statement")
	}

	logger = logger.With().
		Str("sql", query).
		Strs("args", e.render(args)).
		Logger()
	return query, args, logger, nil
}

// prepared returns the cached prepared statement for query, or nil when the
// statement should run directly. release must be called once the statement is
// no longer used, including after a nil statement.
func (e *Executor) prepared(ctx context.Context, query string) (stmt *sql.Stmt, release func(), err error) {
	if e.stmts == nil {
		return nil, func() {}, nil
	}
	stmt, release, err = e.stmts.GetOrPrepare(ctx, e.db, query)
	if errors.Is(err, database.ErrPrepareUnsupported) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return stmt, release, nil
}

func (e *Executor) render(args []any) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = e.dialect.RenderValue(a)
	}
	return out
}

func (e *Executor) newID() ulid.ULID {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(time.Now()), e.entropy)
	if err != nil {
		// monotonic entropy overflowed within one millisecond
		return ulid.Make()
	}
	return id
}

// closingRows releases the query timeout and the prepared statement when the
// rows are closed.
type closingRows struct {
	database.Rows
	done func()
}

func (r *closingRows) Close() error {
	defer r.done()
	return r.Rows.Close()
}
