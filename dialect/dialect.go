package dialect

import (
	"strings"

	"github.com/pkg/errors"
)

// Dialect describes how a database spells positional parameters and literals.
type Dialect interface {
	Name() string
	QuoteIdentifier(name string) string
	// Placeholder returns the marker for the n-th bind argument, starting at 1.
	// Markers are written before format placeholders are rendered, so they
	// must not contain '%'.
	Placeholder(n int) string
	// RenderValue renders v as a SQL literal. It is meant for logging only.
	RenderValue(v any) string
}

// ErrUnknownDialect is returned by Lookup for unsupported driver names.
var ErrUnknownDialect = errors.New("unknown dialect")

// Lookup maps a driver name to its dialect.
func Lookup(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "pgx":
		return NewPostgresDialect(), nil
	case "mysql":
		return NewMySQLDialect(), nil
	case "tidb":
		return NewTiDBDialect(), nil
	case "clickhouse":
		return NewClickHouseDialect(), nil
	case "sqlserver", "mssql":
		return NewSQLServerDialect(), nil
	}
	return nil, errors.Wrapf(ErrUnknownDialect, "%q", name)
}
