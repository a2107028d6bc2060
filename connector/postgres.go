package connector

import (
	"context"

	"github.com/Konsultn-Engineering/sqltmpl/database"
	"github.com/jackc/pgx/v5/pgxpool"
)

func openPostgres(ctx context.Context, cfg Config) (database.Database, error) {
	poolCfg, err := pgxpool.ParseConfig(postgresDSN(cfg))
	if err != nil {
		return nil, err
	}

	poolCfg.MaxConns = int32(cfg.Pool.MaxOpen)
	poolCfg.MinConns = int32(min(cfg.Pool.MaxIdle, cfg.Pool.MaxOpen))
	poolCfg.MaxConnLifetime = cfg.Pool.MaxLifetime
	poolCfg.MaxConnIdleTime = cfg.Pool.MaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return database.NewPgxDatabase(pool), nil
}

// postgresDSN creates a PostgreSQL connection string.
func postgresDSN(cfg Config) string {
	u := connectionURL("postgres", cfg)
	if cfg.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", cfg.SSLMode)
		u.RawQuery = q.Encode()
	}
	return u.String()
}
