package connector

import (
	"context"
	"net"
	"strconv"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/Konsultn-Engineering/sqltmpl/database"
)

func openClickHouse(ctx context.Context, cfg Config) (database.Database, error) {
	db := clickhouse.OpenDB(clickHouseOptions(cfg))
	db.SetMaxOpenConns(cfg.Pool.MaxOpen)
	db.SetMaxIdleConns(cfg.Pool.MaxIdle)
	db.SetConnMaxLifetime(cfg.Pool.MaxLifetime)
	db.SetConnMaxIdleTime(cfg.Pool.MaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return database.NewStdDatabase(db), nil
}

func clickHouseOptions(cfg Config) *clickhouse.Options {
	opts := &clickhouse.Options{
		Addr: []string{net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: cfg.ConnectTimeout,
	}
	if len(cfg.Params) > 0 {
		opts.Settings = make(clickhouse.Settings, len(cfg.Params))
		for k, v := range cfg.Params {
			opts.Settings[k] = v
		}
	}
	return opts
}
