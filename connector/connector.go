package connector

import (
	"context"
	"strings"
	"sync"

	"github.com/Konsultn-Engineering/sqltmpl/database"
	"github.com/Konsultn-Engineering/sqltmpl/dialect"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Provider opens a database for a driver.
type Provider func(ctx context.Context, cfg Config) (database.Database, error)

// Connection is an open database together with the dialect its SQL uses.
type Connection struct {
	Database database.Database
	Dialect  dialect.Dialect
	Config   Config
}

func (c *Connection) Close() error {
	return c.Database.Close()
}

var (
	providersMu sync.RWMutex
	providers   = map[string]Provider{
		"postgres":   openPostgres,
		"pgx":        openPostgres,
		"clickhouse": openClickHouse,
	}
)

// Register makes a provider available under driver, replacing any existing one.
func Register(driver string, provider Provider) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[strings.ToLower(driver)] = provider
}

func lookupProvider(driver string) (Provider, bool) {
	providersMu.RLock()
	defer providersMu.RUnlock()
	p, ok := providers[strings.ToLower(driver)]
	return p, ok
}

// Open connects to the database described by cfg, retrying according to
// cfg.Retry. ConnectTimeout bounds all attempts together.
func Open(ctx context.Context, cfg Config) (*Connection, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	provider, ok := lookupProvider(cfg.Driver)
	if !ok {
		return nil, errors.Errorf("provider %s not registered", cfg.Driver)
	}
	d, err := dialect.Lookup(cfg.Driver)
	if err != nil {
		return nil, err
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	logger := zerolog.Ctx(ctx).With().
		Str("driver", cfg.Driver).
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Logger()
	ctx = logger.WithContext(ctx)

	db, err := retryConnect(ctx, cfg.Retry, func(ctx context.Context) (database.Database, error) {
		return provider(ctx, cfg)
	})
	if err != nil {
		logger.Error().Err(err).Msg("connect failed")
		return nil, errors.Wrapf(err, "failed to connect to %s", cfg.Driver)
	}

	logger.Debug().Msg("connected")
	return &Connection{Database: db, Dialect: d, Config: cfg}, nil
}
