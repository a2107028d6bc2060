package connector

import (
	"context"
	"time"

	"github.com/Konsultn-Engineering/sqltmpl/database"
	"github.com/rs/zerolog"
)

type connectFunc func(context.Context) (database.Database, error)

// retryConnect calls connectFn once, then up to cfg.MaxRetries more times with
// exponential backoff. A nil cfg means a single attempt.
func retryConnect(ctx context.Context, cfg *RetryConfig, connectFn connectFunc) (database.Database, error) {
	if cfg == nil {
		return connectFn(ctx)
	}

	logger := zerolog.Ctx(ctx)

	delay := cfg.BaseDelay
	if delay == 0 {
		delay = time.Second // default
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 2
	}

	var err error
	for attempt := 0; ; attempt++ {
		var db database.Database
		db, err = connectFn(ctx)
		if err == nil {
			return db, nil
		}
		if attempt >= cfg.MaxRetries {
			break
		}

		logger.Warn().Err(err).Int("attempt", attempt+1).Dur("delay", delay).Msg("connect failed, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * backoff)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return nil, err
}
