package kvstore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/communitylabs/authcore/pkg/logger"
)

// Open builds the store for the given configuration. It attempts to connect
// to Redis with a bounded number of attempts and increasing backoff; when the
// budget is exhausted, it returns a pure in-process store for the remainder of
// the process lifetime. No reconnection is attempted after that point, so a
// degraded process stays degraded until restart. Open never fails.
func Open(ctx context.Context, cfg Config, log *slog.Logger) Store {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	memory := NewMemoryStore(cfg.SweepInterval)

	client, err := connect(ctx, cfg)
	if err != nil {
		log.WarnContext(ctx, "redis unavailable, all kv operations run in-process",
			logger.Error(err),
			logger.Component("kvstore"),
		)
		return memory
	}

	log.InfoContext(ctx, "connected to redis kv backend", logger.Component("kvstore"))
	return NewFallback(NewRedisStore(client), memory, log)
}

// connect dials Redis with retries. Attempt n sleeps n times RetryInterval
// before the next try, bounded overall by ConnectTimeout.
func connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseRedisURL, err)
	}

	for i := range cfg.RetryAttempts {
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}

	return nil, ErrRedisNotReady
}
