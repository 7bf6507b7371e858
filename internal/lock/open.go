package lock

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"basegraph.app/siemd/core/config"
)

// Open returns a Redis-backed Locker when cfg names a Redis URL and an
// in-process one otherwise. The close func releases the Redis client.
func Open(ctx context.Context, cfg config.RedisConfig) (Locker, func() error, error) {
	if !cfg.Enabled() {
		return NewLocal(), func() error { return nil }, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}

	slog.InfoContext(ctx, "redis connected, using leased file locks", "lease_ttl", cfg.LeaseTTL)
	return NewRedis(client, cfg.LeaseTTL, slog.Default()), client.Close, nil
}
