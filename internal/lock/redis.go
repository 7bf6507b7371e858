package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "siemd:lock:"

// releaseScript deletes the key only while it still holds our token, so an
// expired lease taken over by another ingester is left alone.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

type redisLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedis returns a Locker backed by Redis leases (SET NX PX). A lease that
// is never released expires after ttl.
func NewRedis(client *redis.Client, ttl time.Duration, logger *slog.Logger) Locker {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisLocker{client: client, ttl: ttl, logger: logger}
}

func (l *redisLocker) TryLock(ctx context.Context, key string) (func(), error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	redisKey := keyPrefix + key
	ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquiring lease %s: %w", redisKey, err)
	}
	if !ok {
		return nil, ErrLocked
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's context may already be cancelled here.
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, l.client, []string{redisKey}, token).Err(); err != nil {
				l.logger.WarnContext(releaseCtx, "failed to release lease", "key", redisKey, "error", err)
			}
		})
	}, nil
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating lease token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
