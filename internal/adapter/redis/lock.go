// Package redis provides a distributed run lock on Redis so that only one
// replica generates hotspots at a time.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultLockKey is the key guarding hotspot generation cycles.
const DefaultLockKey = "hotspots:generation:lock"

// releaseScript deletes the key only if it still holds our token, so an
// expired lock taken over by another replica is never released by us.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// RunLock is a SET NX lease with a TTL. It implements pipeline.RunLock.
type RunLock struct {
	client goredis.UniversalClient
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRunLock creates a lock on key. The TTL bounds how long a crashed holder
// blocks other replicas and must exceed the longest expected cycle.
func NewRunLock(client goredis.UniversalClient, key string, ttl time.Duration, logger *slog.Logger) *RunLock {
	return &RunLock{client: client, key: key, ttl: ttl, logger: logger}
}

// TryAcquire takes the lock without waiting. When acquired, release must be
// called to free it before the TTL expires.
func (l *RunLock) TryAcquire(ctx context.Context) (func(context.Context) error, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis setnx %s: %w", l.key, err)
	}
	if !ok {
		l.logger.Debug("run lock held elsewhere", "key", l.key)
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Int()
		if err != nil {
			return fmt.Errorf("redis release %s: %w", l.key, err)
		}
		if n == 0 {
			l.logger.Warn("run lock expired before release", "key", l.key, "ttl", l.ttl)
		}
		return nil
	}
	return release, true, nil
}
