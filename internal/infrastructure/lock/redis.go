package lock

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	idgen "github.com/riskibarqy/gaa-fixtures/internal/platform/id"
)

const DefaultCrawlLockKey = "gaa-fixtures:crawl-lock"

// releaseScript deletes the key only when it still holds our token, so a lock
// that expired and was taken by another replica is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript extends the TTL only while the key still holds our token.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Client is the subset of go-redis the locker needs.
type Client interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(redisURL))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// RedisLocker is a single-holder lock shared by every replica using the same
// Redis. The holder renews the lease every ttl/3 until it unlocks, so the TTL
// only bounds how long a crashed holder can block others.
type RedisLocker struct {
	client     Client
	key        string
	ttl        time.Duration
	renewEvery time.Duration
	ids        idgen.Generator
}

func NewRedisLocker(client Client, key string, ttl time.Duration) *RedisLocker {
	if strings.TrimSpace(key) == "" {
		key = DefaultCrawlLockKey
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	renewEvery := ttl / 3
	if renewEvery <= 0 {
		renewEvery = ttl
	}
	return &RedisLocker{
		client:     client,
		key:        key,
		ttl:        ttl,
		renewEvery: renewEvery,
		ids:        idgen.NewRandomGenerator(),
	}
}

func (l *RedisLocker) TryLock(ctx context.Context) (func(context.Context) error, bool, error) {
	token, err := l.ids.NewID()
	if err != nil {
		return nil, false, fmt.Errorf("generate lock token: %w", err)
	}

	acquired, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", l.key, err)
	}
	if !acquired {
		return nil, false, nil
	}

	stopRenew := l.keepAlive(context.WithoutCancel(ctx), token)

	var once sync.Once
	unlock := func(ctx context.Context) error {
		var err error
		once.Do(func() {
			stopRenew()
			if runErr := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); runErr != nil && runErr != redis.Nil {
				err = fmt.Errorf("release lock %s: %w", l.key, runErr)
			}
		})
		return err
	}
	return unlock, true, nil
}

// keepAlive renews the lease until the returned stop func is called or the
// key no longer holds token.
func (l *RedisLocker) keepAlive(ctx context.Context, token string) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(l.renewEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				renewed, err := renewScript.Run(ctx, l.client, []string{l.key}, token, l.ttl.Milliseconds()).Int64()
				if err != nil && err != redis.Nil {
					// transient; the next tick retries before the lease runs out
					continue
				}
				if renewed == 0 {
					return
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

func (l *RedisLocker) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}
