// Package lock provides a Redis-backed mutual exclusion lock shared by
// processes that use the same Redis instance.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when another holder owns the lock.
var ErrNotAcquired = errors.New("lock is held by another process")

// 自分が取得したロックのみ削除する
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock acquires named locks with SET NX PX.
type RedisLock struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisLock returns a RedisLock whose keys are "<prefix>:<name>".
func NewRedisLock(rdb *redis.Client, prefix string) *RedisLock {
	return &RedisLock{rdb: rdb, prefix: prefix}
}

// Acquire takes the lock name for at most ttl. The returned release function
// deletes the key only while it still holds this caller's token.
func (l *RedisLock) Acquire(ctx context.Context, name string, ttl time.Duration) (func(context.Context) error, error) {
	key := l.key(name)
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrNotAcquired
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("release lock %s: %w", key, err)
		}
		return nil
	}
	return release, nil
}

func (l *RedisLock) key(name string) string {
	return l.prefix + ":" + name
}
