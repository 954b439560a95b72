package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Logger is the minimal logger this package needs.
type Logger interface {
	Errorf(format string, args ...interface{})
}

// RedisStore backs the cache with Redis for the hosted profile, where
// several gateway replicas must share one invalidation view.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	logger Logger
}

func NewRedisStore(rdb *redis.Client, prefix string, logger Logger) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix, logger: logger}
}

func (r *RedisStore) fullKey(key string) string {
	if r.prefix == "" {
		return key
	}
	return r.prefix + ":" + key
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.rdb.Get(ctx, r.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		// Cache trouble is never fatal; treat as a miss.
		r.logger.Errorf("cache: redis get %s: %v", key, err)
		return nil, false
	}
	return val, true
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, retention time.Duration) {
	if err := r.rdb.Set(ctx, r.fullKey(key), value, retention).Err(); err != nil {
		r.logger.Errorf("cache: redis set %s: %v", key, err)
	}
}

func (r *RedisStore) Delete(ctx context.Context, keys ...string) {
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = r.fullKey(key)
	}
	if err := r.rdb.Del(ctx, full...).Err(); err != nil {
		r.logger.Errorf("cache: redis del: %v", err)
	}
}
