package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis is a Store backed by a shared Redis instance so multiple cockpit
// replicas see the same cached upstream responses. Counters are per-process.
type Redis struct {
	client *redis.Client
	prefix string
	logger *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

// NewRedis wraps an existing client. All keys are namespaced under prefix.
func NewRedis(client *redis.Client, prefix string, logger *zap.Logger) *Redis {
	if prefix == "" {
		prefix = "cockpit:cache:"
	}
	return &Redis{client: client, prefix: prefix, logger: logger}
}

func (r *Redis) key(key string) string { return r.prefix + key }

// Get returns the payload when present. Redis errors degrade to a miss so a
// cache outage never fails the request path.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	payload, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("cache get failed", zap.Error(err))
		}
		r.misses.Add(1)
		return nil, false
	}
	r.hits.Add(1)
	return payload, true
}

// Set stores payload for ttl.
func (r *Redis) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, r.key(key), payload, ttl).Err(); err != nil {
		r.logger.Warn("cache set failed", zap.Error(err))
		return
	}
	r.sets.Add(1)
}

// Delete removes key, reporting whether it existed.
func (r *Redis) Delete(ctx context.Context, key string) bool {
	deleted, err := r.client.Del(ctx, r.key(key)).Result()
	if err != nil {
		r.logger.Warn("cache delete failed", zap.Error(err))
		return false
	}
	return deleted > 0
}

// DeletePattern removes every namespaced key containing pattern.
func (r *Redis) DeletePattern(ctx context.Context, pattern string) int {
	count := 0
	iter := r.client.Scan(ctx, 0, r.prefix+"*"+pattern+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err == nil {
			count++
		}
	}
	if err := iter.Err(); err != nil {
		r.logger.Warn("cache pattern delete failed", zap.Error(err))
	}
	return count
}

// Clear removes all namespaced entries.
func (r *Redis) Clear(ctx context.Context) {
	r.DeletePattern(ctx, "")
}

// Stats returns the per-process counters plus the current key count.
func (r *Redis) Stats(ctx context.Context) Stats {
	size := 0
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 1000).Iterator()
	for iter.Next(ctx) {
		size++
	}
	return Stats{
		Size:   size,
		Hits:   r.hits.Load(),
		Misses: r.misses.Load(),
		Sets:   r.sets.Load(),
	}
}
