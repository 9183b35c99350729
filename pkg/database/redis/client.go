package redis

import (
	"context"
	"errors"
	"time"

	redisV9 "github.com/redis/go-redis/v9"

	"github.com/huynhanx03/go-crud/pkg/common/cache"
)

const scanCount = 256

// RedisEngine is a CacheEngine on a go-redis universal client.
type RedisEngine struct {
	client redisV9.UniversalClient
}

var _ cache.CacheEngine = (*RedisEngine)(nil)

// NewEngine wraps an existing client.
func NewEngine(client redisV9.UniversalClient) *RedisEngine {
	return &RedisEngine{client: client}
}

// Get value by key
func (r *RedisEngine) Get(ctx context.Context, key string) ([]byte, bool, error) {
	byteValue, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redisV9.Nil) {
		return nil, false, cache.ErrKeyNotFound
	}
	if err != nil {
		return nil, false, err
	}
	return byteValue, true, nil
}

// Delete key
func (r *RedisEngine) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// InvalidatePrefix deletes every key starting with prefix, scanning each master on a cluster.
func (r *RedisEngine) InvalidatePrefix(ctx context.Context, prefix string) error {
	if cc, ok := r.client.(*redisV9.ClusterClient); ok {
		return cc.ForEachMaster(ctx, func(ctx context.Context, node *redisV9.Client) error {
			return invalidate(ctx, node, prefix)
		})
	}
	return invalidate(ctx, r.client, prefix)
}

func invalidate(ctx context.Context, c redisV9.Cmdable, prefix string) error {
	iter := c.Scan(ctx, 0, prefix+"*", scanCount).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanCount {
			if err := c.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return c.Del(ctx, batch...).Err()
	}
	return nil
}

// Set value by key
func (r *RedisEngine) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	byteValue, err := cache.Encode(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, byteValue, ttl).Err()
}

// BatchSet stores multiple values in a pipeline
func (r *RedisEngine) BatchSet(ctx context.Context, values map[string]any, ttl time.Duration) error {
	if len(values) == 0 {
		return nil
	}
	pipe := r.client.Pipeline()

	for key, value := range values {
		byteValue, err := cache.Encode(value)
		if err != nil {
			return err
		}
		pipe.Set(ctx, key, byteValue, ttl)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// BatchDelete removes multiple keys from the cache
func (r *RedisEngine) BatchDelete(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

// Close closes the Redis client
func (r *RedisEngine) Close() {
	if r.client != nil {
		_ = r.client.Close()
	}
}

// Client returns the underlying redis client (Escape hatch)
func (r *RedisEngine) Client() redisV9.UniversalClient {
	return r.client
}
