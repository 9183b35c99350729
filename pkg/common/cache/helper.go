package cache

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// HandleHitCache decodes the cached value under key into model.
// A miss is reported as an error wrapping ErrKeyNotFound.
func HandleHitCache(ctx context.Context, model any, c CacheEngine, key string) error {
	byteData, exists, err := c.Get(ctx, key)
	if exists && err == nil {
		if err := json.Unmarshal(byteData, model); err != nil {
			return errors.Wrap(err, "failed to unmarshal cache")
		}
		return nil
	}
	if err == nil {
		err = ErrKeyNotFound
	}
	return errors.Wrap(err, "miss cache")
}

// HandleSetCache handles cache set
func HandleSetCache(ctx context.Context, model any, c CacheEngine, key string, ttl time.Duration) error {
	return c.Set(ctx, key, model, ttl)
}

// HandleUpdateCache refreshes key only when it is already cached.
func HandleUpdateCache(ctx context.Context, model any, c CacheEngine, key string, ttl time.Duration) {
	if _, exists, err := c.Get(ctx, key); err == nil && exists {
		_ = HandleSetCache(ctx, model, c, key, ttl)
	}
}

// HandleDeleteCache handles cache delete
func HandleDeleteCache(ctx context.Context, c CacheEngine, key string) error {
	return c.Delete(ctx, key)
}

// Encode marshals value the way every engine stores it.
func Encode(value any) ([]byte, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal cache value")
	}
	return b, nil
}
