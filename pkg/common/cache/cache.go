package cache

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by Get on a cache miss.
var ErrKeyNotFound = errors.New("cache: key not found")

// CacheEngine defines the standard interface for caching operations.
// Values are JSON encoded on Set and returned as raw bytes by Get.
type CacheEngine interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	InvalidatePrefix(ctx context.Context, prefix string) error
	BatchSet(ctx context.Context, values map[string]any, ttl time.Duration) error
	BatchDelete(ctx context.Context, keys []string) error
	Close()
}
