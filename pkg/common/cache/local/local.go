// Package local is an in-process CacheEngine backed by a bounded TinyLFU cache.
package local

import (
	"context"
	"strings"
	"time"

	"github.com/huynhanx03/go-crud/pkg/common/cache"
	"github.com/huynhanx03/go-crud/pkg/common/cache/tinylfu"
	"github.com/huynhanx03/go-crud/pkg/hash"
	"github.com/huynhanx03/go-crud/pkg/timer"
)

// Engine stores JSON encoded values. Each entry costs its encoded size in bytes, so
// MaxCost bounds memory rather than entry count.
type Engine struct {
	store *tinylfu.Cache[string, []byte]
}

var _ cache.CacheEngine = (*Engine)(nil)

type Option func(*tinylfu.Config)

// WithMaxCost bounds the summed size of stored values in bytes.
func WithMaxCost(n int64) Option {
	return func(c *tinylfu.Config) { c.MaxCost = n }
}

// WithSweepInterval sets how often writes also drop expired entries.
func WithSweepInterval(d time.Duration) Option {
	return func(c *tinylfu.Config) { c.SweepInterval = d }
}

// New creates an Engine that owns clock. A nil clock falls back to the system clock.
func New(clock timer.Timer, opts ...Option) *Engine {
	cfg := tinylfu.Config{MaxCost: DefaultMaxCost, Timer: clock}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{store: tinylfu.New[string, []byte](hash.String, cfg)}
}

// DefaultMaxCost is 64 MiB of encoded values.
const DefaultMaxCost = 64 << 20

func (e *Engine) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, ok := e.store.Get(key)
	if !ok {
		return nil, false, cache.ErrKeyNotFound
	}
	return b, true, nil
}

// Set stores value unless admission turns it away, which is not an error for a cache.
func (e *Engine) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	b, err := cache.Encode(value)
	if err != nil {
		return err
	}
	e.store.SetWithTTL(key, b, int64(len(b)), ttl)
	return nil
}

func (e *Engine) Delete(_ context.Context, key string) error {
	e.store.Delete(key)
	return nil
}

func (e *Engine) InvalidatePrefix(_ context.Context, prefix string) error {
	e.store.DeleteFunc(func(k string) bool { return strings.HasPrefix(k, prefix) })
	return nil
}

func (e *Engine) BatchSet(ctx context.Context, values map[string]any, ttl time.Duration) error {
	for k, v := range values {
		if err := e.Set(ctx, k, v, ttl); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) BatchDelete(_ context.Context, keys []string) error {
	for _, k := range keys {
		e.store.Delete(k)
	}
	return nil
}

// Len reports stored entries, expired ones not yet swept included.
func (e *Engine) Len() int { return e.store.Len() }

// Close releases the clock.
func (e *Engine) Close() { e.store.Close() }
