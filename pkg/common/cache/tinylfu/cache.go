// Package tinylfu is a cost-bounded in-process cache. Admission and eviction follow
// TinyLFU over sampled residents, and entries carry an optional time to live.
package tinylfu

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/huynhanx03/go-crud/pkg/datastructs/shardedmap"
	"github.com/huynhanx03/go-crud/pkg/mq/batcher"
	"github.com/huynhanx03/go-crud/pkg/timer"
)

const (
	DefaultMaxCost       = 1 << 16
	DefaultSweepInterval = time.Minute

	defaultShards   = 32
	readBatchSize   = 64
	fullSweepMinGap = time.Second
)

// Config holds cache configuration. Zero fields take defaults.
type Config struct {
	// MaxCost bounds the summed cost of resident entries.
	MaxCost int64
	// NumCounters sizes the frequency sketch. Defaults to MaxCost.
	NumCounters int64
	// SweepInterval is how often a write also drops every expired entry.
	SweepInterval time.Duration
	// Timer is owned by the cache and stopped by Close. Nil uses the system clock.
	Timer timer.Timer
}

type entry[V any] struct {
	value     V
	expiresAt int64 // unix nanos, 0 never expires
}

func (e entry[V]) expired(now int64) bool {
	return e.expiresAt > 0 && now >= e.expiresAt
}

// Cache is safe for concurrent use. Reads are lock-free on the store and feed the
// frequency sketch through a batcher; writes are admitted synchronously, so a Set that
// returns has either stored the value or dropped it.
type Cache[K comparable, V any] struct {
	hashFn func(K) uint64
	store  *shardedmap.Map[K, entry[V]]
	policy *policy
	reads  *batcher.Batcher[uint64]
	clock  timer.Timer
	sweep  time.Duration

	mu        sync.Mutex
	byHash    map[uint64]K
	lastSweep int64
	closed    atomic.Bool
}

// New creates a Cache hashing keys with hashFn.
func New[K comparable, V any](hashFn func(K) uint64, cfg Config) *Cache[K, V] {
	if cfg.MaxCost <= 0 {
		cfg.MaxCost = DefaultMaxCost
	}
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = cfg.MaxCost
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.Timer == nil {
		cfg.Timer = timer.System{}
	}

	c := &Cache[K, V]{
		hashFn: hashFn,
		store:  shardedmap.New[K, entry[V]](defaultShards, hashFn),
		policy: newPolicy(cfg.MaxCost, cfg.NumCounters),
		clock:  cfg.Timer,
		sweep:  cfg.SweepInterval,
		byHash: make(map[uint64]K),
	}
	c.reads = batcher.New[uint64](c.policy, batcher.Config{Size: readBatchSize})
	c.lastSweep = c.clock.Now().UnixNano()
	return c
}

// Get returns the live value for key. An expired entry is removed on the way.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	var zero V
	if c.closed.Load() {
		return zero, false
	}

	e, ok := c.store.Get(key)
	if !ok {
		return zero, false
	}
	if now := c.clock.Now().UnixNano(); e.expired(now) {
		c.expire(key, now)
		return zero, false
	}

	_ = c.reads.Push(c.hashFn(key))
	return e.value, true
}

// Set stores value without expiry. See SetWithTTL.
func (c *Cache[K, V]) Set(key K, value V, cost int64) bool {
	return c.SetWithTTL(key, value, cost, 0)
}

// SetWithTTL stores value for ttl (zero or negative never expires) and reports whether it
// was admitted. A rejected write also removes any older value under key.
func (c *Cache[K, V]) SetWithTTL(key K, value V, cost int64, ttl time.Duration) bool {
	if c.closed.Load() {
		return false
	}
	if cost <= 0 {
		cost = 1
	}

	now := c.clock.Now()
	e := entry[V]{value: value}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl).UnixNano()
	}
	h := c.hashFn(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.maybeSweep(now.UnixNano(), cost)

	if other, ok := c.byHash[h]; ok && other != key {
		c.store.Del(other)
		delete(c.byHash, h)
		c.policy.del(h)
	}

	victims, admitted := c.policy.add(h, cost)
	for _, v := range victims {
		if k, ok := c.byHash[v]; ok {
			c.store.Del(k)
			delete(c.byHash, v)
		}
	}
	if !admitted {
		c.remove(h, key)
		return false
	}

	c.store.Set(key, e)
	c.byHash[h] = key
	return true
}

// Delete removes key.
func (c *Cache[K, V]) Delete(key K) {
	h := c.hashFn(key)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(h, key)
}

// expire removes key unless a concurrent write has replaced it with a live entry.
func (c *Cache[K, V]) expire(key K, now int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.store.Get(key); ok && e.expired(now) {
		c.remove(c.hashFn(key), key)
	}
}

// DeleteFunc removes every key matching fn and returns how many went.
func (c *Cache[K, V]) DeleteFunc(fn func(K) bool) int {
	var keys []K
	c.store.Do(func(k K, _ entry[V]) {
		if fn(k) {
			keys = append(keys, k)
		}
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		c.remove(c.hashFn(k), k)
	}
	return len(keys)
}

// Sweep drops every expired entry now and returns how many went.
func (c *Cache[K, V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepLocked(c.clock.Now().UnixNano())
}

// maybeSweep runs a full sweep once per interval, or sooner when cost would not fit.
func (c *Cache[K, V]) maybeSweep(now, cost int64) {
	since := time.Duration(now - c.lastSweep)
	switch {
	case since >= c.sweep:
	case since >= fullSweepMinGap && c.policy.used()+cost > c.policy.maxCost:
	default:
		return
	}
	c.sweepLocked(now)
}

func (c *Cache[K, V]) sweepLocked(now int64) int {
	c.lastSweep = now

	var expired []K
	c.store.Do(func(k K, e entry[V]) {
		if e.expired(now) {
			expired = append(expired, k)
		}
	})
	for _, k := range expired {
		c.remove(c.hashFn(k), k)
	}
	return len(expired)
}

func (c *Cache[K, V]) remove(h uint64, key K) {
	c.store.Del(key)
	if k, ok := c.byHash[h]; ok && k == key {
		delete(c.byHash, h)
		c.policy.del(h)
	}
}

// Len reports resident entries, expired ones not yet swept included.
func (c *Cache[K, V]) Len() int { return c.store.Len() }

// Cost reports the summed cost of resident entries.
func (c *Cache[K, V]) Cost() int64 { return c.policy.used() }

// Clear drops every entry and the frequency history.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Clear()
	clear(c.byHash)
	c.policy.clear()
}

// Close stops the read batcher and the clock. It is safe to call twice.
func (c *Cache[K, V]) Close() {
	if c.closed.Swap(true) {
		return
	}
	c.reads.Close()
	c.clock.Stop()
}
