// Package cached is a read-through cache in front of a crud.Service.
package cached

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/huynhanx03/go-crud/pkg/common/cache"
	"github.com/huynhanx03/go-crud/pkg/constraints"
	"github.com/huynhanx03/go-crud/pkg/crud"
)

const (
	DefaultTTL = 5 * time.Minute
	listSuffix = "all"
)

// Service caches Read and ReadAll results under prefix. Writes go to the wrapped
// service first and then refresh or drop the affected keys.
//
// Absence is never cached. Cache failures are logged and the call falls through
// to the wrapped service.
type Service[T any, PT crud.Entity[T, K], K constraints.ID] struct {
	next   crud.Service[T, K]
	engine cache.CacheEngine
	prefix string
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// New wraps next. A non-positive ttl uses DefaultTTL and a nil logger is a no-op.
func New[T any, PT crud.Entity[T, K], K constraints.ID](next crud.Service[T, K], engine cache.CacheEngine, prefix string, ttl time.Duration, logger *zap.Logger) *Service[T, PT, K] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service[T, PT, K]{
		next:   next,
		engine: engine,
		prefix: prefix + ":",
		ttl:    ttl,
		logger: logger.With(zap.String("cache_prefix", prefix)),
	}
}

func (s *Service[T, PT, K]) key(id K) string { return s.prefix + constraints.FormatID(id) }
func (s *Service[T, PT, K]) listKey() string { return s.prefix + listSuffix }

func (s *Service[T, PT, K]) Create(ctx context.Context, model *T) (*T, error) {
	created, err := s.next.Create(ctx, model)
	if err != nil || created == nil {
		return created, err
	}
	s.store(ctx, s.key(PT(created).GetID()), created)
	s.drop(ctx, s.listKey())
	return created, nil
}

func (s *Service[T, PT, K]) Read(ctx context.Context, id K) (*T, error) {
	key := s.key(id)

	var hit T
	if err := cache.HandleHitCache(ctx, &hit, s.engine, key); err == nil {
		return &hit, nil
	} else if !errors.Is(err, cache.ErrKeyNotFound) {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	// Callers joining the flight must not inherit the first caller's cancellation.
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(key, func() (any, error) {
		model, err := s.next.Read(shared, id)
		if err != nil || model == nil {
			return model, err
		}
		s.store(shared, key, model)
		return model, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(v.(*T)), nil
}

func (s *Service[T, PT, K]) ReadAll(ctx context.Context) ([]*T, error) {
	key := s.listKey()

	var hit []*T
	if err := cache.HandleHitCache(ctx, &hit, s.engine, key); err == nil {
		return hit, nil
	} else if !errors.Is(err, cache.ErrKeyNotFound) {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	shared := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(key, func() (any, error) {
		models, err := s.next.ReadAll(shared)
		if err != nil {
			return nil, err
		}
		s.store(shared, key, models)
		return models, nil
	})
	if err != nil {
		return nil, err
	}

	models := v.([]*T)
	out := make([]*T, len(models))
	for i, m := range models {
		out[i] = clone(m)
	}
	return out, nil
}

// Update drops the entry when the entity turned out to be missing.
func (s *Service[T, PT, K]) Update(ctx context.Context, model *T) (*T, error) {
	key := s.key(PT(model).GetID())
	updated, err := s.next.Update(ctx, model)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		s.drop(ctx, key, s.listKey())
		return nil, nil
	}
	s.store(ctx, key, updated)
	s.drop(ctx, s.listKey())
	return updated, nil
}

func (s *Service[T, PT, K]) Delete(ctx context.Context, id K) error {
	if err := s.next.Delete(ctx, id); err != nil {
		return err
	}
	s.drop(ctx, s.key(id), s.listKey())
	return nil
}

// Invalidate drops every key of this service.
func (s *Service[T, PT, K]) Invalidate(ctx context.Context) error {
	return s.engine.InvalidatePrefix(ctx, s.prefix)
}

func (s *Service[T, PT, K]) store(ctx context.Context, key string, value any) {
	if err := cache.HandleSetCache(ctx, value, s.engine, key, s.ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service[T, PT, K]) drop(ctx context.Context, keys ...string) {
	if err := s.engine.BatchDelete(ctx, keys); err != nil {
		s.logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// clone keeps callers sharing a singleflight result from aliasing each other.
func clone[T any](m *T) *T {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}
