package redis

import (
	"context"
	"fmt"
	"time"

	redisV9 "github.com/redis/go-redis/v9"

	"github.com/huynhanx03/go-crud/pkg/settings"
	"github.com/huynhanx03/go-crud/pkg/utils"
)

const (
	defaultPoolSize        = 10
	defaultMinIdleConns    = 5
	defaultPoolTimeout     = 5
	defaultDialTimeout     = 5
	defaultReadTimeout     = 3
	defaultWriteTimeout    = 3
	defaultMaxRetries      = 3
	defaultMinRetryBackoff = 300 // millis
	defaultMaxRetryBackoff = 500 // millis
	pingTimeout            = 5 * time.Second
)

// NewConnection creates a client for cfg and verifies it with a ping.
// One address yields a plain client, several a cluster client, and a master name a sentinel client.
func NewConnection(cfg settings.Redis) (*RedisEngine, error) {
	setDefaultConfig(&cfg)

	client := redisV9.NewUniversalClient(&redisV9.UniversalOptions{
		Addrs:           cfg.Addrs,
		MasterName:      cfg.MasterName,
		Password:        cfg.Password,
		DB:              cfg.Database,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		MaxRetries:      cfg.MaxRetries,
		DialTimeout:     utils.ToDuration(cfg.DialTimeout),
		ReadTimeout:     utils.ToDuration(cfg.ReadTimeout),
		WriteTimeout:    utils.ToDuration(cfg.WriteTimeout),
		PoolTimeout:     utils.ToDuration(cfg.PoolTimeout),
		MinRetryBackoff: utils.ToDurationMs(cfg.MinRetryBackoff),
		MaxRetryBackoff: utils.ToDurationMs(cfg.MaxRetryBackoff),
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %w: %v", ErrConnectionFailed, ErrPingFailed, err)
	}

	return NewEngine(client), nil
}

// setDefaultConfig sets default values for Redis configuration
func setDefaultConfig(cfg *settings.Redis) {
	if len(cfg.Addrs) == 0 {
		cfg.Addrs = []string{"localhost:6379"}
	}
	if cfg.PoolSize == 0 {
		cfg.PoolSize = defaultPoolSize
	}
	if cfg.MinIdleConns == 0 {
		cfg.MinIdleConns = defaultMinIdleConns
	}
	if cfg.PoolTimeout == 0 {
		cfg.PoolTimeout = defaultPoolTimeout
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.MinRetryBackoff == 0 {
		cfg.MinRetryBackoff = defaultMinRetryBackoff
	}
	if cfg.MaxRetryBackoff == 0 {
		cfg.MaxRetryBackoff = defaultMaxRetryBackoff
	}
}
