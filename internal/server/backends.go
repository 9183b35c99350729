package server

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/huynhanx03/go-crud/internal/catalog"
	"github.com/huynhanx03/go-crud/pkg/common/cache"
	"github.com/huynhanx03/go-crud/pkg/common/cache/local"
	"github.com/huynhanx03/go-crud/pkg/crud"
	"github.com/huynhanx03/go-crud/pkg/database"
	"github.com/huynhanx03/go-crud/pkg/database/cached"
	"github.com/huynhanx03/go-crud/pkg/database/elasticsearch"
	"github.com/huynhanx03/go-crud/pkg/database/ent"
	"github.com/huynhanx03/go-crud/pkg/database/memory"
	"github.com/huynhanx03/go-crud/pkg/database/mongodb"
	"github.com/huynhanx03/go-crud/pkg/database/redis"
	"github.com/huynhanx03/go-crud/pkg/mq/batcher"
	"github.com/huynhanx03/go-crud/pkg/mq/changefeed"
	"github.com/huynhanx03/go-crud/pkg/mq/kafka"
	"github.com/huynhanx03/go-crud/pkg/settings"
	"github.com/huynhanx03/go-crud/pkg/timer"
	"github.com/huynhanx03/go-crud/pkg/unique"
	"github.com/huynhanx03/go-crud/pkg/utils"
)

const (
	BackendMemory        = "memory"
	BackendMongoDB       = "mongodb"
	BackendElasticsearch = "elasticsearch"
	BackendEnt           = "ent"

	CacheStoreLocal = "local"
	CacheStoreRedis = "redis"

	memoryShards   = 32
	connectTimeout = 15 * time.Second
	cacheClockStep = time.Millisecond
)

func newCategoryService(cfg *settings.Config) (crud.Service[catalog.Category, int64], error) {
	if b := cfg.Crud.Resource(catalog.ResourceCategories).Backend; b != "" && b != BackendMemory {
		return nil, fmt.Errorf("categories: backend %q not supported, snowflake ids live in memory", b)
	}
	node, err := unique.NewSnowflakeNode(cfg.SnowflakeNode, timer.System{})
	if err != nil {
		return nil, err
	}
	var repo database.Repository[catalog.Category, int64] = memory.New[catalog.Category, *catalog.Category, int64](memoryShards)
	return database.AsService[catalog.Category, *catalog.Category](repo, node.Generate), nil
}

func newProductService(lc fx.Lifecycle, cfg *settings.Config, logger *zap.Logger) (crud.Service[catalog.Product, string], error) {
	res := cfg.Crud.Resource(catalog.ResourceProducts)

	repo, err := productRepository(lc, cfg, res.Backend, logger)
	if err != nil {
		return nil, err
	}
	var svc crud.Service[catalog.Product, string] = database.AsService[catalog.Product, *catalog.Product](repo, uuid.NewString)

	if res.Cache {
		engine, err := cacheEngine(lc, cfg, res)
		if err != nil {
			return nil, err
		}
		svc = cached.New[catalog.Product, *catalog.Product](svc, engine, catalog.ResourceProducts, utils.ToDuration(res.CacheTTL), logger)
	}

	if res.ChangeFeed != "" {
		producer, err := kafka.NewProducer(cfg.Kafka, logger)
		if err != nil {
			return nil, err
		}
		feed := changefeed.NewFeed(producer, res.ChangeFeed, batcher.Config{
			Size:     cfg.Kafka.BatchSize,
			Interval: utils.ToDurationMs(cfg.Kafka.BatchInterval),
		}, nil, logger)
		lc.Append(fx.StopHook(func() error {
			feed.Close()
			return producer.Close()
		}))
		svc = changefeed.Wrap[catalog.Product, *catalog.Product](svc, feed, catalog.ResourceProducts)
	}

	logger.Info("products storage ready",
		zap.String("backend", utils.Coalesce(res.Backend, BackendMemory)),
		zap.Bool("cache", res.Cache),
		zap.String("change_feed", res.ChangeFeed),
	)
	return svc, nil
}

func productRepository(lc fx.Lifecycle, cfg *settings.Config, backend string, logger *zap.Logger) (database.Repository[catalog.Product, string], error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	switch backend {
	case "", BackendMemory:
		return memory.New[catalog.Product, *catalog.Product, string](memoryShards), nil

	case BackendMongoDB:
		client, err := mongodb.NewClient(ctx, &cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.StopHook(func(ctx context.Context) error { return client.Disconnect(ctx) }))
		col := client.Database(cfg.MongoDB.Database).Collection(catalog.ResourceProducts)
		return mongodb.NewRepository[catalog.Product, *catalog.Product, string](col), nil

	case BackendElasticsearch:
		client, err := elasticsearch.New(cfg.Elasticsearch)
		if err != nil {
			return nil, err
		}
		return elasticsearch.NewRepository[catalog.Product, *catalog.Product, string](client, catalog.ResourceProducts), nil

	case BackendEnt:
		drv, err := ent.NewDriver(cfg.Database)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.StopHook(drv.Close))
		if err := catalog.Migrate(ctx, drv); err != nil {
			return nil, err
		}
		logger.Info("products table ready", zap.String("dialect", drv.Dialect()))
		repo, err := ent.NewRepository[catalog.Product, *catalog.Product, string](drv, ent.WithTable(catalog.TableProducts))
		if err != nil {
			return nil, err
		}
		return repo, nil
	}
	return nil, fmt.Errorf("products: unknown backend %q", backend)
}

func cacheEngine(lc fx.Lifecycle, cfg *settings.Config, res settings.Resource) (cache.CacheEngine, error) {
	switch res.CacheStore {
	case "", CacheStoreLocal:
		var opts []local.Option
		if res.CacheBytes > 0 {
			opts = append(opts, local.WithMaxCost(res.CacheBytes))
		}
		engine := local.New(timer.NewCachedTimer(cacheClockStep), opts...)
		lc.Append(fx.StopHook(engine.Close))
		return engine, nil
	case CacheStoreRedis:
		engine, err := redis.NewConnection(cfg.Redis)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.StopHook(engine.Close))
		return engine, nil
	}
	return nil, fmt.Errorf("unknown cache store %q", res.CacheStore)
}
