package server

import (
	"go.uber.org/zap"

	"github.com/huynhanx03/go-crud/internal/catalog"
	"github.com/huynhanx03/go-crud/pkg/constraints"
	"github.com/huynhanx03/go-crud/pkg/crud"
	"github.com/huynhanx03/go-crud/pkg/metrics"
	"github.com/huynhanx03/go-crud/pkg/settings"
)

const VariantFull = "full"

type (
	Products   = crud.Dispatcher[catalog.Product, *catalog.Product, string]
	Categories = crud.Dispatcher[catalog.Category, *catalog.Category, int64]
)

// dispatchOptions turns a resource section into dispatcher options.
// Unknown action names are logged and skipped.
func dispatchOptions[T any](name string, res settings.Resource, m *metrics.Collector, logger *zap.Logger) []crud.Option[T] {
	variant := crud.VariantBase
	if res.Variant == VariantFull {
		variant = crud.VariantFull
	}

	toggles := make(map[crud.Action]bool, len(res.Toggles))
	for key, on := range res.Toggles {
		a, ok := crud.ParseAction(key)
		if !ok {
			logger.Warn("unknown action in toggles", zap.String("resource", name), zap.String("action", key))
			continue
		}
		toggles[a] = on
	}

	return []crud.Option[T]{
		crud.WithVariant[T](variant),
		crud.WithToggles[T](toggles),
		crud.WithObserver[T](m),
		crud.WithLogger[T](logger),
	}
}

func newDispatcher[T any, PT crud.Entity[T, K], K constraints.ID](name string, svc crud.Service[T, K], cfg *settings.Config, m *metrics.Collector, logger *zap.Logger, extra ...crud.Option[T]) *crud.Dispatcher[T, PT, K] {
	opts := dispatchOptions[T](name, cfg.Crud.Resource(name), m, logger)
	return crud.New[T, PT, K](name, svc, append(opts, extra...)...)
}

func newCategories(svc crud.Service[catalog.Category, int64], cat *catalog.Catalog, cfg *settings.Config, m *metrics.Collector, logger *zap.Logger) *Categories {
	return newDispatcher[catalog.Category, *catalog.Category](catalog.ResourceCategories, svc, cfg, m, logger,
		crud.WithValidator(cat.ValidateCategory),
	)
}

func newProducts(svc crud.Service[catalog.Product, string], cat *catalog.Catalog, cfg *settings.Config, m *metrics.Collector, logger *zap.Logger) *Products {
	return newDispatcher[catalog.Product, *catalog.Product](catalog.ResourceProducts, svc, cfg, m, logger,
		crud.WithValidator(cat.ValidateProduct),
		crud.WithPrepareForm(cat.PrepareProductForm),
	)
}
