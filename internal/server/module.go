// Package server wires the catalog into an HTTP server.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/huynhanx03/go-crud/internal/catalog"
	"github.com/huynhanx03/go-crud/pkg/logger"
	"github.com/huynhanx03/go-crud/pkg/metrics"
	"github.com/huynhanx03/go-crud/pkg/settings"
	"github.com/huynhanx03/go-crud/pkg/utils"
)

const defaultShutdownTimeout = 10

// Module provides everything from a *settings.Config supplied by the caller.
var Module = fx.Module("server",
	fx.Provide(
		newLogger,
		newRegistry,
		newMetrics,
		newCategoryService,
		newProductService,
		catalog.New,
		newCategories,
		newProducts,
		func(cfg *settings.Config, l *zap.Logger, m *metrics.Collector, g prometheus.Gatherer, p *Products, c *Categories) (*gin.Engine, error) {
			return NewRouter(routerDeps{Config: cfg, Logger: l, Metrics: m, Gatherer: g, Products: p, Categories: c})
		},
	),
	fx.Invoke(registerHooks),
)

func newLogger(lc fx.Lifecycle, cfg *settings.Config) (*zap.Logger, error) {
	l, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(func() { _ = l.Sync() }))
	return l, nil
}

func newRegistry() (*prometheus.Registry, prometheus.Gatherer, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, nil, err
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, nil, err
	}
	return reg, reg, nil
}

func newMetrics(reg *prometheus.Registry) (*metrics.Collector, error) {
	return metrics.New(reg)
}

func registerHooks(lc fx.Lifecycle, cfg *settings.Config, engine *gin.Engine, l *zap.Logger) {
	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	srv := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			l.Info("server starting", zap.String("addr", addr), zap.String("mode", gin.Mode()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					l.Error("server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			l.Info("server stopping")
			timeout := utils.ToDuration(utils.Coalesce(cfg.Server.ShutdownTimeout, defaultShutdownTimeout))
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return srv.Shutdown(ctx)
		},
	})
}
