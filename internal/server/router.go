package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/huynhanx03/go-crud/pkg/common/http/middleware"
	"github.com/huynhanx03/go-crud/pkg/common/http/response"
	"github.com/huynhanx03/go-crud/pkg/crud/admin"
	"github.com/huynhanx03/go-crud/pkg/crud/resource"
	"github.com/huynhanx03/go-crud/pkg/crud/view"
	"github.com/huynhanx03/go-crud/pkg/metrics"
	"github.com/huynhanx03/go-crud/pkg/settings"
)

const paramID = "id"

type routerDeps struct {
	Config     *settings.Config
	Logger     *zap.Logger
	Metrics    *metrics.Collector
	Gatherer   prometheus.Gatherer
	Products   *Products
	Categories *Categories
}

// NewRouter builds the gin engine: browser pages, JSON API, toggles admin and metrics.
func NewRouter(d routerDeps) (*gin.Engine, error) {
	debug := d.Config.Server.Mode == gin.DebugMode
	if d.Config.Server.Mode != "" {
		gin.SetMode(d.Config.Server.Mode)
	}

	tmpl, err := Templates()
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(
		middleware.RequestID(),
		middleware.AccessLog(d.Logger),
		middleware.Faults(d.Logger, debug),
		d.Metrics.Middleware(),
	)
	if d.Config.Server.RequireHTTPS {
		r.Use(middleware.RequireSecureConnection())
	}

	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/products/") })
	r.GET("/healthz", func(c *gin.Context) { response.SuccessResponse(c, response.CodeSuccess, "ok") })
	r.GET(metrics.Path, gin.WrapH(metrics.Handler(d.Gatherer)))

	ids := middleware.AlphaDashParam(paramID)

	view.New(d.Products).Register(r.Group("/products", ids))
	view.New(d.Categories).Register(r.Group("/categories", ids))

	api := r.Group("/api", ids)
	resource.New(d.Products).Register(api.Group("/products"))
	resource.New(d.Categories).Register(api.Group("/categories"))

	admin.NewRegistry(d.Logger, d.Products, d.Categories).Register(r.Group("/admin/toggles"))

	return r, nil
}
