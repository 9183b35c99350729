package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/huynhanx03/go-crud/pkg/crud"
)

const Path = "/metrics"

// Collector records dispatch outcomes and HTTP traffic.
type Collector struct {
	dispatches      *prometheus.CounterVec
	dispatchLatency *prometheus.HistogramVec
	faults          *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	responseTime    *prometheus.HistogramVec
}

// New creates a Collector and registers it with reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	m := &Collector{
		dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "crud_dispatch_total", Help: "crud dispatches by resource, action and outcome"},
			[]string{"resource", "action", "outcome"},
		),
		dispatchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crud_dispatch_seconds",
				Help:    "crud dispatch latency, service call included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"resource", "action"},
		),
		faults: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "crud_service_faults_total", Help: "service faults by resource and action"},
			[]string{"resource", "action"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "http_requests_total", Help: "http requests by code, route and method"},
			[]string{"code", "route", "method"},
		),
		responseTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_seconds",
				Help:    "http response time",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"method"},
		),
	}

	for _, c := range []prometheus.Collector{m.dispatches, m.dispatchLatency, m.faults, m.httpRequests, m.responseTime} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Observe implements crud.Observer.
func (m *Collector) Observe(_ context.Context, e crud.Event) {
	action := e.Action.String()
	if e.Fault != nil {
		m.faults.WithLabelValues(e.Resource, action).Inc()
	} else {
		m.dispatches.WithLabelValues(e.Resource, action, e.Outcome.String()).Inc()
	}
	m.dispatchLatency.WithLabelValues(e.Resource, action).Observe(e.Elapsed.Seconds())
}

// Middleware counts requests by route pattern; unmatched routes share one label.
func (m *Collector) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Request.URL.Path == Path {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		m.httpRequests.WithLabelValues(strconv.Itoa(c.Writer.Status()), route, c.Request.Method).Inc()
		m.responseTime.WithLabelValues(c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
