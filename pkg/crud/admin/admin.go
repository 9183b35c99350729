// Package admin exposes dispatcher action toggles over HTTP.
package admin

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/huynhanx03/go-crud/pkg/common/apperr"
	"github.com/huynhanx03/go-crud/pkg/common/http/handler"
	"github.com/huynhanx03/go-crud/pkg/common/http/response"
	"github.com/huynhanx03/go-crud/pkg/crud"
)

// Toggler is the part of a Dispatcher the admin endpoint drives.
type Toggler interface {
	Name() string
	Toggles() map[crud.Action]bool
	SetEnabled(a crud.Action, enabled bool)
}

// ToggleRequest switches one action of one resource.
type ToggleRequest struct {
	Resource string `json:"resource" validate:"required"`
	Action   string `json:"action" validate:"required"`
	Enabled  *bool  `json:"enabled" validate:"required"`
}

// ResourceToggles is the state of one resource, keyed by action name.
type ResourceToggles struct {
	Resource string          `json:"resource"`
	Toggles  map[string]bool `json:"toggles"`
}

// Registry holds the togglers by resource name.
// Toggle writes still race with in-flight dispatches; the last write wins.
type Registry struct {
	mu       sync.RWMutex
	togglers map[string]Toggler
	logger   *zap.Logger
}

// NewRegistry creates a Registry with ts already added.
func NewRegistry(logger *zap.Logger, ts ...Toggler) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{togglers: make(map[string]Toggler, len(ts)), logger: logger}
	for _, t := range ts {
		r.Add(t)
	}
	return r
}

// Add registers t under its name, replacing any previous one.
func (r *Registry) Add(t Toggler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.togglers[t.Name()] = t
}

// Snapshot lists every resource sorted by name.
func (r *Registry) Snapshot() []ResourceToggles {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ResourceToggles, 0, len(r.togglers))
	for name, t := range r.togglers {
		out = append(out, snapshot(name, t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Resource < out[j].Resource })
	return out
}

// Toggle applies req and returns the new state of the resource.
func (r *Registry) Toggle(_ context.Context, req *ToggleRequest) (ResourceToggles, error) {
	r.mu.RLock()
	t, ok := r.togglers[req.Resource]
	r.mu.RUnlock()
	if !ok {
		return ResourceToggles{}, apperr.NewError("resource "+req.Resource, response.CodeNotFound, apperr.MsgNotFound, http.StatusNotFound, nil)
	}

	a, ok := crud.ParseAction(req.Action)
	if !ok {
		return ResourceToggles{}, apperr.NewError("action "+req.Action, response.CodeParamInvalid, apperr.MsgUnsupported, http.StatusBadRequest, nil)
	}

	t.SetEnabled(a, *req.Enabled)
	r.logger.Info("action toggled",
		zap.String("resource", req.Resource),
		zap.String("action", a.String()),
		zap.Bool("enabled", *req.Enabled),
	)
	return snapshot(req.Resource, t), nil
}

// Register mounts GET / and PUT / on rg.
func (r *Registry) Register(rg *gin.RouterGroup) {
	rg.GET("", handler.Read(func(context.Context) ([]ResourceToggles, error) { return r.Snapshot(), nil }))
	rg.PUT("", handler.Wrap(r.Toggle))
}

func snapshot(name string, t Toggler) ResourceToggles {
	toggles := t.Toggles()
	out := ResourceToggles{Resource: name, Toggles: make(map[string]bool, len(toggles))}
	for a, on := range toggles {
		out.Toggles[a.String()] = on
	}
	return out
}
