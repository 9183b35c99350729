// Package resource serves a Dispatcher as a JSON API.
package resource

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/huynhanx03/go-crud/pkg/common/http/request"
	"github.com/huynhanx03/go-crud/pkg/common/http/response"
	"github.com/huynhanx03/go-crud/pkg/constraints"
	"github.com/huynhanx03/go-crud/pkg/crud"
)

const paramID = "id"

// Controller answers with the response envelope; status codes are chosen by response.WritePayload.
type Controller[T any, PT crud.Entity[T, K], K constraints.ID] struct {
	d *crud.Dispatcher[T, PT, K]
}

func New[T any, PT crud.Entity[T, K], K constraints.ID](d *crud.Dispatcher[T, PT, K]) *Controller[T, PT, K] {
	return &Controller[T, PT, K]{d: d}
}

// Register mounts the API routes on rg.
func (r *Controller[T, PT, K]) Register(rg *gin.RouterGroup) {
	rg.GET("", r.List)
	rg.GET("/:id", r.Get)
	rg.POST("", r.Create)
	rg.PUT("/:id", r.Update)
	rg.DELETE("/:id", r.Delete)
	rg.POST("/:id/clone", r.Clone)
}

func (r *Controller[T, PT, K]) List(c *gin.Context) {
	res, err := r.d.List(c.Request.Context())
	r.respond(c, res, err)
}

func (r *Controller[T, PT, K]) Get(c *gin.Context) {
	r.byID(c, crud.ActionGet, r.d.Get)
}

func (r *Controller[T, PT, K]) Create(c *gin.Context) {
	if !r.allowed(c, crud.ActionCreate) {
		return
	}
	model, err := request.DecodeJSON[T](c)
	if err != nil {
		response.ErrorResponse(c, response.CodeParamInvalid, err)
		return
	}

	res, err := r.d.Create(c.Request.Context(), model)
	r.respond(c, res, err)
}

// Update stores the body under the route id; an id in the body is ignored.
func (r *Controller[T, PT, K]) Update(c *gin.Context) {
	if !r.allowed(c, crud.ActionUpdate) {
		return
	}
	id, err := request.ParamID[K](c, paramID)
	if err != nil {
		response.ErrorResponse(c, response.CodeParamInvalid, err)
		return
	}
	model, err := request.DecodeJSON[T](c)
	if err != nil {
		response.ErrorResponse(c, response.CodeParamInvalid, err)
		return
	}

	res, err := r.d.Update(c.Request.Context(), id, model)
	r.respond(c, res, err)
}

func (r *Controller[T, PT, K]) Delete(c *gin.Context) {
	r.byID(c, crud.ActionDelete, r.d.Delete)
}

func (r *Controller[T, PT, K]) Clone(c *gin.Context) {
	r.byID(c, crud.ActionClone, r.d.Clone)
}

func (r *Controller[T, PT, K]) byID(c *gin.Context, a crud.Action, dispatch func(context.Context, K) (crud.Result[T], error)) {
	if !r.allowed(c, a) {
		return
	}
	id, err := request.ParamID[K](c, paramID)
	if err != nil {
		response.ErrorResponse(c, response.CodeParamInvalid, err)
		return
	}

	res, err := dispatch(c.Request.Context(), id)
	r.respond(c, res, err)
}

// allowed answers 404 for a disabled action before the request is parsed.
func (r *Controller[T, PT, K]) allowed(c *gin.Context, a crud.Action) bool {
	if r.d.IsEnabled(a) {
		return true
	}
	response.WritePayload(c, response.Payload{Kind: response.KindAbsent})
	return false
}

// respond hands service faults to the fault middleware and writes everything else.
func (r *Controller[T, PT, K]) respond(c *gin.Context, res crud.Result[T], err error) {
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	response.WritePayload(c, Payload(res))
}

// Payload packages a dispatch result for the wire.
func Payload[T any](res crud.Result[T]) response.Payload {
	switch {
	case res.NotFound():
		return response.Payload{Kind: response.KindAbsent}
	case res.Invalid():
		return response.Payload{Kind: response.KindInvalid, Errors: res.FieldErrors()}
	}

	switch res.Action {
	case crud.ActionList:
		items := res.Entities
		if items == nil {
			items = []*T{}
		}
		return response.Payload{Kind: response.KindCollection, Body: items}
	case crud.ActionCreate, crud.ActionClone:
		return response.Payload{Kind: response.KindCreated, Body: res.Entity}
	case crud.ActionDelete:
		return response.Payload{Kind: response.KindEmpty}
	default:
		return response.Payload{Kind: response.KindEntity, Body: res.Entity}
	}
}
