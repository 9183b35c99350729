// Package view serves a Dispatcher to browsers: HTML pages, form posts and redirects.
package view

import (
	"context"
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/huynhanx03/go-crud/pkg/common/http/request"
	"github.com/huynhanx03/go-crud/pkg/common/http/validation"
	"github.com/huynhanx03/go-crud/pkg/constraints"
	"github.com/huynhanx03/go-crud/pkg/crud"
)

const paramID = "id"

// Controller renders `<name>/<view>` templates for a Dispatcher.
type Controller[T any, PT crud.Entity[T, K], K constraints.ID] struct {
	d    *crud.Dispatcher[T, PT, K]
	base string
}

// New creates a Controller for d.
func New[T any, PT crud.Entity[T, K], K constraints.ID](d *crud.Dispatcher[T, PT, K]) *Controller[T, PT, K] {
	return &Controller[T, PT, K]{d: d}
}

// Register mounts the browser routes on rg. Redirects are relative to rg's base path.
func (v *Controller[T, PT, K]) Register(rg *gin.RouterGroup) {
	v.base = rg.BasePath()

	rg.GET("/", v.Index)
	rg.GET("/details/:id", v.Details)
	rg.GET("/create", v.CreateForm)
	rg.POST("/create", v.Create)
	rg.GET("/edit/:id", v.EditForm)
	rg.POST("/edit/:id", v.Edit)
	rg.GET("/delete/:id", v.DeleteConfirm)
	rg.POST("/delete/:id", v.Delete)
	rg.GET("/clone/:id", v.CloneConfirm)
	rg.POST("/clone/:id", v.Clone)
}

func (v *Controller[T, PT, K]) Index(c *gin.Context) {
	res, err := v.d.List(c.Request.Context())
	v.respond(c, StepIndex, res, err)
}

func (v *Controller[T, PT, K]) Details(c *gin.Context) {
	v.byID(c, crud.ActionGet, StepDetails, v.d.Get)
}

func (v *Controller[T, PT, K]) CreateForm(c *gin.Context) {
	res, err := v.d.NewForm(c.Request.Context())
	v.respond(c, StepCreateForm, res, err)
}

func (v *Controller[T, PT, K]) Create(c *gin.Context) {
	if !v.allowed(c, crud.ActionCreate) {
		return
	}
	model, ok := v.decode(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if model.rejected != nil {
		res, err := v.d.Reject(ctx, crud.ActionCreate, model.value, model.rejected)
		v.respond(c, StepCreate, res, err)
		return
	}
	res, err := v.d.Create(ctx, model.value)
	v.respond(c, StepCreate, res, err)
}

func (v *Controller[T, PT, K]) EditForm(c *gin.Context) {
	v.byID(c, crud.ActionUpdate, StepEditForm, v.d.EditForm)
}

func (v *Controller[T, PT, K]) Edit(c *gin.Context) {
	if !v.allowed(c, crud.ActionUpdate) {
		return
	}
	id, err := request.ParamID[K](c, paramID)
	if err != nil {
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}
	model, ok := v.decode(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if model.rejected != nil {
		PT(model.value).SetID(id)
		res, err := v.d.Reject(ctx, crud.ActionUpdate, model.value, model.rejected)
		v.respond(c, StepEdit, res, err)
		return
	}
	res, err := v.d.Update(ctx, id, model.value)
	v.respond(c, StepEdit, res, err)
}

func (v *Controller[T, PT, K]) DeleteConfirm(c *gin.Context) {
	v.byID(c, crud.ActionDelete, StepDeleteConfirm, v.d.DeleteConfirm)
}

func (v *Controller[T, PT, K]) Delete(c *gin.Context) {
	v.byID(c, crud.ActionDelete, StepDelete, v.d.Delete)
}

func (v *Controller[T, PT, K]) CloneConfirm(c *gin.Context) {
	v.byID(c, crud.ActionClone, StepCloneConfirm, v.d.CloneConfirm)
}

func (v *Controller[T, PT, K]) Clone(c *gin.Context) {
	v.byID(c, crud.ActionClone, StepClone, v.d.Clone)
}

func (v *Controller[T, PT, K]) byID(c *gin.Context, a crud.Action, step Step, dispatch func(context.Context, K) (crud.Result[T], error)) {
	if !v.allowed(c, a) {
		return
	}
	id, err := request.ParamID[K](c, paramID)
	if err != nil {
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	res, err := dispatch(c.Request.Context(), id)
	v.respond(c, step, res, err)
}

// allowed answers 404 for a disabled action before any input is read.
func (v *Controller[T, PT, K]) allowed(c *gin.Context, a crud.Action) bool {
	if v.d.IsEnabled(a) {
		return true
	}
	v.write(c, Outcome{Kind: KindNotFound})
	return false
}

type decoded[T any] struct {
	value    *T
	rejected error // fields that did not convert; value holds the rest
}

// decode binds the posted form. Values of the wrong type are returned as rejected field
// errors; only an unreadable body aborts with 400.
func (v *Controller[T, PT, K]) decode(c *gin.Context) (decoded[T], bool) {
	model, err := request.DecodeForm[T](c)
	if err == nil {
		return decoded[T]{value: model}, true
	}
	var fields validation.Errors
	if model != nil && errors.As(err, &fields) {
		return decoded[T]{value: model, rejected: fields}, true
	}
	_ = c.AbortWithError(http.StatusBadRequest, err)
	return decoded[T]{}, false
}

// respond hands service faults to the fault middleware and writes everything else.
func (v *Controller[T, PT, K]) respond(c *gin.Context, step Step, res crud.Result[T], err error) {
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}

	out, err := decide(c.Request.Context(), v.d, step, res)
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	v.write(c, out)
}

func (v *Controller[T, PT, K]) write(c *gin.Context, out Outcome) {
	switch out.Kind {
	case KindRedirect:
		c.Redirect(http.StatusFound, v.location(out))
	case KindNotFound:
		c.AbortWithStatus(http.StatusNotFound)
	default:
		c.HTML(http.StatusOK, v.d.Name()+"/"+out.View, gin.H{
			"Resource": v.d.Name(),
			"Base":     v.index(),
			"Model":    out.Model,
			"Data":     out.Data,
			"Errors":   out.Errors,
			"Toggles":  v.toggles(),
		})
	}
}

func (v *Controller[T, PT, K]) location(out Outcome) string {
	if out.Target == TargetDetails {
		return path.Join(v.index(), "details", out.ID)
	}
	return v.index()
}

func (v *Controller[T, PT, K]) index() string {
	return strings.TrimSuffix(v.base, "/") + "/"
}

// toggles keys enablement by action name so templates can hide disabled links.
func (v *Controller[T, PT, K]) toggles() map[string]bool {
	out := make(map[string]bool)
	for a, on := range v.d.Toggles() {
		out[a.String()] = on
	}
	return out
}
