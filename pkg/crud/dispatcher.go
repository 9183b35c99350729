package crud

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/huynhanx03/go-crud/pkg/common/apperr"
	"github.com/huynhanx03/go-crud/pkg/constraints"
)

// ErrEmptyModel rejects a submission that carried no model at all.
var ErrEmptyModel = errors.New("empty model")

// Dispatcher maps CRUD actions onto a Service: toggle check, service call, classification.
//
// It holds no per-request state. Service faults are returned as errors and never
// classified; an absent entity is OutcomeNotFound, and so is a disabled action.
//
// Toggles are a plain array read without synchronization. Changing them while
// requests are in flight is a known race: the last write wins.
type Dispatcher[T any, PT Entity[T, K], K constraints.ID] struct {
	name      string
	service   Service[T, K]
	toggles   [actionCount]bool
	target    CreateSuccessTarget
	validate  ValidateFunc[T]
	prepare   PrepareFormFunc[T]
	observers []Observer
	logger    *zap.Logger
}

// New creates a Dispatcher for the resource called name.
func New[T any, PT Entity[T, K], K constraints.ID](name string, service Service[T, K], opts ...Option[T]) *Dispatcher[T, PT, K] {
	cfg := defaultConfig[T]()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Dispatcher[T, PT, K]{
		name:      name,
		service:   service,
		toggles:   cfg.toggles(),
		target:    cfg.createTarget(),
		validate:  cfg.validate,
		prepare:   cfg.prepare,
		observers: cfg.observers,
		logger:    cfg.logger.With(zap.String("resource", name)),
	}
}

// Name returns the resource name.
func (d *Dispatcher[T, PT, K]) Name() string { return d.name }

// CreateSuccessTarget returns where a successful browser Create redirects to.
func (d *Dispatcher[T, PT, K]) CreateSuccessTarget() CreateSuccessTarget { return d.target }

// IsEnabled reports whether action a may be dispatched.
func (d *Dispatcher[T, PT, K]) IsEnabled(a Action) bool {
	return a >= 0 && a < actionCount && d.toggles[a]
}

// SetEnabled turns an action on or off for subsequent requests.
func (d *Dispatcher[T, PT, K]) SetEnabled(a Action, enabled bool) {
	if a >= 0 && a < actionCount {
		d.toggles[a] = enabled
	}
}

func (d *Dispatcher[T, PT, K]) Enable(a Action)  { d.SetEnabled(a, true) }
func (d *Dispatcher[T, PT, K]) Disable(a Action) { d.SetEnabled(a, false) }

// Toggles returns a snapshot of every action's enablement.
func (d *Dispatcher[T, PT, K]) Toggles() map[Action]bool {
	out := make(map[Action]bool, actionCount)
	for _, a := range Actions() {
		out[a] = d.toggles[a]
	}
	return out
}

// PrepareForm runs the form-preparation hook for model (nil for a blank form).
func (d *Dispatcher[T, PT, K]) PrepareForm(ctx context.Context, model *T) (ViewData, error) {
	data := ViewData{}
	if d.prepare == nil {
		return data, nil
	}
	if err := d.prepare(ctx, model, data); err != nil {
		return nil, pkgerrors.WithMessagef(err, "%s: prepare form", d.name)
	}
	return data, nil
}

// List returns every entity.
func (d *Dispatcher[T, PT, K]) List(ctx context.Context) (Result[T], error) {
	start := time.Now()
	if !d.IsEnabled(ActionList) {
		return d.finish(ctx, start, notFound[T](ActionList), nil)
	}

	items, err := d.service.ReadAll(ctx)
	if err != nil {
		return d.fault(ctx, start, ActionList, err, apperr.MsgListFailed)
	}
	return d.finish(ctx, start, Result[T]{Action: ActionList, Outcome: OutcomeOK, Entities: items}, nil)
}

// Get returns the entity with the given id.
func (d *Dispatcher[T, PT, K]) Get(ctx context.Context, id K) (Result[T], error) {
	return d.read(ctx, ActionGet, id)
}

// NewForm gates the blank create form. It performs no service call.
func (d *Dispatcher[T, PT, K]) NewForm(ctx context.Context) (Result[T], error) {
	start := time.Now()
	if !d.IsEnabled(ActionCreate) {
		return d.finish(ctx, start, notFound[T](ActionCreate), nil)
	}
	return d.finish(ctx, start, ok[T](ActionCreate, nil), nil)
}

// Create validates model and persists it. The result carries the stored entity with its new id.
func (d *Dispatcher[T, PT, K]) Create(ctx context.Context, model *T) (Result[T], error) {
	start := time.Now()
	if !d.IsEnabled(ActionCreate) {
		return d.finish(ctx, start, notFound[T](ActionCreate), nil)
	}
	if res, rejected := d.check(ctx, ActionCreate, model); rejected {
		return d.finish(ctx, start, res, nil)
	}

	created, err := d.service.Create(ctx, model)
	if err != nil {
		return d.fault(ctx, start, ActionCreate, err, apperr.MsgCreateFailed)
	}
	return d.finish(ctx, start, d.present(ActionCreate, created), nil)
}

// Reject reports model as failing validation for a (Create or Update) without calling the
// service, for input the caller could not fully decode. cause should carry field errors.
// A disabled action still yields NotFound.
func (d *Dispatcher[T, PT, K]) Reject(ctx context.Context, a Action, model *T, cause error) (Result[T], error) {
	start := time.Now()
	if !d.IsEnabled(a) {
		return d.finish(ctx, start, notFound[T](a), nil)
	}
	return d.finish(ctx, start, invalid(a, model, cause), nil)
}

// EditForm loads the entity to edit, gated by the Update toggle.
func (d *Dispatcher[T, PT, K]) EditForm(ctx context.Context, id K) (Result[T], error) {
	return d.read(ctx, ActionUpdate, id)
}

// Update persists model under the route id. The id carried by model is always overwritten.
func (d *Dispatcher[T, PT, K]) Update(ctx context.Context, id K, model *T) (Result[T], error) {
	start := time.Now()
	if !d.IsEnabled(ActionUpdate) {
		return d.finish(ctx, start, notFound[T](ActionUpdate), nil)
	}
	if model != nil {
		PT(model).SetID(id)
	}
	if res, rejected := d.check(ctx, ActionUpdate, model); rejected {
		return d.finish(ctx, start, res, nil)
	}

	updated, err := d.service.Update(ctx, model)
	if err != nil {
		return d.fault(ctx, start, ActionUpdate, err, apperr.MsgUpdateFailed)
	}
	return d.finish(ctx, start, d.present(ActionUpdate, updated), nil)
}

// DeleteConfirm loads the entity to confirm deletion of, gated by the Delete toggle.
func (d *Dispatcher[T, PT, K]) DeleteConfirm(ctx context.Context, id K) (Result[T], error) {
	return d.read(ctx, ActionDelete, id)
}

// Delete removes the entity with the given id.
func (d *Dispatcher[T, PT, K]) Delete(ctx context.Context, id K) (Result[T], error) {
	start := time.Now()
	if !d.IsEnabled(ActionDelete) {
		return d.finish(ctx, start, notFound[T](ActionDelete), nil)
	}

	if err := d.service.Delete(ctx, id); err != nil {
		return d.fault(ctx, start, ActionDelete, err, apperr.MsgDeleteFailed)
	}
	return d.finish(ctx, start, ok[T](ActionDelete, nil), nil)
}

// CloneConfirm loads the entity to confirm cloning of, gated by the Clone toggle.
func (d *Dispatcher[T, PT, K]) CloneConfirm(ctx context.Context, id K) (Result[T], error) {
	return d.read(ctx, ActionClone, id)
}

// Clone reads the entity and creates a shallow copy of it under a fresh id.
// The create depends on the read, so the two calls run in sequence.
func (d *Dispatcher[T, PT, K]) Clone(ctx context.Context, id K) (Result[T], error) {
	start := time.Now()
	if !d.IsEnabled(ActionClone) {
		return d.finish(ctx, start, notFound[T](ActionClone), nil)
	}

	source, err := d.service.Read(ctx, id)
	if err != nil {
		return d.fault(ctx, start, ActionClone, err, apperr.MsgGetFailed)
	}
	if source == nil {
		return d.finish(ctx, start, notFound[T](ActionClone), nil)
	}

	duplicate := *source
	var zero K
	PT(&duplicate).SetID(zero)

	created, err := d.service.Create(ctx, &duplicate)
	if err != nil {
		return d.fault(ctx, start, ActionClone, err, apperr.MsgCloneFailed)
	}
	return d.finish(ctx, start, d.present(ActionClone, created), nil)
}

func (d *Dispatcher[T, PT, K]) read(ctx context.Context, a Action, id K) (Result[T], error) {
	start := time.Now()
	if !d.IsEnabled(a) {
		return d.finish(ctx, start, notFound[T](a), nil)
	}

	entity, err := d.service.Read(ctx, id)
	if err != nil {
		return d.fault(ctx, start, a, err, apperr.MsgGetFailed)
	}
	return d.finish(ctx, start, d.present(a, entity), nil)
}

// check runs validation; rejected is true when res must be returned as is.
func (d *Dispatcher[T, PT, K]) check(ctx context.Context, a Action, model *T) (res Result[T], rejected bool) {
	if model == nil {
		return invalid[T](a, nil, ErrEmptyModel), true
	}
	if d.validate == nil {
		return Result[T]{}, false
	}
	if err := d.validate(ctx, model); err != nil {
		return invalid(a, model, err), true
	}
	return Result[T]{}, false
}

func (d *Dispatcher[T, PT, K]) present(a Action, entity *T) Result[T] {
	if entity == nil {
		return notFound[T](a)
	}
	return ok(a, entity)
}

func (d *Dispatcher[T, PT, K]) fault(ctx context.Context, start time.Time, a Action, err error, msg string) (Result[T], error) {
	err = pkgerrors.WithMessagef(err, "%s %s", d.name, msg)
	return d.finish(ctx, start, Result[T]{Action: a, Outcome: OutcomeFault}, err)
}

func (d *Dispatcher[T, PT, K]) finish(ctx context.Context, start time.Time, res Result[T], err error) (Result[T], error) {
	e := Event{
		Resource: d.name,
		Action:   res.Action,
		Outcome:  res.Outcome,
		Fault:    err,
		Elapsed:  time.Since(start),
	}
	for _, o := range d.observers {
		o.Observe(ctx, e)
	}

	if err != nil {
		d.logger.Debug("dispatch fault", zap.Stringer("action", res.Action), zap.Error(err))
	} else {
		d.logger.Debug("dispatch",
			zap.Stringer("action", res.Action),
			zap.Stringer("outcome", res.Outcome),
			zap.Duration("elapsed", e.Elapsed),
		)
	}
	return res, err
}
