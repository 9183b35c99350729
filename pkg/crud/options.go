package crud

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/huynhanx03/go-crud/pkg/common/http/validation"
)

// Variant selects the default behavior of a controller family.
//
// VariantBase keeps Clone disabled and sends a successful Create back to Index.
// VariantFull enables Clone and sends a successful Create to the new entity's Details.
type Variant int

const (
	VariantBase Variant = iota
	VariantFull
)

// CreateSuccessTarget is where a browser lands after a successful Create.
type CreateSuccessTarget int

const (
	TargetIndex CreateSuccessTarget = iota
	TargetDetailsOfNew
)

// ViewData carries auxiliary values (dropdown options and the like) into a form render.
type ViewData map[string]any

// PrepareFormFunc populates data before a create/edit form renders.
// model is nil for a blank create form.
type PrepareFormFunc[T any] func(ctx context.Context, model *T, data ViewData) error

// ValidateFunc returns a non-nil error when model must be rejected.
type ValidateFunc[T any] func(ctx context.Context, model *T) error

// Event describes one finished dispatch, for observers such as metrics collectors.
type Event struct {
	Resource string
	Action   Action
	Outcome  Outcome
	Fault    error
	Elapsed  time.Duration
}

// Observer is notified after every dispatch.
type Observer interface {
	Observe(ctx context.Context, e Event)
}

type config[T any] struct {
	variant   Variant
	target    *CreateSuccessTarget
	overrides map[Action]bool
	validate  ValidateFunc[T]
	prepare   PrepareFormFunc[T]
	observers []Observer
	logger    *zap.Logger
}

// Option configures a Dispatcher at construction.
type Option[T any] func(*config[T])

// WithVariant selects the default toggle set and Create redirect target.
func WithVariant[T any](v Variant) Option[T] {
	return func(c *config[T]) { c.variant = v }
}

// WithCreateSuccessTarget overrides the variant's Create redirect target.
func WithCreateSuccessTarget[T any](t CreateSuccessTarget) Option[T] {
	return func(c *config[T]) { c.target = &t }
}

// WithToggle forces an action on or off regardless of the variant default.
func WithToggle[T any](a Action, enabled bool) Option[T] {
	return func(c *config[T]) { c.overrides[a] = enabled }
}

// WithToggles applies several toggle overrides at once.
func WithToggles[T any](toggles map[Action]bool) Option[T] {
	return func(c *config[T]) {
		for a, on := range toggles {
			c.overrides[a] = on
		}
	}
}

// WithValidator replaces the default struct-tag validation.
func WithValidator[T any](fn ValidateFunc[T]) Option[T] {
	return func(c *config[T]) { c.validate = fn }
}

// WithPrepareForm installs the form-preparation hook.
func WithPrepareForm[T any](fn PrepareFormFunc[T]) Option[T] {
	return func(c *config[T]) { c.prepare = fn }
}

// WithObserver registers an observer for finished dispatches.
func WithObserver[T any](o Observer) Option[T] {
	return func(c *config[T]) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger[T any](l *zap.Logger) Option[T] {
	return func(c *config[T]) {
		if l != nil {
			c.logger = l
		}
	}
}

func defaultConfig[T any]() *config[T] {
	return &config[T]{
		variant:   VariantBase,
		overrides: make(map[Action]bool),
		validate: func(_ context.Context, model *T) error {
			return validation.Struct(model)
		},
		logger: zap.NewNop(),
	}
}

func (c *config[T]) toggles() [actionCount]bool {
	var t [actionCount]bool
	for _, a := range Actions() {
		t[a] = true
	}
	t[ActionClone] = c.variant == VariantFull

	for a, on := range c.overrides {
		if a >= 0 && a < actionCount {
			t[a] = on
		}
	}
	return t
}

func (c *config[T]) createTarget() CreateSuccessTarget {
	if c.target != nil {
		return *c.target
	}
	if c.variant == VariantFull {
		return TargetDetailsOfNew
	}
	return TargetIndex
}
