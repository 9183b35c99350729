package view

import (
	"context"

	"github.com/huynhanx03/go-crud/pkg/common/http/validation"
	"github.com/huynhanx03/go-crud/pkg/constraints"
	"github.com/huynhanx03/go-crud/pkg/crud"
)

// Kind is what the browser receives.
type Kind int

const (
	KindRender Kind = iota
	KindRedirect
	KindNotFound
)

// Target names a redirect destination.
type Target int

const (
	TargetIndex Target = iota
	TargetDetails
)

// Step identifies the browser request being answered.
type Step int

const (
	StepIndex Step = iota
	StepDetails
	StepCreateForm
	StepCreate
	StepEditForm
	StepEdit
	StepDeleteConfirm
	StepDelete
	StepCloneConfirm
	StepClone
)

var stepViews = map[Step]string{
	StepIndex:         "index",
	StepDetails:       "details",
	StepCreateForm:    "create",
	StepCreate:        "create",
	StepEditForm:      "edit",
	StepEdit:          "edit",
	StepDeleteConfirm: "delete",
	StepCloneConfirm:  "clone",
}

// Outcome is a page-level decision: render View with Model, redirect to Target, or 404.
type Outcome struct {
	Kind   Kind
	View   string
	Model  any
	Data   crud.ViewData
	Errors []validation.FieldError
	Target Target
	ID     string
}

// decide maps a dispatch result onto an Outcome.
// The form-preparation hook runs before every form render, including invalid re-renders.
func decide[T any, PT crud.Entity[T, K], K constraints.ID](
	ctx context.Context, d *crud.Dispatcher[T, PT, K], step Step, res crud.Result[T],
) (Outcome, error) {
	if res.NotFound() {
		return Outcome{Kind: KindNotFound}, nil
	}

	if res.Invalid() {
		model := res.Entity
		if model == nil {
			model = new(T)
		}
		data, err := d.PrepareForm(ctx, model)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{
			Kind:   KindRender,
			View:   stepViews[step],
			Model:  model,
			Data:   data,
			Errors: res.FieldErrors(),
		}, nil
	}

	switch step {
	case StepIndex:
		return Outcome{Kind: KindRender, View: stepViews[step], Model: res.Entities}, nil

	case StepCreateForm:
		data, err := d.PrepareForm(ctx, nil)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: KindRender, View: stepViews[step], Model: new(T), Data: data}, nil

	case StepEditForm:
		data, err := d.PrepareForm(ctx, res.Entity)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Kind: KindRender, View: stepViews[step], Model: res.Entity, Data: data}, nil

	case StepCreate:
		if d.CreateSuccessTarget() == crud.TargetIndex {
			return Outcome{Kind: KindRedirect, Target: TargetIndex}, nil
		}
		return details[T, PT, K](res.Entity), nil

	case StepEdit, StepClone:
		return details[T, PT, K](res.Entity), nil

	case StepDelete:
		return Outcome{Kind: KindRedirect, Target: TargetIndex}, nil

	default:
		return Outcome{Kind: KindRender, View: stepViews[step], Model: res.Entity}, nil
	}
}

func details[T any, PT crud.Entity[T, K], K constraints.ID](entity *T) Outcome {
	return Outcome{
		Kind:   KindRedirect,
		Target: TargetDetails,
		ID:     constraints.FormatID(PT(entity).GetID()),
	}
}
