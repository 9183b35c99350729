package crud

import (
	"github.com/huynhanx03/go-crud/pkg/common/http/validation"
)

// Outcome classifies a dispatched action.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeNotFound
	OutcomeValidationFailed
	// OutcomeFault marks a result returned together with a service error.
	OutcomeFault
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeValidationFailed:
		return "validation_failed"
	case OutcomeFault:
		return "fault"
	default:
		return "unknown"
	}
}

// Result is the classified outcome of one dispatched action.
//
// Entity is set for single-entity successes and, on validation failure, holds the
// rejected model for redisplay. Entities is set by List. Err carries the validation
// error when Outcome is OutcomeValidationFailed. A result returned with a non-nil
// error has Outcome OutcomeFault, so none of OK, NotFound or Invalid report true.
type Result[T any] struct {
	Action   Action
	Outcome  Outcome
	Entity   *T
	Entities []*T
	Err      error
}

func (r Result[T]) OK() bool       { return r.Outcome == OutcomeOK }
func (r Result[T]) NotFound() bool { return r.Outcome == OutcomeNotFound }
func (r Result[T]) Invalid() bool  { return r.Outcome == OutcomeValidationFailed }
func (r Result[T]) Faulted() bool  { return r.Outcome == OutcomeFault }

// FieldErrors returns the per-field validation failures, if the validator produced any.
func (r Result[T]) FieldErrors() []validation.FieldError {
	if r.Err == nil {
		return nil
	}
	if fields := validation.FieldErrors(r.Err); fields != nil {
		return fields
	}
	return []validation.FieldError{{Field: "", Rule: r.Err.Error()}}
}

func ok[T any](a Action, entity *T) Result[T] {
	return Result[T]{Action: a, Outcome: OutcomeOK, Entity: entity}
}

func notFound[T any](a Action) Result[T] {
	return Result[T]{Action: a, Outcome: OutcomeNotFound}
}

func invalid[T any](a Action, model *T, err error) Result[T] {
	return Result[T]{Action: a, Outcome: OutcomeValidationFailed, Entity: model, Err: err}
}
