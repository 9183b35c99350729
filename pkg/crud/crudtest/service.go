// Package crudtest provides an in-memory Service that counts its calls.
package crudtest

import (
	"context"
	"sync"

	"github.com/huynhanx03/go-crud/pkg/constraints"
	"github.com/huynhanx03/go-crud/pkg/crud"
)

// Calls counts invocations per Service method.
type Calls struct {
	Create, Read, ReadAll, Update, Delete int
}

// Total is the number of service calls of any kind.
func (c Calls) Total() int {
	return c.Create + c.Read + c.ReadAll + c.Update + c.Delete
}

// Service stores entities in a map and hands out sequential ids through NextID.
// Setting Fault makes every method fail with it.
type Service[T any, PT crud.Entity[T, K], K constraints.ID] struct {
	mu     sync.Mutex
	items  map[K]T
	order  []K
	calls  Calls
	NextID func() K
	Fault  error
}

// New creates an empty Service.
func New[T any, PT crud.Entity[T, K], K constraints.ID](nextID func() K) *Service[T, PT, K] {
	return &Service[T, PT, K]{items: make(map[K]T), NextID: nextID}
}

// Seq returns an id generator counting up from 1.
func Seq() func() int64 {
	var n int64
	return func() int64 {
		n++
		return n
	}
}

// Calls returns a snapshot of the call counters.
func (s *Service[T, PT, K]) Calls() Calls {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Put stores model as is, bypassing the counters.
func (s *Service[T, PT, K]) Put(model T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(model)
}

func (s *Service[T, PT, K]) put(model T) {
	id := PT(&model).GetID()
	if _, ok := s.items[id]; !ok {
		s.order = append(s.order, id)
	}
	s.items[id] = model
}

func (s *Service[T, PT, K]) Create(_ context.Context, model *T) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.Create++
	if s.Fault != nil {
		return nil, s.Fault
	}

	stored := *model
	PT(&stored).SetID(s.NextID())
	s.put(stored)
	return &stored, nil
}

func (s *Service[T, PT, K]) Read(_ context.Context, id K) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.Read++
	if s.Fault != nil {
		return nil, s.Fault
	}

	item, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (s *Service[T, PT, K]) ReadAll(_ context.Context) ([]*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.ReadAll++
	if s.Fault != nil {
		return nil, s.Fault
	}

	out := make([]*T, 0, len(s.order))
	for _, id := range s.order {
		item := s.items[id]
		out = append(out, &item)
	}
	return out, nil
}

func (s *Service[T, PT, K]) Update(_ context.Context, model *T) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.Update++
	if s.Fault != nil {
		return nil, s.Fault
	}

	id := PT(model).GetID()
	if _, ok := s.items[id]; !ok {
		return nil, nil
	}
	s.items[id] = *model
	stored := *model
	return &stored, nil
}

func (s *Service[T, PT, K]) Delete(_ context.Context, id K) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls.Delete++
	if s.Fault != nil {
		return s.Fault
	}

	if _, ok := s.items[id]; ok {
		delete(s.items, id)
		for i, k := range s.order {
			if k == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	return nil
}

// Widget is a small entity for exercising controllers.
type Widget struct {
	ID    int64  `json:"id" form:"id"`
	Name  string `json:"name" form:"name" validate:"required"`
	Color string `json:"color" form:"color" validate:"omitempty,oneof=red green blue"`
}

func (w *Widget) GetID() int64   { return w.ID }
func (w *Widget) SetID(id int64) { w.ID = id }

// NewWidgets returns a widget Service with sequential ids.
func NewWidgets() *Service[Widget, *Widget, int64] {
	return New[Widget, *Widget](Seq())
}
