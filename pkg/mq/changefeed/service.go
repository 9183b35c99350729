package changefeed

import (
	"context"

	"github.com/huynhanx03/go-crud/pkg/constraints"
	"github.com/huynhanx03/go-crud/pkg/crud"
)

// Service emits an event for every successful write of the wrapped service.
// Reads pass through, and so do writes that found nothing.
type Service[T any, PT crud.Entity[T, K], K constraints.ID] struct {
	next     crud.Service[T, K]
	feed     *Feed
	resource string
}

// Wrap decorates next. Events carry resource as their resource name.
func Wrap[T any, PT crud.Entity[T, K], K constraints.ID](next crud.Service[T, K], feed *Feed, resource string) *Service[T, PT, K] {
	return &Service[T, PT, K]{next: next, feed: feed, resource: resource}
}

func (s *Service[T, PT, K]) Create(ctx context.Context, model *T) (*T, error) {
	created, err := s.next.Create(ctx, model)
	if err == nil && created != nil {
		s.feed.Emit(s.resource, OpCreate, constraints.FormatID(PT(created).GetID()), created)
	}
	return created, err
}

func (s *Service[T, PT, K]) Read(ctx context.Context, id K) (*T, error) {
	return s.next.Read(ctx, id)
}

func (s *Service[T, PT, K]) ReadAll(ctx context.Context) ([]*T, error) {
	return s.next.ReadAll(ctx)
}

func (s *Service[T, PT, K]) Update(ctx context.Context, model *T) (*T, error) {
	updated, err := s.next.Update(ctx, model)
	if err == nil && updated != nil {
		s.feed.Emit(s.resource, OpUpdate, constraints.FormatID(PT(updated).GetID()), updated)
	}
	return updated, err
}

func (s *Service[T, PT, K]) Delete(ctx context.Context, id K) error {
	if err := s.next.Delete(ctx, id); err != nil {
		return err
	}
	s.feed.Emit(s.resource, OpDelete, constraints.FormatID(id), nil)
	return nil
}
