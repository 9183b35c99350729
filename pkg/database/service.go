package database

import (
	"context"
	"errors"

	"github.com/huynhanx03/go-crud/pkg/constraints"
	"github.com/huynhanx03/go-crud/pkg/crud"
	"github.com/huynhanx03/go-crud/pkg/dto"
)

// Service adapts a Repository to crud.Service: absence becomes (nil, nil) and
// new entities get their key from NewID when they arrive without one.
type Service[T any, PT crud.Entity[T, K], K constraints.ID] struct {
	repo  Repository[T, K]
	newID func() K
}

// AsService wraps repo. newID may be nil when the backend assigns keys itself.
func AsService[T any, PT crud.Entity[T, K], K constraints.ID](repo Repository[T, K], newID func() K) *Service[T, PT, K] {
	return &Service[T, PT, K]{repo: repo, newID: newID}
}

func (s *Service[T, PT, K]) Create(ctx context.Context, model *T) (*T, error) {
	if s.newID != nil && constraints.IsZero(PT(model).GetID()) {
		PT(model).SetID(s.newID())
	}
	if err := s.repo.Create(ctx, model); err != nil {
		return nil, err
	}
	return model, nil
}

func (s *Service[T, PT, K]) Read(ctx context.Context, id K) (*T, error) {
	model, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return model, err
}

// ReadAll walks every page of Find.
func (s *Service[T, PT, K]) ReadAll(ctx context.Context) ([]*T, error) {
	opts := &dto.QueryOptions{Pagination: &dto.PaginationOptions{Page: 1, PageSize: dto.MaxPageSize}}

	var out []*T
	for {
		page, err := s.repo.Find(ctx, opts)
		if err != nil {
			return nil, err
		}
		if page.Records != nil {
			out = append(out, *page.Records...)
		}
		if page.Pagination == nil || !page.Pagination.HasNext {
			break
		}
		opts.Pagination.Page++
	}

	if out == nil {
		out = []*T{}
	}
	return out, nil
}

func (s *Service[T, PT, K]) Update(ctx context.Context, model *T) (*T, error) {
	err := s.repo.Update(ctx, model)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return model, nil
}

// Delete treats a missing record as already deleted.
func (s *Service[T, PT, K]) Delete(ctx context.Context, id K) error {
	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}
