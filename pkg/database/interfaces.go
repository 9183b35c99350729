package database

import (
	"context"
	"errors"

	"github.com/huynhanx03/go-crud/pkg/dto"
)

var (
	// ErrNotFound is returned by repositories when the addressed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned by Create when a record with the same key is already stored.
	ErrDuplicateKey = errors.New("duplicate key")
)

// Repository defines the common interface for all repositories.
// Get, Update and Delete report a missing record as ErrNotFound.
type Repository[T any, ID any] interface {
	Create(ctx context.Context, model *T) error
	Update(ctx context.Context, model *T) error
	Delete(ctx context.Context, id ID) error
	Get(ctx context.Context, id ID) (*T, error)
	Find(ctx context.Context, opts *dto.QueryOptions) (*dto.Paginated[*T], error)

	Exists(ctx context.Context, id ID) (bool, error)

	BatchCreate(ctx context.Context, models []*T) error
	BatchDelete(ctx context.Context, ids []ID) error
}
