package crud

import (
	"context"

	"github.com/huynhanx03/go-crud/pkg/constraints"
)

// Identifiable is implemented by entities that expose a mutable key.
type Identifiable[K constraints.ID] interface {
	GetID() K
	SetID(K)
}

// Entity binds a struct type T to its pointer, which must be Identifiable.
type Entity[T any, K constraints.ID] interface {
	*T
	Identifiable[K]
}

// Service is the persistence contract consumed by the Dispatcher.
// Read and Update report a missing entity as (nil, nil), never as an error.
type Service[T any, K constraints.ID] interface {
	Create(ctx context.Context, model *T) (*T, error)
	Read(ctx context.Context, id K) (*T, error)
	ReadAll(ctx context.Context) ([]*T, error)
	Update(ctx context.Context, model *T) (*T, error)
	Delete(ctx context.Context, id K) error
}
