package mongodb

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/huynhanx03/go-crud/pkg/constraints"
	"github.com/huynhanx03/go-crud/pkg/crud"
	"github.com/huynhanx03/go-crud/pkg/database"
	"github.com/huynhanx03/go-crud/pkg/dto"
)

// Repository stores T documents in one collection. The entity key is mapped to _id,
// so T must tag its key field with `bson:"_id"`.
type Repository[T any, PT crud.Entity[T, K], K constraints.ID] struct {
	col *mongo.Collection
}

// NewRepository binds a Repository to col.
func NewRepository[T any, PT crud.Entity[T, K], K constraints.ID](col *mongo.Collection) *Repository[T, PT, K] {
	return &Repository[T, PT, K]{col: col}
}

// Collection returns the underlying collection (escape hatch).
func (r *Repository[T, PT, K]) Collection() *mongo.Collection {
	return r.col
}

func byID[K constraints.ID](id K) bson.M {
	return bson.M{"_id": id}
}

func (r *Repository[T, PT, K]) Create(ctx context.Context, model *T) error {
	if _, err := r.col.InsertOne(ctx, model); err != nil {
		return writeError(err, "insert")
	}
	return nil
}

func (r *Repository[T, PT, K]) Update(ctx context.Context, model *T) error {
	res, err := r.col.ReplaceOne(ctx, byID(PT(model).GetID()), model)
	if err != nil {
		return writeError(err, "replace")
	}
	if res.MatchedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (r *Repository[T, PT, K]) Delete(ctx context.Context, id K) error {
	res, err := r.col.DeleteOne(ctx, byID(id))
	if err != nil {
		return pkgerrors.Wrap(err, "mongodb: delete")
	}
	if res.DeletedCount == 0 {
		return database.ErrNotFound
	}
	return nil
}

func (r *Repository[T, PT, K]) Get(ctx context.Context, id K) (*T, error) {
	var model T
	err := r.col.FindOne(ctx, byID(id)).Decode(&model)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "mongodb: find one")
	}
	return &model, nil
}

func (r *Repository[T, PT, K]) Exists(ctx context.Context, id K) (bool, error) {
	n, err := r.col.CountDocuments(ctx, byID(id), options.Count().SetLimit(1))
	if err != nil {
		return false, pkgerrors.Wrap(err, "mongodb: count")
	}
	return n > 0, nil
}

// Find counts the matching documents, then reads one page of them.
func (r *Repository[T, PT, K]) Find(ctx context.Context, opts *dto.QueryOptions) (*dto.Paginated[*T], error) {
	if opts == nil {
		opts = &dto.QueryOptions{}
	}
	filter, findOpts := ApplyQueryOptions(opts)

	total, err := r.col.CountDocuments(ctx, BuildFilter(&opts.Filters))
	if err != nil {
		return nil, pkgerrors.Wrap(err, "mongodb: count")
	}

	cursor, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "mongodb: find")
	}
	records := make([]*T, 0, int(*findOpts.Limit))
	if err := cursor.All(ctx, &records); err != nil {
		return nil, pkgerrors.Wrap(err, "mongodb: decode")
	}

	return &dto.Paginated[*T]{
		Records:    &records,
		Pagination: dto.CalculatePagination(opts.Pagination.Page, opts.Pagination.PageSize, total),
	}, nil
}

func (r *Repository[T, PT, K]) BatchCreate(ctx context.Context, models []*T) error {
	if len(models) == 0 {
		return nil
	}
	docs := make([]any, len(models))
	for i, m := range models {
		docs[i] = m
	}
	if _, err := r.col.InsertMany(ctx, docs); err != nil {
		return writeError(err, "insert many")
	}
	return nil
}

func (r *Repository[T, PT, K]) BatchDelete(ctx context.Context, ids []K) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return pkgerrors.Wrap(err, "mongodb: delete many")
	}
	return nil
}

func writeError(err error, op string) error {
	if mongo.IsDuplicateKeyError(err) {
		return pkgerrors.WithMessage(database.ErrDuplicateKey, err.Error())
	}
	return pkgerrors.Wrapf(err, "mongodb: %s", op)
}
