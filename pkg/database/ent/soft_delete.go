package ent

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"
)

type softDeleteKey struct{}

// SkipSoftDelete returns a new context in which a soft-deleting repository
// sees deleted rows and deletes physically.
func SkipSoftDelete(parent context.Context) context.Context {
	return context.WithValue(parent, softDeleteKey{}, true)
}

// IsSkipSoftDelete checks if soft delete should be skipped.
func IsSkipSoftDelete(ctx context.Context) bool {
	skip, _ := ctx.Value(softDeleteKey{}).(bool)
	return skip
}

// alive narrows p to rows that were not soft deleted.
func (r *Repository[T, PT, K]) alive(ctx context.Context, p *entsql.Predicate) *entsql.Predicate {
	if !r.softDelete || IsSkipSoftDelete(ctx) {
		return p
	}
	return entsql.And(p, entsql.IsNull(SoftDeleteAtColumnName))
}
