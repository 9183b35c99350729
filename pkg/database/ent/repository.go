package ent

import (
	"context"
	"database/sql"
	"reflect"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/huynhanx03/go-crud/pkg/constraints"
	"github.com/huynhanx03/go-crud/pkg/crud"
	"github.com/huynhanx03/go-crud/pkg/dto"
)

// Option configures a Repository.
type Option func(*config)

type config struct {
	table      string
	softDelete bool
}

// WithTable overrides the table name, which defaults to the snake_cased type name plus "s".
func WithTable(name string) Option {
	return func(c *config) { c.table = name }
}

// WithSoftDelete makes Delete stamp deleted_at instead of removing the row. Reads skip stamped rows.
func WithSoftDelete() Option {
	return func(c *config) { c.softDelete = true }
}

// Repository maps T onto one SQL table through Ent's dialect builders.
// Columns come from `sql` tags, then `json` tags, then lower-cased field names.
type Repository[T any, PT crud.Entity[T, K], K constraints.ID] struct {
	drv        *entsql.Driver
	meta       *tableMetadata
	softDelete bool
}

// NewRepository creates a repository and warms up reflection metadata.
func NewRepository[T any, PT crud.Entity[T, K], K constraints.ID](drv *entsql.Driver, opts ...Option) (*Repository[T, PT, K], error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	meta, err := newTableMetadata[T](cfg.table)
	if err != nil {
		return nil, err
	}
	return &Repository[T, PT, K]{drv: drv, meta: meta, softDelete: cfg.softDelete}, nil
}

// Table returns the mapped table name.
func (r *Repository[T, PT, K]) Table() string {
	return r.meta.Table
}

func (r *Repository[T, PT, K]) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.drv.Dialect())
}

func (r *Repository[T, PT, K]) exec(ctx context.Context, op string, q entsql.Querier) (int64, error) {
	query, args := q.Query()
	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, mapError(err, op, r.meta.Table)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, mapError(err, op, r.meta.Table)
	}
	return n, nil
}

func (r *Repository[T, PT, K]) query(ctx context.Context, selector *entsql.Selector) ([]*T, error) {
	query, args := selector.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, mapError(err, "select", r.meta.Table)
	}
	defer rows.Close()

	records := []*T{}
	if err := entsql.ScanSlice(rows, &records); err != nil {
		return nil, mapError(err, "scan", r.meta.Table)
	}
	return records, nil
}

func (r *Repository[T, PT, K]) count(ctx context.Context, selector *entsql.Selector) (int64, error) {
	query, args := selector.Count().Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return 0, mapError(err, "count", r.meta.Table)
	}
	defer rows.Close()

	n, err := entsql.ScanInt64(rows)
	if err != nil {
		return 0, mapError(err, "count", r.meta.Table)
	}
	return n, nil
}

func (r *Repository[T, PT, K]) selectAll() *entsql.Selector {
	b := r.builder()
	return b.Select(r.meta.Columns...).From(b.Table(r.meta.Table))
}

// Create inserts a new row.
func (r *Repository[T, PT, K]) Create(ctx context.Context, model *T) error {
	insert := r.builder().Insert(r.meta.Table).
		Columns(r.meta.Columns...).
		Values(r.meta.values(reflect.ValueOf(model).Elem())...)
	_, err := r.exec(ctx, "insert", insert)
	return err
}

// Update overwrites every mapped column of an existing row.
func (r *Repository[T, PT, K]) Update(ctx context.Context, model *T) error {
	id := PT(model).GetID()
	if len(r.meta.Fields) == 0 {
		return r.mustExist(ctx, id)
	}

	val := reflect.ValueOf(model).Elem()
	update := r.builder().Update(r.meta.Table)
	for _, f := range r.meta.Fields {
		update.Set(f.Column, val.Field(f.Index).Interface())
	}
	update.Where(r.alive(ctx, entsql.EQ(ColumnID, id)))

	n, err := r.exec(ctx, "update", update)
	if err != nil {
		return err
	}
	if n == 0 {
		return mapError(sql.ErrNoRows, "update", r.meta.Table)
	}
	return nil
}

func (r *Repository[T, PT, K]) mustExist(ctx context.Context, id K) error {
	ok, err := r.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return mapError(sql.ErrNoRows, "update", r.meta.Table)
	}
	return nil
}

// Delete removes a row by ID, or stamps it when soft delete is enabled.
func (r *Repository[T, PT, K]) Delete(ctx context.Context, id K) error {
	n, err := r.delete(ctx, entsql.EQ(ColumnID, id))
	if err != nil {
		return err
	}
	if n == 0 {
		return mapError(sql.ErrNoRows, "delete", r.meta.Table)
	}
	return nil
}

func (r *Repository[T, PT, K]) delete(ctx context.Context, p *entsql.Predicate) (int64, error) {
	if r.softDelete && !IsSkipSoftDelete(ctx) {
		update := r.builder().Update(r.meta.Table).
			Set(SoftDeleteAtColumnName, time.Now().UTC()).
			Where(r.alive(ctx, p))
		return r.exec(ctx, "soft delete", update)
	}
	return r.exec(ctx, "delete", r.builder().Delete(r.meta.Table).Where(p))
}

// Get retrieves a row by ID.
func (r *Repository[T, PT, K]) Get(ctx context.Context, id K) (*T, error) {
	records, err := r.query(ctx, r.selectAll().Where(r.alive(ctx, entsql.EQ(ColumnID, id))).Limit(1))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, mapError(sql.ErrNoRows, "get", r.meta.Table)
	}
	return records[0], nil
}

// Exists checks if a row exists by ID.
func (r *Repository[T, PT, K]) Exists(ctx context.Context, id K) (bool, error) {
	b := r.builder()
	n, err := r.count(ctx, b.Select().From(b.Table(r.meta.Table)).Where(r.alive(ctx, entsql.EQ(ColumnID, id))))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Find retrieves a paginated list of rows. Without a usable sort, rows are ordered by ID.
// Filter and sort keys may name a column or the Go field mapped to it.
func (r *Repository[T, PT, K]) Find(ctx context.Context, opts *dto.QueryOptions) (*dto.Paginated[*T], error) {
	if opts == nil {
		opts = &dto.QueryOptions{}
	}
	if opts.Pagination == nil {
		opts.Pagination = &dto.PaginationOptions{}
	}

	b := r.builder()
	countSelector := b.Select().From(b.Table(r.meta.Table))
	r.meta.where(opts.Filters, countSelector)
	r.narrow(ctx, countSelector)
	total, err := r.count(ctx, countSelector)
	if err != nil {
		return nil, err
	}

	selector := r.selectAll()
	r.meta.where(opts.Filters, selector)
	r.meta.orderBy(opts.Sort, selector)
	paginate(opts.Pagination, selector)
	r.narrow(ctx, selector)

	records, err := r.query(ctx, selector)
	if err != nil {
		return nil, err
	}

	return &dto.Paginated[*T]{
		Records:    &records,
		Pagination: dto.CalculatePagination(opts.Pagination.Page, opts.Pagination.PageSize, total),
	}, nil
}

func (r *Repository[T, PT, K]) narrow(ctx context.Context, selector *entsql.Selector) {
	if r.softDelete && !IsSkipSoftDelete(ctx) {
		selector.Where(entsql.IsNull(SoftDeleteAtColumnName))
	}
}

// BatchCreate inserts multiple rows in one statement.
func (r *Repository[T, PT, K]) BatchCreate(ctx context.Context, models []*T) error {
	if len(models) == 0 {
		return nil
	}

	insert := r.builder().Insert(r.meta.Table).Columns(r.meta.Columns...)
	for _, m := range models {
		insert.Values(r.meta.values(reflect.ValueOf(m).Elem())...)
	}
	_, err := r.exec(ctx, "bulk insert", insert)
	return err
}

// BatchDelete removes multiple rows by ID. Missing IDs are ignored.
func (r *Repository[T, PT, K]) BatchDelete(ctx context.Context, ids []K) error {
	if len(ids) == 0 {
		return nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := r.delete(ctx, entsql.In(ColumnID, args...))
	return err
}
