// Package memory is a process-local Repository on a sharded map.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/huynhanx03/go-crud/pkg/constraints"
	"github.com/huynhanx03/go-crud/pkg/crud"
	"github.com/huynhanx03/go-crud/pkg/database"
	"github.com/huynhanx03/go-crud/pkg/datastructs/shardedmap"
	"github.com/huynhanx03/go-crud/pkg/dto"
	"github.com/huynhanx03/go-crud/pkg/hash"
)

const defaultShards = 64

type entry[T any] struct {
	seq   uint64
	value T
}

// Repository stores copies of T keyed by their id. Records are listed in insertion order.
type Repository[T any, PT crud.Entity[T, K], K constraints.ID] struct {
	data *shardedmap.Map[K, entry[T]]
	seq  atomic.Uint64
}

// New creates an empty Repository with the given shard count (0 for the default).
func New[T any, PT crud.Entity[T, K], K constraints.ID](shards int) *Repository[T, PT, K] {
	if shards <= 0 {
		shards = defaultShards
	}
	return &Repository[T, PT, K]{data: shardedmap.New[K, entry[T]](shards, hash.Key[K])}
}

func (r *Repository[T, PT, K]) Create(_ context.Context, model *T) error {
	id := PT(model).GetID()
	if !r.data.SetIfAbsent(id, entry[T]{seq: r.seq.Add(1), value: *model}) {
		return fmt.Errorf("%w: %s", database.ErrDuplicateKey, constraints.FormatID(id))
	}
	return nil
}

func (r *Repository[T, PT, K]) Update(_ context.Context, model *T) error {
	_, ok := r.data.Replace(PT(model).GetID(), func(old entry[T]) entry[T] {
		return entry[T]{seq: old.seq, value: *model}
	})
	if !ok {
		return database.ErrNotFound
	}
	return nil
}

func (r *Repository[T, PT, K]) Delete(_ context.Context, id K) error {
	if _, ok := r.data.Pop(id); !ok {
		return database.ErrNotFound
	}
	return nil
}

func (r *Repository[T, PT, K]) Get(_ context.Context, id K) (*T, error) {
	e, ok := r.data.Get(id)
	if !ok {
		return nil, database.ErrNotFound
	}
	v := e.value
	return &v, nil
}

func (r *Repository[T, PT, K]) Exists(_ context.Context, id K) (bool, error) {
	_, ok := r.data.Get(id)
	return ok, nil
}

func (r *Repository[T, PT, K]) BatchCreate(ctx context.Context, models []*T) error {
	for _, m := range models {
		if err := r.Create(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository[T, PT, K]) BatchDelete(_ context.Context, ids []K) error {
	for _, id := range ids {
		r.data.Del(id)
	}
	return nil
}

// Find filters on exported fields matched by their json name (or Go name).
// "exact" and "filter" compare formatted values, "search" is a case-insensitive substring match.
// Sorting supports one key; records otherwise keep insertion order.
func (r *Repository[T, PT, K]) Find(_ context.Context, opts *dto.QueryOptions) (*dto.Paginated[*T], error) {
	if opts == nil {
		opts = &dto.QueryOptions{}
	}
	page := dto.PaginationOptions{}
	if opts.Pagination != nil {
		page = *opts.Pagination
	}
	page.SetDefaults()

	var all []entry[T]
	r.data.Do(func(_ K, e entry[T]) {
		if matches(&e.value, opts.Filters) {
			all = append(all, e)
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].seq < all[j].seq })
	if len(opts.Sort) > 0 {
		sortBy(all, opts.Sort[0])
	}

	total := int64(len(all))
	start := (page.Page - 1) * page.PageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + page.PageSize
	if end > len(all) {
		end = len(all)
	}

	records := make([]*T, 0, end-start)
	for _, e := range all[start:end] {
		v := e.value
		records = append(records, &v)
	}

	return &dto.Paginated[*T]{
		Records:    &records,
		Pagination: dto.CalculatePagination(page.Page, page.PageSize, total),
	}, nil
}

// Len returns the number of stored records.
func (r *Repository[T, PT, K]) Len() int {
	return r.data.Len()
}

func matches[T any](model *T, filters []dto.SearchFilter) bool {
	for _, f := range filters {
		field, ok := fieldByName(reflect.ValueOf(model).Elem(), f.Key)
		if !ok {
			return false
		}
		got, want := fmt.Sprint(field.Interface()), fmt.Sprint(f.Value)
		switch f.Type {
		case "search":
			if !strings.Contains(strings.ToLower(got), strings.ToLower(want)) {
				return false
			}
		default:
			if got != want {
				return false
			}
		}
	}
	return true
}

func sortBy[T any](all []entry[T], opt dto.SortOption) {
	sort.SliceStable(all, func(i, j int) bool {
		a, okA := fieldByName(reflect.ValueOf(&all[i].value).Elem(), opt.Key)
		b, okB := fieldByName(reflect.ValueOf(&all[j].value).Elem(), opt.Key)
		if !okA || !okB {
			return false
		}
		if opt.Order < 0 {
			return compare(a, b) > 0
		}
		return compare(a, b) < 0
	})
}

func compare(a, b reflect.Value) int {
	switch a.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(a.Int(), b.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return cmp.Compare(a.Uint(), b.Uint())
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(a.Float(), b.Float())
	case reflect.String:
		return strings.Compare(a.String(), b.String())
	default:
		return strings.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
	}
}

func fieldByName(v reflect.Value, name string) (reflect.Value, bool) {
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == name || strings.EqualFold(f.Name, name) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}
