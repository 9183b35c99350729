package mongodb

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/huynhanx03/go-crud/pkg/dto"
)

// DefaultSortKey orders pages when the query names no sort.
const DefaultSortKey = "_id"

// ApplyQueryOptions builds MongoDB filter and options from QueryOptions.
// opts.Pagination is defaulted in place.
func ApplyQueryOptions(opts *dto.QueryOptions) (bson.M, *options.FindOptions) {
	if opts.Pagination == nil {
		opts.Pagination = &dto.PaginationOptions{}
	}
	opts.Pagination.SetDefaults()

	filter := BuildFilter(&opts.Filters)
	sort := BuildSort(&opts.Sort)

	limit := int64(opts.Pagination.PageSize)
	findOptions := options.Find().SetLimit(limit).SetSort(sort)

	if opts.Pagination.Cursor == nil || opts.Pagination.Cursor == "" {
		findOptions.SetSkip(int64((opts.Pagination.Page - 1) * opts.Pagination.PageSize))
		return filter, findOptions
	}

	var cursorVal any = opts.Pagination.Cursor
	if str, ok := opts.Pagination.Cursor.(string); ok {
		if oid, err := primitive.ObjectIDFromHex(str); err == nil {
			cursorVal = oid
		}
	}

	op := "$gt"
	if sort[0].Key == DefaultSortKey && sort[0].Value == -1 {
		op = "$lt"
	}
	cursorFilter := bson.M{"_id": bson.M{op: cursorVal}}

	if _, ok := filter["_id"]; ok {
		return bson.M{"$and": []bson.M{filter, cursorFilter}}, findOptions
	}
	for k, v := range cursorFilter {
		filter[k] = v
	}
	return filter, findOptions
}

// BuildFilter creates MongoDB filter from SearchFilter slice
func BuildFilter(filters *[]dto.SearchFilter) bson.M {
	filter := bson.M{}

	if filters == nil {
		return filter
	}

	for i := range *filters {
		f := &(*filters)[i]
		if f.Key == "" || f.Value == nil {
			continue
		}

		switch f.Type {
		case "search":
			if str, ok := f.Value.(string); ok && str != "" {
				filter[f.Key] = bson.M{"$regex": regexp.QuoteMeta(str), "$options": "i"}
			}
		case "filter":
			if str, ok := f.Value.(string); ok {
				if objectID, err := primitive.ObjectIDFromHex(str); err == nil {
					filter[f.Key] = bson.M{"$in": []primitive.ObjectID{objectID}}
					continue
				}
			}
			filter[f.Key] = f.Value
		default:
			filter[f.Key] = f.Value
		}
	}

	return filter
}

// BuildSort creates an ordered MongoDB sort from SortOption slice.
// It never returns an empty sort.
func BuildSort(sorts *[]dto.SortOption) bson.D {
	sort := bson.D{}

	if sorts != nil {
		for i := range *sorts {
			s := &(*sorts)[i]
			if s.Key == "" {
				continue
			}
			order := s.Order
			if order != 1 && order != -1 {
				order = 1
			}
			sort = append(sort, bson.E{Key: s.Key, Value: order})
		}
	}

	if len(sort) == 0 {
		sort = bson.D{{Key: DefaultSortKey, Value: 1}}
	}
	return sort
}
