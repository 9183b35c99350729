package mongodb

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/huynhanx03/go-crud/pkg/dto"
	"github.com/huynhanx03/go-crud/pkg/settings"
)

// =============================================================================
// Query translation
// =============================================================================

func TestBuildFilter(t *testing.T) {
	oid := primitive.NewObjectID()

	tests := []struct {
		name    string
		filters []dto.SearchFilter
		want    bson.M
	}{
		{"nil_value_skipped", []dto.SearchFilter{{Key: "name", Value: nil}}, bson.M{}},
		{"exact", []dto.SearchFilter{{Key: "name", Value: "x", Type: "exact"}}, bson.M{"name": "x"}},
		{"search_is_quoted_regex", []dto.SearchFilter{{Key: "name", Value: "a.b", Type: "search"}},
			bson.M{"name": bson.M{"$regex": `a\.b`, "$options": "i"}}},
		{"filter_object_id", []dto.SearchFilter{{Key: "owner", Value: oid.Hex(), Type: "filter"}},
			bson.M{"owner": bson.M{"$in": []primitive.ObjectID{oid}}}},
		{"filter_plain_string", []dto.SearchFilter{{Key: "color", Value: "red", Type: "filter"}},
			bson.M{"color": "red"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildFilter(&tt.filters)
			if fmtM(got) != fmtM(tt.want) {
				t.Errorf("BuildFilter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildSort(t *testing.T) {
	if got := BuildSort(nil); len(got) != 1 || got[0].Key != DefaultSortKey || got[0].Value != 1 {
		t.Errorf("default sort = %v", got)
	}

	sorts := []dto.SortOption{{Key: "name", Order: -1}, {Key: ""}, {Key: "value", Order: 7}}
	got := BuildSort(&sorts)
	want := bson.D{{Key: "name", Value: -1}, {Key: "value", Value: 1}}
	if fmtM(got) != fmtM(want) {
		t.Errorf("BuildSort() = %v, want %v", got, want)
	}
}

func TestApplyQueryOptions(t *testing.T) {
	opts := &dto.QueryOptions{Pagination: &dto.PaginationOptions{Page: 3, PageSize: 10}}
	_, find := ApplyQueryOptions(opts)
	if *find.Skip != 20 || *find.Limit != 10 {
		t.Errorf("skip/limit = %d/%d", *find.Skip, *find.Limit)
	}

	opts = &dto.QueryOptions{
		Sort:       []dto.SortOption{{Key: "_id", Order: -1}},
		Pagination: &dto.PaginationOptions{Cursor: "k"},
	}
	filter, find := ApplyQueryOptions(opts)
	if find.Skip != nil {
		t.Error("cursor paging must not skip")
	}
	if fmtM(filter) != fmtM(bson.M{"_id": bson.M{"$lt": "k"}}) {
		t.Errorf("cursor filter = %v", filter)
	}
}

func TestURI(t *testing.T) {
	tests := []struct {
		name string
		cfg  settings.MongoDB
		want string
	}{
		{"default_port", settings.MongoDB{Host: "db"}, "mongodb://db:27017"},
		{"credentials", settings.MongoDB{Host: "db", Port: 1, Username: "u", Password: "p@ss"}, "mongodb://u:p%40ss@db:1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := URI(&tt.cfg); got != tt.want {
				t.Errorf("URI() = %q, want %q", got, tt.want)
			}
		})
	}
}

func fmtM(v any) string {
	b, _ := bson.MarshalExtJSON(bson.M{"v": v}, false, false)
	return string(b)
}
