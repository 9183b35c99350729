package elasticsearch

import (
	"github.com/huynhanx03/go-crud/pkg/dto"
)

// clause is a single leaf query such as {"term": {"field": value}}.
type clause map[string]map[string]any

type boolQuery struct {
	Must   []clause `json:"must,omitempty"`
	Filter []clause `json:"filter,omitempty"`
}

func (b boolQuery) empty() bool { return len(b.Must) == 0 && len(b.Filter) == 0 }

type sortOrder struct {
	Order string `json:"order"`
}

// searchBody is the _search request document. Exactly one of From and SearchAfter is set.
type searchBody struct {
	Query       map[string]any         `json:"query"`
	Sort        []map[string]sortOrder `json:"sort,omitempty"`
	Size        int                    `json:"size"`
	From        *int                   `json:"from,omitempty"`
	SearchAfter []any                  `json:"search_after,omitempty"`
}

// leaf maps filter types to the query kind and the bool section it belongs to.
var leaf = map[string]struct {
	kind    string
	scoring bool
}{
	"search":   {"match", true},
	"match":    {"match", true},
	"phrase":   {"match_phrase", true},
	"":         {"term", false},
	"exact":    {"term", false},
	"filter":   {"term", false},
	"term":     {"term", false},
	"wildcard": {"wildcard", false},
}

// newSearchBody builds the request for one page. opts.Pagination must already be defaulted.
func newSearchBody(opts *dto.QueryOptions) searchBody {
	body := searchBody{
		Query: map[string]any{"match_all": map[string]any{}},
		Sort:  sortOf(opts.Sort),
	}
	if q := boolOf(opts.Filters); !q.empty() {
		body.Query = map[string]any{"bool": q}
	}

	p := opts.Pagination
	body.Size = p.PageSize
	switch cursor := p.Cursor.(type) {
	case nil:
	case []any:
		body.SearchAfter = cursor
	case string:
		if cursor != "" {
			body.SearchAfter = []any{cursor}
		}
	default:
		body.SearchAfter = []any{cursor}
	}
	if body.SearchAfter == nil {
		from := (p.Page - 1) * p.PageSize
		body.From = &from
	}
	return body
}

// boolOf groups filters into scoring (must) and non-scoring (filter) clauses.
// Unknown types and blank keys are dropped.
func boolOf(filters []dto.SearchFilter) boolQuery {
	var q boolQuery
	for _, f := range filters {
		l, ok := leaf[f.Type]
		if !ok || f.Key == "" || f.Value == nil {
			continue
		}
		c := clause{l.kind: {f.Key: f.Value}}
		if l.scoring {
			q.Must = append(q.Must, c)
		} else {
			q.Filter = append(q.Filter, c)
		}
	}
	return q
}

func sortOf(sorts []dto.SortOption) []map[string]sortOrder {
	var out []map[string]sortOrder
	for _, s := range sorts {
		if s.Key == "" {
			continue
		}
		order := "asc"
		if s.Order == -1 {
			order = "desc"
		}
		out = append(out, map[string]sortOrder{s.Key: {Order: order}})
	}
	return out
}
