package ent

import (
	entsql "entgo.io/ent/dialect/sql"

	"github.com/huynhanx03/go-crud/pkg/dto"
)

// Filter types understood by Find.
const (
	SearchTypeSearch = "search"
	SearchTypeExact  = "exact"
	SearchTypeFilter = "filter"
)

// where appends one predicate per filter. Keys that name no mapped column are skipped,
// so caller input never reaches the statement as an identifier.
func (m *tableMetadata) where(filters []dto.SearchFilter, sel *entsql.Selector) {
	for _, f := range filters {
		col, ok := m.column(f.Key)
		if !ok || f.Value == nil {
			continue
		}
		if f.Type == SearchTypeSearch {
			if s, isStr := f.Value.(string); isStr && s != "" {
				sel.Where(entsql.ContainsFold(col, s))
			}
			continue
		}
		sel.Where(entsql.EQ(col, f.Value))
	}
}

// orderBy applies sorts in order and falls back to the key column.
func (m *tableMetadata) orderBy(sorts []dto.SortOption, sel *entsql.Selector) {
	sorted := false
	for _, s := range sorts {
		col, ok := m.column(s.Key)
		if !ok {
			continue
		}
		if s.Order == -1 {
			sel.OrderBy(entsql.Desc(col))
		} else {
			sel.OrderBy(entsql.Asc(col))
		}
		sorted = true
	}
	if !sorted {
		sel.OrderBy(entsql.Asc(ColumnID))
	}
}

func paginate(p *dto.PaginationOptions, sel *entsql.Selector) {
	p.SetDefaults()
	sel.Limit(p.PageSize).Offset((p.Page - 1) * p.PageSize)
}
