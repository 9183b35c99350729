package dto

const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 500
)

// SearchFilter is a single filter clause. Type is one of "search", "exact", "filter".
type SearchFilter struct {
	Key   string `json:"key" form:"key"`
	Value any    `json:"value" form:"value"`
	Type  string `json:"type" form:"type"`
}

// SortOption orders by Key; Order is 1 for ascending and -1 for descending.
type SortOption struct {
	Key   string `json:"key" form:"key"`
	Order int    `json:"order" form:"order"`
}

// PaginationOptions selects a page. Cursor, when set, takes precedence over Page.
type PaginationOptions struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
	Cursor   any `json:"cursor,omitempty" form:"cursor"`
}

// SetDefaults clamps page and page size into their valid ranges.
func (p *PaginationOptions) SetDefaults() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// QueryOptions bundles filters, sorting and pagination for repository Find calls.
type QueryOptions struct {
	Filters    []SearchFilter     `json:"filters"`
	Sort       []SortOption       `json:"sort"`
	Pagination *PaginationOptions `json:"pagination"`
}
