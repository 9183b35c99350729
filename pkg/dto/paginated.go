package dto

// Pagination describes the page a Paginated result was cut from.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// Paginated is a page of records plus its pagination metadata.
type Paginated[T any] struct {
	Records    *[]T        `json:"records"`
	Pagination *Pagination `json:"pagination"`
}

// CalculatePagination derives page counts from the total number of items.
func CalculatePagination(page, pageSize int, totalItems int64) *Pagination {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if page < 1 {
		page = DefaultPage
	}

	totalPages := int((totalItems + int64(pageSize) - 1) / int64(pageSize))
	return &Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}
