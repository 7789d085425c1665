package models

// ListMeta is the shared pagination metadata attached to every list response.
type ListMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
}

// NewListMeta computes pagination metadata. TotalPages is ceil(total/perPage).
func NewListMeta(total int64, page, perPage int) ListMeta {
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	return ListMeta{
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}
}
