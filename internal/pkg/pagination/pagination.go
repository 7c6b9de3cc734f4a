package pagination

import (
	"math"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination represents pagination metadata
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
	Offset     int   `json:"-"`
}

// Normalize clamps a 1-indexed page and a limit to the accepted range.
func Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// Offset returns the number of items to skip for a normalized page and limit.
func Offset(page, limit int) int {
	page, limit = Normalize(page, limit)
	return (page - 1) * limit
}

// New creates a new pagination instance
func New(page, limit int, total int64) Pagination {
	page, limit = Normalize(page, limit)

	pages := int(math.Ceil(float64(total) / float64(limit)))
	if pages < 1 {
		pages = 1
	}

	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: pages,
		HasNext:    page < pages,
		HasPrev:    page > 1,
		Offset:     (page - 1) * limit,
	}
}
