package shared

import (
	"math"
	"net/http"
	"strconv"
)

// DefaultPageSize bounds list endpoints when the client sends no limit.
const DefaultPageSize = 20

// MaxPageSize caps the per-page limit a client may request.
const MaxPageSize = 100

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page  int
	Limit int
	Total int
	Pages int
}

// NewPagination computes pagination metadata.
func NewPagination(page, limit, total int) Pagination {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if page <= 0 {
		page = 1
	}
	pages := int(math.Ceil(float64(total) / float64(limit)))
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// Offset returns the SQL offset for the page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PageFromRequest parses page/limit query parameters with defaults.
func PageFromRequest(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}
