package domain

import (
	"strconv"
	"strings"
)

const (
	defaultPageSize = 25
	maxPageSize     = 100
)

// Pagination describes a page request for principal listings.
type Pagination struct {
	Page     int
	PageSize int
	Search   string
	Offset   int
}

// ParsePagination reads raw query values. Missing or non-numeric values fall back to defaults
// and sizes are clamped to [1,100].
func ParsePagination(page, pageSize, search string) Pagination {
	p, err := strconv.Atoi(strings.TrimSpace(page))
	if err != nil || p < 1 {
		p = 1
	}
	size, err := strconv.Atoi(strings.TrimSpace(pageSize))
	if err != nil || size == 0 {
		size = defaultPageSize
	}
	if size < 1 {
		size = 1
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return Pagination{
		Page:     p,
		PageSize: size,
		Search:   strings.TrimSpace(search),
		Offset:   (p - 1) * size,
	}
}
