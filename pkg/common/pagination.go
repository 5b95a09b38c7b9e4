package common

import (
	"net/http"
	"strconv"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// PageRequest describes a requested page of a listing
type PageRequest struct {
	Page     int
	PageSize int
}

// ParsePageRequest extracts pagination parameters from the request query,
// applying defaults and clamping the page size.
func ParsePageRequest(r *http.Request) PageRequest {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	return PageRequest{Page: page, PageSize: size}
}

// Offset returns the zero-based offset of the first item on the page
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// NewPaginationInfo builds pagination metadata for a listing response
func NewPaginationInfo(req PageRequest, total int) *PaginationInfo {
	totalPages := total / req.PageSize
	if total%req.PageSize != 0 {
		totalPages++
	}
	if totalPages == 0 {
		totalPages = 1
	}

	return &PaginationInfo{
		Page:       req.Page,
		PageSize:   req.PageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    req.Page < totalPages,
		HasPrev:    req.Page > 1,
	}
}
