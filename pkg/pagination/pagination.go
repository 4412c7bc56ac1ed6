package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params holds offset pagination parameters extracted from a request.
type Params struct {
	Limit  int
	Offset int
}

// FromContext extracts offset pagination parameters from the echo context.
func FromContext(c echo.Context) Params {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// Response wraps an offset-paginated API response.
type Response struct {
	Data    interface{} `json:"data"`
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
	HasMore bool        `json:"has_more"`
}

func NewResponse(data interface{}, total, limit, offset int) *Response {
	return &Response{
		Data:    data,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+limit < total,
	}
}

// Page is one fixed-size page cut from an in-memory list.
type Page[T any] struct {
	Items     []T `json:"items"`
	PageCount int `json:"page_count"`
}

// Paginate returns the page at index (zero-based) of size items.
// PageCount is ceil(len(items)/size) and zero for an empty list. An index
// outside [0, PageCount) or a non-positive size yields an empty page.
func Paginate[T any](items []T, size, index int) Page[T] {
	if size <= 0 {
		return Page[T]{Items: []T{}}
	}
	count := (len(items) + size - 1) / size
	if index < 0 || index >= count {
		return Page[T]{Items: []T{}, PageCount: count}
	}
	start := index * size
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	page := make([]T, end-start)
	copy(page, items[start:end])
	return Page[T]{Items: page, PageCount: count}
}

// PageIndexFromContext reads the zero-based "page" query parameter.
// Missing or malformed values read as the first page.
func PageIndexFromContext(c echo.Context) int {
	idx, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || idx < 0 {
		return 0
	}
	return idx
}
