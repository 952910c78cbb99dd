package listing

import (
	"errors"

	"github.com/dinehub/admin-console/internal/pagination"
)

// Errors returned by the list controller.
var (
	ErrInvalidPage     = errors.New("page must be between 1 and the last page")
	ErrInvalidPageSize = errors.New("page size must be one of 10, 20, 50, 100")
	ErrSuperseded      = errors.New("a newer fetch superseded this one")
	ErrClosed          = errors.New("list controller is closed")
)

// Query is the state that drives a paginated fetch. The zero Filter means
// "All". Page goes back to 1 whenever Search, Filter or PageSize changes.
type Query[F comparable] struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	Filter   F      `json:"filter"`
}

// NewQuery returns the mount-time defaults.
func NewQuery[F comparable]() Query[F] {
	return Query[F]{Page: 1, PageSize: pagination.DefaultPageSize}
}

// sameSet reports whether q selects the same rows as o, ignoring the page.
func (q Query[F]) sameSet(o Query[F]) bool {
	return q.Search == o.Search && q.Filter == o.Filter && q.PageSize == o.PageSize
}

// Meta is the server's pagination block. TotalCount is nil when the server omitted it.
type Meta struct {
	TotalCount *int
	TotalPages int
	PageNumber int
	PageSize   int
}

// Page is one page of items as returned by a Fetcher.
type Page[T any] struct {
	Items []T
	Meta  *Meta
}

// Pagination is the normalized metadata kept in a Result.
type Pagination struct {
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
}

// normalize fills what the server left out. A missing total degrades to the
// number of items received, i.e. a single page.
func normalize[T any, F comparable](p Page[T], q Query[F]) Pagination {
	out := Pagination{
		TotalCount: len(p.Items),
		PageNumber: q.Page,
		PageSize:   q.PageSize,
	}
	if p.Meta != nil {
		if p.Meta.TotalCount != nil {
			out.TotalCount = *p.Meta.TotalCount
		}
		if p.Meta.PageNumber > 0 {
			out.PageNumber = p.Meta.PageNumber
		}
		if p.Meta.PageSize > 0 {
			out.PageSize = p.Meta.PageSize
		}
		out.TotalPages = p.Meta.TotalPages
	}
	if out.TotalPages <= 0 && out.TotalCount > 0 {
		size := out.PageSize
		if size <= 0 {
			size = pagination.DefaultPageSize
		}
		out.TotalPages = (out.TotalCount + size - 1) / size
	}
	if out.TotalCount == 0 {
		out.TotalPages = 0
	}
	return out
}
