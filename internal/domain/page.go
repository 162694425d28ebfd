package domain

import "math"

// DefaultPageSize is the number of posts shown per page on the front page.
const DefaultPageSize = 10

// PaginationParams carries page/limit values from the HTTP layer to the repo layer.
// Page is 1-indexed. Limit is capped at 100 by NewPaginationParams.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return.
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional HTTP query params.
// Nil pointers fall back to page=1 and the front-page size of 10.
// The limit is capped at 100 to prevent runaway queries.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultPageSize}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = *limit
		if p.Limit > 100 {
			p.Limit = 100
		}
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// OutOfRange reports whether Offset would overflow an int. No such page can
// hold any rows.
func (p PaginationParams) OutOfRange() bool {
	return p.Limit > 0 && p.Page-1 > math.MaxInt/p.Limit
}

// Page is one page of results plus the numbers a pager needs.
type Page[T any] struct {
	Items []T
	Page  int
	Limit int
	Total int64
}

// NumPages returns the number of pages needed for Total items; at least 1.
func (p Page[T]) NumPages() int {
	if p.Limit <= 0 || p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a following page exists.
func (p Page[T]) HasNext() bool { return p.Page < p.NumPages() }

// PrevPage returns the previous page number.
func (p Page[T]) PrevPage() int { return p.Page - 1 }

// NextPage returns the next page number.
func (p Page[T]) NextPage() int { return p.Page + 1 }
