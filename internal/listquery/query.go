// Package listquery implements the filtered, paginated list-query mechanism
// shared by every table screen: the query/result contract, the URL codec,
// the SQL builder, and the per-table state controller.
package listquery

import (
	"errors"
	"math"
)

// ErrInvalidQuery indicates malformed list parameters. The query is never
// executed when this is returned; callers surface it as a parameter error.
var ErrInvalidQuery = errors.New("listquery: invalid query parameters")

const (
	// DefaultPage is the first page number.
	DefaultPage = 1
	// DefaultPerPage is the page size used when none is supplied.
	DefaultPerPage = 10
)

// defaultPerPage may be raised or lowered at startup via SetDefaultPerPage.
var defaultPerPage = DefaultPerPage

// SetDefaultPerPage overrides the page size applied when a query names none.
// Call once during startup, before requests are served.
func SetDefaultPerPage(n int) {
	if n > 0 {
		defaultPerPage = n
	}
}

// Query is the validated request for one page of a filtered listing.
// Constructed per request, never persisted.
type Query struct {
	Page    int
	PerPage int
	Search  string
	Filters map[string]FilterValue
}

// NewQuery returns a Query with defaults applied and an empty filter set.
func NewQuery() Query {
	return Query{Page: DefaultPage, PerPage: defaultPerPage, Filters: map[string]FilterValue{}}
}

// Normalize clamps page and per-page to their minimums.
func (q Query) Normalize() Query {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.PerPage < 1 {
		q.PerPage = defaultPerPage
	}
	if q.Filters == nil {
		q.Filters = map[string]FilterValue{}
	}
	return q
}

// Filter returns the value for a key, defaulting to the "all" sentinel.
func (q Query) Filter(key string) FilterValue {
	if q.Filters == nil {
		return All()
	}
	if v, ok := q.Filters[key]; ok {
		return v
	}
	return All()
}

// WithPage returns a copy of the query pointed at another page.
func (q Query) WithPage(page int) Query {
	q.Page = page
	return q
}

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	PerPage    int
	TotalCount int
	TotalPages int
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if page <= 0 {
		page = DefaultPage
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, TotalCount: total, TotalPages: totalPages}
}

// HasPrev reports whether an earlier page exists.
func (p Pagination) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a later page exists.
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

// Result is one page of rows plus pagination metadata. Rows beyond the last
// page come back empty, not as an error.
type Result[T any] struct {
	Rows       []T
	Pagination Pagination
}

// Option is one selectable value of a filter dimension.
type Option struct {
	Value string
	Label string
}

// FilterConfig describes one filterable dimension of a table. The first
// option is conventionally the "all" sentinel. Param is the URL parameter
// carrying the value, used as the form field name.
type FilterConfig struct {
	Key     string
	Param   string
	Label   string
	Options []Option
}
