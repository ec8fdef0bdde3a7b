package listquery

import (
	"context"
	"net/url"
	"sync"
)

// FetchFunc loads one page of rows for the given query.
type FetchFunc[T any] func(ctx context.Context, q Query) (Result[T], error)

// ControllerConfig groups dependencies for a Controller.
type ControllerConfig[T any] struct {
	Filters []FilterConfig
	Params  ParamMap
	Fetch   FetchFunc[T]
	PerPage int
}

// Controller owns the interactive query state of one table: staged and
// committed search text, per-key filter values, page index, and the current
// page of rows. Every committing operation recomputes the URL projection and
// refreshes rows through the injected FetchFunc. State is guarded by a mutex
// so concurrent refreshes cannot interleave partial updates; a monotonic
// request sequence discards responses superseded by a newer request.
type Controller[T any] struct {
	mu      sync.Mutex
	configs []FilterConfig
	params  ParamMap
	fetch   FetchFunc[T]

	searchText string
	committed  string
	filters    map[string]FilterValue
	pageIndex  int
	perPage    int

	rows       []T
	totalCount int
	loading    int

	issued  uint64
	applied uint64
}

// NewController builds a Controller with every configured filter at the
// "all" sentinel.
func NewController[T any](cfg ControllerConfig[T]) *Controller[T] {
	perPage := cfg.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	filters := make(map[string]FilterValue, len(cfg.Filters))
	for _, fc := range cfg.Filters {
		filters[fc.Key] = All()
	}
	return &Controller[T]{
		configs: cfg.Filters,
		params:  cfg.Params,
		fetch:   cfg.Fetch,
		filters: filters,
		perPage: perPage,
	}
}

// Hydrate seeds rows and totals from server-rendered initial data.
func (c *Controller[T]) Hydrate(initial Result[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = initial.Rows
	c.totalCount = initial.Pagination.TotalCount
	if initial.Pagination.Page >= 1 {
		c.pageIndex = initial.Pagination.Page - 1
	}
	if initial.Pagination.PerPage >= 1 {
		c.perPage = initial.Pagination.PerPage
	}
}

// HydrateURL restores search, filters, and pagination from URL parameters.
// URL values take precedence over defaults; unknown filter keys in the URL
// are ignored, matching ParseQuery's configured-keys-only contract.
func (c *Controller[T]) HydrateURL(values url.Values) error {
	q, err := ParseQuery(values, c.paramMap())
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchText = q.Search
	c.committed = q.Search
	for key := range c.filters {
		c.filters[key] = q.Filter(key)
	}
	c.pageIndex = q.Page - 1
	c.perPage = q.PerPage
	return nil
}

// SetSearchText stages search input without committing, fetching, or
// touching the URL.
func (c *Controller[T]) SetSearchText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchText = text
}

// CommitSearch commits the staged search text, resets to the first page,
// and refreshes.
func (c *Controller[T]) CommitSearch(ctx context.Context) error {
	c.mu.Lock()
	c.committed = c.searchText
	c.pageIndex = 0
	q, seq := c.snapshotLocked()
	c.mu.Unlock()
	return c.refresh(ctx, q, seq)
}

// SetFilter updates one filter, resets to the first page, and refreshes.
func (c *Controller[T]) SetFilter(ctx context.Context, key string, value FilterValue) error {
	c.mu.Lock()
	c.filters[key] = value
	c.pageIndex = 0
	q, seq := c.snapshotLocked()
	c.mu.Unlock()
	return c.refresh(ctx, q, seq)
}

// RemoveFilter resets one filter to the "all" sentinel.
func (c *Controller[T]) RemoveFilter(ctx context.Context, key string) error {
	return c.SetFilter(ctx, key, All())
}

// ClearSearch drops both staged and committed search text, resets to the
// first page, and refreshes.
func (c *Controller[T]) ClearSearch(ctx context.Context) error {
	c.mu.Lock()
	c.searchText = ""
	c.committed = ""
	c.pageIndex = 0
	q, seq := c.snapshotLocked()
	c.mu.Unlock()
	return c.refresh(ctx, q, seq)
}

// ClearAllFilters resets every configured filter, resets to the first page,
// and refreshes.
func (c *Controller[T]) ClearAllFilters(ctx context.Context) error {
	c.mu.Lock()
	for key := range c.filters {
		c.filters[key] = All()
	}
	c.pageIndex = 0
	q, seq := c.snapshotLocked()
	c.mu.Unlock()
	return c.refresh(ctx, q, seq)
}

// ChangePage moves to a zero-based page index and refreshes. Out-of-range
// indices are the caller's responsibility; navigation controls disable moves
// beyond the known page range.
func (c *Controller[T]) ChangePage(ctx context.Context, pageIndex int) error {
	c.mu.Lock()
	c.pageIndex = pageIndex
	q, seq := c.snapshotLocked()
	c.mu.Unlock()
	return c.refresh(ctx, q, seq)
}

// Query returns the committed query state.
func (c *Controller[T]) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, _ := c.queryLocked()
	return q
}

// URLValues projects the committed state onto URL parameters.
func (c *Controller[T]) URLValues() url.Values {
	return c.Query().Values(c.paramMap())
}

// Rows returns the current page of rows.
func (c *Controller[T]) Rows() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rows
}

// TotalCount returns the match count across all pages.
func (c *Controller[T]) TotalCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalCount
}

// Pagination returns the current pagination metadata.
func (c *Controller[T]) Pagination() Pagination {
	c.mu.Lock()
	defer c.mu.Unlock()
	return NewPagination(c.pageIndex+1, c.perPage, c.totalCount)
}

// IsLoading reports whether a refresh is in flight.
func (c *Controller[T]) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading > 0
}

// SearchText returns the staged, uncommitted search input.
func (c *Controller[T]) SearchText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchText
}

// HasActiveSearch reports whether a non-empty search is committed.
func (c *Controller[T]) HasActiveSearch() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.committed != ""
}

// HasActiveFilters reports whether any filter is constrained.
func (c *Controller[T]) HasActiveFilters() bool {
	return c.ActiveFilterCount() > 0
}

// ActiveFilterCount counts filters not at the "all" sentinel.
func (c *Controller[T]) ActiveFilterCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, value := range c.filters {
		if !value.IsAll() {
			n++
		}
	}
	return n
}

func (c *Controller[T]) paramMap() ParamMap {
	params := c.params
	if params.Page == "" {
		params = DefaultParamMap().WithFilters(params.Filters)
	}
	if params.Filters == nil {
		filters := make(map[string]string, len(c.configs))
		for _, fc := range c.configs {
			filters[fc.Key] = fc.Key
		}
		params.Filters = filters
	}
	return params
}

func (c *Controller[T]) queryLocked() (Query, uint64) {
	filters := make(map[string]FilterValue, len(c.filters))
	for key, value := range c.filters {
		filters[key] = value
	}
	q := Query{
		Page:    c.pageIndex + 1,
		PerPage: c.perPage,
		Search:  c.committed,
		Filters: filters,
	}
	return q.Normalize(), c.issued
}

func (c *Controller[T]) snapshotLocked() (Query, uint64) {
	c.issued++
	q, _ := c.queryLocked()
	return q, c.issued
}

// refresh runs the fetch outside the lock and applies the result only when
// no newer request has been issued since: last-issued-wins, stale responses
// are dropped. A failed fetch leaves the previous rows and total untouched.
func (c *Controller[T]) refresh(ctx context.Context, q Query, seq uint64) error {
	if c.fetch == nil {
		return nil
	}
	c.mu.Lock()
	c.loading++
	c.mu.Unlock()

	result, err := c.fetch(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading--
	if err != nil {
		return err
	}
	if seq < c.issued || seq <= c.applied {
		return nil
	}
	c.applied = seq
	c.rows = result.Rows
	c.totalCount = result.Pagination.TotalCount
	return nil
}
