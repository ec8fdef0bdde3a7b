package listquery

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type row struct {
	ID   int64
	Name string
}

func testConfigs() []FilterConfig {
	return []FilterConfig{
		{Key: "category", Label: "Category", Options: []Option{{Value: "all", Label: "All Categories"}, {Value: "3", Label: "Hardware"}}},
		{Key: "status", Label: "Status", Options: []Option{{Value: "all", Label: "All Statuses"}, {Value: "1", Label: "In Stock"}}},
	}
}

func testParams() ParamMap {
	return DefaultParamMap().WithFilters(map[string]string{
		"category": "Category_ID",
		"status":   "Status_ID",
	})
}

func newTestController(fetch FetchFunc[row]) *Controller[row] {
	return NewController(ControllerConfig[row]{
		Filters: testConfigs(),
		Params:  testParams(),
		Fetch:   fetch,
		PerPage: 10,
	})
}

func staticFetch(rows []row, total int) FetchFunc[row] {
	return func(ctx context.Context, q Query) (Result[row], error) {
		return Result[row]{Rows: rows, Pagination: NewPagination(q.Page, q.PerPage, total)}, nil
	}
}

func TestControllerHydrate(t *testing.T) {
	c := newTestController(nil)
	c.Hydrate(Result[row]{
		Rows:       []row{{ID: 1, Name: "Widget"}},
		Pagination: NewPagination(2, 10, 31),
	})

	require.Len(t, c.Rows(), 1)
	require.Equal(t, 31, c.TotalCount())
	require.Equal(t, 2, c.Pagination().Page)
	require.Equal(t, 4, c.Pagination().TotalPages)
}

func TestControllerHydrateURL(t *testing.T) {
	c := newTestController(nil)
	values := url.Values{
		"page":        {"2"},
		"per_page":    {"10"},
		"Search_Term": {"widget"},
		"Category_ID": {"3"},
	}
	require.NoError(t, c.HydrateURL(values))

	require.True(t, c.HasActiveSearch())
	require.Equal(t, 1, c.ActiveFilterCount())
	require.Equal(t, values, c.URLValues())
}

func TestControllerStagedSearchDoesNotFetch(t *testing.T) {
	calls := 0
	c := newTestController(func(ctx context.Context, q Query) (Result[row], error) {
		calls++
		return Result[row]{}, nil
	})

	c.SetSearchText("wid")
	c.SetSearchText("widget")
	require.Zero(t, calls)
	require.False(t, c.HasActiveSearch())

	require.NoError(t, c.CommitSearch(context.Background()))
	require.Equal(t, 1, calls)
	require.True(t, c.HasActiveSearch())
}

func TestControllerFilterResetsPage(t *testing.T) {
	var got Query
	c := newTestController(func(ctx context.Context, q Query) (Result[row], error) {
		got = q
		return Result[row]{Pagination: NewPagination(q.Page, q.PerPage, 100)}, nil
	})
	ctx := context.Background()

	require.NoError(t, c.ChangePage(ctx, 4))
	require.Equal(t, 5, got.Page)

	require.NoError(t, c.SetFilter(ctx, "category", Single(3)))
	require.Equal(t, 1, got.Page)
	require.Equal(t, []int64{3}, got.Filter("category").IDs())

	require.NoError(t, c.ChangePage(ctx, 3))
	require.NoError(t, c.CommitSearch(ctx))
	require.Equal(t, 1, got.Page)

	require.NoError(t, c.ChangePage(ctx, 2))
	require.NoError(t, c.ClearAllFilters(ctx))
	require.Equal(t, 1, got.Page)
	require.True(t, got.Filter("category").IsAll())
}

func TestControllerRemoveFilterMatchesSentinel(t *testing.T) {
	c := newTestController(staticFetch(nil, 0))
	ctx := context.Background()

	require.NoError(t, c.SetFilter(ctx, "category", Single(3)))
	require.True(t, c.HasActiveFilters())

	require.NoError(t, c.RemoveFilter(ctx, "category"))
	require.False(t, c.HasActiveFilters())
	require.Empty(t, c.URLValues().Get("Category_ID"))
}

func TestControllerFetchFailureKeepsState(t *testing.T) {
	boom := errors.New("fetch failed")
	failing := false
	c := newTestController(func(ctx context.Context, q Query) (Result[row], error) {
		if failing {
			return Result[row]{}, boom
		}
		return Result[row]{Rows: []row{{ID: 1, Name: "Widget"}}, Pagination: NewPagination(q.Page, q.PerPage, 1)}, nil
	})
	ctx := context.Background()

	require.NoError(t, c.CommitSearch(ctx))
	require.Len(t, c.Rows(), 1)
	require.Equal(t, 1, c.TotalCount())

	failing = true
	require.ErrorIs(t, c.SetFilter(ctx, "status", Single(1)), boom)
	require.Len(t, c.Rows(), 1)
	require.Equal(t, 1, c.TotalCount())
	require.False(t, c.IsLoading())
}

// A response that settles after a newer request was issued must be dropped.
func TestControllerStaleResponseDiscarded(t *testing.T) {
	gateA := make(chan struct{})
	startedA := make(chan struct{})
	c := newTestController(func(ctx context.Context, q Query) (Result[row], error) {
		if ids := q.Filter("category").IDs(); len(ids) == 1 && ids[0] == 1 {
			close(startedA)
			<-gateA
			return Result[row]{Rows: []row{{Name: "stale"}}, Pagination: NewPagination(1, 10, 99)}, nil
		}
		return Result[row]{Rows: []row{{Name: "fresh"}}, Pagination: NewPagination(1, 10, 1)}, nil
	})
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = c.SetFilter(ctx, "category", Single(1))
	}()
	<-startedA

	// B issues after A and settles first.
	require.NoError(t, c.SetFilter(ctx, "category", Single(2)))
	require.Equal(t, "fresh", c.Rows()[0].Name)

	close(gateA)
	wg.Wait()

	require.Equal(t, "fresh", c.Rows()[0].Name)
	require.Equal(t, 1, c.TotalCount())
}

func TestControllerURLProjection(t *testing.T) {
	c := newTestController(staticFetch(nil, 0))
	ctx := context.Background()

	c.SetSearchText("widget")
	require.NoError(t, c.CommitSearch(ctx))
	require.NoError(t, c.SetFilter(ctx, "category", Single(3)))
	require.NoError(t, c.ChangePage(ctx, 1))

	require.Equal(t, url.Values{
		"page":        {"2"},
		"per_page":    {"10"},
		"Search_Term": {"widget"},
		"Category_ID": {"3"},
	}, c.URLValues())
}
