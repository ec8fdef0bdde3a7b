package listquery

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	cases := []struct {
		name       string
		page       int
		perPage    int
		total      int
		wantPages  int
		wantPage   int
		wantPer    int
	}{
		{name: "exact multiple", page: 1, perPage: 10, total: 30, wantPages: 3, wantPage: 1, wantPer: 10},
		{name: "partial last page", page: 2, perPage: 10, total: 31, wantPages: 4, wantPage: 2, wantPer: 10},
		{name: "empty", page: 1, perPage: 10, total: 0, wantPages: 0, wantPage: 1, wantPer: 10},
		{name: "single row", page: 1, perPage: 10, total: 1, wantPages: 1, wantPage: 1, wantPer: 10},
		{name: "defaults applied", page: 0, perPage: 0, total: 25, wantPages: 3, wantPage: 1, wantPer: 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPagination(tc.page, tc.perPage, tc.total)
			require.Equal(t, tc.wantPages, p.TotalPages)
			require.Equal(t, tc.wantPage, p.Page)
			require.Equal(t, tc.wantPer, p.PerPage)
			require.Equal(t, tc.total, p.TotalCount)
		})
	}
}

func TestPaginationNeighbours(t *testing.T) {
	p := NewPagination(2, 10, 31)
	require.True(t, p.HasPrev())
	require.True(t, p.HasNext())

	first := NewPagination(1, 10, 31)
	require.False(t, first.HasPrev())

	last := NewPagination(4, 10, 31)
	require.False(t, last.HasNext())
}

func TestQueryWithPage(t *testing.T) {
	q := NewQuery()
	q.Search = "widget"
	next := q.WithPage(q.Page + 1)
	require.Equal(t, 2, next.Page)
	require.Equal(t, 1, q.Page)
	require.Equal(t, "widget", next.Search)
}

func TestParseFilterValue(t *testing.T) {
	v, err := ParseFilterValue("3.7")
	require.NoError(t, err)
	require.Equal(t, []int64{3, 7}, v.IDs())
	require.False(t, v.IsAll())

	single, err := ParseFilterValue("42")
	require.NoError(t, err)
	require.Equal(t, []int64{42}, single.IDs())
	require.Equal(t, "42", single.Encode())

	all, err := ParseFilterValue("all")
	require.NoError(t, err)
	require.True(t, all.IsAll())
	require.Nil(t, all.IDs())

	empty, err := ParseFilterValue("")
	require.NoError(t, err)
	require.True(t, empty.IsAll())

	_, err = ParseFilterValue("3.x")
	require.ErrorIs(t, err, ErrInvalidQuery)

	_, err = ParseFilterValue("3,7")
	require.ErrorIs(t, err, ErrInvalidQuery)
}

func TestFilterValueEncodeRoundTrip(t *testing.T) {
	v := Multi(3, 7, 9)
	require.Equal(t, "3.7.9", v.Encode())

	parsed, err := ParseFilterValue(v.Encode())
	require.NoError(t, err)
	require.Equal(t, v.IDs(), parsed.IDs())
}
