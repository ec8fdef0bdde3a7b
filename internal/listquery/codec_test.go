package listquery

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func itemsParamMap() ParamMap {
	return DefaultParamMap().WithFilters(map[string]string{
		"category": "Category_ID",
		"location": "Location_ID",
		"status":   "Status_ID",
	})
}

func TestParseQueryDefaults(t *testing.T) {
	q, err := ParseQuery(url.Values{}, itemsParamMap())
	require.NoError(t, err)
	require.Equal(t, 1, q.Page)
	require.Equal(t, DefaultPerPage, q.PerPage)
	require.Empty(t, q.Search)
	for _, key := range []string{"category", "location", "status"} {
		require.True(t, q.Filter(key).IsAll())
	}
}

func TestParseQueryFromURL(t *testing.T) {
	values := url.Values{
		"page":        {"2"},
		"per_page":    {"25"},
		"Search_Term": {"blue widget"},
		"Category_ID": {"3.7"},
	}
	q, err := ParseQuery(values, itemsParamMap())
	require.NoError(t, err)
	require.Equal(t, 2, q.Page)
	require.Equal(t, 25, q.PerPage)
	require.Equal(t, "blue widget", q.Search)
	require.Equal(t, []int64{3, 7}, q.Filter("category").IDs())
	require.True(t, q.Filter("location").IsAll())
}

func TestParseQueryInvalid(t *testing.T) {
	_, err := ParseQuery(url.Values{"page": {"two"}}, itemsParamMap())
	require.ErrorIs(t, err, ErrInvalidQuery)

	_, err = ParseQuery(url.Values{"per_page": {"ten"}}, itemsParamMap())
	require.ErrorIs(t, err, ErrInvalidQuery)

	_, err = ParseQuery(url.Values{"Category_ID": {"3.x"}}, itemsParamMap())
	require.ErrorIs(t, err, ErrInvalidQuery)
}

func TestParseQueryClampsNonPositive(t *testing.T) {
	q, err := ParseQuery(url.Values{"page": {"-4"}, "per_page": {"0"}}, itemsParamMap())
	require.NoError(t, err)
	require.Equal(t, 1, q.Page)
	require.Equal(t, DefaultPerPage, q.PerPage)
}

// The synced URL carries exactly page, per_page, the search key, and each
// active filter; sentinel and empty values are deleted rather than written.
func TestValuesEmitsExactKeys(t *testing.T) {
	q := NewQuery()
	q.Page = 2
	q.PerPage = 10
	q.Search = "widget"
	q.Filters["category"] = Single(3)
	q.Filters["location"] = All()

	values := q.Values(itemsParamMap())
	require.Equal(t, url.Values{
		"page":        {"2"},
		"per_page":    {"10"},
		"Search_Term": {"widget"},
		"Category_ID": {"3"},
	}, values)
}

func TestURLRoundTrip(t *testing.T) {
	q := NewQuery()
	q.Page = 3
	q.PerPage = 25
	q.Search = "blue widget"
	q.Filters["category"] = Multi(3, 7)
	q.Filters["status"] = Single(1)
	q.Filters["location"] = All()

	m := itemsParamMap()
	parsed, err := ParseQuery(q.Values(m), m)
	require.NoError(t, err)
	require.Equal(t, q.Page, parsed.Page)
	require.Equal(t, q.PerPage, parsed.PerPage)
	require.Equal(t, q.Search, parsed.Search)
	require.Equal(t, q.Filter("category").IDs(), parsed.Filter("category").IDs())
	require.Equal(t, q.Filter("status").IDs(), parsed.Filter("status").IDs())
	require.True(t, parsed.Filter("location").IsAll())
}

// Setting a filter to "all" must be indistinguishable from never setting it.
func TestSentinelAbsentFromURL(t *testing.T) {
	q := NewQuery()
	q.Filters["category"] = All()
	values := q.Values(itemsParamMap())
	require.Empty(t, values.Get("Category_ID"))

	never := NewQuery()
	require.Equal(t, never.Values(itemsParamMap()), values)
}
