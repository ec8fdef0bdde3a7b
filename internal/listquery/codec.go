package listquery

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ParamMap maps logical query fields to URL parameter names. The filter map
// goes from filter key (e.g. "category") to its URL param (e.g. "Category_ID").
type ParamMap struct {
	Page    string
	PerPage string
	Search  string
	Filters map[string]string
}

// DefaultParamMap returns the conventional parameter names.
func DefaultParamMap() ParamMap {
	return ParamMap{Page: "page", PerPage: "per_page", Search: "Search_Term"}
}

// WithFilters returns a copy of the map with filter key mappings attached.
func (m ParamMap) WithFilters(filters map[string]string) ParamMap {
	m.Filters = filters
	return m
}

func (m ParamMap) filterParam(key string) string {
	if name, ok := m.Filters[key]; ok {
		return name
	}
	return key
}

// ParseQuery decodes URL values into a Query. Numeric parameters that fail
// to parse and filter values that are not "all" or dot-joined integers
// produce ErrInvalidQuery; the query must not be executed in that case.
func ParseQuery(values url.Values, m ParamMap) (Query, error) {
	q := NewQuery()

	if raw := values.Get(m.Page); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return Query{}, fmt.Errorf("%w: page %q", ErrInvalidQuery, raw)
		}
		q.Page = page
	}
	if raw := values.Get(m.PerPage); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err != nil {
			return Query{}, fmt.Errorf("%w: per_page %q", ErrInvalidQuery, raw)
		}
		q.PerPage = perPage
	}
	q.Search = strings.TrimSpace(values.Get(m.Search))

	for key := range m.Filters {
		value, err := ParseFilterValue(values.Get(m.filterParam(key)))
		if err != nil {
			return Query{}, err
		}
		q.Filters[key] = value
	}

	return q.Normalize(), nil
}

// Values renders the query as URL parameters. Empty search and sentinel
// filter values are omitted entirely so absent and unconstrained states
// stay indistinguishable in shared URLs.
func (q Query) Values(m ParamMap) url.Values {
	q = q.Normalize()
	values := url.Values{}
	values.Set(m.Page, strconv.Itoa(q.Page))
	values.Set(m.PerPage, strconv.Itoa(q.PerPage))
	if q.Search != "" {
		values.Set(m.Search, q.Search)
	}
	for key, value := range q.Filters {
		if value.IsAll() {
			continue
		}
		values.Set(m.filterParam(key), value.Encode())
	}
	return values
}
