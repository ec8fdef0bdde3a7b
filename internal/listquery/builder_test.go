package listquery

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/require"
)

func itemsSpec() EntitySpec {
	return EntitySpec{
		Table:         "items",
		Columns:       []string{"items.id", "items.name", "items.sku"},
		SearchColumns: []string{"items.name", "items.sku"},
		FilterColumns: map[string]string{
			"category": "items.category_id",
			"status":   "items.status_id",
		},
		Fixed:        []squirrel.Sqlizer{squirrel.Eq{"items.is_active": true}},
		DefaultOrder: "items.name ASC",
	}
}

func TestBuildPagination(t *testing.T) {
	q := NewQuery()
	q.Page = 3
	q.PerPage = 25

	sel, count, err := Build(q, itemsSpec())
	require.NoError(t, err)

	sql, args, err := sel.ToSql()
	require.NoError(t, err)
	require.Contains(t, sql, "ORDER BY items.name ASC")
	require.Contains(t, sql, "LIMIT 25")
	require.Contains(t, sql, "OFFSET 50")
	require.Equal(t, []interface{}{true}, args)

	countSQL, countArgs, err := count.ToSql()
	require.NoError(t, err)
	require.Contains(t, countSQL, "COUNT(*)")
	require.NotContains(t, countSQL, "LIMIT")
	require.NotContains(t, countSQL, "OFFSET")
	require.Equal(t, args, countArgs)
}

// Multi-word search: every term must match at least one search column.
func TestBuildSearchAndOfOrs(t *testing.T) {
	q := NewQuery()
	q.Search = "blue gadget"

	sel, _, err := Build(q, itemsSpec())
	require.NoError(t, err)

	sql, args, err := sel.ToSql()
	require.NoError(t, err)
	require.Contains(t, sql, "(items.name ILIKE $2 OR items.sku ILIKE $3) AND (items.name ILIKE $4 OR items.sku ILIKE $5)")
	require.Contains(t, args, "%blue%")
	require.Contains(t, args, "%gadget%")
}

func TestBuildWhitespaceSearchIgnored(t *testing.T) {
	q := NewQuery()
	q.Search = "   "

	sel, _, err := Build(q, itemsSpec())
	require.NoError(t, err)

	sql, _, err := sel.ToSql()
	require.NoError(t, err)
	require.NotContains(t, sql, "ILIKE")
}

func TestBuildMultiValueFilter(t *testing.T) {
	q := NewQuery()
	q.Filters["category"] = Multi(3, 7)

	sel, _, err := Build(q, itemsSpec())
	require.NoError(t, err)

	sql, args, err := sel.ToSql()
	require.NoError(t, err)
	require.Contains(t, sql, "items.category_id IN ($2,$3)")
	require.Contains(t, args, int64(3))
	require.Contains(t, args, int64(7))
}

func TestBuildSentinelFilterSkipped(t *testing.T) {
	q := NewQuery()
	q.Filters["category"] = All()

	sel, _, err := Build(q, itemsSpec())
	require.NoError(t, err)

	sql, _, err := sel.ToSql()
	require.NoError(t, err)
	require.NotContains(t, sql, "category_id")
}

func TestBuildUnknownFilterRejected(t *testing.T) {
	q := NewQuery()
	q.Filters["warehouse"] = Single(1)

	_, _, err := Build(q, itemsSpec())
	require.ErrorIs(t, err, ErrInvalidQuery)
}

// A term predicate widens the per-term disjunction without touching the
// AND-of-ORs structure.
func TestBuildTermPredicateJoinsDisjunction(t *testing.T) {
	spec := itemsSpec()
	spec.TermPredicate = func(term string) squirrel.Sqlizer {
		if term != "42" {
			return nil
		}
		return squirrel.Eq{"items.id": int64(42)}
	}

	q := NewQuery()
	q.Search = "blue 42"

	sel, _, err := Build(q, spec)
	require.NoError(t, err)

	sql, args, err := sel.ToSql()
	require.NoError(t, err)
	require.Contains(t, sql, "(items.name ILIKE $2 OR items.sku ILIKE $3) AND (items.name ILIKE $4 OR items.sku ILIKE $5 OR items.id = $6)")
	require.Contains(t, args, int64(42))
}

func TestBuildEscapesLikeMetacharacters(t *testing.T) {
	q := NewQuery()
	q.Search = "50%_off"

	sel, _, err := Build(q, itemsSpec())
	require.NoError(t, err)

	_, args, err := sel.ToSql()
	require.NoError(t, err)
	require.Contains(t, args, `%50\%\_off%`)
}
