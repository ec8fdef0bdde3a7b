package listquery

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
)

// EntitySpec describes how one entity's listing maps onto SQL: the table and
// joins, the columns to select, which columns participate in text search,
// which column each filter key constrains, fixed conjuncts (e.g. soft-delete
// visibility), and a stable default order.
type EntitySpec struct {
	Table         string
	Columns       []string
	Joins         []string
	SearchColumns []string
	// TermPredicate optionally widens a single term's disjunction, e.g. to
	// match a numeric term against an ID column. Return nil to add nothing.
	TermPredicate func(term string) squirrel.Sqlizer
	FilterColumns map[string]string
	Fixed         []squirrel.Sqlizer
	DefaultOrder  string
}

// Build translates a Query into a row query and a count query sharing the
// same predicate conjunction. The row query applies the spec's default order
// and OFFSET (page-1)*perPage / LIMIT perPage; the count query applies
// neither. A filter key the spec does not know is ErrInvalidQuery.
func Build(q Query, spec EntitySpec) (squirrel.SelectBuilder, squirrel.SelectBuilder, error) {
	q = q.Normalize()

	where := make([]squirrel.Sqlizer, 0, len(spec.Fixed)+len(q.Filters)+1)
	where = append(where, spec.Fixed...)

	if pred := searchPredicate(q.Search, spec.SearchColumns, spec.TermPredicate); pred != nil {
		where = append(where, pred)
	}

	for key, value := range q.Filters {
		if value.IsAll() {
			continue
		}
		column, ok := spec.FilterColumns[key]
		if !ok {
			var zero squirrel.SelectBuilder
			return zero, zero, fmt.Errorf("%w: unknown filter %q", ErrInvalidQuery, key)
		}
		where = append(where, squirrel.Eq{column: value.IDs()})
	}

	sel := squirrel.Select(spec.Columns...).
		From(spec.Table).
		PlaceholderFormat(squirrel.Dollar)
	count := squirrel.Select("COUNT(*)").
		From(spec.Table).
		PlaceholderFormat(squirrel.Dollar)
	for _, join := range spec.Joins {
		sel = sel.LeftJoin(join)
		count = count.LeftJoin(join)
	}
	for _, cond := range where {
		sel = sel.Where(cond)
		count = count.Where(cond)
	}
	if spec.DefaultOrder != "" {
		sel = sel.OrderBy(spec.DefaultOrder)
	}
	sel = sel.
		Offset(uint64((q.Page - 1) * q.PerPage)).
		Limit(uint64(q.PerPage))

	return sel, count, nil
}

// searchPredicate implements the multi-word search rule: the input splits on
// whitespace and every term must match at least one search column with a
// case-insensitive substring match (AND of per-term ORs). Whitespace-only
// input yields nil, meaning no constraint.
func searchPredicate(search string, columns []string, extra func(term string) squirrel.Sqlizer) squirrel.Sqlizer {
	terms := strings.Fields(search)
	if len(terms) == 0 || len(columns) == 0 {
		return nil
	}
	conj := make(squirrel.And, 0, len(terms))
	for _, term := range terms {
		pattern := "%" + escapeLike(term) + "%"
		disj := make(squirrel.Or, 0, len(columns))
		for _, column := range columns {
			disj = append(disj, squirrel.ILike{column: pattern})
		}
		if extra != nil {
			if pred := extra(term); pred != nil {
				disj = append(disj, pred)
			}
		}
		conj = append(conj, disj)
	}
	return conj
}

func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}
