package listquery

import (
	"fmt"
	"strconv"
	"strings"
)

// Sentinel value meaning "no constraint applied".
const SentinelAll = "all"

// idSeparator joins multi-select IDs in URL values (Category_ID=3.7).
const idSeparator = "."

type filterKind int

const (
	kindAll filterKind = iota
	kindSingle
	kindMulti
)

// FilterValue is a categorical filter constraint, decoded once at the URL
// boundary so downstream code never re-parses strings. It is either the
// "all" sentinel, a single ID, or a set of IDs.
type FilterValue struct {
	kind filterKind
	ids  []int64
}

// All returns the unconstrained value.
func All() FilterValue {
	return FilterValue{kind: kindAll}
}

// Single constrains to one ID.
func Single(id int64) FilterValue {
	return FilterValue{kind: kindSingle, ids: []int64{id}}
}

// Multi constrains to a set of IDs.
func Multi(ids ...int64) FilterValue {
	if len(ids) == 0 {
		return All()
	}
	if len(ids) == 1 {
		return Single(ids[0])
	}
	out := make([]int64, len(ids))
	copy(out, ids)
	return FilterValue{kind: kindMulti, ids: out}
}

// IsAll reports whether the value applies no constraint.
func (v FilterValue) IsAll() bool {
	return v.kind == kindAll
}

// IDs returns the constrained ID set; nil for the sentinel.
func (v FilterValue) IDs() []int64 {
	if v.kind == kindAll {
		return nil
	}
	out := make([]int64, len(v.ids))
	copy(out, v.ids)
	return out
}

// Encode renders the value in URL form: "all", "3", or "3.7.9".
func (v FilterValue) Encode() string {
	if v.kind == kindAll {
		return SentinelAll
	}
	parts := make([]string, len(v.ids))
	for i, id := range v.ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, idSeparator)
}

func (v FilterValue) String() string {
	return v.Encode()
}

// ParseFilterValue decodes a URL filter value. The empty string and "all"
// both mean unconstrained; anything else must be a dot-joined list of
// base-10 integer IDs.
func ParseFilterValue(raw string) (FilterValue, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == SentinelAll {
		return All(), nil
	}
	parts := strings.Split(raw, idSeparator)
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return All(), fmt.Errorf("%w: filter value %q", ErrInvalidQuery, raw)
		}
		ids = append(ids, id)
	}
	return Multi(ids...), nil
}
