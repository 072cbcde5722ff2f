// Package dataset holds the browse and filter operations of the data explorer.
package dataset

import (
	"sort"

	"github.com/samber/lo"

	"agriinsight/internal/domain"
)

// Filter selects rows by state and commodity. An empty list matches everything.
type Filter struct {
	States []string
	Crops  []string
}

// Empty reports whether the filter matches every row.
func (f Filter) Empty() bool { return len(f.States) == 0 && len(f.Crops) == 0 }

// Apply keeps the rows matching f. Values compare exactly. The returned
// table shares rows with t.
func Apply(t domain.Table, f Filter) domain.Table {
	if f.Empty() {
		return t
	}
	states := toSet(f.States)
	crops := toSet(f.Crops)
	rows := lo.Filter(t.Rows, func(rec domain.Record, _ int) bool {
		return (len(states) == 0 || contains(states, rec, "state")) &&
			(len(crops) == 0 || contains(crops, rec, "commodity"))
	})
	return domain.Table{Columns: t.Columns, Rows: rows}
}

// Distinct returns the sorted non-missing values of column.
func Distinct(t domain.Table, column string) []string {
	out := lo.Uniq(lo.FilterMap(t.Rows, func(rec domain.Record, _ int) (string, bool) {
		return rec.Get(column)
	}))
	sort.Strings(out)
	return out
}

// Head returns at most n leading rows.
func Head(t domain.Table, n int) domain.Table {
	if n < 0 || n >= len(t.Rows) {
		return t
	}
	return domain.Table{Columns: t.Columns, Rows: t.Rows[:n]}
}

func toSet(values []string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

func contains(set map[string]struct{}, rec domain.Record, column string) bool {
	v, ok := rec.Get(column)
	if !ok {
		return false
	}
	_, hit := set[v]
	return hit
}
