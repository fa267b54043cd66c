package table

import (
	"sort"
	"strings"
	"time"
)

// SortKey names a column to order by and the direction.
type SortKey struct {
	Column string
	Desc   bool
}

// Sort returns a new table with rows stably ordered by the given keys.
// Nulls sort after every non-null value regardless of direction. Keys
// naming absent columns are ignored.
func (t *Table) Sort(keys ...SortKey) *Table {
	cols := make([]*Column, 0, len(keys))
	desc := make([]bool, 0, len(keys))
	for _, k := range keys {
		if c, ok := t.Column(k.Column); ok {
			cols = append(cols, c)
			desc = append(desc, k.Desc)
		}
	}

	rows := make([]int, t.NumRows())
	for i := range rows {
		rows[i] = i
	}
	sort.SliceStable(rows, func(a, b int) bool {
		for i, c := range cols {
			va, vb := c.values[rows[a]], c.values[rows[b]]

			// nulls lose to any value in both directions
			if va == nil || vb == nil {
				if va == nil && vb == nil {
					continue
				}
				return vb == nil
			}

			cmp := compareCells(va, vb)
			if cmp == 0 {
				continue
			}
			if desc[i] {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return t.takeRows(rows)
}

// compareCells orders two non-null cells: numerics numerically, timestamps
// chronologically, everything else lexicographically. Callers handle nulls;
// the nil branches here only keep a stray null from panicking.
func compareCells(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return 1
	}
	if b == nil {
		return -1
	}

	if fa, ok := AsFloat(a); ok {
		if fb, ok := AsFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}

	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			switch {
			case ta.Before(tb):
				return -1
			case ta.After(tb):
				return 1
			default:
				return 0
			}
		}
	}

	sa, _ := AsString(a)
	sb, _ := AsString(b)
	return strings.Compare(sa, sb)
}
