// Package table provides the in-memory tabular dataset the pipeline stages
// exchange: an ordered, named collection of typed, nullable columns aligned
// by row index, plus the relational verbs the transformation core needs
// (filter, sort, head, left join, group-by). Tables are value types between
// stages; every transformation returns a new table and never mutates its
// input.
package table

import (
	"github.com/commercepipe/commercepipe/pkg/etlerrors"
)

// Table is an ordered collection of equally long columns.
type Table struct {
	name  string
	cols  []*Column
	index map[string]int
}

// New creates an empty table with the given name.
func New(name string) *Table {
	return &Table{name: name, index: make(map[string]int)}
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// NumRows returns the row count; an empty table has zero rows.
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Len()
}

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.cols) }

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.name
	}
	return names
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// ColumnAt returns the column at position i.
func (t *Table) ColumnAt(i int) *Column { return t.cols[i] }

// Value returns the cell at (row, column), or nil when the column is
// absent or the cell is null.
func (t *Table) Value(row int, column string) interface{} {
	c, ok := t.Column(column)
	if !ok {
		return nil
	}
	return c.Value(row)
}

// AddColumn appends a column. It fails when the name already exists or the
// length disagrees with the table's row count.
func (t *Table) AddColumn(name string, typ ColumnType, values []interface{}) error {
	if _, exists := t.index[name]; exists {
		return etlerrors.Newf(etlerrors.ErrorTypeData, "column %q already exists in table %q", name, t.name)
	}
	if len(t.cols) > 0 && len(values) != t.NumRows() {
		return etlerrors.Newf(etlerrors.ErrorTypeData,
			"column %q has %d values, table %q has %d rows", name, len(values), t.name, t.NumRows())
	}
	t.index[name] = len(t.cols)
	t.cols = append(t.cols, NewColumn(name, typ, values))
	return nil
}

// SetColumn adds the column or replaces an existing one of the same name.
func (t *Table) SetColumn(name string, typ ColumnType, values []interface{}) error {
	if i, exists := t.index[name]; exists {
		if len(values) != t.NumRows() {
			return etlerrors.Newf(etlerrors.ErrorTypeData,
				"column %q has %d values, table %q has %d rows", name, len(values), t.name, t.NumRows())
		}
		t.cols[i] = NewColumn(name, typ, values)
		return nil
	}
	return t.AddColumn(name, typ, values)
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := New(t.name)
	for _, c := range t.cols {
		out.index[c.name] = len(out.cols)
		out.cols = append(out.cols, c.Clone())
	}
	return out
}

// Renamed returns a shallow copy carrying a new table name.
func (t *Table) Renamed(name string) *Table {
	out := *t
	out.name = name
	return &out
}

// Filter returns a new table containing the rows for which keep returns true,
// preserving row order.
func (t *Table) Filter(keep func(row int) bool) *Table {
	rows := make([]int, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	return t.takeRows(rows)
}

// Head returns a new table containing at most n leading rows.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > t.NumRows() {
		n = t.NumRows()
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return t.takeRows(rows)
}

// Select returns a new table with only the named columns, in the given
// order, skipping names the table does not have.
func (t *Table) Select(names ...string) *Table {
	out := New(t.name)
	for _, name := range names {
		if c, ok := t.Column(name); ok {
			out.index[name] = len(out.cols)
			out.cols = append(out.cols, c.Clone())
		}
	}
	return out
}

// takeRows materializes a new table from the given row indices.
func (t *Table) takeRows(rows []int) *Table {
	out := New(t.name)
	for _, c := range t.cols {
		values := make([]interface{}, len(rows))
		for j, r := range rows {
			values[j] = c.values[r]
		}
		out.index[c.name] = len(out.cols)
		out.cols = append(out.cols, NewColumn(c.name, c.typ, values))
	}
	return out
}
