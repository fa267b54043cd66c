package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddColumn(t *testing.T) {
	tbl := New("orders")
	require.NoError(t, tbl.AddColumn("order_id", ColumnTypeInt, []interface{}{int64(1), int64(2)}))
	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, 1, tbl.NumCols())

	err := tbl.AddColumn("order_id", ColumnTypeInt, []interface{}{int64(3), int64(4)})
	assert.Error(t, err, "duplicate column names must be rejected")

	err = tbl.AddColumn("status", ColumnTypeString, []interface{}{"pending"})
	assert.Error(t, err, "length mismatch must be rejected")
}

func TestSetColumnReplaces(t *testing.T) {
	tbl := New("t")
	require.NoError(t, tbl.AddColumn("a", ColumnTypeInt, []interface{}{int64(1), int64(2)}))
	require.NoError(t, tbl.SetColumn("a", ColumnTypeFloat, []interface{}{1.5, 2.5}))

	col, ok := tbl.Column("a")
	require.True(t, ok)
	assert.Equal(t, ColumnTypeFloat, col.Type())
	assert.Equal(t, 1.5, col.Value(0))
	assert.Equal(t, 1, tbl.NumCols())
}

func TestNullAccounting(t *testing.T) {
	c := NewColumn("x", ColumnTypeFloat, []interface{}{1.0, nil, 3.0, nil})
	assert.Equal(t, 2, c.NullCount())
	assert.Equal(t, 2, c.NonNullCount())
	assert.True(t, c.IsNull(1))
	assert.False(t, c.IsNull(0))
}

func TestFilterAndHead(t *testing.T) {
	tbl := New("t")
	require.NoError(t, tbl.AddColumn("n", ColumnTypeInt,
		[]interface{}{int64(1), int64(2), int64(3), int64(4)}))

	even := tbl.Filter(func(row int) bool {
		v, _ := AsInt(tbl.Value(row, "n"))
		return v%2 == 0
	})
	assert.Equal(t, 2, even.NumRows())
	assert.Equal(t, 4, tbl.NumRows(), "source table must not change")

	assert.Equal(t, 2, tbl.Head(2).NumRows())
	assert.Equal(t, 4, tbl.Head(10).NumRows())
}

func TestSortNullsLast(t *testing.T) {
	tbl := New("t")
	require.NoError(t, tbl.AddColumn("v", ColumnTypeFloat,
		[]interface{}{3.0, nil, 1.0, 2.0}))

	asc := tbl.Sort(SortKey{Column: "v"})
	assert.Equal(t, 1.0, asc.Value(0, "v"))
	assert.Equal(t, 3.0, asc.Value(2, "v"))
	assert.Nil(t, asc.Value(3, "v"), "nulls sort last ascending")

	desc := tbl.Sort(SortKey{Column: "v", Desc: true})
	assert.Equal(t, 3.0, desc.Value(0, "v"))
	assert.Equal(t, 2.0, desc.Value(1, "v"))
	assert.Equal(t, 1.0, desc.Value(2, "v"))
	assert.Nil(t, desc.Value(3, "v"), "nulls sort last descending too")
}

func TestSortIsStableAcrossKeys(t *testing.T) {
	tbl := New("t")
	require.NoError(t, tbl.AddColumn("grp", ColumnTypeString,
		[]interface{}{"b", "a", "b", "a"}))
	require.NoError(t, tbl.AddColumn("seq", ColumnTypeInt,
		[]interface{}{int64(1), int64(2), int64(3), int64(4)}))

	sorted := tbl.Sort(SortKey{Column: "grp"})
	assert.Equal(t, int64(2), sorted.Value(0, "seq"))
	assert.Equal(t, int64(4), sorted.Value(1, "seq"))
	assert.Equal(t, int64(1), sorted.Value(2, "seq"))
	assert.Equal(t, int64(3), sorted.Value(3, "seq"))
}

func TestLeftJoinPreservesAllLeftRows(t *testing.T) {
	left := New("orders")
	require.NoError(t, left.AddColumn("customer_id", ColumnTypeInt,
		[]interface{}{int64(1), int64(2), int64(3)}))

	right := New("customers")
	require.NoError(t, right.AddColumn("customer_id", ColumnTypeInt,
		[]interface{}{int64(1), int64(3)}))
	require.NoError(t, right.AddColumn("segment", ColumnTypeString,
		[]interface{}{"vip", "new"}))

	joined := LeftJoin(left, right, "customer_id", "segment")
	require.Equal(t, 3, joined.NumRows())
	assert.Equal(t, "vip", joined.Value(0, "segment"))
	assert.Nil(t, joined.Value(1, "segment"), "unmatched left rows keep null lookups")
	assert.Equal(t, "new", joined.Value(2, "segment"))
}

func TestLeftJoinMatchesAcrossKeyTypes(t *testing.T) {
	left := New("l")
	require.NoError(t, left.AddColumn("id", ColumnTypeString,
		[]interface{}{"1", "2"}))

	right := New("r")
	require.NoError(t, right.AddColumn("id", ColumnTypeInt,
		[]interface{}{int64(1), int64(2)}))
	require.NoError(t, right.AddColumn("name", ColumnTypeString,
		[]interface{}{"one", "two"}))

	joined := LeftJoin(left, right, "id", "name")
	assert.Equal(t, "one", joined.Value(0, "name"))
	assert.Equal(t, "two", joined.Value(1, "name"))
}

func TestLeftJoinFirstMatchWins(t *testing.T) {
	left := New("l")
	require.NoError(t, left.AddColumn("id", ColumnTypeInt, []interface{}{int64(1)}))

	right := New("r")
	require.NoError(t, right.AddColumn("id", ColumnTypeInt,
		[]interface{}{int64(1), int64(1)}))
	require.NoError(t, right.AddColumn("v", ColumnTypeString,
		[]interface{}{"first", "second"}))

	joined := LeftJoin(left, right, "id", "v")
	require.Equal(t, 1, joined.NumRows())
	assert.Equal(t, "first", joined.Value(0, "v"))
}

func TestGroupByOps(t *testing.T) {
	tbl := New("orders")
	require.NoError(t, tbl.AddColumn("customer_id", ColumnTypeInt,
		[]interface{}{int64(7), int64(7), int64(9)}))
	require.NoError(t, tbl.AddColumn("amount", ColumnTypeFloat,
		[]interface{}{10.0, nil, 5.0}))

	grouped := tbl.GroupBy([]string{"customer_id"},
		Agg{Column: "amount", Op: AggSum, As: "total"},
		Agg{Column: "amount", Op: AggCount, As: "n"},
		Agg{Column: "amount", Op: AggMean, As: "avg"},
	)
	require.Equal(t, 2, grouped.NumRows())

	// first-seen group order
	assert.Equal(t, int64(7), grouped.Value(0, "customer_id"))
	assert.Equal(t, 10.0, grouped.Value(0, "total"))
	assert.Equal(t, int64(1), grouped.Value(0, "n"), "count skips nulls")
	assert.Equal(t, 10.0, grouped.Value(0, "avg"))
	assert.Equal(t, 5.0, grouped.Value(1, "total"))
}

func TestGroupByAllNullMean(t *testing.T) {
	tbl := New("t")
	require.NoError(t, tbl.AddColumn("k", ColumnTypeString, []interface{}{"a", "a"}))
	require.NoError(t, tbl.AddColumn("v", ColumnTypeFloat, []interface{}{nil, nil}))

	grouped := tbl.GroupBy([]string{"k"}, Agg{Column: "v", Op: AggMean, As: "avg"})
	require.Equal(t, 1, grouped.NumRows())
	assert.Nil(t, grouped.Value(0, "avg"))
}

func TestAsFloatCoercions(t *testing.T) {
	cases := []struct {
		in   interface{}
		want float64
		ok   bool
	}{
		{int64(3), 3, true},
		{"2.5", 2.5, true},
		{true, 1, true},
		{false, 0, true},
		{"not a number", 0, false},
		{nil, 0, false},
	}
	for _, c := range cases {
		got, ok := AsFloat(c.in)
		assert.Equal(t, c.ok, ok, "AsFloat(%v)", c.in)
		if ok {
			assert.Equal(t, c.want, got, "AsFloat(%v)", c.in)
		}
	}
}

func TestAsTimeLayouts(t *testing.T) {
	for _, s := range []string{
		"2024-03-15 10:30:00",
		"2024-03-15T10:30:00Z",
		"2024-03-15",
	} {
		ts, ok := AsTime(s)
		require.True(t, ok, "parsing %q", s)
		assert.Equal(t, 2024, ts.Year())
		assert.Equal(t, time.March, ts.Month())
	}
	_, ok := AsTime("15/03/2024 oops")
	assert.False(t, ok)
}

func TestPeriodsOrderLexicographically(t *testing.T) {
	jan := MonthOf(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	dec := MonthOf(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, Period("2024-01"), jan)
	assert.Equal(t, Period("2023-12"), dec)
	assert.True(t, dec < jan, "chronological order must equal string order")

	w := WeekOf(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, Period("2024-W02"), w)
}
