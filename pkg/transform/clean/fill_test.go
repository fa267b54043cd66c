package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commercepipe/commercepipe/pkg/table"
	"github.com/commercepipe/commercepipe/pkg/testutil"
)

func floatTable(t *testing.T, values ...interface{}) *table.Table {
	return testutil.BuildTable(t, "t",
		testutil.Col{Name: "v", Type: table.ColumnTypeFloat, Values: values})
}

func colNulls(t *testing.T, tbl *table.Table, name string) int {
	t.Helper()
	col, ok := tbl.Column(name)
	require.True(t, ok)
	return col.NullCount()
}

func TestFillZero(t *testing.T) {
	out := Fill(floatTable(t, 1.0, nil, 3.0), "v", FillZero, nil)
	assert.Equal(t, 0, colNulls(t, out, "v"))
	assert.Equal(t, 0.0, out.Value(1, "v"))
	assert.Equal(t, 1.0, out.Value(0, "v"), "non-null values untouched")
}

func TestFillValue(t *testing.T) {
	out := Fill(floatTable(t, nil, 2.0), "v", FillValue, 9.5)
	assert.Equal(t, 9.5, out.Value(0, "v"))
	assert.Equal(t, 2.0, out.Value(1, "v"))
}

func TestFillMean(t *testing.T) {
	out := Fill(floatTable(t, 50.0, nil, 100.0), "v", FillMean, nil)
	assert.Equal(t, 75.0, out.Value(1, "v"))
}

func TestFillMeanAllNullLeavesNulls(t *testing.T) {
	out := Fill(floatTable(t, nil, nil), "v", FillMean, nil)
	assert.Equal(t, 2, colNulls(t, out, "v"), "undefined mean cannot fill anything")
}

func TestFillMedian(t *testing.T) {
	out := Fill(floatTable(t, 1.0, nil, 3.0, 100.0), "v", FillMedian, nil)
	assert.Equal(t, 3.0, out.Value(1, "v"))
}

func TestFillMode(t *testing.T) {
	tbl := testutil.BuildTable(t, "t",
		testutil.Col{Name: "v", Type: table.ColumnTypeString,
			Values: []interface{}{"a", "b", "a", nil}})
	out := Fill(tbl, "v", FillMode, nil)
	assert.Equal(t, "a", out.Value(3, "v"))
}

func TestFillModeTieBreaksOnFirstSeen(t *testing.T) {
	tbl := testutil.BuildTable(t, "t",
		testutil.Col{Name: "v", Type: table.ColumnTypeString,
			Values: []interface{}{"b", "a", nil}})
	out := Fill(tbl, "v", FillMode, nil)
	assert.Equal(t, "b", out.Value(2, "v"))
}

func TestForwardAndBackwardFill(t *testing.T) {
	ff := Fill(floatTable(t, nil, 2.0, nil, 4.0), "v", ForwardFill, nil)
	assert.Nil(t, ff.Value(0, "v"), "nothing precedes the first null")
	assert.Equal(t, 2.0, ff.Value(2, "v"))

	bf := Fill(floatTable(t, nil, 2.0, nil, 4.0), "v", BackwardFill, nil)
	assert.Equal(t, 2.0, bf.Value(0, "v"))
	assert.Equal(t, 4.0, bf.Value(2, "v"))
}

func TestDropStrategyRemovesNullRows(t *testing.T) {
	out := Fill(floatTable(t, 1.0, nil, 3.0), "v", Drop, nil)
	assert.Equal(t, 2, out.NumRows())
}

func TestFillAbsentColumnIsNoOp(t *testing.T) {
	tbl := floatTable(t, 1.0)
	out := Fill(tbl, "missing", FillZero, nil)
	assert.Equal(t, tbl.NumRows(), out.NumRows())
}

func TestFillNeverIncreasesNulls(t *testing.T) {
	strategies := []FillStrategy{
		Drop, FillZero, FillMean, FillMedian, FillMode, ForwardFill, BackwardFill,
	}
	src := floatTable(t, 1.0, nil, "oops", 4.0, nil)
	before := colNulls(t, src, "v")
	for _, s := range strategies {
		out, err := fillChecked(src, "v", s, nil, testutil.TestLogger(t))
		require.NoError(t, err, "strategy %s", s)
		assert.LessOrEqual(t, colNulls(t, out, "v"), before, "strategy %s", s)
	}
}
