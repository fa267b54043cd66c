package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commercepipe/commercepipe/pkg/etlerrors"
	"github.com/commercepipe/commercepipe/pkg/table"
	"github.com/commercepipe/commercepipe/pkg/testutil"
)

func ordersFixture(t *testing.T) *table.Table {
	return testutil.BuildTable(t, "orders",
		testutil.Col{Name: "order_id", Type: table.ColumnTypeInt,
			Values: []interface{}{int64(1), int64(2), int64(3)}},
		testutil.Col{Name: "total_amount", Type: table.ColumnTypeFloat,
			Values: []interface{}{10.0, 20.0, 30.0}},
		testutil.Col{Name: "status", Type: table.ColumnTypeString,
			Values: []interface{}{"pending", "delivered", nil}},
	)
}

func TestRequiredColumns(t *testing.T) {
	v := New(ordersFixture(t), testutil.TestLogger(t))
	assert.NoError(t, v.RequiredColumns([]string{"order_id", "status"}))

	err := v.RequiredColumns([]string{"order_id", "customer_id", "order_date"})
	require.Error(t, err)
	assert.True(t, etlerrors.IsType(err, etlerrors.ErrorTypeMissingColumns))

	var e *etlerrors.Error
	require.ErrorAs(t, err, &e)
	assert.ElementsMatch(t, []string{"customer_id", "order_date"}, e.Detail("missing_columns"))
}

func TestNoExtraColumns(t *testing.T) {
	v := New(ordersFixture(t), testutil.TestLogger(t))
	assert.NoError(t, v.NoExtraColumns([]string{"order_id", "total_amount", "status"}))

	err := v.NoExtraColumns([]string{"order_id"})
	require.Error(t, err)
	assert.True(t, etlerrors.IsType(err, etlerrors.ErrorTypeUnexpectedColumns))
}

func TestDataTypes(t *testing.T) {
	v := New(ordersFixture(t), testutil.TestLogger(t))

	assert.NoError(t, v.DataTypes(map[string]table.ColumnType{
		"order_id": table.ColumnTypeInt,
		"status":   table.ColumnTypeString,
	}))

	// int satisfies a float expectation
	assert.NoError(t, v.DataTypes(map[string]table.ColumnType{
		"order_id": table.ColumnTypeFloat,
	}))

	err := v.DataTypes(map[string]table.ColumnType{
		"status":       table.ColumnTypeFloat,
		"total_amount": table.ColumnTypeBool,
	})
	require.Error(t, err)
	assert.True(t, etlerrors.IsType(err, etlerrors.ErrorTypeTypeMismatch))

	var e *etlerrors.Error
	require.ErrorAs(t, err, &e)
	assert.ElementsMatch(t, []string{"status", "total_amount"}, e.Detail("columns"),
		"all mismatches are collected before failing")
}

func TestPeriodSatisfiesString(t *testing.T) {
	tbl := testutil.BuildTable(t, "sales",
		testutil.Col{Name: "month", Type: table.ColumnTypePeriod,
			Values: []interface{}{table.Period("2024-01")}},
	)
	v := New(tbl, testutil.TestLogger(t))
	assert.NoError(t, v.DataTypes(map[string]table.ColumnType{
		"month": table.ColumnTypeString,
	}))
}

func TestNumericRangeBoundsAreInclusive(t *testing.T) {
	tbl := testutil.BuildTable(t, "reviews",
		testutil.Col{Name: "rating", Type: table.ColumnTypeFloat,
			Values: []interface{}{1.0, 5.0, 3.0}},
	)
	v := New(tbl, testutil.TestLogger(t))
	assert.NoError(t, v.NumericRange("rating", Float64(1), Float64(5), false))
}

func TestNumericRangeViolations(t *testing.T) {
	tbl := testutil.BuildTable(t, "reviews",
		testutil.Col{Name: "rating", Type: table.ColumnTypeFloat,
			Values: []interface{}{0.0, 6.0, 3.0}},
	)
	err := New(tbl, testutil.TestLogger(t)).NumericRange("rating", Float64(1), Float64(5), false)
	require.Error(t, err)
	assert.True(t, etlerrors.IsType(err, etlerrors.ErrorTypeRangeValidation))

	var e *etlerrors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 2, e.Detail("violation_count"))
	assert.Equal(t, 0.0, e.Detail("observed_min"))
	assert.Equal(t, 6.0, e.Detail("observed_max"))
}

func TestNumericRangeNullHandling(t *testing.T) {
	tbl := testutil.BuildTable(t, "t",
		testutil.Col{Name: "v", Type: table.ColumnTypeFloat,
			Values: []interface{}{1.0, nil}},
	)
	v := New(tbl, testutil.TestLogger(t))

	err := v.NumericRange("v", Float64(0), nil, false)
	require.Error(t, err)
	assert.True(t, etlerrors.IsType(err, etlerrors.ErrorTypeNullConstraint))

	assert.NoError(t, v.NumericRange("v", Float64(0), nil, true))
}

func TestNumericRangeAllNullAllowed(t *testing.T) {
	tbl := testutil.BuildTable(t, "t",
		testutil.Col{Name: "v", Type: table.ColumnTypeFloat,
			Values: []interface{}{nil, nil}},
	)
	assert.NoError(t, New(tbl, testutil.TestLogger(t)).NumericRange("v", Float64(0), Float64(1), true))
}

func TestNoNulls(t *testing.T) {
	v := New(ordersFixture(t), testutil.TestLogger(t))
	assert.NoError(t, v.NoNulls("order_id", "total_amount"))

	err := v.NoNulls("order_id", "status")
	require.Error(t, err)
	assert.True(t, etlerrors.IsType(err, etlerrors.ErrorTypeNullConstraint))

	var e *etlerrors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, []string{"status"}, e.Detail("columns"))
	assert.Equal(t, 1, e.Detail("null_count"))
}

func TestUniqueValues(t *testing.T) {
	v := New(ordersFixture(t), testutil.TestLogger(t))
	assert.NoError(t, v.UniqueValues("order_id"))

	tbl := testutil.BuildTable(t, "t",
		testutil.Col{Name: "id", Type: table.ColumnTypeInt,
			Values: []interface{}{int64(1), int64(2), int64(2)}},
	)
	err := New(tbl, testutil.TestLogger(t)).UniqueValues("id")
	require.Error(t, err)
	assert.True(t, etlerrors.IsType(err, etlerrors.ErrorTypeDuplicateKey))

	var e *etlerrors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 1, e.Detail("duplicate_count"),
		"only rows beyond the first occurrence count")
}

func TestMissingColumnChecks(t *testing.T) {
	v := New(ordersFixture(t), testutil.TestLogger(t))
	for _, err := range []error{
		v.NumericRange("absent", nil, nil, true),
		v.NoNulls("absent"),
		v.UniqueValues("absent"),
	} {
		require.Error(t, err)
		assert.True(t, etlerrors.IsType(err, etlerrors.ErrorTypeMissingColumns))
	}
}
