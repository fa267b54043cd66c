// Package aggregate holds the business aggregators: stateless pure
// functions that fold the enriched tables into the result tables the
// pipeline publishes. Every rate or mean over an empty or all-null input
// is 0.0, never NaN and never an error.
package aggregate

import (
	"math"
	"sort"

	"github.com/commercepipe/commercepipe/pkg/table"
)

// quantile returns the q-th quantile of values using linear interpolation
// between the two nearest order statistics. Returns 0 for an empty slice.
func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	frac := pos - float64(lower)
	if lower+1 >= len(sorted) {
		return sorted[lower]
	}
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}

// columnMean averages the coercible non-null values of a column; empty or
// all-null columns average to 0.0. Bool columns average as 1/0, so the
// mean of a flag column is its true-rate among non-null rows.
func columnMean(t *table.Table, column string) float64 {
	col, ok := t.Column(column)
	if !ok {
		return 0
	}
	sum, n := 0.0, 0
	for i := 0; i < col.Len(); i++ {
		if f, ok := table.AsFloat(col.Value(i)); ok {
			sum += f
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// trueShare returns the fraction of all rows for which the flag column is
// true. Null flags count against the denominator, so the share is over the
// whole table, not just the non-null rows. Empty tables and absent columns
// yield 0.0.
func trueShare(t *table.Table, column string) float64 {
	col, ok := t.Column(column)
	if !ok || t.NumRows() == 0 {
		return 0
	}
	hits := 0
	for i := 0; i < col.Len(); i++ {
		if b, ok := table.AsBool(col.Value(i)); ok && b {
			hits++
		}
	}
	return float64(hits) / float64(t.NumRows())
}

// columnFloats collects the coercible non-null values of a column.
func columnFloats(t *table.Table, column string) []float64 {
	col, ok := t.Column(column)
	if !ok {
		return nil
	}
	values := make([]float64, 0, col.Len())
	for i := 0; i < col.Len(); i++ {
		if f, ok := table.AsFloat(col.Value(i)); ok {
			values = append(values, f)
		}
	}
	return values
}

// withMonthPeriod ensures t carries the named period column, deriving it
// from the given timestamp column when absent.
func withMonthPeriod(t *table.Table, periodColumn, timeColumn string) *table.Table {
	if t.HasColumn(periodColumn) {
		return t
	}
	src, ok := t.Column(timeColumn)
	if !ok {
		return t
	}
	out := t.Clone()
	values := make([]interface{}, src.Len())
	for i := 0; i < src.Len(); i++ {
		if ts, ok := table.AsTime(src.Value(i)); ok {
			values[i] = table.MonthOf(ts)
		}
	}
	_ = out.SetColumn(periodColumn, table.ColumnTypePeriod, values)
	return out
}
