package clean

import (
	"sort"

	"github.com/commercepipe/commercepipe/pkg/table"
)

// FillStrategy is a named policy for resolving null values in one column.
type FillStrategy int

const (
	// Drop removes the rows where the column is null.
	Drop FillStrategy = iota
	// FillZero replaces nulls with 0.
	FillZero
	// FillValue replaces nulls with a caller-supplied constant.
	FillValue
	// FillMean coerces the column to numeric, then fills nulls with the mean
	// of the remaining non-null values.
	FillMean
	// FillMedian coerces the column to numeric, then fills nulls with the
	// median of the remaining non-null values.
	FillMedian
	// FillMode fills nulls with the most frequent non-null value, falling
	// back to the caller-supplied constant when the column is all null.
	FillMode
	// ForwardFill propagates the nearest preceding non-null value.
	ForwardFill
	// BackwardFill propagates the nearest following non-null value.
	BackwardFill
)

// String returns the strategy name used in diagnostics.
func (s FillStrategy) String() string {
	switch s {
	case Drop:
		return "drop"
	case FillZero:
		return "fill_zero"
	case FillValue:
		return "fill_value"
	case FillMean:
		return "fill_mean"
	case FillMedian:
		return "fill_median"
	case FillMode:
		return "fill_mode"
	case ForwardFill:
		return "ffill"
	case BackwardFill:
		return "bfill"
	default:
		return "unknown"
	}
}

// Fill applies a null-fill strategy to one column and returns a new table
// with that column's nulls resolved. Applying a strategy to a column the
// table does not have is a no-op. fillValue is consumed by FillValue and as
// the FillMode fallback; other strategies ignore it.
func Fill(t *table.Table, column string, strategy FillStrategy, fillValue interface{}) *table.Table {
	col, ok := t.Column(column)
	if !ok {
		return t
	}

	if strategy == Drop {
		return t.Filter(func(row int) bool { return !col.IsNull(row) })
	}

	out := t.Clone()
	oc, _ := out.Column(column)

	switch strategy {
	case FillZero:
		fillConstant(out, oc, 0.0)
	case FillValue:
		fillConstant(out, oc, fillValue)
	case FillMean:
		values, typ := coerceFloats(oc)
		if m, ok := mean(nonNullFloats(values)); ok {
			for i, v := range values {
				if v == nil {
					values[i] = m
				}
			}
		}
		_ = out.SetColumn(column, typ, values)
	case FillMedian:
		values, typ := coerceFloats(oc)
		if m, ok := median(nonNullFloats(values)); ok {
			for i, v := range values {
				if v == nil {
					values[i] = m
				}
			}
		}
		_ = out.SetColumn(column, typ, values)
	case FillMode:
		fillConstant(out, oc, mode(oc, fillValue))
	case ForwardFill:
		values := cells(oc)
		var last interface{}
		for i, v := range values {
			if v == nil {
				values[i] = last
			} else {
				last = v
			}
		}
		_ = out.SetColumn(column, oc.Type(), values)
	case BackwardFill:
		values := cells(oc)
		var next interface{}
		for i := len(values) - 1; i >= 0; i-- {
			if values[i] == nil {
				values[i] = next
			} else {
				next = values[i]
			}
		}
		_ = out.SetColumn(column, oc.Type(), values)
	}
	return out
}

func fillConstant(t *table.Table, c *table.Column, v interface{}) {
	values := cells(c)
	for i, cell := range values {
		if cell == nil {
			values[i] = v
		}
	}
	_ = t.SetColumn(c.Name(), c.Type(), values)
}

func cells(c *table.Column) []interface{} {
	values := make([]interface{}, c.Len())
	for i := range values {
		values[i] = c.Value(i)
	}
	return values
}

// coerceFloats converts every cell to float64 where possible; cells that do
// not parse become null. The resulting column type is float.
func coerceFloats(c *table.Column) ([]interface{}, table.ColumnType) {
	values := make([]interface{}, c.Len())
	for i := 0; i < c.Len(); i++ {
		if f, ok := table.AsFloat(c.Value(i)); ok {
			values[i] = f
		}
	}
	return values, table.ColumnTypeFloat
}

func nonNullFloats(values []interface{}) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			out = append(out, v.(float64))
		}
	}
	return out
}

func mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), true
}

func median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2, true
	}
	return sorted[mid], true
}

// mode returns the most frequent non-null value, breaking ties by first
// occurrence, or fallback when the column is all null.
func mode(c *table.Column, fallback interface{}) interface{} {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	byKey := make(map[string]interface{})
	for i := 0; i < c.Len(); i++ {
		v := c.Value(i)
		if v == nil {
			continue
		}
		k, _ := table.AsString(v)
		if _, ok := firstSeen[k]; !ok {
			firstSeen[k] = i
			byKey[k] = v
		}
		counts[k]++
	}
	if len(counts) == 0 {
		return fallback
	}
	bestKey, bestCount := "", -1
	for k, n := range counts {
		if n > bestCount || (n == bestCount && firstSeen[k] < firstSeen[bestKey]) {
			bestKey, bestCount = k, n
		}
	}
	return byKey[bestKey]
}
