// Package clean provides the per-table data cleaners: a fixed four-stage
// state machine (nulls, duplicates, type conversion, post-validation) that
// turns a raw table into a clean one satisfying its declared invariants,
// and the null-fill strategies the stages are built on. Every stage is a
// pure table-to-table transformation; key-column nulls fail hard instead
// of being dropped.
package clean

import (
	"go.uber.org/zap"

	"github.com/commercepipe/commercepipe/pkg/etlerrors"
	"github.com/commercepipe/commercepipe/pkg/table"
)

// Cleaner is the four-stage cleaning contract. Clean runs the stages in
// this exact order; each returns a new table and never mutates its input.
type Cleaner interface {
	// Table returns the logical name of the table this cleaner handles.
	Table() string
	// HandleNulls enforces the table's key-null policy and fills the
	// fillable columns.
	HandleNulls(t *table.Table) (*table.Table, error)
	// HandleDuplicates deduplicates by the table's primary key, keeping the
	// last occurrence.
	HandleDuplicates(t *table.Table) (*table.Table, error)
	// ConvertTypes coerces declared numeric and date columns; unparseable
	// values become null and are logged, never raised.
	ConvertTypes(t *table.Table) (*table.Table, error)
	// ValidateCleanedData runs the post-cleaning schema and quality checks.
	ValidateCleanedData(t *table.Table) error
}

// Clean runs the full cleaning pipeline over t and returns the final table.
func Clean(c Cleaner, t *table.Table, logger *zap.Logger) (*table.Table, error) {
	logger.Info("cleaning started",
		zap.String("table", c.Table()), zap.Int("rows", t.NumRows()))

	t, err := c.HandleNulls(t)
	if err != nil {
		return nil, err
	}
	t, err = c.HandleDuplicates(t)
	if err != nil {
		return nil, err
	}
	t, err = c.ConvertTypes(t)
	if err != nil {
		return nil, err
	}
	if err := c.ValidateCleanedData(t); err != nil {
		return nil, err
	}

	logger.Info("cleaning completed",
		zap.String("table", c.Table()), zap.Int("rows", t.NumRows()))
	return t, nil
}

// fillChecked applies a fill strategy and enforces the null non-increase
// invariant: a fill must never raise the column's null count. A violation
// is an internal defect, reported as CleaningInvariant.
func fillChecked(t *table.Table, column string, strategy FillStrategy, fillValue interface{}, logger *zap.Logger) (*table.Table, error) {
	col, ok := t.Column(column)
	if !ok {
		return t, nil
	}
	before := col.NullCount()

	out := Fill(t, column, strategy, fillValue)

	after := 0
	if oc, ok := out.Column(column); ok {
		after = oc.NullCount()
	}
	if filled := before - after; filled > 0 {
		logger.Info("null values filled",
			zap.String("table", t.Name()),
			zap.String("column", column),
			zap.String("strategy", strategy.String()),
			zap.Int("filled", filled))
	}
	if after > before {
		return nil, etlerrors.Newf(etlerrors.ErrorTypeCleaningInvariant,
			"fill strategy %s increased nulls in column %q", strategy, column).
			WithDetail("columns", []string{column}).
			WithDetail("strategy", strategy.String()).
			WithDetail("nulls_before", before).
			WithDetail("nulls_after", after)
	}
	return out, nil
}

// dedupeKeepLast removes rows whose key repeats, keeping the last
// occurrence as the authoritative one and preserving the order of the
// surviving rows.
func dedupeKeepLast(t *table.Table, key string, logger *zap.Logger) *table.Table {
	col, ok := t.Column(key)
	if !ok {
		return t
	}

	last := make(map[string]int, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		if col.IsNull(i) {
			continue
		}
		s, _ := table.AsString(col.Value(i))
		last[s] = i
	}

	before := t.NumRows()
	out := t.Filter(func(row int) bool {
		if col.IsNull(row) {
			return true
		}
		s, _ := table.AsString(col.Value(row))
		return last[s] == row
	})
	if removed := before - out.NumRows(); removed > 0 {
		logger.Info("duplicate rows removed",
			zap.String("table", t.Name()),
			zap.String("key", key),
			zap.Int("removed", removed))
	}
	return out
}

// coerceNumeric coerces the named columns to float, turning unparseable
// values into nulls. Newly introduced nulls are logged as a data-quality
// warning, not raised; the post-cleaning validator decides whether they
// violate an invariant.
func coerceNumeric(t *table.Table, columns []string, logger *zap.Logger) *table.Table {
	out := t.Clone()
	for _, name := range columns {
		col, ok := out.Column(name)
		if !ok {
			continue
		}
		before := col.NullCount()
		values := make([]interface{}, col.Len())
		for i := 0; i < col.Len(); i++ {
			if f, ok := table.AsFloat(col.Value(i)); ok {
				values[i] = f
			}
		}
		_ = out.SetColumn(name, table.ColumnTypeFloat, values)
		logCoercion(out, name, before, logger)
	}
	return out
}

// coerceInt coerces the named columns to int64, turning unparseable values
// into nulls.
func coerceInt(t *table.Table, columns []string, logger *zap.Logger) *table.Table {
	out := t.Clone()
	for _, name := range columns {
		col, ok := out.Column(name)
		if !ok {
			continue
		}
		before := col.NullCount()
		values := make([]interface{}, col.Len())
		for i := 0; i < col.Len(); i++ {
			if n, ok := table.AsInt(col.Value(i)); ok {
				values[i] = n
			}
		}
		_ = out.SetColumn(name, table.ColumnTypeInt, values)
		logCoercion(out, name, before, logger)
	}
	return out
}

// coerceTime coerces the named columns to timestamps, turning unparseable
// values into nulls.
func coerceTime(t *table.Table, columns []string, logger *zap.Logger) *table.Table {
	out := t.Clone()
	for _, name := range columns {
		col, ok := out.Column(name)
		if !ok {
			continue
		}
		before := col.NullCount()
		values := make([]interface{}, col.Len())
		for i := 0; i < col.Len(); i++ {
			if ts, ok := table.AsTime(col.Value(i)); ok {
				values[i] = ts
			}
		}
		_ = out.SetColumn(name, table.ColumnTypeTimestamp, values)
		logCoercion(out, name, before, logger)
	}
	return out
}

func logCoercion(t *table.Table, column string, beforeNulls int, logger *zap.Logger) {
	col, _ := t.Column(column)
	if delta := col.NullCount() - beforeNulls; delta > 0 {
		logger.Warn("values coerced to null",
			zap.String("table", t.Name()),
			zap.String("column", column),
			zap.Int("coerced", delta))
	}
}
