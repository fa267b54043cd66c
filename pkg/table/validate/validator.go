// Package validate provides schema and data-quality validation over tables.
// A SchemaValidator wraps one table and a logger for the duration of a
// check; every operation only reads the table and fails with a structured
// etlerrors kind carrying the affected columns, counts and sample values.
package validate

import (
	"sort"

	"go.uber.org/zap"

	"github.com/commercepipe/commercepipe/pkg/etlerrors"
	"github.com/commercepipe/commercepipe/pkg/table"
)

// SchemaValidator validates structural and quality constraints of a table.
type SchemaValidator struct {
	t      *table.Table
	logger *zap.Logger
}

// New creates a validator over t writing diagnostics to logger.
func New(t *table.Table, logger *zap.Logger) *SchemaValidator {
	return &SchemaValidator{t: t, logger: logger}
}

// Float64 returns a pointer to v, for the min/max bounds of NumericRange.
func Float64(v float64) *float64 { return &v }

// RequiredColumns fails when any of the required columns is absent.
func (v *SchemaValidator) RequiredColumns(required []string) error {
	actual := v.t.ColumnNames()
	have := make(map[string]bool, len(actual))
	for _, name := range actual {
		have[name] = true
	}

	var missing []string
	for _, name := range required {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		v.logger.Error("required columns missing",
			zap.String("table", v.t.Name()),
			zap.Strings("missing", missing),
			zap.Strings("available", actual))
		return etlerrors.Newf(etlerrors.ErrorTypeMissingColumns,
			"table %q is missing required columns %v", v.t.Name(), missing).
			WithDetail("missing_columns", missing).
			WithDetail("available_columns", actual)
	}

	v.logger.Info("all required columns present",
		zap.String("table", v.t.Name()), zap.Strings("required", required))
	return nil
}

// NoExtraColumns fails when the table has columns beyond the expected set.
// Useful for strict schemas that must match exactly.
func (v *SchemaValidator) NoExtraColumns(expected []string) error {
	want := make(map[string]bool, len(expected))
	for _, name := range expected {
		want[name] = true
	}

	var extras []string
	for _, name := range v.t.ColumnNames() {
		if !want[name] {
			extras = append(extras, name)
		}
	}
	if len(extras) > 0 {
		sort.Strings(extras)
		v.logger.Error("unexpected columns present",
			zap.String("table", v.t.Name()),
			zap.Strings("extra", extras),
			zap.Strings("expected", expected))
		return etlerrors.Newf(etlerrors.ErrorTypeUnexpectedColumns,
			"table %q has unexpected columns %v", v.t.Name(), extras).
			WithDetail("extra_columns", extras).
			WithDetail("expected_columns", expected)
	}

	v.logger.Info("no extra columns, exact schema validated", zap.String("table", v.t.Name()))
	return nil
}

// DataTypes checks that each named column matches the expected type under a
// flexible family equivalence: an int column satisfies a float expectation,
// and period columns satisfy a string expectation. All mismatches are
// collected before failing.
func (v *SchemaValidator) DataTypes(expected map[string]table.ColumnType) error {
	type mismatch struct {
		Column   string
		Expected string
		Actual   string
	}
	var mismatches []mismatch

	names := make([]string, 0, len(expected))
	for name := range expected {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		col, ok := v.t.Column(name)
		if !ok {
			return v.missingColumn(name)
		}
		if !typesMatch(col.Type(), expected[name]) {
			mismatches = append(mismatches, mismatch{
				Column:   name,
				Expected: expected[name].String(),
				Actual:   col.Type().String(),
			})
		}
	}

	if len(mismatches) > 0 {
		cols := make([]string, len(mismatches))
		for i, m := range mismatches {
			cols[i] = m.Column
			v.logger.Error("column type mismatch",
				zap.String("table", v.t.Name()),
				zap.String("column", m.Column),
				zap.String("expected", m.Expected),
				zap.String("actual", m.Actual))
		}
		return etlerrors.Newf(etlerrors.ErrorTypeTypeMismatch,
			"table %q has %d column type mismatches", v.t.Name(), len(mismatches)).
			WithDetail("columns", cols).
			WithDetail("mismatches", mismatches)
	}

	v.logger.Info("all column types match", zap.String("table", v.t.Name()))
	return nil
}

// NumericRange checks the non-null values of a column against inclusive
// bounds; nil bounds are open. With allowNulls false the column must be
// fully populated. An all-null column under allowNulls true is trivially
// valid (logged, not failed). Non-null values that cannot be read as
// numbers count as violations.
func (v *SchemaValidator) NumericRange(column string, min, max *float64, allowNulls bool) error {
	col, ok := v.t.Column(column)
	if !ok {
		return v.missingColumn(column)
	}

	if !allowNulls {
		if nulls := col.NullCount(); nulls > 0 {
			v.logger.Error("nulls not allowed in range-checked column",
				zap.String("table", v.t.Name()),
				zap.String("column", column),
				zap.Int("null_count", nulls))
			return etlerrors.Newf(etlerrors.ErrorTypeNullConstraint,
				"column %q contains %d null values (not allowed)", column, nulls).
				WithDetail("columns", []string{column}).
				WithDetail("null_count", nulls)
		}
	}

	values := col.Floats()
	nonNull := col.NonNullCount()
	if nonNull == 0 {
		v.logger.Warn("column has no non-null values to range-check",
			zap.String("table", v.t.Name()), zap.String("column", column))
		return nil
	}

	violations := nonNull - len(values) // non-numeric cells
	observedMin, observedMax := 0.0, 0.0
	for i, f := range values {
		if i == 0 || f < observedMin {
			observedMin = f
		}
		if i == 0 || f > observedMax {
			observedMax = f
		}
		if (min != nil && f < *min) || (max != nil && f > *max) {
			violations++
		}
	}

	if violations > 0 {
		v.logger.Error("values outside declared range",
			zap.String("table", v.t.Name()),
			zap.String("column", column),
			zap.Int("violations", violations),
			zap.Float64("observed_min", observedMin),
			zap.Float64("observed_max", observedMax))
		err := etlerrors.Newf(etlerrors.ErrorTypeRangeValidation,
			"column %q has %d values outside the declared range", column, violations).
			WithDetail("columns", []string{column}).
			WithDetail("violation_count", violations).
			WithDetail("observed_min", observedMin).
			WithDetail("observed_max", observedMax)
		if min != nil {
			err = err.WithDetail("min", *min)
		}
		if max != nil {
			err = err.WithDetail("max", *max)
		}
		return err
	}

	v.logger.Info("all values within range",
		zap.String("table", v.t.Name()), zap.String("column", column))
	return nil
}

// NoNulls fails when any of the given columns (default: all) holds a null.
// Violations are collected across all columns into one combined error.
func (v *SchemaValidator) NoNulls(columns ...string) error {
	if len(columns) == 0 {
		columns = v.t.ColumnNames()
	}

	type violation struct {
		Column     string
		NullCount  int
		Percentage float64
	}
	var violations []violation

	rows := v.t.NumRows()
	for _, name := range columns {
		col, ok := v.t.Column(name)
		if !ok {
			return v.missingColumn(name)
		}
		if nulls := col.NullCount(); nulls > 0 {
			pct := 0.0
			if rows > 0 {
				pct = float64(nulls) / float64(rows) * 100
			}
			violations = append(violations, violation{Column: name, NullCount: nulls, Percentage: pct})
		}
	}

	if len(violations) > 0 {
		cols := make([]string, len(violations))
		total := 0
		for i, viol := range violations {
			cols[i] = viol.Column
			total += viol.NullCount
			v.logger.Error("null values in column",
				zap.String("table", v.t.Name()),
				zap.String("column", viol.Column),
				zap.Int("null_count", viol.NullCount),
				zap.Float64("null_percentage", viol.Percentage))
		}
		return etlerrors.Newf(etlerrors.ErrorTypeNullConstraint,
			"table %q has null values in columns %v", v.t.Name(), cols).
			WithDetail("columns", cols).
			WithDetail("null_count", total).
			WithDetail("violations", violations)
	}

	v.logger.Info("no null values found",
		zap.String("table", v.t.Name()), zap.Strings("columns", columns))
	return nil
}

// UniqueValues fails when any of the given columns holds duplicates. Every
// row beyond the first occurrence of a repeated value counts as one
// duplicate; counts are combined across columns into a single error.
func (v *SchemaValidator) UniqueValues(columns ...string) error {
	type violation struct {
		Column     string
		Duplicates int
	}
	var violations []violation

	for _, name := range columns {
		col, ok := v.t.Column(name)
		if !ok {
			return v.missingColumn(name)
		}
		seen := make(map[interface{}]bool, col.Len())
		dups := 0
		for i := 0; i < col.Len(); i++ {
			s, _ := table.AsString(col.Value(i))
			key := interface{}(s)
			if col.IsNull(i) {
				key = nil
			}
			if seen[key] {
				dups++
			}
			seen[key] = true
		}
		if dups > 0 {
			violations = append(violations, violation{Column: name, Duplicates: dups})
		}
	}

	if len(violations) > 0 {
		cols := make([]string, len(violations))
		total := 0
		for i, viol := range violations {
			cols[i] = viol.Column
			total += viol.Duplicates
			v.logger.Error("duplicate values in column",
				zap.String("table", v.t.Name()),
				zap.String("column", viol.Column),
				zap.Int("duplicates", viol.Duplicates))
		}
		return etlerrors.Newf(etlerrors.ErrorTypeDuplicateKey,
			"table %q has duplicate values in columns %v", v.t.Name(), cols).
			WithDetail("columns", cols).
			WithDetail("duplicate_count", total)
	}

	v.logger.Info("all values unique",
		zap.String("table", v.t.Name()), zap.Strings("columns", columns))
	return nil
}

func (v *SchemaValidator) missingColumn(name string) error {
	v.logger.Error("column does not exist",
		zap.String("table", v.t.Name()), zap.String("column", name))
	return etlerrors.Newf(etlerrors.ErrorTypeMissingColumns,
		"column %q does not exist in table %q", name, v.t.Name()).
		WithDetail("missing_columns", []string{name}).
		WithDetail("available_columns", v.t.ColumnNames())
}

// typesMatch implements the flexible type-family equivalence: exact match,
// int where float is expected, and period where string is expected.
func typesMatch(actual, expected table.ColumnType) bool {
	if actual == expected {
		return true
	}
	if expected == table.ColumnTypeFloat && actual == table.ColumnTypeInt {
		return true
	}
	if expected == table.ColumnTypeString && actual == table.ColumnTypePeriod {
		return true
	}
	return false
}
