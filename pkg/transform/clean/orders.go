package clean

import (
	"go.uber.org/zap"

	"github.com/commercepipe/commercepipe/pkg/table"
	"github.com/commercepipe/commercepipe/pkg/table/validate"
)

// Column sets of the orders table.
var (
	OrdersRequiredColumns = []string{"order_id", "customer_id", "order_date", "subtotal", "total_amount"}
	OrdersNumericColumns  = []string{"subtotal", "discount_percent", "shipping_cost", "tax_amount", "total_amount"}
	OrdersKeyColumns      = []string{"order_id", "customer_id", "order_date"}
	OrdersIDColumns       = []string{"order_id", "customer_id"}
	OrdersDateColumns     = []string{"order_date"}
)

// OrdersCleaner cleans the orders table. Key nulls fail hard; monetary
// columns are filled with means or zeros to keep the financial columns
// consistent, and a missing total_amount is recomputed from its components
// where the subtotal is known.
type OrdersCleaner struct {
	logger *zap.Logger
}

// NewOrdersCleaner creates an orders cleaner.
func NewOrdersCleaner(logger *zap.Logger) *OrdersCleaner {
	return &OrdersCleaner{logger: logger}
}

// Table implements Cleaner.
func (c *OrdersCleaner) Table() string { return "orders" }

// HandleNulls fails with NullConstraint when any key column holds a null,
// then fills the monetary columns per strategy. A key null marks a corrupt
// record that must be surfaced, not silently dropped.
func (c *OrdersCleaner) HandleNulls(t *table.Table) (*table.Table, error) {
	if err := validate.New(t, c.logger).NoNulls(OrdersKeyColumns...); err != nil {
		return nil, err
	}

	// total_amount is deliberately not filled here: ConvertTypes recomputes
	// it from its components once they are typed.
	strategies := []struct {
		column   string
		strategy FillStrategy
	}{
		{"subtotal", FillMean},
		{"discount_percent", FillZero},
		{"shipping_cost", FillZero},
		{"tax_amount", FillZero},
	}

	var err error
	for _, s := range strategies {
		t, err = fillChecked(t, s.column, s.strategy, nil, c.logger)
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

// HandleDuplicates deduplicates by order_id keeping the last occurrence,
// treated as the most recent version of the order.
func (c *OrdersCleaner) HandleDuplicates(t *table.Table) (*table.Table, error) {
	return dedupeKeepLast(t, "order_id", c.logger), nil
}

// ConvertTypes coerces ids, amounts and dates, then recomputes missing
// total_amount values from subtotal, shipping, tax and discount. Rows
// where subtotal itself is absent stay null and are logged as a
// data-quality warning for the validator to judge.
func (c *OrdersCleaner) ConvertTypes(t *table.Table) (*table.Table, error) {
	t = coerceInt(t, OrdersIDColumns, c.logger)
	t = coerceNumeric(t, OrdersNumericColumns, c.logger)
	t = coerceTime(t, OrdersDateColumns, c.logger)

	total, ok := t.Column("total_amount")
	if !ok {
		return t, nil
	}
	subtotal, hasSubtotal := t.Column("subtotal")

	values := make([]interface{}, total.Len())
	recalculated := 0
	missingSubtotal := 0
	for i := 0; i < total.Len(); i++ {
		values[i] = total.Value(i)
		if !total.IsNull(i) {
			continue
		}
		if !hasSubtotal || subtotal.IsNull(i) {
			missingSubtotal++
			continue
		}
		sub, _ := table.AsFloat(subtotal.Value(i))
		shipping := floatOrZero(t.Value(i, "shipping_cost"))
		tax := floatOrZero(t.Value(i, "tax_amount"))
		discount := floatOrZero(t.Value(i, "discount_percent"))
		values[i] = sub + shipping + tax - sub*discount/100
		recalculated++
	}

	if recalculated > 0 {
		out := t.Clone()
		_ = out.SetColumn("total_amount", table.ColumnTypeFloat, values)
		t = out
		c.logger.Info("total_amount recalculated from components",
			zap.Int("rows", recalculated))
	}
	if missingSubtotal > 0 {
		c.logger.Warn("total_amount left null because subtotal is absent",
			zap.Int("rows", missingSubtotal))
	}
	return t, nil
}

// ValidateCleanedData checks the schema, value ranges and order_id
// uniqueness the enrichment stage relies on.
func (c *OrdersCleaner) ValidateCleanedData(t *table.Table) error {
	v := validate.New(t, c.logger)
	if err := v.RequiredColumns(OrdersRequiredColumns); err != nil {
		return err
	}
	if err := v.DataTypes(map[string]table.ColumnType{
		"order_id":     table.ColumnTypeInt,
		"customer_id":  table.ColumnTypeInt,
		"order_date":   table.ColumnTypeTimestamp,
		"subtotal":     table.ColumnTypeFloat,
		"total_amount": table.ColumnTypeFloat,
	}); err != nil {
		return err
	}
	if err := v.NumericRange("subtotal", validate.Float64(0), nil, true); err != nil {
		return err
	}
	if err := v.NumericRange("total_amount", validate.Float64(0), nil, true); err != nil {
		return err
	}
	if t.HasColumn("discount_percent") {
		if err := v.NumericRange("discount_percent", validate.Float64(0), validate.Float64(100), true); err != nil {
			return err
		}
	}
	if t.HasColumn("shipping_cost") {
		if err := v.NumericRange("shipping_cost", validate.Float64(0), nil, true); err != nil {
			return err
		}
	}
	if t.HasColumn("tax_amount") {
		if err := v.NumericRange("tax_amount", validate.Float64(0), nil, true); err != nil {
			return err
		}
	}
	return v.UniqueValues("order_id")
}

func floatOrZero(v interface{}) float64 {
	if f, ok := table.AsFloat(v); ok {
		return f
	}
	return 0
}
