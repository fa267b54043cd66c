package clean

import (
	"go.uber.org/zap"

	"github.com/commercepipe/commercepipe/pkg/table"
	"github.com/commercepipe/commercepipe/pkg/table/validate"
)

// Column sets of the inventory table.
var (
	InventoryRequiredColumns = []string{"inventory_id", "product_id", "warehouse_id", "quantity", "min_stock_level", "max_stock_level"}
	InventoryNumericColumns  = []string{"quantity", "min_stock_level", "max_stock_level", "current_occupancy"}
	InventoryKeyColumns      = []string{"inventory_id", "product_id", "warehouse_id"}
	InventoryDateColumns     = []string{"last_restock_date"}
)

// InventoryCleaner cleans the inventory table. Stock counts and thresholds
// default to zero when absent so stock health can always be evaluated.
type InventoryCleaner struct {
	logger *zap.Logger
}

// NewInventoryCleaner creates an inventory cleaner.
func NewInventoryCleaner(logger *zap.Logger) *InventoryCleaner {
	return &InventoryCleaner{logger: logger}
}

// Table implements Cleaner.
func (c *InventoryCleaner) Table() string { return "inventory" }

// HandleNulls fails with NullConstraint on null inventory, product or
// warehouse keys, then zero-fills quantities and stock thresholds.
func (c *InventoryCleaner) HandleNulls(t *table.Table) (*table.Table, error) {
	if err := validate.New(t, c.logger).NoNulls(InventoryKeyColumns...); err != nil {
		return nil, err
	}

	var err error
	for _, column := range []string{"quantity", "min_stock_level", "max_stock_level"} {
		t, err = fillChecked(t, column, FillZero, nil, c.logger)
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

// HandleDuplicates deduplicates by inventory_id keeping the last
// occurrence, which reflects the most recent stock reading.
func (c *InventoryCleaner) HandleDuplicates(t *table.Table) (*table.Table, error) {
	return dedupeKeepLast(t, "inventory_id", c.logger), nil
}

// ConvertTypes coerces stock metrics and occupancy to numeric and the
// restock date to a timestamp.
func (c *InventoryCleaner) ConvertTypes(t *table.Table) (*table.Table, error) {
	t = coerceNumeric(t, InventoryNumericColumns, c.logger)
	t = coerceTime(t, InventoryDateColumns, c.logger)
	return t, nil
}

// ValidateCleanedData checks the columns, non-negative stock ranges and
// inventory_id uniqueness the enrichment stage relies on.
func (c *InventoryCleaner) ValidateCleanedData(t *table.Table) error {
	v := validate.New(t, c.logger)
	if err := v.RequiredColumns(InventoryRequiredColumns); err != nil {
		return err
	}
	if err := v.DataTypes(map[string]table.ColumnType{
		"quantity":        table.ColumnTypeFloat,
		"min_stock_level": table.ColumnTypeFloat,
		"max_stock_level": table.ColumnTypeFloat,
	}); err != nil {
		return err
	}
	for _, column := range []string{"quantity", "min_stock_level", "max_stock_level"} {
		if err := v.NumericRange(column, validate.Float64(0), nil, true); err != nil {
			return err
		}
	}
	return v.UniqueValues("inventory_id")
}
