package enrich

import (
	"go.uber.org/zap"

	"github.com/commercepipe/commercepipe/pkg/table"
	"github.com/commercepipe/commercepipe/pkg/table/validate"
	"github.com/commercepipe/commercepipe/pkg/transform/clean"
)

// InventoryEnricher joins the cleaned inventory against products and
// warehouses and flags low-stock and overstock positions.
type InventoryEnricher struct {
	cleaner *clean.InventoryCleaner
	logger  *zap.Logger
}

// NewInventoryEnricher creates an inventory enricher.
func NewInventoryEnricher(logger *zap.Logger) *InventoryEnricher {
	return &InventoryEnricher{cleaner: clean.NewInventoryCleaner(logger), logger: logger}
}

// Enrich cleans the inventory table, joins product and warehouse context
// and derives the stock flags.
func (e *InventoryEnricher) Enrich(inventory, products, warehouses *table.Table) (*table.Table, error) {
	e.logger.Info("inventory enrichment started", zap.Int("rows", inventory.NumRows()))

	cleaned, err := clean.Clean(e.cleaner, inventory, e.logger)
	if err != nil {
		return nil, err
	}
	if err := e.validateProducts(products); err != nil {
		return nil, err
	}
	if err := e.validateWarehouses(warehouses); err != nil {
		return nil, err
	}

	enriched := table.LeftJoin(cleaned, products, "product_id",
		present(products, "product_name", "category_id", "brand_id")...)
	enriched = table.LeftJoin(enriched, warehouses, "warehouse_id",
		present(warehouses, "location", "capacity_units", "current_occupancy")...)
	enriched = e.addStockFlags(enriched)

	e.logger.Info("inventory enrichment completed", zap.Int("rows", enriched.NumRows()))
	return enriched, nil
}

func (e *InventoryEnricher) validateProducts(products *table.Table) error {
	v := validate.New(products, e.logger)
	if err := v.RequiredColumns([]string{"product_id", "product_name", "category_id", "brand_id"}); err != nil {
		return err
	}
	return v.NoNulls("product_id", "product_name")
}

func (e *InventoryEnricher) validateWarehouses(warehouses *table.Table) error {
	v := validate.New(warehouses, e.logger)
	if err := v.RequiredColumns([]string{"warehouse_id", "location", "capacity_units", "current_occupancy"}); err != nil {
		return err
	}
	return v.NoNulls("warehouse_id", "location")
}

// addStockFlags derives is_low_stock (quantity at or below the minimum
// level) and is_overstock (quantity at or above the maximum level). Rows
// where either operand is null are flagged false.
func (e *InventoryEnricher) addStockFlags(t *table.Table) *table.Table {
	out := t.Clone()
	rows := out.NumRows()
	lowStock := make([]interface{}, rows)
	overstock := make([]interface{}, rows)
	for i := 0; i < rows; i++ {
		qty, okQty := table.AsFloat(out.Value(i, "quantity"))
		minLevel, okMin := table.AsFloat(out.Value(i, "min_stock_level"))
		maxLevel, okMax := table.AsFloat(out.Value(i, "max_stock_level"))
		lowStock[i] = okQty && okMin && qty <= minLevel
		overstock[i] = okQty && okMax && qty >= maxLevel
	}
	_ = out.SetColumn("is_low_stock", table.ColumnTypeBool, lowStock)
	_ = out.SetColumn("is_overstock", table.ColumnTypeBool, overstock)
	return out
}
