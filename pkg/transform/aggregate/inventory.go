package aggregate

import (
	"github.com/commercepipe/commercepipe/pkg/table"
)

// StockHealthSummary reports the total item count and how many positions
// are low-stock or overstocked, each with its share of the total.
func StockHealthSummary(inventory *table.Table) *table.Table {
	total := inventory.NumRows()
	lowStock := countTrue(inventory, "is_low_stock")
	overstock := countTrue(inventory, "is_overstock")

	share := func(n int) float64 {
		if total == 0 {
			return 0
		}
		return float64(n) / float64(total)
	}

	out := table.New("inventory_health")
	_ = out.AddColumn("metric", table.ColumnTypeString, []interface{}{
		"total_items", "low_stock_items", "overstock_items",
	})
	_ = out.AddColumn("value", table.ColumnTypeInt, []interface{}{
		int64(total), int64(lowStock), int64(overstock),
	})
	_ = out.AddColumn("pct_of_total", table.ColumnTypeFloat, []interface{}{
		share(total), share(lowStock), share(overstock),
	})
	return out
}

// LowStockItems lists the low-stock positions with the widest gap below
// their minimum level, biggest gap first, truncated to topN.
func LowStockItems(inventory *table.Table, topN int) *table.Table {
	withGap := inventory.Clone()
	rows := withGap.NumRows()
	gaps := make([]interface{}, rows)
	for i := 0; i < rows; i++ {
		qty, _ := table.AsFloat(withGap.Value(i, "quantity"))
		minLevel, _ := table.AsFloat(withGap.Value(i, "min_stock_level"))
		gap := minLevel - qty
		if gap < 0 {
			gap = 0
		}
		gaps[i] = gap
	}
	_ = withGap.SetColumn("stock_gap", table.ColumnTypeFloat, gaps)

	low := withGap.Filter(func(row int) bool {
		b, ok := table.AsBool(withGap.Value(row, "is_low_stock"))
		return ok && b
	})
	return low.
		Sort(table.SortKey{Column: "stock_gap", Desc: true}).
		Head(topN).
		Select("inventory_id", "product_id", "product_name", "warehouse_id",
			"location", "quantity", "min_stock_level", "stock_gap").
		Renamed("low_stock_items")
}

// WarehouseUtilization sums stocked units per warehouse and divides by the
// declared capacity. Warehouses with no declared or zero capacity get a
// null utilization. Results are sorted ascending by utilization so the
// emptiest warehouses come first.
func WarehouseUtilization(inventory *table.Table) *table.Table {
	aggs := []table.Agg{
		{Column: "quantity", Op: table.AggSum, As: "total_units"},
		{Column: "capacity_units", Op: table.AggFirst},
	}
	if inventory.HasColumn("location") {
		aggs = append(aggs, table.Agg{Column: "location", Op: table.AggFirst})
	}
	perWarehouse := inventory.GroupBy([]string{"warehouse_id"}, aggs...)

	rows := perWarehouse.NumRows()
	utilization := make([]interface{}, rows)
	for i := 0; i < rows; i++ {
		units, _ := table.AsFloat(perWarehouse.Value(i, "total_units"))
		if capacity, ok := table.AsFloat(perWarehouse.Value(i, "capacity_units")); ok && capacity != 0 {
			utilization[i] = units / capacity
		}
	}
	_ = perWarehouse.SetColumn("utilization", table.ColumnTypeFloat, utilization)
	return perWarehouse.
		Sort(table.SortKey{Column: "utilization"}).
		Renamed("warehouse_utilization")
}

func countTrue(t *table.Table, column string) int {
	col, ok := t.Column(column)
	if !ok {
		return 0
	}
	n := 0
	for i := 0; i < col.Len(); i++ {
		if b, ok := table.AsBool(col.Value(i)); ok && b {
			n++
		}
	}
	return n
}
