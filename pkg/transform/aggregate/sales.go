package aggregate

import (
	"github.com/commercepipe/commercepipe/pkg/table"
)

// MonthlySales sums revenue and order counts per calendar month, oldest
// month first. The order_month period is derived from order_date when the
// enricher has not already attached it.
func MonthlySales(orders *table.Table) *table.Table {
	orders = withMonthPeriod(orders, "order_month", "order_date")
	return orders.
		GroupBy([]string{"order_month"},
			table.Agg{Column: "total_amount", Op: table.AggSum, As: "total_revenue"},
			table.Agg{Column: "order_id", Op: table.AggCount, As: "total_orders"},
		).
		Sort(table.SortKey{Column: "order_month"}).
		Renamed("monthly_sales")
}

// PromotionUsageRate is the fraction of all orders placed with a
// promotion; 0.0 for an empty table.
func PromotionUsageRate(orders *table.Table) float64 {
	return trueShare(orders, "used_promotion")
}
