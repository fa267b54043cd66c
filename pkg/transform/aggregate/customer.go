package aggregate

import (
	"github.com/commercepipe/commercepipe/pkg/table"
)

// TopSpenders ranks customers by lifetime spend. When percentile is non-nil
// the candidate set is first narrowed to customers whose total_spent is at
// or above that quantile of the spend distribution, and only then truncated
// to the topN biggest spenders.
func TopSpenders(orders *table.Table, topN int, percentile *float64) *table.Table {
	aggs := []table.Agg{
		{Column: "order_id", Op: table.AggCount, As: "total_orders"},
		{Column: "total_amount", Op: table.AggSum, As: "total_spent"},
		{Column: "order_date", Op: table.AggMax, As: "last_order_date"},
	}
	if orders.HasColumn("email") {
		aggs = append(aggs, table.Agg{Column: "email", Op: table.AggFirst})
	}
	spenders := orders.GroupBy([]string{"customer_id"}, aggs...)

	rows := spenders.NumRows()
	tickets := make([]interface{}, rows)
	for i := 0; i < rows; i++ {
		spent, _ := table.AsFloat(spenders.Value(i, "total_spent"))
		if count, ok := table.AsFloat(spenders.Value(i, "total_orders")); ok && count != 0 {
			tickets[i] = spent / count
		} else {
			tickets[i] = 0.0
		}
	}
	_ = spenders.SetColumn("avg_ticket", table.ColumnTypeFloat, tickets)

	if percentile != nil {
		threshold := quantile(columnFloats(spenders, "total_spent"), *percentile)
		spenders = spenders.Filter(func(row int) bool {
			spent, ok := table.AsFloat(spenders.Value(row, "total_spent"))
			return ok && spent >= threshold
		})
	}

	return spenders.
		Sort(table.SortKey{Column: "total_spent", Desc: true}).
		Head(topN).
		Renamed("top_spenders")
}

// RecurringCustomers keeps customers with at least minOrders orders, most
// frequent first. Equal order counts break on total spend. The customer's
// email rides along for follow-up when the orders carry one.
func RecurringCustomers(orders *table.Table, minOrders int) *table.Table {
	aggs := []table.Agg{
		{Column: "order_id", Op: table.AggCount, As: "total_orders"},
		{Column: "total_amount", Op: table.AggSum, As: "total_spent"},
	}
	if orders.HasColumn("email") {
		aggs = append(aggs, table.Agg{Column: "email", Op: table.AggFirst})
	}
	customers := orders.GroupBy([]string{"customer_id"}, aggs...)
	customers = customers.Filter(func(row int) bool {
		count, ok := table.AsFloat(customers.Value(row, "total_orders"))
		return ok && count >= float64(minOrders)
	})
	return customers.
		Sort(
			table.SortKey{Column: "total_orders", Desc: true},
			table.SortKey{Column: "total_spent", Desc: true},
		).
		Renamed("recurring_customers")
}

// AverageTicketOverall is the mean order value across every order; 0.0 for
// an empty or all-null table.
func AverageTicketOverall(orders *table.Table) float64 {
	return columnMean(orders, "total_amount")
}
