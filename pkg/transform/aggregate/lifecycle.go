package aggregate

import (
	"strings"

	"github.com/commercepipe/commercepipe/pkg/table"
)

// inProgressStatuses are the order states that count toward the backlog.
var inProgressStatuses = map[string]bool{
	"pending":    true,
	"processing": true,
	"shipped":    true,
}

// StatusFunnel counts orders per status and each status's share of the
// whole table, biggest status first.
func StatusFunnel(orders *table.Table) *table.Table {
	funnel := orders.GroupBy([]string{"status"},
		table.Agg{Column: "order_id", Op: table.AggCount, As: "order_count"},
	)
	total := float64(orders.NumRows())
	shares := make([]interface{}, funnel.NumRows())
	for i := range shares {
		count, _ := table.AsFloat(funnel.Value(i, "order_count"))
		if total == 0 {
			shares[i] = 0.0
		} else {
			shares[i] = count / total
		}
	}
	_ = funnel.SetColumn("share", table.ColumnTypeFloat, shares)
	return funnel.
		Sort(table.SortKey{Column: "order_count", Desc: true}).
		Renamed("status_funnel")
}

// CancellationRate is the fraction of all orders whose status is
// "cancelled", compared case-insensitively; 0.0 for an empty table.
func CancellationRate(orders *table.Table) float64 {
	return statusRate(orders, "cancelled")
}

// DeliveryRate is the fraction of all orders whose status is "delivered",
// compared case-insensitively; 0.0 for an empty table.
func DeliveryRate(orders *table.Table) float64 {
	return statusRate(orders, "delivered")
}

func statusRate(orders *table.Table, status string) float64 {
	col, ok := orders.Column("status")
	if !ok || orders.NumRows() == 0 {
		return 0
	}
	hits := 0
	for i := 0; i < col.Len(); i++ {
		if s, ok := table.AsString(col.Value(i)); ok && strings.EqualFold(s, status) {
			hits++
		}
	}
	return float64(hits) / float64(orders.NumRows())
}

// InProgressBacklog sums order counts and value per month for orders still
// moving through fulfillment (pending, processing or shipped), oldest
// month first.
func InProgressBacklog(orders *table.Table) *table.Table {
	orders = withMonthPeriod(orders, "order_month", "order_date")
	backlog := orders.Filter(func(row int) bool {
		s, ok := table.AsString(orders.Value(row, "status"))
		return ok && inProgressStatuses[strings.ToLower(s)]
	})
	return backlog.
		GroupBy([]string{"order_month"},
			table.Agg{Column: "order_id", Op: table.AggCount, As: "backlog_orders"},
			table.Agg{Column: "total_amount", Op: table.AggSum, As: "backlog_value"},
		).
		Sort(table.SortKey{Column: "order_month"}).
		Renamed("backlog_in_progress")
}
