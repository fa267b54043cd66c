package aggregate

import (
	"github.com/commercepipe/commercepipe/pkg/table"
)

// TopProductsByQuantity ranks products by units sold. A nil products table
// skips the name lookup.
func TopProductsByQuantity(orderItems, products *table.Table, topN int) *table.Table {
	return topProducts(orderItems, products, topN, "total_units").
		Renamed("top_products_by_quantity")
}

// TopProductsByRevenue ranks products by item revenue. A nil products table
// skips the name lookup.
func TopProductsByRevenue(orderItems, products *table.Table, topN int) *table.Table {
	return topProducts(orderItems, products, topN, "total_revenue").
		Renamed("top_products_by_revenue")
}

func topProducts(orderItems, products *table.Table, topN int, metric string) *table.Table {
	perProduct := orderItems.GroupBy([]string{"product_id"},
		table.Agg{Column: "quantity", Op: table.AggSum, As: "total_units"},
		table.Agg{Column: "subtotal", Op: table.AggSum, As: "total_revenue"},
	)
	if products != nil && products.HasColumn("product_id") && products.HasColumn("product_name") {
		perProduct = table.LeftJoin(perProduct, products, "product_id", "product_name")
	}
	return perProduct.
		Sort(table.SortKey{Column: metric, Desc: true}).
		Head(topN)
}
