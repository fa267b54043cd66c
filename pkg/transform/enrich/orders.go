// Package enrich provides the per-table enrichers: they validate the
// reference tables, left-join them onto the cleaned primary table (every
// primary row survives an unmatched lookup) and compute the derived
// columns the aggregators consume. Joins run before derived-column
// computation because derived columns may depend on joined fields.
package enrich

import (
	"go.uber.org/zap"

	"github.com/commercepipe/commercepipe/pkg/table"
	"github.com/commercepipe/commercepipe/pkg/table/validate"
	"github.com/commercepipe/commercepipe/pkg/transform/clean"
)

// highDiscountThreshold is the discount_percent at or above which an order
// counts as high-discount.
const highDiscountThreshold = 20.0

// OrdersInput carries the orders table and its reference tables.
// Promotions, Products, Categories and Brands are optional; the others are
// required.
type OrdersInput struct {
	Orders     *table.Table
	Customers  *table.Table
	Promotions *table.Table
	OrderItems *table.Table
	Products   *table.Table
	Categories *table.Table
	Brands     *table.Table
}

// OrdersEnricher joins the cleaned orders against customers, promotions
// and order items and derives the analytical columns (item counts, period
// buckets, promotion and shipping flags).
type OrdersEnricher struct {
	cleaner *clean.OrdersCleaner
	logger  *zap.Logger
}

// NewOrdersEnricher creates an orders enricher.
func NewOrdersEnricher(logger *zap.Logger) *OrdersEnricher {
	return &OrdersEnricher{cleaner: clean.NewOrdersCleaner(logger), logger: logger}
}

// Enrich runs the orders enrichment pipeline and returns a table ready for
// aggregation.
func (e *OrdersEnricher) Enrich(in OrdersInput) (*table.Table, error) {
	e.logger.Info("orders enrichment started", zap.Int("rows", in.Orders.NumRows()))

	orders, err := e.validateAndCleanOrders(in.Orders)
	if err != nil {
		return nil, err
	}
	customers, err := e.validateCustomers(in.Customers)
	if err != nil {
		return nil, err
	}
	orderItems, err := e.validateOrderItems(in.OrderItems)
	if err != nil {
		return nil, err
	}
	promotions, err := e.validatePromotions(in.Promotions)
	if err != nil {
		return nil, err
	}

	enriched := e.joinCustomerData(orders, customers)
	if promotions != nil {
		enriched = e.joinPromotionData(enriched, promotions)
	}
	enriched = e.calculateOrderTotals(enriched, orderItems)
	enriched = e.addDerivedColumns(enriched)

	if in.Products != nil {
		enriched = e.attachProductSnapshot(enriched, orderItems, in.Products, in.Categories, in.Brands)
	}

	e.logger.Info("orders enrichment completed", zap.Int("rows", enriched.NumRows()))
	return enriched, nil
}

func (e *OrdersEnricher) validateAndCleanOrders(orders *table.Table) (*table.Table, error) {
	if err := validate.New(orders, e.logger).RequiredColumns(clean.OrdersRequiredColumns); err != nil {
		return nil, err
	}
	return clean.Clean(e.cleaner, orders, e.logger)
}

func (e *OrdersEnricher) validateCustomers(customers *table.Table) (*table.Table, error) {
	if err := validate.New(customers, e.logger).RequiredColumns(
		[]string{"customer_id", "segment", "registration_date"}); err != nil {
		return nil, err
	}
	return coerceTimeColumns(customers, "registration_date"), nil
}

func (e *OrdersEnricher) validateOrderItems(items *table.Table) (*table.Table, error) {
	if err := validate.New(items, e.logger).RequiredColumns(
		[]string{"order_id", "product_id", "quantity", "unit_price", "subtotal"}); err != nil {
		return nil, err
	}
	return coerceFloatColumns(items, "quantity", "unit_price", "subtotal"), nil
}

func (e *OrdersEnricher) validatePromotions(promotions *table.Table) (*table.Table, error) {
	if promotions == nil {
		return nil, nil
	}
	if err := validate.New(promotions, e.logger).RequiredColumns(
		[]string{"promotion_id", "promotion_type", "discount_value", "is_active"}); err != nil {
		return nil, err
	}
	return coerceTimeColumns(promotions, "start_date", "end_date"), nil
}

func (e *OrdersEnricher) joinCustomerData(orders, customers *table.Table) *table.Table {
	return table.LeftJoin(orders, customers, "customer_id",
		present(customers, "segment", "registration_date", "city", "country", "email")...)
}

func (e *OrdersEnricher) joinPromotionData(orders, promotions *table.Table) *table.Table {
	return table.LeftJoin(orders, promotions, "promotion_id",
		present(promotions, "promotion_type", "discount_value", "start_date", "end_date", "is_active")...)
}

// calculateOrderTotals folds the order items into per-order item counts
// and subtotals, backfills a missing total_amount from the items subtotal
// and derives the average item price (zero, not a division error, when an
// order has no items).
func (e *OrdersEnricher) calculateOrderTotals(orders, orderItems *table.Table) *table.Table {
	perOrder := orderItems.GroupBy([]string{"order_id"},
		table.Agg{Column: "quantity", Op: table.AggSum, As: "items_count"},
		table.Agg{Column: "subtotal", Op: table.AggSum, As: "items_subtotal"},
	)
	enriched := table.LeftJoin(orders, perOrder, "order_id", "items_count", "items_subtotal")

	enriched = clean.Fill(enriched, "items_subtotal", clean.FillZero, nil)

	rows := enriched.NumRows()
	totals := make([]interface{}, rows)
	avgPrices := make([]interface{}, rows)
	for i := 0; i < rows; i++ {
		total, hasTotal := table.AsFloat(enriched.Value(i, "total_amount"))
		if !hasTotal {
			total, _ = table.AsFloat(enriched.Value(i, "items_subtotal"))
		}
		totals[i] = total

		if count, ok := table.AsFloat(enriched.Value(i, "items_count")); ok && count != 0 {
			avgPrices[i] = total / count
		} else {
			avgPrices[i] = 0.0
		}
	}
	_ = enriched.SetColumn("total_amount", table.ColumnTypeFloat, totals)
	_ = enriched.SetColumn("avg_item_price", table.ColumnTypeFloat, avgPrices)
	return enriched
}

// addDerivedColumns computes the period buckets and flags. It must run
// after all joins: used_promotion reads promotion_id as joined orders
// carry it, and a non-null promotion_id is the canonical definition of a
// promoted order.
func (e *OrdersEnricher) addDerivedColumns(t *table.Table) *table.Table {
	out := t.Clone()
	rows := out.NumRows()

	if dates, ok := out.Column("order_date"); ok {
		months := make([]interface{}, rows)
		weeks := make([]interface{}, rows)
		for i := 0; i < rows; i++ {
			if ts, ok := table.AsTime(dates.Value(i)); ok {
				months[i] = table.MonthOf(ts)
				weeks[i] = table.WeekOf(ts)
			}
		}
		_ = out.SetColumn("order_month", table.ColumnTypePeriod, months)
		_ = out.SetColumn("order_week", table.ColumnTypePeriod, weeks)
	}

	usedPromotion := make([]interface{}, rows)
	promoCol, hasPromo := out.Column("promotion_id")
	for i := 0; i < rows; i++ {
		usedPromotion[i] = hasPromo && !promoCol.IsNull(i)
	}
	_ = out.SetColumn("used_promotion", table.ColumnTypeBool, usedPromotion)

	if shipping, ok := out.Column("shipping_cost"); ok {
		flags := make([]interface{}, rows)
		for i := 0; i < rows; i++ {
			cost, _ := table.AsFloat(shipping.Value(i))
			flags[i] = cost == 0
		}
		_ = out.SetColumn("is_free_shipping", table.ColumnTypeBool, flags)
	}

	if discount, ok := out.Column("discount_percent"); ok {
		flags := make([]interface{}, rows)
		for i := 0; i < rows; i++ {
			pct, _ := table.AsFloat(discount.Value(i))
			flags[i] = pct >= highDiscountThreshold
		}
		_ = out.SetColumn("is_high_discount", table.ColumnTypeBool, flags)
	}
	return out
}

// attachProductSnapshot summarizes the products behind each order's items:
// mean cost and list price for margin sensitivity, plus the first seen
// category, brand and product name.
func (e *OrdersEnricher) attachProductSnapshot(orders, orderItems, products, categories, brands *table.Table) *table.Table {
	snapshot := products.Select(present(products,
		"product_id", "category_id", "brand_id", "cost", "price", "product_name")...)

	if categories != nil && snapshot.HasColumn("category_id") &&
		categories.HasColumn("category_id") && categories.HasColumn("category_name") {
		snapshot = table.LeftJoin(snapshot, categories, "category_id", "category_name")
	}
	if brands != nil && snapshot.HasColumn("brand_id") &&
		brands.HasColumn("brand_id") && brands.HasColumn("brand_name") {
		snapshot = table.LeftJoin(snapshot, brands, "brand_id", "brand_name")
	}

	itemsWithProducts := table.LeftJoin(orderItems, snapshot, "product_id")

	aggs := []table.Agg{
		{Column: "cost", Op: table.AggMean, As: "avg_cost"},
		{Column: "price", Op: table.AggMean, As: "avg_list_price"},
		{Column: "category_id", Op: table.AggFirst},
		{Column: "brand_id", Op: table.AggFirst},
	}
	for _, name := range []string{"category_name", "brand_name", "product_name"} {
		if itemsWithProducts.HasColumn(name) {
			aggs = append(aggs, table.Agg{Column: name, Op: table.AggFirst})
		}
	}
	perOrder := itemsWithProducts.GroupBy([]string{"order_id"}, aggs...)
	return table.LeftJoin(orders, perOrder, "order_id")
}

// present filters names down to the columns t actually has.
func present(t *table.Table, names ...string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if t.HasColumn(name) {
			out = append(out, name)
		}
	}
	return out
}

// coerceTimeColumns returns a copy of t with the named columns coerced to
// timestamps; unparseable values become null. Absent columns are skipped.
func coerceTimeColumns(t *table.Table, columns ...string) *table.Table {
	out := t.Clone()
	for _, name := range columns {
		col, ok := out.Column(name)
		if !ok {
			continue
		}
		values := make([]interface{}, col.Len())
		for i := 0; i < col.Len(); i++ {
			if ts, ok := table.AsTime(col.Value(i)); ok {
				values[i] = ts
			}
		}
		_ = out.SetColumn(name, table.ColumnTypeTimestamp, values)
	}
	return out
}

// coerceFloatColumns returns a copy of t with the named columns coerced to
// floats; unparseable values become null. Absent columns are skipped.
func coerceFloatColumns(t *table.Table, columns ...string) *table.Table {
	out := t.Clone()
	for _, name := range columns {
		col, ok := out.Column(name)
		if !ok {
			continue
		}
		values := make([]interface{}, col.Len())
		for i := 0; i < col.Len(); i++ {
			if f, ok := table.AsFloat(col.Value(i)); ok {
				values[i] = f
			}
		}
		_ = out.SetColumn(name, table.ColumnTypeFloat, values)
	}
	return out
}
