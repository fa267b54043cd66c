package aggregate

import (
	"github.com/commercepipe/commercepipe/pkg/table"
)

// RatingOverview reduces the reviews table to a single row of headline
// metrics: review count, mean rating and the positive/negative shares.
// An empty input yields the same columns with no rows.
func RatingOverview(reviews *table.Table) *table.Table {
	out := table.New("reviews_overview")
	if reviews.NumRows() == 0 {
		_ = out.AddColumn("review_count", table.ColumnTypeInt, nil)
		_ = out.AddColumn("average_rating", table.ColumnTypeFloat, nil)
		_ = out.AddColumn("positive_rate", table.ColumnTypeFloat, nil)
		_ = out.AddColumn("negative_rate", table.ColumnTypeFloat, nil)
		return out
	}
	_ = out.AddColumn("review_count", table.ColumnTypeInt,
		[]interface{}{int64(reviews.NumRows())})
	_ = out.AddColumn("average_rating", table.ColumnTypeFloat,
		[]interface{}{columnMean(reviews, "rating")})
	_ = out.AddColumn("positive_rate", table.ColumnTypeFloat,
		[]interface{}{trueShare(reviews, "is_positive")})
	_ = out.AddColumn("negative_rate", table.ColumnTypeFloat,
		[]interface{}{trueShare(reviews, "is_negative")})
	return out
}

// RatingByProduct ranks products by mean rating, keeping only products
// with at least minReviews reviews and truncating to topN. Ties on rating
// break on review count, so the more-reviewed product ranks first.
func RatingByProduct(reviews *table.Table, minReviews, topN int) *table.Table {
	aggs := []table.Agg{
		{Column: "review_id", Op: table.AggCount, As: "review_count"},
		{Column: "rating", Op: table.AggMean, As: "average_rating"},
		{Column: "is_positive", Op: table.AggMean, As: "positive_rate"},
		{Column: "is_negative", Op: table.AggMean, As: "negative_rate"},
	}
	if reviews.HasColumn("product_name") {
		aggs = append(aggs, table.Agg{Column: "product_name", Op: table.AggFirst})
	}
	perProduct := reviews.GroupBy([]string{"product_id"}, aggs...)

	perProduct = perProduct.Filter(func(row int) bool {
		count, ok := table.AsFloat(perProduct.Value(row, "review_count"))
		return ok && count >= float64(minReviews)
	})
	return perProduct.
		Sort(
			table.SortKey{Column: "average_rating", Desc: true},
			table.SortKey{Column: "review_count", Desc: true},
		).
		Head(topN).
		Renamed("reviews_by_product")
}

// MonthlyReviewVolume counts reviews and averages ratings per calendar
// month, oldest month first. The review_month period is derived from
// created_at when the enricher has not already attached it.
func MonthlyReviewVolume(reviews *table.Table) *table.Table {
	reviews = withMonthPeriod(reviews, "review_month", "created_at")
	return reviews.
		GroupBy([]string{"review_month"},
			table.Agg{Column: "review_id", Op: table.AggCount, As: "review_count"},
			table.Agg{Column: "rating", Op: table.AggMean, As: "average_rating"},
		).
		Sort(table.SortKey{Column: "review_month"}).
		Renamed("reviews_monthly")
}
