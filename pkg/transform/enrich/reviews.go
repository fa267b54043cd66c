package enrich

import (
	"go.uber.org/zap"

	"github.com/commercepipe/commercepipe/pkg/table"
	"github.com/commercepipe/commercepipe/pkg/table/validate"
	"github.com/commercepipe/commercepipe/pkg/transform/clean"
)

// Rating thresholds for sentiment flags. Ratings between the two are
// neutral and carry neither flag.
const (
	positiveRatingMin = 4.0
	negativeRatingMax = 2.0
)

// ReviewsEnricher joins the cleaned reviews against products and customers
// and derives the review period, comment length and sentiment flags.
type ReviewsEnricher struct {
	cleaner *clean.ReviewsCleaner
	logger  *zap.Logger
}

// NewReviewsEnricher creates a reviews enricher.
func NewReviewsEnricher(logger *zap.Logger) *ReviewsEnricher {
	return &ReviewsEnricher{cleaner: clean.NewReviewsCleaner(logger), logger: logger}
}

// Enrich cleans the reviews table, joins product and customer context and
// derives the analytical columns.
func (e *ReviewsEnricher) Enrich(reviews, products, customers *table.Table) (*table.Table, error) {
	e.logger.Info("reviews enrichment started", zap.Int("rows", reviews.NumRows()))

	cleaned, err := clean.Clean(e.cleaner, reviews, e.logger)
	if err != nil {
		return nil, err
	}
	if err := validate.New(products, e.logger).RequiredColumns([]string{"product_id", "product_name"}); err != nil {
		return nil, err
	}
	if err := validate.New(customers, e.logger).RequiredColumns([]string{"customer_id", "segment"}); err != nil {
		return nil, err
	}

	enriched := table.LeftJoin(cleaned, products, "product_id",
		present(products, "product_name", "category_id", "brand_id")...)
	enriched = table.LeftJoin(enriched, customers, "customer_id",
		present(customers, "segment", "city", "country")...)
	enriched = e.addDerivedColumns(enriched)

	e.logger.Info("reviews enrichment completed", zap.Int("rows", enriched.NumRows()))
	return enriched, nil
}

func (e *ReviewsEnricher) addDerivedColumns(t *table.Table) *table.Table {
	out := t.Clone()
	rows := out.NumRows()

	if created, ok := out.Column("created_at"); ok {
		months := make([]interface{}, rows)
		for i := 0; i < rows; i++ {
			if ts, ok := table.AsTime(created.Value(i)); ok {
				months[i] = table.MonthOf(ts)
			}
		}
		_ = out.SetColumn("review_month", table.ColumnTypePeriod, months)
	}

	lengths := make([]interface{}, rows)
	comments, hasComments := out.Column("comment")
	for i := 0; i < rows; i++ {
		length := int64(0)
		if hasComments && !comments.IsNull(i) {
			if s, ok := table.AsString(comments.Value(i)); ok {
				length = int64(len(s))
			}
		}
		lengths[i] = length
	}
	_ = out.SetColumn("comment_length", table.ColumnTypeInt, lengths)

	if ratings, ok := out.Column("rating"); ok {
		positive := make([]interface{}, rows)
		negative := make([]interface{}, rows)
		for i := 0; i < rows; i++ {
			rating, okRating := table.AsFloat(ratings.Value(i))
			positive[i] = okRating && rating >= positiveRatingMin
			negative[i] = okRating && rating <= negativeRatingMax
		}
		_ = out.SetColumn("is_positive", table.ColumnTypeBool, positive)
		_ = out.SetColumn("is_negative", table.ColumnTypeBool, negative)
	}
	return out
}
