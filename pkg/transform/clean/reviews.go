package clean

import (
	"go.uber.org/zap"

	"github.com/commercepipe/commercepipe/pkg/table"
	"github.com/commercepipe/commercepipe/pkg/table/validate"
)

// Column sets of the reviews table.
var (
	ReviewsRequiredColumns = []string{"review_id", "product_id", "customer_id", "rating", "created_at"}
	ReviewsNumericColumns  = []string{"rating", "helpful_votes"}
	ReviewsKeyColumns      = []string{"review_id", "product_id", "customer_id", "rating", "created_at"}
	ReviewsDateColumns     = []string{"created_at"}
)

// ReviewsCleaner cleans the reviews table. A review without its keys,
// rating or creation date cannot feed satisfaction metrics, so those nulls
// fail hard; helpful_votes defaults to zero to avoid skewing vote counts.
type ReviewsCleaner struct {
	logger *zap.Logger
}

// NewReviewsCleaner creates a reviews cleaner.
func NewReviewsCleaner(logger *zap.Logger) *ReviewsCleaner {
	return &ReviewsCleaner{logger: logger}
}

// Table implements Cleaner.
func (c *ReviewsCleaner) Table() string { return "reviews" }

// HandleNulls fails with NullConstraint on null keys, rating or creation
// date, then zero-fills helpful_votes.
func (c *ReviewsCleaner) HandleNulls(t *table.Table) (*table.Table, error) {
	if err := validate.New(t, c.logger).NoNulls(ReviewsKeyColumns...); err != nil {
		return nil, err
	}
	return fillChecked(t, "helpful_votes", FillZero, nil, c.logger)
}

// HandleDuplicates deduplicates by review_id keeping the last occurrence.
func (c *ReviewsCleaner) HandleDuplicates(t *table.Table) (*table.Table, error) {
	return dedupeKeepLast(t, "review_id", c.logger), nil
}

// ConvertTypes coerces ratings and votes to numeric and created_at to a
// timestamp for averages and time series.
func (c *ReviewsCleaner) ConvertTypes(t *table.Table) (*table.Table, error) {
	t = coerceNumeric(t, ReviewsNumericColumns, c.logger)
	t = coerceTime(t, ReviewsDateColumns, c.logger)
	return t, nil
}

// ValidateCleanedData checks the columns, the 1..5 rating range,
// non-negative vote counts and review_id uniqueness.
func (c *ReviewsCleaner) ValidateCleanedData(t *table.Table) error {
	v := validate.New(t, c.logger)
	if err := v.RequiredColumns(ReviewsRequiredColumns); err != nil {
		return err
	}
	if err := v.DataTypes(map[string]table.ColumnType{
		"rating":     table.ColumnTypeFloat,
		"created_at": table.ColumnTypeTimestamp,
	}); err != nil {
		return err
	}
	if err := v.NumericRange("rating", validate.Float64(1), validate.Float64(5), true); err != nil {
		return err
	}
	if t.HasColumn("helpful_votes") {
		if err := v.NumericRange("helpful_votes", validate.Float64(0), nil, true); err != nil {
			return err
		}
	}
	return v.UniqueValues("review_id")
}
