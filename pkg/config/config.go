// Package config defines the pipeline configuration: source and output
// directories, the table-to-file mapping, aggregation parameters and the
// output format selection. Configurations load from YAML with ${ENV}
// substitution and carry sensible defaults so a bare NewPipelineConfig()
// runs out of the box.
package config

import (
	"fmt"
	"strings"
)

// Default aggregation parameters.
const (
	DefaultTopSpendersN          = 5
	DefaultTopSpendersPercentile = 0.8
	DefaultRecurringMinOrders    = 2
	DefaultTopProductsN          = 10
	DefaultLowStockItemsN        = 20
	DefaultMinReviewsPerProduct  = 3
	DefaultTopReviewedProductsN  = 20
)

// PipelineConfig is the root configuration for a pipeline run.
type PipelineConfig struct {
	// Paths locates the data directories
	Paths PathsConfig `yaml:"paths" json:"paths"`

	// Sources maps logical table names to source file stems
	Sources map[string]string `yaml:"sources" json:"sources"`

	// Aggregation parameterizes the business aggregators
	Aggregation AggregationConfig `yaml:"aggregation" json:"aggregation"`

	// Output selects formats and compression for persisted tables
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configures the structured logger
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// PathsConfig locates the data directories used by a run.
type PathsConfig struct {
	// RawDir holds the extracted source CSV files
	RawDir string `yaml:"raw_dir" json:"raw_dir"`
	// ProcessedDir receives the enriched datasets
	ProcessedDir string `yaml:"processed_dir" json:"processed_dir"`
	// OutputDir receives the aggregated result tables
	OutputDir string `yaml:"output_dir" json:"output_dir"`
	// LogsDir receives log files when file output is enabled
	LogsDir string `yaml:"logs_dir" json:"logs_dir"`
}

// AggregationConfig parameterizes the business aggregators.
type AggregationConfig struct {
	// TopSpendersN truncates the top spenders ranking
	TopSpendersN int `yaml:"top_spenders_n" json:"top_spenders_n"`
	// TopSpendersPercentile narrows top spenders to this spend quantile; 0 disables
	TopSpendersPercentile float64 `yaml:"top_spenders_percentile" json:"top_spenders_percentile"`
	// RecurringMinOrders is the order count at which a customer counts as recurring
	RecurringMinOrders int `yaml:"recurring_min_orders" json:"recurring_min_orders"`
	// TopProductsN truncates the product rankings
	TopProductsN int `yaml:"top_products_n" json:"top_products_n"`
	// LowStockItemsN truncates the low stock listing
	LowStockItemsN int `yaml:"low_stock_items_n" json:"low_stock_items_n"`
	// MinReviewsPerProduct excludes thinly reviewed products from the rating ranking
	MinReviewsPerProduct int `yaml:"min_reviews_per_product" json:"min_reviews_per_product"`
	// TopReviewedProductsN truncates the rating ranking
	TopReviewedProductsN int `yaml:"top_reviewed_products_n" json:"top_reviewed_products_n"`
}

// OutputConfig selects the persisted formats.
type OutputConfig struct {
	// Formats lists the sink formats: csv, json, arrow
	Formats []string `yaml:"formats" json:"formats"`
	// Compression applies to CSV output: none, gzip, zstd, snappy, lz4
	Compression string `yaml:"compression" json:"compression"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is the minimum level: debug, info, warn, error
	Level string `yaml:"level" json:"level"`
	// Development switches to the human-readable console encoder
	Development bool `yaml:"development" json:"development"`
	// Encoding overrides the encoder: json or console
	Encoding string `yaml:"encoding" json:"encoding"`
}

// sourceTables maps each logical table to its default file stem.
var sourceTables = map[string]string{
	"orders":      "ecommerce_orders",
	"order_items": "ecommerce_order_items",
	"customers":   "ecommerce_customers",
	"promotions":  "ecommerce_promotions",
	"products":    "ecommerce_products",
	"categories":  "ecommerce_categories",
	"brands":      "ecommerce_brands",
	"reviews":     "ecommerce_reviews",
	"inventory":   "ecommerce_inventory",
	"warehouses":  "ecommerce_warehouses",
}

// NewPipelineConfig returns a configuration with all defaults applied.
func NewPipelineConfig() *PipelineConfig {
	sources := make(map[string]string, len(sourceTables))
	for name, stem := range sourceTables {
		sources[name] = stem
	}
	return &PipelineConfig{
		Paths: PathsConfig{
			RawDir:       "data/raw",
			ProcessedDir: "data/processed",
			OutputDir:    "data/output",
			LogsDir:      "logs",
		},
		Sources: sources,
		Aggregation: AggregationConfig{
			TopSpendersN:          DefaultTopSpendersN,
			TopSpendersPercentile: DefaultTopSpendersPercentile,
			RecurringMinOrders:    DefaultRecurringMinOrders,
			TopProductsN:          DefaultTopProductsN,
			LowStockItemsN:        DefaultLowStockItemsN,
			MinReviewsPerProduct:  DefaultMinReviewsPerProduct,
			TopReviewedProductsN:  DefaultTopReviewedProductsN,
		},
		Output: OutputConfig{
			Formats:     []string{"csv", "json", "arrow"},
			Compression: "none",
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *PipelineConfig) Validate() error {
	if c.Paths.RawDir == "" {
		return fmt.Errorf("paths.raw_dir is required")
	}
	if c.Paths.ProcessedDir == "" {
		return fmt.Errorf("paths.processed_dir is required")
	}
	if c.Paths.OutputDir == "" {
		return fmt.Errorf("paths.output_dir is required")
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("sources must map at least one table")
	}
	if c.Aggregation.TopSpendersPercentile < 0 || c.Aggregation.TopSpendersPercentile > 1 {
		return fmt.Errorf("aggregation.top_spenders_percentile must be in [0, 1], got %v",
			c.Aggregation.TopSpendersPercentile)
	}
	for _, field := range []struct {
		name  string
		value int
	}{
		{"top_spenders_n", c.Aggregation.TopSpendersN},
		{"recurring_min_orders", c.Aggregation.RecurringMinOrders},
		{"top_products_n", c.Aggregation.TopProductsN},
		{"low_stock_items_n", c.Aggregation.LowStockItemsN},
		{"min_reviews_per_product", c.Aggregation.MinReviewsPerProduct},
		{"top_reviewed_products_n", c.Aggregation.TopReviewedProductsN},
	} {
		if field.value < 1 {
			return fmt.Errorf("aggregation.%s must be positive, got %d", field.name, field.value)
		}
	}
	if len(c.Output.Formats) == 0 {
		return fmt.Errorf("output.formats must list at least one format")
	}
	for _, format := range c.Output.Formats {
		switch strings.ToLower(format) {
		case "csv", "json", "arrow":
		default:
			return fmt.Errorf("unsupported output format %q", format)
		}
	}
	return nil
}
