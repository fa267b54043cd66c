package pipeline

import (
	"go.uber.org/zap"

	"github.com/commercepipe/commercepipe/pkg/compression"
	"github.com/commercepipe/commercepipe/pkg/config"
	"github.com/commercepipe/commercepipe/pkg/connector/destinations"
	csvsource "github.com/commercepipe/commercepipe/pkg/connector/sources/csv"
	"github.com/commercepipe/commercepipe/pkg/etlerrors"
	"github.com/commercepipe/commercepipe/pkg/metrics"
	"github.com/commercepipe/commercepipe/pkg/table"
	"github.com/commercepipe/commercepipe/pkg/transform/aggregate"
	"github.com/commercepipe/commercepipe/pkg/transform/enrich"
)

// optionalSources are reference tables a run can proceed without; a failed
// extract degrades the enrichment instead of aborting the run.
var optionalSources = map[string]bool{
	"promotions": true,
	"categories": true,
	"brands":     true,
}

// Pipeline sequences a full batch run over the configured source tables.
type Pipeline struct {
	cfg    *config.PipelineConfig
	logger *zap.Logger
}

// New creates a pipeline for the given configuration.
func New(cfg *config.PipelineConfig, logger *zap.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, logger: logger}
}

// Run executes Extract, Clean/Enrich, Aggregate and Load in order and
// returns the first stage error. The run summary is logged either way.
func (p *Pipeline) Run() error {
	rc := NewRunContext(p.logger)
	defer rc.Summary()

	raw, err := p.extract(rc)
	if err != nil {
		return err
	}

	enriched, err := p.enrichAll(rc, raw)
	if err != nil {
		return err
	}

	results := p.aggregateAll(rc, raw, enriched)

	return p.load(rc, enriched, results)
}

// extract reads every configured source table. Optional reference tables
// that fail to extract come back nil.
func (p *Pipeline) extract(rc *RunContext) (map[string]*table.Table, error) {
	extractor, err := csvsource.NewExtractor(p.cfg.Paths.RawDir, rc.Logger())
	if err != nil {
		return nil, err
	}

	raw := make(map[string]*table.Table, len(p.cfg.Sources))
	for name, stem := range p.cfg.Sources {
		t, err := runStage(rc, "extract", name, func() (*table.Table, error) {
			return extractor.Extract(name, stem)
		})
		if err != nil {
			if optionalSources[name] {
				rc.Logger().Warn("optional source unavailable",
					zap.String("table", name), zap.Error(err))
				continue
			}
			return nil, err
		}
		raw[name] = t
	}

	for _, required := range []string{
		"orders", "order_items", "customers", "products",
		"reviews", "inventory", "warehouses",
	} {
		if raw[required] == nil {
			return nil, etlerrors.Newf(etlerrors.ErrorTypeConfig,
				"required source table %q is not configured", required)
		}
	}
	return raw, nil
}

// enrichAll produces the three enriched datasets.
func (p *Pipeline) enrichAll(rc *RunContext, raw map[string]*table.Table) (map[string]*table.Table, error) {
	log := rc.Logger()
	enriched := make(map[string]*table.Table, 3)

	orders, err := runStage(rc, "enrich", "orders", func() (*table.Table, error) {
		return enrich.NewOrdersEnricher(log).Enrich(enrich.OrdersInput{
			Orders:     raw["orders"],
			Customers:  raw["customers"],
			Promotions: raw["promotions"],
			OrderItems: raw["order_items"],
			Products:   raw["products"],
			Categories: raw["categories"],
			Brands:     raw["brands"],
		})
	})
	if err != nil {
		return nil, err
	}
	enriched["orders_enriched"] = orders.Renamed("orders_enriched")

	inventory, err := runStage(rc, "enrich", "inventory", func() (*table.Table, error) {
		return enrich.NewInventoryEnricher(log).Enrich(
			raw["inventory"], raw["products"], raw["warehouses"])
	})
	if err != nil {
		return nil, err
	}
	enriched["inventory_enriched"] = inventory.Renamed("inventory_enriched")

	reviews, err := runStage(rc, "enrich", "reviews", func() (*table.Table, error) {
		return enrich.NewReviewsEnricher(log).Enrich(
			raw["reviews"], raw["products"], raw["customers"])
	})
	if err != nil {
		return nil, err
	}
	enriched["reviews_enriched"] = reviews.Renamed("reviews_enriched")

	return enriched, nil
}

// aggregateAll computes the sixteen result tables. Aggregators are pure
// functions over the enriched tables, so a failure is impossible short of
// a programming error; runStage still wraps them for uniform telemetry.
func (p *Pipeline) aggregateAll(rc *RunContext, raw, enriched map[string]*table.Table) []*table.Table {
	agg := p.cfg.Aggregation
	orders := enriched["orders_enriched"]
	inventory := enriched["inventory_enriched"]
	reviews := enriched["reviews_enriched"]

	var percentile *float64
	if agg.TopSpendersPercentile > 0 {
		percentile = &agg.TopSpendersPercentile
	}

	stages := []struct {
		name string
		fn   StageFunc
	}{
		{"top_spenders", func() (*table.Table, error) {
			return aggregate.TopSpenders(orders, agg.TopSpendersN, percentile), nil
		}},
		{"recurring_customers", func() (*table.Table, error) {
			return aggregate.RecurringCustomers(orders, agg.RecurringMinOrders), nil
		}},
		{"average_ticket", func() (*table.Table, error) {
			return scalarTable("average_ticket", "average_ticket",
				aggregate.AverageTicketOverall(orders)), nil
		}},
		{"top_products", func() (*table.Table, error) {
			return aggregate.TopProductsByQuantity(
				raw["order_items"], raw["products"], agg.TopProductsN).
				Renamed("top_products"), nil
		}},
		{"monthly_sales", func() (*table.Table, error) {
			return aggregate.MonthlySales(orders), nil
		}},
		{"promotion_usage_rate", func() (*table.Table, error) {
			return scalarTable("promotion_usage_rate", "promotion_usage_rate",
				aggregate.PromotionUsageRate(orders)), nil
		}},
		{"status_funnel", func() (*table.Table, error) {
			return aggregate.StatusFunnel(orders), nil
		}},
		{"cancellation_rate", func() (*table.Table, error) {
			return scalarTable("cancellation_rate", "cancellation_rate",
				aggregate.CancellationRate(orders)), nil
		}},
		{"delivery_rate", func() (*table.Table, error) {
			return scalarTable("delivery_rate", "delivery_rate",
				aggregate.DeliveryRate(orders)), nil
		}},
		{"backlog_in_progress", func() (*table.Table, error) {
			return aggregate.InProgressBacklog(orders), nil
		}},
		{"inventory_health", func() (*table.Table, error) {
			return aggregate.StockHealthSummary(inventory), nil
		}},
		{"low_stock_items", func() (*table.Table, error) {
			return aggregate.LowStockItems(inventory, agg.LowStockItemsN), nil
		}},
		{"warehouse_utilization", func() (*table.Table, error) {
			return aggregate.WarehouseUtilization(inventory), nil
		}},
		{"reviews_overview", func() (*table.Table, error) {
			return aggregate.RatingOverview(reviews), nil
		}},
		{"reviews_by_product", func() (*table.Table, error) {
			return aggregate.RatingByProduct(reviews,
				agg.MinReviewsPerProduct, agg.TopReviewedProductsN), nil
		}},
		{"reviews_monthly", func() (*table.Table, error) {
			return aggregate.MonthlyReviewVolume(reviews), nil
		}},
	}

	results := make([]*table.Table, 0, len(stages))
	for _, stage := range stages {
		t, err := runStage(rc, "aggregate", stage.name, stage.fn)
		if err != nil {
			continue
		}
		results = append(results, t)
	}
	return results
}

// load persists the enriched datasets and the aggregate results in every
// configured format. Loading continues past per-table failures so one bad
// sink does not abandon the rest of the run; the first error is returned
// after everything has been attempted.
func (p *Pipeline) load(rc *RunContext, enriched map[string]*table.Table, results []*table.Table) error {
	algorithm, err := compression.ParseAlgorithm(p.cfg.Output.Compression)
	if err != nil {
		return err
	}
	loaders, err := destinations.ForFormats(p.cfg.Output.Formats, algorithm, rc.Logger())
	if err != nil {
		return err
	}

	var firstErr error
	save := func(t *table.Table, dir string) {
		for _, loader := range loaders {
			_, err := runStage(rc, "load", t.Name(), func() (*table.Table, error) {
				if err := loader.Save(t, dir); err != nil {
					return nil, err
				}
				metrics.TablesWritten.WithLabelValues(loader.Format()).Inc()
				return t, nil
			})
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}

	for _, name := range []string{"orders_enriched", "inventory_enriched", "reviews_enriched"} {
		save(enriched[name], p.cfg.Paths.ProcessedDir)
	}
	for _, t := range results {
		save(t, p.cfg.Paths.OutputDir)
	}
	return firstErr
}

// scalarTable wraps a single metric value in a one-row table so scalar
// aggregates persist through the same loaders as everything else.
func scalarTable(name, column string, value float64) *table.Table {
	t := table.New(name)
	_ = t.AddColumn(column, table.ColumnTypeFloat, []interface{}{value})
	return t
}
