// Package commercepipe provides a batch ETL pipeline for e-commerce
// analytics. It extracts raw CSV exports, cleans and enriches them into
// typed datasets, and aggregates the business result tables that feed
// reporting.
//
// # Architecture
//
// A run moves through four stages in order:
//
// 1. Extract: every configured source CSV loads into an untyped table of
// nullable string cells, so dirty files never fail extraction.
//
// 2. Clean: per-table cleaners fill or drop nulls, deduplicate on business
// keys keeping the latest row, coerce columns to their declared types and
// re-validate the result.
//
// 3. Enrich: reference tables join onto the fact tables and derived columns
// (calendar periods, promotion and discount flags, stock flags, sentiment
// flags) are attached.
//
// 4. Aggregate & Load: pure functions reduce the enriched datasets to the
// sixteen result tables, which persist in every configured format.
//
// # Quick Start
//
// Run a pipeline over the default directory layout:
//
//	import (
//	    "github.com/commercepipe/commercepipe/internal/pipeline"
//	    "github.com/commercepipe/commercepipe/pkg/config"
//	    "github.com/commercepipe/commercepipe/pkg/logger"
//	)
//
//	cfg := config.NewPipelineConfig()
//	cfg.Paths.RawDir = "data/raw"
//
//	_ = logger.Init(logger.Config{Level: "info", Encoding: "json"})
//	err := pipeline.New(cfg, logger.Get()).Run()
//
// # Key Packages
//
//	pkg/table       - In-memory columnar table with joins, grouping and sorting
//	pkg/transform   - Cleaning, enrichment and aggregation stages
//	pkg/connector   - CSV extraction and the CSV/JSON/Arrow loaders
//	pkg/config      - YAML configuration with environment substitution
//	pkg/etlerrors   - Structured, typed errors carrying validation context
package commercepipe
