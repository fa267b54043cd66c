// Package metrics exposes Prometheus collectors for pipeline runs. The
// collectors register on the default registry at package load, so the CLI
// can expose them without additional wiring.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RowsProcessed tracks the rows flowing out of each stage.
	// Labels: stage (extract/clean/enrich/aggregate/load), table
	RowsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commercepipe_rows_processed_total",
			Help: "Total number of rows produced per stage and table",
		},
		[]string{"stage", "table"},
	)

	// StageDuration tracks per-stage wall time in seconds.
	// Labels: stage, table
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "commercepipe_stage_duration_seconds",
			Help: "Stage execution time in seconds",
			Buckets: []float64{
				0.001, // fast in-memory transforms
				0.01,
				0.1,
				1,
				10, // large batch runs
				60,
			},
		},
		[]string{"stage", "table"},
	)

	// StageErrors counts stage failures by error type.
	// Labels: stage, table, error_type
	StageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commercepipe_stage_errors_total",
			Help: "Total number of stage failures by error type",
		},
		[]string{"stage", "table", "error_type"},
	)

	// TablesWritten counts tables persisted per output format.
	// Labels: format
	TablesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commercepipe_tables_written_total",
			Help: "Total number of tables persisted per output format",
		},
		[]string{"format"},
	)
)
