package pipeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/commercepipe/commercepipe/pkg/etlerrors"
	"github.com/commercepipe/commercepipe/pkg/metrics"
	"github.com/commercepipe/commercepipe/pkg/table"
)

// StageFunc is one unit of pipeline work producing a table.
type StageFunc func() (*table.Table, error)

// runStage executes fn with timing, structured logging and Prometheus
// instrumentation, and records the outcome on the run context. Every
// transformation and load in the run goes through here so the telemetry
// stays uniform.
func runStage(rc *RunContext, stage, tableName string, fn StageFunc) (*table.Table, error) {
	log := rc.Logger().With(
		zap.String("stage", stage),
		zap.String("table", tableName),
	)
	log.Debug("stage started")
	start := time.Now()

	out, err := fn()
	elapsed := time.Since(start)
	metrics.StageDuration.WithLabelValues(stage, tableName).Observe(elapsed.Seconds())

	result := StageResult{Stage: stage, Table: tableName, Duration: elapsed, Err: err}
	if err != nil {
		metrics.StageErrors.WithLabelValues(stage, tableName, string(etlerrors.TypeOf(err))).Inc()
		rc.Record(result)
		return nil, err
	}
	if out != nil {
		result.Rows = out.NumRows()
		metrics.RowsProcessed.WithLabelValues(stage, tableName).Add(float64(out.NumRows()))
	}
	rc.Record(result)
	log.Debug("stage finished",
		zap.Int("rows", result.Rows),
		zap.Duration("duration", elapsed))
	return out, nil
}
