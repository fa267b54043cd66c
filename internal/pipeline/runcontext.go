// Package pipeline orchestrates a full batch run: extract the raw tables,
// clean and enrich the primary datasets, compute the business aggregates
// and persist everything to the configured sinks. Tables flow one way
// through the stages; no stage mutates a table it did not create.
package pipeline

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StageResult records one executed stage for the run summary.
type StageResult struct {
	Stage    string
	Table    string
	Rows     int
	Duration time.Duration
	Err      error
}

// RunContext carries run-level bookkeeping: the run id stamped on every
// log line and the per-stage results accumulated for the final summary.
type RunContext struct {
	RunID   string
	Started time.Time

	logger  *zap.Logger
	results []StageResult
}

// NewRunContext starts bookkeeping for a pipeline run.
func NewRunContext(logger *zap.Logger) *RunContext {
	runID := uuid.NewString()
	return &RunContext{
		RunID:   runID,
		Started: time.Now(),
		logger:  logger.With(zap.String("run_id", runID)),
	}
}

// Logger returns the run-scoped logger.
func (rc *RunContext) Logger() *zap.Logger {
	return rc.logger
}

// Record appends a stage result.
func (rc *RunContext) Record(result StageResult) {
	rc.results = append(rc.results, result)
}

// Failed reports whether any recorded stage errored.
func (rc *RunContext) Failed() bool {
	for _, r := range rc.results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// Summary logs one line per stage plus a run-level roll-up.
func (rc *RunContext) Summary() {
	failures := 0
	for _, r := range rc.results {
		fields := []zap.Field{
			zap.String("stage", r.Stage),
			zap.String("table", r.Table),
			zap.Int("rows", r.Rows),
			zap.Duration("duration", r.Duration),
		}
		if r.Err != nil {
			failures++
			rc.logger.Error("stage failed", append(fields, zap.Error(r.Err))...)
			continue
		}
		rc.logger.Info("stage completed", fields...)
	}
	rc.logger.Info("run finished",
		zap.Int("stages", len(rc.results)),
		zap.Int("failures", failures),
		zap.Duration("elapsed", time.Since(rc.Started)))
}
