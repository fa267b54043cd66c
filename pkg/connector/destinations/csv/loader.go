// Package csv persists tables as CSV files with optional stream
// compression.
package csv

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/commercepipe/commercepipe/pkg/compression"
	"github.com/commercepipe/commercepipe/pkg/etlerrors"
	"github.com/commercepipe/commercepipe/pkg/table"
)

// Loader writes tables as CSV, optionally compressed.
type Loader struct {
	algorithm compression.Algorithm
	logger    *zap.Logger
}

// NewLoader creates a CSV loader.
func NewLoader(algorithm compression.Algorithm, logger *zap.Logger) *Loader {
	return &Loader{algorithm: algorithm, logger: logger}
}

// Format returns "csv".
func (l *Loader) Format() string { return "csv" }

// Save writes t to <dir>/<table name>.csv, appending the compression
// extension when compression is enabled. Nulls serialize as empty cells.
func (l *Loader) Save(t *table.Table, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return etlerrors.Wrap(err, etlerrors.ErrorTypeFile, "failed to create output directory").
			WithDetail("dir", dir)
	}
	path := filepath.Join(dir, t.Name()+".csv"+l.algorithm.Extension())

	f, err := os.Create(path) //nolint:gosec // G304: path is built from validated config
	if err != nil {
		return etlerrors.Wrap(err, etlerrors.ErrorTypeFile, "failed to create output file").
			WithDetail("path", path)
	}
	defer f.Close()

	wc, err := l.algorithm.NewWriter(f)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(wc)
	if err := writer.Write(t.ColumnNames()); err != nil {
		return etlerrors.Wrap(err, etlerrors.ErrorTypeFile, "failed to write CSV header").
			WithDetail("path", path)
	}

	record := make([]string, t.NumCols())
	for row := 0; row < t.NumRows(); row++ {
		for ci := 0; ci < t.NumCols(); ci++ {
			record[ci] = ""
			if s, ok := table.AsString(t.ColumnAt(ci).Value(row)); ok {
				record[ci] = s
			}
		}
		if err := writer.Write(record); err != nil {
			return etlerrors.Wrap(err, etlerrors.ErrorTypeFile, "failed to write CSV row").
				WithDetail("path", path).
				WithDetail("row", row)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return etlerrors.Wrap(err, etlerrors.ErrorTypeFile, "failed to flush CSV").
			WithDetail("path", path)
	}
	if err := wc.Close(); err != nil {
		return etlerrors.Wrap(err, etlerrors.ErrorTypeFile, "failed to finalize compressed output").
			WithDetail("path", path)
	}

	l.logger.Info("table saved",
		zap.String("format", "csv"),
		zap.String("path", path),
		zap.Int("rows", t.NumRows()))
	return nil
}
