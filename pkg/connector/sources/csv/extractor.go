// Package csv extracts raw tables from CSV files. Every cell comes out as
// a nullable string; typing happens downstream in the cleaners, so a dirty
// file never fails extraction.
package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/commercepipe/commercepipe/pkg/etlerrors"
	"github.com/commercepipe/commercepipe/pkg/table"
)

// Extractor reads raw tables from a directory of CSV files.
type Extractor struct {
	dir       string
	separator rune
	logger    *zap.Logger
}

// NewExtractor creates an extractor rooted at dir. The directory must
// exist.
func NewExtractor(dir string, logger *zap.Logger) (*Extractor, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, etlerrors.Wrap(err, etlerrors.ErrorTypeFile, "raw data directory not accessible").
			WithDetail("dir", dir)
	}
	if !info.IsDir() {
		return nil, etlerrors.Newf(etlerrors.ErrorTypeFile, "raw data path is not a directory: %s", dir)
	}
	return &Extractor{dir: dir, separator: ',', logger: logger}, nil
}

// WithSeparator overrides the field separator.
func (e *Extractor) WithSeparator(sep rune) *Extractor {
	e.separator = sep
	return e
}

// Extract reads <dir>/<stem>.csv into a raw table named name. The first
// row is the header; empty cells become nulls.
func (e *Extractor) Extract(name, stem string) (*table.Table, error) {
	path := filepath.Join(e.dir, stem+".csv")
	f, err := os.Open(path) //nolint:gosec // G304: path is built from validated config
	if err != nil {
		return nil, etlerrors.Wrap(err, etlerrors.ErrorTypeFile, "failed to open source file").
			WithDetail("table", name).
			WithDetail("path", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = e.separator
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, etlerrors.Wrap(err, etlerrors.ErrorTypeFile, "failed to parse CSV").
			WithDetail("table", name).
			WithDetail("path", path)
	}
	if len(records) == 0 {
		return nil, etlerrors.New(etlerrors.ErrorTypeFile, "source file has no header row").
			WithDetail("table", name).
			WithDetail("path", path)
	}

	header := records[0]
	rows := records[1:]

	t := table.New(name)
	for ci, columnName := range header {
		if columnName == "" {
			columnName = fmt.Sprintf("column_%d", ci)
		}
		values := make([]interface{}, len(rows))
		for ri, row := range rows {
			if ci < len(row) && row[ci] != "" {
				values[ri] = row[ci]
			}
		}
		if err := t.AddColumn(columnName, table.ColumnTypeString, values); err != nil {
			return nil, etlerrors.Wrap(err, etlerrors.ErrorTypeFile, "failed to build raw table").
				WithDetail("table", name).
				WithDetail("column", columnName)
		}
	}

	e.logger.Info("table extracted",
		zap.String("table", name),
		zap.String("path", path),
		zap.Int("rows", t.NumRows()),
		zap.Int("columns", t.NumCols()))
	return t, nil
}
