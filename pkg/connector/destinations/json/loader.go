// Package json persists tables as JSON arrays of row objects.
package json

import (
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/commercepipe/commercepipe/pkg/etlerrors"
	"github.com/commercepipe/commercepipe/pkg/table"
)

// Loader writes tables as JSON.
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a JSON loader.
func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{logger: logger}
}

// Format returns "json".
func (l *Loader) Format() string { return "json" }

// Save writes t to <dir>/<table name>.json as an array of objects, one per
// row. Nulls serialize as JSON null; timestamps and periods as strings.
func (l *Loader) Save(t *table.Table, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return etlerrors.Wrap(err, etlerrors.ErrorTypeFile, "failed to create output directory").
			WithDetail("dir", dir)
	}
	path := filepath.Join(dir, t.Name()+".json")

	names := t.ColumnNames()
	rows := make([]map[string]interface{}, t.NumRows())
	for row := 0; row < t.NumRows(); row++ {
		obj := make(map[string]interface{}, len(names))
		for ci, name := range names {
			obj[name] = jsonValue(t.ColumnAt(ci).Value(row))
		}
		rows[row] = obj
	}

	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return etlerrors.Wrap(err, etlerrors.ErrorTypeFile, "failed to marshal JSON").
			WithDetail("path", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec
		return etlerrors.Wrap(err, etlerrors.ErrorTypeFile, "failed to write output file").
			WithDetail("path", path)
	}

	l.logger.Info("table saved",
		zap.String("format", "json"),
		zap.String("path", path),
		zap.Int("rows", t.NumRows()))
	return nil
}

func jsonValue(v interface{}) interface{} {
	switch x := v.(type) {
	case time.Time:
		return x.Format("2006-01-02 15:04:05")
	case table.Period:
		return string(x)
	default:
		return v
	}
}
