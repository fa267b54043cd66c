// Package destinations provides the table loaders that persist enriched
// and aggregated tables to the output formats.
package destinations

import (
	"strings"

	"go.uber.org/zap"

	"github.com/commercepipe/commercepipe/pkg/compression"
	"github.com/commercepipe/commercepipe/pkg/connector/destinations/arrow"
	"github.com/commercepipe/commercepipe/pkg/connector/destinations/csv"
	"github.com/commercepipe/commercepipe/pkg/connector/destinations/json"
	"github.com/commercepipe/commercepipe/pkg/etlerrors"
	"github.com/commercepipe/commercepipe/pkg/table"
)

// Loader persists a table into a directory. The file name derives from the
// table name and the loader's format.
type Loader interface {
	// Format returns the loader's format name.
	Format() string
	// Save writes t into dir.
	Save(t *table.Table, dir string) error
}

// ForFormat builds a loader for the named format. Compression applies to
// CSV output only; the other formats carry their own encodings.
func ForFormat(format string, algorithm compression.Algorithm, logger *zap.Logger) (Loader, error) {
	switch strings.ToLower(format) {
	case "csv":
		return csv.NewLoader(algorithm, logger), nil
	case "json":
		return json.NewLoader(logger), nil
	case "arrow":
		return arrow.NewLoader(logger), nil
	default:
		return nil, etlerrors.Newf(etlerrors.ErrorTypeConfig, "unsupported output format: %s", format)
	}
}

// ForFormats builds one loader per configured format.
func ForFormats(formats []string, algorithm compression.Algorithm, logger *zap.Logger) ([]Loader, error) {
	loaders := make([]Loader, 0, len(formats))
	for _, format := range formats {
		loader, err := ForFormat(format, algorithm, logger)
		if err != nil {
			return nil, err
		}
		loaders = append(loaders, loader)
	}
	return loaders, nil
}
