// Package testutil provides testing utilities for CommercePipe.
package testutil

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/commercepipe/commercepipe/pkg/table"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// Col describes one column of a test table.
type Col struct {
	Name   string
	Type   table.ColumnType
	Values []interface{}
}

// BuildTable constructs a table from column literals, failing the test on
// inconsistent lengths.
func BuildTable(t *testing.T, name string, cols ...Col) *table.Table {
	t.Helper()
	out := table.New(name)
	for _, c := range cols {
		if err := out.AddColumn(c.Name, c.Type, c.Values); err != nil {
			t.Fatalf("building table %s: %v", name, err)
		}
	}
	return out
}

// Strings builds a nullable string column's values; empty strings become
// nulls, matching how the CSV extractor ingests raw cells.
func Strings(values ...string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		if v != "" {
			out[i] = v
		}
	}
	return out
}
