// Package arrow persists tables as Arrow IPC files.
package arrow

import (
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"

	"github.com/commercepipe/commercepipe/pkg/etlerrors"
	"github.com/commercepipe/commercepipe/pkg/table"
)

// Loader writes tables as Arrow IPC files.
type Loader struct {
	logger *zap.Logger
	pool   memory.Allocator
}

// NewLoader creates an Arrow loader.
func NewLoader(logger *zap.Logger) *Loader {
	return &Loader{logger: logger, pool: memory.NewGoAllocator()}
}

// Format returns "arrow".
func (l *Loader) Format() string { return "arrow" }

// Save writes t to <dir>/<table name>.arrow as a single record batch.
func (l *Loader) Save(t *table.Table, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return etlerrors.Wrap(err, etlerrors.ErrorTypeFile, "failed to create output directory").
			WithDetail("dir", dir)
	}
	path := filepath.Join(dir, t.Name()+".arrow")

	schema := l.schemaFor(t)
	builder := array.NewRecordBuilder(l.pool, schema)
	defer builder.Release()

	for ci := 0; ci < t.NumCols(); ci++ {
		col := t.ColumnAt(ci)
		for row := 0; row < col.Len(); row++ {
			if err := appendValue(builder.Field(ci), col.Value(row)); err != nil {
				return etlerrors.Wrap(err, etlerrors.ErrorTypeFile, "failed to encode Arrow value").
					WithDetail("table", t.Name()).
					WithDetail("column", col.Name()).
					WithDetail("row", row)
			}
		}
	}

	record := builder.NewRecord()
	defer record.Release()

	f, err := os.Create(path) //nolint:gosec // G304: path is built from validated config
	if err != nil {
		return etlerrors.Wrap(err, etlerrors.ErrorTypeFile, "failed to create output file").
			WithDetail("path", path)
	}
	defer f.Close()

	writer, err := ipc.NewFileWriter(f, ipc.WithSchema(schema), ipc.WithAllocator(l.pool))
	if err != nil {
		return etlerrors.Wrap(err, etlerrors.ErrorTypeFile, "failed to create Arrow writer").
			WithDetail("path", path)
	}
	if err := writer.Write(record); err != nil {
		return etlerrors.Wrap(err, etlerrors.ErrorTypeFile, "failed to write Arrow batch").
			WithDetail("path", path)
	}
	if err := writer.Close(); err != nil {
		return etlerrors.Wrap(err, etlerrors.ErrorTypeFile, "failed to close Arrow writer").
			WithDetail("path", path)
	}

	l.logger.Info("table saved",
		zap.String("format", "arrow"),
		zap.String("path", path),
		zap.Int("rows", t.NumRows()))
	return nil
}

func (l *Loader) schemaFor(t *table.Table) *arrow.Schema {
	fields := make([]arrow.Field, t.NumCols())
	for ci := 0; ci < t.NumCols(); ci++ {
		col := t.ColumnAt(ci)
		fields[ci] = arrow.Field{
			Name:     col.Name(),
			Type:     arrowType(col.Type()),
			Nullable: true,
		}
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(t table.ColumnType) arrow.DataType {
	switch t {
	case table.ColumnTypeInt:
		return arrow.PrimitiveTypes.Int64
	case table.ColumnTypeFloat:
		return arrow.PrimitiveTypes.Float64
	case table.ColumnTypeBool:
		return arrow.FixedWidthTypes.Boolean
	case table.ColumnTypeTimestamp:
		return arrow.FixedWidthTypes.Timestamp_us
	default:
		return arrow.BinaryTypes.String
	}
}

func appendValue(builder array.Builder, v interface{}) error {
	if v == nil {
		builder.AppendNull()
		return nil
	}
	switch b := builder.(type) {
	case *array.Int64Builder:
		n, ok := table.AsInt(v)
		if !ok {
			builder.AppendNull()
			return nil
		}
		b.Append(n)
	case *array.Float64Builder:
		f, ok := table.AsFloat(v)
		if !ok {
			builder.AppendNull()
			return nil
		}
		b.Append(f)
	case *array.BooleanBuilder:
		flag, ok := table.AsBool(v)
		if !ok {
			builder.AppendNull()
			return nil
		}
		b.Append(flag)
	case *array.TimestampBuilder:
		ts, ok := table.AsTime(v)
		if !ok {
			builder.AppendNull()
			return nil
		}
		b.Append(arrow.Timestamp(ts.UnixMicro()))
	case *array.StringBuilder:
		s, ok := table.AsString(v)
		if !ok {
			builder.AppendNull()
			return nil
		}
		b.Append(s)
	default:
		return etlerrors.Newf(etlerrors.ErrorTypeInternal,
			"unsupported Arrow builder for value %v", v)
	}
	return nil
}
