package table

// ColumnType represents the semantic type of a column.
type ColumnType int

const (
	ColumnTypeString ColumnType = iota
	ColumnTypeInt
	ColumnTypeFloat
	ColumnTypeBool
	ColumnTypeTimestamp
	ColumnTypePeriod
)

// String returns the type name used in diagnostics.
func (t ColumnType) String() string {
	switch t {
	case ColumnTypeString:
		return "string"
	case ColumnTypeInt:
		return "int"
	case ColumnTypeFloat:
		return "float"
	case ColumnTypeBool:
		return "bool"
	case ColumnTypeTimestamp:
		return "timestamp"
	case ColumnTypePeriod:
		return "period"
	default:
		return "unknown"
	}
}

// Column is a named, typed, nullable sequence of values. A nil cell marks
// a null. Values are held loosely typed so that cleaning stages can coerce
// them; the declared ColumnType records the intended semantic type.
type Column struct {
	name   string
	typ    ColumnType
	values []interface{}
}

// NewColumn creates a column over the given cells. The slice is owned by
// the column afterwards; callers must not mutate it.
func NewColumn(name string, typ ColumnType, values []interface{}) *Column {
	return &Column{name: name, typ: typ, values: values}
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// Type returns the declared column type.
func (c *Column) Type() ColumnType { return c.typ }

// Len returns the number of cells.
func (c *Column) Len() int { return len(c.values) }

// Value returns the cell at row i; nil means null.
func (c *Column) Value(i int) interface{} { return c.values[i] }

// IsNull reports whether the cell at row i is null.
func (c *Column) IsNull(i int) bool { return c.values[i] == nil }

// NullCount returns the number of null cells.
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.values {
		if v == nil {
			n++
		}
	}
	return n
}

// NonNullCount returns the number of populated cells.
func (c *Column) NonNullCount() int { return len(c.values) - c.NullCount() }

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	values := make([]interface{}, len(c.values))
	copy(values, c.values)
	return &Column{name: c.name, typ: c.typ, values: values}
}

// Floats returns the non-null cells coercible to float64, in row order.
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.values))
	for _, v := range c.values {
		if f, ok := AsFloat(v); ok {
			out = append(out, f)
		}
	}
	return out
}
