package table

// AggOp is a group-by aggregation operator.
type AggOp int

const (
	// AggSum sums the coercible non-null values of a column; an empty group sums to 0.
	AggSum AggOp = iota
	// AggCount counts non-null values.
	AggCount
	// AggMean averages the coercible non-null values; all-null groups yield null.
	AggMean
	// AggMax takes the greatest non-null value under the table ordering.
	AggMax
	// AggFirst takes the first non-null value in row order.
	AggFirst
)

// Agg describes one aggregation: the source Column, the operator, and the
// output column name.
type Agg struct {
	Column string
	Op     AggOp
	As     string
}

// GroupBy groups t by the given key columns and computes the aggregations
// per group. Groups appear in first-seen row order; rows whose every key is
// null still form a group keyed on null. Key columns absent from the table
// are skipped.
func (t *Table) GroupBy(keys []string, aggs ...Agg) *Table {
	keyCols := make([]*Column, 0, len(keys))
	for _, k := range keys {
		if c, ok := t.Column(k); ok {
			keyCols = append(keyCols, c)
		}
	}

	type group struct {
		firstRow int
		rows     []int
	}
	order := make([]string, 0)
	groups := make(map[string]*group)

	for i := 0; i < t.NumRows(); i++ {
		id := ""
		for _, kc := range keyCols {
			k, ok := normalizeKey(kc.Value(i))
			if !ok {
				id += "\x00<null>"
				continue
			}
			s, _ := AsString(k)
			id += "\x00" + s
		}
		g, seen := groups[id]
		if !seen {
			g = &group{firstRow: i}
			groups[id] = g
			order = append(order, id)
		}
		g.rows = append(g.rows, i)
	}

	out := New(t.name)
	for _, kc := range keyCols {
		values := make([]interface{}, len(order))
		for gi, id := range order {
			values[gi] = kc.Value(groups[id].firstRow)
		}
		_ = out.AddColumn(kc.Name(), kc.Type(), values)
	}

	for _, agg := range aggs {
		name := agg.As
		if name == "" {
			name = agg.Column
		}
		src, ok := t.Column(agg.Column)
		if !ok {
			values := make([]interface{}, len(order))
			_ = out.AddColumn(name, ColumnTypeFloat, values)
			continue
		}
		values := make([]interface{}, len(order))
		for gi, id := range order {
			values[gi] = aggregate(src, groups[id].rows, agg.Op)
		}
		_ = out.AddColumn(name, aggType(src.Type(), agg.Op), values)
	}
	return out
}

func aggregate(c *Column, rows []int, op AggOp) interface{} {
	switch op {
	case AggCount:
		n := int64(0)
		for _, r := range rows {
			if !c.IsNull(r) {
				n++
			}
		}
		return n
	case AggSum:
		sum := 0.0
		for _, r := range rows {
			if f, ok := AsFloat(c.Value(r)); ok {
				sum += f
			}
		}
		return sum
	case AggMean:
		sum, n := 0.0, 0
		for _, r := range rows {
			if f, ok := AsFloat(c.Value(r)); ok {
				sum += f
				n++
			}
		}
		if n == 0 {
			return nil
		}
		return sum / float64(n)
	case AggMax:
		var best interface{}
		for _, r := range rows {
			v := c.Value(r)
			if v == nil {
				continue
			}
			if best == nil || compareCells(v, best) > 0 {
				best = v
			}
		}
		return best
	case AggFirst:
		for _, r := range rows {
			if v := c.Value(r); v != nil {
				return v
			}
		}
		return nil
	default:
		return nil
	}
}

func aggType(src ColumnType, op AggOp) ColumnType {
	switch op {
	case AggCount:
		return ColumnTypeInt
	case AggSum, AggMean:
		return ColumnTypeFloat
	default:
		return src
	}
}
