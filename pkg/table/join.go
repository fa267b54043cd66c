package table

// LeftJoin joins right onto left by equality on the named key column.
// Every left row survives; when the lookup misses, the joined cells are
// null. When right holds several rows for a key, the first one wins;
// reference tables are expected to be unique-keyed, which the enrichers
// validate before joining. columns restricts which right columns are
// carried over (default: all but the key); the key column itself is never
// duplicated. Key equality is by normalized value, so an int64 key matches
// its textual form.
func LeftJoin(left, right *Table, on string, columns ...string) *Table {
	out := left.Clone()

	rightKey, ok := right.Column(on)
	if !ok {
		return out
	}

	if len(columns) == 0 {
		for _, name := range right.ColumnNames() {
			if name != on {
				columns = append(columns, name)
			}
		}
	}

	lookup := make(map[interface{}]int, right.NumRows())
	for i := 0; i < right.NumRows(); i++ {
		k, ok := normalizeKey(rightKey.Value(i))
		if !ok {
			continue
		}
		if _, seen := lookup[k]; !seen {
			lookup[k] = i
		}
	}

	leftKey, hasKey := left.Column(on)
	for _, name := range columns {
		rc, ok := right.Column(name)
		if !ok || out.HasColumn(name) {
			continue
		}
		values := make([]interface{}, left.NumRows())
		if hasKey {
			for i := 0; i < left.NumRows(); i++ {
				k, ok := normalizeKey(leftKey.Value(i))
				if !ok {
					continue
				}
				if j, found := lookup[k]; found {
					values[i] = rc.Value(j)
				}
			}
		}
		// out and left have identical row counts, so this cannot fail
		_ = out.AddColumn(name, rc.Type(), values)
	}
	return out
}

// normalizeKey canonicalizes a join key so equivalent representations
// compare equal: integral values (including numeric strings) normalize to
// int64, other numerics to float64, everything else to its string form.
func normalizeKey(v interface{}) (interface{}, bool) {
	if v == nil {
		return nil, false
	}
	if i, ok := AsInt(v); ok {
		return i, true
	}
	if f, ok := AsFloat(v); ok {
		return f, true
	}
	s, ok := AsString(v)
	return s, ok
}
