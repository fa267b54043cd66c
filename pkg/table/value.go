package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// timestampLayouts are the layouts tried when coercing strings to timestamps.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// AsFloat coerces a cell to float64. Booleans map to 1/0 so that rate
// computations can average flag columns.
func AsFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// AsInt coerces a cell to int64. Floats must be integral; strings are
// parsed as base-10 integers or integral floats.
func AsInt(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case int64:
		return x, true
	case int:
		return int64(x), true
	case int32:
		return int64(x), true
	case float64:
		if x == float64(int64(x)) {
			return int64(x), true
		}
		return 0, false
	case string:
		s := strings.TrimSpace(x)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
			return int64(f), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// AsBool coerces a cell to bool, accepting common textual spellings.
func AsBool(v interface{}) (bool, bool) {
	switch x := v.(type) {
	case nil:
		return false, false
	case bool:
		return x, true
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "1", "yes", "t":
			return true, true
		case "false", "0", "no", "f":
			return false, true
		}
		return false, false
	case int64:
		return x != 0, true
	case int:
		return x != 0, true
	case float64:
		return x != 0, true
	default:
		return false, false
	}
}

// AsTime coerces a cell to time.Time, trying the supported layouts in order.
func AsTime(v interface{}) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return x, true
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// AsString coerces a cell to its string form. Nulls yield ("", false).
func AsString(v interface{}) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case Period:
		return string(x), true
	case time.Time:
		return x.Format("2006-01-02 15:04:05"), true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case bool:
		return strconv.FormatBool(x), true
	default:
		return fmt.Sprintf("%v", x), true
	}
}

// Period is a coarse calendar bucket derived from a timestamp, used as a
// grouping key. The textual form is chosen so lexicographic order matches
// chronological order.
type Period string

// MonthOf returns the month bucket of t, e.g. "2024-03".
func MonthOf(t time.Time) Period {
	return Period(t.Format("2006-01"))
}

// WeekOf returns the ISO week bucket of t, e.g. "2024-W09".
func WeekOf(t time.Time) Period {
	year, week := t.ISOWeek()
	return Period(fmt.Sprintf("%04d-W%02d", year, week))
}
