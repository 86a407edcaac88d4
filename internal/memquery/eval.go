package memquery

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"searchq/internal/schema"
	"searchq/internal/search"
)

func evalCondition(cond search.Condition, rec Record) bool {
	switch c := cond.(type) {
	case search.Leaf:
		return evalLeaf(c, rec)
	case search.Or:
		for _, branch := range c.Conditions {
			if evalCondition(branch, rec) {
				return true
			}
		}
		return false
	case search.Never:
		return false
	}
	return false
}

func evalLeaf(leaf search.Leaf, rec Record) bool {
	value, present, pathOK := lookupPath(rec, leaf.Path)
	if !pathOK {
		// an intermediate segment is absent: excluded, never a null fault
		return false
	}

	isNull := !present || value == nil
	switch leaf.Operator {
	case search.IsNull:
		return isNull
	case search.IsNotNull:
		return !isNull
	}
	// SQL null semantics: null compares false under every other operator
	if isNull {
		return false
	}

	switch leaf.Operator {
	case search.Equals:
		return equals(leaf, value)
	case search.NotEquals:
		return !equals(leaf, value)
	case search.Contains:
		return contains(leaf, value)
	case search.NotContains:
		return !contains(leaf, value)
	case search.GreaterThan, search.LessThan, search.GreaterThanOrEquals, search.LessThanOrEquals:
		return ordered(leaf, value)
	}
	return false
}

// lookupPath walks the canonical dotted path through nested records.
// present=false means the terminal key resolved but holds no value;
// ok=false means an intermediate segment was absent.
func lookupPath(rec Record, path string) (value any, present bool, ok bool) {
	segs := strings.Split(path, ".")
	cur := rec
	for i, seg := range segs {
		v, found := lookupKey(cur, seg)
		if i == len(segs)-1 {
			return v, found, true
		}
		nested, isRecord := v.(map[string]any)
		if !found || !isRecord {
			return nil, false, false
		}
		cur = nested
	}
	return nil, false, false
}

func lookupKey(rec Record, key string) (any, bool) {
	if v, ok := rec[key]; ok {
		return v, true
	}
	for k, v := range rec {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func equals(leaf search.Leaf, value any) bool {
	switch {
	case leaf.Field.Type.Numeric():
		a, aok := toFloat(value)
		b, bok := toFloat(leaf.Value)
		return aok && bok && a == b
	case leaf.Field.Type == schema.TypeBool:
		a, aok := toBool(value)
		b, err := strconv.ParseBool(leaf.Value)
		return aok && err == nil && a == b
	default:
		s := stringify(value)
		if leaf.CaseSensitive {
			return s == leaf.Value
		}
		return strings.EqualFold(s, leaf.Value)
	}
}

func contains(leaf search.Leaf, value any) bool {
	s := stringify(value)
	if leaf.CaseSensitive {
		return strings.Contains(s, leaf.Value)
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(leaf.Value))
}

// ordered performs the typed comparison. A value that fails to parse on
// either side makes the leaf false, never a fault.
func ordered(leaf search.Leaf, value any) bool {
	var c int
	if leaf.Field.Type == schema.TypeTime {
		a, aok := toTime(value)
		b, bok := toTime(leaf.Value)
		if !aok || !bok {
			return false
		}
		c = a.Compare(b)
	} else {
		a, aok := toFloat(value)
		b, bok := toFloat(leaf.Value)
		if !aok || !bok {
			return false
		}
		switch {
		case a < b:
			c = -1
		case a > b:
			c = 1
		}
	}

	switch leaf.Operator {
	case search.GreaterThan:
		return c > 0
	case search.GreaterThanOrEquals:
		return c >= 0
	case search.LessThan:
		return c < 0
	case search.LessThanOrEquals:
		return c <= 0
	}
	return false
}

// compareByKey compares two records on one order key. Nulls sort last on
// ascending order.
func compareByKey(a, b Record, key search.OrderKey) int {
	va, pa, oka := lookupPath(a, key.Path)
	vb, pb, okb := lookupPath(b, key.Path)

	na := !oka || !pa || va == nil
	nb := !okb || !pb || vb == nil
	if na && nb {
		return 0
	}
	if na != nb {
		if na {
			return 1
		}
		return -1
	}

	var rel int
	if key.Field.Type.Numeric() {
		fa, aok := toFloat(va)
		fb, bok := toFloat(vb)
		if aok && bok {
			switch {
			case fa < fb:
				rel = -1
			case fa > fb:
				rel = 1
			}
		}
	} else if key.Field.Type == schema.TypeTime {
		ta, aok := toTime(va)
		tb, bok := toTime(vb)
		if aok && bok {
			rel = ta.Compare(tb)
		}
	} else {
		sa := stringify(va)
		sb := stringify(vb)
		if sa < sb {
			rel = -1
		} else if sa > sb {
			rel = 1
		}
	}
	if key.Descending {
		rel = -rel
	}
	return rel
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	}
	return 0, false
}

func toBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		b, err := strconv.ParseBool(t)
		return b, err == nil
	}
	return false, false
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}
