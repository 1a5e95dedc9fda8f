package engine

import (
	"encoding/json"
	"reflect"
)

// equalValues reports strict structural equality between an event value
// and a condition literal. Types must match: the string "1" never equals
// the number 1, and no string-number coercion is performed. The one
// exception is numeric width: all numeric kinds compare by value, so an
// event built with int amounts matches literals parsed into float64.
// Slices compare element-wise in order; maps compare key-wise.
func equalValues(actual, expected any) bool {
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}

	if a, ok := numericValue(actual); ok {
		b, bok := numericValue(expected)
		return bok && a == b
	}

	switch a := actual.(type) {
	case string:
		b, ok := expected.(string)
		return ok && a == b

	case bool:
		b, ok := expected.(bool)
		return ok && a == b

	case []any:
		b, ok := expected.([]any)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !equalValues(a[i], b[i]) {
				return false
			}
		}
		return true

	case map[string]any:
		b, ok := expected.(map[string]any)
		if !ok || len(a) != len(b) {
			return false
		}
		for k, av := range a {
			bv, ok := b[k]
			if !ok || !equalValues(av, bv) {
				return false
			}
		}
		return true

	default:
		return reflect.DeepEqual(actual, expected)
	}
}

// numericValue converts a value to float64 for numeric comparison.
// It reports false for anything that is not a number; in particular,
// numeric strings stay strings.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
