package ast

import (
	"encoding/json"
	"fmt"
)

// NormalizeValue converts a decoded document value into the grammar's value
// model: nil, bool, float64, string, []any, map[string]any. All numeric
// kinds collapse to float64, so a YAML `1`, a YAML `1.0`, and a JSON `1.0`
// are the same value and hash identically. Unrecognized types pass through
// unchanged.
func NormalizeValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case bool:
		return t
	case string:
		return t
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = NormalizeValue(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, elem := range t {
			out[k] = NormalizeValue(elem)
		}
		return out
	case map[any]any:
		// yaml mappings with non-string keys decode to this shape.
		out := make(map[string]any, len(t))
		for k, elem := range t {
			out[fmt.Sprint(k)] = NormalizeValue(elem)
		}
		return out
	default:
		return v
	}
}

// CloneValue returns a deep copy of a value in the grammar's value model.
// Scalars are shared (they are immutable); sequences and mappings are
// copied recursively so the clone can be handed to a caller without
// exposing the original to mutation.
func CloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = CloneValue(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, elem := range t {
			out[k] = CloneValue(elem)
		}
		return out
	default:
		return t
	}
}

// CloneOutcome deep-copies an outcome mapping. A nil mapping clones to an
// empty one so decisions always carry a non-nil outcome.
func CloneOutcome(outcome map[string]any) map[string]any {
	out := make(map[string]any, len(outcome))
	for k, v := range outcome {
		out[k] = CloneValue(v)
	}
	return out
}
