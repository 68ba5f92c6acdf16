package facts

import "fmt"

// Normalize converts arbitrary decoded Go data (the shapes produced by
// JSON/YAML unmarshaling) into the engine's fact data shapes: maps become
// *Mapping, slices become []any, and integer scalars widen to int64 so
// navigated values compare consistently regardless of source.
func Normalize(data any) any {
	switch val := data.(type) {
	case map[string]any:
		m := NewMapping()
		for key, item := range val {
			m.Set(key, Normalize(item))
		}
		return m
	case map[any]any:
		m := NewMapping()
		for key, item := range val {
			m.Set(fmt.Sprint(key), Normalize(item))
		}
		return m
	case []any:
		seq := make([]any, len(val))
		for i, item := range val {
			seq[i] = Normalize(item)
		}
		return seq
	case int:
		return int64(val)
	case int32:
		return int64(val)
	case uint:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		return int64(val)
	case float32:
		return float64(val)
	default:
		return val
	}
}
