package script

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/openfacts/openfacts/pkg/facts"
)

// toFactData converts a Starlark value into the engine's dynamic fact data:
// scalars pass through, lists become []any, dicts become *facts.Mapping
// with plain and symbolic keys kept distinct.
func toFactData(v starlark.Value) (any, error) {
	switch val := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.Bool:
		return bool(val), nil
	case starlark.Int:
		i, ok := val.Int64()
		if !ok {
			return val.String(), nil
		}
		return i, nil
	case starlark.Float:
		return float64(val), nil
	case starlark.String:
		return string(val), nil
	case Symbol:
		return string(val), nil
	case *starlark.List:
		seq := make([]any, val.Len())
		for i := 0; i < val.Len(); i++ {
			item, err := toFactData(val.Index(i))
			if err != nil {
				return nil, err
			}
			seq[i] = item
		}
		return seq, nil
	case starlark.Tuple:
		seq := make([]any, len(val))
		for i, item := range val {
			converted, err := toFactData(item)
			if err != nil {
				return nil, err
			}
			seq[i] = converted
		}
		return seq, nil
	case *starlark.Dict:
		mapping := facts.NewMapping()
		for _, item := range val.Items() {
			value, err := toFactData(item[1])
			if err != nil {
				return nil, err
			}
			switch key := item[0].(type) {
			case starlark.String:
				mapping.Set(string(key), value)
			case Symbol:
				mapping.SetSymbol(string(key), value)
			default:
				return nil, fmt.Errorf("dict key must be a string or symbol, got %s", item[0].Type())
			}
		}
		return mapping, nil
	case *starlarkstruct.Struct:
		mapping := facts.NewMapping()
		for _, name := range val.AttrNames() {
			attr, err := val.Attr(name)
			if err != nil {
				continue
			}
			value, err := toFactData(attr)
			if err != nil {
				return nil, err
			}
			mapping.Set(name, value)
		}
		return mapping, nil
	default:
		return nil, fmt.Errorf("unsupported starlark type: %s", v.Type())
	}
}

// toStarlark converts engine fact data into a Starlark value, the inverse
// of toFactData. It also accepts plain map[string]any for data that never
// passed through the runtime (external and cached facts).
func toStarlark(data any) (starlark.Value, error) {
	switch val := data.(type) {
	case nil:
		return starlark.None, nil
	case bool:
		return starlark.Bool(val), nil
	case int:
		return starlark.MakeInt(val), nil
	case int64:
		return starlark.MakeInt64(val), nil
	case uint64:
		return starlark.MakeUint64(val), nil
	case float64:
		return starlark.Float(val), nil
	case string:
		return starlark.String(val), nil
	case []any:
		items := make([]starlark.Value, len(val))
		for i, item := range val {
			converted, err := toStarlark(item)
			if err != nil {
				return nil, err
			}
			items[i] = converted
		}
		return starlark.NewList(items), nil
	case *facts.Mapping:
		dict := starlark.NewDict(val.Len())
		for _, key := range val.Keys() {
			converted, err := toStarlark(val.Lookup(key))
			if err != nil {
				return nil, err
			}
			if err := dict.SetKey(starlark.String(key), converted); err != nil {
				return nil, err
			}
		}
		return dict, nil
	case map[string]any:
		dict := starlark.NewDict(len(val))
		for key, item := range val {
			converted, err := toStarlark(item)
			if err != nil {
				return nil, err
			}
			if err := dict.SetKey(starlark.String(key), converted); err != nil {
				return nil, err
			}
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("unsupported fact data type: %T", data)
	}
}
