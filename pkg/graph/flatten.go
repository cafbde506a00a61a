package graph

import "encoding/json"

// FlattenProperties prepares a property map for graph storage. Property
// stores only accept scalars (string, int, float, bool) or homogeneous
// arrays of scalars. Nested objects and heterogeneous arrays are serialized
// to JSON text; nil values are dropped entirely. Encoding is deterministic
// (encoding/json sorts map keys), so flattening is idempotent.
func FlattenProperties(properties map[string]any) map[string]any {
	if len(properties) == 0 {
		return nil
	}

	flattened := make(map[string]any, len(properties))
	for key, value := range properties {
		if value == nil {
			continue
		}
		switch v := value.(type) {
		case string, bool,
			int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64:
			flattened[key] = v
		case []string, []bool, []int, []int64, []float64, []float32:
			flattened[key] = v
		case []any:
			if scalars, ok := scalarSlice(v); ok {
				flattened[key] = scalars
			} else {
				flattened[key] = encodeJSON(v)
			}
		default:
			flattened[key] = encodeJSON(v)
		}
	}
	if len(flattened) == 0 {
		return nil
	}
	return flattened
}

// scalarSlice reports whether every element is a scalar of the same kind and
// returns the slice unchanged if so.
func scalarSlice(values []any) ([]any, bool) {
	if len(values) == 0 {
		return values, true
	}
	kind := scalarKind(values[0])
	if kind == kindOther {
		return nil, false
	}
	for _, v := range values[1:] {
		if scalarKind(v) != kind {
			return nil, false
		}
	}
	return values, true
}

type valueKind int

const (
	kindString valueKind = iota
	kindBool
	kindNumber
	kindOther
)

func scalarKind(v any) valueKind {
	switch v.(type) {
	case string:
		return kindString
	case bool:
		return kindBool
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return kindNumber
	default:
		return kindOther
	}
}

func encodeJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// Unmarshalable values (channels, funcs) should never reach a
		// property map; store the error text rather than failing the write.
		return "{\"error\":\"unserializable property\"}"
	}
	return string(data)
}
