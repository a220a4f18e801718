package rustache

import (
	"fmt"
	"sort"
	"strconv"
)

// ValueOf converts a plain Go value into the template data model:
//
//	string                 → Static
//	bool                   → Bool
//	int kinds, float kinds → Static (canonical decimal form)
//	[]any, []string        → Sequence
//	map[string]any         → Scope (keys sorted; map order is not preserved)
//	map[any]any            → Scope (keys stringified, then sorted)
//	func(string) string    → Lambda
//	Value                  → unchanged
//
// Nil map entries are skipped; a nil value or element anywhere else is an
// error, as is any unlisted type.
func ValueOf(v any) (Value, error) {
	switch v := v.(type) {
	case nil:
		return nil, fmt.Errorf("cannot convert nil to a template value")
	case Value:
		return v, nil
	case string:
		return Static(v), nil
	case bool:
		return Bool(v), nil
	case int:
		return Static(strconv.FormatInt(int64(v), 10)), nil
	case int8:
		return Static(strconv.FormatInt(int64(v), 10)), nil
	case int16:
		return Static(strconv.FormatInt(int64(v), 10)), nil
	case int32:
		return Static(strconv.FormatInt(int64(v), 10)), nil
	case int64:
		return Static(strconv.FormatInt(v, 10)), nil
	case uint:
		return Static(strconv.FormatUint(uint64(v), 10)), nil
	case uint8:
		return Static(strconv.FormatUint(uint64(v), 10)), nil
	case uint16:
		return Static(strconv.FormatUint(uint64(v), 10)), nil
	case uint32:
		return Static(strconv.FormatUint(uint64(v), 10)), nil
	case uint64:
		return Static(strconv.FormatUint(v, 10)), nil
	case float32:
		return Static(strconv.FormatFloat(float64(v), 'f', -1, 32)), nil
	case float64:
		return Static(strconv.FormatFloat(v, 'f', -1, 64)), nil
	case func(string) string:
		return Lambda(v), nil
	case []any:
		seq := make(Sequence, 0, len(v))
		for i, elem := range v {
			ev, err := ValueOf(elem)
			if err != nil {
				return nil, fmt.Errorf("sequence element %d: %w", i, err)
			}
			seq = append(seq, ev)
		}
		return seq, nil
	case []string:
		seq := make(Sequence, 0, len(v))
		for _, s := range v {
			seq = append(seq, Static(s))
		}
		return seq, nil
	case map[string]any:
		return ScopeOf(v)
	case map[any]any:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[fmt.Sprint(k)] = val
		}
		return ScopeOf(m)
	default:
		return nil, fmt.Errorf("unsupported type %T for template value", v)
	}
}

// ScopeOf converts a string-keyed map into a Scope, recursively converting
// values via ValueOf. Keys are inserted in sorted order; nil entries are
// skipped.
func ScopeOf(m map[string]any) (*Scope, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	scope := NewScope()
	for _, k := range keys {
		if m[k] == nil {
			continue
		}
		v, err := ValueOf(m[k])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		scope.Set(k, v)
	}
	return scope, nil
}
