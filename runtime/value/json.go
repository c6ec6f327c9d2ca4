package value

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cast"
)

// FromGo converts a decoded Go value (the shapes encoding/json produces,
// plus the other primitive kinds a host program may hand over) into the
// value model. The keys of a plain Go map are inserted in sorted order;
// callers that care about the original order should supply JSON text
// instead.
func FromGo(a *Arena, in interface{}) (*Value, error) {
	switch v := in.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(v), nil
	case string:
		return a.NewString(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, err
		}
		return a.NewNumber(f), nil
	case []interface{}:
		arr := a.NewArrayWithCapacity(len(v), 0)
		for _, item := range v {
			member, err := FromGo(a, item)
			if err != nil {
				return nil, err
			}
			arr.Push(member)
		}
		return arr, nil
	case map[string]interface{}:
		obj := a.NewObject()
		for _, key := range sortedKeys(v) {
			member, err := FromGo(a, v[key])
			if err != nil {
				return nil, err
			}
			obj.Insert(key, member)
		}
		return obj, nil
	case *Value:
		return v, nil
	default:
		f, err := cast.ToFloat64E(in)
		if err != nil {
			return nil, fmt.Errorf("unsupported binding type %T", in)
		}
		return a.NewNumber(f), nil
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	// deterministic order for plain Go maps
	sort.Strings(keys)
	return keys
}
