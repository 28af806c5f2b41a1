package block

import (
	"fmt"
	"reflect"
)

// Bounds applied when default props are deep-copied at registration time.
const (
	maxPropKeyLen    = 100
	maxPropStringLen = 10000
	maxPropArrayLen  = 1000
)

// cloneProps deep-copies a props map with bounds: over-long keys fail the
// copy, over-long strings are truncated, over-long arrays are truncated, and
// nested maps/slices are copied structurally. Values that cannot be cloned
// structurally (funcs, channels) fail the copy.
func cloneProps(props map[string]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		if len(k) > maxPropKeyLen {
			return nil, fmt.Errorf("%w: key %q exceeds %d characters", ErrPropKeyTooLong, truncate(k, 32), maxPropKeyLen)
		}
		cv, err := cloneValue(v)
		if err != nil {
			return nil, fmt.Errorf("prop %q: %w", k, err)
		}
		out[k] = cv
	}
	return out, nil
}

// cloneValue performs a bounded structural clone of a single value.
func cloneValue(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case nil, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return val, nil
	case string:
		return truncate(val, maxPropStringLen), nil
	case map[string]interface{}:
		return cloneProps(val)
	case []interface{}:
		n := len(val)
		if n > maxPropArrayLen {
			n = maxPropArrayLen
		}
		out := make([]interface{}, n)
		for i := 0; i < n; i++ {
			cv, err := cloneValue(val[i])
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return nil, fmt.Errorf("%w: %T", ErrUnclonableProp, v)
	}
	// Structs and typed scalars pass through as-is; they are treated as
	// opaque immutable values.
	return v, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// deepEqualValue compares two prop values structurally.
func deepEqualValue(a, b interface{}) bool {
	if a == nil && b == nil {
		return true
	}
	return reflect.DeepEqual(a, b)
}
