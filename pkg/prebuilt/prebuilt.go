package prebuilt

import (
	"fmt"

	"github.com/blockflow/blockflow/internal/core/block"
)

// library maps type names to their definition constructors. Constructors
// rather than shared values, so each registry gets its own copy.
var library = map[string]func() block.Definition{
	"const":       Const,
	"passthrough": Passthrough,
	"add":         Add,
	"multiply":    Multiply,
	"not":         Not,
	"gate":        Gate,
	"repeat":      Repeat,
	"counter":     Counter,
	"print":       Print,
}

// RegisterAll installs every prebuilt definition into the registry. Types
// already registered with an equal definition are skipped silently per
// registry semantics.
func RegisterAll(r *block.Registry) error {
	for name, build := range library {
		if err := r.Register(name, build()); err != nil {
			return fmt.Errorf("failed to register prebuilt %q: %w", name, err)
		}
	}
	return nil
}

// Types returns the type names RegisterAll would install.
func Types() []string {
	out := make([]string, 0, len(library))
	for name := range library {
		out = append(out, name)
	}
	return out
}

// toFloat coerces the numeric types that reach blocks through props and
// deserialized snapshots.
func toFloat(v interface{}) (float64, bool) {
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
	default:
		return 0, false
	}
}

// truthy reports whether a value counts as true for logic blocks: booleans by
// value, numbers by non-zero, strings by non-empty, nil as false, everything
// else as true.
func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	default:
		if n, ok := toFloat(v); ok {
			return n != 0
		}
		return true
	}
}
