// Package state provides the per-run state store backing the engine's
// element state slots and run log.
package state

// Reducer combines an element's current state slot with an update.
type Reducer interface {
	// Reduce combines current state with update and returns the new state.
	Reduce(current, update map[string]interface{}) map[string]interface{}
}

// LastValueReducer keeps the most recent value per key. Port emissions use
// this: re-emitting on a port overwrites the previous value.
type LastValueReducer struct{}

// NewLastValueReducer creates a last-value reducer.
func NewLastValueReducer() *LastValueReducer {
	return &LastValueReducer{}
}

// Reduce overwrites current keys with update keys.
func (r *LastValueReducer) Reduce(current, update map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(current)+len(update))
	for k, v := range current {
		result[k] = v
	}
	for k, v := range update {
		result[k] = v
	}
	return result
}

// AppendReducer accumulates values per key into slices. Useful for blocks
// that collect a history of inputs in their state slot.
type AppendReducer struct{}

// NewAppendReducer creates an append reducer.
func NewAppendReducer() *AppendReducer {
	return &AppendReducer{}
}

// Reduce appends update values onto current values, promoting scalars to
// slices as needed.
func (r *AppendReducer) Reduce(current, update map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(current)+len(update))
	for k, v := range current {
		result[k] = v
	}
	for k, v := range update {
		existing, ok := result[k]
		if !ok {
			result[k] = v
			continue
		}
		result[k] = appendValues(existing, v)
	}
	return result
}

func appendValues(current, update interface{}) interface{} {
	cs, cok := current.([]interface{})
	if !cok {
		cs = []interface{}{current}
	}
	if us, uok := update.([]interface{}); uok {
		return append(cs, us...)
	}
	return append(cs, update)
}
