package state

import (
	"fmt"
	"time"
)

// lastOutputKey tracks the most recent value an element emitted on any port,
// used when a connection declares no source port.
const lastOutputKey = "__last_output"

// Store owns the mutable state of a single run: one free-form slot per
// element, the most recent emission per element, and the ordered run log.
// A store is exclusively owned by one engine instance for the duration of a
// run; it is not safe for concurrent use and does not need to be, because
// traversal is strictly sequential.
type Store struct {
	slots   map[string]map[string]interface{}
	reducer Reducer
	log     []string
}

// NewStore creates an empty store using last-value reduction for slot writes.
func NewStore() *Store {
	return &Store{
		slots:   make(map[string]map[string]interface{}),
		reducer: NewLastValueReducer(),
	}
}

// Get reads one key from an element's slot.
func (s *Store) Get(elementID, key string) interface{} {
	return s.slots[elementID][key]
}

// Set writes one key into an element's slot.
func (s *Store) Set(elementID, key string, value interface{}) {
	s.Apply(elementID, map[string]interface{}{key: value})
}

// Apply merges an update into an element's slot through the store's reducer.
func (s *Store) Apply(elementID string, update map[string]interface{}) {
	s.slots[elementID] = s.reducer.Reduce(s.slots[elementID], update)
}

// RecordEmission stores an emitted value under its port name and as the
// element's last output.
func (s *Store) RecordEmission(elementID, port string, value interface{}) {
	s.Apply(elementID, map[string]interface{}{
		port:          value,
		lastOutputKey: value,
	})
}

// PortValue returns the last-known value an element produced on a port. An
// empty port name resolves to the element's most recent emission on any port.
func (s *Store) PortValue(elementID, port string) (interface{}, bool) {
	slot, ok := s.slots[elementID]
	if !ok {
		return nil, false
	}
	key := port
	if key == "" {
		key = lastOutputKey
	}
	v, ok := slot[key]
	return v, ok
}

// Logf appends a timestamped entry to the run log.
func (s *Store) Logf(format string, args ...interface{}) string {
	entry := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05.000"), fmt.Sprintf(format, args...))
	s.log = append(s.log, entry)
	return entry
}

// Log returns a copy of the run log.
func (s *Store) Log() []string {
	return append([]string(nil), s.log...)
}

// Snapshot returns a deep copy of every element slot, with the store's
// internal bookkeeping keys stripped.
func (s *Store) Snapshot() map[string]map[string]interface{} {
	out := make(map[string]map[string]interface{}, len(s.slots))
	for id, slot := range s.slots {
		cp := make(map[string]interface{}, len(slot))
		for k, v := range slot {
			if k == lastOutputKey {
				continue
			}
			cp[k] = v
		}
		out[id] = cp
	}
	return out
}
