// Package program provides the core program domain entities: elements (graph
// nodes referencing block types) and connections (directed edges between
// element ports).
package program

// Element represents one instantiated graph node. X/Y are layout hints only
// and are irrelevant to execution. Props are read-only from the engine's
// perspective during a run.
type Element struct {
	ID    string                 `json:"id"`
	Type  string                 `json:"type"`
	X     float64                `json:"x,omitempty"`
	Y     float64                `json:"y,omitempty"`
	Props map[string]interface{} `json:"props,omitempty"`
}

// Validate ensures element integrity.
func (e *Element) Validate() error {
	if e.ID == "" {
		return ErrInvalidElementID
	}
	if e.Type == "" {
		return ErrInvalidElementType
	}
	return nil
}

// Clone returns a deep-enough copy for handing across the engine boundary.
// Prop values are shared; the map itself is copied.
func (e *Element) Clone() *Element {
	cp := *e
	if e.Props != nil {
		cp.Props = make(map[string]interface{}, len(e.Props))
		for k, v := range e.Props {
			cp.Props[k] = v
		}
	}
	return &cp
}
