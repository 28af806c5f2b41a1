package program

import (
	"sort"
	"time"
)

// Program bundles the two keyed collections the engine consumes: elements by
// id and connections by id. The graph provider (UI layer) owns and mutates a
// program between runs; the engine treats it as a snapshot.
type Program struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Elements    map[string]*Element    `json:"elements"`
	Connections map[string]*Connection `json:"connections"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// New creates an empty program.
func New(id, name string) *Program {
	now := time.Now()
	return &Program{
		ID:          id,
		Name:        name,
		Elements:    make(map[string]*Element),
		Connections: make(map[string]*Connection),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Validate ensures program integrity: well-formed elements and connections,
// and connection endpoints that resolve. Endpoint resolution is deferred to
// here (rather than AddConnection) because edges may legally be created
// before their elements.
func (p *Program) Validate() error {
	if p.Name == "" {
		return ErrInvalidProgramName
	}
	for _, e := range p.Elements {
		if e == nil {
			return ErrNilElement
		}
		if err := e.Validate(); err != nil {
			return err
		}
	}
	for _, c := range p.Connections {
		if c == nil {
			return ErrNilConnection
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if _, ok := p.Elements[c.From]; !ok {
			return ErrFromNotFound
		}
		if _, ok := p.Elements[c.To]; !ok {
			return ErrToNotFound
		}
	}
	return nil
}

// AddElement adds an element to the program.
func (p *Program) AddElement(e *Element) error {
	if e == nil {
		return ErrNilElement
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if p.Elements == nil {
		p.Elements = make(map[string]*Element)
	}
	if _, exists := p.Elements[e.ID]; exists {
		return ErrDuplicateElement
	}
	p.Elements[e.ID] = e
	p.UpdatedAt = time.Now()
	return nil
}

// AddConnection adds a connection. Endpoints need not resolve yet; Validate
// enforces resolution before a run.
func (p *Program) AddConnection(c *Connection) error {
	if c == nil {
		return ErrNilConnection
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if p.Connections == nil {
		p.Connections = make(map[string]*Connection)
	}
	if _, exists := p.Connections[c.ID]; exists {
		return ErrDuplicateConnection
	}
	p.Connections[c.ID] = c
	p.UpdatedAt = time.Now()
	return nil
}

// ElementIDs returns element ids in ascending order. Go map iteration is
// unordered, so every place the engine needs "iteration order" pins it to
// this ordering.
func (p *Program) ElementIDs() []string {
	ids := make([]string, 0, len(p.Elements))
	for id := range p.Elements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ConnectionIDs returns connection ids in ascending order.
func (p *Program) ConnectionIDs() []string {
	ids := make([]string, 0, len(p.Connections))
	for id := range p.Connections {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
