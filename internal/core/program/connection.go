package program

// Connection represents a directed edge between two elements. FromOutput and
// ToInput name the ports on either end and may be empty; a missing ToInput
// means the downstream block sees the value under the literal name "input".
type Connection struct {
	ID         string `json:"id"`
	From       string `json:"from_id"`
	To         string `json:"to_id"`
	FromOutput string `json:"from_output,omitempty"`
	ToInput    string `json:"to_input,omitempty"`
}

// DefaultInputPort is the key under which a propagated value is collected
// when a connection declares no input port.
const DefaultInputPort = "input"

// Validate ensures connection integrity. Endpoints are not resolved against
// any element collection here: a connection may be constructed before the
// elements it references exist, as long as both resolve by run time.
func (c *Connection) Validate() error {
	if c.ID == "" {
		return ErrInvalidConnectionID
	}
	if c.From == "" {
		return ErrInvalidFrom
	}
	if c.To == "" {
		return ErrInvalidTo
	}
	if c.From == c.To {
		return ErrSelfLoop
	}
	return nil
}

// InputKey returns the key this connection's propagated value is collected
// under on the downstream side.
func (c *Connection) InputKey() string {
	if c.ToInput != "" {
		return c.ToInput
	}
	return DefaultInputPort
}
