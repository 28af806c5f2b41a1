// Package validation provides program file models with validation tags
package validation

// ElementConfig represents an element as written in a program file.
type ElementConfig struct {
	ID    string                 `json:"id" yaml:"id" validate:"required,element_id"`
	Type  string                 `json:"type" yaml:"type" validate:"required,block_type"`
	X     float64                `json:"x,omitempty" yaml:"x,omitempty"`
	Y     float64                `json:"y,omitempty" yaml:"y,omitempty"`
	Props map[string]interface{} `json:"props,omitempty" yaml:"props,omitempty"`
}

// ConnectionConfig represents a connection as written in a program file.
type ConnectionConfig struct {
	ID         string `json:"id" yaml:"id" validate:"required,element_id"`
	From       string `json:"from_id" yaml:"from_id" validate:"required,element_id"`
	To         string `json:"to_id" yaml:"to_id" validate:"required,element_id"`
	FromOutput string `json:"from_output,omitempty" yaml:"from_output,omitempty" validate:"omitempty,port_name"`
	ToInput    string `json:"to_input,omitempty" yaml:"to_input,omitempty" validate:"omitempty,port_name"`
}

// ProgramConfig represents a complete program file.
type ProgramConfig struct {
	ID          string             `json:"id" yaml:"id" validate:"required,element_id"`
	Name        string             `json:"name" yaml:"name" validate:"required,min=1,max=200"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty" validate:"max=1000"`
	Version     string             `json:"version,omitempty" yaml:"version,omitempty" validate:"omitempty,semver"`
	Elements    []ElementConfig    `json:"elements" yaml:"elements" validate:"required,min=1,dive"`
	Connections []ConnectionConfig `json:"connections,omitempty" yaml:"connections,omitempty" validate:"dive"`
}

// Validate implements custom validation for ProgramConfig: unique ids,
// resolvable endpoints, no self-loops.
func (pc *ProgramConfig) Validate() error {
	var errs ValidationErrors

	elementIDs := make(map[string]bool, len(pc.Elements))
	for _, el := range pc.Elements {
		if elementIDs[el.ID] {
			errs = append(errs, ValidationError{Field: "elements", Value: el.ID, Message: "duplicate element ID"})
		}
		elementIDs[el.ID] = true
	}

	connIDs := make(map[string]bool, len(pc.Connections))
	for _, c := range pc.Connections {
		if connIDs[c.ID] {
			errs = append(errs, ValidationError{Field: "connections", Value: c.ID, Message: "duplicate connection ID"})
		}
		connIDs[c.ID] = true
		if c.From == c.To {
			errs = append(errs, ValidationError{Field: "connections", Value: c.ID, Message: "self-loops are not allowed"})
		}
		if !elementIDs[c.From] {
			errs = append(errs, ValidationError{Field: "connections", Value: c.From, Message: "source element not found"})
		}
		if !elementIDs[c.To] {
			errs = append(errs, ValidationError{Field: "connections", Value: c.To, Message: "target element not found"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
