// Package block provides the core block domain entities: immutable block
// definitions, the category taxonomy, and the registry that is the single
// source of truth for what a block is.
package block

import (
	"context"
	"fmt"
)

// Category classifies a block definition.
type Category string

const (
	// CategoryData represents data-producing and data-shaping blocks
	CategoryData Category = "data"
	// CategoryControl represents flow-control blocks
	CategoryControl Category = "control"
	// CategoryMath represents arithmetic blocks
	CategoryMath Category = "math"
	// CategoryIO represents input/output blocks
	CategoryIO Category = "io"
	// CategoryLogic represents boolean logic blocks
	CategoryLogic Category = "logic"
)

// Categories lists all valid categories in display order.
func Categories() []Category {
	return []Category{CategoryData, CategoryControl, CategoryMath, CategoryIO, CategoryLogic}
}

// IsValid reports whether the category is a member of the closed set.
func (c Category) IsValid() bool {
	switch c {
	case CategoryData, CategoryControl, CategoryMath, CategoryIO, CategoryLogic:
		return true
	}
	return false
}

// Rendered is the presentation shape a block's render logic produces.
// Value is optional and empty when unused.
type Rendered struct {
	Label   string `json:"label"`
	Content string `json:"content"`
	Value   string `json:"value,omitempty"`
}

// Context is the view of a running node that block execute logic receives.
// Implementations are provided by the execution engine; block authors only
// consume this interface.
type Context interface {
	// Context returns the run's cancellation context. Long-running blocks
	// should observe it.
	Context() context.Context

	// Inputs returns the collected input values for this invocation: the
	// last-known upstream output per incoming connection, with the element's
	// own props merged on top (props win on key collision).
	Inputs() map[string]interface{}

	// Get reads a key from this element's state slot.
	Get(key string) interface{}

	// Set writes a key into this element's state slot.
	Set(key string, value interface{})

	// Emit records value under the named output port and schedules traversal
	// of this element's outgoing connections. A block may emit zero, one, or
	// many times.
	Emit(port string, value interface{})

	// Logf appends a formatted message to the run log.
	Logf(format string, args ...interface{})
}

// ExecuteFunc is a block's execution logic.
type ExecuteFunc func(ctx Context) error

// ValidateFunc checks an element's props; nil means the props are acceptable.
type ValidateFunc func(props map[string]interface{}) error

// RenderFunc produces the presentation shape for an element's props.
type RenderFunc func(props map[string]interface{}) Rendered

// Definition describes a registered block type. Definitions are normalized
// and copied on registration; the registry never hands out its internal copy.
type Definition struct {
	DisplayName  string                 `json:"display_name" validate:"required,max=100"`
	Category     Category               `json:"category" validate:"required,block_category"`
	Inputs       []string               `json:"inputs,omitempty" validate:"max=20,dive,port_name"`
	Outputs      []string               `json:"outputs,omitempty" validate:"max=20,dive,port_name"`
	DefaultProps map[string]interface{} `json:"default_props,omitempty"`

	// Optional capability callables. A definition with a nil Execute is a
	// pure data/presentation block; a nil Render gets a synthesized default.
	Execute  ExecuteFunc  `json:"-"`
	Validate ValidateFunc `json:"-"`
	Render   RenderFunc   `json:"-"`

	// Metadata only; irrelevant to execution.
	Version     string `json:"version,omitempty" validate:"omitempty,semver"`
	Description string `json:"description,omitempty" validate:"max=500"`
	Color       string `json:"color,omitempty" validate:"max=50"`
	Icon        string `json:"icon,omitempty" validate:"max=50"`
	Author      string `json:"author,omitempty" validate:"max=100"`
}

// clone returns a deep copy of the definition. Callables are shared; they are
// compared by presence only (see equalDefinitions).
func (d *Definition) clone() *Definition {
	cp := *d
	cp.Inputs = append([]string(nil), d.Inputs...)
	cp.Outputs = append([]string(nil), d.Outputs...)
	if d.DefaultProps != nil {
		props, err := cloneProps(d.DefaultProps)
		if err == nil {
			cp.DefaultProps = props
		}
	}
	return &cp
}

// defaultRender synthesizes a render function for definitions that supply
// none.
func defaultRender(displayName string) RenderFunc {
	return func(props map[string]interface{}) Rendered {
		return Rendered{
			Label:   displayName,
			Content: fmt.Sprintf("%d properties", len(props)),
		}
	}
}

// equalDefinitions reports structural equality between two normalized
// definitions. Metadata and port lists compare by value, default props by
// deep equality, and the three callables by presence only: two definitions
// with different execute bodies but identical metadata are considered equal.
func equalDefinitions(a, b *Definition) bool {
	if a.DisplayName != b.DisplayName ||
		a.Category != b.Category ||
		a.Version != b.Version ||
		a.Description != b.Description ||
		a.Color != b.Color ||
		a.Icon != b.Icon ||
		a.Author != b.Author {
		return false
	}
	if !equalStrings(a.Inputs, b.Inputs) || !equalStrings(a.Outputs, b.Outputs) {
		return false
	}
	if !deepEqualValue(a.DefaultProps, b.DefaultProps) {
		return false
	}
	if (a.Execute == nil) != (b.Execute == nil) {
		return false
	}
	if (a.Validate == nil) != (b.Validate == nil) {
		return false
	}
	return (a.Render == nil) == (b.Render == nil)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
