package block

import (
	"fmt"
	"regexp"
	"sort"
	"sync"

	"github.com/blockflow/blockflow/pkg/validation"
)

const maxTypeNameLen = 50

var typeNameRE = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Registry is an in-memory catalog of block definitions keyed by type name.
// It holds pure data plus registration-time validation; execution state never
// lives here. A registry instance is constructed explicitly and injected into
// the engine, so test fixtures get isolated catalogs.
//
// The registry's own mutation methods must not be called concurrently with an
// active run; the engine only reads. The internal lock protects the catalog
// itself, not that caller contract.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register validates and stores a definition under the given type name.
//
// Re-registration with a structurally equal definition is a no-op. Equality
// deliberately compares the three callables by presence only, so a definition
// differing solely in execute/validate/render bodies is accepted silently;
// any other difference is a conflict and the caller must Unregister first.
func (r *Registry) Register(typeName string, def Definition) error {
	if err := validateTypeName(typeName); err != nil {
		return err
	}

	normalized, err := normalizeDefinition(&def)
	if err != nil {
		return fmt.Errorf("block type %q: %w", typeName, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.defs[typeName]; ok {
		if equalDefinitions(existing, normalized) {
			return nil
		}
		return fmt.Errorf("%w: %q (unregister the existing definition first)", ErrTypeConflict, typeName)
	}

	r.defs[typeName] = normalized
	return nil
}

// Get returns a defensive copy of the definition for a type name.
func (r *Registry) Get(typeName string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[typeName]
	if !ok {
		return nil, false
	}
	return def.clone(), true
}

// Has reports whether a type name is registered.
func (r *Registry) Has(typeName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.defs[typeName]
	return ok
}

// Types returns all registered type names in ascending order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.defs))
	for name := range r.defs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ByCategory returns the type names registered under a category, sorted.
func (r *Registry) ByCategory(c Category) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for name, def := range r.defs {
		if def.Category == c {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// All returns defensive copies of every registered definition keyed by type.
func (r *Registry) All() map[string]*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*Definition, len(r.defs))
	for name, def := range r.defs {
		out[name] = def.clone()
	}
	return out
}

// Stats summarizes the registry contents.
type Stats struct {
	Total       int              `json:"total"`
	PerCategory map[Category]int `json:"per_category"`
	AvgInputs   float64          `json:"avg_inputs"`
	AvgOutputs  float64          `json:"avg_outputs"`
}

// Stats returns per-category counts and average port arity.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Stats{PerCategory: make(map[Category]int)}
	var inputs, outputs int
	for _, def := range r.defs {
		s.Total++
		s.PerCategory[def.Category]++
		inputs += len(def.Inputs)
		outputs += len(def.Outputs)
	}
	if s.Total > 0 {
		s.AvgInputs = float64(inputs) / float64(s.Total)
		s.AvgOutputs = float64(outputs) / float64(s.Total)
	}
	return s
}

// Unregister removes a type name, reporting whether it was present.
func (r *Registry) Unregister(typeName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.defs[typeName]
	delete(r.defs, typeName)
	return ok
}

// Clear wipes the catalog. The confirm flag guards against accidental wipes.
func (r *Registry) Clear(confirm bool) error {
	if !confirm {
		return ErrClearNotConfirmed
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs = make(map[string]*Definition)
	return nil
}

// ValidationResult reports the outcome of validating an element's props
// against a definition.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ValidateBlock runs the definition's validate logic over props, flags keys
// present in the default props but missing from props as warnings, and flags
// oversized prop values as warnings.
func (r *Registry) ValidateBlock(typeName string, props map[string]interface{}) ValidationResult {
	def, ok := r.Get(typeName)
	if !ok {
		return ValidationResult{Errors: []string{fmt.Sprintf("unknown block type %q", typeName)}}
	}

	res := ValidationResult{IsValid: true}
	if def.Validate != nil {
		if err := safeValidate(def.Validate, props); err != nil {
			res.IsValid = false
			res.Errors = append(res.Errors, err.Error())
		}
	}

	for _, key := range sortedKeys(def.DefaultProps) {
		if _, present := props[key]; !present {
			res.Warnings = append(res.Warnings, fmt.Sprintf("prop %q has a default but is not set", key))
		}
	}
	for _, key := range sortedKeys(props) {
		switch v := props[key].(type) {
		case string:
			if len(v) > maxPropStringLen {
				res.Warnings = append(res.Warnings, fmt.Sprintf("prop %q exceeds %d characters", key, maxPropStringLen))
			}
		case []interface{}:
			if len(v) > maxPropArrayLen {
				res.Warnings = append(res.Warnings, fmt.Sprintf("prop %q exceeds %d elements", key, maxPropArrayLen))
			}
		}
	}
	return res
}

func validateTypeName(typeName string) error {
	if typeName == "" {
		return fmt.Errorf("%w: empty", ErrInvalidTypeName)
	}
	if len(typeName) > maxTypeNameLen {
		return fmt.Errorf("%w: %q exceeds %d characters", ErrInvalidTypeName, truncate(typeName, 32), maxTypeNameLen)
	}
	if !typeNameRE.MatchString(typeName) {
		return fmt.Errorf("%w: %q", ErrInvalidTypeName, typeName)
	}
	return nil
}

// normalizeDefinition builds the registry's private, fully-populated copy of
// a definition: field validation, port invariants, bounded prop copy,
// defaults, and a smoke test of any supplied render/validate logic.
func normalizeDefinition(def *Definition) (*Definition, error) {
	if err := validation.Struct(def); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if err := checkPorts(def.Inputs, def.Outputs); err != nil {
		return nil, err
	}

	normalized := &Definition{
		DisplayName: def.DisplayName,
		Category:    def.Category,
		Inputs:      append([]string(nil), def.Inputs...),
		Outputs:     append([]string(nil), def.Outputs...),
		Execute:     def.Execute,
		Validate:    def.Validate,
		Render:      def.Render,
		Version:     def.Version,
		Description: def.Description,
		Color:       def.Color,
		Icon:        def.Icon,
		Author:      def.Author,
	}
	if normalized.Version == "" {
		normalized.Version = "1.0.0"
	}

	if def.DefaultProps != nil {
		props, err := cloneProps(def.DefaultProps)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
		}
		normalized.DefaultProps = props
	} else {
		normalized.DefaultProps = map[string]interface{}{}
	}

	if err := smokeTest(normalized); err != nil {
		return nil, err
	}
	if normalized.Render == nil {
		normalized.Render = defaultRender(normalized.DisplayName)
	}
	return normalized, nil
}

func checkPorts(inputs, outputs []string) error {
	seen := make(map[string]struct{}, len(inputs))
	for _, p := range inputs {
		if _, dup := seen[p]; dup {
			return fmt.Errorf("%w: input %q", ErrDuplicatePort, p)
		}
		seen[p] = struct{}{}
	}
	outSeen := make(map[string]struct{}, len(outputs))
	for _, p := range outputs {
		if _, dup := outSeen[p]; dup {
			return fmt.Errorf("%w: output %q", ErrDuplicatePort, p)
		}
		outSeen[p] = struct{}{}
		if _, overlap := seen[p]; overlap {
			return fmt.Errorf("%w: %q", ErrPortOverlap, p)
		}
	}
	return nil
}

// smokeTest exercises supplied render/validate logic once against the default
// props and rejects the definition if either panics or produces a malformed
// shape.
func smokeTest(def *Definition) error {
	if def.Render != nil {
		rendered, err := safeRender(def.Render, def.DefaultProps)
		if err != nil {
			return fmt.Errorf("%w: render: %v", ErrSmokeTestFailed, err)
		}
		if rendered.Label == "" || len(rendered.Label) > 100 {
			return fmt.Errorf("%w: render label must be 1-100 characters", ErrSmokeTestFailed)
		}
		if len(rendered.Content) > 1000 {
			return fmt.Errorf("%w: render content exceeds 1000 characters", ErrSmokeTestFailed)
		}
	}
	if def.Validate != nil {
		// A rejection of the default props is acceptable; a panic is not.
		if err := safePanicOnly(func() { _ = def.Validate(def.DefaultProps) }); err != nil {
			return fmt.Errorf("%w: validate: %v", ErrSmokeTestFailed, err)
		}
	}
	return nil
}

func safeRender(render RenderFunc, props map[string]interface{}) (rendered Rendered, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	rendered = render(props)
	return rendered, nil
}

func safeValidate(validate ValidateFunc, props map[string]interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("validate panicked: %v", r)
		}
	}()
	return validate(props)
}

func safePanicOnly(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	fn()
	return nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
