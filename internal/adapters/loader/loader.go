// Package loader reads program files (YAML or JSON) into core programs.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/blockflow/blockflow/internal/core/program"
	"github.com/blockflow/blockflow/pkg/validation"
)

// LoadFile reads a program file, validates it, and converts it to a core
// program. The format is chosen by extension: .json for JSON, anything else
// is parsed as YAML.
func LoadFile(path string) (*program.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return LoadJSON(data)
	}
	return LoadYAML(data)
}

// LoadYAML parses a YAML program document.
func LoadYAML(data []byte) (*program.Program, error) {
	var cfg validation.ProgramConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML program: %w", err)
	}
	// yaml.v2 decodes nested maps as map[interface{}]interface{}, which
	// neither the engine nor the serializers accept.
	for i := range cfg.Elements {
		cfg.Elements[i].Props = normalizeMap(cfg.Elements[i].Props)
	}
	return build(&cfg)
}

// LoadJSON parses a JSON program document.
func LoadJSON(data []byte) (*program.Program, error) {
	var cfg validation.ProgramConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse JSON program: %w", err)
	}
	return build(&cfg)
}

// build validates a parsed config and converts it to a core program.
func build(cfg *validation.ProgramConfig) (*program.Program, error) {
	if err := validation.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid program file: %w", err)
	}

	p := program.New(cfg.ID, cfg.Name)
	for _, el := range cfg.Elements {
		e := &program.Element{
			ID:    el.ID,
			Type:  el.Type,
			X:     el.X,
			Y:     el.Y,
			Props: el.Props,
		}
		if err := p.AddElement(e); err != nil {
			return nil, fmt.Errorf("element %s: %w", el.ID, err)
		}
	}
	for _, c := range cfg.Connections {
		conn := &program.Connection{
			ID:         c.ID,
			From:       c.From,
			To:         c.To,
			FromOutput: c.FromOutput,
			ToInput:    c.ToInput,
		}
		if err := p.AddConnection(conn); err != nil {
			return nil, fmt.Errorf("connection %s: %w", c.ID, err)
		}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// normalizeMap converts yaml.v2's map[interface{}]interface{} values into
// map[string]interface{} recursively.
func normalizeMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, inner := range val {
			out[fmt.Sprintf("%v", k)] = normalizeValue(inner)
		}
		return out
	case map[string]interface{}:
		return normalizeMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, inner := range val {
			out[i] = normalizeValue(inner)
		}
		return out
	default:
		return v
	}
}
