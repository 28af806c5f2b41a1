package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlProgram = `
id: demo
name: Demo Program
elements:
  - id: src
    type: const
    props:
      value: 21
      nested:
        inner: true
  - id: out
    type: print
connections:
  - id: c1
    from_id: src
    to_id: out
    to_input: input
`

const jsonProgram = `{
  "id": "demo",
  "name": "Demo Program",
  "elements": [
    {"id": "src", "type": "const", "props": {"value": 21}},
    {"id": "out", "type": "print"}
  ],
  "connections": [
    {"id": "c1", "from_id": "src", "to_id": "out", "to_input": "input"}
  ]
}`

func TestLoadYAML(t *testing.T) {
	p, err := LoadYAML([]byte(yamlProgram))
	require.NoError(t, err)

	assert.Equal(t, "demo", p.ID)
	assert.Equal(t, "Demo Program", p.Name)
	require.Len(t, p.Elements, 2)
	require.Len(t, p.Connections, 1)
	assert.Equal(t, "input", p.Connections["c1"].ToInput)

	// Nested YAML maps are normalized to map[string]interface{}.
	nested, ok := p.Elements["src"].Props["nested"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, nested["inner"])
}

func TestLoadJSON(t *testing.T) {
	p, err := LoadJSON([]byte(jsonProgram))
	require.NoError(t, err)
	assert.Equal(t, "demo", p.ID)
	assert.EqualValues(t, 21, p.Elements["src"].Props["value"])
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml extension", func(t *testing.T) {
		path := filepath.Join(dir, "prog.yaml")
		require.NoError(t, os.WriteFile(path, []byte(yamlProgram), 0o644))
		p, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "demo", p.ID)
	})

	t.Run("json extension", func(t *testing.T) {
		path := filepath.Join(dir, "prog.json")
		require.NoError(t, os.WriteFile(path, []byte(jsonProgram), 0o644))
		p, err := LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "demo", p.ID)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed yaml", ":\n  - ["},
		{"missing name", "id: p1\nelements:\n  - id: a\n    type: const\n"},
		{"no elements", "id: p1\nname: Empty\n"},
		{"dangling connection", `
id: p1
name: Bad
elements:
  - id: a
    type: const
connections:
  - id: c1
    from_id: a
    to_id: ghost
`},
		{"self loop", `
id: p1
name: Bad
elements:
  - id: a
    type: const
connections:
  - id: c1
    from_id: a
    to_id: a
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadYAML([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
