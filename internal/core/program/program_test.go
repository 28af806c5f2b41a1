package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgram_Validate(t *testing.T) {
	tests := []struct {
		name    string
		program *Program
		wantErr error
	}{
		{
			name: "valid program",
			program: &Program{
				Name: "test",
				Elements: map[string]*Element{
					"a": {ID: "a", Type: "const"},
					"b": {ID: "b", Type: "print"},
				},
				Connections: map[string]*Connection{
					"c1": {ID: "c1", From: "a", To: "b"},
				},
			},
			wantErr: nil,
		},
		{
			name:    "missing name",
			program: &Program{},
			wantErr: ErrInvalidProgramName,
		},
		{
			name: "nil element",
			program: &Program{
				Name:     "test",
				Elements: map[string]*Element{"a": nil},
			},
			wantErr: ErrNilElement,
		},
		{
			name: "dangling source",
			program: &Program{
				Name: "test",
				Elements: map[string]*Element{
					"b": {ID: "b", Type: "print"},
				},
				Connections: map[string]*Connection{
					"c1": {ID: "c1", From: "ghost", To: "b"},
				},
			},
			wantErr: ErrFromNotFound,
		},
		{
			name: "dangling target",
			program: &Program{
				Name: "test",
				Elements: map[string]*Element{
					"a": {ID: "a", Type: "const"},
				},
				Connections: map[string]*Connection{
					"c1": {ID: "c1", From: "a", To: "ghost"},
				},
			},
			wantErr: ErrToNotFound,
		},
		{
			name: "self loop",
			program: &Program{
				Name: "test",
				Elements: map[string]*Element{
					"a": {ID: "a", Type: "const"},
				},
				Connections: map[string]*Connection{
					"c1": {ID: "c1", From: "a", To: "a"},
				},
			},
			wantErr: ErrSelfLoop,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.program.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProgram_AddElement(t *testing.T) {
	p := New("p1", "test")

	t.Run("add valid element", func(t *testing.T) {
		err := p.AddElement(&Element{ID: "a", Type: "const"})
		require.NoError(t, err)
		assert.Len(t, p.Elements, 1)
	})

	t.Run("duplicate rejected", func(t *testing.T) {
		err := p.AddElement(&Element{ID: "a", Type: "const"})
		assert.ErrorIs(t, err, ErrDuplicateElement)
	})

	t.Run("nil rejected", func(t *testing.T) {
		assert.ErrorIs(t, p.AddElement(nil), ErrNilElement)
	})

	t.Run("missing type rejected", func(t *testing.T) {
		err := p.AddElement(&Element{ID: "b"})
		assert.ErrorIs(t, err, ErrInvalidElementType)
	})
}

func TestProgram_AddConnection(t *testing.T) {
	p := New("p1", "test")
	require.NoError(t, p.AddElement(&Element{ID: "a", Type: "const"}))

	t.Run("dangling endpoints accepted until validate", func(t *testing.T) {
		// Edges may legally be created before their elements.
		err := p.AddConnection(&Connection{ID: "c1", From: "a", To: "later"})
		require.NoError(t, err)
		assert.ErrorIs(t, p.Validate(), ErrToNotFound)

		require.NoError(t, p.AddElement(&Element{ID: "later", Type: "print"}))
		assert.NoError(t, p.Validate())
	})

	t.Run("self loop rejected immediately", func(t *testing.T) {
		err := p.AddConnection(&Connection{ID: "c2", From: "a", To: "a"})
		assert.ErrorIs(t, err, ErrSelfLoop)
	})

	t.Run("duplicate rejected", func(t *testing.T) {
		err := p.AddConnection(&Connection{ID: "c1", From: "a", To: "later"})
		assert.ErrorIs(t, err, ErrDuplicateConnection)
	})
}

func TestProgram_SortedIDs(t *testing.T) {
	p := New("p1", "test")
	for _, id := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, p.AddElement(&Element{ID: id, Type: "const"}))
	}
	require.NoError(t, p.AddConnection(&Connection{ID: "c2", From: "zeta", To: "mid"}))
	require.NoError(t, p.AddConnection(&Connection{ID: "c1", From: "alpha", To: "mid"}))

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, p.ElementIDs())
	assert.Equal(t, []string{"c1", "c2"}, p.ConnectionIDs())
}

func TestConnection_InputKey(t *testing.T) {
	c := &Connection{ID: "c1", From: "a", To: "b"}
	assert.Equal(t, DefaultInputPort, c.InputKey())

	c.ToInput = "value"
	assert.Equal(t, "value", c.InputKey())
}

func TestElement_Clone(t *testing.T) {
	e := &Element{ID: "a", Type: "const", Props: map[string]interface{}{"v": 1}}
	cp := e.Clone()
	cp.Props["v"] = 2
	assert.Equal(t, 1, e.Props["v"])
}
