package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreprogram "github.com/blockflow/blockflow/internal/core/program"
)

func elems(ids ...string) map[string]*coreprogram.Element {
	out := make(map[string]*coreprogram.Element, len(ids))
	for _, id := range ids {
		out[id] = &coreprogram.Element{ID: id, Type: "t"}
	}
	return out
}

func conns(pairs ...[2]string) map[string]*coreprogram.Connection {
	out := make(map[string]*coreprogram.Connection, len(pairs))
	for i, p := range pairs {
		id := string(rune('a'+i)) + "-conn"
		out[id] = &coreprogram.Connection{ID: id, From: p[0], To: p[1]}
	}
	return out
}

func TestEntryPoints(t *testing.T) {
	t.Run("sources only", func(t *testing.T) {
		got := EntryPoints(elems("a", "b", "c"), conns([2]string{"a", "b"}, [2]string{"b", "c"}))
		assert.Equal(t, []string{"a"}, got)
	})

	t.Run("multiple entries sorted", func(t *testing.T) {
		got := EntryPoints(elems("z", "a", "m"), nil)
		assert.Equal(t, []string{"a", "m", "z"}, got)
	})

	t.Run("full cycle has no entries", func(t *testing.T) {
		got := EntryPoints(elems("a", "b"), conns([2]string{"a", "b"}, [2]string{"b", "a"}))
		assert.Empty(t, got)
	})
}

func TestFindCycles(t *testing.T) {
	t.Run("acyclic", func(t *testing.T) {
		got := FindCycles(elems("a", "b", "c"), conns([2]string{"a", "b"}, [2]string{"b", "c"}))
		assert.Empty(t, got)
	})

	t.Run("two-element cycle found once", func(t *testing.T) {
		got := FindCycles(elems("a", "b"), conns([2]string{"a", "b"}, [2]string{"b", "a"}))
		require.Len(t, got, 1)
		assert.ElementsMatch(t, []string{"a", "b"}, got[0])
	})

	t.Run("cycle behind a tail", func(t *testing.T) {
		got := FindCycles(elems("start", "x", "y"), conns(
			[2]string{"start", "x"},
			[2]string{"x", "y"},
			[2]string{"y", "x"},
		))
		require.Len(t, got, 1)
		assert.ElementsMatch(t, []string{"x", "y"}, got[0])
	})

	t.Run("two independent cycles", func(t *testing.T) {
		got := FindCycles(elems("a", "b", "c", "d"), conns(
			[2]string{"a", "b"},
			[2]string{"b", "a"},
			[2]string{"c", "d"},
			[2]string{"d", "c"},
		))
		assert.Len(t, got, 2)
	})
}

func TestFindOrphans(t *testing.T) {
	got := FindOrphans(elems("a", "b", "lonely"), conns([2]string{"a", "b"}))
	assert.Equal(t, []string{"lonely"}, got)

	assert.Empty(t, FindOrphans(elems("a", "b"), conns([2]string{"a", "b"})))
}

func TestProgramConfig_Validate(t *testing.T) {
	valid := func() *ProgramConfig {
		return &ProgramConfig{
			ID:   "p1",
			Name: "Test",
			Elements: []ElementConfig{
				{ID: "a", Type: "const"},
				{ID: "b", Type: "print"},
			},
			Connections: []ConnectionConfig{
				{ID: "c1", From: "a", To: "b"},
			},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, Struct(valid()))
	})

	t.Run("missing name", func(t *testing.T) {
		cfg := valid()
		cfg.Name = ""
		assert.Error(t, Struct(cfg))
	})

	t.Run("no elements", func(t *testing.T) {
		cfg := valid()
		cfg.Elements = nil
		assert.Error(t, Struct(cfg))
	})

	t.Run("bad block type", func(t *testing.T) {
		cfg := valid()
		cfg.Elements[0].Type = "9bad"
		assert.Error(t, Struct(cfg))
	})

	t.Run("duplicate element id", func(t *testing.T) {
		cfg := valid()
		cfg.Elements[1].ID = "a"
		err := Struct(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate element ID")
	})

	t.Run("dangling endpoint", func(t *testing.T) {
		cfg := valid()
		cfg.Connections[0].To = "ghost"
		err := Struct(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "target element not found")
	})

	t.Run("self loop", func(t *testing.T) {
		cfg := valid()
		cfg.Connections[0].To = "a"
		err := Struct(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "self-loops")
	})

	t.Run("bad version", func(t *testing.T) {
		cfg := valid()
		cfg.Version = "v1"
		assert.Error(t, Struct(cfg))
	})
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "name", Value: "", Message: "field is required"},
		{Field: "type", Value: "9bad", Message: "must start with a letter"},
	}
	msg := errs.Error()
	assert.Contains(t, msg, "name")
	assert.Contains(t, msg, "type")
}
