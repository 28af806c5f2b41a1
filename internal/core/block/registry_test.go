package block

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minimalDef() Definition {
	return Definition{
		DisplayName: "Test Block",
		Category:    CategoryData,
	}
}

func TestRegistry_Register(t *testing.T) {
	t.Run("minimal definition", func(t *testing.T) {
		r := NewRegistry()
		err := r.Register("test", minimalDef())
		require.NoError(t, err)
		assert.True(t, r.Has("test"))

		def, ok := r.Get("test")
		require.True(t, ok)
		assert.Equal(t, "1.0.0", def.Version)
		assert.NotNil(t, def.DefaultProps)
		assert.NotNil(t, def.Render, "a definition without render gets a synthesized one")
	})

	t.Run("synthesized render", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register("test", minimalDef()))
		def, _ := r.Get("test")
		rendered := def.Render(map[string]interface{}{"a": 1, "b": 2})
		assert.Equal(t, "Test Block", rendered.Label)
		assert.Equal(t, "2 properties", rendered.Content)
	})

	t.Run("explicit version kept", func(t *testing.T) {
		r := NewRegistry()
		def := minimalDef()
		def.Version = "2.1.0"
		require.NoError(t, r.Register("test", def))
		got, _ := r.Get("test")
		assert.Equal(t, "2.1.0", got.Version)
	})
}

func TestRegistry_TypeNames(t *testing.T) {
	tests := []struct {
		name     string
		typeName string
		wantErr  bool
	}{
		{"simple", "add", false},
		{"with digits", "add2", false},
		{"with underscore and dash", "my_block-v2", false},
		{"empty", "", true},
		{"leading digit", "2add", true},
		{"leading dash", "-add", true},
		{"spaces", "my block", true},
		{"too long", strings.Repeat("a", 51), true},
		{"exactly max", strings.Repeat("a", 50), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			err := r.Register(tt.typeName, minimalDef())
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTypeName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegistry_DefinitionValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Definition)
		wantErr error
	}{
		{"missing display name", func(d *Definition) { d.DisplayName = "" }, ErrInvalidDefinition},
		{"display name too long", func(d *Definition) { d.DisplayName = strings.Repeat("x", 101) }, ErrInvalidDefinition},
		{"invalid category", func(d *Definition) { d.Category = "misc" }, ErrInvalidDefinition},
		{"too many inputs", func(d *Definition) {
			for i := 0; i < 21; i++ {
				d.Inputs = append(d.Inputs, "in"+strings.Repeat("n", i+1))
			}
		}, ErrInvalidDefinition},
		{"invalid port name", func(d *Definition) { d.Inputs = []string{"1bad"} }, ErrInvalidDefinition},
		{"duplicate input", func(d *Definition) { d.Inputs = []string{"a", "a"} }, ErrDuplicatePort},
		{"duplicate output", func(d *Definition) { d.Outputs = []string{"out", "out"} }, ErrDuplicatePort},
		{"input output overlap", func(d *Definition) {
			d.Inputs = []string{"x"}
			d.Outputs = []string{"x"}
		}, ErrPortOverlap},
		{"invalid version", func(d *Definition) { d.Version = "not-semver" }, ErrInvalidDefinition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			def := minimalDef()
			tt.mutate(&def)
			err := r.Register("test", def)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRegistry_DefaultProps(t *testing.T) {
	t.Run("key too long", func(t *testing.T) {
		r := NewRegistry()
		def := minimalDef()
		def.DefaultProps = map[string]interface{}{strings.Repeat("k", 101): 1}
		err := r.Register("test", def)
		assert.ErrorIs(t, err, ErrInvalidDefinition)
	})

	t.Run("oversized string truncated", func(t *testing.T) {
		r := NewRegistry()
		def := minimalDef()
		def.DefaultProps = map[string]interface{}{"text": strings.Repeat("s", 10001)}
		require.NoError(t, r.Register("test", def))
		got, _ := r.Get("test")
		assert.Len(t, got.DefaultProps["text"], 10000)
	})

	t.Run("oversized array truncated", func(t *testing.T) {
		r := NewRegistry()
		big := make([]interface{}, 1001)
		def := minimalDef()
		def.DefaultProps = map[string]interface{}{"items": big}
		require.NoError(t, r.Register("test", def))
		got, _ := r.Get("test")
		assert.Len(t, got.DefaultProps["items"], 1000)
	})

	t.Run("unclonable value", func(t *testing.T) {
		r := NewRegistry()
		def := minimalDef()
		def.DefaultProps = map[string]interface{}{"fn": func() {}}
		err := r.Register("test", def)
		assert.ErrorIs(t, err, ErrInvalidDefinition)
	})

	t.Run("nested maps cloned", func(t *testing.T) {
		r := NewRegistry()
		nested := map[string]interface{}{"inner": map[string]interface{}{"n": 1}}
		def := minimalDef()
		def.DefaultProps = nested
		require.NoError(t, r.Register("test", def))

		got, _ := r.Get("test")
		got.DefaultProps["inner"].(map[string]interface{})["n"] = 99

		again, _ := r.Get("test")
		assert.Equal(t, 1, again.DefaultProps["inner"].(map[string]interface{})["n"])
	})
}

func TestRegistry_SmokeTest(t *testing.T) {
	t.Run("panicking render rejected", func(t *testing.T) {
		r := NewRegistry()
		def := minimalDef()
		def.Render = func(props map[string]interface{}) Rendered { panic("boom") }
		err := r.Register("test", def)
		assert.ErrorIs(t, err, ErrSmokeTestFailed)
	})

	t.Run("empty render label rejected", func(t *testing.T) {
		r := NewRegistry()
		def := minimalDef()
		def.Render = func(props map[string]interface{}) Rendered { return Rendered{} }
		err := r.Register("test", def)
		assert.ErrorIs(t, err, ErrSmokeTestFailed)
	})

	t.Run("oversized render content rejected", func(t *testing.T) {
		r := NewRegistry()
		def := minimalDef()
		def.Render = func(props map[string]interface{}) Rendered {
			return Rendered{Label: "ok", Content: strings.Repeat("c", 1001)}
		}
		err := r.Register("test", def)
		assert.ErrorIs(t, err, ErrSmokeTestFailed)
	})

	t.Run("panicking validate rejected", func(t *testing.T) {
		r := NewRegistry()
		def := minimalDef()
		def.Validate = func(props map[string]interface{}) error { panic("boom") }
		err := r.Register("test", def)
		assert.ErrorIs(t, err, ErrSmokeTestFailed)
	})

	t.Run("validate rejecting defaults is acceptable", func(t *testing.T) {
		r := NewRegistry()
		def := minimalDef()
		def.Validate = func(props map[string]interface{}) error { return errors.New("needs props") }
		assert.NoError(t, r.Register("test", def))
	})
}

func TestRegistry_Reregistration(t *testing.T) {
	t.Run("equal definition is a no-op", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register("test", minimalDef()))
		assert.NoError(t, r.Register("test", minimalDef()))
	})

	t.Run("different execute body still equal", func(t *testing.T) {
		r := NewRegistry()
		first := minimalDef()
		first.Execute = func(ctx Context) error { return nil }
		require.NoError(t, r.Register("test", first))

		second := minimalDef()
		second.Execute = func(ctx Context) error { return errors.New("different") }
		assert.NoError(t, r.Register("test", second), "callables compare by presence only")
	})

	t.Run("different metadata conflicts", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register("test", minimalDef()))

		changed := minimalDef()
		changed.DisplayName = "Other Block"
		err := r.Register("test", changed)
		assert.ErrorIs(t, err, ErrTypeConflict)
	})

	t.Run("added callable conflicts", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register("test", minimalDef()))

		withExec := minimalDef()
		withExec.Execute = func(ctx Context) error { return nil }
		err := r.Register("test", withExec)
		assert.ErrorIs(t, err, ErrTypeConflict)
	})
}

func TestRegistry_Catalog(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("zeta", Definition{DisplayName: "Z", Category: CategoryMath, Inputs: []string{"a", "b"}, Outputs: []string{"out"}}))
	require.NoError(t, r.Register("alpha", Definition{DisplayName: "A", Category: CategoryData}))

	t.Run("types sorted", func(t *testing.T) {
		assert.Equal(t, []string{"alpha", "zeta"}, r.Types())
	})

	t.Run("by category", func(t *testing.T) {
		assert.Equal(t, []string{"zeta"}, r.ByCategory(CategoryMath))
		assert.Empty(t, r.ByCategory(CategoryIO))
	})

	t.Run("stats", func(t *testing.T) {
		s := r.Stats()
		assert.Equal(t, 2, s.Total)
		assert.Equal(t, 1, s.PerCategory[CategoryMath])
		assert.Equal(t, 1.0, s.AvgInputs)
		assert.Equal(t, 0.5, s.AvgOutputs)
	})

	t.Run("unregister", func(t *testing.T) {
		assert.True(t, r.Unregister("alpha"))
		assert.False(t, r.Unregister("alpha"))
		assert.False(t, r.Has("alpha"))
	})

	t.Run("clear requires confirmation", func(t *testing.T) {
		assert.ErrorIs(t, r.Clear(false), ErrClearNotConfirmed)
		assert.True(t, r.Has("zeta"))
		require.NoError(t, r.Clear(true))
		assert.Empty(t, r.Types())
	})
}

func TestRegistry_ValidateBlock(t *testing.T) {
	r := NewRegistry()
	def := minimalDef()
	def.DefaultProps = map[string]interface{}{"count": 1}
	def.Validate = func(props map[string]interface{}) error {
		if _, ok := props["forbidden"]; ok {
			return errors.New("forbidden prop set")
		}
		return nil
	}
	require.NoError(t, r.Register("test", def))

	t.Run("unknown type", func(t *testing.T) {
		res := r.ValidateBlock("bogus", nil)
		assert.False(t, res.IsValid)
		require.Len(t, res.Errors, 1)
	})

	t.Run("valid props", func(t *testing.T) {
		res := r.ValidateBlock("test", map[string]interface{}{"count": 2})
		assert.True(t, res.IsValid)
		assert.Empty(t, res.Errors)
		assert.Empty(t, res.Warnings)
	})

	t.Run("validate rejection", func(t *testing.T) {
		res := r.ValidateBlock("test", map[string]interface{}{"count": 1, "forbidden": true})
		assert.False(t, res.IsValid)
		require.Len(t, res.Errors, 1)
	})

	t.Run("missing default warns", func(t *testing.T) {
		res := r.ValidateBlock("test", map[string]interface{}{})
		assert.True(t, res.IsValid)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "count")
	})

	t.Run("oversized prop warns", func(t *testing.T) {
		res := r.ValidateBlock("test", map[string]interface{}{
			"count": 1,
			"big":   strings.Repeat("x", 10001),
		})
		assert.True(t, res.IsValid)
		require.Len(t, res.Warnings, 1)
	})
}
