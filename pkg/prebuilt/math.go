package prebuilt

import (
	"fmt"

	"github.com/blockflow/blockflow/internal/core/block"
)

// Add sums its two inputs. Missing or non-numeric operands default to zero so
// partially wired programs still run.
func Add() block.Definition {
	return block.Definition{
		DisplayName: "Add",
		Category:    block.CategoryMath,
		Inputs:      []string{"a", "b"},
		Outputs:     []string{"sum"},
		Description: "Adds two numbers",
		Execute: func(ctx block.Context) error {
			in := ctx.Inputs()
			a, _ := toFloat(in["a"])
			b, _ := toFloat(in["b"])
			ctx.Emit("sum", a+b)
			return nil
		},
	}
}

// Multiply multiplies its two inputs. Missing operands default to one, the
// multiplicative identity.
func Multiply() block.Definition {
	return block.Definition{
		DisplayName: "Multiply",
		Category:    block.CategoryMath,
		Inputs:      []string{"a", "b"},
		Outputs:     []string{"product"},
		Description: "Multiplies two numbers",
		Execute: func(ctx block.Context) error {
			in := ctx.Inputs()
			a, ok := toFloat(in["a"])
			if !ok {
				a = 1
			}
			b, ok := toFloat(in["b"])
			if !ok {
				b = 1
			}
			ctx.Emit("product", a*b)
			return nil
		},
		Render: func(props map[string]interface{}) block.Rendered {
			return block.Rendered{Label: "Multiply", Content: fmt.Sprintf("%d properties", len(props))}
		},
	}
}
