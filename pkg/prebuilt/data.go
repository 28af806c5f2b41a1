package prebuilt

import (
	"fmt"

	"github.com/blockflow/blockflow/internal/core/block"
)

// Const emits the configured "value" prop on its out port. With no incoming
// connections it serves as a program's entry value source.
func Const() block.Definition {
	return block.Definition{
		DisplayName: "Constant",
		Category:    block.CategoryData,
		Outputs:     []string{"out"},
		DefaultProps: map[string]interface{}{
			"value": 0,
		},
		Description: "Emits a fixed value",
		Execute: func(ctx block.Context) error {
			ctx.Emit("out", ctx.Inputs()["value"])
			return nil
		},
		Render: func(props map[string]interface{}) block.Rendered {
			return block.Rendered{
				Label:   "Constant",
				Content: fmt.Sprintf("%v", props["value"]),
				Value:   fmt.Sprintf("%v", props["value"]),
			}
		},
	}
}

// Passthrough forwards its input unchanged.
func Passthrough() block.Definition {
	return block.Definition{
		DisplayName: "Passthrough",
		Category:    block.CategoryData,
		Inputs:      []string{"input"},
		Outputs:     []string{"out"},
		Description: "Forwards its input unchanged",
		Execute: func(ctx block.Context) error {
			ctx.Emit("out", ctx.Inputs()["input"])
			return nil
		},
	}
}
