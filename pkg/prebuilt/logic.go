package prebuilt

import (
	"github.com/blockflow/blockflow/internal/core/block"
)

// Not inverts the truthiness of its input.
func Not() block.Definition {
	return block.Definition{
		DisplayName: "Not",
		Category:    block.CategoryLogic,
		Inputs:      []string{"input"},
		Outputs:     []string{"out"},
		Description: "Emits the boolean inverse of its input",
		Execute: func(ctx block.Context) error {
			ctx.Emit("out", !truthy(ctx.Inputs()["input"]))
			return nil
		},
	}
}

// Gate forwards its value input only when the condition input is truthy.
// A falsy condition emits nothing, so downstream elements never run.
func Gate() block.Definition {
	return block.Definition{
		DisplayName: "Gate",
		Category:    block.CategoryLogic,
		Inputs:      []string{"value", "condition"},
		Outputs:     []string{"out"},
		Description: "Forwards value only when condition is truthy",
		Execute: func(ctx block.Context) error {
			in := ctx.Inputs()
			if truthy(in["condition"]) {
				ctx.Emit("out", in["value"])
			}
			return nil
		},
	}
}
