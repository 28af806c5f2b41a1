package prebuilt

import (
	"fmt"

	"github.com/blockflow/blockflow/internal/core/block"
)

// Print writes its input to the run log. It emits nothing, so it terminates
// a branch.
func Print() block.Definition {
	return block.Definition{
		DisplayName: "Print",
		Category:    block.CategoryIO,
		Inputs:      []string{"input"},
		DefaultProps: map[string]interface{}{
			"prefix": "",
		},
		Description: "Writes its input to the run log",
		Execute: func(ctx block.Context) error {
			in := ctx.Inputs()
			prefix, _ := in["prefix"].(string)
			ctx.Logf("%s%v", prefix, in["input"])
			return nil
		},
		Render: func(props map[string]interface{}) block.Rendered {
			label := "Print"
			if prefix, ok := props["prefix"].(string); ok && prefix != "" {
				return block.Rendered{Label: label, Content: fmt.Sprintf("prefix: %s", prefix)}
			}
			return block.Rendered{Label: label, Content: "logs input"}
		},
	}
}
