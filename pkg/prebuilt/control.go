package prebuilt

import (
	"fmt"

	"github.com/blockflow/blockflow/internal/core/block"
)

const maxRepeatCount = 1000

// Repeat emits its input "count" times. Each emission traverses the element's
// outgoing connections, but downstream elements still execute at most once per
// run; the repetitions are visible as recorded outputs and traversal events.
func Repeat() block.Definition {
	return block.Definition{
		DisplayName: "Repeat",
		Category:    block.CategoryControl,
		Inputs:      []string{"input"},
		Outputs:     []string{"out"},
		DefaultProps: map[string]interface{}{
			"count": 1,
		},
		Description: "Emits its input a configured number of times",
		Validate: func(props map[string]interface{}) error {
			raw, ok := props["count"]
			if !ok {
				return nil
			}
			n, ok := toFloat(raw)
			if !ok || n != float64(int(n)) {
				return fmt.Errorf("count must be an integer, got %v", raw)
			}
			if n < 0 || n > maxRepeatCount {
				return fmt.Errorf("count must be between 0 and %d, got %v", maxRepeatCount, raw)
			}
			return nil
		},
		Execute: func(ctx block.Context) error {
			in := ctx.Inputs()
			count := 1
			if n, ok := toFloat(in["count"]); ok {
				count = int(n)
			}
			for i := 0; i < count; i++ {
				ctx.Emit("out", in["input"])
			}
			return nil
		},
		Render: func(props map[string]interface{}) block.Rendered {
			return block.Rendered{
				Label:   "Repeat",
				Content: fmt.Sprintf("x%v", props["count"]),
			}
		},
	}
}

// Counter increments a persistent counter in the element's state slot each
// time it executes and emits the new count.
func Counter() block.Definition {
	return block.Definition{
		DisplayName: "Counter",
		Category:    block.CategoryControl,
		Inputs:      []string{"input"},
		Outputs:     []string{"count"},
		Description: "Counts executions in element state",
		Execute: func(ctx block.Context) error {
			count := 1
			if prev, ok := toFloat(ctx.Get("count")); ok {
				count = int(prev) + 1
			}
			ctx.Set("count", count)
			ctx.Emit("count", count)
			return nil
		},
	}
}
