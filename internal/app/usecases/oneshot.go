package usecases

import (
	"context"

	"github.com/blockflow/blockflow/internal/app/dto"
	"github.com/blockflow/blockflow/internal/core/program"
)

// ExecuteProgram is the convenience one-shot wrapper: it constructs an engine
// over the given collections and drives a single run.
func ExecuteProgram(ctx context.Context, elements map[string]*program.Element, connections map[string]*program.Connection, registry BlockResolver, opts dto.ExecutionOptions) (*dto.ExecutionState, error) {
	engine, err := NewEngine(elements, connections, registry)
	if err != nil {
		return nil, err
	}
	return engine.Execute(ctx, opts)
}
