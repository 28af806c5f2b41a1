package blockflow

import (
	"context"

	"github.com/blockflow/blockflow/internal/adapters/loader"
	memory "github.com/blockflow/blockflow/internal/adapters/repository/memory"
	programrepo "github.com/blockflow/blockflow/internal/adapters/repository/program"
	"github.com/blockflow/blockflow/internal/app/dto"
	"github.com/blockflow/blockflow/internal/app/services"
	"github.com/blockflow/blockflow/internal/app/usecases"
	"github.com/blockflow/blockflow/internal/core/block"
	"github.com/blockflow/blockflow/internal/core/program"
	"github.com/blockflow/blockflow/internal/core/snapshot"
	"github.com/blockflow/blockflow/pkg/prebuilt"
)

// Re-export core domain types for convenience
type Program = program.Program
type Element = program.Element
type Connection = program.Connection
type Definition = block.Definition
type Category = block.Category
type Context = block.Context
type Rendered = block.Rendered
type ExecutionOptions = dto.ExecutionOptions
type ExecutionState = dto.ExecutionState

// Runtime is a simple façade to register block types and run programs without
// importing internal packages directly. The default runtime uses in-memory
// components and is suitable for local usage and tests.
type Runtime struct {
	registry  *block.Registry
	programs  usecases.ProgramRepository
	runs      *services.RunService
	snapshots usecases.SnapshotManager
}

// NewRuntime constructs a default runtime with in-memory services and the
// prebuilt block library preinstalled.
func NewRuntime() (*Runtime, error) {
	registry := block.NewRegistry()
	if err := prebuilt.RegisterAll(registry); err != nil {
		return nil, err
	}
	return &Runtime{
		registry:  registry,
		programs:  programrepo.NewInMemoryProgramRepository(),
		runs:      services.NewRunService(),
		snapshots: services.NewSnapshotService(memory.DefaultInMemorySaver()),
	}, nil
}

// Registry exposes the runtime's block registry for registering custom types.
func (rt *Runtime) Registry() *block.Registry {
	return rt.registry
}

// SaveProgram persists a program to the runtime repository.
func (rt *Runtime) SaveProgram(ctx context.Context, p *program.Program) error {
	return rt.programs.Save(ctx, p)
}

// LoadProgramFile reads a YAML or JSON program file and persists it.
func (rt *Runtime) LoadProgramFile(ctx context.Context, path string) (*program.Program, error) {
	p, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := rt.programs.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Execute runs a stored program with the provided options and records the
// final state as a snapshot.
func (rt *Runtime) Execute(ctx context.Context, programID string, opts dto.ExecutionOptions) (*dto.ExecutionState, error) {
	p, err := rt.programs.Get(ctx, programID)
	if err != nil {
		return nil, err
	}

	st, runErr := usecases.ExecuteProgram(ctx, p.Elements, p.Connections, rt.registry, opts)
	if st == nil {
		return nil, runErr
	}
	st.ProgramID = programID

	// Best-effort bookkeeping: a failed run's state is still worth keeping.
	_ = rt.runs.SaveRun(ctx, st)
	if _, err := rt.snapshots.CreateSnapshot(ctx, programID, st); err != nil && runErr == nil {
		return st, err
	}
	return st, runErr
}

// RunSimple saves the program (if not already) and executes it with default
// budgets.
func (rt *Runtime) RunSimple(ctx context.Context, p *program.Program) (*dto.ExecutionState, error) {
	if err := rt.programs.Save(ctx, p); err != nil {
		return nil, err
	}
	return rt.Execute(ctx, p.ID, dto.ExecutionOptions{})
}

// LoadRun returns the stored state of a finished run.
func (rt *Runtime) LoadRun(ctx context.Context, runID string) (*dto.ExecutionState, error) {
	return rt.runs.LoadRun(ctx, runID)
}

// LoadSnapshot retrieves a persisted snapshot by ID.
func (rt *Runtime) LoadSnapshot(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	return rt.snapshots.LoadSnapshot(ctx, id)
}

// ListSnapshots returns snapshot IDs recorded for a program.
func (rt *Runtime) ListSnapshots(ctx context.Context, programID string) ([]string, error) {
	return rt.snapshots.ListSnapshots(ctx, programID)
}
