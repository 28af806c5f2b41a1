package usecases

import (
	"context"

	"github.com/blockflow/blockflow/internal/app/dto"
	"github.com/blockflow/blockflow/internal/core/block"
	"github.com/blockflow/blockflow/internal/core/program"
	"github.com/blockflow/blockflow/internal/core/snapshot"
)

// BlockResolver is the engine's read-only view of a block registry. The
// registry is injected per engine instance; there is no process-wide catalog.
// Mutating the registry while a run is active is caller error and undefined
// behavior; the engine only reads.
type BlockResolver interface {
	Get(typeName string) (*block.Definition, bool)
	Has(typeName string) bool
}

// ProgramRepository defines the interface for program storage and retrieval.
type ProgramRepository interface {
	Save(ctx context.Context, p *program.Program) error
	Get(ctx context.Context, id string) (*program.Program, error)
	List(ctx context.Context) ([]*program.Program, error)
}

// SnapshotManager persists and retrieves run snapshots.
type SnapshotManager interface {
	// CreateSnapshot persists the final state of a run and returns the
	// snapshot ID.
	CreateSnapshot(ctx context.Context, programID string, state *dto.ExecutionState) (string, error)

	// LoadSnapshot retrieves a snapshot by ID.
	LoadSnapshot(ctx context.Context, id string) (*snapshot.Snapshot, error)

	// ListSnapshots returns snapshot IDs for a program.
	ListSnapshots(ctx context.Context, programID string) ([]string, error)
}
