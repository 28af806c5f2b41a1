package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/blockflow/blockflow/internal/app/dto"
	"github.com/blockflow/blockflow/internal/core/snapshot"
)

// SnapshotService persists final run states through a snapshot.Saver. It
// implements the usecases.SnapshotManager interface.
type SnapshotService struct {
	saver snapshot.Saver
}

// NewSnapshotService creates a new snapshot service.
func NewSnapshotService(saver snapshot.Saver) *SnapshotService {
	return &SnapshotService{saver: saver}
}

// CreateSnapshot builds a snapshot from a run's final state and persists it.
func (s *SnapshotService) CreateSnapshot(ctx context.Context, programID string, st *dto.ExecutionState) (string, error) {
	if st == nil {
		return "", fmt.Errorf("execution state is required")
	}

	snap := &snapshot.Snapshot{
		ID:            uuid.NewString(),
		ProgramID:     programID,
		RunID:         st.RunID,
		ElementStates: st.ElementStates,
		Log:           st.Log,
		Processed:     st.Processed,
		Metadata: snapshot.Metadata{
			Status:    string(st.Status),
			Steps:     st.Steps,
			Source:    "engine",
			CreatedBy: "blockflow",
		},
		Timestamp: st.EndTime,
		Version:   "1",
	}
	if snap.ElementStates == nil {
		snap.ElementStates = map[string]map[string]interface{}{}
	}

	if err := s.saver.Save(ctx, snap); err != nil {
		return "", fmt.Errorf("failed to save snapshot: %w", err)
	}
	return snap.ID, nil
}

// LoadSnapshot retrieves a snapshot by ID.
func (s *SnapshotService) LoadSnapshot(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	snap, err := s.saver.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return snap, nil
}

// ListSnapshots returns snapshot IDs recorded for a program.
func (s *SnapshotService) ListSnapshots(ctx context.Context, programID string) ([]string, error) {
	snaps, err := s.saver.List(ctx, snapshot.Filter{ProgramID: programID, Limit: 100})
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	ids := make([]string, 0, len(snaps))
	for _, sn := range snaps {
		ids = append(ids, sn.ID)
	}
	return ids, nil
}
