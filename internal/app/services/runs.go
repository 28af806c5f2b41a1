package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/blockflow/blockflow/internal/app/dto"
)

// RunService keeps finished run states addressable by run ID so callers can
// inspect results after the engine that produced them has been reset or
// discarded.
type RunService struct {
	runs map[string]*dto.ExecutionState
	mu   sync.RWMutex
}

// NewRunService creates a new run service.
func NewRunService() *RunService {
	return &RunService{runs: make(map[string]*dto.ExecutionState)}
}

// SaveRun stores a copy of a finished run's state.
func (s *RunService) SaveRun(ctx context.Context, st *dto.ExecutionState) error {
	if st == nil || st.RunID == "" {
		return fmt.Errorf("run state with a run ID is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[st.RunID] = copyState(st)
	return nil
}

// LoadRun returns a copy of a stored run state.
func (s *RunService) LoadRun(ctx context.Context, runID string) (*dto.ExecutionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("run state not found: %s", runID)
	}
	return copyState(st), nil
}

// CleanupRun removes a stored run state.
func (s *RunService) CleanupRun(ctx context.Context, runID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, runID)
	return nil
}

// ActiveRuns returns the number of stored run states (for monitoring).
func (s *RunService) ActiveRuns() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}

// copyState deep-copies the maps of an execution state so callers never
// share the stored instance.
func copyState(st *dto.ExecutionState) *dto.ExecutionState {
	cp := *st
	cp.ElementStates = make(map[string]map[string]interface{}, len(st.ElementStates))
	for id, slot := range st.ElementStates {
		slotCopy := make(map[string]interface{}, len(slot))
		for k, v := range slot {
			slotCopy[k] = v
		}
		cp.ElementStates[id] = slotCopy
	}
	cp.Log = append([]string(nil), st.Log...)
	cp.Processed = append([]string(nil), st.Processed...)
	return &cp
}
