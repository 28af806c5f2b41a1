// Package snapshot provides the core run-snapshot domain entities and
// persistence interfaces with zero external dependencies.
package snapshot

import (
	"time"
)

// Snapshot captures the final state of one completed (or failed) run so it
// can be inspected or exported later. Snapshots carry no resume semantics; a
// failed run is always reset and re-invoked from scratch.
type Snapshot struct {
	ID            string                            `json:"id"`
	ProgramID     string                            `json:"program_id"`
	RunID         string                            `json:"run_id"`
	ElementStates map[string]map[string]interface{} `json:"element_states"`
	Log           []string                          `json:"log"`
	Processed     []string                          `json:"processed"`
	Metadata      Metadata                          `json:"metadata"`
	Timestamp     time.Time                         `json:"timestamp"`
	Version       string                            `json:"version"`
}

// Metadata carries additional information about a snapshot.
type Metadata struct {
	Status    string   `json:"status"`
	Steps     int      `json:"steps"`
	Source    string   `json:"source,omitempty"`
	CreatedBy string   `json:"created_by,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Validate ensures snapshot integrity.
func (s *Snapshot) Validate() error {
	if s.ID == "" {
		return ErrInvalidSnapshotID
	}
	if s.ProgramID == "" {
		return ErrInvalidProgramID
	}
	if s.RunID == "" {
		return ErrInvalidRunID
	}
	if s.ElementStates == nil {
		return ErrNilStates
	}
	return nil
}
