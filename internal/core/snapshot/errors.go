// Package snapshot defines domain-specific errors
package snapshot

import "errors"

var (
	ErrInvalidSnapshotID = errors.New("invalid snapshot ID")
	ErrInvalidProgramID  = errors.New("invalid program ID")
	ErrInvalidRunID      = errors.New("invalid run ID")
	ErrNilStates         = errors.New("snapshot element states cannot be nil")
	ErrSnapshotNotFound  = errors.New("snapshot not found")

	ErrInvalidLimit     = errors.New("limit cannot be negative")
	ErrInvalidOffset    = errors.New("offset cannot be negative")
	ErrInvalidTimeRange = errors.New("since must not be after before")
)
