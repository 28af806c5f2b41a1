package dto

import (
	"time"
)

// Default budgets applied when options leave them unset.
const (
	DefaultMaxSteps         = 1000
	DefaultMaxExecutionTime = 30 * time.Second
)

// ExecutionOptions configures a single run.
type ExecutionOptions struct {
	MaxExecutionTime time.Duration `json:"max_execution_time"` // Time budget for the whole run
	MaxSteps         int           `json:"max_steps"`          // Budget of node-visit attempts
	StepDelay        time.Duration `json:"step_delay"`         // Optional delay after each node invocation

	// Best-effort observer callbacks. Each is wrapped so a panicking
	// callback cannot crash the engine.
	OnElementStart        func(elementID string)            `json:"-"`
	OnElementComplete     func(elementID string)            `json:"-"`
	OnConnectionTraversed func(connectionID string)         `json:"-"`
	OnLog                 func(message string)              `json:"-"`
	OnError               func(err error, elementID string) `json:"-"`
}

// ApplyDefaults fills unset budgets with their defaults.
func (o *ExecutionOptions) ApplyDefaults() {
	if o.MaxSteps <= 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	if o.MaxExecutionTime <= 0 {
		o.MaxExecutionTime = DefaultMaxExecutionTime
	}
	if o.StepDelay < 0 {
		o.StepDelay = 0
	}
}

// RunStatus represents the lifecycle state of an engine run.
type RunStatus string

const (
	RunStatusIdle      RunStatus = "idle"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusStopped   RunStatus = "stopped"
)

// ExecutionState is the externally visible state of one run. Accessors on the
// engine return defensive copies of this shape; whatever was written before a
// failure persists here, inspectable, with no rollback.
type ExecutionState struct {
	RunID         string                            `json:"run_id"`
	ProgramID     string                            `json:"program_id,omitempty"`
	Status        RunStatus                         `json:"status"`
	IsRunning     bool                              `json:"is_running"`
	ElementStates map[string]map[string]interface{} `json:"element_states"`
	Log           []string                          `json:"log"`
	Processed     []string                          `json:"processed"`
	Steps         int                               `json:"steps"`
	StartTime     time.Time                         `json:"start_time"`
	EndTime       time.Time                         `json:"end_time"`
	Error         string                            `json:"error,omitempty"`
}

// Elapsed returns the wall-clock duration of the run so far (or total, once
// finished).
func (s *ExecutionState) Elapsed() time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// ExecutionStats summarizes a run for monitoring.
type ExecutionStats struct {
	Status     RunStatus     `json:"status"`
	Elements   int           `json:"elements"`
	Processed  int           `json:"processed"`
	Steps      int           `json:"steps"`
	LogEntries int           `json:"log_entries"`
	Elapsed    time.Duration `json:"elapsed"`
}
