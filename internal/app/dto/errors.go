package dto

import "errors"

// Execution error taxonomy. Every fatal run error wraps exactly one of these
// sentinels so callers can classify failures with errors.Is.
var (
	// Construction errors: missing or invalid collections at engine creation.
	ErrNilElements    = errors.New("elements collection is required")
	ErrNilConnections = errors.New("connections collection is required")
	ErrNilRegistry    = errors.New("block registry is required")

	// Concurrency error: Execute invoked while a run is in flight.
	ErrAlreadyRunning = errors.New("execution already running")

	// Graph validation errors: raised by the pre-traversal gate, always
	// before any node runs.
	ErrUnknownBlockType = errors.New("unknown block type")
	ErrBlockValidation  = errors.New("block validation failed")

	// Runtime error: a block's execute logic failed; aborts the run at that
	// point with prior log/state intact.
	ErrBlockExecution = errors.New("block execution failed")

	// Budget errors.
	ErrStepBudgetExceeded = errors.New("step budget exceeded")
	ErrExecutionTimeout   = errors.New("execution time budget exceeded")
)
