// Package block defines domain-specific errors
package block

import "errors"

// Domain errors - defined once, used everywhere
var (
	// Registration errors
	ErrInvalidTypeName   = errors.New("invalid block type name")
	ErrInvalidDefinition = errors.New("invalid block definition")
	ErrDuplicatePort     = errors.New("duplicate port name")
	ErrPortOverlap       = errors.New("port name appears in both inputs and outputs")
	ErrPropKeyTooLong    = errors.New("default prop key too long")
	ErrUnclonableProp    = errors.New("default prop value cannot be cloned")
	ErrSmokeTestFailed   = errors.New("definition smoke test failed")
	ErrTypeConflict      = errors.New("block type already registered with a different definition")

	// Lookup / mutation errors
	ErrUnknownType       = errors.New("unknown block type")
	ErrClearNotConfirmed = errors.New("registry clear requires explicit confirmation")
)
