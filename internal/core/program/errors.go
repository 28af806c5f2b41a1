// Package program defines domain-specific errors
package program

import "errors"

// Domain errors - defined once, used everywhere
var (
	// Program errors
	ErrInvalidProgramName = errors.New("invalid program name")
	ErrProgramNotFound    = errors.New("program not found")

	// Element errors
	ErrNilElement         = errors.New("element cannot be nil")
	ErrInvalidElementID   = errors.New("invalid element ID")
	ErrInvalidElementType = errors.New("invalid element type")
	ErrDuplicateElement   = errors.New("duplicate element ID")

	// Connection errors
	ErrNilConnection       = errors.New("connection cannot be nil")
	ErrInvalidConnectionID = errors.New("invalid connection ID")
	ErrInvalidFrom         = errors.New("invalid connection source")
	ErrInvalidTo           = errors.New("invalid connection target")
	ErrSelfLoop            = errors.New("self-loops are not allowed")
	ErrDuplicateConnection = errors.New("duplicate connection ID")
	ErrFromNotFound        = errors.New("connection source element not found")
	ErrToNotFound          = errors.New("connection target element not found")
)
