// Package validation provides validation utilities for BlockFlow: struct
// validation built on go-playground/validator with domain-specific tags, and
// structural checks over programs (endpoint resolution, cycle and orphan
// scans).
package validation

import (
	"fmt"
	"strings"
)

// Validator is implemented by types carrying custom business-rule validation
// beyond their struct tags.
type Validator interface {
	Validate() error
}

// ValidationError represents a validation error with details.
type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value"`
	Message string      `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors represents multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}
