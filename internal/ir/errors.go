package ir

import (
	"errors"
	"fmt"
)

// InvariantError reports a network that was built incorrectly, such as an
// AllHigh module receiving a pulse from a source outside its fixed input set.
//
// Invariant errors are fatal: they mean the network construction is wrong,
// not that the simulation reached an unusual state.
type InvariantError struct {
	// Module is the module whose invariant was violated.
	Module string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated in module %q: %s", e.Module, e.Message)
}

// IsInvariantError returns true if the error is an InvariantError.
// Uses errors.As to handle wrapped errors.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

// BuildError reports a network definition that cannot be assembled.
type BuildError struct {
	// Module is the offending module name, if any.
	Module string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	if e.Module != "" {
		return fmt.Sprintf("build network: module %q: %s", e.Module, e.Message)
	}
	return fmt.Sprintf("build network: %s", e.Message)
}
