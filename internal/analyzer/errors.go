package analyzer

import (
	"errors"
	"fmt"
	"strings"
)

// NoConvergenceError is returned when an analysis reaches its press bound
// without finishing.
type NoConvergenceError struct {
	Operation string   // "aggregate" or "align"
	Presses   int64    // Presses simulated before giving up
	Missing   []string // Align only: gate inputs never recorded High
}

// Error implements the error interface.
func (e *NoConvergenceError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: no convergence after %d presses (never high: %s)",
			e.Operation, e.Presses, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("%s: no convergence after %d presses", e.Operation, e.Presses)
}

// IsNoConvergence returns true if the error is a NoConvergenceError.
// Uses errors.As to handle wrapped errors.
func IsNoConvergence(err error) bool {
	var nc *NoConvergenceError
	return errors.As(err, &nc)
}

// ShapeError is returned when the network around the alignment target does
// not have the single-AllHigh-gate shape Align relies on.
type ShapeError struct {
	Target  string
	Message string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("target %q: %s", e.Target, e.Message)
}

// IsShapeError returns true if the error is a ShapeError.
func IsShapeError(err error) bool {
	var se *ShapeError
	return errors.As(err, &se)
}

// DegenerateInputError is returned by LCM for empty input, non-positive
// values, and results that overflow uint64.
type DegenerateInputError struct {
	Index   int   // Position of the offending value, -1 if not applicable
	Value   int64 // The offending value
	Message string
}

// Error implements the error interface.
func (e *DegenerateInputError) Error() string {
	if e.Index < 0 {
		return "lcm: " + e.Message
	}
	return fmt.Sprintf("lcm: value %d at index %d: %s", e.Value, e.Index, e.Message)
}

// IsDegenerateInput returns true if the error is a DegenerateInputError.
func IsDegenerateInput(err error) bool {
	var de *DegenerateInputError
	return errors.As(err, &de)
}
