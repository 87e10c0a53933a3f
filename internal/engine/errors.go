package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/pulsesim/internal/ir"
)

// QuotaError is returned when a single press delivers more pulses than the
// engine's limit. The press is abandoned and the network keeps whatever
// state it had reached.
type QuotaError struct {
	Press  int64 // The press that exceeded the quota
	Pulses int   // Pulses delivered when the quota tripped
	Limit  int   // Maximum allowed pulses per press
}

// Error implements the error interface.
func (e *QuotaError) Error() string {
	return fmt.Sprintf("press %d exceeded pulse quota: %d pulses > %d limit",
		e.Press, e.Pulses, e.Limit)
}

// IsQuotaError returns true if the error is a QuotaError.
// Uses errors.As to handle wrapped errors.
func IsQuotaError(err error) bool {
	var qe *QuotaError
	return errors.As(err, &qe)
}

// IsInvariantError returns true if the press failed because the network was
// built incorrectly. Uses errors.As to handle wrapped errors.
func IsInvariantError(err error) bool {
	return ir.IsInvariantError(err)
}
