package engine

// QuotaEnforcer counts the pulses delivered during one press and enforces a
// maximum.
//
// Every press gets a fresh enforcer. The quota catches networks that never
// drain; it says nothing about how many presses an analysis may take.
type QuotaEnforcer struct {
	maxPulses int
	current   int
}

// NewQuotaEnforcer creates a new quota enforcer with the given limit.
func NewQuotaEnforcer(maxPulses int) *QuotaEnforcer {
	return &QuotaEnforcer{maxPulses: maxPulses}
}

// Check increments the pulse counter and validates it against the limit.
// Returns a *QuotaError once the limit is exceeded.
func (q *QuotaEnforcer) Check(press int64) error {
	q.current++
	if q.current > q.maxPulses {
		return &QuotaError{
			Press:  press,
			Pulses: q.current,
			Limit:  q.maxPulses,
		}
	}
	return nil
}

// Current returns the number of pulses counted so far.
func (q *QuotaEnforcer) Current() int {
	return q.current
}

// MaxPulses returns the limit.
func (q *QuotaEnforcer) MaxPulses() int {
	return q.maxPulses
}
