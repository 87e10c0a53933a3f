package harness

import (
	"fmt"

	"github.com/roach88/pulsesim/internal/analyzer"
	"github.com/roach88/pulsesim/internal/ir"
	"github.com/roach88/pulsesim/internal/store"
)

// TraceEvent is one recorded pulse, as read back from the trace store.
type TraceEvent struct {
	Press int64  `json:"press"`
	Seq   int64  `json:"seq"`
	From  string `json:"from"`
	To    string `json:"to"`
	Pulse string `json:"pulse"`
}

// String renders the event as "from -pulse-> to", the form assertions use.
func (e TraceEvent) String() string {
	return fmt.Sprintf("%s -%s-> %s", e.From, e.Pulse, e.To)
}

func traceEventFrom(ev ir.PulseEvent) TraceEvent {
	return TraceEvent{
		Press: ev.Press,
		Seq:   ev.Seq,
		From:  ev.From,
		To:    ev.To,
		Pulse: ev.Pulse.String(),
	}
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all assertions hold and no unexpected error occurred.
	Pass bool `json:"pass"`

	// RunID identifies the recorded trace in the store.
	RunID string `json:"run_id,omitempty"`

	// Aggregate is the pulse-count result, if presses was set.
	Aggregate *analyzer.Aggregate `json:"aggregate,omitempty"`

	// Alignment is the gate alignment result, if target was set.
	Alignment *analyzer.Alignment `json:"alignment,omitempty"`

	// Presses holds the per-press tallies of the traced presses.
	Presses []store.PressCounts `json:"presses,omitempty"`

	// Trace contains every pulse of the traced presses, ordered by seq.
	Trace []TraceEvent `json:"trace"`

	// State is the network snapshot after the traced presses.
	State ir.Object `json:"-"`

	// AnalysisError is the message of the first analysis failure.
	AnalysisError string `json:"analysis_error,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
