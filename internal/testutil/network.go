package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsesim/internal/compiler"
	"github.com/roach88/pulsesim/internal/ir"
)

// Reference networks shared by package tests.
const (
	// LoopNetwork returns to its initial state after every press:
	// 4 high and 8 low pulses per press.
	LoopNetwork = `broadcaster -> a, b, c
%a -> b
%b -> c
%c -> inv
&inv -> a
`

	// ConjunctionNetwork repeats every 4 presses and feeds the sink "output".
	ConjunctionNetwork = `broadcaster -> a
%a -> inv, con
&inv -> b
%b -> con
&con -> output
`

	// LatchNetwork has a cycle that does not include the initial state:
	// g's memory of h turns High on press 1 and stays High.
	LatchNetwork = `broadcaster -> a
%a -> h
&h -> g
&g -> out
%z -> h
`

	// CounterNetwork is a 3-bit ripple counter whose bits feed the gate g
	// ahead of "rx". The bits first record High on presses 1, 2 and 4.
	CounterNetwork = `broadcaster -> a
%a -> b, g
%b -> c, g
%c -> g
&g -> rx
`

	// GlitchNetwork makes r send High then Low to g within press 1, so g's
	// memory of r is High only mid-press.
	GlitchNetwork = `broadcaster -> p, q
%p -> r
%q -> r
&r -> g
&g -> rx
`

	// ToggleChain has no AllHigh modules.
	ToggleChain = `broadcaster -> a, d
%a -> b, c
%b -> c
%c -> sink
%d -> a
`
)

// MustParse parses a text-grammar network or fails the test.
func MustParse(t testing.TB, src string) *ir.Network {
	t.Helper()
	n, err := compiler.Parse(src)
	require.NoError(t, err)
	return n
}

// PulseRecorder collects every delivered pulse. Its Observe method has the
// engine.Observer signature.
type PulseRecorder struct {
	Events []ir.PulseEvent
}

// Observe appends ev.
func (r *PulseRecorder) Observe(ev ir.PulseEvent, _ *ir.Module) {
	r.Events = append(r.Events, ev)
}

// Strings renders the recorded events as "from -pulse-> to".
func (r *PulseRecorder) Strings() []string {
	out := make([]string, len(r.Events))
	for i, ev := range r.Events {
		out[i] = ev.String()
	}
	return out
}

// Reset discards recorded events.
func (r *PulseRecorder) Reset() {
	r.Events = r.Events[:0]
}
