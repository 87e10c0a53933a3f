package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/pulsesim/internal/ir"
)

func TestFixedRunGenerator_ReturnsSameID(t *testing.T) {
	gen := NewFixedRunGenerator("run-123")
	assert.Equal(t, "run-123", gen.Generate())
	assert.Equal(t, "run-123", gen.Generate())
}

func TestFixedRunGenerator_EmptyIDDefault(t *testing.T) {
	assert.Equal(t, "test-run-default", NewFixedRunGenerator("").Generate())
}

func TestReferenceNetworksParse(t *testing.T) {
	for name, src := range map[string]string{
		"loop":        LoopNetwork,
		"conjunction": ConjunctionNetwork,
		"latch":       LatchNetwork,
		"counter":     CounterNetwork,
		"glitch":      GlitchNetwork,
		"toggles":     ToggleChain,
	} {
		t.Run(name, func(t *testing.T) {
			n := MustParse(t, src)
			assert.Positive(t, n.Len())
		})
	}
}

func TestPulseRecorder(t *testing.T) {
	var r PulseRecorder
	r.Observe(ir.PulseEvent{From: "button", To: "broadcaster", Pulse: ir.Low}, nil)
	assert.Equal(t, []string{"button -low-> broadcaster"}, r.Strings())
	r.Reset()
	assert.Empty(t, r.Events)
}
