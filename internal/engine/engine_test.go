package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsesim/internal/ir"
	"github.com/roach88/pulsesim/internal/testutil"
)

// =============================================================================
// Press semantics
// =============================================================================

func TestPress_LoopNetworkCounts(t *testing.T) {
	e := New(testutil.MustParse(t, testutil.LoopNetwork))

	for press := 1; press <= 3; press++ {
		counts, err := e.Press()
		require.NoError(t, err)
		assert.Equal(t, Counts{High: 4, Low: 8}, counts, "press %d", press)
	}
	assert.Equal(t, int64(3), e.Presses())
	assert.Equal(t, int64(36), e.Seq())
}

func TestPress_LoopNetworkPulseOrder(t *testing.T) {
	var rec testutil.PulseRecorder
	e := New(testutil.MustParse(t, testutil.LoopNetwork), WithObserver(rec.Observe))

	_, err := e.Press()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"button -low-> broadcaster",
		"broadcaster -low-> a",
		"broadcaster -low-> b",
		"broadcaster -low-> c",
		"a -high-> b",
		"b -high-> c",
		"c -high-> inv",
		"inv -low-> a",
		"a -low-> b",
		"b -low-> c",
		"c -low-> inv",
		"inv -high-> a",
	}, rec.Strings())
}

func TestPress_ConjunctionNetworkFirstPresses(t *testing.T) {
	var rec testutil.PulseRecorder
	e := New(testutil.MustParse(t, testutil.ConjunctionNetwork), WithObserver(rec.Observe))

	counts, err := e.Press()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"button -low-> broadcaster",
		"broadcaster -low-> a",
		"a -high-> inv",
		"a -high-> con",
		"inv -low-> b",
		"con -high-> output",
		"b -high-> con",
		"con -low-> output",
	}, rec.Strings())
	assert.Equal(t, Counts{High: 4, Low: 4}, counts)

	rec.Reset()
	counts, err = e.Press()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"button -low-> broadcaster",
		"broadcaster -low-> a",
		"a -low-> inv",
		"a -low-> con",
		"inv -high-> b",
		"con -high-> output",
	}, rec.Strings())
	assert.Equal(t, Counts{High: 2, Low: 4}, counts)
}

func TestPress_StatePersistsBetweenPresses(t *testing.T) {
	net := testutil.MustParse(t, testutil.ConjunctionNetwork)
	e := New(net)

	_, err := e.Press()
	require.NoError(t, err)

	a, ok := net.Module("a")
	require.True(t, ok)
	assert.True(t, a.On())

	con, _ := net.Module("con")
	assert.Equal(t, []ir.Pulse{ir.High, ir.High}, con.Memory())
}

func TestPress_FIFODeterminism(t *testing.T) {
	base := testutil.MustParse(t, testutil.ToggleChain)

	run := func(net *ir.Network) []string {
		var rec testutil.PulseRecorder
		e := New(net, WithObserver(rec.Observe))
		for i := 0; i < 5; i++ {
			_, err := e.Press()
			require.NoError(t, err)
		}
		return rec.Strings()
	}

	first := run(base.Clone())
	second := run(base.Clone())
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestPress_AllHighInputCountStable(t *testing.T) {
	net := testutil.MustParse(t, testutil.ConjunctionNetwork)
	con, _ := net.Module("con")
	before := len(con.Inputs())

	e := New(net)
	for i := 0; i < 10; i++ {
		_, err := e.Press()
		require.NoError(t, err)
		assert.Len(t, con.Memory(), before)
	}
}

func TestPress_SinkAbsorbs(t *testing.T) {
	net := testutil.MustParse(t, "broadcaster -> out1, out2\n")
	e := New(net)

	counts, err := e.Press()
	require.NoError(t, err)
	assert.Equal(t, Counts{Low: 3}, counts)
}

func TestPress_ObserverReceivesModule(t *testing.T) {
	var seen []string
	obs := func(ev ir.PulseEvent, m *ir.Module) {
		name := "<nil>"
		if m != nil {
			name = m.Name()
		}
		seen = append(seen, fmt.Sprintf("%d:%d:%s", ev.Press, ev.Seq, name))
	}
	e := New(testutil.MustParse(t, "broadcaster -> a\n%a -> out\n"))
	e.Observe(obs)

	_, err := e.Press()
	require.NoError(t, err)
	assert.Equal(t, []string{"1:1:<nil>", "1:2:a", "1:3:<nil>"}, seen)
}

// =============================================================================
// Failure modes
// =============================================================================

func TestPress_QuotaStopsOscillation(t *testing.T) {
	net := testutil.MustParse(t, "broadcaster -> g\n&g -> g\n")
	e := New(net, WithMaxPulses(10))

	counts, err := e.Press()
	require.Error(t, err)
	assert.True(t, IsQuotaError(err))

	var qe *QuotaError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, int64(1), qe.Press)
	assert.Equal(t, 11, qe.Pulses)
	assert.Equal(t, 10, qe.Limit)
	assert.Equal(t, uint64(10), counts.Total())

	// The queue is discarded, so the next press starts clean.
	_, err = e.Press()
	require.Error(t, err)
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, int64(2), qe.Press)
}

func TestWithMaxPulses_NonPositiveKeepsDefault(t *testing.T) {
	net := testutil.MustParse(t, testutil.LoopNetwork)
	for _, n := range []int{0, -1} {
		e := New(net.Clone(), WithMaxPulses(n))
		assert.Equal(t, DefaultMaxPulses, e.maxPulses)
		_, err := e.Press()
		require.NoError(t, err)
	}
}

func TestIsInvariantError_Wrapped(t *testing.T) {
	err := fmt.Errorf("press 4: %w", &ir.InvariantError{Module: "g", Message: "bad source"})
	assert.True(t, IsInvariantError(err))
	assert.False(t, IsInvariantError(&QuotaError{}))
}

// =============================================================================
// Counts
// =============================================================================

func TestCounts_Arithmetic(t *testing.T) {
	c := Counts{High: 4, Low: 8}
	assert.Equal(t, Counts{High: 8, Low: 16}, c.Plus(c))
	assert.Equal(t, Counts{High: 4000, Low: 8000}, c.Times(1000))
	assert.Equal(t, uint64(12), c.Total())
	assert.Equal(t, uint64(32000000), c.Times(1000).Product())
}
