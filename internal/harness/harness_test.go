package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsesim/internal/analyzer"
	"github.com/roach88/pulsesim/internal/testutil"
)

func TestRun_AggregateAndTrace(t *testing.T) {
	scenario := &Scenario{
		Name:         "loop",
		Description:  "loop network",
		Network:      testutil.LoopNetwork,
		Presses:      1000,
		TracePresses: 2,
		RunID:        "run-loop",
		Assertions: []Assertion{
			{Type: AssertTotals, Product: u64(32000000)},
			{Type: AssertTraceCount, Pulse: "button -low-> broadcaster", Count: intp(2)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	assert.Equal(t, "run-loop", result.RunID)
	require.NotNil(t, result.Aggregate)
	assert.Equal(t, analyzer.StateCycleDetected, result.Aggregate.State)
	assert.Len(t, result.Trace, 24)
	require.Len(t, result.Presses, 2)
	assert.Equal(t, uint64(4), result.Presses[1].High)
	assert.Equal(t, uint64(8), result.Presses[1].Low)
	assert.Equal(t, int64(24), result.Trace[23].Seq)
}

func TestRun_Alignment(t *testing.T) {
	scenario := &Scenario{
		Name:        "counter",
		Description: "counter",
		Network:     testutil.CounterNetwork,
		Target:      "rx",
		Assertions:  []Assertion{{Type: AssertAlignment, Slots: []int64{1, 2, 4}, Answer: u64(4)}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.RunID, "no trace was requested")
	assert.Empty(t, result.Trace)
}

func TestRun_FailingAssertion(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong",
		Description: "wrong product",
		Network:     testutil.LoopNetwork,
		Presses:     10,
		Assertions:  []Assertion{{Type: AssertTotals, Product: u64(1)}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "product 3200, want 1")
}

func TestRun_UnexpectedAnalysisError(t *testing.T) {
	scenario := &Scenario{
		Name:        "shape",
		Description: "target fed by a toggle",
		Network:     "broadcaster -> a\n%a -> rx\n",
		Target:      "rx",
		Assertions:  []Assertion{{Type: AssertAlignment, Answer: u64(1)}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.AnalysisError, "want allhigh")
	assert.Contains(t, result.Errors[len(result.Errors)-1], "unexpected analysis error")
}

func TestRun_ExpectedAnalysisError(t *testing.T) {
	scenario := &Scenario{
		Name:        "bound",
		Description: "press bound",
		Network:     testutil.CounterNetwork,
		Presses:     100,
		MaxPresses:  3,
		Assertions:  []Assertion{{Type: AssertError, Contains: "aggregate: no convergence after 3 presses"}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Nil(t, result.Aggregate)
}

func TestRun_BadNetwork(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad",
		Description: "unparseable",
		Network:     "a -> b\n",
		Presses:     1,
		Assertions:  []Assertion{{Type: AssertTotals, High: u64(0)}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load network")
}

func TestRun_Deterministic(t *testing.T) {
	scenario := &Scenario{
		Name:         "toggles",
		Description:  "toggle chain",
		Network:      testutil.ToggleChain,
		TracePresses: 6,
		Assertions:   []Assertion{{Type: AssertFinalState, Module: "a", On: boolp(true)}},
	}

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
	assert.Equal(t, first.Presses, second.Presses)
	assert.Equal(t, "test-run-default", first.RunID)
}
