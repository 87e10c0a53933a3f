package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsesim/internal/ir"
	"github.com/roach88/pulsesim/internal/store"
	"github.com/roach88/pulsesim/internal/testutil"
)

func TestReplayMissingDatabaseFlag(t *testing.T) {
	_, err := execute(NewReplayCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestReplayEmptyDatabase(t *testing.T) {
	dbPath := recordedDB(t, 1, nil)

	out, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs found in database.")
}

func TestReplayDeterministic(t *testing.T) {
	dbPath := recordedDB(t, 5, map[string]string{
		"run-conj":  testutil.ConjunctionNetwork,
		"run-latch": testutil.LatchNetwork,
	})

	out, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ run-conj (run-conj): 5 presses")
	assert.Contains(t, out, "All 2 run(s) deterministic")
}

func TestReplaySpecificRunJSON(t *testing.T) {
	dbPath := recordedDB(t, 3, map[string]string{
		"run-conj": testutil.ConjunctionNetwork,
		"run-loop": testutil.LoopNetwork,
	})

	out, err := execute(NewReplayCommand(&RootOptions{Format: "json"}), "--db", dbPath, "--run", "run-loop")
	require.NoError(t, err)

	var resp struct {
		Data ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Data.AllDeterministic)
	require.Len(t, resp.Data.Runs, 1)
	assert.Equal(t, ReplayRunResult{
		RunID:         "run-loop",
		Label:         "run-loop",
		Presses:       3,
		Pulses:        36,
		Deterministic: true,
	}, resp.Data.Runs[0])
}

func TestReplayDetectsTampering(t *testing.T) {
	dbPath := recordedDB(t, 2, map[string]string{"run-loop": testutil.LoopNetwork})

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	_, err = st.DB().Exec(`UPDATE pulses SET pulse = 'high' WHERE run_id = ? AND seq = 2`, "run-loop")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, `✗ run-loop (run-loop): seq 2: recorded "broadcaster -high-> a", replayed "broadcaster -low-> a"`)
	assert.Contains(t, out, "Determinism verification FAILED")
}

func TestReplayQuotaRun(t *testing.T) {
	path := writeNetwork(t, "osc.txt", oscillator)
	dbPath := filepath.Join(t.TempDir(), "pulses.db")

	_, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path, "--db", dbPath, "--max-pulses", "10")
	require.Error(t, err)

	// The stored quota makes the replay stop at the same pulse.
	out, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "1 presses, 10 pulses")
}

func TestReplayUnknownRun(t *testing.T) {
	dbPath := recordedDB(t, 1, map[string]string{"run-loop": testutil.LoopNetwork})

	_, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--run", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "run not found: nope")
}

func TestReplayRunStructureMismatch(t *testing.T) {
	st, err := store.Open(store.MemoryPath)
	require.NoError(t, err)
	defer st.Close()

	run, err := store.NewRun("run-x", "x", testutil.MustParse(t, testutil.LoopNetwork), 1)
	require.NoError(t, err)
	run.NetworkHash = "0000"

	rr, err := replayRun(context.Background(), st, run)
	require.NoError(t, err)
	assert.False(t, rr.Deterministic)
	assert.Contains(t, rr.Mismatch, "recorded 0000")
}

func TestComparePulses(t *testing.T) {
	a := ir.PulseEvent{Press: 1, Seq: 1, From: "button", To: "broadcaster", Pulse: ir.Low}
	b := ir.PulseEvent{Press: 1, Seq: 2, From: "broadcaster", To: "a", Pulse: ir.Low}

	assert.Empty(t, comparePulses([]ir.PulseEvent{a, b}, []ir.PulseEvent{a, b}))
	assert.Equal(t, "recorded 1 pulses, replayed 2", comparePulses([]ir.PulseEvent{a}, []ir.PulseEvent{a, b}))

	c := b
	c.To = "z"
	assert.Equal(t, `seq 2: recorded "broadcaster -low-> a", replayed "broadcaster -low-> z"`,
		comparePulses([]ir.PulseEvent{a, b}, []ir.PulseEvent{a, c}))
}
