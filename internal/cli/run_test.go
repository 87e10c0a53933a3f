package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsesim/internal/engine"
	"github.com/roach88/pulsesim/internal/store"
	"github.com/roach88/pulsesim/internal/testutil"
)

func TestRunMissingDatabaseFlag(t *testing.T) {
	path := writeNetwork(t, "loop.txt", testutil.LoopNetwork)

	_, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestRunRecordsPulses(t *testing.T) {
	path := writeNetwork(t, "loop.txt", testutil.LoopNetwork)
	dbPath := filepath.Join(t.TempDir(), "pulses.db")

	out, err := execute(NewRunCommand(&RootOptions{Format: "json"}), path, "--db", dbPath, "-n", "3")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   RunSummary `json:"data"`
		RunID  string     `json:"run_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, resp.RunID, resp.Data.RunID)
	assert.Equal(t, "loop", resp.Data.Label)
	assert.Equal(t, int64(3), resp.Data.Presses)
	assert.Equal(t, uint64(12), resp.Data.High)
	assert.Equal(t, uint64(24), resp.Data.Low)
	assert.Equal(t, int64(36), resp.Data.Recorded)

	id, err := uuid.Parse(resp.RunID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	pulses, err := st.ReadPulses(context.Background(), resp.RunID)
	require.NoError(t, err)
	assert.Len(t, pulses, 36)
}

func TestRunText(t *testing.T) {
	path := writeNetwork(t, "conj.txt", testutil.ConjunctionNetwork)
	dbPath := filepath.Join(t.TempDir(), "pulses.db")

	out, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path, "--db", dbPath, "--label", "conj", "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Recorded run ")
	assert.Contains(t, out, "pulses:  8 (4 high, 4 low)")
}

func TestRunQuota(t *testing.T) {
	path := writeNetwork(t, "osc.txt", oscillator)
	dbPath := filepath.Join(t.TempDir(), "pulses.db")

	out, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path, "--db", dbPath, "--max-pulses", "10")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E202]")

	// Pulses delivered before the quota tripped are kept.
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 10, runs[0].MaxPulses)

	pulses, err := st.ReadPulses(context.Background(), runs[0].ID)
	require.NoError(t, err)
	assert.Len(t, pulses, 10)
}

func TestRunInvalidPresses(t *testing.T) {
	path := writeNetwork(t, "loop.txt", testutil.LoopNetwork)
	dbPath := filepath.Join(t.TempDir(), "pulses.db")

	_, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path, "--db", dbPath, "-n", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunInvalidNetwork(t *testing.T) {
	path := writeNetwork(t, "bad.txt", "broadcaster a\n")
	dbPath := filepath.Join(t.TempDir(), "pulses.db")

	out, err := execute(NewRunCommand(&RootOptions{Format: "text"}), path, "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E101]")
}

func TestRecordRun(t *testing.T) {
	st, err := store.Open(store.MemoryPath)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	net := testutil.MustParse(t, testutil.ConjunctionNetwork)
	runID := testutil.NewFixedRunGenerator("run-conj").Generate()

	summary, err := recordRun(ctx, st, net, runID, "conj", 4, engine.DefaultMaxPulses)
	require.NoError(t, err)
	assert.Equal(t, RunSummary{RunID: "run-conj", Label: "conj", Presses: 4, High: 11, Low: 17, Recorded: 28}, summary)

	presses, err := st.ReadPresses(ctx, runID)
	require.NoError(t, err)
	require.Len(t, presses, 4)
	assert.Equal(t, store.PressCounts{Press: 1, High: 4, Low: 4}, presses[0])
	assert.Equal(t, store.PressCounts{Press: 2, High: 2, Low: 4}, presses[1])

	// The caller's network is not pressed.
	assert.Equal(t, testutil.MustParse(t, testutil.ConjunctionNetwork).Snapshot(), net.Snapshot())
}
