package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsesim/internal/engine"
	"github.com/roach88/pulsesim/internal/ir"
	"github.com/roach88/pulsesim/internal/store"
	"github.com/roach88/pulsesim/internal/testutil"
)

// recordedDB records each network under its run ID into a fresh database
// file and returns the path.
func recordedDB(t *testing.T, presses int64, runs map[string]string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "pulses.db")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	for id, src := range runs {
		_, err := recordRun(context.Background(), st, testutil.MustParse(t, src), id, id, presses, engine.DefaultMaxPulses)
		require.NoError(t, err)
	}
	return dbPath
}

func TestTraceMissingDatabaseFlag(t *testing.T) {
	_, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), "--run", "run-loop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestTraceNonExistentDatabase(t *testing.T) {
	out, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), "--db", "/nonexistent/path/test.db")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "database not found")
}

func TestTraceEmptyDatabase(t *testing.T) {
	dbPath := recordedDB(t, 1, nil)

	out, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs found in database.")
}

func TestTraceListRuns(t *testing.T) {
	dbPath := recordedDB(t, 2, map[string]string{
		"run-a": testutil.LoopNetwork,
		"run-b": testutil.ConjunctionNetwork,
	})

	out, err := execute(NewTraceCommand(&RootOptions{Format: "json"}), "--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Data RunListing `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Runs, 2)
	assert.Equal(t, "run-a", resp.Data.Runs[0].ID)
	assert.Equal(t, "run-b", resp.Data.Runs[1].ID)
	assert.Equal(t, int64(2), resp.Data.Runs[0].MaxPresses)
}

func TestTraceRun(t *testing.T) {
	dbPath := recordedDB(t, 2, map[string]string{"run-loop": testutil.LoopNetwork})

	out, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--run", "run-loop")
	require.NoError(t, err)
	assert.Contains(t, out, "Run: run-loop (run-loop)")
	assert.Contains(t, out, "  press 1\n    [1] button -low-> broadcaster\n    [2] broadcaster -low-> a\n")
	assert.Contains(t, out, "  press 2\n    [13] button -low-> broadcaster\n")
	assert.Contains(t, out, "  1: 4 high, 8 low\n  2: 4 high, 8 low\n")
	assert.Contains(t, out, "Stats: 24 pulses (8 high, 16 low) over 2 press(es)")
}

func TestTraceSinglePressJSON(t *testing.T) {
	dbPath := recordedDB(t, 2, map[string]string{"run-loop": testutil.LoopNetwork})

	out, err := execute(NewTraceCommand(&RootOptions{Format: "json"}), "--db", dbPath, "--run", "run-loop", "--press", "2")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   TraceResult `json:"data"`
		RunID  string      `json:"run_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-loop", resp.RunID)

	require.Len(t, resp.Data.Timeline, 12)
	first := resp.Data.Timeline[0]
	assert.Equal(t, ir.PulseEvent{Press: 2, Seq: 13, From: ir.ButtonName, To: ir.BroadcastName, Pulse: ir.Low}, first)
	assert.Equal(t, []store.PressCounts{{Press: 2, High: 4, Low: 8}}, resp.Data.Presses)
	assert.Equal(t, TraceStats{TotalPulses: 12, High: 4, Low: 8, Presses: 1}, resp.Data.Stats)
}

func TestTraceUnknownRun(t *testing.T) {
	dbPath := recordedDB(t, 1, map[string]string{"run-loop": testutil.LoopNetwork})

	out, err := execute(NewTraceCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--run", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "run not found: nope")
}

func TestTraceStats(t *testing.T) {
	timeline := []ir.PulseEvent{
		{Press: 1, Seq: 1, From: "button", To: "broadcaster", Pulse: ir.Low},
		{Press: 1, Seq: 2, From: "a", To: "b", Pulse: ir.High},
	}
	stats := traceStats(timeline, []store.PressCounts{{Press: 1, High: 1, Low: 1}})
	assert.Equal(t, TraceStats{TotalPulses: 2, High: 1, Low: 1, Presses: 1}, stats)
}

func TestFilterPress(t *testing.T) {
	presses := []store.PressCounts{{Press: 1}, {Press: 2}, {Press: 3}}
	assert.Equal(t, []store.PressCounts{{Press: 2}}, filterPress(presses, 2))
	assert.Empty(t, filterPress(presses, 9))
}
