package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/pulsesim/internal/ir"
	"github.com/roach88/pulsesim/internal/testutil"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun writes a run of the loop network and returns it.
func createTestRun(t *testing.T, s *Store, id string) Run {
	t.Helper()
	run, err := NewRun(id, "loop", testutil.MustParse(t, testutil.LoopNetwork), 0)
	if err != nil {
		t.Fatalf("NewRun() failed: %v", err)
	}
	if err := s.WriteRun(context.Background(), run); err != nil {
		t.Fatalf("WriteRun() failed: %v", err)
	}
	return run
}

// pulse builds a test event.
func pulse(press, seq int64, from, to string, p ir.Pulse) ir.PulseEvent {
	return ir.PulseEvent{Press: press, Seq: seq, From: from, To: to, Pulse: p}
}
