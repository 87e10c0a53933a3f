package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/roach88/pulsesim/internal/ir"
)

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "nope")
	if err != sql.ErrNoRows {
		t.Errorf("ReadRun() error = %v, want sql.ErrNoRows", err)
	}
}

func TestListRuns_Ordered(t *testing.T) {
	s := createTestStore(t)
	createTestRun(t, s, "run-b")
	createTestRun(t, s, "run-a")

	runs, err := s.ListRuns(context.Background())
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-a" || runs[1].ID != "run-b" {
		t.Errorf("ListRuns() = %+v, want run-a then run-b", runs)
	}
}

func TestListRuns_EmptyNotNil(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ListRuns(context.Background())
	if err != nil {
		t.Fatalf("ListRuns() failed: %v", err)
	}
	if runs == nil {
		t.Error("ListRuns() returned nil, want empty slice")
	}
}

func TestReadPulses_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	createTestRun(t, s, "run-1")
	ctx := context.Background()

	// Written out of order on purpose.
	err := s.WritePulses(ctx, "run-1", []ir.PulseEvent{
		pulse(1, 3, "a", "b", ir.High),
		pulse(1, 1, "button", "broadcaster", ir.Low),
		pulse(2, 4, "button", "broadcaster", ir.Low),
		pulse(1, 2, "broadcaster", "a", ir.Low),
	})
	if err != nil {
		t.Fatalf("WritePulses() failed: %v", err)
	}

	all, err := s.ReadPulses(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadPulses() failed: %v", err)
	}
	for i, ev := range all {
		if ev.Seq != int64(i+1) {
			t.Errorf("pulse %d has seq %d", i, ev.Seq)
		}
	}
	if all[2].Pulse != ir.High || all[2].String() != "a -high-> b" {
		t.Errorf("pulse 3 = %v", all[2])
	}

	first, err := s.ReadPressPulses(ctx, "run-1", 1)
	if err != nil {
		t.Fatalf("ReadPressPulses() failed: %v", err)
	}
	if len(first) != 3 {
		t.Errorf("press 1 has %d pulses, want 3", len(first))
	}
}

func TestReadPulses_UnknownRunEmpty(t *testing.T) {
	s := createTestStore(t)

	pulses, err := s.ReadPulses(context.Background(), "nope")
	if err != nil {
		t.Fatalf("ReadPulses() failed: %v", err)
	}
	if pulses == nil || len(pulses) != 0 {
		t.Errorf("ReadPulses() = %v, want empty slice", pulses)
	}
}
