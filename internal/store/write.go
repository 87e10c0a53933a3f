package store

import (
	"context"
	"fmt"

	"github.com/roach88/pulsesim/internal/ir"
)

// Run describes one recorded simulation.
type Run struct {
	ID            string `json:"id"`
	Label         string `json:"label"`
	NetworkHash   string `json:"network_hash"`
	Network       string `json:"-"` // Canonical JSON structure
	EngineVersion string `json:"engine_version"`
	MaxPresses    int64  `json:"max_presses"` // Recording limit, 0 = unlimited
	MaxPulses     int    `json:"max_pulses"`  // Per-press quota, 0 = engine default
}

// NewRun describes a run of net. The network's structure (not its state)
// is captured so the run can be rebuilt later.
func NewRun(id, label string, net *ir.Network, maxPresses int64) (Run, error) {
	hash, err := net.StructureHash()
	if err != nil {
		return Run{}, fmt.Errorf("new run: %w", err)
	}
	doc, err := marshalNetwork(net)
	if err != nil {
		return Run{}, fmt.Errorf("new run: %w", err)
	}
	return Run{
		ID:            id,
		Label:         label,
		NetworkHash:   hash,
		Network:       doc,
		EngineVersion: ir.EngineVersion,
		MaxPresses:    maxPresses,
	}, nil
}

// Rebuild returns a freshly initialized copy of the run's network.
func (r Run) Rebuild() (*ir.Network, error) {
	return unmarshalNetwork(r.Network)
}

// WriteRun inserts a run record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) WriteRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, label, network_hash, network, engine_version, max_presses, max_pulses)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Label,
		run.NetworkHash,
		run.Network,
		run.EngineVersion,
		run.MaxPresses,
		run.MaxPulses,
	)
	if err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// WritePulses appends delivered pulses to a run in one transaction and
// adds them to the run's per-press tallies.
//
// Uses ON CONFLICT(run_id, seq) DO NOTHING for idempotency: a pulse already
// stored is skipped and not counted twice.
//
// Note: The run must exist (foreign key constraint).
func (s *Store) WritePulses(ctx context.Context, runID string, events []ir.PulseEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write pulses: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	insertPulse, err := tx.PrepareContext(ctx, `
		INSERT INTO pulses
		(run_id, seq, press, from_module, to_module, pulse)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("write pulses: prepare: %w", err)
	}
	defer insertPulse.Close()

	tallies := make(map[int64]*PressCounts)
	var order []int64
	for _, ev := range events {
		result, err := insertPulse.ExecContext(ctx,
			runID, ev.Seq, ev.Press, ev.From, ev.To, ev.Pulse.String())
		if err != nil {
			return fmt.Errorf("write pulses: seq %d: %w", ev.Seq, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("write pulses: rows affected: %w", err)
		}
		if n == 0 {
			continue
		}

		pc, ok := tallies[ev.Press]
		if !ok {
			pc = &PressCounts{Press: ev.Press}
			tallies[ev.Press] = pc
			order = append(order, ev.Press)
		}
		if ev.Pulse == ir.High {
			pc.High++
		} else {
			pc.Low++
		}
	}

	for _, press := range order {
		pc := tallies[press]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO presses (run_id, press, high, low)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(run_id, press) DO UPDATE SET
				high = high + excluded.high,
				low = low + excluded.low
		`, runID, pc.Press, pc.High, pc.Low)
		if err != nil {
			return fmt.Errorf("write pulses: press %d tally: %w", press, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write pulses: commit: %w", err)
	}
	return nil
}
