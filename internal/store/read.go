package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/pulsesim/internal/ir"
)

// PressCounts is the stored High/Low tally of one press.
type PressCounts struct {
	Press int64  `json:"press"`
	High  uint64 `json:"high"`
	Low   uint64 `json:"low"`
}

// ReadRun returns a run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, label, network_hash, network, engine_version, max_presses, max_pulses
		FROM runs
		WHERE id = ?
	`, id).Scan(
		&run.ID,
		&run.Label,
		&run.NetworkHash,
		&run.Network,
		&run.EngineVersion,
		&run.MaxPresses,
		&run.MaxPulses,
	)
	if err == sql.ErrNoRows {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run: %w", err)
	}
	return run, nil
}

// ListRuns returns every run ordered by ID. UUIDv7 IDs sort in creation
// order.
//
// Returns an empty slice (not nil) if the store has no runs.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, network_hash, network, engine_version, max_presses, max_pulses
		FROM runs
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		if err := rows.Scan(
			&run.ID,
			&run.Label,
			&run.NetworkHash,
			&run.Network,
			&run.EngineVersion,
			&run.MaxPresses,
			&run.MaxPulses,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadPulses returns every pulse of a run ordered by seq.
//
// Returns an empty slice (not nil) if the run has no pulses.
func (s *Store) ReadPulses(ctx context.Context, runID string) ([]ir.PulseEvent, error) {
	return s.queryPulses(ctx, `
		SELECT press, seq, from_module, to_module, pulse
		FROM pulses
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
}

// ReadPressPulses returns the pulses of one press ordered by seq.
func (s *Store) ReadPressPulses(ctx context.Context, runID string, press int64) ([]ir.PulseEvent, error) {
	return s.queryPulses(ctx, `
		SELECT press, seq, from_module, to_module, pulse
		FROM pulses
		WHERE run_id = ? AND press = ?
		ORDER BY seq ASC
	`, runID, press)
}

func (s *Store) queryPulses(ctx context.Context, query string, args ...any) ([]ir.PulseEvent, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pulses: %w", err)
	}
	defer rows.Close()

	events := []ir.PulseEvent{}
	for rows.Next() {
		var (
			ev    ir.PulseEvent
			pulse string
		)
		if err := rows.Scan(&ev.Press, &ev.Seq, &ev.From, &ev.To, &pulse); err != nil {
			return nil, fmt.Errorf("scan pulse: %w", err)
		}
		if ev.Pulse, err = ir.ParsePulse(pulse); err != nil {
			return nil, fmt.Errorf("scan pulse seq %d: %w", ev.Seq, err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pulses: %w", err)
	}
	return events, nil
}

// ReadPresses returns the per-press tallies of a run ordered by press.
//
// Returns an empty slice (not nil) if the run has no presses.
func (s *Store) ReadPresses(ctx context.Context, runID string) ([]PressCounts, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT press, high, low
		FROM presses
		WHERE run_id = ?
		ORDER BY press ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query presses: %w", err)
	}
	defer rows.Close()

	presses := []PressCounts{}
	for rows.Next() {
		var pc PressCounts
		if err := rows.Scan(&pc.Press, &pc.High, &pc.Low); err != nil {
			return nil, fmt.Errorf("scan press: %w", err)
		}
		presses = append(presses, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate presses: %w", err)
	}
	return presses, nil
}
