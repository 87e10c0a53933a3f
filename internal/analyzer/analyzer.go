package analyzer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/pulsesim/internal/engine"
	"github.com/roach88/pulsesim/internal/ir"
)

// DefaultMaxPresses bounds how many presses one analysis may simulate.
const DefaultMaxPresses = 1_000_000

// State is where an analysis stopped.
type State string

const (
	// StateRunning is the state of an analysis that has not finished.
	StateRunning State = "running"

	// StateCycleDetected means Aggregate found a repeated network state and
	// replayed the cycle for the remaining presses.
	StateCycleDetected State = "cycle_detected"

	// StateExhausted means every requested press was simulated.
	StateExhausted State = "exhausted"

	// StateAllSlotsFound means Align saw every gate input recorded High.
	StateAllSlotsFound State = "all_slots_found"
)

// Analyzer runs bounded analyses over pulse networks.
type Analyzer struct {
	maxPresses int64
	engineOpts []engine.Option
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithMaxPresses sets the maximum presses one analysis may simulate.
//
// Default: 1,000,000 (DefaultMaxPresses).
func WithMaxPresses(n int64) Option {
	return func(a *Analyzer) {
		a.maxPresses = n
	}
}

// WithEngineOptions passes options to every engine the analyzer creates,
// e.g. engine.WithMaxPulses or engine.WithObserver for trace recording.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(a *Analyzer) {
		a.engineOpts = append(a.engineOpts, opts...)
	}
}

// New creates an Analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{maxPresses: DefaultMaxPresses}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MaxPresses returns the configured press bound.
func (a *Analyzer) MaxPresses() int64 {
	return a.maxPresses
}

// Aggregate is the result of a pulse-count analysis.
type Aggregate struct {
	Presses     int64  `json:"presses"`   // Presses requested
	Simulated   int64  `json:"simulated"` // Presses actually run
	High        uint64 `json:"high"`
	Low         uint64 `json:"low"`
	Product     uint64 `json:"product"`
	State       State  `json:"state"`
	CycleStart  int64  `json:"cycle_start,omitempty"`
	CycleLength int64  `json:"cycle_length,omitempty"`
}

func (r *Aggregate) set(total engine.Counts) {
	r.High = total.High
	r.Low = total.Low
	r.Product = total.Product()
}

// Aggregate totals the pulses delivered over n presses of net.
//
// Before each press the network's snapshot hash is recorded. When press
// index i finds the hash first seen before press j, presses j..i-1 form a
// cycle of length i-j. Presses 0..j-1 are counted once and the remaining
// n-i presses are filled by replaying the cycle's recorded counts.
func (a *Analyzer) Aggregate(ctx context.Context, net *ir.Network, n int64) (*Aggregate, error) {
	if n < 0 {
		return nil, fmt.Errorf("aggregate: negative press count %d", n)
	}

	work := net.Clone()
	e := engine.New(work, a.engineOpts...)
	det := engine.NewCycleDetector()
	res := &Aggregate{Presses: n, State: StateRunning}

	records := make([]engine.Counts, 0, min(n, 1024))
	var total engine.Counts

	for i := int64(0); i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		h, err := work.SnapshotHash()
		if err != nil {
			return nil, fmt.Errorf("aggregate: snapshot before press %d: %w", i+1, err)
		}
		if first, repeated := det.Observe(h, i); repeated {
			res.CycleStart = first
			res.CycleLength = i - first
			res.State = StateCycleDetected
			total = total.Plus(replay(records[first:i], n-i))

			slog.Info("cycle detected",
				"start", first,
				"length", res.CycleLength,
				"simulated", i)
			break
		}

		if i >= a.maxPresses {
			return nil, &NoConvergenceError{Operation: "aggregate", Presses: i}
		}

		c, err := e.Press()
		if err != nil {
			return nil, fmt.Errorf("aggregate: %w", err)
		}
		records = append(records, c)
		total = total.Plus(c)
	}

	if res.State == StateRunning {
		res.State = StateExhausted
	}
	res.Simulated = int64(len(records))
	res.set(total)
	return res, nil
}

// replay sums remaining presses taken cyclically from cycle.
func replay(cycle []engine.Counts, remaining int64) engine.Counts {
	var once engine.Counts
	for _, c := range cycle {
		once = once.Plus(c)
	}
	length := int64(len(cycle))
	total := once.Times(uint64(remaining / length))
	for _, c := range cycle[:remaining%length] {
		total = total.Plus(c)
	}
	return total
}

// Simulate runs all n presses of net without cycle detection.
func (a *Analyzer) Simulate(ctx context.Context, net *ir.Network, n int64) (*Aggregate, error) {
	if n < 0 {
		return nil, fmt.Errorf("simulate: negative press count %d", n)
	}
	if n > a.maxPresses {
		return nil, &NoConvergenceError{Operation: "simulate", Presses: a.maxPresses}
	}

	e := engine.New(net.Clone(), a.engineOpts...)
	var total engine.Counts
	for i := int64(0); i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := e.Press()
		if err != nil {
			return nil, fmt.Errorf("simulate: %w", err)
		}
		total = total.Plus(c)
	}

	res := &Aggregate{Presses: n, Simulated: n, State: StateExhausted}
	res.set(total)
	return res, nil
}
