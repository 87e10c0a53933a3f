package analyzer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/pulsesim/internal/engine"
	"github.com/roach88/pulsesim/internal/ir"
)

// Alignment is the result of Align.
type Alignment struct {
	Target  string   `json:"target"`
	Gate    string   `json:"gate"`
	Inputs  []string `json:"inputs"`  // Gate inputs in declaration order
	Slots   []int64  `json:"slots"`   // First press each input was recorded High
	Presses int64    `json:"presses"` // Presses simulated
	Answer  uint64   `json:"answer"`  // LCM of Slots
	State   State    `json:"state"`
}

// Gate returns the AllHigh module that is the sole feeder of target.
//
// target must be a sink, exactly one source may list it as an output, and
// that source must be an AllHigh module with at least one input.
// Anything else returns *ShapeError.
func Gate(net *ir.Network, target string) (*ir.Module, error) {
	if _, ok := net.Module(target); ok {
		return nil, &ShapeError{Target: target, Message: "is a module, not a sink"}
	}
	feeders := net.Feeders(target)
	switch len(feeders) {
	case 0:
		return nil, &ShapeError{Target: target, Message: "no module outputs to it"}
	case 1:
	default:
		return nil, &ShapeError{Target: target, Message: fmt.Sprintf("fed by %d sources, want exactly 1", len(feeders))}
	}

	gate, ok := net.Module(feeders[0])
	if !ok {
		return nil, &ShapeError{Target: target, Message: fmt.Sprintf("fed by %q, not an allhigh module", feeders[0])}
	}
	if gate.Kind() != ir.KindAllHigh {
		return nil, &ShapeError{Target: target, Message: fmt.Sprintf("fed by %s %q, want allhigh", gate.Kind(), gate.Name())}
	}
	if len(gate.Inputs()) == 0 {
		return nil, &ShapeError{Target: target, Message: fmt.Sprintf("gate %q has no inputs", gate.Name())}
	}
	return gate, nil
}

// Align finds the first press at which each input of target's gate is
// recorded High, and returns their LCM.
//
// The gate's memory is inspected every time the gate handles a pulse and
// once more after each press drains, so an input that goes High and back
// Low inside one press is still seen.
//
// The answer is the first press that sends Low to target only if every gate
// input is driven by an independent sub-network that first goes High at
// its slot and then repeats with that period. Align checks the gate shape
// but cannot verify the periodicity.
func (a *Analyzer) Align(ctx context.Context, net *ir.Network, target string) (*Alignment, error) {
	work := net.Clone()
	gate, err := Gate(work, target)
	if err != nil {
		return nil, err
	}

	inputs := gate.Inputs()
	res := &Alignment{
		Target: target,
		Gate:   gate.Name(),
		Inputs: append([]string(nil), inputs...),
		Slots:  make([]int64, len(inputs)),
		State:  StateRunning,
	}

	found := 0
	record := func(press int64) {
		for i := range inputs {
			if res.Slots[i] != 0 || gate.Recorded(i) != ir.High {
				continue
			}
			res.Slots[i] = press
			found++
			slog.Info("gate input high",
				"gate", gate.Name(),
				"input", inputs[i],
				"press", press)
		}
	}

	opts := append([]engine.Option(nil), a.engineOpts...)
	opts = append(opts, engine.WithObserver(func(ev ir.PulseEvent, m *ir.Module) {
		if m == gate {
			record(ev.Press)
		}
	}))
	e := engine.New(work, opts...)

	for found < len(inputs) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.Presses() >= a.maxPresses {
			return nil, &NoConvergenceError{
				Operation: "align",
				Presses:   e.Presses(),
				Missing:   res.missing(),
			}
		}
		if _, err := e.Press(); err != nil {
			return nil, fmt.Errorf("align: %w", err)
		}
		record(e.Presses())
	}

	answer, err := LCM(res.Slots...)
	if err != nil {
		return nil, fmt.Errorf("align: %w", err)
	}
	res.Presses = e.Presses()
	res.Answer = answer
	res.State = StateAllSlotsFound
	return res, nil
}

func (r *Alignment) missing() []string {
	var out []string
	for i, s := range r.Slots {
		if s == 0 {
			out = append(out, r.Inputs[i])
		}
	}
	return out
}
