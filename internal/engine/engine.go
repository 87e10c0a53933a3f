package engine

import (
	"fmt"
	"log/slog"

	"github.com/roach88/pulsesim/internal/ir"
)

// DefaultMaxPulses is the default maximum number of pulses per press.
// This keeps a network that never drains from running forever.
const DefaultMaxPulses = 1 << 22

// Counts tallies delivered pulses by kind.
type Counts struct {
	High uint64 `json:"high"`
	Low  uint64 `json:"low"`
}

func (c *Counts) add(p ir.Pulse) {
	if p == ir.High {
		c.High++
	} else {
		c.Low++
	}
}

// Plus returns the element-wise sum of c and o.
func (c Counts) Plus(o Counts) Counts {
	return Counts{High: c.High + o.High, Low: c.Low + o.Low}
}

// Times returns c scaled by k.
func (c Counts) Times(k uint64) Counts {
	return Counts{High: c.High * k, Low: c.Low * k}
}

// Total returns High + Low.
func (c Counts) Total() uint64 {
	return c.High + c.Low
}

// Product returns High × Low.
func (c Counts) Product() uint64 {
	return c.High * c.Low
}

// Observer is called once for every delivered pulse, after the receiving
// module has handled it. receiver is nil when the pulse went to the
// broadcast relay or to a sink.
//
// Observers run inside Press and must not mutate the network.
type Observer func(ev ir.PulseEvent, receiver *ir.Module)

// Engine executes button presses against a network.
//
// INVARIANTS:
//   - the queue is empty between presses
//   - press numbers and seq numbers never decrease
//   - the network is only mutated from inside Press
type Engine struct {
	net       *ir.Network
	clock     *Clock
	queue     *pulseQueue
	observers []Observer
	maxPulses int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxPulses sets the maximum pulses delivered per press.
//
// Default: 1<<22 pulses (DefaultMaxPulses).
// Use a small value such as WithMaxPulses(10) for testing quota enforcement.
// Non-positive values keep the default.
func WithMaxPulses(maxPulses int) Option {
	return func(e *Engine) {
		if maxPulses > 0 {
			e.maxPulses = maxPulses
		}
	}
}

// WithObserver registers an observer at construction time.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observers = append(e.observers, o)
	}
}

// New creates an Engine that owns net for the duration of each press.
// The network is used as-is; callers that need an untouched copy should
// pass net.Clone().
func New(net *ir.Network, opts ...Option) *Engine {
	e := &Engine{
		net:       net,
		clock:     NewClock(),
		queue:     newPulseQueue(),
		maxPulses: DefaultMaxPulses,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Observe registers an observer for subsequent presses.
func (e *Engine) Observe(o Observer) {
	e.observers = append(e.observers, o)
}

// Network returns the network the engine drives.
func (e *Engine) Network() *ir.Network {
	return e.net
}

// Presses returns the number of presses started so far.
func (e *Engine) Presses() int64 {
	return e.clock.Press()
}

// Seq returns the sequence number of the last delivered pulse.
func (e *Engine) Seq() int64 {
	return e.clock.Seq()
}

// Press executes exactly one button press to completion and returns the
// pulses delivered, by kind.
//
// The counts include the button's Low pulse to the broadcast relay and the
// relay's fan-out. Module state changes persist into the next press.
//
// On error (an invariant violation or the pulse quota) the press is
// abandoned: the queue is discarded and the network keeps the state it had
// reached. Counts for the partial press are still returned.
func (e *Engine) Press() (Counts, error) {
	press := e.clock.NextPress()
	quota := NewQuotaEnforcer(e.maxPulses)
	var counts Counts

	e.queue.Push(transmission{pulse: ir.Low, from: ir.ButtonName, to: ir.BroadcastName})

	for {
		t, ok := e.queue.Pop()
		if !ok {
			break
		}
		if err := quota.Check(press); err != nil {
			e.queue.Reset()
			slog.Error("pulse quota exceeded",
				"press", press,
				"limit", quota.MaxPulses())
			return counts, err
		}
		counts.add(t.pulse)

		receiver, err := e.deliver(t)
		if err != nil {
			e.queue.Reset()
			return counts, fmt.Errorf("press %d: %w", press, err)
		}

		ev := ir.PulseEvent{
			Press: press,
			Seq:   e.clock.NextSeq(),
			From:  t.from,
			To:    t.to,
			Pulse: t.pulse,
		}
		for _, o := range e.observers {
			o(ev, receiver)
		}
	}

	slog.Debug("press complete",
		"press", press,
		"high", counts.High,
		"low", counts.Low)

	return counts, nil
}

// deliver hands one transmission to its destination and enqueues whatever
// it emits. It returns the receiving module, or nil for the relay and sinks.
func (e *Engine) deliver(t transmission) (*ir.Module, error) {
	if t.to == ir.BroadcastName {
		for _, out := range e.net.Broadcast() {
			e.queue.Push(transmission{pulse: t.pulse, from: ir.BroadcastName, to: out})
		}
		return nil, nil
	}

	m, ok := e.net.Module(t.to)
	if !ok {
		// Absorbing sink.
		return nil, nil
	}

	out, outputs, emitted, err := m.Handle(t.pulse, t.from)
	if err != nil {
		return nil, err
	}
	if emitted {
		for _, o := range outputs {
			e.queue.Push(transmission{pulse: out, from: t.to, to: o})
		}
	}
	return m, nil
}
