package ir

import "fmt"

// Kind identifies one of the two module state machines.
type Kind string

const (
	// KindToggle flips an internal bit on every Low pulse and ignores High.
	KindToggle Kind = "toggle"

	// KindAllHigh remembers the last pulse from each input and emits Low
	// only when every remembered pulse is High.
	KindAllHigh Kind = "allhigh"
)

// Valid reports whether k is one of the two known kinds.
func (k Kind) Valid() bool {
	return k == KindToggle || k == KindAllHigh
}

// Prefix returns the grammar prefix character for the kind ('%' or '&').
func (k Kind) Prefix() string {
	switch k {
	case KindToggle:
		return "%"
	case KindAllHigh:
		return "&"
	default:
		return "?"
	}
}

// Module is a named state machine in a Network.
//
// Module is a tagged union: Kind selects which of the state fields are
// meaningful. On is used by Toggle modules; inputs and memory are used by
// AllHigh modules.
//
// INVARIANTS:
//   - outputs order NEVER changes after construction
//   - for AllHigh, len(inputs) == len(memory) and neither ever changes size
type Module struct {
	name    string
	kind    Kind
	outputs []string

	// Toggle state.
	on bool

	// AllHigh state. inputs is in declaration order; memory[i] is the last
	// pulse received from inputs[i].
	inputs []string
	memory []Pulse
	index  map[string]int
}

// NewToggle creates a Toggle module with its bit off.
func NewToggle(name string, outputs []string) *Module {
	return &Module{
		name:    name,
		kind:    KindToggle,
		outputs: copyStrings(outputs),
	}
}

// NewAllHigh creates an AllHigh module remembering Low for every input.
// Duplicate inputs are collapsed; the first occurrence fixes the position.
func NewAllHigh(name string, inputs, outputs []string) *Module {
	m := &Module{
		name:    name,
		kind:    KindAllHigh,
		outputs: copyStrings(outputs),
		index:   make(map[string]int, len(inputs)),
	}
	for _, in := range inputs {
		if _, dup := m.index[in]; dup {
			continue
		}
		m.index[in] = len(m.inputs)
		m.inputs = append(m.inputs, in)
	}
	m.memory = make([]Pulse, len(m.inputs))
	return m
}

// Name returns the module name.
func (m *Module) Name() string { return m.name }

// Kind returns the module kind.
func (m *Module) Kind() Kind { return m.kind }

// Outputs returns the ordered output names. The slice must not be modified.
func (m *Module) Outputs() []string { return m.outputs }

// On returns the Toggle bit. Always false for AllHigh modules.
func (m *Module) On() bool { return m.on }

// Inputs returns the AllHigh input names in declaration order.
// Returns nil for Toggle modules. The slice must not be modified.
func (m *Module) Inputs() []string { return m.inputs }

// Memory returns a copy of the AllHigh recorded pulses, aligned with Inputs.
func (m *Module) Memory() []Pulse {
	out := make([]Pulse, len(m.memory))
	copy(out, m.memory)
	return out
}

// Recorded returns the pulse remembered for input i. Panics if i is out of
// range, like a slice index.
func (m *Module) Recorded(i int) Pulse { return m.memory[i] }

// Handle delivers one pulse from source `from` and applies the module's
// state transition.
//
// It returns the emitted pulse and the outputs it is sent to. emitted is
// false when the module stays silent (a Toggle receiving High).
//
// For AllHigh modules, a source that is not one of the fixed inputs is an
// invariant violation: an *InvariantError is returned and no state changes.
func (m *Module) Handle(p Pulse, from string) (out Pulse, outputs []string, emitted bool, err error) {
	switch m.kind {
	case KindToggle:
		if p == High {
			return Low, nil, false, nil
		}
		m.on = !m.on
		return pulseFromBit(m.on), m.outputs, true, nil

	case KindAllHigh:
		i, ok := m.index[from]
		if !ok {
			return Low, nil, false, &InvariantError{
				Module:  m.name,
				Message: fmt.Sprintf("pulse from %q which is not a declared input", from),
			}
		}
		m.memory[i] = p
		if m.allHigh() {
			return Low, m.outputs, true, nil
		}
		return High, m.outputs, true, nil

	default:
		return Low, nil, false, &InvariantError{
			Module:  m.name,
			Message: fmt.Sprintf("unknown module kind %q", m.kind),
		}
	}
}

func (m *Module) allHigh() bool {
	for _, p := range m.memory {
		if p != High {
			return false
		}
	}
	return true
}

// Reset returns the module to its initial state.
func (m *Module) Reset() {
	m.on = false
	for i := range m.memory {
		m.memory[i] = Low
	}
}

// Clone returns a deep copy of the module.
func (m *Module) Clone() *Module {
	c := &Module{
		name:    m.name,
		kind:    m.kind,
		outputs: copyStrings(m.outputs),
		on:      m.on,
	}
	if m.kind == KindAllHigh {
		c.inputs = copyStrings(m.inputs)
		c.memory = make([]Pulse, len(m.memory))
		copy(c.memory, m.memory)
		c.index = make(map[string]int, len(m.index))
		for k, v := range m.index {
			c.index[k] = v
		}
	}
	return c
}

// state returns the module's mutable state as a canonical value.
func (m *Module) state() Value {
	switch m.kind {
	case KindToggle:
		return Object{"on": Bool(m.on)}
	case KindAllHigh:
		mem := make(Object, len(m.inputs))
		for i, in := range m.inputs {
			mem[in] = String(m.memory[i].String())
		}
		return Object{"memory": mem}
	default:
		return Object{}
	}
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
