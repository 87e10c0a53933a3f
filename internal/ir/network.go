package ir

import "fmt"

// Reserved names in every network.
const (
	// BroadcastName is the stateless relay that fans the button pulse out.
	BroadcastName = "broadcaster"

	// ButtonName is the virtual source of the Low pulse that starts a press.
	ButtonName = "button"
)

// Definition describes one module before the network is assembled.
// Inbound edges are not part of a definition; NewNetwork derives them.
type Definition struct {
	Name    string   `json:"name"`
	Kind    Kind     `json:"kind"`
	Outputs []string `json:"outputs"`
}

// Network is the name-keyed arena that owns every module.
//
// All cross-module references are names. A name used as an output with no
// module entry is an absorbing sink.
type Network struct {
	modules   map[string]*Module
	order     []string // declaration order
	broadcast []string
}

// NewNetwork assembles a network from the broadcast relay outputs and the
// module definitions, in declaration order.
//
// Each AllHigh module's input set is fixed here to exactly the sources that
// list it as an output. If the broadcast relay targets an AllHigh module the
// relay counts as its first input.
func NewNetwork(broadcast []string, defs []Definition) (*Network, error) {
	n := &Network{
		modules:   make(map[string]*Module, len(defs)),
		order:     make([]string, 0, len(defs)),
		broadcast: copyStrings(broadcast),
	}

	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if d.Name == "" {
			return nil, &BuildError{Message: "module with empty name"}
		}
		if d.Name == BroadcastName || d.Name == ButtonName {
			return nil, &BuildError{Module: d.Name, Message: "name is reserved"}
		}
		if !d.Kind.Valid() {
			return nil, &BuildError{Module: d.Name, Message: fmt.Sprintf("unknown kind %q", d.Kind)}
		}
		if seen[d.Name] {
			return nil, &BuildError{Module: d.Name, Message: "defined more than once"}
		}
		seen[d.Name] = true
		for _, out := range d.Outputs {
			if out == BroadcastName || out == ButtonName {
				return nil, &BuildError{Module: d.Name, Message: fmt.Sprintf("output %q is reserved", out)}
			}
		}
	}
	for _, out := range broadcast {
		if out == BroadcastName || out == ButtonName {
			return nil, &BuildError{Module: BroadcastName, Message: fmt.Sprintf("output %q is reserved", out)}
		}
	}

	inbound := make(map[string][]string)
	for _, out := range broadcast {
		inbound[out] = append(inbound[out], BroadcastName)
	}
	for _, d := range defs {
		for _, out := range d.Outputs {
			inbound[out] = append(inbound[out], d.Name)
		}
	}

	for _, d := range defs {
		var m *Module
		switch d.Kind {
		case KindToggle:
			m = NewToggle(d.Name, d.Outputs)
		case KindAllHigh:
			m = NewAllHigh(d.Name, inbound[d.Name], d.Outputs)
		}
		n.modules[d.Name] = m
		n.order = append(n.order, d.Name)
	}

	return n, nil
}

// Module returns the module with the given name. ok is false for sinks and
// for the broadcast relay.
func (n *Network) Module(name string) (m *Module, ok bool) {
	m, ok = n.modules[name]
	return m, ok
}

// Names returns module names in declaration order.
func (n *Network) Names() []string {
	return copyStrings(n.order)
}

// Len returns the number of modules (excluding the relay and sinks).
func (n *Network) Len() int {
	return len(n.order)
}

// Broadcast returns the relay's ordered outputs. The slice must not be modified.
func (n *Network) Broadcast() []string {
	return n.broadcast
}

// Definitions returns the definitions the network was built from.
func (n *Network) Definitions() []Definition {
	defs := make([]Definition, 0, len(n.order))
	for _, name := range n.order {
		m := n.modules[name]
		defs = append(defs, Definition{Name: name, Kind: m.kind, Outputs: copyStrings(m.outputs)})
	}
	return defs
}

// Feeders returns every source that lists target as an output, in
// declaration order. The broadcast relay is reported as BroadcastName.
func (n *Network) Feeders(target string) []string {
	var feeders []string
	for _, out := range n.broadcast {
		if out == target {
			feeders = append(feeders, BroadcastName)
			break
		}
	}
	for _, name := range n.order {
		for _, out := range n.modules[name].outputs {
			if out == target {
				feeders = append(feeders, name)
				break
			}
		}
	}
	return feeders
}

// Sinks returns output names that have no module entry, sorted by first
// appearance.
func (n *Network) Sinks() []string {
	var sinks []string
	seen := make(map[string]bool)
	check := func(out string) {
		if seen[out] {
			return
		}
		seen[out] = true
		if _, ok := n.modules[out]; !ok && out != BroadcastName {
			sinks = append(sinks, out)
		}
	}
	for _, out := range n.broadcast {
		check(out)
	}
	for _, name := range n.order {
		for _, out := range n.modules[name].outputs {
			check(out)
		}
	}
	return sinks
}

// Clone returns a deep copy, including all mutable module state.
func (n *Network) Clone() *Network {
	c := &Network{
		modules:   make(map[string]*Module, len(n.modules)),
		order:     copyStrings(n.order),
		broadcast: copyStrings(n.broadcast),
	}
	for name, m := range n.modules {
		c.modules[name] = m.Clone()
	}
	return c
}

// Reset returns every module to its initial state.
func (n *Network) Reset() {
	for _, m := range n.modules {
		m.Reset()
	}
}
