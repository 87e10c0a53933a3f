package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/pulsesim/internal/ir"
)

// Finding levels.
const (
	LevelError   = "error"
	LevelWarning = "warning"
	LevelInfo    = "info"
)

// Finding codes.
const (
	CodeUnreachable  = "unreachable"
	CodeNoInputs     = "allhigh_no_inputs"
	CodeFeedbackLoop = "feedback_loop"
	CodeOscillator   = "oscillator"
	CodeNoBroadcast  = "no_broadcast_outputs"
)

// Finding is one topology observation about a network.
type Finding struct {
	Level   string   `json:"level"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Path    []string `json:"path,omitempty"`
}

// Report is the result of Check.
type Report struct {
	Modules     int        `json:"modules"`
	Sinks       []string   `json:"sinks"`
	Unreachable []string   `json:"unreachable"`
	Loops       [][]string `json:"loops"`
	Findings    []Finding  `json:"findings"`
}

// HasErrors reports whether any finding is error level.
func (r *Report) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Level == LevelError {
			return true
		}
	}
	return false
}

// Check performs static analysis of a network's topology.
//
// Feedback loops are info, not errors: the simulator is built for cyclic
// graphs. A loop made only of AllHigh modules is an error because AllHigh
// modules always respond, so a pulse entering the loop never drains.
//
// The algorithm:
//  1. Breadth-first search from the broadcast outputs marks reachable modules
//  2. Tarjan's algorithm over module-to-module edges finds loops
//  3. Each loop with more than one member, or with a self edge, is reported
func Check(n *ir.Network) *Report {
	r := &Report{
		Modules:     n.Len(),
		Sinks:       n.Sinks(),
		Unreachable: []string{},
		Loops:       [][]string{},
		Findings:    []Finding{},
	}
	if r.Sinks == nil {
		r.Sinks = []string{}
	}

	if len(n.Broadcast()) == 0 {
		r.Findings = append(r.Findings, Finding{
			Level:   LevelWarning,
			Code:    CodeNoBroadcast,
			Message: "broadcaster has no outputs; presses only emit the button pulse",
		})
	}

	reached := reachable(n)
	for _, name := range n.Names() {
		if !reached[name] {
			r.Unreachable = append(r.Unreachable, name)
			r.Findings = append(r.Findings, Finding{
				Level:   LevelWarning,
				Code:    CodeUnreachable,
				Message: fmt.Sprintf("module %s is never reached from the broadcaster", name),
				Path:    []string{name},
			})
		}
		if m, _ := n.Module(name); m.Kind() == ir.KindAllHigh && len(m.Inputs()) == 0 {
			r.Findings = append(r.Findings, Finding{
				Level:   LevelWarning,
				Code:    CodeNoInputs,
				Message: fmt.Sprintf("allhigh module %s has no inputs", name),
				Path:    []string{name},
			})
		}
	}

	graph, order := buildModuleGraph(n)
	for _, scc := range tarjanSCC(graph, order) {
		if len(scc) == 1 && !hasSelfLoop(scc[0], graph) {
			continue
		}
		path := reconstructCyclePath(scc, graph)
		r.Loops = append(r.Loops, path)

		f := Finding{
			Level:   LevelInfo,
			Code:    CodeFeedbackLoop,
			Message: fmt.Sprintf("feedback loop: %s", strings.Join(path, " → ")),
			Path:    path,
		}
		if allAllHigh(n, scc) {
			f.Level = LevelError
			f.Code = CodeOscillator
			f.Message = fmt.Sprintf("loop of allhigh modules never drains: %s", strings.Join(path, " → "))
		}
		r.Findings = append(r.Findings, f)
	}

	return r
}

// reachable marks every module reachable from the broadcast relay.
func reachable(n *ir.Network) map[string]bool {
	seen := make(map[string]bool)
	queue := append([]string(nil), n.Broadcast()...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if seen[name] {
			continue
		}
		m, ok := n.Module(name)
		if !ok {
			continue
		}
		seen[name] = true
		queue = append(queue, m.Outputs()...)
	}
	return seen
}

func allAllHigh(n *ir.Network, names []string) bool {
	for _, name := range names {
		if m, _ := n.Module(name); m.Kind() != ir.KindAllHigh {
			return false
		}
	}
	return true
}

// moduleGraph maps module name → defined modules it sends to.
type moduleGraph map[string][]string

// buildModuleGraph returns the graph and the module declaration order used
// to visit it deterministically. Edges to sinks are dropped.
func buildModuleGraph(n *ir.Network) (moduleGraph, []string) {
	graph := make(moduleGraph)
	order := n.Names()
	for _, name := range order {
		m, _ := n.Module(name)
		graph[name] = []string{}
		for _, out := range m.Outputs() {
			if _, ok := n.Module(out); ok {
				graph[name] = append(graph[name], out)
			}
		}
	}
	return graph, order
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph moduleGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in the given order so results are deterministic.
// Each returned SCC lists its members in declaration order.
func tarjanSCC(graph moduleGraph, order []string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	rank := make(map[string]int, len(order))
	for i, name := range order {
		rank[name] = i
	}

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.SortFunc(scc, func(a, b string) int { return rank[a] - rank[b] })
			sccs = append(sccs, scc)
		}
	}

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	// Report loops in the order of their first-declared member.
	slices.SortFunc(sccs, func(a, b []string) int { return rank[a[0]] - rank[b[0]] })
	return sccs
}

// reconstructCyclePath builds a closed path through an SCC, starting and
// ending at its first-declared member.
func reconstructCyclePath(scc []string, graph moduleGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}
