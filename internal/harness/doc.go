// Package harness runs pulse-network scenarios as executable tests.
//
// A scenario names a network, the analyses to run on it, and assertions
// about the outcome. The harness drives the real analyzer and engine, so a
// passing scenario means the simulator produced the asserted numbers.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	network: |
//	  broadcaster -> a, b, c
//	  %a -> b
//	  &inv -> a
//	presses: 1000        # aggregate over N presses
//	target: rx           # align the gate feeding rx
//	trace_presses: 1     # record the first N presses pulse by pulse
//	assertions:
//	  - type: totals
//	    high: 4000
//	    low: 8000
//	    product: 32000000
//	  - type: trace_contains
//	    pulse: "a -high-> b"
//
// network_file may replace network; it is resolved relative to the
// scenario file and may be text grammar or CUE (".cue").
//
// # Assertion Types
//
//   - totals: aggregate high/low/product
//   - cycle: aggregate cycle start and length (length 0 means no cycle)
//   - alignment: gate slots and answer
//   - trace_contains: a pulse appears in the recorded trace
//   - trace_order: pulses appear in the trace in the given order
//   - trace_count: a pulse appears exactly N times
//   - final_state: a module's state after the traced presses
//   - error: the analysis failed with a message containing a substring
//
// # Deterministic Testing
//
// Every scenario records its trace into a fresh in-memory SQLite store with
// a fixed run ID (from scenario.run_id, else "test-run-default"). The
// engine's logical clock is the only source of ordering, so traces are
// byte-identical across runs and can be compared against golden files.
package harness
