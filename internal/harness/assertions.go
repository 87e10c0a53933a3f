package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/pulsesim/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Trace for debugging context (may be empty)
}

// maxTraceLines caps how much of the trace an AssertionError prints.
const maxTraceLines = 50

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nTrace:\n")
		for i, event := range e.Trace {
			if i == maxTraceLines {
				fmt.Fprintf(&buf, "  ... %d more\n", len(e.Trace)-maxTraceLines)
				break
			}
			fmt.Fprintf(&buf, "  [%d.%d] %s\n", event.Press, event.Seq, event)
		}
	}

	return buf.String()
}

// assertTotals checks the aggregate high/low/product.
func assertTotals(result *Result, a Assertion) error {
	agg := result.Aggregate
	if agg == nil {
		return &AssertionError{Type: AssertTotals, Expected: "aggregate result", Actual: "no aggregate (analysis failed)"}
	}

	var diffs []string
	check := func(field string, want *uint64, got uint64) {
		if want != nil && *want != got {
			diffs = append(diffs, fmt.Sprintf("%s %d, want %d", field, got, *want))
		}
	}
	check("high", a.High, agg.High)
	check("low", a.Low, agg.Low)
	check("product", a.Product, agg.Product)

	if len(diffs) > 0 {
		return &AssertionError{
			Type:     AssertTotals,
			Expected: formatTotals(a.High, a.Low, a.Product),
			Actual:   strings.Join(diffs, "; "),
		}
	}
	return nil
}

func formatTotals(high, low, product *uint64) string {
	var parts []string
	if high != nil {
		parts = append(parts, fmt.Sprintf("high=%d", *high))
	}
	if low != nil {
		parts = append(parts, fmt.Sprintf("low=%d", *low))
	}
	if product != nil {
		parts = append(parts, fmt.Sprintf("product=%d", *product))
	}
	return strings.Join(parts, " ")
}

// assertCycle checks where the aggregate cycle starts and how long it is.
func assertCycle(result *Result, a Assertion) error {
	agg := result.Aggregate
	if agg == nil {
		return &AssertionError{Type: AssertCycle, Expected: "aggregate result", Actual: "no aggregate (analysis failed)"}
	}
	if (a.Start != nil && *a.Start != agg.CycleStart) || (a.Length != nil && *a.Length != agg.CycleLength) {
		return &AssertionError{
			Type:     AssertCycle,
			Expected: fmt.Sprintf("start=%s length=%s", optInt(a.Start), optInt(a.Length)),
			Actual:   fmt.Sprintf("start=%d length=%d (%s)", agg.CycleStart, agg.CycleLength, agg.State),
		}
	}
	return nil
}

func optInt(v *int64) string {
	if v == nil {
		return "*"
	}
	return fmt.Sprint(*v)
}

// assertAlignment checks the alignment slots and answer.
func assertAlignment(result *Result, a Assertion) error {
	al := result.Alignment
	if al == nil {
		return &AssertionError{Type: AssertAlignment, Expected: "alignment result", Actual: "no alignment (analysis failed)"}
	}
	if len(a.Slots) > 0 && !slices.Equal(a.Slots, al.Slots) {
		return &AssertionError{
			Type:     AssertAlignment,
			Expected: fmt.Sprintf("slots %v", a.Slots),
			Actual:   fmt.Sprintf("slots %v for inputs %v", al.Slots, al.Inputs),
		}
	}
	if a.Answer != nil && *a.Answer != al.Answer {
		return &AssertionError{
			Type:     AssertAlignment,
			Expected: fmt.Sprintf("answer %d", *a.Answer),
			Actual:   fmt.Sprintf("answer %d", al.Answer),
		}
	}
	return nil
}

// matchesPulse reports whether event is the pulse "from -p-> to",
// optionally restricted to one press.
func matchesPulse(event TraceEvent, pulse string, press int64) bool {
	return event.String() == pulse && (press == 0 || event.Press == press)
}

// assertTraceContains checks if the trace contains the pulse.
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, event := range trace {
		if matchesPulse(event, a.Pulse, a.Press) {
			return nil
		}
	}

	expected := a.Pulse
	if a.Press > 0 {
		expected = fmt.Sprintf("%s in press %d", a.Pulse, a.Press)
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the pulses appear in the given order.
// They don't need to be consecutive (intervening pulses are allowed).
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, event := range trace {
		if next < len(a.Pulses) && matchesPulse(event, a.Pulses[next], a.Press) {
			next++
		}
	}
	if next == len(a.Pulses) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: strings.Join(a.Pulses, " then "),
		Actual:   fmt.Sprintf("matched %d of %d, first missing %q", next, len(a.Pulses), a.Pulses[next]),
		Trace:    trace,
	}
}

// assertTraceCount checks that the pulse appears exactly Count times.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if matchesPulse(event, a.Pulse, a.Press) {
			count++
		}
	}
	if count != *a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", *a.Count, a.Pulse),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalState checks a module's state after the traced presses using
// the network snapshot: {"on": bool} for toggles, {"memory": {...}} for
// allhigh modules.
func assertFinalState(state ir.Object, a Assertion) error {
	mod, ok := state[a.Module].(ir.Object)
	if !ok {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("module %q", a.Module),
			Actual:   "no such module",
		}
	}

	if a.On != nil {
		on, isToggle := mod["on"].(ir.Bool)
		if !isToggle {
			return &AssertionError{Type: AssertFinalState, Expected: fmt.Sprintf("%s is a toggle", a.Module), Actual: "allhigh module"}
		}
		if bool(on) != *a.On {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%s on=%t", a.Module, *a.On),
				Actual:   fmt.Sprintf("%s on=%t", a.Module, bool(on)),
			}
		}
	}

	if len(a.Memory) > 0 {
		memory, isAllHigh := mod["memory"].(ir.Object)
		if !isAllHigh {
			return &AssertionError{Type: AssertFinalState, Expected: fmt.Sprintf("%s is an allhigh module", a.Module), Actual: "toggle module"}
		}
		for _, input := range sortedKeys(a.Memory) {
			want := a.Memory[input]
			got, ok := memory[input].(ir.String)
			if !ok {
				return &AssertionError{
					Type:     AssertFinalState,
					Expected: fmt.Sprintf("%s has input %q", a.Module, input),
					Actual:   "no such input",
				}
			}
			if string(got) != want {
				return &AssertionError{
					Type:     AssertFinalState,
					Expected: fmt.Sprintf("%s remembers %s from %s", a.Module, want, input),
					Actual:   string(got),
				}
			}
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// assertError checks that the analysis failed with a matching message.
func assertError(result *Result, a Assertion) error {
	if result.AnalysisError == "" {
		return &AssertionError{Type: AssertError, Expected: fmt.Sprintf("error containing %q", a.Contains), Actual: "no error"}
	}
	if !strings.Contains(result.AnalysisError, a.Contains) {
		return &AssertionError{
			Type:     AssertError,
			Expected: fmt.Sprintf("error containing %q", a.Contains),
			Actual:   result.AnalysisError,
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTotals:
			err = assertTotals(result, assertion)
		case AssertCycle:
			err = assertCycle(result, assertion)
		case AssertAlignment:
			err = assertAlignment(result, assertion)
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			if assertion.Count == nil {
				err = fmt.Errorf("assertion[%d]: trace_count requires count", i)
			} else {
				err = assertTraceCount(result.Trace, assertion)
			}
		case AssertFinalState:
			err = assertFinalState(result.State, assertion)
		case AssertError:
			err = assertError(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
