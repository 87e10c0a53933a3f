package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pulsesim/internal/compiler"
	"github.com/roach88/pulsesim/internal/ir"
)

// Scenario defines one executable test against a pulse network.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Network is an inline network in the text grammar.
	Network string `yaml:"network,omitempty"`

	// NetworkFile is a path to a text or CUE network, relative to the
	// scenario file. Exactly one of Network and NetworkFile is set.
	NetworkFile string `yaml:"network_file,omitempty"`

	// Presses runs Aggregate over this many presses.
	Presses int64 `yaml:"presses,omitempty"`

	// Target runs Align for the gate feeding this sink.
	Target string `yaml:"target,omitempty"`

	// TracePresses records the first N presses pulse by pulse.
	TracePresses int64 `yaml:"trace_presses,omitempty"`

	// MaxPresses overrides the analyzer's press bound.
	MaxPresses int64 `yaml:"max_presses,omitempty"`

	// MaxPulses overrides the engine's per-press pulse quota.
	MaxPulses int `yaml:"max_pulses,omitempty"`

	// RunID is an optional fixed run ID for the recorded trace.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// Assertions validate the analyses and the trace.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one aspect of a scenario result. Which fields apply
// depends on Type.
type Assertion struct {
	// Type selects the assertion (see the Assert* constants).
	Type string `yaml:"type"`

	// totals
	High    *uint64 `yaml:"high,omitempty"`
	Low     *uint64 `yaml:"low,omitempty"`
	Product *uint64 `yaml:"product,omitempty"`

	// cycle
	Start  *int64 `yaml:"start,omitempty"`
	Length *int64 `yaml:"length,omitempty"`

	// alignment
	Slots  []int64 `yaml:"slots,omitempty"`
	Answer *uint64 `yaml:"answer,omitempty"`

	// trace_contains, trace_count ("from -pulse-> to"); Press 0 matches any press.
	Pulse string `yaml:"pulse,omitempty"`
	Press int64  `yaml:"press,omitempty"`
	Count *int   `yaml:"count,omitempty"`

	// trace_order
	Pulses []string `yaml:"pulses,omitempty"`

	// final_state
	Module string            `yaml:"module,omitempty"`
	On     *bool             `yaml:"on,omitempty"`
	Memory map[string]string `yaml:"memory,omitempty"`

	// error
	Contains string `yaml:"contains,omitempty"`
}

// Assertion type constants.
const (
	AssertTotals        = "totals"
	AssertCycle         = "cycle"
	AssertAlignment     = "alignment"
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
	AssertError         = "error"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
//
// network_file is resolved relative to the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.NetworkFile != "" && !filepath.IsAbs(scenario.NetworkFile) {
		scenario.NetworkFile = filepath.Join(filepath.Dir(path), scenario.NetworkFile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadNetwork builds the scenario's network.
func (s *Scenario) LoadNetwork() (*ir.Network, error) {
	if s.NetworkFile != "" {
		return compiler.LoadFile(s.NetworkFile)
	}
	return compiler.Parse(s.Network)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Network == "" && s.NetworkFile == "":
		return fmt.Errorf("one of network or network_file is required")
	case s.Network != "" && s.NetworkFile != "":
		return fmt.Errorf("network and network_file are mutually exclusive")
	}

	if s.NetworkFile != "" {
		if _, err := os.Stat(s.NetworkFile); os.IsNotExist(err) {
			return fmt.Errorf("network file not found: %s", s.NetworkFile)
		}
	}

	if s.Presses < 0 || s.TracePresses < 0 || s.MaxPresses < 0 || s.MaxPulses < 0 {
		return fmt.Errorf("presses, trace_presses, max_presses and max_pulses must be non-negative")
	}

	if s.Presses == 0 && s.Target == "" && s.TracePresses == 0 {
		return fmt.Errorf("nothing to run: set presses, target or trace_presses")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i], s); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, s *Scenario) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTotals:
		if a.High == nil && a.Low == nil && a.Product == nil {
			return fmt.Errorf("assertions[%d]: totals needs at least one of high, low, product", index)
		}
		if s.Presses == 0 {
			return fmt.Errorf("assertions[%d]: totals requires presses", index)
		}
	case AssertCycle:
		if a.Start == nil && a.Length == nil {
			return fmt.Errorf("assertions[%d]: cycle needs start or length", index)
		}
		if s.Presses == 0 {
			return fmt.Errorf("assertions[%d]: cycle requires presses", index)
		}
	case AssertAlignment:
		if len(a.Slots) == 0 && a.Answer == nil {
			return fmt.Errorf("assertions[%d]: alignment needs slots or answer", index)
		}
		if s.Target == "" {
			return fmt.Errorf("assertions[%d]: alignment requires target", index)
		}
	case AssertTraceContains:
		if a.Pulse == "" {
			return fmt.Errorf("assertions[%d]: pulse is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Pulses) == 0 {
			return fmt.Errorf("assertions[%d]: pulses list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Pulse == "" {
			return fmt.Errorf("assertions[%d]: pulse is required for trace_count", index)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be set and non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Module == "" {
			return fmt.Errorf("assertions[%d]: module is required for final_state", index)
		}
		if a.On == nil && len(a.Memory) == 0 {
			return fmt.Errorf("assertions[%d]: final_state needs on or memory", index)
		}
	case AssertError:
		if a.Contains == "" {
			return fmt.Errorf("assertions[%d]: contains is required for error", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	switch a.Type {
	case AssertTraceContains, AssertTraceOrder, AssertTraceCount, AssertFinalState:
		if s.TracePresses == 0 {
			return fmt.Errorf("assertions[%d]: %s requires trace_presses", index, a.Type)
		}
	}

	return nil
}
