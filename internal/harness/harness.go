package harness

import (
	"context"
	"fmt"

	"github.com/roach88/pulsesim/internal/analyzer"
	"github.com/roach88/pulsesim/internal/engine"
	"github.com/roach88/pulsesim/internal/ir"
	"github.com/roach88/pulsesim/internal/store"
	"github.com/roach88/pulsesim/internal/testutil"
)

// Harness executes one scenario.
type Harness struct {
	scenario *Scenario
	net      *ir.Network
	store    *store.Store
	runGen   engine.RunIDGenerator
	analyzer *analyzer.Analyzer
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, with a
// fixed run ID so traces are reproducible.
//
// Execution flow:
//  1. Build the network
//  2. Aggregate over presses (if set)
//  3. Align on target (if set)
//  4. Record trace_presses presses into the store and read them back
//  5. Evaluate assertions
//
// Analysis failures (no convergence, quota, bad gate shape) are captured in
// Result.AnalysisError so an error assertion can match them. Run itself
// only fails when the scenario cannot be executed at all.
func Run(scenario *Scenario) (*Result, error) {
	net, err := scenario.LoadNetwork()
	if err != nil {
		return nil, fmt.Errorf("failed to load network: %w", err)
	}

	st, err := store.Open(store.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		scenario: scenario,
		net:      net,
		store:    st,
		runGen:   testutil.NewFixedRunGenerator(scenario.RunID),
		analyzer: analyzer.New(scenarioOptions(scenario)...),
	}

	ctx := context.Background()
	result := NewResult()

	if scenario.Presses > 0 {
		agg, err := h.analyzer.Aggregate(ctx, net, scenario.Presses)
		if err != nil {
			result.AnalysisError = err.Error()
		}
		result.Aggregate = agg
	}

	if scenario.Target != "" && result.AnalysisError == "" {
		al, err := h.analyzer.Align(ctx, net, scenario.Target)
		if err != nil {
			result.AnalysisError = err.Error()
		}
		result.Alignment = al
	}

	if scenario.TracePresses > 0 {
		if err := h.trace(ctx, result); err != nil {
			return nil, fmt.Errorf("failed to record trace: %w", err)
		}
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	if result.AnalysisError != "" && !expectsError(scenario) {
		result.AddError("unexpected analysis error: " + result.AnalysisError)
	}

	return result, nil
}

func scenarioOptions(s *Scenario) []analyzer.Option {
	var opts []analyzer.Option
	if s.MaxPresses > 0 {
		opts = append(opts, analyzer.WithMaxPresses(s.MaxPresses))
	}
	if s.MaxPulses > 0 {
		opts = append(opts, analyzer.WithEngineOptions(engine.WithMaxPulses(s.MaxPulses)))
	}
	return opts
}

// trace presses a clone of the network TracePresses times with a store
// recorder attached, then reads the trace back from the store.
func (h *Harness) trace(ctx context.Context, result *Result) error {
	runID := h.runGen.Generate()
	run, err := store.NewRun(runID, h.scenario.Name, h.net, h.scenario.TracePresses)
	if err != nil {
		return err
	}
	run.MaxPulses = h.scenario.MaxPulses
	if err := h.store.WriteRun(ctx, run); err != nil {
		return err
	}

	rec := h.store.NewRecorder(ctx, runID, store.WithPressLimit(h.scenario.TracePresses))
	opts := []engine.Option{engine.WithObserver(rec.Observe)}
	if h.scenario.MaxPulses > 0 {
		opts = append(opts, engine.WithMaxPulses(h.scenario.MaxPulses))
	}

	work := h.net.Clone()
	e := engine.New(work, opts...)
	for i := int64(0); i < h.scenario.TracePresses; i++ {
		if _, err := e.Press(); err != nil {
			if result.AnalysisError == "" {
				result.AnalysisError = err.Error()
			}
			break
		}
	}
	if err := rec.Flush(); err != nil {
		return err
	}

	pulses, err := h.store.ReadPulses(ctx, runID)
	if err != nil {
		return err
	}
	for _, ev := range pulses {
		result.Trace = append(result.Trace, traceEventFrom(ev))
	}
	if result.Presses, err = h.store.ReadPresses(ctx, runID); err != nil {
		return err
	}

	result.RunID = runID
	result.State = work.Snapshot()
	return nil
}

func expectsError(s *Scenario) bool {
	for _, a := range s.Assertions {
		if a.Type == AssertError {
			return true
		}
	}
	return false
}
