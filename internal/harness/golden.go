package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/pulsesim/internal/ir"
)

// Snapshot converts a result to the canonical value stored in golden files.
// Every field is deterministic for a given scenario: there are no
// timestamps and the run ID is fixed.
func Snapshot(scenarioName string, result *Result) ir.Object {
	obj := ir.Object{
		"scenario_name": ir.String(scenarioName),
	}
	if result.RunID != "" {
		obj["run_id"] = ir.String(result.RunID)
	}

	if agg := result.Aggregate; agg != nil {
		a := ir.Object{
			"presses":   ir.Int(agg.Presses),
			"simulated": ir.Int(agg.Simulated),
			"high":      ir.Int(int64(agg.High)),
			"low":       ir.Int(int64(agg.Low)),
			"product":   ir.Int(int64(agg.Product)),
			"state":     ir.String(string(agg.State)),
		}
		if agg.CycleLength > 0 {
			a["cycle_start"] = ir.Int(agg.CycleStart)
			a["cycle_length"] = ir.Int(agg.CycleLength)
		}
		obj["aggregate"] = a
	}

	if al := result.Alignment; al != nil {
		inputs := make(ir.Array, len(al.Inputs))
		slots := make(ir.Array, len(al.Slots))
		for i := range al.Inputs {
			inputs[i] = ir.String(al.Inputs[i])
			slots[i] = ir.Int(al.Slots[i])
		}
		obj["alignment"] = ir.Object{
			"target":  ir.String(al.Target),
			"gate":    ir.String(al.Gate),
			"inputs":  inputs,
			"slots":   slots,
			"presses": ir.Int(al.Presses),
			"answer":  ir.Int(int64(al.Answer)),
			"state":   ir.String(string(al.State)),
		}
	}

	if result.RunID != "" {
		presses := make(ir.Array, len(result.Presses))
		for i, pc := range result.Presses {
			presses[i] = ir.Object{
				"press": ir.Int(pc.Press),
				"high":  ir.Int(int64(pc.High)),
				"low":   ir.Int(int64(pc.Low)),
			}
		}
		trace := make(ir.Array, len(result.Trace))
		for i, ev := range result.Trace {
			trace[i] = ir.Object{
				"press": ir.Int(ev.Press),
				"seq":   ir.Int(ev.Seq),
				"from":  ir.String(ev.From),
				"to":    ir.String(ev.To),
				"pulse": ir.String(ev.Pulse),
			}
		}
		obj["presses"] = presses
		obj["trace"] = trace
		if result.State != nil {
			obj["final_state"] = result.State
		}
	}

	if result.AnalysisError != "" {
		obj["error"] = ir.String(result.AnalysisError)
	}
	return obj
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := ir.MarshalCanonical(Snapshot(scenarioName, result))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
