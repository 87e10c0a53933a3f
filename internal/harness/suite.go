package harness

import (
	"fmt"
	"path/filepath"
	"slices"
)

// SuiteResult summarizes running every scenario in a directory.
type SuiteResult struct {
	Total    int               `json:"total"`
	Passed   int               `json:"passed"`
	Failed   int               `json:"failed"`
	Failures []ScenarioFailure `json:"failures,omitempty"`
}

// ScenarioFailure describes one failed scenario.
type ScenarioFailure struct {
	Scenario string   `json:"scenario,omitempty"`
	Path     string   `json:"path"`
	Errors   []string `json:"errors"`
}

// RunDir loads and runs every *.yaml and *.yml scenario in dir, in
// lexical order.
//
// Load and execution failures are reported as scenario failures, not as
// an error; only an unreadable directory returns an error.
func RunDir(dir string) (*SuiteResult, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("list scenarios: %w", err)
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)

	suite := &SuiteResult{}
	for _, path := range paths {
		suite.Total++

		scenario, err := LoadScenario(path)
		if err != nil {
			suite.fail(ScenarioFailure{Path: path, Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)}})
			continue
		}

		result, err := Run(scenario)
		if err != nil {
			suite.fail(ScenarioFailure{Scenario: scenario.Name, Path: path, Errors: []string{fmt.Sprintf("scenario execution failed: %v", err)}})
			continue
		}

		if !result.Pass {
			suite.fail(ScenarioFailure{Scenario: scenario.Name, Path: path, Errors: result.Errors})
			continue
		}

		suite.Passed++
	}

	return suite, nil
}

func (s *SuiteResult) fail(f ScenarioFailure) {
	s.Failed++
	s.Failures = append(s.Failures, f)
}
