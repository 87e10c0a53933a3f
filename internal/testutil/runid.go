package testutil

// FixedRunGenerator generates the same run ID every time.
//
// This enables deterministic test execution and golden trace comparison:
// the same scenario recorded with the same FixedRunGenerator produces
// byte-identical trace rows.
//
// Thread-safety: FixedRunGenerator is stateless and safe for concurrent use.
type FixedRunGenerator struct {
	id string
}

// NewFixedRunGenerator creates a new fixed run ID generator.
// If id is empty, Generate() returns "test-run-default".
func NewFixedRunGenerator(id string) *FixedRunGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunGenerator{id: id}
}

// Generate returns the fixed run ID.
//
// Implements engine.RunIDGenerator.
func (g *FixedRunGenerator) Generate() string {
	return g.id
}
