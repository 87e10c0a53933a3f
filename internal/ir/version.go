package ir

// Version constants recorded with every traced run.
const (
	// SnapshotVersion is the snapshot encoding version. It changes whenever
	// Snapshot or Structure would produce different canonical bytes.
	SnapshotVersion = "1"

	// EngineVersion is the pulsesim engine version.
	EngineVersion = "0.1.0"
)
