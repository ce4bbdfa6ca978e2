package ir

// Version constants for the snapshot format and engine.
const (
	// SnapshotVersion is the snapshot schema version.
	SnapshotVersion = "1"

	// EngineVersion is the multiverse engine version.
	EngineVersion = "0.1.0"
)
