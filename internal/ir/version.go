package ir

// Version constants recorded alongside every build.
const (
	// SchemaVersion is the content model version.
	SchemaVersion = "1"

	// EngineVersion is the assembly engine version. Bump it whenever a change
	// alters which variants a given page selects.
	EngineVersion = "0.1.0"
)
