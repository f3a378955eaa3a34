package workflow

import "context"

// Stage is one step of the pipeline. Stages run in a fixed order; each
// consumes the previous stage's product from the workspace and leaves its own
// behind.
type Stage interface {
	Name() string

	// Fingerprint hashes the inputs the stage would consume. Two invocations
	// with equal fingerprints produce equivalent artifacts.
	Fingerprint() (string, error)

	// ArtifactPath is the primary product recorded for resume bookkeeping.
	ArtifactPath() string

	// ArtifactReady reports whether the stage's product is already complete
	// on disk.
	ArtifactReady() bool

	Run(ctx context.Context) error
}
