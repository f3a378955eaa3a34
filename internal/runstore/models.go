package runstore

import "time"

// Status tracks a run through its lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run records one pipeline invocation from start to final video (or failure).
type Run struct {
	ID           string
	Title        string
	Status       Status
	LineCount    int
	OutputPath   string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Artifact records the last successful product of one pipeline stage together
// with the fingerprint of the inputs that produced it. A stage whose current
// fingerprint matches may reuse the artifact instead of rebuilding it.
type Artifact struct {
	Stage        string
	Fingerprint  string
	ArtifactPath string
	UpdatedAt    time.Time
}
