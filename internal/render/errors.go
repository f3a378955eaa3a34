package render

import (
	"errors"
	"fmt"
)

// ErrEncodeTimeout reports that the encoder ran past the configured wall
// clock budget and was killed.
var ErrEncodeTimeout = errors.New("encode timed out")

// EncodeError reports an encoder process that exited unsuccessfully, with
// the tail of its diagnostic output preserved for the operator.
type EncodeError struct {
	ExitCode   int
	Diagnostic string
}

func (e *EncodeError) Error() string {
	if e.Diagnostic == "" {
		return fmt.Sprintf("encoder exited with status %d", e.ExitCode)
	}
	return fmt.Sprintf("encoder exited with status %d: %s", e.ExitCode, e.Diagnostic)
}

// OutputValidationError reports a file the encoder produced that does not
// hold the expected streams or duration.
type OutputValidationError struct {
	Path   string
	Reason string
}

func (e *OutputValidationError) Error() string {
	return fmt.Sprintf("output %s failed validation: %s", e.Path, e.Reason)
}
