package beamline

import (
	"fmt"
	"time"
)

// InvalidParameterError reports a detector or motor name outside the
// beamline's allow-lists. It is raised before any network call and is
// never retriable.
type InvalidParameterError struct {
	Kind    string // "detector" or "motor"
	Name    string
	Allowed []string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s %q, available: %v", e.Kind, e.Name, e.Allowed)
}

// TimeoutError reports that a submitted plan showed no terminal status
// within the configured wait.
type TimeoutError struct {
	ItemUID string
	Waited  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("plan %s did not complete within %s", e.ItemUID, e.Waited)
}

// ExecutionError reports a terminal failure status from the queue server.
// The client never retries these itself.
type ExecutionError struct {
	ItemUID string
	Status  string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("plan %s failed with exit status %q", e.ItemUID, e.Status)
}
