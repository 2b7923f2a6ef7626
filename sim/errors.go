package sim

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is wrapped in a ConfigError when a tick is requested
// before Configure succeeded.
var ErrNotConfigured = errors.New("simulation not configured")

// ErrNoProcesses is wrapped in a ValidationError when a tick is requested
// before a process batch was loaded, or when the loaded batch is empty.
var ErrNoProcesses = errors.New("no processes loaded")

// ConfigError reports an invalid SimulationConfig. It is raised before any
// tick runs and is fatal to that run.
type ConfigError struct {
	Field  string // offending config field, empty for precondition failures
	Reason string
	Err    error // optional wrapped cause
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Reason)
	}
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// ValidationError reports an invalid process record. The whole batch is
// refused when one record fails.
type ValidationError struct {
	PID    string // empty when the failure is not tied to one record
	Index  int    // position of the record in the input list, -1 if not applicable
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	switch {
	case e.PID != "":
		return fmt.Sprintf("validation error: process %q: %s: %s", e.PID, e.Field, e.Reason)
	case e.Index >= 0:
		return fmt.Sprintf("validation error: process #%d: %s: %s", e.Index, e.Field, e.Reason)
	default:
		return fmt.Sprintf("validation error: %s", e.Reason)
	}
}

func (e *ValidationError) Unwrap() error { return e.Err }

// InvalidLevelError is an engine invariant violation: some component asked
// for a queue level outside [0, NumQueues-1]. It aborts the run.
type InvalidLevelError struct {
	Level     int
	NumQueues int
}

func (e *InvalidLevelError) Error() string {
	return fmt.Sprintf("invalid queue level %d (num_queues=%d)", e.Level, e.NumQueues)
}

// IncompleteSimulationError is returned when metrics are requested while
// some processes have not finished.
type IncompleteSimulationError struct {
	Clock      int64
	Unfinished int
}

func (e *IncompleteSimulationError) Error() string {
	return fmt.Sprintf("simulation incomplete at tick %d: %d process(es) not finished", e.Clock, e.Unfinished)
}

// ErrorDetail is the error body handed to API and UI collaborators in place
// of a result.
type ErrorDetail struct {
	Detail string `json:"detail" yaml:"detail"`
}

// NewErrorDetail wraps err for the boundary error channel. An incomplete
// simulation is reported as "not ready yet" rather than as a failure.
func NewErrorDetail(err error) ErrorDetail {
	var incomplete *IncompleteSimulationError
	if errors.As(err, &incomplete) {
		return ErrorDetail{Detail: fmt.Sprintf("not ready yet: %d process(es) still running at tick %d", incomplete.Unfinished, incomplete.Clock)}
	}
	return ErrorDetail{Detail: err.Error()}
}
