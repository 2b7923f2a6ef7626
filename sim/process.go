// Defines the input Process record and the ProcessState that tracks one
// simulated process through ready, running, blocked and finished.

package sim

import (
	"fmt"
)

// ProcessStatus is the lifecycle state of a process.
// Transitions are one-directional into finished; ready, running and blocked
// cycle among themselves.
type ProcessStatus string

const (
	StatusReady    ProcessStatus = "ready"
	StatusRunning  ProcessStatus = "running"
	StatusBlocked  ProcessStatus = "blocked"
	StatusFinished ProcessStatus = "finished"
)

// Process is one input record as received from the API or a workload file.
// Nil pointer fields mean "not set".
type Process struct {
	PID         string `json:"pid" yaml:"pid"`
	ArrivalTime int64  `json:"arrival_time" yaml:"arrival_time"`
	BurstTime   int64  `json:"burst_time" yaml:"burst_time"`
	IOTime      *int64 `json:"io_time,omitempty" yaml:"io_time,omitempty"`         // ticks blocked per voluntary I/O
	IOInterval  *int64 `json:"io_interval,omitempty" yaml:"io_interval,omitempty"` // CPU ticks per run segment before I/O (default 1)
	Priority    *int   `json:"priority,omitempty" yaml:"priority,omitempty"`       // informational, carried to the result
}

// Validate checks a single record. index is its position in the input list.
func (p Process) Validate(index int) error {
	if p.PID == "" {
		return &ValidationError{Index: index, Field: "pid", Reason: "must not be empty"}
	}
	if p.ArrivalTime < 0 {
		return &ValidationError{PID: p.PID, Index: index, Field: "arrival_time", Reason: fmt.Sprintf("must be >= 0, got %d", p.ArrivalTime)}
	}
	if p.BurstTime <= 0 {
		return &ValidationError{PID: p.PID, Index: index, Field: "burst_time", Reason: fmt.Sprintf("must be > 0, got %d", p.BurstTime)}
	}
	if p.IOTime != nil && *p.IOTime < 0 {
		return &ValidationError{PID: p.PID, Index: index, Field: "io_time", Reason: fmt.Sprintf("must be >= 0, got %d", *p.IOTime)}
	}
	if p.IOInterval != nil && *p.IOInterval <= 0 {
		return &ValidationError{PID: p.PID, Index: index, Field: "io_interval", Reason: fmt.Sprintf("must be > 0, got %d", *p.IOInterval)}
	}
	if p.Priority != nil && *p.Priority < 0 {
		return &ValidationError{PID: p.PID, Index: index, Field: "priority", Reason: fmt.Sprintf("must be >= 0, got %d", *p.Priority)}
	}
	return nil
}

// ValidateProcesses checks the whole batch. The first failure rejects it.
func ValidateProcesses(procs []Process) error {
	if len(procs) == 0 {
		return &ValidationError{Index: -1, Reason: "process list must not be empty", Err: ErrNoProcesses}
	}
	seen := make(map[string]int, len(procs))
	for i, p := range procs {
		if err := p.Validate(i); err != nil {
			return err
		}
		if first, dup := seen[p.PID]; dup {
			return &ValidationError{PID: p.PID, Index: i, Field: "pid", Reason: fmt.Sprintf("duplicate of process #%d", first)}
		}
		seen[p.PID] = i
	}
	return nil
}

// ExecutionInterval is one contiguous run segment [StartTime, EndTime) on
// the CPU at the given queue level.
type ExecutionInterval struct {
	StartTime int64 `json:"start_time"`
	EndTime   int64 `json:"end_time"`
	Queue     int   `json:"queue"`
}

// Len returns the number of ticks covered by the interval.
func (iv ExecutionInterval) Len() int64 { return iv.EndTime - iv.StartTime }

// ProcessState models a single process's lifecycle in the simulation.
// Identity fields never change; runtime fields are mutated only by the
// Scheduler and the AgingPolicy.
type ProcessState struct {
	PID         string `json:"pid"`
	ArrivalTime int64  `json:"arrival_time"`
	BurstTime   int64  `json:"burst_time"`
	IOTime      int64  `json:"io_time"`     // 0 = CPU-bound
	IOInterval  int64  `json:"io_interval"` // 0 when IOTime is 0
	Priority    *int   `json:"priority,omitempty"`

	State           ProcessStatus `json:"state"`
	Arrived         bool          `json:"arrived"` // false until the arrival tick is admitted
	Queue           int           `json:"queue"`
	RemainingTime   int64         `json:"remaining_time"`    // CPU ticks still owed
	RemainingIOTime int64         `json:"remaining_io_time"` // meaningful while blocked
	AgingCounter    int64         `json:"aging_counter"`     // consecutive queued ticks since last run or promotion
	QuantumUsed     int64         `json:"quantum_used"`      // ticks consumed in the current run segment

	Started            bool  `json:"started"`
	StartTime          int64 `json:"start_time"`
	FirstExecutionTime int64 `json:"first_execution_time"`
	FinishTime         int64 `json:"finish_time"`
	WaitingTime        int64 `json:"waiting_time"` // accumulates every arrived, non-running tick
	BlockedTime        int64 `json:"blocked_time"` // portion of WaitingTime spent blocked on I/O
	TurnaroundTime     int64 `json:"turnaround_time"`
	ResponseTime       int64 `json:"response_time"`

	ExecutionLog []ExecutionInterval `json:"execution_log"`

	segmentStart int64 // clock at which the current run segment began
	blockedAt    int64 // clock at which the current I/O began
}

// NewProcessState creates the initial state for an input record: ready at
// level 0 with the full burst owed.
func NewProcessState(p Process) *ProcessState {
	ps := &ProcessState{
		PID:           p.PID,
		ArrivalTime:   p.ArrivalTime,
		BurstTime:     p.BurstTime,
		State:         StatusReady,
		Queue:         0,
		RemainingTime: p.BurstTime,
		ExecutionLog:  []ExecutionInterval{},
	}
	if p.IOTime != nil && *p.IOTime > 0 {
		ps.IOTime = *p.IOTime
		ps.IOInterval = 1
		if p.IOInterval != nil {
			ps.IOInterval = *p.IOInterval
		}
	}
	if p.Priority != nil {
		prio := *p.Priority
		ps.Priority = &prio
	}
	return ps
}

// IsFinished reports whether the process has completed its burst.
func (ps *ProcessState) IsFinished() bool { return ps.State == StatusFinished }

// ExecutedTime returns the sum of closed execution-log intervals.
func (ps *ProcessState) ExecutedTime() int64 {
	var total int64
	for _, iv := range ps.ExecutionLog {
		total += iv.Len()
	}
	return total
}

// closeSegment ends the current run segment at end and appends it to the log.
func (ps *ProcessState) closeSegment(end int64) {
	if end > ps.segmentStart {
		ps.ExecutionLog = append(ps.ExecutionLog, ExecutionInterval{
			StartTime: ps.segmentStart,
			EndTime:   end,
			Queue:     ps.Queue,
		})
	}
	ps.QuantumUsed = 0
}

// Clone returns a deep copy suitable for snapshots and results.
func (ps *ProcessState) Clone() ProcessState {
	cp := *ps
	cp.ExecutionLog = make([]ExecutionInterval, len(ps.ExecutionLog))
	copy(cp.ExecutionLog, ps.ExecutionLog)
	if ps.Priority != nil {
		prio := *ps.Priority
		cp.Priority = &prio
	}
	return cp
}

// This method returns a human-readable string representation of a ProcessState.
func (ps ProcessState) String() string {
	return fmt.Sprintf("Process: (PID: %s, State: %s, Queue: %d, Remaining: %d, ArrivalTime: %d)", ps.PID, ps.State, ps.Queue, ps.RemainingTime, ps.ArrivalTime)
}
