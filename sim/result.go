package sim

import "github.com/inference-sim/mlfq-sim/sim/trace"

// Snapshot is the step-mode view of a run: every ProcessState and the queue
// membership at the current clock. It shares no memory with the simulator.
type Snapshot struct {
	Clock     int64          `json:"clock"`
	Running   string         `json:"running,omitempty"` // pid on the CPU after the last tick, empty when idle
	Queues    [][]string     `json:"queues"`            // pids per level, head first
	Processes []ProcessState `json:"processes"`
	IdleTicks int64          `json:"idle_ticks"`
	Done      bool           `json:"done"`
}

// SimulationResult is the final output of a completed run.
type SimulationResult struct {
	Processes []ProcessState         `json:"processes"`
	Metrics   Metrics                `json:"metrics"`
	TotalTime int64                  `json:"total_time"`
	Trace     *trace.SimulationTrace `json:"trace,omitempty"`
}

// Process returns the final state of pid, if present.
func (r *SimulationResult) Process(pid string) (ProcessState, bool) {
	for _, ps := range r.Processes {
		if ps.PID == pid {
			return ps, true
		}
	}
	return ProcessState{}, false
}
