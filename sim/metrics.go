// Derives per-process and aggregate performance metrics from a finished
// process set and the global timeline.

package sim

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// Metrics aggregates statistics about the simulation for final reporting.
type Metrics struct {
	AvgTurnaroundTime float64 `json:"avg_turnaround_time"`
	AvgWaitingTime    float64 `json:"avg_waiting_time"`
	AvgResponseTime   float64 `json:"avg_response_time"`
	CPUUtilization    float64 `json:"cpu_utilization"` // (total - idle) / total
	TotalTime         int64   `json:"total_time"`      // final clock value

	IdleTicks         int64   `json:"idle_ticks"`
	Throughput        float64 `json:"throughput"`       // completed processes per tick
	ContextSwitches   int     `json:"context_switches"` // dispatches onto the CPU
	MaxTurnaroundTime int64   `json:"max_turnaround_time"`
	CompletedCount    int     `json:"completed_count"`
}

// MetricsCollector derives Metrics once every process has finished.
//
// Waiting time is turnaround minus burst. Under that definition the ticks a
// process spends blocked on I/O count as waiting; they are also reported on
// each process as BlockedTime so the pure ready-queue wait is
// WaitingTime - BlockedTime.
type MetricsCollector struct{}

// Collect fills the derived fields of every process and returns the
// aggregate metrics. totalTicks is the final clock, idleTicks the number of
// ticks in which no process ran. It fails with *IncompleteSimulationError if
// any process has not finished.
func (MetricsCollector) Collect(procs []*ProcessState, totalTicks, idleTicks int64, dispatches int) (*Metrics, error) {
	unfinished := 0
	for _, ps := range procs {
		if !ps.IsFinished() {
			unfinished++
		}
	}
	if unfinished > 0 {
		return nil, &IncompleteSimulationError{Clock: totalTicks, Unfinished: unfinished}
	}

	m := &Metrics{
		TotalTime:       totalTicks,
		IdleTicks:       idleTicks,
		ContextSwitches: dispatches,
		CompletedCount:  len(procs),
	}
	if len(procs) == 0 {
		return m, nil
	}

	turnarounds := make([]float64, len(procs))
	waits := make([]float64, len(procs))
	responses := make([]float64, len(procs))
	for i, ps := range procs {
		ps.TurnaroundTime = ps.FinishTime - ps.ArrivalTime
		waiting := ps.TurnaroundTime - ps.BurstTime
		if waiting != ps.WaitingTime {
			logrus.Warnf("process %s: accumulated waiting time %d disagrees with turnaround-burst %d", ps.PID, ps.WaitingTime, waiting)
		}
		ps.WaitingTime = waiting
		ps.ResponseTime = ps.FirstExecutionTime - ps.ArrivalTime

		turnarounds[i] = float64(ps.TurnaroundTime)
		waits[i] = float64(ps.WaitingTime)
		responses[i] = float64(ps.ResponseTime)
		m.MaxTurnaroundTime = max(m.MaxTurnaroundTime, ps.TurnaroundTime)
	}

	m.AvgTurnaroundTime = stat.Mean(turnarounds, nil)
	m.AvgWaitingTime = stat.Mean(waits, nil)
	m.AvgResponseTime = stat.Mean(responses, nil)
	if totalTicks > 0 {
		m.CPUUtilization = float64(totalTicks-idleTicks) / float64(totalTicks)
		m.Throughput = float64(len(procs)) / float64(totalTicks)
	}
	return m, nil
}

// Print writes a human-readable metrics table.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Completed Processes  : %d\n", m.CompletedCount)
	fmt.Fprintf(w, "Total Time           : %d ticks\n", m.TotalTime)
	fmt.Fprintf(w, "Idle Ticks           : %d\n", m.IdleTicks)
	fmt.Fprintf(w, "CPU Utilization      : %.2f%%\n", m.CPUUtilization*100)
	if m.CompletedCount > 0 {
		fmt.Fprintf(w, "Average Turnaround   : %.2f ticks\n", m.AvgTurnaroundTime)
		fmt.Fprintf(w, "Average Waiting      : %.2f ticks\n", m.AvgWaitingTime)
		fmt.Fprintf(w, "Average Response     : %.2f ticks\n", m.AvgResponseTime)
		fmt.Fprintf(w, "Max Turnaround       : %d ticks\n", m.MaxTurnaroundTime)
		fmt.Fprintf(w, "Throughput           : %.4f processes/tick\n", m.Throughput)
		fmt.Fprintf(w, "Context Switches     : %d\n", m.ContextSwitches)
	}
}
