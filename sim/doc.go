// Package sim provides the Multi-Level Feedback Queue scheduling simulation
// engine.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - process.go: ProcessState lifecycle (ready → running → blocked/finished)
//   - scheduler.go: the per-tick state machine (arrivals, I/O, aging, dispatch, execution)
//   - simulator.go: the driver that owns the clock, step mode and run-to-completion
//
// # Architecture
//
//   - QueueSet (queue.go): one FIFO ready queue per level, plus per-level quanta
//   - AgingPolicy (aging.go): aging promotions and periodic priority boost
//   - MetricsCollector (metrics.go): turnaround, waiting, response, CPU utilization
//   - sim/trace/: decision trace recording
//   - sim/workload/: workload files and seeded synthetic workloads
//
// A run is single-threaded and deterministic: identical configuration and
// process list always yield an identical SimulationResult. A Simulator must
// not be shared between goroutines.
package sim
