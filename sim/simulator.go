// sim/simulator.go
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/mlfq-sim/sim/trace"
)

// Simulator is the SimulationDriver: it owns the authoritative clock,
// iterates the Scheduler tick either one step at a time or to completion,
// and assembles the final result.
//
// One Simulator serves one caller at a time. Hosting services create one
// per request; there is no internal locking.
type Simulator struct {
	Clock int64
	// Horizon bounds RunToCompletion (0 = unlimited). Reaching it leaves the
	// run intact and returns *IncompleteSimulationError.
	Horizon int64

	config     SimulationConfig
	quanta     []int64
	configured bool

	defs      []Process
	scheduler *Scheduler
	idleTicks int64

	traceConfig trace.TraceConfig
	trace       *trace.SimulationTrace

	failed error // sticky error from an aborted tick
}

// NewSimulator creates an unconfigured Simulator. Configure and
// LoadProcesses must both succeed before the first tick.
func NewSimulator() *Simulator {
	return &Simulator{}
}

// Configure validates and installs cfg. It must precede the first tick;
// after ticks have run, call Reset first.
func (sim *Simulator) Configure(cfg SimulationConfig) error {
	if sim.Clock > 0 {
		return &ConfigError{Reason: fmt.Sprintf("cannot reconfigure at tick %d; call Reset first", sim.Clock)}
	}
	quanta, err := cfg.quanta()
	if err != nil {
		return err
	}
	sim.config = cfg
	sim.quanta = quanta
	sim.configured = true
	sim.rebuild()
	return nil
}

// Config returns the installed configuration.
func (sim *Simulator) Config() SimulationConfig { return sim.config }

// LoadProcesses validates the batch and installs it as the run's process
// definitions, in input order. The whole batch is refused on the first
// invalid record.
func (sim *Simulator) LoadProcesses(procs []Process) error {
	if sim.Clock > 0 {
		return &ValidationError{Index: -1, Reason: fmt.Sprintf("cannot load processes at tick %d; call Reset first", sim.Clock)}
	}
	if err := ValidateProcesses(procs); err != nil {
		return err
	}
	sim.defs = make([]Process, len(procs))
	copy(sim.defs, procs)
	sim.rebuild()
	return nil
}

// EnableTrace installs a decision trace. Like Configure, it must precede
// the first tick.
func (sim *Simulator) EnableTrace(cfg trace.TraceConfig) error {
	if !trace.IsValidTraceLevel(string(cfg.Level)) {
		return &ConfigError{Field: "trace", Reason: fmt.Sprintf("unknown trace level %q", cfg.Level)}
	}
	if sim.Clock > 0 {
		return &ConfigError{Field: "trace", Reason: "tracing must be enabled before the first tick"}
	}
	sim.traceConfig = cfg
	sim.rebuild()
	return nil
}

// Reset restores every process to its initial state and the clock to 0,
// keeping the configuration and process definitions.
func (sim *Simulator) Reset() {
	sim.rebuild()
}

func (sim *Simulator) rebuild() {
	sim.Clock = 0
	sim.idleTicks = 0
	sim.failed = nil
	sim.trace = trace.NewSimulationTrace(sim.traceConfig)
	sim.scheduler = nil
	if !sim.configured || len(sim.defs) == 0 {
		return
	}
	states := make([]*ProcessState, len(sim.defs))
	for i, p := range sim.defs {
		states[i] = NewProcessState(p)
	}
	sim.scheduler = NewScheduler(
		NewQueueSet(sim.quanta),
		NewAgingPolicy(sim.config.AgingThreshold, sim.config.BoostInterval),
		states,
		sim.trace,
	)
}

func (sim *Simulator) ready() error {
	if !sim.configured {
		return &ConfigError{Reason: ErrNotConfigured.Error(), Err: ErrNotConfigured}
	}
	if sim.scheduler == nil {
		return &ValidationError{Index: -1, Reason: ErrNoProcesses.Error(), Err: ErrNoProcesses}
	}
	return sim.failed
}

// Done reports whether every process has finished.
func (sim *Simulator) Done() bool {
	return sim.scheduler != nil && sim.scheduler.Done()
}

// Step executes exactly one tick and returns the resulting snapshot.
// Stepping a finished run is a no-op. A failed tick leaves earlier ticks
// inspectable through Snapshot and makes every later Step fail the same way.
func (sim *Simulator) Step() (Snapshot, error) {
	if err := sim.ready(); err != nil {
		return Snapshot{}, err
	}
	if sim.scheduler.Done() {
		return sim.Snapshot(), nil
	}
	busy, err := sim.scheduler.Tick(sim.Clock)
	if err != nil {
		sim.failed = fmt.Errorf("tick %d aborted: %w", sim.Clock, err)
		logrus.Errorf("[tick %07d] %v", sim.Clock, err)
		return Snapshot{}, sim.failed
	}
	if !busy {
		sim.idleTicks++
	}
	sim.Clock++
	return sim.Snapshot(), nil
}

// RunToCompletion ticks until every process has finished and returns the
// result. With a non-zero Horizon it stops at that clock and returns
// *IncompleteSimulationError.
func (sim *Simulator) RunToCompletion() (*SimulationResult, error) {
	if err := sim.ready(); err != nil {
		return nil, err
	}
	logrus.Infof("[tick %07d] Starting simulation: %d processes, %d queues, quanta=%v, boost=%d, aging=%d",
		sim.Clock, len(sim.defs), sim.config.NumQueues, sim.quanta, sim.config.BoostInterval, sim.config.AgingThreshold)
	for !sim.scheduler.Done() {
		if sim.Horizon > 0 && sim.Clock >= sim.Horizon {
			logrus.Warnf("[tick %07d] horizon reached with %d process(es) unfinished", sim.Clock, sim.scheduler.Unfinished())
			return nil, &IncompleteSimulationError{Clock: sim.Clock, Unfinished: sim.scheduler.Unfinished()}
		}
		if _, err := sim.Step(); err != nil {
			return nil, err
		}
	}
	logrus.Infof("[tick %07d] Simulation ended", sim.Clock)
	return sim.Result()
}

// RunWithSnapshots runs to completion and returns the snapshot taken after
// every tick, for incremental UI replay.
func (sim *Simulator) RunWithSnapshots() ([]Snapshot, *SimulationResult, error) {
	if err := sim.ready(); err != nil {
		return nil, nil, err
	}
	var snapshots []Snapshot
	for !sim.scheduler.Done() {
		if sim.Horizon > 0 && sim.Clock >= sim.Horizon {
			return snapshots, nil, &IncompleteSimulationError{Clock: sim.Clock, Unfinished: sim.scheduler.Unfinished()}
		}
		snap, err := sim.Step()
		if err != nil {
			return snapshots, nil, err
		}
		snapshots = append(snapshots, snap)
	}
	res, err := sim.Result()
	return snapshots, res, err
}

// Snapshot returns a deep copy of the current state.
func (sim *Simulator) Snapshot() Snapshot {
	snap := Snapshot{Clock: sim.Clock, IdleTicks: sim.idleTicks, Queues: [][]string{}, Processes: []ProcessState{}}
	if sim.scheduler == nil {
		return snap
	}
	snap.Queues = sim.scheduler.Queues().PIDs()
	snap.Processes = cloneStates(sim.scheduler.Processes())
	if r := sim.scheduler.Running(); r != nil {
		snap.Running = r.PID
	}
	snap.Done = sim.scheduler.Done()
	return snap
}

// Result assembles the final result. It fails with
// *IncompleteSimulationError until every process has finished.
func (sim *Simulator) Result() (*SimulationResult, error) {
	if err := sim.ready(); err != nil {
		return nil, err
	}
	metrics, err := MetricsCollector{}.Collect(sim.scheduler.Processes(), sim.Clock, sim.idleTicks, sim.scheduler.Dispatches())
	if err != nil {
		return nil, err
	}
	return &SimulationResult{
		Processes: cloneStates(sim.scheduler.Processes()),
		Metrics:   *metrics,
		TotalTime: sim.Clock,
		Trace:     sim.trace.Clone(),
	}, nil
}

func cloneStates(procs []*ProcessState) []ProcessState {
	out := make([]ProcessState, len(procs))
	for i, ps := range procs {
		out[i] = ps.Clone()
	}
	return out
}

// Simulate configures a fresh Simulator, loads procs and runs it to completion.
func Simulate(cfg SimulationConfig, procs []Process, opts ...Option) (*SimulationResult, error) {
	sim, err := New(cfg, procs, opts...)
	if err != nil {
		return nil, err
	}
	return sim.RunToCompletion()
}

// Option customizes a Simulator built by New.
type Option func(*Simulator) error

// WithTrace enables decision tracing at level.
func WithTrace(level trace.TraceLevel) Option {
	return func(sim *Simulator) error {
		return sim.EnableTrace(trace.TraceConfig{Level: level})
	}
}

// WithHorizon bounds RunToCompletion.
func WithHorizon(horizon int64) Option {
	return func(sim *Simulator) error {
		if horizon < 0 {
			return &ConfigError{Field: "horizon", Reason: fmt.Sprintf("must be >= 0, got %d", horizon)}
		}
		sim.Horizon = horizon
		return nil
	}
}

// New returns a configured, loaded Simulator at tick 0.
func New(cfg SimulationConfig, procs []Process, opts ...Option) (*Simulator, error) {
	sim := NewSimulator()
	if err := sim.Configure(cfg); err != nil {
		return nil, err
	}
	if err := sim.LoadProcesses(procs); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		if err := opt(sim); err != nil {
			return nil, err
		}
	}
	return sim, nil
}
