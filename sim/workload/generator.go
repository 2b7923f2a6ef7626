package workload

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/inference-sim/mlfq-sim/sim"
)

// GeneratorSpec parameterizes a synthetic process set.
// Deterministic given the same spec: each concern draws from its own
// PartitionedRNG subsystem, so changing the I/O settings does not shift the
// arrival times or burst lengths.
type GeneratorSpec struct {
	Seed    int64       `yaml:"seed"`
	Count   int         `yaml:"count"`
	Arrival ArrivalSpec `yaml:"arrival"`
	Burst   RangeSpec   `yaml:"burst"`
	IO      *IOSpec     `yaml:"io,omitempty"`
}

// ArrivalSpec configures inter-arrival gaps.
//   - "simultaneous": every process arrives at tick 0
//   - "constant": gaps of exactly MeanGap ticks
//   - "poisson": exponential gaps with mean MeanGap, rounded down
type ArrivalSpec struct {
	Process string  `yaml:"process"`
	MeanGap float64 `yaml:"mean_gap,omitempty"`
}

// RangeSpec is an inclusive integer range sampled uniformly.
type RangeSpec struct {
	Min int64 `yaml:"min"`
	Max int64 `yaml:"max"`
}

// IOSpec makes a fraction of the processes I/O-bound.
type IOSpec struct {
	Fraction float64   `yaml:"fraction"` // probability a process does I/O, in [0, 1]
	Time     RangeSpec `yaml:"time"`     // ticks blocked per I/O
	Interval RangeSpec `yaml:"interval"` // CPU ticks between I/Os
}

var validArrivalProcesses = map[string]bool{
	"simultaneous": true, "constant": true, "poisson": true,
}

// Validate checks the generator parameters.
func (g *GeneratorSpec) Validate() error {
	if g.Count <= 0 {
		return fmt.Errorf("generator.count must be positive, got %d", g.Count)
	}
	if !validArrivalProcesses[g.Arrival.Process] {
		return fmt.Errorf("generator.arrival.process: unknown process %q; valid: simultaneous, constant, poisson", g.Arrival.Process)
	}
	if g.Arrival.Process != "simultaneous" {
		if math.IsNaN(g.Arrival.MeanGap) || math.IsInf(g.Arrival.MeanGap, 0) || g.Arrival.MeanGap < 0 {
			return fmt.Errorf("generator.arrival.mean_gap must be a finite non-negative number, got %f", g.Arrival.MeanGap)
		}
	}
	if err := g.Burst.validate("generator.burst", 1); err != nil {
		return err
	}
	if g.IO != nil {
		if g.IO.Fraction < 0 || g.IO.Fraction > 1 || math.IsNaN(g.IO.Fraction) {
			return fmt.Errorf("generator.io.fraction must be in [0, 1], got %f", g.IO.Fraction)
		}
		if err := g.IO.Time.validate("generator.io.time", 1); err != nil {
			return err
		}
		if err := g.IO.Interval.validate("generator.io.interval", 1); err != nil {
			return err
		}
	}
	return nil
}

func (r RangeSpec) validate(name string, floor int64) error {
	if r.Min < floor {
		return fmt.Errorf("%s.min must be >= %d, got %d", name, floor, r.Min)
	}
	if r.Max < r.Min {
		return fmt.Errorf("%s.max (%d) must be >= min (%d)", name, r.Max, r.Min)
	}
	return nil
}

func (r RangeSpec) sample(rng *rand.Rand) int64 {
	if r.Max == r.Min {
		return r.Min
	}
	return r.Min + rng.Int63n(r.Max-r.Min+1)
}

// Generate creates a process list from g, with pids P1..Pn in arrival order.
func Generate(g GeneratorSpec) ([]sim.Process, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator spec: %w", err)
	}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(g.Seed))
	arrivalRNG := rng.ForSubsystem(sim.SubsystemArrivals)
	burstRNG := rng.ForSubsystem(sim.SubsystemBursts)
	ioRNG := rng.ForSubsystem(sim.SubsystemIO)

	procs := make([]sim.Process, 0, g.Count)
	var clock int64
	for i := 0; i < g.Count; i++ {
		if i > 0 {
			clock += nextGap(g.Arrival, arrivalRNG)
		}
		p := sim.Process{
			PID:         fmt.Sprintf("P%d", i+1),
			ArrivalTime: clock,
			BurstTime:   g.Burst.sample(burstRNG),
		}
		if g.IO != nil && ioRNG.Float64() < g.IO.Fraction {
			ioTime := g.IO.Time.sample(ioRNG)
			interval := g.IO.Interval.sample(ioRNG)
			p.IOTime = &ioTime
			p.IOInterval = &interval
		}
		procs = append(procs, p)
	}
	return procs, nil
}

func nextGap(a ArrivalSpec, rng *rand.Rand) int64 {
	switch a.Process {
	case "constant":
		return int64(a.MeanGap)
	case "poisson":
		return int64(rng.ExpFloat64() * a.MeanGap)
	default:
		return 0
	}
}
