package workload

import (
	"reflect"
	"testing"
)

func baseGenerator() GeneratorSpec {
	return GeneratorSpec{
		Seed:    42,
		Count:   50,
		Arrival: ArrivalSpec{Process: "poisson", MeanGap: 3},
		Burst:   RangeSpec{Min: 2, Max: 9},
	}
}

func TestGenerate_SameSeed_Deterministic(t *testing.T) {
	a, err := Generate(baseGenerator())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate(baseGenerator())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different workloads")
	}
}

func TestGenerate_DifferentSeed_Differs(t *testing.T) {
	g := baseGenerator()
	a, _ := Generate(g)
	g.Seed = 43
	b, _ := Generate(g)
	if reflect.DeepEqual(a, b) {
		t.Error("different seeds produced identical workloads")
	}
}

func TestGenerate_ShapeAndRanges(t *testing.T) {
	procs, err := Generate(baseGenerator())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(procs) != 50 {
		t.Fatalf("len = %d, want 50", len(procs))
	}
	if procs[0].ArrivalTime != 0 {
		t.Errorf("first arrival = %d, want 0", procs[0].ArrivalTime)
	}
	if procs[0].PID != "P1" || procs[49].PID != "P50" {
		t.Errorf("pids = %s..%s, want P1..P50", procs[0].PID, procs[49].PID)
	}
	for i, p := range procs {
		if p.BurstTime < 2 || p.BurstTime > 9 {
			t.Errorf("process %d burst %d outside [2, 9]", i, p.BurstTime)
		}
		if i > 0 && p.ArrivalTime < procs[i-1].ArrivalTime {
			t.Errorf("process %d arrives before its predecessor", i)
		}
		if p.IOTime != nil {
			t.Errorf("process %d has I/O without an io section", i)
		}
	}
}

func TestGenerate_ArrivalProcesses(t *testing.T) {
	g := baseGenerator()
	g.Count = 5

	g.Arrival = ArrivalSpec{Process: "simultaneous"}
	procs, err := Generate(g)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, p := range procs {
		if p.ArrivalTime != 0 {
			t.Errorf("simultaneous: %s arrives at %d", p.PID, p.ArrivalTime)
		}
	}

	g.Arrival = ArrivalSpec{Process: "constant", MeanGap: 4}
	procs, err = Generate(g)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i, p := range procs {
		if p.ArrivalTime != int64(4*i) {
			t.Errorf("constant: %s arrives at %d, want %d", p.PID, p.ArrivalTime, 4*i)
		}
	}
}

func TestGenerate_IOFraction(t *testing.T) {
	g := baseGenerator()
	g.IO = &IOSpec{Fraction: 1, Time: RangeSpec{Min: 1, Max: 3}, Interval: RangeSpec{Min: 2, Max: 2}}
	procs, err := Generate(g)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, p := range procs {
		if p.IOTime == nil || *p.IOTime < 1 || *p.IOTime > 3 {
			t.Fatalf("%s: io_time %v outside [1, 3]", p.PID, p.IOTime)
		}
		if p.IOInterval == nil || *p.IOInterval != 2 {
			t.Fatalf("%s: io_interval %v, want 2", p.PID, p.IOInterval)
		}
	}

	g.IO.Fraction = 0
	procs, err = Generate(g)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, p := range procs {
		if p.IOTime != nil {
			t.Errorf("%s: fraction 0 produced I/O", p.PID)
		}
	}
}

func TestGenerate_IOSettings_DoNotShiftArrivalsOrBursts(t *testing.T) {
	// GIVEN the same generator with and without an I/O section
	plain := baseGenerator()
	withIO := baseGenerator()
	withIO.IO = &IOSpec{Fraction: 0.5, Time: RangeSpec{Min: 1, Max: 4}, Interval: RangeSpec{Min: 1, Max: 3}}

	a, err := Generate(plain)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	b, err := Generate(withIO)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	// THEN arrivals and bursts are identical
	for i := range a {
		if a[i].ArrivalTime != b[i].ArrivalTime || a[i].BurstTime != b[i].BurstTime {
			t.Fatalf("process %d changed: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestGeneratorSpec_Validate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GeneratorSpec)
	}{
		{"zero count", func(g *GeneratorSpec) { g.Count = 0 }},
		{"unknown arrival", func(g *GeneratorSpec) { g.Arrival.Process = "bursty" }},
		{"negative gap", func(g *GeneratorSpec) { g.Arrival.MeanGap = -1 }},
		{"zero burst min", func(g *GeneratorSpec) { g.Burst = RangeSpec{Min: 0, Max: 3} }},
		{"inverted burst range", func(g *GeneratorSpec) { g.Burst = RangeSpec{Min: 5, Max: 3} }},
		{"io fraction above one", func(g *GeneratorSpec) {
			g.IO = &IOSpec{Fraction: 1.5, Time: RangeSpec{Min: 1, Max: 1}, Interval: RangeSpec{Min: 1, Max: 1}}
		}},
		{"zero io time", func(g *GeneratorSpec) {
			g.IO = &IOSpec{Fraction: 0.5, Time: RangeSpec{Min: 0, Max: 1}, Interval: RangeSpec{Min: 1, Max: 1}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := baseGenerator()
			tt.mutate(&g)
			if err := g.Validate(); err == nil {
				t.Error("expected validation error")
			}
			if _, err := Generate(g); err == nil {
				t.Error("Generate should refuse an invalid spec")
			}
		})
	}
}
