package workload

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/inference-sim/mlfq-sim/sim"
	"github.com/inference-sim/mlfq-sim/sim/internal/testutil"
)

const basicSpec = `
version: "1"
config:
  num_queues: 3
  time_slice: [4, 8, 16]
  boost_interval: 100
  aging_threshold: 50
processes:
  - pid: P1
    arrival_time: 0
    burst_time: 5
  - pid: P2
    arrival_time: 0
    burst_time: 10
    io_time: 2
    io_interval: 3
`

func TestLoadWorkloadSpec_ValidYAML_LoadsCorrectly(t *testing.T) {
	path := testutil.WriteTempFile(t, "workload.yaml", basicSpec)

	spec, err := LoadWorkloadSpec(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := spec.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if spec.Config.NumQueues != 3 || spec.Config.BoostInterval != 100 || spec.Config.AgingThreshold != 50 {
		t.Errorf("config = %+v", spec.Config)
	}
	quanta, err := spec.Config.TimeSlice.Resolve(3)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if quanta[0] != 4 || quanta[1] != 8 || quanta[2] != 16 {
		t.Errorf("quanta = %v, want [4 8 16]", quanta)
	}
	if len(spec.Processes) != 2 {
		t.Fatalf("processes count = %d, want 2", len(spec.Processes))
	}
	p2 := spec.Processes[1]
	if p2.IOTime == nil || *p2.IOTime != 2 || p2.IOInterval == nil || *p2.IOInterval != 3 {
		t.Errorf("P2 io fields = %v/%v, want 2/3", p2.IOTime, p2.IOInterval)
	}
	if spec.Processes[0].IOTime != nil {
		t.Error("P1 io_time should be unset")
	}
}

func TestLoadWorkloadSpec_MissingFile_ReturnsError(t *testing.T) {
	if _, err := LoadWorkloadSpec("/nonexistent/workload.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseWorkloadSpec_JSONInput_Accepted(t *testing.T) {
	doc := `{"config": {"num_queues": 2, "time_slice": {"0": 2, "1": 4}, "boost_interval": 10, "aging_threshold": 3},
  "processes": [{"pid": "A", "arrival_time": 1, "burst_time": 2}]}`
	spec, err := ParseWorkloadSpec([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := spec.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if spec.Version != "1" {
		t.Errorf("version defaulted to %q, want 1", spec.Version)
	}
	if spec.Processes[0].ArrivalTime != 1 {
		t.Errorf("arrival = %d, want 1", spec.Processes[0].ArrivalTime)
	}
}

func TestParseWorkloadSpec_UnknownField_Rejected(t *testing.T) {
	doc := strings.Replace(basicSpec, "boost_interval", "boost_intervall", 1)
	_, err := ParseWorkloadSpec([]byte(doc))
	if err == nil {
		t.Fatal("expected error for misspelled key")
	}
	if !strings.Contains(err.Error(), "boost_intervall") {
		t.Errorf("error should name the unknown key: %v", err)
	}
}

func TestParseWorkloadSpec_Empty_ReturnsError(t *testing.T) {
	_, err := ParseWorkloadSpec([]byte(""))
	if err == nil || !strings.Contains(err.Error(), "empty document") {
		t.Errorf("got %v, want empty document error", err)
	}
}

func TestWorkloadSpec_Validate_Errors(t *testing.T) {
	gen := &GeneratorSpec{Count: 2, Arrival: ArrivalSpec{Process: "simultaneous"}, Burst: RangeSpec{Min: 1, Max: 3}}
	cfg := sim.SimulationConfig{NumQueues: 1, TimeSlice: sim.UniformTimeSlice(2), BoostInterval: 5, AgingThreshold: 5}
	tests := []struct {
		name string
		spec WorkloadSpec
	}{
		{"bad version", WorkloadSpec{Version: "2", Config: cfg, Processes: []sim.Process{{PID: "A", BurstTime: 1}}}},
		{"bad config", WorkloadSpec{Version: "1", Processes: []sim.Process{{PID: "A", BurstTime: 1}}}},
		{"no processes", WorkloadSpec{Version: "1", Config: cfg}},
		{"both sources", WorkloadSpec{Version: "1", Config: cfg, Processes: []sim.Process{{PID: "A", BurstTime: 1}}, Generator: gen}},
		{"bad generator", WorkloadSpec{Version: "1", Config: cfg, Generator: &GeneratorSpec{Count: 0}}},
		{"bad process", WorkloadSpec{Version: "1", Config: cfg, Processes: []sim.Process{{PID: "A", BurstTime: 0}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.spec.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestWorkloadSpec_Validate_ProcessErrorsKeepTaxonomy(t *testing.T) {
	spec := WorkloadSpec{
		Version:   "1",
		Config:    sim.SimulationConfig{NumQueues: 1, TimeSlice: sim.UniformTimeSlice(2), BoostInterval: 5, AgingThreshold: 5},
		Processes: []sim.Process{{PID: "A", BurstTime: -1}},
	}
	var valErr *sim.ValidationError
	if err := spec.Validate(); !errors.As(err, &valErr) {
		t.Fatalf("got %v, want *sim.ValidationError", err)
	}
}

func TestWorkloadSpec_ResolveProcesses_FromGenerator(t *testing.T) {
	doc := `
config:
  num_queues: 2
  time_slice: 3
  boost_interval: 20
  aging_threshold: 5
generator:
  seed: 7
  count: 4
  arrival:
    process: constant
    mean_gap: 2
  burst:
    min: 1
    max: 6
`
	spec, err := ParseWorkloadSpec([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := spec.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	procs, err := spec.ResolveProcesses()
	if err != nil {
		t.Fatalf("ResolveProcesses: %v", err)
	}
	if len(procs) != 4 {
		t.Fatalf("got %d processes, want 4", len(procs))
	}
	for i, p := range procs {
		if p.ArrivalTime != int64(2*i) {
			t.Errorf("process %d arrival = %d, want %d", i, p.ArrivalTime, 2*i)
		}
	}
}

func TestWriteSpec_RoundTrip(t *testing.T) {
	// GIVEN a parsed spec
	spec, err := ParseWorkloadSpec([]byte(basicSpec))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	// WHEN written back out and re-parsed
	var buf bytes.Buffer
	if err := WriteSpec(&buf, spec); err != nil {
		t.Fatalf("WriteSpec: %v", err)
	}
	back, err := ParseWorkloadSpec(buf.Bytes())
	if err != nil {
		t.Fatalf("re-parse: %v\n%s", err, buf.String())
	}

	// THEN the same simulation results
	a, err := sim.Simulate(spec.Config, spec.Processes)
	if err != nil {
		t.Fatalf("simulate original: %v", err)
	}
	b, err := sim.Simulate(back.Config, back.Processes)
	if err != nil {
		t.Fatalf("simulate round-trip: %v", err)
	}
	if a.TotalTime != b.TotalTime || a.Metrics != b.Metrics {
		t.Errorf("round trip changed results: %+v vs %+v", a.Metrics, b.Metrics)
	}
	if !strings.Contains(buf.String(), "time_slice:") {
		t.Errorf("expected time_slice in output:\n%s", buf.String())
	}
}
