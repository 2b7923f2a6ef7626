// Package workload loads MLFQ workload files and generates synthetic
// process sets.
package workload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/mlfq-sim/sim"
)

// WorkloadSpec is the top-level workload file: the scheduler config plus
// either an explicit process list or a generator section.
// Loaded from YAML (or JSON, which YAML accepts) via LoadWorkloadSpec(path).
type WorkloadSpec struct {
	Version   string               `yaml:"version,omitempty"`
	Config    sim.SimulationConfig `yaml:"config"`
	Processes []sim.Process        `yaml:"processes,omitempty"`
	Generator *GeneratorSpec       `yaml:"generator,omitempty"`
}

// LoadWorkloadSpec reads and parses a workload file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadWorkloadSpec(path string) (*WorkloadSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workload spec: %w", err)
	}
	return ParseWorkloadSpec(data)
}

// ParseWorkloadSpec parses workload file contents with strict field checking.
func ParseWorkloadSpec(data []byte) (*WorkloadSpec, error) {
	var spec WorkloadSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing workload spec: empty document")
		}
		return nil, fmt.Errorf("parsing workload spec: %w", err)
	}
	if spec.Version == "" {
		spec.Version = "1"
	}
	return &spec, nil
}

// Validate checks the config section and whichever process source is present.
// Exactly one of processes or generator must be given.
func (s *WorkloadSpec) Validate() error {
	if s.Version != "1" {
		return fmt.Errorf("unsupported workload version %q", s.Version)
	}
	if err := s.Config.Validate(); err != nil {
		return err
	}
	switch {
	case len(s.Processes) > 0 && s.Generator != nil:
		return fmt.Errorf("processes and generator are mutually exclusive")
	case s.Generator != nil:
		return s.Generator.Validate()
	default:
		return sim.ValidateProcesses(s.Processes)
	}
}

// ResolveProcesses returns the explicit process list, or the generated one
// when a generator section is present.
func (s *WorkloadSpec) ResolveProcesses() ([]sim.Process, error) {
	if s.Generator != nil {
		return Generate(*s.Generator)
	}
	return s.Processes, nil
}

// WriteSpec encodes spec as YAML to w.
func WriteSpec(w io.Writer, spec *WorkloadSpec) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(spec); err != nil {
		return fmt.Errorf("encoding workload spec: %w", err)
	}
	return enc.Close()
}
