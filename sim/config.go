package sim

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// SimulationConfig groups the MLFQ parameters for one run.
type SimulationConfig struct {
	NumQueues      int       `json:"num_queues" yaml:"num_queues"`           // number of priority levels (must be >= 1)
	TimeSlice      TimeSlice `json:"time_slice" yaml:"time_slice"`           // quantum per level
	BoostInterval  int64     `json:"boost_interval" yaml:"boost_interval"`   // ticks between priority boosts (must be > 0)
	AgingThreshold int64     `json:"aging_threshold" yaml:"aging_threshold"` // consecutive queued ticks before promotion (must be > 0)
}

// Validate checks every field and returns the first *ConfigError found.
func (c SimulationConfig) Validate() error {
	_, err := c.quanta()
	return err
}

// quanta validates the config and resolves one quantum per level.
func (c SimulationConfig) quanta() ([]int64, error) {
	if c.NumQueues < 1 {
		return nil, &ConfigError{Field: "num_queues", Reason: fmt.Sprintf("must be >= 1, got %d", c.NumQueues)}
	}
	if c.BoostInterval <= 0 {
		return nil, &ConfigError{Field: "boost_interval", Reason: fmt.Sprintf("must be > 0, got %d", c.BoostInterval)}
	}
	if c.AgingThreshold <= 0 {
		return nil, &ConfigError{Field: "aging_threshold", Reason: fmt.Sprintf("must be > 0, got %d", c.AgingThreshold)}
	}
	return c.TimeSlice.Resolve(c.NumQueues)
}

type timeSliceKind int

const (
	timeSliceUnset timeSliceKind = iota
	timeSliceUniform
	timeSliceLevels
)

// TimeSlice is the quantum configuration: either one value for every level,
// or an explicit level -> quantum mapping. In YAML and JSON it is written as
// a scalar (4), a list ([4, 8, 16]) or a mapping ({0: 4, 1: 8, 2: 16}).
type TimeSlice struct {
	kind    timeSliceKind
	uniform int64
	levels  map[int]int64
}

// UniformTimeSlice applies the same quantum to every level.
func UniformTimeSlice(quantum int64) TimeSlice {
	return TimeSlice{kind: timeSliceUniform, uniform: quantum}
}

// LevelTimeSlice assigns quanta[i] to level i.
func LevelTimeSlice(quanta ...int64) TimeSlice {
	levels := make(map[int]int64, len(quanta))
	for i, q := range quanta {
		levels[i] = q
	}
	return TimeSlice{kind: timeSliceLevels, levels: levels}
}

// MappedTimeSlice builds a TimeSlice from an explicit level -> quantum map.
func MappedTimeSlice(levels map[int]int64) TimeSlice {
	cp := make(map[int]int64, len(levels))
	for k, v := range levels {
		cp[k] = v
	}
	return TimeSlice{kind: timeSliceLevels, levels: cp}
}

// IsZero reports whether no quantum was configured.
func (ts TimeSlice) IsZero() bool { return ts.kind == timeSliceUnset }

// Resolve returns one quantum per level for numQueues levels.
// Every level must map to a quantum > 0 and no level outside the range may
// be configured.
func (ts TimeSlice) Resolve(numQueues int) ([]int64, error) {
	quanta := make([]int64, numQueues)
	switch ts.kind {
	case timeSliceUnset:
		return nil, &ConfigError{Field: "time_slice", Reason: "is required"}
	case timeSliceUniform:
		if ts.uniform <= 0 {
			return nil, &ConfigError{Field: "time_slice", Reason: fmt.Sprintf("quantum must be > 0, got %d", ts.uniform)}
		}
		for i := range quanta {
			quanta[i] = ts.uniform
		}
	case timeSliceLevels:
		for _, level := range ts.sortedLevels() {
			if level < 0 || level >= numQueues {
				return nil, &ConfigError{Field: "time_slice", Reason: fmt.Sprintf("level %d outside [0, %d]", level, numQueues-1)}
			}
		}
		for i := range quanta {
			q, ok := ts.levels[i]
			if !ok {
				return nil, &ConfigError{Field: "time_slice", Reason: fmt.Sprintf("no quantum for level %d", i)}
			}
			if q <= 0 {
				return nil, &ConfigError{Field: "time_slice", Reason: fmt.Sprintf("quantum for level %d must be > 0, got %d", i, q)}
			}
			quanta[i] = q
		}
	}
	for i := 1; i < len(quanta); i++ {
		if quanta[i] < quanta[i-1] {
			logrus.Warnf("time_slice decreases from level %d (%d) to level %d (%d)", i-1, quanta[i-1], i, quanta[i])
		}
	}
	return quanta, nil
}

func (ts TimeSlice) sortedLevels() []int {
	keys := make([]int, 0, len(ts.levels))
	for k := range ts.levels {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// asList returns the quanta as a dense list when levels are exactly 0..n-1.
func (ts TimeSlice) asList() ([]int64, bool) {
	keys := ts.sortedLevels()
	list := make([]int64, len(keys))
	for i, k := range keys {
		if k != i {
			return nil, false
		}
		list[i] = ts.levels[k]
	}
	return list, true
}

func (ts TimeSlice) encodable() any {
	switch ts.kind {
	case timeSliceUniform:
		return ts.uniform
	case timeSliceLevels:
		if list, ok := ts.asList(); ok {
			return list
		}
		return ts.levels
	default:
		return nil
	}
}

// MarshalJSON writes the most compact form: scalar, list or mapping.
func (ts TimeSlice) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.encodable())
}

// UnmarshalJSON accepts a number, a list of numbers or an object keyed by level.
func (ts *TimeSlice) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*ts = TimeSlice{}
		return nil
	}
	switch data[0] {
	case '[':
		var list []int64
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("time_slice: %w", err)
		}
		*ts = LevelTimeSlice(list...)
	case '{':
		var levels map[int]int64
		if err := json.Unmarshal(data, &levels); err != nil {
			return fmt.Errorf("time_slice: %w", err)
		}
		*ts = MappedTimeSlice(levels)
	default:
		var q int64
		if err := json.Unmarshal(data, &q); err != nil {
			return fmt.Errorf("time_slice: %w", err)
		}
		*ts = UniformTimeSlice(q)
	}
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (ts TimeSlice) MarshalYAML() (any, error) {
	return ts.encodable(), nil
}

// UnmarshalYAML accepts a scalar, a sequence or a mapping keyed by level.
func (ts *TimeSlice) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*ts = TimeSlice{}
			return nil
		}
		var q int64
		if err := value.Decode(&q); err != nil {
			return fmt.Errorf("time_slice: %w", err)
		}
		*ts = UniformTimeSlice(q)
	case yaml.SequenceNode:
		var list []int64
		if err := value.Decode(&list); err != nil {
			return fmt.Errorf("time_slice: %w", err)
		}
		*ts = LevelTimeSlice(list...)
	case yaml.MappingNode:
		// Keys are decoded by hand so that quoted JSON-style keys ("0") work too.
		levels := make(map[int]int64, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			key := value.Content[i]
			level, err := strconv.Atoi(key.Value)
			if err != nil {
				return fmt.Errorf("time_slice: level key %q at line %d is not an integer", key.Value, key.Line)
			}
			var q int64
			if err := value.Content[i+1].Decode(&q); err != nil {
				return fmt.Errorf("time_slice: level %d: %w", level, err)
			}
			levels[level] = q
		}
		*ts = MappedTimeSlice(levels)
	default:
		return fmt.Errorf("time_slice: unsupported YAML node at line %d", value.Line)
	}
	return nil
}
