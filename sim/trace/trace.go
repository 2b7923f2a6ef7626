package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures every scheduling decision.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects decision records during one simulation run.
// A nil *SimulationTrace is valid and records nothing.
type SimulationTrace struct {
	Config TraceConfig   `json:"-"`
	Events []EventRecord `json:"events"`
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
// Returns nil when the level disables tracing.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	if config.Level == "" || config.Level == TraceLevelNone {
		return nil
	}
	return &SimulationTrace{
		Config: config,
		Events: make([]EventRecord, 0),
	}
}

// Record appends an event record.
func (st *SimulationTrace) Record(record EventRecord) {
	if st == nil {
		return
	}
	st.Events = append(st.Events, record)
}

// Reset drops every recorded event and keeps the configuration.
func (st *SimulationTrace) Reset() {
	if st == nil {
		return
	}
	st.Events = st.Events[:0]
}

// Clone returns an independent copy, or nil for a nil trace.
func (st *SimulationTrace) Clone() *SimulationTrace {
	if st == nil {
		return nil
	}
	events := make([]EventRecord, len(st.Events))
	copy(events, st.Events)
	return &SimulationTrace{Config: st.Config, Events: events}
}
