package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalEvents  int
	Counts       map[EventKind]int
	Boosts       int
	IdleTicks    int
	Demotions    map[string]int // pid → number of quantum-expiry demotions
	Promotions   map[string]int // pid → number of aging promotions
	DeepestQueue map[string]int // pid → lowest priority level reached
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		Counts:       make(map[EventKind]int),
		Demotions:    make(map[string]int),
		Promotions:   make(map[string]int),
		DeepestQueue: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalEvents = len(st.Events)
	for _, e := range st.Events {
		summary.Counts[e.Kind]++
		switch e.Kind {
		case EventBoost:
			summary.Boosts++
		case EventIdle:
			summary.IdleTicks++
		case EventDemotion:
			summary.Demotions[e.PID]++
		case EventPromotion:
			summary.Promotions[e.PID]++
		}
		if e.PID != "" && e.ToQueue > summary.DeepestQueue[e.PID] {
			summary.DeepestQueue[e.PID] = e.ToQueue
		}
	}
	return summary
}
