// Package trace provides decision-trace recording for MLFQ scheduling runs.
// It has no dependencies on sim/ and stores pure data types only.
package trace

// EventKind names a scheduling decision.
type EventKind string

const (
	EventArrival   EventKind = "arrival"   // process admitted to level 0
	EventDispatch  EventKind = "dispatch"  // process selected to run
	EventDemotion  EventKind = "demotion"  // quantum expired, moved down a level
	EventPromotion EventKind = "promotion" // aging moved the process up a level
	EventBoost     EventKind = "boost"     // every process reset to level 0
	EventPreempt   EventKind = "preempt"   // running process preempted by a boost
	EventBlock     EventKind = "block"     // process entered I/O
	EventUnblock   EventKind = "unblock"   // I/O finished, process ready again
	EventFinish    EventKind = "finish"    // remaining time reached 0
	EventIdle      EventKind = "idle"      // no process ran this tick
)

// EventRecord captures a single scheduling decision.
// FromQueue and ToQueue are -1 when not applicable.
type EventRecord struct {
	Clock     int64     `json:"clock"`
	Kind      EventKind `json:"kind"`
	PID       string    `json:"pid,omitempty"`
	FromQueue int       `json:"from_queue"`
	ToQueue   int       `json:"to_queue"`
}
