package sim

// Promotion records one aging promotion.
type Promotion struct {
	PID  string
	From int
	To   int
}

// AgingPass is the outcome of one AgingPolicy.Apply call.
type AgingPass struct {
	Boosted    bool        // a priority boost fired this tick
	Promotions []Promotion // individual aging promotions (empty when Boosted)
}

// AgingPolicy prevents starvation in two ways:
//   - aging: a process that sits in a ready queue for Threshold consecutive
//     ticks is promoted one level (a level-0 process has its counter reset);
//   - boost: every BoostInterval ticks every arrived, unfinished process is
//     moved to level 0 and all aging counters are cleared.
//
// A boost supersedes individual promotions in the same tick.
type AgingPolicy struct {
	Threshold     int64
	BoostInterval int64
	sinceBoost    int64 // ticks elapsed since the last boost (or since tick 0)
}

// NewAgingPolicy creates an AgingPolicy; both parameters must be > 0.
func NewAgingPolicy(threshold, boostInterval int64) *AgingPolicy {
	if threshold <= 0 || boostInterval <= 0 {
		panic("NewAgingPolicy: threshold and boost interval must be > 0")
	}
	return &AgingPolicy{Threshold: threshold, BoostInterval: boostInterval}
}

// BoostDue reports whether a boost fires at the current tick.
func (a *AgingPolicy) BoostDue() bool {
	return a.sinceBoost >= a.BoostInterval
}

// TicksSinceBoost returns the ticks elapsed since the last boost.
func (a *AgingPolicy) TicksSinceBoost() int64 { return a.sinceBoost }

// Observe increments the aging counter of every process that waited in a
// ready queue this tick without being selected.
func (a *AgingPolicy) Observe(waiting []*ProcessState) {
	for _, ps := range waiting {
		ps.AgingCounter++
	}
}

// Tick advances the boost clock by one tick.
func (a *AgingPolicy) Tick() {
	a.sinceBoost++
}

// Apply runs the boost/promotion pass over the queue set. procs is the full
// process set so blocked processes can be boosted too; the running process
// (if any) is left for the caller to preempt when Boosted is true.
func (a *AgingPolicy) Apply(qs *QueueSet, procs []*ProcessState) (AgingPass, error) {
	if a.BoostDue() {
		if err := a.boost(qs, procs); err != nil {
			return AgingPass{}, err
		}
		return AgingPass{Boosted: true}, nil
	}
	var promotions []Promotion
	for _, ps := range qs.Ordered() {
		if ps.AgingCounter < a.Threshold {
			continue
		}
		ps.AgingCounter = 0
		if ps.Queue == 0 {
			continue
		}
		from := ps.Queue
		qs.RemoveAll(ps.PID)
		if err := qs.Enqueue(ps, from-1); err != nil {
			return AgingPass{}, err
		}
		promotions = append(promotions, Promotion{PID: ps.PID, From: from, To: from - 1})
	}
	return AgingPass{Promotions: promotions}, nil
}

// boost moves every queued process to level 0, keeping the current
// priority order, and resets blocked processes to level 0 in place.
func (a *AgingPolicy) boost(qs *QueueSet, procs []*ProcessState) error {
	ordered := qs.Ordered()
	qs.Clear()
	for _, ps := range ordered {
		ps.AgingCounter = 0
		if err := qs.Enqueue(ps, 0); err != nil {
			return err
		}
	}
	for _, ps := range procs {
		if !ps.Arrived || ps.IsFinished() {
			continue
		}
		ps.AgingCounter = 0
		if ps.State == StatusBlocked {
			ps.Queue = 0
		}
	}
	a.sinceBoost = 0
	return nil
}
