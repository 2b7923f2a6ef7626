package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/mlfq-sim/sim/trace"
)

// Scheduler is the tick-driven MLFQ state machine. It selects the next
// process to run, enforces quantum and I/O semantics, and drives the
// QueueSet and AgingPolicy. It does not own the clock: the caller passes
// the current tick to Tick and advances it afterwards.
//
// Not safe for concurrent use.
type Scheduler struct {
	queues  *QueueSet
	aging   *AgingPolicy
	procs   []*ProcessState // input order
	running *ProcessState
	trace   *trace.SimulationTrace

	finished   int
	dispatches int
}

// NewScheduler creates a Scheduler over procs. Every process must be in
// its initial state; procs order is the admission order for simultaneous
// arrivals. tr may be nil.
func NewScheduler(queues *QueueSet, aging *AgingPolicy, procs []*ProcessState, tr *trace.SimulationTrace) *Scheduler {
	return &Scheduler{
		queues: queues,
		aging:  aging,
		procs:  procs,
		trace:  tr,
	}
}

// Tick executes one scheduling tick at time now and reports whether the CPU
// was busy. The steps are, in order: admit arrivals, progress I/O, apply the
// boost/aging pass, dispatch if the CPU is free, and run the dispatched
// process for one tick.
func (s *Scheduler) Tick(now int64) (busy bool, err error) {
	if err := s.admitArrivals(now); err != nil {
		return false, err
	}
	if err := s.progressIO(now); err != nil {
		return false, err
	}
	if err := s.applyAging(now); err != nil {
		return false, err
	}
	if s.running == nil {
		s.dispatch(now)
	}
	s.accountWaiting()

	if s.running == nil {
		logrus.Debugf("[tick %07d] CPU idle", now)
		s.trace.Record(trace.EventRecord{Clock: now, Kind: trace.EventIdle, FromQueue: -1, ToQueue: -1})
		s.aging.Tick()
		return false, nil
	}
	err = s.execute(now)
	s.aging.Tick()
	return true, err
}

// admitArrivals enqueues, in input order, every process arriving at now.
func (s *Scheduler) admitArrivals(now int64) error {
	for _, ps := range s.procs {
		if ps.Arrived || ps.ArrivalTime > now {
			continue
		}
		ps.Arrived = true
		ps.State = StatusReady
		if err := s.queues.Enqueue(ps, 0); err != nil {
			return err
		}
		logrus.Debugf("[tick %07d] << Arrival: %s", now, ps.PID)
		s.trace.Record(trace.EventRecord{Clock: now, Kind: trace.EventArrival, PID: ps.PID, FromQueue: -1, ToQueue: 0})
	}
	return nil
}

// progressIO counts down I/O for processes blocked before now. A process
// whose I/O completes rejoins the tail of its pre-block level.
func (s *Scheduler) progressIO(now int64) error {
	for _, ps := range s.procs {
		if ps.State != StatusBlocked || ps.blockedAt >= now {
			continue
		}
		ps.RemainingIOTime--
		if ps.RemainingIOTime > 0 {
			continue
		}
		ps.RemainingIOTime = 0
		ps.State = StatusReady
		ps.AgingCounter = 0
		if err := s.queues.Enqueue(ps, ps.Queue); err != nil {
			return err
		}
		logrus.Debugf("[tick %07d] %s finished I/O, ready at queue %d", now, ps.PID, ps.Queue)
		s.trace.Record(trace.EventRecord{Clock: now, Kind: trace.EventUnblock, PID: ps.PID, FromQueue: -1, ToQueue: ps.Queue})
	}
	return nil
}

// applyAging runs the boost/promotion pass. A boost preempts the running
// process back to the tail of level 0.
func (s *Scheduler) applyAging(now int64) error {
	pass, err := s.aging.Apply(s.queues, s.procs)
	if err != nil {
		return err
	}
	for _, p := range pass.Promotions {
		logrus.Debugf("[tick %07d] promote %s: queue %d -> %d", now, p.PID, p.From, p.To)
		s.trace.Record(trace.EventRecord{Clock: now, Kind: trace.EventPromotion, PID: p.PID, FromQueue: p.From, ToQueue: p.To})
	}
	if !pass.Boosted {
		return nil
	}
	logrus.Debugf("[tick %07d] priority boost", now)
	s.trace.Record(trace.EventRecord{Clock: now, Kind: trace.EventBoost, FromQueue: -1, ToQueue: 0})
	if ps := s.running; ps != nil {
		from := ps.Queue
		ps.closeSegment(now)
		ps.State = StatusReady
		ps.AgingCounter = 0
		s.running = nil
		if err := s.queues.Enqueue(ps, 0); err != nil {
			return err
		}
		s.trace.Record(trace.EventRecord{Clock: now, Kind: trace.EventPreempt, PID: ps.PID, FromQueue: from, ToQueue: 0})
	}
	return nil
}

// dispatch moves the head of the highest-priority non-empty level onto the CPU.
func (s *Scheduler) dispatch(now int64) {
	ps, level, ok := s.queues.DequeueHighestNonEmpty()
	if !ok {
		return
	}
	ps.State = StatusRunning
	ps.segmentStart = now
	ps.QuantumUsed = 0
	ps.AgingCounter = 0
	if !ps.Started {
		ps.Started = true
		ps.StartTime = now
		ps.FirstExecutionTime = now
		ps.ResponseTime = now - ps.ArrivalTime
	}
	s.running = ps
	s.dispatches++
	logrus.Debugf("[tick %07d] dispatch %s from queue %d", now, ps.PID, level)
	s.trace.Record(trace.EventRecord{Clock: now, Kind: trace.EventDispatch, PID: ps.PID, FromQueue: level, ToQueue: level})
}

// accountWaiting charges one tick of waiting to every arrived process that
// is not on the CPU, and one tick of aging to every queued one.
func (s *Scheduler) accountWaiting() {
	queued := s.queues.Ordered()
	s.aging.Observe(queued)
	for _, ps := range queued {
		ps.WaitingTime++
	}
	for _, ps := range s.procs {
		if ps.State == StatusBlocked {
			ps.WaitingTime++
			ps.BlockedTime++
		}
	}
}

// execute runs the dispatched process for one tick. Completion is checked
// before quantum expiry, and quantum expiry before voluntary I/O.
func (s *Scheduler) execute(now int64) error {
	ps := s.running
	if ps.RemainingTime <= 0 {
		return fmt.Errorf("tick %d: process %q running with no remaining time", now, ps.PID)
	}
	ps.RemainingTime--
	ps.QuantumUsed++
	end := now + 1

	if ps.RemainingTime == 0 {
		ps.closeSegment(end)
		ps.State = StatusFinished
		ps.FinishTime = end
		s.running = nil
		s.finished++
		logrus.Debugf("[tick %07d] %s finished at %d", now, ps.PID, end)
		s.trace.Record(trace.EventRecord{Clock: now, Kind: trace.EventFinish, PID: ps.PID, FromQueue: ps.Queue, ToQueue: -1})
		return nil
	}

	quantum, err := s.queues.Quantum(ps.Queue)
	if err != nil {
		return err
	}
	if ps.QuantumUsed >= quantum {
		from := ps.Queue
		to := min(s.queues.NumLevels()-1, from+1)
		ps.closeSegment(end)
		ps.State = StatusReady
		s.running = nil
		if err := s.queues.Enqueue(ps, to); err != nil {
			return err
		}
		logrus.Debugf("[tick %07d] %s used its quantum: queue %d -> %d", now, ps.PID, from, to)
		s.trace.Record(trace.EventRecord{Clock: now, Kind: trace.EventDemotion, PID: ps.PID, FromQueue: from, ToQueue: to})
		return nil
	}

	if ps.IOTime > 0 && ps.QuantumUsed >= ps.IOInterval {
		ps.closeSegment(end)
		ps.State = StatusBlocked
		ps.RemainingIOTime = ps.IOTime
		ps.blockedAt = end
		s.running = nil
		logrus.Debugf("[tick %07d] %s blocked on I/O for %d ticks", now, ps.PID, ps.IOTime)
		s.trace.Record(trace.EventRecord{Clock: now, Kind: trace.EventBlock, PID: ps.PID, FromQueue: ps.Queue, ToQueue: ps.Queue})
	}
	return nil
}

// Running returns the process on the CPU, or nil.
func (s *Scheduler) Running() *ProcessState { return s.running }

// Queues returns the scheduler's queue set.
func (s *Scheduler) Queues() *QueueSet { return s.queues }

// Processes returns every process in input order.
func (s *Scheduler) Processes() []*ProcessState { return s.procs }

// Dispatches returns the number of dispatch decisions (context switches onto the CPU).
func (s *Scheduler) Dispatches() int { return s.dispatches }

// Unfinished returns the number of processes not yet finished.
func (s *Scheduler) Unfinished() int { return len(s.procs) - s.finished }

// Done reports whether every process has finished.
func (s *Scheduler) Done() bool { return s.finished == len(s.procs) }
