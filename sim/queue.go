// Implements the QueueSet, which holds one FIFO ready queue per priority
// level. Level 0 is the highest priority.

package sim

import (
	"fmt"
	"strings"
)

// QueueSet is an ordered collection of priority levels, each a FIFO sequence
// of ready processes, together with the quantum granted at each level.
// A process appears in at most one level at a time.
type QueueSet struct {
	levels [][]*ProcessState
	quanta []int64
}

// NewQueueSet creates len(quanta) empty levels; quanta[i] is the quantum of
// level i.
func NewQueueSet(quanta []int64) *QueueSet {
	if len(quanta) == 0 {
		panic("NewQueueSet: at least one level required")
	}
	q := make([]int64, len(quanta))
	copy(q, quanta)
	return &QueueSet{
		levels: make([][]*ProcessState, len(quanta)),
		quanta: q,
	}
}

// NumLevels returns the number of priority levels.
func (qs *QueueSet) NumLevels() int { return len(qs.levels) }

func (qs *QueueSet) checkLevel(level int) error {
	if level < 0 || level >= len(qs.levels) {
		return &InvalidLevelError{Level: level, NumQueues: len(qs.levels)}
	}
	return nil
}

// Quantum returns the time slice granted at level.
func (qs *QueueSet) Quantum(level int) (int64, error) {
	if err := qs.checkLevel(level); err != nil {
		return 0, err
	}
	return qs.quanta[level], nil
}

// Enqueue appends ps to the tail of level and records the level on ps.
// Callers must RemoveAll first when relocating a process.
func (qs *QueueSet) Enqueue(ps *ProcessState, level int) error {
	if err := qs.checkLevel(level); err != nil {
		return err
	}
	if ps.IsFinished() {
		return fmt.Errorf("enqueue %q at level %d: process already finished", ps.PID, level)
	}
	if cur, ok := qs.Find(ps.PID); ok {
		return fmt.Errorf("enqueue %q at level %d: already queued at level %d", ps.PID, level, cur)
	}
	ps.Queue = level
	qs.levels[level] = append(qs.levels[level], ps)
	return nil
}

// DequeueHighestNonEmpty removes and returns the head of the lowest-indexed
// non-empty level. ok is false when every level is empty (CPU idle).
func (qs *QueueSet) DequeueHighestNonEmpty() (ps *ProcessState, level int, ok bool) {
	for i, q := range qs.levels {
		if len(q) == 0 {
			continue
		}
		head := q[0]
		q[0] = nil
		qs.levels[i] = q[1:]
		return head, i, true
	}
	return nil, -1, false
}

// RemoveAll removes every occurrence of pid and returns how many entries
// were removed. Removing an absent pid is a no-op.
func (qs *QueueSet) RemoveAll(pid string) int {
	removed := 0
	for i, q := range qs.levels {
		kept := q[:0]
		for _, ps := range q {
			if ps.PID == pid {
				removed++
				continue
			}
			kept = append(kept, ps)
		}
		for j := len(kept); j < len(q); j++ {
			q[j] = nil
		}
		qs.levels[i] = kept
	}
	return removed
}

// Find returns the level holding pid, if any.
func (qs *QueueSet) Find(pid string) (int, bool) {
	for i, q := range qs.levels {
		for _, ps := range q {
			if ps.PID == pid {
				return i, true
			}
		}
	}
	return -1, false
}

// Len returns the number of queued processes across all levels.
func (qs *QueueSet) Len() int {
	n := 0
	for _, q := range qs.levels {
		n += len(q)
	}
	return n
}

// LevelLen returns the number of processes queued at level.
func (qs *QueueSet) LevelLen(level int) int {
	if qs.checkLevel(level) != nil {
		return 0
	}
	return len(qs.levels[level])
}

// Ordered returns every queued process, level 0 first and FIFO within a
// level. The returned slice is a copy and may be retained.
func (qs *QueueSet) Ordered() []*ProcessState {
	out := make([]*ProcessState, 0, qs.Len())
	for _, q := range qs.levels {
		out = append(out, q...)
	}
	return out
}

// PIDs returns the pid sequence of every level, for snapshots.
func (qs *QueueSet) PIDs() [][]string {
	out := make([][]string, len(qs.levels))
	for i, q := range qs.levels {
		out[i] = make([]string, len(q))
		for j, ps := range q {
			out[i][j] = ps.PID
		}
	}
	return out
}

// Clear empties every level.
func (qs *QueueSet) Clear() {
	for i := range qs.levels {
		qs.levels[i] = nil
	}
}

func (qs *QueueSet) String() string {
	var sb strings.Builder
	for i, q := range qs.levels {
		fmt.Fprintf(&sb, "Q%d[", i)
		for j, ps := range q {
			sb.WriteString(ps.PID)
			if j < len(q)-1 {
				sb.WriteString(" ")
			}
		}
		sb.WriteString("]")
		if i < len(qs.levels)-1 {
			sb.WriteString(" ")
		}
	}
	return sb.String()
}
