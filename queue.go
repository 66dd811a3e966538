package motionchart

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one precomputed motion segment handed from the planner worker to
// the controller. Whoever holds an Entry owns it exclusively.
type Entry struct {
	Node  NodeID
	Type  NodeType
	State *MotionState
	Poses []Pose    // pose history the segment was planned against
	Plan  uuid.UUID // plan that produced the entry
}

// EntryWriter is the only channel a planner worker has back to the
// controller. Push reports false when the entry was rejected because the
// plan it belongs to has been superseded.
type EntryWriter interface {
	Push(e Entry) bool
}

// StateQueue is the FIFO shared between the tick lane and the planner lane.
// Every operation is serialized by one mutex.
//
// Reset is a barrier: nothing pushed before it returns can be popped after.
// Each Reset also starts a new generation; writers bound to an older
// generation are refused, so a producer that outlives its plan cannot leak
// entries into the next one.
type StateQueue struct {
	mu         sync.Mutex
	cond       *sync.Cond
	entries    []Entry
	generation uint64
}

// NewStateQueue creates an empty queue at generation 0.
func NewStateQueue() *StateQueue {
	q := &StateQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends e to the current generation.
func (q *StateQueue) Push(e Entry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pushLocked(e)
}

func (q *StateQueue) pushLocked(e Entry) {
	q.entries = append(q.entries, e)
	q.cond.Signal()
}

// PopFirst removes and returns the oldest entry. An empty queue is not an
// error; it means the planner has nothing ready yet.
func (q *StateQueue) PopFirst() (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.popLocked()
}

func (q *StateQueue) popLocked() (Entry, bool) {
	if len(q.entries) == 0 {
		return Entry{}, false
	}
	e := q.entries[0]
	q.entries[0] = Entry{}
	q.entries = q.entries[1:]
	return e, true
}

// WaitFirst pops the oldest entry, waiting at most timeout for one to
// arrive. A timeout <= 0 behaves like PopFirst.
func (q *StateQueue) WaitFirst(timeout time.Duration) (Entry, bool) {
	if timeout <= 0 {
		return q.PopFirst()
	}
	deadline := time.Now().Add(timeout)
	timer := time.AfterFunc(timeout, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer timer.Stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.entries) == 0 {
		if !time.Now().Before(deadline) {
			return Entry{}, false
		}
		q.cond.Wait()
	}
	return q.popLocked()
}

// Reset drops every queued entry and starts a new generation.
func (q *StateQueue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	clear(q.entries)
	q.entries = q.entries[:0]
	q.generation++
	q.cond.Broadcast()
}

// Len returns the number of queued entries.
func (q *StateQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Generation returns the number of Resets so far.
func (q *StateQueue) Generation() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.generation
}

// Writer returns an EntryWriter bound to generation gen.
func (q *StateQueue) Writer(gen uint64) EntryWriter {
	return &queueWriter{q: q, gen: gen}
}

type queueWriter struct {
	q   *StateQueue
	gen uint64
}

func (w *queueWriter) Push(e Entry) bool {
	w.q.mu.Lock()
	defer w.q.mu.Unlock()
	if w.q.generation != w.gen {
		return false
	}
	w.q.pushLocked(e)
	return true
}
