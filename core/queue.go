package core

import (
	"sync"
	"sync/atomic"
)

const (
	defaultQueueCap     = 16
	compactMinCap       = 64 // Don't compact if capacity is less than this
	compactShrinkFactor = 4  // Trigger compaction when len < cap/4
)

// workQueue is the per-worker task queue.
//
// Storage is a power-of-two ring used as a deque: external producers
// append to the back, the owning worker consumes from the front, and
// the worker's own nested submissions go to the front so they run next
// (LIFO self-push keeps chained work hot in cache). Sibling workers
// steal from the back, the opposite end from the owner.
//
// Any goroutine may push; only the owning worker pops the front. All
// mutation happens under mu. The parked flag plus the one-slot signal
// channel implement the wakeup protocol: a producer that finds the
// owner parked clears the flag and signals, and an owner about to park
// re-checks emptiness after setting the flag so a concurrent push is
// never missed.
type workQueue struct {
	mu   sync.Mutex
	buf  []Task
	head int // index of the front element
	size int

	parked atomic.Bool
	signal chan struct{}
}

func newWorkQueue() *workQueue {
	return &workQueue{
		buf:    make([]Task, defaultQueueCap),
		signal: make(chan struct{}, 1),
	}
}

// pushBack appends a task at the back (external producer order).
// Returns true if a parked owner was woken.
func (q *workQueue) pushBack(t Task) bool {
	q.mu.Lock()
	if q.size == len(q.buf) {
		q.grow()
	}
	q.buf[(q.head+q.size)&(len(q.buf)-1)] = t
	q.size++
	q.mu.Unlock()
	return q.wakeIfParked()
}

// pushFront prepends a task (owner self-push; runs before existing work).
// Returns true if a parked owner was woken, which only happens when the
// push races a stealing sibling against the owner's park transition.
func (q *workQueue) pushFront(t Task) bool {
	q.mu.Lock()
	if q.size == len(q.buf) {
		q.grow()
	}
	q.head = (q.head - 1) & (len(q.buf) - 1)
	q.buf[q.head] = t
	q.size++
	q.mu.Unlock()
	return q.wakeIfParked()
}

// popFront removes the front task. Called only by the owning worker.
func (q *workQueue) popFront() (Task, bool) {
	q.mu.Lock()
	if q.size == 0 {
		q.mu.Unlock()
		return nil, false
	}
	t := q.buf[q.head]
	q.buf[q.head] = nil // release the payload reference
	q.head = (q.head + 1) & (len(q.buf) - 1)
	q.size--
	q.maybeCompactLocked()
	q.mu.Unlock()
	return t, true
}

// stealBack removes the back task. Called by sibling workers.
func (q *workQueue) stealBack() (Task, bool) {
	q.mu.Lock()
	if q.size == 0 {
		q.mu.Unlock()
		return nil, false
	}
	i := (q.head + q.size - 1) & (len(q.buf) - 1)
	t := q.buf[i]
	q.buf[i] = nil
	q.size--
	q.maybeCompactLocked()
	q.mu.Unlock()
	return t, true
}

func (q *workQueue) len() int {
	q.mu.Lock()
	n := q.size
	q.mu.Unlock()
	return n
}

// grow doubles the ring, relinking front-to-back order. Caller holds mu.
func (q *workQueue) grow() {
	next := make([]Task, len(q.buf)*2)
	for i := 0; i < q.size; i++ {
		next[i] = q.buf[(q.head+i)&(len(q.buf)-1)]
	}
	q.buf = next
	q.head = 0
}

// maybeCompactLocked shrinks the ring after a burst drains, so a pool
// that absorbed millions of tasks does not pin their storage forever.
// Caller holds mu.
func (q *workQueue) maybeCompactLocked() {
	c := len(q.buf)
	if c < compactMinCap {
		return
	}
	if q.size*compactShrinkFactor >= c {
		return
	}
	newCap := c / 2
	for newCap > defaultQueueCap && q.size*compactShrinkFactor < newCap {
		newCap /= 2
	}
	if newCap < defaultQueueCap {
		newCap = defaultQueueCap
	}
	next := make([]Task, newCap)
	for i := 0; i < q.size; i++ {
		next[i] = q.buf[(q.head+i)&(len(q.buf)-1)]
	}
	q.buf = next
	q.head = 0
}

// wakeIfParked clears the parked flag and signals the owner. Returns
// true if this call performed the wake.
func (q *workQueue) wakeIfParked() bool {
	if q.parked.CompareAndSwap(true, false) {
		select {
		case q.signal <- struct{}{}:
		default:
		}
		return true
	}
	return false
}

// wake unconditionally signals the owner; used by pool shutdown.
func (q *workQueue) wake() {
	q.parked.Store(false)
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// prepareToPark publishes the parked flag, then re-checks emptiness.
// Returns false (flag cleared) if work arrived in the window, in which
// case the owner must not park.
func (q *workQueue) prepareToPark() bool {
	// Drain a stale token from an aborted park so it cannot cause an
	// immediate spurious wake.
	select {
	case <-q.signal:
	default:
	}
	q.parked.Store(true)
	if q.len() > 0 {
		q.parked.Store(false)
		return false
	}
	return true
}

// cancelPark clears the parked flag without consuming a signal; used
// when the owner is woken by shutdown instead of a push.
func (q *workQueue) cancelPark() {
	q.parked.Store(false)
}
