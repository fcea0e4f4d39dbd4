package core

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync/atomic"
)

// TaskSet is a join scope: it counts tasks submitted through it and
// lets the creating goroutine wait until every one of them has
// returned. Writes performed by those tasks are visible to the waiter
// once Wait returns.
//
// A TaskSet borrows its pool; the pool must outlive the set, and the
// pool's Shutdown panics if any set is still live (not yet waited).
// Schedule is safe from any goroutine; Wait and Close must be called by
// the creating goroutine.
type TaskSet struct {
	pool *ThreadPool

	// outstanding counts scheduled-but-not-returned tasks. A task's
	// effects happen-before its decrement, which happens-before Wait
	// observing zero.
	outstanding atomic.Int64

	// idle receives a token on the transition to zero outstanding.
	idle chan struct{}

	ownerGID uint64
	waited   bool
	closed   bool

	failures failureLog
}

// NewTaskSet opens a join scope against pool. The set must be waited
// (Wait or Close) on the creating goroutine before the pool is shut
// down.
func NewTaskSet(pool *ThreadPool) *TaskSet {
	if pool == nil {
		panic("taskpool: NewTaskSet called with nil pool")
	}
	pool.liveSets.Add(1)
	return &TaskSet{
		pool:     pool,
		idle:     make(chan struct{}, 1),
		ownerGID: currentGoroutineID(),
		failures: newFailureLog(defaultFailureLogCapacity),
	}
}

// Schedule submits one task and associates it with this set. The set's
// in-flight counter is incremented before routing and decremented after
// the task returns, panicked or not. On rejection (pool shutting down)
// the counter is left unchanged and the task is never run.
func (ts *TaskSet) Schedule(task Task) error {
	if task == nil {
		panic("taskpool: Schedule called with nil task")
	}

	ts.outstanding.Add(1)
	wrapped := func(ctx context.Context) {
		defer ts.taskReturned()
		task(ctx)
	}
	if err := ts.pool.Schedule(wrapped); err != nil {
		ts.decrement()
		return err
	}
	return nil
}

// taskReturned runs deferred in the task wrapper: it captures a panic
// (counter decremented under the same deferred scope), records the
// failure, and releases the waiter on the zero transition. Failure of
// one task does not cancel siblings.
func (ts *TaskSet) taskReturned() {
	if r := recover(); r != nil {
		ts.failures.add(&TaskPanicError{Value: r, Stack: debug.Stack()})
		ts.pool.cfg.Metrics.RecordTaskPanic(ts.pool.name, r)
	}
	ts.decrement()
}

func (ts *TaskSet) decrement() {
	if ts.outstanding.Add(-1) == 0 {
		select {
		case ts.idle <- struct{}{}:
		default:
		}
	}
}

// Wait blocks until every task scheduled through this set has returned,
// then returns the first captured failure (or nil).
//
// When called from a worker of the same pool — the common case for
// nested parallelism — Wait drains productively instead of blocking:
// the calling worker pops its own queue (or steals) and executes pool
// work, any pool work, until the counter reaches zero. This is what
// prevents deadlock when nested sets share the pool. From any other
// goroutine, including workers of unrelated pools, Wait parks on the
// completion signal.
//
// Wait must be called on the goroutine that created the set; calling it
// elsewhere is a contract breach and panics. A second Wait returns the
// same result without blocking.
func (ts *TaskSet) Wait() error {
	ts.assertOwner("Wait")
	if ts.waited {
		return ts.failures.first()
	}
	ts.waited = true

	if w := ts.pool.currentWorker(); w != nil {
		ts.drainAs(w)
	} else {
		for ts.outstanding.Load() > 0 {
			<-ts.idle
		}
	}

	ts.pool.liveSets.Add(-1)
	return ts.failures.first()
}

// Close is the destructor: equivalent to Wait if not already waited,
// a no-op otherwise. Like Wait it must run on the creating goroutine.
func (ts *TaskSet) Close() error {
	ts.assertOwner("Close")
	if ts.closed {
		return nil
	}
	ts.closed = true
	if !ts.waited {
		return ts.Wait()
	}
	return nil
}

// Outstanding returns the current in-flight counter. Test hook; the
// value is stale the moment it is read.
func (ts *TaskSet) Outstanding() int {
	return int(ts.outstanding.Load())
}

// Failures returns the retained task failures in completion order,
// first (the one Wait returns) included. Retention is bounded; see
// FailureCount for the true total.
func (ts *TaskSet) Failures() []error {
	return ts.failures.all()
}

// FailureCount returns the total number of failed tasks, including any
// beyond the diagnostic retention bound.
func (ts *TaskSet) FailureCount() int {
	return ts.failures.totalCount()
}

// drainAs executes pool work on the waiting worker until the counter
// hits zero. Tasks popped here are not restricted to this set; the loop
// terminates the moment the counter is observed at zero even if other
// pool work remains.
func (ts *TaskSet) drainAs(w *worker) {
	for ts.outstanding.Load() > 0 {
		if t, ok := w.queue.popFront(); ok {
			w.invoke(t)
			continue
		}
		if t, ok := w.trySteal(); ok {
			w.pool.steals.Add(1)
			w.invoke(t)
			continue
		}
		// Remaining tasks of this set are running on other workers.
		runtime.Gosched()
	}
}

func (ts *TaskSet) assertOwner(op string) {
	if currentGoroutineID() != ts.ownerGID {
		panic(fmt.Sprintf("taskpool: TaskSet.%s called from a goroutine other than the set's creator", op))
	}
}
