package core

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync/atomic"
	"time"
)

// Worker run states. Transitions are monotonic left-to-right.
const (
	workerStarting int32 = iota
	workerRunning
	workerDraining
	workerExited
)

// worker is a long-lived goroutine that owns one workQueue, runs tasks,
// and attempts steals from siblings when its own queue empties.
type worker struct {
	index int
	pool  *ThreadPool
	queue *workQueue
	state atomic.Int32
	ctx   context.Context
}

func newWorker(pool *ThreadPool, index int) *worker {
	return &worker{
		index: index,
		pool:  pool,
		queue: newWorkQueue(),
	}
}

// run is the worker main loop: pop own queue, steal, spin, park.
func (w *worker) run(ctx context.Context) {
	defer w.pool.wg.Done()

	w.ctx = ctx
	w.pool.registerWorker(w)
	defer w.pool.unregisterWorker(w)

	w.state.Store(workerRunning)

	for {
		if t, ok := w.queue.popFront(); ok {
			w.invoke(t)
			continue
		}
		if t, ok := w.trySteal(); ok {
			w.pool.steals.Add(1)
			w.invoke(t)
			continue
		}
		if w.pool.shuttingDown.Load() {
			break
		}
		if w.spin() {
			continue
		}
		w.park(ctx)
	}

	w.state.Store(workerDraining)
	w.drain()
	w.state.Store(workerExited)
}

// invoke runs one task, recovering panics so a misbehaving task cannot
// take the worker down. Tasks wrapped by a TaskSet recover first and
// surface the failure through Wait; this is the backstop for raw
// ThreadPool.Schedule submissions.
func (w *worker) invoke(t Task) {
	w.pool.active.Add(1)
	defer func() {
		w.pool.active.Add(-1)
		w.pool.executed.Add(1)
		if r := recover(); r != nil {
			w.pool.handlePanic(w.ctx, w.index, r, debug.Stack())
		}
	}()
	if w.pool.timed {
		start := time.Now()
		t(w.ctx)
		w.pool.cfg.Metrics.RecordTaskDuration(w.pool.name, time.Since(start))
		return
	}
	t(w.ctx)
}

// trySteal probes sibling queues, starting past this worker's index so
// thieves spread out, taking from the back (the end the owner is not
// consuming).
func (w *worker) trySteal() (Task, bool) {
	workers := w.pool.workers
	attempts := w.pool.cfg.StealAttempts
	if attempts > len(workers)-1 {
		attempts = len(workers) - 1
	}
	for i := 1; i <= attempts; i++ {
		victim := workers[(w.index+i)%len(workers)]
		if t, ok := victim.queue.stealBack(); ok {
			return t, true
		}
	}
	return nil, false
}

// spin absorbs short bursts without a park/unpark round trip. Returns
// true if work appeared on the own queue during the budgeted yields.
func (w *worker) spin() bool {
	for i := 0; i < w.pool.cfg.SpinBudget; i++ {
		if w.queue.len() > 0 {
			return true
		}
		runtime.Gosched()
	}
	return false
}

// park blocks on the queue's wait primitive until a push signals it or
// shutdown fires.
func (w *worker) park(ctx context.Context) {
	if !w.queue.prepareToPark() {
		return
	}
	w.pool.parks.Add(1)
	select {
	case <-w.queue.signal:
	case <-ctx.Done():
	}
	w.queue.cancelPark()
}

// drain completes the remaining own queue under the graceful shutdown
// policy. Tasks still running may self-push children; those are drained
// too, so the mostly-idle recursive pattern completes across shutdown.
func (w *worker) drain() {
	for {
		t, ok := w.queue.popFront()
		if !ok {
			return
		}
		w.invoke(t)
	}
}
