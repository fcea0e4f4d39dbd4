package core

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// ThreadPool owns a fixed set of workers, each with its own queue, and
// routes submissions to them. The worker count never changes after
// construction; destruction is Shutdown, which drains gracefully.
//
// A pool constructed with zero workers executes every submission inline
// on the calling goroutine.
type ThreadPool struct {
	name    string
	cfg     PoolConfig
	workers []*worker
	timed   bool // record per-task durations (real Metrics installed)

	// rr is the monotonically incrementing submission index; external
	// submissions target workers[rr mod N].
	rr atomic.Uint64

	runCtx context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// gate orders external submissions against shutdown: Schedule holds
	// a read lock across the flag check and the push, Shutdown flips the
	// flag under the write lock. Any submission that observed the flag
	// clear has therefore landed in a queue before workers begin their
	// final drain.
	gate         sync.RWMutex
	shuttingDown atomic.Bool
	shutdownOnce sync.Once

	// byGID maps goroutine id to worker for self-submission routing and
	// reentrant-wait detection. Written only at worker start/exit.
	byGID sync.Map

	liveSets atomic.Int64

	active   atomic.Int64
	executed atomic.Uint64
	steals   atomic.Uint64
	parks    atomic.Uint64
	wakes    atomic.Uint64
	rejected atomic.Uint64
}

// NewThreadPool creates a pool with the given number of workers and
// default configuration. workers < 0 panics; workers == 0 yields an
// inline-only pool.
func NewThreadPool(workers int) *ThreadPool {
	return NewThreadPoolWithConfig(fmt.Sprintf("pool-%d", workers), workers, DefaultPoolConfig())
}

// NewThreadPoolWithConfig creates a named pool with explicit config.
// The pool is ready for submissions when this returns.
func NewThreadPoolWithConfig(name string, workers int, config *PoolConfig) *ThreadPool {
	if workers < 0 {
		panic("taskpool: worker count must be >= 0")
	}
	if name == "" {
		name = fmt.Sprintf("pool-%d", workers)
	}

	p := &ThreadPool{
		name: name,
		cfg:  config.withDefaults(workers),
	}
	if _, ok := p.cfg.Metrics.(*NilMetrics); !ok {
		p.timed = true
	}

	ctx := context.WithValue(context.Background(), poolKey, p)
	p.runCtx, p.cancel = context.WithCancel(ctx)

	p.workers = make([]*worker, workers)
	for i := range p.workers {
		p.workers[i] = newWorker(p, i)
	}
	for _, w := range p.workers {
		p.wg.Add(1)
		go w.run(p.runCtx)
	}

	p.cfg.Logger.Debug("pool started", F("pool", p.name), F("workers", workers))
	return p
}

// Name returns the pool's name.
func (p *ThreadPool) Name() string {
	return p.name
}

// WorkerCount returns the fixed number of workers.
func (p *ThreadPool) WorkerCount() int {
	return len(p.workers)
}

// IsRunning reports whether shutdown has begun.
func (p *ThreadPool) IsRunning() bool {
	return !p.shuttingDown.Load()
}

// CurrentWorkerIndex returns a stable, small non-negative index for
// thread-local sharding: workers get [0, WorkerCount), and every other
// goroutine (the external caller identity) gets WorkerCount.
func (p *ThreadPool) CurrentWorkerIndex() int {
	if w := p.currentWorker(); w != nil {
		return w.index
	}
	return len(p.workers)
}

// Schedule submits one task with no join. It never blocks, except when
// the task is executed inline (zero-worker pools, or a worker whose own
// queue is saturated past the inline threshold).
//
// Safe to call from any goroutine, including workers of this or another
// pool. Workers of this pool submit to their own queue so nested work
// stays hot, and they are permitted to submit children even after
// shutdown has begun (their worker drains them). External submissions
// after shutdown return ErrShuttingDown.
func (p *ThreadPool) Schedule(task Task) error {
	if task == nil {
		panic("taskpool: Schedule called with nil task")
	}

	if w := p.currentWorker(); w != nil {
		if p.cfg.InlineThreshold > 0 && w.queue.len() >= p.cfg.InlineThreshold {
			p.runInline(w.ctx, w.index, task)
			return nil
		}
		w.queue.pushFront(task)
		return nil
	}

	if len(p.workers) == 0 {
		if p.shuttingDown.Load() {
			return p.reject()
		}
		p.runInline(p.runCtx, 0, task)
		return nil
	}

	p.gate.RLock()
	if p.shuttingDown.Load() {
		p.gate.RUnlock()
		return p.reject()
	}
	i := p.rr.Add(1)
	w := p.workers[i%uint64(len(p.workers))]
	woke := w.queue.pushBack(task)
	p.gate.RUnlock()

	if woke {
		p.wakes.Add(1)
	} else {
		// The target worker is busy; a parked sibling can steal the task.
		p.wakeIdleWorker(int(i % uint64(len(p.workers))))
	}
	return nil
}

// wakeIdleWorker wakes at most one parked worker other than from, so a
// task queued behind a busy worker never waits for that worker alone.
func (p *ThreadPool) wakeIdleWorker(from int) {
	n := len(p.workers)
	for off := 1; off < n; off++ {
		w := p.workers[(from+off)%n]
		if w.queue.wakeIfParked() {
			p.wakes.Add(1)
			return
		}
	}
}

// Shutdown begins pool destruction: no new external submissions are
// accepted, every parked worker is woken, each worker completes its
// remaining queue (graceful policy) and exits. Shutdown blocks until
// all workers have exited, and is idempotent.
//
// Destroying a pool while task sets created against it are still live
// (not yet waited) is a contract breach and panics.
func (p *ThreadPool) Shutdown() {
	p.shutdownOnce.Do(func() {
		if n := p.liveSets.Load(); n > 0 {
			panic(fmt.Sprintf("taskpool: pool %q destroyed with %d live task set(s); every TaskSet must be waited before pool shutdown", p.name, n))
		}

		p.gate.Lock()
		p.shuttingDown.Store(true)
		p.gate.Unlock()

		p.cancel()
		for _, w := range p.workers {
			w.queue.wake()
		}
		p.wg.Wait()

		p.cfg.Logger.Debug("pool stopped", F("pool", p.name), F("executed", p.executed.Load()))
	})
}

// Stats returns a point-in-time observability snapshot.
func (p *ThreadPool) Stats() PoolStats {
	queued := 0
	for _, w := range p.workers {
		queued += w.queue.len()
	}
	return PoolStats{
		Name:         p.name,
		Workers:      len(p.workers),
		Queued:       queued,
		Active:       int(p.active.Load()),
		LiveTaskSets: int(p.liveSets.Load()),
		Executed:     p.executed.Load(),
		Steals:       p.steals.Load(),
		Parks:        p.parks.Load(),
		Wakes:        p.wakes.Load(),
		Rejected:     p.rejected.Load(),
		Running:      !p.shuttingDown.Load(),
	}
}

// QueuedTaskCount returns the total depth of all worker queues.
func (p *ThreadPool) QueuedTaskCount() int {
	n := 0
	for _, w := range p.workers {
		n += w.queue.len()
	}
	return n
}

// ActiveTaskCount returns the number of tasks currently executing.
func (p *ThreadPool) ActiveTaskCount() int {
	return int(p.active.Load())
}

func (p *ThreadPool) registerWorker(w *worker) {
	p.byGID.Store(currentGoroutineID(), w)
}

func (p *ThreadPool) unregisterWorker(w *worker) {
	p.byGID.Delete(currentGoroutineID())
}

// currentWorker returns the worker owning the calling goroutine, or nil.
func (p *ThreadPool) currentWorker() *worker {
	if v, ok := p.byGID.Load(currentGoroutineID()); ok {
		return v.(*worker)
	}
	return nil
}

// runInline executes a task on the calling goroutine with the same
// accounting and panic backstop as a worker.
func (p *ThreadPool) runInline(ctx context.Context, workerIndex int, t Task) {
	p.active.Add(1)
	defer func() {
		p.active.Add(-1)
		p.executed.Add(1)
		if r := recover(); r != nil {
			p.handlePanic(ctx, workerIndex, r, debug.Stack())
		}
	}()
	if p.timed {
		start := time.Now()
		t(ctx)
		p.cfg.Metrics.RecordTaskDuration(p.name, time.Since(start))
		return
	}
	t(ctx)
}

func (p *ThreadPool) reject() error {
	p.rejected.Add(1)
	p.cfg.RejectedTaskHandler.HandleRejectedTask(p.name, "shutting down")
	p.cfg.Metrics.RecordTaskRejected(p.name, "shutting down")
	return ErrShuttingDown
}

func (p *ThreadPool) handlePanic(ctx context.Context, workerIndex int, panicInfo any, stack []byte) {
	p.cfg.Metrics.RecordTaskPanic(p.name, panicInfo)
	p.cfg.PanicHandler.HandlePanic(ctx, p.name, workerIndex, panicInfo, stack)
}
