// Package taskpool provides a fork-join task-dispatch engine for Go:
// a fixed-size worker pool paired with a lightweight TaskSet that joins
// dynamically submitted closures as a unit.
//
// The engine targets fine-grained parallel workloads: tens to millions
// of short tasks per second, nested parallelism (tasks spawning
// subtasks), bursty submission, and mostly-idle steady states where
// both wakeup latency and spin cost matter.
//
// # Quick Start
//
// Initialize the global thread pool at application startup:
//
//	taskpool.InitGlobalThreadPool(4) // 4 workers
//	defer taskpool.ShutdownGlobalThreadPool()
//
// Open a task set, schedule work through it, and join:
//
//	tasks := taskpool.NewTaskSet()
//	for i := 0; i < 1000; i++ {
//		i := i
//		tasks.Schedule(func(ctx context.Context) {
//			process(i)
//		})
//	}
//	if err := tasks.Wait(); err != nil {
//		// first task failure of the set
//	}
//
// # Key Concepts
//
// ThreadPool: the execution engine. Each of its workers owns a queue,
// steals from siblings when idle, spins briefly to absorb bursts, and
// parks when there is nothing to do. Submissions from outside the pool
// round-robin across workers; submissions from a worker go to its own
// queue so nested chains stay on a hot cache.
//
// TaskSet: a join scope counting in-flight tasks. Wait blocks until the
// counter reaches zero — unless the waiter is itself a worker of the
// pool, in which case it executes pool work while waiting, which is
// what makes nested fork-join safe on a bounded pool.
//
// Ordering: tasks pushed by one producer reach their target queue, and
// its consumer, in submission order. No order is guaranteed across
// producers, across queues, or across task sets. A task's writes are
// visible to the goroutine that observes its task set's Wait return.
//
// # Thread Safety
//
// Schedule is safe from any goroutine. Wait and Close must run on the
// goroutine that created the TaskSet, and every TaskSet must be waited
// before its pool shuts down; both are enforced with panics because
// they are programmer errors, not runtime conditions.
//
// # Example
//
//	import (
//		"context"
//
//		taskpool "github.com/Swind/go-task-pool"
//	)
//
//	func main() {
//		taskpool.InitGlobalThreadPool(8)
//		defer taskpool.ShutdownGlobalThreadPool()
//
//		tasks := taskpool.NewTaskSet()
//		tasks.Schedule(func(ctx context.Context) {
//			println("hello from the pool")
//		})
//		tasks.Wait()
//	}
package taskpool
