package taskpool

import "github.com/Swind/go-task-pool/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the taskpool package for most use cases.

// Task is the unit of work (Closure)
type Task = core.Task

// ThreadPool is the execution engine managing worker goroutines
type ThreadPool = core.ThreadPool

// TaskSet is a join scope over tasks submitted through it
type TaskSet = core.TaskSet

// PoolConfig configures handlers and tuning knobs for a ThreadPool
type PoolConfig = core.PoolConfig

// PoolStats is a point-in-time observability snapshot of a pool
type PoolStats = core.PoolStats

// Logger is the structured logging interface used by the pool
type Logger = core.Logger

// Field is a key-value pair for structured logging
type Field = core.Field

// TaskPanicError wraps a panic recovered from a task
type TaskPanicError = core.TaskPanicError

// ErrShuttingDown is returned by Schedule once pool shutdown has begun
var ErrShuttingDown = core.ErrShuttingDown

// F creates a new logging Field
var F = core.F

// DefaultPoolConfig returns a config with default handlers
var DefaultPoolConfig = core.DefaultPoolConfig

// GetCurrentPool retrieves the pool executing the current task from its context
var GetCurrentPool = core.GetCurrentPool

// NewThreadPool creates a pool with the given number of workers.
// This is re-exported for users who want per-component pools instead of
// the global one.
func NewThreadPool(workers int) *ThreadPool {
	return core.NewThreadPool(workers)
}

// NewThreadPoolWithConfig creates a named pool with explicit config.
func NewThreadPoolWithConfig(name string, workers int, config *PoolConfig) *ThreadPool {
	return core.NewThreadPoolWithConfig(name, workers, config)
}

// NewTaskSetOn opens a join scope against a specific pool.
func NewTaskSetOn(pool *ThreadPool) *TaskSet {
	return core.NewTaskSet(pool)
}
