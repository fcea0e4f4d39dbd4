package taskpool

import (
	"sync"

	"github.com/Swind/go-task-pool/core"
)

// =============================================================================
// Global Thread Pool Helper (Singleton)
// =============================================================================

var (
	globalThreadPool *core.ThreadPool
	globalMu         sync.Mutex
)

// InitGlobalThreadPool initializes the global thread pool with the
// specified number of workers. Workers start immediately.
func InitGlobalThreadPool(workers int) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalThreadPool != nil {
		return // Already initialized
	}

	globalThreadPool = core.NewThreadPoolWithConfig("global-pool", workers, core.DefaultPoolConfig())
}

// InitGlobalThreadPoolWithConfig initializes the global thread pool with
// explicit configuration.
func InitGlobalThreadPoolWithConfig(workers int, config *PoolConfig) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalThreadPool != nil {
		return
	}

	globalThreadPool = core.NewThreadPoolWithConfig("global-pool", workers, config)
}

// GetGlobalThreadPool returns the global thread pool instance.
// It panics if InitGlobalThreadPool has not been called.
func GetGlobalThreadPool() *core.ThreadPool {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalThreadPool == nil {
		panic("GlobalThreadPool not initialized. Call InitGlobalThreadPool() first.")
	}
	return globalThreadPool
}

// ShutdownGlobalThreadPool shuts down the global thread pool. Every
// TaskSet opened against it must have been waited first.
func ShutdownGlobalThreadPool() {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalThreadPool != nil {
		globalThreadPool.Shutdown()
		globalThreadPool = nil
	}
}

// NewTaskSet opens a join scope against the global thread pool.
// This is the recommended way to group and join work.
func NewTaskSet() *core.TaskSet {
	return core.NewTaskSet(GetGlobalThreadPool())
}

// Schedule submits a fire-and-forget task to the global thread pool.
func Schedule(task Task) error {
	return GetGlobalThreadPool().Schedule(task)
}
