package core

import "context"

// Task is the unit of work (Closure)
//
// A task is invoked exactly once. The ctx passed to the task is the
// owning pool's run context; it is cancelled once shutdown begins, but
// a task that is already queued still runs to completion under the
// graceful shutdown policy.
type Task func(ctx context.Context)

// =============================================================================
// Context Helper
// =============================================================================
type poolKeyType struct{}

var poolKey poolKeyType

// GetCurrentPool retrieves the ThreadPool executing the current task
// from its context, or nil when the context does not belong to a pool
// worker.
func GetCurrentPool(ctx context.Context) *ThreadPool {
	if v := ctx.Value(poolKey); v != nil {
		return v.(*ThreadPool)
	}
	return nil
}
