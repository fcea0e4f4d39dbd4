package core

import (
	"context"
	"fmt"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling task panics
// =============================================================================

// PanicHandler is called when a task panics during execution.
// This allows custom panic handling, logging, and recovery strategies.
//
// Implementations should be thread-safe as they may be called concurrently.
type PanicHandler interface {
	// HandlePanic is called when a task panics.
	//
	// Parameters:
	// - ctx: The context from the panicked task
	// - poolName: The name of the pool where the panic occurred
	// - workerIndex: The stable index of the worker (or the pool's
	//   external-caller index when the task ran inline)
	// - panicInfo: The panic value recovered from the task
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(ctx context.Context, poolName string, workerIndex int, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler provides a basic panic handler that logs to stdout.
type DefaultPanicHandler struct{}

// HandlePanic prints panic information to stdout.
func (h *DefaultPanicHandler) HandlePanic(ctx context.Context, poolName string, workerIndex int, panicInfo any, stackTrace []byte) {
	fmt.Printf("[Worker %d @ %s] Panic: %v\nStack trace:\n%s",
		workerIndex, poolName, panicInfo, stackTrace)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting task execution metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods should be non-blocking and fast to avoid impacting task execution
// performance. Task durations are only measured when a non-nil, non-NilMetrics
// implementation is installed, so the default configuration adds no per-task
// clock reads.
type Metrics interface {
	// RecordTaskDuration records how long a task took to execute.
	RecordTaskDuration(poolName string, duration time.Duration)

	// RecordTaskPanic records that a task panicked during execution.
	RecordTaskPanic(poolName string, panicInfo any)

	// RecordQueueDepth records the current total depth of the pool's
	// worker queues. This is typically called periodically.
	RecordQueueDepth(poolName string, depth int)

	// RecordTaskRejected records that a task was rejected (e.g., during shutdown).
	RecordTaskRejected(poolName string, reason string)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

// RecordTaskDuration is a no-op.
func (m *NilMetrics) RecordTaskDuration(poolName string, duration time.Duration) {}

// RecordTaskPanic is a no-op.
func (m *NilMetrics) RecordTaskPanic(poolName string, panicInfo any) {}

// RecordQueueDepth is a no-op.
func (m *NilMetrics) RecordQueueDepth(poolName string, depth int) {}

// RecordTaskRejected is a no-op.
func (m *NilMetrics) RecordTaskRejected(poolName string, reason string) {}

// =============================================================================
// RejectedTaskHandler: Interface for handling rejected tasks
// =============================================================================

// RejectedTaskHandler is called when a submission is rejected by the pool.
// This happens when an external caller schedules after shutdown has begun.
//
// Implementations should be thread-safe as they may be called concurrently.
type RejectedTaskHandler interface {
	// HandleRejectedTask is called when a task is rejected.
	HandleRejectedTask(poolName string, reason string)
}

// DefaultRejectedTaskHandler provides a basic handler that logs rejected tasks.
type DefaultRejectedTaskHandler struct{}

// HandleRejectedTask logs the rejected task.
func (h *DefaultRejectedTaskHandler) HandleRejectedTask(poolName string, reason string) {
	fmt.Printf("[Pool %s] Task rejected: %s\n", poolName, reason)
}

// =============================================================================
// PoolConfig: Configuration for ThreadPool
// =============================================================================

const (
	// defaultSpinBudget is the number of empty-queue re-checks a worker
	// performs (yielding between each) before parking. Keeps the idle
	// transition in the low microseconds without burning a core.
	defaultSpinBudget = 64

	// defaultInlineThreshold is the own-queue depth beyond which a worker
	// submitting to itself executes the task immediately instead of
	// queueing it. Bounds memory under runaway nested submission.
	defaultInlineThreshold = 1024
)

// PoolConfig holds configuration options for ThreadPool.
// All fields are optional; zero values select defaults.
type PoolConfig struct {
	// Logger receives lifecycle and contract-violation logs. Defaults to NoOpLogger.
	Logger Logger

	// PanicHandler is called when a task panics. Defaults to DefaultPanicHandler.
	PanicHandler PanicHandler

	// Metrics is called to record task execution metrics. Defaults to NilMetrics.
	Metrics Metrics

	// RejectedTaskHandler is called when a task is rejected. Defaults to DefaultRejectedTaskHandler.
	RejectedTaskHandler RejectedTaskHandler

	// SpinBudget is the number of yield-and-recheck iterations an idle
	// worker performs before parking. Defaults to defaultSpinBudget.
	SpinBudget int

	// StealAttempts bounds the number of sibling queues probed per steal
	// round. Defaults to workers-1 (every sibling once).
	StealAttempts int

	// InlineThreshold is the own-queue saturation point beyond which a
	// worker runs its own submissions inline. <= 0 selects the default;
	// set to a negative value via DisableInline instead.
	InlineThreshold int

	// DisableInline turns off the saturation inline-execution shortcut.
	DisableInline bool
}

// DefaultPoolConfig returns a config with default handlers.
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		Logger:              &NoOpLogger{},
		PanicHandler:        &DefaultPanicHandler{},
		Metrics:             &NilMetrics{},
		RejectedTaskHandler: &DefaultRejectedTaskHandler{},
		SpinBudget:          defaultSpinBudget,
		InlineThreshold:     defaultInlineThreshold,
	}
}

func (c *PoolConfig) withDefaults(workers int) PoolConfig {
	out := PoolConfig{}
	if c != nil {
		out = *c
	}
	if out.Logger == nil {
		out.Logger = &NoOpLogger{}
	}
	if out.PanicHandler == nil {
		out.PanicHandler = &DefaultPanicHandler{}
	}
	if out.Metrics == nil {
		out.Metrics = &NilMetrics{}
	}
	if out.RejectedTaskHandler == nil {
		out.RejectedTaskHandler = &DefaultRejectedTaskHandler{}
	}
	if out.SpinBudget <= 0 {
		out.SpinBudget = defaultSpinBudget
	}
	if out.StealAttempts <= 0 {
		out.StealAttempts = workers - 1
	}
	if out.InlineThreshold <= 0 {
		out.InlineThreshold = defaultInlineThreshold
	}
	if out.DisableInline {
		out.InlineThreshold = 0
	}
	return out
}
