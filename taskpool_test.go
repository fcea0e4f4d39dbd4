package taskpool

import (
	"context"
	"sync/atomic"
	"testing"
)

// resetGlobal tears down any global pool left by another test.
func resetGlobal() {
	globalMu.Lock()
	p := globalThreadPool
	globalThreadPool = nil
	globalMu.Unlock()
	if p != nil {
		p.Shutdown()
	}
}

// TestGlobalThreadPool_Lifecycle verifies init/get/shutdown of the singleton
// Given: An uninitialized global pool
// When: It is initialized, used, and shut down
// Then: Get returns the same instance, double init is a no-op, and Get
// panics again after shutdown
func TestGlobalThreadPool_Lifecycle(t *testing.T) {
	resetGlobal()
	defer resetGlobal()

	func() {
		defer func() {
			if recover() == nil {
				t.Error("GetGlobalThreadPool before init did not panic")
			}
		}()
		GetGlobalThreadPool()
	}()

	InitGlobalThreadPool(2)
	first := GetGlobalThreadPool()
	InitGlobalThreadPool(8) // no-op: already initialized
	if GetGlobalThreadPool() != first {
		t.Error("second InitGlobalThreadPool replaced the existing pool")
	}
	if first.WorkerCount() != 2 {
		t.Errorf("WorkerCount() = %d, want 2", first.WorkerCount())
	}

	ShutdownGlobalThreadPool()
	func() {
		defer func() {
			if recover() == nil {
				t.Error("GetGlobalThreadPool after shutdown did not panic")
			}
		}()
		GetGlobalThreadPool()
	}()
}

// TestGlobalSchedule verifies the fire-and-forget facade
func TestGlobalSchedule(t *testing.T) {
	resetGlobal()
	defer resetGlobal()
	InitGlobalThreadPool(2)

	done := make(chan struct{})
	if err := Schedule(func(ctx context.Context) { close(done) }); err != nil {
		t.Fatalf("Schedule returned %v", err)
	}
	<-done
}

// TestGlobalNewTaskSet verifies joins against the global pool
// Given: A global pool and a task set opened through the facade
// When: 1000 counting tasks are scheduled and waited
// Then: All ran and Wait returns nil
func TestGlobalNewTaskSet(t *testing.T) {
	resetGlobal()
	defer resetGlobal()
	InitGlobalThreadPool(4)

	var ran atomic.Int64
	ts := NewTaskSet()
	for i := 0; i < 1000; i++ {
		if err := ts.Schedule(func(ctx context.Context) { ran.Add(1) }); err != nil {
			t.Fatalf("Schedule returned %v", err)
		}
	}
	if err := ts.Wait(); err != nil {
		t.Fatalf("Wait returned %v", err)
	}
	if got := ran.Load(); got != 1000 {
		t.Errorf("ran = %d, want 1000", got)
	}
}

// TestGlobalInitWithConfig verifies custom config reaches the singleton
func TestGlobalInitWithConfig(t *testing.T) {
	resetGlobal()
	defer resetGlobal()

	cfg := DefaultPoolConfig()
	cfg.SpinBudget = 8
	InitGlobalThreadPoolWithConfig(3, cfg)

	pool := GetGlobalThreadPool()
	if pool.Name() != "global-pool" {
		t.Errorf("Name() = %q, want %q", pool.Name(), "global-pool")
	}
	if pool.WorkerCount() != 3 {
		t.Errorf("WorkerCount() = %d, want 3", pool.WorkerCount())
	}
}

// TestNewTaskSetOn verifies joins against a caller-owned pool
func TestNewTaskSetOn(t *testing.T) {
	pool := NewThreadPool(2)
	defer pool.Shutdown()

	var ran atomic.Int64
	ts := NewTaskSetOn(pool)
	for i := 0; i < 100; i++ {
		ts.Schedule(func(ctx context.Context) { ran.Add(1) })
	}
	if err := ts.Wait(); err != nil {
		t.Fatalf("Wait returned %v", err)
	}
	if got := ran.Load(); got != 100 {
		t.Errorf("ran = %d, want 100", got)
	}
}
