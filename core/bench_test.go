package core

import (
	"context"
	"runtime"
	"sync/atomic"
	"testing"
)

// BenchmarkFlat measures the flat fork-join shape: one set, many small
// independent tasks, one wait.
func BenchmarkFlat(b *testing.B) {
	pool := NewThreadPool(runtime.GOMAXPROCS(0))
	defer pool.Shutdown()

	var sink atomic.Int64
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ts := NewTaskSet(pool)
		for j := 0; j < 1000; j++ {
			j := j
			ts.Schedule(func(ctx context.Context) { sink.Add(int64(j)) })
		}
		if err := ts.Wait(); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkNested measures two-level nesting where inner waits run on
// worker goroutines and drain productively.
func BenchmarkNested(b *testing.B) {
	pool := NewThreadPool(runtime.GOMAXPROCS(0))
	defer pool.Shutdown()

	var sink atomic.Int64
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		outer := NewTaskSet(pool)
		for o := 0; o < 32; o++ {
			outer.Schedule(func(ctx context.Context) {
				inner := NewTaskSet(pool)
				for j := 0; j < 32; j++ {
					j := j
					inner.Schedule(func(ctx context.Context) { sink.Add(int64(j)) })
				}
				inner.Wait()
			})
		}
		if err := outer.Wait(); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMostlyIdleChain measures the sequential-chain shape where the
// pool holds at most one runnable task at a time.
func BenchmarkMostlyIdleChain(b *testing.B) {
	pool := NewThreadPool(2)
	defer pool.Shutdown()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		done := make(chan struct{})
		var remaining atomic.Int64
		remaining.Store(1000)
		var link func(ctx context.Context)
		link = func(ctx context.Context) {
			if remaining.Add(-1) == 0 {
				close(done)
				return
			}
			pool.Schedule(link)
		}
		pool.Schedule(link)
		<-done
	}
}

// BenchmarkScheduleThroughput measures raw submission cost from a single
// external producer.
func BenchmarkScheduleThroughput(b *testing.B) {
	pool := NewThreadPool(runtime.GOMAXPROCS(0))
	defer pool.Shutdown()

	noop := func(ctx context.Context) {}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.Schedule(noop)
	}
	b.StopTimer()
}
