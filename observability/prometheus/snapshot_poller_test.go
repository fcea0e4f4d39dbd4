package prometheus

import (
	"context"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Swind/go-task-pool/core"
)

type staticStats struct {
	stats core.PoolStats
}

func (s *staticStats) Stats() core.PoolStats { return s.stats }

// TestSnapshotPoller_CollectsPoolStats verifies gauge export
// Given: A poller with one registered provider
// When: One collection cycle runs
// Then: Every stats field is visible as a gauge sample
func TestSnapshotPoller_CollectsPoolStats(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, time.Minute)
	require.NoError(t, err)

	poller.AddPool("engine", &staticStats{stats: core.PoolStats{
		Name:         "engine",
		Workers:      8,
		Queued:       3,
		Active:       2,
		LiveTaskSets: 1,
		Executed:     12345,
		Steals:       17,
		Parks:        9,
		Wakes:        8,
		Rejected:     2,
		Running:      true,
	}})
	poller.collectOnce()

	assert.Equal(t, float64(8), testutil.ToFloat64(poller.poolWorkers.WithLabelValues("engine")))
	assert.Equal(t, float64(3), testutil.ToFloat64(poller.poolQueued.WithLabelValues("engine")))
	assert.Equal(t, float64(2), testutil.ToFloat64(poller.poolActive.WithLabelValues("engine")))
	assert.Equal(t, float64(1), testutil.ToFloat64(poller.poolLiveTaskSets.WithLabelValues("engine")))
	assert.Equal(t, float64(12345), testutil.ToFloat64(poller.poolExecuted.WithLabelValues("engine")))
	assert.Equal(t, float64(17), testutil.ToFloat64(poller.poolSteals.WithLabelValues("engine")))
	assert.Equal(t, float64(9), testutil.ToFloat64(poller.poolParks.WithLabelValues("engine")))
	assert.Equal(t, float64(8), testutil.ToFloat64(poller.poolWakes.WithLabelValues("engine")))
	assert.Equal(t, float64(2), testutil.ToFloat64(poller.poolRejected.WithLabelValues("engine")))
	assert.Equal(t, float64(1), testutil.ToFloat64(poller.poolRunning.WithLabelValues("engine")))
}

// TestSnapshotPoller_TracksLivePool verifies end-to-end polling of a
// real pool
func TestSnapshotPoller_TracksLivePool(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 5*time.Millisecond)
	require.NoError(t, err)

	pool := core.NewThreadPoolWithConfig("live", 2, core.DefaultPoolConfig())
	defer pool.Shutdown()
	poller.AddPool(pool.Name(), pool)

	poller.Start(context.Background())
	defer poller.Stop()

	ts := core.NewTaskSet(pool)
	for i := 0; i < 100; i++ {
		ts.Schedule(func(ctx context.Context) {})
	}
	require.NoError(t, ts.Wait())

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(poller.poolExecuted.WithLabelValues("live")) == 100
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, float64(2), testutil.ToFloat64(poller.poolWorkers.WithLabelValues("live")))
	assert.Equal(t, float64(1), testutil.ToFloat64(poller.poolRunning.WithLabelValues("live")))
}

// TestSnapshotPoller_StartStopIdempotent verifies lifecycle re-entry
func TestSnapshotPoller_StartStopIdempotent(t *testing.T) {
	poller, err := NewSnapshotPoller(prom.NewRegistry(), 10*time.Millisecond)
	require.NoError(t, err)

	ctx := context.Background()
	poller.Start(ctx)
	poller.Start(ctx) // no-op
	poller.Stop()
	poller.Stop() // no-op

	// A poller can be restarted after Stop.
	poller.Start(ctx)
	poller.Stop()
}

// TestSnapshotPoller_NilAndMissingProviders verifies defensive paths
func TestSnapshotPoller_NilAndMissingProviders(t *testing.T) {
	poller, err := NewSnapshotPoller(prom.NewRegistry(), time.Second)
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		poller.AddPool("ghost", nil) // ignored
		poller.collectOnce()         // nothing registered, nothing emitted
	})

	var nilPoller *SnapshotPoller
	assert.NotPanics(t, func() {
		nilPoller.AddPool("x", &staticStats{})
		nilPoller.Start(context.Background())
		nilPoller.Stop()
	})
}
