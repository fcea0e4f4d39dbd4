package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/Swind/go-task-pool/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// PoolSnapshotProvider provides current pool stats snapshots.
type PoolSnapshotProvider interface {
	Stats() core.PoolStats
}

// SnapshotPoller periodically exports pool Stats() snapshots into
// Prometheus gauges. This is the zero-hot-path-overhead alternative to
// MetricsExporter: the pool maintains its counters with plain atomics
// and the poller reads them on its own schedule.
type SnapshotPoller struct {
	interval time.Duration

	poolsMu sync.RWMutex
	pools   map[string]PoolSnapshotProvider

	poolQueued       *prom.GaugeVec
	poolActive       *prom.GaugeVec
	poolWorkers      *prom.GaugeVec
	poolLiveTaskSets *prom.GaugeVec
	poolExecuted     *prom.GaugeVec
	poolSteals       *prom.GaugeVec
	poolParks        *prom.GaugeVec
	poolWakes        *prom.GaugeVec
	poolRejected     *prom.GaugeVec
	poolRunning      *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	poolQueued := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "taskpool",
		Name:      "pool_queued",
		Help:      "Queued tasks per pool.",
	}, []string{"pool"})
	poolActive := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "taskpool",
		Name:      "pool_active",
		Help:      "Active tasks per pool.",
	}, []string{"pool"})
	poolWorkers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "taskpool",
		Name:      "pool_workers",
		Help:      "Worker count per pool.",
	}, []string{"pool"})
	poolLiveTaskSets := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "taskpool",
		Name:      "pool_live_task_sets",
		Help:      "Task sets opened but not yet waited, per pool.",
	}, []string{"pool"})
	poolExecuted := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "taskpool",
		Name:      "pool_executed_total",
		Help:      "Executed task count snapshot.",
	}, []string{"pool"})
	poolSteals := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "taskpool",
		Name:      "pool_steals_total",
		Help:      "Work-steal count snapshot.",
	}, []string{"pool"})
	poolParks := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "taskpool",
		Name:      "pool_parks_total",
		Help:      "Worker park count snapshot.",
	}, []string{"pool"})
	poolWakes := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "taskpool",
		Name:      "pool_wakes_total",
		Help:      "Worker wake count snapshot.",
	}, []string{"pool"})
	poolRejected := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "taskpool",
		Name:      "pool_rejected_total",
		Help:      "Rejected submission count snapshot.",
	}, []string{"pool"})
	poolRunning := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "taskpool",
		Name:      "pool_running",
		Help:      "Pool running state (1=running, 0=stopped).",
	}, []string{"pool"})

	var err error
	if poolQueued, err = registerCollector(reg, poolQueued); err != nil {
		return nil, err
	}
	if poolActive, err = registerCollector(reg, poolActive); err != nil {
		return nil, err
	}
	if poolWorkers, err = registerCollector(reg, poolWorkers); err != nil {
		return nil, err
	}
	if poolLiveTaskSets, err = registerCollector(reg, poolLiveTaskSets); err != nil {
		return nil, err
	}
	if poolExecuted, err = registerCollector(reg, poolExecuted); err != nil {
		return nil, err
	}
	if poolSteals, err = registerCollector(reg, poolSteals); err != nil {
		return nil, err
	}
	if poolParks, err = registerCollector(reg, poolParks); err != nil {
		return nil, err
	}
	if poolWakes, err = registerCollector(reg, poolWakes); err != nil {
		return nil, err
	}
	if poolRejected, err = registerCollector(reg, poolRejected); err != nil {
		return nil, err
	}
	if poolRunning, err = registerCollector(reg, poolRunning); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:         interval,
		pools:            make(map[string]PoolSnapshotProvider),
		poolQueued:       poolQueued,
		poolActive:       poolActive,
		poolWorkers:      poolWorkers,
		poolLiveTaskSets: poolLiveTaskSets,
		poolExecuted:     poolExecuted,
		poolSteals:       poolSteals,
		poolParks:        poolParks,
		poolWakes:        poolWakes,
		poolRejected:     poolRejected,
		poolRunning:      poolRunning,
	}, nil
}

// AddPool adds or replaces a pool snapshot provider by name.
func (p *SnapshotPoller) AddPool(name string, provider PoolSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	p.pools[name] = provider
	p.poolsMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.poolsMu.RLock()
	defer p.poolsMu.RUnlock()

	for name, provider := range p.pools {
		stats := provider.Stats()
		p.poolQueued.WithLabelValues(name).Set(float64(stats.Queued))
		p.poolActive.WithLabelValues(name).Set(float64(stats.Active))
		p.poolWorkers.WithLabelValues(name).Set(float64(stats.Workers))
		p.poolLiveTaskSets.WithLabelValues(name).Set(float64(stats.LiveTaskSets))
		p.poolExecuted.WithLabelValues(name).Set(float64(stats.Executed))
		p.poolSteals.WithLabelValues(name).Set(float64(stats.Steals))
		p.poolParks.WithLabelValues(name).Set(float64(stats.Parks))
		p.poolWakes.WithLabelValues(name).Set(float64(stats.Wakes))
		p.poolRejected.WithLabelValues(name).Set(float64(stats.Rejected))
		if stats.Running {
			p.poolRunning.WithLabelValues(name).Set(1)
		} else {
			p.poolRunning.WithLabelValues(name).Set(0)
		}
	}
}
