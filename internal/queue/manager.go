// Package queue carries low-stock signals off the order commit path. Signals
// are buffered in memory and delivered by a small worker pool; a failed
// delivery is logged and dropped.
package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/storefront-intake/internal/model"
	"github.com/fairyhunter13/storefront-intake/internal/notify"
	"github.com/fairyhunter13/storefront-intake/internal/obs"
)

// Options configures a Manager.
type Options struct {
	Workers       int
	HighWatermark int
	// NotifyTimeout bounds a single delivery attempt.
	NotifyTimeout time.Duration
}

// Manager coordinates workers delivering queued signals.
type Manager struct {
	opts   Options
	q      *Queue
	n      notify.Notifier
	seq    atomic.Uint64
	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	workerCancels []context.CancelFunc
}

// NewManager constructs a Manager delivering signals from q to n.
func NewManager(opts Options, q *Queue, n notify.Notifier) *Manager {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 5 * time.Second
	}
	return &Manager{opts: opts, q: q, n: n}
}

// Start begins delivery in the background.
func (m *Manager) Start(parent context.Context) {
	m.ctx, m.cancel = context.WithCancel(parent)
	m.q.Start(m.ctx, m.opts.HighWatermark)
	m.addWorkers(m.opts.Workers)
}

// Stop cancels background routines and stops workers.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.mu.Lock()
	for _, c := range m.workerCancels {
		c()
	}
	m.workerCancels = nil
	m.mu.Unlock()
}

// addWorkers spawns n workers.
func (m *Manager) addWorkers(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		wctx, cancel := context.WithCancel(m.ctx)
		m.workerCancels = append(m.workerCancels, cancel)
		go m.worker(wctx)
	}
	obs.Logger.Info("signal_workers_started", "worker_count", len(m.workerCancels))
}

// worker drains signals from the queue and hands them to the notifier.
func (m *Manager) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-m.q.Out():
			m.deliver(ctx, sig)
		}
	}
}

func (m *Manager) deliver(ctx context.Context, sig model.LowStockSignal) {
	dctx, cancel := context.WithTimeout(ctx, m.opts.NotifyTimeout)
	defer cancel()
	err := m.n.Notify(dctx, sig)
	if err != nil {
		obs.Logger.Error("low_stock_notify_failed",
			"product_id", sig.ProductID,
			"stock", sig.Stock,
			"sequence", sig.Sequence,
			"error", err,
		)
	}
	m.q.MarkProcessed(err == nil)
}

// Signal queues a low-stock signal without blocking. Signals raised after
// intake is closed are logged and dropped.
func (m *Manager) Signal(sig model.LowStockSignal) {
	sig.Sequence = m.seq.Add(1)
	if sig.At.IsZero() {
		sig.At = time.Now().UTC()
	}
	if !m.q.Enqueue(sig) {
		obs.Logger.Warn("low_stock_signal_dropped", "product_id", sig.ProductID, "stock", sig.Stock)
	}
}

// WorkerCount returns the current number of workers.
func (m *Manager) WorkerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.workerCancels)
}

// CloseIntake disallows future signals.
func (m *Manager) CloseIntake() { m.q.CloseIntake() }

// Metrics exposes the underlying queue metrics.
func (m *Manager) Metrics() Metrics { return m.q.Metrics() }

// DrainUntil blocks until every queued signal was delivered or ctx is done.
func (m *Manager) DrainUntil(ctx context.Context) bool {
	for {
		mt := m.q.Metrics()
		if mt.Backlog == 0 && mt.Depth == 0 && mt.Enqueued == mt.Processed {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(50 * time.Millisecond):
		}
	}
}
