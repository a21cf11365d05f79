package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fairyhunter13/storefront-intake/internal/model"
	"github.com/fairyhunter13/storefront-intake/internal/obs"
)

// Queue holds pending low-stock signals. Enqueue appends to an unbounded
// pending list; a pump goroutine moves pending signals, oldest first, into a
// bounded ready channel that workers read from.
type Queue struct {
	mu      sync.Mutex
	pending []model.LowStockSignal
	wake    chan struct{}
	ready   chan model.LowStockSignal
	closed  atomic.Bool

	enqueued  atomic.Uint64
	delivered atomic.Uint64
	failed    atomic.Uint64
}

// New creates a Queue whose ready channel holds up to readyCap signals.
func New(readyCap int) *Queue {
	if readyCap <= 0 {
		readyCap = 64
	}
	return &Queue{
		wake:  make(chan struct{}, 1),
		ready: make(chan model.LowStockSignal, readyCap),
	}
}

// Start runs the pump until ctx is done. When highWatermark is positive a
// warning is logged each time the pending list grows past it.
func (q *Queue) Start(ctx context.Context, highWatermark int) {
	go q.pump(ctx, highWatermark)
}

func (q *Queue) pump(ctx context.Context, highWatermark int) {
	// The ticker covers workers freeing ready slots without waking the pump.
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	above := false
	for {
		left := q.fill()
		if highWatermark > 0 {
			switch {
			case left > highWatermark && !above:
				above = true
				obs.Logger.Warn("low_stock_backlog_high", "pending", left, "high_watermark", highWatermark)
			case left <= highWatermark && above:
				above = false
				obs.Logger.Info("low_stock_backlog_recovered", "pending", left)
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-q.wake:
		case <-tick.C:
		}
	}
}

// fill moves as many pending signals as fit into ready and returns how many
// are still pending.
func (q *Queue) fill() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for n < len(q.pending) {
		select {
		case q.ready <- q.pending[n]:
			n++
		default:
			q.pending = q.pending[n:]
			return len(q.pending)
		}
	}
	q.pending = q.pending[:0]
	return 0
}

// Enqueue adds sig to the pending list. It never blocks and reports false
// once intake is closed.
func (q *Queue) Enqueue(sig model.LowStockSignal) bool {
	if q.closed.Load() {
		return false
	}
	q.enqueued.Add(1)
	q.mu.Lock()
	q.pending = append(q.pending, sig)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Out is the channel workers receive signals from.
func (q *Queue) Out() <-chan model.LowStockSignal { return q.ready }

// BacklogSize is the number of signals not yet handed to the ready channel.
func (q *Queue) BacklogSize() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// MarkProcessed records the outcome of one delivery.
func (q *Queue) MarkProcessed(ok bool) {
	if !ok {
		q.failed.Add(1)
	}
	q.delivered.Add(1)
}

// Metrics is a point-in-time view of the queue counters.
type Metrics struct {
	Enqueued  uint64 `json:"signals_enqueued"`
	Processed uint64 `json:"signals_processed"`
	Failed    uint64 `json:"signals_failed"`
	Backlog   int    `json:"backlog_size"`
	Depth     int    `json:"queue_depth"`
}

// Metrics reads the counters. Depth counts pending plus ready signals.
func (q *Queue) Metrics() Metrics {
	backlog := q.BacklogSize()
	return Metrics{
		Enqueued:  q.enqueued.Load(),
		Processed: q.delivered.Load(),
		Failed:    q.failed.Load(),
		Backlog:   backlog,
		Depth:     backlog + len(q.ready),
	}
}

// CloseIntake makes every later Enqueue fail.
func (q *Queue) CloseIntake() { q.closed.Store(true) }

// IsShuttingDown reports whether intake was closed.
func (q *Queue) IsShuttingDown() bool { return q.closed.Load() }
