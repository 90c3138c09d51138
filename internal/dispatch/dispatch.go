// Package dispatch fans poller window updates out to their consumers: the
// live hub, the stats aggregator, and the optional tick recorder. Each
// consumer drains its own growable buffer, so none of them can stall the
// pollers or each other.
package dispatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/AnhQuan2004/binance-alpha-dev/internal/feed"
)

// Config holds dispatcher settings.
type Config struct {
	InputSize  int // Input channel capacity (default: 256)
	BufferSize int // Initial capacity of each subscriber buffer (default: 1024)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		InputSize:  256,
		BufferSize: 1024,
	}
}

// Stats contains dispatcher counters.
type Stats struct {
	Received    int64
	Dispatched  int64
	Dropped     int64
	Subscribers int
}

// Dispatcher implements feed.UpdateHandler and routes every update to all
// subscriber buffers. Subscriptions must be registered before Start.
type Dispatcher struct {
	cfg    Config
	logger *slog.Logger

	input chan feed.Update
	subs  []*Buffer[feed.Update]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.RWMutex
	received   int64
	dispatched int64
	dropped    int64
}

// New creates a Dispatcher.
func New(cfg Config, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.InputSize < 1 {
		cfg.InputSize = DefaultConfig().InputSize
	}
	if cfg.BufferSize < 1 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	return &Dispatcher{
		cfg:    cfg,
		logger: logger,
		input:  make(chan feed.Update, cfg.InputSize),
	}
}

// Subscribe registers and returns a new consumer buffer. Must be called
// before Start.
func (d *Dispatcher) Subscribe() *Buffer[feed.Update] {
	buf := NewBuffer[feed.Update](d.cfg.BufferSize)
	d.subs = append(d.subs, buf)
	return buf
}

// HandleUpdate queues an update for routing. Drops the update when the
// input queue is saturated rather than blocking a poller.
func (d *Dispatcher) HandleUpdate(u feed.Update) {
	select {
	case d.input <- u:
	default:
		d.mu.Lock()
		d.dropped++
		d.mu.Unlock()
	}
}

// Start begins routing updates to subscribers.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.ctx, d.cancel = context.WithCancel(ctx)

	d.wg.Add(1)
	go d.routeLoop()

	d.logger.Info("dispatcher started", "subscribers", len(d.subs))
	return nil
}

// Stop shuts the dispatcher down and closes all subscriber buffers.
func (d *Dispatcher) Stop(ctx context.Context) error {
	if d.cancel != nil {
		d.cancel()
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("dispatcher stopped")
	case <-ctx.Done():
		d.logger.Warn("dispatcher stop timed out")
	}

	for _, buf := range d.subs {
		buf.Close()
	}
	return nil
}

// Stats returns routing counters.
func (d *Dispatcher) Stats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Stats{
		Received:    d.received,
		Dispatched:  d.dispatched,
		Dropped:     d.dropped,
		Subscribers: len(d.subs),
	}
}

func (d *Dispatcher) routeLoop() {
	defer d.wg.Done()

	for {
		select {
		case <-d.ctx.Done():
			return
		case u := <-d.input:
			d.mu.Lock()
			d.received++
			d.mu.Unlock()

			for _, buf := range d.subs {
				if buf.Push(u) {
					d.mu.Lock()
					d.dispatched++
					d.mu.Unlock()
				}
			}
		}
	}
}
