package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/AnhQuan2004/binance-alpha-dev/internal/model"
)

// State is the poller lifecycle state.
type State int

const (
	StateIdle    State = iota // Waiting out the normal poll interval
	StateFetching             // Request in flight
	StateBackoff              // Waiting out a failure backoff
	StateStopped              // Torn down, nothing runs after this
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateBackoff:
		return "backoff"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Fetcher retrieves one trade snapshot from a feed URL.
type Fetcher interface {
	GetTrades(ctx context.Context, feedURL string) ([]model.TradeTick, error)
}

// Update is pushed to the handler whenever a poller's visible state changes.
type Update struct {
	Token      string            `json:"token"`
	Multiplier float64           `json:"multiplier"`
	Ticks      []model.TradeTick `json:"ticks"`
	SpreadBps  *float64          `json:"spread_bps,omitempty"`
	Err        string            `json:"error,omitempty"`
}

// UpdateHandler receives poller updates.
type UpdateHandler interface {
	HandleUpdate(Update)
}

// UpdateHandlerFunc is a function adapter for UpdateHandler.
type UpdateHandlerFunc func(Update)

func (f UpdateHandlerFunc) HandleUpdate(u Update) { f(u) }

// Snapshot is the consumer-facing view of one poller. Retry counters and
// backoff delays stay internal.
type Snapshot struct {
	Token     string            `json:"token"`
	Ticks     []model.TradeTick `json:"ticks"`
	Loading   bool              `json:"loading"`
	Err       string            `json:"error,omitempty"`
	SpreadBps *float64          `json:"spread_bps,omitempty"`
}

// Config holds poller timing parameters.
type Config struct {
	PollInterval time.Duration // Delay after a successful fetch (default: 1s)
	BackoffBase  time.Duration // First retry delay unit (default: 1s)
	BackoffMax   time.Duration // Retry delay ceiling (default: 15s)
	Timeout      time.Duration // Per-request timeout (default: 10s)
	WindowSize   int           // Rolling window cap (default: 40)
	SpreadSample int           // Ticks sampled for the spread proxy (default: 10)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PollInterval: time.Second,
		BackoffBase:  time.Second,
		BackoffMax:   15 * time.Second,
		Timeout:      10 * time.Second,
		WindowSize:   40,
		SpreadSample: 10,
	}
}

// Poller keeps one token's trade window live. All mutable state is guarded
// by mu; timer callbacks and request completions are the only entry points.
type Poller struct {
	cfg     Config
	token   model.Token
	stagger time.Duration
	fetcher Fetcher
	handler UpdateHandler
	logger  *slog.Logger
	clock   Clock

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu           sync.Mutex
	state        State
	window       *Window
	loading      bool
	errMsg       string
	failures     int
	timer        Timer
	cancelFlight context.CancelFunc
	flightGen    uint64
}

// NewPoller creates a poller for one token. stagger delays the first fetch.
func NewPoller(cfg Config, token model.Token, stagger time.Duration, fetcher Fetcher, handler UpdateHandler, logger *slog.Logger, clock Clock) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = RealClock()
	}
	return &Poller{
		cfg:     cfg,
		token:   token,
		stagger: stagger,
		fetcher: fetcher,
		handler: handler,
		logger:  logger.With("token", token.Name),
		clock:   clock,
		window:  NewWindow(cfg.WindowSize, cfg.SpreadSample),
		loading: true,
	}
}

// Start schedules the first fetch after the stagger delay.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.mu.Lock()
	p.state = StateIdle
	p.timer = p.clock.AfterFunc(p.stagger, p.fetchCycle)
	p.mu.Unlock()

	p.logger.Info("feed poller started",
		"url", p.token.APIURL,
		"stagger", p.stagger,
	)
	return nil
}

// Stop tears the poller down: the pending timer and any in-flight request
// are cancelled, and no fetch runs afterwards.
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	p.state = StateStopped
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.cancelFlight != nil {
		p.cancelFlight()
		p.cancelFlight = nil
	}
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("feed poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the consumer view of the current window.
func (p *Poller) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		Token:     p.token.Name,
		Ticks:     p.window.Ticks(),
		Loading:   p.loading,
		Err:       p.errMsg,
		SpreadBps: p.window.SpreadBps(),
	}
}

// state accessors used by tests and the health endpoint.

// State returns the current lifecycle state.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// fetchCycle runs one poll: cancel the predecessor request, fetch, merge,
// reschedule. It executes on a timer goroutine.
func (p *Poller) fetchCycle() {
	p.mu.Lock()
	if p.state == StateStopped {
		p.mu.Unlock()
		return
	}

	// At most one outstanding request per token.
	if p.cancelFlight != nil {
		p.cancelFlight()
	}

	reqCtx, cancel := context.WithTimeout(p.ctx, p.cfg.Timeout)
	p.cancelFlight = cancel
	p.flightGen++
	gen := p.flightGen
	p.state = StateFetching
	p.wg.Add(1)
	p.mu.Unlock()

	defer p.wg.Done()

	ticks, err := p.fetcher.GetTrades(reqCtx, p.token.APIURL)
	cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateStopped {
		return
	}
	if gen != p.flightGen {
		// Superseded by a newer cycle; its result owns the state.
		return
	}
	p.cancelFlight = nil

	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Our own cancellation is not a failure and schedules nothing.
			return
		}
		p.onFailureLocked(err)
		return
	}

	p.onSuccessLocked(ticks)
}

// onSuccessLocked merges the snapshot and schedules the next normal poll.
func (p *Poller) onSuccessLocked(ticks []model.TradeTick) {
	changed := p.window.Merge(ticks)
	hadError := p.errMsg != ""
	p.errMsg = ""
	p.loading = false
	p.failures = 0
	p.state = StateIdle
	p.timer = p.clock.AfterFunc(p.cfg.PollInterval, p.fetchCycle)

	if (changed || hadError) && p.handler != nil {
		p.handler.HandleUpdate(Update{
			Token:      p.token.Name,
			Multiplier: p.token.Multiplier,
			Ticks:      p.window.Ticks(),
			SpreadBps:  p.window.SpreadBps(),
		})
	}
}

// onFailureLocked records the error and schedules a backoff retry:
// min(base * 2^failures, max).
func (p *Poller) onFailureLocked(err error) {
	p.errMsg = err.Error()
	p.loading = false
	p.failures++

	delay := p.cfg.BackoffBase << uint(p.failures)
	if delay > p.cfg.BackoffMax || delay <= 0 {
		delay = p.cfg.BackoffMax
	}

	p.state = StateBackoff
	p.timer = p.clock.AfterFunc(delay, p.fetchCycle)

	p.logger.Warn("feed fetch failed",
		"err", err,
		"consecutive_failures", p.failures,
		"retry_in", delay,
	)

	if p.handler != nil {
		p.handler.HandleUpdate(Update{
			Token:      p.token.Name,
			Multiplier: p.token.Multiplier,
			Ticks:      p.window.Ticks(),
			SpreadBps:  p.window.SpreadBps(),
			Err:        p.errMsg,
		})
	}
}
