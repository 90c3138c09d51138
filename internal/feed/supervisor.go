package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/AnhQuan2004/binance-alpha-dev/internal/model"
)

// Supervisor owns one poller per configured token. Pollers share no state;
// the supervisor only starts, stops and snapshots them.
type Supervisor struct {
	cfg         Config
	staggerStep time.Duration
	fetcher     Fetcher
	handler     UpdateHandler
	logger      *slog.Logger
	clock       Clock

	pollers map[string]*Poller
	order   []string
}

// NewSupervisor creates a supervisor for the given tokens. Tokens without an
// explicit stagger delay are offset by index*staggerStep to avoid a
// thundering herd against a shared upstream.
func NewSupervisor(cfg Config, staggerStep time.Duration, tokens []model.Token, fetcher Fetcher, handler UpdateHandler, logger *slog.Logger, clock Clock) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Supervisor{
		cfg:         cfg,
		staggerStep: staggerStep,
		fetcher:     fetcher,
		handler:     handler,
		logger:      logger,
		clock:       clock,
		pollers:     make(map[string]*Poller, len(tokens)),
	}

	for i, tok := range tokens {
		stagger := time.Duration(tok.StaggerDelay) * time.Millisecond
		if stagger == 0 {
			stagger = time.Duration(i) * staggerStep
		}
		s.pollers[tok.Name] = NewPoller(cfg, tok, stagger, fetcher, handler, logger, clock)
		s.order = append(s.order, tok.Name)
	}

	return s
}

// Start launches every poller.
func (s *Supervisor) Start(ctx context.Context) error {
	for _, name := range s.order {
		if err := s.pollers[name].Start(ctx); err != nil {
			return err
		}
	}
	s.logger.Info("feed supervisor started", "tokens", len(s.pollers))
	return nil
}

// Stop tears every poller down.
func (s *Supervisor) Stop(ctx context.Context) error {
	var firstErr error
	for _, name := range s.order {
		if err := s.pollers[name].Stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.logger.Info("feed supervisor stopped")
	return firstErr
}

// Snapshot returns one token's current view.
func (s *Supervisor) Snapshot(token string) (Snapshot, bool) {
	p, ok := s.pollers[token]
	if !ok {
		return Snapshot{}, false
	}
	return p.Snapshot(), true
}

// Snapshots returns the current view of every token, in configured order.
func (s *Supervisor) Snapshots() []Snapshot {
	out := make([]Snapshot, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.pollers[name].Snapshot())
	}
	return out
}

// Tokens returns the configured token names in order.
func (s *Supervisor) Tokens() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
