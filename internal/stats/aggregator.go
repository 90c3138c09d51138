package stats

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/AnhQuan2004/binance-alpha-dev/internal/dispatch"
	"github.com/AnhQuan2004/binance-alpha-dev/internal/feed"
	"github.com/AnhQuan2004/binance-alpha-dev/internal/model"
)

// tokenState is the latest view of one token's window.
type tokenState struct {
	ticks      []model.TradeTick
	multiplier float64
	spreadBps  *float64
	errMsg     string
}

// Aggregator consumes window updates and serves summary statistics.
type Aggregator struct {
	logger *slog.Logger
	input  *dispatch.Buffer[feed.Update]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	tokens map[string]*tokenState
	order  []string
}

// NewAggregator creates an aggregator fed by the given dispatch buffer.
func NewAggregator(input *dispatch.Buffer[feed.Update], logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		logger: logger,
		input:  input,
		tokens: make(map[string]*tokenState),
	}
}

// Start begins consuming updates.
func (a *Aggregator) Start(ctx context.Context) error {
	a.ctx, a.cancel = context.WithCancel(ctx)

	a.wg.Add(1)
	go a.consumeLoop()

	a.logger.Info("stats aggregator started")
	return nil
}

// Stop shuts the aggregator down.
func (a *Aggregator) Stop(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("stats aggregator stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Apply folds one update into the aggregate state.
func (a *Aggregator) Apply(u feed.Update) {
	a.mu.Lock()
	defer a.mu.Unlock()

	st, ok := a.tokens[u.Token]
	if !ok {
		st = &tokenState{}
		a.tokens[u.Token] = st
		a.order = append(a.order, u.Token)
	}

	st.ticks = u.Ticks
	st.multiplier = u.Multiplier
	st.spreadBps = u.SpreadBps
	st.errMsg = u.Err
}

// Summary computes the cross-token dashboard figures.
func (a *Aggregator) Summary() model.Summary {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var (
		totalVolume float64
		totalTrades int
		priceSum    float64
		priceCount  int
		changeSum   float64
		changeCount int
	)

	for _, name := range a.order {
		st := a.tokens[name]

		mult := st.multiplier
		if mult == 0 {
			mult = 1
		}

		for _, tick := range st.ticks {
			p, errP := strconv.ParseFloat(tick.Price, 64)
			q, errQ := strconv.ParseFloat(tick.Quantity, 64)
			if errP != nil || errQ != nil {
				continue
			}
			totalVolume += p * q * mult
			priceSum += p
			priceCount++
		}
		totalTrades += len(st.ticks)

		// Per-token change: newest vs oldest entry in the window.
		if len(st.ticks) >= 2 {
			newest, errN := strconv.ParseFloat(st.ticks[0].Price, 64)
			oldest, errO := strconv.ParseFloat(st.ticks[len(st.ticks)-1].Price, 64)
			if errN == nil && errO == nil && oldest != 0 {
				changeSum += (newest - oldest) / oldest * 100
				changeCount++
			}
		}
	}

	s := model.Summary{
		TotalVolume:   totalVolume,
		TotalTrades:   totalTrades,
		GeneratedAtMs: time.Now().UnixMilli(),
	}
	if priceCount > 0 {
		s.AveragePrice = priceSum / float64(priceCount)
	}
	if changeCount > 0 {
		s.PriceChangePct = changeSum / float64(changeCount)
	}
	return s
}

// TokenStats returns per-token figures in first-seen order.
func (a *Aggregator) TokenStats() []model.TokenStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]model.TokenStats, 0, len(a.order))
	for _, name := range a.order {
		st := a.tokens[name]
		ts := model.TokenStats{
			Token:  name,
			Trades: len(st.ticks),
			Error:  st.errMsg,
		}
		if st.spreadBps != nil {
			v := *st.spreadBps
			ts.SpreadBps = &v
			ts.Stability = Stability(v)
		}
		out = append(out, ts)
	}
	return out
}

func (a *Aggregator) consumeLoop() {
	defer a.wg.Done()

	for {
		select {
		case <-a.ctx.Done():
			return
		default:
		}

		u, ok := a.input.Pop()
		if !ok {
			return
		}
		a.Apply(u)
	}
}
