package feed

import (
	"sort"
	"strconv"

	"github.com/AnhQuan2004/binance-alpha-dev/internal/model"
)

// Window is the bounded, deduplicated view of the most recent trades for one
// token. Entries are kept sorted by TradeTimeMs descending and capped at the
// configured size. Growth happens only through ticks whose AggregateID
// exceeds the high-water mark, except on the first non-empty snapshot, which
// replaces the window wholesale.
//
// Window is not safe for concurrent use; the owning poller serializes access.
type Window struct {
	cap          int
	spreadSample int

	ticks     []model.TradeTick
	highWater int64
	primed    bool
	spreadBps *float64
}

// NewWindow creates an empty window with the given cap and spread sample.
func NewWindow(capSize, spreadSample int) *Window {
	return &Window{cap: capSize, spreadSample: spreadSample}
}

// Merge folds a fetched snapshot into the window and reports whether the
// window changed. The spread proxy is recomputed after every merge.
func (w *Window) Merge(fetched []model.TradeTick) bool {
	snapshot := make([]model.TradeTick, len(fetched))
	copy(snapshot, fetched)
	sortByTimeDesc(snapshot)
	snapshot = dedupeByID(snapshot)

	changed := false

	if !w.primed || len(w.ticks) == 0 {
		// First successful fetch replaces the window outright.
		if len(snapshot) > 0 {
			if len(snapshot) > w.cap {
				snapshot = snapshot[:w.cap]
			}
			w.ticks = snapshot
			w.highWater = maxAggregateID(snapshot)
			w.primed = true
			changed = true
		}
	} else if fresh := ticksAbove(snapshot, w.highWater); len(fresh) > 0 {
		// Track the highest ID in the full snapshot, not just the fresh
		// slice, to tolerate upstream re-ordering.
		w.highWater = maxAggregateID(snapshot)

		merged := make([]model.TradeTick, 0, len(fresh)+len(w.ticks))
		merged = append(merged, fresh...)
		merged = append(merged, w.ticks...)
		sortByTimeDesc(merged)
		if len(merged) > w.cap {
			merged = merged[:w.cap]
		}
		w.ticks = merged
		changed = true
	}

	w.recomputeSpread()
	return changed
}

// Ticks returns a copy of the current window, newest first.
func (w *Window) Ticks() []model.TradeTick {
	out := make([]model.TradeTick, len(w.ticks))
	copy(out, w.ticks)
	return out
}

// Len returns the number of entries in the window.
func (w *Window) Len() int { return len(w.ticks) }

// HighWater returns the highest AggregateID seen so far.
func (w *Window) HighWater() int64 { return w.highWater }

// SpreadBps returns the current spread proxy in basis points, or nil before
// the first computable sample.
func (w *Window) SpreadBps() *float64 {
	if w.spreadBps == nil {
		return nil
	}
	v := *w.spreadBps
	return &v
}

// recomputeSpread derives the liquidity proxy from the most recent entries:
// (maxP-minP)/mid * 10000 over the spread sample. The previous value is
// retained when no valid midpoint exists.
func (w *Window) recomputeSpread() {
	if len(w.ticks) == 0 {
		return
	}

	sample := w.ticks
	if len(sample) > w.spreadSample {
		sample = sample[:w.spreadSample]
	}

	var maxP, minP float64
	seen := false
	for _, tick := range sample {
		p, err := strconv.ParseFloat(tick.Price, 64)
		if err != nil {
			continue
		}
		if !seen {
			maxP, minP = p, p
			seen = true
			continue
		}
		if p > maxP {
			maxP = p
		}
		if p < minP {
			minP = p
		}
	}
	if !seen {
		return
	}

	mid := (maxP + minP) / 2
	if mid <= 0 {
		return
	}

	bps := (maxP - minP) / mid * 10000
	w.spreadBps = &bps
}

func sortByTimeDesc(ticks []model.TradeTick) {
	sort.SliceStable(ticks, func(i, j int) bool {
		return ticks[i].TradeTimeMs > ticks[j].TradeTimeMs
	})
}

// dedupeByID drops repeated AggregateIDs, keeping the first occurrence.
func dedupeByID(ticks []model.TradeTick) []model.TradeTick {
	seen := make(map[int64]struct{}, len(ticks))
	out := ticks[:0]
	for _, t := range ticks {
		if _, dup := seen[t.AggregateID]; dup {
			continue
		}
		seen[t.AggregateID] = struct{}{}
		out = append(out, t)
	}
	return out
}

func ticksAbove(ticks []model.TradeTick, mark int64) []model.TradeTick {
	var out []model.TradeTick
	for _, t := range ticks {
		if t.AggregateID > mark {
			out = append(out, t)
		}
	}
	return out
}

func maxAggregateID(ticks []model.TradeTick) int64 {
	var max int64
	for _, t := range ticks {
		if t.AggregateID > max {
			max = t.AggregateID
		}
	}
	return max
}
