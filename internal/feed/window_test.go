package feed

import (
	"fmt"
	"testing"

	"github.com/AnhQuan2004/binance-alpha-dev/internal/model"
)

func tick(id, timeMs int64, price string) model.TradeTick {
	return model.TradeTick{
		AggregateID: id,
		Price:       price,
		Quantity:    "1",
		TradeTimeMs: timeMs,
	}
}

func windowIDs(w *Window) []int64 {
	ticks := w.Ticks()
	ids := make([]int64, len(ticks))
	for i, t := range ticks {
		ids[i] = t.AggregateID
	}
	return ids
}

func TestWindowFirstFetchReplaces(t *testing.T) {
	w := NewWindow(40, 10)

	changed := w.Merge([]model.TradeTick{
		tick(1, 1000, "1.00"),
		tick(2, 2000, "1.00"),
		tick(3, 3000, "1.00"),
		tick(4, 4000, "1.00"),
		tick(5, 5000, "1.00"),
	})

	if !changed {
		t.Error("Merge = false, want true on first fetch")
	}
	if w.Len() != 5 {
		t.Errorf("Len = %d, want 5", w.Len())
	}
	if w.HighWater() != 5 {
		t.Errorf("HighWater = %d, want 5", w.HighWater())
	}

	ids := windowIDs(w)
	want := []int64{5, 4, 3, 2, 1} // time-sorted descending
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
}

func TestWindowHighWaterMerge(t *testing.T) {
	w := NewWindow(40, 10)

	// First fetch: IDs 1..5.
	w.Merge([]model.TradeTick{tick(1, 1000, "1.00"), tick(2, 2000, "1.00"),
		tick(3, 3000, "1.00"), tick(4, 4000, "1.00"), tick(5, 5000, "1.00")})

	// Second fetch: IDs 3..8; only 6,7,8 are new.
	changed := w.Merge([]model.TradeTick{
		tick(3, 3000, "1.00"),
		tick(4, 4000, "1.00"),
		tick(5, 5000, "1.00"),
		tick(6, 6000, "1.00"),
		tick(7, 7000, "1.00"),
		tick(8, 8000, "1.00"),
	})

	if !changed {
		t.Error("Merge = false, want true when fresh ticks exist")
	}
	if w.Len() != 8 {
		t.Errorf("Len = %d, want 8", w.Len())
	}
	if w.HighWater() != 8 {
		t.Errorf("HighWater = %d, want 8", w.HighWater())
	}

	seen := make(map[int64]bool)
	for _, id := range windowIDs(w) {
		if seen[id] {
			t.Fatalf("duplicate AggregateID %d in window", id)
		}
		seen[id] = true
	}
}

func TestWindowUnchangedWhenAllStale(t *testing.T) {
	w := NewWindow(40, 10)
	w.Merge([]model.TradeTick{tick(4, 4000, "1.00"), tick(5, 5000, "1.00")})

	before := windowIDs(w)
	changed := w.Merge([]model.TradeTick{tick(3, 3000, "1.00"), tick(5, 5000, "1.00")})

	if changed {
		t.Error("Merge = true, want false when every ID is at or below the mark")
	}

	after := windowIDs(w)
	if len(before) != len(after) {
		t.Fatalf("window size changed: %v -> %v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("window content changed: %v -> %v", before, after)
		}
	}
}

func TestWindowCap(t *testing.T) {
	w := NewWindow(40, 10)

	batch := make([]model.TradeTick, 0, 50)
	for i := int64(1); i <= 50; i++ {
		batch = append(batch, tick(i, i*1000, "1.00"))
	}
	w.Merge(batch)

	if w.Len() != 40 {
		t.Errorf("Len = %d, want 40", w.Len())
	}

	// The most recent 40 survive.
	ids := windowIDs(w)
	if ids[0] != 50 || ids[39] != 11 {
		t.Errorf("window spans IDs %d..%d, want 50..11", ids[0], ids[39])
	}

	// Further merges stay capped.
	w.Merge([]model.TradeTick{tick(51, 51000, "1.00"), tick(52, 52000, "1.00")})
	if w.Len() != 40 {
		t.Errorf("Len after second merge = %d, want 40", w.Len())
	}
}

func TestWindowAlwaysTimeSorted(t *testing.T) {
	w := NewWindow(40, 10)

	// Deliberately unsorted input, including a new tick older-by-time than
	// existing entries.
	w.Merge([]model.TradeTick{tick(2, 5000, "1.00"), tick(1, 1000, "1.00")})
	w.Merge([]model.TradeTick{tick(3, 3000, "1.00")})

	ticks := w.Ticks()
	for i := 1; i < len(ticks); i++ {
		if ticks[i-1].TradeTimeMs < ticks[i].TradeTimeMs {
			t.Fatalf("window not time-sorted descending: %+v", ticks)
		}
	}
}

func TestWindowEmptyFirstFetchDoesNotPrime(t *testing.T) {
	w := NewWindow(40, 10)

	if changed := w.Merge(nil); changed {
		t.Error("Merge(nil) = true, want false")
	}

	// The next non-empty fetch still replaces wholesale.
	changed := w.Merge([]model.TradeTick{tick(7, 7000, "1.00")})
	if !changed {
		t.Error("Merge = false, want true on first non-empty fetch")
	}
	if w.HighWater() != 7 {
		t.Errorf("HighWater = %d, want 7", w.HighWater())
	}
}

func TestWindowDuplicateIDsInSnapshot(t *testing.T) {
	w := NewWindow(40, 10)
	w.Merge([]model.TradeTick{
		tick(1, 1000, "1.00"),
		tick(1, 1500, "1.01"),
		tick(2, 2000, "1.00"),
	})

	seen := make(map[int64]bool)
	for _, id := range windowIDs(w) {
		if seen[id] {
			t.Fatalf("duplicate AggregateID %d in window", id)
		}
		seen[id] = true
	}
}

func TestSpreadProxy(t *testing.T) {
	w := NewWindow(40, 10)
	w.Merge([]model.TradeTick{
		tick(1, 1000, "99"),
		tick(2, 2000, "101"),
	})

	got := w.SpreadBps()
	if got == nil {
		t.Fatal("SpreadBps = nil, want value")
	}
	// (101-99)/100 * 10000 = 200 bps
	if *got != 200 {
		t.Errorf("SpreadBps = %v, want 200", *got)
	}
}

func TestSpreadProxyUsesMostRecentSample(t *testing.T) {
	w := NewWindow(40, 3)

	// Oldest tick has an extreme price but falls outside the 3-tick sample.
	w.Merge([]model.TradeTick{
		tick(1, 1000, "50"),
		tick(2, 2000, "100"),
		tick(3, 3000, "100"),
		tick(4, 4000, "100"),
	})

	got := w.SpreadBps()
	if got == nil {
		t.Fatal("SpreadBps = nil, want value")
	}
	if *got != 0 {
		t.Errorf("SpreadBps = %v, want 0 (sample excludes the outlier)", *got)
	}
}

func TestSpreadProxyRetainedOnZeroMid(t *testing.T) {
	w := NewWindow(40, 2)
	w.Merge([]model.TradeTick{tick(1, 1000, "99"), tick(2, 2000, "101")})

	// Degenerate prices fill the whole sample: mid = 0 leaves the previous
	// value in place.
	w.Merge([]model.TradeTick{tick(3, 3000, "0"), tick(4, 4000, "0")})

	got := w.SpreadBps()
	if got == nil || *got != 200 {
		t.Errorf("SpreadBps = %v, want retained 200", fmtPtr(got))
	}
}

func TestSpreadProxyUndefinedBeforeFirstSample(t *testing.T) {
	w := NewWindow(40, 10)
	if got := w.SpreadBps(); got != nil {
		t.Errorf("SpreadBps = %v, want nil before first merge", *got)
	}
}

func fmtPtr(v *float64) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%v", *v)
}
