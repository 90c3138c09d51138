package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/AnhQuan2004/binance-alpha-dev/internal/feed"
)

func TestDispatcherFansOut(t *testing.T) {
	d := New(DefaultConfig(), nil)

	a := d.Subscribe()
	b := d.Subscribe()

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	d.HandleUpdate(feed.Update{Token: "KOGE"})
	d.HandleUpdate(feed.Update{Token: "ZKJ"})

	for _, buf := range []*Buffer[feed.Update]{a, b} {
		for _, want := range []string{"KOGE", "ZKJ"} {
			u, ok := popWithTimeout(t, buf)
			if !ok {
				t.Fatalf("subscriber missed update %q", want)
			}
			if u.Token != want {
				t.Errorf("Token = %q, want %q", u.Token, want)
			}
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	stats := d.Stats()
	if stats.Received != 2 {
		t.Errorf("Received = %d, want 2", stats.Received)
	}
	if stats.Dispatched != 4 {
		t.Errorf("Dispatched = %d, want 4", stats.Dispatched)
	}
	if stats.Subscribers != 2 {
		t.Errorf("Subscribers = %d, want 2", stats.Subscribers)
	}
}

func TestDispatcherStopClosesSubscribers(t *testing.T) {
	d := New(DefaultConfig(), nil)
	buf := d.Subscribe()

	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if _, ok := buf.Pop(); ok {
		t.Error("Pop() on closed subscriber returned true")
	}
}

func popWithTimeout(t *testing.T, buf *Buffer[feed.Update]) (feed.Update, bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if u, ok := buf.TryPop(); ok {
			return u, true
		}
		time.Sleep(time.Millisecond)
	}
	return feed.Update{}, false
}
