package dispatch

import (
	"sync"
	"testing"
	"time"
)

func TestBufferPushPop(t *testing.T) {
	buf := NewBuffer[int](10)

	for i := 0; i < 5; i++ {
		if !buf.Push(i) {
			t.Fatalf("Push(%d) returned false", i)
		}
	}
	if buf.Len() != 5 {
		t.Errorf("Len() = %d, want 5", buf.Len())
	}

	for i := 0; i < 5; i++ {
		val, ok := buf.TryPop()
		if !ok {
			t.Fatalf("TryPop() returned false for item %d", i)
		}
		if val != i {
			t.Errorf("popped %d, want %d", val, i)
		}
	}
	if buf.Len() != 0 {
		t.Errorf("Len() = %d, want 0", buf.Len())
	}
}

func TestBufferGrows(t *testing.T) {
	buf := NewBuffer[int](10)

	for i := 0; i < 100; i++ {
		buf.Push(i)
	}

	stats := buf.Stats()
	if stats.Capacity <= 10 {
		t.Errorf("Capacity = %d, expected growth", stats.Capacity)
	}
	if stats.Resizes == 0 {
		t.Error("Resizes = 0, expected at least one resize")
	}

	// Order survives the ring unrolls.
	for i := 0; i < 100; i++ {
		val, ok := buf.TryPop()
		if !ok || val != i {
			t.Fatalf("TryPop() = (%d, %v), want (%d, true)", val, ok, i)
		}
	}
}

func TestBufferGrowPreservesWrappedOrder(t *testing.T) {
	buf := NewBuffer[int](8)

	// Wrap the ring: push, pop, then push past the old tail.
	for i := 0; i < 4; i++ {
		buf.Push(i)
	}
	for i := 0; i < 4; i++ {
		buf.TryPop()
	}
	for i := 10; i < 30; i++ {
		buf.Push(i)
	}

	for i := 10; i < 30; i++ {
		val, ok := buf.TryPop()
		if !ok || val != i {
			t.Fatalf("TryPop() = (%d, %v), want (%d, true)", val, ok, i)
		}
	}
}

func TestBufferPopBlocksUntilPush(t *testing.T) {
	buf := NewBuffer[string](4)

	got := make(chan string, 1)
	go func() {
		val, ok := buf.Pop()
		if ok {
			got <- val
		}
	}()

	time.Sleep(10 * time.Millisecond)
	buf.Push("hello")

	select {
	case val := <-got:
		if val != "hello" {
			t.Errorf("Pop() = %q, want %q", val, "hello")
		}
	case <-time.After(time.Second):
		t.Fatal("Pop() did not wake up after Push")
	}
}

func TestBufferClose(t *testing.T) {
	buf := NewBuffer[int](4)
	buf.Push(1)
	buf.Close()

	if buf.Push(2) {
		t.Error("Push after Close returned true")
	}

	// Pending item still drains.
	if val, ok := buf.Pop(); !ok || val != 1 {
		t.Errorf("Pop() = (%d, %v), want (1, true)", val, ok)
	}

	// Then poppers see closed.
	if _, ok := buf.Pop(); ok {
		t.Error("Pop() on closed empty buffer returned true")
	}
}

func TestBufferCloseWakesBlockedPoppers(t *testing.T) {
	buf := NewBuffer[int](4)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf.Pop()
		}()
	}

	time.Sleep(10 * time.Millisecond)
	buf.Close()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("blocked poppers not woken by Close")
	}
}

func TestBufferDrain(t *testing.T) {
	buf := NewBuffer[int](16)
	for i := 0; i < 10; i++ {
		buf.Push(i)
	}

	batch := buf.Drain(4)
	if len(batch) != 4 {
		t.Fatalf("len(Drain(4)) = %d, want 4", len(batch))
	}
	for i, v := range batch {
		if v != i {
			t.Errorf("batch[%d] = %d, want %d", i, v, i)
		}
	}

	rest := buf.Drain(0)
	if len(rest) != 6 {
		t.Errorf("len(Drain(0)) = %d, want 6", len(rest))
	}
	if buf.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after full drain", buf.Len())
	}
}
