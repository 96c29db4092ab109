package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func allow(t *testing.T, l Limiter, id string) bool {
	t.Helper()
	ok, err := l.Allow(context.Background(), id)
	if err != nil {
		t.Fatalf("Allow(%s): %v", id, err)
	}
	return ok
}

func TestMemoryAdmitsUpToMax(t *testing.T) {
	clock := newFakeClock()
	l := NewMemory(WithClock(clock.Now))

	for i := 0; i < DefaultMax; i++ {
		if !allow(t, l, "1.2.3.4") {
			t.Fatalf("request %d denied", i+1)
		}
		clock.Advance(time.Second)
	}
	if allow(t, l, "1.2.3.4") {
		t.Fatal("11th request within the window was admitted")
	}
}

func TestMemoryWindowResets(t *testing.T) {
	clock := newFakeClock()
	l := NewMemory(WithClock(clock.Now))

	for i := 0; i < DefaultMax; i++ {
		allow(t, l, "a")
	}
	for i := 0; i < 5; i++ {
		if allow(t, l, "a") {
			t.Fatal("expected denial")
		}
	}

	clock.Advance(61 * time.Second)
	if !allow(t, l, "a") {
		t.Fatal("request after the window was denied")
	}
}

func TestMemoryDenialsAreNotRecorded(t *testing.T) {
	clock := newFakeClock()
	l := NewMemory(WithClock(clock.Now), WithMax(2), WithWindow(10*time.Second))

	allow(t, l, "a")
	allow(t, l, "a")
	clock.Advance(5 * time.Second)
	if allow(t, l, "a") {
		t.Fatal("expected denial")
	}
	// the two admitted requests age out; the denied one never counted
	clock.Advance(5*time.Second + time.Millisecond)
	if !allow(t, l, "a") || !allow(t, l, "a") {
		t.Fatal("expected two admissions after the window")
	}
}

func TestMemoryBoundaryIsExclusive(t *testing.T) {
	clock := newFakeClock()
	l := NewMemory(WithClock(clock.Now), WithMax(1), WithWindow(time.Minute))

	allow(t, l, "a")
	clock.Advance(time.Minute)
	if !allow(t, l, "a") {
		t.Fatal("a timestamp exactly one window old must be dropped")
	}
}

func TestMemoryClientsAreIndependent(t *testing.T) {
	clock := newFakeClock()
	l := NewMemory(WithClock(clock.Now))

	for i := 0; i < DefaultMax; i++ {
		allow(t, l, "busy")
	}
	if allow(t, l, "busy") {
		t.Fatal("busy client should be limited")
	}
	if !allow(t, l, "quiet") {
		t.Fatal("other client should not be affected")
	}
}

func TestMemoryConcurrentAllow(t *testing.T) {
	l := NewMemory(WithMax(50))

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _ := l.Allow(context.Background(), "shared")
			if ok {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if admitted != 50 {
		t.Fatalf("admitted %d, want 50", admitted)
	}
}

func TestMemoryPrune(t *testing.T) {
	clock := newFakeClock()
	l := NewMemory(WithClock(clock.Now))

	allow(t, l, "old")
	clock.Advance(30 * time.Second)
	allow(t, l, "recent")
	clock.Advance(31 * time.Second)

	if removed := l.Prune(clock.Now()); removed != 1 {
		t.Fatalf("Prune removed %d, want 1", removed)
	}
	if l.Clients() != 1 {
		t.Fatalf("Clients = %d, want 1", l.Clients())
	}
}

func TestMemoryRunStopsOnCancel(t *testing.T) {
	l := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
