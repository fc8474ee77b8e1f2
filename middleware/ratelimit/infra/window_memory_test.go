package infra

import (
	"context"
	"testing"
	"time"

	"izakaya/middleware/ratelimit/domain"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)}
}

func TestWindowStore_SixthRequestInWindowIsRejected(t *testing.T) {
	clk := newClock()
	s := NewWindowStore(5, time.Minute, WithWindowClock(clk.Now))
	lim := s.Get(domain.Key("1.2.3.4"))

	for i := 0; i < 5; i++ {
		if !lim.Allow(context.Background()) {
			t.Fatalf("request %d: expected allowed", i+1)
		}
		clk.Advance(5 * time.Second)
	}
	if lim.Allow(context.Background()) {
		t.Fatalf("expected 6th request within the window to be rejected")
	}
	// rejeitada não é registrada
	if got := s.Len(domain.Key("1.2.3.4")); got != 5 {
		t.Fatalf("expected 5 recorded requests, got %d", got)
	}
}

func TestWindowStore_AllowsAgainAfterWindowElapses(t *testing.T) {
	clk := newClock()
	s := NewWindowStore(5, time.Minute, WithWindowClock(clk.Now))
	lim := s.Get(domain.Key("k"))

	for i := 0; i < 5; i++ {
		lim.Allow(context.Background())
	}
	if lim.Allow(context.Background()) {
		t.Fatalf("expected rejection while window is full")
	}

	clk.Advance(time.Minute)
	if !lim.Allow(context.Background()) {
		t.Fatalf("expected request to pass once the window elapsed")
	}
	if got := s.Len(domain.Key("k")); got != 1 {
		t.Fatalf("expected old entries pruned, got %d", got)
	}
}

func TestWindowStore_SlidesInsteadOfResetting(t *testing.T) {
	clk := newClock()
	s := NewWindowStore(2, time.Minute, WithWindowClock(clk.Now))
	lim := s.Get(domain.Key("k"))

	lim.Allow(context.Background()) // t=0
	clk.Advance(40 * time.Second)
	lim.Allow(context.Background()) // t=40s
	clk.Advance(30 * time.Second)   // t=70s: só o primeiro saiu

	if !lim.Allow(context.Background()) {
		t.Fatalf("expected one slot freed by the oldest request")
	}
	if lim.Allow(context.Background()) {
		t.Fatalf("expected window to be full again")
	}
}

func TestWindowStore_KeysAreIndependent(t *testing.T) {
	s := NewWindowStore(1, time.Minute)

	if !s.Get("a").Allow(context.Background()) {
		t.Fatalf("expected a allowed")
	}
	if !s.Get("b").Allow(context.Background()) {
		t.Fatalf("expected b allowed")
	}
	if s.Get("a").Allow(context.Background()) {
		t.Fatalf("expected a rejected")
	}
}

func TestWindowStore_CleanupDropsIdleKeys(t *testing.T) {
	clk := newClock()
	s := NewWindowStore(5, time.Minute, WithWindowClock(clk.Now))
	s.Get("idle").Allow(context.Background())
	clk.Advance(2 * time.Minute)
	s.Get("busy").Allow(context.Background())

	s.Cleanup()

	s.mu.Lock()
	_, idle := s.entries["idle"]
	_, busy := s.entries["busy"]
	s.mu.Unlock()
	if idle || !busy {
		t.Fatalf("expected only idle key removed, idle=%v busy=%v", idle, busy)
	}
}

func TestWindowStore_JanitorUsesConfiguredInterval(t *testing.T) {
	clk := newClock()
	s := NewWindowStore(5, time.Minute, WithWindowClock(clk.Now), WithWindowCleanupEvery(5*time.Millisecond))
	s.Get("idle").Allow(context.Background())
	clk.Advance(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartJanitor(ctx)

	deadline := time.Now().Add(time.Second)
	for {
		s.mu.Lock()
		n := len(s.entries)
		s.mu.Unlock()
		if n == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("janitor did not run, %d keys left", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
