package infra

import (
	"context"
	"testing"
)

func TestMemoryQuotaCounter_StopsAtLimitWithoutIncrementing(t *testing.T) {
	c := NewMemoryQuotaCounter()
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		ok, err := c.Take(ctx, "2026-10-17", 1000)
		if err != nil || !ok {
			t.Fatalf("take %d: expected ok, got ok=%v err=%v", i+1, ok, err)
		}
	}
	ok, _ := c.Take(ctx, "2026-10-17", 1000)
	if ok {
		t.Fatalf("expected 1001st take to be refused")
	}
	if used, _ := c.Used(ctx, "2026-10-17"); used != 1000 {
		t.Fatalf("expected count to stay at 1000, got %d", used)
	}
}

func TestMemoryQuotaCounter_RollsOverOnNewDay(t *testing.T) {
	c := NewMemoryQuotaCounter()
	ctx := context.Background()

	c.Take(ctx, "2026-10-17", 1)
	if ok, _ := c.Take(ctx, "2026-10-17", 1); ok {
		t.Fatalf("expected limit reached")
	}
	if ok, _ := c.Take(ctx, "2026-10-18", 1); !ok {
		t.Fatalf("expected counter to reset on a new date")
	}
	if used, _ := c.Used(ctx, "2026-10-17"); used != 0 {
		t.Fatalf("expected previous day to report 0 after rollover, got %d", used)
	}
}
